package modelio

import (
	"log/slog"

	"github.com/gnames/gncurator/pkg/ent/model"
	"github.com/jinzhu/gorm"
)

type modelio struct {
	db *gorm.DB
}

// New returns a new instance of Migrator.
func New(db *gorm.DB) model.Migrator {
	res := modelio{db: db}
	return &res
}

// Migrate creates tables in the database.
func (m *modelio) Migrate() error {
	res := m.db.AutoMigrate(
		&model.Identifier{},
		&model.Resource{},
		&model.ResourceIdentifier{},
		&model.Agent{},
		&model.AgentIdentifier{},
		&model.Role{},
		&model.Embodiment{},
	)
	if res.Error != nil {
		slog.Error("Cannot migrate mirror schema", "error", res.Error)
		return res.Error
	}

	return nil
}

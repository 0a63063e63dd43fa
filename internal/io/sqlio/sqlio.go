// Package sqlio keeps a relational mirror of curated data in SQLite or
// PostgreSQL. The mirror serves as a store for curation, and curated
// batches can be uploaded to it.
package sqlio

import (
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gnames/gncurator/internal/ent/batch"
	"github.com/gnames/gncurator/pkg/config"
	"github.com/gnames/gncurator/pkg/io/modelio"
	"github.com/gnames/gnsys"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "modernc.org/sqlite"
)

type sqlio struct {
	db       *sql.DB
	postgres bool
}

// New opens the mirror chosen by the configuration and creates its
// tables if necessary.
func New(cfg config.Config) (batch.Mirror, error) {
	switch cfg.StoreType {
	case config.StoreSQLite:
		return NewSQLite(cfg.SqlitePath)
	case config.StorePostgres:
		return NewPostgres(cfg)
	default:
		return nil, fmt.Errorf("store %q is not relational", cfg.StoreType)
	}
}

// NewSQLite opens or creates a SQLite mirror at the given path.
func NewSQLite(path string) (batch.Mirror, error) {
	if err := gnsys.MakeDir(filepath.Dir(path)); err != nil {
		slog.Error("Cannot create directory", "error", err, "path", path)
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite does not support concurrent writes.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &sqlio{db: db}, nil
}

// NewPostgres connects to a PostgreSQL mirror. Tables are created by
// gorm migration.
func NewPostgres(cfg config.Config) (batch.Mirror, error) {
	gdb, err := gorm.Open("postgres", opts(cfg))
	if err != nil {
		slog.Error("Cannot connect to database", "error", err)
		return nil, err
	}
	err = modelio.New(gdb).Migrate()
	gdb.Close()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", opts(cfg))
	if err != nil {
		slog.Error("Cannot connect to database", "error", err)
		return nil, err
	}
	return &sqlio{db: db, postgres: true}, nil
}

// Close closes the database connection.
func (s *sqlio) Close() error {
	return s.db.Close()
}

func opts(cfg config.Config) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.PgHost, cfg.PgUser, cfg.PgPass, cfg.PgDB)
}

// rebind converts `?` placeholders to `$n` for PostgreSQL.
func (s *sqlio) rebind(q string) string {
	if !s.postgres {
		return q
	}
	var b strings.Builder
	var n int
	for _, r := range q {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteString("$" + strconv.Itoa(n))
	}
	return b.String()
}

const schema = `
	CREATE TABLE IF NOT EXISTS identifiers (
		meta TEXT PRIMARY KEY,
		scheme TEXT NOT NULL,
		value TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS scheme_value ON identifiers(scheme, value);

	CREATE TABLE IF NOT EXISTS brs (
		meta TEXT PRIMARY KEY,
		title TEXT,
		type TEXT,
		pub_date TEXT,
		part_of TEXT,
		label TEXT
	);
	CREATE INDEX IF NOT EXISTS part_of ON brs(part_of);

	CREATE TABLE IF NOT EXISTS br_identifiers (
		br TEXT NOT NULL,
		identifier TEXT NOT NULL,
		PRIMARY KEY (br, identifier)
	);
	CREATE INDEX IF NOT EXISTS br_identifier ON br_identifiers(identifier);

	CREATE TABLE IF NOT EXISTS ras (
		meta TEXT PRIMARY KEY,
		name TEXT
	);

	CREATE TABLE IF NOT EXISTS ra_identifiers (
		ra TEXT NOT NULL,
		identifier TEXT NOT NULL,
		PRIMARY KEY (ra, identifier)
	);
	CREATE INDEX IF NOT EXISTS ra_identifier ON ra_identifiers(identifier);

	CREATE TABLE IF NOT EXISTS ars (
		meta TEXT PRIMARY KEY,
		br TEXT NOT NULL,
		ra TEXT NOT NULL,
		role TEXT NOT NULL,
		position INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS ar_br ON ars(br);

	CREATE TABLE IF NOT EXISTS res (
		meta TEXT PRIMARY KEY,
		br TEXT NOT NULL,
		page_range TEXT
	);
	CREATE INDEX IF NOT EXISTS re_br ON res(br);
`

// Package model describes tables of the relational mirror of curated data.
package model

// Migrator creates tables of the mirror.
type Migrator interface {
	// Migrate creates missing tables and indices.
	Migrate() error
}

// Identifier is an external identifier entity.
type Identifier struct {
	// Meta is the permanent key of the identifier.
	Meta string `gorm:"column:meta;type:varchar(50);primary_key;auto_increment:false"`

	// Scheme is a lowercase scheme like `doi` or `orcid`.
	Scheme string `gorm:"column:scheme;type:varchar(20);not null;index:scheme_value"`

	// Value is a canonical value of the identifier.
	Value string `gorm:"column:value;type:varchar(255);not null;index:scheme_value"`
}

// TableName returns the name of the table.
func (Identifier) TableName() string { return "identifiers" }

// Resource is a bibliographic resource: an article, a venue, a volume or
// an issue.
type Resource struct {
	Meta string `gorm:"column:meta;type:varchar(50);primary_key;auto_increment:false"`

	// Title of the resource, empty for volumes and issues.
	Title string `gorm:"column:title"`

	// Type is one of the recognized genre labels.
	Type string `gorm:"column:type;type:varchar(50)"`

	// PubDate is a date in `YYYY`, `YYYY-MM` or `YYYY-MM-DD` form.
	PubDate string `gorm:"column:pub_date;type:varchar(10)"`

	// PartOf is the key of a containing resource.
	PartOf string `gorm:"column:part_of;type:varchar(50);index:part_of"`

	// Label is a sequence label of a volume or an issue.
	Label string `gorm:"column:label;type:varchar(100)"`
}

// TableName returns the name of the table.
func (Resource) TableName() string { return "brs" }

// ResourceIdentifier links a resource to its identifier.
type ResourceIdentifier struct {
	BR         string `gorm:"column:br;type:varchar(50);primary_key"`
	Identifier string `gorm:"column:identifier;type:varchar(50);primary_key;index:br_identifier"`
}

// TableName returns the name of the table.
func (ResourceIdentifier) TableName() string { return "br_identifiers" }

// Agent is a responsible agent: a person or an organization.
type Agent struct {
	Meta string `gorm:"column:meta;type:varchar(50);primary_key;auto_increment:false"`

	// Name is `Family, Given` for persons, or a name of an organization.
	Name string `gorm:"column:name"`
}

// TableName returns the name of the table.
func (Agent) TableName() string { return "ras" }

// AgentIdentifier links an agent to its identifier.
type AgentIdentifier struct {
	RA         string `gorm:"column:ra;type:varchar(50);primary_key"`
	Identifier string `gorm:"column:identifier;type:varchar(50);primary_key;index:ra_identifier"`
}

// TableName returns the name of the table.
func (AgentIdentifier) TableName() string { return "ra_identifiers" }

// Role is an agent role: a position of an agent in the author, editor or
// publisher sequence of a resource.
type Role struct {
	Meta     string `gorm:"column:meta;type:varchar(50);primary_key;auto_increment:false"`
	BR       string `gorm:"column:br;type:varchar(50);not null;index:ar_br"`
	RA       string `gorm:"column:ra;type:varchar(50);not null"`
	Role     string `gorm:"column:role;type:varchar(20);not null"`
	Position int    `gorm:"column:position;not null"`
}

// TableName returns the name of the table.
func (Role) TableName() string { return "ars" }

// Embodiment is a page range of a resource.
type Embodiment struct {
	Meta      string `gorm:"column:meta;type:varchar(50);primary_key;auto_increment:false"`
	BR        string `gorm:"column:br;type:varchar(50);not null;index:re_br"`
	PageRange string `gorm:"column:page_range;type:varchar(50)"`
}

// TableName returns the name of the table.
func (Embodiment) TableName() string { return "res" }

// Package finder looks for entities that already exist in a store of
// curated data. Stores are read-only during curation.
package finder

import (
	"context"
	"errors"

	"github.com/gnames/gncurator/internal/ent/row"
	"github.com/gnames/gncurator/internal/ent/vvi"
)

// ErrStoreUnavailable means that a store query failed after all retries.
var ErrStoreUnavailable = errors.New("store unavailable")

// IDRef is an identifier entity of a store.
type IDRef struct {
	// Meta is the permanent key of the identifier entity.
	Meta string

	// Token is the identifier in `scheme:value` form.
	Token string
}

// Entity is a bibliographic resource or a responsible agent found in a
// store.
type Entity struct {
	// Meta is the permanent key of the entity.
	Meta string

	// Title is a title of a resource or a name of an agent.
	Title string

	// IDs are external identifiers of the entity.
	IDs []IDRef
}

// Page is a page-range embodiment of a resource.
type Page struct {
	Meta  string
	Range string
}

// Info contains stored attributes of a bibliographic resource.
type Info struct {
	// Venue is the permanent key of the venue that contains the resource.
	Venue string

	Volume  string
	Issue   string
	PubDate string
	Type    string
	Page    Page
}

// Agent is an element of an agent-role sequence.
type Agent struct {
	// AR is the permanent key of the agent role.
	AR string

	// RA is the agent.
	RA Entity
}

// Store gives access to curated data.
type Store interface {
	// BRFromID finds resources that have an identifier.
	BRFromID(ctx context.Context, scheme, value string) ([]Entity, error)

	// RAFromID finds agents that have an identifier. Publishers are
	// looked up separately from persons.
	RAFromID(
		ctx context.Context,
		scheme, value string,
		publisher bool,
	) ([]Entity, error)

	// BRFromMeta returns a resource by its permanent key.
	BRFromMeta(ctx context.Context, meta string) (Entity, bool, error)

	// RAFromMeta returns an agent by its permanent key.
	RAFromMeta(
		ctx context.Context,
		meta string,
		publisher bool,
	) (Entity, bool, error)

	// BRInfo returns stored attributes of a resource.
	BRInfo(ctx context.Context, meta string) (Info, bool, error)

	// RASequence returns an ordered sequence of agents with a role in a
	// resource.
	RASequence(
		ctx context.Context,
		meta string,
		role row.Role,
	) ([]Agent, error)

	// Venue returns volumes and issues of a venue. All keys of the result
	// are permanent.
	Venue(ctx context.Context, meta string) (*vvi.Venue, error)

	// RE returns a page embodiment of a resource.
	RE(ctx context.Context, meta string) (Page, bool, error)
}

// Package curator resolves rows of a batch into deduplicated entities.
// Every resource, agent and identifier of a batch is matched against the
// other rows and against a store of curated data, receives a permanent
// key, and rows are rewritten with canonical values.
package curator

import (
	"context"
	"errors"
	"slices"

	"github.com/gnames/gncurator/internal/ent/clean"
	"github.com/gnames/gncurator/internal/ent/counter"
	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/ent/identifier"
	"github.com/gnames/gncurator/internal/ent/key"
	"github.com/gnames/gncurator/internal/ent/row"
	"github.com/gnames/gncurator/internal/ent/vvi"
)

// ErrVenueSlotConflict means that two different permanent resources claim
// the same volume or issue of a venue.
var ErrVenueSlotConflict = errors.New("venue slot conflict")

// rowState keeps keys resolved for a row.
type rowState struct {
	br    key.Key
	venue key.Key
}

// Curator resolves one batch. It is not reusable and not safe for
// concurrent use.
type Curator struct {
	sep    string
	finder *finder.Finder
	alloc  *counter.Allocator

	rows  []row.Row
	state []rowState

	br, ra     *registry
	idBR, idRA *idIndex
	wnb        uint32

	seqs     map[key.Key]*roleSeqs
	seqOrder []key.Key

	venues     map[key.Key]*vvi.Venue
	venueOrder []key.Key
	parts      map[key.Key]containment
	pages      map[key.Key]finder.Page

	log *logbook
}

// Option changes settings of a Curator.
type Option func(*Curator)

// OptSeparator sets a separator of identifier lists. By default lists are
// split by white spaces.
func OptSeparator(s string) Option {
	return func(c *Curator) {
		c.sep = s
	}
}

// New creates a Curator for one batch.
func New(f *finder.Finder, a *counter.Allocator, opts ...Option) *Curator {
	res := Curator{
		finder: f,
		alloc:  a,
		br:     newRegistry(key.BR),
		ra:     newRegistry(key.RA),
		idBR:   newIDIndex(),
		idRA:   newIDIndex(),
		seqs:   make(map[key.Key]*roleSeqs),
		venues: make(map[key.Key]*vvi.Venue),
		parts:  make(map[key.Key]containment),
		pages:  make(map[key.Key]finder.Page),
		log:    newLogbook(),
	}
	for _, opt := range opts {
		opt(&res)
	}
	return &res
}

// Curate resolves rows and returns rewritten rows together with index
// tables and the log. Input rows are not modified.
func (c *Curator) Curate(ctx context.Context, rows []row.Row) (*Result, error) {
	c.rows = slices.Clone(rows)
	c.state = make([]rowState, len(rows))

	for i := range c.rows {
		c.cleanFields(i)
		if err := c.cleanID(ctx, i); err != nil {
			return nil, err
		}
	}

	for i := range c.rows {
		if err := c.equalize(ctx, i); err != nil {
			return nil, err
		}
	}
	c.propagate()

	for i := range c.rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.cleanVenue(ctx, i); err != nil {
			return nil, err
		}
		for _, role := range row.Roles {
			if err := c.cleanAgents(ctx, i, role); err != nil {
				return nil, err
			}
		}
	}

	if err := c.foldVenues(ctx); err != nil {
		return nil, err
	}
	if err := c.settleSeqs(ctx); err != nil {
		return nil, err
	}
	if err := c.assignMeta(); err != nil {
		return nil, err
	}
	if err := c.enrich(ctx); err != nil {
		return nil, err
	}
	return c.result(), nil
}

func (c *Curator) cleanFields(i int) {
	r := &c.rows[i]
	r.Title = clean.Title(r.Title)
	r.PubDate = clean.Date(r.PubDate)
	r.Type = clean.Type(r.Type)
	r.Page = clean.Page(r.Page)
	r.Volume = clean.Spaces(clean.Hyphens(r.Volume))
	r.Issue = clean.Spaces(clean.Hyphens(r.Issue))
	r.Venue = clean.Spaces(r.Venue)
	for _, role := range row.Roles {
		r.SetAgents(role, clean.Spaces(r.Agents(role)))
	}
}

func (c *Curator) cleanID(ctx context.Context, i int) error {
	r := &c.rows[i]
	norm := identifier.Normalize(r.ID, c.sep, key.BR)
	k, err := c.idWorker(ctx, request{
		row:   i,
		field: "id",
		name:  r.Title,
		ids:   norm.Tokens,
		meta:  norm.Meta,
		kind:  key.BR,
	})
	if err != nil {
		return err
	}
	c.state[i].br = k
	return nil
}

// propagate makes rows of the same resource agree on its attributes. The
// first non-empty value wins; other values are logged as proposals.
func (c *Curator) propagate() {
	groups := make(map[key.Key][]int)
	var order []key.Key
	for i := range c.rows {
		k := c.br.find(c.state[i].br)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	cols := []string{"pub_date", "type", "page", "volume", "issue"}
	for _, k := range order {
		idxs := groups[k]
		if len(idxs) < 2 {
			continue
		}
		for _, col := range cols {
			var known string
			for _, i := range idxs {
				if v := c.rows[i].Get(col); v != "" {
					known = v
					break
				}
			}
			for _, i := range idxs {
				c.propose(i, col, known)
			}
		}
	}
}

// propose replaces a value of a row column with a known one, logging rows
// that had a different value.
func (c *Curator) propose(i int, col, known string) {
	r := &c.rows[i]
	cur := r.Get(col)
	if known == "" || cur == known {
		return
	}
	if cur != "" {
		c.log.status(i, col, StatusProposed)
	}
	r.Set(col, known)
}

func (c *Curator) registry(kind key.Kind) *registry {
	if kind == key.RA {
		return c.ra
	}
	return c.br
}

func (c *Curator) idIndex(kind key.Kind) *idIndex {
	if kind == key.RA {
		return c.idRA
	}
	return c.idBR
}

func (c *Curator) nextWannabe() key.Key {
	k := key.Wannabe(c.wnb)
	c.wnb++
	return k
}

func (c *Curator) newEntity(reg *registry, name string) key.Key {
	k := c.nextWannabe()
	reg.add(k, name, false)
	return k
}

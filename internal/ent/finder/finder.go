package finder

import (
	"context"
	"errors"
	"fmt"

	"github.com/gnames/gncurator/internal/ent/identifier"
	"github.com/gnames/gncurator/internal/ent/key"
	"github.com/gnames/gncurator/internal/ent/row"
	"github.com/gnames/gncurator/internal/ent/vvi"
)

type lookup[T any] struct {
	val   T
	found bool
}

// Finder memoizes results of a Store, including negative ones. A Finder
// lives as long as one batch and is not safe for concurrent use.
type Finder struct {
	store  Store
	brIDs  map[string][]Entity
	raIDs  map[string][]Entity
	brMeta map[string]lookup[Entity]
	raMeta map[string]lookup[Entity]
	info   map[string]lookup[Info]
	seqs   map[string][]Agent
	venues map[string]*vvi.Venue
	pages  map[string]lookup[Page]
}

// New creates a Finder on top of a store.
func New(s Store) *Finder {
	return &Finder{
		store:  s,
		brIDs:  make(map[string][]Entity),
		raIDs:  make(map[string][]Entity),
		brMeta: make(map[string]lookup[Entity]),
		raMeta: make(map[string]lookup[Entity]),
		info:   make(map[string]lookup[Info]),
		seqs:   make(map[string][]Agent),
		venues: make(map[string]*vvi.Venue),
		pages:  make(map[string]lookup[Page]),
	}
}

// FromID returns entities of a kind that have an identifier token.
func (f *Finder) FromID(
	ctx context.Context,
	kind key.Kind,
	token string,
	publisher bool,
) ([]Entity, error) {
	scheme, value, ok := identifier.Split(token)
	if !ok {
		return nil, nil
	}
	cache := f.brIDs
	cacheKey := token
	if kind == key.RA {
		cache = f.raIDs
		if publisher {
			cacheKey = "publisher|" + token
		}
	}
	if res, ok := cache[cacheKey]; ok {
		return res, nil
	}

	var res []Entity
	var err error
	if kind == key.RA {
		res, err = f.store.RAFromID(ctx, scheme, value, publisher)
	} else {
		res, err = f.store.BRFromID(ctx, scheme, value)
	}
	if err != nil {
		return nil, unavailable(err)
	}
	cache[cacheKey] = res
	return res, nil
}

// Match returns up to two distinct entities that have any of the tokens.
// It stops querying as soon as two entities are found.
func (f *Finder) Match(
	ctx context.Context,
	kind key.Kind,
	tokens []string,
	publisher bool,
) ([]Entity, error) {
	var res []Entity
	seen := make(map[string]struct{})
	for _, t := range tokens {
		ents, err := f.FromID(ctx, kind, t, publisher)
		if err != nil {
			return nil, err
		}
		for _, e := range ents {
			if _, ok := seen[e.Meta]; ok {
				continue
			}
			seen[e.Meta] = struct{}{}
			res = append(res, e)
			if len(res) == 2 {
				return res, nil
			}
		}
	}
	return res, nil
}

// FromMeta returns an entity of a kind by its permanent key.
func (f *Finder) FromMeta(
	ctx context.Context,
	kind key.Kind,
	meta string,
	publisher bool,
) (Entity, bool, error) {
	cache := f.brMeta
	if kind == key.RA {
		cache = f.raMeta
	}
	if res, ok := cache[meta]; ok {
		return res.val, res.found, nil
	}

	var res Entity
	var found bool
	var err error
	if kind == key.RA {
		res, found, err = f.store.RAFromMeta(ctx, meta, publisher)
	} else {
		res, found, err = f.store.BRFromMeta(ctx, meta)
	}
	if err != nil {
		return res, false, unavailable(err)
	}
	cache[meta] = lookup[Entity]{val: res, found: found}
	return res, found, nil
}

// BRInfo returns stored attributes of a resource.
func (f *Finder) BRInfo(ctx context.Context, meta string) (Info, bool, error) {
	if res, ok := f.info[meta]; ok {
		return res.val, res.found, nil
	}
	res, found, err := f.store.BRInfo(ctx, meta)
	if err != nil {
		return res, false, unavailable(err)
	}
	f.info[meta] = lookup[Info]{val: res, found: found}
	return res, found, nil
}

// RASequence returns a stored sequence of agents with a role in a
// resource.
func (f *Finder) RASequence(
	ctx context.Context,
	meta string,
	role row.Role,
) ([]Agent, error) {
	cacheKey := meta + "|" + string(role)
	if res, ok := f.seqs[cacheKey]; ok {
		return res, nil
	}
	res, err := f.store.RASequence(ctx, meta, role)
	if err != nil {
		return nil, unavailable(err)
	}
	f.seqs[cacheKey] = res
	return res, nil
}

// Venue returns a copy of stored volumes and issues of a venue.
func (f *Finder) Venue(ctx context.Context, meta string) (*vvi.Venue, error) {
	if res, ok := f.venues[meta]; ok {
		return res.Clone(), nil
	}
	res, err := f.store.Venue(ctx, meta)
	if err != nil {
		return nil, unavailable(err)
	}
	if res == nil {
		res = vvi.NewVenue()
	}
	f.venues[meta] = res
	return res.Clone(), nil
}

// RE returns a stored page embodiment of a resource.
func (f *Finder) RE(ctx context.Context, meta string) (Page, bool, error) {
	if res, ok := f.pages[meta]; ok {
		return res.val, res.found, nil
	}
	res, found, err := f.store.RE(ctx, meta)
	if err != nil {
		return res, false, unavailable(err)
	}
	f.pages[meta] = lookup[Page]{val: res, found: found}
	return res, found, nil
}

func unavailable(err error) error {
	if errors.Is(err, ErrStoreUnavailable) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

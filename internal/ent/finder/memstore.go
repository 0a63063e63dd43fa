package finder

import (
	"context"
	"slices"
	"sync"

	"github.com/gnames/gncurator/internal/ent/row"
	"github.com/gnames/gncurator/internal/ent/vvi"
)

// MemStore is a Store kept in memory. An empty MemStore is used when
// curation starts without any curated data.
type MemStore struct {
	mu         sync.Mutex
	calls      int
	brs        map[string]Entity
	ras        map[string]Entity
	publishers map[string]bool
	infos      map[string]Info
	seqs       map[string][]Agent
	venues     map[string]*vvi.Venue
	pages      map[string]Page
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		brs:        make(map[string]Entity),
		ras:        make(map[string]Entity),
		publishers: make(map[string]bool),
		infos:      make(map[string]Info),
		seqs:       make(map[string][]Agent),
		venues:     make(map[string]*vvi.Venue),
		pages:      make(map[string]Page),
	}
}

// AddBR adds a resource.
func (m *MemStore) AddBR(e Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.brs[e.Meta] = e
}

// AddRA adds an agent.
func (m *MemStore) AddRA(e Entity, publisher bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ras[e.Meta] = e
	m.publishers[e.Meta] = publisher
}

// SetInfo sets attributes of a resource.
func (m *MemStore) SetInfo(meta string, info Info) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos[meta] = info
	if info.Page.Meta != "" {
		m.pages[meta] = info.Page
	}
}

// SetRE sets a page embodiment of a resource.
func (m *MemStore) SetRE(meta string, p Page) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[meta] = p
}

// SetSequence sets agents of a resource for a role.
func (m *MemStore) SetSequence(meta string, role row.Role, agents []Agent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seqs[meta+"|"+string(role)] = agents
}

// SetVenue sets volumes and issues of a venue.
func (m *MemStore) SetVenue(meta string, v *vvi.Venue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.venues[meta] = v
}

// Calls returns the number of queries served.
func (m *MemStore) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// BRFromID finds resources that have an identifier.
func (m *MemStore) BRFromID(
	_ context.Context,
	scheme, value string,
) ([]Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return withToken(m.brs, scheme+":"+value, nil), nil
}

// RAFromID finds agents that have an identifier.
func (m *MemStore) RAFromID(
	_ context.Context,
	scheme, value string,
	publisher bool,
) ([]Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	filter := func(meta string) bool {
		return m.publishers[meta] == publisher
	}
	return withToken(m.ras, scheme+":"+value, filter), nil
}

// BRFromMeta returns a resource by its permanent key.
func (m *MemStore) BRFromMeta(
	_ context.Context,
	meta string,
) (Entity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	res, ok := m.brs[meta]
	return res, ok, nil
}

// RAFromMeta returns an agent by its permanent key.
func (m *MemStore) RAFromMeta(
	_ context.Context,
	meta string,
	_ bool,
) (Entity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	res, ok := m.ras[meta]
	return res, ok, nil
}

// BRInfo returns attributes of a resource.
func (m *MemStore) BRInfo(_ context.Context, meta string) (Info, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	res, ok := m.infos[meta]
	return res, ok, nil
}

// RASequence returns agents of a resource for a role.
func (m *MemStore) RASequence(
	_ context.Context,
	meta string,
	role row.Role,
) ([]Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return slices.Clone(m.seqs[meta+"|"+string(role)]), nil
}

// Venue returns volumes and issues of a venue.
func (m *MemStore) Venue(_ context.Context, meta string) (*vvi.Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if v, ok := m.venues[meta]; ok {
		return v.Clone(), nil
	}
	return vvi.NewVenue(), nil
}

// RE returns a page embodiment of a resource.
func (m *MemStore) RE(_ context.Context, meta string) (Page, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	res, ok := m.pages[meta]
	return res, ok, nil
}

func withToken(
	ents map[string]Entity,
	token string,
	filter func(string) bool,
) []Entity {
	var res []Entity
	for _, e := range ents {
		if filter != nil && !filter(e.Meta) {
			continue
		}
		for _, id := range e.IDs {
			if id.Token == token {
				res = append(res, e)
				break
			}
		}
	}
	slices.SortFunc(res, func(a, b Entity) int {
		switch {
		case a.Meta < b.Meta:
			return -1
		case a.Meta > b.Meta:
			return 1
		}
		return 0
	})
	return res
}

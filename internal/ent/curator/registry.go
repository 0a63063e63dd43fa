package curator

import (
	"github.com/gnames/gncurator/internal/ent/key"
)

// entity is a resource or an agent known to the batch.
type entity struct {
	ids      []string
	idSet    map[string]struct{}
	others   []key.Key
	title    string
	conflict bool
}

func (e *entity) hasID(t string) bool {
	_, ok := e.idSet[t]
	return ok
}

func (e *entity) addID(t string) bool {
	if e.hasID(t) {
		return false
	}
	e.idSet[t] = struct{}{}
	e.ids = append(e.ids, t)
	return true
}

// registry keeps entities of one kind in insertion order. Absorbed keys
// point to their survivors, forming a disjoint-set forest.
type registry struct {
	kind   key.Kind
	ents   map[key.Key]*entity
	order  []key.Key
	parent map[key.Key]key.Key

	// owner maps identifiers to keys of entities that had them first.
	// Conflict entities own nothing.
	owner map[string]key.Key

	// final keeps permanent values of surviving keys.
	final map[key.Key]string
}

func newRegistry(kind key.Kind) *registry {
	return &registry{
		kind:   kind,
		ents:   make(map[key.Key]*entity),
		parent: make(map[key.Key]key.Key),
		owner:  make(map[string]key.Key),
		final:  make(map[key.Key]string),
	}
}

// find returns the surviving key of a possibly absorbed key.
func (r *registry) find(k key.Key) key.Key {
	root := k
	for {
		p, ok := r.parent[root]
		if !ok {
			break
		}
		root = p
	}
	for k != root {
		next := r.parent[k]
		r.parent[k] = root
		k = next
	}
	return root
}

func (r *registry) get(k key.Key) (*entity, bool) {
	e, ok := r.ents[r.find(k)]
	return e, ok
}

func (r *registry) add(k key.Key, title string, conflict bool) *entity {
	if e, ok := r.ents[k]; ok {
		return e
	}
	e := &entity{
		idSet:    make(map[string]struct{}),
		title:    title,
		conflict: conflict,
	}
	r.ents[k] = e
	r.order = append(r.order, k)
	return e
}

func (r *registry) addID(k key.Key, t string) {
	k = r.find(k)
	e, ok := r.ents[k]
	if !ok || !e.addID(t) || e.conflict {
		return
	}
	if _, ok := r.ownerOf(t); !ok {
		r.owner[t] = k
	}
}

func (r *registry) ownerOf(t string) (key.Key, bool) {
	k, ok := r.owner[t]
	if !ok {
		return key.Key{}, false
	}
	k = r.find(k)
	if _, ok = r.ents[k]; !ok {
		return key.Key{}, false
	}
	return k, true
}

func (r *registry) isConflict(k key.Key) bool {
	e, ok := r.get(k)
	return ok && e.conflict
}

// localMatch returns live entities that have any of the identifiers,
// split into permanent and wannabe keys. The order follows the order of
// identifiers.
func (r *registry) localMatch(ids []string) (existing, wannabes []key.Key) {
	seen := make(map[key.Key]struct{})
	for _, t := range ids {
		k, ok := r.ownerOf(t)
		if !ok {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		if k.IsWannabe() {
			wannabes = append(wannabes, k)
		} else {
			existing = append(existing, k)
		}
	}
	return existing, wannabes
}

// merge moves identifiers and absorbed keys of the victim to the survivor
// and removes the victim. An empty title of the survivor is taken from the
// victim, or from the fallback.
func (r *registry) merge(survivor, victim key.Key, fallback string) {
	survivor, victim = r.find(survivor), r.find(victim)
	if survivor == victim {
		return
	}
	s, ok := r.ents[survivor]
	if !ok {
		return
	}
	v, ok := r.ents[victim]
	if !ok {
		return
	}

	r.parent[victim] = survivor
	delete(r.ents, victim)
	for _, t := range v.ids {
		s.addID(t)
		if s.conflict {
			continue
		}
		if _, ok := r.ownerOf(t); !ok {
			r.owner[t] = survivor
		}
	}
	s.others = append(s.others, v.others...)
	s.others = append(s.others, victim)
	if s.title == "" {
		s.title = v.title
	}
	if s.title == "" {
		s.title = fallback
	}
}

// live returns surviving keys in insertion order.
func (r *registry) live() []key.Key {
	res := make([]key.Key, 0, len(r.ents))
	for _, k := range r.order {
		if _, ok := r.ents[k]; ok {
			res = append(res, k)
		}
	}
	return res
}

// resolve returns the permanent value of a key after meta assignment.
// Keys that never entered the registry keep their own value.
func (r *registry) resolve(k key.Key) string {
	root := r.find(k)
	if m, ok := r.final[root]; ok {
		return m
	}
	return root.Meta()
}

// idIndex maps identifiers to permanent keys of identifier entities.
type idIndex struct {
	order []string
	metas map[string]string
}

func newIDIndex() *idIndex {
	return &idIndex{metas: make(map[string]string)}
}

func (x *idIndex) get(t string) (string, bool) {
	m, ok := x.metas[t]
	return m, ok
}

func (x *idIndex) set(t, meta string) {
	if _, ok := x.metas[t]; ok {
		return
	}
	x.metas[t] = meta
	x.order = append(x.order, t)
}

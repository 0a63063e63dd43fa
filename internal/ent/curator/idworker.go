package curator

import (
	"context"
	"log/slog"

	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/ent/key"
)

// request describes one entity mentioned in a row field.
type request struct {
	// row is the index of the row in the batch.
	row int

	// field is the column the entity comes from.
	field string

	// name is a tentative title or name of the entity.
	name string

	// ids are canonical external identifiers.
	ids []string

	// meta is a permanent key given by an omid token.
	meta string

	kind      key.Kind
	publisher bool
}

// idWorker finds a key for an entity. It reuses entities known to the
// batch or to the store, merges entities that share identifiers, creates
// new entities, and isolates ambiguous identifier lists in conflict
// entities.
func (c *Curator) idWorker(ctx context.Context, req request) (key.Key, error) {
	reg := c.registry(req.kind)

	if req.meta != "" {
		k := reg.find(key.Permanent(req.meta))
		if _, ok := reg.ents[k]; ok {
			return c.absorb(reg, req, k)
		}
		ent, found, err := c.finder.FromMeta(ctx, req.kind, req.meta, req.publisher)
		if err != nil {
			return key.Key{}, err
		}
		if found {
			k = c.materialize(reg, ent)
			c.log.status(req.row, req.field, StatusExists)
			return c.absorb(reg, req, k)
		}
		slog.Warn("Unknown omid, a new key will be allocated",
			"omid", key.OMID(req.kind, req.meta), "row", req.row+1)
	}

	if len(req.ids) == 0 {
		return c.newEntity(reg, req.name), nil
	}

	existing, wannabes := reg.localMatch(req.ids)
	switch {
	case len(existing) > 1:
		return c.conflict(reg, req)

	case len(existing) == 1:
		k := existing[0]
		if suspects := suspects(reg, k, req.ids); len(suspects) > 0 {
			matches, err := c.finder.Match(ctx, req.kind, suspects, req.publisher)
			if err != nil {
				return key.Key{}, err
			}
			if len(matches) > 1 || (len(matches) == 1 && matches[0].Meta != k.Meta()) {
				return c.conflict(reg, req)
			}
		}
		for _, w := range wannabes {
			reg.merge(k, w, req.name)
		}
		return c.register(reg, req, k)

	case len(wannabes) > 0:
		k := wannabes[0]
		for _, w := range wannabes[1:] {
			reg.merge(k, w, req.name)
		}
		if suspects := suspects(reg, k, req.ids); len(suspects) > 0 {
			matches, err := c.finder.Match(ctx, req.kind, suspects, req.publisher)
			if err != nil {
				return key.Key{}, err
			}
			switch len(matches) {
			case 0:
			case 1:
				stored, ok, err := c.verify(ctx, reg, req, matches[0])
				if err != nil {
					return key.Key{}, err
				}
				if !ok {
					return c.conflict(reg, req)
				}
				reg.merge(stored, k, req.name)
				k = stored
			default:
				return c.conflict(reg, req)
			}
		}
		return c.register(reg, req, k)

	default:
		matches, err := c.finder.Match(ctx, req.kind, req.ids, req.publisher)
		if err != nil {
			return key.Key{}, err
		}
		switch len(matches) {
		case 0:
			return c.register(reg, req, c.newEntity(reg, req.name))
		case 1:
			stored, ok, err := c.verify(ctx, reg, req, matches[0])
			if err != nil {
				return key.Key{}, err
			}
			if !ok {
				return c.conflict(reg, req)
			}
			return c.register(reg, req, stored)
		default:
			return c.conflict(reg, req)
		}
	}
}

// absorb attaches identifiers to a known entity. Wannabes sharing the
// identifiers are merged into it, other permanent entities make the
// request a conflict.
func (c *Curator) absorb(reg *registry, req request, k key.Key) (key.Key, error) {
	existing, wannabes := reg.localMatch(req.ids)
	for _, e := range existing {
		if e != k {
			return c.conflict(reg, req)
		}
	}
	for _, w := range wannabes {
		reg.merge(k, w, req.name)
	}
	return c.register(reg, req, k)
}

// verify checks that identifiers of a stored entity do not lead to other
// stored entities, and brings the entity to the batch.
func (c *Curator) verify(
	ctx context.Context,
	reg *registry,
	req request,
	ent finder.Entity,
) (key.Key, bool, error) {
	tokens := make([]string, len(ent.IDs))
	for i := range ent.IDs {
		tokens[i] = ent.IDs[i].Token
	}
	matches, err := c.finder.Match(ctx, req.kind, tokens, req.publisher)
	if err != nil {
		return key.Key{}, false, err
	}
	if len(matches) > 1 {
		return key.Key{}, false, nil
	}
	k := c.materialize(reg, ent)
	c.log.status(req.row, req.field, StatusExists)
	return k, true, nil
}

// materialize adds a stored entity to the batch together with its
// identifiers.
func (c *Curator) materialize(reg *registry, ent finder.Entity) key.Key {
	k := reg.find(key.Permanent(ent.Meta))
	e, ok := reg.ents[k]
	if !ok {
		e = reg.add(k, ent.Title, false)
	}
	if e.title == "" {
		e.title = ent.Title
	}
	idx := c.idIndex(reg.kind)
	for _, id := range ent.IDs {
		idx.set(id.Token, id.Meta)
		if owner, ok := reg.ownerOf(id.Token); ok && owner != k &&
			owner.IsWannabe() {
			reg.merge(k, owner, "")
		}
		reg.addID(k, id.Token)
	}
	return k
}

// register adds identifiers of a request to an entity, allocating
// identifier keys for new ones.
func (c *Curator) register(reg *registry, req request, k key.Key) (key.Key, error) {
	k = reg.find(k)
	idx := c.idIndex(reg.kind)
	for _, t := range req.ids {
		if _, ok := idx.get(t); !ok {
			m, err := c.alloc.Next(key.ID)
			if err != nil {
				return key.Key{}, err
			}
			idx.set(t, m)
		}
		reg.addID(k, t)
	}
	if e, ok := reg.ents[k]; ok && e.title == "" {
		e.title = req.name
	}
	return k, nil
}

// conflict creates an entity for an ambiguous identifier list. It keeps
// the identifiers but takes part in no further matching.
func (c *Curator) conflict(reg *registry, req request) (key.Key, error) {
	k := c.nextWannabe()
	reg.add(k, req.name, true)
	req.meta = ""
	if _, err := c.register(reg, req, k); err != nil {
		return key.Key{}, err
	}
	c.log.conflict(req.row, req.field, reg.kind, k)
	return k, nil
}

func suspects(reg *registry, k key.Key, ids []string) []string {
	e, ok := reg.get(k)
	if !ok {
		return ids
	}
	var res []string
	for _, t := range ids {
		if !e.hasID(t) {
			res = append(res, t)
		}
	}
	return res
}

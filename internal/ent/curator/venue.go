package curator

import (
	"context"
	"fmt"

	"github.com/gnames/gncurator/internal/ent/clean"
	"github.com/gnames/gncurator/internal/ent/identifier"
	"github.com/gnames/gncurator/internal/ent/key"
	"github.com/gnames/gncurator/internal/ent/row"
	"github.com/gnames/gncurator/internal/ent/vvi"
)

const (
	typeVolume = "journal volume"
	typeIssue  = "journal issue"
)

// containment links a resource to the resource that contains it.
type containment struct {
	parent key.Key
	typ    string
	label  string
}

// cleanVenue resolves the venue of a row and places the row resource in
// the volume and issue structure of the venue.
func (c *Curator) cleanVenue(ctx context.Context, i int) error {
	r := &c.rows[i]
	if r.Venue == "" {
		return nil
	}

	name, rawIDs, ok := row.NameIDs(r.Venue)
	name = clean.Title(name)
	var v key.Key
	if ok {
		norm := identifier.Normalize(rawIDs, c.sep, key.BR)
		var err error
		v, err = c.idWorker(ctx, request{
			row:   i,
			field: "venue",
			name:  name,
			ids:   norm.Tokens,
			meta:  norm.Meta,
			kind:  key.BR,
		})
		if err != nil {
			return err
		}
	} else {
		v = c.newEntity(c.br, name)
	}

	own := c.br.find(c.state[i].br)
	if c.br.find(v) == own {
		c.log.info(i, "venue", InfoCycle)
		return nil
	}
	c.state[i].venue = v
	c.setVenueType(v, r.Type)

	venue, err := c.venueTable(ctx, v)
	if err != nil {
		return err
	}

	// Conflict entities and unlabeled volumes hang under their parent
	// without taking a slot.
	vol, iss := r.Volume, r.Issue
	slotted := !c.br.isConflict(own)
	switch {
	case r.Type == typeVolume:
		if vol == "" || !slotted {
			c.contain(i, own, v, typeVolume, vol)
			return nil
		}
		slot, _ := venue.AddVolume(vol)
		if err = c.claim(ctx, &slot.ID, own); err != nil {
			return err
		}
		c.contain(i, slot.ID, v, typeVolume, vol)

	case r.Type == typeIssue && iss != "":
		parent := v
		issues := venue.AddIssue
		if vol != "" {
			volSlot := c.volumeSlot(venue, v, vol)
			parent = volSlot.ID
			issues = volSlot.AddIssue
		}
		if !slotted {
			c.contain(i, own, parent, typeIssue, iss)
			return nil
		}
		slot, _ := issues(iss)
		if err = c.claim(ctx, &slot.ID, own); err != nil {
			return err
		}
		c.contain(i, slot.ID, parent, typeIssue, iss)

	default:
		parent := v
		switch {
		case vol != "":
			volSlot := c.volumeSlot(venue, v, vol)
			parent = volSlot.ID
			if iss != "" {
				parent = c.issueSlot(volSlot.AddIssue, volSlot.ID, iss).ID
			}
		case iss != "":
			parent = c.issueSlot(venue.AddIssue, v, iss).ID
		}
		c.contain(i, own, parent, "", "")
	}
	return nil
}

// contain records that a child belongs to a parent unless this would make
// a resource contain itself.
func (c *Curator) contain(i int, child, parent key.Key, typ, label string) {
	if c.isAncestor(child, parent) {
		c.log.info(i, "venue", InfoCycle)
		return
	}
	part := c.parts[c.br.find(child)]
	part.parent = parent
	if typ != "" {
		part.typ = typ
		part.label = label
	}
	c.parts[c.br.find(child)] = part
}

// isAncestor checks if a key is the parent itself or one of the parent
// ancestors.
func (c *Curator) isAncestor(k, parent key.Key) bool {
	k = c.br.find(k)
	p := c.br.find(parent)
	for range len(c.parts) + 1 {
		if p == k {
			return true
		}
		part, ok := c.parts[p]
		if !ok || part.parent.IsZero() {
			return false
		}
		p = c.br.find(part.parent)
	}
	return true
}

func (c *Curator) volumeSlot(venue *vvi.Venue, v key.Key, label string) *vvi.Volume {
	slot, _ := venue.AddVolume(label)
	if slot.ID.IsZero() {
		slot.ID = c.newEntity(c.br, "")
		c.parts[slot.ID] = containment{parent: v, typ: typeVolume, label: label}
	}
	return slot
}

func (c *Curator) issueSlot(
	add func(string) (*vvi.Issue, bool),
	parent key.Key,
	label string,
) *vvi.Issue {
	slot, _ := add(label)
	if slot.ID.IsZero() {
		slot.ID = c.newEntity(c.br, "")
		c.parts[slot.ID] = containment{parent: parent, typ: typeIssue, label: label}
	}
	return slot
}

// claim puts a resource into a volume or issue slot. A wannabe gives way
// to a permanent key, two wannabes merge, two permanent keys are a fatal
// conflict. Conflict entities never take a slot.
func (c *Curator) claim(ctx context.Context, slot *key.Key, own key.Key) error {
	o := c.br.find(own)
	if c.br.isConflict(o) {
		return nil
	}
	if slot.IsZero() {
		*slot = o
		return nil
	}
	s := c.br.find(*slot)
	switch {
	case s == o:
	case s.IsWannabe():
		if err := c.ensureBR(ctx, o); err != nil {
			return err
		}
		c.br.merge(o, s, "")
		c.moveContainment(s, o)
	case o.IsWannabe():
		if err := c.ensureBR(ctx, s); err != nil {
			return err
		}
		c.br.merge(s, o, "")
		c.moveContainment(o, s)
	default:
		return fmt.Errorf("%w: %s and %s", ErrVenueSlotConflict, s, o)
	}
	*slot = c.br.find(o)
	return nil
}

// moveContainment keeps the containment of an absorbed resource.
func (c *Curator) moveContainment(from, to key.Key) {
	part, ok := c.parts[from]
	if !ok {
		return
	}
	delete(c.parts, from)
	if _, ok := c.parts[to]; !ok {
		c.parts[to] = part
	}
}

// ensureBR brings a permanent resource that is only referenced by the
// containment structure into the batch.
func (c *Curator) ensureBR(ctx context.Context, k key.Key) error {
	if k.IsWannabe() {
		return nil
	}
	if _, ok := c.br.get(k); ok {
		return nil
	}
	ent, found, err := c.finder.FromMeta(ctx, key.BR, k.Meta(), false)
	if err != nil {
		return err
	}
	if !found {
		c.br.add(k, "", false)
		return nil
	}
	c.materialize(c.br, ent)
	return nil
}

// venueTable returns volumes and issues of a venue. Stored venues are
// loaded from the store once; tables of venues merged into this one are
// folded in.
func (c *Curator) venueTable(ctx context.Context, v key.Key) (*vvi.Venue, error) {
	root := c.br.find(v)
	t, ok := c.venues[root]
	if !ok {
		if root.IsWannabe() {
			t = vvi.NewVenue()
		} else {
			var err error
			t, err = c.finder.Venue(ctx, root.Meta())
			if err != nil {
				return nil, err
			}
		}
		c.venues[root] = t
		c.venueOrder = append(c.venueOrder, root)
	}

	for _, k := range c.venueOrder {
		old, ok := c.venues[k]
		if !ok || k == root || c.br.find(k) != root {
			continue
		}
		delete(c.venues, k)
		if err := c.mergeVenue(ctx, t, old); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (c *Curator) mergeVenue(ctx context.Context, dst, src *vvi.Venue) error {
	for _, label := range vvi.Labels(src.Volumes) {
		sv := src.Volumes[label]
		dv, _ := dst.AddVolume(label)
		if err := c.claim(ctx, &dv.ID, sv.ID); err != nil {
			return err
		}
		if err := c.mergeIssues(ctx, dv.Issues, sv.Issues); err != nil {
			return err
		}
	}
	return c.mergeIssues(ctx, dst.Issues, src.Issues)
}

func (c *Curator) mergeIssues(ctx context.Context, dst, src map[string]*vvi.Issue) error {
	for _, label := range vvi.Labels(src) {
		di, ok := dst[label]
		if !ok {
			di = &vvi.Issue{}
			dst[label] = di
		}
		if err := c.claim(ctx, &di.ID, src[label].ID); err != nil {
			return err
		}
	}
	return nil
}

// setVenueType derives the type of a venue from the type of its content.
func (c *Curator) setVenueType(v key.Key, rowType string) {
	typ := clean.VenueType(rowType)
	if typ == "" {
		return
	}
	v = c.br.find(v)
	part := c.parts[v]
	if part.typ == "" {
		part.typ = typ
		c.parts[v] = part
	}
}

package curator

import (
	"context"
	"strings"

	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/ent/key"
	"github.com/gnames/gncurator/internal/ent/row"
)

// assignMeta allocates permanent keys for all surviving wannabes,
// resources first, then agents, in the order they appeared.
func (c *Curator) assignMeta() error {
	for _, reg := range []*registry{c.br, c.ra} {
		for _, k := range reg.live() {
			if !k.IsWannabe() {
				reg.final[k] = k.Meta()
				continue
			}
			meta, err := c.alloc.Next(reg.kind)
			if err != nil {
				return err
			}
			reg.final[k] = meta
		}
	}
	return nil
}

// enrich assigns page embodiments and rewrites rows with canonical values.
func (c *Curator) enrich(ctx context.Context) error {
	c.consolidate()
	for i := range c.rows {
		if err := c.page(ctx, i); err != nil {
			return err
		}
	}

	venues := make(map[key.Key]key.Key)
	for i := range c.rows {
		v := c.state[i].venue
		br := c.br.find(c.state[i].br)
		if _, ok := venues[br]; !ok && !v.IsZero() {
			venues[br] = v
		}
	}

	for i := range c.rows {
		r := &c.rows[i]
		br := c.br.find(c.state[i].br)
		e := c.br.ents[br]

		ids := append([]string{key.OMID(key.BR, c.br.resolve(br))}, e.ids...)
		r.ID = strings.Join(ids, " ")
		r.Title = e.title

		r.Venue = ""
		if v, ok := venues[br]; ok {
			r.Venue = c.render(c.br, v)
		}

		rs := c.seqs[br]
		for _, role := range row.Roles {
			if rs == nil {
				r.SetAgents(role, "")
				continue
			}
			links := rs.lists[role]
			parts := make([]string, len(links))
			for j, l := range links {
				parts[j] = c.render(c.ra, l.ra)
			}
			r.SetAgents(role, strings.Join(parts, "; "))
		}
	}
	return nil
}

// consolidate moves pages and containment recorded under absorbed keys to
// their survivors.
func (c *Curator) consolidate() {
	pages := make(map[key.Key]finder.Page, len(c.pages))
	for _, k := range c.br.order {
		p, ok := c.pages[k]
		if !ok {
			continue
		}
		if _, ok := pages[c.br.find(k)]; !ok {
			pages[c.br.find(k)] = p
		}
	}
	c.pages = pages

	parts := make(map[key.Key]containment, len(c.parts))
	for _, k := range c.br.order {
		part, ok := c.parts[k]
		if !ok {
			continue
		}
		root := c.br.find(k)
		cur := parts[root]
		if cur.parent.IsZero() {
			cur.parent = part.parent
		}
		if cur.typ == "" {
			cur.typ, cur.label = part.typ, part.label
		}
		parts[root] = cur
	}
	c.parts = parts
}

// page finds or creates the page embodiment of a row resource. Stored
// embodiments win over the row value.
func (c *Curator) page(ctx context.Context, i int) error {
	r := &c.rows[i]
	br := c.br.find(c.state[i].br)
	if p, ok := c.pages[br]; ok {
		r.Page = p.Range
		return nil
	}
	if r.Page == "" {
		return nil
	}
	if !br.IsWannabe() {
		p, found, err := c.finder.RE(ctx, br.Meta())
		if err != nil {
			return err
		}
		if found {
			c.pages[br] = p
			r.Page = p.Range
			return nil
		}
	}
	meta, err := c.alloc.Next(key.RE)
	if err != nil {
		return err
	}
	c.pages[br] = finder.Page{Meta: meta, Range: r.Page}
	return nil
}

func (c *Curator) render(reg *registry, k key.Key) string {
	root := reg.find(k)
	var ids []string
	var title string
	if e, ok := reg.ents[root]; ok {
		ids = append(ids, e.ids...)
		title = e.title
	}
	ids = append(ids, key.OMID(reg.kind, reg.resolve(root)))
	return row.Render(title, ids)
}

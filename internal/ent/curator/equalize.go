package curator

import (
	"context"
	"strings"

	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/ent/key"
	"github.com/gnames/gncurator/internal/ent/row"
)

// equalize brings stored attributes of an existing resource to its row.
// Stored values win over different values of the row, empty venue and
// agent fields are filled from the store.
func (c *Curator) equalize(ctx context.Context, i int) error {
	k := c.br.find(c.state[i].br)
	if k.IsWannabe() || c.br.isConflict(k) {
		return nil
	}
	info, found, err := c.finder.BRInfo(ctx, k.Meta())
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	r := &c.rows[i]
	c.propose(i, "pub_date", info.PubDate)
	c.propose(i, "type", info.Type)
	c.propose(i, "volume", info.Volume)
	c.propose(i, "issue", info.Issue)
	if info.Page.Range != "" {
		c.propose(i, "page", info.Page.Range)
		if _, ok := c.pages[k]; !ok && info.Page.Meta != "" {
			c.pages[k] = info.Page
		}
	}

	if r.Venue == "" && info.Venue != "" {
		venue, found, err := c.finder.FromMeta(ctx, key.BR, info.Venue, false)
		if err != nil {
			return err
		}
		if found {
			r.Venue = renderStored(venue, key.BR)
		}
	}

	for _, role := range row.Roles {
		if r.Agents(role) != "" {
			continue
		}
		agents, err := c.finder.RASequence(ctx, k.Meta(), role)
		if err != nil {
			return err
		}
		parts := make([]string, len(agents))
		for j := range agents {
			parts[j] = renderStored(agents[j].RA, key.RA)
		}
		r.SetAgents(role, strings.Join(parts, "; "))
	}
	return nil
}

func renderStored(e finder.Entity, kind key.Kind) string {
	ids := make([]string, 0, len(e.IDs)+1)
	for _, id := range e.IDs {
		ids = append(ids, id.Token)
	}
	ids = append(ids, key.OMID(kind, e.Meta))
	return row.Render(e.Title, ids)
}

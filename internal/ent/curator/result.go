package curator

import (
	"context"

	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/ent/key"
	"github.com/gnames/gncurator/internal/ent/row"
	"github.com/gnames/gncurator/internal/ent/vvi"
)

// IDRecord maps an external identifier to the key of its identifier
// entity.
type IDRecord struct {
	Token string
	Meta  string
}

// ARLink is an agent role and its agent.
type ARLink struct {
	AR string
	RA string
}

// ARRecord keeps agent sequences of a resource.
type ARRecord struct {
	BR        string
	Author    []ARLink
	Editor    []ARLink
	Publisher []ARLink
}

// Links returns the sequence of a role.
func (a ARRecord) Links(role row.Role) []ARLink {
	switch role {
	case row.Author:
		return a.Author
	case row.Editor:
		return a.Editor
	case row.Publisher:
		return a.Publisher
	}
	return nil
}

// RERecord is a page embodiment of a resource.
type RERecord struct {
	BR    string
	RE    string
	Range string
}

// BRRecord is a resolved bibliographic resource.
type BRRecord struct {
	Meta    string
	Title   string
	Type    string
	PubDate string

	// PartOf is the key of the containing resource.
	PartOf string

	// Label is a volume or issue number.
	Label string

	IDs []finder.IDRef
}

// RARecord is a resolved agent.
type RARecord struct {
	Meta string
	Name string
	IDs  []finder.IDRef
}

// Result is the outcome of curating a batch.
type Result struct {
	// Rows are rewritten input rows.
	Rows []row.Row

	// IDBR maps identifiers of resources to identifier entities.
	IDBR []IDRecord

	// IDRA maps identifiers of agents to identifier entities.
	IDRA []IDRecord

	// AR are agent sequences of resources.
	AR []ARRecord

	// RE are page embodiments.
	RE []RERecord

	// VI is the containment index of venues.
	VI map[string]vvi.VenueIndex

	// Log keeps annotations of rows, by row index.
	Log map[int]map[string]FieldLog

	// BRs are all resources of the batch.
	BRs []BRRecord

	// RAs are all agents of the batch.
	RAs []RARecord
}

// foldVenues merges venue tables recorded under absorbed keys into the
// tables of their survivors.
func (c *Curator) foldVenues(ctx context.Context) error {
	for _, k := range c.venueOrder {
		if _, ok := c.venues[k]; !ok || c.br.find(k) == k {
			continue
		}
		if _, err := c.venueTable(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (c *Curator) result() *Result {
	res := Result{
		Rows: c.rows,
		IDBR: idRecords(c.idBR),
		IDRA: idRecords(c.idRA),
		VI:   make(map[string]vvi.VenueIndex),
		Log: c.log.build(func(kind key.Kind, k key.Key) string {
			return c.registry(kind).resolve(k)
		}),
	}

	for _, k := range c.seqOrder {
		rs, ok := c.seqs[k]
		if !ok {
			continue
		}
		rec := ARRecord{
			BR:        c.br.resolve(k),
			Author:    c.arLinks(rs.lists[row.Author]),
			Editor:    c.arLinks(rs.lists[row.Editor]),
			Publisher: c.arLinks(rs.lists[row.Publisher]),
		}
		if len(rec.Author)+len(rec.Editor)+len(rec.Publisher) > 0 {
			res.AR = append(res.AR, rec)
		}
	}

	for _, k := range c.br.order {
		if p, ok := c.pages[k]; ok {
			res.RE = append(res.RE, RERecord{
				BR: c.br.resolve(k), RE: p.Meta, Range: p.Range,
			})
		}
	}

	for _, k := range c.venueOrder {
		if t, ok := c.venues[k]; ok {
			res.VI[c.br.resolve(k)] = t.Index(c.br.resolve)
		}
	}

	res.BRs = c.brRecords()
	for _, k := range c.ra.live() {
		e := c.ra.ents[k]
		res.RAs = append(res.RAs, RARecord{
			Meta: c.ra.final[k],
			Name: e.title,
			IDs:  idRefs(e.ids, c.idRA),
		})
	}
	return &res
}

func (c *Curator) brRecords() []BRRecord {
	attrs := make(map[key.Key]row.Row)
	for i := range c.rows {
		k := c.br.find(c.state[i].br)
		if _, ok := attrs[k]; !ok {
			attrs[k] = c.rows[i]
		}
	}

	var res []BRRecord
	for _, k := range c.br.live() {
		e := c.br.ents[k]
		rec := BRRecord{
			Meta:  c.br.final[k],
			Title: e.title,
			IDs:   idRefs(e.ids, c.idBR),
		}
		if r, ok := attrs[k]; ok {
			rec.Type = r.Type
			rec.PubDate = r.PubDate
		}
		if part, ok := c.parts[k]; ok {
			if !part.parent.IsZero() {
				rec.PartOf = c.br.resolve(part.parent)
			}
			rec.Label = part.label
			if rec.Type == "" {
				rec.Type = part.typ
			}
		}
		res = append(res, rec)
	}
	return res
}

func (c *Curator) arLinks(links []link) []ARLink {
	res := make([]ARLink, len(links))
	for i, l := range links {
		res[i] = ARLink{AR: l.ar, RA: c.ra.resolve(l.ra)}
	}
	return res
}

func idRecords(idx *idIndex) []IDRecord {
	res := make([]IDRecord, len(idx.order))
	for i, t := range idx.order {
		res[i] = IDRecord{Token: t, Meta: idx.metas[t]}
	}
	return res
}

func idRefs(tokens []string, idx *idIndex) []finder.IDRef {
	res := make([]finder.IDRef, len(tokens))
	for i, t := range tokens {
		m, _ := idx.get(t)
		res[i] = finder.IDRef{Meta: m, Token: t}
	}
	return res
}

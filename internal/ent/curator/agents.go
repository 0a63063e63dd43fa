package curator

import (
	"context"
	"strings"

	"github.com/gnames/gncurator/internal/ent/clean"
	"github.com/gnames/gncurator/internal/ent/identifier"
	"github.com/gnames/gncurator/internal/ent/key"
	"github.com/gnames/gncurator/internal/ent/row"
)

// link is an element of an agent-role sequence.
type link struct {
	ar string
	ra key.Key
}

// roleSeqs are agent sequences of one resource.
type roleSeqs struct {
	lists  map[row.Role][]link
	seeded map[row.Role]bool
}

func newRoleSeqs() *roleSeqs {
	return &roleSeqs{
		lists:  make(map[row.Role][]link),
		seeded: make(map[row.Role]bool),
	}
}

// cleanAgents resolves agents of a role and reconciles them with the
// known sequence of the resource. Known agents keep their positions, new
// agents are appended.
func (c *Curator) cleanAgents(ctx context.Context, i int, role row.Role) error {
	raw := c.rows[i].Agents(role)
	if raw == "" {
		return nil
	}
	br := c.br.find(c.state[i].br)
	rs, err := c.seqFor(ctx, br, role)
	if err != nil {
		return err
	}

	publisher := role == row.Publisher
	prior := rs.lists[role]
	var added []link
	var changeOrder bool
	for pos, item := range row.SplitAgents(raw) {
		name, rawIDs, _ := row.NameIDs(item)
		name = agentName(name, publisher)
		norm := identifier.Normalize(rawIDs, c.sep, key.RA)
		req := request{
			row:       i,
			field:     string(role),
			name:      name,
			ids:       norm.Tokens,
			meta:      norm.Meta,
			kind:      key.RA,
			publisher: publisher,
		}

		var k key.Key
		hit := c.seqHit(prior, name, norm)
		switch {
		case hit >= 0:
			if hit != pos {
				changeOrder = true
			}
			k = c.ra.find(prior[hit].ra)
			if len(norm.Tokens) > 0 {
				if !k.IsWannabe() {
					req.meta = k.Meta()
				}
				found, err := c.idWorker(ctx, req)
				if err != nil {
					return err
				}
				if !c.ra.isConflict(found) {
					k = found
				}
			}

		case len(norm.Tokens) == 0 && norm.Meta == "":
			if !publisher {
				k = c.sameName(br, role, name)
			}
			if k.IsZero() {
				k = c.newEntity(c.ra, name)
			}
			if added, err = c.appendLink(added, k); err != nil {
				return err
			}

		default:
			if k, err = c.idWorker(ctx, req); err != nil {
				return err
			}
			if !publisher {
				c.reconcileRoles(br, role, k)
			}
			if added, err = c.appendLink(added, k); err != nil {
				return err
			}
		}
		if !publisher {
			c.refineName(k, name)
		}
	}

	if changeOrder {
		c.log.info(i, string(role), InfoRefused)
	}
	rs.lists[role] = append(rs.lists[role], added...)
	return nil
}

func (c *Curator) appendLink(links []link, k key.Key) ([]link, error) {
	ar, err := c.alloc.Next(key.AR)
	if err != nil {
		return nil, err
	}
	return append(links, link{ar: ar, ra: k}), nil
}

// seqHit finds an agent of a sequence by identifiers, or by name if the
// incoming agent has no identifiers.
func (c *Curator) seqHit(prior []link, name string, norm identifier.Result) int {
	if len(norm.Tokens) == 0 && norm.Meta == "" {
		for idx := range prior {
			if e, ok := c.ra.get(prior[idx].ra); ok && sameTitle(e.title, name) {
				return idx
			}
		}
		return -1
	}
	for idx := range prior {
		k := c.ra.find(prior[idx].ra)
		if norm.Meta != "" && k.Meta() == norm.Meta {
			return idx
		}
		e, ok := c.ra.ents[k]
		if !ok {
			continue
		}
		for _, t := range norm.Tokens {
			if e.hasID(t) {
				return idx
			}
		}
	}
	return -1
}

// seqFor returns agent sequences of a resource. A stored resource gets its
// stored sequence the first time a role is touched in the batch.
// Sequences of resources merged into this one are folded in.
func (c *Curator) seqFor(ctx context.Context, br key.Key, role row.Role) (*roleSeqs, error) {
	rs, ok := c.seqs[br]
	if !ok {
		rs = newRoleSeqs()
		c.seqs[br] = rs
		c.seqOrder = append(c.seqOrder, br)
	}
	c.foldSeqs(br, rs)

	if err := c.seedStored(ctx, br, rs, role); err != nil {
		return nil, err
	}
	return rs, nil
}

// seedStored puts the stored sequence of a role in front of the links
// collected in the batch. It happens once per resource and role.
func (c *Curator) seedStored(ctx context.Context, br key.Key, rs *roleSeqs, role row.Role) error {
	if rs.seeded[role] {
		return nil
	}
	rs.seeded[role] = true
	if br.IsWannabe() {
		return nil
	}
	agents, err := c.finder.RASequence(ctx, br.Meta(), role)
	if err != nil {
		return err
	}
	stored := make([]link, len(agents))
	for j := range agents {
		stored[j] = link{ar: agents[j].AR, ra: c.materialize(c.ra, agents[j].RA)}
	}
	rs.lists[role] = c.joinLinks(stored, rs.lists[role])
	return nil
}

// settleSeqs folds sequences of absorbed resources into their survivors.
// A permanent survivor that was a wannabe when its agents were read gets
// its stored sequences now.
func (c *Curator) settleSeqs(ctx context.Context) error {
	for _, k := range c.seqOrder {
		root := c.br.find(k)
		if _, ok := c.seqs[k]; !ok || root == k {
			continue
		}
		rs, ok := c.seqs[root]
		if !ok {
			rs = newRoleSeqs()
			c.seqs[root] = rs
			c.seqOrder = append(c.seqOrder, root)
		}
		c.foldSeqs(root, rs)
	}

	for _, k := range c.seqOrder {
		rs, ok := c.seqs[k]
		if !ok || k.IsWannabe() || c.br.find(k) != k {
			continue
		}
		for _, role := range row.Roles {
			if len(rs.lists[role]) == 0 {
				continue
			}
			if err := c.seedStored(ctx, k, rs, role); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Curator) foldSeqs(br key.Key, rs *roleSeqs) {
	for _, k := range c.seqOrder {
		old, ok := c.seqs[k]
		if !ok || k == br || c.br.find(k) != br {
			continue
		}
		delete(c.seqs, k)
		for _, role := range row.Roles {
			rs.lists[role] = c.joinLinks(rs.lists[role], old.lists[role])
			if br.IsWannabe() {
				rs.seeded[role] = rs.seeded[role] || old.seeded[role]
			}
		}
	}
}

// joinLinks appends links of agents that are not in the first sequence.
func (c *Curator) joinLinks(a, b []link) []link {
	seen := make(map[key.Key]struct{}, len(a))
	for _, l := range a {
		seen[c.ra.find(l.ra)] = struct{}{}
	}
	for _, l := range b {
		if _, ok := seen[c.ra.find(l.ra)]; ok {
			continue
		}
		seen[c.ra.find(l.ra)] = struct{}{}
		a = append(a, l)
	}
	return a
}

// sameName finds an agent with the same name in another person role of
// the resource.
func (c *Curator) sameName(br key.Key, role row.Role, name string) key.Key {
	rs, ok := c.seqs[br]
	if !ok {
		return key.Key{}
	}
	for _, other := range []row.Role{row.Author, row.Editor} {
		if other == role {
			continue
		}
		for _, l := range rs.lists[other] {
			k := c.ra.find(l.ra)
			if e, ok := c.ra.ents[k]; ok && !e.conflict && sameTitle(e.title, name) {
				return k
			}
		}
	}
	return key.Key{}
}

// reconcileRoles merges agents of another person role of the resource
// that have no identifiers and the same name as an identified agent.
func (c *Curator) reconcileRoles(br key.Key, role row.Role, k key.Key) {
	e, ok := c.ra.get(k)
	if !ok || e.conflict {
		return
	}
	rs, ok := c.seqs[br]
	if !ok {
		return
	}
	for _, other := range []row.Role{row.Author, row.Editor} {
		if other == role {
			continue
		}
		for _, l := range rs.lists[other] {
			ak := c.ra.find(l.ra)
			ae, found := c.ra.ents[ak]
			if !found || ak == c.ra.find(k) || !ak.IsWannabe() || ae.conflict ||
				len(ae.ids) > 0 || !sameTitle(ae.title, e.title) {
				continue
			}
			c.ra.merge(k, ak, "")
		}
	}
}

// refineName completes a stored `Family,` name with a given name.
func (c *Curator) refineName(k key.Key, name string) {
	e, ok := c.ra.get(k)
	if !ok {
		return
	}
	family, given, ok := strings.Cut(e.title, ",")
	if !ok || strings.TrimSpace(given) != "" || strings.TrimSpace(family) == "" {
		return
	}
	nFamily, nGiven, ok := strings.Cut(name, ",")
	if !ok || strings.TrimSpace(nGiven) == "" ||
		!strings.EqualFold(strings.TrimSpace(nFamily), strings.TrimSpace(family)) {
		return
	}
	e.title = name
}

func agentName(name string, publisher bool) string {
	if publisher {
		return clean.Spaces(name)
	}
	return clean.Name(name)
}

func sameTitle(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

package sqlio

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/ent/key"
	"github.com/gnames/gncurator/internal/ent/row"
	"github.com/gnames/gncurator/internal/ent/vvi"
)

const (
	typeVolume = "journal volume"
	typeIssue  = "journal issue"

	// maxDepth limits the walk from a resource to its venue.
	maxDepth = 3
)

// BRFromID finds resources that have an identifier.
func (s *sqlio) BRFromID(
	ctx context.Context,
	scheme, value string,
) ([]finder.Entity, error) {
	q := `
SELECT DISTINCT bi.br
  FROM identifiers i
    JOIN br_identifiers bi ON bi.identifier = i.meta
  WHERE i.scheme = ? AND i.value = ?
  ORDER BY bi.br`
	metas, err := s.strings(ctx, q, scheme, value)
	if err != nil {
		return nil, err
	}
	return s.entities(ctx, key.BR, metas)
}

// RAFromID finds agents that have an identifier. Publishers and persons
// share one table.
func (s *sqlio) RAFromID(
	ctx context.Context,
	scheme, value string,
	_ bool,
) ([]finder.Entity, error) {
	q := `
SELECT DISTINCT ri.ra
  FROM identifiers i
    JOIN ra_identifiers ri ON ri.identifier = i.meta
  WHERE i.scheme = ? AND i.value = ?
  ORDER BY ri.ra`
	metas, err := s.strings(ctx, q, scheme, value)
	if err != nil {
		return nil, err
	}
	return s.entities(ctx, key.RA, metas)
}

// BRFromMeta returns a resource by its key.
func (s *sqlio) BRFromMeta(ctx context.Context, meta string) (finder.Entity, bool, error) {
	return s.entity(ctx, key.BR, meta)
}

// RAFromMeta returns an agent by its key.
func (s *sqlio) RAFromMeta(
	ctx context.Context,
	meta string,
	_ bool,
) (finder.Entity, bool, error) {
	return s.entity(ctx, key.RA, meta)
}

// BRInfo returns stored attributes of a resource. Volume and issue labels
// and the venue are found by walking up the containment.
func (s *sqlio) BRInfo(ctx context.Context, meta string) (finder.Info, bool, error) {
	var res finder.Info
	var typ, partOf, label string
	q := s.rebind(`
SELECT COALESCE(type, ''), COALESCE(pub_date, ''),
       COALESCE(part_of, ''), COALESCE(label, '')
  FROM brs WHERE meta = ?`)
	err := s.db.QueryRowContext(ctx, q, meta).Scan(&typ, &res.PubDate, &partOf, &label)
	if errors.Is(err, sql.ErrNoRows) {
		return res, false, nil
	}
	if err != nil {
		return res, false, err
	}
	res.Type = typ

	q = s.rebind(`
SELECT COALESCE(type, ''), COALESCE(part_of, ''), COALESCE(label, '')
  FROM brs WHERE meta = ?`)
	for range maxDepth {
		switch typ {
		case typeIssue:
			res.Issue = label
		case typeVolume:
			res.Volume = label
		}
		if partOf == "" {
			break
		}
		parent := partOf
		err = s.db.QueryRowContext(ctx, q, parent).Scan(&typ, &partOf, &label)
		if errors.Is(err, sql.ErrNoRows) {
			break
		}
		if err != nil {
			return res, false, err
		}
		if typ != typeIssue && typ != typeVolume {
			res.Venue = parent
			break
		}
	}

	if res.Page, _, err = s.RE(ctx, meta); err != nil {
		return res, false, err
	}
	return res, true, nil
}

// RASequence returns agents of a role ordered by their positions.
func (s *sqlio) RASequence(
	ctx context.Context,
	meta string,
	role row.Role,
) ([]finder.Agent, error) {
	q := s.rebind(`
SELECT meta, ra FROM ars
  WHERE br = ? AND role = ?
  ORDER BY position`)
	rows, err := s.db.QueryContext(ctx, q, meta, string(role))
	if err != nil {
		return nil, err
	}
	var links [][2]string
	for rows.Next() {
		var ar, ra string
		if err = rows.Scan(&ar, &ra); err != nil {
			rows.Close()
			return nil, err
		}
		links = append(links, [2]string{ar, ra})
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	res := make([]finder.Agent, 0, len(links))
	for _, l := range links {
		ent, found, err := s.entity(ctx, key.RA, l[1])
		if err != nil {
			return nil, err
		}
		if !found {
			ent = finder.Entity{Meta: l[1]}
		}
		res = append(res, finder.Agent{AR: l[0], RA: ent})
	}
	return res, nil
}

// Venue returns volumes and issues of a venue.
func (s *sqlio) Venue(ctx context.Context, meta string) (*vvi.Venue, error) {
	res := vvi.NewVenue()
	parts, err := s.parts(ctx, meta)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		switch p.typ {
		case typeVolume:
			vol, _ := res.AddVolume(p.label)
			vol.ID = key.Permanent(p.meta)
			issues, err := s.parts(ctx, p.meta)
			if err != nil {
				return nil, err
			}
			for _, iss := range issues {
				if iss.typ != typeIssue {
					continue
				}
				slot, _ := vol.AddIssue(iss.label)
				slot.ID = key.Permanent(iss.meta)
			}
		case typeIssue:
			slot, _ := res.AddIssue(p.label)
			slot.ID = key.Permanent(p.meta)
		}
	}
	return res, nil
}

// RE returns a page embodiment of a resource.
func (s *sqlio) RE(ctx context.Context, meta string) (finder.Page, bool, error) {
	var res finder.Page
	q := s.rebind(`
SELECT meta, COALESCE(page_range, '') FROM res
  WHERE br = ?
  ORDER BY LENGTH(meta), meta
  LIMIT 1`)
	err := s.db.QueryRowContext(ctx, q, meta).Scan(&res.Meta, &res.Range)
	if errors.Is(err, sql.ErrNoRows) {
		return res, false, nil
	}
	if err != nil {
		return res, false, err
	}
	return res, true, nil
}

type part struct {
	meta, typ, label string
}

func (s *sqlio) parts(ctx context.Context, meta string) ([]part, error) {
	q := s.rebind(`
SELECT meta, COALESCE(type, ''), COALESCE(label, '')
  FROM brs WHERE part_of = ?
  ORDER BY LENGTH(meta), meta`)
	rows, err := s.db.QueryContext(ctx, q, meta)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []part
	for rows.Next() {
		var p part
		if err = rows.Scan(&p.meta, &p.typ, &p.label); err != nil {
			return nil, err
		}
		if p.label != "" {
			res = append(res, p)
		}
	}
	return res, rows.Err()
}

func (s *sqlio) strings(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []string
	for rows.Next() {
		var str string
		if err = rows.Scan(&str); err != nil {
			return nil, err
		}
		res = append(res, str)
	}
	return res, rows.Err()
}

func (s *sqlio) entities(
	ctx context.Context,
	kind key.Kind,
	metas []string,
) ([]finder.Entity, error) {
	res := make([]finder.Entity, 0, len(metas))
	for _, m := range metas {
		ent, found, err := s.entity(ctx, kind, m)
		if err != nil {
			return nil, err
		}
		if found {
			res = append(res, ent)
		}
	}
	return res, nil
}

func (s *sqlio) entity(
	ctx context.Context,
	kind key.Kind,
	meta string,
) (finder.Entity, bool, error) {
	tbl, col, link, linkCol := "brs", "title", "br_identifiers", "br"
	if kind == key.RA {
		tbl, col, link, linkCol = "ras", "name", "ra_identifiers", "ra"
	}

	res := finder.Entity{Meta: meta}
	q := s.rebind("SELECT COALESCE(" + col + ", '') FROM " + tbl + " WHERE meta = ?")
	err := s.db.QueryRowContext(ctx, q, meta).Scan(&res.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return res, false, nil
	}
	if err != nil {
		return res, false, err
	}

	q = s.rebind(`
SELECT i.meta, i.scheme, i.value
  FROM ` + link + ` l
    JOIN identifiers i ON i.meta = l.identifier
  WHERE l.` + linkCol + ` = ?
  ORDER BY LENGTH(i.meta), i.meta`)
	rows, err := s.db.QueryContext(ctx, q, meta)
	if err != nil {
		return res, false, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, scheme, value string
		if err = rows.Scan(&id, &scheme, &value); err != nil {
			return res, false, err
		}
		res.IDs = append(res.IDs, finder.IDRef{Meta: id, Token: scheme + ":" + value})
	}
	return res, true, rows.Err()
}

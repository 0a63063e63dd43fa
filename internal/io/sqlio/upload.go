package sqlio

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gncurator/internal/ent/curator"
	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/ent/identifier"
	"github.com/gnames/gncurator/internal/ent/row"
)

// Upload writes all entities of a curated batch in one transaction.
// Non-empty values of the batch replace stored ones.
func (s *sqlio) Upload(ctx context.Context, res *curator.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	u := uploader{s: s, tx: tx}

	steps := []struct {
		name string
		fn   func(context.Context, *curator.Result) error
	}{
		{"identifiers", u.identifiers},
		{"resources", u.resources},
		{"agents", u.agents},
		{"agent roles", u.roles},
		{"embodiments", u.embodiments},
	}
	for _, st := range steps {
		if err = st.fn(ctx, res); err != nil {
			tx.Rollback()
			return fmt.Errorf("uploading %s: %w", st.name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	slog.Info("Uploaded batch",
		"resources", humanize.Comma(int64(len(res.BRs))),
		"agents", humanize.Comma(int64(len(res.RAs))),
	)
	return nil
}

type uploader struct {
	s  *sqlio
	tx *sql.Tx
}

func (u uploader) exec(ctx context.Context, q string, args ...any) error {
	_, err := u.tx.ExecContext(ctx, u.s.rebind(q), args...)
	return err
}

func (u uploader) identifiers(ctx context.Context, res *curator.Result) error {
	q := `
INSERT INTO identifiers (meta, scheme, value) VALUES (?, ?, ?)
  ON CONFLICT (meta) DO NOTHING`
	for _, recs := range [][]curator.IDRecord{res.IDBR, res.IDRA} {
		for _, rec := range recs {
			scheme, value, ok := identifier.Split(rec.Token)
			if !ok {
				continue
			}
			if err := u.exec(ctx, q, rec.Meta, scheme, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (u uploader) resources(ctx context.Context, res *curator.Result) error {
	q := `
INSERT INTO brs (meta, title, type, pub_date, part_of, label)
  VALUES (?, ?, ?, ?, ?, ?)
  ON CONFLICT (meta) DO UPDATE SET
    title = COALESCE(NULLIF(excluded.title, ''), brs.title),
    type = COALESCE(NULLIF(excluded.type, ''), brs.type),
    pub_date = COALESCE(NULLIF(excluded.pub_date, ''), brs.pub_date),
    part_of = COALESCE(NULLIF(excluded.part_of, ''), brs.part_of),
    label = COALESCE(NULLIF(excluded.label, ''), brs.label)`
	for _, br := range res.BRs {
		err := u.exec(ctx, q,
			br.Meta, br.Title, br.Type, br.PubDate, br.PartOf, br.Label)
		if err != nil {
			return err
		}
		if err = u.links(ctx, "br_identifiers", "br", br.Meta, br.IDs); err != nil {
			return err
		}
	}
	return nil
}

func (u uploader) agents(ctx context.Context, res *curator.Result) error {
	q := `
INSERT INTO ras (meta, name) VALUES (?, ?)
  ON CONFLICT (meta) DO UPDATE SET
    name = COALESCE(NULLIF(excluded.name, ''), ras.name)`
	for _, ra := range res.RAs {
		if err := u.exec(ctx, q, ra.Meta, ra.Name); err != nil {
			return err
		}
		if err := u.links(ctx, "ra_identifiers", "ra", ra.Meta, ra.IDs); err != nil {
			return err
		}
	}
	return nil
}

func (u uploader) links(
	ctx context.Context,
	tbl, col, meta string,
	ids []finder.IDRef,
) error {
	q := `INSERT INTO ` + tbl + ` (` + col + `, identifier) VALUES (?, ?)
  ON CONFLICT DO NOTHING`
	for _, id := range ids {
		if id.Meta == "" {
			continue
		}
		if err := u.exec(ctx, q, meta, id.Meta); err != nil {
			return err
		}
	}
	return nil
}

func (u uploader) roles(ctx context.Context, res *curator.Result) error {
	q := `
INSERT INTO ars (meta, br, ra, role, position) VALUES (?, ?, ?, ?, ?)
  ON CONFLICT (meta) DO UPDATE SET
    ra = excluded.ra,
    position = excluded.position`
	for _, rec := range res.AR {
		for _, role := range row.Roles {
			for i, l := range rec.Links(role) {
				if err := u.exec(ctx, q, l.AR, rec.BR, l.RA, string(role), i); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (u uploader) embodiments(ctx context.Context, res *curator.Result) error {
	q := `
INSERT INTO res (meta, br, page_range) VALUES (?, ?, ?)
  ON CONFLICT (meta) DO NOTHING`
	for _, re := range res.RE {
		if err := u.exec(ctx, q, re.RE, re.BR, re.Range); err != nil {
			return err
		}
	}
	return nil
}

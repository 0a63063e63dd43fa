package csvio

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnames/gncurator/internal/ent/batch"
	"github.com/gnames/gncurator/internal/ent/curator"
	"github.com/gnames/gncurator/internal/ent/row"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnsys"
)

type writer struct {
	dir string
}

// NewWriter creates a writer that saves batches to a directory.
func NewWriter(dir string) (batch.Writer, error) {
	if err := gnsys.MakeDir(dir); err != nil {
		slog.Error("Cannot create output directory", "error", err, "dir", dir)
		return nil, err
	}
	return writer{dir: dir}, nil
}

// Write saves curated rows, index tables, containment and the log of a
// batch.
func (w writer) Write(name string, res *curator.Result) error {
	data := make([][]string, 0, len(res.Rows)+1)
	data = append(data, row.Columns)
	for i := range res.Rows {
		data = append(data, res.Rows[i].Record())
	}

	ar := [][]string{{"meta", "author", "editor", "publisher"}}
	for _, rec := range res.AR {
		ar = append(ar, []string{
			rec.BR,
			links(rec.Author),
			links(rec.Editor),
			links(rec.Publisher),
		})
	}

	re := [][]string{{"br", "re"}}
	for _, rec := range res.RE {
		re = append(re, []string{rec.BR, rec.RE})
	}

	tables := []struct {
		prefix  string
		records [][]string
	}{
		{"data_", data},
		{"index_id_br_", ids(res.IDBR)},
		{"index_id_ra_", ids(res.IDRA)},
		{"index_ar_", ar},
		{"index_re_", re},
	}
	for _, t := range tables {
		if err := w.csv(t.prefix+name+".csv", t.records); err != nil {
			return err
		}
	}

	if err := w.json("index_vi_"+name+".json", res.VI); err != nil {
		return err
	}
	return w.json("log_"+name+".json", res.Log)
}

func (w writer) csv(file string, records [][]string) error {
	path := filepath.Join(w.dir, file)
	f, err := os.Create(path)
	if err != nil {
		slog.Error("Cannot create file", "error", err, "path", path)
		return err
	}
	cw := csv.NewWriter(f)
	if err = cw.WriteAll(records); err != nil {
		f.Close()
		slog.Error("Cannot write file", "error", err, "path", path)
		return err
	}
	return f.Close()
}

func (w writer) json(file string, v any) error {
	enc := gnfmt.GNjson{Pretty: true}
	data, err := enc.Encode(v)
	if err != nil {
		slog.Error("Cannot encode data", "error", err, "file", file)
		return err
	}
	return os.WriteFile(filepath.Join(w.dir, file), data, 0644)
}

func ids(recs []curator.IDRecord) [][]string {
	res := [][]string{{"id", "meta"}}
	for _, rec := range recs {
		res = append(res, []string{rec.Token, rec.Meta})
	}
	return res
}

func links(ls []curator.ARLink) string {
	parts := make([]string, len(ls))
	for i, l := range ls {
		parts[i] = l.AR + ", " + l.RA
	}
	return strings.Join(parts, "; ")
}

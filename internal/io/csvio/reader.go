// Package csvio reads input rows from CSV or TSV files, plain or
// compressed, and writes curated batches with their index tables and logs.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnames/gncurator/internal/ent/batch"
	"github.com/gnames/gncurator/internal/ent/row"
	gzip "github.com/klauspost/pgzip"
)

type reader struct{}

// NewReader creates a reader of input files. Files with `.tsv` extension
// are tab-separated, `.gz` files are decompressed.
func NewReader() batch.Reader {
	return reader{}
}

// BatchName returns the name of a batch that comes from a file.
func BatchName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".gz")
	for _, ext := range []string{".csv", ".tsv"} {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// Read returns all rows of a file.
func (reader) Read(path string) ([]row.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("Cannot open input file", "error", err, "path", path)
		return nil, err
	}
	defer f.Close()

	var in io.Reader = f
	name := strings.TrimSuffix(path, ".gz")
	if name != path {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("cannot decompress %s: %w", path, err)
		}
		defer gz.Close()
		in = gz
	}

	cr := csv.NewReader(in)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	if strings.HasSuffix(name, ".tsv") {
		cr.Comma = '\t'
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read header of %s: %w", path, err)
	}
	fields := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		fields[h] = i
	}

	var res []row.Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
		var r row.Row
		for _, col := range row.Columns {
			if i, ok := fields[col]; ok && i < len(rec) {
				r.Set(col, rec[i])
			}
		}
		res = append(res, r)
	}
	return res, nil
}

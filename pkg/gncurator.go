// Package gncurator curates batches of bibliographic metadata. Files are
// distributed among workers; every worker has its own supplier prefix,
// counters and caches.
package gncurator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gncurator/internal/ent/batch"
	"github.com/gnames/gncurator/internal/ent/counter"
	"github.com/gnames/gncurator/internal/ent/curator"
	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/io/csvio"
	"github.com/gnames/gncurator/pkg/config"
	"github.com/gnames/gnsys"
	"golang.org/x/sync/errgroup"
)

// ErrDuplicateBatch means that two input files would produce outputs with
// the same names.
var ErrDuplicateBatch = errors.New("duplicate batch name")

// gncurator is an implementation of GNcurator interface.
type gncurator struct {
	cfg      config.Config
	store    finder.Store
	counters counter.Factory
	reader   batch.Reader
	writer   batch.Writer

	rowsNum  atomic.Int64
	filesNum atomic.Int64
}

// New creates a new instance of GNcurator.
func New(
	cfg config.Config,
	store finder.Store,
	counters counter.Factory,
	r batch.Reader,
	w batch.Writer,
) GNcurator {
	res := gncurator{
		cfg:      cfg,
		store:    store,
		counters: counters,
		reader:   r,
		writer:   w,
	}
	return &res
}

// Curate processes files with concurrent workers. A fatal error of one
// worker stops all of them.
func (g *gncurator) Curate(ctx context.Context, files []string) error {
	if err := checkBatchNames(files); err != nil {
		slog.Error("Cannot curate files", "error", err)
		return err
	}

	prefixes := counter.Prefixes(g.cfg.Prefix, g.cfg.WorkersNum)
	chIn := make(chan string, len(files))
	for _, f := range files {
		chIn <- f
	}
	close(chIn)

	gr, ctx := errgroup.WithContext(ctx)
	for _, prefix := range prefixes {
		gr.Go(func() error {
			return g.worker(ctx, prefix, chIn)
		})
	}

	if err := gr.Wait(); err != nil {
		return err
	}
	slog.Info("Curation is finished",
		"files", humanize.Comma(g.filesNum.Load()),
		"rows", humanize.Comma(g.rowsNum.Load()),
	)
	return nil
}

// checkBatchNames makes sure that outputs of one file do not overwrite
// outputs of another.
func checkBatchNames(files []string) error {
	names := make(map[string]string, len(files))
	for _, f := range files {
		name := csvio.BatchName(f)
		if prev, ok := names[name]; ok {
			return fmt.Errorf("%w: '%s' and '%s' are both '%s'",
				ErrDuplicateBatch, prev, f, name)
		}
		names[name] = f
	}
	return nil
}

func (g *gncurator) worker(
	ctx context.Context,
	prefix string,
	chIn <-chan string,
) error {
	cnt, err := g.counters(prefix)
	if err != nil {
		slog.Error("Cannot create counters", "error", err, "prefix", prefix)
		return err
	}
	alloc := counter.NewAllocator(cnt, prefix)

	for path := range chIn {
		if err = ctx.Err(); err != nil {
			return err
		}
		if g.stopped() {
			slog.Info("Stop file found, worker exits", "prefix", prefix)
			return nil
		}
		if err = g.curateFile(ctx, alloc, path); err != nil {
			return err
		}
	}
	return nil
}

func (g *gncurator) stopped() bool {
	if g.cfg.StopFile == "" {
		return false
	}
	exists, _ := gnsys.FileExists(g.cfg.StopFile)
	return exists
}

func (g *gncurator) curateFile(
	ctx context.Context,
	alloc *counter.Allocator,
	path string,
) error {
	name := csvio.BatchName(path)
	slog.Info("Curating file", "path", path, "prefix", alloc.Prefix())
	rows, err := g.reader.Read(path)
	if err != nil {
		return err
	}

	c := curator.New(finder.New(g.store), alloc, curator.OptSeparator(g.cfg.Separator))
	res, err := c.Curate(ctx, rows)
	if err != nil {
		slog.Error("Cannot curate file", "error", err, "path", path)
		return fmt.Errorf("curating %s: %w", path, err)
	}

	if err = g.writer.Write(name, res); err != nil {
		return fmt.Errorf("writing batch %s: %w", name, err)
	}

	if up, ok := g.store.(batch.Uploader); ok && g.cfg.Upload {
		if err = up.Upload(ctx, res); err != nil {
			slog.Error("Cannot upload batch", "error", err, "batch", name)
			return fmt.Errorf("uploading batch %s: %w", name, err)
		}
	}

	g.filesNum.Add(1)
	total := g.rowsNum.Add(int64(len(rows)))
	slog.Info("Curated file",
		"batch", name,
		"rows", humanize.Comma(int64(len(rows))),
		"total", humanize.Comma(total),
	)
	return nil
}

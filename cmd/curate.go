// Copyright © 2020 Dmitry Mozzherin <dmozzherin@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gnames/gncurator/internal/ent/counter"
	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/io/counterio"
	"github.com/gnames/gncurator/internal/io/csvio"
	"github.com/gnames/gncurator/internal/io/kvio"
	"github.com/gnames/gncurator/internal/io/sparqlio"
	"github.com/gnames/gncurator/internal/io/sqlio"
	gncurator "github.com/gnames/gncurator/pkg"
	"github.com/gnames/gncurator/pkg/config"
	"github.com/spf13/cobra"
)

// curateCmd represents the curate command
var curateCmd = &cobra.Command{
	Use:   "curate [flags] file_or_dir ...",
	Short: "Curates CSV batches and writes them with permanent identifiers",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flagOpts(cmd)
		cfg := config.New(opts...)

		files, err := inputFiles(args)
		if err != nil {
			slog.Error("Cannot collect input files", "error", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			slog.Warn("No CSV files found", "args", args)
			os.Exit(0)
		}

		store, closeStore, err := newStore(cfg)
		if err != nil {
			slog.Error("Cannot connect to store", "error", err, "store", cfg.StoreType)
			os.Exit(1)
		}
		defer closeStore()

		counters, closeCounters, err := newCounters(cfg)
		if err != nil {
			slog.Error("Cannot open counters", "error", err, "counters", cfg.CounterType)
			closeStore()
			os.Exit(1)
		}
		defer closeCounters()

		w, err := csvio.NewWriter(cfg.OutputDir)
		if err != nil {
			slog.Error("Cannot create output dir", "error", err)
			closeStore()
			closeCounters()
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		gnc := gncurator.New(cfg, store, counters, csvio.NewReader(), w)
		if err = gnc.Curate(ctx, files); err != nil {
			slog.Error("Curation failed", "error", err)
			stop()
			closeCounters()
			closeStore()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(curateCmd)

	curateCmd.Flags().StringP("output", "o", "", "directory for curated files")
	curateCmd.Flags().StringP("prefix", "p", "", "supplier prefix of permanent keys")
	curateCmd.Flags().IntP("jobs", "j", 0, "number of concurrent workers")
	curateCmd.Flags().StringP("separator", "s", "", "separator of identifier lists")
	curateCmd.Flags().String("store", "", "store of curated data: none, sqlite, postgres, sparql")
	curateCmd.Flags().String("counters", "", "storage of counters: file, badger, memory")
	curateCmd.Flags().String("sparql", "", "SPARQL endpoint URL")
	curateCmd.Flags().BoolP("upload", "u", false, "upload curated batches to the relational mirror")
}

// flagOpts adds options from command line flags. They override settings
// from the configuration file.
func flagOpts(cmd *cobra.Command) {
	if s, _ := cmd.Flags().GetString("output"); s != "" {
		opts = append(opts, config.OptOutputDir(s))
	}
	if s, _ := cmd.Flags().GetString("prefix"); s != "" {
		opts = append(opts, config.OptPrefix(s))
	}
	if n, _ := cmd.Flags().GetInt("jobs"); n > 0 {
		opts = append(opts, config.OptWorkersNum(n))
	}
	if s, _ := cmd.Flags().GetString("separator"); s != "" {
		opts = append(opts, config.OptSeparator(s))
	}
	if s, _ := cmd.Flags().GetString("store"); s != "" {
		opts = append(opts, config.OptStoreType(config.StoreType(s)))
	}
	if s, _ := cmd.Flags().GetString("counters"); s != "" {
		opts = append(opts, config.OptCounterType(config.CounterType(s)))
	}
	if s, _ := cmd.Flags().GetString("sparql"); s != "" {
		opts = append(opts, config.OptSparqlURL(s))
	}
	if b, _ := cmd.Flags().GetBool("upload"); b {
		opts = append(opts, config.OptUpload(true))
	}
}

func newStore(cfg config.Config) (finder.Store, func(), error) {
	noop := func() {}
	switch cfg.StoreType {
	case config.StoreNone:
		return finder.NewMemStore(), noop, nil
	case config.StoreSQLite, config.StorePostgres:
		m, err := sqlio.New(cfg)
		if err != nil {
			return nil, noop, err
		}
		return m, func() { _ = m.Close() }, nil
	case config.StoreSparql:
		if cfg.Upload {
			slog.Warn("SPARQL store is read-only, batches are not uploaded")
		}
		s, err := sparqlio.New(cfg)
		return s, noop, err
	default:
		return nil, noop, fmt.Errorf("unknown store type '%s'", cfg.StoreType)
	}
}

func newCounters(cfg config.Config) (counter.Factory, func(), error) {
	noop := func() {}
	switch cfg.CounterType {
	case config.CounterFile:
		return counterio.FileFactory(cfg.CounterDir), noop, nil
	case config.CounterKV:
		kv, err := kvio.New(filepath.Join(cfg.CounterDir, "kv"))
		if err != nil {
			return nil, noop, err
		}
		if err = kv.Open(); err != nil {
			return nil, noop, err
		}
		return counterio.KVFactory(kv), func() { _ = kv.Close() }, nil
	case config.CounterMemory:
		slog.Warn("Counters are kept in memory, permanent keys restart on the next run")
		f := func(string) (counter.Counters, error) {
			return counter.NewMemory(nil), nil
		}
		return f, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown counter type '%s'", cfg.CounterType)
	}
}

// inputFiles expands directories into CSV files they contain.
func inputFiles(args []string) ([]string, error) {
	var res []string
	for _, a := range args {
		fi, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			res = append(res, a)
			continue
		}
		entries, err := os.ReadDir(a)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !isBatch(e.Name()) {
				continue
			}
			res = append(res, filepath.Join(a, e.Name()))
		}
	}
	slices.Sort(res)
	return slices.Compact(res), nil
}

func isBatch(name string) bool {
	name = strings.TrimSuffix(strings.ToLower(name), ".gz")
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

package gncurator_test

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/gncurator/internal/ent/counter"
	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/io/counterio"
	"github.com/gnames/gncurator/internal/io/csvio"
	"github.com/gnames/gncurator/internal/io/sqlio"
	gncurator "github.com/gnames/gncurator/pkg"
	"github.com/gnames/gncurator/pkg/config"
)

const header = "id,title,author,pub_date,venue,volume,issue,page,type,publisher,editor\n"

var firstKey = regexp.MustCompile(`omid:br/(\d+)`)

func memCounters(string) (counter.Counters, error) {
	return counter.NewMemory(nil), nil
}

var _ = Describe("Gncurator", func() {
	var dir, out string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "gncurator")
		Expect(err).ToNot(HaveOccurred())
		out = filepath.Join(dir, "out")
		input := header +
			"doi:10.1000/a,Paper A,,2020,Journal X [issn:1225-4339],1,1,1-5,journal article,,\n"
		Expect(os.WriteFile(filepath.Join(dir, "a.csv"), []byte(input), 0644)).To(Succeed())
		input = header +
			"doi:10.1000/b,Paper B,\"Doe, John\",2021,,,,,journal article,,\n"
		Expect(os.WriteFile(filepath.Join(dir, "b.csv"), []byte(input), 0644)).To(Succeed())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	newCurator := func(cfg config.Config, s finder.Store, f counter.Factory) gncurator.GNcurator {
		w, err := csvio.NewWriter(cfg.OutputDir)
		Expect(err).ToNot(HaveOccurred())
		return gncurator.New(cfg, s, f, csvio.NewReader(), w)
	}

	read := func(path string) string {
		bs, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		return string(bs)
	}

	It("curates a file with one worker", func() {
		cfg := config.New(
			config.OptOutputDir(out),
			config.OptStopFile(filepath.Join(dir, "stop.out")),
		)
		gnc := newCurator(cfg, finder.NewMemStore(), memCounters)
		err := gnc.Curate(context.Background(), []string{filepath.Join(dir, "a.csv")})
		Expect(err).ToNot(HaveOccurred())

		data := read(filepath.Join(out, "data_a.csv"))
		Expect(data).To(HavePrefix(header))
		Expect(data).To(ContainSubstring("omid:br/06101 doi:10.1000/a,Paper A"))
		for _, f := range []string{
			"index_id_br_a.csv", "index_id_ra_a.csv", "index_ar_a.csv",
			"index_re_a.csv", "index_vi_a.json", "log_a.json",
		} {
			Expect(filepath.Join(out, f)).To(BeARegularFile())
		}
	})

	It("gives every worker its own key space", func() {
		cfg := config.New(
			config.OptOutputDir(out),
			config.OptWorkersNum(2),
			config.OptStopFile(""),
		)
		gnc := newCurator(cfg, finder.NewMemStore(), memCounters)
		files := []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}
		Expect(gnc.Curate(context.Background(), files)).To(Succeed())

		a := firstKey.FindStringSubmatch(read(filepath.Join(out, "data_a.csv")))
		b := firstKey.FindStringSubmatch(read(filepath.Join(out, "data_b.csv")))
		Expect(a).To(HaveLen(2))
		Expect(b).To(HaveLen(2))
		Expect(a[1]).ToNot(Equal(b[1]))
		for _, k := range []string{a[1], b[1]} {
			Expect(strings.HasPrefix(k, "0610") || strings.HasPrefix(k, "0620")).To(BeTrue())
		}
	})

	It("stops when the stop file appears", func() {
		stop := filepath.Join(dir, "stop.out")
		Expect(os.WriteFile(stop, nil, 0644)).To(Succeed())
		cfg := config.New(config.OptOutputDir(out), config.OptStopFile(stop))
		gnc := newCurator(cfg, finder.NewMemStore(), memCounters)
		err := gnc.Curate(context.Background(), []string{filepath.Join(dir, "a.csv")})
		Expect(err).ToNot(HaveOccurred())
		Expect(filepath.Join(out, "data_a.csv")).ToNot(BeAnExistingFile())
	})

	It("returns an error for a missing file", func() {
		cfg := config.New(config.OptOutputDir(out), config.OptStopFile(""))
		gnc := newCurator(cfg, finder.NewMemStore(), memCounters)
		err := gnc.Curate(context.Background(), []string{filepath.Join(dir, "none.csv")})
		Expect(err).To(HaveOccurred())
	})

	It("refuses files that share a batch name", func() {
		other := filepath.Join(dir, "other")
		Expect(os.MkdirAll(other, 0755)).To(Succeed())
		data := header + "doi:10.1000/c,Paper C,,,,,,,,,\n"
		Expect(os.WriteFile(filepath.Join(other, "a.csv.gz"), []byte(data), 0644)).To(Succeed())

		cfg := config.New(config.OptOutputDir(out), config.OptStopFile(""))
		gnc := newCurator(cfg, finder.NewMemStore(), memCounters)
		files := []string{filepath.Join(dir, "a.csv"), filepath.Join(other, "a.csv.gz")}
		err := gnc.Curate(context.Background(), files)
		Expect(err).To(MatchError(gncurator.ErrDuplicateBatch))
		Expect(filepath.Join(out, "data_a.csv")).ToNot(BeAnExistingFile())
	})

	It("reuses uploaded entities in the next run", func() {
		mirror, err := sqlio.NewSQLite(filepath.Join(dir, "mirror.sqlite"))
		Expect(err).ToNot(HaveOccurred())
		defer mirror.Close()
		counters := counterio.FileFactory(filepath.Join(dir, "counters"))
		path := filepath.Join(dir, "a.csv")

		cfg := config.New(
			config.OptOutputDir(filepath.Join(dir, "run1")),
			config.OptUpload(true),
			config.OptStopFile(""),
		)
		Expect(newCurator(cfg, mirror, counters).Curate(context.Background(), []string{path})).
			To(Succeed())

		cfg = config.New(
			config.OptOutputDir(filepath.Join(dir, "run2")),
			config.OptUpload(true),
			config.OptStopFile(""),
		)
		Expect(newCurator(cfg, mirror, counters).Curate(context.Background(), []string{path})).
			To(Succeed())

		run1 := read(filepath.Join(dir, "run1", "data_a.csv"))
		run2 := read(filepath.Join(dir, "run2", "data_a.csv"))
		Expect(run2).To(Equal(run1))
		Expect(read(filepath.Join(dir, "counters", "0610", "br.txt"))).To(Equal("4\n"))
	})
})

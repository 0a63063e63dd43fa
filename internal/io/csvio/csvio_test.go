package csvio_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/gncurator/internal/ent/counter"
	"github.com/gnames/gncurator/internal/ent/curator"
	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/ent/row"
	"github.com/gnames/gncurator/internal/io/csvio"
	gzip "github.com/klauspost/pgzip"
)

var _ = Describe("Csvio", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "csvio")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	Describe("BatchName", func() {
		It("removes directories and extensions", func() {
			Expect(csvio.BatchName("/data/in/0001.csv")).To(Equal("0001"))
			Expect(csvio.BatchName("in/0002.tsv.gz")).To(Equal("0002"))
			Expect(csvio.BatchName("batch")).To(Equal("batch"))
			Expect(csvio.BatchName("./in/sub/0003.CSV.gz")).To(Equal("0003.CSV"))
		})
	})

	Describe("Read", func() {
		It("reads comma-separated files by header names", func() {
			path := filepath.Join(dir, "in.csv")
			data := "title,id,Author,extra\n" +
				`"A ""quoted"" title",doi:10.1000/x,"Doe, John",1` + "\n" +
				"Short row\n"
			Expect(os.WriteFile(path, []byte(data), 0644)).To(Succeed())

			rows, err := csvio.NewReader().Read(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(rows).To(Equal([]row.Row{
				{ID: "doi:10.1000/x", Title: `A "quoted" title`, Author: "Doe, John"},
				{Title: "Short row"},
			}))
		})

		It("reads compressed tab-separated files", func() {
			path := filepath.Join(dir, "in.tsv.gz")
			f, err := os.Create(path)
			Expect(err).ToNot(HaveOccurred())
			gz := gzip.NewWriter(f)
			_, err = gz.Write([]byte("id\tvenue\tpage\n" +
				"pmid:1\tJ, of Things [issn:1050-124X]\t1-2\n"))
			Expect(err).ToNot(HaveOccurred())
			Expect(gz.Close()).To(Succeed())
			Expect(f.Close()).To(Succeed())

			rows, err := csvio.NewReader().Read(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(rows).To(Equal([]row.Row{
				{ID: "pmid:1", Venue: "J, of Things [issn:1050-124X]", Page: "1-2"},
			}))
		})

		It("returns nothing for empty files", func() {
			path := filepath.Join(dir, "empty.csv")
			Expect(os.WriteFile(path, nil, 0644)).To(Succeed())
			rows, err := csvio.NewReader().Read(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(rows).To(BeEmpty())
		})
	})

	Describe("Write", func() {
		It("saves a curated batch", func() {
			store := finder.NewMemStore()
			store.AddBR(finder.Entity{
				Meta: "1001",
				IDs:  []finder.IDRef{{Meta: "2001", Token: "doi:10.1234/abc"}},
			})
			c := curator.New(finder.New(store),
				counter.NewAllocator(counter.NewMemory(nil), "06"))
			res, err := c.Curate(context.Background(), []row.Row{{
				ID:     "doi:10.1234/abc",
				Author: "Doe, John; Roe, Jane",
				Page:   "5-9",
				Venue:  "J [issn:1050-124X]",
				Volume: "3",
			}})
			Expect(err).ToNot(HaveOccurred())

			out := filepath.Join(dir, "out")
			w, err := csvio.NewWriter(out)
			Expect(err).ToNot(HaveOccurred())
			Expect(w.Write("0001", res)).To(Succeed())

			read := func(name string) string {
				data, err := os.ReadFile(filepath.Join(out, name))
				Expect(err).ToNot(HaveOccurred())
				return string(data)
			}
			Expect(read("data_0001.csv")).To(HavePrefix(
				"id,title,author,pub_date,venue,volume,issue,page,type,publisher,editor\n" +
					"omid:br/1001 doi:10.1234/abc,,"))
			Expect(read("index_id_br_0001.csv")).To(Equal(
				"id,meta\ndoi:10.1234/abc,2001\nissn:1050-124X,061\n"))
			Expect(read("index_id_ra_0001.csv")).To(Equal("id,meta\n"))
			Expect(read("index_ar_0001.csv")).To(Equal(
				"meta,author,editor,publisher\n1001,\"061, 061; 062, 062\",,\n"))
			Expect(read("index_re_0001.csv")).To(Equal("br,re\n1001,061\n"))
			Expect(read("index_vi_0001.json")).To(ContainSubstring(`"volume"`))
			Expect(read("log_0001.json")).To(ContainSubstring("ENTITY ALREADY EXISTS"))

			back, err := csvio.NewReader().Read(filepath.Join(out, "data_0001.csv"))
			Expect(err).ToNot(HaveOccurred())
			Expect(back).To(Equal(res.Rows))
		})
	})
})

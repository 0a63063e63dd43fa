package counterio_test

import (
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/gncurator/internal/ent/counter"
	"github.com/gnames/gncurator/internal/ent/key"
	"github.com/gnames/gncurator/internal/io/counterio"
	"github.com/gnames/gncurator/internal/io/kvio"
)

var _ = Describe("Counterio", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "counterio")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	Describe("file counters", func() {
		It("starts from zero and increments", func() {
			c, err := counterio.NewFile(dir, "061")
			Expect(err).ToNot(HaveOccurred())
			n, err := c.Read(key.BR)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(0))

			for i := 1; i <= 3; i++ {
				n, err = c.Increment(key.BR)
				Expect(err).ToNot(HaveOccurred())
				Expect(n).To(Equal(i))
			}
			n, err = c.Increment(key.RA)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(1))

			data, err := os.ReadFile(filepath.Join(dir, "061", "br.txt"))
			Expect(err).ToNot(HaveOccurred())
			Expect(string(data)).To(Equal("3\n"))
		})

		It("replaces counter files without leftovers", func() {
			c, err := counterio.NewFile(dir, "0610")
			Expect(err).ToNot(HaveOccurred())
			var wg sync.WaitGroup
			for range 20 {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := c.Increment(key.BR)
					Expect(err).ToNot(HaveOccurred())
				}()
			}
			wg.Wait()

			entries, err := os.ReadDir(filepath.Join(dir, "0610"))
			Expect(err).ToNot(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Name()).To(Equal("br.txt"))
			n, err := c.Read(key.BR)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(20))
		})

		It("continues an existing counter", func() {
			Expect(os.MkdirAll(filepath.Join(dir, "062"), 0755)).To(Succeed())
			path := filepath.Join(dir, "062", "id.txt")
			Expect(os.WriteFile(path, []byte("41\nignored\n"), 0644)).To(Succeed())

			c, err := counterio.FileFactory(dir)("062")
			Expect(err).ToNot(HaveOccurred())
			a := counter.NewAllocator(c, "062")
			meta, err := a.Next(key.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(meta).To(Equal("06242"))
		})

		It("fails on a corrupted counter", func() {
			Expect(os.MkdirAll(filepath.Join(dir, "063"), 0755)).To(Succeed())
			path := filepath.Join(dir, "063", "re.txt")
			Expect(os.WriteFile(path, []byte("abc"), 0644)).To(Succeed())

			c, err := counterio.NewFile(dir, "063")
			Expect(err).ToNot(HaveOccurred())
			_, err = counter.NewAllocator(c, "063").Next(key.RE)
			Expect(err).To(MatchError(counter.ErrCounterUnavailable))
		})
	})

	Describe("key-value counters", func() {
		It("keeps prefixes apart", func() {
			store, err := kvio.New(dir)
			Expect(err).ToNot(HaveOccurred())
			Expect(store.Open()).To(Succeed())
			defer store.Close()

			f := counterio.KVFactory(store)
			c1, _ := f("061")
			c2, _ := f("062")
			_, err = c1.Increment(key.AR)
			Expect(err).ToNot(HaveOccurred())
			_, err = c1.Increment(key.AR)
			Expect(err).ToNot(HaveOccurred())
			n, err := c2.Increment(key.AR)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(1))

			n, err = c1.Read(key.AR)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(2))
			n, err = c2.Read(key.BR)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(0))
		})
	})
})

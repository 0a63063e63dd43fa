package kvio_test

import (
	"os"
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/gncurator/internal/ent/kv"
	"github.com/gnames/gncurator/internal/io/kvio"
)

var _ = Describe("Kvio", func() {
	var dir string
	var store kv.KeyVal

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "kvio")
		Expect(err).ToNot(HaveOccurred())
		store, err = kvio.New(dir)
		Expect(err).ToNot(HaveOccurred())
		Expect(store.Open()).To(Succeed())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
		os.RemoveAll(dir)
	})

	It("returns nil for absent keys", func() {
		val, err := store.GetValue([]byte("nothing"))
		Expect(err).ToNot(HaveOccurred())
		Expect(val).To(BeNil())
	})

	It("increments counters concurrently", func() {
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				_, err := store.Increment([]byte("06/br"))
				Expect(err).ToNot(HaveOccurred())
			}()
		}
		wg.Wait()
		val, err := store.GetValue([]byte("06/br"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(val)).To(Equal("20"))
	})

	It("keeps values after reopening", func() {
		n, err := store.Increment([]byte("06/ra"))
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(1))
		Expect(store.Close()).To(Succeed())

		store, err = kvio.New(dir)
		Expect(err).ToNot(HaveOccurred())
		Expect(store.Open()).To(Succeed())
		n, err = store.Increment([]byte("06/ra"))
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(2))
	})
})

package counter_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/gncurator/internal/ent/counter"
	"github.com/gnames/gncurator/internal/ent/key"
)

type brokenCounters struct{}

func (brokenCounters) Read(key.Kind) (int, error) {
	return 0, errors.New("disk is gone")
}

func (brokenCounters) Increment(key.Kind) (int, error) {
	return 0, errors.New("disk is gone")
}

var _ = Describe("Counter", func() {
	It("allocates prefixed monotone values per kind", func() {
		c := counter.NewMemory(map[key.Kind]int{key.BR: 41})
		a := counter.NewAllocator(c, "061")
		Expect(a.Prefix()).To(Equal("061"))

		v, err := a.Next(key.BR)
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal("06142"))
		v, _ = a.Next(key.BR)
		Expect(v).To(Equal("06143"))
		v, _ = a.Next(key.RA)
		Expect(v).To(Equal("0611"))

		n, _ := c.Read(key.BR)
		Expect(n).To(Equal(43))
		n, _ = c.Read(key.RE)
		Expect(n).To(Equal(0))
	})

	It("wraps counter failures", func() {
		a := counter.NewAllocator(brokenCounters{}, "06")
		_, err := a.Next(key.ID)
		Expect(errors.Is(err, counter.ErrCounterUnavailable)).To(BeTrue())
	})

	It("creates disjoint worker prefixes", func() {
		Expect(counter.Prefixes("06", 1)).To(Equal([]string{"0610"}))
		Expect(counter.Prefixes("06", 3)).To(Equal([]string{"0610", "0620", "0630"}))

		ps := counter.Prefixes("06", 12)
		Expect(ps).To(HaveLen(12))
		Expect(ps[8]).To(Equal("0690"))
		Expect(ps[9]).To(Equal("06110"))
		Expect(ps[11]).To(Equal("06130"))
		for _, p := range ps {
			Expect(strings.HasSuffix(p, "0")).To(BeTrue())
			Expect(strings.ContainsRune(strings.TrimSuffix(p[2:], "0"), '0')).To(BeFalse())
		}
		Expect(counter.Prefixes("06", 100)[90]).To(Equal("061110"))
	})

	It("keeps keys of runs with different worker numbers apart", func() {
		prefixes := make(map[string]struct{})
		for _, n := range []int{1, 9, 11, 12, 25} {
			for _, p := range counter.Prefixes("06", n) {
				prefixes[p] = struct{}{}
			}
		}

		keys := make(map[string]string)
		for p := range prefixes {
			a := counter.NewAllocator(counter.NewMemory(nil), p)
			for range 150 {
				k, err := a.Next(key.BR)
				Expect(err).ToNot(HaveOccurred())
				other, ok := keys[k]
				Expect(ok).To(BeFalse(), "key %s of %s repeats a key of %s", k, p, other)
				keys[k] = p
			}
		}
		Expect(keys).To(HaveLen(150 * len(prefixes)))
	})
})

package finder_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/ent/key"
	"github.com/gnames/gncurator/internal/ent/row"
	"github.com/gnames/gncurator/internal/ent/vvi"
)

type failingStore struct {
	*finder.MemStore
}

func (failingStore) BRFromID(context.Context, string, string) ([]finder.Entity, error) {
	return nil, errors.New("connection refused")
}

var _ = Describe("Finder", func() {
	var (
		ctx   context.Context
		store *finder.MemStore
		f     *finder.Finder
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = finder.NewMemStore()
		store.AddBR(finder.Entity{
			Meta:  "0601",
			Title: "First",
			IDs: []finder.IDRef{
				{Meta: "0601", Token: "doi:10.1000/a"},
				{Meta: "0602", Token: "pmid:1"},
			},
		})
		store.AddBR(finder.Entity{
			Meta:  "0602",
			Title: "Second",
			IDs:   []finder.IDRef{{Meta: "0603", Token: "doi:10.1000/b"}},
		})
		store.AddBR(finder.Entity{
			Meta:  "0603",
			Title: "Third",
			IDs:   []finder.IDRef{{Meta: "0604", Token: "doi:10.1000/c"}},
		})
		store.AddRA(finder.Entity{
			Meta:  "0601",
			Title: "Springer",
			IDs:   []finder.IDRef{{Meta: "0605", Token: "crossref:297"}},
		}, true)
		f = finder.New(store)
	})

	It("memoizes lookups by identifier", func() {
		res, err := f.FromID(ctx, key.BR, "doi:10.1000/a", false)
		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(HaveLen(1))
		Expect(res[0].Title).To(Equal("First"))
		calls := store.Calls()

		_, err = f.FromID(ctx, key.BR, "doi:10.1000/a", false)
		Expect(err).ToNot(HaveOccurred())
		Expect(store.Calls()).To(Equal(calls))
	})

	It("memoizes negative results", func() {
		_, found, err := f.FromMeta(ctx, key.BR, "0999", false)
		Expect(err).ToNot(HaveOccurred())
		Expect(found).To(BeFalse())
		calls := store.Calls()
		_, found, _ = f.FromMeta(ctx, key.BR, "0999", false)
		Expect(found).To(BeFalse())
		Expect(store.Calls()).To(Equal(calls))
	})

	It("separates publishers from persons", func() {
		res, err := f.FromID(ctx, key.RA, "crossref:297", true)
		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(HaveLen(1))
		res, err = f.FromID(ctx, key.RA, "crossref:297", false)
		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(BeEmpty())
	})

	It("stops matching after two entities", func() {
		res, err := f.Match(ctx, key.BR, []string{
			"doi:10.1000/a", "pmid:1", "doi:10.1000/b", "doi:10.1000/c",
		}, false)
		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(HaveLen(2))
		Expect(res[0].Meta).To(Equal("0601"))
		Expect(res[1].Meta).To(Equal("0602"))

		_, err = f.FromID(ctx, key.BR, "doi:10.1000/c", false)
		Expect(err).ToNot(HaveOccurred())
		calls := store.Calls()
		_, _ = f.FromID(ctx, key.BR, "doi:10.1000/c", false)
		Expect(store.Calls()).To(Equal(calls))
	})

	It("returns copies of venues", func() {
		v := vvi.NewVenue()
		vol, _ := v.AddVolume("7")
		vol.ID = key.Permanent("0610")
		store.SetVenue("0601", v)

		got, err := f.Venue(ctx, "0601")
		Expect(err).ToNot(HaveOccurred())
		got.AddIssue("2")
		again, err := f.Venue(ctx, "0601")
		Expect(err).ToNot(HaveOccurred())
		Expect(again.Issues).To(BeEmpty())
		Expect(again.Volumes["7"].ID).To(Equal(key.Permanent("0610")))
	})

	It("caches sequences per role", func() {
		store.SetSequence("0601", row.Author, []finder.Agent{
			{AR: "0601", RA: finder.Entity{Meta: "0601", Title: "Doe, John"}},
		})
		res, err := f.RASequence(ctx, "0601", row.Author)
		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(HaveLen(1))
		res, err = f.RASequence(ctx, "0601", row.Editor)
		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(BeEmpty())
	})

	It("reports store failures", func() {
		f = finder.New(failingStore{store})
		_, err := f.Match(ctx, key.BR, []string{"doi:10.1000/a"}, false)
		Expect(errors.Is(err, finder.ErrStoreUnavailable)).To(BeTrue())
	})
})

package vvi_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/gncurator/internal/ent/key"
	"github.com/gnames/gncurator/internal/ent/vvi"
)

var _ = Describe("VVI", func() {
	It("creates slots once", func() {
		v := vvi.NewVenue()
		vol, ok := v.AddVolume("25")
		Expect(ok).To(BeFalse())
		vol.ID = key.Wannabe(1)

		vol2, ok := v.AddVolume("25")
		Expect(ok).To(BeTrue())
		Expect(vol2.ID).To(Equal(key.Wannabe(1)))

		iss, ok := vol.AddIssue("1")
		Expect(ok).To(BeFalse())
		iss.ID = key.Permanent("0605")

		dIss, _ := v.AddIssue("3")
		dIss.ID = key.Wannabe(2)
		Expect(vvi.Labels(v.Issues)).To(Equal([]string{"3"}))
	})

	It("serializes to an index", func() {
		v := vvi.NewVenue()
		vol, _ := v.AddVolume("25")
		vol.ID = key.Wannabe(1)
		iss, _ := vol.AddIssue("1")
		iss.ID = key.Permanent("0605")

		idx := v.Index(func(k key.Key) string {
			if k.IsWannabe() {
				return "0604"
			}
			return k.Meta()
		})
		Expect(idx.Volume["25"].ID).To(Equal("0604"))
		Expect(idx.Volume["25"].Issue["1"].ID).To(Equal("0605"))
		Expect(idx.Issue).To(BeEmpty())
	})
})

var _ = Describe("Clone", func() {
	It("does not share slots", func() {
		v := vvi.NewVenue()
		vol, _ := v.AddVolume("7")
		vol.ID = key.Permanent("061")
		c := v.Clone()
		c.Volumes["7"].ID = key.Permanent("062")
		c.AddIssue("1")
		Expect(v.Volumes["7"].ID).To(Equal(key.Permanent("061")))
		Expect(v.Issues).To(BeEmpty())
	})
})

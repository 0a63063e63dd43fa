package key_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/gncurator/internal/ent/key"
)

var _ = Describe("Key", func() {
	It("distinguishes wannabe and permanent keys", func() {
		w := key.Wannabe(3)
		Expect(w.IsWannabe()).To(BeTrue())
		Expect(w.String()).To(Equal("wannabe_3"))
		Expect(w.Meta()).To(Equal(""))

		p := key.Permanent("0601")
		Expect(p.IsWannabe()).To(BeFalse())
		Expect(p.String()).To(Equal("0601"))
		Expect(p.Meta()).To(Equal("0601"))
	})

	It("has an absent zero value", func() {
		var k key.Key
		Expect(k.IsZero()).To(BeTrue())
		Expect(key.Wannabe(0).IsZero()).To(BeFalse())
	})

	It("parses rendered keys", func() {
		Expect(key.Parse("wannabe_12")).To(Equal(key.Wannabe(12)))
		Expect(key.Parse("0602")).To(Equal(key.Permanent("0602")))
		Expect(key.Parse("wannabe_x")).To(Equal(key.Permanent("wannabe_x")))
	})

	It("renders omid tokens", func() {
		Expect(key.OMID(key.BR, "0601")).To(Equal("omid:br/0601"))
	})
})

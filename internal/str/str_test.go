package str_test

import (
	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/gnames/gncurator/internal/str"
)

var _ = Describe("Str", func() {
	table.DescribeTable("QuoteString",
		func(inp, out string) {
			Expect(str.QuoteString(inp)).To(Equal(out))
		},
		table.Entry("plain", "10.1000/x", `"10.1000/x"`),
		table.Entry("quotes", `a "b"`, `"a \"b\""`),
		table.Entry("backslash", `a\b`, `"a\\b"`),
		table.Entry("new line", "a\nb", `"a\nb"`),
	)

	It("shortens long titles", func() {
		t := "Nonthermal Sterilization and Shelf-life Extension of Seafood Products"
		Expect(str.ShortTitle(t)).To(HaveLen(44))
		Expect(str.ShortTitle("Short")).To(Equal("Short"))
	})

	It("recognizes digits", func() {
		Expect(str.IsDigits("0610")).To(BeTrue())
		Expect(str.IsDigits("")).To(BeFalse())
		Expect(str.IsDigits("06a")).To(BeFalse())
	})
})

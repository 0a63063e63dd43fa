package str

import "strings"

// ShortTitle truncates a title to 45 characters if necesary.
func ShortTitle(title string) string {
	if len(title) < 45 {
		return title
	}
	return title[0:41] + "..."
}

var literalReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// QuoteString adds double quotes around a string and escapes characters
// that cannot appear in a SPARQL literal.
func QuoteString(s string) string {
	return `"` + literalReplacer.Replace(s) + `"`
}

// IsDigits checks if a string is a non-empty sequence of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

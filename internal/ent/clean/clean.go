// Package clean canonicalizes free-text fields of input rows: titles,
// person names, dates, page ranges and resource types.
package clean

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var hyphens = strings.NewReplacer(
	"‐", "-",
	"‑", "-",
	"‒", "-",
	"–", "-",
	"—", "-",
	"−", "-",
)

var pageRe = regexp.MustCompile(`^([\w.]+)(?:-+([\w.]+))?$`)

// Hyphens replaces unicode dashes with an ASCII hyphen.
func Hyphens(s string) string {
	return hyphens.Replace(s)
}

// Spaces collapses runs of white spaces into one space and trims the
// string.
func Spaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Title capitalizes every word that does not contain upper-case letters
// already. A title written in upper case only is lowercased first.
func Title(s string) string {
	s = Spaces(s)
	if s == "" {
		return s
	}
	if isUpper(s) {
		s = strings.ToLower(s)
	}
	caser := cases.Title(language.English)
	words := strings.Split(s, " ")
	for i, w := range words {
		if hasUpper(w) {
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// Name converts a person name of `Family, Given` form to title case
// component-wise. Names without a comma are treated as titles.
func Name(s string) string {
	s = Spaces(s)
	family, given, ok := strings.Cut(s, ",")
	if !ok {
		return Title(s)
	}
	family = Title(family)
	given = Title(given)
	if given == "" {
		return family + ","
	}
	return family + ", " + given
}

// Page canonicalizes a page or a page range. It returns an empty string
// for values that do not look like pages.
func Page(s string) string {
	s = strings.Join(strings.Fields(Hyphens(s)), "")
	m := pageRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	if m[2] == "" {
		return m[1]
	}
	return m[1] + "-" + m[2]
}

func isUpper(s string) bool {
	var letters bool
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return letters
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

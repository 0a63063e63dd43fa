package identifier

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var (
	doiRe      = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)
	isbnRe     = regexp.MustCompile(`^(\d{9}[\dX]|\d{13})$`)
	issnRe     = regexp.MustCompile(`^\d{4}-\d{3}[\dX]$`)
	orcidRe    = regexp.MustCompile(`^\d{15}[\dX]$`)
	digitsRe   = regexp.MustCompile(`^\d+$`)
	pmcidRe    = regexp.MustCompile(`^PMC\d+$`)
	wikidataRe = regexp.MustCompile(`^Q\d+$`)
)

func doi(s string) (string, bool) {
	if u, err := url.PathUnescape(s); err == nil {
		s = u
	}
	s = strings.ToLower(removeSpaces(s))
	idx := strings.Index(s, "10.")
	if idx < 0 {
		return "", false
	}
	s = s[idx:]
	if !doiRe.MatchString(s) {
		return "", false
	}
	return s, true
}

func isbn(s string) (string, bool) {
	s = strings.ToUpper(strings.ReplaceAll(removeSpaces(s), "-", ""))
	if !isbnRe.MatchString(s) {
		return "", false
	}
	var sum int
	if len(s) == 10 {
		for i, r := range s {
			v := int(r - '0')
			if r == 'X' {
				v = 10
			}
			sum += (10 - i) * v
		}
		return s, sum%11 == 0
	}
	for i, r := range s {
		v := int(r - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return s, sum%10 == 0
}

func issn(s string) (string, bool) {
	s = strings.ToUpper(removeSpaces(s))
	if len(s) == 8 && !strings.Contains(s, "-") {
		s = s[:4] + "-" + s[4:]
	}
	if !issnRe.MatchString(s) || s == "0000-0000" {
		return "", false
	}
	var sum int
	ds := strings.ReplaceAll(s, "-", "")
	for i, r := range ds[:7] {
		sum += int(r-'0') * (8 - i)
	}
	return s, checkChar((11-sum%11)%11) == ds[7]
}

func orcid(s string) (string, bool) {
	s = strings.ToUpper(removeSpaces(s))
	if idx := strings.LastIndex(s, "ORCID.ORG/"); idx >= 0 {
		s = s[idx+len("ORCID.ORG/"):]
	}
	s = strings.ReplaceAll(s, "-", "")
	if !orcidRe.MatchString(s) {
		return "", false
	}
	var total int
	for _, r := range s[:15] {
		total = (total + int(r-'0')) * 2
	}
	if checkChar((12-total%11)%11) != s[15] {
		return "", false
	}
	return s[0:4] + "-" + s[4:8] + "-" + s[8:12] + "-" + s[12:], true
}

func pmid(s string) (string, bool) {
	s = strings.TrimLeft(removeSpaces(s), "0")
	if !digitsRe.MatchString(s) {
		return "", false
	}
	return s, true
}

func pmcid(s string) (string, bool) {
	s = strings.ToUpper(removeSpaces(s))
	if digitsRe.MatchString(s) {
		s = "PMC" + s
	}
	if !pmcidRe.MatchString(s) {
		return "", false
	}
	return s, true
}

func webURL(s string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return "", false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return strings.TrimSuffix(u.String(), "/"), true
}

func digits(s string) (string, bool) {
	s = removeSpaces(s)
	if !digitsRe.MatchString(s) {
		return "", false
	}
	return s, true
}

func wikidata(s string) (string, bool) {
	s = strings.ToUpper(removeSpaces(s))
	if !wikidataRe.MatchString(s) {
		return "", false
	}
	return s, true
}

func checkChar(n int) byte {
	if n == 10 {
		return 'X'
	}
	return byte('0' + n)
}

func removeSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

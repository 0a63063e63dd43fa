// Package identifier parses lists of external identifiers and brings every
// identifier to its canonical `scheme:value` form.
package identifier

import (
	"regexp"
	"slices"
	"strings"

	"github.com/gnames/gncurator/internal/ent/clean"
	"github.com/gnames/gncurator/internal/ent/key"
)

// Supported schemes.
const (
	DOI      = "doi"
	ISBN     = "isbn"
	ISSN     = "issn"
	ORCID    = "orcid"
	PMID     = "pmid"
	PMCID    = "pmcid"
	URL      = "url"
	VIAF     = "viaf"
	Wikidata = "wikidata"
	Crossref = "crossref"
	OMID     = "omid"
	Meta     = "meta"
)

var canonizers = map[string]func(string) (string, bool){
	DOI:      doi,
	ISBN:     isbn,
	ISSN:     issn,
	ORCID:    orcid,
	PMID:     pmid,
	PMCID:    pmcid,
	URL:      webURL,
	VIAF:     digits,
	Wikidata: wikidata,
	Crossref: digits,
}

var (
	colonRe = regexp.MustCompile(`\s*:\s*`)
	omidRe  = regexp.MustCompile(`^(br|ra|id|ar|re)/(\d+)$`)
)

// Result is an outcome of normalizing a raw list of identifiers.
type Result struct {
	// Tokens are canonical external identifiers in their original order,
	// without duplicates.
	Tokens []string

	// Meta is a permanent key carried by the list as an omid token. It is
	// empty if there is no such token, or if there are several.
	Meta string
}

// Normalize splits a raw identifier list using the separator (or white
// spaces when the separator is empty), canonicalizes every token and
// extracts an omid key of the given kind. Invalid tokens, unknown schemes
// and omid tokens of other kinds are dropped.
func Normalize(raw, sep string, kind key.Kind) Result {
	var res Result
	raw = colonRe.ReplaceAllString(strings.TrimSpace(raw), ":")
	if raw == "" {
		return res
	}

	var parts []string
	if sep == "" || sep == " " {
		parts = strings.Fields(raw)
	} else {
		parts = strings.Split(raw, sep)
	}

	seen := make(map[string]struct{})
	var metas []string
	for _, p := range parts {
		scheme, value, ok := Split(p)
		if !ok {
			continue
		}
		if scheme == OMID || scheme == Meta {
			m := omidRe.FindStringSubmatch(value)
			if m == nil || m[1] != string(kind) {
				continue
			}
			if !slices.Contains(metas, m[2]) {
				metas = append(metas, m[2])
			}
			continue
		}
		tok, ok := Canonical(p)
		if !ok {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		res.Tokens = append(res.Tokens, tok)
	}

	if len(metas) == 1 {
		res.Meta = metas[0]
	}
	return res
}

// Split breaks a token into a lowercased scheme and a value.
func Split(token string) (scheme, value string, ok bool) {
	token = strings.TrimSpace(clean.Hyphens(token))
	scheme, value, ok = strings.Cut(token, ":")
	if !ok || scheme == "" || value == "" {
		return "", "", false
	}
	return strings.ToLower(scheme), strings.TrimSpace(value), true
}

// Canonical returns the canonical form of one external identifier. It
// returns false for unknown schemes and invalid values.
func Canonical(token string) (string, bool) {
	scheme, value, ok := Split(token)
	if !ok {
		return "", false
	}
	fn, ok := canonizers[scheme]
	if !ok {
		return "", false
	}
	value, ok = fn(value)
	if !ok {
		return "", false
	}
	return scheme + ":" + value, true
}

package sparqlio

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/ent/key"
	"github.com/gnames/gncurator/internal/ent/row"
	"github.com/gnames/gncurator/internal/ent/vvi"
	"github.com/gnames/gncurator/internal/str"
)

const (
	typeVolume = "journal volume"
	typeIssue  = "journal issue"

	// maxDepth limits the walk from a resource to its venue.
	maxDepth = 3
)

// BRFromID finds resources that have an identifier.
func (s *sparqlio) BRFromID(
	ctx context.Context,
	scheme, value string,
) ([]finder.Entity, error) {
	pattern, ok := idPattern(scheme, value, "fabio:Expression")
	if !ok {
		return nil, nil
	}
	return s.entities(ctx, key.BR, pattern)
}

// RAFromID finds agents that have an identifier. Publishers and persons
// are agents of the same class.
func (s *sparqlio) RAFromID(
	ctx context.Context,
	scheme, value string,
	_ bool,
) ([]finder.Entity, error) {
	pattern, ok := idPattern(scheme, value, "foaf:Agent")
	if !ok {
		return nil, nil
	}
	return s.entities(ctx, key.RA, pattern)
}

// BRFromMeta returns a resource by its key.
func (s *sparqlio) BRFromMeta(ctx context.Context, meta string) (finder.Entity, bool, error) {
	return s.entity(ctx, key.BR, meta, "fabio:Expression")
}

// RAFromMeta returns an agent by its key.
func (s *sparqlio) RAFromMeta(
	ctx context.Context,
	meta string,
	_ bool,
) (finder.Entity, bool, error) {
	return s.entity(ctx, key.RA, meta, "foaf:Agent")
}

// BRInfo returns stored attributes of a resource.
func (s *sparqlio) BRInfo(ctx context.Context, meta string) (finder.Info, bool, error) {
	var res finder.Info
	if !str.IsDigits(meta) {
		return res, false, nil
	}
	a, err := s.attrs(ctx, meta)
	if err != nil || !a.found {
		return res, false, err
	}
	res.Type = a.typ
	res.PubDate = a.date

	for range maxDepth {
		switch a.typ {
		case typeIssue:
			res.Issue = a.label
		case typeVolume:
			res.Volume = a.label
		}
		if a.part == "" {
			break
		}
		parent := a.part
		if a, err = s.attrs(ctx, parent); err != nil {
			return res, false, err
		}
		if !a.found {
			break
		}
		if a.typ != typeIssue && a.typ != typeVolume {
			res.Venue = parent
			break
		}
	}

	if res.Page, _, err = s.RE(ctx, meta); err != nil {
		return res, false, err
	}
	return res, true, nil
}

// RASequence returns agents of a role following their `hasNext` chain.
func (s *sparqlio) RASequence(
	ctx context.Context,
	meta string,
	role row.Role,
) ([]finder.Agent, error) {
	if !str.IsDigits(meta) {
		return nil, nil
	}
	q := fmt.Sprintf(`
SELECT ?ar ?ra ?next WHERE {
  %s pro:isDocumentContextFor ?ar .
  ?ar pro:withRole %s ;
      pro:isHeldBy ?ra .
  OPTIONAL { ?ar oco:hasNext ?next }
}`, iri(key.BR, meta), roles[role])
	sols, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}

	held := make(map[string]string)
	next := make(map[string]string)
	pointed := make(map[string]bool)
	var ars []string
	for _, sol := range sols {
		ar, ok := metaOf(key.AR, sol.get("ar"))
		if !ok {
			continue
		}
		ra, ok := metaOf(key.RA, sol.get("ra"))
		if !ok {
			continue
		}
		if _, ok := held[ar]; !ok {
			ars = append(ars, ar)
		}
		held[ar] = ra
		if n, ok := metaOf(key.AR, sol.get("next")); ok {
			next[ar] = n
			pointed[n] = true
		}
	}
	slices.SortFunc(ars, compareMeta)

	var order []string
	seen := make(map[string]bool)
	for _, head := range ars {
		if pointed[head] {
			continue
		}
		for ar := head; ar != "" && !seen[ar]; ar = next[ar] {
			if _, ok := held[ar]; !ok {
				break
			}
			seen[ar] = true
			order = append(order, ar)
		}
	}
	for _, ar := range ars {
		if !seen[ar] {
			order = append(order, ar)
		}
	}

	res := make([]finder.Agent, 0, len(order))
	for _, ar := range order {
		ent, found, err := s.RAFromMeta(ctx, held[ar], false)
		if err != nil {
			return nil, err
		}
		if !found {
			ent = finder.Entity{Meta: held[ar]}
		}
		res = append(res, finder.Agent{AR: ar, RA: ent})
	}
	return res, nil
}

// Venue returns volumes and issues of a venue.
func (s *sparqlio) Venue(ctx context.Context, meta string) (*vvi.Venue, error) {
	res := vvi.NewVenue()
	if !str.IsDigits(meta) {
		return res, nil
	}
	q := fmt.Sprintf(`
SELECT ?part ?type ?label ?sub ?subLabel WHERE {
  ?part frbr:partOf %s ;
        a ?type ;
        fabio:hasSequenceIdentifier ?label .
  OPTIONAL {
    ?sub frbr:partOf ?part ;
         a fabio:JournalIssue ;
         fabio:hasSequenceIdentifier ?subLabel .
  }
}`, iri(key.BR, meta))
	sols, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, sol := range sols {
		part, ok := metaOf(key.BR, sol.get("part"))
		label := sol.get("label")
		if !ok || label == "" {
			continue
		}
		switch typeOf(sol.get("type")) {
		case typeVolume:
			vol, _ := res.AddVolume(label)
			vol.ID = key.Permanent(part)
			sub, ok := metaOf(key.BR, sol.get("sub"))
			if subLabel := sol.get("subLabel"); ok && subLabel != "" {
				iss, _ := vol.AddIssue(subLabel)
				iss.ID = key.Permanent(sub)
			}
		case typeIssue:
			iss, _ := res.AddIssue(label)
			iss.ID = key.Permanent(part)
		}
	}
	return res, nil
}

// RE returns a page embodiment of a resource.
func (s *sparqlio) RE(ctx context.Context, meta string) (finder.Page, bool, error) {
	var res finder.Page
	if !str.IsDigits(meta) {
		return res, false, nil
	}
	q := fmt.Sprintf(`
SELECT ?re ?start ?end WHERE {
  %s frbr:embodiment ?re .
  OPTIONAL { ?re prism:startingPage ?start }
  OPTIONAL { ?re prism:endingPage ?end }
}`, iri(key.BR, meta))
	sols, err := s.query(ctx, q)
	if err != nil {
		return res, false, err
	}
	var found bool
	for _, sol := range sols {
		re, ok := metaOf(key.RE, sol.get("re"))
		if !ok || (found && compareMeta(re, res.Meta) >= 0) {
			continue
		}
		found = true
		res = finder.Page{Meta: re, Range: pageRange(sol.get("start"), sol.get("end"))}
	}
	return res, found, nil
}

type attrs struct {
	found bool
	typ   string
	date  string
	label string
	part  string
}

func (s *sparqlio) attrs(ctx context.Context, meta string) (attrs, error) {
	var res attrs
	subj := iri(key.BR, meta)
	q := fmt.Sprintf(`
SELECT ?type ?date ?label ?part WHERE {
  %[1]s a ?type .
  OPTIONAL { %[1]s prism:publicationDate ?date }
  OPTIONAL { %[1]s fabio:hasSequenceIdentifier ?label }
  OPTIONAL { %[1]s frbr:partOf ?part }
}`, subj)
	sols, err := s.query(ctx, q)
	if err != nil {
		return res, err
	}
	for _, sol := range sols {
		res.found = true
		if res.typ == "" {
			res.typ = typeOf(sol.get("type"))
		}
		if res.date == "" {
			res.date = sol.get("date")
		}
		if res.label == "" {
			res.label = sol.get("label")
		}
		if res.part == "" {
			res.part, _ = metaOf(key.BR, sol.get("part"))
		}
	}
	return res, nil
}

// idPattern matches entities of a class by an identifier. Schemes that
// cannot be a part of an IRI match nothing.
func idPattern(scheme, value, class string) (string, bool) {
	if !schemeRe.MatchString(scheme) {
		return "", false
	}
	return fmt.Sprintf(`
  ?idEnt datacite:usesIdentifierScheme datacite:%s ;
         literal:hasLiteralValue %s .
  ?res datacite:hasIdentifier ?idEnt ;
       a %s .`, scheme, str.QuoteString(value), class), true
}

func (s *sparqlio) entity(
	ctx context.Context,
	kind key.Kind,
	meta, class string,
) (finder.Entity, bool, error) {
	if !str.IsDigits(meta) {
		return finder.Entity{}, false, nil
	}
	pattern := fmt.Sprintf(`
  VALUES ?res { %s }
  ?res a %s .`, iri(kind, meta), class)
	ents, err := s.entities(ctx, kind, pattern)
	if err != nil || len(ents) == 0 {
		return finder.Entity{}, false, err
	}
	return ents[0], true, nil
}

// entities returns resources or agents that match a pattern binding
// `?res`, together with their names and identifiers.
func (s *sparqlio) entities(
	ctx context.Context,
	kind key.Kind,
	pattern string,
) ([]finder.Entity, error) {
	names := `
  OPTIONAL { ?res dcterms:title ?title }`
	if kind == key.RA {
		names = `
  OPTIONAL { ?res foaf:name ?title }
  OPTIONAL { ?res foaf:familyName ?family }
  OPTIONAL { ?res foaf:givenName ?given }`
	}
	q := `
SELECT ?res ?title ?family ?given ?id ?scheme ?value WHERE {` + pattern + names + `
  OPTIONAL {
    ?res datacite:hasIdentifier ?id .
    ?id datacite:usesIdentifierScheme ?scheme ;
        literal:hasLiteralValue ?value .
  }
}`
	sols, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}

	var res []*finder.Entity
	byMeta := make(map[string]*finder.Entity)
	seenIDs := make(map[string]bool)
	for _, sol := range sols {
		meta, ok := metaOf(kind, sol.get("res"))
		if !ok {
			continue
		}
		ent, ok := byMeta[meta]
		if !ok {
			ent = &finder.Entity{Meta: meta}
			byMeta[meta] = ent
			res = append(res, ent)
		}
		if ent.Title == "" {
			ent.Title = name(sol)
		}
		id, ok := metaOf(key.ID, sol.get("id"))
		if !ok || seenIDs[meta+" "+id] {
			continue
		}
		seenIDs[meta+" "+id] = true
		token := schemeOf(sol.get("scheme")) + ":" + sol.get("value")
		ent.IDs = append(ent.IDs, finder.IDRef{Meta: id, Token: token})
	}

	ents := make([]finder.Entity, len(res))
	for i := range res {
		slices.SortFunc(res[i].IDs, func(a, b finder.IDRef) int {
			return compareMeta(a.Meta, b.Meta)
		})
		ents[i] = *res[i]
	}
	slices.SortFunc(ents, func(a, b finder.Entity) int {
		return compareMeta(a.Meta, b.Meta)
	})
	return ents, nil
}

func name(sol solution) string {
	if t := sol.get("title"); t != "" {
		return t
	}
	family, given := sol.get("family"), sol.get("given")
	switch {
	case family == "":
		return given
	case given == "":
		return family + ","
	default:
		return family + ", " + given
	}
}

// compareMeta orders keys of the same prefix by their counter values.
func compareMeta(a, b string) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

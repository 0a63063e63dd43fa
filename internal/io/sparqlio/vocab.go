package sparqlio

import (
	"regexp"
	"strings"

	"github.com/gnames/gncurator/internal/ent/key"
	"github.com/gnames/gncurator/internal/ent/row"
	"github.com/gnames/gncurator/internal/str"
)

// base is the namespace of curated entities.
const base = "https://w3id.org/oc/meta/"

const (
	datacite = "http://purl.org/spar/datacite/"
	fabio    = "http://purl.org/spar/fabio/"
)

const prefixes = `
PREFIX datacite: <http://purl.org/spar/datacite/>
PREFIX literal: <http://www.essepuntato.it/2010/06/literalreification/>
PREFIX fabio: <http://purl.org/spar/fabio/>
PREFIX frbr: <http://purl.org/vocab/frbr/core#>
PREFIX pro: <http://purl.org/spar/pro/>
PREFIX prism: <http://prismstandard.org/namespaces/basic/2.0/>
PREFIX dcterms: <http://purl.org/dc/terms/>
PREFIX foaf: <http://xmlns.com/foaf/0.1/>
PREFIX oco: <https://w3id.org/oc/ontology/>
`

var schemeRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// types maps fabio classes to resource types.
var types = map[string]string{
	"ArchivalDocument":      "archival document",
	"AudioDocument":         "audio document",
	"Book":                  "book",
	"BookChapter":           "book chapter",
	"BookSeries":            "book series",
	"BookSet":               "book set",
	"ComputerProgram":       "computer program",
	"DataFile":              "dataset",
	"DataManagementPlan":    "data management plan",
	"Thesis":                "dissertation",
	"Journal":               "journal",
	"JournalArticle":        "journal article",
	"JournalIssue":          "journal issue",
	"JournalVolume":         "journal volume",
	"Newspaper":             "newspaper",
	"NewspaperArticle":      "newspaper article",
	"NewspaperIssue":        "newspaper issue",
	"PeerReview":            "peer review",
	"Preprint":              "preprint",
	"Presentation":          "presentation",
	"AcademicProceedings":   "proceedings",
	"ProceedingsPaper":      "proceedings article",
	"ReferenceBook":         "reference book",
	"ReferenceEntry":        "reference entry",
	"ReportDocument":        "report",
	"RetractionNotice":      "retraction notice",
	"Series":                "series",
	"SpecificationDocument": "standard",
	"WebContent":            "web content",
}

var roles = map[row.Role]string{
	row.Author:    "pro:author",
	row.Editor:    "pro:editor",
	row.Publisher: "pro:publisher",
}

// iri returns the IRI of an entity.
func iri(kind key.Kind, meta string) string {
	return "<" + base + string(kind) + "/" + meta + ">"
}

// metaOf returns the key of an entity IRI of a kind.
func metaOf(kind key.Kind, iri string) (string, bool) {
	meta, ok := strings.CutPrefix(iri, base+string(kind)+"/")
	if !ok || !str.IsDigits(meta) {
		return "", false
	}
	return meta, true
}

func typeOf(iri string) string {
	name, ok := strings.CutPrefix(iri, fabio)
	if !ok {
		return ""
	}
	return types[name]
}

func schemeOf(iri string) string {
	return strings.TrimPrefix(iri, datacite)
}

func pageRange(start, end string) string {
	if end == "" || end == start {
		return start
	}
	if start == "" {
		return end
	}
	return start + "-" + end
}

package clean

import "strings"

// Types are resource types accepted in the `type` column.
var Types = []string{
	"archival document",
	"audio document",
	"book",
	"book chapter",
	"book part",
	"book section",
	"book series",
	"book set",
	"book track",
	"component",
	"computer program",
	"data file",
	"data management plan",
	"dataset",
	"dissertation",
	"edited book",
	"journal",
	"journal article",
	"journal issue",
	"journal volume",
	"monograph",
	"newspaper",
	"newspaper article",
	"newspaper issue",
	"peer review",
	"preprint",
	"presentation",
	"proceedings",
	"proceedings article",
	"proceedings series",
	"reference book",
	"reference entry",
	"report",
	"report series",
	"retraction notice",
	"series",
	"standard",
	"standard series",
	"web content",
	"other",
}

var typeSet = func() map[string]struct{} {
	res := make(map[string]struct{}, len(Types))
	for _, t := range Types {
		res[t] = struct{}{}
	}
	return res
}()

// Type returns a recognized resource type, or an empty string.
func Type(s string) string {
	s = strings.ToLower(Spaces(s))
	if _, ok := typeSet[s]; ok {
		return s
	}
	return ""
}

// VenueType returns the type of a container that holds a resource of the
// given type.
func VenueType(t string) string {
	switch t {
	case "journal article", "journal issue", "journal volume":
		return "journal"
	case "book chapter", "book part", "book section", "book track":
		return "book"
	case "proceedings article":
		return "proceedings"
	case "newspaper article", "newspaper issue":
		return "newspaper"
	case "reference entry":
		return "reference book"
	case "book", "edited book", "monograph", "reference book":
		return "book series"
	case "report":
		return "report series"
	case "standard":
		return "standard series"
	case "proceedings":
		return "proceedings series"
	}
	return ""
}

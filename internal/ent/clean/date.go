package clean

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	yearFormat  = "2006"
	monthFormat = "2006-01"
	dayFormat   = "2006-01-02"
)

// dateLayouts map input layouts to the precision they carry. A layout
// only matches when every element it names is present, so missing months
// or days are never filled by defaults.
var dateLayouts = []struct {
	layout, format string
}{
	{"2006-1-2", dayFormat},
	{"2006/1/2", dayFormat},
	{"2006.1.2", dayFormat},
	{"January 2, 2006", dayFormat},
	{"Jan 2, 2006", dayFormat},
	{"2 January 2006", dayFormat},
	{"2 Jan 2006", dayFormat},
	{"2006-1", monthFormat},
	{"2006/1", monthFormat},
	{"January 2006", monthFormat},
	{"Jan 2006", monthFormat},
	{"January, 2006", monthFormat},
	{"2006", yearFormat},
}

// Date converts a publication date to `YYYY`, `YYYY-MM` or `YYYY-MM-DD`
// keeping the precision of the input. Invalid dates become empty strings.
func Date(s string) string {
	s = Spaces(Hyphens(s))
	if s == "" {
		return ""
	}
	for _, l := range dateLayouts {
		t, err := time.Parse(l.layout, s)
		if err == nil {
			return t.Format(l.format)
		}
	}

	// full timestamps and other complete dates
	if !strings.ContainsAny(s, "0123456789") {
		return ""
	}
	t, err := dateparse.ParseStrict(s)
	if err != nil {
		return ""
	}
	return t.Format(dayFormat)
}

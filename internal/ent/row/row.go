// Package row describes records of the tabular input and output, and
// parses agent lists and `name [ids]` strings found in them.
package row

import "strings"

// Columns are the field names of input and output rows, in order.
var Columns = []string{
	"id", "title", "author", "pub_date", "venue", "volume", "issue", "page",
	"type", "publisher", "editor",
}

// Role is a role an agent plays for a resource.
type Role string

const (
	// Author of a resource.
	Author Role = "author"

	// Editor of a resource.
	Editor Role = "editor"

	// Publisher of a resource.
	Publisher Role = "publisher"
)

// Roles are processed in this order for every row.
var Roles = []Role{Author, Publisher, Editor}

// Row is one bibliographic resource of a batch.
type Row struct {
	ID        string
	Title     string
	Author    string
	PubDate   string
	Venue     string
	Volume    string
	Issue     string
	Page      string
	Type      string
	Publisher string
	Editor    string
}

func (r *Row) field(col string) *string {
	switch col {
	case "id":
		return &r.ID
	case "title":
		return &r.Title
	case "author":
		return &r.Author
	case "pub_date":
		return &r.PubDate
	case "venue":
		return &r.Venue
	case "volume":
		return &r.Volume
	case "issue":
		return &r.Issue
	case "page":
		return &r.Page
	case "type":
		return &r.Type
	case "publisher":
		return &r.Publisher
	case "editor":
		return &r.Editor
	}
	return nil
}

// Get returns a value of a column, or an empty string for unknown columns.
func (r *Row) Get(col string) string {
	if f := r.field(col); f != nil {
		return *f
	}
	return ""
}

// Set assigns a value to a column. Unknown columns are ignored.
func (r *Row) Set(col, val string) {
	if f := r.field(col); f != nil {
		*f = val
	}
}

// Agents returns the agent list of a role.
func (r *Row) Agents(role Role) string {
	return r.Get(string(role))
}

// SetAgents replaces the agent list of a role.
func (r *Row) SetAgents(role Role, val string) {
	r.Set(string(role), val)
}

// Record returns values of the row in the order of Columns.
func (r *Row) Record() []string {
	res := make([]string, len(Columns))
	for i, c := range Columns {
		res[i] = r.Get(c)
	}
	return res
}

// SplitAgents splits an agent list on semicolons that are outside of
// square brackets.
func SplitAgents(s string) []string {
	var res []string
	var depth, start int
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case ';':
			if depth == 0 {
				res = appendAgent(res, s[start:i])
				start = i + 1
			}
		}
	}
	return appendAgent(res, s[start:])
}

func appendAgent(res []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return res
	}
	return append(res, s)
}

// NameIDs splits a `name [ids]` string. If there are no brackets, the
// whole string is the name and ok is false.
func NameIDs(s string) (name, ids string, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "]") {
		return s, "", false
	}
	idx := strings.LastIndex(s, "[")
	if idx < 0 {
		return s, "", false
	}
	return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1 : len(s)-1]), true
}

// Render creates a `name [ids]` string. An empty id list renders the name
// only.
func Render(name string, ids []string) string {
	if len(ids) == 0 {
		return name
	}
	idsStr := "[" + strings.Join(ids, " ") + "]"
	if name == "" {
		return idsStr
	}
	return name + " " + idsStr
}

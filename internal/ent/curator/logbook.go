package curator

import "github.com/gnames/gncurator/internal/ent/key"

// Statuses and messages of the curation log.
const (
	// StatusExists marks fields resolved to an entity of the store.
	StatusExists = "ENTITY ALREADY EXISTS"

	// StatusProposed marks fields whose value was replaced by a known one.
	StatusProposed = "NEW VALUE PROPOSED"

	// InfoRefused marks agent fields whose order differs from the known
	// sequence.
	InfoRefused = "Proposed new RA sequence: REFUSED"

	// InfoCycle marks venues that would contain themselves.
	InfoCycle = "Containment cycle: REFUSED"
)

// FieldLog is a log entry for a field of a row.
type FieldLog struct {
	Status   string `json:"status,omitempty"`
	Conflict string `json:"Conflict Entity,omitempty"`
	Info     string `json:"Info,omitempty"`
}

type conflictRef struct {
	row   int
	field string
	kind  key.Kind
	key   key.Key
}

type logbook struct {
	rows      map[int]map[string]*FieldLog
	conflicts []conflictRef
}

func newLogbook() *logbook {
	return &logbook{rows: make(map[int]map[string]*FieldLog)}
}

func (l *logbook) field(row int, field string) *FieldLog {
	fields, ok := l.rows[row]
	if !ok {
		fields = make(map[string]*FieldLog)
		l.rows[row] = fields
	}
	res, ok := fields[field]
	if !ok {
		res = &FieldLog{}
		fields[field] = res
	}
	return res
}

func (l *logbook) status(row int, field, status string) {
	l.field(row, field).Status = status
}

func (l *logbook) info(row int, field, info string) {
	l.field(row, field).Info = info
}

func (l *logbook) conflict(row int, field string, kind key.Kind, k key.Key) {
	l.field(row, field)
	l.conflicts = append(l.conflicts, conflictRef{
		row: row, field: field, kind: kind, key: k,
	})
}

// build resolves conflict keys to permanent values.
func (l *logbook) build(resolve func(key.Kind, key.Key) string) map[int]map[string]FieldLog {
	for _, cr := range l.conflicts {
		l.field(cr.row, cr.field).Conflict = string(cr.kind) + "/" +
			resolve(cr.kind, cr.key)
	}
	res := make(map[int]map[string]FieldLog, len(l.rows))
	for row, fields := range l.rows {
		res[row] = make(map[string]FieldLog, len(fields))
		for f, fl := range fields {
			res[row][f] = *fl
		}
	}
	return res
}

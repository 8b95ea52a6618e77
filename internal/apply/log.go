package apply

import (
	"fmt"

	"github.com/keshon/fsnap/internal/snapshot"
)

// Outcome is the per-path result of an apply run.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"           // forward removal performed
	OutcomeAdded     Outcome = "ok_added"     // entry created where none existed
	OutcomeChanged   Outcome = "ok_changed"   // entry replaced from the expected old state
	OutcomeUnchanged Outcome = "ok_unchanged" // destination already in the new state
	OutcomeSkip      Outcome = "ok_skip"      // path skipped after an I/O error

	// Conflict outcomes: the destination matched neither the expected
	// old nor new state. Whatever was found is preserved under Backup
	// before the forward operation proceeds.
	OutcomeConflict        Outcome = "conflict"         // right kind, blocked operation (e.g. non-empty dir removal)
	OutcomeTypeConflict    Outcome = "type_conflict"    // unexpected entry kind
	OutcomeContentConflict Outcome = "content_conflict" // file present with unexpected content
)

func (o Outcome) IsConflict() bool {
	switch o {
	case OutcomeConflict, OutcomeTypeConflict, OutcomeContentConflict:
		return true
	}
	return false
}

// Record is one line of the operation log.
type Record struct {
	Path    string
	Old     snapshot.Kind
	New     snapshot.Kind
	Outcome Outcome
	Backup  string // destination-relative path of the backup, when one was made
}

func (r Record) String() string {
	s := fmt.Sprintf("%s->%s:%s:%s", r.Old, r.New, r.Outcome, r.Path)
	if r.Backup != "" {
		s += " ==> " + r.Backup
	}
	return s
}

// Log collects one record per processed path. The applier owns it and
// hands it to the caller when done.
type Log struct {
	Records []Record
}

func (l *Log) add(c snapshot.Change, outcome Outcome, backup string) {
	l.Records = append(l.Records, Record{
		Path:    c.Path,
		Old:     c.Old.Kind,
		New:     c.New.Kind,
		Outcome: outcome,
		Backup:  backup,
	})
}

// Find returns the record for path, if one was logged.
func (l *Log) Find(path string) (Record, bool) {
	for _, r := range l.Records {
		if r.Path == path {
			return r, true
		}
	}
	return Record{}, false
}

func (l *Log) Conflicts() int {
	n := 0
	for _, r := range l.Records {
		if r.Outcome.IsConflict() {
			n++
		}
	}
	return n
}

func (l *Log) HasConflicts() bool { return l.Conflicts() > 0 }

func (l *Log) Skipped() int {
	n := 0
	for _, r := range l.Records {
		if r.Outcome == OutcomeSkip {
			n++
		}
	}
	return n
}

package snapshot

import "time"

// Change records one path's transition between two snapshots.
// Old and New are never both Absent, and never an identical pair.
type Change struct {
	Path string
	Old  State
	New  State
}

// Changeset is the minimal set of per-path transitions between two
// snapshots. Built once by Diff, never mutated afterwards.
type Changeset struct {
	OldTime time.Time
	NewTime time.Time
	Changes map[string]Change
}

// Diff computes the changeset turning old into new. Pure and
// deterministic: Dir->Dir is never recorded, File->File only when size
// or fingerprint differ, every other combination always.
func Diff(oldSnap, newSnap *Snapshot) *Changeset {
	cs := &Changeset{
		OldTime: oldSnap.Time,
		NewTime: newSnap.Time,
		Changes: make(map[string]Change),
	}

	for p, o := range oldSnap.Entries {
		n, ok := newSnap.Entries[p]
		if !ok {
			n = AbsentState()
		}
		cs.record(p, o, n)
	}
	for p, n := range newSnap.Entries {
		if _, ok := oldSnap.Entries[p]; ok {
			continue
		}
		cs.record(p, AbsentState(), n)
	}
	return cs
}

func (cs *Changeset) record(p string, o, n State) {
	if o.Equal(n) {
		return
	}
	cs.Changes[p] = Change{Path: p, Old: o, New: n}
}

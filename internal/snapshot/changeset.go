package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshon/fsnap/internal/fs"
	"github.com/keshon/fsnap/internal/util"
)

type changeJSON struct {
	OldType string `json:"old_type"`
	OldSize *int64 `json:"old_size,omitempty"`
	OldXXH3 string `json:"old_xxh3,omitempty"`
	NewType string `json:"new_type"`
	NewSize *int64 `json:"new_size,omitempty"`
	NewXXH3 string `json:"new_xxh3,omitempty"`
}

type changesetJSON struct {
	OldTime time.Time             `json:"old_time"`
	NewTime time.Time             `json:"new_time"`
	Changes map[string]changeJSON `json:"changes"`
}

func (cs *Changeset) MarshalJSON() ([]byte, error) {
	out := changesetJSON{
		OldTime: cs.OldTime,
		NewTime: cs.NewTime,
		Changes: make(map[string]changeJSON, len(cs.Changes)),
	}
	for p, c := range cs.Changes {
		oldType, oldSize, oldHash := stateToFields(c.Old)
		newType, newSize, newHash := stateToFields(c.New)
		out.Changes[p] = changeJSON{
			OldType: oldType, OldSize: oldSize, OldXXH3: oldHash,
			NewType: newType, NewSize: newSize, NewXXH3: newHash,
		}
	}
	return json.Marshal(out)
}

func (cs *Changeset) UnmarshalJSON(data []byte) error {
	var in changesetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	cs.OldTime = in.OldTime
	cs.NewTime = in.NewTime
	cs.Changes = make(map[string]Change, len(in.Changes))
	for p, c := range in.Changes {
		o, err := stateFromFields(c.OldType, c.OldSize, c.OldXXH3)
		if err != nil {
			return fmt.Errorf("change %q old state: %w", p, err)
		}
		n, err := stateFromFields(c.NewType, c.NewSize, c.NewXXH3)
		if err != nil {
			return fmt.Errorf("change %q new state: %w", p, err)
		}
		if o.Equal(n) {
			return fmt.Errorf("change %q: old and new state are identical", p)
		}
		cs.Changes[p] = Change{Path: p, Old: o, New: n}
	}
	return nil
}

func stateToFields(st State) (string, *int64, string) {
	if st.Kind == File {
		size := st.Size
		return st.Kind.String(), &size, st.XXH3
	}
	return st.Kind.String(), nil, ""
}

func stateFromFields(kind string, size *int64, xxh3 string) (State, error) {
	switch kind {
	case "absent":
		return AbsentState(), nil
	case "dir":
		return DirState(), nil
	case "file":
		if size == nil || *size < 0 {
			return State{}, fmt.Errorf("file state missing size")
		}
		if xxh3 == "" {
			return State{}, fmt.Errorf("file state missing xxh3")
		}
		return FileState(*size, xxh3), nil
	default:
		return State{}, fmt.Errorf("unknown entry type %q", kind)
	}
}

// SaveChangeset writes the changeset atomically; a .json.gz path gets
// gzipped transparently.
func SaveChangeset(fsys fs.FS, path string, cs *Changeset) error {
	if err := util.WriteJSON(maybeCompressed(fsys, path), path, cs); err != nil {
		return fmt.Errorf("save changeset %q: %w", path, err)
	}
	return nil
}

// LoadChangeset reads and validates a changeset; malformed input fails
// before anything is mutated downstream.
func LoadChangeset(fsys fs.FS, path string) (*Changeset, error) {
	var cs Changeset
	if err := util.ReadJSON(maybeCompressed(fsys, path), path, &cs); err != nil {
		return nil, fmt.Errorf("load changeset %q: %w", path, err)
	}
	return &cs, nil
}

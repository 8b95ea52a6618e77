package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/keshon/fsnap/internal/config"
	"github.com/keshon/fsnap/internal/fs"
	"github.com/keshon/fsnap/internal/util"
)

// Snapshot is a flattened, timestamped capture of a directory tree.
// Every file and directory at every depth has its own key: forward
// slash separated, root relative. Entries are never Absent, and a
// Dir entry does not imply its children are omitted - they have keys
// of their own. Snapshots are immutable once built.
type Snapshot struct {
	Time    time.Time
	Entries map[string]State
}

type entryJSON struct {
	IsDir bool   `json:"is_dir"`
	Size  *int64 `json:"size,omitempty"`
	XXH3  string `json:"xxh3,omitempty"`
}

type snapshotJSON struct {
	Time  time.Time            `json:"time"`
	Files map[string]entryJSON `json:"files"`
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{Time: s.Time, Files: make(map[string]entryJSON, len(s.Entries))}
	for p, st := range s.Entries {
		e, err := stateToJSON(st)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", p, err)
		}
		out.Files[p] = e
	}
	return json.Marshal(out)
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.Time = in.Time
	s.Entries = make(map[string]State, len(in.Files))
	for p, e := range in.Files {
		st, err := stateFromJSON(e)
		if err != nil {
			return fmt.Errorf("entry %q: %w", p, err)
		}
		s.Entries[p] = st
	}
	return nil
}

func stateToJSON(st State) (entryJSON, error) {
	switch st.Kind {
	case Dir:
		return entryJSON{IsDir: true}, nil
	case File:
		size := st.Size
		return entryJSON{Size: &size, XXH3: st.XXH3}, nil
	default:
		return entryJSON{}, fmt.Errorf("absent state is not persistable")
	}
}

func stateFromJSON(e entryJSON) (State, error) {
	if e.IsDir {
		if e.Size != nil || e.XXH3 != "" {
			return State{}, fmt.Errorf("directory entry carries file fields")
		}
		return DirState(), nil
	}
	if e.Size == nil || *e.Size < 0 {
		return State{}, fmt.Errorf("file entry missing size")
	}
	if e.XXH3 == "" {
		return State{}, fmt.Errorf("file entry missing xxh3")
	}
	return FileState(*e.Size, e.XXH3), nil
}

// Save writes the snapshot atomically; a .json.gz path gets gzipped
// transparently.
func Save(fsys fs.FS, path string, s *Snapshot) error {
	if err := util.WriteJSON(maybeCompressed(fsys, path), path, s); err != nil {
		return fmt.Errorf("save snapshot %q: %w", path, err)
	}
	return nil
}

// Load reads a snapshot; malformed input fails before anything is
// mutated downstream.
func Load(fsys fs.FS, path string) (*Snapshot, error) {
	var s Snapshot
	if err := util.ReadJSON(maybeCompressed(fsys, path), path, &s); err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", path, err)
	}
	return &s, nil
}

func maybeCompressed(fsys fs.FS, path string) fs.FS {
	if strings.HasSuffix(path, config.CompressedExt) {
		return fs.NewCompressedFS(fsys)
	}
	return fsys
}

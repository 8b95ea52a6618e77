package snapshot

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/keshon/fsnap/internal/fs"
	"github.com/keshon/fsnap/internal/progress"
)

// Comparison is the result of a size-only check of a live tree against
// a stored snapshot. Same-size content edits are invisible here; this
// is a quick sanity pass, not a full diff.
type Comparison struct {
	Extra     []string // files on disk but not in the snapshot
	Missing   []string // files in the snapshot but not on disk
	Different []string // files present in both with differing sizes
}

func (c Comparison) Clean() bool {
	return len(c.Extra) == 0 && len(c.Missing) == 0 && len(c.Different) == 0
}

// QuickCompare sizes every file under root without hashing and lines
// the result up against snap's file entries.
func QuickCompare(fsys fs.FS, root string, snap *Snapshot, sink progress.Sink) Comparison {
	sizes := make(map[string]int64)
	quickScan(fsys, root, "", sizes, sink)

	var cmp Comparison
	for p := range sizes {
		if st, ok := snap.Entries[p]; !ok || st.Kind != File {
			cmp.Extra = append(cmp.Extra, p)
		}
	}
	for p, st := range snap.Entries {
		if st.Kind != File {
			continue
		}
		size, ok := sizes[p]
		if !ok {
			cmp.Missing = append(cmp.Missing, p)
			continue
		}
		if size != st.Size {
			cmp.Different = append(cmp.Different, p)
		}
	}

	sort.Strings(cmp.Extra)
	sort.Strings(cmp.Missing)
	sort.Strings(cmp.Different)
	return cmp
}

func quickScan(fsys fs.FS, root, rel string, out map[string]int64, sink progress.Sink) {
	full := filepath.Join(root, filepath.FromSlash(rel))
	entries, err := fsys.ReadDir(full)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: quick scan %q: %v\n", full, err)
		return
	}
	for _, e := range entries {
		key := path.Join(rel, e.Name())
		if e.IsDir() {
			quickScan(fsys, root, key, out, sink)
			continue
		}
		fi, err := fsys.Stat(filepath.Join(full, e.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: quick scan %q: %v\n", key, err)
			continue
		}
		out[key] = fi.Size()
		sink.Add(1)
	}
}

package snapshot

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/keshon/fsnap/internal/fs"
	"github.com/keshon/fsnap/internal/hash"
	"github.com/keshon/fsnap/internal/progress"
	"github.com/keshon/fsnap/internal/util"
)

// ScanOptions configure a scan.
type ScanOptions struct {
	// Previous supplies fingerprints for the fast path: a file whose
	// path and size both match its previous entry keeps the old
	// fingerprint without being re-read. Same-size in-place edits slip
	// through; that is the deal, not a defect.
	Previous *Snapshot

	Progress progress.Sink

	// Workers > 1 scans top-level subdirectories concurrently. Each
	// worker owns a disjoint result map; they are merged at the end.
	Workers int

	// Mmap hashes through a memory map instead of the chunked read
	// loop. Only valid when fsys paths are real OS paths.
	Mmap bool
}

// Scan captures a flattened snapshot of the tree under root.
// Unreadable subtrees are reported and omitted; the result is then a
// partial snapshot rather than an error.
func Scan(fsys fs.FS, root string, opts ScanOptions) (*Snapshot, error) {
	if !fsys.IsDir(root) {
		return nil, fmt.Errorf("scan root %q: not a directory", root)
	}

	snap := &Snapshot{Time: time.Now().UTC(), Entries: make(map[string]State)}
	s := scanner{fsys: fsys, root: root, opts: opts}

	if opts.Workers > 1 {
		if err := s.scanParallel(snap.Entries); err != nil {
			return nil, err
		}
		return snap, nil
	}

	s.scanDir("", snap.Entries)
	return snap, nil
}

type scanner struct {
	fsys fs.FS
	root string
	opts ScanOptions
}

// scanDir walks rel depth-first, filling out. Keys are forward-slash,
// root-relative.
func (s *scanner) scanDir(rel string, out map[string]State) {
	full := s.fullPath(rel)
	entries, err := s.fsys.ReadDir(full)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: scan %q: %v\n", full, err)
		return
	}

	for _, e := range entries {
		key := path.Join(rel, e.Name())
		if e.IsDir() {
			out[key] = DirState()
			s.scanDir(key, out)
			continue
		}
		st, err := s.fileState(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: scan %q: %v\n", s.fullPath(key), err)
			continue
		}
		out[key] = st
	}
}

// fileState sizes and fingerprints one file, reusing the previous
// fingerprint when path and size both match.
func (s *scanner) fileState(key string) (State, error) {
	full := s.fullPath(key)
	fi, err := s.fsys.Stat(full)
	if err != nil {
		return State{}, err
	}
	size := fi.Size()

	if s.opts.Previous != nil {
		if prev, ok := s.opts.Previous.Entries[key]; ok && prev.Kind == File && prev.Size == size {
			s.opts.Progress.Add(size)
			return prev, nil
		}
	}

	var fp string
	if s.opts.Mmap {
		fp, err = hash.FileMmap(full, s.opts.Progress)
	} else {
		fp, err = hash.File(s.fsys, full, s.opts.Progress)
	}
	if err != nil {
		return State{}, err
	}
	return FileState(size, fp), nil
}

// scanParallel fans top-level subdirectories out to workers. Results
// are disjoint per subtree, so the only shared step is the merge.
func (s *scanner) scanParallel(out map[string]State) error {
	entries, err := s.fsys.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("scan root %q: %w", s.root, err)
	}

	var dirs []string
	for _, e := range entries {
		key := e.Name()
		if e.IsDir() {
			out[key] = DirState()
			dirs = append(dirs, key)
			continue
		}
		st, err := s.fileState(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: scan %q: %v\n", s.fullPath(key), err)
			continue
		}
		out[key] = st
	}

	var mu sync.Mutex
	err = util.Parallel(dirs, s.opts.Workers, func(dir string) error {
		sub := make(map[string]State)
		s.scanDir(dir, sub)
		mu.Lock()
		for k, v := range sub {
			out[k] = v
		}
		mu.Unlock()
		return nil
	})
	return err
}

func (s *scanner) fullPath(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

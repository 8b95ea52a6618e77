package apply

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/keshon/fsnap/internal/config"
	"github.com/keshon/fsnap/internal/fs"
	"github.com/keshon/fsnap/internal/hash"
	"github.com/keshon/fsnap/internal/progress"
	"github.com/keshon/fsnap/internal/snapshot"
	"github.com/keshon/fsnap/internal/util"
)

// ErrConflicts reports that a run completed but backed up diverged
// content along the way. Distinct from a failed run: the destination
// still reached the changeset's new state everywhere.
var ErrConflicts = errors.New("applied with conflicts")

// Options configure one apply run.
type Options struct {
	FS       fs.FS
	Source   string       // root new content is copied from
	Dest     string       // root the changeset is applied to
	Mask     *os.FileMode // optional uniform permission mask, applied last
	Progress progress.Sink
}

// Apply brings the destination tree to the changeset's new state,
// pulling file content from the source tree.
//
// Every record independently re-verifies the destination before
// acting, so a run is safe to repeat after a partial failure: work
// already done is recognized as ok_unchanged the second time around.
// Content that matches neither the expected old nor new state is never
// discarded; it is renamed to a backup in the same parent first.
func Apply(cs *snapshot.Changeset, opts Options) (*Log, error) {
	if opts.FS == nil {
		opts.FS = fs.NewOSFS()
	}
	a := &applier{
		fsys: opts.FS,
		src:  opts.Source,
		dst:  opts.Dest,
		sink: opts.Progress,
		log:  &Log{},
	}

	// Descending order visits children before their parents: removals
	// shrink leaf-first, and with pass separation below, directories
	// are in place before files land inside them.
	paths := util.SortedKeys(cs.Changes)
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))

	for _, p := range paths {
		assertTransition(cs.Changes[p])
	}

	// Pass 1: file-to-directory conversions only.
	for _, p := range paths {
		c := cs.Changes[p]
		if c.Old.Kind == snapshot.File && c.New.Kind == snapshot.Dir {
			a.fileToDir(c)
		}
	}

	// Pass 2: every remaining transition kind.
	for _, p := range paths {
		c := cs.Changes[p]
		if c.Old.Kind == snapshot.File && c.New.Kind == snapshot.Dir {
			continue
		}
		a.applyChange(c)
	}

	if opts.Mask != nil {
		a.applyMask(util.SortedKeys(cs.Changes), *opts.Mask)
	}
	return a.log, nil
}

// assertTransition rejects record pairs Diff must never produce.
// Seeing one here is a bug in the diff engine, not user input.
func assertTransition(c snapshot.Change) {
	if (c.Old.Kind == snapshot.Absent && c.New.Kind == snapshot.Absent) ||
		(c.Old.Kind == snapshot.Dir && c.New.Kind == snapshot.Dir) {
		panic(fmt.Sprintf("changeset holds no-op transition %s->%s for %q",
			c.Old.Kind, c.New.Kind, c.Path))
	}
}

type applier struct {
	fsys fs.FS
	src  string
	dst  string
	sink progress.Sink
	log  *Log
}

func (a *applier) destPath(rel string) string {
	return filepath.Join(a.dst, filepath.FromSlash(rel))
}

func (a *applier) srcPath(rel string) string {
	return filepath.Join(a.src, filepath.FromSlash(rel))
}

// observe reads the actual tri-state of one destination path,
// fingerprinting file content so it can be held against expectations.
func (a *applier) observe(p string) (snapshot.State, error) {
	fi, err := a.fsys.Stat(p)
	if err != nil {
		if a.fsys.IsNotExist(err) {
			return snapshot.AbsentState(), nil
		}
		return snapshot.State{}, err
	}
	if fi.IsDir() {
		return snapshot.DirState(), nil
	}
	fp, err := hash.File(a.fsys, p, nil)
	if err != nil {
		return snapshot.State{}, err
	}
	return snapshot.FileState(fi.Size(), fp), nil
}

// fileToDir handles pass 1. The record expects a file at the path and
// wants a directory there.
func (a *applier) fileToDir(c snapshot.Change) {
	dst := a.destPath(c.Path)
	actual, err := a.observe(dst)
	if err != nil {
		a.skip(c, err)
		return
	}

	switch actual.Kind {
	case snapshot.Dir:
		// already converted
		a.log.add(c, OutcomeUnchanged, "")

	case snapshot.Absent:
		if err := a.fsys.MkdirAll(dst, config.DefaultDirPerm); err != nil {
			a.skip(c, err)
			return
		}
		a.log.add(c, OutcomeAdded, "")

	default:
		if actual.Equal(c.Old) {
			// clean conversion
			if err := a.fsys.Remove(dst); err != nil {
				a.skip(c, err)
				return
			}
			if err := a.fsys.MkdirAll(dst, config.DefaultDirPerm); err != nil {
				a.skip(c, err)
				return
			}
			a.log.add(c, OutcomeOK, "")
			return
		}
		bak, err := a.moveToBackup(dst)
		if err != nil {
			a.skip(c, err)
			return
		}
		if err := a.fsys.MkdirAll(dst, config.DefaultDirPerm); err != nil {
			a.skip(c, err)
			return
		}
		a.log.add(c, OutcomeContentConflict, relBackup(c.Path, bak))
	}
}

// applyChange handles one pass-2 record: verify the destination, then
// no-op, forward-apply, or backup-and-apply.
func (a *applier) applyChange(c snapshot.Change) {
	dst := a.destPath(c.Path)
	actual, err := a.observe(dst)
	if err != nil {
		a.skip(c, err)
		return
	}

	if actual.Equal(c.New) {
		a.log.add(c, OutcomeUnchanged, "")
		return
	}

	if actual.Equal(c.Old) {
		a.forward(c, dst)
		return
	}

	a.diverged(c, actual, dst)
}

// forward performs the transition from a verified old state.
func (a *applier) forward(c snapshot.Change, dst string) {
	switch {
	case c.New.Kind == snapshot.Absent:
		if c.Old.Kind == snapshot.Dir && !a.dirEmpty(dst) {
			// removal expected but the directory still has content
			a.diverged(c, snapshot.DirState(), dst)
			return
		}
		if err := a.fsys.Remove(dst); err != nil {
			a.skip(c, err)
			return
		}
		a.log.add(c, OutcomeOK, "")

	case c.New.Kind == snapshot.Dir:
		// old is Absent here: Dir->Dir is asserted away, File->Dir is pass 1
		if err := a.fsys.MkdirAll(dst, config.DefaultDirPerm); err != nil {
			a.skip(c, err)
			return
		}
		a.log.add(c, OutcomeAdded, "")

	default: // new is a file
		if c.Old.Kind == snapshot.Dir {
			if !a.dirEmpty(dst) {
				a.diverged(c, snapshot.DirState(), dst)
				return
			}
			if err := a.fsys.Remove(dst); err != nil {
				a.skip(c, err)
				return
			}
		}
		if err := a.copyFromSource(c.Path, dst); err != nil {
			a.skip(c, err)
			return
		}
		if c.Old.Kind == snapshot.Absent {
			a.log.add(c, OutcomeAdded, "")
		} else {
			a.log.add(c, OutcomeChanged, "")
		}
	}
}

// diverged handles a destination that matches neither expected state:
// preserve what is there, then force the new state anyway.
func (a *applier) diverged(c snapshot.Change, actual snapshot.State, dst string) {
	outcome := classify(actual, c)

	var bak string
	if actual.Kind != snapshot.Absent {
		moved, err := a.moveToBackup(dst)
		if err != nil {
			a.skip(c, err)
			return
		}
		bak = relBackup(c.Path, moved)
	}

	switch c.New.Kind {
	case snapshot.Absent:
		// the rename already cleared the path
	case snapshot.Dir:
		if err := a.fsys.MkdirAll(dst, config.DefaultDirPerm); err != nil {
			a.skip(c, err)
			return
		}
	default:
		if err := a.copyFromSource(c.Path, dst); err != nil {
			a.skip(c, err)
			return
		}
	}
	a.log.add(c, outcome, bak)
}

// classify names the conflict by what was actually found.
func classify(actual snapshot.State, c snapshot.Change) Outcome {
	switch actual.Kind {
	case snapshot.File:
		if c.Old.Kind == snapshot.File || c.New.Kind == snapshot.File {
			return OutcomeContentConflict
		}
		return OutcomeTypeConflict
	case snapshot.Dir:
		if c.Old.Kind == snapshot.Dir || c.New.Kind == snapshot.Dir {
			return OutcomeConflict
		}
		return OutcomeTypeConflict
	default:
		return OutcomeConflict
	}
}

// copyFromSource streams the source file into place through a temp
// file in the destination parent, then renames it over.
func (a *applier) copyFromSource(rel, dst string) error {
	src := a.srcPath(rel)
	in, err := a.fsys.Open(src)
	if err != nil {
		return fmt.Errorf("open source %q: %w", src, err)
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	if err := a.fsys.MkdirAll(dir, config.DefaultDirPerm); err != nil {
		return fmt.Errorf("mkdir %q: %w", dir, err)
	}

	tmp, tmpPath, err := a.fsys.CreateTempFile(dir, "tmp-*")
	if err != nil {
		return fmt.Errorf("temp file in %q: %w", dir, err)
	}
	defer a.fsys.Remove(tmpPath) // no-op after a successful rename

	if _, _, err := hash.Copy(tmp, in, a.sink); err != nil {
		tmp.Close()
		return fmt.Errorf("copy %q: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return a.fsys.Rename(tmpPath, dst)
}

func (a *applier) moveToBackup(dst string) (string, error) {
	bak, err := backupName(a.fsys, dst)
	if err != nil {
		return "", err
	}
	if err := a.fsys.Rename(dst, bak); err != nil {
		return "", fmt.Errorf("backup %q: %w", dst, err)
	}
	return bak, nil
}

func (a *applier) dirEmpty(p string) bool {
	entries, err := a.fsys.ReadDir(p)
	return err == nil && len(entries) == 0
}

// applyMask chmods every changeset path that still exists, after all
// renames and removals are done so nothing loses its mode later.
func (a *applier) applyMask(paths []string, mask os.FileMode) {
	for _, p := range paths {
		dst := a.destPath(p)
		if !a.fsys.Exists(dst) {
			continue
		}
		if err := a.fsys.Chmod(dst, mask); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: chmod %q: %v\n", dst, err)
		}
	}
}

func (a *applier) skip(c snapshot.Change, err error) {
	fmt.Fprintf(os.Stderr, "Warning: apply %q: %v\n", c.Path, err)
	a.log.add(c, OutcomeSkip, "")
}

// relBackup rewrites an absolute backup path as destination-relative,
// next to the original entry.
func relBackup(rel, bak string) string {
	return path.Join(path.Dir(filepath.ToSlash(rel)), filepath.Base(bak))
}

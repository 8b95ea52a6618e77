package watch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/keshon/fsnap/internal/snapshot"
	"github.com/keshon/fsnap/internal/watch"
)

func waitEvent(t *testing.T, w *watch.Watcher) watch.Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return watch.Event{}
	}
}

func TestWatcherInitialSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))

	w, err := watch.New(watch.Config{Root: dir})
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	cur := w.Current()
	require.Contains(t, cur.Entries, "a.txt")
	require.Equal(t, snapshot.File, cur.Entries["a.txt"].Kind)
}

func TestWatcherRootMustExist(t *testing.T) {
	_, err := watch.New(watch.Config{Root: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
}

func TestWatcherReportsCreation(t *testing.T) {
	dir := t.TempDir()

	w, err := watch.New(watch.Config{Root: dir, Debounce: 100 * time.Millisecond})
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("hello"), 0o644))

	ev := waitEvent(t, w)
	c, ok := ev.Changes.Changes["new.txt"]
	require.True(t, ok)
	require.Equal(t, snapshot.Absent, c.Old.Kind)
	require.Equal(t, snapshot.File, c.New.Kind)
	require.Equal(t, int64(5), c.New.Size)

	require.Contains(t, w.Current().Entries, "new.txt")
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()

	w, err := watch.New(watch.Config{Root: dir, Debounce: 100 * time.Millisecond})
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	ev := waitEvent(t, w)
	require.Contains(t, ev.Changes.Changes, "sub")

	// the new directory got a watch of its own
	require.NoError(t, os.WriteFile(filepath.Join(sub, "inner.txt"), []byte("x"), 0o644))

	ev = waitEvent(t, w)
	c, ok := ev.Changes.Changes["sub/inner.txt"]
	require.True(t, ok)
	require.Equal(t, snapshot.File, c.New.Kind)
}

func TestWatcherReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doomed.txt")
	require.NoError(t, os.WriteFile(path, []byte("bye"), 0o644))

	w, err := watch.New(watch.Config{Root: dir, Debounce: 100 * time.Millisecond})
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.Remove(path))

	ev := waitEvent(t, w)
	c, ok := ev.Changes.Changes["doomed.txt"]
	require.True(t, ok)
	require.Equal(t, snapshot.File, c.Old.Kind)
	require.Equal(t, snapshot.Absent, c.New.Kind)
	require.NotContains(t, w.Current().Entries, "doomed.txt")
}

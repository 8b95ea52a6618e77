package snapshot_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/keshon/fsnap/internal/snapshot"
)

func snapAt(sec int, entries map[string]snapshot.State) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Time:    time.Date(2024, 3, 1, 12, 0, sec, 0, time.UTC),
		Entries: entries,
	}
}

func TestDiffIdenticalSnapshotsIsEmpty(t *testing.T) {
	entries := map[string]snapshot.State{
		"a.txt": fileState("alpha"),
		"sub":   snapshot.DirState(),
	}
	cs := snapshot.Diff(snapAt(0, entries), snapAt(1, entries))
	require.Empty(t, cs.Changes)
}

func TestDiffTransitions(t *testing.T) {
	oldSnap := snapAt(0, map[string]snapshot.State{
		"kept.txt":     fileState("same"),
		"edited.txt":   fileState("before"),
		"resized.txt":  fileState("ab"),
		"removed.txt":  fileState("gone"),
		"was-file":     fileState("promote me"),
		"was-dir":      snapshot.DirState(),
		"old-dir":      snapshot.DirState(),
		"keep-dir":     snapshot.DirState(),
		"same-size.db": fileState("aaaa"),
	})
	newSnap := snapAt(1, map[string]snapshot.State{
		"kept.txt":     fileState("same"),
		"edited.txt":   fileState("after!"),
		"resized.txt":  fileState("abc"),
		"added.txt":    fileState("new"),
		"was-file":     snapshot.DirState(),
		"was-dir":      fileState("demoted"),
		"new-dir":      snapshot.DirState(),
		"keep-dir":     snapshot.DirState(),
		"same-size.db": fileState("bbbb"),
	})

	cs := snapshot.Diff(oldSnap, newSnap)
	require.True(t, cs.OldTime.Equal(oldSnap.Time))
	require.True(t, cs.NewTime.Equal(newSnap.Time))

	kinds := func(p string) (snapshot.Kind, snapshot.Kind) {
		c, ok := cs.Changes[p]
		require.True(t, ok, "missing change for %q", p)
		require.Equal(t, p, c.Path)
		return c.Old.Kind, c.New.Kind
	}

	o, n := kinds("edited.txt")
	require.Equal(t, snapshot.File, o)
	require.Equal(t, snapshot.File, n)

	o, n = kinds("resized.txt")
	require.Equal(t, snapshot.File, o)
	require.Equal(t, snapshot.File, n)

	o, n = kinds("same-size.db")
	require.Equal(t, snapshot.File, o)
	require.Equal(t, snapshot.File, n)

	o, n = kinds("removed.txt")
	require.Equal(t, snapshot.File, o)
	require.Equal(t, snapshot.Absent, n)

	o, n = kinds("added.txt")
	require.Equal(t, snapshot.Absent, o)
	require.Equal(t, snapshot.File, n)

	o, n = kinds("was-file")
	require.Equal(t, snapshot.File, o)
	require.Equal(t, snapshot.Dir, n)

	o, n = kinds("was-dir")
	require.Equal(t, snapshot.Dir, o)
	require.Equal(t, snapshot.File, n)

	o, n = kinds("old-dir")
	require.Equal(t, snapshot.Dir, o)
	require.Equal(t, snapshot.Absent, n)

	o, n = kinds("new-dir")
	require.Equal(t, snapshot.Absent, o)
	require.Equal(t, snapshot.Dir, n)

	// unchanged entries never show up
	require.NotContains(t, cs.Changes, "kept.txt")
	require.NotContains(t, cs.Changes, "keep-dir")
	require.Len(t, cs.Changes, 9)
}

func TestDiffIsDeterministic(t *testing.T) {
	oldSnap := snapAt(0, map[string]snapshot.State{"a": fileState("1"), "b": snapshot.DirState()})
	newSnap := snapAt(1, map[string]snapshot.State{"a": fileState("2"), "c": fileState("3")})

	first := snapshot.Diff(oldSnap, newSnap)
	second := snapshot.Diff(oldSnap, newSnap)
	require.Equal(t, first.Changes, second.Changes)
}

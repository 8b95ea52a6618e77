package snapshot_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keshon/fsnap/internal/fs"
	"github.com/keshon/fsnap/internal/snapshot"
)

func TestChangesetSaveLoadRoundTrip(t *testing.T) {
	m := fs.NewMemoryFS()
	oldSnap := snapAt(0, map[string]snapshot.State{
		"a.txt": fileState("before"),
		"gone":  snapshot.DirState(),
	})
	newSnap := snapAt(1, map[string]snapshot.State{
		"a.txt": fileState("after!!"),
		"b.txt": fileState("fresh"),
	})

	cs := snapshot.Diff(oldSnap, newSnap)
	require.NoError(t, snapshot.SaveChangeset(m, "delta.json", cs))

	got, err := snapshot.LoadChangeset(m, "delta.json")
	require.NoError(t, err)
	require.True(t, got.OldTime.Equal(cs.OldTime))
	require.True(t, got.NewTime.Equal(cs.NewTime))
	require.Equal(t, cs.Changes, got.Changes)
}

func TestChangesetCompressedRoundTrip(t *testing.T) {
	m := fs.NewMemoryFS()
	cs := snapshot.Diff(
		snapAt(0, map[string]snapshot.State{"a": fileState("1")}),
		snapAt(1, map[string]snapshot.State{"a": fileState("2")}),
	)

	require.NoError(t, snapshot.SaveChangeset(m, "delta.json.gz", cs))
	got, err := snapshot.LoadChangeset(m, "delta.json.gz")
	require.NoError(t, err)
	require.Equal(t, cs.Changes, got.Changes)
}

func TestLoadChangesetRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"identical states": `{"old_time":"2024-03-01T12:00:00Z","new_time":"2024-03-01T12:00:01Z",
			"changes":{"x":{"old_type":"dir","new_type":"dir"}}}`,
		"unknown type": `{"old_time":"2024-03-01T12:00:00Z","new_time":"2024-03-01T12:00:01Z",
			"changes":{"x":{"old_type":"symlink","new_type":"file","new_size":1,"new_xxh3":"00aa00aa00aa00aa"}}}`,
		"file missing size": `{"old_time":"2024-03-01T12:00:00Z","new_time":"2024-03-01T12:00:01Z",
			"changes":{"x":{"old_type":"absent","new_type":"file","new_xxh3":"00aa00aa00aa00aa"}}}`,
		"file missing hash": `{"old_time":"2024-03-01T12:00:00Z","new_time":"2024-03-01T12:00:01Z",
			"changes":{"x":{"old_type":"absent","new_type":"file","new_size":1}}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			m := fs.NewMemoryFS()
			require.NoError(t, m.WriteFile("bad.json", []byte(raw), 0o644))
			_, err := snapshot.LoadChangeset(m, "bad.json")
			require.Error(t, err)
		})
	}
}

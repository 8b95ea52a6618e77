package snapshot_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keshon/fsnap/internal/fs"
	"github.com/keshon/fsnap/internal/snapshot"
)

func buildTree(t *testing.T) *fs.MemoryFS {
	t.Helper()
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("src/sub/deep", 0o755))
	require.NoError(t, m.WriteFile("src/a.txt", []byte("alpha"), 0o644))
	require.NoError(t, m.WriteFile("src/sub/b.txt", []byte("beta"), 0o644))
	require.NoError(t, m.WriteFile("src/sub/deep/c.txt", []byte("gamma"), 0o644))
	return m
}

func TestScanFlattensTree(t *testing.T) {
	m := buildTree(t)

	s, err := snapshot.Scan(m, "src", snapshot.ScanOptions{})
	require.NoError(t, err)

	require.Equal(t, map[string]snapshot.State{
		"a.txt":          fileState("alpha"),
		"sub":            snapshot.DirState(),
		"sub/b.txt":      fileState("beta"),
		"sub/deep":       snapshot.DirState(),
		"sub/deep/c.txt": fileState("gamma"),
	}, s.Entries)
	require.False(t, s.Time.IsZero())
}

func TestScanRootMustBeDirectory(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.WriteFile("file", []byte("x"), 0o644))

	_, err := snapshot.Scan(m, "file", snapshot.ScanOptions{})
	require.Error(t, err)

	_, err = snapshot.Scan(m, "missing", snapshot.ScanOptions{})
	require.Error(t, err)
}

func TestScanReusesFingerprintOnSameSize(t *testing.T) {
	m := buildTree(t)

	first, err := snapshot.Scan(m, "src", snapshot.ScanOptions{})
	require.NoError(t, err)

	// same length, different bytes: the fast path keeps the old fingerprint
	require.NoError(t, m.WriteFile("src/a.txt", []byte("aleph"), 0o644))
	second, err := snapshot.Scan(m, "src", snapshot.ScanOptions{Previous: first})
	require.NoError(t, err)
	require.Equal(t, first.Entries["a.txt"], second.Entries["a.txt"])

	// size change forces a re-read
	require.NoError(t, m.WriteFile("src/a.txt", []byte("alephs"), 0o644))
	third, err := snapshot.Scan(m, "src", snapshot.ScanOptions{Previous: first})
	require.NoError(t, err)
	require.Equal(t, fileState("alephs"), third.Entries["a.txt"])
}

func TestScanWithoutPreviousRereads(t *testing.T) {
	m := buildTree(t)

	_, err := snapshot.Scan(m, "src", snapshot.ScanOptions{})
	require.NoError(t, err)

	require.NoError(t, m.WriteFile("src/a.txt", []byte("aleph"), 0o644))
	s, err := snapshot.Scan(m, "src", snapshot.ScanOptions{})
	require.NoError(t, err)
	require.Equal(t, fileState("aleph"), s.Entries["a.txt"])
}

func TestScanParallelMatchesSequential(t *testing.T) {
	m := buildTree(t)
	require.NoError(t, m.MkdirAll("src/other", 0o755))
	require.NoError(t, m.WriteFile("src/other/d.txt", []byte("delta"), 0o644))

	seq, err := snapshot.Scan(m, "src", snapshot.ScanOptions{})
	require.NoError(t, err)

	par, err := snapshot.Scan(m, "src", snapshot.ScanOptions{Workers: 4})
	require.NoError(t, err)

	require.Equal(t, seq.Entries, par.Entries)
}

func TestScanProgressCountsBytes(t *testing.T) {
	m := buildTree(t)

	var seen int64
	_, err := snapshot.Scan(m, "src", snapshot.ScanOptions{
		Progress: func(n int64) { seen += n },
	})
	require.NoError(t, err)
	require.Equal(t, int64(len("alpha")+len("beta")+len("gamma")), seen)
}

package snapshot_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keshon/fsnap/internal/snapshot"
)

func TestQuickCompareClean(t *testing.T) {
	m := buildTree(t)

	s, err := snapshot.Scan(m, "src", snapshot.ScanOptions{})
	require.NoError(t, err)

	cmp := snapshot.QuickCompare(m, "src", s, nil)
	require.True(t, cmp.Clean())
}

func TestQuickCompareFindsDrift(t *testing.T) {
	m := buildTree(t)

	s, err := snapshot.Scan(m, "src", snapshot.ScanOptions{})
	require.NoError(t, err)

	require.NoError(t, m.WriteFile("src/extra.txt", []byte("new"), 0o644))
	require.NoError(t, m.Remove("src/sub/b.txt"))
	require.NoError(t, m.WriteFile("src/a.txt", []byte("alpha plus"), 0o644))

	cmp := snapshot.QuickCompare(m, "src", s, nil)
	require.False(t, cmp.Clean())
	require.Equal(t, []string{"extra.txt"}, cmp.Extra)
	require.Equal(t, []string{"sub/b.txt"}, cmp.Missing)
	require.Equal(t, []string{"a.txt"}, cmp.Different)
}

func TestQuickCompareMissesSameSizeEdits(t *testing.T) {
	m := buildTree(t)

	s, err := snapshot.Scan(m, "src", snapshot.ScanOptions{})
	require.NoError(t, err)

	// same length, different content: invisible to a size-only pass
	require.NoError(t, m.WriteFile("src/a.txt", []byte("aleph"), 0o644))

	cmp := snapshot.QuickCompare(m, "src", s, nil)
	require.True(t, cmp.Clean())
}

func TestQuickCompareCountsFiles(t *testing.T) {
	m := buildTree(t)

	s, err := snapshot.Scan(m, "src", snapshot.ScanOptions{})
	require.NoError(t, err)

	var n int64
	snapshot.QuickCompare(m, "src", s, func(i int64) { n += i })
	require.Equal(t, int64(3), n)
}

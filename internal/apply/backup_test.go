package apply

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keshon/fsnap/internal/config"
	"github.com/keshon/fsnap/internal/fs"
)

func TestBackupNameFirstFree(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("d", 0o755))
	require.NoError(t, m.WriteFile("d/a.txt", []byte("x"), 0o644))

	name, err := backupName(m, "d/a.txt")
	require.NoError(t, err)
	require.Equal(t, "d/a.txt.bak", name)
}

func TestBackupNameSequence(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("d", 0o755))
	require.NoError(t, m.WriteFile("d/a.txt", []byte("x"), 0o644))
	require.NoError(t, m.WriteFile("d/a.txt.bak", []byte("x"), 0o644))

	name, err := backupName(m, "d/a.txt")
	require.NoError(t, err)
	require.Equal(t, "d/a.txt.bak2", name)

	require.NoError(t, m.WriteFile("d/a.txt.bak2", []byte("x"), 0o644))
	name, err = backupName(m, "d/a.txt")
	require.NoError(t, err)
	require.Equal(t, "d/a.txt.bak3", name)
}

func TestBackupNameTruncatesLongBase(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("d", 0o755))

	long := strings.Repeat("x", config.MaxBackupBase+55)
	name, err := backupName(m, "d/"+long)
	require.NoError(t, err)
	require.Equal(t, "d/"+long[:config.MaxBackupBase]+config.BackupSuffix, name)
}

package apply

import (
	"fmt"
	"path/filepath"

	"github.com/keshon/fsnap/internal/config"
	"github.com/keshon/fsnap/internal/fs"
)

// backupName picks the first free backup name for path inside its own
// parent directory: name.bak, then name.bak2, name.bak3, and so on.
// Very long names are truncated before the suffix so the result stays
// within filesystem name limits.
func backupName(fsys fs.FS, path string) (string, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if len(base) > config.MaxBackupBase {
		base = base[:config.MaxBackupBase]
	}

	for i := 1; i <= config.MaxBackupTries; i++ {
		name := base + config.BackupSuffix
		if i > 1 {
			name = fmt.Sprintf("%s%s%d", base, config.BackupSuffix, i)
		}
		cand := filepath.Join(dir, name)
		if !fsys.Exists(cand) {
			return cand, nil
		}
	}
	return "", fmt.Errorf("no free backup name for %q", path)
}

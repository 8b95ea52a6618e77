package config

const (
	// ChunkSize is the read granularity for hashing and copying.
	ChunkSize = 64 * 1024

	SnapshotExt   = ".json"
	CompressedExt = ".json.gz"
)

const (
	BackupSuffix   = ".bak"
	MaxBackupTries = 1000

	// MaxBackupBase bounds the byte length of a file name before the
	// backup suffix is appended, so backups never exceed NAME_MAX.
	MaxBackupBase = 200
)

const (
	DefaultDirPerm  = 0o755
	DefaultFilePerm = 0o644
)

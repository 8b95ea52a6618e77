package fs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"

	"github.com/go-git/go-billy/v5"
	billyutil "github.com/go-git/go-billy/v5/util"
)

// BillyFS adapts a billy.Filesystem (osfs, memfs, chroot) to the FS interface.
type BillyFS struct {
	underlying billy.Filesystem
}

func NewBillyFS(base billy.Filesystem) *BillyFS {
	return &BillyFS{underlying: base}
}

func (b *BillyFS) Open(path string) (io.ReadSeekCloser, error) {
	return b.underlying.Open(path)
}

func (b *BillyFS) ReadFile(path string) ([]byte, error) {
	return billyutil.ReadFile(b.underlying, path)
}

func (b *BillyFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return billyutil.WriteFile(b.underlying, path, data, perm)
}

func (b *BillyFS) MkdirAll(path string, perm os.FileMode) error {
	return b.underlying.MkdirAll(path, perm)
}

// Remove keeps os.Remove semantics: refuse to remove a non-empty directory,
// which billy memfs would otherwise allow.
func (b *BillyFS) Remove(path string) error {
	if fi, err := b.underlying.Stat(path); err == nil && fi.IsDir() {
		if children, _ := b.underlying.ReadDir(path); len(children) > 0 {
			return errors.New("remove " + path + ": directory not empty")
		}
	}
	return b.underlying.Remove(path)
}

func (b *BillyFS) Rename(oldPath, newPath string) error {
	return b.underlying.Rename(oldPath, newPath)
}

// Chmod is a no-op on backends that do not implement billy.Change.
func (b *BillyFS) Chmod(path string, perm os.FileMode) error {
	if c, ok := b.underlying.(billy.Change); ok {
		return c.Chmod(path, perm)
	}
	return nil
}

func (b *BillyFS) Stat(path string) (os.FileInfo, error) {
	return b.underlying.Stat(path)
}

func (b *BillyFS) ReadDir(path string) ([]os.DirEntry, error) {
	infos, err := b.underlying.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]os.DirEntry, 0, len(infos))
	for _, fi := range infos {
		out = append(out, iofs.FileInfoToDirEntry(fi))
	}
	return out, nil
}

func (b *BillyFS) CreateTempFile(dir, pattern string) (io.WriteCloser, string, error) {
	f, err := b.underlying.TempFile(dir, pattern)
	if err != nil {
		return nil, "", err
	}
	return f, f.Name(), nil
}

func (b *BillyFS) IsNotExist(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, iofs.ErrNotExist)
}

func (b *BillyFS) Exists(path string) bool {
	_, err := b.underlying.Stat(path)
	return err == nil
}

func (b *BillyFS) IsDir(path string) bool {
	fi, err := b.underlying.Stat(path)
	return err == nil && fi.IsDir()
}

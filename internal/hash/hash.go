package hash

import (
	"fmt"
	"io"

	"github.com/zeebo/xxh3"
	"golang.org/x/exp/mmap"

	"github.com/keshon/fsnap/internal/config"
	"github.com/keshon/fsnap/internal/fs"
	"github.com/keshon/fsnap/internal/progress"
)

// Fingerprints are xxh3 64-bit digests rendered as 16 lowercase hex
// chars. They are equality checks, not a security guarantee.

// Sum fingerprints a byte slice.
func Sum(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

// Reader fingerprints r in ChunkSize reads, reporting each chunk's
// byte count to sink.
func Reader(r io.Reader, sink progress.Sink) (string, error) {
	h := xxh3.New()
	buf := make([]byte, config.ChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			sink.Add(int64(n))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// File fingerprints the file at path through fsys.
func File(fsys fs.FS, path string, sink progress.Sink) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()
	return Reader(f, sink)
}

// FileMmap fingerprints an OS path through a memory map, skipping the
// read-loop copies. Only valid for real files, not FS-backed ones.
func FileMmap(path string, sink progress.Sink) (string, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return "", fmt.Errorf("mmap %q: %w", path, err)
	}
	defer r.Close()

	h := xxh3.New()
	buf := make([]byte, config.ChunkSize)
	size := r.Len()
	for off := 0; off < size; off += config.ChunkSize {
		end := off + config.ChunkSize
		if end > size {
			end = size
		}
		n, err := r.ReadAt(buf[:end-off], int64(off))
		if n > 0 {
			h.Write(buf[:n])
			sink.Add(int64(n))
		}
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("mmap read %q: %w", path, err)
		}
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// Copy streams r into w in ChunkSize chunks, fingerprinting the bytes
// as they pass. Returns the byte count and fingerprint of what was
// written.
func Copy(w io.Writer, r io.Reader, sink progress.Sink) (int64, string, error) {
	h := xxh3.New()
	buf := make([]byte, config.ChunkSize)
	var written int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return written, "", werr
			}
			h.Write(buf[:n])
			written += int64(n)
			sink.Add(int64(n))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, "", err
		}
	}
	return written, fmt.Sprintf("%016x", h.Sum64()), nil
}

package hash_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/keshon/fsnap/internal/fs"
	"github.com/keshon/fsnap/internal/hash"
)

func TestSumDeterministic(t *testing.T) {
	a := hash.Sum([]byte("hello"))
	b := hash.Sum([]byte("hello"))
	if a != b {
		t.Fatalf("same input, different digests: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("expected 16 hex chars, got %q", a)
	}
	if a == hash.Sum([]byte("hellp")) {
		t.Fatal("different input produced equal digests")
	}
}

func TestReaderMatchesSum(t *testing.T) {
	// spans multiple 64 KiB chunks
	data := bytes.Repeat([]byte("0123456789abcdef"), 16*1024)

	got, err := hash.Reader(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := hash.Sum(data); got != want {
		t.Fatalf("chunked digest %s != one-shot digest %s", got, want)
	}
}

func TestReaderProgress(t *testing.T) {
	data := make([]byte, 100_000)

	var seen int64
	_, err := hash.Reader(bytes.NewReader(data), func(n int64) { seen += n })
	if err != nil {
		t.Fatal(err)
	}
	if seen != int64(len(data)) {
		t.Fatalf("progress saw %d bytes, expected %d", seen, len(data))
	}
}

func TestFileThroughFS(t *testing.T) {
	m := fs.NewMemoryFS()
	m.MkdirAll("d", 0o755)
	m.WriteFile("d/f", []byte("content"), 0o644)

	got, err := hash.File(m, "d/f", nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := hash.Sum([]byte("content")); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	if _, err := hash.File(m, "d/missing", nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFileMmapMatchesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big")
	data := bytes.Repeat([]byte{0xab, 0xcd, 0x01}, 70_000)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	viaRead, err := hash.File(fs.NewOSFS(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	viaMmap, err := hash.FileMmap(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if viaRead != viaMmap {
		t.Fatalf("mmap digest %s != read digest %s", viaMmap, viaRead)
	}
}

func TestCopyHashesWhatItWrites(t *testing.T) {
	data := bytes.Repeat([]byte("xyz"), 50_000)
	var out bytes.Buffer

	n, fp, err := hash.Copy(&out, bytes.NewReader(data), nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len(data)) {
		t.Fatalf("wrote %d bytes, expected %d", n, len(data))
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatal("copied bytes differ from input")
	}
	if want := hash.Sum(data); fp != want {
		t.Fatalf("copy digest %s != one-shot digest %s", fp, want)
	}
}

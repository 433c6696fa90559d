package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestOSFileSystemRoundTrip(t *testing.T) {
	osfs := OSFileSystem{}
	path := filepath.Join(t.TempDir(), "nested", "archive.gz")

	if err := osfs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	w, err := osfs.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("payload")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if !osfs.Exists(path) {
		t.Fatal("Exists returned false for written file")
	}

	data, err := osfs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("ReadFile = %q, want %q", data, "payload")
	}

	f, err := osfs.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	data, err = io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("Open read %q, want %q", data, "payload")
	}
}

func TestOSFileSystemExistsMissing(t *testing.T) {
	if (OSFileSystem{}).Exists(filepath.Join(t.TempDir(), "missing")) {
		t.Error("Exists returned true for missing file")
	}
}

func TestMemoryFileSystemCreateAndOpen(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("out/meshes/0.mesh.gz")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("hello ")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := w.Write([]byte("world")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := mfs.Open("out/meshes/0.mesh.gz")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("read %q, want %q", data, "hello world")
	}

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Name() != "0.mesh.gz" || info.Size() != int64(len("hello world")) {
		t.Errorf("Stat = %q/%d, want %q/%d", info.Name(), info.Size(), "0.mesh.gz", len("hello world"))
	}
}

func TestMemoryFileSystemOpenNonExistent(t *testing.T) {
	_, err := NewMemoryFileSystem().Open("missing")
	if err == nil {
		t.Fatal("expected error opening missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want fs.ErrNotExist", err)
	}
}

func TestMemoryFileSystemReadFileCopies(t *testing.T) {
	mfs := NewMemoryFileSystem()
	w, err := mfs.Create("file")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	w.Write([]byte("abc"))
	w.Close()

	data, err := mfs.ReadFile("file")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	data[0] = 'x'

	again, err := mfs.ReadFile("file")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(again) != "abc" {
		t.Errorf("stored data mutated through returned slice: %q", again)
	}
}

func TestMemoryFileSystemMkdirAllAndExists(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.MkdirAll("a/b/c", 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	for _, dir := range []string{"a", "a/b", "a/b/c"} {
		if !mfs.Exists(dir) {
			t.Errorf("Exists(%q) = false after MkdirAll", dir)
		}
	}
	if mfs.Exists("a/b/c/d") {
		t.Error("Exists returned true for never-created path")
	}
}

func TestMemoryFileSystemPathCleaning(t *testing.T) {
	mfs := NewMemoryFileSystem()
	w, err := mfs.Create("dir/./file")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	w.Write([]byte("x"))
	w.Close()

	if !mfs.Exists("dir/file") {
		t.Error("Create did not clean the path")
	}
}

func TestMemoryFileSystemCreateTruncates(t *testing.T) {
	mfs := NewMemoryFileSystem()
	w, _ := mfs.Create("file")
	w.Write([]byte("first version"))
	w.Close()

	w, _ = mfs.Create("file")
	w.Write([]byte("second"))
	w.Close()

	data, err := mfs.ReadFile("file")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("data after recreate = %q, want %q", data, "second")
	}
}

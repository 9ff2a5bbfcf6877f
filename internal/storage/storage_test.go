package storage_test

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Tiliavir/trivial-calendar/internal/storage"
)

func TestWriteAtomicCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "2024", "events.csv")

	err := storage.WriteAtomic(path, 0o600, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, "id,title")
		return err
	})
	if err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(data) != "id,title\n" {
		t.Errorf("content = %q, want %q", data, "id,title\n")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestWriteAtomicKeepsOldFileOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	if err := storage.WriteFileAtomic(path, 0o600, []byte("old")); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := storage.WriteAtomic(path, 0o600, func(w io.Writer) error {
		_, _ = w.Write([]byte("half"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WriteAtomic error = %v, want %v", err, boom)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "old" {
		t.Errorf("content = %q, want the previous content", data)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestWriteFileAtomicOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	for _, content := range []string{"first", "second"} {
		if err := storage.WriteFileAtomic(path, 0o600, []byte(content)); err != nil {
			t.Fatalf("WriteFileAtomic(%q): %v", content, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

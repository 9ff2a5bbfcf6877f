// Package storage writes output files so that readers never observe a
// partially written file.
package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteAtomic renders a file through write and moves it into place at path.
// Parent directories are created with 0700. On any error path is left
// untouched.
func WriteAtomic(path string, perm os.FileMode, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), perm); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// WriteFileAtomic writes data to path like WriteAtomic.
func WriteFileAtomic(path string, perm os.FileMode, data []byte) error {
	return WriteAtomic(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// Package fsutil holds the filesystem helpers the render pass relies on for
// output safety.
package fsutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to path using a temp file in the same directory
// followed by a rename, so readers never observe a half-written file. If the
// operation fails, the original file (if any) is left unchanged. The caller
// must ensure the parent directory exists.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".scaffold-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	success = true
	return nil
}

// DirState describes what currently sits at a prospective output root.
type DirState int

const (
	// DirMissing means nothing exists at the path.
	DirMissing DirState = iota
	// DirEmpty means an empty directory exists at the path.
	DirEmpty
	// DirNotEmpty means a directory with at least one entry exists.
	DirNotEmpty
	// NotDir means a non-directory entry exists at the path.
	NotDir
)

// InspectDir reports the state of path without modifying it.
func InspectDir(path string) (DirState, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return DirMissing, nil
	}
	if err != nil {
		return DirMissing, err
	}
	if !info.IsDir() {
		return NotDir, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return DirMissing, err
	}
	defer f.Close()

	if _, err := f.Readdirnames(1); errors.Is(err, io.EOF) {
		return DirEmpty, nil
	} else if err != nil {
		return DirMissing, err
	}
	return DirNotEmpty, nil
}

package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// MakeDir creates a directory with all parent directories
func MakeDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// MoveFile moves or renames a file, falling back to copy+remove when the
// rename crosses filesystems.
func MoveFile(src, dst string) error {
	if err := MakeDir(filepath.Dir(dst)); err != nil {
		return fmt.Errorf("failed to create destination dir for %s: %w", dst, err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyFile(src, dst); err != nil {
		return fmt.Errorf("failed to move file from %s to %s: %w", src, dst, err)
	}
	return os.Remove(src)
}

// CopyFile copies src to dst, replacing dst.
func CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

// Workspace is a scratch directory removed by Cleanup, whatever happened in
// between. Obtain one with NewWorkspace and defer Cleanup right away.
type Workspace struct {
	Dir string
}

// NewWorkspace creates a fresh directory under parent (os.TempDir() if empty).
func NewWorkspace(parent, pattern string) (*Workspace, error) {
	if parent != "" {
		if err := MakeDir(parent); err != nil {
			return nil, fmt.Errorf("creating temp parent %s: %w", parent, err)
		}
	}
	dir, err := os.MkdirTemp(parent, pattern)
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

// Path joins name onto the workspace directory.
func (w *Workspace) Path(name ...string) string {
	return filepath.Join(append([]string{w.Dir}, name...)...)
}

// Cleanup removes the workspace and everything in it.
func (w *Workspace) Cleanup() error {
	if w == nil || w.Dir == "" {
		return nil
	}
	return os.RemoveAll(w.Dir)
}

// FileSize returns the size of path in bytes, or 0 if it cannot be stat'd.
func FileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

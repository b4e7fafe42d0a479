// Package fileutil provides filesystem helpers shared across the chapterizer:
// safe copies, directory creation, and collision-free output path reservation.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// EnsureDir creates dir (and parents) when missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

// ReservePath creates an empty placeholder file at the requested path,
// appending " (n)" before the extension until an unused name is found.
// Parallel exporters reserve their destinations up front so no two chapters
// ever race for the same file.
func ReservePath(path string) (string, error) {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return "", err
	}

	ext := filepath.Ext(path)
	stem := path[:len(path)-len(ext)]
	candidate := path
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, attempt, ext)
		}
		f, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			if closeErr := f.Close(); closeErr != nil {
				return "", closeErr
			}
			return candidate, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("reserve %q: %w", candidate, err)
		}
	}
}

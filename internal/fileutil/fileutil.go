// Package fileutil provides file and path utility functions.
package fileutil

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
	ErrPathEmpty              = errors.New("path cannot be empty")
)

// WriteFileAtomic streams content produced by write into a temp file next to
// path, then renames it into place. On failure path is left untouched.
func WriteFileAtomic(path string, perm os.FileMode, write func(io.Writer) error) (err error) {
	if path == "" {
		return ErrPathEmpty
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".mdocx-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmpFile)
	if err = write(bw); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = bw.Flush(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("flushing temp file: %w", err)
	}
	if err = tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ValidateExtension checks that the extension is safe for use in file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// ReplaceExtension swaps the extension of path for extension (without dot).
func ReplaceExtension(path, extension string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + extension
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "default" -> false (name)
//   - "./styles" -> true (relative path)
//   - "/absolute/styles" -> true (absolute)
//   - "C:\styles" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsURL returns true if the string looks like a URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsWithinDir reports whether path is dir itself or lies beneath it,
// after both are cleaned and made absolute.
func IsWithinDir(dir, path string) bool {
	if dir == "" || path == "" {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

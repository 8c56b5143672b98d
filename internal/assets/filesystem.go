package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader loads style sets from a directory on the filesystem.
// Implements StyleSetLoader interface.
type FilesystemLoader struct {
	basePath string
}

// NewFilesystemLoader creates a FilesystemLoader for the given base path.
// Returns ErrInvalidBasePath if the path is not a valid, readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	// Clean and resolve to absolute path
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	// Resolve symlinks in base path for consistent comparisons
	// This ensures path containment checks work when basePath contains symlinks
	realPath, err := filepath.EvalSymlinks(absPath)
	if err == nil {
		absPath = realPath
	}

	// Verify it's a readable directory
	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}

	// Verify read access by attempting to read directory
	if _, err := os.ReadDir(absPath); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	return &FilesystemLoader{basePath: absPath}, nil
}

// LoadStyleSet loads a style set from {basePath}/stylesets/{name}/.
// styles.xml is required; numbering.xml is optional. Both parts must be
// well-formed.
func (f *FilesystemLoader) LoadStyleSet(name string) (*StyleSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	dirPath := filepath.Join(f.basePath, "stylesets", name)

	// Path containment check for the directory
	if err := f.verifyPathContainment(dirPath + string(filepath.Separator)); err != nil {
		return nil, err
	}

	if info, err := os.Stat(dirPath); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrStyleSetNotFound, name)
	}

	styles, err := f.readPart(dirPath, StylesFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrIncompleteStyleSet, name)
		}
		return nil, err
	}

	numbering, err := f.readPart(dirPath, NumberingFile)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	set := &StyleSet{Name: name, Styles: styles, Numbering: numbering}
	if err := validateStyleSet(set); err != nil {
		return nil, fmt.Errorf("%q: %w", name, err)
	}
	return set, nil
}

// readPart reads one file of a style set. A missing file is returned as the
// raw not-exist error so callers can decide whether it matters.
func (f *FilesystemLoader) readPart(dirPath, file string) ([]byte, error) {
	p := filepath.Join(dirPath, file)
	if err := f.verifyPathContainment(p); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p) // #nosec G304 -- path validated above
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, file, err)
	}
	return data, nil
}

// verifyPathContainment ensures the resolved file path is within basePath.
// Prevents path traversal attacks even if name validation is bypassed.
// Resolves symlinks to prevent escape via symlink pointing outside basePath.
func (f *FilesystemLoader) verifyPathContainment(filePath string) error {
	// Resolve to absolute path and clean
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}

	// Resolve symlinks to get the real path
	// This prevents symlink-based escape attacks
	realPath, err := filepath.EvalSymlinks(absFilePath)
	if err == nil {
		// Use real path if symlink resolution succeeded
		absFilePath = realPath
	}
	// If EvalSymlinks fails (e.g., file doesn't exist yet), continue with absFilePath
	// The file will fail to open anyway, and we still do the prefix check

	// Ensure the file path starts with the base path
	// Add separator to prevent prefix attacks (e.g., /base/path vs /base/pathevil)
	if !strings.HasPrefix(absFilePath, f.basePath+string(filepath.Separator)) {
		return fmt.Errorf("%w: path escapes base directory", ErrPathTraversal)
	}

	return nil
}

// Compile-time interface check.
var _ StyleSetLoader = (*FilesystemLoader)(nil)

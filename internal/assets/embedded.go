package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

//go:embed stylesets/*
var stylesets embed.FS

// EmbeddedLoader loads style sets compiled into the binary.
// Implements StyleSetLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyleSet loads an embedded style set by name.
func (e *EmbeddedLoader) LoadStyleSet(name string) (*StyleSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	dir := path.Join("stylesets", name)
	styles, err := stylesets.ReadFile(path.Join(dir, StylesFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrStyleSetNotFound, name)
	}

	set := &StyleSet{Name: name, Styles: styles}
	numbering, err := stylesets.ReadFile(path.Join(dir, NumberingFile))
	switch {
	case err == nil:
		set.Numbering = numbering
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return set, nil
}

// Names lists the embedded style sets in sorted order.
func (e *EmbeddedLoader) Names() []string {
	entries, err := stylesets.ReadDir("stylesets")
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Compile-time interface check.
var _ StyleSetLoader = (*EmbeddedLoader)(nil)

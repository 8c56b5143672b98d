package assets

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ValidateAssetName checks that an asset name is safe for use as a filename.
// Returns ErrInvalidAssetName if the name is empty or contains path separators,
// dots (which could allow extension manipulation), or traversal characters.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

// validatePart checks that data is well-formed XML whose root element has the
// given local name (styles or numbering).
func validatePart(file string, data []byte, root string) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var seenRoot bool
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidStyleSet, file, err)
		}
		if se, ok := tok.(xml.StartElement); ok && !seenRoot {
			if se.Name.Local != root {
				return fmt.Errorf("%w: %s: root element is %q, want %q", ErrInvalidStyleSet, file, se.Name.Local, root)
			}
			seenRoot = true
		}
	}
	if !seenRoot {
		return fmt.Errorf("%w: %s: no root element", ErrInvalidStyleSet, file)
	}
	return nil
}

// validateStyleSet checks both parts of a loaded set.
func validateStyleSet(s *StyleSet) error {
	if err := validatePart(StylesFile, s.Styles, "styles"); err != nil {
		return err
	}
	if s.Numbering != nil {
		return validatePart(NumberingFile, s.Numbering, "numbering")
	}
	return nil
}

package assets

import "github.com/sfu-bigdata/go-mdocx/internal/docx"

// DefaultStyleSetName is the name of the built-in style set.
const DefaultStyleSetName = "default"

// Part file names inside a style set directory.
const (
	StylesFile    = "styles.xml"
	NumberingFile = "numbering.xml"
)

// StyleSet holds the style parts copied into every generated document.
type StyleSet struct {
	Name      string // identifier (name or directory path)
	Styles    []byte // word/styles.xml
	Numbering []byte // word/numbering.xml, nil when the set has no lists
}

// Template returns the parts in the form the document writer expects.
func (s *StyleSet) Template() docx.Template {
	return docx.Template{Styles: s.Styles, Numbering: s.Numbering}
}

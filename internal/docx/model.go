package docx

import (
	"os"
	"time"
)

// Template carries the style parts written verbatim into the package.
type Template struct {
	Styles    []byte // word/styles.xml
	Numbering []byte // word/numbering.xml
}

// Properties are the core document properties.
type Properties struct {
	Title   string
	Author  string
	Created time.Time
}

// PageSetup describes the section geometry in twentieths of a point.
type PageSetup struct {
	Width     int
	Height    int
	Margin    int
	Landscape bool
}

// Page dimensions in twips.
const (
	TwipsPerInch = 1440

	letterWidth  = 12240
	letterHeight = 15840
)

// DefaultPageSetup is US Letter, portrait, one inch margins.
func DefaultPageSetup() PageSetup {
	return PageSetup{Width: letterWidth, Height: letterHeight, Margin: TwipsPerInch}
}

// Document is an in-memory flow document. It is not safe for concurrent use.
type Document struct {
	Blocks     []Block
	Properties Properties
	Page       PageSetup

	template  Template
	media     []*Media
	mediaHash map[string]*Media
	lastTable *Table
	pictureID int
	readFile  func(string) ([]byte, error)
}

// New creates an empty document using the given style template.
func New(tmpl Template) *Document {
	return &Document{
		Page:      DefaultPageSetup(),
		template:  tmpl,
		mediaHash: make(map[string]*Media),
		readFile:  os.ReadFile,
	}
}

// Media returns the embedded media parts in insertion order.
func (d *Document) Media() []*Media {
	return d.media
}

// Block is a top-level body element.
type Block interface {
	block()
}

// Paragraph is a sequence of runs with paragraph-level properties.
type Paragraph struct {
	Style      string
	Align      string // "", "center"
	SpaceAfter int    // twips, 0 = style default
	Runs       []*Run
}

// Heading is a paragraph styled as Title (level 0) or Heading N.
type Heading struct {
	Level int
	Runs  []*Run
}

// Table is a fully materialized Rows x Cols grid.
type Table struct {
	Style string
	Rows  int
	Cols  int
	Cells [][]*Cell
}

// Cell holds the runs of one table cell.
type Cell struct {
	Runs []*Run
}

// PageBreak is a paragraph containing only a page break.
type PageBreak struct{}

func (*Paragraph) block() {}
func (*Heading) block()   {}
func (*Table) block()     {}
func (PageBreak) block()  {}

// Run is a span of content sharing one set of character properties.
type Run struct {
	Bold    bool
	Italic  bool
	Color   string
	Content []RunContent
}

// RunContent is Text, Break or *Picture.
type RunContent interface {
	runContent()
}

// Text is literal run text.
type Text string

// Break is a line break inside a run.
type Break struct{}

// Picture is an inline image.
type Picture struct {
	ID     int
	Media  *Media
	Width  Length
	Height Length
	Alt    string
}

func (Text) runContent()     {}
func (Break) runContent()    {}
func (*Picture) runContent() {}

// PlainText returns the text of runs, with breaks as newlines.
func PlainText(runs []*Run) string {
	var b []byte
	for _, r := range runs {
		for _, c := range r.Content {
			switch v := c.(type) {
			case Text:
				b = append(b, v...)
			case Break:
				b = append(b, '\n')
			}
		}
	}
	return string(b)
}

func newTable(rows, cols int, style string) *Table {
	cells := make([][]*Cell, rows)
	for r := range cells {
		cells[r] = make([]*Cell, cols)
		for c := range cells[r] {
			cells[r][c] = &Cell{}
		}
	}
	return &Table{Style: style, Rows: rows, Cols: cols, Cells: cells}
}

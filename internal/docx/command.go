package docx

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is one mutation of a Document. The set of commands is closed;
// Apply interprets them strictly in order.
type Command interface {
	command()
	String() string
}

// RunOp builds the runs of a paragraph, heading or table cell.
type RunOp interface {
	runOp()
	String() string
}

// Format selects the run property changed by SetRunFormat.
type Format int

// Run formats.
const (
	Bold Format = iota + 1
	Italic
)

func (f Format) String() string {
	switch f {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	default:
		return "format(" + strconv.Itoa(int(f)) + ")"
	}
}

// AddRun appends a text run. A "\n" inside Text becomes a line break.
// Color is an optional RRGGBB hex value.
type AddRun struct {
	Text  string
	Color string
}

// SetRunFormat sets Format on the most recently added run only.
type SetRunFormat struct {
	Format Format
}

// AddBreak appends a line break to the current run.
type AddBreak struct{}

func (AddRun) runOp()       {}
func (SetRunFormat) runOp() {}
func (AddBreak) runOp()     {}

func (r AddRun) String() string {
	if r.Color != "" {
		return fmt.Sprintf("run(%q #%s)", r.Text, r.Color)
	}
	return fmt.Sprintf("run(%q)", r.Text)
}

func (f SetRunFormat) String() string { return "format(" + f.Format.String() + ")" }

func (AddBreak) String() string { return "break" }

// AddHeading appends a heading. Level 0 is the document title.
type AddHeading struct {
	Level int
	Runs  []RunOp
}

// AddParagraph appends a paragraph with an optional named style.
type AddParagraph struct {
	Style string
	Runs  []RunOp
}

// AddTable declares an empty Rows x Cols table. Subsequent SetCellContent
// commands address this table until the next AddTable.
type AddTable struct {
	Rows  int
	Cols  int
	Style string
}

// SetCellContent fills one cell of the most recently declared table.
type SetCellContent struct {
	Row  int
	Col  int
	Runs []RunOp
}

// ImageSource is either InlineData or FileRef.
type ImageSource interface {
	imageSource()
	String() string
}

// InlineData embeds image bytes directly.
type InlineData struct {
	Data []byte
}

// FileRef embeds the image stored at Path.
type FileRef struct {
	Path string
}

func (InlineData) imageSource() {}
func (FileRef) imageSource()    {}

func (s InlineData) String() string { return fmt.Sprintf("inline(%d bytes)", len(s.Data)) }
func (s FileRef) String() string    { return fmt.Sprintf("file(%s)", s.Path) }

// AddImage appends a centered image paragraph followed by an italic caption.
// A zero Width keeps the image's native size.
type AddImage struct {
	Source ImageSource
	Width  Length
	Alt    string
}

// AddPageBreak forces a page break.
type AddPageBreak struct{}

func (AddHeading) command()     {}
func (AddParagraph) command()   {}
func (AddTable) command()       {}
func (SetCellContent) command() {}
func (AddImage) command()       {}
func (AddPageBreak) command()   {}

func (c AddHeading) String() string {
	return fmt.Sprintf("AddHeading(level=%d) %s", c.Level, formatRuns(c.Runs))
}

func (c AddParagraph) String() string {
	if c.Style != "" {
		return fmt.Sprintf("AddParagraph(style=%q) %s", c.Style, formatRuns(c.Runs))
	}
	return "AddParagraph " + formatRuns(c.Runs)
}

func (c AddTable) String() string {
	return fmt.Sprintf("AddTable(rows=%d, cols=%d, style=%q)", c.Rows, c.Cols, c.Style)
}

func (c SetCellContent) String() string {
	return fmt.Sprintf("SetCellContent(%d, %d) %s", c.Row, c.Col, formatRuns(c.Runs))
}

func (c AddImage) String() string {
	width := "native"
	if c.Width > 0 {
		width = c.Width.String()
	}
	return fmt.Sprintf("AddImage(%s, width=%s, alt=%q)", c.Source, width, c.Alt)
}

func (AddPageBreak) String() string { return "AddPageBreak" }

func formatRuns(ops []RunOp) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Length is a distance in English Metric Units.
type Length int64

// EMU conversion factors.
const (
	EMUPerCm    = 360000
	EMUPerInch  = 914400
	EMUPerPixel = 9525 // at 96 DPI
)

// Cm converts centimeters to a Length.
func Cm(v float64) Length {
	return Length(v * EMUPerCm)
}

// Cm returns l in centimeters.
func (l Length) Cm() float64 {
	return float64(l) / EMUPerCm
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Cm(), 'f', -1, 64) + "cm"
}

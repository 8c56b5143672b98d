package mdocx

import "github.com/sfu-bigdata/go-mdocx/internal/docx"

// Command is one instruction to the document builder. The concrete commands
// are listed below; Session.Commands returns them for inspection.
type Command = docx.Command

// Document commands.
type (
	AddHeading     = docx.AddHeading
	AddParagraph   = docx.AddParagraph
	AddTable       = docx.AddTable
	SetCellContent = docx.SetCellContent
	AddImage       = docx.AddImage
	AddPageBreak   = docx.AddPageBreak
)

// RunOp edits the runs of a paragraph, heading or cell.
type RunOp = docx.RunOp

// Run operations.
type (
	AddRun       = docx.AddRun
	SetRunFormat = docx.SetRunFormat
	AddBreak     = docx.AddBreak
)

// Image sources.
type (
	ImageSource = docx.ImageSource
	InlineData  = docx.InlineData
	FileRef     = docx.FileRef
)

// Format is a run format applied by SetRunFormat.
type Format = docx.Format

// Run formats.
const (
	Bold   = docx.Bold
	Italic = docx.Italic
)

// Length is an image extent in English Metric Units.
type Length = docx.Length

// Cm converts centimeters to a Length.
func Cm(v float64) Length {
	return docx.Cm(v)
}

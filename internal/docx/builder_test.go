package docx

// Notes:
// - These are white-box tests: readFile is swapped to exercise FileRef
//   failures without touching the filesystem.
// - Rollback is verified through observable state (blocks, media, cell runs),
//   not by inspecting the checkpoint.

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func testTemplate() Template {
	return Template{
		Styles:    []byte(`<?xml version="1.0"?><w:styles xmlns:w="` + nsW + `"/>`),
		Numbering: []byte(`<?xml version="1.0"?><w:numbering xmlns:w="` + nsW + `"/>`),
	}
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// ---------------------------------------------------------------------------
// TestApply_Paragraphs - Headings, paragraphs and run operations
// ---------------------------------------------------------------------------

func TestApply_Paragraphs(t *testing.T) {
	t.Parallel()

	doc := New(testTemplate())
	err := doc.Apply([]Command{
		AddHeading{Level: 0, Runs: []RunOp{AddRun{Text: "Title"}}},
		AddHeading{Level: 12, Runs: []RunOp{AddRun{Text: "Deep"}}},
		AddParagraph{Style: "Quote", Runs: []RunOp{
			AddRun{Text: "plain "},
			AddRun{Text: "strong"},
			SetRunFormat{Format: Bold},
			AddRun{Text: "line1\nline2", Color: "FF0000"},
			AddBreak{},
		}},
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if len(doc.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(doc.Blocks))
	}

	title := doc.Blocks[0].(*Heading)
	if title.Level != 0 || PlainText(title.Runs) != "Title" {
		t.Errorf("title = level %d %q", title.Level, PlainText(title.Runs))
	}
	if deep := doc.Blocks[1].(*Heading); deep.Level != maxHeadingLevel {
		t.Errorf("deep heading level = %d, want %d", deep.Level, maxHeadingLevel)
	}

	p := doc.Blocks[2].(*Paragraph)
	if p.Style != "Quote" {
		t.Errorf("style = %q, want Quote", p.Style)
	}
	if len(p.Runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(p.Runs))
	}
	if p.Runs[0].Bold {
		t.Error("first run should not be bold")
	}
	if !p.Runs[1].Bold {
		t.Error("SetRunFormat should apply to the most recent run")
	}
	if p.Runs[2].Color != "FF0000" {
		t.Errorf("color = %q, want FF0000", p.Runs[2].Color)
	}
	if got := PlainText(p.Runs); got != "plain strongline1\nline2\n" {
		t.Errorf("PlainText() = %q", got)
	}
}

func TestApply_SetRunFormatWithoutRuns(t *testing.T) {
	t.Parallel()

	doc := New(testTemplate())
	err := doc.Apply([]Command{
		AddParagraph{Runs: []RunOp{SetRunFormat{Format: Italic}, AddRun{Text: "x"}}},
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	p := doc.Blocks[0].(*Paragraph)
	if p.Runs[0].Italic {
		t.Error("format before any run must not leak onto later runs")
	}
}

func TestApply_InvalidCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  Command
	}{
		{"negative heading level", AddHeading{Level: -1}},
		{"zero rows", AddTable{Rows: 0, Cols: 2}},
		{"zero cols", AddTable{Rows: 2, Cols: 0}},
		{"unknown format", AddParagraph{Runs: []RunOp{AddRun{Text: "x"}, SetRunFormat{Format: 99}}}},
		{"nil image source", AddImage{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := New(testTemplate())
			err := doc.Apply([]Command{tt.cmd})
			if !errors.Is(err, ErrInvalidCommand) {
				t.Errorf("Apply() error = %v, want %v", err, ErrInvalidCommand)
			}
			if len(doc.Blocks) != 0 {
				t.Errorf("got %d blocks after failure, want 0", len(doc.Blocks))
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestApply_Tables - Table declaration and cell addressing
// ---------------------------------------------------------------------------

func TestApply_TableRoundTrip(t *testing.T) {
	t.Parallel()

	words := []string{"a", "b", "c", "d", "e", "f"}
	cmds := []Command{AddTable{Rows: 3, Cols: 2, Style: "Table Grid"}}
	for i, w := range words {
		cmds = append(cmds, SetCellContent{Row: i / 2, Col: i % 2, Runs: []RunOp{AddRun{Text: w}}})
	}

	doc := New(testTemplate())
	if err := doc.Apply(cmds); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	tbl := doc.Blocks[0].(*Table)
	if tbl.Rows != 3 || tbl.Cols != 2 || tbl.Style != "Table Grid" {
		t.Fatalf("table = %dx%d %q", tbl.Rows, tbl.Cols, tbl.Style)
	}
	for i, w := range words {
		if got := PlainText(tbl.Cells[i/2][i%2].Runs); got != w {
			t.Errorf("cell(%d,%d) = %q, want %q", i/2, i%2, got, w)
		}
	}
}

func TestApply_SetCellAddressesLatestTable(t *testing.T) {
	t.Parallel()

	doc := New(testTemplate())
	err := doc.Apply([]Command{
		AddTable{Rows: 1, Cols: 1},
		AddTable{Rows: 1, Cols: 1},
		SetCellContent{Row: 0, Col: 0, Runs: []RunOp{AddRun{Text: "second"}}},
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	first := doc.Blocks[0].(*Table)
	second := doc.Blocks[1].(*Table)
	if PlainText(first.Cells[0][0].Runs) != "" {
		t.Error("first table should be untouched")
	}
	if PlainText(second.Cells[0][0].Runs) != "second" {
		t.Error("second table cell not filled")
	}
}

func TestApply_OutOfBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmds []Command
	}{
		{"no table declared", []Command{SetCellContent{Row: 0, Col: 0}}},
		{"row past end", []Command{AddTable{Rows: 2, Cols: 2}, SetCellContent{Row: 2, Col: 0}}},
		{"col past end", []Command{AddTable{Rows: 2, Cols: 2}, SetCellContent{Row: 0, Col: 2}}},
		{"negative row", []Command{AddTable{Rows: 2, Cols: 2}, SetCellContent{Row: -1, Col: 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := New(testTemplate())
			err := doc.Apply(tt.cmds)
			if !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("Apply() error = %v, want %v", err, ErrOutOfBounds)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestApply_Rollback - Failed batches leave the document unchanged
// ---------------------------------------------------------------------------

func TestApply_Rollback(t *testing.T) {
	t.Parallel()

	doc := New(testTemplate())
	if err := doc.Apply([]Command{
		AddParagraph{Runs: []RunOp{AddRun{Text: "kept"}}},
		AddTable{Rows: 1, Cols: 1},
		SetCellContent{Row: 0, Col: 0, Runs: []RunOp{AddRun{Text: "original"}}},
	}); err != nil {
		t.Fatalf("setup Apply() error = %v", err)
	}

	err := doc.Apply([]Command{
		SetCellContent{Row: 0, Col: 0, Runs: []RunOp{AddRun{Text: "overwritten"}}},
		AddImage{Source: InlineData{Data: pngBytes(t, 4, 4, color.White)}, Alt: "Figure"},
		AddPageBreak{},
		AddTable{Rows: 1, Cols: 1},
		SetCellContent{Row: 5, Col: 5},
	})
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("Apply() error = %v, want %v", err, ErrOutOfBounds)
	}

	if len(doc.Blocks) != 2 {
		t.Errorf("got %d blocks after rollback, want 2", len(doc.Blocks))
	}
	if len(doc.Media()) != 0 {
		t.Errorf("got %d media after rollback, want 0", len(doc.Media()))
	}
	if len(doc.mediaHash) != 0 {
		t.Errorf("media index not rolled back: %d entries", len(doc.mediaHash))
	}
	tbl := doc.Blocks[1].(*Table)
	if got := PlainText(tbl.Cells[0][0].Runs); got != "original" {
		t.Errorf("cell = %q, want original", got)
	}

	// The restored latest table is addressable again.
	if err := doc.Apply([]Command{SetCellContent{Row: 0, Col: 0, Runs: []RunOp{AddRun{Text: "again"}}}}); err != nil {
		t.Fatalf("Apply() after rollback error = %v", err)
	}
	if got := PlainText(tbl.Cells[0][0].Runs); got != "again" {
		t.Errorf("cell = %q, want again", got)
	}
}

// ---------------------------------------------------------------------------
// TestApply_Images - Image sources, sizing and media reuse
// ---------------------------------------------------------------------------

func TestApply_ImageSizing(t *testing.T) {
	t.Parallel()

	data := pngBytes(t, 200, 100, color.Black)

	tests := []struct {
		name       string
		width      Length
		wantWidth  Length
		wantHeight Length
	}{
		{"native size", 0, 200 * EMUPerPixel, 100 * EMUPerPixel},
		{"scaled to width", Cm(10), Cm(10), Cm(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := New(testTemplate())
			err := doc.Apply([]Command{AddImage{Source: InlineData{Data: data}, Width: tt.width, Alt: "Equation 0"}})
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}

			p := doc.Blocks[0].(*Paragraph)
			if p.Align != "center" {
				t.Errorf("align = %q, want center", p.Align)
			}
			pic := p.Runs[0].Content[0].(*Picture)
			if pic.Width != tt.wantWidth || pic.Height != tt.wantHeight {
				t.Errorf("extent = %dx%d, want %dx%d", pic.Width, pic.Height, tt.wantWidth, tt.wantHeight)
			}
			if pic.Alt != "Equation 0" {
				t.Errorf("alt = %q", pic.Alt)
			}
			caption := p.Runs[2]
			if !caption.Italic || PlainText([]*Run{caption}) != "Equation 0" {
				t.Errorf("caption run = %+v", caption)
			}
		})
	}
}

func TestApply_ImageFileRef(t *testing.T) {
	t.Parallel()

	data := pngBytes(t, 2, 2, color.White)
	doc := New(testTemplate())
	doc.readFile = func(path string) ([]byte, error) {
		if path == "tmp/tmp0.png" {
			return data, nil
		}
		return nil, errors.New("no such file")
	}

	if err := doc.Apply([]Command{AddImage{Source: FileRef{Path: "tmp/tmp0.png"}}}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	err := doc.Apply([]Command{AddImage{Source: FileRef{Path: "missing.png"}}})
	if !errors.Is(err, ErrIO) {
		t.Errorf("missing file error = %v, want %v", err, ErrIO)
	}
	if len(doc.Blocks) != 1 {
		t.Errorf("got %d blocks, want 1", len(doc.Blocks))
	}
}

func TestApply_ImageDedup(t *testing.T) {
	t.Parallel()

	a := pngBytes(t, 3, 3, color.White)
	b := pngBytes(t, 3, 3, color.Black)

	doc := New(testTemplate())
	err := doc.Apply([]Command{
		AddImage{Source: InlineData{Data: a}},
		AddImage{Source: InlineData{Data: a}},
		AddImage{Source: InlineData{Data: b}},
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	media := doc.Media()
	if len(media) != 2 {
		t.Fatalf("got %d media parts, want 2", len(media))
	}
	if media[0].Name != "image1.png" || media[1].RelID != "rIdImg2" {
		t.Errorf("media naming = %s/%s", media[0].Name, media[1].RelID)
	}

	// Pictures keep distinct ids even when sharing media.
	ids := map[int]bool{}
	for _, blk := range doc.Blocks {
		ids[blk.(*Paragraph).Runs[0].Content[0].(*Picture).ID] = true
	}
	if len(ids) != 3 {
		t.Errorf("got %d distinct picture ids, want 3", len(ids))
	}
}

func TestApply_UnsupportedImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not an image", []byte("hello world")},
		{"truncated png header", []byte("\x89PNG\r\n\x1a\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := New(testTemplate())
			err := doc.Apply([]Command{AddImage{Source: InlineData{Data: tt.data}}})
			if !errors.Is(err, ErrUnsupportedImage) {
				t.Errorf("Apply() error = %v, want %v", err, ErrUnsupportedImage)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCommandString - Human-readable command listing
// ---------------------------------------------------------------------------

func TestCommandString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{"heading", AddHeading{Level: 1, Runs: []RunOp{AddRun{Text: "Hi"}}}, `AddHeading(level=1) [run("Hi")]`},
		{"styled paragraph", AddParagraph{Style: "Quote", Runs: []RunOp{AddRun{Text: "x"}, SetRunFormat{Format: Bold}}}, `AddParagraph(style="Quote") [run("x") format(bold)]`},
		{"table", AddTable{Rows: 2, Cols: 3, Style: "Table Grid"}, `AddTable(rows=2, cols=3, style="Table Grid")`},
		{"cell", SetCellContent{Row: 1, Col: 0, Runs: []RunOp{AddBreak{}}}, `SetCellContent(1, 0) [break]`},
		{"native image", AddImage{Source: FileRef{Path: "tmp/tmp0.png"}, Alt: "Equation 0"}, `AddImage(file(tmp/tmp0.png), width=native, alt="Equation 0")`},
		{"inline image", AddImage{Source: InlineData{Data: []byte{1, 2}}, Width: Cm(15)}, `AddImage(inline(2 bytes), width=15cm, alt="")`},
		{"page break", AddPageBreak{}, "AddPageBreak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.cmd.String(); got != tt.want {
				t.Errorf("String() = %s, want %s", got, tt.want)
			}
		})
	}
}

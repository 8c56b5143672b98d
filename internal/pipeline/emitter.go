package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sfu-bigdata/go-mdocx/internal/datauri"
	"github.com/sfu-bigdata/go-mdocx/internal/docx"
	"github.com/sfu-bigdata/go-mdocx/internal/fileutil"
)

// Emitter defaults.
const (
	DefaultTempDir      = "tmp"
	DefaultImageWidthCm = 15
	DefaultCodeStyle    = "Quote"
)

// MathRenderer renders a TeX expression to a PNG file at outPath.
type MathRenderer interface {
	RenderMath(ctx context.Context, expr, outPath string) error
}

// EmitterConfig configures an Emitter. Zero values select the defaults.
type EmitterConfig struct {
	TempDir     string      // where equation images are written
	ImageWidth  docx.Length // width for data URI and non-temp images
	CodeStyle   string      // paragraph style for code blocks
	TableStyle  string      // table style, empty for none
	SourceDir   string      // base for relative image paths, empty for the working directory
	Math        MathRenderer
	Highlighter Highlighter // nil leaves code uncolored
}

// Emitter translates tokens into document commands in one forward pass.
// It owns the equation counter and the pending table cell buffer.
// Not safe for concurrent use.
type Emitter struct {
	cfg     EmitterConfig
	counter int
	pending []TableCell
}

// NewEmitter creates an Emitter with defaults applied to cfg.
func NewEmitter(cfg EmitterConfig) *Emitter {
	if cfg.TempDir == "" {
		cfg.TempDir = DefaultTempDir
	}
	if cfg.ImageWidth <= 0 {
		cfg.ImageWidth = docx.Cm(DefaultImageWidthCm)
	}
	if cfg.CodeStyle == "" {
		cfg.CodeStyle = DefaultCodeStyle
	}
	return &Emitter{cfg: cfg}
}

// Counter returns the number of the next equation image.
func (e *Emitter) Counter() int {
	return e.counter
}

// ResetCounter restores the equation counter, used when commands emitted by a
// successful Emit are later rejected.
func (e *Emitter) ResetCounter(n int) {
	e.counter = n
}

// Emit translates tokens to commands. The equation counter advances only when
// the whole pass succeeds.
func (e *Emitter) Emit(ctx context.Context, tokens []Token) ([]docx.Command, error) {
	p := &pass{Emitter: e, ctx: ctx, counter: e.counter}
	for _, tok := range tokens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.block(tok); err != nil {
			return nil, err
		}
	}
	e.counter = p.counter
	return p.cmds, nil
}

// pass holds the state of one Emit call.
type pass struct {
	*Emitter
	ctx     context.Context
	counter int
	cmds    []docx.Command
}

func (p *pass) emit(cmd ...docx.Command) {
	p.cmds = append(p.cmds, cmd...)
}

func (p *pass) block(tok Token) error {
	switch v := tok.(type) {
	case Heading:
		p.emit(docx.AddHeading{Level: v.Level - 1, Runs: runs(v.Inline)})
	case Paragraph:
		return p.paragraph(v.Inline)
	case List:
		p.list(v)
	case ListItem:
		p.emit(docx.AddParagraph{Style: v.Style, Runs: runs(v.Inline)})
	case Table:
		return p.table(v)
	case TableCell:
		return p.paragraph(v.Inline)
	case CodeBlock:
		p.code(v)
	case MathBlock:
		return p.math(v)
	case Image:
		return p.image(v)
	case HorizontalRule:
		p.emit(docx.AddPageBreak{})
	case PlainText, LineBreak, Link, Emphasis, StrongEmphasis:
		return p.paragraph([]Token{tok})
	default:
		return fmt.Errorf("%w: unexpected token %T", ErrParse, tok)
	}
	return nil
}

// paragraph emits inline content, splitting it around images so that each
// image becomes its own centered block.
func (p *pass) paragraph(inline []Token) error {
	var text []Token
	flush := func() {
		if hasContent(text) {
			p.emit(docx.AddParagraph{Runs: runs(text)})
		}
		text = nil
	}
	for _, tok := range inline {
		img, ok := tok.(Image)
		if !ok {
			text = append(text, tok)
			continue
		}
		flush()
		if err := p.image(img); err != nil {
			return err
		}
	}
	flush()
	return nil
}

func (p *pass) list(l List) {
	for i, item := range l.Items {
		ops := runs(item.Inline)
		if i == len(l.Items)-1 {
			ops = append(ops, docx.AddBreak{})
		}
		p.emit(docx.AddParagraph{Style: item.Style, Runs: ops})
	}
}

func (p *pass) table(t Table) error {
	p.pending = append(p.pending[:0], t.Header...)
	p.pending = append(p.pending, t.Body...)
	defer func() { p.pending = p.pending[:0] }()

	cols := len(t.Header)
	if cols == 0 {
		return fmt.Errorf("%w: table has no header cells", ErrMalformedTable)
	}
	if len(p.pending)%cols != 0 {
		return fmt.Errorf("%w: %d cells do not fill %d columns", ErrMalformedTable, len(p.pending), cols)
	}

	rows := len(p.pending) / cols
	p.emit(docx.AddTable{Rows: rows, Cols: cols, Style: p.cfg.TableStyle})
	for i, cell := range p.pending {
		p.emit(docx.SetCellContent{Row: i / cols, Col: i % cols, Runs: runs(cell.Inline)})
	}
	return nil
}

func (p *pass) code(c CodeBlock) {
	code := strings.TrimSuffix(c.Code, "\n")
	var ops []docx.RunOp
	if p.cfg.Highlighter != nil && code != "" {
		for _, span := range p.cfg.Highlighter.Highlight(code, c.Language) {
			ops = append(ops, docx.AddRun{Text: span.Text, Color: span.Color})
		}
	} else {
		ops = append(ops, docx.AddRun{Text: code})
	}
	p.emit(docx.AddParagraph{Style: p.cfg.CodeStyle, Runs: ops})
}

func (p *pass) math(m MathBlock) error {
	n := p.counter
	if p.cfg.Math == nil {
		return fmt.Errorf("%w: equation %d: no math renderer configured", ErrMathRender, n)
	}
	if err := os.MkdirAll(p.cfg.TempDir, 0o750); err != nil {
		return fmt.Errorf("%w: equation %d: creating %s: %v", ErrMathRender, n, p.cfg.TempDir, err)
	}

	out := filepath.Join(p.cfg.TempDir, "tmp"+strconv.Itoa(n)+".png")
	if err := p.cfg.Math.RenderMath(p.ctx, m.Expr, out); err != nil {
		return fmt.Errorf("%w: equation %d: %w", ErrMathRender, n, err)
	}
	p.counter++
	return p.image(Image{Src: out, Alt: "Equation " + strconv.Itoa(n)})
}

func (p *pass) image(img Image) error {
	if datauri.IsDataURI(img.Src) {
		data, err := datauri.Decode(img.Src)
		if err != nil {
			return err
		}
		p.emit(docx.AddImage{Source: docx.InlineData{Data: data}, Width: p.cfg.ImageWidth, Alt: img.Alt})
		return nil
	}

	if fileutil.IsWithinDir(p.cfg.TempDir, img.Src) {
		p.emit(docx.AddImage{Source: docx.FileRef{Path: img.Src}, Alt: img.Alt})
		return nil
	}

	path := img.Src
	if p.cfg.SourceDir != "" && !filepath.IsAbs(path) && !fileutil.IsURL(path) {
		path = filepath.Join(p.cfg.SourceDir, filepath.FromSlash(path))
	}
	p.emit(docx.AddImage{Source: docx.FileRef{Path: path}, Width: p.cfg.ImageWidth, Alt: img.Alt})
	return nil
}

// runs converts inline tokens to run operations. Emphasis formats only the
// last run it produced.
//
// Runs cannot hold a picture, so an image inside a heading, a list item or a
// table cell becomes its alt text. Only images in a paragraph are placed as
// pictures, by paragraph.
func runs(inline []Token) []docx.RunOp {
	var ops []docx.RunOp
	for _, tok := range inline {
		switch v := tok.(type) {
		case PlainText:
			ops = append(ops, docx.AddRun{Text: v.Text})
		case LineBreak:
			ops = append(ops, docx.AddBreak{})
		case Emphasis:
			ops = appendFormatted(ops, runs(v.Inline), docx.Italic)
		case StrongEmphasis:
			ops = appendFormatted(ops, runs(v.Inline), docx.Bold)
		case Link:
			ops = append(ops, runs(v.Inline)...)
			if v.Href != "" && plainText(v.Inline) != v.Href {
				ops = append(ops, docx.AddRun{Text: " (" + v.Href + ")"})
			}
		case Image:
			if v.Alt != "" {
				ops = append(ops, docx.AddRun{Text: v.Alt})
			}
		}
	}
	return ops
}

// appendFormatted appends inner and then formats its last run. Without a run
// of its own the format is dropped rather than applied to a preceding run.
func appendFormatted(ops, inner []docx.RunOp, f docx.Format) []docx.RunOp {
	ops = append(ops, inner...)
	for _, op := range inner {
		if _, ok := op.(docx.AddRun); ok {
			return append(ops, docx.SetRunFormat{Format: f})
		}
	}
	return ops
}

// hasContent reports whether inline tokens render anything besides whitespace.
func hasContent(inline []Token) bool {
	for _, tok := range inline {
		switch v := tok.(type) {
		case PlainText:
			if strings.TrimSpace(v.Text) != "" {
				return true
			}
		case LineBreak:
		default:
			return true
		}
	}
	return false
}

// plainText returns the text of inline tokens without formatting.
func plainText(inline []Token) string {
	var b strings.Builder
	for _, tok := range inline {
		switch v := tok.(type) {
		case PlainText:
			b.WriteString(v.Text)
		case Emphasis:
			b.WriteString(plainText(v.Inline))
		case StrongEmphasis:
			b.WriteString(plainText(v.Inline))
		case Link:
			b.WriteString(plainText(v.Inline))
		case Image:
			b.WriteString(v.Alt)
		}
	}
	return b.String()
}

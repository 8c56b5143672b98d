package mdocx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sfu-bigdata/go-mdocx/internal/assets"
	"github.com/sfu-bigdata/go-mdocx/internal/datauri"
	"github.com/sfu-bigdata/go-mdocx/internal/docx"
	"github.com/sfu-bigdata/go-mdocx/internal/mathimg"
	"github.com/sfu-bigdata/go-mdocx/internal/pipeline"
)

// MathRenderer renders a TeX expression to a PNG file at outPath.
type MathRenderer interface {
	RenderMath(ctx context.Context, expr, outPath string) error
}

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.Highlighter          = (*pipeline.ChromaHighlighter)(nil)
	_ MathRenderer                  = (*mathimg.LaTeX)(nil)
	_ MathRenderer                  = (*mathimg.Browser)(nil)
)

// Session accumulates Markdown and renders it into one document.
// Text is buffered by AddText and friends and compiled by Render; Save renders
// any pending text and writes the file. A Session is not safe for concurrent
// use.
type Session struct {
	preprocessor pipeline.MarkdownPreprocessor
	tokenizer    *pipeline.Tokenizer
	emitter      *pipeline.Emitter
	doc          *docx.Document

	pending  strings.Builder
	commands []Command
	closer   io.Closer // built-in math renderer owned by the session
}

// NewSession creates an empty session. Options select styles, page setup and
// the math renderer; without WithMathRenderer the LaTeX engine is used.
// No external process starts until the first equation is rendered.
func NewSession(opts ...Option) (*Session, error) {
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	set, err := loadStyleSet(cfg)
	if err != nil {
		return nil, err
	}

	renderer := cfg.mathRenderer
	var closer io.Closer
	if renderer == nil {
		r, err := newMathRenderer(cfg.math)
		if err != nil {
			return nil, err
		}
		renderer, closer = r, r
	}

	s := newSession(cfg, set, renderer)
	s.closer = closer
	return s, nil
}

// newSession wires the pipeline for one document. cfg must be validated.
func newSession(cfg sessionConfig, set *assets.StyleSet, renderer MathRenderer) *Session {
	styles := cfg.styles.withDefaults()

	var hl pipeline.Highlighter
	if cfg.highlight {
		hl = pipeline.NewChromaHighlighter(cfg.theme)
	}

	doc := docx.New(set.Template())
	doc.Page = cfg.page.setup()
	doc.Properties = docx.Properties{
		Title:   cfg.props.Title,
		Author:  cfg.props.Author,
		Created: cfg.props.Created,
	}

	widthCm := cfg.imageWidthCm
	if widthCm == 0 {
		widthCm = DefaultImageWidthCm
	}

	return &Session{
		preprocessor: &pipeline.CommonMarkPreprocessor{},
		tokenizer: pipeline.NewTokenizer(pipeline.ListStyles{
			Bullet: styles.BulletList,
			Number: styles.NumberedList,
		}),
		emitter: pipeline.NewEmitter(pipeline.EmitterConfig{
			TempDir:     cfg.tempDir,
			ImageWidth:  docx.Cm(widthCm),
			CodeStyle:   styles.Code,
			TableStyle:  styles.Table,
			SourceDir:   cfg.sourceDir,
			Math:        renderer,
			Highlighter: hl,
		}),
		doc: doc,
	}
}

// loadStyleSet resolves the configured style set, custom directory first.
func loadStyleSet(cfg sessionConfig) (*assets.StyleSet, error) {
	resolver, err := assets.NewAssetResolver(cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	set, err := resolver.LoadStyleSet(cfg.styleSet)
	if err != nil {
		return nil, fmt.Errorf("loading style set: %w", err)
	}
	return set, nil
}

// mathCloser is a renderer the session created and must release.
type mathCloser interface {
	MathRenderer
	io.Closer
}

func newMathRenderer(m MathConfig) (mathCloser, error) {
	return mathimg.New(mathimg.Config{
		Engine:    m.Engine,
		LaTeXBin:  m.LaTeXBin,
		DVIPNGBin: m.DVIPNGBin,
		DPI:       m.DPI,
		Timeout:   m.Timeout,
		ScriptURL: m.ScriptURL,
	})
}

// AddText appends Markdown followed by a newline.
func (s *Session) AddText(text string) {
	s.pending.WriteString(text)
	s.pending.WriteByte('\n')
}

// AddFigure appends an image block referencing uri, which may be a data URI
// or a file path.
func (s *Session) AddFigure(uri string) {
	s.pending.WriteString("![](" + uri + ")\n\n")
}

// AddImage embeds image bytes as a figure. subtype is the image media
// subtype ("png", "jpeg"; empty means jpeg). A non-empty caption is shown in
// italics below the image.
func (s *Session) AddImage(data []byte, subtype, caption string) {
	s.addCaptioned(datauri.Encode(data, subtype), caption)
}

// AddImageFile references an image file as a figure. Relative paths resolve
// against the session's source directory when one is set.
func (s *Session) AddImageFile(path, caption string) {
	s.addCaptioned("<"+filepath.ToSlash(path)+">", caption)
}

func (s *Session) addCaptioned(dest, caption string) {
	s.pending.WriteString("![" + escapeAlt(caption) + "](" + dest + ")\n\n")
}

// escapeAlt escapes characters that would end or restructure image alt text.
func escapeAlt(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\[]*_`+"`", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Pending returns the Markdown not yet rendered.
func (s *Session) Pending() string {
	return s.pending.String()
}

// Render compiles the pending Markdown into the document. With nothing
// pending it does nothing. On error the pending text, the equation counter
// and the document are left as they were, so a failed Render can be retried.
func (s *Session) Render(ctx context.Context) error {
	if s.pending.Len() == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	src := s.preprocessor.PreprocessMarkdown(ctx, s.pending.String())
	if err := ctx.Err(); err != nil {
		return err
	}

	tokens, err := s.tokenizer.Tokenize(src)
	if err != nil {
		return err
	}

	counter := s.emitter.Counter()
	cmds, err := s.emitter.Emit(ctx, tokens)
	if err != nil {
		return err
	}
	if err := s.doc.Apply(cmds); err != nil {
		s.emitter.ResetCounter(counter)
		return err
	}

	s.commands = append(s.commands, cmds...)
	s.pending.Reset()
	return nil
}

// Save renders pending text and writes the document to path atomically.
func (s *Session) Save(ctx context.Context, path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if err := s.Render(ctx); err != nil {
		return err
	}
	return s.doc.Save(path)
}

// WriteTo renders pending text and writes the document to w.
func (s *Session) WriteTo(ctx context.Context, w io.Writer) (int64, error) {
	if err := s.Render(ctx); err != nil {
		return 0, err
	}
	return s.doc.WriteTo(w)
}

// Commands returns the commands applied by all successful renders, in order.
func (s *Session) Commands() []Command {
	return append([]Command(nil), s.commands...)
}

// Equations returns the number of equation images rendered so far, which is
// also the number of the next one.
func (s *Session) Equations() int {
	return s.emitter.Counter()
}

// Close releases the built-in math renderer. A renderer passed with
// WithMathRenderer stays open.
func (s *Session) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

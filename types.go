package mdocx

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sfu-bigdata/go-mdocx/internal/docx"
	"github.com/sfu-bigdata/go-mdocx/internal/pipeline"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 1.0
)

// Image width bounds in centimeters.
const (
	DefaultImageWidthCm = pipeline.DefaultImageWidthCm
	MaxImageWidthCm     = 100.0
)

// Default style names, as defined by the built-in style sets.
const (
	DefaultStyleSet          = "default"
	DefaultCodeStyle         = pipeline.DefaultCodeStyle
	DefaultBulletListStyle   = "List Bullet"
	DefaultNumberedListStyle = "List Number"
	DefaultTableStyle        = "Table Grid"
	DefaultTempDir           = pipeline.DefaultTempDir
)

// pageDimensions maps page sizes to portrait width and height in twips.
var pageDimensions = map[string][2]int{
	PageSizeLetter: {12240, 15840},
	PageSizeA4:     {11906, 16838},
	PageSizeLegal:  {12240, 20160},
}

// PageSettings configures the document's page geometry.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
// Does not mutate - uses case-insensitive comparison.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if _, ok := pageDimensions[strings.ToLower(p.Size)]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	switch strings.ToLower(p.Orientation) {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// setup converts validated settings to the section geometry.
func (p *PageSettings) setup() docx.PageSetup {
	if p == nil {
		p = DefaultPageSettings()
	}
	dims := pageDimensions[strings.ToLower(p.Size)]
	return docx.PageSetup{
		Width:     dims[0],
		Height:    dims[1],
		Margin:    int(math.Round(p.Margin * docx.TwipsPerInch)),
		Landscape: strings.EqualFold(p.Orientation, OrientationLandscape),
	}
}

// Styles names the paragraph and table styles the converter applies.
// Empty fields select the defaults.
type Styles struct {
	Code         string // code blocks (default "Quote")
	BulletList   string // unordered list items (default "List Bullet")
	NumberedList string // ordered list items (default "List Number")
	Table        string // tables (default "Table Grid")
}

func (s Styles) withDefaults() Styles {
	if s.Code == "" {
		s.Code = DefaultCodeStyle
	}
	if s.BulletList == "" {
		s.BulletList = DefaultBulletListStyle
	}
	if s.NumberedList == "" {
		s.NumberedList = DefaultNumberedListStyle
	}
	if s.Table == "" {
		s.Table = DefaultTableStyle
	}
	return s
}

// MathConfig selects the built-in math renderer. Zero fields select defaults.
type MathConfig struct {
	Engine    string        // "latex" (default) or "browser"
	LaTeXBin  string        // default "latex"
	DVIPNGBin string        // default "dvipng"
	DPI       int           // default 100
	Timeout   time.Duration // per equation, default 30s
	ScriptURL string        // MathJax bundle for the browser engine
}

// Properties are the document's core properties.
type Properties struct {
	Title   string
	Author  string
	Created time.Time // zero means the time of writing
}

// Option configures a Session or Converter.
type Option func(*sessionConfig)

// sessionConfig holds the settings shared by sessions and converters.
type sessionConfig struct {
	tempDir      string
	sourceDir    string
	imageWidthCm float64
	styles       Styles
	styleSet     string
	assetPath    string
	highlight    bool
	theme        string
	page         *PageSettings
	props        Properties
	math         MathConfig
	mathRenderer MathRenderer
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		tempDir:  DefaultTempDir,
		styleSet: DefaultStyleSet,
	}
}

func (c *sessionConfig) validate() error {
	if err := c.page.Validate(); err != nil {
		return err
	}
	if c.imageWidthCm < 0 || c.imageWidthCm > MaxImageWidthCm || math.IsNaN(c.imageWidthCm) {
		return fmt.Errorf("%w: %.2f cm (must be between 0 and %.0f)", ErrInvalidImageWidth, c.imageWidthCm, MaxImageWidthCm)
	}
	return nil
}

// WithTempDir sets the directory for rendered equation images (default "tmp").
// Sessions rendering concurrently must not share a directory.
func WithTempDir(dir string) Option {
	return func(c *sessionConfig) {
		if dir != "" {
			c.tempDir = dir
		}
	}
}

// WithSourceDir sets the directory relative image paths are resolved against.
func WithSourceDir(dir string) Option {
	return func(c *sessionConfig) {
		c.sourceDir = dir
	}
}

// WithImageWidth sets the width of embedded images in centimeters (default 15).
// Equation images always keep their native size.
func WithImageWidth(cm float64) Option {
	return func(c *sessionConfig) {
		c.imageWidthCm = cm
	}
}

// WithStyles overrides the style names used for code, lists and tables.
func WithStyles(s Styles) Option {
	return func(c *sessionConfig) {
		c.styles = s
	}
}

// WithStyleSet selects a style set by name (default "default").
func WithStyleSet(name string) Option {
	return func(c *sessionConfig) {
		if name != "" {
			c.styleSet = name
		}
	}
}

// WithAssetPath adds a directory of custom style sets that take precedence
// over the embedded ones.
func WithAssetPath(path string) Option {
	return func(c *sessionConfig) {
		c.assetPath = path
	}
}

// WithHighlighting colors code blocks using the named chroma theme.
// An empty theme selects "github".
func WithHighlighting(theme string) Option {
	return func(c *sessionConfig) {
		c.highlight = true
		c.theme = theme
	}
}

// WithPage sets the page geometry.
func WithPage(p *PageSettings) Option {
	return func(c *sessionConfig) {
		c.page = p
	}
}

// WithProperties sets the document's core properties.
func WithProperties(p Properties) Option {
	return func(c *sessionConfig) {
		c.props = p
	}
}

// WithMath configures the built-in math renderer.
func WithMath(m MathConfig) Option {
	return func(c *sessionConfig) {
		c.math = m
	}
}

// WithMathRenderer replaces the built-in math renderer. The caller keeps
// ownership: Close does not close r.
func WithMathRenderer(r MathRenderer) Option {
	return func(c *sessionConfig) {
		c.mathRenderer = r
	}
}

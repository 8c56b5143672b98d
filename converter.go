package mdocx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sfu-bigdata/go-mdocx/internal/assets"
)

// Input contains per-conversion parameters.
type Input struct {
	Markdown  string        // Markdown content; empty yields an empty document
	SourceDir string        // base for relative image paths (optional)
	TempDir   string        // equation image directory (optional, overrides the converter's)
	Page      *PageSettings // page settings (optional, nil = converter's)
	Title     string        // core property (optional, overrides the converter's)
	Author    string        // core property (optional, overrides the converter's)
}

// ConvertResult holds the output of one conversion.
type ConvertResult struct {
	DOCX     []byte    // the .docx package
	Commands []Command // commands applied to build it
}

// Converter turns Markdown documents into DOCX packages. It loads the style
// set once and reuses one math renderer across conversions.
// Create with NewConverter, use Convert for conversion, and Close when done.
// A Converter runs one conversion at a time; use ConverterPool for
// parallel work.
type Converter struct {
	cfg      sessionConfig
	set      *assets.StyleSet
	renderer MathRenderer
	closer   io.Closer

	mu     sync.Mutex
	closed bool
}

// NewConverter creates a Converter. Options are the same as for NewSession
// and act as defaults for every conversion.
func NewConverter(opts ...Option) (*Converter, error) {
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

	c := &Converter{cfg: cfg, set: set, renderer: cfg.mathRenderer}
	if c.renderer == nil {
		r, err := newMathRenderer(cfg.math)
		if err != nil {
			return nil, err
		}
		c.renderer, c.closer = r, r
	}
	return c, nil
}

// Convert compiles input into a DOCX package in memory.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	cfg, err := c.inputConfig(input)
	if err != nil {
		return nil, err
	}

	s := newSession(cfg, c.set, c.renderer)
	if input.Markdown != "" {
		s.AddText(input.Markdown)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(ctx, &buf); err != nil {
		return nil, err
	}

	return &ConvertResult{DOCX: buf.Bytes(), Commands: s.commands}, nil
}

// inputConfig layers per-input settings over the converter's.
func (c *Converter) inputConfig(input Input) (sessionConfig, error) {
	cfg := c.cfg
	if input.SourceDir != "" {
		cfg.sourceDir = input.SourceDir
	}
	if input.TempDir != "" {
		cfg.tempDir = input.TempDir
	}
	if input.Page != nil {
		if err := input.Page.Validate(); err != nil {
			return cfg, err
		}
		cfg.page = input.Page
	}
	if input.Title != "" {
		cfg.props.Title = input.Title
	}
	if input.Author != "" {
		cfg.props.Author = input.Author
	}
	return cfg, nil
}

// Close releases the built-in math renderer (headless Chrome for the browser
// engine). It is safe to call more than once.
func (c *Converter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

package mathimg

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Engine names accepted by New.
const (
	EngineLaTeX   = "latex"
	EngineBrowser = "browser"
)

// Renderer writes a PNG rendering of a TeX expression to outPath.
type Renderer interface {
	RenderMath(ctx context.Context, expr, outPath string) error
	Close() error
}

// Config selects and tunes an engine. Zero values select defaults.
type Config struct {
	Engine    string
	LaTeXBin  string
	DVIPNGBin string
	DPI       int
	Timeout   time.Duration
	ScriptURL string // MathJax bundle for the browser engine
}

// Engines lists the accepted engine names.
func Engines() []string {
	return []string{EngineLaTeX, EngineBrowser}
}

// New creates the renderer named by cfg.Engine (default latex). No external
// process is started until the first expression is rendered.
func New(cfg Config) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Engine)) {
	case "", EngineLaTeX:
		return NewLaTeX(cfg), nil
	case EngineBrowser:
		return NewBrowser(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownEngine, cfg.Engine, strings.Join(Engines(), ", "))
	}
}

// Close is a no-op: every render runs its own processes.
func (l *LaTeX) Close() error {
	return nil
}

package mathimg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LaTeX defaults.
const (
	DefaultLaTeXBin  = "latex"
	DefaultDVIPNGBin = "dvipng"
	DefaultDPI       = 100 // dvipng's own default, keeps native image size readable
	DefaultTimeout   = 30 * time.Second
)

// texDocument wraps an expression in display math on an otherwise empty page.
const texDocument = `\documentclass[varwidth,12pt]{article}
\pagestyle{empty}
\usepackage{amsmath,amsfonts}
\begin{document}
$$%s$$
\end{document}
`

const texJob = "equation"

// LaTeX renders expressions with latex and dvipng.
type LaTeX struct {
	Runner    CommandRunner
	LaTeXBin  string
	DVIPNGBin string
	DPI       int
	Timeout   time.Duration

	lookPath func(string) (string, error)
}

var _ Renderer = (*LaTeX)(nil)

// NewLaTeX creates a LaTeX renderer with a real command runner and defaults
// for zero fields of cfg.
func NewLaTeX(cfg Config) *LaTeX {
	l := &LaTeX{
		Runner:    &ExecRunner{},
		LaTeXBin:  cfg.LaTeXBin,
		DVIPNGBin: cfg.DVIPNGBin,
		DPI:       cfg.DPI,
		Timeout:   cfg.Timeout,
		lookPath:  exec.LookPath,
	}
	if l.LaTeXBin == "" {
		l.LaTeXBin = DefaultLaTeXBin
	}
	if l.DVIPNGBin == "" {
		l.DVIPNGBin = DefaultDVIPNGBin
	}
	if l.DPI <= 0 {
		l.DPI = DefaultDPI
	}
	if l.Timeout <= 0 {
		l.Timeout = DefaultTimeout
	}
	return l
}

// Check reports whether both binaries can be found.
func (l *LaTeX) Check() error {
	for _, bin := range []string{l.LaTeXBin, l.DVIPNGBin} {
		if _, err := l.lookPath(bin); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrEngineNotFound, bin, err)
		}
	}
	return nil
}

// RenderMath typesets expr in a scratch directory and writes the PNG to outPath.
func (l *LaTeX) RenderMath(ctx context.Context, expr, outPath string) error {
	if strings.TrimSpace(expr) == "" {
		return ErrEmptyExpr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	absOut, err := filepath.Abs(outPath)
	if err != nil {
		return fmt.Errorf("%w: resolving %s: %v", ErrRender, outPath, err)
	}

	workDir, err := os.MkdirTemp("", "mdocx-latex-*")
	if err != nil {
		return fmt.Errorf("%w: creating work dir: %v", ErrRender, err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	texPath := filepath.Join(workDir, texJob+".tex")
	if err := os.WriteFile(texPath, []byte(fmt.Sprintf(texDocument, expr)), 0o600); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrRender, texPath, err)
	}

	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	stdout, stderr, err := l.Runner.Run(ctx, workDir, l.LaTeXBin,
		"-interaction=nonstopmode", "-halt-on-error", texJob+".tex")
	if err != nil {
		return l.runError(ctx, l.LaTeXBin, stdout, stderr, err)
	}

	stdout, stderr, err = l.Runner.Run(ctx, workDir, l.DVIPNGBin,
		"-T", "tight", "-z", "9", "--truecolor",
		"-D", strconv.Itoa(l.DPI),
		"-o", absOut, texJob+".dvi")
	if err != nil {
		return l.runError(ctx, l.DVIPNGBin, stdout, stderr, err)
	}

	if _, err := os.Stat(absOut); err != nil {
		return fmt.Errorf("%w: %s produced no image: %v", ErrRender, l.DVIPNGBin, err)
	}
	return nil
}

// runError classifies a failed tool run. latex reports TeX errors on stdout,
// so the tail of both streams is kept.
func (l *LaTeX) runError(ctx context.Context, bin, stdout, stderr string, err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s: %v", ErrEngineNotFound, bin, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrRender, bin, ctxErr)
	}
	detail := tail(strings.TrimSpace(stderr+"\n"+stdout), 5)
	return fmt.Errorf("%w: %s: %v: %s", ErrRender, bin, err, detail)
}

// tail returns the last n non-empty lines of s.
func tail(s string, n int) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

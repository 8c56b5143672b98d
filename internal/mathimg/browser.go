package mathimg

import (
	"context"
	"fmt"
	"html"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/sfu-bigdata/go-mdocx/internal/process"
)

// DefaultMathJaxURL is the MathJax 3 TeX-to-SVG bundle.
const DefaultMathJaxURL = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-svg.js"

// cssPixelsPerInch is the resolution Chrome lays out at with a scale factor of 1.
const cssPixelsPerInch = 96

// mathPage is the document MathJax typesets. Display math keeps the layout
// consistent with the LaTeX engine.
const mathPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>body { margin: 0; padding: 4px; background: transparent; }</style>
<script>window.MathJax = { svg: { fontCache: 'none' }, startup: { typeset: true } };</script>
<script src="%s"></script>
</head>
<body><div id="math">\[%s\]</div></body>
</html>`

// Browser renders expressions with MathJax in headless Chrome.
// Rod downloads Chromium on first use if none is installed.
type Browser struct {
	ScriptURL string
	DPI       int
	Timeout   time.Duration

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

var _ Renderer = (*Browser)(nil)

// NewBrowser creates a Browser with defaults for zero fields of cfg.
func NewBrowser(cfg Config) *Browser {
	b := &Browser{ScriptURL: cfg.ScriptURL, DPI: cfg.DPI, Timeout: cfg.Timeout}
	if b.ScriptURL == "" {
		b.ScriptURL = DefaultMathJaxURL
	}
	if b.DPI <= 0 {
		b.DPI = DefaultDPI
	}
	if b.Timeout <= 0 {
		b.Timeout = DefaultTimeout
	}
	return b
}

// ensureBrowser lazily launches and connects to the browser.
func (b *Browser) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	b.launcher = l
	b.browser = browser
	return nil
}

// RenderMath typesets expr on a fresh page and screenshots the SVG to outPath.
func (b *Browser) RenderMath(ctx context.Context, expr, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(expr) == 0 {
		return ErrEmptyExpr
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureBrowser(); err != nil {
		return err
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("%w: creating page: %v", ErrPageLoad, err)
	}
	defer func() { _ = page.Close() }()

	timeout := b.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
	}
	p := page.Context(ctx).Timeout(timeout)

	err = p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1200,
		Height:            800,
		DeviceScaleFactor: float64(b.DPI) / cssPixelsPerInch,
	})
	if err != nil {
		return fmt.Errorf("%w: setting viewport: %v", ErrPageLoad, err)
	}

	doc := fmt.Sprintf(mathPage, html.EscapeString(b.ScriptURL), html.EscapeString(expr))
	if err := p.SetDocumentContent(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if _, err := p.Eval(`() => MathJax.startup.promise`); err != nil {
		return fmt.Errorf("%w: MathJax did not start: %v", ErrRender, err)
	}

	el, err := p.Element("mjx-container svg")
	if err != nil {
		return fmt.Errorf("%w: no typeset output: %v", ErrRender, err)
	}
	png, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return fmt.Errorf("%w: screenshot: %v", ErrRender, err)
	}

	if err := os.WriteFile(outPath, png, 0o644); err != nil { // #nosec G306 -- images are embedded in a readable document
		return fmt.Errorf("%w: writing %s: %v", ErrRender, outPath, err)
	}
	return nil
}

// Close releases browser resources and kills any leftover Chrome processes.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.launcher != nil {
		if pid := b.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		b.launcher.Kill()
		b.launcher = nil
	}
	return err
}

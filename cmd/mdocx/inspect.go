package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	mdocx "github.com/sfu-bigdata/go-mdocx"
)

// Inspect output bounds.
const (
	defaultInspectWidth = 80
	minInspectWidth     = 20
)

// inspectFlags holds flags for the inspect command.
type inspectFlags struct {
	config string
	engine string
	width  int
	dryRun bool
}

// placeholderMath stands in for a math engine: every equation becomes a 1x1
// image so the command stream can be inspected without latex or Chrome.
type placeholderMath struct{}

func (placeholderMath) RenderMath(_ context.Context, _ string, outPath string) error {
	f, err := os.Create(outPath) // #nosec G304 -- path under a private temp dir
	if err != nil {
		return err
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// runInspect renders one Markdown file and prints the command stream.
func runInspect(ctx context.Context, args []string, env *Environment) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	f := &inspectFlags{}
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.engine, "math-engine", "", "math engine: latex, browser")
	fs.IntVar(&f.width, "width", 0, "output width (0 = terminal width)")
	fs.BoolVar(&f.dryRun, "dry-run", false, "replace equations with placeholders")
	fs.Usage = func() { printInspectUsage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: inspect takes exactly one file", ErrUsage)
	}
	path := fs.Arg(0)
	if err := validateMarkdownExtension(path); err != nil {
		return err
	}

	envCfg := loadEnvConfig(env.Getenv)
	cfg, err := loadConfig(f.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	if f.engine != "" {
		cfg.Math.Engine = f.engine
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	content, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}

	tempDir, err := os.MkdirTemp("", "mdocx-inspect-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	opts, err := buildOptions(cfg)
	if err != nil {
		return err
	}
	opts = append(opts, mdocx.WithTempDir(tempDir), mdocx.WithSourceDir(filepath.Dir(path)))
	if f.dryRun {
		opts = append(opts, mdocx.WithMathRenderer(placeholderMath{}))
	}

	s, err := mdocx.NewSession(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	s.AddText(string(content))
	if err := s.Render(ctx); err != nil {
		return err
	}

	width := f.width
	if width <= 0 {
		width = terminalWidth(env, defaultInspectWidth)
	}
	printCommands(env.Stdout, s.Commands(), width)
	return nil
}

// printCommands writes one numbered entry per command, wrapped to width.
func printCommands(w io.Writer, cmds []mdocx.Command, width int) {
	if width < minInspectWidth {
		width = minInspectWidth
	}
	digits := len(strconv.Itoa(len(cmds)))
	pad := digits + 2

	var st commandStats
	for i, cmd := range cmds {
		st.add(cmd)
		text := wrap.String(wordwrap.String(cmd.String(), width-pad), width-pad)
		first, rest, _ := strings.Cut(text, "\n")
		fmt.Fprintf(w, "%*d  %s\n", digits, i+1, first)
		if rest != "" {
			fmt.Fprintln(w, indent.String(rest, uint(pad)))
		}
	}
	fmt.Fprintf(w, "\n%s\n", st)
}

// commandStats counts commands by kind for the inspect summary.
type commandStats struct {
	total, headings, paragraphs, tables, images, breaks int
}

func (st *commandStats) add(cmd mdocx.Command) {
	st.total++
	switch cmd.(type) {
	case mdocx.AddHeading:
		st.headings++
	case mdocx.AddParagraph:
		st.paragraphs++
	case mdocx.AddTable:
		st.tables++
	case mdocx.AddImage:
		st.images++
	case mdocx.AddPageBreak:
		st.breaks++
	}
}

func (st commandStats) String() string {
	return fmt.Sprintf("%d commands: %d headings, %d paragraphs, %d tables, %d images, %d page breaks",
		st.total, st.headings, st.paragraphs, st.tables, st.images, st.breaks)
}

// terminalWidth returns the width of stdout when it is a terminal, then
// $COLUMNS, then fallback.
func terminalWidth(env *Environment, fallback int) int {
	if out, ok := env.Stdout.(*os.File); ok {
		fd := int(out.Fd()) // #nosec G115 -- file descriptors fit in int
		if term.IsTerminal(fd) {
			if w, _, err := term.GetSize(fd); err == nil && w > 0 {
				return w
			}
		}
	}
	if value := env.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

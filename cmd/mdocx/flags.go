package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid command-line arguments.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// documentFlags holds core property flags.
type documentFlags struct {
	title  string
	author string
	date   string
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// mathFlags holds equation rendering flags.
type mathFlags struct {
	engine  string
	tempDir string
	dpi     int
	timeout string
}

// styleFlags holds style set and code highlighting flags.
type styleFlags struct {
	set       string
	assetPath string
	highlight bool
	theme     string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common     commonFlags
	output     string
	workers    int
	imageWidth float64
	document   documentFlags
	page       pageFlags
	math       mathFlags
	style      styleFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addDocumentFlags adds core property flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.title, "title", "", "document title (\"\" = auto from H1)")
	fs.StringVar(&f.author, "author", "", "document author")
	fs.StringVar(&f.date, "date", "", "creation date in document.dateFormat (\"auto\" = now)")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

// addMathFlags adds equation rendering flags to a FlagSet.
func addMathFlags(fs *flag.FlagSet, f *mathFlags) {
	fs.StringVar(&f.engine, "math-engine", "", "math engine: latex, browser")
	fs.StringVar(&f.tempDir, "temp-dir", "", "directory for equation images")
	fs.IntVar(&f.dpi, "dpi", 0, "equation image resolution (latex engine)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-equation timeout (e.g., 30s, 2m)")
}

// addStyleFlags adds style flags to a FlagSet.
func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVarP(&f.set, "style-set", "s", "", "style set name")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom style set directory")
	fs.BoolVar(&f.highlight, "highlight", false, "color code blocks")
	fs.StringVar(&f.theme, "theme", "", "highlighting theme (chroma style name)")
}

// registerConvertFlags registers every convert flag on fs.
func registerConvertFlags(fs *flag.FlagSet, f *convertFlags) {
	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.Float64Var(&f.imageWidth, "image-width", 0, "embedded image width in cm")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addPageFlags(fs, &f.page)
	addMathFlags(fs, &f.math)
	addStyleFlags(fs, &f.style)
}

// buildConvertFlagSet creates a FlagSet with all convert command flags.
func buildConvertFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	registerConvertFlags(fs, &convertFlags{})
	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, stderr io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &convertFlags{}
	registerConvertFlags(fs, f)

	fs.Usage = func() { printConvertUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}

	return f, fs.Args(), nil
}

// usageError wraps a flag parse error, leaving flag.ErrHelp intact.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

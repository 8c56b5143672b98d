package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	mdocx "github.com/sfu-bigdata/go-mdocx"
	"github.com/sfu-bigdata/go-mdocx/internal/config"
)

// ErrConversionFailed reports a batch in which at least one file failed.
var ErrConversionFailed = errors.New("conversion failed")

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	cfg     *config.Config
	tempDir string // base equation image directory
	batch   bool   // per-file subdirectories of tempDir
}

// runConvertCmd parses convert flags and runs the conversion.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	return runConvert(ctx, positional, flags, env)
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	// Validate worker count early
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}

	// Precedence: flags > env > file > defaults
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts, err := buildOptions(cfg)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, inputPath)
	}

	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	size := mdocx.ResolvePoolSize(workers)
	if size > len(files) {
		size = len(files)
	}

	pool := env.NewPool(size, opts...)
	defer func() { _ = pool.Close() }()

	params := &conversionParams{
		cfg:     cfg,
		tempDir: cfg.Math.TempDir,
		batch:   len(files) > 1,
	}
	if params.tempDir == "" {
		params.tempDir = mdocx.DefaultTempDir
	}

	results := convertBatch(ctx, pool, files, params, env)

	failed := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	if failed == 0 {
		return nil
	}
	if len(results) == 1 {
		return results[0].Err
	}
	return fmt.Errorf("%w: %d of %d files", ErrConversionFailed, failed, len(results))
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	// Document flags
	if flags.document.title != "" {
		cfg.Document.Title = flags.document.title
	}
	if flags.document.author != "" {
		cfg.Document.Author = flags.document.author
	}
	if flags.document.date != "" {
		cfg.Document.Date = flags.document.date
	}

	// Page flags
	if flags.page.size != "" {
		cfg.Page.Size = flags.page.size
	}
	if flags.page.orientation != "" {
		cfg.Page.Orientation = flags.page.orientation
	}
	if flags.page.margin > 0 {
		cfg.Page.Margin = flags.page.margin
	}

	// Image flags
	if flags.imageWidth > 0 {
		cfg.Images.WidthCm = flags.imageWidth
	}

	// Math flags
	if flags.math.engine != "" {
		cfg.Math.Engine = flags.math.engine
	}
	if flags.math.tempDir != "" {
		cfg.Math.TempDir = flags.math.tempDir
	}
	if flags.math.dpi > 0 {
		cfg.Math.DPI = flags.math.dpi
	}
	if flags.math.timeout != "" {
		cfg.Math.Timeout = flags.math.timeout
	}

	// Style flags
	if flags.style.set != "" {
		cfg.Styles.Set = flags.style.set
	}
	if flags.style.assetPath != "" {
		cfg.Assets.BasePath = flags.style.assetPath
	}
	if flags.style.highlight {
		cfg.Code.Highlight = true
	}
	if flags.style.theme != "" {
		cfg.Code.Theme = flags.style.theme
	}
}

// buildOptions translates a validated config into converter options.
func buildOptions(cfg *config.Config) ([]mdocx.Option, error) {
	timeout, err := cfg.Math.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	created, err := cfg.Document.CreatedTime()
	if err != nil {
		return nil, err
	}

	page, err := buildPageSettings(cfg)
	if err != nil {
		return nil, err
	}

	opts := []mdocx.Option{
		mdocx.WithStyleSet(cfg.Styles.Set),
		mdocx.WithStyles(mdocx.Styles{
			Code:         cfg.Styles.Code,
			BulletList:   cfg.Styles.BulletList,
			NumberedList: cfg.Styles.NumberedList,
			Table:        cfg.Styles.Table,
		}),
		mdocx.WithImageWidth(cfg.Images.WidthCm),
		mdocx.WithTempDir(cfg.Math.TempDir),
		mdocx.WithMath(mdocx.MathConfig{
			Engine:    cfg.Math.Engine,
			LaTeXBin:  cfg.Math.LaTeX,
			DVIPNGBin: cfg.Math.DVIPNG,
			DPI:       cfg.Math.DPI,
			Timeout:   timeout,
			ScriptURL: cfg.Math.ScriptURL,
		}),
		mdocx.WithProperties(mdocx.Properties{
			Title:   cfg.Document.Title,
			Author:  cfg.Document.Author,
			Created: created,
		}),
	}
	if page != nil {
		opts = append(opts, mdocx.WithPage(page))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, mdocx.WithAssetPath(cfg.Assets.BasePath))
	}
	if cfg.Code.Highlight {
		opts = append(opts, mdocx.WithHighlighting(cfg.Code.Theme))
	}
	return opts, nil
}

// buildPageSettings creates mdocx.PageSettings from config.
// Returns nil when nothing is set, leaving the style set's page layout alone.
func buildPageSettings(cfg *config.Config) (*mdocx.PageSettings, error) {
	if cfg.Page.Size == "" && cfg.Page.Orientation == "" && cfg.Page.Margin == 0 {
		return nil, nil
	}

	ps := &mdocx.PageSettings{
		Size:        strings.ToLower(cfg.Page.Size),
		Orientation: strings.ToLower(cfg.Page.Orientation),
		Margin:      cfg.Page.Margin,
	}

	// Apply defaults
	if ps.Size == "" {
		ps.Size = mdocx.PageSizeLetter
	}
	if ps.Orientation == "" {
		ps.Orientation = mdocx.OrientationPortrait
	}
	if ps.Margin == 0 {
		ps.Margin = mdocx.DefaultMargin
	}

	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return ps, nil
}

// resolveInputPath determines the input path from args or config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// firstHeadingPattern matches the first # heading in markdown content.
var firstHeadingPattern = regexp.MustCompile(`(?m)^#[ \t]+(.+?)(?:[ \t]+#+)?[ \t]*$`)

// extractFirstHeading extracts the first # heading from markdown content.
func extractFirstHeading(markdown string) string {
	matches := firstHeadingPattern.FindStringSubmatch(markdown)
	if len(matches) >= 2 {
		return strings.TrimSpace(matches[1])
	}
	return ""
}

// resolveTitle picks the document title: config, then first H1, then the
// file name without extension.
func resolveTitle(cfg *config.Config, markdown, filename string) string {
	if cfg.Document.Title != "" {
		return cfg.Document.Title
	}
	if title := extractFirstHeading(markdown); title != "" {
		return title
	}
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

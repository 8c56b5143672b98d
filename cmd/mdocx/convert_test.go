package main

// Notes:
// - runConvert: tested against a recording mock pool and, for end-to-end
//   output, a real converter pool whose equations render through stubMath.
// - convertBatch: we test ordering, per-file temp dirs, acquire failure and
//   cancellation. Worker scheduling order is not asserted.
// These are acceptable gaps: latex and Chrome are exercised in the mathimg
// integration tests.

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mdocx "github.com/sfu-bigdata/go-mdocx"
	"github.com/sfu-bigdata/go-mdocx/internal/config"
)

// ---------------------------------------------------------------------------
// TestMergeFlags - CLI flags override config
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Document: config.DocumentConfig{Title: "From File", Author: "File Author"},
		Page:     config.PageConfig{Size: "a4", Margin: 2},
		Styles:   config.StylesConfig{Set: "serif"},
		Math:     config.MathConfig{Engine: "latex", Timeout: "10s"},
	}
	flags := &convertFlags{
		imageWidth: 8,
		document:   documentFlags{title: "From Flag", date: "2024-03-01"},
		page:       pageFlags{orientation: "landscape"},
		math:       mathFlags{engine: "browser", dpi: 300, tempDir: "eqs"},
		style:      styleFlags{highlight: true, theme: "monokai", assetPath: "/styles"},
	}

	mergeFlags(flags, cfg)

	checks := []struct {
		name      string
		got, want any
	}{
		{"title overridden", cfg.Document.Title, "From Flag"},
		{"author kept", cfg.Document.Author, "File Author"},
		{"date set", cfg.Document.Date, "2024-03-01"},
		{"size kept", cfg.Page.Size, "a4"},
		{"orientation set", cfg.Page.Orientation, "landscape"},
		{"margin kept", cfg.Page.Margin, 2.0},
		{"image width", cfg.Images.WidthCm, 8.0},
		{"engine overridden", cfg.Math.Engine, "browser"},
		{"dpi", cfg.Math.DPI, 300},
		{"temp dir", cfg.Math.TempDir, "eqs"},
		{"timeout kept", cfg.Math.Timeout, "10s"},
		{"style set kept", cfg.Styles.Set, "serif"},
		{"asset path", cfg.Assets.BasePath, "/styles"},
		{"highlight", cfg.Code.Highlight, true},
		{"theme", cfg.Code.Theme, "monokai"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestBuildPageSettings - Page defaults and validation
// ---------------------------------------------------------------------------

func TestBuildPageSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		page    config.PageConfig
		want    *mdocx.PageSettings
		wantErr error
	}{
		{"unset", config.PageConfig{}, nil, nil},
		{
			"size only",
			config.PageConfig{Size: "A4"},
			&mdocx.PageSettings{Size: "a4", Orientation: "portrait", Margin: 1},
			nil,
		},
		{
			"orientation only",
			config.PageConfig{Orientation: "landscape"},
			&mdocx.PageSettings{Size: "letter", Orientation: "landscape", Margin: 1},
			nil,
		},
		{"bad size", config.PageConfig{Size: "b5"}, nil, mdocx.ErrInvalidPageSize},
		{"bad margin", config.PageConfig{Margin: 9}, nil, mdocx.ErrInvalidMargin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := buildPageSettings(&config.Config{Page: tt.page})
			wantErr(t, err, tt.wantErr)
			if tt.wantErr != nil {
				return
			}
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("buildPageSettings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildOptions(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{
			Page: config.PageConfig{Size: "legal"},
			Code: config.CodeConfig{Highlight: true},
			Math: config.MathConfig{Timeout: "5s"},
		}
		opts, err := buildOptions(cfg)
		if err != nil {
			t.Fatal(err)
		}
		// set, styles, width, temp dir, math, properties, page, highlighting
		if len(opts) != 8 {
			t.Errorf("got %d options, want 8", len(opts))
		}
		if _, err := mdocx.NewSession(append(opts, mdocx.WithMathRenderer(stubMath{}))...); err != nil {
			t.Errorf("options rejected by NewSession: %v", err)
		}
	})

	t.Run("bad timeout", func(t *testing.T) {
		t.Parallel()

		_, err := buildOptions(&config.Config{Math: config.MathConfig{Timeout: "soon"}})
		wantErr(t, err, config.ErrInvalidValue)
	})

	t.Run("bad date", func(t *testing.T) {
		t.Parallel()

		_, err := buildOptions(&config.Config{Document: config.DocumentConfig{Date: "1 March"}})
		wantErr(t, err, config.ErrInvalidValue)
	})
}

// ---------------------------------------------------------------------------
// TestResolveTitle - Title fallback chain
// ---------------------------------------------------------------------------

func TestExtractFirstHeading(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{"simple", "# Title\n\nBody", "Title"},
		{"after text", "intro\n\n# Later\n", "Later"},
		{"closing hashes", "# Closed ##\n", "Closed"},
		{"hash in text", "# C# tips\n", "C# tips"},
		{"h2 ignored", "## Sub\n", ""},
		{"none", "plain", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := extractFirstHeading(tt.markdown); got != tt.want {
				t.Errorf("extractFirstHeading(%q) = %q, want %q", tt.markdown, got, tt.want)
			}
		})
	}
}

func TestResolveTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfgTitle string
		markdown string
		want     string
	}{
		{"config wins", "Configured", "# Heading", "Configured"},
		{"heading", "", "# Heading", "Heading"},
		{"file name", "", "no heading", "report-2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{Document: config.DocumentConfig{Title: tt.cfgTitle}}
			if got := resolveTitle(cfg, tt.markdown, "docs/report-2024.md"); got != tt.want {
				t.Errorf("resolveTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveInputPath(t *testing.T) {
	t.Parallel()

	if got, err := resolveInputPath([]string{"a.md"}, &config.Config{}); err != nil || got != "a.md" {
		t.Errorf("args: got %q, %v", got, err)
	}
	cfg := &config.Config{Input: config.InputConfig{DefaultDir: "docs"}}
	if got, err := resolveInputPath(nil, cfg); err != nil || got != "docs" {
		t.Errorf("config: got %q, %v", got, err)
	}
	_, err := resolveInputPath(nil, &config.Config{})
	wantErr(t, err, ErrNoInput)
}

// ---------------------------------------------------------------------------
// TestRunConvert - Orchestration against a mock pool
// ---------------------------------------------------------------------------

func TestRunConvert_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# Alpha\n")
	writeFile(t, dir, "sub/b.markdown", "# Beta\n")
	writeFile(t, dir, "skip.txt", "not markdown")
	out := filepath.Join(t.TempDir(), "out")

	env := newTestEnv(t, nil)
	flags := &convertFlags{output: out, workers: 2, math: mathFlags{tempDir: "eq"}}
	if err := runConvert(t.Context(), []string{dir}, flags, env.Environment); err != nil {
		t.Fatalf("runConvert() error = %v", err)
	}

	for _, p := range []string{filepath.Join(out, "a.docx"), filepath.Join(out, "sub", "b.docx")} {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("missing output %s: %v", p, err)
			continue
		}
		if string(data) != "PK mock docx" {
			t.Errorf("%s = %q", p, data)
		}
	}

	inputs := env.pool.conv.recorded()
	if len(inputs) != 2 {
		t.Fatalf("got %d conversions, want 2", len(inputs))
	}
	if inputs[0].Title != "Alpha" || inputs[1].Title != "Beta" {
		t.Errorf("titles = %q, %q", inputs[0].Title, inputs[1].Title)
	}
	if inputs[0].TempDir == inputs[1].TempDir {
		t.Errorf("batch files share temp dir %q", inputs[0].TempDir)
	}
	for _, in := range inputs {
		if !strings.HasPrefix(in.TempDir, "eq"+string(filepath.Separator)) {
			t.Errorf("temp dir %q not under eq/", in.TempDir)
		}
	}
	if inputs[1].SourceDir != filepath.Join(dir, "sub") {
		t.Errorf("SourceDir = %q, want %q", inputs[1].SourceDir, filepath.Join(dir, "sub"))
	}

	if env.pool.size != 2 {
		t.Errorf("pool size = %d, want 2", env.pool.size)
	}
	if !env.pool.closed {
		t.Error("pool not closed")
	}
	if !strings.Contains(env.stdout.String(), "2 succeeded, 0 failed") {
		t.Errorf("stdout = %q", env.stdout)
	}
}

func TestRunConvert_PoolSizeCappedByFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "one.md", "x\n")

	env := newTestEnv(t, map[string]string{"MDOCX_WORKERS": "6"})
	if err := runConvert(t.Context(), []string{in}, &convertFlags{}, env.Environment); err != nil {
		t.Fatal(err)
	}
	if env.pool.size != 1 {
		t.Errorf("pool size = %d, want 1", env.pool.size)
	}
	if got := env.pool.conv.recorded()[0].TempDir; got != mdocx.DefaultTempDir {
		t.Errorf("single file temp dir = %q, want %q", got, mdocx.DefaultTempDir)
	}
}

func TestRunConvert_BatchFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "good.md", "# Good\n")
	writeFile(t, dir, "bad.md", "# Bad\nFAIL\n")

	env := newTestEnv(t, nil)
	err := runConvert(t.Context(), []string{dir}, &convertFlags{}, env.Environment)
	wantErr(t, err, ErrConversionFailed)

	if !strings.Contains(env.stderr.String(), "FAILED "+filepath.Join(dir, "bad.md")) {
		t.Errorf("stderr = %q", env.stderr)
	}
	if !strings.Contains(env.stdout.String(), "1 succeeded, 1 failed") {
		t.Errorf("stdout = %q", env.stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.docx")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("failed conversion left an output file: %v", err)
	}
}

func TestRunConvert_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	md := writeFile(t, dir, "doc.md", "x\n")
	txt := writeFile(t, dir, "doc.txt", "x\n")
	badCfg := writeFile(t, dir, "bad.yaml", "math:\n  engine: mathml\n")

	tests := []struct {
		name    string
		args    []string
		flags   *convertFlags
		vars    map[string]string
		wantErr error
	}{
		{"missing file", []string{filepath.Join(dir, "nope.md")}, &convertFlags{}, nil, os.ErrNotExist},
		{"wrong extension", []string{txt}, &convertFlags{}, nil, ErrInvalidExtension},
		{"negative workers", []string{md}, &convertFlags{workers: -1}, nil, ErrInvalidWorkerCount},
		{"invalid config", []string{md}, &convertFlags{common: commonFlags{config: badCfg}}, nil, config.ErrInvalidValue},
		{"config from env", []string{md}, &convertFlags{}, map[string]string{"MDOCX_CONFIG": badCfg}, config.ErrInvalidValue},
		{"missing config", []string{md}, &convertFlags{common: commonFlags{config: filepath.Join(dir, "none.yaml")}}, nil, config.ErrConfigNotFound},
		{"bad page size", []string{md}, &convertFlags{page: pageFlags{size: "b5"}}, nil, mdocx.ErrInvalidPageSize},
		{"bad timeout flag", []string{md}, &convertFlags{math: mathFlags{timeout: "-3s"}}, nil, config.ErrInvalidValue},
		{"empty directory", []string{t.TempDir()}, &convertFlags{}, nil, ErrNoInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, tt.vars)
			err := runConvert(t.Context(), tt.args, tt.flags, env.Environment)
			wantErr(t, err, tt.wantErr)
		})
	}
}

func TestRunConvert_EndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "paper.md", "# Paper\n\n$$E = mc^2$$\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	out := filepath.Join(t.TempDir(), "paper.docx")

	env := newTestEnv(t, nil).withRealPool()
	flags := &convertFlags{
		output:   out,
		document: documentFlags{author: "Ada", date: "2024-03-01"},
		math:     mathFlags{tempDir: t.TempDir()},
		page:     pageFlags{orientation: "landscape"},
	}
	if err := runConvert(t.Context(), []string{in}, flags, env.Environment); err != nil {
		t.Fatalf("runConvert() error = %v", err)
	}

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("output is not a zip package: %v", err)
	}
	defer zr.Close()

	parts := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		parts[f.Name] = string(data)
	}

	core := parts["docProps/core.xml"]
	if !strings.Contains(core, "Paper") || !strings.Contains(core, "Ada") || !strings.Contains(core, "2024-03-01T") {
		t.Errorf("core.xml lacks title/author/date: %s", core)
	}
	doc := parts["word/document.xml"]
	if !strings.Contains(doc, `w:orient="landscape"`) {
		t.Error("document.xml is not landscape")
	}
	if !strings.Contains(doc, "<w:tbl>") {
		t.Error("document.xml has no table")
	}
	var media int
	for name := range parts {
		if strings.HasPrefix(name, "word/media/") {
			media++
		}
	}
	if media != 1 {
		t.Errorf("got %d media parts, want 1", media)
	}
}

// ---------------------------------------------------------------------------
// TestConvertBatch - Worker behavior
// ---------------------------------------------------------------------------

func TestConvertBatch_AcquireError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := []FileToConvert{
		{InputPath: writeFile(t, dir, "a.md", "a"), OutputPath: filepath.Join(dir, "a.docx")},
		{InputPath: writeFile(t, dir, "b.md", "b"), OutputPath: filepath.Join(dir, "b.docx")},
	}

	env := newTestEnv(t, nil)
	pool := &mockPool{size: 2, acquireErr: mdocx.ErrStyleSetNotFound}
	params := &conversionParams{cfg: config.DefaultConfig(), tempDir: "tmp", batch: true}

	results := convertBatch(t.Context(), pool, files, params, env.Environment)
	for _, r := range results {
		if !errors.Is(r.Err, mdocx.ErrStyleSetNotFound) {
			t.Errorf("%s: err = %v, want %v", r.InputPath, r.Err, mdocx.ErrStyleSetNotFound)
		}
	}
}

func TestConvertBatch_CanceledContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := []FileToConvert{
		{InputPath: writeFile(t, dir, "a.md", "a"), OutputPath: filepath.Join(dir, "a.docx")},
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	env := newTestEnv(t, nil)
	pool := &mockPool{size: 1, conv: &mockConverter{}}
	results := convertBatch(ctx, pool, files, &conversionParams{cfg: config.DefaultConfig()}, env.Environment)

	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("err = %v, want %v", results[0].Err, context.Canceled)
	}
	if pool.acquired != pool.released {
		t.Errorf("acquired %d, released %d", pool.acquired, pool.released)
	}
}

func TestConvertFile_UnreadableInput(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	f := FileToConvert{InputPath: filepath.Join(t.TempDir(), "gone.md"), OutputPath: "gone.docx"}
	r := convertFile(t.Context(), &mockConverter{}, f, "tmp", &conversionParams{cfg: config.DefaultConfig()}, env.Environment)
	wantErr(t, r.Err, ErrReadMarkdown)
}

func TestFileTempDir(t *testing.T) {
	t.Parallel()

	single := &conversionParams{tempDir: "tmp"}
	if got := single.fileTempDir(3); got != "tmp" {
		t.Errorf("single: got %q", got)
	}
	batch := &conversionParams{tempDir: "tmp", batch: true}
	if got := batch.fileTempDir(3); got != filepath.Join("tmp", "3") {
		t.Errorf("batch: got %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestPrintResults - Output formatting
// ---------------------------------------------------------------------------

func TestPrintResultsWithWriter(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{InputPath: "a.md", OutputPath: "a.docx", Commands: 7, Duration: 1500 * time.Microsecond},
		{InputPath: "b.md", Err: mdocx.ErrMalformedTable},
	}

	tests := []struct {
		name       string
		quiet      bool
		verbose    bool
		wantStdout []string
		noStdout   []string
	}{
		{"default", false, false, []string{"Created a.docx", "1 succeeded, 1 failed"}, []string{"commands"}},
		{"verbose", false, true, []string{"a.md -> a.docx (7 commands, 2ms)"}, []string{"Created"}},
		{"quiet", true, false, nil, []string{"Created", "succeeded"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, nil)
			failed := printResultsWithWriter(results, tt.quiet, tt.verbose, env.Environment)
			if failed != 1 {
				t.Errorf("failed = %d, want 1", failed)
			}
			for _, want := range tt.wantStdout {
				if !strings.Contains(env.stdout.String(), want) {
					t.Errorf("stdout = %q, want %q", env.stdout, want)
				}
			}
			for _, bad := range tt.noStdout {
				if strings.Contains(env.stdout.String(), bad) {
					t.Errorf("stdout = %q, should not contain %q", env.stdout, bad)
				}
			}
			if !strings.Contains(env.stderr.String(), "FAILED b.md") || !strings.Contains(env.stderr.String(), "hint:") {
				t.Errorf("stderr = %q", env.stderr)
			}
		})
	}
}

func TestPrintResults_SingleFailureLeftToCaller(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	failed := printResultsWithWriter([]ConversionResult{{InputPath: "a.md", Err: mdocx.ErrIO}}, false, false, env.Environment)
	if failed != 1 {
		t.Errorf("failed = %d", failed)
	}
	if env.stderr.Len() != 0 || env.stdout.Len() != 0 {
		t.Errorf("unexpected output: stdout %q stderr %q", env.stdout, env.stderr)
	}
}

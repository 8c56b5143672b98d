// Package mdocx compiles Markdown with $$ display math into Word documents.
//
// # Quick Start
//
// Create a session, add Markdown, and save:
//
//	s, err := mdocx.NewSession()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	s.AddText("# Hello\n\nThe area is $$\\pi r^2$$")
//	if err := s.Save(ctx, "hello.docx"); err != nil {
//	    log.Fatal(err)
//	}
//
// Text accumulates until Render (or Save) compiles it. A failed Render keeps
// the pending text and leaves the document untouched, so it can be retried
// after the cause is fixed.
//
// # Conversion Pipeline
//
// Each Render runs these stages:
//
//  1. Markdown preprocessing (line endings, NFC, blank line runs, $$ splitting)
//  2. Tokenizing via Goldmark (CommonMark, GFM tables, $$ math blocks)
//  3. Emitting document commands (equations rendered to PNG on the way)
//  4. Applying the commands to the in-memory document, all or nothing
//
// Commands returns the applied commands for inspection.
//
// # Math Engines
//
// Equations are rendered to PNG images numbered from zero per session:
//
//   - "latex" (default): latex and dvipng from a TeX distribution
//   - "browser": MathJax in headless Chrome, driven by go-rod
//
//	s, err := mdocx.NewSession(
//	    mdocx.WithMath(mdocx.MathConfig{Engine: "browser", DPI: 150}),
//	)
//
// WithMathRenderer plugs in any other MathRenderer.
//
// # Configuration
//
// Use functional options to customize a session or converter:
//
//	s, err := mdocx.NewSession(
//	    mdocx.WithStyleSet("serif"),
//	    mdocx.WithPage(&mdocx.PageSettings{Size: "a4", Orientation: "portrait", Margin: 1}),
//	    mdocx.WithImageWidth(12),
//	    mdocx.WithHighlighting("monokai"),
//	)
//
// # Batch Conversion
//
// Converter compiles whole documents in memory. For parallel work use
// ConverterPool; each converter owns its math renderer:
//
//	pool := mdocx.NewConverterPool(4)
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//	result, err := conv.Convert(ctx, mdocx.Input{Markdown: md, TempDir: dir})
//
// # Style Sets
//
// Built-in style sets are "default" and "serif". WithAssetPath adds a
// directory of custom sets that take precedence:
//
//	assets/
//	└── report/
//	    ├── styles.xml
//	    └── numbering.xml   (optional)
//
// # Error Handling
//
// Errors wrap the sentinels in errors.go; match them with errors.Is:
//
//	if errors.Is(err, mdocx.ErrMathRender) {
//	    // check the TeX installation or the expression
//	}
package mdocx

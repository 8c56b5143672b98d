package mdocx

// Notes:
// - PageSettings: validation for size, orientation and margin boundaries, and
//   conversion to section geometry in twips
// - Styles: defaults fill only empty fields
// - Options: later options override earlier ones

import (
	"errors"
	"testing"

	"github.com/sfu-bigdata/go-mdocx/internal/docx"
)

// ---------------------------------------------------------------------------
// TestPageSettings_Validate - PageSettings Validation
// ---------------------------------------------------------------------------

func TestPageSettings_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ps      *PageSettings
		wantErr error
	}{
		{"nil is valid", nil, nil},
		{"defaults", DefaultPageSettings(), nil},
		{"a4 landscape", &PageSettings{Size: "a4", Orientation: "landscape", Margin: 1}, nil},
		{"case insensitive", &PageSettings{Size: "LEGAL", Orientation: "Portrait", Margin: 1}, nil},
		{"minimum margin", &PageSettings{Size: "letter", Orientation: "portrait", Margin: MinMargin}, nil},
		{"maximum margin", &PageSettings{Size: "letter", Orientation: "portrait", Margin: MaxMargin}, nil},
		{"unknown size", &PageSettings{Size: "tabloid", Orientation: "portrait", Margin: 1}, ErrInvalidPageSize},
		{"empty size", &PageSettings{Orientation: "portrait", Margin: 1}, ErrInvalidPageSize},
		{"unknown orientation", &PageSettings{Size: "a4", Orientation: "diagonal", Margin: 1}, ErrInvalidOrientation},
		{"margin below minimum", &PageSettings{Size: "a4", Orientation: "portrait", Margin: 0.24}, ErrInvalidMargin},
		{"margin above maximum", &PageSettings{Size: "a4", Orientation: "portrait", Margin: 3.01}, ErrInvalidMargin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.ps.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPageSettings_Setup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ps   *PageSettings
		want docx.PageSetup
	}{
		{"nil is letter portrait", nil, docx.PageSetup{Width: 12240, Height: 15840, Margin: 1440}},
		{"a4 half inch", &PageSettings{Size: "A4", Orientation: "portrait", Margin: 0.5}, docx.PageSetup{Width: 11906, Height: 16838, Margin: 720}},
		{"legal landscape", &PageSettings{Size: "legal", Orientation: "landscape", Margin: 1}, docx.PageSetup{Width: 12240, Height: 20160, Margin: 1440, Landscape: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.ps.setup(); got != tt.want {
				t.Errorf("setup() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestStyles_WithDefaults - Style Defaults
// ---------------------------------------------------------------------------

func TestStyles_WithDefaults(t *testing.T) {
	t.Parallel()

	got := Styles{Table: "Table Normal"}.withDefaults()
	want := Styles{
		Code:         DefaultCodeStyle,
		BulletList:   DefaultBulletListStyle,
		NumberedList: DefaultNumberedListStyle,
		Table:        "Table Normal",
	}
	if got != want {
		t.Errorf("withDefaults() = %+v, want %+v", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestOptions - Functional Options
// ---------------------------------------------------------------------------

func TestOptions(t *testing.T) {
	t.Parallel()

	cfg := defaultSessionConfig()
	for _, opt := range []Option{
		WithTempDir("eqs"),
		WithTempDir(""),
		WithStyleSet("serif"),
		WithStyleSet(""),
		WithSourceDir("docs"),
		WithImageWidth(12.5),
		WithHighlighting("monokai"),
		WithMath(MathConfig{Engine: "browser", DPI: 200}),
	} {
		opt(&cfg)
	}

	if cfg.tempDir != "eqs" {
		t.Errorf("tempDir = %q, want %q", cfg.tempDir, "eqs")
	}
	if cfg.styleSet != "serif" {
		t.Errorf("styleSet = %q, want %q", cfg.styleSet, "serif")
	}
	if cfg.sourceDir != "docs" || cfg.imageWidthCm != 12.5 {
		t.Errorf("sourceDir, imageWidthCm = %q, %v", cfg.sourceDir, cfg.imageWidthCm)
	}
	if !cfg.highlight || cfg.theme != "monokai" {
		t.Errorf("highlight, theme = %v, %q", cfg.highlight, cfg.theme)
	}
	if cfg.math.Engine != "browser" || cfg.math.DPI != 200 {
		t.Errorf("math = %+v", cfg.math)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("validate() error = %v", err)
	}
}

func TestCm(t *testing.T) {
	t.Parallel()

	if got := Cm(1); got != 360000 {
		t.Errorf("Cm(1) = %d EMU, want 360000", got)
	}
}

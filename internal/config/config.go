package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sfu-bigdata/go-mdocx/internal/dateutil"
	"github.com/sfu-bigdata/go-mdocx/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDir is the directory name under the user config directory.
const AppDir = "go-mdocx"

// Field length limits.
const (
	MaxTitleLength       = 200  // document title
	MaxAuthorLength      = 100  // document author
	MaxDateLength        = 50   // "March 1, 2024"
	MaxPathLength        = 4096 // directories and binaries
	MaxURLLength         = 2048 // MathJax script URL
	MaxPageSizeLength    = 10   // "letter", "a4", "legal"
	MaxOrientationLength = 10   // "portrait", "landscape"
	MaxStyleNameLength   = 100  // Word style names
	MaxEngineLength      = 20   // "latex", "browser"
	MaxDurationLength    = 20   // "30s", "1m30s"
	MaxThemeLength       = 50   // chroma style name
)

// Numeric limits.
const (
	MinDPI        = 36
	MaxDPI        = 2400
	MaxImageWidth = 100.0 // cm
)

// Config holds all configuration for document generation.
// Zero values mean "use the library default".
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Document DocumentConfig `yaml:"document"`
	Page     PageConfig     `yaml:"page"`
	Images   ImagesConfig   `yaml:"images"`
	Styles   StylesConfig   `yaml:"styles"`
	Math     MathConfig     `yaml:"math"`
	Code     CodeConfig     `yaml:"code"`
	Assets   AssetsConfig   `yaml:"assets"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// DocumentConfig sets the core document properties.
type DocumentConfig struct {
	Title      string `yaml:"title"`
	Author     string `yaml:"author"`
	Date       string `yaml:"date"`       // creation date, "auto" = time of writing
	DateFormat string `yaml:"dateFormat"` // tokens or preset: iso, european, us, long (default: iso)
}

// CreatedTime parses Date with DateFormat. Empty or "auto" returns zero.
func (d DocumentConfig) CreatedTime() (time.Time, error) {
	t, err := dateutil.Parse(d.Date, d.DateFormat)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: document.date: %v", ErrInvalidValue, err)
	}
	return t, nil
}

// PageConfig defines the section page setup.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal" (default: "letter")
	Orientation string  `yaml:"orientation"` // "portrait", "landscape" (default: "portrait")
	Margin      float64 `yaml:"margin"`      // inches (default: 1.0)
}

// ImagesConfig defines image sizing.
type ImagesConfig struct {
	WidthCm float64 `yaml:"widthCm"` // width of embedded images (default: 15)
}

// StylesConfig names the style set and the styles the converter applies.
type StylesConfig struct {
	Set          string `yaml:"set"`          // style set name (default: "default")
	Code         string `yaml:"code"`         // code block paragraph style (default: "Quote")
	BulletList   string `yaml:"bulletList"`   // default: "List Bullet"
	NumberedList string `yaml:"numberedList"` // default: "List Number"
	Table        string `yaml:"table"`        // default: "Table Grid"
}

// MathConfig selects and tunes the math renderer.
type MathConfig struct {
	Engine    string `yaml:"engine"`    // "latex", "browser" (default: "latex")
	TempDir   string `yaml:"tempDir"`   // equation image directory (default: "tmp")
	DPI       int    `yaml:"dpi"`       // default: 100
	LaTeX     string `yaml:"latex"`     // latex binary (default: "latex")
	DVIPNG    string `yaml:"dvipng"`    // dvipng binary (default: "dvipng")
	Timeout   string `yaml:"timeout"`   // per equation, Go duration (default: "30s")
	ScriptURL string `yaml:"scriptURL"` // MathJax bundle for the browser engine
}

// CodeConfig controls code block highlighting.
type CodeConfig struct {
	Highlight bool   `yaml:"highlight"`
	Theme     string `yaml:"theme"` // chroma style name (default: "github")
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded style sets
}

// TimeoutDuration parses Math.Timeout. An empty value returns zero.
func (m MathConfig) TimeoutDuration() (time.Duration, error) {
	if m.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(m.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: math.timeout: %v", ErrInvalidValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: math.timeout: must be positive, got %s", ErrInvalidValue, m.Timeout)
	}
	return d, nil
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"input.defaultDir", c.Input.DefaultDir, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"document.title", c.Document.Title, MaxTitleLength},
		{"document.author", c.Document.Author, MaxAuthorLength},
		{"document.date", c.Document.Date, MaxDateLength},
		{"document.dateFormat", c.Document.DateFormat, dateutil.MaxFormatLength},
		{"page.size", c.Page.Size, MaxPageSizeLength},
		{"page.orientation", c.Page.Orientation, MaxOrientationLength},
		{"styles.set", c.Styles.Set, MaxStyleNameLength},
		{"styles.code", c.Styles.Code, MaxStyleNameLength},
		{"styles.bulletList", c.Styles.BulletList, MaxStyleNameLength},
		{"styles.numberedList", c.Styles.NumberedList, MaxStyleNameLength},
		{"styles.table", c.Styles.Table, MaxStyleNameLength},
		{"math.engine", c.Math.Engine, MaxEngineLength},
		{"math.tempDir", c.Math.TempDir, MaxPathLength},
		{"math.latex", c.Math.LaTeX, MaxPathLength},
		{"math.dvipng", c.Math.DVIPNG, MaxPathLength},
		{"math.timeout", c.Math.Timeout, MaxDurationLength},
		{"math.scriptURL", c.Math.ScriptURL, MaxURLLength},
		{"code.theme", c.Code.Theme, MaxThemeLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Math.Engine != "" {
		switch strings.ToLower(c.Math.Engine) {
		case "latex", "browser":
			// valid
		default:
			return fmt.Errorf("%w: math.engine: %q (must be latex or browser)", ErrInvalidValue, c.Math.Engine)
		}
	}
	if c.Math.DPI != 0 && (c.Math.DPI < MinDPI || c.Math.DPI > MaxDPI) {
		return fmt.Errorf("%w: math.dpi: must be between %d and %d, got %d", ErrInvalidValue, MinDPI, MaxDPI, c.Math.DPI)
	}
	if _, err := c.Document.CreatedTime(); err != nil {
		return err
	}
	if _, err := c.Math.TimeoutDuration(); err != nil {
		return err
	}
	if c.Images.WidthCm < 0 || c.Images.WidthCm > MaxImageWidth {
		return fmt.Errorf("%w: images.widthCm: must be between 0 and %.0f, got %.2f", ErrInvalidValue, MaxImageWidth, c.Images.WidthCm)
	}
	if c.Page.Margin < 0 {
		return fmt.Errorf("%w: page.margin: must not be negative, got %.2f", ErrInvalidValue, c.Page.Margin)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a neutral configuration where every field selects the
// library default.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yamlutil.DecodeStrict(f, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\") || strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-mdocx/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppDir, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

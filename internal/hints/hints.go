// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sfu-bigdata/go-mdocx/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForMathEngineNotFound returns hints when the latex or dvipng binary is missing.
func ForMathEngineNotFound(engine string) string {
	if engine == "browser" {
		return ForBrowserConnect()
	}
	return formatHints([]string{
		"install a TeX distribution with dvipng (TeX Live, MiKTeX)",
		"or use --math-engine browser",
	})
}

// ForMathRender returns a hint for an expression that failed to typeset.
func ForMathRender() string {
	return format("check the expression between $$ delimiters; run `mdocx inspect` to see which equation failed")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for slow equations, use --timeout flag or math.timeout")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/go-mdocx/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForStyleSetNotFound returns hints for style set not found errors.
func ForStyleSetNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForImage returns hints for images that cannot be embedded.
func ForImage() string {
	return format("relative paths resolve against the Markdown file; remote URLs are not downloaded; supported formats: PNG, JPEG, GIF, BMP, TIFF, WebP")
}

// ForMalformedTable returns a hint for tables whose cells do not fill the grid.
func ForMalformedTable() string {
	return format("every table row needs as many cells as the header row")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}

package main

import (
	"errors"
	"os"

	mdocx "github.com/sfu-bigdata/go-mdocx"
	"github.com/sfu-bigdata/go-mdocx/internal/config"
)

// Exit codes for mdocx CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, input or validation
	ExitIO      = 3 // File not found, permission denied, unreadable image
	ExitMath    = 4 // Math engine errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Math errors (exit 4). Checked first: a failed equation may wrap an I/O cause.
	if errors.Is(err, mdocx.ErrMathRender) ||
		errors.Is(err, mdocx.ErrEngineNotFound) ||
		errors.Is(err, mdocx.ErrBrowserConnect) {
		return ExitMath
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, mdocx.ErrIO) ||
		errors.Is(err, mdocx.ErrUnsupportedImage) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteDOCX) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, mdocx.ErrParse) ||
		errors.Is(err, mdocx.ErrMalformedTable) ||
		errors.Is(err, mdocx.ErrInvalidURI) ||
		errors.Is(err, mdocx.ErrInvalidPageSize) ||
		errors.Is(err, mdocx.ErrInvalidOrientation) ||
		errors.Is(err, mdocx.ErrInvalidMargin) ||
		errors.Is(err, mdocx.ErrInvalidImageWidth) ||
		errors.Is(err, mdocx.ErrStyleSetNotFound) ||
		errors.Is(err, mdocx.ErrInvalidStyleSet) ||
		errors.Is(err, mdocx.ErrIncompleteStyleSet) ||
		errors.Is(err, mdocx.ErrInvalidAssetPath) ||
		errors.Is(err, mdocx.ErrUnknownEngine) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}

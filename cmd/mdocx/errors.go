package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	mdocx "github.com/sfu-bigdata/go-mdocx"
	"github.com/sfu-bigdata/go-mdocx/internal/assets"
	"github.com/sfu-bigdata/go-mdocx/internal/config"
	"github.com/sfu-bigdata/go-mdocx/internal/hints"
)

// hintFor returns an actionable hint for err, or "" if none applies.
// More specific causes are checked before the errors that wrap them.
func hintFor(err error) string {
	switch {
	case errors.Is(err, mdocx.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, mdocx.ErrEngineNotFound):
		return hints.ForMathEngineNotFound("latex")
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, mdocx.ErrMathRender):
		return hints.ForMathRender()
	case errors.Is(err, mdocx.ErrStyleSetNotFound):
		return hints.ForStyleSetNotFound(assets.EmbeddedNames())
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(userConfigPaths())
	case errors.Is(err, mdocx.ErrMalformedTable):
		return hints.ForMalformedTable()
	case errors.Is(err, mdocx.ErrIO), errors.Is(err, mdocx.ErrUnsupportedImage):
		return hints.ForImage()
	case errors.Is(err, ErrWriteDOCX):
		return hints.ForOutputDirectory()
	}
	return ""
}

// userConfigPaths lists where a named config may be created.
func userConfigPaths() []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, config.AppDir, "mdocx.yaml")}
}

package mdocx

import (
	"errors"

	"github.com/sfu-bigdata/go-mdocx/internal/assets"
	"github.com/sfu-bigdata/go-mdocx/internal/datauri"
	"github.com/sfu-bigdata/go-mdocx/internal/docx"
	"github.com/sfu-bigdata/go-mdocx/internal/mathimg"
	"github.com/sfu-bigdata/go-mdocx/internal/pipeline"
)

// Sentinel errors for conversion. Errors returned by this package wrap one
// of these, so callers match them with errors.Is.
var (
	ErrParse            = pipeline.ErrParse
	ErrMalformedTable   = pipeline.ErrMalformedTable
	ErrMathRender       = pipeline.ErrMathRender
	ErrOutOfBounds      = docx.ErrOutOfBounds
	ErrUnsupportedImage = docx.ErrUnsupportedImage
	ErrIO               = docx.ErrIO
	ErrInvalidURI       = datauri.ErrInvalidURI

	ErrEmptyPath = errors.New("path cannot be empty")
	ErrClosed    = errors.New("converter is closed")

	// Math engine errors.
	ErrEngineNotFound = mathimg.ErrEngineNotFound
	ErrUnknownEngine  = mathimg.ErrUnknownEngine
	ErrBrowserConnect = mathimg.ErrBrowserConnect

	// Settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidImageWidth  = errors.New("invalid image width")

	// Asset loading errors.
	ErrStyleSetNotFound   = assets.ErrStyleSetNotFound
	ErrInvalidStyleSet    = assets.ErrInvalidStyleSet
	ErrIncompleteStyleSet = assets.ErrIncompleteStyleSet
	ErrInvalidAssetPath   = errors.New("invalid asset path")
)

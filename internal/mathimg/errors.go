package mathimg

import "errors"

// Sentinel errors for math rendering.
var (
	ErrEngineNotFound = errors.New("math engine not found")
	ErrUnknownEngine  = errors.New("unknown math engine")
	ErrEmptyExpr      = errors.New("empty math expression")
	ErrRender         = errors.New("math rendering failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageLoad       = errors.New("failed to load page")
)

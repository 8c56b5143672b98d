package pipeline

import "errors"

// Sentinel errors for tokenizing and command emission.
var (
	ErrParse          = errors.New("markdown parse error")
	ErrMalformedTable = errors.New("malformed table")
	ErrMathRender     = errors.New("math rendering failed")
)

package docx

import "errors"

// Sentinel errors for document building and serialization.
var (
	ErrOutOfBounds      = errors.New("cell address out of bounds")
	ErrUnsupportedImage = errors.New("unsupported image")
	ErrIO               = errors.New("I/O failure")
	ErrInvalidCommand   = errors.New("invalid command")
	ErrMissingTemplate  = errors.New("document template missing styles")
)

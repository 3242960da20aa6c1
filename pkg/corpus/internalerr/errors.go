package internalerr

import "errors"

// Sentinel errors shared across the corpus packages
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

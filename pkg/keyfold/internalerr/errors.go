package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// TaxonomyLoadError reports a missing or empty taxonomy for a product type.
// This is a configuration-level failure: callers must surface it rather than
// fall back to an empty taxonomy.
type TaxonomyLoadError struct {
	ProductType string
}

func (e *TaxonomyLoadError) Error() string {
	return fmt.Sprintf("taxonomy: no categories for product type %q", e.ProductType)
}

// UnknownProductTypeError reports a product type absent from both the taxonomy
// and the default-label mapping.
type UnknownProductTypeError struct {
	ProductType string
}

func (e *UnknownProductTypeError) Error() string {
	return fmt.Sprintf("classify: unknown product type %q", e.ProductType)
}

// KeywordGenerationError reports a per-item keyword generation failure.
// One item failing never aborts its batch siblings.
type KeywordGenerationError struct {
	Title  string
	Reason string
}

func (e *KeywordGenerationError) Error() string {
	return fmt.Sprintf("extract: keyword generation failed for %q: %s", e.Title, e.Reason)
}

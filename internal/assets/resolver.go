package assets

import (
	"errors"
)

// AssetResolver combines custom and embedded loaders with fallback logic.
// When a custom loader is configured, it tries custom first, then falls back
// to embedded if the style set is not found in the custom location.
type AssetResolver struct {
	custom   StyleSetLoader // nil if no custom path configured
	embedded StyleSetLoader
}

// NewAssetResolver creates an AssetResolver.
// If customBasePath is empty, only embedded style sets are used.
// Returns error if customBasePath is set but invalid.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadStyleSet loads a style set, trying the custom loader first if available.
func (r *AssetResolver) LoadStyleSet(name string) (*StyleSet, error) {
	// If no custom loader, use embedded directly
	if r.custom == nil {
		return r.embedded.LoadStyleSet(name)
	}

	set, err := r.custom.LoadStyleSet(name)
	if err == nil {
		return set, nil
	}

	// Only fall back for "not found" errors, not validation or I/O errors
	if !errors.Is(err, ErrStyleSetNotFound) {
		return nil, err
	}

	return r.embedded.LoadStyleSet(name)
}

// HasCustomLoader returns true if a custom style set loader is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ StyleSetLoader = (*AssetResolver)(nil)

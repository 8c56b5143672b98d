package assets

// StyleSetLoader defines the contract for loading style sets.
type StyleSetLoader interface {
	// LoadStyleSet loads a style set by name.
	// Returns ErrStyleSetNotFound if the set doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyleSet(name string) (*StyleSet, error)
}

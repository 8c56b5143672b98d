package assets

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyleSet loads a style set by name using the default embedded loader.
// Returns ErrStyleSetNotFound if the style set does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadStyleSet(name string) (*StyleSet, error) {
	return defaultLoader.LoadStyleSet(name)
}

// EmbeddedNames lists the built-in style sets.
func EmbeddedNames() []string {
	return defaultLoader.Names()
}

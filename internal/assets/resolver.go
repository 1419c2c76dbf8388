package assets

import "errors"

// Compile-time interface check.
var _ StyleLoader = (*AssetResolver)(nil)

// AssetResolver tries a custom directory first and falls back to the
// embedded styles when a style is not found there.
type AssetResolver struct {
	custom   StyleLoader // nil if no custom path configured
	embedded StyleLoader
}

// NewAssetResolver creates an AssetResolver. An empty customBasePath uses the
// embedded styles only; an invalid one returns ErrInvalidBasePath.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{embedded: NewEmbeddedLoader()}
	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}
	return resolver, nil
}

// LoadStyle implements StyleLoader. Only not-found errors fall back; invalid
// names and read errors from the custom directory are returned as is.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadStyle(name)
	}

	content, err := r.custom.LoadStyle(name)
	if err == nil {
		return content, nil
	}
	if !errors.Is(err, ErrStyleNotFound) {
		return "", err
	}
	return r.embedded.LoadStyle(name)
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

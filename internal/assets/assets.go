package assets

// DefaultStyleName is the stylesheet used when none is configured.
const DefaultStyleName = "preview"

var defaultLoader = NewEmbeddedLoader()

// StyleNames lists the embedded stylesheets.
func StyleNames() []string {
	return defaultLoader.StyleNames()
}

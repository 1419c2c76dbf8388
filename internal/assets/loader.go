package assets

// StyleLoader loads CSS stylesheets by name (without the .css extension).
type StyleLoader interface {
	LoadStyle(name string) (string, error)
}

// Package assets provides the stylesheets embedded in exported preview
// documents. Styles are loaded by name from the embedded set or from a custom
// directory that takes precedence over it.
package assets

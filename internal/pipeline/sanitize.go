package pipeline

import "github.com/microcosm-cc/bluemonday"

// Sanitizer strips disallowed markup from rendered HTML.
type Sanitizer interface {
	Sanitize(html string) string
}

// Compile-time interface check
var _ Sanitizer = (*PolicySanitizer)(nil)

// allowedElements is the tag allow-list for preview output.
var allowedElements = []string{
	"h1", "h2", "h3", "h4", "h5", "h6",
	"p", "br",
	"strong", "em", "u", "s", "del", "ins",
	"ul", "ol", "li", "dl", "dt", "dd",
	"blockquote", "q", "cite",
	"code", "pre", "kbd", "samp", "var",
	"a", "img", "figure", "figcaption",
	"table", "thead", "tbody", "tfoot", "tr", "td", "th", "caption",
	"div", "span", "section", "article", "aside", "nav", "header", "footer",
	"hr",
	"details", "summary",
}

// allowedAttributes is the attribute allow-list, applied to every allowed tag.
// href and src are further limited to http, https, mailto and relative URLs.
var allowedAttributes = []string{
	"href", "title", "alt", "src", "width", "height",
	"class", "id", "lang", "dir",
	"target", "rel", "type",
	"start", "reversed", "open",
	"colspan", "rowspan", "scope",
}

// PolicySanitizer is a Sanitizer backed by a bluemonday allow-list policy.
// The policy is built once and is safe for concurrent use.
type PolicySanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer returns the preview allow-list sanitizer. Disallowed wrapper
// tags are removed with their content kept, except for script and style whose
// content is dropped as well.
func NewSanitizer() *PolicySanitizer {
	return &PolicySanitizer{policy: newPreviewPolicy()}
}

func newPreviewPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("mailto", "http", "https")
	p.AllowElements(allowedElements...)
	p.AllowAttrs(allowedAttributes...).Globally()
	return p
}

// Sanitize implements Sanitizer.
func (s *PolicySanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}

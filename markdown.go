package mdpreview

import (
	"strings"
	"sync"

	"github.com/alnah/go-mdpreview/internal/pipeline"
)

// defaultRenderer backs the package-level functions. It has no cache and
// records no metrics.
var defaultRenderer = sync.OnceValue(func() *Renderer {
	r, err := NewRenderer(WithCacheSize(0))
	if err != nil {
		panic("mdpreview: default renderer: " + err.Error())
	}
	return r
})

// defaultSanitizer is the allow-list policy shared by Sanitize.
var defaultSanitizer = sync.OnceValue(func() *pipeline.PolicySanitizer {
	return pipeline.NewSanitizer()
})

// ParseMarkdown renders markdown to preview HTML. A nil opts uses
// DefaultOptions. Empty or whitespace-only input yields PlaceholderHTML;
// rendering errors yield an inline error paragraph. It never panics.
//
// Calls are independent: each builds its own parser, so concurrent calls with
// different options never observe each other's configuration.
func ParseMarkdown(markdown string, opts *Options) string {
	return defaultRenderer().ParseMarkdown(markdown, opts)
}

// Render is ParseMarkdown reporting whether the output was sanitized.
func Render(markdown string, opts *Options) RenderedDocument {
	return defaultRenderer().Render(markdown, opts)
}

// Highlight returns syntax-highlighted markup for code. Short language tags
// such as "js" or "py" are resolved to their full names. Unknown languages and
// highlighting failures return the HTML-escaped code.
func Highlight(code, lang string) string {
	return defaultRenderer().Highlight(code, lang)
}

// HighlightCSS returns the stylesheet for the classes emitted by Highlight in
// the named chroma style. Returns ErrUnknownStyle for unregistered styles.
func HighlightCSS(style string) (string, error) {
	var buf strings.Builder
	if err := pipeline.WriteHighlightCSS(&buf, style); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// HighlightStyleNames returns the style names HighlightCSS accepts, sorted.
func HighlightStyleNames() []string {
	return pipeline.HighlightStyleNames()
}

// Sanitize strips every tag and attribute outside the preview allow-list.
// URLs in href and src are limited to http, https, mailto and relative
// references. Sanitize is idempotent.
func Sanitize(html string) string {
	return defaultSanitizer().Sanitize(html)
}

// ExtractHeadings returns the ATX headings of markdown in document order.
// Heading lines inside fenced code blocks are included.
func ExtractHeadings(markdown string) []Heading {
	return toHeadings(pipeline.ExtractHeadings(markdown))
}

// CountWords counts the words of markdown after markup is stripped.
func CountWords(markdown string) int {
	return pipeline.CountWords(markdown)
}

// EstimateReadingTime returns the reading time in whole minutes, rounded up.
// A non-positive wordsPerMinute uses DefaultWordsPerMinute.
func EstimateReadingTime(wordCount, wordsPerMinute int) int {
	return pipeline.EstimateReadingTime(wordCount, wordsPerMinute)
}

// ExtractMetadata computes headings, word count and reading time.
func ExtractMetadata(markdown string, wordsPerMinute int) Metadata {
	return toMetadata(pipeline.ExtractMetadata(markdown, wordsPerMinute))
}

// Outline renders headings up to maxDepth as a numbered table of contents
// linking to the heading ids. An out-of-range maxDepth includes every level.
// Returns "" when no heading qualifies.
func Outline(headings []Heading, title string, maxDepth int) string {
	return pipeline.Outline(fromHeadings(headings), title, maxDepth)
}

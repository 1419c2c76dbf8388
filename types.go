package mdpreview

import (
	"fmt"

	"github.com/alnah/go-mdpreview/internal/assets"
	"github.com/alnah/go-mdpreview/internal/pipeline"
)

// HighlightFunc turns source code in the given language into an HTML fragment
// placed inside <code> verbatim. Implementations must escape the code they
// do not mark up.
type HighlightFunc = pipeline.HighlightFunc

// Sanitizer strips disallowed markup from rendered HTML.
type Sanitizer interface {
	Sanitize(html string) string
}

// PlaceholderHTML is the preview returned for empty or whitespace-only input.
const PlaceholderHTML = pipeline.PlaceholderHTML

// DefaultWordsPerMinute is the reading speed used by EstimateReadingTime when
// none is given.
const DefaultWordsPerMinute = pipeline.DefaultWordsPerMinute

// Options configures a single render. A nil *Options means DefaultOptions.
// The zero value disables every feature, including sanitization.
type Options struct {
	Breaks    bool          // single newlines become <br>
	GFM       bool          // tables, strikethrough, autolinks, task lists
	Sanitize  bool          // run the Sanitizer on the output
	Highlight HighlightFunc // nil uses the built-in highlighter
	Origin    string        // current page origin, e.g. "https://editor.example"; empty if unknown
}

// DefaultOptions returns options with line breaks, GFM and sanitization enabled.
func DefaultOptions() *Options {
	return &Options{
		Breaks:   true,
		GFM:      true,
		Sanitize: true,
	}
}

// Validate checks that options are usable.
// Returns nil if o is nil (nil means use defaults).
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	if !pipeline.ValidOrigin(o.Origin) {
		return fmt.Errorf("%w: %q (must be an absolute http or https URL)", ErrInvalidOrigin, o.Origin)
	}
	return nil
}

// renderOptions resolves o into pipeline options, applying defaults for nil.
func (o *Options) renderOptions() pipeline.RenderOptions {
	if o == nil {
		o = DefaultOptions()
	}
	return pipeline.RenderOptions{
		Breaks:    o.Breaks,
		GFM:       o.GFM,
		Sanitize:  o.Sanitize,
		Highlight: o.Highlight,
		Origin:    o.Origin,
	}
}

// Heading is a heading found in markdown.
type Heading struct {
	Level int    `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
	ID    string `json:"id" yaml:"id"`
}

// Metadata summarizes raw markdown text.
type Metadata struct {
	Headings    []Heading `json:"headings" yaml:"headings"`
	WordCount   int       `json:"wordCount" yaml:"wordCount"`
	ReadingTime int       `json:"readingTime" yaml:"readingTime"` // minutes
	HasContent  bool      `json:"hasContent" yaml:"hasContent"`
}

// RenderedDocument is the output of Render. Sanitized is true only when the
// sanitizer actually ran over HTML.
type RenderedDocument struct {
	HTML      string `json:"html" yaml:"html"`
	Sanitized bool   `json:"sanitized" yaml:"sanitized"`
}

// Preview is the payload handed to a preview pane: rendered HTML plus the
// metadata of the same markdown.
type Preview struct {
	HTML      string   `json:"html" yaml:"html"`
	Sanitized bool     `json:"sanitized" yaml:"sanitized"`
	Metadata  Metadata `json:"metadata" yaml:"metadata"`
}

// TOC depth bounds.
const (
	DefaultTOCDepth = 3
	MinTOCDepth     = pipeline.MinOutlineDepth
	MaxTOCDepth     = pipeline.MaxOutlineDepth
)

// TOC configures the table of contents of an exported document.
type TOC struct {
	Title    string // empty means no title
	MaxDepth int    // 0 means DefaultTOCDepth
}

// Validate checks that TOC settings are valid.
// Returns nil if t is nil (nil means no TOC).
func (t *TOC) Validate() error {
	if t == nil || t.MaxDepth == 0 {
		return nil
	}
	if t.MaxDepth < MinTOCDepth || t.MaxDepth > MaxTOCDepth {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidTOCDepth, t.MaxDepth, MinTOCDepth, MaxTOCDepth)
	}
	return nil
}

func (t *TOC) depth() int {
	if t.MaxDepth == 0 {
		return DefaultTOCDepth
	}
	return t.MaxDepth
}

// DefaultHighlightStyle is the chroma style embedded in exports.
const DefaultHighlightStyle = "github"

// ExportOptions configures a standalone HTML export.
type ExportOptions struct {
	Title          string   // overrides the front matter title and the first heading
	Lang           string   // overrides the front matter lang; defaults to "en"
	Style          string   // embedded style name, CSS file path or inline CSS; empty uses the default style
	HighlightStyle string   // chroma style name; empty uses DefaultHighlightStyle
	CSS            string   // extra CSS appended after the style
	SourceDir      string   // directory of the markdown file, used to resolve relative images
	TOC            *TOC     // nil means no TOC
	Markdown       *Options // render options; nil means DefaultOptions
}

// Validate checks that export options are valid.
// Returns nil if e is nil (nil means use defaults).
func (e *ExportOptions) Validate() error {
	if e == nil {
		return nil
	}
	if err := e.TOC.Validate(); err != nil {
		return err
	}
	return e.Markdown.Validate()
}

func toHeadings(in []pipeline.Heading) []Heading {
	out := make([]Heading, len(in))
	for i, h := range in {
		out[i] = Heading(h)
	}
	return out
}

func fromHeadings(in []Heading) []pipeline.Heading {
	out := make([]pipeline.Heading, len(in))
	for i, h := range in {
		out[i] = pipeline.Heading(h)
	}
	return out
}

func toMetadata(m pipeline.Metadata) Metadata {
	return Metadata{
		Headings:    toHeadings(m.Headings),
		WordCount:   m.WordCount,
		ReadingTime: m.ReadingTime,
		HasContent:  m.HasContent,
	}
}

// DefaultStyle is the embedded page style used by exports.
const DefaultStyle = assets.DefaultStyleName

// StyleNames lists the embedded export styles.
func StyleNames() []string {
	return assets.StyleNames()
}

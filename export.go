package mdpreview

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/alnah/go-mdpreview/internal/fileutil"
	"github.com/alnah/go-mdpreview/internal/logfields"
	"github.com/alnah/go-mdpreview/internal/pipeline"
)

// Export formats, used as metric labels.
const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// PDFConverter turns a standalone HTML document into PDF bytes.
type PDFConverter interface {
	ToPDF(ctx context.Context, html string) ([]byte, error)
}

// Compile-time interface check
var _ PDFConverter = (*PDFExporter)(nil)

// frontMatter holds the document fields an export reads from front matter.
type frontMatter struct {
	Title string `yaml:"title" toml:"title" json:"title"`
	Lang  string `yaml:"lang" toml:"lang" json:"lang"`
}

// splitFrontMatter separates a leading YAML, TOML or JSON front matter block
// from the markdown body. Markdown without front matter is returned as is.
func splitFrontMatter(markdown string) (frontMatter, string, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(strings.NewReader(markdown), &fm)
	if err != nil {
		return frontMatter{}, "", fmt.Errorf("%w: %v", ErrFrontMatter, err)
	}
	return fm, string(body), nil
}

// ExportHTML builds a standalone HTML5 document from markdown: the rendered
// preview, an optional table of contents and the embedded stylesheets.
// Front matter, if present, is stripped and supplies the title and language
// unless opts sets them. Unlike ParseMarkdown, rendering errors are returned.
func (r *Renderer) ExportHTML(markdown string, opts *ExportOptions) (doc string, err error) {
	start := time.Now()
	defer func() {
		r.recorder.ObserveExport(FormatHTML, time.Since(start), err == nil)
	}()
	return r.exportHTML(markdown, opts)
}

// ExportPDF builds the HTML export of markdown and converts it with conv.
func (r *Renderer) ExportPDF(ctx context.Context, conv PDFConverter, markdown string, opts *ExportOptions) (pdf []byte, err error) {
	start := time.Now()
	defer func() {
		r.recorder.ObserveExport(FormatPDF, time.Since(start), err == nil)
	}()

	doc, err := r.exportHTML(markdown, opts)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return conv.ToPDF(ctx, doc)
}

func (r *Renderer) exportHTML(markdown string, opts *ExportOptions) (string, error) {
	if opts == nil {
		opts = &ExportOptions{}
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}

	fm, body, err := splitFrontMatter(markdown)
	if err != nil {
		return "", err
	}

	res := r.convert(body, opts.Markdown)
	if res.Err != nil {
		return "", fmt.Errorf("rendering markdown: %w", res.Err)
	}

	css, err := r.exportCSS(opts)
	if err != nil {
		return "", err
	}

	// Headings are read back from the rendered body so TOC links match the
	// ids the render rules assigned.
	headings := pipeline.HeadingsFromHTML(res.HTML)

	var toc string
	if opts.TOC != nil {
		toc = pipeline.Outline(headings, opts.TOC.Title, opts.TOC.depth())
	}

	doc := pipeline.BuildDocument(pipeline.Document{
		Title: firstNonEmpty(opts.Title, fm.Title, firstTitle(headings)),
		Lang:  firstNonEmpty(opts.Lang, fm.Lang),
		TOC:   toc,
		Body:  res.HTML,
		CSS:   css,
	})

	doc, err = pipeline.ResolveLocalImages(doc, opts.SourceDir)
	if err != nil {
		return "", fmt.Errorf("resolving local images: %w", err)
	}

	r.logger.Debug("document exported", logfields.Bytes(len(doc)))
	return doc, nil
}

// exportCSS concatenates the page style, the highlight style and the extra
// CSS of opts.
func (r *Renderer) exportCSS(opts *ExportOptions) (string, error) {
	style, err := r.resolveStyle(opts.Style)
	if err != nil {
		return "", err
	}

	highlightStyle := opts.HighlightStyle
	if highlightStyle == "" {
		highlightStyle = DefaultHighlightStyle
	}
	highlightCSS, err := HighlightCSS(highlightStyle)
	if err != nil {
		return "", err
	}

	parts := []string{style, highlightCSS}
	if opts.CSS != "" {
		parts = append(parts, opts.CSS)
	}
	return strings.Join(parts, "\n"), nil
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS
// content. An empty input loads the default style.
func (r *Renderer) resolveStyle(input string) (string, error) {
	if input == "" {
		input = DefaultStyle
	}

	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("loading style file %q: %w", input, err)
		}
		return string(content), nil
	}

	if fileutil.IsCSS(input) {
		return input, nil
	}

	css, err := r.styles.LoadStyle(input)
	if err != nil {
		return "", fmt.Errorf("loading style %q: %w", input, err)
	}
	return css, nil
}

// firstTitle returns the text of the first level-one heading.
func firstTitle(headings []pipeline.Heading) string {
	for _, h := range headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

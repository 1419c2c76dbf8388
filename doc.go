// Package mdpreview renders markdown into sanitized, styled HTML for a live
// preview pane, and derives document metadata from the same text.
//
// # Quick Start
//
// The package-level functions use a shared default configuration:
//
//	html := mdpreview.ParseMarkdown("# Hello\n\nWorld", nil)
//	meta := mdpreview.ExtractMetadata(markdown, mdpreview.DefaultWordsPerMinute)
//
// A nil *Options means DefaultOptions: line breaks, GFM and sanitization on.
// Empty input renders as PlaceholderHTML and rendering failures as an inline
// error paragraph, so the preview functions never return an error.
//
// # Rendering Pipeline
//
//  1. Line-ending normalization
//  2. Markdown to HTML via goldmark, with preview render rules: slugged
//     heading ids, code blocks with a language header and chroma
//     highlighting, safe external links, wrapped tables
//  3. Allow-list sanitization via bluemonday
//
// Every call builds its own goldmark engine, so concurrent calls with
// different options are independent and identical inputs render identically.
//
// # Renderer
//
// NewRenderer configures logging, metrics, reading speed and a memo cache
// for Preview, which returns HTML and metadata in one payload:
//
//	r, err := mdpreview.NewRenderer(
//	    mdpreview.WithLogger(logger),
//	    mdpreview.WithWordsPerMinute(250),
//	    mdpreview.WithPrometheus(registry),
//	)
//	p := r.Preview(markdown, nil)
//
// WithSanitizer(nil) declares sanitization unavailable. Renders that request
// it then return error markup instead of unsanitized HTML.
//
// # Export
//
// Renderer.ExportHTML wraps the preview in a standalone HTML5 document with
// embedded styles and an optional table of contents. PDFExporter turns that
// document into PDF with headless Chrome:
//
//	pdf := mdpreview.NewPDFExporter()
//	defer pdf.Close()
//	data, err := r.ExportPDF(ctx, pdf, markdown, &mdpreview.ExportOptions{
//	    TOC: &mdpreview.TOC{Title: "Contents"},
//	})
//
// # Errors
//
// Export and configuration errors wrap the sentinels in errors.go; use
// errors.Is to check them.
package mdpreview

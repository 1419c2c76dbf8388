package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	stdhtml "html"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/alnah/go-mdpreview/internal/logfields"
)

// Sentinel errors surfaced in error markup.
var (
	ErrHTMLConversion       = errors.New("HTML conversion failed")
	ErrSanitizerUnavailable = errors.New("sanitizer unavailable")
)

// PlaceholderHTML is returned for empty or whitespace-only input.
const PlaceholderHTML = `<p class="preview-placeholder"><em>Start typing to see the preview...</em></p>`

// errorMarkupFormat wraps an escaped error message in a visible paragraph.
const errorMarkupFormat = `<p class="render-error">Error rendering markdown: %s</p>`

// ErrorHTML returns the inline error markup for err.
func ErrorHTML(err error) string {
	return fmt.Sprintf(errorMarkupFormat, stdhtml.EscapeString(err.Error()))
}

// RenderOptions configures a single conversion.
type RenderOptions struct {
	Breaks    bool          // single newlines become <br>
	GFM       bool          // tables, strikethrough, autolinks, task lists
	Sanitize  bool          // run the Sanitizer on the output
	Highlight HighlightFunc // nil uses the converter's Highlighter
	Origin    string        // page origin for external link detection, may be empty
}

// Result is the outcome of a conversion. Err is set when HTML holds error
// markup instead of the document.
type Result struct {
	HTML      string
	Sanitized bool
	Err       error
}

// MarkdownConverter turns markdown into preview HTML.
// Every call builds its own goldmark engine, so concurrent calls never share
// parser or renderer configuration.
type MarkdownConverter struct {
	highlighter *Highlighter
	sanitizer   Sanitizer // nil means sanitization is unavailable
	logger      *slog.Logger
}

// NewMarkdownConverter creates a converter. A nil highlighter uses a silent
// default; a nil sanitizer marks sanitization as unavailable.
func NewMarkdownConverter(highlighter *Highlighter, sanitizer Sanitizer, logger *slog.Logger) *MarkdownConverter {
	if highlighter == nil {
		highlighter = NewHighlighter()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MarkdownConverter{highlighter: highlighter, sanitizer: sanitizer, logger: logger}
}

// SanitizerAvailable reports whether the converter can sanitize output.
func (c *MarkdownConverter) SanitizerAvailable() bool {
	return c.sanitizer != nil
}

// Convert renders markdown according to opts. It never panics: conversion
// failures come back as error markup with Err set.
func (c *MarkdownConverter) Convert(markdown string, opts RenderOptions) (res Result) {
	if strings.TrimSpace(markdown) == "" {
		return Result{HTML: PlaceholderHTML, Sanitized: opts.Sanitize && c.sanitizer != nil}
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = errorResult(fmt.Errorf("%w: %v", ErrHTMLConversion, r))
		}
		if res.Err != nil {
			c.logger.Warn("markdown render failed", logfields.Error(res.Err), logfields.Since(start))
			return
		}
		c.logger.Debug("markdown rendered", logfields.Bytes(len(res.HTML)), logfields.Since(start))
	}()

	if opts.Sanitize && c.sanitizer == nil {
		return errorResult(ErrSanitizerUnavailable)
	}

	highlight := opts.Highlight
	if highlight == nil {
		highlight = c.highlighter.Highlight
	}

	raw, err := ToHTML(normalizeMarkdown(markdown), opts, highlight)
	if err != nil {
		return errorResult(err)
	}
	if !opts.Sanitize {
		return Result{HTML: raw}
	}
	return Result{HTML: c.sanitizer.Sanitize(raw), Sanitized: true}
}

func errorResult(err error) Result {
	return Result{HTML: ErrorHTML(err), Err: err}
}

// ToHTML converts markdown to an unsanitized HTML fragment with the preview
// render rules. Raw HTML in the source is passed through.
func ToHTML(markdown string, opts RenderOptions, highlight HighlightFunc) (string, error) {
	var buf bytes.Buffer
	md := newEngine(opts, highlight)
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return buf.String(), nil
}

// newEngine builds a goldmark instance for one conversion.
func newEngine(opts RenderOptions, highlight HighlightFunc) goldmark.Markdown {
	rules := newPreviewRenderer(highlight, parseOrigin(opts.Origin))

	rendererOpts := []renderer.Option{
		html.WithUnsafe(), // sanitized afterwards
		renderer.WithNodeRenderers(util.Prioritized(rules, renderRulesPriority)),
	}
	if opts.Breaks {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}

	var extensions []goldmark.Extender
	if opts.GFM {
		extensions = append(extensions, extension.GFM)
	}

	return goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithRendererOptions(rendererOpts...),
	)
}

// parseOrigin returns the scheme and host of origin, or nil when origin is
// empty or not an absolute http(s) URL.
func parseOrigin(origin string) *url.URL {
	if origin == "" {
		return nil
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}
}

// ValidOrigin reports whether origin is empty or an absolute http(s) origin.
func ValidOrigin(origin string) bool {
	return origin == "" || parseOrigin(origin) != nil
}

package pipeline

import (
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-mdpreview/internal/logfields"
)

// ErrUnknownStyle indicates the requested chroma style is not registered.
var ErrUnknownStyle = errors.New("unknown highlight style")

// HighlightFunc turns source code in the given language into an HTML fragment.
// The returned fragment is inserted inside <code> verbatim.
type HighlightFunc func(code, lang string) string

// languageAliases maps short language tags to the names chroma registers.
var languageAliases = map[string]string{
	"js":    "javascript",
	"ts":    "typescript",
	"py":    "python",
	"sh":    "bash",
	"shell": "bash",
	"yml":   "yaml",
	"md":    "markdown",
	"cs":    "csharp",
}

// NormalizeLanguage lowercases a fence language tag and resolves known aliases.
// Unknown tags pass through.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if full, ok := languageAliases[lang]; ok {
		return full
	}
	return lang
}

// Highlighter renders code with chroma using CSS classes.
// Safe for concurrent use.
type Highlighter struct {
	logger     *slog.Logger
	onFallback func(lang string)
	formatter  *chromahtml.Formatter

	mu     sync.RWMutex
	lexers map[string]chroma.Lexer // nil entry caches a miss
}

// HighlighterOption configures a Highlighter.
type HighlighterOption func(*Highlighter)

// WithHighlightLogger sets the logger used for fallback diagnostics.
func WithHighlightLogger(logger *slog.Logger) HighlighterOption {
	return func(h *Highlighter) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithFallbackHook registers a callback invoked whenever highlighting degrades
// to escaped plain text.
func WithFallbackHook(fn func(lang string)) HighlighterOption {
	return func(h *Highlighter) {
		h.onFallback = fn
	}
}

// NewHighlighter creates a Highlighter. Without options it is silent.
func NewHighlighter(opts ...HighlighterOption) *Highlighter {
	h := &Highlighter{
		logger: slog.New(slog.DiscardHandler),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
		lexers: make(map[string]chroma.Lexer),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Highlight returns highlighted markup for code, or the HTML-escaped code when
// the language is unknown or highlighting fails. It never panics.
func (h *Highlighter) Highlight(code, lang string) (out string) {
	name := NormalizeLanguage(lang)

	defer func() {
		if r := recover(); r != nil {
			out = h.fallback(code, name, fmt.Errorf("highlighter panic: %v", r))
		}
	}()

	lexer := h.lexer(name)
	if lexer == nil {
		return h.fallback(code, name, nil)
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return h.fallback(code, name, err)
	}

	var buf strings.Builder
	if err := h.formatter.Format(&buf, styles.Fallback, iterator); err != nil {
		return h.fallback(code, name, err)
	}
	return buf.String()
}

// lexer returns the cached lexer for name, resolving it on first use.
func (h *Highlighter) lexer(name string) chroma.Lexer {
	if name == "" {
		return nil
	}

	h.mu.RLock()
	lexer, ok := h.lexers[name]
	h.mu.RUnlock()
	if ok {
		return lexer
	}

	lexer = lexers.Get(name)
	if lexer != nil {
		lexer = chroma.Coalesce(lexer)
	}

	h.mu.Lock()
	h.lexers[name] = lexer
	h.mu.Unlock()
	return lexer
}

func (h *Highlighter) fallback(code, lang string, err error) string {
	if err != nil {
		h.logger.Debug("highlight failed, using plain text",
			logfields.Lang(lang), logfields.Error(err))
	} else {
		h.logger.Debug("no lexer for language", logfields.Lang(lang))
	}
	if h.onFallback != nil {
		h.onFallback(lang)
	}
	return html.EscapeString(code)
}

// SafeHighlight wraps fn so that a panic degrades to escaped code.
func SafeHighlight(fn HighlightFunc) HighlightFunc {
	return func(code, lang string) (out string) {
		defer func() {
			if r := recover(); r != nil {
				out = html.EscapeString(code)
			}
		}()
		return fn(code, lang)
	}
}

// WriteHighlightCSS writes the chroma stylesheet for the class names emitted
// by Highlighter.
func WriteHighlightCSS(w io.Writer, style string) error {
	s, ok := styles.Registry[strings.ToLower(style)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	return formatter.WriteCSS(w, s)
}

// HighlightStyleNames returns the registered chroma style names, sorted.
func HighlightStyleNames() []string {
	return styles.Names()
}

package mdpreview

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alnah/go-mdpreview/internal/assets"
	"github.com/alnah/go-mdpreview/internal/logfields"
	"github.com/alnah/go-mdpreview/internal/metrics"
	"github.com/alnah/go-mdpreview/internal/pipeline"
)

// Renderer turns markdown into preview HTML and metadata.
// Create with NewRenderer. Safe for concurrent use.
type Renderer struct {
	cfg         rendererConfig
	logger      *slog.Logger
	recorder    metrics.Recorder
	highlighter *pipeline.Highlighter
	converter   *pipeline.MarkdownConverter
	sanitizer   Sanitizer // nil when unavailable
	styles      assets.StyleLoader
	cache       *previewCache
}

// rendererConfig holds the values set by options.
type rendererConfig struct {
	logger         *slog.Logger
	sanitizer      Sanitizer
	sanitizerSet   bool
	wordsPerMinute int
	cacheSize      int
	registerer     prometheus.Registerer
	metrics        bool
	assetPath      string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger for render diagnostics. Renderers are silent by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.cfg.logger = logger
	}
}

// WithSanitizer replaces the default allow-list sanitizer. A nil sanitizer
// marks sanitization as unavailable: renders that request it return error
// markup instead of unsanitized HTML.
func WithSanitizer(s Sanitizer) Option {
	return func(r *Renderer) {
		r.cfg.sanitizer = s
		r.cfg.sanitizerSet = true
	}
}

// WithWordsPerMinute sets the reading speed used for metadata.
// NewRenderer rejects n <= 0 with ErrInvalidWordsPerMinute.
func WithWordsPerMinute(n int) Option {
	return func(r *Renderer) {
		r.cfg.wordsPerMinute = n
	}
}

// WithCacheSize sets how many previews are memoized. Zero disables the cache.
// Panics if n < 0.
func WithCacheSize(n int) Option {
	if n < 0 {
		panic("mdpreview: WithCacheSize must not be negative")
	}
	return func(r *Renderer) {
		r.cfg.cacheSize = n
	}
}

// WithPrometheus records render, highlight, cache and export metrics on reg.
// A nil reg uses a private registry. Registering two renderers on the same
// registry panics.
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(r *Renderer) {
		r.cfg.registerer = reg
		r.cfg.metrics = true
	}
}

// WithAssetPath sets a directory whose styles/{name}.css files take
// precedence over the embedded export styles.
func WithAssetPath(path string) Option {
	return func(r *Renderer) {
		r.cfg.assetPath = path
	}
}

// NewRenderer creates a Renderer with default configuration.
// Returns ErrInvalidWordsPerMinute for a non-positive reading speed and
// ErrInvalidAssetPath if WithAssetPath names an unusable directory.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg: rendererConfig{
			wordsPerMinute: DefaultWordsPerMinute,
			cacheSize:      DefaultCacheSize,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cfg.wordsPerMinute <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWordsPerMinute, r.cfg.wordsPerMinute)
	}

	r.logger = r.cfg.logger
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}

	r.recorder = metrics.NoopRecorder{}
	if r.cfg.metrics {
		r.recorder = metrics.NewPrometheusRecorder(r.cfg.registerer)
	}

	resolver, err := assets.NewAssetResolver(r.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	r.styles = resolver
	if resolver.HasCustomLoader() {
		r.logger.Debug("custom asset path", logfields.Path(r.cfg.assetPath))
	}

	r.sanitizer = pipeline.NewSanitizer()
	if r.cfg.sanitizerSet {
		r.sanitizer = r.cfg.sanitizer
	}

	r.highlighter = pipeline.NewHighlighter(
		pipeline.WithHighlightLogger(r.logger),
		pipeline.WithFallbackHook(r.recorder.IncHighlightFallback),
	)
	r.converter = pipeline.NewMarkdownConverter(r.highlighter, r.sanitizer, r.logger)
	r.cache = newPreviewCache(r.cfg.cacheSize)
	return r, nil
}

// SanitizerAvailable reports whether the renderer can sanitize output.
func (r *Renderer) SanitizerAvailable() bool {
	return r.converter.SanitizerAvailable()
}

// ParseMarkdown renders markdown to HTML. It never fails: empty input yields
// PlaceholderHTML and errors yield an inline error paragraph.
func (r *Renderer) ParseMarkdown(markdown string, opts *Options) string {
	return r.Render(markdown, opts).HTML
}

// Render is ParseMarkdown reporting whether the sanitizer ran.
func (r *Renderer) Render(markdown string, opts *Options) RenderedDocument {
	res := r.convert(markdown, opts)
	return RenderedDocument{HTML: res.HTML, Sanitized: res.Sanitized}
}

// convert runs the pipeline and records the outcome.
func (r *Renderer) convert(markdown string, opts *Options) pipeline.Result {
	start := time.Now()

	var res pipeline.Result
	if err := opts.Validate(); err != nil {
		res = pipeline.Result{HTML: pipeline.ErrorHTML(err), Err: err}
	} else {
		res = r.converter.Convert(markdown, opts.renderOptions())
	}

	outcome := metrics.OutcomeOK
	switch {
	case res.Err != nil:
		outcome = metrics.OutcomeError
	case strings.TrimSpace(markdown) == "":
		outcome = metrics.OutcomePlaceholder
	}
	r.recorder.ObserveRender(time.Since(start), outcome)
	return res
}

// Preview renders markdown and extracts its metadata in one payload.
// Results are memoized per markdown and options; renders using a custom
// Highlight func bypass the cache.
func (r *Renderer) Preview(markdown string, opts *Options) Preview {
	ro := opts.renderOptions()
	cacheable := r.cache != nil && ro.Highlight == nil

	var key string
	if cacheable {
		key = previewKey(markdown, ro, r.cfg.wordsPerMinute)
		if p, ok := r.cache.get(key); ok {
			r.recorder.IncCacheLookup(true)
			r.logger.Debug("preview cache lookup", logfields.Cache("hit"))
			return p
		}
		r.recorder.IncCacheLookup(false)
		r.logger.Debug("preview cache lookup", logfields.Cache("miss"))
	}

	res := r.convert(markdown, opts)
	p := Preview{
		HTML:      res.HTML,
		Sanitized: res.Sanitized,
		Metadata:  r.Metadata(markdown),
	}
	if cacheable && res.Err == nil {
		r.cache.add(key, p)
	}
	return p
}

// Metadata extracts headings, word count and reading time from markdown
// using the renderer's reading speed.
func (r *Renderer) Metadata(markdown string) Metadata {
	return toMetadata(pipeline.ExtractMetadata(markdown, r.cfg.wordsPerMinute))
}

// Highlight returns highlighted markup for code, or the escaped code when
// lang is unknown.
func (r *Renderer) Highlight(code, lang string) string {
	return r.highlighter.Highlight(code, lang)
}

// Sanitize runs html through the renderer's sanitizer.
// Returns ErrSanitizerUnavailable if none is configured.
func (r *Renderer) Sanitize(html string) (string, error) {
	if r.sanitizer == nil {
		return "", ErrSanitizerUnavailable
	}
	return r.sanitizer.Sanitize(html), nil
}

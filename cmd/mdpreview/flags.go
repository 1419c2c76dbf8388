package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdpreview/internal/config"
)

// Output formats.
const (
	formatHTML = "html"
	formatPDF  = "pdf"
	formatJSON = "json"
	formatYAML = "yaml"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// markdownFlags override the markdown and metadata config sections.
type markdownFlags struct {
	noBreaks       bool
	noGFM          bool
	noSanitize     bool
	origin         string
	wordsPerMinute int
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	common   commonFlags
	markdown markdownFlags
	output   string
	workers  int
	preview  bool // JSON payload with metadata instead of an HTML fragment
}

// metaFlags holds flags for the meta command.
type metaFlags struct {
	common         commonFlags
	format         string
	wordsPerMinute int
	outline        bool
	tocDepth       int
}

// documentFlags holds standalone document flags shared by export and watch.
type documentFlags struct {
	style          string
	highlightStyle string
	css            string
	title          string
	lang           string
	assetPath      string
	toc            bool
	tocTitle       string
	tocDepth       int
	noTOC          bool
}

// exportFlags holds flags for the export command.
type exportFlags struct {
	common   commonFlags
	markdown markdownFlags
	document documentFlags
	output   string
	format   string
	timeout  time.Duration
}

// watchFlags holds flags for the watch command.
type watchFlags struct {
	common      commonFlags
	markdown    markdownFlags
	document    documentFlags
	output      string
	debounce    time.Duration
	metricsAddr string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addMarkdownFlags adds render option flags to a FlagSet.
func addMarkdownFlags(fs *flag.FlagSet, f *markdownFlags) {
	fs.BoolVar(&f.noBreaks, "no-breaks", false, "keep single newlines as soft breaks")
	fs.BoolVar(&f.noGFM, "no-gfm", false, "disable tables, strikethrough, autolinks and task lists")
	fs.BoolVar(&f.noSanitize, "no-sanitize", false, "skip HTML sanitization (trusted input only)")
	fs.StringVar(&f.origin, "origin", "", "page origin used to mark external links")
	fs.IntVar(&f.wordsPerMinute, "wpm", 0, "reading speed in words per minute")
}

// addDocumentFlags adds standalone document flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.style, "style", "", "style name, CSS file path or inline CSS")
	fs.StringVar(&f.highlightStyle, "highlight-style", "", "chroma style for code blocks")
	fs.StringVar(&f.css, "css", "", "extra CSS file appended after the style")
	fs.StringVar(&f.title, "title", "", "document title (\"\" = front matter or first H1)")
	fs.StringVar(&f.lang, "lang", "", "document language")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.BoolVar(&f.toc, "toc", false, "insert a table of contents")
	fs.StringVar(&f.tocTitle, "toc-title", "", "table of contents heading")
	fs.IntVar(&f.tocDepth, "toc-depth", 0, "max heading depth for TOC (1-6)")
	fs.BoolVar(&f.noTOC, "no-toc", false, "disable the table of contents")
}

// newFlagSet returns a FlagSet that reports errors instead of exiting.
func newFlagSet(name string, usage func(io.Writer), stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parseFlagSet parses args and wraps failures in ErrUsage. flag.ErrHelp is
// returned unwrapped so callers can print help and exit successfully.
func parseFlagSet(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// The build*FlagSet functions register every flag of a command. Parsing and
// shell completion share them.

func buildRenderFlagSet(f *renderFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("render", printRenderUsage, stderr)
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.preview, "preview", false, "write the JSON preview payload")
	addCommonFlags(fs, &f.common)
	addMarkdownFlags(fs, &f.markdown)
	return fs
}

func buildMetaFlagSet(f *metaFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("meta", printMetaUsage, stderr)
	fs.StringVarP(&f.format, "format", "f", formatJSON, "output format: json, yaml")
	fs.IntVar(&f.wordsPerMinute, "wpm", 0, "reading speed in words per minute")
	fs.BoolVar(&f.outline, "outline", false, "include the table of contents HTML")
	fs.IntVar(&f.tocDepth, "toc-depth", 0, "max heading depth for the outline (1-6)")
	addCommonFlags(fs, &f.common)
	return fs
}

func buildExportFlagSet(f *exportFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("export", printExportUsage, stderr)
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: input name with format extension)")
	fs.StringVarP(&f.format, "format", "f", formatHTML, "output format: html, pdf")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "PDF export timeout (e.g., 30s, 2m)")
	addCommonFlags(fs, &f.common)
	addMarkdownFlags(fs, &f.markdown)
	addDocumentFlags(fs, &f.document)
	return fs
}

func buildWatchFlagSet(f *watchFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("watch", printWatchUsage, stderr)
	fs.StringVarP(&f.output, "output", "o", "", "output HTML file (default: input name with .html)")
	fs.DurationVar(&f.debounce, "debounce", 0, "delay before re-rendering after a change")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g., :9090)")
	addCommonFlags(fs, &f.common)
	addMarkdownFlags(fs, &f.markdown)
	addDocumentFlags(fs, &f.document)
	return fs
}

func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := buildRenderFlagSet(f, stderr)
	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func parseMetaFlags(args []string, stderr io.Writer) (*metaFlags, []string, error) {
	f := &metaFlags{}
	fs := buildMetaFlagSet(f, stderr)
	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	if f.format != formatJSON && f.format != formatYAML {
		return nil, nil, fmt.Errorf("%w: %q (want json or yaml)", ErrInvalidFormat, f.format)
	}
	return f, fs.Args(), nil
}

func parseExportFlags(args []string, stderr io.Writer) (*exportFlags, []string, error) {
	f := &exportFlags{}
	fs := buildExportFlagSet(f, stderr)
	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	if f.format != formatHTML && f.format != formatPDF {
		return nil, nil, fmt.Errorf("%w: %q (want html or pdf)", ErrInvalidFormat, f.format)
	}
	if f.timeout < 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidTimeout, f.timeout)
	}
	return f, fs.Args(), nil
}

func parseWatchFlags(args []string, stderr io.Writer) (*watchFlags, []string, error) {
	f := &watchFlags{}
	fs := buildWatchFlagSet(f, stderr)
	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	if f.debounce < 0 {
		return nil, nil, fmt.Errorf("%w: negative debounce %s", ErrUsage, f.debounce)
	}
	return f, fs.Args(), nil
}

// mergeMarkdownFlags applies CLI overrides to the markdown and metadata
// sections. Unset flags keep the cfg values.
func mergeMarkdownFlags(f *markdownFlags, cfg *config.Config) {
	if f.noBreaks {
		cfg.Markdown.Breaks = false
	}
	if f.noGFM {
		cfg.Markdown.GFM = false
	}
	if f.noSanitize {
		cfg.Markdown.Sanitize = false
	}
	if f.origin != "" {
		cfg.Markdown.Origin = f.origin
	}
	if f.wordsPerMinute != 0 {
		cfg.Metadata.WordsPerMinute = f.wordsPerMinute
	}
}

// mergeDocumentFlags applies CLI overrides to the export and assets sections.
func mergeDocumentFlags(f *documentFlags, cfg *config.Config) {
	if f.style != "" {
		cfg.Export.Style = f.style
	}
	if f.highlightStyle != "" {
		cfg.Export.HighlightStyle = f.highlightStyle
	}
	if f.title != "" {
		cfg.Export.Title = f.title
	}
	if f.lang != "" {
		cfg.Export.Lang = f.lang
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
	if f.toc {
		cfg.Export.TOC.Enabled = true
	}
	if f.tocTitle != "" {
		cfg.Export.TOC.Title = f.tocTitle
	}
	if f.tocDepth != 0 {
		cfg.Export.TOC.MaxDepth = f.tocDepth
	}
	if f.noTOC {
		cfg.Export.TOC.Enabled = false
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	mdpreview "github.com/alnah/go-mdpreview"
	"github.com/alnah/go-mdpreview/internal/config"
	"github.com/alnah/go-mdpreview/internal/fileutil"
	"github.com/alnah/go-mdpreview/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// stdinArg selects standard input as the markdown source.
const stdinArg = "-"

// newLogger returns a text logger on w. Quiet wins over verbose.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case f.quiet:
		level = slog.LevelError
	case f.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig resolves the config from the flag, then MDPREVIEW_CONFIG, then
// defaults, and applies environment overrides.
func loadConfig(flagValue string, env *envConfig) (*config.Config, error) {
	name := flagValue
	if name == "" {
		name = env.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		cfg, err = config.LoadConfig(name)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(env, cfg)
	return cfg, nil
}

// newRenderer builds a Renderer from cfg. reg may be nil.
func newRenderer(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*mdpreview.Renderer, error) {
	wpm := cfg.Metadata.WordsPerMinute
	if wpm <= 0 {
		wpm = mdpreview.DefaultWordsPerMinute
	}

	opts := []mdpreview.Option{
		mdpreview.WithLogger(logger),
		mdpreview.WithWordsPerMinute(wpm),
		mdpreview.WithCacheSize(max(cfg.Cache.Size, 0)),
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, mdpreview.WithAssetPath(cfg.Assets.BasePath))
	}
	if reg != nil {
		opts = append(opts, mdpreview.WithPrometheus(reg))
	}
	return mdpreview.NewRenderer(opts...)
}

// markdownOptions converts the markdown config section to render options.
func markdownOptions(cfg *config.Config) *mdpreview.Options {
	return &mdpreview.Options{
		Breaks:   cfg.Markdown.Breaks,
		GFM:      cfg.Markdown.GFM,
		Sanitize: cfg.Markdown.Sanitize,
		Origin:   cfg.Markdown.Origin,
	}
}

// exportOptions converts the export config section for a markdown file in
// sourceDir. extraCSS is appended after the style.
func exportOptions(cfg *config.Config, sourceDir, extraCSS string) *mdpreview.ExportOptions {
	opts := &mdpreview.ExportOptions{
		Title:          cfg.Export.Title,
		Lang:           cfg.Export.Lang,
		Style:          cfg.Export.Style,
		HighlightStyle: cfg.Export.HighlightStyle,
		CSS:            extraCSS,
		SourceDir:      sourceDir,
		Markdown:       markdownOptions(cfg),
	}
	if cfg.Export.TOC.Enabled {
		opts.TOC = &mdpreview.TOC{
			Title:    cfg.Export.TOC.Title,
			MaxDepth: cfg.Export.TOC.MaxDepth,
		}
	}
	return opts
}

// readCSSFile returns the content of path, or "" when path is empty.
func readCSSFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided CSS path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadCSS, err)
	}
	return string(data), nil
}

// readMarkdown reads path, or stdin when path is "-".
func readMarkdown(path string, stdin io.Reader) (string, error) {
	if path == stdinArg {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("%w: stdin: %v", ErrReadMarkdown, err)
		}
		return string(data), nil
	}

	if err := validateMarkdownExtension(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided input path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}
	return string(data), nil
}

// writeOutput writes data to path, creating parent directories, or to
// stdout when path is empty.
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("%w: stdout: %v", ErrWriteOutput, err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err := os.WriteFile(path, data, filePermissions); err != nil { // #nosec G306 -- output is meant to be shared
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	if !fileutil.IsMarkdown(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

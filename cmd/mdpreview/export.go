package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	mdpreview "github.com/alnah/go-mdpreview"
	"github.com/alnah/go-mdpreview/internal/config"
	"github.com/alnah/go-mdpreview/internal/fileutil"
	"github.com/alnah/go-mdpreview/internal/logfields"
)

// pdfExporter is the part of mdpreview.PDFExporter the CLI needs.
type pdfExporter interface {
	mdpreview.PDFConverter
	Close() error
}

// newPDFExporter is replaced in tests to avoid launching a browser.
var newPDFExporter = func(cfg exportRuntime) pdfExporter {
	return mdpreview.NewPDFExporter(
		mdpreview.WithPDFTimeout(cfg.timeout),
		mdpreview.WithPDFLogger(cfg.logger),
	)
}

// runExport writes one markdown source as a standalone HTML or PDF document.
func runExport(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseExportFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	switch {
	case len(positional) == 0:
		return fmt.Errorf("%w: export needs a markdown file or -", ErrNoInput)
	case len(positional) > 1:
		return fmt.Errorf("%w: export takes one input, got %d", ErrUsage, len(positional))
	}
	input := positional[0]
	if input == stdinArg && flags.output == "" && flags.format == formatPDF {
		return fmt.Errorf("%w: --output is required for PDF from stdin", ErrUsage)
	}

	envCfg := loadEnvConfig()
	logger := newLogger(env.Stderr, flags.common)
	warnUnknownEnvVars(logger)

	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	mergeMarkdownFlags(&flags.markdown, cfg)
	mergeDocumentFlags(&flags.document, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	markdown, err := readMarkdown(input, env.Stdin)
	if err != nil {
		return err
	}
	extraCSS, err := readCSSFile(flags.document.css)
	if err != nil {
		return err
	}

	r, err := newRenderer(cfg, logger, nil)
	if err != nil {
		return err
	}

	rt := exportRuntime{
		renderer: r,
		cfg:      cfg,
		extraCSS: extraCSS,
		timeout:  resolveTimeout(flags.timeout, envCfg.Timeout),
		logger:   logger,
	}

	output := flags.output
	if output == "" && input != stdinArg {
		output = fileutil.ReplaceExt(input, "."+flags.format)
	}

	var doc []byte
	switch flags.format {
	case formatPDF:
		doc, err = rt.exportPDF(ctx, markdown, sourceDir(input))
	default:
		doc, err = rt.exportHTML(markdown, sourceDir(input))
	}
	if err != nil {
		return err
	}

	if err := writeOutput(output, doc, env.Stdout); err != nil {
		return err
	}
	if output != "" && !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "%s -> %s\n", input, output)
	}
	return nil
}

// exportRuntime bundles what an export needs once flags and config are
// resolved. watch reuses it for every rebuild.
type exportRuntime struct {
	renderer *mdpreview.Renderer
	cfg      *config.Config
	extraCSS string
	timeout  time.Duration
	logger   *slog.Logger
}

func (rt exportRuntime) exportHTML(markdown, dir string) ([]byte, error) {
	doc, err := rt.renderer.ExportHTML(markdown, exportOptions(rt.cfg, dir, rt.extraCSS))
	if err != nil {
		return nil, fmt.Errorf("exporting HTML: %w", err)
	}
	return []byte(doc), nil
}

func (rt exportRuntime) exportPDF(ctx context.Context, markdown, dir string) ([]byte, error) {
	conv := newPDFExporter(rt)
	defer func() {
		if err := conv.Close(); err != nil {
			rt.logger.Warn("closing browser", logfields.Error(err))
		}
	}()

	pdf, err := rt.renderer.ExportPDF(ctx, conv, markdown, exportOptions(rt.cfg, dir, rt.extraCSS))
	if err != nil {
		return nil, fmt.Errorf("exporting PDF: %w", err)
	}
	return pdf, nil
}

// resolveTimeout picks the PDF timeout.
// Priority: flag > MDPREVIEW_TIMEOUT > mdpreview.DefaultPDFTimeout.
func resolveTimeout(flagValue, envValue time.Duration) time.Duration {
	switch {
	case flagValue > 0:
		return flagValue
	case envValue > 0:
		return envValue
	default:
		return mdpreview.DefaultPDFTimeout
	}
}

// sourceDir returns the directory relative images resolve against.
func sourceDir(input string) string {
	if input == stdinArg {
		return "."
	}
	return filepath.Dir(input)
}

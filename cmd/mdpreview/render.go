package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	mdpreview "github.com/alnah/go-mdpreview"
)

// runRender renders markdown to HTML fragments. Stdin ("-" or no argument)
// and a single file without -o write to stdout. Otherwise every file is
// rendered in parallel next to its source, or under -o (a file path when it
// carries the output extension).
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	if flags.workers == 0 {
		flags.workers = envCfg.Workers
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common)
	warnUnknownEnvVars(logger)

	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	mergeMarkdownFlags(&flags.markdown, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	r, err := newRenderer(cfg, logger, nil)
	if err != nil {
		return err
	}
	opts := markdownOptions(cfg)
	if err := opts.Validate(); err != nil {
		return err
	}

	render := func(markdown string) ([]byte, error) {
		return renderOutput(r, markdown, opts, flags.preview)
	}

	if len(positional) == 0 {
		positional = []string{stdinArg}
	}
	if len(positional) == 1 && isDirectRender(positional[0], flags.output) {
		markdown, err := readMarkdown(positional[0], env.Stdin)
		if err != nil {
			return err
		}
		out, err := render(markdown)
		if err != nil {
			return err
		}
		return writeOutput(flags.output, out, env.Stdout)
	}

	ext := ".html"
	if flags.preview {
		ext = ".json"
	}

	var jobs []fileJob
	for _, p := range positional {
		if p == stdinArg {
			return fmt.Errorf("%w: stdin cannot be combined with other inputs", ErrUsage)
		}
		found, err := discoverFiles(p, flags.output, ext)
		if err != nil {
			return fmt.Errorf("discovering files: %w", err)
		}
		jobs = append(jobs, found...)
	}
	if len(jobs) == 0 {
		return fmt.Errorf("%w in %v", ErrNoMarkdownFiles, positional)
	}

	workers := resolvePoolSize(flags.workers)
	logger.Debug("rendering files", "files", len(jobs), "workers", workers)

	results := runJobs(ctx, workers, jobs, logger, func(_ context.Context, job fileJob) error {
		markdown, err := readMarkdown(job.InputPath, nil)
		if err != nil {
			return err
		}
		out, err := render(markdown)
		if err != nil {
			return err
		}
		return writeOutput(job.OutputPath, out, nil)
	})

	return reportResults(env.Stdout, results, flags.common.quiet)
}

// isDirectRender reports whether arg is rendered in-process without the
// worker pool: stdin, or a regular file when no output is set.
func isDirectRender(arg, output string) bool {
	if arg == stdinArg {
		return true
	}
	if output != "" {
		return false
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}

// renderOutput returns the HTML fragment, or the indented JSON preview
// payload when preview is set.
func renderOutput(r *mdpreview.Renderer, markdown string, opts *mdpreview.Options, preview bool) ([]byte, error) {
	if !preview {
		return []byte(r.ParseMarkdown(markdown, opts)), nil
	}
	data, err := json.MarshalIndent(r.Preview(markdown, opts), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding preview: %w", err)
	}
	return append(data, '\n'), nil
}

// reportResults prints one line per job and joins the failures.
func reportResults(w io.Writer, results []jobResult, quiet bool) error {
	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.InputPath, res.Err))
			continue
		}
		if !quiet {
			fmt.Fprintf(w, "%s -> %s (%s)\n", res.InputPath, res.OutputPath, res.Duration.Round(time.Millisecond))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d files failed: %w", len(errs), len(results), errors.Join(errs...))
	}
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"

	mdpreview "github.com/alnah/go-mdpreview"
	"github.com/alnah/go-mdpreview/internal/yamlutil"
)

// metaReport is the output of the meta command.
type metaReport struct {
	mdpreview.Metadata `yaml:",inline"`

	Source  string `json:"source" yaml:"source"`
	Outline string `json:"outline,omitempty" yaml:"outline,omitempty"`
}

// runMeta prints headings, word count and reading time of one markdown
// source as JSON or YAML.
func runMeta(_ context.Context, args []string, env *Environment) error {
	flags, positional, err := parseMetaFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: meta takes one input, got %d", ErrUsage, len(positional))
	}
	if flags.tocDepth != 0 && (flags.tocDepth < mdpreview.MinTOCDepth || flags.tocDepth > mdpreview.MaxTOCDepth) {
		return fmt.Errorf("%w: %d (must be %d-%d)", mdpreview.ErrInvalidTOCDepth, flags.tocDepth, mdpreview.MinTOCDepth, mdpreview.MaxTOCDepth)
	}

	envCfg := loadEnvConfig()
	logger := newLogger(env.Stderr, flags.common)
	warnUnknownEnvVars(logger)

	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	if flags.wordsPerMinute != 0 {
		cfg.Metadata.WordsPerMinute = flags.wordsPerMinute
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	source := stdinArg
	if len(positional) == 1 {
		source = positional[0]
	}
	markdown, err := readMarkdown(source, env.Stdin)
	if err != nil {
		return err
	}

	r, err := newRenderer(cfg, logger, nil)
	if err != nil {
		return err
	}

	report := metaReport{Source: source, Metadata: r.Metadata(markdown)}
	if flags.outline {
		depth := flags.tocDepth
		if depth == 0 {
			depth = cfg.Export.TOC.MaxDepth
		}
		report.Outline = mdpreview.Outline(report.Headings, cfg.Export.TOC.Title, depth)
	}

	out, err := encodeReport(report, flags.format)
	if err != nil {
		return err
	}
	return writeOutput("", out, env.Stdout)
}

// encodeReport marshals v as indented JSON or block YAML.
func encodeReport(v any, format string) ([]byte, error) {
	switch format {
	case formatYAML:
		return yamlutil.Marshal(v)
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding report: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
}

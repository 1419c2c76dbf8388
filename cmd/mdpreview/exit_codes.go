package main

import (
	"errors"
	"os"

	mdpreview "github.com/alnah/go-mdpreview"
	"github.com/alnah/go-mdpreview/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrUnknownCommand     = errors.New("unknown command")
	ErrNoInput            = errors.New("no input specified")
	ErrReadMarkdown       = errors.New("failed to read markdown")
	ErrReadCSS            = errors.New("failed to read CSS file")
	ErrWriteOutput        = errors.New("failed to write output")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidFormat      = errors.New("invalid output format")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrNoMarkdownFiles    = errors.New("no markdown files found")
)

// Exit codes for the mdpreview CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or options
	ExitIO      = 3 // File not found, permission denied, write failure
	ExitBrowser = 4 // Browser/Chrome errors during PDF export
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, mdpreview.ErrBrowserConnect) ||
		errors.Is(err, mdpreview.ErrPageCreate) ||
		errors.Is(err, mdpreview.ErrPageLoad) ||
		errors.Is(err, mdpreview.ErrPDFGeneration) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoMarkdownFiles) {
		return ExitIO
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, mdpreview.ErrInvalidOrigin) ||
		errors.Is(err, mdpreview.ErrInvalidTOCDepth) ||
		errors.Is(err, mdpreview.ErrFrontMatter) ||
		errors.Is(err, mdpreview.ErrStyleNotFound) ||
		errors.Is(err, mdpreview.ErrUnknownStyle) ||
		errors.Is(err, mdpreview.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}

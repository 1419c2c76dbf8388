package mdpreview

import (
	"errors"

	"github.com/alnah/go-mdpreview/internal/assets"
	"github.com/alnah/go-mdpreview/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	// Rendering errors. These surface as error markup from the preview
	// functions and as wrapped errors from exports.
	ErrHTMLConversion       = pipeline.ErrHTMLConversion
	ErrSanitizerUnavailable = pipeline.ErrSanitizerUnavailable

	// Options validation errors.
	ErrInvalidOrigin         = errors.New("invalid origin")
	ErrInvalidTOCDepth       = errors.New("invalid TOC depth")
	ErrInvalidWordsPerMinute = errors.New("invalid words per minute")
	ErrFrontMatter           = errors.New("invalid front matter")

	// Export errors.
	ErrUnknownStyle     = pipeline.ErrUnknownStyle
	ErrStyleNotFound    = assets.ErrStyleNotFound
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrPDFGeneration    = errors.New("PDF generation failed")
	ErrBrowserConnect   = errors.New("failed to connect to browser")
	ErrPageCreate       = errors.New("failed to create browser page")
	ErrPageLoad         = errors.New("failed to load page")
)

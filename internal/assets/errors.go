package assets

import "errors"

// Sentinel errors for asset operations.
var (
	ErrStyleNotFound = errors.New("style not found")

	// ErrInvalidAssetName indicates the name contains path separators,
	// dots or is empty.
	ErrInvalidAssetName = errors.New("invalid asset name")

	ErrInvalidBasePath = errors.New("invalid base path")
	ErrAssetRead       = errors.New("failed to read asset")
	ErrPathTraversal   = errors.New("path traversal detected")
)

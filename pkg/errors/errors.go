// Package errors defines the sentinel errors shared across the snapshotter
// and small helpers for wrapping errors with context.
package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")

	// Catalog errors. Metadata failures are fatal for a run: no file work
	// starts without a complete cruise and file listing.
	ErrMetadataFetch = fmt.Errorf("catalog metadata fetch failed")

	// Download and cache errors.
	ErrDownloadFailed    = fmt.Errorf("download failed")
	ErrIntegrity         = fmt.Errorf("content hash mismatch")
	ErrMissingCacheEntry = fmt.Errorf("cache entry missing")
	ErrInvalidPath       = fmt.Errorf("invalid path")

	// Cache maintenance errors.
	ErrCacheClean     = fmt.Errorf("failed to clean cache")
	ErrCacheInfo      = fmt.Errorf("failed to get cache info")
	ErrCacheDirectory = fmt.Errorf("cache directory cannot be empty")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrNotFound indicates a page does not exist (HTTP 404). Callers treat
	// it as a soft absence, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrCacheMiss indicates a cache miss
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheExpired indicates the cached entry has expired
	ErrCacheExpired = errors.New("cache entry expired")

	// ErrUnknownProduct indicates a product absent from the registry
	ErrUnknownProduct = errors.New("unknown product")

	// ErrNoLegacyDocs indicates a product without a legacy documentation site
	ErrNoLegacyDocs = errors.New("product has no legacy documentation")

	// ErrNoVersions indicates discovery found nothing in the requested range
	ErrNoVersions = errors.New("no versions found in range")

	// ErrTimeout indicates a timeout occurred
	ErrTimeout = errors.New("timeout")
)

// FetchError represents an error during fetching
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// RetryableError marks a transport-level failure worth retrying.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError wraps a transport error.
func NewRetryableError(err error) *RetryableError {
	return &RetryableError{Err: err}
}

// IsRetryable reports whether an error should be retried. Only connection
// and timeout failures qualify; HTTP status errors, 404 included, never do.
func IsRetryable(err error) bool {
	var retryable *RetryableError
	if errors.As(err, &retryable) {
		return true
	}
	return errors.Is(err, ErrTimeout)
}

// ExtractError represents a parse failure on a fetched page.
type ExtractError struct {
	Product string
	Version string
	URL     string
	Err     error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract failed for %s %s (%s): %v", e.Product, e.Version, e.URL, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// NewExtractError creates a new ExtractError
func NewExtractError(product, version, url string, err error) *ExtractError {
	return &ExtractError{Product: product, Version: version, URL: url, Err: err}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

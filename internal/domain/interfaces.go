package domain

import (
	"context"
	"time"

	"github.com/quantmind-br/relnotes-go/internal/semver"
)

// Source fetches release documentation for one product from one generation
// of documentation site. Methods returning a nil result with a nil error
// mean the page does not exist for that version.
type Source interface {
	// Name returns the source name for logging ("legacy", "modern").
	Name() string
	// DiscoverVersions lists every version the site documents.
	DiscoverVersions(ctx context.Context) ([]semver.Version, error)
	// FetchReleaseNotes fetches and extracts the notes for one version.
	FetchReleaseNotes(ctx context.Context, v semver.Version) (*ReleaseNote, error)
	// FetchBreakingChanges fetches the dedicated breaking-changes page.
	FetchBreakingChanges(ctx context.Context, v semver.Version) ([]ReleaseItem, error)
	// Close releases resources.
	Close() error
}

// AuxiliarySource is an optional capability: sources that also expose
// dedicated deprecations and known-issues pages. The compiler probes for
// it with a type assertion during enrichment.
type AuxiliarySource interface {
	FetchDeprecations(ctx context.Context, v semver.Version) ([]ReleaseItem, error)
	FetchKnownIssues(ctx context.Context, v semver.Version) ([]ReleaseItem, error)
}

// Cache defines the interface for page caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Has checks if a key exists in cache
	Has(ctx context.Context, key string) bool
	// Delete removes a key from cache
	Delete(ctx context.Context, key string) error
	// Close releases cache resources
	Close() error
}

// ProgressFunc is invoked after each per-version unit finishes, success or
// failure. Purely observational; it never affects control flow.
type ProgressFunc func(done, total int)

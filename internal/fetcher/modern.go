package fetcher

import (
	"context"
	"sync"

	"github.com/quantmind-br/relnotes-go/internal/domain"
	"github.com/quantmind-br/relnotes-go/internal/extract"
	"github.com/quantmind-br/relnotes-go/internal/registry"
	"github.com/quantmind-br/relnotes-go/internal/semver"
	"github.com/quantmind-br/relnotes-go/internal/utils"
)

var (
	_ domain.Source          = (*ModernClient)(nil)
	_ domain.AuxiliarySource = (*ModernClient)(nil)
)

// ModernClient fetches release documentation from the consolidated
// single-page site. A product has four logical pages (release notes,
// breaking changes, deprecations, known issues), each shared by every
// version, so bodies are memoized per client and fetched at most once no
// matter how many versions are compiled.
type ModernClient struct {
	product   registry.ProductConfig
	client    *Client
	extractor *extract.Modern
	log       *utils.Logger

	mu    sync.Mutex
	pages map[string]*logicalPage
}

// logicalPage memoizes one fetched page. Absent pages are remembered too,
// so repeated versions do not re-probe a 404.
type logicalPage struct {
	once     sync.Once
	html     string
	notFound bool
	err      error
}

// NewModernClient creates a modern doc-site client.
func NewModernClient(product registry.ProductConfig, client *Client, categoryMaxLen int, log *utils.Logger) *ModernClient {
	return &ModernClient{
		product:   product,
		client:    client,
		extractor: extract.NewModern(categoryMaxLen),
		log:       log.WithComponent("modern").WithProduct(product.Name),
		pages:     make(map[string]*logicalPage),
	}
}

// Name implements domain.Source.
func (c *ModernClient) Name() string { return "modern" }

// page fetches a logical page once. The bool reports whether the page
// exists.
func (c *ModernClient) page(ctx context.Context, url string) (string, bool, error) {
	c.mu.Lock()
	entry, ok := c.pages[url]
	if !ok {
		entry = &logicalPage{}
		c.pages[url] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		html, err := c.client.Get(ctx, url)
		switch {
		case IsNotFound(err):
			entry.notFound = true
			c.log.Debug().Str("url", url).Msg("page absent")
		case err != nil:
			entry.err = err
		default:
			entry.html = html
		}
	})

	if entry.err != nil {
		return "", false, entry.err
	}
	if entry.notFound {
		return "", false, nil
	}
	return entry.html, true, nil
}

// DiscoverVersions lists every version anchored on the consolidated page.
func (c *ModernClient) DiscoverVersions(ctx context.Context) ([]semver.Version, error) {
	html, ok, err := c.page(ctx, c.product.ModernReleaseNotesURL())
	if err != nil || !ok {
		return nil, err
	}

	versions, err := c.extractor.VersionList(html, c.product.Name)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Int("count", len(versions)).Msg("discovered modern versions")
	return versions, nil
}

// FetchReleaseNotes extracts one version's notes from the consolidated
// page. Returns (nil, nil) when the page or the version's section is
// absent.
func (c *ModernClient) FetchReleaseNotes(ctx context.Context, v semver.Version) (*domain.ReleaseNote, error) {
	url := c.product.ModernReleaseNotesURL()
	html, ok, err := c.page(ctx, url)
	if err != nil || !ok {
		return nil, err
	}

	note, err := c.extractor.ReleaseNotes(html, v, c.product.Name)
	if err != nil {
		return nil, domain.NewExtractError(c.product.Name, v.String(), url, err)
	}
	if note != nil {
		note.SourceURL = url
	}
	return note, nil
}

// FetchBreakingChanges extracts one version's entries from the dedicated
// breaking-changes page.
func (c *ModernClient) FetchBreakingChanges(ctx context.Context, v semver.Version) ([]domain.ReleaseItem, error) {
	url := c.product.ModernBreakingChangesURL()
	html, ok, err := c.page(ctx, url)
	if err != nil || !ok {
		return nil, err
	}

	items, err := c.extractor.BreakingChanges(html, v, c.product.Name)
	if err != nil {
		return nil, domain.NewExtractError(c.product.Name, v.String(), url, err)
	}
	return items, nil
}

// FetchDeprecations implements domain.AuxiliarySource.
func (c *ModernClient) FetchDeprecations(ctx context.Context, v semver.Version) ([]domain.ReleaseItem, error) {
	url := c.product.ModernDeprecationsURL()
	html, ok, err := c.page(ctx, url)
	if err != nil || !ok {
		return nil, err
	}

	items, err := c.extractor.Deprecations(html, v)
	if err != nil {
		return nil, domain.NewExtractError(c.product.Name, v.String(), url, err)
	}
	return items, nil
}

// FetchKnownIssues implements domain.AuxiliarySource.
func (c *ModernClient) FetchKnownIssues(ctx context.Context, v semver.Version) ([]domain.ReleaseItem, error) {
	url := c.product.ModernKnownIssuesURL()
	html, ok, err := c.page(ctx, url)
	if err != nil || !ok {
		return nil, err
	}

	items, err := c.extractor.KnownIssues(html, v)
	if err != nil {
		return nil, domain.NewExtractError(c.product.Name, v.String(), url, err)
	}
	return items, nil
}

// Close implements domain.Source.
func (c *ModernClient) Close() error { return nil }

package fetcher

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/quantmind-br/relnotes-go/internal/domain"
	"github.com/quantmind-br/relnotes-go/internal/extract"
	"github.com/quantmind-br/relnotes-go/internal/registry"
	"github.com/quantmind-br/relnotes-go/internal/semver"
	"github.com/quantmind-br/relnotes-go/internal/utils"
)

var (
	_ domain.Source = (*LegacyClient)(nil)
)

// LegacyClient fetches release documentation from the per-minor-version
// multi-page site used through 8.x. All pages for earlier 8.x versions are
// still served from the newest minor's doc tree, so the client first
// resolves that tree by probing forward from the last statically known
// minor.
type LegacyClient struct {
	product   registry.ProductConfig
	client    *Client
	extractor *extract.Legacy
	log       *utils.Logger

	minorOnce sync.Once
	minor     string
	minorErr  error
}

// NewLegacyClient creates a legacy doc-site client. Returns
// domain.ErrNoLegacyDocs for modern-only products.
func NewLegacyClient(product registry.ProductConfig, client *Client, log *utils.Logger) (*LegacyClient, error) {
	if !product.HasLegacyDocs {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoLegacyDocs, product.Name)
	}
	return &LegacyClient{
		product:   product,
		client:    client,
		extractor: extract.NewLegacy(),
		log:       log.WithComponent("legacy").WithProduct(product.Name),
	}, nil
}

// Name implements domain.Source.
func (c *LegacyClient) Name() string { return "legacy" }

// latestMinor resolves the newest existing minor-version doc tree: the
// last statically known minor, advanced by probing consecutive higher
// minors until one is absent. The result is resolved once per client.
func (c *LegacyClient) latestMinor(ctx context.Context) (string, error) {
	c.minorOnce.Do(func() {
		minor := registry.LatestKnownLegacyMinor()
		major, min, err := splitMinor(minor)
		if err != nil {
			c.minorErr = err
			return
		}

		for {
			next := fmt.Sprintf("%d.%d", major, min+1)
			_, err := c.client.Get(ctx, c.product.LegacyReleaseNotesIndexURL(next))
			if IsNotFound(err) {
				break
			}
			if err != nil {
				c.minorErr = err
				return
			}
			c.log.Debug().Str("minor", next).Msg("discovered newer legacy minor")
			minor = next
			min++
		}
		c.minor = minor
	})
	return c.minor, c.minorErr
}

// DiscoverVersions lists every version documented on the legacy site,
// restricted to the generations the site actually serves.
func (c *LegacyClient) DiscoverVersions(ctx context.Context) ([]semver.Version, error) {
	minor, err := c.latestMinor(ctx)
	if err != nil {
		return nil, err
	}

	html, err := c.client.Get(ctx, c.product.LegacyReleaseNotesIndexURL(minor))
	if IsNotFound(err) {
		c.log.Warn().Str("minor", minor).Msg("release notes index missing")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	all, err := c.extractor.VersionList(html)
	if err != nil {
		return nil, err
	}

	var versions []semver.Version
	for _, v := range all {
		if v.Less(registry.ModernDocsMinVersion) {
			versions = append(versions, v)
		}
	}
	c.log.Debug().Int("count", len(versions)).Msg("discovered legacy versions")
	return versions, nil
}

// FetchReleaseNotes fetches and extracts one version's notes. Returns
// (nil, nil) when the page does not exist.
func (c *LegacyClient) FetchReleaseNotes(ctx context.Context, v semver.Version) (*domain.ReleaseNote, error) {
	minor, err := c.latestMinor(ctx)
	if err != nil {
		return nil, err
	}

	url := c.product.LegacyReleaseNotesURL(minor, v)
	html, err := c.client.Get(ctx, url)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	note, err := c.extractor.ReleaseNotes(html, v, c.product.Name)
	if err != nil {
		return nil, domain.NewExtractError(c.product.Name, v.String(), url, err)
	}
	note.SourceURL = url
	return note, nil
}

// FetchBreakingChanges fetches the migration guide covering the version's
// minor. Returns (nil, nil) when the guide does not exist.
func (c *LegacyClient) FetchBreakingChanges(ctx context.Context, v semver.Version) ([]domain.ReleaseItem, error) {
	minor, err := c.latestMinor(ctx)
	if err != nil {
		return nil, err
	}

	url := c.product.LegacyBreakingChangesURL(minor, v.MajorMinor())
	html, err := c.client.Get(ctx, url)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := c.extractor.BreakingChanges(html, v)
	if err != nil {
		return nil, domain.NewExtractError(c.product.Name, v.String(), url, err)
	}
	return items, nil
}

// Close implements domain.Source.
func (c *LegacyClient) Close() error { return nil }

// splitMinor parses "8.19" into its components.
func splitMinor(minor string) (int, int, error) {
	majorStr, minorStr, ok := strings.Cut(minor, ".")
	if !ok {
		return 0, 0, fmt.Errorf("invalid minor version %q", minor)
	}
	major, err := strconv.Atoi(majorStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minor version %q", minor)
	}
	min, err := strconv.Atoi(minorStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minor version %q", minor)
	}
	return major, min, nil
}

// Package fetcher retrieves documentation pages over HTTP and exposes the
// per-generation doc-site clients the compiler fetches release notes
// through. Transport failures are retried with exponential backoff; HTTP
// 404 is a soft absence surfaced as domain.ErrNotFound.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/quantmind-br/relnotes-go/internal/domain"
	"github.com/quantmind-br/relnotes-go/internal/utils"
)

const defaultUserAgent = "relnotes/1.0 (+https://github.com/quantmind-br/relnotes-go)"

// ClientOptions configures the page client.
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
	// Cache stores fetched pages across runs. Nil disables caching.
	Cache    domain.Cache
	CacheTTL time.Duration
	Retrier  *Retrier
	Logger   *utils.Logger
}

// DefaultClientOptions returns default client options.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:   30 * time.Second,
		UserAgent: defaultUserAgent,
		CacheTTL:  24 * time.Hour,
	}
}

// Client fetches pages with retry and an optional persistent cache.
type Client struct {
	httpClient *http.Client
	retrier    *Retrier
	cache      domain.Cache
	cacheTTL   time.Duration
	userAgent  string
	log        *utils.Logger
}

// NewClient creates a page client.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Retrier == nil {
		opts.Retrier = NewRetrier(DefaultRetrierOptions())
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewDefaultLogger()
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		retrier:    opts.Retrier,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		userAgent:  opts.UserAgent,
		log:        opts.Logger.WithComponent("fetcher"),
	}
}

// Get fetches a page body, consulting the cache first. A 404 returns
// domain.ErrNotFound; other HTTP errors return a FetchError without
// retry. Transport errors are retried per the retrier's policy.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	if c.cache != nil {
		if body, err := c.cache.Get(ctx, url); err == nil {
			c.log.Debug().Str("url", url).Msg("cache hit")
			return string(body), nil
		}
	}

	body, err := RetryWithValue(ctx, c.retrier, func() (string, error) {
		return c.fetch(ctx, url)
	})
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, url, []byte(body), c.cacheTTL); err != nil {
			c.log.Warn().Err(err).Str("url", url).Msg("failed to cache page")
		}
	}
	return body, nil
}

// fetch performs a single HTTP request.
func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", domain.NewFetchError(url, 0, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return "", domain.NewFetchError(url, resp.StatusCode, domain.ErrNotFound)
	default:
		return "", domain.NewFetchError(url, resp.StatusCode,
			fmt.Errorf("unexpected status %s", resp.Status))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewRetryableError(fmt.Errorf("reading body of %s: %w", url, err))
	}

	c.log.Debug().Str("url", url).Int("bytes", len(data)).Msg("fetched page")
	return string(data), nil
}

// classifyTransportError maps request failures onto the retry taxonomy:
// timeouts and connection errors are retryable, context cancellation is
// not.
func classifyTransportError(url string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewRetryableError(fmt.Errorf("%s: %w", url, domain.ErrTimeout))
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return domain.NewRetryableError(fmt.Errorf("request to %s: %w", url, err))
}

// IsNotFound reports whether an error marks a missing page.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

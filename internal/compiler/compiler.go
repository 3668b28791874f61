// Package compiler orchestrates a compile request: discover the versions a
// product documents, filter them to the requested range, fetch and enrich
// each version's release note with bounded concurrency, and aggregate the
// survivors into a CompiledReleaseNotes sorted ascending by version.
//
// Only configuration errors (an unknown product) are fatal. Per-version
// failures are logged and that version is dropped; an empty result is a
// valid outcome.
package compiler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/quantmind-br/relnotes-go/internal/domain"
	"github.com/quantmind-br/relnotes-go/internal/fetcher"
	"github.com/quantmind-br/relnotes-go/internal/registry"
	"github.com/quantmind-br/relnotes-go/internal/semver"
	"github.com/quantmind-br/relnotes-go/internal/utils"
)

// SourceFactory builds the doc-site clients for one product. legacy is nil
// for modern-only products.
type SourceFactory func(product registry.ProductConfig) (legacy, modern domain.Source, err error)

// Options configures a Compiler.
type Options struct {
	Registry *registry.Registry
	// Client is the shared HTTP page client used by the default source
	// factory.
	Client *fetcher.Client
	// Mapper bounds per-version fetch-and-enrich concurrency.
	Mapper utils.Mapper
	// CategoryMaxLen tunes the modern extractor's category-label
	// heuristic. Zero means the default.
	CategoryMaxLen int
	Logger         *utils.Logger
	// Progress, when set, is called after each per-version unit finishes,
	// success or failure.
	Progress domain.ProgressFunc
	// Sources overrides the fetcher-backed source factory.
	Sources SourceFactory
}

// Request describes one compile run.
type Request struct {
	Product string
	// Start is the exclusive lower bound of the version range.
	Start semver.Version
	// End is the inclusive upper bound, nil for open-ended.
	End                *semver.Version
	IncludePrereleases bool
}

// Compiler compiles release notes for products. Doc-site clients are
// created lazily, one pair per product, and live until Close.
type Compiler struct {
	registry   *registry.Registry
	mapper     utils.Mapper
	log        *utils.Logger
	progress   domain.ProgressFunc
	newSources SourceFactory

	mu    sync.Mutex
	pairs map[string]*sourcePair
}

type sourcePair struct {
	legacy domain.Source // nil for modern-only products
	modern domain.Source
}

// route picks the source serving a version.
func (p *sourcePair) route(product registry.ProductConfig, v semver.Version) domain.Source {
	if p.legacy == nil || product.UsesModernDocs(v) {
		return p.modern
	}
	return p.legacy
}

// New creates a Compiler.
func New(opts Options) *Compiler {
	if opts.Registry == nil {
		opts.Registry = registry.Default()
	}
	if opts.Mapper == nil {
		opts.Mapper = utils.NewPoolMapper(4)
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewDefaultLogger()
	}
	if opts.Sources == nil {
		opts.Sources = fetcherSources(opts)
	}

	return &Compiler{
		registry:   opts.Registry,
		mapper:     opts.Mapper,
		log:        opts.Logger.WithComponent("compiler"),
		progress:   opts.Progress,
		newSources: opts.Sources,
		pairs:      make(map[string]*sourcePair),
	}
}

// fetcherSources is the production factory: HTTP-backed legacy and modern
// clients sharing one page client.
func fetcherSources(opts Options) SourceFactory {
	client := opts.Client
	if client == nil {
		client = fetcher.NewClient(fetcher.DefaultClientOptions())
	}
	return func(product registry.ProductConfig) (domain.Source, domain.Source, error) {
		var legacy domain.Source
		if product.HasLegacyDocs {
			lc, err := fetcher.NewLegacyClient(product, client, opts.Logger)
			if err != nil {
				return nil, nil, err
			}
			legacy = lc
		}
		modern := fetcher.NewModernClient(product, client, opts.CategoryMaxLen, opts.Logger)
		return legacy, modern, nil
	}
}

// pair returns the product's source pair, creating it on first use.
func (c *Compiler) pair(product registry.ProductConfig) (*sourcePair, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pairs[product.Name]; ok {
		return p, nil
	}
	legacy, modern, err := c.newSources(product)
	if err != nil {
		return nil, err
	}
	p := &sourcePair{legacy: legacy, modern: modern}
	c.pairs[product.Name] = p
	return p, nil
}

// Compile runs the full pipeline for one request.
func (c *Compiler) Compile(ctx context.Context, req Request) (*domain.CompiledReleaseNotes, error) {
	product, err := c.registry.Get(req.Product)
	if err != nil {
		return nil, err
	}
	pair, err := c.pair(product)
	if err != nil {
		return nil, err
	}
	log := c.log.WithProduct(product.Name)

	available := c.discover(ctx, pair, log)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	targets := filterTargets(available, req)
	log.Info().
		Int("available", len(available)).
		Int("targets", len(targets)).
		Msg("resolved target versions")

	notes := make([]*domain.ReleaseNote, len(targets))
	var completed int32
	errs := c.mapper.Map(ctx, len(targets), func(ctx context.Context, i int) error {
		defer func() {
			done := atomic.AddInt32(&completed, 1)
			if c.progress != nil {
				c.progress(int(done), len(targets))
			}
		}()

		note, err := c.fetchAndEnrich(ctx, pair, product, targets[i])
		if err != nil {
			return err
		}
		notes[i] = note
		return nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	compiled := domain.NewCompiledReleaseNotes(product.Name, req.Start, endVersion(req, targets))
	for i, note := range notes {
		switch {
		case errs[i] != nil:
			log.Warn().Err(errs[i]).Str("version", targets[i].String()).
				Msg("version failed, excluded from batch")
		case note == nil:
			log.Debug().Str("version", targets[i].String()).Msg("no release notes published")
		default:
			compiled.Releases = append(compiled.Releases, note)
		}
	}
	sort.Slice(compiled.Releases, func(i, j int) bool {
		return compiled.Releases[i].Version.Less(compiled.Releases[j].Version)
	})

	log.Info().Int("releases", len(compiled.Releases)).Msg("compile finished")
	return compiled, nil
}

// CompileAll compiles every request in order, reusing the per-product
// source pairs. The first fatal error stops the batch.
func (c *Compiler) CompileAll(ctx context.Context, reqs []Request) ([]*domain.CompiledReleaseNotes, error) {
	results := make([]*domain.CompiledReleaseNotes, 0, len(reqs))
	for _, req := range reqs {
		compiled, err := c.Compile(ctx, req)
		if err != nil {
			return results, err
		}
		results = append(results, compiled)
	}
	return results, nil
}

// DiscoverVersions lists every documented version for a product, union of
// both doc-site generations.
func (c *Compiler) DiscoverVersions(ctx context.Context, name string) ([]semver.Version, error) {
	product, err := c.registry.Get(name)
	if err != nil {
		return nil, err
	}
	pair, err := c.pair(product)
	if err != nil {
		return nil, err
	}
	versions := c.discover(ctx, pair, c.log.WithProduct(product.Name))
	return versions, ctx.Err()
}

// discover unions the versions both sites document. Either site failing is
// logged and tolerated; discovery yields the partial result.
func (c *Compiler) discover(ctx context.Context, pair *sourcePair, log *utils.Logger) []semver.Version {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []semver.Version
	)

	sources := []domain.Source{pair.modern}
	if pair.legacy != nil {
		sources = append(sources, pair.legacy)
	}
	for _, src := range sources {
		wg.Add(1)
		go func(src domain.Source) {
			defer wg.Done()
			versions, err := src.DiscoverVersions(ctx)
			if err != nil {
				log.Warn().Err(err).Str("source", src.Name()).Msg("version discovery failed")
				return
			}
			mu.Lock()
			results = append(results, versions...)
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	return semver.Dedup(results)
}

// filterTargets applies the version range, then the prerelease policy.
func filterTargets(available []semver.Version, req Request) []semver.Version {
	targets := semver.NewRange(req.Start, req.End).FilterVersions(available)
	if req.IncludePrereleases {
		return targets
	}
	releases := targets[:0]
	for _, v := range targets {
		if !v.IsPrerelease() {
			releases = append(releases, v)
		}
	}
	return releases
}

// fetchAndEnrich is the per-version unit of concurrency. A version whose
// primary page is absent is dropped entirely, returning (nil, nil).
func (c *Compiler) fetchAndEnrich(ctx context.Context, pair *sourcePair, product registry.ProductConfig, v semver.Version) (*domain.ReleaseNote, error) {
	src := pair.route(product, v)

	note, err := src.FetchReleaseNotes(ctx, v)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, nil
	}

	c.enrich(ctx, src, note, v)
	return note, nil
}

// enrich folds the supplementary pages into a fetched note. Enrichment
// failures never fail the version.
func (c *Compiler) enrich(ctx context.Context, src domain.Source, note *domain.ReleaseNote, v semver.Version) {
	log := c.log.WithProduct(note.Product).WithVersion(v.String())

	breaking, err := src.FetchBreakingChanges(ctx, v)
	if err != nil {
		log.Debug().Err(err).Msg("breaking changes unavailable")
	} else {
		mergeBreakingChanges(note, breaking)
	}

	aux, ok := src.(domain.AuxiliarySource)
	if !ok {
		return
	}

	deprecations, err := aux.FetchDeprecations(ctx, v)
	if err != nil {
		log.Debug().Err(err).Msg("deprecations unavailable")
	} else {
		fillSection(note, domain.SectionDeprecations, deprecations)
	}

	issues, err := aux.FetchKnownIssues(ctx, v)
	if err != nil {
		log.Debug().Err(err).Msg("known issues unavailable")
	} else {
		fillSection(note, domain.SectionKnownIssues, issues)
	}
}

// endVersion resolves the result's end bound: the explicit end when given,
// else the newest target, else the start.
func endVersion(req Request, targets []semver.Version) semver.Version {
	if req.End != nil {
		return *req.End
	}
	if len(targets) > 0 {
		return targets[len(targets)-1]
	}
	return req.Start
}

// Close releases every source pair created so far.
func (c *Compiler) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, p := range c.pairs {
		if p.legacy != nil {
			errs = append(errs, p.legacy.Close())
		}
		errs = append(errs, p.modern.Close())
	}
	c.pairs = make(map[string]*sourcePair)
	return errors.Join(errs...)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantmind-br/relnotes-go/internal/cache"
	"github.com/quantmind-br/relnotes-go/internal/compiler"
	"github.com/quantmind-br/relnotes-go/internal/config"
	"github.com/quantmind-br/relnotes-go/internal/domain"
	"github.com/quantmind-br/relnotes-go/internal/fetcher"
	"github.com/quantmind-br/relnotes-go/internal/registry"
	"github.com/quantmind-br/relnotes-go/internal/report"
	"github.com/quantmind-br/relnotes-go/internal/semver"
	"github.com/quantmind-br/relnotes-go/internal/utils"
	"github.com/quantmind-br/relnotes-go/pkg/version"
)

var (
	cfgFile string
	verbose bool
	log     *utils.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "relnotes",
	Short: "Compile Elastic release notes across versions",
	Long: `Relnotes scrapes the Elastic documentation sites, both the legacy
per-minor-version pages and the consolidated 9.x+ site, and compiles the
release notes for a version range into a single deduplicated report.`,
	Version: version.Short(),
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.relnotes/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	compileCmd.Flags().String("from", "", "Start version, exclusive (required)")
	compileCmd.Flags().String("to", "", "End version, inclusive (default: latest)")
	compileCmd.Flags().Bool("include-prereleases", false, "Include alpha/beta/rc versions")
	compileCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	compileCmd.Flags().IntP("concurrency", "j", config.DefaultWorkers, "Concurrent version fetches")
	compileCmd.Flags().String("model", config.DefaultConcurrencyModel, "Concurrency model: pool or semaphore")
	compileCmd.Flags().Bool("no-cache", false, "Disable the page cache")
	compileCmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL, "Page cache TTL")
	compileCmd.Flags().Duration("timeout", config.DefaultHTTPTimeout, "HTTP request timeout")
	compileCmd.Flags().String("user-agent", "", "Custom User-Agent")
	compileCmd.Flags().Bool("no-pr-links", false, "Omit pull-request links from the report")
	_ = compileCmd.MarkFlagRequired("from")

	_ = viper.BindPFlag("concurrency.workers", compileCmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("concurrency.model", compileCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("cache.ttl", compileCmd.Flags().Lookup("cache-ttl"))
	_ = viper.BindPFlag("http.timeout", compileCmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("http.user_agent", compileCmd.Flags().Lookup("user-agent"))

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// setup initializes the logger and loads the configuration.
func setup() (*config.Config, error) {
	logLevel := "info"
	if verbose {
		logLevel = "debug"
	}
	log = utils.NewLogger(utils.LoggerOptions{
		Level:   logLevel,
		Format:  "pretty",
		Verbose: verbose,
	})

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("Shutting down gracefully...")
		cancel()
	}()
	return ctx, cancel
}

func newMapper(cfg *config.Config) utils.Mapper {
	if cfg.Concurrency.Model == "semaphore" {
		return utils.NewSemaphoreMapper(cfg.Concurrency.Workers)
	}
	return utils.NewPoolMapper(cfg.Concurrency.Workers)
}

var compileCmd = &cobra.Command{
	Use:   "compile <product>...",
	Short: "Compile release notes for one or more products",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompile,
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	from, _ := cmd.Flags().GetString("from")
	start, err := semver.Parse(from)
	if err != nil {
		return fmt.Errorf("invalid --from version: %w", err)
	}

	var end *semver.Version
	if to, _ := cmd.Flags().GetString("to"); to != "" {
		v, err := semver.Parse(to)
		if err != nil {
			return fmt.Errorf("invalid --to version: %w", err)
		}
		end = &v
	}

	reg := registry.Default()
	for _, product := range args {
		if !reg.Has(product) {
			return fmt.Errorf("%w: %s (see 'relnotes products')", domain.ErrUnknownProduct, product)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	var pageCache domain.Cache
	noCache, _ := cmd.Flags().GetBool("no-cache")
	if cfg.Cache.Enabled && !noCache {
		bc, err := cache.NewBadgerCache(cache.Options{
			Directory: cfg.Cache.Directory,
		})
		if err != nil {
			log.Warn().Err(err).Msg("page cache unavailable, continuing without")
		} else {
			defer bc.Close()
			pageCache = bc
		}
	}

	client := fetcher.NewClient(fetcher.ClientOptions{
		Timeout:   cfg.HTTP.Timeout,
		UserAgent: cfg.HTTP.UserAgent,
		Cache:     pageCache,
		CacheTTL:  cfg.Cache.TTL,
		Retrier:   fetcher.NewRetrier(fetcher.RetrierOptions{MaxAttempts: cfg.HTTP.MaxRetries}),
		Logger:    log,
	})

	// The bar is swapped per product; the callback just forwards to it.
	var (
		barMu sync.Mutex
		bar   = utils.NewProgressBar(-1, utils.DescFetching)
	)
	progress := func(done, total int) {
		barMu.Lock()
		defer barMu.Unlock()
		bar.ChangeMax(total)
		_ = bar.Set(done)
	}

	comp := compiler.New(compiler.Options{
		Registry:       reg,
		Client:         client,
		Mapper:         newMapper(cfg),
		CategoryMaxLen: cfg.Extract.CategoryMaxLen,
		Logger:         log,
		Progress:       progress,
	})
	defer comp.Close()

	includePrereleases, _ := cmd.Flags().GetBool("include-prereleases")
	var compiled []*domain.CompiledReleaseNotes
	for _, product := range args {
		barMu.Lock()
		bar = utils.NewProgressBar(-1, fmt.Sprintf("%s: %s", utils.DescFetching, product))
		barMu.Unlock()

		result, err := comp.Compile(ctx, compiler.Request{
			Product:            product,
			Start:              start,
			End:                end,
			IncludePrereleases: includePrereleases,
		})
		barMu.Lock()
		_ = bar.Finish()
		barMu.Unlock()
		if err != nil {
			return err
		}
		compiled = append(compiled, result)
	}

	noPRLinks, _ := cmd.Flags().GetBool("no-pr-links")
	renderer := report.NewRenderer(report.Options{
		IncludePRLinks: !noPRLinks,
		DisplayNames:   displayNames(reg),
	})
	out := renderer.Render(compiled)

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := os.WriteFile(path, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		log.Info().Str("path", path).Msg("report written")
		return nil
	}
	fmt.Print(out)
	return nil
}

func displayNames(reg *registry.Registry) map[string]string {
	names := make(map[string]string)
	for _, p := range reg.All() {
		names[p.Name] = p.DisplayName
	}
	return names
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the products in the registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, p := range registry.Default().All() {
			site := "modern"
			if p.HasLegacyDocs {
				site = "legacy+modern"
			}
			fmt.Printf("%-32s %-36s %s\n", p.Name, p.DisplayName, site)
		}
		return nil
	},
}

var versionsCmd = &cobra.Command{
	Use:   "versions <product>",
	Short: "List the versions a product documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		client := fetcher.NewClient(fetcher.ClientOptions{
			Timeout: cfg.HTTP.Timeout,
			Logger:  log,
		})
		comp := compiler.New(compiler.Options{
			Client: client,
			Mapper: newMapper(cfg),
			Logger: log,
		})
		defer comp.Close()

		versions, err := comp.DiscoverVersions(ctx, args[0])
		if err != nil {
			return err
		}
		for _, v := range versions {
			fmt.Println(v)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}

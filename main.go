package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"car-scraper/config"
	"car-scraper/crawler"
	"car-scraper/fetcher"
	"car-scraper/scraper"
	"car-scraper/scraper/sources"
	"car-scraper/services"
	"car-scraper/storage"
	"car-scraper/utils"
)

type rootFlags struct {
	configPath  string
	debug       bool
	outputDir   string
	sources     []string
	maxListings int
	noBrowser   bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "carscrape",
		Short:        "Crawl Vietnamese used-car marketplaces into a CSV dataset",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd.Context(), flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default: scraper.yaml in . or ./config)")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	pf.StringSliceVar(&flags.sources, "source", nil, fmt.Sprintf("only crawl these sources %v (repeatable)", sources.Names()))
	pf.BoolVar(&flags.noBrowser, "no-browser", false, "disable the headless browser; paginate by page numbers only")

	root.Flags().StringVar(&flags.outputDir, "output-dir", "", "directory for the output CSV")
	root.Flags().IntVar(&flags.maxListings, "max-listings", -1, "stop after this many accepted listings (0 = no cap)")

	root.AddCommand(newTargetsCommand(flags), newCleanCommand(flags))
	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup(flags *rootFlags) (*config.Config, *utils.Logger, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, err
	}
	if flags.debug {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}
	if flags.outputDir != "" {
		cfg.Output.Dir = flags.outputDir
	}
	if flags.maxListings >= 0 {
		cfg.Crawl.MaxListings = flags.maxListings
	}
	if flags.noBrowser {
		cfg.Browser.Enabled = false
	}
	if err := cfg.FilterSources(flags.sources); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := utils.NewLoggerWithOptions(utils.LoggerOptions{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newFetchers builds the throttled HTTP fetcher and, when enabled, the
// throttled browser loader. The returned close func shuts the browser down.
func newFetchers(cfg *config.Config, logger *utils.Logger) (fetcher.Fetcher, fetcher.PageLoader, func()) {
	throttle := fetcher.NewHostThrottle(cfg.Crawl.HostInterval)
	httpFetcher := fetcher.Throttled(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:     cfg.Crawl.UserAgent,
		Timeout:       cfg.Crawl.RequestTimeout,
		RespectRobots: cfg.Crawl.RespectRobots,
	}, logger), throttle)

	if !cfg.Browser.Enabled {
		return httpFetcher, nil, func() {}
	}
	chrome := fetcher.NewChromeLoader(fetcher.BrowserOptions{
		ChromeBin:       cfg.Browser.ChromeBin,
		UserAgent:       cfg.Crawl.UserAgent,
		NavigateTimeout: cfg.Browser.NavigateTimeout,
		ScrollPause:     cfg.Browser.ScrollPause,
		OpenAttempts:    cfg.Browser.OpenAttempts,
	}, logger)
	return httpFetcher, fetcher.ThrottledLoader(chrome, throttle), func() {
		if err := chrome.Close(); err != nil {
			logger.Warn("[main] Closing browser: %v", err)
		}
	}
}

func crawlOptions(cfg *config.Config) crawler.Options {
	return crawler.Options{
		MaxConcurrency: cfg.Crawl.MaxConcurrency,
		Limits: scraper.Limits{
			MaxPages:           cfg.Crawl.MaxPages,
			EmptyPageTolerance: cfg.Crawl.EmptyPageTolerance,
			MaxLoadAttempts:    cfg.Crawl.MaxLoadAttempts,
			StaleLoadLimit:     cfg.Crawl.StaleLoadLimit,
		},
		MinDelay:    cfg.Crawl.MinDelay,
		MaxDelay:    cfg.Crawl.MaxDelay,
		SinkBuffer:  cfg.Crawl.SinkBuffer,
		MaxListings: cfg.Crawl.MaxListings,
	}
}

func outputPath(cfg *config.Config, runID string, now time.Time) string {
	name := cfg.Output.FileName
	if name == "" {
		name = fmt.Sprintf("listings_%s_%s.csv", now.Format("20060102_150405"), runID[:8])
	}
	return filepath.Join(cfg.Output.Dir, name)
}

func runCrawl(ctx context.Context, flags *rootFlags) error {
	cfg, logger, err := setup(flags)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	logger.Info("=== Car scraping run %s starting ===", runID)
	logger.Info("Config: sources: %d | concurrency: %d | host interval: %s | browser: %t",
		len(cfg.Sources), cfg.Crawl.MaxConcurrency, cfg.Crawl.HostInterval, cfg.Browser.Enabled)

	adapters, err := sources.New(cfg.Sources)
	if err != nil {
		return err
	}

	path := outputPath(cfg, runID, time.Now())
	csvWriter, err := storage.NewCSVWriter(path)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		return err
	}
	insights := services.NewInsightService(logger)
	sink := storage.Tee(csvWriter, insights)

	f, loader, closeBrowser := newFetchers(cfg, logger)
	defer closeBrowser()

	c := crawler.New(adapters, f, loader, sink, crawlOptions(cfg), logger)
	summary, runErr := c.Run(ctx)
	if err := sink.Close(); err != nil {
		logger.Error("Closing output: %v", err)
	}
	if runErr != nil {
		logger.Error("Crawl failed: %v", runErr)
		return runErr
	}

	insights.Print(os.Stdout, insights.Report(), summary)
	fmt.Printf("  Done. %d listings → %s\n\n", csvWriter.Rows(), csvWriter.Path())
	return nil
}

func newTargetsCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the index targets every configured source would crawl",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(flags)
			if err != nil {
				return err
			}
			defer logger.Sync()

			adapters, err := sources.New(cfg.Sources)
			if err != nil {
				return err
			}
			f, _, closeBrowser := newFetchers(cfg, logger)
			defer closeBrowser()

			jobs, errs := crawler.New(adapters, f, nil, nil, crawlOptions(cfg), logger).Discover(cmd.Context())

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Source", "Make", "Model", "Region", "Index URL"})
			for _, j := range jobs {
				t.AppendRow(table.Row{j.Target.Source, j.Target.Make, j.Target.Model, j.Target.Region, j.Target.IndexURL})
			}
			t.AppendFooter(table.Row{"", "", "", "Total", len(jobs)})
			t.Render()

			for _, err := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "  ! %v\n", err)
			}
			return nil
		},
	}
}

func newCleanCommand(flags *rootFlags) *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Filter a raw listings CSV into the minimal training dataset",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, logger, err := setup(flags)
			if err != nil {
				return err
			}
			defer logger.Sync()

			raw, err := storage.ReadCSV(in)
			if err != nil {
				return err
			}
			cleaned := services.NewCleaner(services.DefaultCleanOptions(), logger).Clean(raw)
			if len(cleaned) == 0 {
				return fmt.Errorf("all %d listings were dropped during cleaning", len(raw))
			}

			rows := make([][]string, 0, len(cleaned))
			for _, l := range cleaned {
				rows = append(rows, l.Row())
			}
			if err := storage.WriteTable(out, services.CleanColumns, rows); err != nil {
				return err
			}
			logger.Info("Clean dataset: %d listings → %s", len(cleaned), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "raw listings CSV written by a crawl")
	cmd.Flags().StringVar(&out, "out", "./output/car_listings_clean.csv", "cleaned CSV to write")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"grocery-scraper/config"
	"grocery-scraper/models"
	"grocery-scraper/processing"
	"grocery-scraper/scraper"
	"grocery-scraper/scraper/meny"
	"grocery-scraper/scraper/oda"
	"grocery-scraper/storage"
	"grocery-scraper/utils"
)

type options struct {
	configPath     string
	scraperType    string
	categoryURL    string
	categoryFilter string
	maxProducts    int
	runID          string
	seed           string
	replace        bool
	clearTables    bool
	clearOnly      bool
	debug          bool
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "grocery-scraper",
		Short:        "Scrapes grocery product listings from Norwegian e-commerce sites",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	f := rootCmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "config.yaml", "site configuration file path")
	f.StringVarP(&opts.scraperType, "scraper", "s", "meny", "scraper type to use (meny|oda)")
	f.StringVarP(&opts.categoryURL, "category", "u", "", "specific category URL to scrape (overrides config)")
	f.StringVar(&opts.categoryFilter, "category-filter", "", "only scrape categories containing this string")
	f.IntVarP(&opts.maxProducts, "max-products", "m", 0, "maximum products to scrape per category (0 = unlimited)")
	f.StringVar(&opts.runID, "run-id", "", "specify a run ID, otherwise auto-generated")
	f.StringVar(&opts.seed, "seed", "", "seed for generating a deterministic run ID")
	f.BoolVar(&opts.replace, "replace", false, "replace existing products with the same ID")
	f.BoolVar(&opts.clearTables, "clear-tables", false, "clear stored data before scraping")
	f.BoolVar(&opts.clearOnly, "clear-only", false, "only clear stored data, without scraping")
	f.BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options) error {
	logger := utils.NewLogger()
	logger.SetDebug(opts.debug)

	cfg := config.Load()
	if cfg.LogFile != "" {
		if err := logger.AddFileSink(cfg.LogFile); err != nil {
			return err
		}
	}

	logger.Info("=== Grocery Scraping System starting ===")
	logger.Info("Config — scraper: %s | storage: %s | concurrency: %d | rate: %dms",
		opts.scraperType, cfg.StorageType, cfg.MaxConcurrency, cfg.RateLimitMs)

	sites, err := config.LoadSites(opts.configPath)
	if err != nil {
		return err
	}

	writer, tracker, err := newStorage(cfg, opts.replace)
	if err != nil {
		return err
	}
	defer writer.Close()

	if opts.clearTables || opts.clearOnly {
		logger.Info("Clearing stored data before scraping")
		if err := writer.Clear(); err != nil {
			return fmt.Errorf("clear storage: %w", err)
		}
		if opts.clearOnly {
			logger.Info("Data cleared. Exiting as requested.")
			return nil
		}
	}

	runID := opts.runID
	if runID == "" {
		runID = utils.FormatRunID(utils.GenerateRunID(opts.seed))
	}

	categories, err := resolveCategories(sites, opts)
	if err != nil {
		return err
	}

	siteScraper, err := newScraper(opts.scraperType, cfg, logger)
	if err != nil {
		return err
	}
	defer siteScraper.Close()

	// Only Oda's product descriptions carry cheese, dietary and flavor
	// details worth extracting.
	extras := processing.Extras{}
	if opts.scraperType == "oda" {
		extras = processing.Extras{Cheese: true, Dietary: true, Features: true}
	}
	processor := processing.NewProcessor(processing.NewExtractor(extras), logger, cfg.MaxConcurrency)

	logger.Info("Starting run %s — %d categories", runID, len(categories))

	var all []*models.Product
	total := 0

	for i, category := range categories {
		logger.Info("Scraping category %d/%d: %s (%s)", i+1, len(categories), category.Name, category.URL)

		categoryRunID := runID + "_" + category.Name
		startRunTracking(tracker, logger, categoryRunID, opts, category, cfg)

		products, err := siteScraper.Products(ctx, category, opts.maxProducts)
		if err != nil {
			logger.Error("Category %s failed: %v", category.Name, err)
			endRunTracking(tracker, logger, categoryRunID, "failed", err.Error())
			continue
		}
		if len(products) == 0 {
			logger.Warn("No products found in category %s", category.Name)
			endRunTracking(tracker, logger, categoryRunID, "completed", "")
			continue
		}

		for _, p := range products {
			p.RunID = categoryRunID
			if p.Category == "" {
				p.Category = category.Name
			}
		}

		processed := processor.ProcessAll(products)

		if err := writer.Write(processed); err != nil {
			logger.Error("Failed to save products from %s: %v", category.Name, err)
			endRunTracking(tracker, logger, categoryRunID, "failed", err.Error())
			continue
		}

		logger.Info("Saved %d products from %s", len(processed), category.Name)
		total += len(processed)
		all = append(all, processed...)
		endRunTracking(tracker, logger, categoryRunID, "completed", "")
	}

	logger.Info("Run %s completed — %d products across %d categories", runID, total, len(categories))

	if pg, ok := writer.(*storage.PostgresWriter); ok {
		if stored, err := pg.FetchAll(); err == nil {
			all = stored
		} else {
			logger.Error("Failed to fetch products for insights: %v", err)
		}
	}

	insightSvc := processing.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(all))

	return nil
}

// newStorage builds the configured sink. The tracker is nil for backends
// without run bookkeeping.
func newStorage(cfg *config.Config, replace bool) (storage.ProductWriter, storage.RunTracker, error) {
	switch cfg.StorageType {
	case "postgres":
		pg, err := storage.NewPostgresWriter(cfg.DSN(), replace)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg, nil
	case "csv":
		w, err := storage.NewCSVWriter(cfg.CSVOutputDir)
		return w, nil, err
	default:
		return nil, nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}

func newScraper(scraperType string, cfg *config.Config, logger *utils.Logger) (scraper.Scraper, error) {
	switch scraperType {
	case "meny":
		return meny.New(cfg, logger), nil
	case "oda":
		return oda.New(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown scraper type %q", scraperType)
	}
}

// resolveCategories picks the scrape targets: an explicit URL flag wins,
// otherwise the site's configured categories, optionally filtered.
func resolveCategories(sites config.Sites, opts *options) ([]config.Category, error) {
	if opts.categoryURL != "" {
		parts := strings.Split(strings.TrimRight(opts.categoryURL, "/"), "/")
		name := "custom-category"
		if len(parts) > 0 && parts[len(parts)-1] != "" {
			name = parts[len(parts)-1]
		}
		return []config.Category{{Name: name, URL: opts.categoryURL}}, nil
	}

	site, ok := sites[opts.scraperType]
	if !ok || len(site.Categories) == 0 {
		return nil, fmt.Errorf("no categories configured for scraper %q", opts.scraperType)
	}

	categories := site.Categories
	if opts.categoryFilter != "" {
		var filtered []config.Category
		for _, c := range categories {
			if strings.Contains(strings.ToLower(c.Name), strings.ToLower(opts.categoryFilter)) {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) == 0 {
			return nil, fmt.Errorf("no categories match filter %q", opts.categoryFilter)
		}
		categories = filtered
	}

	return categories, nil
}

func startRunTracking(tracker storage.RunTracker, logger *utils.Logger, runID string, opts *options, category config.Category, cfg *config.Config) {
	if tracker == nil {
		return
	}
	snapshot, _ := json.Marshal(map[string]any{
		"scraper": map[string]any{
			"type":          opts.scraperType,
			"rate_limit_ms": cfg.RateLimitMs,
			"max_retries":   cfg.MaxRetries,
		},
		"category": category.Name,
	})
	if err := tracker.StartRun(runID, opts.scraperType, category.URL, opts.maxProducts, opts.replace, snapshot); err != nil {
		logger.Error("Failed to start run tracking for %s: %v", runID, err)
	}
}

func endRunTracking(tracker storage.RunTracker, logger *utils.Logger, runID, status, errMsg string) {
	if tracker == nil {
		return
	}
	if err := tracker.EndRun(runID, status, errMsg); err != nil {
		logger.Error("Failed to end run tracking for %s: %v", runID, err)
	}
}

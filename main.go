package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"rooms-aggregator/aggregator"
	"rooms-aggregator/config"
	"rooms-aggregator/models"
	"rooms-aggregator/renderer"
	"rooms-aggregator/scraper"
	"rooms-aggregator/scraper/gumtree"
	"rooms-aggregator/scraper/olx"
	"rooms-aggregator/services"
	"rooms-aggregator/storage"
	"rooms-aggregator/utils"
)

// CLIFlags are the command line options; anything unset falls back to the environment config.
type CLIFlags struct {
	Source     []string `help:"Source to crawl (olx, gumtree). Repeatable; all sources when omitted." short:"s"`
	MaxPrice   *int     `help:"Keep listings priced at or below this amount. Unpriced listings are always kept." name:"max-price"`
	RoomType   string   `help:"Keep only this room type (single, shared, studio, apartment)." name:"room-type" short:"t"`
	Pages      int      `help:"Result pages per source (1-10). Defaults to DEFAULT_PAGES." short:"p"`
	City       string   `help:"City slug, e.g. warszawa or krakow. Defaults to CITY."`
	JSON       string   `help:"Write the aggregated listings to this JSON file." name:"json" type:"path"`
	CSV        string   `help:"Write the aggregated listings to this CSV file." name:"csv" type:"path"`
	Store      bool     `help:"Upsert the listings into PostgreSQL."`
	Sequential bool     `help:"Crawl sources one after another instead of in parallel."`
	Quiet      bool     `help:"Print only the summary, not every listing." short:"q"`
}

func main() {
	var flags CLIFlags
	kong.Parse(&flags,
		kong.Name("rooms"),
		kong.Description("Aggregates room rental listings from OLX and Gumtree."),
	)

	cfg := config.Load()
	applyFlags(cfg, flags)
	logger := utils.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, flags, logger)
	stop()
	os.Exit(code)
}

func applyFlags(cfg *config.Config, flags CLIFlags) {
	if flags.City != "" {
		cfg.City = flags.City
	}
	if flags.JSON != "" {
		cfg.JSONOutputPath = flags.JSON
	}
	if flags.CSV != "" {
		cfg.CSVOutputPath = flags.CSV
	}
	if flags.Store {
		cfg.StoreResults = true
	}
	if flags.Sequential {
		cfg.Parallel = false
	}
}

func searchRequest(flags CLIFlags) ([]models.Source, models.SearchOptions, error) {
	var sources []models.Source
	for _, s := range flags.Source {
		src, err := models.ParseSource(s)
		if err != nil {
			return nil, models.SearchOptions{}, err
		}
		sources = append(sources, src)
	}
	rt, err := models.ParseRoomType(flags.RoomType)
	if err != nil {
		return nil, models.SearchOptions{}, err
	}
	opts := models.SearchOptions{MaxPrice: flags.MaxPrice, RoomType: rt, Pages: flags.Pages}
	if flags.Pages < 0 {
		return nil, models.SearchOptions{}, fmt.Errorf("pages must not be negative, got %d", flags.Pages)
	}
	// Page clamping stays with the aggregator; this only rejects invalid values.
	if _, err := opts.Resolve(1, models.MaxPagesLimit); err != nil {
		return nil, models.SearchOptions{}, err
	}
	return sources, opts, nil
}

func run(ctx context.Context, cfg *config.Config, flags CLIFlags, logger *utils.Logger) int {
	sources, opts, err := searchRequest(flags)
	if err != nil {
		logger.Error("Invalid arguments: %v", err)
		return 2
	}

	logger.Info("=== Rooms aggregator starting ===")
	logger.Info("Config: city %s | max pages %d | delay %v | retries %d | parallel %t",
		cfg.City, cfg.MaxPages, cfg.PageDelay, cfg.MaxRetries, cfg.Parallel)

	browser := renderer.NewBrowser(cfg, logger)
	defer browser.Close()

	crawler := scraper.NewCrawler(browser, logger, scraper.Options{
		PageDelay:   cfg.PageDelay,
		WaitTimeout: cfg.WaitTimeout,
		MaxRetries:  cfg.MaxRetries,
	})
	agg := aggregator.New(crawler, []scraper.Adapter{
		olx.New(cfg.City, cfg.Currency),
		gumtree.New(cfg.City, cfg.Currency),
	}, logger, aggregator.Options{
		Parallel:     cfg.Parallel,
		DefaultPages: cfg.DefaultPages,
		MaxPages:     cfg.MaxPages,
	})

	res, err := agg.Run(ctx, sources, opts)
	if err != nil {
		if scraper.IsCancelled(err) {
			logger.Warn("Interrupted, no results written")
			return 130
		}
		logger.Error("Aggregation failed: %v", err)
		return 1
	}

	if !flags.Quiet {
		printListings(os.Stdout, res.Listings)
	}

	listings, err := export(ctx, cfg, res, logger)
	if err != nil {
		logger.Error("%v", err)
		return 1
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(os.Stdout, insightSvc.Generate(listings))
	return 0
}

// export writes the run to every configured output and returns the listings to
// summarise: the stored rows when PostgreSQL is enabled, the in-memory result otherwise.
func export(ctx context.Context, cfg *config.Config, res *aggregator.Result, logger *utils.Logger) ([]models.Listing, error) {
	if cfg.CSVOutputPath != "" {
		w, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			return nil, err
		}
		if err := writeAll(w, res.Listings); err != nil {
			return nil, err
		}
		logger.Info("Listings saved to %s", cfg.CSVOutputPath)
	}

	if cfg.JSONOutputPath != "" {
		w, err := storage.NewJSONWriter(cfg.JSONOutputPath)
		if err != nil {
			return nil, err
		}
		if err := writeAll(w, res.Listings); err != nil {
			return nil, err
		}
		logger.Info("Listings saved to %s", cfg.JSONOutputPath)
	}

	if cfg.StoreResults {
		pg, err := storage.NewPostgresWriter(ctx, cfg.DSN(), res.RunID, logger)
		if err != nil {
			return nil, fmt.Errorf("%w (is the database running? docker compose up -d)", err)
		}
		defer pg.Close()

		if err := pg.WriteContext(ctx, res.Listings); err != nil {
			return nil, err
		}
		logger.Info("Listings stored in PostgreSQL (table: room_listings, run %s)", res.RunID)

		stored, err := pg.FetchRun(ctx)
		if err != nil {
			logger.Warn("Reading back run %s failed, summarising in-memory results: %v", res.RunID, err)
		} else {
			return stored, nil
		}
	}
	return res.Listings, nil
}

func writeAll(w storage.ListingWriter, listings []models.Listing) error {
	if err := w.Write(listings); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func printListings(w io.Writer, listings []models.Listing) {
	for i, l := range listings {
		price := "—"
		if l.Price != nil {
			price = fmt.Sprintf("%d %s", *l.Price, l.Currency)
		}
		fmt.Fprintf(w, "%3d. [%s] %s | %s | %s\n     %s\n", i+1, l.Source, l.Title, price, l.Location, l.URL)
	}
	if len(listings) == 0 {
		fmt.Fprintln(w, "No listings found.")
	}
}

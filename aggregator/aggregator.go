// Package aggregator runs the crawl engine over several sources and merges
// their results into one price-ordered list.
package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"rooms-aggregator/models"
	"rooms-aggregator/scraper"
	"rooms-aggregator/services"
	"rooms-aggregator/utils"
)

// SourceCrawler crawls a single adapter. *scraper.Crawler satisfies it.
type SourceCrawler interface {
	Crawl(ctx context.Context, a scraper.Adapter, opts models.SearchOptions) ([]models.Listing, error)
}

// Options configures an Aggregator.
type Options struct {
	Parallel     bool
	DefaultPages int
	MaxPages     int
}

// Aggregator owns the adapter registry.
type Aggregator struct {
	crawler  SourceCrawler
	adapters map[models.Source]scraper.Adapter
	logger   *utils.Logger
	opts     Options
}

// Result is one aggregation run.
type Result struct {
	RunID     string
	Options   models.SearchOptions
	Sources   []models.Source
	Listings  []models.Listing
	PerSource map[models.Source]int
	Duration  time.Duration
}

// New registers adapters by the source they report.
func New(crawler SourceCrawler, adapters []scraper.Adapter, logger *utils.Logger, opts Options) *Aggregator {
	if opts.MaxPages <= 0 || opts.MaxPages > models.MaxPagesLimit {
		opts.MaxPages = models.MaxPagesLimit
	}
	if opts.DefaultPages <= 0 {
		opts.DefaultPages = 1
	}
	reg := make(map[models.Source]scraper.Adapter, len(adapters))
	for _, a := range adapters {
		reg[a.Site().Profile.Source] = a
	}
	return &Aggregator{crawler: crawler, adapters: reg, logger: logger, opts: opts}
}

// Aggregate crawls the requested sources and returns their listings sorted by
// price, unpriced last. Any source failure fails the whole call.
func (a *Aggregator) Aggregate(ctx context.Context, sources []models.Source, opts models.SearchOptions) ([]models.Listing, error) {
	res, err := a.Run(ctx, sources, opts)
	if err != nil {
		return nil, err
	}
	return res.Listings, nil
}

// Run is Aggregate with run metadata.
func (a *Aggregator) Run(ctx context.Context, sources []models.Source, opts models.SearchOptions) (*Result, error) {
	resolved, err := opts.Resolve(a.opts.DefaultPages, a.opts.MaxPages)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	selected, err := a.selectAdapters(sources)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	runID := uuid.NewString()
	logger := a.logger.With("run", runID)
	logger.Info("[aggregator] Crawling %d source(s), %d page(s) each, parallel=%t",
		len(selected), resolved.Pages, a.opts.Parallel)

	start := time.Now()
	perSource := make([][]models.Listing, len(selected))

	if a.opts.Parallel && len(selected) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i, ad := range selected {
			i, ad := i, ad // per-iteration copies (go directive is 1.21)
			g.Go(func() error {
				ls, err := a.crawler.Crawl(gctx, ad, resolved)
				if err != nil {
					return err
				}
				perSource[i] = ls
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			logger.Error("[aggregator] Run failed: %v", err)
			return nil, fmt.Errorf("aggregate: %w", err)
		}
	} else {
		for i, ad := range selected {
			ls, err := a.crawler.Crawl(ctx, ad, resolved)
			if err != nil {
				logger.Error("[aggregator] Run failed: %v", err)
				return nil, fmt.Errorf("aggregate: %w", err)
			}
			perSource[i] = ls
		}
	}

	res := &Result{
		RunID:     runID,
		Options:   resolved,
		Listings:  []models.Listing{},
		PerSource: make(map[models.Source]int, len(selected)),
	}
	for i, ad := range selected {
		src := ad.Site().Profile.Source
		res.Sources = append(res.Sources, src)
		res.PerSource[src] = len(perSource[i])
		res.Listings = append(res.Listings, perSource[i]...)
	}
	services.SortByPrice(res.Listings)
	res.Duration = time.Since(start)

	logger.Info("[aggregator] Done: %d listings in %v", len(res.Listings), res.Duration.Round(time.Millisecond))
	return res, nil
}

// selectAdapters maps requested sources to adapters in request order. No
// request means every known source.
func (a *Aggregator) selectAdapters(sources []models.Source) ([]scraper.Adapter, error) {
	if len(sources) == 0 {
		sources = models.KnownSources
	}

	var out []scraper.Adapter
	seen := make(map[models.Source]bool, len(sources))
	for _, src := range sources {
		if seen[src] {
			continue
		}
		seen[src] = true

		ad, ok := a.adapters[src]
		if !ok {
			return nil, fmt.Errorf("unknown source %q", src)
		}
		out = append(out, ad)
	}
	return out, nil
}

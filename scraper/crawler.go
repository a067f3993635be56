package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rooms-aggregator/models"
	"rooms-aggregator/renderer"
	"rooms-aggregator/services"
	"rooms-aggregator/utils"
)

// DefaultPageDelay spaces out page fetches when no positive delay is configured.
const DefaultPageDelay = 750 * time.Millisecond

// Options tunes the crawl engine.
type Options struct {
	// PageDelay is the pause before every page after the first; zero selects DefaultPageDelay.
	PageDelay   time.Duration
	WaitTimeout time.Duration
	// MaxRetries is the number of extra navigation attempts after the first fails.
	MaxRetries int
	RetryDelay time.Duration
}

// Crawler drives one adapter across its result pages.
type Crawler struct {
	renderer renderer.Renderer
	cleaner  *services.Cleaner
	logger   *utils.Logger
	opts     Options
}

// NewCrawler creates a Crawler that renders pages through r.
func NewCrawler(r renderer.Renderer, logger *utils.Logger, opts Options) *Crawler {
	if opts.PageDelay <= 0 {
		opts.PageDelay = DefaultPageDelay
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Crawler{
		renderer: r,
		cleaner:  services.NewCleaner(logger),
		logger:   logger,
		opts:     opts,
	}
}

type pageResult struct {
	raw     []models.RawListing
	hasNext bool
}

// Crawl fetches pages 1..opts.Pages of one source in order and returns the
// deduplicated, filtered listings in first-seen order. opts must already be resolved.
func (c *Crawler) Crawl(ctx context.Context, a Adapter, opts models.SearchOptions) ([]models.Listing, error) {
	site := a.Site()
	src := site.Profile.Source
	c.logger.Info("[%s] Starting crawl (pages: %d)", src, opts.Pages)

	session, err := c.renderer.Open(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, newCrawlError(src, 0, KindCancelled, ctx.Err())
		}
		return nil, newCrawlError(src, 0, KindNavigation, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			c.logger.Warn("[%s] Closing renderer session: %v", src, err)
		}
	}()

	retry := &utils.RetryConfig{
		MaxAttempts: c.opts.MaxRetries + 1,
		BaseDelay:   c.opts.RetryDelay,
		Logger:      c.logger,
	}

	seen := utils.NewURLSet()
	var listings []models.Listing

	for page := 1; page <= opts.Pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, newCrawlError(src, page, KindCancelled, err)
		}
		if page > 1 {
			if err := utils.PoliteDelay(ctx, c.opts.PageDelay); err != nil {
				return nil, newCrawlError(src, page, KindCancelled, err)
			}
		}

		pageURL := a.PageURL(opts, page)
		c.logger.Info("[%s] Scraping page %d: %s", src, page, pageURL)

		err := retry.Do(ctx, fmt.Sprintf("%s-page-%d", src, page), func() error {
			return session.Navigate(ctx, pageURL)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, newCrawlError(src, page, KindCancelled, ctx.Err())
			}
			return nil, newCrawlError(src, page, KindNavigation, err)
		}

		if page == 1 && site.ConsentSelector != "" {
			if session.FindAndClick(ctx, site.ConsentSelector) {
				c.logger.Debug("[%s] Dismissed consent dialog", src)
			}
		}

		if !session.WaitForSelector(ctx, site.ListingsSelector, c.opts.WaitTimeout) {
			c.logger.Warn("[%s] Page %d: listings did not appear within %v, extracting best-effort",
				src, page, c.opts.WaitTimeout)
		}

		res, err := renderer.Run(ctx, session, func(doc *goquery.Document) (pageResult, error) {
			raw, err := a.ExtractListings(doc)
			if err != nil {
				return pageResult{}, err
			}
			return pageResult{raw: raw, hasNext: a.HasNextPage(doc)}, nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, newCrawlError(src, page, KindCancelled, ctx.Err())
			}
			return nil, newCrawlError(src, page, KindExtraction, err)
		}

		added := 0
		for _, raw := range res.raw {
			l := c.cleaner.Normalize(raw, site.Profile)
			if l.URL == "" || !seen.Add(l.URL) {
				continue
			}
			listings = append(listings, l)
			added++
		}

		c.logger.Info("[%s] Page %d done: %d extracted, %d new, %d total",
			src, page, len(res.raw), added, len(listings))

		if !res.hasNext {
			c.logger.Debug("[%s] No next page after page %d", src, page)
			break
		}
		if added == 0 && site.StopWhenNoNew {
			c.logger.Debug("[%s] Page %d added nothing new, stopping", src, page)
			break
		}
	}

	filtered := services.Filter(listings, opts)
	c.logger.Info("[%s] Crawl complete: %d listings (%d after filtering)", src, len(listings), len(filtered))
	return filtered, nil
}

// IsCancelled reports whether err is a crawl that ended because its context did.
func IsCancelled(err error) bool {
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.Kind == KindCancelled
	}
	return errors.Is(err, context.Canceled)
}

package scraper

import (
	"context"
	"errors"
	"fmt"

	"rooms-aggregator/models"
)

// ErrorKind classifies why a crawl run failed.
type ErrorKind string

const (
	KindNavigation ErrorKind = "navigation"
	KindExtraction ErrorKind = "extraction"
	KindTimeout    ErrorKind = "timeout"
	KindCancelled  ErrorKind = "cancelled"
)

// CrawlError is a fatal failure of one source's crawl at a given page.
type CrawlError struct {
	Source models.Source
	Page   int
	Kind   ErrorKind
	Err    error
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("%s page %d: %s failed: %v", e.Source, e.Page, e.Kind, e.Err)
}

func (e *CrawlError) Unwrap() error { return e.Err }

// newCrawlError reports any failure caused by an operation deadline as a timeout.
// A cancelled crawl keeps its kind even when the caller's deadline ended it.
func newCrawlError(src models.Source, page int, kind ErrorKind, err error) *CrawlError {
	if errors.Is(err, context.DeadlineExceeded) && kind != KindCancelled {
		kind = KindTimeout
	}
	return &CrawlError{Source: src, Page: page, Kind: kind, Err: err}
}

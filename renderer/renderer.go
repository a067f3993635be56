// Package renderer defines the page rendering capability the crawl engine
// consumes, and a chromedp-backed implementation of it.
package renderer

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Renderer hands out browser sessions. Each crawl run owns one session.
type Renderer interface {
	Open(ctx context.Context) (Session, error)
}

// Session is one rendering tab. It is not safe for concurrent use.
type Session interface {
	// Navigate loads url and waits for the page load event.
	Navigate(ctx context.Context, url string) error
	// WaitForSelector reports whether selector appeared before timeout.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) bool
	// FindAndClick clicks the first element matching selector, if any.
	FindAndClick(ctx context.Context, selector string) bool
	// Document snapshots the current rendered DOM.
	Document(ctx context.Context) (*goquery.Document, error)
	Close() error
}

// Run snapshots the rendered page and applies fn to it.
func Run[T any](ctx context.Context, s Session, fn func(*goquery.Document) (T, error)) (T, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return fn(doc)
}

package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rooms-aggregator/models"
)

// Site is the static description of one source the crawl engine needs.
type Site struct {
	Profile models.SourceProfile

	// ListingsSelector is waited for after navigation; a timeout means "no listings".
	ListingsSelector string
	// ConsentSelector is clicked once on the first page when present.
	ConsentSelector string
	// StopWhenNoNew ends the crawl when a page contributes no new listings.
	StopWhenNoNew bool
}

// Adapter encapsulates one site's URL, extraction and pagination rules.
type Adapter interface {
	Site() Site
	// PageURL builds the URL of the given 1-based results page.
	PageURL(opts models.SearchOptions, page int) string
	// ExtractListings pulls raw listing records out of a rendered results page.
	ExtractListings(doc *goquery.Document) ([]models.RawListing, error)
	// HasNextPage reports whether an enabled "next page" control is present.
	HasNextPage(doc *goquery.Document) bool
}

// CityName turns a URL city slug into a display name used as a default location.
func CityName(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "Polska"
	}
	r := []rune(slug)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

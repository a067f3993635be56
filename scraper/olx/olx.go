package olx

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rooms-aggregator/models"
	"rooms-aggregator/scraper"
)

const (
	baseOrigin = "https://www.olx.pl"
	// listPath is the "rooms and lodgings" category; the city slug follows it.
	listPath = "/nieruchomosci/stancje-pokoje/"

	priceFilterKey = "search[filter_float_price:to]"
)

var cardRules = scraper.CardRules{
	Cards: scraper.Selectors{
		`[data-cy="l-card"]`,
		`[data-testid="l-card"]`,
		`div[data-cy="ad-card"]`,
		`a[href*="/d/oferta/"]`,
	},
	Containers: scraper.Selectors{
		`[data-cy="l-card"]`,
		`[data-testid="l-card"]`,
		`div[data-cy="ad-card"]`,
	},
	Link: scraper.Selectors{
		`a[href*="/d/oferta/"]`,
		`a[href*="otodom.pl"]`,
		`a[href]`,
	},
	DetailURL: regexp.MustCompile(`^https://(www\.)?(olx\.pl/d/oferta/|otodom\.pl/pl/oferta/)`),
	Title: scraper.Selectors{
		`[data-cy="ad-card-title"] h4`,
		`[data-cy="ad-card-title"] h6`,
		`[data-cy="ad-card-title"]`,
		`h4`,
		`h6`,
	},
	Price: scraper.Selectors{
		`[data-testid="ad-price"]`,
		`p[class*="price"]`,
	},
	Location: scraper.Selectors{
		`[data-testid="location-date"]`,
		`p[class*="location"]`,
	},
	Image: scraper.Selectors{
		`img`,
	},
	Area: scraper.Selectors{
		`[data-testid="blueprint-card-param-icon"] + span`,
		`span[class*="param"]`,
	},
	CleanLocation: cleanLocation,
}

var nextPage = scraper.Selectors{
	`[data-testid="pagination-forward"]`,
	`[data-cy="pagination-forward"]`,
	`a[aria-label="Next page"]`,
}

// Adapter crawls OLX "stancje i pokoje" listings for one city.
type Adapter struct {
	city string
	site scraper.Site
}

// New creates an OLX adapter for the given city slug (e.g. "warszawa").
func New(city, currency string) *Adapter {
	return &Adapter{
		city: strings.ToLower(strings.TrimSpace(city)),
		site: scraper.Site{
			Profile: models.SourceProfile{
				Source:          models.SourceOLX,
				BaseOrigin:      baseOrigin,
				DefaultTitle:    "Pokój do wynajęcia (OLX)",
				DefaultLocation: scraper.CityName(city),
				Currency:        currency,
			},
			ListingsSelector: `[data-cy="l-card"], [data-testid="l-card"]`,
			ConsentSelector:  `#onetrust-accept-btn-handler`,
			// OLX keeps serving its last page for out-of-range page numbers.
			StopWhenNoNew: true,
		},
	}
}

func (a *Adapter) Site() scraper.Site { return a.site }

func (a *Adapter) PageURL(opts models.SearchOptions, page int) string {
	u := baseOrigin + listPath + a.city + "/"

	q := url.Values{}
	if opts.MaxPrice != nil {
		q.Set(priceFilterKey, strconv.Itoa(*opts.MaxPrice))
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (a *Adapter) ExtractListings(doc *goquery.Document) ([]models.RawListing, error) {
	return cardRules.Extract(doc, baseOrigin), nil
}

func (a *Adapter) HasNextPage(doc *goquery.Document) bool {
	return scraper.HasEnabled(doc, nextPage)
}

// cleanLocation drops the "- Odświeżono dnia ..." date suffix OLX appends.
func cleanLocation(s string) string {
	if i := strings.Index(s, " - "); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

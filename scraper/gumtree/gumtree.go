package gumtree

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rooms-aggregator/models"
	"rooms-aggregator/scraper"
)

const (
	baseOrigin = "https://www.gumtree.pl"
	listPath   = "/s-pokoje-do-wynajecia/"
	// categoryCode identifies "pokoje do wynajęcia"; the location code is appended.
	categoryCode = "v1c9000"
)

// locationCodes maps city slugs to Gumtree's location identifiers.
var locationCodes = map[string]string{
	"warszawa": "l3200008",
	"krakow":   "l3200208",
	"wroclaw":  "l3200114",
	"poznan":   "l3200366",
	"gdansk":   "l3200070",
	"lodz":     "l3200003",
}

var cardRules = scraper.CardRules{
	Cards: scraper.Selectors{
		`div.tileV1`,
		`article.tile`,
		`li.result`,
		`a[href*="/a-pokoje-do-wynajecia/"]`,
	},
	Containers: scraper.Selectors{
		`div.tileV1`,
		`article.tile`,
		`li.result`,
	},
	Link: scraper.Selectors{
		`a.tile-title-text`,
		`a[href*="/a-pokoje-do-wynajecia/"]`,
		`a[href]`,
	},
	DetailURL: regexp.MustCompile(`^https://www\.gumtree\.pl/a-pokoje-do-wynajecia/`),
	Title: scraper.Selectors{
		`.tile-title-text`,
		`.title a`,
		`.title`,
	},
	Price: scraper.Selectors{
		`.ad-price`,
		`.price`,
	},
	Location: scraper.Selectors{
		`.tile-location`,
		`.category-location span`,
	},
	Image: scraper.Selectors{
		`.bolt-image img`,
		`img`,
	},
	CleanLocation: strings.TrimSpace,
}

var nextPage = scraper.Selectors{
	`a.arrows.icon-right-arrow`,
	`a[rel="next"]`,
	`a.next`,
}

// Adapter crawls Gumtree room rentals for one city.
type Adapter struct {
	city     string
	location string
	site     scraper.Site
}

// New creates a Gumtree adapter. Cities without a known location code fall
// back to Warszawa.
func New(city, currency string) *Adapter {
	city = strings.ToLower(strings.TrimSpace(city))
	code, ok := locationCodes[city]
	if !ok {
		city, code = "warszawa", locationCodes["warszawa"]
	}
	return &Adapter{
		city:     city,
		location: code,
		site: scraper.Site{
			Profile: models.SourceProfile{
				Source:          models.SourceGumtree,
				BaseOrigin:      baseOrigin,
				DefaultTitle:    "Pokój do wynajęcia (Gumtree)",
				DefaultLocation: scraper.CityName(city),
				Currency:        currency,
			},
			ListingsSelector: `div.tileV1, article.tile, li.result`,
			ConsentSelector:  `#onetrust-accept-btn-handler`,
			// Gumtree pages can be filled entirely with promoted repeats; rely on
			// the next control alone.
			StopWhenNoNew: false,
		},
	}
}

func (a *Adapter) Site() scraper.Site { return a.site }

func (a *Adapter) PageURL(opts models.SearchOptions, page int) string {
	var u string
	if page > 1 {
		u = fmt.Sprintf("%s%s%s/page-%d/%s%sp%d", baseOrigin, listPath, a.city, page, categoryCode, a.location, page)
	} else {
		u = fmt.Sprintf("%s%s%s/%s%s", baseOrigin, listPath, a.city, categoryCode, a.location)
	}

	if opts.MaxPrice != nil {
		q := url.Values{}
		q.Set("pr", ","+strconv.Itoa(*opts.MaxPrice))
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

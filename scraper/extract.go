package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rooms-aggregator/models"
	"rooms-aggregator/services"
)

// CardRules is a per-site table of selector priorities for listing cards.
type CardRules struct {
	// Cards locates candidate elements; the first selector with any match wins.
	Cards Selectors
	// Containers resolves a candidate to its enclosing listing card.
	Containers Selectors
	Link       Selectors
	// DetailURL must match the resolved link for the card to be kept.
	DetailURL *regexp.Regexp

	Title    Selectors
	Price    Selectors
	Location Selectors
	Image    Selectors
	// Area is optional; sites that do not show a floor area leave it empty.
	Area Selectors

	// CleanLocation post-processes the raw location text, if set.
	CleanLocation func(string) string
}

// Extract applies the rules to a rendered results page. Cards without a detail
// link are skipped, as are repeats of a URL already produced from this page.
func (r CardRules) Extract(doc *goquery.Document, baseOrigin string) []models.RawListing {
	var out []models.RawListing
	seen := make(map[string]struct{})

	r.Cards.FindDoc(doc).Each(func(_ int, el *goquery.Selection) {
		card := Container(el, r.Containers)
		if card.Get(0) != el.Get(0) && r.detailLinks(card, baseOrigin) > 1 {
			// A wrapper around several listings is not a card.
			card = el
		}

		href := Link(el, r.Link)
		if href == "" {
			href = Link(card, r.Link)
		}
		link, ok := services.CanonicalURL(baseOrigin, href)
		if !ok || (r.DetailURL != nil && !r.DetailURL.MatchString(link)) {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}

		location := r.Location.Text(card)
		if r.CleanLocation != nil {
			location = r.CleanLocation(location)
		}

		raw := models.RawListing{
			Title:    r.Title.Text(card),
			RawPrice: r.Price.Text(card),
			Location: location,
			URL:      link,
			ImageURL: imageRef(r.Image, card),
		}
		if len(r.Area) > 0 {
			raw.RawArea = r.Area.Text(card)
		}
		out = append(out, raw)
	})

	return out
}

// detailLinks counts the distinct detail URLs linked from inside s.
func (r CardRules) detailLinks(s *goquery.Selection, baseOrigin string) int {
	links := make(map[string]struct{})
	s.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		link, ok := services.CanonicalURL(baseOrigin, href)
		if ok && (r.DetailURL == nil || r.DetailURL.MatchString(link)) {
			links[link] = struct{}{}
		}
	})
	return len(links)
}

// imageRef returns the first usable image reference, skipping inline placeholders.
func imageRef(sels Selectors, card *goquery.Selection) string {
	img := sels.Find(card).First()
	for _, attr := range []string{"src", "data-src", "data-lazy", "srcset"} {
		v, ok := img.Attr(attr)
		v = strings.TrimSpace(v)
		if !ok || v == "" || strings.HasPrefix(v, "data:") {
			continue
		}
		if attr == "srcset" {
			v = strings.Fields(v)[0]
		}
		return v
	}
	return ""
}

// HasEnabled reports whether any of sels matches an element that is not marked
// disabled.
func HasEnabled(doc *goquery.Document, sels Selectors) bool {
	el := sels.FindDoc(doc).First()
	if el.Length() == 0 {
		return false
	}
	if _, ok := el.Attr("disabled"); ok {
		return false
	}
	if v, _ := el.Attr("aria-disabled"); v == "true" {
		return false
	}
	return !el.HasClass("disabled")
}

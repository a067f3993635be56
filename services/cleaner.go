package services

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"rooms-aggregator/models"
	"rooms-aggregator/utils"
)

const priceNumber = `(\d{1,3}(?:[ .]\d{3})+|\d+)(?:[.,]\d{1,2})?`

var (
	// currencyPriceRegexp captures the number directly in front of a currency marker.
	currencyPriceRegexp = regexp.MustCompile(`(?i)` + priceNumber + `\s*(?:zł|zl\b|pln)`)
	// numberRegexp captures the first number when no currency marker is present.
	numberRegexp = regexp.MustCompile(priceNumber)
	// areaRegexp captures "12 m²", "12,5 m2", "12m2".
	areaRegexp = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*m(?:²|2)`)
)

// Cleaner turns RawListings into normalized Listings using per-source fallbacks.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Normalize maps one raw record onto the shared schema. Missing fields resolve to
// the profile defaults or to absent values; it never fails.
func (c *Cleaner) Normalize(raw models.RawListing, p models.SourceProfile) models.Listing {
	title := normaliseText(raw.Title)
	if title == "" {
		title = p.DefaultTitle
	}
	location := normaliseText(raw.Location)
	if location == "" {
		location = p.DefaultLocation
	}

	listingURL, _ := CanonicalURL(p.BaseOrigin, raw.URL)
	imageURL, ok := ResolveURL(p.BaseOrigin, raw.ImageURL)
	if !ok {
		imageURL = ""
	}

	price := ParsePrice(raw.RawPrice)
	if price == nil && strings.TrimSpace(raw.RawPrice) != "" {
		c.logger.Debug("[cleaner] [%s] unparsable price %q for %s", p.Source, raw.RawPrice, listingURL)
	}

	return models.Listing{
		Title:    title,
		Price:    price,
		Currency: p.Currency,
		Location: location,
		URL:      listingURL,
		Source:   p.Source,
		RoomType: InferRoomType(title),
		Area:     ParseArea(raw.RawArea),
		ImageURL: imageURL,
	}
}

// ParsePrice extracts a whole-unit price from text such as "1 500 zł / mies.".
// It prefers the digits next to a currency marker and returns nil when no digits
// can be found.
func ParsePrice(raw string) *int {
	raw = strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(raw)

	m := currencyPriceRegexp.FindStringSubmatch(raw)
	if m == nil {
		m = numberRegexp.FindStringSubmatch(raw)
	}
	if len(m) < 2 {
		return nil
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, m[1])

	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// ParseArea extracts a floor area in square metres, or nil.
func ParseArea(raw string) *float64 {
	m := areaRegexp.FindStringSubmatch(raw)
	if len(m) < 2 {
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// ResolveURL turns an absolute, protocol-relative or relative reference into an
// absolute http(s) URL against base. Empty and non-http references are invalid.
func ResolveURL(base, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", false
	}

	abs := baseURL.ResolveReference(refURL)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	if abs.Host == "" {
		return "", false
	}
	return abs.String(), true
}

// CanonicalURL resolves ref like ResolveURL and drops the query and fragment, so
// tracking parameters never split one listing into two identities.
func CanonicalURL(base, ref string) (string, bool) {
	abs, ok := ResolveURL(base, ref)
	if !ok {
		return "", false
	}
	u, err := url.Parse(abs)
	if err != nil {
		return "", false
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), true
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}

package services

import (
	"cmp"
	"slices"

	"rooms-aggregator/models"
)

// Filter returns the listings matching the requested room type and price ceiling.
// A listing without a price is never excluded by the ceiling. The input is not modified.
func Filter(listings []models.Listing, opts models.SearchOptions) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if opts.RoomType != "" && !Classify(l.Title, opts.RoomType) {
			continue
		}
		if opts.MaxPrice != nil && l.Price != nil && *l.Price > *opts.MaxPrice {
			continue
		}
		out = append(out, l)
	}
	return out
}

// SortByPrice stably orders listings by ascending price with unpriced listings last.
func SortByPrice(listings []models.Listing) {
	slices.SortStableFunc(listings, comparePrice)
}

func comparePrice(a, b models.Listing) int {
	switch {
	case a.Price == nil && b.Price == nil:
		return 0
	case a.Price == nil:
		return 1
	case b.Price == nil:
		return -1
	default:
		return cmp.Compare(*a.Price, *b.Price)
	}
}

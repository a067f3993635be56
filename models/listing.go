package models

import (
	"fmt"
	"strings"
)

// MaxPagesLimit is the hard ceiling on the page budget of a single crawl run.
const MaxPagesLimit = 10

// Source identifies which site adapter produced a listing.
type Source string

const (
	SourceOLX     Source = "olx"
	SourceGumtree Source = "gumtree"
)

// KnownSources lists every supported source in a fixed order.
var KnownSources = []Source{SourceOLX, SourceGumtree}

// ParseSource maps a user supplied name onto a known Source.
func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range KnownSources {
		if src == known {
			return src, nil
		}
	}
	return "", fmt.Errorf("unknown source %q", s)
}

// RoomType is a classification tag inferred from a listing title.
type RoomType string

const (
	RoomSingle    RoomType = "single"
	RoomShared    RoomType = "shared"
	RoomStudio    RoomType = "studio"
	RoomApartment RoomType = "apartment"
)

// RoomTypes lists every room type in classification priority order.
var RoomTypes = []RoomType{RoomSingle, RoomShared, RoomStudio, RoomApartment}

// ParseRoomType accepts an empty string as "no room type".
func ParseRoomType(s string) (RoomType, error) {
	rt := RoomType(strings.ToLower(strings.TrimSpace(s)))
	if rt == "" {
		return "", nil
	}
	for _, known := range RoomTypes {
		if rt == known {
			return rt, nil
		}
	}
	return "", fmt.Errorf("unknown room type %q", s)
}

// RawListing holds the unprocessed strings an adapter pulled out of one listing card.
type RawListing struct {
	Title    string
	RawPrice string
	Location string
	URL      string
	ImageURL string
	RawArea  string
}

// Listing is the normalized record shared by every source.
// Two listings with the same URL are the same listing.
type Listing struct {
	Title    string   `json:"title"`
	Price    *int     `json:"price"`
	Currency string   `json:"currency"`
	Location string   `json:"location"`
	URL      string   `json:"url"`
	Source   Source   `json:"source"`
	RoomType RoomType `json:"roomType,omitempty"`
	Area     *float64 `json:"area,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

// HasPrice reports whether a price could be determined for the listing.
func (l Listing) HasPrice() bool {
	return l.Price != nil
}

// SourceProfile carries the per-source fallbacks consumed by normalization.
type SourceProfile struct {
	Source          Source
	BaseOrigin      string
	DefaultTitle    string
	DefaultLocation string
	Currency        string
}

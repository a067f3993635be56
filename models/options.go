package models

import "fmt"

// SearchOptions are the caller supplied request parameters. All fields are optional:
// a nil MaxPrice, an empty RoomType and a zero Pages mean "not requested".
type SearchOptions struct {
	MaxPrice *int
	RoomType RoomType
	Pages    int
}

// Resolve validates the options and clamps Pages into [1, maxPages]. A zero Pages
// becomes defaultPages first. maxPages itself is clamped into [1, MaxPagesLimit].
func (o SearchOptions) Resolve(defaultPages, maxPages int) (SearchOptions, error) {
	if o.MaxPrice != nil && *o.MaxPrice < 0 {
		return o, fmt.Errorf("max price must be non-negative, got %d", *o.MaxPrice)
	}
	if _, err := ParseRoomType(string(o.RoomType)); err != nil {
		return o, err
	}

	maxPages = ClampPages(maxPages, MaxPagesLimit)
	pages := o.Pages
	if pages == 0 {
		pages = defaultPages
	}

	resolved := o
	resolved.Pages = ClampPages(pages, maxPages)
	return resolved, nil
}

// ClampPages forces n into [1, limit].
func ClampPages(n, limit int) int {
	if limit < 1 {
		limit = 1
	}
	if n < 1 {
		return 1
	}
	if n > limit {
		return limit
	}
	return n
}

// IntPtr is a small helper for optional integer fields.
func IntPtr(v int) *int { return &v }

package models

// InsightReport summarises an aggregated result set.
type InsightReport struct {
	TotalListings  int
	PricedListings int
	AveragePrice   float64
	MinPrice       int
	MaxPrice       int
	Cheapest       *Listing
	BySource       map[Source]int
	ByRoomType     map[RoomType]int
}

package services

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"rooms-aggregator/models"
	"rooms-aggregator/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(listings []models.Listing) *models.InsightReport {
	report := &models.InsightReport{
		BySource:   make(map[models.Source]int),
		ByRoomType: make(map[models.RoomType]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var total int
	for i := range listings {
		l := &listings[i]
		report.BySource[l.Source]++
		if l.RoomType != "" {
			report.ByRoomType[l.RoomType]++
		}
		if l.Price == nil {
			continue
		}

		price := *l.Price
		if report.PricedListings == 0 || price < report.MinPrice {
			report.MinPrice = price
			report.Cheapest = l
		}
		if report.PricedListings == 0 || price > report.MaxPrice {
			report.MaxPrice = price
		}
		report.PricedListings++
		total += price
	}

	if report.PricedListings > 0 {
		report.AveragePrice = round2(float64(total) / float64(report.PricedListings))
	}

	s.logger.Debug("[insights] %d listings, %d priced", report.TotalListings, report.PricedListings)
	return report
}

// Print writes a human readable summary of the report.
func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	line := strings.Repeat("─", 48)
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "  Listings found : %d (%d with price)\n", r.TotalListings, r.PricedListings)

	sources := make([]models.Source, 0, len(r.BySource))
	for src := range r.BySource {
		sources = append(sources, src)
	}
	slices.Sort(sources)
	for _, src := range sources {
		fmt.Fprintf(w, "    %-10s %d\n", src, r.BySource[src])
	}

	if r.PricedListings > 0 {
		fmt.Fprintf(w, "  Price range    : %d – %d (avg %.2f)\n", r.MinPrice, r.MaxPrice, r.AveragePrice)
	}
	if r.Cheapest != nil {
		fmt.Fprintf(w, "  Cheapest       : %s (%d %s)\n    %s\n",
			r.Cheapest.Title, *r.Cheapest.Price, r.Cheapest.Currency, r.Cheapest.URL)
	}
	for _, rt := range models.RoomTypes {
		if n := r.ByRoomType[rt]; n > 0 {
			fmt.Fprintf(w, "    %-10s %d\n", rt, n)
		}
	}
	fmt.Fprintln(w, line)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

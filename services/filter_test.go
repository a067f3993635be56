package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rooms-aggregator/models"
)

func listing(title string, price *int) models.Listing {
	return models.Listing{Title: title, Price: price, URL: "https://www.olx.pl/d/oferta/" + title}
}

func prices(ls []models.Listing) []*int {
	out := make([]*int, len(ls))
	for i, l := range ls {
		out[i] = l.Price
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		title string
		rt    models.RoomType
		want  bool
	}{
		{"Pokój JEDNOOSOBOWY blisko metra", models.RoomSingle, true},
		{"Pokój 1-osobowy Ursynów", models.RoomSingle, true},
		{"Pokój dla jednej osoby", models.RoomSingle, true},
		{"Pokój dwuosobowy", models.RoomSingle, false},
		{"Pokój dwuosobowy", models.RoomShared, true},
		{"Kawalerka 25m2 Wola", models.RoomStudio, true},
		{"Mieszkanie 2 pokoje", models.RoomApartment, true},
		{"Pokój przy Politechnice", models.RoomApartment, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.title, tt.rt), "Classify(%q, %s)", tt.title, tt.rt)
	}
}

func TestInferRoomType(t *testing.T) {
	assert.Equal(t, models.RoomSingle, InferRoomType("Single room, Mokotów"))
	assert.Equal(t, models.RoomStudio, InferRoomType("Garsoniera na Pradze"))
	assert.Equal(t, models.RoomType(""), InferRoomType("Pokój do wynajęcia"))
}

func TestFilterByMaxPriceKeepsUnpriced(t *testing.T) {
	in := []models.Listing{
		listing("a", models.IntPtr(1500)),
		listing("b", nil),
		listing("c", models.IntPtr(2500)),
		listing("d", models.IntPtr(2000)),
	}

	out := Filter(in, models.SearchOptions{MaxPrice: models.IntPtr(2000)})
	require.Len(t, out, 3)
	for _, l := range out {
		if l.Price != nil {
			assert.LessOrEqual(t, *l.Price, 2000)
		}
	}
	assert.Len(t, in, 4, "input must not be modified")
}

func TestFilterByRoomType(t *testing.T) {
	in := []models.Listing{
		listing("Pokój jednoosobowy Wola", models.IntPtr(1200)),
		listing("Kawalerka Bemowo", models.IntPtr(2200)),
		listing("Pokój dla jednej osoby", nil),
	}

	out := Filter(in, models.SearchOptions{RoomType: models.RoomSingle})
	require.Len(t, out, 2)
	for _, l := range out {
		assert.True(t, Classify(l.Title, models.RoomSingle), l.Title)
	}
}

func TestFilterWithoutOptionsKeepsEverything(t *testing.T) {
	in := []models.Listing{listing("x", nil), listing("y", models.IntPtr(1))}
	assert.Equal(t, in, Filter(in, models.SearchOptions{}))
}

func TestSortByPriceNullsLastAndStable(t *testing.T) {
	ls := []models.Listing{
		listing("null-1", nil),
		listing("p900-a", models.IntPtr(900)),
		listing("p300", models.IntPtr(300)),
		listing("null-2", nil),
		listing("p900-b", models.IntPtr(900)),
	}

	SortByPrice(ls)

	titles := make([]string, len(ls))
	for i, l := range ls {
		titles[i] = l.Title
	}
	assert.Equal(t, []string{"p300", "p900-a", "p900-b", "null-1", "null-2"}, titles)

	again := append([]models.Listing(nil), ls...)
	SortByPrice(again)
	assert.Equal(t, ls, again, "re-sorting a sorted sequence must keep the order")
}

func TestFilterThenSortScenario(t *testing.T) {
	in := []models.Listing{
		listing("a", models.IntPtr(1500)),
		listing("b", nil),
		listing("c", models.IntPtr(2500)),
	}

	out := Filter(in, models.SearchOptions{MaxPrice: models.IntPtr(2000)})
	SortByPrice(out)

	require.Len(t, out, 2)
	got := prices(out)
	require.NotNil(t, got[0])
	assert.Equal(t, 1500, *got[0])
	assert.Nil(t, got[1])
}

package storage

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rooms-aggregator/models"
)

func area(v float64) *float64 { return &v }

func sample() []models.Listing {
	return []models.Listing{
		{
			Title: "Pokój jednoosobowy", Price: models.IntPtr(1500), Currency: "PLN",
			Location: "Warszawa, Mokotów", URL: "https://www.olx.pl/d/oferta/a-ID1.html",
			Source: models.SourceOLX, RoomType: models.RoomSingle, Area: area(12.5),
		},
		{
			Title: "Pokój dwuosobowy", Currency: "PLN", Location: "Wola",
			URL: "https://www.gumtree.pl/a-pokoje-do-wynajecia/wola/x/1", Source: models.SourceGumtree,
		},
	}
}

var (
	_ ListingWriter = (*CSVWriter)(nil)
	_ ListingWriter = (*JSONWriter)(nil)
	_ ListingWriter = (*PostgresWriter)(nil)
)

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "rooms.csv")

	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(sample()))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"olx", "Pokój jednoosobowy", "1500", "PLN", "single", "12.5", "Warszawa, Mokotów",
		"https://www.olx.pl/d/oferta/a-ID1.html", "",
	}, rows[1])
	assert.Equal(t, "", rows[2][2], "unknown price stays blank")
	assert.Equal(t, "", rows[2][5])
}

func TestJSONWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.json")

	w, err := NewJSONWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(sample()))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, float64(1500), got[0]["price"])
	assert.Equal(t, "single", got[0]["roomType"])
	assert.Nil(t, got[1]["price"], "unknown price is encoded as null")
	assert.NotContains(t, got[1], "area")
}

func TestJSONWriterEmptyIsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	w, err := NewJSONWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestBuildUpsert(t *testing.T) {
	query, args := buildUpsert("run-1", sample())

	assert.Contains(t, query, "($1,$2,$3,$4,$5,$6,$7,$8,$9,$10),($11,$12,$13,$14,$15,$16,$17,$18,$19,$20)")
	assert.Contains(t, query, "ON CONFLICT (url) DO UPDATE")
	require.Len(t, args, 2*insertColumns)
	assert.Equal(t, "run-1", args[0])
	assert.Equal(t, "olx", args[1])
	assert.Equal(t, "https://www.gumtree.pl/a-pokoje-do-wynajecia/wola/x/1", args[insertColumns+6])
	assert.Nil(t, args[insertColumns+3].(*int), "nil price is bound as NULL")
}

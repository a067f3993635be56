package olx

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rooms-aggregator/models"
)

const resultsPage = `<html><body>
<div data-testid="listing-grid">
  <div data-cy="l-card" id="1">
    <a href="/d/oferta/pokoj-mokotow-CID3-ID1.html?reason=extended">
      <div data-cy="ad-card-title"><h4>Pokój jednoosobowy Mokotów</h4></div>
    </a>
    <p data-testid="ad-price">1 500 zł</p>
    <p data-testid="location-date">Warszawa, Mokotów - Odświeżono dnia 12 października 2026</p>
    <img src="https://ireland.apollo.olxcdn.com/v1/files/abc/image" />
    <span class="css-param">12 m²</span>
  </div>
  <div data-cy="l-card" id="2">
    <a href="https://www.otodom.pl/pl/oferta/kawalerka-wola-ID2"><h6>Kawalerka Wola</h6></a>
    <p data-testid="location-date">Warszawa, Wola</p>
    <img src="data:image/gif;base64,R0lGOD" data-src="/img/2.jpg" />
  </div>
  <div data-cy="l-card" id="3">
    <div data-cy="ad-card-title"><h4>Reklama bez linku</h4></div>
  </div>
  <div data-cy="l-card" id="4">
    <a href="/oferty/uzytkownik/xyz/"><h4>Profil sprzedawcy</h4></a>
  </div>
  <div data-cy="l-card" id="5">
    <a href="/d/oferta/pokoj-mokotow-CID3-ID1.html#gallery"><h4>Pokój jednoosobowy Mokotów</h4></a>
  </div>
</div>
<div data-testid="pagination-wrapper">
  <a data-testid="pagination-forward" href="?page=2">next</a>
</div>
</body></html>`

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestPageURL(t *testing.T) {
	a := New("Warszawa", "PLN")

	assert.Equal(t, "https://www.olx.pl/nieruchomosci/stancje-pokoje/warszawa/",
		a.PageURL(models.SearchOptions{Pages: 3}, 1))
	assert.Equal(t, "https://www.olx.pl/nieruchomosci/stancje-pokoje/warszawa/?page=2",
		a.PageURL(models.SearchOptions{Pages: 3}, 2))
	assert.Equal(t,
		"https://www.olx.pl/nieruchomosci/stancje-pokoje/warszawa/?page=3&search%5Bfilter_float_price%3Ato%5D=2000",
		a.PageURL(models.SearchOptions{Pages: 3, MaxPrice: models.IntPtr(2000)}, 3))
}

func TestExtractListings(t *testing.T) {
	got, err := New("warszawa", "PLN").ExtractListings(doc(t, resultsPage))
	require.NoError(t, err)
	require.Len(t, got, 2, "cards without a detail link and in-page repeats are skipped")

	assert.Equal(t, models.RawListing{
		Title:    "Pokój jednoosobowy Mokotów",
		RawPrice: "1 500 zł",
		Location: "Warszawa, Mokotów",
		URL:      "https://www.olx.pl/d/oferta/pokoj-mokotow-CID3-ID1.html",
		ImageURL: "https://ireland.apollo.olxcdn.com/v1/files/abc/image",
		RawArea:  "12 m²",
	}, got[0])

	assert.Equal(t, "Kawalerka Wola", got[1].Title)
	assert.Empty(t, got[1].RawPrice)
	assert.Equal(t, "https://www.otodom.pl/pl/oferta/kawalerka-wola-ID2", got[1].URL)
	assert.Equal(t, "/img/2.jpg", got[1].ImageURL, "inline placeholders fall through to data-src")
}

func TestExtractListingsFallsBackToLinkCards(t *testing.T) {
	html := `<html><body><div class="grid">
	  <a href="/d/oferta/pokoj-a-ID1.html"><h6>Pokój jednoosobowy A</h6><p class="css-price">900 zł</p></a>
	  <a href="/d/oferta/kawalerka-b-ID2.html"><h6>Kawalerka B</h6><p class="css-price">2600 zł</p></a>
	  <a href="/d/oferta/stancja-c-ID3.html"><h6>Stancja C</h6></a>
	</div></body></html>`

	got, err := New("krakow", "PLN").ExtractListings(doc(t, html))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "https://www.olx.pl/d/oferta/pokoj-a-ID1.html", got[0].URL)
	assert.Equal(t, "Pokój jednoosobowy A", got[0].Title)
	assert.Equal(t, "900 zł", got[0].RawPrice)

	assert.Equal(t, "https://www.olx.pl/d/oferta/kawalerka-b-ID2.html", got[1].URL)
	assert.Equal(t, "Kawalerka B", got[1].Title, "fields come from the link's own card, not the shared wrapper")
	assert.Equal(t, "2600 zł", got[1].RawPrice)

	assert.Equal(t, "Stancja C", got[2].Title)
	assert.Empty(t, got[2].RawPrice)
}

func TestHasNextPage(t *testing.T) {
	a := New("warszawa", "PLN")

	assert.True(t, a.HasNextPage(doc(t, resultsPage)))
	assert.False(t, a.HasNextPage(doc(t, `<html><body><p>koniec</p></body></html>`)))
	assert.False(t, a.HasNextPage(doc(t,
		`<html><body><a data-testid="pagination-forward" aria-disabled="true">next</a></body></html>`)))
}

func TestSite(t *testing.T) {
	s := New("gdansk", "PLN").Site()
	assert.Equal(t, models.SourceOLX, s.Profile.Source)
	assert.Equal(t, "Gdansk", s.Profile.DefaultLocation)
	assert.True(t, s.StopWhenNoNew)
	assert.NotEmpty(t, s.ListingsSelector)
}

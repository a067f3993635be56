package utils

import "testing"

func TestURLSetNoDuplicates(t *testing.T) {
	s := NewURLSet()

	if !s.Add("https://www.olx.pl/d/oferta/pokoj-1.html") {
		t.Error("first Add should return true")
	}
	if s.Add("https://www.olx.pl/d/oferta/pokoj-1.html") {
		t.Error("second Add of same URL should return false")
	}
	if !s.Add("https://www.olx.pl/d/oferta/pokoj-2.html") {
		t.Error("Add of a different URL should return true")
	}
}

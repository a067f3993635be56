package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors is an ordered list of CSS selectors for one field. Later entries are
// fallbacks, tried only when every earlier one matched nothing.
type Selectors []string

// Find returns the matches of the first selector that yields any.
func (ss Selectors) Find(s *goquery.Selection) *goquery.Selection {
	for _, sel := range ss {
		if found := s.Find(sel); found.Length() > 0 {
			return found
		}
	}
	return s.Slice(0, 0)
}

// FindDoc is Find over a whole document.
func (ss Selectors) FindDoc(doc *goquery.Document) *goquery.Selection {
	return ss.Find(doc.Selection)
}

// Text returns the trimmed text of the first matching element, or "".
func (ss Selectors) Text(s *goquery.Selection) string {
	return strings.TrimSpace(ss.Find(s).First().Text())
}

// Attr returns the first non-empty value among attrs on the first matching element.
func (ss Selectors) Attr(s *goquery.Selection, attrs ...string) string {
	el := ss.Find(s).First()
	for _, a := range attrs {
		if v, ok := el.Attr(a); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Container resolves the enclosing listing card of el: el itself when it matches
// one of cards, otherwise the closest ancestor that does, otherwise el.
func Container(el *goquery.Selection, cards Selectors) *goquery.Selection {
	for _, sel := range cards {
		if el.Is(sel) {
			return el
		}
		if c := el.Closest(sel); c.Length() > 0 {
			return c
		}
	}
	return el
}

// Link returns the href of el when el is an anchor, otherwise the href matched
// by links inside el.
func Link(el *goquery.Selection, links Selectors) string {
	if goquery.NodeName(el) == "a" {
		if href, ok := el.Attr("href"); ok && strings.TrimSpace(href) != "" {
			return strings.TrimSpace(href)
		}
	}
	return links.Attr(el, "href")
}

package oda

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"grocery-scraper/utils"
)

const tileHTML = `
<div>
  <article>
    <a href="/no/products/24049-tine-lettmelk/"></a>
    <h2>Tine Lettmelk 1,2%</h2>
    <p class="k-text-style--body-s">1,75 l</p>
    <span class="k-text-style--label-m k-text--weight-bold">kr 35,30</span>
    <p class="k-text-style--label-s k-text-color--subdued">kr 20,17/l</p>
    <img src="https://images.oda.com/lettmelk.jpg">
  </article>
  <article>
    <h2>Uten pris</h2>
    <p class="k-text-style--body-s">500 g</p>
  </article>
  <article>
    <h2></h2>
    <span class="k-text-style--label-m">kr 10,00</span>
  </article>
</div>`

func testScraper() *Scraper {
	return &Scraper{logger: utils.NewLogger(), visitedURL: utils.NewURLSet()}
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestProductFromTile(t *testing.T) {
	s := testScraper()
	doc := parseDoc(t, tileHTML)

	tile := doc.Find("article").First()
	p := s.productFromTile(tile, "meieri-egg", "Melk")
	if p == nil {
		t.Fatal("expected a product from the first tile")
	}

	if p.Name != "Tine Lettmelk 1,2%" {
		t.Errorf("name: got %q", p.Name)
	}
	if p.Info != "1,75 l" {
		t.Errorf("info: got %q", p.Info)
	}
	if p.Price != 35.30 {
		t.Errorf("price: got %.2f, want 35.30", p.Price)
	}
	if p.UnitPrice != "kr 20,17/l" {
		t.Errorf("unit price: got %q", p.UnitPrice)
	}
	if p.URL != "https://oda.com/no/products/24049-tine-lettmelk/" {
		t.Errorf("url: got %q", p.URL)
	}
	if p.Category != "meieri-egg" {
		t.Errorf("category: got %q", p.Category)
	}
	if len(p.ProductID) != 36 {
		t.Errorf("expected generated UUID product ID, got %q", p.ProductID)
	}
}

func TestProductFromTileSkipsIncomplete(t *testing.T) {
	s := testScraper()
	tiles := parseDoc(t, tileHTML).Find("article")

	// Second tile has no price, third has no name.
	if p := s.productFromTile(tiles.Eq(1), "meieri-egg", "Melk"); p != nil {
		t.Errorf("expected nil for tile without price, got %+v", p)
	}
	if p := s.productFromTile(tiles.Eq(2), "meieri-egg", "Melk"); p != nil {
		t.Errorf("expected nil for tile without name, got %+v", p)
	}
}

func TestFindPriceTextFallback(t *testing.T) {
	// No known price selectors, just a currency-bearing div.
	doc := parseDoc(t, `<article><h2>Vare</h2><div>kr 12,50</div></article>`)
	got := findPriceText(doc.Find("article").First())
	if got != "kr 12,50" {
		t.Errorf("fallback price text: got %q", got)
	}
}

func TestCountSuffixStripping(t *testing.T) {
	got := countSuffixRegexp.ReplaceAllString("Melk og melkedrikker (84)", "")
	if got != "Melk og melkedrikker" {
		t.Errorf("got %q", got)
	}
}

func TestAbsoluteURL(t *testing.T) {
	if got := absoluteURL("/no/products/1/"); got != "https://oda.com/no/products/1/" {
		t.Errorf("got %q", got)
	}
	if got := absoluteURL("https://cdn.oda.com/x.jpg"); got != "https://cdn.oda.com/x.jpg" {
		t.Errorf("got %q", got)
	}
}

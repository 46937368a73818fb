package meny

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"grocery-scraper/config"
	"grocery-scraper/utils"
)

const cardHTML = `
<ul class="ws-product-list-vertical">
  <li class="ws-product-list-vertical__item">
    <div class="ws-product-vertical">
      <a class="ws-product-vertical__link" href="/varer/meieri-egg/melk/lettmelk-7038010001925"></a>
      <h3 class="ws-product-vertical__title">Lettmelk 1,2%</h3>
      <p class="ws-product-vertical__subtitle">1,75l, TINE</p>
      <div class="ws-product-vertical__price">kr 35,30</div>
      <p class="ws-product-vertical__price-unit">kr 20,17/l</p>
      <img src="/bilder/lettmelk.jpg" alt="Lettmelk">
    </div>
  </li>
  <li class="ws-product-list-vertical__item">
    <div class="ws-product-vertical">
      <a class="ws-product-vertical__link" href="/varer/meieri-egg/egg/egg-12stk-7039610000318"></a>
      <h3 class="ws-product-vertical__title">Egg frittgående 12 stk</h3>
      <p class="ws-product-vertical__subtitle">str. L, PRIOR</p>
      <div class="ws-product-vertical__price">kr 52,90</div>
      <img src="https://bilder.meny.no/egg.jpg" alt="Egg">
    </div>
  </li>
</ul>`

func testScraper() *Scraper {
	return New(&config.Config{MaxRetries: 1, MaxPages: 1, RequestTimeoutSec: 5}, utils.NewLogger())
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestProductCards(t *testing.T) {
	doc := parseDoc(t, cardHTML)
	cards := productCards(doc)
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
}

func TestProductFromCard(t *testing.T) {
	s := testScraper()
	cards := productCards(parseDoc(t, cardHTML))

	p := s.productFromCard(cards[0], "melk")
	if p == nil {
		t.Fatal("expected a product from the first card")
	}

	if p.Name != "Lettmelk 1,2%" {
		t.Errorf("name: got %q", p.Name)
	}
	if p.Info != "1,75l, TINE" {
		t.Errorf("info: got %q", p.Info)
	}
	if p.Price != 35.30 {
		t.Errorf("price: got %.2f, want 35.30", p.Price)
	}
	if p.UnitPrice != "kr 20,17/l" {
		t.Errorf("unit price: got %q", p.UnitPrice)
	}
	if p.ProductID != "meieri-egg/melk/lettmelk-7038010001925" {
		t.Errorf("product ID: got %q", p.ProductID)
	}
	if p.URL != "https://meny.no/varer/meieri-egg/melk/lettmelk-7038010001925" {
		t.Errorf("url: got %q", p.URL)
	}
	if p.ImageURL != "https://meny.no/bilder/lettmelk.jpg" {
		t.Errorf("image url: got %q", p.ImageURL)
	}
	if p.Category != "melk" {
		t.Errorf("category: got %q", p.Category)
	}
}

func TestProductFromCardSkipsMissingPrice(t *testing.T) {
	s := testScraper()
	html := `<li class="ws-product-list-vertical__item"><div class="ws-product-vertical">
		<a class="ws-product-vertical__link" href="/varer/meieri-egg/melk/x-1"></a>
		<h3 class="ws-product-vertical__title">Uten pris</h3>
	</div></li>`
	doc := parseDoc(t, html)

	if p := s.productFromCard(doc.Find("li").First(), "melk"); p != nil {
		t.Errorf("expected nil product for card without price, got %+v", p)
	}
}

func TestValidProductURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"/varer/meieri-egg/melk/lettmelk-123", true},
		{"/varer/tilbud/ukens", false},
		{"/varer/nyheter/ny-vare", false},
		{"/varer/oppskrifter/pannekaker", false},
		{"/varer/", false},
		{"/om-oss", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := validProductURL(tt.url); got != tt.want {
			t.Errorf("validProductURL(%q) = %v; want %v", tt.url, got, tt.want)
		}
	}
}

func TestProductIDFromURL(t *testing.T) {
	id := productIDFromURL("/varer/meieri-egg/melk/lettmelk-123/")
	if id != "meieri-egg/melk/lettmelk-123" {
		t.Errorf("got %q", id)
	}

	// No /varer/ segment falls back to a generated UUID.
	id = productIDFromURL("/om-oss")
	if len(id) != 36 {
		t.Errorf("expected UUID fallback, got %q", id)
	}
}

func TestNextPageURL(t *testing.T) {
	got := nextPageURL("https://meny.no/varer/meieri-egg/melk/", 3)
	if got != "https://meny.no/varer/meieri-egg/melk/?page=3" {
		t.Errorf("got %q", got)
	}

	got = nextPageURL("https://meny.no/varer/melk/?page=2", 3)
	if !strings.Contains(got, "page=3") || strings.Contains(got, "page=2") {
		t.Errorf("page param not replaced: %q", got)
	}
}

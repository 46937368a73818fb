package meny

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"grocery-scraper/config"
	"grocery-scraper/models"
	"grocery-scraper/scraper"
	"grocery-scraper/utils"
)

const baseURL = "https://meny.no"

// Scraper scrapes product listings from meny.no. Meny serves its product
// grid as static HTML, paginated via a ?page=N query parameter.
type Scraper struct {
	cfg        *config.Config
	logger     *utils.Logger
	client     *resty.Client
	visitedURL *utils.URLSet
	retry      *utils.RetryConfig
}

// New creates a ready-to-use Meny scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	client := resty.New().
		SetHeader("User-Agent", cfg.UserAgent).
		SetTimeout(time.Duration(cfg.RequestTimeoutSec) * time.Second)

	return &Scraper{
		cfg:        cfg,
		logger:     logger,
		client:     client,
		visitedURL: utils.NewURLSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Products scrapes a category, following pagination until the page limit, the
// product limit, or an empty page.
func (s *Scraper) Products(ctx context.Context, category config.Category, maxProducts int) ([]*models.Product, error) {
	s.logger.Info("[meny] Scraping category %q — max pages: %d", category.Name, s.cfg.MaxPages)

	var products []*models.Product

	for page := 1; page <= s.cfg.MaxPages; page++ {
		pageURL := category.URL
		if page > 1 {
			pageURL = nextPageURL(category.URL, page)
		}

		doc, err := s.fetchDocument(ctx, pageURL)
		if err != nil {
			s.logger.Error("[meny] Page %d of %q failed: %v", page, category.Name, err)
			break
		}

		cards := productCards(doc)
		if len(cards) == 0 {
			s.logger.Info("[meny] No products on page %d of %q — ending pagination", page, category.Name)
			break
		}

		added := 0
		for _, card := range cards {
			p := s.productFromCard(card, category.Name)
			if p == nil {
				continue
			}
			if p.URL != "" && !s.visitedURL.Add(p.URL) {
				s.logger.Debug("[meny] Skipping duplicate: %s", p.URL)
				continue
			}
			products = append(products, p)
			added++

			if maxProducts > 0 && len(products) >= maxProducts {
				s.logger.Info("[meny] Reached product limit (%d) — stopping", maxProducts)
				return products, nil
			}
		}

		s.logger.Info("[meny] Page %d of %q done — %d products (total %d)",
			page, category.Name, added, len(products))

		select {
		case <-ctx.Done():
			return products, ctx.Err()
		case <-time.After(time.Duration(s.cfg.RateLimitMs) * time.Millisecond):
		}
	}

	return products, nil
}

// Close releases the underlying HTTP client resources.
func (s *Scraper) Close() error {
	s.client.GetClient().CloseIdleConnections()
	return nil
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	var doc *goquery.Document

	err := s.retry.Do(ctx, "meny-fetch", func() error {
		res, err := s.client.R().SetContext(ctx).Get(pageURL)
		if err != nil {
			return fmt.Errorf("get %s: %w", pageURL, err)
		}
		if res.StatusCode() != 200 {
			return fmt.Errorf("get %s: unexpected status %d", pageURL, res.StatusCode())
		}

		doc, err = goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
		if err != nil {
			return fmt.Errorf("parse %s: %w", pageURL, err)
		}
		return nil
	})

	return doc, err
}

// productCards finds the product card nodes on a category page, falling back
// to looser selectors when Meny's markup shifts.
func productCards(doc *goquery.Document) []*goquery.Selection {
	var cards []*goquery.Selection

	doc.Find("li.ws-product-list-vertical__item").Each(func(_ int, sel *goquery.Selection) {
		cards = append(cards, sel)
	})
	if len(cards) > 0 {
		return cards
	}

	doc.Find("div.ws-product-vertical").Each(func(_ int, sel *goquery.Selection) {
		cards = append(cards, sel)
	})
	if len(cards) > 0 {
		return cards
	}

	// Last resort: list items that look like products (a price and an image).
	doc.Find("ul.ws-product-list-vertical li").Each(func(_ int, sel *goquery.Selection) {
		hasPrice := strings.Contains(sel.Text(), "kr")
		hasImage := sel.Find("img").Length() > 0
		if hasPrice && hasImage {
			cards = append(cards, sel)
		}
	})
	return cards
}

// productFromCard extracts a product from one card node. Cards missing a
// link or a price are skipped.
func (s *Scraper) productFromCard(card *goquery.Selection, category string) *models.Product {
	link := card.Find("a.ws-product-vertical__link").First()
	if link.Length() == 0 {
		link = card.Find("h3 a").First()
	}
	if link.Length() == 0 {
		s.logger.Warn("[meny] Could not find product link in card")
		return nil
	}

	href, _ := link.Attr("href")
	if !validProductURL(href) {
		return nil
	}
	productURL := absoluteURL(href)

	name := strings.TrimSpace(card.Find("h3.ws-product-vertical__title").First().Text())
	if name == "" {
		name = strings.TrimSpace(link.Text())
	}

	info := strings.TrimSpace(card.Find("p.ws-product-vertical__subtitle").First().Text())

	priceText := strings.TrimSpace(card.Find("div.ws-product-vertical__price").First().Text())
	if priceText == "" {
		s.logger.Warn("[meny] No price found for %q", name)
		return nil
	}

	unitPrice := strings.TrimSpace(card.Find("p.ws-product-vertical__price-unit").First().Text())

	imageURL, _ := card.Find("img").First().Attr("src")
	if imageURL != "" {
		imageURL = absoluteURL(imageURL)
	}

	return &models.Product{
		ProductID:  productIDFromURL(href),
		Name:       name,
		Info:       info,
		Price:      scraper.ParsePrice(priceText),
		PriceText:  priceText,
		UnitPrice:  unitPrice,
		ImageURL:   imageURL,
		Category:   category,
		URL:        productURL,
		Attributes: make(map[string]any),
		ScrapedAt:  time.Now(),
	}
}

// productIDFromURL derives a product ID from the /varer/<id> path segment,
// falling back to a random UUID.
func productIDFromURL(href string) string {
	if idx := strings.Index(href, "/varer/"); idx >= 0 {
		id := strings.Trim(href[idx+len("/varer/"):], "/")
		if id != "" {
			return id
		}
	}
	return uuid.NewString()
}

// validProductURL filters out category landing pages and special sections.
func validProductURL(href string) bool {
	if href == "" || !strings.Contains(href, "/varer/") {
		return false
	}
	for _, pattern := range []string{"/varer/tilbud/", "/varer/nyheter/", "/varer/oppskrifter/"} {
		if strings.Contains(href, pattern) {
			return false
		}
	}
	parts := strings.SplitN(href, "/varer/", 2)
	return len(parts) == 2 && parts[1] != ""
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return baseURL + href
}

// nextPageURL sets or replaces the page query parameter on a category URL.
func nextPageURL(current string, page int) string {
	u, err := url.Parse(current)
	if err != nil {
		return current
	}
	q := u.Query()
	q.Set("page", fmt.Sprintf("%d", page))
	u.RawQuery = q.Encode()
	return u.String()
}

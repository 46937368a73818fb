package oda

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"grocery-scraper/config"
	"grocery-scraper/models"
	"grocery-scraper/scraper"
	"grocery-scraper/utils"
)

const baseURL = "https://oda.com"

// Scraper scrapes product listings from oda.com. Oda renders its product
// grid client-side, so pages are loaded in a headless browser and the
// resulting HTML is parsed with goquery. A category page links to
// subcategory pages, each of which carries the actual product tiles.
type Scraper struct {
	cfg        *config.Config
	logger     *utils.Logger
	visitedURL *utils.URLSet
	retry      *utils.RetryConfig

	allocCtx    context.Context
	cancelAlloc context.CancelFunc
}

// New creates a ready-to-use Oda scraper with its own browser allocator.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	chromeBin := cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[oda] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	cancel := func() {
		cancelSilent()
		cancelAlloc()
	}

	return &Scraper{
		cfg:        cfg,
		logger:     logger,
		visitedURL: utils.NewURLSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		allocCtx:    silentCtx,
		cancelAlloc: cancel,
	}
}

// Products scrapes a category by visiting each of its subcategory pages.
func (s *Scraper) Products(ctx context.Context, category config.Category, maxProducts int) ([]*models.Product, error) {
	s.logger.Info("[oda] Scraping category %q", category.Name)

	subcategories, err := s.subcategories(ctx, category.URL)
	if err != nil {
		return nil, fmt.Errorf("oda: list subcategories: %w", err)
	}
	if len(subcategories) == 0 {
		// Category pages without a subcategory nav carry products directly.
		subcategories = []subcategory{{name: category.Name, url: category.URL}}
	}

	s.logger.Info("[oda] Found %d subcategories in %q", len(subcategories), category.Name)

	var products []*models.Product
	for _, sub := range subcategories {
		if !s.visitedURL.Add(sub.url) {
			s.logger.Debug("[oda] Skipping duplicate subcategory: %s", sub.url)
			continue
		}

		subProducts, err := s.subcategoryProducts(ctx, sub, category.Name)
		if err != nil {
			s.logger.Error("[oda] Subcategory %q failed: %v", sub.name, err)
			continue
		}
		products = append(products, subProducts...)

		s.logger.Info("[oda] Subcategory %q done — %d products (total %d)",
			sub.name, len(subProducts), len(products))

		if maxProducts > 0 && len(products) >= maxProducts {
			s.logger.Info("[oda] Reached product limit (%d) — stopping", maxProducts)
			return products[:maxProducts], nil
		}

		select {
		case <-ctx.Done():
			return products, ctx.Err()
		case <-time.After(time.Duration(s.cfg.RateLimitMs) * time.Millisecond):
		}
	}

	return products, nil
}

// Close shuts down the browser allocator.
func (s *Scraper) Close() error {
	s.cancelAlloc()
	return nil
}

type subcategory struct {
	name string
	url  string
}

// countSuffixRegexp strips trailing product counts like "Melk (84)".
var countSuffixRegexp = regexp.MustCompile(`\s*\(\d+\)\s*$`)

// subcategories renders a category page and collects its subcategory links.
func (s *Scraper) subcategories(ctx context.Context, categoryURL string) ([]subcategory, error) {
	doc, err := s.renderDocument(ctx, categoryURL)
	if err != nil {
		return nil, err
	}

	var subs []subcategory
	seen := make(map[string]struct{})

	doc.Find("section a[href*='/categories/']").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" || href == categoryURL {
			return
		}

		name := sel.Find("span").First().Text()
		if name == "" {
			name = sel.Text()
		}
		name = strings.TrimSpace(strings.ReplaceAll(name, "✓", ""))
		name = strings.TrimSpace(countSuffixRegexp.ReplaceAllString(name, ""))
		if name == "" {
			return
		}

		full := absoluteURL(href)
		if _, dup := seen[full]; dup {
			return
		}
		seen[full] = struct{}{}
		subs = append(subs, subcategory{name: name, url: full})
	})

	return subs, nil
}

// subcategoryProducts renders one subcategory page and extracts its tiles.
func (s *Scraper) subcategoryProducts(ctx context.Context, sub subcategory, category string) ([]*models.Product, error) {
	doc, err := s.renderDocument(ctx, sub.url)
	if err != nil {
		return nil, err
	}

	var products []*models.Product
	doc.Find("article").Each(func(_ int, tile *goquery.Selection) {
		p := s.productFromTile(tile, category, sub.name)
		if p == nil {
			return
		}
		if p.URL != "" && !s.visitedURL.Add(p.URL) {
			return
		}
		products = append(products, p)
	})

	return products, nil
}

// productFromTile extracts a product from one rendered tile. Tiles without a
// name or a price are skipped.
func (s *Scraper) productFromTile(tile *goquery.Selection, category, subcategoryName string) *models.Product {
	name := strings.TrimSpace(tile.Find("h2").First().Text())
	if name == "" {
		return nil
	}

	info := strings.TrimSpace(tile.Find("p.k-text-style--body-s").First().Text())

	priceText := findPriceText(tile)
	if priceText == "" {
		s.logger.Warn("[oda] No price found for %q", name)
		return nil
	}

	unitPrice := findUnitPriceText(tile)

	productURL := ""
	if href, ok := tile.Find("a[href*='/products/']").First().Attr("href"); ok {
		productURL = absoluteURL(href)
	}

	imageURL, _ := tile.Find("img").First().Attr("src")

	return &models.Product{
		ProductID:   uuid.NewString(),
		Name:        name,
		Info:        info,
		Price:       scraper.ParsePrice(priceText),
		PriceText:   priceText,
		UnitPrice:   unitPrice,
		ImageURL:    imageURL,
		Category:    category,
		Subcategory: "",
		URL:         productURL,
		Attributes:  make(map[string]any),
		ScrapedAt:   time.Now(),
	}
}

var digitRegexp = regexp.MustCompile(`\d`)

// findPriceText tries Oda's price selectors in order of specificity, then
// falls back to any currency-bearing text node in the tile.
func findPriceText(tile *goquery.Selection) string {
	selectors := []string{
		"span.k-text-style--label-m.k-text--weight-bold",
		"span.k-text-color--default",
		"span[class*='price']",
		"span.k-text-style--label-m",
	}
	for _, sel := range selectors {
		text := ""
		tile.Find(sel).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			t := strings.TrimSpace(el.Text())
			if strings.Contains(t, "kr") || digitRegexp.MatchString(t) {
				text = t
				return false
			}
			return true
		})
		if text != "" {
			return text
		}
	}

	text := ""
	tile.Find("span, div, p").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		t := strings.TrimSpace(el.Text())
		if strings.Contains(t, "kr") && digitRegexp.MatchString(t) {
			text = t
			return false
		}
		return true
	})
	return text
}

// findUnitPriceText looks for "kr/kg"-style unit prices.
func findUnitPriceText(tile *goquery.Selection) string {
	selectors := []string{
		"p.k-text-style--label-s.k-text-color--subdued",
		"p.k-text-style--label-s",
		"p[class*='subdued']",
	}
	for _, sel := range selectors {
		text := ""
		tile.Find(sel).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			t := strings.TrimSpace(el.Text())
			if strings.Contains(t, "/") && strings.Contains(t, "kr") {
				text = t
				return false
			}
			return true
		})
		if text != "" {
			return text
		}
	}
	return ""
}

// renderDocument loads a page in the headless browser, waits for the
// client-side render, and parses the resulting HTML.
func (s *Scraper) renderDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	var doc *goquery.Document

	err := s.retry.Do(ctx, "oda-render", func() error {
		tabCtx, cancel := chromedp.NewContext(s.allocCtx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, 90*time.Second)
		defer cancelTimeout()

		var html string
		err := chromedp.Run(tabCtx,
			chromedp.Navigate(pageURL),
			chromedp.Sleep(4*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),
			chromedp.OuterHTML("html", &html),
		)
		if err != nil {
			return fmt.Errorf("chromedp render %s: %w", pageURL, err)
		}

		doc, err = goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return fmt.Errorf("parse %s: %w", pageURL, err)
		}
		return nil
	})

	return doc, err
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return baseURL + href
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

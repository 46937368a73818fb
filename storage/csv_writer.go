package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"grocery-scraper/models"
)

var csvHeader = []string{
	"product_id", "name", "brand", "info", "price", "price_text", "unit_price",
	"image_url", "category", "subcategory", "url", "attributes", "scraped_at", "run_id",
}

// CSVWriter appends products to one CSV file per category per day, writing
// the header when a file is first created. The attribute bag is stored as a
// JSON column. It is safe for concurrent use.
type CSVWriter struct {
	mu  sync.Mutex
	dir string
}

// NewCSVWriter creates the output directory if needed.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{dir: dir}, nil
}

// Write appends all products, grouped by category.
func (c *CSVWriter) Write(products []*models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	byCategory := make(map[string][]*models.Product)
	for _, p := range products {
		cat := p.Category
		if cat == "" {
			cat = "uncategorized"
		}
		byCategory[cat] = append(byCategory[cat], p)
	}

	for cat, group := range byCategory {
		if err := c.writeCategory(cat, group); err != nil {
			return err
		}
	}
	return nil
}

func (c *CSVWriter) writeCategory(category string, products []*models.Product) error {
	path := c.filename(category)

	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("csv: write header: %w", err)
		}
	}

	for _, p := range products {
		attrs, err := json.Marshal(p.Attributes)
		if err != nil {
			return fmt.Errorf("csv: marshal attributes for %s: %w", p.ProductID, err)
		}
		row := []string{
			p.ProductID,
			p.Name,
			p.Brand,
			p.Info,
			strconv.FormatFloat(p.Price, 'f', 2, 64),
			p.PriceText,
			p.UnitPrice,
			p.ImageURL,
			p.Category,
			p.Subcategory,
			p.URL,
			string(attrs),
			p.ScrapedAt.Format(time.RFC3339),
			p.RunID,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// Clear removes previously written product CSV files from the output dir.
func (c *CSVWriter) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	matches, err := filepath.Glob(filepath.Join(c.dir, "products_*.csv"))
	if err != nil {
		return fmt.Errorf("csv: glob output dir: %w", err)
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return fmt.Errorf("csv: remove %q: %w", m, err)
		}
	}
	return nil
}

// Close is a no-op; files are opened and closed per write.
func (c *CSVWriter) Close() error { return nil }

func (c *CSVWriter) filename(category string) string {
	date := time.Now().Format("20060102")
	return filepath.Join(c.dir, fmt.Sprintf("products_%s_%s.csv", category, date))
}

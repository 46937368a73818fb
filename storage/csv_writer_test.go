package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"grocery-scraper/models"
)

func sampleProduct(id, category string) *models.Product {
	return &models.Product{
		ProductID:   id,
		Name:        "Lettmelk 1,2%",
		Brand:       "TINE",
		Info:        "1,75l, TINE",
		Price:       35.30,
		PriceText:   "kr 35,30",
		Category:    category,
		Subcategory: "melk",
		URL:         "https://meny.no/varer/" + id,
		Attributes:  map[string]any{"size_quantity": 1.75, "size_unit": "l"},
		ScrapedAt:   time.Now(),
		RunID:       "20250101_abc123def456",
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return rows
}

func TestCSVWriterWritesHeaderAndRows(t *testing.T) {
	dir := t.TempDir()
	w, err := NewCSVWriter(dir)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	products := []*models.Product{sampleProduct("p1", "melk"), sampleProduct("p2", "melk")}
	if err := w.Write(products); err != nil {
		t.Fatalf("Write: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "products_melk_*.csv"))
	if len(matches) != 1 {
		t.Fatalf("expected 1 output file, got %d", len(matches))
	}

	rows := readRows(t, matches[0])
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d rows", len(rows))
	}
	if rows[0][0] != "product_id" {
		t.Errorf("header: got %q", rows[0][0])
	}
	if rows[1][0] != "p1" || rows[2][0] != "p2" {
		t.Errorf("row order: got %q, %q", rows[1][0], rows[2][0])
	}
	if !strings.Contains(rows[1][11], `"size_unit":"l"`) {
		t.Errorf("attributes column should be JSON, got %q", rows[1][11])
	}
}

func TestCSVWriterAppendsWithoutDuplicateHeader(t *testing.T) {
	dir := t.TempDir()
	w, _ := NewCSVWriter(dir)

	if err := w.Write([]*models.Product{sampleProduct("p1", "melk")}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := w.Write([]*models.Product{sampleProduct("p2", "melk")}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "products_melk_*.csv"))
	rows := readRows(t, matches[0])
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows after append, got %d", len(rows))
	}
}

func TestCSVWriterGroupsByCategory(t *testing.T) {
	dir := t.TempDir()
	w, _ := NewCSVWriter(dir)

	products := []*models.Product{sampleProduct("p1", "melk"), sampleProduct("p2", "ost")}
	if err := w.Write(products); err != nil {
		t.Fatalf("Write: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "products_*.csv"))
	if len(matches) != 2 {
		t.Fatalf("expected 2 category files, got %d", len(matches))
	}
}

func TestCSVWriterClear(t *testing.T) {
	dir := t.TempDir()
	w, _ := NewCSVWriter(dir)

	if err := w.Write([]*models.Product{sampleProduct("p1", "melk")}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "products_*.csv"))
	if len(matches) != 0 {
		t.Errorf("expected no files after Clear, got %d", len(matches))
	}
}

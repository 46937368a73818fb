package models

import "time"

// Product is a single scraped grocery item. The scraper fills the raw fields
// (name, info, price) and the processing layer adds brand, subcategory and the
// extracted attribute bag. Attribute keys are only present when detected.
type Product struct {
	ProductID   string
	Name        string
	Brand       string
	Info        string
	Price       float64
	PriceText   string
	UnitPrice   string
	ImageURL    string
	Category    string
	Subcategory string
	URL         string
	Attributes  map[string]any
	ScrapedAt   time.Time
	RunID       string
}

// Clone returns a deep copy of the product. The attribute map is copied so
// extraction can work on the clone without touching the original.
func (p *Product) Clone() *Product {
	cp := *p
	cp.Attributes = make(map[string]any, len(p.Attributes))
	for k, v := range p.Attributes {
		cp.Attributes[k] = v
	}
	return &cp
}

// InsightReport holds the computed analytics over a processed dataset.
type InsightReport struct {
	TotalProducts         int
	AveragePrice          float64
	MinPrice              float64
	MaxPrice              float64
	MostExpensive         *Product
	ProductsBySubcategory map[string]int
	ProductsByBrand       map[string]int
}

package scraper

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"grocery-scraper/config"
	"grocery-scraper/models"
)

// Scraper is the interface every site scraper must satisfy.
type Scraper interface {
	// Products scrapes one category, up to maxProducts items (0 = no limit).
	Products(ctx context.Context, category config.Category, maxProducts int) ([]*models.Product, error)
	Close() error
}

// priceRegexp captures the numeric part of a Norwegian price string, with an
// optional "kr" prefix and comma decimal separator ("kr 35,30").
var priceRegexp = regexp.MustCompile(`(?:kr\s*)?(\d+[,.]\d+|\d+)`)

// ParsePrice extracts the numeric price value from a raw price string.
// Unparseable input yields 0.
func ParsePrice(text string) float64 {
	m := priceRegexp.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0
	}
	return f
}

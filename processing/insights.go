package processing

import (
	"fmt"
	"sort"
	"strings"

	"grocery-scraper/models"
	"grocery-scraper/utils"
)

// InsightService computes and prints summary analytics over a processed run.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(products []*models.Product) *models.InsightReport {
	report := &models.InsightReport{
		ProductsBySubcategory: make(map[string]int),
		ProductsByBrand:       make(map[string]int),
	}

	if len(products) == 0 {
		return report
	}

	report.TotalProducts = len(products)

	var priced []*models.Product
	for _, p := range products {
		if p.Price > 0 {
			priced = append(priced, p)
		}
		if p.Subcategory != "" {
			report.ProductsBySubcategory[p.Subcategory]++
		}
		if p.Brand != "" {
			report.ProductsByBrand[p.Brand]++
		}
	}

	if len(priced) > 0 {
		report.MinPrice = priced[0].Price
		report.MaxPrice = priced[0].Price
		report.MostExpensive = priced[0]
		var total float64
		for _, p := range priced {
			total += p.Price
			if p.Price < report.MinPrice {
				report.MinPrice = p.Price
			}
			if p.Price > report.MaxPrice {
				report.MaxPrice = p.Price
				report.MostExpensive = p
			}
		}
		report.AveragePrice = round2(total / float64(len(priced)))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}

	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 GROCERY SCRAPE INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total products scraped : \033[1m%d\033[0m\n", r.TotalProducts)
	fmt.Println()

	fmt.Printf("\033[1;33m  Price Statistics (kr)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.AveragePrice > 0 {
		fmt.Printf("  Average price : \033[1;32mkr %.2f\033[0m\n", r.AveragePrice)
		fmt.Printf("  Minimum price : \033[1;32mkr %.2f\033[0m\n", r.MinPrice)
		fmt.Printf("  Maximum price : \033[1;32mkr %.2f\033[0m\n", r.MaxPrice)
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	if r.MostExpensive != nil {
		fmt.Printf("\033[1;33m  Most Expensive Product\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostExpensive.Name, 50))
		fmt.Printf("  Brand : %s\n", r.MostExpensive.Brand)
		fmt.Printf("  Price : \033[1;31mkr %.2f\033[0m\n", r.MostExpensive.Price)
		fmt.Println()
	}

	printCounts("Products by Subcategory", thin, r.ProductsBySubcategory)
	fmt.Println()
	printCounts("Products by Brand", thin, r.ProductsByBrand)

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func printCounts(heading, thin string, counts map[string]int) {
	fmt.Printf("\033[1;33m  %s\033[0m\n", heading)
	fmt.Printf("  %s\n", thin)
	if len(counts) == 0 {
		fmt.Printf("  No data\n")
		return
	}

	type kv struct {
		key   string
		count int
	}
	var sorted []kv
	for k, c := range counts {
		sorted = append(sorted, kv{k, c})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].key < sorted[j].key
	})
	for _, e := range sorted {
		bar := strings.Repeat("█", min(e.count, 40))
		fmt.Printf("  %-24s %s (%d)\n", truncate(e.key, 22), bar, e.count)
	}
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

package scraper

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"kr 35,30", 35.30},
		{"kr 12", 12},
		{"35.50", 35.50},
		{"129,90 kr", 129.90},
		{"", 0},
		{"gratis", 0},
	}

	for _, tt := range tests {
		got := ParsePrice(tt.raw)
		if got != tt.want {
			t.Errorf("ParsePrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

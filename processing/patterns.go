package processing

import (
	"regexp"
	"strconv"
	"strings"
)

// Extraction patterns. All are searched case-insensitively and only the first
// match in the text counts. Numbers use comma-or-dot decimal separators;
// commas are normalized to dots before parsing.
var (
	// sizeRegexp matches "<number> <unit>", e.g. "1,75 l" or "500g".
	sizeRegexp = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(l|ml|g|kg|dl|cl|stk)`)
	// percentRegexp matches "<number>%" optionally followed by "fett".
	percentRegexp = regexp.MustCompile(`(\d+(?:[.,]\d+)?)%(?:\s+fett)?`)
	// multipackRegexp matches "<count>x<size><unit>", e.g. "4x125g".
	multipackRegexp = regexp.MustCompile(`(?i)(\d+)x(\d+(?:[.,]\d+)?)\s*(g|ml|l|kg|stk)`)
	// packQuantityRegexp is the fallback when multipack doesn't match, e.g. "6 pk".
	packQuantityRegexp = regexp.MustCompile(`(?i)(\d+)\s*(?:pk|stk|pakk|pakning)`)
	// eggSizeRegexp matches "str. M" / "størrelse XL".
	eggSizeRegexp = regexp.MustCompile(`(?i)(?:str\.?|størrelse)\s*(xs|s|m|l|xl)`)
	// eggQuantityRegexp matches "12 stk" / "6 egg".
	eggQuantityRegexp = regexp.MustCompile(`(?i)(\d+)\s*(?:stk|egg)`)
	// agingRegexp matches cheese aging durations, e.g. "12 mnd".
	agingRegexp = regexp.MustCompile(`(?i)(\d+)\s*(?:mnd|måned)`)
)

// parseDecimal parses a number that may use a comma as decimal separator.
func parseDecimal(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return f
}

// extractSize returns the first size quantity and lower-cased unit in info.
func extractSize(info string) (quantity float64, unit string, ok bool) {
	m := sizeRegexp.FindStringSubmatch(info)
	if m == nil {
		return 0, "", false
	}
	return parseDecimal(m[1]), strings.ToLower(m[2]), true
}

// extractFatContent returns the first percentage in info, used as fat content.
func extractFatContent(info string) (float64, bool) {
	m := percentRegexp.FindStringSubmatch(info)
	if m == nil {
		return 0, false
	}
	return parseDecimal(m[1]), true
}

// multipackInfo describes a product sold as N identical sub-units.
type multipackInfo struct {
	PackQuantity int
	UnitSize     float64
	Unit         string
}

// extractMultipack parses patterns like "4x125g" or "6x1,5l".
func extractMultipack(info string) (multipackInfo, bool) {
	m := multipackRegexp.FindStringSubmatch(info)
	if m == nil {
		return multipackInfo{}, false
	}
	count, _ := strconv.Atoi(m[1])
	return multipackInfo{
		PackQuantity: count,
		UnitSize:     parseDecimal(m[2]),
		Unit:         strings.ToLower(m[3]),
	}, true
}

// extractPackQuantity parses a bare pack count like "6 pk" or "4 pakning".
func extractPackQuantity(info string) (int, bool) {
	m := packQuantityRegexp.FindStringSubmatch(info)
	if m == nil {
		return 0, false
	}
	count, _ := strconv.Atoi(m[1])
	return count, true
}

// extractEggSize returns the upper-cased egg size class (XS..XL).
func extractEggSize(info string) (string, bool) {
	m := eggSizeRegexp.FindStringSubmatch(info)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// extractEggQuantity returns the egg count, e.g. 12 for "12 stk".
func extractEggQuantity(info string) (int, bool) {
	m := eggQuantityRegexp.FindStringSubmatch(info)
	if m == nil {
		return 0, false
	}
	count, _ := strconv.Atoi(m[1])
	return count, true
}

// extractAging returns a formatted cheese aging duration, e.g. "12 måneder".
func extractAging(info string) (string, bool) {
	m := agingRegexp.FindStringSubmatch(info)
	if m == nil {
		return "", false
	}
	return m[1] + " måneder", true
}

var (
	whitespaceRegexp = regexp.MustCompile(`\s+`)
	quoteRegexp      = regexp.MustCompile(`["']`)
)

// cleanText normalizes free text before matching: whitespace is collapsed,
// semicolons become commas and quote characters are stripped.
func cleanText(text string) string {
	text = strings.TrimSpace(whitespaceRegexp.ReplaceAllString(text, " "))
	text = strings.ReplaceAll(text, ";", ",")
	return quoteRegexp.ReplaceAllString(text, "")
}

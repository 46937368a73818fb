package processing

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// brandEntry maps a lower-cased keyword to the canonical brand display name.
type brandEntry struct {
	key  string
	name string
}

// brandTable is checked in order, so entries whose key contains another
// entry's key as a substring must come first ("q-meieriene" before "q",
// "synnøve finden" before "synnøve"). Keep it that way when adding brands.
var brandTable = []brandEntry{
	{"q-meieriene", "Q"},
	{"q meieriene", "Q"},
	{"synnøve finden", "Synnøve Finden"},
	{"synnøve", "Synnøve"},
	{"vita hjertego'", "Vita hjertego'"},
	{"go'morgen", "Go'morgen"},
	{"go'dag", "Go'dag"},
	{"go'", "Go'"},
	{"soft flora", "Soft Flora"},
	{"tine", "TINE"},
	{"oatly", "OATLY"},
	{"prior", "Prior"},
	{"melange", "Melange"},
	{"alpro", "Alpro"},
	{"rørosmeieriet", "Rørosmeieriet"},
	{"castello", "Castello"},
	{"kavli", "Kavli"},
	{"fjordland", "Fjordland"},
	{"yoplait", "Yoplait"},
	{"danonino", "Danonino"},
	{"helios", "Helios"},
	{"stange", "Stange"},
	{"sproud", "Sproud"},
	{"bremykt", "Bremykt"},
	{"mills", "Mills"},
	{"arla", "Arla"},
	{"galbani", "Galbani"},
	{"président", "Président"},
	{"becel", "Becel"},
	{"q", "Q"},
}

// ResolveBrand finds the brand for a product from its normalized info and
// name text. A non-empty known brand is returned untouched so callers never
// lose a value they already had. Resolution order: brand table lookup,
// upper-case comma segment, short trailing comma segment.
func ResolveBrand(info, name, known string) string {
	if known != "" {
		return known
	}

	text := strings.ToLower(info + " " + name)
	for _, entry := range brandTable {
		if strings.Contains(text, entry.key) {
			return entry.name
		}
	}

	// Brands are often an all-caps segment of the info text.
	for _, part := range strings.Split(info, ",") {
		part = strings.TrimSpace(part)
		if isUpperWord(part) {
			return part
		}
	}

	// Last resort: a short segment after the final comma.
	if idx := strings.LastIndex(info, ","); idx >= 0 {
		last := strings.TrimSpace(info[idx+1:])
		if utf8.RuneCountInString(last) < 20 {
			return last
		}
	}

	return ""
}

// isUpperWord reports whether s has at least two runes, contains a letter and
// no lower-case letters.
func isUpperWord(s string) bool {
	if utf8.RuneCountInString(s) < 2 {
		return false
	}
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

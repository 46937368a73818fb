package processing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveBrandDictionary(t *testing.T) {
	assert.Equal(t, "TINE", ResolveBrand("1,75l, TINE", "Tine Lettmelk", ""))
	assert.Equal(t, "OATLY", ResolveBrand("Havredrikk 1l, Oatly", "", ""))
	assert.Equal(t, "Prior", ResolveBrand("Egg fra frittgående høner, Prior", "", ""))
}

func TestResolveBrandKeepsKnownBrand(t *testing.T) {
	assert.Equal(t, "Eget Merke", ResolveBrand("1,75l, TINE", "Tine Lettmelk", "Eget Merke"))
}

func TestResolveBrandSpecificBeforeGeneral(t *testing.T) {
	// "synnøve finden" and "synnøve" resolve differently, so the table order
	// is observable here.
	assert.Equal(t, "Synnøve Finden", ResolveBrand("Gulost, Synnøve Finden", "", ""))
	assert.Equal(t, "Synnøve", ResolveBrand("Gulost, Synnøve", "", ""))

	// Both "q-meieriene" and the bare "q" map to Q; the short key still
	// catches texts without the full name.
	assert.Equal(t, "Q", ResolveBrand("Skummet melk, Q-meieriene", "", ""))
	assert.Equal(t, "Q", ResolveBrand("melk med q", "", ""))
}

// Overlapping keys must be ordered specific-before-general or the general
// entry shadows the specific one.
func TestBrandTableOrdering(t *testing.T) {
	for i, general := range brandTable {
		for j := i + 1; j < len(brandTable); j++ {
			specific := brandTable[j]
			if strings.Contains(specific.key, general.key) && specific.key != general.key {
				t.Errorf("brand key %q (index %d) shadows more specific %q (index %d)",
					general.key, i, specific.key, j)
			}
		}
	}
}

func TestResolveBrandUppercaseFallback(t *testing.T) {
	// No dictionary brand present, but an all-caps segment is.
	assert.Equal(t, "XYZ", ResolveBrand("Bærdrikk 1x, XYZ", "", ""))
}

func TestResolveBrandTrailingSegmentFallback(t *testing.T) {
	assert.Equal(t, "ukjent merke", ResolveBrand("Bærdrikk 1x, ukjent merke", "", ""))
}

func TestResolveBrandNoMatch(t *testing.T) {
	assert.Equal(t, "", ResolveBrand("Bærdrikk uten merke", "", ""))
}

package processing

import (
	"strings"
	"unicode"

	"grocery-scraper/models"
)

// Extras toggles the site-specific extraction stages. Meny uses the zero
// value; Oda enables all three.
type Extras struct {
	Cheese   bool
	Dietary  bool
	Features bool
}

// Extractor derives structured attributes from a product's free-text fields.
// It holds only read-only rule tables and is safe for concurrent use.
type Extractor struct {
	extras Extras
}

// NewExtractor creates an Extractor with the given optional stages.
func NewExtractor(extras Extras) *Extractor {
	return &Extractor{extras: extras}
}

// Extract returns a processed copy of the product: brand and subcategory are
// resolved when the input left them empty, and pattern-derived attributes are
// merged into the attribute bag. Products without info text are returned
// unchanged. The input product is never mutated.
func (e *Extractor) Extract(p *models.Product) *models.Product {
	if p.Info == "" {
		return p
	}

	out := p.Clone()

	name := cleanText(p.Name)
	info := cleanText(p.Info)

	out.Brand = ResolveBrand(info, name, p.Brand)
	if out.Subcategory == "" {
		out.Subcategory = ClassifySubcategory(name, info)
	}

	if qty, unit, ok := extractSize(info); ok {
		out.Attributes["size_quantity"] = qty
		out.Attributes["size_unit"] = unit
	}

	if fat, ok := extractFatContent(info); ok {
		out.Attributes["fat_content"] = fat
	}

	if mp, ok := extractMultipack(info); ok {
		out.Attributes["pack_quantity"] = mp.PackQuantity
		out.Attributes["unit_size"] = mp.UnitSize
		out.Attributes["unit_size_unit"] = mp.Unit
	} else if count, ok := extractPackQuantity(info); ok {
		out.Attributes["pack_quantity"] = count
	}

	if e.extras.Dietary {
		mergeDietary(out.Attributes, info)
	}
	if e.extras.Features {
		mergeFeatures(out.Attributes, name, info)
	}

	switch out.Subcategory {
	case "egg":
		mergeEggInfo(out.Attributes, info)
	case "ost":
		if e.extras.Cheese {
			mergeCheeseInfo(out.Attributes, info)
		}
	}

	return out
}

// eggTypes is checked in priority order; the first match wins.
var eggTypes = []string{"frittgående", "økologisk", "friland"}

func mergeEggInfo(attrs map[string]any, info string) {
	if size, ok := extractEggSize(info); ok {
		attrs["egg_size"] = size
	}
	if count, ok := extractEggQuantity(info); ok {
		attrs["egg_quantity"] = count
	}

	lower := strings.ToLower(info)
	for _, t := range eggTypes {
		if strings.Contains(lower, t) {
			attrs["egg_type"] = capitalize(t)
			break
		}
	}
}

// cheeseTypes is checked in order; the first match wins.
var cheeseTypes = []string{"hvit", "blå", "brie", "cheddar", "feta", "parmesan", "geitost", "brunost"}

func mergeCheeseInfo(attrs map[string]any, info string) {
	lower := strings.ToLower(info)

	switch {
	case strings.Contains(lower, "skivet") || strings.Contains(lower, "skiver"):
		attrs["preparation"] = "Skivet"
	case strings.Contains(lower, "revet") || strings.Contains(lower, "raspet"):
		attrs["preparation"] = "Revet"
	case strings.Contains(lower, "hel"):
		attrs["preparation"] = "Hel"
	}

	if aging, ok := extractAging(info); ok {
		attrs["aging"] = aging
	}

	for _, t := range cheeseTypes {
		if strings.Contains(lower, t) {
			attrs["cheese_type"] = capitalize(t)
			break
		}
	}
}

// dietaryChecks are independent flags, not mutually exclusive; all four are
// always written when the dietary stage is enabled.
var dietaryChecks = []struct {
	key      string
	keywords []string
}{
	{"lactose_free", []string{"laktosefri", "uten laktose"}},
	{"gluten_free", []string{"glutenfri", "uten gluten"}},
	{"organic", []string{"økologisk", "organic", "eco", "øko"}},
	{"vegan", []string{"vegansk", "vegan", "plantebasert"}},
}

func mergeDietary(attrs map[string]any, info string) {
	lower := strings.ToLower(info)
	for _, check := range dietaryChecks {
		found := false
		for _, kw := range check.keywords {
			if strings.Contains(lower, kw) {
				found = true
				break
			}
		}
		attrs[check.key] = found
	}
}

// flavors is checked in order; the first match wins.
var flavors = []string{
	"jordbær", "vanilje", "sjokolade", "bringebær", "blåbær", "skogsbær",
	"kakao", "karamell", "sitron", "eple", "kanel", "kardemomme", "banan",
}

// productTypeRules maps a product-type label to the keywords that select it,
// checked in order with first match winning.
var productTypeRules = []struct {
	name     string
	keywords []string
}{
	{"lettmelk", []string{"lettmelk", "lett melk"}},
	{"helmelk", []string{"helmelk", "hel melk"}},
	{"skummet", []string{"skummet", "skumma"}},
	{"kefir", []string{"kefir"}},
	{"kulturmelk", []string{"kulturmelk", "kulturmjølk"}},
	{"ekstra lett", []string{"ekstra lett", "extra lett"}},
}

func mergeFeatures(attrs map[string]any, name, info string) {
	combined := strings.ToLower(name + " " + info)

	for _, flavor := range flavors {
		if strings.Contains(combined, flavor) {
			attrs["flavor"] = capitalize(flavor)
			break
		}
	}

	for _, rule := range productTypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(combined, kw) {
				attrs["product_type"] = capitalize(rule.name)
				break
			}
		}
		if _, ok := attrs["product_type"]; ok {
			break
		}
	}
}

// capitalize upper-cases the first rune of s.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

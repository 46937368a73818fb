package processing

import "strings"

// SubcategoryOther is returned when no keyword set matches.
const SubcategoryOther = "other"

// subcategoryRule pairs a subcategory with the keywords that select it.
type subcategoryRule struct {
	name     string
	keywords []string
}

// subcategoryRules is evaluated top to bottom and the first rule with any
// keyword present in the text wins. The order is deliberate: a text like
// "meierismør med egg" must classify as smør, not egg. Do not reorder.
var subcategoryRules = []subcategoryRule{
	{"melk", []string{"melk", "lettmelk", "skummet", "mjølk", "litago", "helmelk", "kulturmjølk"}},
	{"plantebasert", []string{"havredrikk", "soyadrikk", "mandeldrikk", "mylk", "ikaffe", "plantebasert", "plantedrikk"}},
	{"ost", []string{"ost", "norvegia", "jarlsberg", "geitost", "mozzarella", "cheddar", "pizzaost", "manchego", "blue", "selbu blå", "parmigiano", "grana padano"}},
	{"smør", []string{"smør", "meierismør", "margarin", "melange", "soft flora", "brelett", "bremykt"}},
	{"egg", []string{"egg", "høner"}},
	{"fløte_rømme", []string{"rømme", "crème fraîche", "matfløte", "havrefløte", "imat", "matfrisk", "matfløyel", "fløte", "kremfløte"}},
	{"yoghurt", []string{"yoghurt", "skyr", "biola", "go'morgen", "activia", "go'dag"}},
	{"kjølte_desserter", []string{"pudding", "risgrøt", "rispudding", "risengrynsgrøt"}},
	{"cottage_cheese", []string{"cottage cheese", "kesam", "kvarg", "cottage"}},
}

// ClassifySubcategory maps a product's name and info text to one of the fixed
// subcategories, defaulting to "other".
func ClassifySubcategory(name, info string) string {
	text := strings.ToLower(name + " " + info)

	for _, rule := range subcategoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.name
			}
		}
	}

	return SubcategoryOther
}

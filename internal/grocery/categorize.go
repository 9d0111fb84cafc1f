package grocery

import "strings"

// Purchasing categories. Other is the fallback when nothing matches.
const (
	CategoryMeat    = "Meat"
	CategoryDairy   = "Dairy"
	CategoryProduce = "Produce"
	CategoryBakery  = "Bakery"
	CategoryPantry  = "Pantry"
	CategoryOther   = "Other"
)

var categories = []string{
	CategoryMeat,
	CategoryDairy,
	CategoryProduce,
	CategoryBakery,
	CategoryPantry,
	CategoryOther,
}

// Categories returns the closed set of category labels in display order.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// IsCategory reports whether s is exactly one of the known category labels.
func IsCategory(s string) bool {
	for _, c := range categories {
		if c == s {
			return true
		}
	}
	return false
}

// Rule maps a keyword to the category returned when the keyword is found
// inside an item name.
type Rule struct {
	Keyword  string
	Category string
}

// Ordered: the first keyword contained in a name decides its category.
var defaultRules = []Rule{
	{"chicken", CategoryMeat},
	{"beef", CategoryMeat},
	{"pork", CategoryMeat},
	{"fish", CategoryMeat},
	{"milk", CategoryDairy},
	{"cheese", CategoryDairy},
	{"butter", CategoryDairy},
	{"cream", CategoryDairy},
	{"yogurt", CategoryDairy},
	{"onion", CategoryProduce},
	{"garlic", CategoryProduce},
	{"tomato", CategoryProduce},
	{"carrot", CategoryProduce},
	{"potato", CategoryProduce},
	{"lettuce", CategoryProduce},
	{"spinach", CategoryProduce},
	{"banana", CategoryProduce},
	{"apple", CategoryProduce},
	{"bread", CategoryBakery},
	{"pasta", CategoryPantry},
	{"rice", CategoryPantry},
	{"flour", CategoryPantry},
	{"sugar", CategoryPantry},
	{"salt", CategoryPantry},
	{"pepper", CategoryPantry},
	{"oil", CategoryPantry},
}

// DefaultRules returns a copy of the built-in keyword table.
func DefaultRules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// Classifier assigns a category to free-text item names by keyword
// containment. It is immutable after construction and safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier from an ordered rule table. Keywords are
// lowercased; rules with an empty keyword are ignored.
func NewClassifier(rules []Rule) *Classifier {
	c := &Classifier{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		kw := strings.ToLower(r.Keyword)
		if kw == "" {
			continue
		}
		c.rules = append(c.rules, Rule{Keyword: kw, Category: r.Category})
	}
	return c
}

// Classify returns the category of the first rule whose keyword is a
// substring of the lowercased name, or CategoryOther.
//
// Matching is plain containment, not whole-word: "chicken broth" is Meat,
// and so is "fishers crackers".
func (c *Classifier) Classify(name string) string {
	lower := strings.ToLower(name)
	for _, r := range c.rules {
		if strings.Contains(lower, r.Keyword) {
			return r.Category
		}
	}
	return CategoryOther
}

var defaultClassifier = NewClassifier(defaultRules)

// Categorize classifies name with the built-in keyword table.
func Categorize(name string) string {
	return defaultClassifier.Classify(name)
}

var categoryAliases = map[string]string{
	"meat":       CategoryMeat,
	"meats":      CategoryMeat,
	"poultry":    CategoryMeat,
	"seafood":    CategoryMeat,
	"fish":       CategoryMeat,
	"butcher":    CategoryMeat,
	"dairy":      CategoryDairy,
	"eggs":       CategoryDairy,
	"cheese":     CategoryDairy,
	"produce":    CategoryProduce,
	"vegetables": CategoryProduce,
	"vegetable":  CategoryProduce,
	"fruits":     CategoryProduce,
	"fruit":      CategoryProduce,
	"fresh":      CategoryProduce,
	"bakery":     CategoryBakery,
	"bread":      CategoryBakery,
	"breads":     CategoryBakery,
	"pantry":     CategoryPantry,
	"grocery":    CategoryPantry,
	"groceries":  CategoryPantry,
	"grains":     CategoryPantry,
	"dry goods":  CategoryPantry,
	"canned":     CategoryPantry,
	"spices":     CategoryPantry,
	"other":      CategoryOther,
}

// NormalizeCategory maps a loosely spelled category ("Vegetables", " dairy. ")
// onto the closed set. ok is false when the label is not recognised.
func NormalizeCategory(label string) (category string, ok bool) {
	key := strings.ToLower(strings.TrimSpace(label))
	key = strings.Trim(key, ".!:;\"'`*-")
	key = strings.TrimSpace(key)
	if key == "" {
		return CategoryOther, false
	}
	if cat, found := categoryAliases[key]; found {
		return cat, true
	}
	return CategoryOther, false
}

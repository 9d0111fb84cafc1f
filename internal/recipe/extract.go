package recipe

import "github.com/dukerupert/hestia/internal/grocery"

// Defaults reported for every extraction; the text parser does not infer them.
const (
	DefaultServings = 4
	DefaultCookTime = "30 minutes"
)

// Ingredient is a candidate ingredient that has not been committed to any
// shopping list yet.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
}

// Extraction is the structured form of a pasted recipe.
type Extraction struct {
	Title       string       `json:"title"`
	Servings    int          `json:"servings"`
	CookTime    string       `json:"cookTime"`
	Ingredients []Ingredient `json:"ingredients"`
}

// Extractor parses recipe text and assigns a category to every ingredient.
type Extractor struct {
	parser     *Parser
	classifier *grocery.Classifier
}

// NewExtractor wires a parser and a classifier. Nil arguments select the
// defaults.
func NewExtractor(p *Parser, c *grocery.Classifier) *Extractor {
	if p == nil {
		p = NewParser()
	}
	if c == nil {
		c = grocery.NewClassifier(grocery.DefaultRules())
	}
	return &Extractor{parser: p, classifier: c}
}

// Extract parses text and classifies each extracted name.
func (e *Extractor) Extract(text string) Extraction {
	parsed := e.parser.Parse(text)
	out := Extraction{
		Title:       parsed.Title,
		Servings:    DefaultServings,
		CookTime:    DefaultCookTime,
		Ingredients: make([]Ingredient, 0, len(parsed.Lines)),
	}
	for _, l := range parsed.Lines {
		out.Ingredients = append(out.Ingredients, Ingredient{
			Name:     l.Name,
			Quantity: l.Quantity,
			Category: e.classifier.Classify(l.Name),
		})
	}
	return out
}

// Names returns the ingredient names in order, ready for reconciliation.
func Names(ingredients []Ingredient) []string {
	names := make([]string, len(ingredients))
	for i, ing := range ingredients {
		names[i] = ing.Name
	}
	return names
}

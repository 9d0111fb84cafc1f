package ai

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dukerupert/hestia/internal/grocery"
)

// SuggestedItem is a shopping item proposed by the model or a fallback list.
type SuggestedItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
}

var unitAliases = map[string]string{
	"kg": "kg", "kgs": "kg", "kilo": "kg", "kilos": "kg", "kilogram": "kg", "kilograms": "kg", "quilos": "kg",
	"g": "g", "gr": "g", "gram": "g", "grams": "g", "gramas": "g",
	"l": "L", "liter": "L", "liters": "L", "litre": "L", "litres": "L", "litros": "L",
	"ml": "ml", "milliliter": "ml", "milliliters": "ml", "millilitre": "ml", "mililitros": "ml",
	"unit": "unit", "units": "unit", "un": "unit", "unidade": "unit", "unidades": "unit",
	"pc": "unit", "pcs": "unit", "piece": "unit", "pieces": "unit", "each": "unit",
	"clove": "unit", "cloves": "unit", "dente": "unit", "dentes": "unit",
	"cup": "cup", "cups": "cup", "xícara": "cup", "xícaras": "cup",
	"tbsp": "tbsp", "tablespoon": "tbsp", "tablespoons": "tbsp", "colher": "tbsp", "colheres": "tbsp",
	"tsp": "tsp", "teaspoon": "tsp", "teaspoons": "tsp",
	"lb": "lb", "lbs": "lb", "pound": "lb", "pounds": "lb",
	"oz": "oz", "ounce": "oz", "ounces": "oz",
}

// NormalizeUnit maps a unit spelling onto kg, g, L, ml, unit, cup, tbsp,
// tsp, lb or oz. Anything unrecognised becomes "unit".
func NormalizeUnit(unit string) string {
	key := strings.ToLower(strings.TrimSpace(unit))
	key = strings.TrimSuffix(key, ".")
	if u, ok := unitAliases[key]; ok {
		return u
	}
	return "unit"
}

var fusedQuantity = regexp.MustCompile(`^(\d+(?:\.\d+)?)([^\d.]+)$`)

// ParseSectorResponse reads the "category: name qty unit, name qty unit" text
// format, one category per line. Lines whose category is not recognised are
// skipped. A product without a number gets quantity 1 and unit "unit".
func ParseSectorResponse(text string) []SuggestedItem {
	items := []SuggestedItem{}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		label, products, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		label = strings.TrimLeft(strings.TrimSpace(label), "-*• ")
		category, ok := grocery.NormalizeCategory(label)
		if !ok {
			continue
		}
		for _, product := range strings.Split(products, ",") {
			item, ok := parseProduct(product)
			if !ok {
				continue
			}
			item.Category = category
			items = append(items, item)
		}
	}
	return items
}

// parseProduct splits "ground beef 0.5 kg" into name, quantity and unit. The
// name runs up to the first numeric token.
func parseProduct(product string) (SuggestedItem, bool) {
	fields := strings.Fields(strings.TrimSpace(product))
	if len(fields) == 0 {
		return SuggestedItem{}, false
	}

	item := SuggestedItem{Quantity: 1, Unit: "unit"}
	for i, f := range fields {
		if i == 0 {
			continue
		}
		if q, ok := parseNumber(f); ok {
			item.Name = strings.Join(fields[:i], " ")
			item.Quantity = q
			if i+1 < len(fields) {
				item.Unit = NormalizeUnit(fields[i+1])
			}
			return finishItem(item)
		}
		if m := fusedQuantity.FindStringSubmatch(f); m != nil {
			q, _ := strconv.ParseFloat(m[1], 64)
			item.Name = strings.Join(fields[:i], " ")
			item.Quantity = q
			item.Unit = NormalizeUnit(m[2])
			return finishItem(item)
		}
	}
	item.Name = strings.Join(fields, " ")
	return finishItem(item)
}

func finishItem(item SuggestedItem) (SuggestedItem, bool) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return SuggestedItem{}, false
	}
	// NaN fails every comparison, so test for a positive finite value.
	if !(item.Quantity > 0) || math.IsInf(item.Quantity, 0) {
		item.Quantity = 1
	}
	return item, true
}

// parseNumber accepts finite decimal numbers only. strconv.ParseFloat also
// takes "nan" and "inf", which are words in a product name, not quantities.
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

type jsonItem struct {
	Name     string          `json:"name"`
	Quantity json.RawMessage `json:"quantity"`
	Unit     string          `json:"unit"`
	Category string          `json:"category"`
	Sector   string          `json:"sector"`
}

// parseJSONItems accepts {"<key>": [...]} or a bare array, optionally wrapped
// in a markdown code fence. ok is false when nothing usable was found.
func parseJSONItems(reply, key string, classifier *grocery.Classifier) ([]SuggestedItem, bool) {
	reply = stripFence(reply)

	var raw []jsonItem
	if strings.HasPrefix(reply, "[") {
		if err := json.Unmarshal([]byte(reply), &raw); err != nil {
			return nil, false
		}
	} else {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(reply), &obj); err != nil {
			return nil, false
		}
		if err := json.Unmarshal(obj[key], &raw); err != nil {
			return nil, false
		}
	}

	items := make([]SuggestedItem, 0, len(raw))
	for _, r := range raw {
		item, ok := finishItem(SuggestedItem{
			Name:     r.Name,
			Quantity: parseQuantity(r.Quantity),
			Unit:     NormalizeUnit(r.Unit),
		})
		if !ok {
			continue
		}
		label := r.Category
		if label == "" {
			label = r.Sector
		}
		if c, ok := grocery.NormalizeCategory(label); ok {
			item.Category = c
		} else {
			item.Category = classifier.Classify(item.Name)
		}
		items = append(items, item)
	}
	return items, len(items) > 0
}

// parseQuantity accepts 2, 2.5 or "2.5".
func parseQuantity(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, ok := parseNumber(strings.TrimSpace(s)); ok {
			return v
		}
	}
	return 0
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

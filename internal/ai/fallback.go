package ai

import (
	"math"
	"strings"

	"github.com/dukerupert/hestia/internal/grocery"
)

// staple is a fallback entry. Its quantity is per person unless fixed.
type staple struct {
	name     string
	quantity float64
	fixed    bool
	unit     string
	category string
}

var fallbackLists = map[string][]staple{
	"barbecue": {
		{name: "beef", quantity: 0.3, unit: "kg", category: grocery.CategoryMeat},
		{name: "garlic bread", quantity: 2, unit: "unit", category: grocery.CategoryBakery},
		{name: "onion", quantity: 1, unit: "kg", category: grocery.CategoryProduce},
		{name: "tomato", quantity: 0.5, unit: "kg", category: grocery.CategoryProduce},
		{name: "lettuce", quantity: 1, fixed: true, unit: "unit", category: grocery.CategoryProduce},
		{name: "rice", quantity: 0.2, unit: "kg", category: grocery.CategoryPantry},
		{name: "beans", quantity: 0.1, unit: "kg", category: grocery.CategoryPantry},
		{name: "beer", quantity: 2, unit: "unit", category: grocery.CategoryOther},
		{name: "soda", quantity: 1, unit: "unit", category: grocery.CategoryOther},
	},
	"dinner": {
		{name: "rice", quantity: 0.15, unit: "kg", category: grocery.CategoryPantry},
		{name: "beans", quantity: 0.1, unit: "kg", category: grocery.CategoryPantry},
		{name: "beef", quantity: 0.2, unit: "kg", category: grocery.CategoryMeat},
		{name: "bread", quantity: 1, unit: "unit", category: grocery.CategoryBakery},
		{name: "lettuce", quantity: 1, fixed: true, unit: "unit", category: grocery.CategoryProduce},
		{name: "tomato", quantity: 0.3, unit: "kg", category: grocery.CategoryProduce},
	},
	"breakfast": {
		{name: "bread", quantity: 2, unit: "unit", category: grocery.CategoryBakery},
		{name: "milk", quantity: 0.5, unit: "L", category: grocery.CategoryDairy},
		{name: "coffee", quantity: 0.05, unit: "kg", category: grocery.CategoryPantry},
		{name: "butter", quantity: 1, fixed: true, unit: "unit", category: grocery.CategoryDairy},
		{name: "cheese", quantity: 0.1, unit: "kg", category: grocery.CategoryDairy},
		{name: "eggs", quantity: 2, unit: "unit", category: grocery.CategoryDairy},
		{name: "banana", quantity: 1, unit: "unit", category: grocery.CategoryProduce},
		{name: "orange", quantity: 1, unit: "unit", category: grocery.CategoryProduce},
		{name: "oats", quantity: 0.1, unit: "kg", category: grocery.CategoryPantry},
		{name: "honey", quantity: 1, fixed: true, unit: "unit", category: grocery.CategoryPantry},
	},
}

var themeAliases = map[string]string{
	"bbq":           "barbecue",
	"cookout":       "barbecue",
	"churrasco":     "barbecue",
	"supper":        "dinner",
	"jantar":        "dinner",
	"brunch":        "breakfast",
	"café da manhã": "breakfast",
}

var fallbackRecipes = map[string][]staple{
	"lasagna": {
		{name: "lasagna sheets", quantity: 0.3, unit: "kg", category: grocery.CategoryPantry},
		{name: "ground beef", quantity: 0.2, unit: "kg", category: grocery.CategoryMeat},
		{name: "tomato sauce", quantity: 0.5, unit: "L", category: grocery.CategoryPantry},
		{name: "onion", quantity: 0.2, unit: "kg", category: grocery.CategoryProduce},
		{name: "garlic", quantity: 0.05, unit: "kg", category: grocery.CategoryProduce},
		{name: "mozzarella cheese", quantity: 0.2, unit: "kg", category: grocery.CategoryDairy},
		{name: "parmesan cheese", quantity: 0.1, unit: "kg", category: grocery.CategoryDairy},
		{name: "olive oil", quantity: 0.05, unit: "L", category: grocery.CategoryPantry},
		{name: "salt", quantity: 1, fixed: true, unit: "unit", category: grocery.CategoryPantry},
		{name: "pepper", quantity: 1, fixed: true, unit: "unit", category: grocery.CategoryPantry},
	},
	"feijoada": {
		{name: "black beans", quantity: 0.2, unit: "kg", category: grocery.CategoryPantry},
		{name: "pork", quantity: 0.3, unit: "kg", category: grocery.CategoryMeat},
		{name: "sausage", quantity: 0.2, unit: "kg", category: grocery.CategoryMeat},
		{name: "onion", quantity: 0.3, unit: "kg", category: grocery.CategoryProduce},
		{name: "garlic", quantity: 0.1, unit: "kg", category: grocery.CategoryProduce},
		{name: "orange", quantity: 1, unit: "unit", category: grocery.CategoryProduce},
		{name: "collard greens", quantity: 0.2, unit: "kg", category: grocery.CategoryProduce},
		{name: "rice", quantity: 0.15, unit: "kg", category: grocery.CategoryPantry},
		{name: "cassava flour", quantity: 0.1, unit: "kg", category: grocery.CategoryPantry},
	},
	"stroganoff": {
		{name: "chicken", quantity: 0.25, unit: "kg", category: grocery.CategoryMeat},
		{name: "heavy cream", quantity: 0.2, unit: "L", category: grocery.CategoryDairy},
		{name: "mushrooms", quantity: 0.1, unit: "kg", category: grocery.CategoryProduce},
		{name: "onion", quantity: 0.2, unit: "kg", category: grocery.CategoryProduce},
		{name: "garlic", quantity: 0.05, unit: "kg", category: grocery.CategoryProduce},
		{name: "ketchup", quantity: 0.1, unit: "L", category: grocery.CategoryPantry},
		{name: "mustard", quantity: 0.05, unit: "L", category: grocery.CategoryPantry},
		{name: "rice", quantity: 0.15, unit: "kg", category: grocery.CategoryPantry},
		{name: "potato sticks", quantity: 0.1, unit: "kg", category: grocery.CategoryPantry},
	},
	"risotto": {
		{name: "arborio rice", quantity: 0.15, unit: "kg", category: grocery.CategoryPantry},
		{name: "parmesan cheese", quantity: 0.1, unit: "kg", category: grocery.CategoryDairy},
		{name: "butter", quantity: 0.05, unit: "kg", category: grocery.CategoryDairy},
		{name: "onion", quantity: 0.2, unit: "kg", category: grocery.CategoryProduce},
		{name: "garlic", quantity: 0.05, unit: "kg", category: grocery.CategoryProduce},
		{name: "vegetable stock", quantity: 0.5, unit: "L", category: grocery.CategoryPantry},
		{name: "white wine", quantity: 0.1, unit: "L", category: grocery.CategoryOther},
		{name: "olive oil", quantity: 0.05, unit: "L", category: grocery.CategoryPantry},
	},
	"pizza": {
		{name: "flour", quantity: 0.3, unit: "kg", category: grocery.CategoryPantry},
		{name: "dry yeast", quantity: 0.02, unit: "kg", category: grocery.CategoryPantry},
		{name: "olive oil", quantity: 0.05, unit: "L", category: grocery.CategoryPantry},
		{name: "tomato sauce", quantity: 0.3, unit: "L", category: grocery.CategoryPantry},
		{name: "mozzarella cheese", quantity: 0.3, unit: "kg", category: grocery.CategoryDairy},
		{name: "tomato", quantity: 0.2, unit: "kg", category: grocery.CategoryProduce},
		{name: "basil", quantity: 0.05, unit: "kg", category: grocery.CategoryProduce},
		{name: "olives", quantity: 0.1, unit: "kg", category: grocery.CategoryPantry},
	},
}

var recipeAliases = map[string]string{
	"lasanha":    "lasagna",
	"lasagne":    "lasagna",
	"strogonoff": "stroganoff",
	"risoto":     "risotto",
}

func lookup(key string, aliases map[string]string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

// fallbackList returns the themed list, or the dinner list for unknown themes.
func fallbackList(theme string, people int) []SuggestedItem {
	list, ok := fallbackLists[lookup(theme, themeAliases)]
	if !ok {
		list = fallbackLists["dinner"]
	}
	return scale(list, people)
}

// fallbackRecipe returns the known recipe's ingredients, or a single
// placeholder item naming the recipe.
func fallbackRecipe(recipe string, people int) []SuggestedItem {
	if list, ok := fallbackRecipes[lookup(recipe, recipeAliases)]; ok {
		return scale(list, people)
	}
	return []SuggestedItem{{
		Name:     "ingredients for " + recipe,
		Quantity: 1,
		Unit:     "unit",
		Category: grocery.CategoryPantry,
	}}
}

func scale(list []staple, people int) []SuggestedItem {
	items := make([]SuggestedItem, len(list))
	for i, s := range list {
		q := s.quantity
		if !s.fixed {
			q = math.Round(q*float64(people)*100) / 100
		}
		items[i] = SuggestedItem{Name: s.name, Quantity: q, Unit: s.unit, Category: s.category}
	}
	return items
}

package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/hestia/internal/grocery"
)

const defaultCacheTTL = time.Hour

// Classification sources.
const (
	SourceAI       = "ai"
	SourceKeywords = "keywords"
)

// Classification is the category chosen for a product and where it came from.
type Classification struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Source   string `json:"source"`
}

type cacheEntry struct {
	result  Classification
	expires time.Time
}

// Service wraps a Generator with parsing, keyword fallbacks and a small
// classification cache. A nil Generator disables model calls entirely.
type Service struct {
	gen        Generator
	classifier *grocery.Classifier
	logger     *slog.Logger
	ttl        time.Duration
	now        func() time.Time

	mu        sync.RWMutex
	cache     map[string]cacheEntry
	nextPrune time.Time
}

func NewService(gen Generator, classifier *grocery.Classifier, logger *slog.Logger) *Service {
	if classifier == nil {
		classifier = grocery.NewClassifier(grocery.DefaultRules())
	}
	return &Service{
		gen:        gen,
		classifier: classifier,
		logger:     logger.With("component", "ai"),
		ttl:        defaultCacheTTL,
		now:        time.Now,
		cache:      make(map[string]cacheEntry),
	}
}

// Enabled reports whether a model backend is configured.
func (s *Service) Enabled() bool {
	return s.gen != nil
}

// ClassifyProduct asks the model for the product's category and falls back
// to the keyword classifier when the model fails or answers outside the
// known categories.
func (s *Service) ClassifyProduct(ctx context.Context, name string) Classification {
	name = strings.TrimSpace(name)
	key := strings.ToLower(name)

	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && s.now().Before(entry.expires) {
		entry.result.Name = name
		return entry.result
	}

	category, ok := s.askCategory(ctx, name)
	if !ok {
		// Keyword answers are not cached so the model is asked again once it
		// recovers.
		return Classification{Name: name, Category: s.classifier.Classify(name), Source: SourceKeywords}
	}

	result := Classification{Name: name, Category: category, Source: SourceAI}
	s.store(key, result)
	return result
}

// store caches result and sweeps expired entries at most once per TTL.
func (s *Service) store(key string, result Classification) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !now.Before(s.nextPrune) {
		for k, e := range s.cache {
			if !now.Before(e.expires) {
				delete(s.cache, k)
			}
		}
		s.nextPrune = now.Add(s.ttl)
	}
	s.cache[key] = cacheEntry{result: result, expires: now.Add(s.ttl)}
}

func (s *Service) cacheLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// KeywordCategory classifies name with the keyword rules only.
func (s *Service) KeywordCategory(name string) string {
	return s.classifier.Classify(name)
}

func (s *Service) askCategory(ctx context.Context, name string) (string, bool) {
	if s.gen == nil || name == "" {
		return "", false
	}
	reply, err := s.gen.Generate(ctx, classifyPrompt(name))
	if err != nil {
		s.logger.Warn("classify product failed", "product", name, "error", err)
		return "", false
	}
	first, _, _ := strings.Cut(strings.TrimSpace(reply), "\n")
	category, ok := grocery.NormalizeCategory(first)
	if !ok {
		s.logger.Debug("unrecognised category from model", "product", name, "reply", first)
	}
	return category, ok
}

// GenerateList proposes a shopping list for a theme such as "barbecue".
// It never fails: unusable model output falls back to a built-in list scaled
// to people.
func (s *Service) GenerateList(ctx context.Context, theme string, people int) []SuggestedItem {
	if people < 1 {
		people = 1
	}
	theme = strings.TrimSpace(theme)
	if items, ok := s.generate(ctx, listPrompt(theme, people), "items"); ok {
		return items
	}
	s.logger.Info("using fallback shopping list", "theme", theme, "people", people)
	return fallbackList(theme, people)
}

// RecipeIngredients proposes the ingredients needed to cook recipe for people.
func (s *Service) RecipeIngredients(ctx context.Context, recipe string, people int, difficulty string) []SuggestedItem {
	if people < 1 {
		people = 1
	}
	if strings.TrimSpace(difficulty) == "" {
		difficulty = "normal"
	}
	recipe = strings.TrimSpace(recipe)
	if items, ok := s.generate(ctx, recipePrompt(recipe, people, difficulty), "ingredients"); ok {
		return items
	}
	s.logger.Info("using fallback recipe ingredients", "recipe", recipe, "people", people)
	return fallbackRecipe(recipe, people)
}

// generate tries a JSON reply first, then the category text format.
func (s *Service) generate(ctx context.Context, prompt, key string) ([]SuggestedItem, bool) {
	if s.gen == nil {
		return nil, false
	}
	reply, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("generate failed", "error", err)
		return nil, false
	}
	if items, ok := parseJSONItems(reply, key, s.classifier); ok {
		return items, true
	}
	if items := ParseSectorResponse(reply); len(items) > 0 {
		return items, true
	}
	s.logger.Debug("unparseable model reply", "reply", reply)
	return nil, false
}

var categoryList = strings.Join(grocery.Categories(), ", ")

func classifyPrompt(product string) string {
	return fmt.Sprintf(`Classify the grocery product %q into one supermarket category.

Categories: %s

Answer with the category name only, no punctuation or extra text.`, product, categoryList)
}

func listPrompt(theme string, people int) string {
	return fmt.Sprintf(`Shopping list for %s (%d people).

Use ONLY these categories: %s

Format: category: product qty unit, product qty unit
Example:
Produce: tomato 0.5 kg, lettuce 1 unit, onion 0.3 kg
Pantry: rice 1 kg, beans 0.5 kg, oil 1 unit

Answer in the same format with 8 to 12 items.`, theme, people, categoryList)
}

func recipePrompt(recipe string, people int, difficulty string) string {
	return fmt.Sprintf(`Ingredient list for %s (%d people).

Difficulty: %s

Use ONLY these categories: %s

Format: category: ingredient qty unit, ingredient qty unit
Example:
Produce: tomato 0.5 kg, onion 0.3 kg, garlic 0.1 kg
Pantry: lasagna sheets 0.5 kg, tomato sauce 1 unit

Answer in the same format with every ingredient needed for %s.
Quantities must be proportional to %d people.`, recipe, people, difficulty, categoryList, recipe, people)
}

package recipe

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// UntitledRecipe is the title used when the text has no non-blank line.
const UntitledRecipe = "Untitled Recipe"

// DefaultUnits are the measurement units recognised by UnitQuantity. A unit
// ending in "s" also matches its singular form.
var DefaultUnits = []string{"cups", "tbsp", "tsp", "lbs", "oz", "cloves", "slices"}

// Strategy extracts a quantity and an ingredient name from a single trimmed
// line. ok is false when the line does not fit the pattern.
type Strategy func(line string) (quantity, name string, ok bool)

// regexpStrategy turns a pattern with two capture groups (quantity, name)
// into a Strategy. The pattern is not anchored.
func regexpStrategy(re *regexp.Regexp) Strategy {
	return func(line string) (string, string, bool) {
		m := re.FindStringSubmatch(line)
		if m == nil {
			return "", "", false
		}
		return m[1], strings.TrimSpace(m[2]), true
	}
}

// UnitQuantity matches "<number>[.<decimals>] <unit> <name>". The returned
// quantity includes the unit, e.g. "1 cup".
func UnitQuantity(units []string) Strategy {
	alts := make([]string, 0, len(units))
	for _, u := range units {
		u = strings.ToLower(strings.TrimSpace(u))
		if u == "" {
			continue
		}
		q := regexp.QuoteMeta(u)
		if strings.HasSuffix(u, "s") && len(u) > 1 {
			q = regexp.QuoteMeta(strings.TrimSuffix(u, "s")) + "s?"
		}
		alts = append(alts, q)
	}
	if len(alts) == 0 {
		return func(string) (string, string, bool) { return "", "", false }
	}
	re := regexp.MustCompile(`(?i)(\d+(?:\.\d+)?\s*(?:` + strings.Join(alts, "|") + `))\s+(.+)`)
	return regexpStrategy(re)
}

var (
	bareQuantityRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s+(.+)`)
	toTasteRe      = regexp.MustCompile(`(?i)(to taste)\s+(.+)`)
)

// BareQuantity matches "<number>[.<decimals>] <name>" with no unit.
func BareQuantity() Strategy {
	return regexpStrategy(bareQuantityRe)
}

// ToTaste matches "to taste <name>".
func ToTaste() Strategy {
	return regexpStrategy(toTasteRe)
}

// DefaultStrategies returns the standard cascade: unit quantity, bare
// quantity, then "to taste".
func DefaultStrategies() []Strategy {
	return []Strategy{UnitQuantity(DefaultUnits), BareQuantity(), ToTaste()}
}

// Line is one quantity and ingredient name pulled from recipe text.
type Line struct {
	Quantity string `json:"quantity"`
	Name     string `json:"name"`
}

// Parsed is the outcome of parsing a block of recipe text.
type Parsed struct {
	Title string `json:"title"`
	Lines []Line `json:"lines"`
}

// Parser runs an ordered list of strategies over each line of recipe text.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	strategies []Strategy
}

// NewParser returns a parser that tries strategies in order. With no
// strategies it uses DefaultStrategies.
func NewParser(strategies ...Strategy) *Parser {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	s := make([]Strategy, len(strategies))
	copy(s, strategies)
	return &Parser{strategies: s}
}

// Parse splits text into lines and keeps the first strategy match for each
// non-blank line. Lines no strategy accepts are dropped. The title is the
// first non-blank line.
func (p *Parser) Parse(text string) Parsed {
	out := Parsed{Title: UntitledRecipe, Lines: []Line{}}
	titled := false

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !titled {
			out.Title = line
			titled = true
		}
		for _, strategy := range p.strategies {
			qty, name, ok := strategy(line)
			if !ok || name == "" {
				continue
			}
			out.Lines = append(out.Lines, Line{Quantity: qty, Name: capitalize(name)})
			break
		}
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

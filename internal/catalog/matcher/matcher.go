// Package matcher resolves free-text food names, as typed on an intake
// form or a canteen note, to catalog food items.
package matcher

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

type MatchStatus int

const (
	Matched MatchStatus = iota
	Ambiguous
	Unmatched
)

func (s MatchStatus) String() string {
	switch s {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	case Unmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

// MarshalText lets the status serialize as its name in JSON responses.
func (s MatchStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Item is a catalog food item with its matching metadata.
type Item struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Keywords string    `json:"keywords"` // CSV like "rice,brown,boiled"
	Unit     string    `json:"unit"`
}

// MatchResult carries the outcome plus any quantity found in the text,
// e.g. "brown rice 150g" yields Quantity 150 and Unit "g".
type MatchResult struct {
	Status     MatchStatus `json:"status"`
	Item       *Item       `json:"item,omitempty"`
	Candidates []Item      `json:"candidates,omitempty"`
	Quantity   float64     `json:"quantity"`
	Unit       string      `json:"unit,omitempty"`
}

type Matcher struct {
	items          []Item
	itemNames      []string
	itemKeywordMap [][]string
}

const (
	variantWeight = 5
	regularWeight = 1
)

// Preparation and variety words. When the text names one, candidates that
// lack it are dropped.
var variantKeywords = map[string]bool{
	"boiled":   true,
	"fried":    true,
	"steamed":  true,
	"grilled":  true,
	"mashed":   true,
	"brown":    true,
	"white":    true,
	"skimmed":  true,
	"veg":      true,
	"chicken":  true,
	"fish":     true,
	"egg":      true,
	"diabetic": true,
	"saltless": true,
}

// New pre-tokenizes every item. An item without keywords is matched on the
// words of its name.
func New(items []Item) *Matcher {
	m := &Matcher{
		items:          items,
		itemNames:      make([]string, len(items)),
		itemKeywordMap: make([][]string, len(items)),
	}

	for i, item := range items {
		m.itemNames[i] = normalize(item.Name)

		source := item.Keywords
		if strings.TrimSpace(source) == "" {
			source = strings.ReplaceAll(m.itemNames[i], " ", ",")
		}
		seen := make(map[string]bool)
		keywords := make([]string, 0)
		for _, part := range strings.Split(source, ",") {
			for _, kw := range tokenize(normalize(part)) {
				if !seen[kw] {
					seen[kw] = true
					keywords = append(keywords, kw)
				}
			}
		}
		m.itemKeywordMap[i] = keywords
	}

	return m
}

// Match scores every item by keyword overlap with text. An exact name match
// wins outright.
func (m *Matcher) Match(text string) MatchResult {
	tokens := tokenize(normalize(text))
	qty, unit, descTokens := extractQuantity(tokens)
	desc := strings.Join(descTokens, " ")

	result := MatchResult{Status: Unmatched, Quantity: qty, Unit: unit}
	if desc == "" {
		return result
	}

	var exact []Item
	for i, name := range m.itemNames {
		if name == desc {
			exact = append(exact, m.items[i])
		}
	}
	if len(exact) == 1 {
		result.Status = Matched
		result.Item = &exact[0]
		return result
	}

	inputTokens := make(map[string]bool, len(descTokens))
	for _, tok := range descTokens {
		inputTokens[tok] = true
	}

	inputVariants := make(map[string]bool)
	for tok := range inputTokens {
		if variantKeywords[tok] {
			inputVariants[tok] = true
		}
	}

	type scoredItem struct {
		item  Item
		score int
	}

	var scored []scoredItem
	for i, item := range m.items {
		keywords := m.itemKeywordMap[i]

		if !hasAll(keywords, inputVariants) {
			continue
		}

		score := 0
		for _, kw := range keywords {
			if inputTokens[kw] {
				if variantKeywords[kw] {
					score += variantWeight
				} else {
					score += regularWeight
				}
			}
		}

		if score > 0 {
			scored = append(scored, scoredItem{item: item, score: score})
		}
	}

	if len(scored) == 0 {
		return result
	}

	maxScore := 0
	for _, s := range scored {
		if s.score > maxScore {
			maxScore = s.score
		}
	}

	var topScorers []Item
	for _, s := range scored {
		if s.score == maxScore {
			topScorers = append(topScorers, s.item)
		}
	}

	if len(topScorers) == 1 {
		result.Status = Matched
		result.Item = &topScorers[0]
		return result
	}

	result.Status = Ambiguous
	result.Candidates = topScorers
	return result
}

func hasAll(keywords []string, want map[string]bool) bool {
	for w := range want {
		found := false
		for _, kw := range keywords {
			if kw == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// normalize lowercases s and replaces anything that is not a letter, digit
// or decimal point with a space.
func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(strings.Trim(sb.String(), ".")), " ")
}

func tokenize(s string) []string {
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// extractQuantity pulls tokens like "150g", "200ml" or "2pcs" out of the
// description. The last one found wins; no token means quantity 1.
func extractQuantity(tokens []string) (qty float64, unit string, rest []string) {
	qty = 1
	rest = make([]string, 0, len(tokens))

	for _, tok := range tokens {
		parsedQty, parsedUnit, ok := parseQtyUnit(tok)
		if ok {
			qty = parsedQty
			unit = parsedUnit
		} else {
			rest = append(rest, tok)
		}
	}

	return qty, unit, rest
}

// parseQtyUnit parses a token like "150g" into (150, "g", true).
func parseQtyUnit(tok string) (float64, string, bool) {
	digitEnd := 0
	for i, r := range tok {
		if unicode.IsDigit(r) || r == '.' {
			digitEnd = i + 1
		} else {
			break
		}
	}
	if digitEnd == 0 || digitEnd == len(tok) {
		return 0, "", false
	}

	qty, err := strconv.ParseFloat(tok[:digitEnd], 64)
	if err != nil {
		return 0, "", false
	}

	unitPart := tok[digitEnd:]
	for _, r := range unitPart {
		if !unicode.IsLetter(r) {
			return 0, "", false
		}
	}

	return qty, unitPart, true
}

package matcher

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "mixed case",
			input:    "Brown Rice Boiled",
			expected: "brown rice boiled",
		},
		{
			name:     "multiple spaces",
			input:    "MILK   Skimmed",
			expected: "milk skimmed",
		},
		{
			name:     "comma separator",
			input:    "dal,fry",
			expected: "dal fry",
		},
		{
			name:     "brackets and trailing dot",
			input:    "Idli (steamed) 2.5pcs.",
			expected: "idli steamed 2.5pcs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalize(tt.input)
			if result != tt.expected {
				t.Errorf("normalize(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	input := "brown rice boiled 150g"
	tokens := tokenize(input)

	expectedTokens := []string{"brown", "rice", "boiled", "150g"}
	if len(tokens) != len(expectedTokens) {
		t.Fatalf("tokenize(%q) returned %d tokens, want %d", input, len(tokens), len(expectedTokens))
	}
	for i, expected := range expectedTokens {
		if tokens[i] != expected {
			t.Errorf("token[%d] = %q, want %q", i, tokens[i], expected)
		}
	}
}

func TestExtractQuantity(t *testing.T) {
	tests := []struct {
		name         string
		tokens       []string
		expectedQty  float64
		expectedUnit string
		expectedRest []string
	}{
		{
			name:         "150g",
			tokens:       []string{"brown", "rice", "150g"},
			expectedQty:  150,
			expectedUnit: "g",
			expectedRest: []string{"brown", "rice"},
		},
		{
			name:         "200ml",
			tokens:       []string{"milk", "200ml"},
			expectedQty:  200,
			expectedUnit: "ml",
			expectedRest: []string{"milk"},
		},
		{
			name:         "2.5pcs",
			tokens:       []string{"2.5pcs", "chapati"},
			expectedQty:  2.5,
			expectedUnit: "pcs",
			expectedRest: []string{"chapati"},
		},
		{
			name:         "bare number is not a quantity",
			tokens:       []string{"bed", "12"},
			expectedQty:  1,
			expectedUnit: "",
			expectedRest: []string{"bed", "12"},
		},
		{
			name:         "no quantity",
			tokens:       []string{"curd", "rice"},
			expectedQty:  1,
			expectedUnit: "",
			expectedRest: []string{"curd", "rice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty, unit, rest := extractQuantity(tt.tokens)

			if qty != tt.expectedQty {
				t.Errorf("extractQuantity(%v) qty = %f, want %f", tt.tokens, qty, tt.expectedQty)
			}
			if unit != tt.expectedUnit {
				t.Errorf("extractQuantity(%v) unit = %q, want %q", tt.tokens, unit, tt.expectedUnit)
			}
			if len(rest) != len(tt.expectedRest) {
				t.Errorf("extractQuantity(%v) rest length = %d, want %d", tt.tokens, len(rest), len(tt.expectedRest))
			} else {
				for i, r := range rest {
					if r != tt.expectedRest[i] {
						t.Errorf("extractQuantity(%v) rest[%d] = %q, want %q", tt.tokens, i, r, tt.expectedRest[i])
					}
				}
			}
		})
	}
}

func riceItems() []Item {
	return []Item{
		{
			ID:       uuid.MustParse("00000000-0000-0000-0000-000000000012"),
			Name:     "Brown Rice Boiled",
			Keywords: "rice,brown,boiled",
			Unit:     "g",
		},
		{
			ID:       uuid.MustParse("00000000-0000-0000-0000-000000000013"),
			Name:     "White Rice",
			Keywords: "rice,white,chawal",
			Unit:     "g",
		},
	}
}

func TestMatch_SingleMatchWithQuantity(t *testing.T) {
	matcher := New(riceItems())
	result := matcher.Match("Brown rice 150g")

	if result.Status != Matched {
		t.Fatalf("Match status = %v, want Matched", result.Status)
	}
	if result.Item == nil || result.Item.Name != "Brown Rice Boiled" {
		t.Fatalf("Matched item = %+v, want Brown Rice Boiled", result.Item)
	}
	if result.Quantity != 150 || result.Unit != "g" {
		t.Errorf("quantity = %v %q, want 150 g", result.Quantity, result.Unit)
	}
}

func TestMatch_Ambiguous(t *testing.T) {
	matcher := New(riceItems())
	result := matcher.Match("rice")

	if result.Status != Ambiguous {
		t.Errorf("Match status = %v, want Ambiguous", result.Status)
	}
	if len(result.Candidates) != 2 {
		t.Errorf("Candidates count = %d, want 2", len(result.Candidates))
	}
}

func TestMatch_Unmatched(t *testing.T) {
	matcher := New(riceItems())

	for _, text := range []string{"pizza margherita", "", "150g"} {
		if result := matcher.Match(text); result.Status != Unmatched {
			t.Errorf("Match(%q) status = %v, want Unmatched", text, result.Status)
		}
	}
}

func TestMatch_VariantFilter(t *testing.T) {
	items := []Item{
		{ID: uuid.New(), Name: "Fish Curry", Keywords: "fish,curry"},
		{ID: uuid.New(), Name: "Fried Fish", Keywords: "fish,fried"},
	}

	result := New(items).Match("fried fish")
	if result.Status != Matched {
		t.Fatalf("Match status = %v, want Matched", result.Status)
	}
	if result.Item.Name != "Fried Fish" {
		t.Errorf("Matched item = %q, want Fried Fish", result.Item.Name)
	}
}

func TestMatch_ExactNameWins(t *testing.T) {
	items := []Item{
		{ID: uuid.New(), Name: "Dal"},
		{ID: uuid.New(), Name: "Dal Tadka", Keywords: "dal,tadka"},
	}

	result := New(items).Match("DAL")
	if result.Status != Matched || result.Item.Name != "Dal" {
		t.Fatalf("expected exact match on Dal, got %v %+v", result.Status, result.Item)
	}
}

func TestMatch_NameUsedWhenNoKeywords(t *testing.T) {
	items := []Item{
		{ID: uuid.New(), Name: "Chapati", Unit: "pcs"},
		{ID: uuid.New(), Name: "Vegetable Soup", Unit: "ml"},
	}

	result := New(items).Match("2pcs chapati")
	if result.Status != Matched || result.Item.Name != "Chapati" {
		t.Fatalf("expected Chapati, got %v %+v", result.Status, result.Item)
	}
	if result.Quantity != 2 || result.Unit != "pcs" {
		t.Errorf("quantity = %v %q, want 2 pcs", result.Quantity, result.Unit)
	}
}

func TestMatchStatus_JSON(t *testing.T) {
	b, err := json.Marshal(MatchResult{Status: Ambiguous, Quantity: 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["status"] != "ambiguous" {
		t.Errorf("status = %v, want ambiguous", got["status"])
	}
}

package dietplan

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ward-diet/api/internal/enum"
)

// IntakeLine is the slice of a ledger entry or canteen order the totals need.
type IntakeLine struct {
	Category string
	Date     string
	FoodItem string
	Amount   string
	Unit     string
}

// ItemTotal is the summed quantity of one food item.
type ItemTotal struct {
	FoodItem string  `json:"food_item"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// MealItem is one food item inside a diet package or custom plan slot.
type MealItem struct {
	FoodItemID   string  `json:"foodItemId"`
	FoodItemName string  `json:"foodItemName"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	Time         string  `json:"time,omitempty"`
	Period       string  `json:"period,omitempty"`
}

// Nutrition is a calories/macro total.
type Nutrition struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
}

// CatalogItem is the price and nutrition reference for a food item.
type CatalogItem struct {
	ID            string
	Name          string
	Calories      float64
	Protein       float64
	Carbohydrates float64
	Fat           float64
	Price         decimal.Decimal
}

// Catalog resolves food items by id or by exact name. When several items
// share a name the first one wins.
type Catalog struct {
	byID   map[string]CatalogItem
	byName map[string]CatalogItem
}

// NewCatalog indexes items for lookups.
func NewCatalog(items []CatalogItem) Catalog {
	c := Catalog{
		byID:   make(map[string]CatalogItem, len(items)),
		byName: make(map[string]CatalogItem, len(items)),
	}
	for _, it := range items {
		if it.ID != "" {
			if _, ok := c.byID[it.ID]; !ok {
				c.byID[it.ID] = it
			}
		}
		if _, ok := c.byName[it.Name]; !ok {
			c.byName[it.Name] = it
		}
	}
	return c
}

// ByName looks up an item by its exact name.
func (c Catalog) ByName(name string) (CatalogItem, bool) {
	it, ok := c.byName[name]
	return it, ok
}

func (c Catalog) resolve(id, name string) (CatalogItem, bool) {
	if id != "" {
		if it, ok := c.byID[id]; ok {
			return it, true
		}
	}
	if name != "" {
		return c.ByName(name)
	}
	return CatalogItem{}, false
}

// ParseAmount reads the leading number of s the way a browser parseFloat
// does: "120g" is 120, "" and "abc" are 0. It never fails.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	end := numericPrefix(s)
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return i
}

// TotalQuantityByItem sums intake amounts per food item for one meal and
// one exact date. meal "" or "all" matches every category. Results keep the
// order in which items first appear; the unit is the last one seen.
func TotalQuantityByItem(lines []IntakeLine, meal, date string) []ItemTotal {
	allMeals := meal == "" || strings.EqualFold(meal, "all")
	var out []ItemTotal
	pos := make(map[string]int)
	for _, l := range lines {
		if l.Date != date {
			continue
		}
		if !allMeals && !strings.EqualFold(l.Category, meal) {
			continue
		}
		if l.FoodItem == "" {
			continue
		}
		qty := ParseAmount(l.Amount)
		if i, ok := pos[l.FoodItem]; ok {
			out[i].Quantity += qty
			out[i].Unit = l.Unit
			continue
		}
		pos[l.FoodItem] = len(out)
		out = append(out, ItemTotal{FoodItem: l.FoodItem, Quantity: qty, Unit: l.Unit})
	}
	return out
}

// TotalCost sums the catalog price of each delivered food item. Items that
// are not in the catalog cost nothing.
func TotalCost(deliveredItems []string, catalog Catalog) decimal.Decimal {
	total := decimal.Zero
	for _, name := range deliveredItems {
		if it, ok := catalog.ByName(name); ok {
			total = total.Add(it.Price)
		}
	}
	return total
}

// TotalNutrition sums per-item nutrition multiplied by quantity. A zero or
// negative quantity counts as one serving. Unresolved items contribute nothing.
func TotalNutrition(items []MealItem, catalog Catalog) Nutrition {
	var n Nutrition
	for _, mi := range items {
		food, ok := catalog.resolve(mi.FoodItemID, mi.FoodItemName)
		if !ok {
			continue
		}
		qty := servings(mi.Quantity)
		n.Calories += food.Calories * qty
		n.Protein += food.Protein * qty
		n.Carbohydrates += food.Carbohydrates * qty
		n.Fat += food.Fat * qty
	}
	return n
}

// PlanRate prices a set of meal items from the catalog, counting a zero or
// negative quantity as one serving.
func PlanRate(items []MealItem, catalog Catalog) decimal.Decimal {
	total := decimal.Zero
	for _, mi := range items {
		food, ok := catalog.resolve(mi.FoodItemID, mi.FoodItemName)
		if !ok {
			continue
		}
		total = total.Add(food.Price.Mul(decimal.NewFromFloat(servings(mi.Quantity))))
	}
	return total
}

// servings treats a missing, negative or unparseable quantity as one serving.
func servings(qty float64) float64 {
	if qty <= 0 || math.IsNaN(qty) {
		return 1
	}
	return qty
}

// AllMealItems flattens meal slots in serving order. Unknown slot names
// follow in alphabetical order.
func AllMealItems(meals map[string][]MealItem) []MealItem {
	var out []MealItem
	for _, slot := range orderedSlots(meals) {
		out = append(out, meals[slot]...)
	}
	return out
}

// FlattenMeals renders every item as "<name> - <qty> <unit>" for the
// kitchen ticket.
func FlattenMeals(meals map[string][]MealItem) []string {
	items := AllMealItems(meals)
	out := make([]string, 0, len(items))
	for _, mi := range items {
		out = append(out, mealItemLabel(mi))
	}
	return out
}

// MealItemsForSlot renders one slot's items with their serving time.
func MealItemsForSlot(meals map[string][]MealItem, slot string) []string {
	var out []string
	for key, items := range meals {
		if !strings.EqualFold(key, slot) {
			continue
		}
		for _, mi := range items {
			label := mealItemLabel(mi)
			if mi.Time != "" {
				label += " (" + FormatTime12Hour(mi.Time, mi.Period) + ")"
			}
			out = append(out, label)
		}
	}
	return out
}

// FormatTime12Hour turns "14:05" into "2:05 PM". An explicit period wins
// over the one implied by the hour.
func FormatTime12Hour(t, period string) string {
	if t == "" {
		return ""
	}
	h, m, _ := strings.Cut(t, ":")
	hour, err := strconv.Atoi(h)
	if err != nil {
		return t
	}
	if m == "" {
		m = "00"
	}
	if len(m) < 2 {
		m = "0" + m
	}
	ampm := "AM"
	if period != "" {
		ampm = strings.ToUpper(period)
	} else if hour >= 12 {
		ampm = "PM"
	}
	switch {
	case hour == 0:
		hour = 12
	case hour > 12:
		hour -= 12
	}
	return strconv.Itoa(hour) + ":" + m + " " + ampm
}

func mealItemLabel(mi MealItem) string {
	return mi.FoodItemName + " - " + strconv.FormatFloat(mi.Quantity, 'f', -1, 64) + " " + mi.Unit
}

func orderedSlots(meals map[string][]MealItem) []string {
	known := make(map[string]bool, len(enum.PackageSlots))
	var out []string
	for _, s := range enum.PackageSlots {
		known[s] = true
		if _, ok := meals[s]; ok {
			out = append(out, s)
		}
	}
	var extra []string
	for k := range meals {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

package dietplan

import (
	"math"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"120":     120,
		"120g":    120,
		" 2.5 ml": 2.5,
		".5":      0.5,
		"-3":      -3,
		"1e2":     100,
		"1e":      1,
		"":        0,
		"abc":     0,
		".":       0,
		"-":       0,
	}
	for in, want := range cases {
		if got := ParseAmount(in); got != want {
			t.Errorf("ParseAmount(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTotalQuantityByItem_GroupsAndOrders(t *testing.T) {
	lines := []IntakeLine{
		{Category: "Lunch", Date: "2024-06-01", FoodItem: "Rice", Amount: "100", Unit: "g"},
		{Category: "lunch", Date: "2024-06-01", FoodItem: "Dal", Amount: "50", Unit: "ml"},
		{Category: "Lunch", Date: "2024-06-01", FoodItem: "Rice", Amount: "bad", Unit: "g"},
		{Category: "Lunch", Date: "2024-06-01", FoodItem: "Rice", Amount: "25", Unit: "grams"},
		{Category: "Dinner", Date: "2024-06-01", FoodItem: "Rice", Amount: "500", Unit: "g"},
		{Category: "Lunch", Date: "2024-06-02", FoodItem: "Rice", Amount: "500", Unit: "g"},
		{Category: "Lunch", Date: "2024-06-01", FoodItem: "", Amount: "999", Unit: "g"},
	}
	got := TotalQuantityByItem(lines, "LUNCH", "2024-06-01")
	want := []ItemTotal{
		{FoodItem: "Rice", Quantity: 125, Unit: "grams"},
		{FoodItem: "Dal", Quantity: 50, Unit: "ml"},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestTotalQuantityByItem_AllMeals(t *testing.T) {
	lines := []IntakeLine{
		{Category: "Lunch", Date: "2024-06-01", FoodItem: "Rice", Amount: "100"},
		{Category: "Dinner", Date: "2024-06-01", FoodItem: "Rice", Amount: "50"},
	}
	for _, meal := range []string{"", "all"} {
		got := TotalQuantityByItem(lines, meal, "2024-06-01")
		if len(got) != 1 || got[0].Quantity != 150 {
			t.Errorf("meal %q: unexpected totals %+v", meal, got)
		}
	}
}

func TestTotalCost(t *testing.T) {
	catalog := NewCatalog([]CatalogItem{
		{ID: "1", Name: "Rice", Price: decimal.RequireFromString("10.50")},
		{ID: "2", Name: "Rice", Price: decimal.RequireFromString("99")},
		{ID: "3", Name: "Milk", Price: decimal.RequireFromString("4.25")},
	})
	got := TotalCost([]string{"Rice", "Milk", "Rice", "Unknown"}, catalog)
	if !got.Equal(decimal.RequireFromString("25.25")) {
		t.Fatalf("expected 25.25, got %s", got)
	}
}

func TestTotalCost_Empty(t *testing.T) {
	if got := TotalCost(nil, NewCatalog(nil)); !got.IsZero() {
		t.Fatalf("expected zero, got %s", got)
	}
}

func TestTotalNutrition(t *testing.T) {
	catalog := NewCatalog([]CatalogItem{
		{ID: "egg", Name: "Egg", Calories: 70, Protein: 6, Carbohydrates: 1, Fat: 5},
		{ID: "toast", Name: "Toast", Calories: 80, Protein: 3, Carbohydrates: 15, Fat: 1},
	})
	items := []MealItem{
		{FoodItemID: "egg", Quantity: 2},
		{FoodItemName: "Toast", Quantity: 0},
		{FoodItemID: "missing", FoodItemName: "Missing", Quantity: 3},
	}
	got := TotalNutrition(items, catalog)
	want := Nutrition{Calories: 220, Protein: 15, Carbohydrates: 17, Fat: 11}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestPlanRate(t *testing.T) {
	catalog := NewCatalog([]CatalogItem{
		{ID: "idli", Name: "Idli", Price: decimal.RequireFromString("12.50")},
		{ID: "milk", Name: "Milk", Price: decimal.RequireFromString("20")},
	})
	items := []MealItem{
		{FoodItemID: "idli", Quantity: 2},
		{FoodItemName: "Milk"},
		{FoodItemID: "gone", Quantity: 4},
	}
	if got := PlanRate(items, catalog); !got.Equal(decimal.RequireFromString("45")) {
		t.Fatalf("expected 45, got %s", got)
	}
}

func TestPlanRate_NonPositiveQuantityIsOneServing(t *testing.T) {
	catalog := NewCatalog([]CatalogItem{
		{ID: "idli", Name: "Idli", Price: decimal.RequireFromString("12.50")},
	})
	for _, qty := range []float64{0, -2, math.NaN()} {
		got := PlanRate([]MealItem{{FoodItemID: "idli", Quantity: qty}}, catalog)
		if !got.Equal(decimal.RequireFromString("12.50")) {
			t.Errorf("quantity %v: expected 12.50, got %s", qty, got)
		}
	}
}

func TestFlattenMeals_SlotOrder(t *testing.T) {
	meals := map[string][]MealItem{
		"dinner":    {{FoodItemName: "Soup", Quantity: 250, Unit: "ml"}},
		"breakfast": {{FoodItemName: "Oats", Quantity: 1.5, Unit: "pcs"}},
		"late":      {{FoodItemName: "Milk", Quantity: 200, Unit: "ml"}},
	}
	got := FlattenMeals(meals)
	want := []string{"Oats - 1.5 pcs", "Soup - 250 ml", "Milk - 200 ml"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMealItemsForSlot_WithTime(t *testing.T) {
	meals := map[string][]MealItem{
		"lunch": {
			{FoodItemName: "Rice", Quantity: 100, Unit: "g", Time: "13:30"},
			{FoodItemName: "Curd", Quantity: 50, Unit: "g"},
		},
	}
	got := MealItemsForSlot(meals, "Lunch")
	want := []string{"Rice - 100 g (1:30 PM)", "Curd - 50 g"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFormatTime12Hour(t *testing.T) {
	cases := []struct{ t, period, want string }{
		{"00:15", "", "12:15 AM"},
		{"12:00", "", "12:00 PM"},
		{"8:05", "", "8:05 AM"},
		{"8:05", "pm", "8:05 PM"},
		{"", "", ""},
		{"noon", "", "noon"},
	}
	for _, c := range cases {
		if got := FormatTime12Hour(c.t, c.period); got != c.want {
			t.Errorf("FormatTime12Hour(%q,%q) = %q, want %q", c.t, c.period, got, c.want)
		}
	}
}

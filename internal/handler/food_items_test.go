package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/handler"
)

// --- Mock store ---

type mockFoodItemStore struct {
	items map[uuid.UUID]database.FoodItem
	order []uuid.UUID
}

func newMockFoodItemStore() *mockFoodItemStore {
	return &mockFoodItemStore{items: make(map[uuid.UUID]database.FoodItem)}
}

func (m *mockFoodItemStore) add(f database.FoodItem) database.FoodItem {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if _, ok := m.items[f.ID]; !ok {
		m.order = append(m.order, f.ID)
	}
	m.items[f.ID] = f
	return f
}

func (m *mockFoodItemStore) ListFoodItems(_ context.Context) ([]database.FoodItem, error) {
	out := make([]database.FoodItem, 0, len(m.order))
	for _, id := range m.order {
		if f, ok := m.items[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockFoodItemStore) GetFoodItem(_ context.Context, id uuid.UUID) (database.FoodItem, error) {
	f, ok := m.items[id]
	if !ok {
		return database.FoodItem{}, pgx.ErrNoRows
	}
	return f, nil
}

func (m *mockFoodItemStore) CreateFoodItem(_ context.Context, arg database.CreateFoodItemParams) (database.FoodItem, error) {
	return m.add(foodItemFromParams(database.UpdateFoodItemParams(arg))), nil
}

func (m *mockFoodItemStore) UpdateFoodItem(_ context.Context, arg database.UpdateFoodItemParams) (database.FoodItem, error) {
	if _, ok := m.items[arg.ID]; !ok {
		return database.FoodItem{}, pgx.ErrNoRows
	}
	return m.add(foodItemFromParams(arg)), nil
}

func foodItemFromParams(arg database.UpdateFoodItemParams) database.FoodItem {
	return database.FoodItem{
		ID:            arg.ID,
		Name:          arg.Name,
		FoodType:      arg.FoodType,
		Category:      arg.Category,
		Unit:          arg.Unit,
		Quantity:      arg.Quantity,
		Calories:      arg.Calories,
		Protein:       arg.Protein,
		Carbohydrates: arg.Carbohydrates,
		Fat:           arg.Fat,
		Price:         arg.Price,
		PricePerUnit:  arg.PricePerUnit,
		Keywords:      arg.Keywords,
	}
}

func (m *mockFoodItemStore) DeleteFoodItem(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	if _, ok := m.items[id]; !ok {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(m.items, id)
	return id, nil
}

// --- Helpers ---

func numeric(t *testing.T, val string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(val); err != nil {
		t.Fatalf("scan numeric %q: %v", val, err)
	}
	return n
}

func setupFoodItemRouter(store *mockFoodItemStore) *chi.Mux {
	h := handler.NewFoodItemHandler(store)
	r := chi.NewRouter()
	r.Route("/food-items", h.RegisterRoutes)
	return r
}

// --- Tests ---

func TestFoodItemCreate_ComputesPricePerUnit(t *testing.T) {
	store := newMockFoodItemStore()
	router := setupFoodItemRouter(store)

	rr := doRequest(t, router, "POST", "/food-items", map[string]interface{}{
		"name":     "Idli",
		"unit":     "pcs",
		"quantity": 4,
		"price":    "50",
		"calories": 39,
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["price_per_unit"] != "12.50" {
		t.Errorf("price_per_unit: got %v, want 12.50", resp["price_per_unit"])
	}
	if resp["price"] != "50.00" {
		t.Errorf("price: got %v, want 50.00", resp["price"])
	}
}

func TestFoodItemCreate_ZeroQuantityLeavesPricePerUnitEmpty(t *testing.T) {
	router := setupFoodItemRouter(newMockFoodItemStore())

	rr := doRequest(t, router, "POST", "/food-items", map[string]interface{}{
		"name":  "Water",
		"price": "10",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["price_per_unit"] != "" {
		t.Errorf("price_per_unit: got %v, want empty", resp["price_per_unit"])
	}
}

func TestFoodItemCreate_MissingName(t *testing.T) {
	router := setupFoodItemRouter(newMockFoodItemStore())

	rr := doRequest(t, router, "POST", "/food-items", map[string]interface{}{"price": "10"})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestFoodItemUpdate_NotFound(t *testing.T) {
	router := setupFoodItemRouter(newMockFoodItemStore())

	rr := doRequest(t, router, "PUT", "/food-items/"+uuid.New().String(), map[string]interface{}{"name": "Dosa"})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestFoodItemGet_InvalidID(t *testing.T) {
	router := setupFoodItemRouter(newMockFoodItemStore())

	rr := doRequest(t, router, "GET", "/food-items/not-a-uuid", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestFoodItemDelete(t *testing.T) {
	store := newMockFoodItemStore()
	item := store.add(database.FoodItem{Name: "Upma", Price: numeric(t, "30")})
	router := setupFoodItemRouter(store)

	rr := doRequest(t, router, "DELETE", "/food-items/"+item.ID.String(), nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}

	rr = doRequest(t, router, "GET", "/food-items/"+item.ID.String(), nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status after delete: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestFoodItemMatch(t *testing.T) {
	store := newMockFoodItemStore()
	store.add(database.FoodItem{Name: "Idli", Unit: "pcs"})
	store.add(database.FoodItem{Name: "Brown Rice", Keywords: "rice,brown"})
	store.add(database.FoodItem{Name: "White Rice", Keywords: "rice,white"})
	router := setupFoodItemRouter(store)

	rr := doRequest(t, router, "GET", "/food-items/match?q=idli", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["status"] != "matched" {
		t.Fatalf("status: got %v, want matched", resp["status"])
	}
	if item, _ := resp["item"].(map[string]interface{}); item["name"] != "Idli" {
		t.Errorf("item: got %v, want Idli", resp["item"])
	}

	rr = doRequest(t, router, "GET", "/food-items/match?q=rice", nil)
	if resp := decodeResponse(t, rr); resp["status"] != "ambiguous" {
		t.Errorf("status: got %v, want ambiguous", resp["status"])
	}
}

func TestFoodItemMatch_MissingQuery(t *testing.T) {
	router := setupFoodItemRouter(newMockFoodItemStore())

	rr := doRequest(t, router, "GET", "/food-items/match", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

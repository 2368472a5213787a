package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ward-diet/api/internal/catalog/matcher"
	"github.com/ward-diet/api/internal/database"
)

// FoodItemStore defines the database methods needed by food item handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type FoodItemStore interface {
	ListFoodItems(ctx context.Context) ([]database.FoodItem, error)
	GetFoodItem(ctx context.Context, id uuid.UUID) (database.FoodItem, error)
	CreateFoodItem(ctx context.Context, arg database.CreateFoodItemParams) (database.FoodItem, error)
	UpdateFoodItem(ctx context.Context, arg database.UpdateFoodItemParams) (database.FoodItem, error)
	DeleteFoodItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// FoodItemHandler handles the food catalog endpoints.
type FoodItemHandler struct {
	store FoodItemStore
}

// NewFoodItemHandler creates a new FoodItemHandler.
func NewFoodItemHandler(store FoodItemStore) *FoodItemHandler {
	return &FoodItemHandler{store: store}
}

// RegisterRoutes registers food item endpoints.
// Expected to be mounted at /food-items.
func (h *FoodItemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/match", h.Match)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// RegisterReadRoutes registers the read-only endpoints every staff role may use.
func (h *FoodItemHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/match", h.Match)
	r.Get("/{id}", h.Get)
}

// RegisterWriteRoutes registers the catalog mutations.
func (h *FoodItemHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type foodItemRequest struct {
	Name          string          `json:"name"`
	FoodType      string          `json:"food_type"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"`
	Quantity      decimal.Decimal `json:"quantity"`
	Calories      float64         `json:"calories"`
	Protein       float64         `json:"protein"`
	Carbohydrates float64         `json:"carbohydrates"`
	Fat           float64         `json:"fat"`
	Price         decimal.Decimal `json:"price"`
	Keywords      string          `json:"keywords"`
}

type foodItemResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	FoodType      string    `json:"food_type"`
	Category      string    `json:"category"`
	Unit          string    `json:"unit"`
	Quantity      string    `json:"quantity"`
	Calories      float64   `json:"calories"`
	Protein       float64   `json:"protein"`
	Carbohydrates float64   `json:"carbohydrates"`
	Fat           float64   `json:"fat"`
	Price         string    `json:"price"`
	PricePerUnit  string    `json:"price_per_unit"`
	Keywords      string    `json:"keywords"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toFoodItemResponse(f database.FoodItem) foodItemResponse {
	return foodItemResponse{
		ID:            f.ID,
		Name:          f.Name,
		FoodType:      f.FoodType,
		Category:      f.Category,
		Unit:          f.Unit,
		Quantity:      numericToString(f.Quantity),
		Calories:      f.Calories,
		Protein:       f.Protein,
		Carbohydrates: f.Carbohydrates,
		Fat:           f.Fat,
		Price:         numericToString(f.Price),
		PricePerUnit:  numericToString(f.PricePerUnit),
		Keywords:      f.Keywords,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// pricePerUnit is price / quantity to two places. It is NULL when the
// quantity is not positive.
func pricePerUnit(price, quantity decimal.Decimal) pgtype.Numeric {
	if !quantity.IsPositive() {
		return pgtype.Numeric{}
	}
	return database.DecimalToNumeric(price.Div(quantity).Round(2))
}

func (req foodItemRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if req.Price.IsNegative() {
		return "price must not be negative"
	}
	if req.Quantity.IsNegative() {
		return "quantity must not be negative"
	}
	return ""
}

// --- Handlers ---

// List returns the whole catalog ordered by name.
func (h *FoodItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListFoodItems(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list food items")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]foodItemResponse, len(items))
	for i, f := range items {
		resp[i] = toFoodItemResponse(f)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one food item.
func (h *FoodItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid food item ID"})
		return
	}

	item, err := h.store.GetFoodItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get food item")
		return
	}
	writeJSON(w, http.StatusOK, toFoodItemResponse(item))
}

// Match resolves the free-text q against the catalog.
func (h *FoodItemHandler) Match(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}

	items, err := h.store.ListFoodItems(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list food items for match")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	catalog := make([]matcher.Item, len(items))
	for i, f := range items {
		catalog[i] = matcher.Item{ID: f.ID, Name: f.Name, Keywords: f.Keywords, Unit: f.Unit}
	}
	writeJSON(w, http.StatusOK, matcher.New(catalog).Match(q))
}

// Create adds a food item and derives its price per unit.
func (h *FoodItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req foodItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		log.Error().Err(err).Msg("generate food item id")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	item, err := h.store.CreateFoodItem(r.Context(), database.CreateFoodItemParams{
		ID:            id,
		Name:          strings.TrimSpace(req.Name),
		FoodType:      req.FoodType,
		Category:      req.Category,
		Unit:          req.Unit,
		Quantity:      database.DecimalToNumeric(req.Quantity),
		Calories:      req.Calories,
		Protein:       req.Protein,
		Carbohydrates: req.Carbohydrates,
		Fat:           req.Fat,
		Price:         database.DecimalToNumeric(req.Price),
		PricePerUnit:  pricePerUnit(req.Price, req.Quantity),
		Keywords:      req.Keywords,
	})
	if err != nil {
		log.Error().Err(err).Msg("create food item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toFoodItemResponse(item))
}

// Update replaces a food item and recomputes its price per unit.
func (h *FoodItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid food item ID"})
		return
	}

	var req foodItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	item, err := h.store.UpdateFoodItem(r.Context(), database.UpdateFoodItemParams{
		ID:            id,
		Name:          strings.TrimSpace(req.Name),
		FoodType:      req.FoodType,
		Category:      req.Category,
		Unit:          req.Unit,
		Quantity:      database.DecimalToNumeric(req.Quantity),
		Calories:      req.Calories,
		Protein:       req.Protein,
		Carbohydrates: req.Carbohydrates,
		Fat:           req.Fat,
		Price:         database.DecimalToNumeric(req.Price),
		PricePerUnit:  pricePerUnit(req.Price, req.Quantity),
		Keywords:      req.Keywords,
	})
	if err != nil {
		writeServiceError(w, err, "update food item")
		return
	}

	writeJSON(w, http.StatusOK, toFoodItemResponse(item))
}

// Delete removes a food item.
func (h *FoodItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid food item ID"})
		return
	}

	if _, err := h.store.DeleteFoodItem(r.Context(), id); err != nil {
		writeServiceError(w, err, "delete food item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/dietplan"
	"github.com/ward-diet/api/internal/enum"
	"github.com/ward-diet/api/internal/service"
)

// DietPackageStore defines the database methods needed by diet package handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type DietPackageStore interface {
	ListDietPackages(ctx context.Context) ([]database.DietPackage, error)
	GetDietPackage(ctx context.Context, id uuid.UUID) (database.DietPackage, error)
	CreateDietPackage(ctx context.Context, arg database.CreateDietPackageParams) (database.DietPackage, error)
	UpdateDietPackage(ctx context.Context, arg database.UpdateDietPackageParams) (database.DietPackage, error)
	DeleteDietPackage(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	ListFoodItems(ctx context.Context) ([]database.FoodItem, error)
}

// DietPackageHandler handles the standard diet package catalog.
type DietPackageHandler struct {
	store DietPackageStore
}

// NewDietPackageHandler creates a new DietPackageHandler.
func NewDietPackageHandler(store DietPackageStore) *DietPackageHandler {
	return &DietPackageHandler{store: store}
}

// RegisterReadRoutes registers the package listing endpoints.
// Expected to be mounted at /diet-packages.
func (h *DietPackageHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterWriteRoutes registers the package mutations.
func (h *DietPackageHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type dietPackageRequest struct {
	Name           string                         `json:"name"`
	DietType       string                         `json:"diet_type"`
	Meals          map[string][]dietplan.MealItem `json:"meals"`
	TotalRate      *decimal.Decimal               `json:"total_rate"`
	TotalNutrition *dietplan.Nutrition            `json:"total_nutrition"`
}

type dietPackageResponse struct {
	ID             uuid.UUID                      `json:"id"`
	Name           string                         `json:"name"`
	DietType       string                         `json:"diet_type"`
	Meals          map[string][]dietplan.MealItem `json:"meals"`
	TotalRate      string                         `json:"total_rate"`
	TotalNutrition dietplan.Nutrition             `json:"total_nutrition"`
	CreatedAt      time.Time                      `json:"created_at"`
	UpdatedAt      time.Time                      `json:"updated_at"`
}

func toDietPackageResponse(p database.DietPackage) dietPackageResponse {
	resp := dietPackageResponse{
		ID:        p.ID,
		Name:      p.Name,
		DietType:  p.DietType,
		Meals:     map[string][]dietplan.MealItem{},
		TotalRate: numericToString(p.TotalRate),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if len(p.Meals) > 0 {
		if err := json.Unmarshal(p.Meals, &resp.Meals); err != nil {
			log.Warn().Err(err).Str("package_id", p.ID.String()).Msg("decode package meals")
		}
	}
	if len(p.TotalNutrition) > 0 {
		if err := json.Unmarshal(p.TotalNutrition, &resp.TotalNutrition); err != nil {
			log.Warn().Err(err).Str("package_id", p.ID.String()).Msg("decode package nutrition")
		}
	}
	return resp
}

func (req dietPackageRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	for slot := range req.Meals {
		if !slices.Contains(enum.PackageSlots, slot) {
			return "unknown meal slot: " + slot
		}
	}
	if req.TotalRate != nil && req.TotalRate.IsNegative() {
		return "total_rate must not be negative"
	}
	return ""
}

// packageColumns encodes the request into the stored form, filling the
// rate and nutrition from the catalog when the client left them out.
func (h *DietPackageHandler) packageColumns(ctx context.Context, req dietPackageRequest) (meals, nutrition []byte, rate decimal.Decimal, err error) {
	if req.Meals == nil {
		req.Meals = map[string][]dietplan.MealItem{}
	}

	var totals dietplan.Nutrition
	if req.TotalRate == nil || req.TotalNutrition == nil {
		foods, err := h.store.ListFoodItems(ctx)
		if err != nil {
			return nil, nil, decimal.Zero, err
		}
		catalog := service.CatalogFromFoodItems(foods)
		items := dietplan.AllMealItems(req.Meals)
		rate = dietplan.PlanRate(items, catalog)
		totals = dietplan.TotalNutrition(items, catalog)
	}
	if req.TotalRate != nil {
		rate = *req.TotalRate
	}
	if req.TotalNutrition != nil {
		totals = *req.TotalNutrition
	}

	if meals, err = json.Marshal(req.Meals); err != nil {
		return nil, nil, decimal.Zero, err
	}
	if nutrition, err = json.Marshal(totals); err != nil {
		return nil, nil, decimal.Zero, err
	}
	return meals, nutrition, rate, nil
}

// --- Handlers ---

// List returns all diet packages.
func (h *DietPackageHandler) List(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.store.ListDietPackages(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list diet packages")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]dietPackageResponse, len(pkgs))
	for i, p := range pkgs {
		resp[i] = toDietPackageResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one diet package.
func (h *DietPackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid diet package ID"})
		return
	}

	pkg, err := h.store.GetDietPackage(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get diet package")
		return
	}
	writeJSON(w, http.StatusOK, toDietPackageResponse(pkg))
}

// Create adds a diet package.
func (h *DietPackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dietPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	meals, nutrition, rate, err := h.packageColumns(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("compute diet package totals")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		log.Error().Err(err).Msg("generate diet package id")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	pkg, err := h.store.CreateDietPackage(r.Context(), database.CreateDietPackageParams{
		ID:             id,
		Name:           strings.TrimSpace(req.Name),
		DietType:       req.DietType,
		Meals:          meals,
		TotalRate:      database.DecimalToNumeric(rate),
		TotalNutrition: nutrition,
	})
	if err != nil {
		log.Error().Err(err).Msg("create diet package")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, toDietPackageResponse(pkg))
}

// Update replaces a diet package.
func (h *DietPackageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid diet package ID"})
		return
	}

	var req dietPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	meals, nutrition, rate, err := h.packageColumns(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("compute diet package totals")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	pkg, err := h.store.UpdateDietPackage(r.Context(), database.UpdateDietPackageParams{
		ID:             id,
		Name:           strings.TrimSpace(req.Name),
		DietType:       req.DietType,
		Meals:          meals,
		TotalRate:      database.DecimalToNumeric(rate),
		TotalNutrition: nutrition,
	})
	if err != nil {
		writeServiceError(w, err, "update diet package")
		return
	}
	writeJSON(w, http.StatusOK, toDietPackageResponse(pkg))
}

// Delete removes a diet package.
func (h *DietPackageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid diet package ID"})
		return
	}

	if _, err := h.store.DeleteDietPackage(r.Context(), id); err != nil {
		writeServiceError(w, err, "delete diet package")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

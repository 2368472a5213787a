package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ward-diet/api/internal/customplan"
	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/dietplan"
	"github.com/ward-diet/api/internal/service"
)

// CustomPlanRegistry is satisfied by *customplan.Registry.
type CustomPlanRegistry interface {
	List(ctx context.Context) ([]customplan.Plan, error)
	Get(ctx context.Context, id string) (customplan.Plan, error)
	Create(ctx context.Context, p customplan.Plan) (customplan.Plan, error)
	Replace(ctx context.Context, plans []customplan.Plan) error
	Delete(ctx context.Context, id string) error
}

// FoodCatalogStore lists the catalog used to price and total plans.
type FoodCatalogStore interface {
	ListFoodItems(ctx context.Context) ([]database.FoodItem, error)
}

// CustomPlanHandler handles per-patient custom meal plans.
type CustomPlanHandler struct {
	plans CustomPlanRegistry
	foods FoodCatalogStore
}

// NewCustomPlanHandler creates a new CustomPlanHandler.
func NewCustomPlanHandler(plans CustomPlanRegistry, foods FoodCatalogStore) *CustomPlanHandler {
	return &CustomPlanHandler{plans: plans, foods: foods}
}

// RegisterReadRoutes registers the plan listing endpoints.
// Expected to be mounted at /custom-plans.
func (h *CustomPlanHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}/nutrition", h.Nutrition)
}

// RegisterWriteRoutes registers the plan mutations.
func (h *CustomPlanHandler) RegisterWriteRoutes(r chi.Router) {
	r.Put("/", h.Replace)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type planNutritionResponse struct {
	ID        string             `json:"id"`
	Nutrition dietplan.Nutrition `json:"nutrition"`
	Rate      string             `json:"rate"`
}

// --- Handlers ---

// List returns every stored custom plan.
func (h *CustomPlanHandler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list custom plans")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if plans == nil {
		plans = []customplan.Plan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

// Replace overwrites the whole plan list.
func (h *CustomPlanHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var plans []customplan.Plan
	if err := json.NewDecoder(r.Body).Decode(&plans); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.plans.Replace(r.Context(), plans); err != nil {
		writeServiceError(w, err, "replace custom plans")
		return
	}
	if plans == nil {
		plans = []customplan.Plan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

// Create appends one plan.
func (h *CustomPlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var plan customplan.Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	created, err := h.plans.Create(r.Context(), plan)
	if err != nil {
		writeServiceError(w, err, "create custom plan")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Delete removes one plan.
func (h *CustomPlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.plans.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err, "delete custom plan")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Nutrition totals a plan's meals against the current catalog.
func (h *CustomPlanHandler) Nutrition(w http.ResponseWriter, r *http.Request) {
	plan, err := h.plans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "get custom plan")
		return
	}

	foods, err := h.foods.ListFoodItems(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list food items for plan nutrition")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	catalog := service.CatalogFromFoodItems(foods)
	items := dietplan.AllMealItems(plan.Meals)
	writeJSON(w, http.StatusOK, planNutritionResponse{
		ID:        plan.ID,
		Nutrition: dietplan.TotalNutrition(items, catalog),
		Rate:      dietplan.PlanRate(items, catalog).StringFixed(2),
	})
}

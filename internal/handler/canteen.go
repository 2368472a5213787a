package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/dietplan"
	"github.com/ward-diet/api/internal/service"
	"github.com/ward-diet/api/internal/ws"
)

// CanteenStore defines the database methods needed by canteen handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CanteenStore interface {
	ListCanteenOrders(ctx context.Context) ([]database.CanteenOrder, error)
	DeleteCanteenOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// KitchenWorkflow moves tickets through the kitchen.
// Satisfied by *service.WorkflowService.
type KitchenWorkflow interface {
	MarkPreparing(ctx context.Context, id uuid.UUID) (database.CanteenOrder, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) (database.CanteenOrder, error)
}

// CanteenHandler handles the kitchen queue.
type CanteenHandler struct {
	store     CanteenStore
	workflow  KitchenWorkflow
	publisher service.Publisher
}

// NewCanteenHandler creates a new CanteenHandler.
func NewCanteenHandler(store CanteenStore, workflow KitchenWorkflow, publisher service.Publisher) *CanteenHandler {
	return &CanteenHandler{store: store, workflow: workflow, publisher: publisher}
}

// RegisterReadRoutes registers the queue listing endpoints.
// Expected to be mounted at /canteen/orders.
func (h *CanteenHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/totals", h.Totals)
}

// RegisterWriteRoutes registers the kitchen status changes.
func (h *CanteenHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/{id}/preparing", h.MarkPreparing)
	r.Post("/{id}/delivered", h.MarkDelivered)
	r.Delete("/{id}", h.Delete)
}

func canteenOrderFields(o database.CanteenOrder) dietplan.Fields {
	values := []string{
		o.PatientID, o.PatientName, o.ContactNumber, o.Bed, o.Ward,
		o.DietPackageName, o.DietType, o.FoodItem, o.Category, o.Status,
	}
	return dietplan.Fields{
		Date:     o.Date,
		Status:   o.Status,
		Category: o.Category,
		Values:   append(values, o.FoodItems...),
	}
}

// --- Handlers ---

// List returns the kitchen queue. date selects one exact day on top of the
// filter bar.
func (h *CanteenHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListCanteenOrders(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list canteen orders")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	c := criteriaFromQuery(r)
	if date := dietplan.NormalizeDate(r.URL.Query().Get("date")); date != "" {
		c.FromDate, c.ToDate = date, date
	}
	orders = dietplan.Apply(orders, c, canteenOrderFields)
	if orders == nil {
		orders = []database.CanteenOrder{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// Totals sums ordered quantities per food item for one meal and day.
func (h *CanteenHandler) Totals(w http.ResponseWriter, r *http.Request) {
	date := dietplan.NormalizeDate(r.URL.Query().Get("date"))
	if date == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date is required"})
		return
	}

	orders, err := h.store.ListCanteenOrders(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list canteen orders for totals")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	lines := make([]dietplan.IntakeLine, len(orders))
	for i, o := range orders {
		lines[i] = dietplan.IntakeLine{
			Category: o.Category,
			Date:     dietplan.NormalizeDate(o.Date),
			FoodItem: o.FoodItem,
			Amount:   o.IntakeAmount,
			Unit:     o.Unit,
		}
	}

	totals := dietplan.TotalQuantityByItem(lines, r.URL.Query().Get("meal"), date)
	if totals == nil {
		totals = []dietplan.ItemTotal{}
	}
	writeJSON(w, http.StatusOK, totals)
}

// MarkPreparing moves a pending ticket to preparing.
func (h *CanteenHandler) MarkPreparing(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, h.workflow.MarkPreparing, "mark canteen order preparing")
}

// MarkDelivered moves a preparing ticket to delivered.
func (h *CanteenHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, h.workflow.MarkDelivered, "mark canteen order delivered")
}

func (h *CanteenHandler) advance(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, uuid.UUID) (database.CanteenOrder, error), op string) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid canteen order ID"})
		return
	}

	order, err := fn(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, op)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Delete removes a ticket from the queue.
func (h *CanteenHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid canteen order ID"})
		return
	}

	if _, err := h.store.DeleteCanteenOrder(r.Context(), id); err != nil {
		writeServiceError(w, err, "delete canteen order")
		return
	}

	if err := h.publisher.Publish(ws.RoomCanteen, ws.EventCanteenOrderDeleted, map[string]string{"id": id.String()}); err != nil {
		log.Warn().Err(err).Msg("publish canteen order deleted")
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/dietplan"
	"github.com/ward-diet/api/internal/service"
)

// DietOrderStore defines the database methods needed by diet order handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type DietOrderStore interface {
	ListDietOrders(ctx context.Context) ([]database.DietOrder, error)
	ListDietOrdersByPatient(ctx context.Context, patientID string) ([]database.DietOrder, error)
	GetDietOrder(ctx context.Context, id uuid.UUID) (database.DietOrder, error)
	CreateDietOrder(ctx context.Context, arg database.DietOrderParams) (database.DietOrder, error)
	UpdateDietOrder(ctx context.Context, arg database.DietOrderParams) (database.DietOrder, error)
	DeleteDietOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// DietOrderWorkflow defines the workflow methods needed by diet order handlers.
// Satisfied by *service.WorkflowService.
type DietOrderWorkflow interface {
	ApproveDietOrder(ctx context.Context, id uuid.UUID, instructions string) (*service.ApprovalResult, error)
	RejectDietOrder(ctx context.Context, id uuid.UUID, instructions string) (database.DietOrder, error)
	PauseDietOrder(ctx context.Context, id uuid.UUID) (database.DietOrder, error)
	RestartDietOrder(ctx context.Context, id uuid.UUID) (database.DietOrder, error)
}

// DietOrderHandler handles diet orders and their approval.
type DietOrderHandler struct {
	store    DietOrderStore
	workflow DietOrderWorkflow
}

// NewDietOrderHandler creates a new DietOrderHandler.
func NewDietOrderHandler(store DietOrderStore, workflow DietOrderWorkflow) *DietOrderHandler {
	return &DietOrderHandler{store: store, workflow: workflow}
}

// RegisterReadRoutes registers the diet order listing endpoints.
// Expected to be mounted at /diet-orders.
func (h *DietOrderHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterWriteRoutes registers diet order edits and the dietician workflow.
func (h *DietOrderHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/approve", h.Approve)
	r.Post("/{id}/reject", h.Reject)
	r.Post("/{id}/pause", h.Pause)
	r.Post("/{id}/restart", h.Restart)
}

// --- Request / Response types ---

type dietOrderRequest struct {
	DietRequestID string              `json:"diet_request_id"`
	PatientID     string              `json:"patient_id"`
	PatientName   string              `json:"patient_name"`
	ContactNumber string              `json:"contact_number"`
	Email         string              `json:"email"`
	Address       string              `json:"address"`
	BloodGroup    string              `json:"blood_group"`
	TokenNo       string              `json:"token_no"`
	VisitID       string              `json:"visit_id"`
	Age           string              `json:"age"`
	Gender        string              `json:"gender"`
	Bed           string              `json:"bed"`
	Ward          string              `json:"ward"`
	Floor         string              `json:"floor"`
	Doctor        string              `json:"doctor"`
	PatientType   string              `json:"patient_type"`
	DietPackage   dietplan.PackageRef `json:"diet_package"`
	PackageRate   decimal.Decimal     `json:"package_rate"`
	StartDate     string              `json:"start_date"`
	EndDate       string              `json:"end_date"`
	DoctorNotes   string              `json:"doctor_notes"`
}

type instructionsRequest struct {
	Instructions string `json:"instructions"`
}

type dietOrderResponse struct {
	database.DietOrder
	DietPackage *dietplan.PackageRef `json:"diet_package"`
	PackageRate string               `json:"package_rate"`
}

func toDietOrderResponse(o database.DietOrder) dietOrderResponse {
	resp := dietOrderResponse{DietOrder: o, PackageRate: numericToString(o.PackageRate)}
	if o.DietPackage != "" {
		if ref, err := dietplan.ParsePackageRef(o.DietPackage); err == nil {
			resp.DietPackage = &ref
		}
	}
	return resp
}

func (req dietOrderRequest) params(id uuid.UUID) (database.DietOrderParams, string) {
	if strings.TrimSpace(req.PatientID) == "" {
		return database.DietOrderParams{}, "patient_id is required"
	}
	if req.PackageRate.IsNegative() {
		return database.DietOrderParams{}, "package_rate must not be negative"
	}
	if req.StartDate != "" && req.EndDate != "" &&
		dietplan.CompareDates(dietplan.NormalizeDate(req.EndDate), dietplan.NormalizeDate(req.StartDate)) < 0 {
		return database.DietOrderParams{}, "end_date must not be before start_date"
	}

	var requestID pgtype.UUID
	if req.DietRequestID != "" {
		parsed, err := uuid.Parse(req.DietRequestID)
		if err != nil {
			return database.DietOrderParams{}, "invalid diet_request_id"
		}
		requestID = pgtype.UUID{Bytes: parsed, Valid: true}
	}

	var pkg string
	if !req.DietPackage.IsZero() {
		pkg = req.DietPackage.String()
	}

	return database.DietOrderParams{
		ID:            id,
		DietRequestID: requestID,
		PatientID:     strings.TrimSpace(req.PatientID),
		PatientName:   req.PatientName,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Address:       req.Address,
		BloodGroup:    req.BloodGroup,
		TokenNo:       req.TokenNo,
		VisitID:       req.VisitID,
		Age:           req.Age,
		Gender:        req.Gender,
		Bed:           req.Bed,
		Ward:          req.Ward,
		Floor:         req.Floor,
		Doctor:        req.Doctor,
		PatientType:   req.PatientType,
		DietPackage:   pkg,
		PackageRate:   database.DecimalToNumeric(req.PackageRate),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		DoctorNotes:   req.DoctorNotes,
	}, ""
}

func dietOrderFields(o database.DietOrder) dietplan.Fields {
	return dietplan.Fields{
		Date:        o.StartDate,
		Status:      o.Status,
		PatientType: o.PatientType,
		Values: []string{
			o.PatientID, o.PatientName, o.ContactNumber, o.TokenNo, o.VisitID,
			o.Bed, o.Ward, o.Doctor, o.PackageName, o.Status, o.ApprovalStatus,
		},
	}
}

// --- Handlers ---

// List returns diet orders matching the filter bar. approval narrows by
// approval status; patient_id reads one patient's orders only.
func (h *DietOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		orders []database.DietOrder
		err    error
	)
	if pid := strings.TrimSpace(r.URL.Query().Get("patient_id")); pid != "" {
		orders, err = h.store.ListDietOrdersByPatient(r.Context(), pid)
	} else {
		orders, err = h.store.ListDietOrders(r.Context())
	}
	if err != nil {
		log.Error().Err(err).Msg("list diet orders")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	orders = dietplan.Apply(orders, criteriaFromQuery(r), dietOrderFields)

	approval := r.URL.Query().Get("approval")
	resp := make([]dietOrderResponse, 0, len(orders))
	for _, o := range orders {
		if approval != "" && !strings.EqualFold(o.ApprovalStatus, approval) {
			continue
		}
		resp = append(resp, toDietOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one diet order.
func (h *DietOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid diet order ID"})
		return
	}

	order, err := h.store.GetDietOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get diet order")
		return
	}
	writeJSON(w, http.StatusOK, toDietOrderResponse(order))
}

// Create places a diet order awaiting dietician approval.
func (h *DietOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dietOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		log.Error().Err(err).Msg("generate diet order id")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	params, msg := req.params(id)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	order, err := h.store.CreateDietOrder(r.Context(), params)
	if err != nil {
		log.Error().Err(err).Msg("create diet order")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, toDietOrderResponse(order))
}

// Update edits a diet order's patient, package and schedule fields.
func (h *DietOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid diet order ID"})
		return
	}

	var req dietOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}

	params, msg := req.params(id)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	order, err := h.store.UpdateDietOrder(r.Context(), params)
	if err != nil {
		writeServiceError(w, err, "update diet order")
		return
	}
	writeJSON(w, http.StatusOK, toDietOrderResponse(order))
}

// Delete removes a diet order.
func (h *DietOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid diet order ID"})
		return
	}

	if _, err := h.store.DeleteDietOrder(r.Context(), id); err != nil {
		writeServiceError(w, err, "delete diet order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Approve approves the order and sends its ticket to the kitchen.
func (h *DietOrderHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid diet order ID"})
		return
	}

	var req instructionsRequest
	if err := decodeOptional(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.workflow.ApproveDietOrder(r.Context(), id, req.Instructions)
	if err != nil {
		writeServiceError(w, err, "approve diet order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"order":         toDietOrderResponse(result.Order),
		"canteen_order": result.CanteenOrder,
	})
}

// Reject rejects the order.
func (h *DietOrderHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid diet order ID"})
		return
	}

	var req instructionsRequest
	if err := decodeOptional(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.workflow.RejectDietOrder(r.Context(), id, req.Instructions)
	if err != nil {
		writeServiceError(w, err, "reject diet order")
		return
	}
	writeJSON(w, http.StatusOK, toDietOrderResponse(order))
}

// Pause stamps the pause date.
func (h *DietOrderHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.stamp(w, r, h.workflow.PauseDietOrder, "pause diet order")
}

// Restart stamps the restart date.
func (h *DietOrderHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.stamp(w, r, h.workflow.RestartDietOrder, "restart diet order")
}

func (h *DietOrderHandler) stamp(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, uuid.UUID) (database.DietOrder, error), op string) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid diet order ID"})
		return
	}

	order, err := fn(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, op)
		return
	}
	writeJSON(w, http.StatusOK, toDietOrderResponse(order))
}

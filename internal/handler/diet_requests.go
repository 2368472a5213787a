package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/dietplan"
	"github.com/ward-diet/api/internal/enum"
	"github.com/ward-diet/api/internal/middleware"
	"github.com/ward-diet/api/internal/service"
)

// DietRequestStore defines the database methods needed by diet request handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type DietRequestStore interface {
	ListDietRequests(ctx context.Context) ([]database.DietRequest, error)
	GetDietRequest(ctx context.Context, id uuid.UUID) (database.DietRequest, error)
	CreateDietRequest(ctx context.Context, arg database.DietRequestParams) (database.DietRequest, error)
	UpdateDietRequest(ctx context.Context, arg database.DietRequestParams) (database.DietRequest, error)
	DeleteDietRequest(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	ListDietRequestApprovals(ctx context.Context, dietRequestID uuid.UUID) ([]database.DietRequestApproval, error)
}

// RequestDecider defines the workflow methods needed to decide a diet request.
// Satisfied by *service.WorkflowService.
type RequestDecider interface {
	ApproveRequest(ctx context.Context, id uuid.UUID, d service.Decision) (*service.RequestDecisionResult, error)
	RejectRequest(ctx context.Context, id uuid.UUID, d service.Decision) (*service.RequestDecisionResult, error)
}

// DietRequestHandler handles doctor diet requests.
type DietRequestHandler struct {
	store    DietRequestStore
	workflow RequestDecider
}

// NewDietRequestHandler creates a new DietRequestHandler.
func NewDietRequestHandler(store DietRequestStore, workflow RequestDecider) *DietRequestHandler {
	return &DietRequestHandler{store: store, workflow: workflow}
}

// RegisterRoutes registers the request endpoints any staff member may use.
// Expected to be mounted at /diet-requests.
func (h *DietRequestHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/approvals", h.Approvals)
}

// RegisterDecisionRoutes registers approve/reject, reserved to dieticians.
func (h *DietRequestHandler) RegisterDecisionRoutes(r chi.Router) {
	r.Post("/{id}/approve", h.Approve)
	r.Post("/{id}/reject", h.Reject)
}

// --- Request / Response types ---

type dietRequestRequest struct {
	PatientID     string `json:"patient_id"`
	PatientName   string `json:"patient_name"`
	Age           string `json:"age"`
	Gender        string `json:"gender"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	BloodGroup    string `json:"blood_group"`
	TokenNo       string `json:"token_no"`
	VisitID       string `json:"visit_id"`
	Bed           string `json:"bed"`
	Ward          string `json:"ward"`
	Floor         string `json:"floor"`
	Doctor        string `json:"doctor"`
	DoctorNotes   string `json:"doctor_notes"`
	PatientType   string `json:"patient_type"`
	Date          string `json:"date"`
	RequestedTime string `json:"requested_time"`
}

type decisionRequest struct {
	Notes string `json:"notes"`
}

func (req dietRequestRequest) params(id uuid.UUID, status, approval string) database.DietRequestParams {
	return database.DietRequestParams{
		ID:            id,
		PatientID:     strings.TrimSpace(req.PatientID),
		PatientName:   req.PatientName,
		Age:           req.Age,
		Gender:        req.Gender,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Address:       req.Address,
		BloodGroup:    req.BloodGroup,
		TokenNo:       req.TokenNo,
		VisitID:       req.VisitID,
		Bed:           req.Bed,
		Ward:          req.Ward,
		Floor:         req.Floor,
		Doctor:        req.Doctor,
		DoctorNotes:   req.DoctorNotes,
		Status:        status,
		Approval:      approval,
		PatientType:   req.PatientType,
		Date:          req.Date,
		RequestedTime: req.RequestedTime,
	}
}

func dietRequestFields(d database.DietRequest) dietplan.Fields {
	return dietplan.Fields{
		Date:        d.Date,
		Status:      d.Status,
		PatientType: d.PatientType,
		Values: []string{
			d.PatientID, d.PatientName, d.ContactNumber, d.TokenNo, d.VisitID,
			d.Bed, d.Ward, d.Floor, d.Doctor, d.DoctorNotes, d.Status, d.Approval,
		},
	}
}

// decodeOptional decodes a body that may be empty.
func decodeOptional(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// --- Handlers ---

// List returns diet requests matching the filter bar.
func (h *DietRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.store.ListDietRequests(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list diet requests")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	reqs = dietplan.Apply(reqs, criteriaFromQuery(r), dietRequestFields)
	if reqs == nil {
		reqs = []database.DietRequest{}
	}
	writeJSON(w, http.StatusOK, reqs)
}

// Get returns one diet request.
func (h *DietRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid diet request ID"})
		return
	}

	req, err := h.store.GetDietRequest(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get diet request")
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// Create files a new pending diet request.
func (h *DietRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dietRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.PatientID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "patient_id is required"})
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		log.Error().Err(err).Msg("generate diet request id")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	created, err := h.store.CreateDietRequest(r.Context(), req.params(id, enum.RequestStatusPending, ""))
	if err != nil {
		log.Error().Err(err).Msg("create diet request")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update edits the patient details of a diet request. Status and approval
// only change through approve/reject.
func (h *DietRequestHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid diet request ID"})
		return
	}

	var req dietRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.PatientID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "patient_id is required"})
		return
	}

	current, err := h.store.GetDietRequest(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get diet request")
		return
	}

	updated, err := h.store.UpdateDietRequest(r.Context(), req.params(id, current.Status, current.Approval))
	if err != nil {
		writeServiceError(w, err, "update diet request")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a diet request.
func (h *DietRequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid diet request ID"})
		return
	}

	if _, err := h.store.DeleteDietRequest(r.Context(), id); err != nil {
		writeServiceError(w, err, "delete diet request")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Approvals returns the decision audit trail of a request.
func (h *DietRequestHandler) Approvals(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid diet request ID"})
		return
	}

	approvals, err := h.store.ListDietRequestApprovals(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Msg("list diet request approvals")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if approvals == nil {
		approvals = []database.DietRequestApproval{}
	}
	writeJSON(w, http.StatusOK, approvals)
}

// Approve places the diet order for a request and returns the draft used
// to prefill the diet order form.
func (h *DietRequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.workflow.ApproveRequest, "approve diet request")
}

// Reject rejects a request.
func (h *DietRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.workflow.RejectRequest, "reject diet request")
}

func (h *DietRequestHandler) decide(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, uuid.UUID, service.Decision) (*service.RequestDecisionResult, error), op string) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid diet request ID"})
		return
	}

	var req decisionRequest
	if err := decodeOptional(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := fn(r.Context(), id, service.Decision{Actor: claims.UserID, Notes: req.Notes})
	if err != nil {
		writeServiceError(w, err, op)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

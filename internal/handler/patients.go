package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/service"
)

// LedgerServicer defines the ledger operations needed by patient handlers.
// Satisfied by *service.LedgerService; narrow interface for testability.
type LedgerServicer interface {
	List(ctx context.Context, patientID string, includeDispatched bool) ([]database.FoodIntakeEntry, error)
	History(ctx context.Context, patientID string) ([]service.HistoryDay, error)
	Add(ctx context.Context, in service.IntakeInput) (database.FoodIntakeEntry, error)
	Edit(ctx context.Context, patientID string, id uuid.UUID, patch service.IntakePatch) (database.FoodIntakeEntry, error)
	Delete(ctx context.Context, patientID string, id uuid.UUID, confirmed bool) error
	Repeat(ctx context.Context, patientID string, selections []service.RepeatSelection) ([]database.FoodIntakeEntry, error)
	SendToCanteen(ctx context.Context, p service.CanteenPatient) ([]database.CanteenOrder, error)
}

// DeliveryReporter is satisfied by *service.ReportService.
type DeliveryReporter interface {
	PatientDeliveries(ctx context.Context, patientID, contactNumber string) (*service.PatientDeliveries, error)
}

// PatientHandler handles the per-patient food intake ledger.
type PatientHandler struct {
	ledger  LedgerServicer
	reports DeliveryReporter
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(ledger LedgerServicer, reports DeliveryReporter) *PatientHandler {
	return &PatientHandler{ledger: ledger, reports: reports}
}

// RegisterRoutes registers patient endpoints.
// Expected to be mounted at /patients.
func (h *PatientHandler) RegisterRoutes(r chi.Router) {
	r.Route("/{pid}", func(r chi.Router) {
		r.Get("/food-intake", h.ListIntake)
		r.Post("/food-intake", h.AddIntake)
		r.Post("/food-intake/repeat", h.Repeat)
		r.Post("/food-intake/send-to-canteen", h.SendToCanteen)
		r.Patch("/food-intake/{id}", h.EditIntake)
		r.Delete("/food-intake/{id}", h.DeleteIntake)
		r.Get("/diet-history", h.History)
		r.Get("/canteen-orders", h.Deliveries)
	})
}

// --- Request / Response types ---

type intakeRequest struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	Ampm         string `json:"ampm"`
	Category     string `json:"category"`
	FoodItem     string `json:"food_item"`
	IntakeAmount string `json:"intake_amount"`
	Unit         string `json:"unit"`
	Calories     string `json:"calories"`
	EndDate      string `json:"end_date"`
	Comments     string `json:"comments"`
	Status       string `json:"status"`
}

type intakePatchRequest struct {
	Date         *string `json:"date"`
	Time         *string `json:"time"`
	Ampm         *string `json:"ampm"`
	Category     *string `json:"category"`
	FoodItem     *string `json:"food_item"`
	IntakeAmount *string `json:"intake_amount"`
	Unit         *string `json:"unit"`
	Calories     *string `json:"calories"`
	EndDate      *string `json:"end_date"`
	Comments     *string `json:"comments"`
	Status       *string `json:"status"`
}

type repeatRequest struct {
	Entries []struct {
		ID   string `json:"id"`
		Date string `json:"date"`
	} `json:"entries"`
}

type sendToCanteenRequest struct {
	PatientType   string `json:"patient_type"`
	PatientName   string `json:"patient_name"`
	ContactNumber string `json:"contact_number"`
	Bed           string `json:"bed"`
	Ward          string `json:"ward"`
}

// --- Handlers ---

// ListIntake returns the pending ledger. all=true includes entries already
// sent to the canteen.
func (h *PatientHandler) ListIntake(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledger.List(r.Context(), chi.URLParam(r, "pid"), queryBool(r, "all"))
	if err != nil {
		writeServiceError(w, err, "list food intake")
		return
	}
	if entries == nil {
		entries = []database.FoodIntakeEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// AddIntake records one entry.
func (h *PatientHandler) AddIntake(w http.ResponseWriter, r *http.Request) {
	var req intakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	entry, err := h.ledger.Add(r.Context(), service.IntakeInput{
		PatientID:    chi.URLParam(r, "pid"),
		Date:         req.Date,
		Time:         req.Time,
		Ampm:         req.Ampm,
		Category:     req.Category,
		FoodItem:     req.FoodItem,
		IntakeAmount: req.IntakeAmount,
		Unit:         req.Unit,
		Calories:     req.Calories,
		EndDate:      req.EndDate,
		Comments:     req.Comments,
		Status:       req.Status,
	})
	if err != nil {
		writeServiceError(w, err, "add food intake")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// EditIntake patches one pending entry.
func (h *PatientHandler) EditIntake(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}

	var req intakePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	entry, err := h.ledger.Edit(r.Context(), chi.URLParam(r, "pid"), id, service.IntakePatch{
		Date:         req.Date,
		Time:         req.Time,
		Ampm:         req.Ampm,
		Category:     req.Category,
		FoodItem:     req.FoodItem,
		IntakeAmount: req.IntakeAmount,
		Unit:         req.Unit,
		Calories:     req.Calories,
		EndDate:      req.EndDate,
		Comments:     req.Comments,
		Status:       req.Status,
	})
	if err != nil {
		writeServiceError(w, err, "edit food intake")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DeleteIntake removes one pending entry. Without confirm=true nothing is
// deleted and the request still succeeds.
func (h *PatientHandler) DeleteIntake(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}

	err := h.ledger.Delete(r.Context(), chi.URLParam(r, "pid"), id, queryBool(r, "confirm"))
	if err != nil && !errors.Is(err, service.ErrNotConfirmed) {
		writeServiceError(w, err, "delete food intake")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Repeat copies the selected entries to new dates.
func (h *PatientHandler) Repeat(w http.ResponseWriter, r *http.Request) {
	var req repeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	selections := make([]service.RepeatSelection, 0, len(req.Entries))
	for _, e := range req.Entries {
		id, err := uuid.Parse(e.ID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID: " + e.ID})
			return
		}
		selections = append(selections, service.RepeatSelection{EntryID: id, Date: e.Date})
	}

	created, err := h.ledger.Repeat(r.Context(), chi.URLParam(r, "pid"), selections)
	if err != nil {
		writeServiceError(w, err, "repeat food intake")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// SendToCanteen dispatches the pending ledger of an IP patient.
func (h *PatientHandler) SendToCanteen(w http.ResponseWriter, r *http.Request) {
	var req sendToCanteenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	orders, err := h.ledger.SendToCanteen(r.Context(), service.CanteenPatient{
		PatientID:     chi.URLParam(r, "pid"),
		PatientType:   req.PatientType,
		PatientName:   req.PatientName,
		ContactNumber: req.ContactNumber,
		Bed:           req.Bed,
		Ward:          req.Ward,
	})
	if err != nil {
		writeServiceError(w, err, "send food intake to canteen")
		return
	}
	writeJSON(w, http.StatusCreated, orders)
}

// History returns every entry grouped by day.
func (h *PatientHandler) History(w http.ResponseWriter, r *http.Request) {
	days, err := h.ledger.History(r.Context(), chi.URLParam(r, "pid"))
	if err != nil {
		writeServiceError(w, err, "food intake history")
		return
	}
	writeJSON(w, http.StatusOK, days)
}

// Deliveries returns the patient's delivered and outstanding tickets.
// contact narrows to one contact number.
func (h *PatientHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	out, err := h.reports.PatientDeliveries(r.Context(), chi.URLParam(r, "pid"), r.URL.Query().Get("contact"))
	if err != nil {
		writeServiceError(w, err, "patient deliveries")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

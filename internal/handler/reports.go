package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ward-diet/api/internal/service"
)

// DashboardReporter is satisfied by *service.ReportService.
type DashboardReporter interface {
	Dashboard(ctx context.Context, from, to string) (*service.Dashboard, error)
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	reports DashboardReporter
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(reports DashboardReporter) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// RegisterRoutes registers report endpoints.
// Expected to be mounted at the root level.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
}

// --- Handlers ---

// Dashboard returns the approval counts for the from/to window and the
// current-year totals.
func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	d, err := h.reports.Dashboard(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err, "dashboard")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// --- Helpers ---

// parseDateRange reads from/to as YYYY-MM-DD. Either may be empty.
func parseDateRange(r *http.Request) (string, string, error) {
	const layout = "2006-01-02"

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	var fromT, toT time.Time
	if from != "" {
		t, err := time.Parse(layout, from)
		if err != nil {
			return "", "", fmt.Errorf("invalid from format: %w", err)
		}
		fromT = t
	}
	if to != "" {
		t, err := time.Parse(layout, to)
		if err != nil {
			return "", "", fmt.Errorf("invalid to format: %w", err)
		}
		toT = t
	}

	if from != "" && to != "" && fromT.After(toT) {
		return "", "", fmt.Errorf("from must not be after to")
	}
	return from, to, nil
}

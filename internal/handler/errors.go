package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"

	"github.com/ward-diet/api/internal/customplan"
	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/dietplan"
	"github.com/ward-diet/api/internal/service"
)

// statusFor maps a domain error to its HTTP status. Zero means the error is
// not a known domain error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pgx.ErrNoRows),
		errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrDietOrderNotFound),
		errors.Is(err, service.ErrCanteenOrderNotFound),
		errors.Is(err, customplan.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoPatientSelected),
		errors.Is(err, service.ErrNothingSelected),
		errors.Is(err, service.ErrPatientMismatch),
		errors.Is(err, customplan.ErrNameRequired),
		errors.Is(err, customplan.ErrDuplicateID),
		errors.Is(err, dietplan.ErrInvalidPackageRef):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, dietplan.ErrInvalidTransition),
		errors.Is(err, dietplan.ErrNotApproved),
		errors.Is(err, dietplan.ErrUnknownStatus),
		errors.Is(err, service.ErrAlreadyDispatched):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotEligible),
		errors.Is(err, service.ErrPackageNotFound),
		errors.Is(err, service.ErrNoPackage):
		return http.StatusUnprocessableEntity
	}
	return 0
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode JSON response")
	}
}

// writeServiceError reports err with the status its kind maps to. Unknown
// errors are logged under op and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, err error, op string) {
	if status := statusFor(err); status != 0 {
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	log.Error().Err(err).Msg(op)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// criteriaFromQuery reads the shared filter bar from the query string.
// A select set to "all" is the same as no filter.
func criteriaFromQuery(r *http.Request) dietplan.Criteria {
	q := r.URL.Query()
	category := q.Get("category")
	if category == "" {
		category = q.Get("meal")
	}
	return dietplan.Criteria{
		FromDate:    q.Get("from"),
		ToDate:      q.Get("to"),
		Status:      selectValue(q.Get("status")),
		Category:    selectValue(category),
		PatientType: selectValue(q.Get("patient_type")),
		Search:      q.Get("search"),
	}
}

func selectValue(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), "all") {
		return ""
	}
	return v
}

// parseID reads a UUID path parameter.
func parseID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return ""
	}
	return database.NumericToDecimal(n).StringFixed(2)
}

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
	"golang.org/x/crypto/bcrypt"

	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/enum"
)

// StaffStore defines the database methods needed by staff handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type StaffStore interface {
	ListStaffUsers(ctx context.Context) ([]database.StaffUser, error)
	UpsertStaffUser(ctx context.Context, arg database.UpsertStaffUserParams) (database.StaffUser, error)
}

// StaffHandler handles the staff directory.
type StaffHandler struct {
	store StaffStore
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(store StaffStore) *StaffHandler {
	return &StaffHandler{store: store}
}

// RegisterRoutes registers staff endpoints.
// Expected to be mounted at /staff behind an ADMIN gate.
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Put("/{username}", h.Upsert)
}

var staffRoles = []string{
	enum.StaffRoleAdmin, enum.StaffRoleDietician, enum.StaffRoleNurse, enum.StaffRoleCanteen,
}

// --- Request / Response types ---

type upsertStaffRequest struct {
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type staffResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toStaffResponse(u database.StaffUser) staffResponse {
	return staffResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// --- Handlers ---

// List returns every active staff member. Password hashes never leave the server.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListStaffUsers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list staff users")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]staffResponse, len(users))
	for i, u := range users {
		resp[i] = toStaffResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Upsert creates a staff account or resets its password, name and role.
func (h *StaffHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	if username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username is required"})
		return
	}

	var req upsertStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if !slices.Contains(staffRoles, role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role must be one of " + strings.Join(staffRoles, ", ")})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("hash staff password")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		log.Error().Err(err).Msg("generate staff id")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	user, err := h.store.UpsertStaffUser(r.Context(), database.UpsertStaffUserParams{
		ID:           id,
		Username:     username,
		PasswordHash: string(hashed),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         role,
	})
	if err != nil {
		log.Error().Err(err).Msg("upsert staff user")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toStaffResponse(user))
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/ward-diet/api/internal/auth"
	"github.com/ward-diet/api/internal/database"
)

// Login and refresh failures. Both map to 401 and never say which part of
// the credentials was wrong.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AuthStore interface {
	GetStaffUserByUsername(ctx context.Context, username string) (database.StaffUser, error)
	GetStaffUserByID(ctx context.Context, id uuid.UUID) (database.StaffUser, error)
}

// AuthHandler issues staff sessions.
type AuthHandler struct {
	store     AuthStore
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: jwtSecret}
}

// RegisterRoutes registers the public /auth endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
	})
}

// --- Request / Response types ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         staffResponse `json:"user"`
}

// --- Handlers ---

// Login checks a username and password and opens a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	user, err := h.checkPassword(r.Context(), username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			log.Warn().Str("username", username).Str("request_id", chimw.GetReqID(r.Context())).Msg("login rejected")
		}
		writeServiceError(w, err, "login")
		return
	}
	h.openSession(w, user)
}

// Refresh trades a refresh token for a new session. Accounts deactivated
// since the token was issued are refused.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "refresh_token is required"})
		return
	}

	user, err := h.resumeSession(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err, "refresh session")
		return
	}
	h.openSession(w, user)
}

// --- Helpers ---

func (h *AuthHandler) checkPassword(ctx context.Context, username, password string) (database.StaffUser, error) {
	user, err := h.store.GetStaffUserByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return database.StaffUser{}, ErrInvalidCredentials
	}
	if err != nil {
		return database.StaffUser{}, fmt.Errorf("get staff user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return database.StaffUser{}, ErrInvalidCredentials
	}
	return user, nil
}

func (h *AuthHandler) resumeSession(ctx context.Context, refreshToken string) (database.StaffUser, error) {
	userID, err := auth.ValidateRefreshToken(h.jwtSecret, refreshToken)
	if err != nil {
		return database.StaffUser{}, ErrInvalidSession
	}
	user, err := h.store.GetStaffUserByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return database.StaffUser{}, ErrInvalidSession
	}
	if err != nil {
		return database.StaffUser{}, fmt.Errorf("get staff user %s: %w", userID, err)
	}
	return user, nil
}

func (h *AuthHandler) openSession(w http.ResponseWriter, user database.StaffUser) {
	access, err := auth.GenerateToken(h.jwtSecret, user.ID, user.Username, user.Role)
	if err != nil {
		writeServiceError(w, fmt.Errorf("sign access token: %w", err), "open session")
		return
	}
	refresh, err := auth.GenerateRefreshToken(h.jwtSecret, user.ID)
	if err != nil {
		writeServiceError(w, fmt.Errorf("sign refresh token: %w", err), "open session")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         toStaffResponse(user),
	})
}

package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tradejournal/trade-journal-service/internal/auth"
	"github.com/tradejournal/trade-journal-service/internal/database"
	"github.com/tradejournal/trade-journal-service/internal/journal"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	journal *journal.Service
	db      *database.DB
	auth    *auth.Manager
	logger  zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(svc *journal.Service, db *database.DB, authManager *auth.Manager, logger zerolog.Logger) *Handler {
	return &Handler{
		journal: svc,
		db:      db,
		auth:    authManager,
		logger:  logger,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// errorStatus maps service and repository errors onto HTTP status codes
// by message, matching the repository's "not found" convention.
func errorStatus(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "cannot"):
		return http.StatusConflict
	case strings.Contains(msg, "required"), strings.Contains(msg, "requires"), strings.Contains(msg, "invalid"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("request failed")
		respondError(w, status, "internal server error")
		return
	}
	respondError(w, status, err.Error())
}

// currentUser extracts the authenticated user ID; the auth middleware
// guarantees it is present on protected routes.
func currentUser(r *http.Request) int {
	id, _ := auth.UserID(r.Context())
	return id
}

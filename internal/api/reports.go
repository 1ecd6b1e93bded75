package api

import (
	"encoding/json"
	"net/http"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

// GetOverview handles GET /reports/overview
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.journal.Overview(r.Context(), currentUser(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

// GetDeviations handles GET /reports/deviations
func (h *Handler) GetDeviations(w http.ResponseWriter, r *http.Request) {
	report, err := h.journal.Deviations(r.Context(), currentUser(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetEquityCurve handles GET /reports/equity
func (h *Handler) GetEquityCurve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, ok := parseTimeParam(w, q.Get("from"))
	if !ok {
		return
	}
	to, ok := parseTimeParam(w, q.Get("to"))
	if !ok {
		return
	}

	curve, err := h.journal.EquityCurve(r.Context(), currentUser(r), from, to)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, curve)
}

// GetRiskPolicy handles GET /risk/policy
func (h *Handler) GetRiskPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.journal.RiskPolicy(r.Context(), currentUser(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if policy == nil {
		respondError(w, http.StatusNotFound, "no risk policy configured")
		return
	}
	respondJSON(w, http.StatusOK, policy)
}

// PutRiskPolicy handles PUT /risk/policy
func (h *Handler) PutRiskPolicy(w http.ResponseWriter, r *http.Request) {
	var policy models.RiskPolicy
	if err := json.NewDecoder(r.Body).Decode(&policy); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	policy.UserID = currentUser(r)
	if err := h.journal.SetRiskPolicy(r.Context(), &policy); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, policy)
}

// GetRiskAlerts handles GET /risk/alerts
func (h *Handler) GetRiskAlerts(w http.ResponseWriter, r *http.Request) {
	report, err := h.journal.RiskAlerts(r.Context(), currentUser(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

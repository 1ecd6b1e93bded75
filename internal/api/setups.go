package api

import (
	"encoding/json"
	"net/http"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

// CreateSetup handles POST /setups
func (h *Handler) CreateSetup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	setup := &models.Setup{UserID: currentUser(r), Name: req.Name, Description: req.Description}
	if err := h.db.CreateSetup(setup); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, setup)
}

// ListSetups handles GET /setups
func (h *Handler) ListSetups(w http.ResponseWriter, r *http.Request) {
	setups, err := h.db.ListSetups(currentUser(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, setups)
}

// DeleteSetup handles DELETE /setups/{id}
func (h *Handler) DeleteSetup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.db.DeleteSetup(currentUser(r), id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateTag handles POST /tags
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	tag := &models.Tag{UserID: currentUser(r), Name: req.Name}
	if err := h.db.CreateTag(tag); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tag)
}

// ListTags handles GET /tags
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.db.ListTags(currentUser(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tags)
}

// DeleteTag handles DELETE /tags/{id}
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.db.DeleteTag(currentUser(r), id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tradejournal/trade-journal-service/internal/database"
	"github.com/tradejournal/trade-journal-service/internal/models"
)

type tradeRequest struct {
	Symbol                  string           `json:"symbol"`
	Direction               string           `json:"direction"`
	SetupID                 *int             `json:"setup_id"`
	PlannedEntry            decimal.Decimal  `json:"planned_entry"`
	PlannedStopLoss         decimal.Decimal  `json:"planned_stop_loss"`
	PlannedTakeProfit       decimal.Decimal  `json:"planned_take_profit"`
	PlannedTimeLimitMinutes *int             `json:"planned_time_limit_minutes"`
	PlannedReason           string           `json:"planned_reason"`
	EmotionalState          string           `json:"emotional_state"`
	Quantity                *decimal.Decimal `json:"quantity"`
	TagIDs                  []int            `json:"tag_ids"`
}

func (req *tradeRequest) toTrade(userID int) *models.Trade {
	t := &models.Trade{
		UserID:                  userID,
		SetupID:                 req.SetupID,
		Symbol:                  req.Symbol,
		Direction:               req.Direction,
		PlannedEntry:            req.PlannedEntry,
		PlannedStopLoss:         req.PlannedStopLoss,
		PlannedTakeProfit:       req.PlannedTakeProfit,
		PlannedTimeLimitMinutes: req.PlannedTimeLimitMinutes,
		PlannedReason:           req.PlannedReason,
		EmotionalState:          req.EmotionalState,
		TagIDs:                  req.TagIDs,
	}
	if req.Quantity != nil {
		t.Quantity = *req.Quantity
	}
	return t
}

// CreateTrade handles POST /trades
func (h *Handler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	trade := req.toTrade(currentUser(r))
	if err := h.journal.CreateTrade(r.Context(), trade); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, trade)
}

// ListTrades handles GET /trades
func (h *Handler) ListTrades(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := database.TradeFilter{
		Status:    q.Get("status"),
		Symbol:    q.Get("symbol"),
		Direction: q.Get("direction"),
	}
	if v := q.Get("setup_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid setup_id")
			return
		}
		filter.SetupID = &id
	}
	from, ok := parseTimeParam(w, q.Get("from"))
	if !ok {
		return
	}
	filter.From = from
	to, ok := parseTimeParam(w, q.Get("to"))
	if !ok {
		return
	}
	filter.To = to
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			respondError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = offset
	}

	trades, err := h.journal.ListTrades(r.Context(), currentUser(r), filter)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trades)
}

// GetTrade handles GET /trades/{id}
func (h *Handler) GetTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	trade, err := h.journal.GetTrade(r.Context(), currentUser(r), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trade)
}

// UpdateTrade handles PUT /trades/{id}
func (h *Handler) UpdateTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	trade := req.toTrade(currentUser(r))
	trade.ID = id
	if err := h.journal.UpdateTradePlan(r.Context(), trade); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trade)
}

// CancelTrade handles POST /trades/{id}/cancel
func (h *Handler) CancelTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	trade, err := h.journal.CancelTrade(r.Context(), currentUser(r), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trade)
}

// DeleteTrade handles DELETE /trades/{id}
func (h *Handler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.journal.DeleteTrade(r.Context(), currentUser(r), id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AppendEvent handles POST /trades/{id}/events
func (h *Handler) AppendEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Type       string           `json:"type"`
		Price      *decimal.Decimal `json:"price"`
		Quantity   *decimal.Decimal `json:"quantity"`
		Note       string           `json:"note"`
		OccurredAt *time.Time       `json:"occurred_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ev := &models.TradeEvent{
		TradeID:  id,
		Type:     req.Type,
		Price:    req.Price,
		Quantity: req.Quantity,
		Note:     req.Note,
	}
	if req.OccurredAt != nil {
		ev.OccurredAt = *req.OccurredAt
	}

	trade, err := h.journal.AppendEvent(r.Context(), currentUser(r), ev)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"event": ev,
		"trade": trade,
	})
}

// ListEvents handles GET /trades/{id}/events
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	events, err := h.journal.ListEvents(r.Context(), currentUser(r), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

type eventExportRow struct {
	TradeID    int    `csv:"trade_id"`
	Symbol     string `csv:"symbol"`
	Type       string `csv:"type"`
	Price      string `csv:"price"`
	Quantity   string `csv:"quantity"`
	Note       string `csv:"note"`
	OccurredAt string `csv:"occurred_at"`
}

// ExportEvents handles GET /trades/{id}/events/export, streaming the event
// log as CSV
func (h *Handler) ExportEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	userID := currentUser(r)

	trade, err := h.journal.GetTrade(r.Context(), userID, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	events, err := h.journal.ListEvents(r.Context(), userID, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	rows := make([]eventExportRow, 0, len(events))
	for _, ev := range events {
		row := eventExportRow{
			TradeID:    ev.TradeID,
			Symbol:     trade.Symbol,
			Type:       ev.Type,
			Note:       ev.Note,
			OccurredAt: ev.OccurredAt.UTC().Format(time.RFC3339),
		}
		if ev.Price != nil {
			row.Price = ev.Price.String()
		}
		if ev.Quantity != nil {
			row.Quantity = ev.Quantity.String()
		}
		rows = append(rows, row)
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="trade-%d-events.csv"`, id))
	if err := gocsv.Marshal(&rows, w); err != nil {
		h.logger.Error().Err(err).Int("trade_id", id).Msg("failed to write csv export")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid trade id")
		return 0, false
	}
	return id, true
}

func parseTimeParam(w http.ResponseWriter, value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		ts, err = time.Parse("2006-01-02", value)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid time parameter, want RFC3339 or YYYY-MM-DD")
			return nil, false
		}
	}
	return &ts, true
}

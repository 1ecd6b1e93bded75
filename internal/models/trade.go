package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade direction constants
const (
	DirectionLong  = "LONG"
	DirectionShort = "SHORT"
)

// Trade status constants
const (
	StatusPlanned   = "PLANNED"
	StatusOpen      = "OPEN"
	StatusClosed    = "CLOSED"
	StatusCancelled = "CANCELLED"
)

// Trade represents a planned or executed trade with its journal fields.
// Planned levels are fixed at creation; actual prices and derived analytics
// are filled in from the event log as the trade progresses.
type Trade struct {
	ID                      int              `json:"id"`
	UserID                  int              `json:"user_id"`
	SetupID                 *int             `json:"setup_id,omitempty"`
	Symbol                  string           `json:"symbol"`
	Direction               string           `json:"direction"`
	Status                  string           `json:"status"`
	PlannedEntry            decimal.Decimal  `json:"planned_entry"`
	PlannedStopLoss         decimal.Decimal  `json:"planned_stop_loss"`
	PlannedTakeProfit       decimal.Decimal  `json:"planned_take_profit"`
	PlannedRiskReward       decimal.Decimal  `json:"planned_risk_reward"`
	PlannedTimeLimitMinutes *int             `json:"planned_time_limit_minutes,omitempty"`
	PlannedReason           string           `json:"planned_reason,omitempty"`
	EmotionalState          string           `json:"emotional_state,omitempty"`
	Quantity                decimal.Decimal  `json:"quantity"`
	ActualEntryPrice        *decimal.Decimal `json:"actual_entry_price,omitempty"`
	ActualExitPrice         *decimal.Decimal `json:"actual_exit_price,omitempty"`
	Pnl                     *decimal.Decimal `json:"pnl,omitempty"`
	RMultiple               *decimal.Decimal `json:"r_multiple,omitempty"`
	CompliedWithPlan        *bool            `json:"complied_with_plan,omitempty"`
	OpenedAt                *time.Time       `json:"opened_at,omitempty"`
	ClosedAt                *time.Time       `json:"closed_at,omitempty"`
	CreatedAt               time.Time        `json:"created_at"`
	TagIDs                  []int            `json:"tag_ids,omitempty"`
}

// RiskDistance returns the planned per-unit risk, |entry - stop loss|.
func (t *Trade) RiskDistance() decimal.Decimal {
	return t.PlannedEntry.Sub(t.PlannedStopLoss).Abs()
}

// IsClosed reports whether the trade reached its terminal CLOSED state.
func (t *Trade) IsClosed() bool {
	return t.Status == StatusClosed
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade event type constants
const (
	EventEntry  = "ENTRY"
	EventAdd    = "ADD"
	EventReduce = "REDUCE"
	EventMoveSL = "MOVE_SL"
	EventMoveTP = "MOVE_TP"
	EventExit   = "EXIT"
	EventNote   = "NOTE"
)

// TradeEvent is one entry in a trade's append-only execution log.
// Events are ordered by OccurredAt; the id preserves insertion order and
// breaks timestamp ties.
type TradeEvent struct {
	ID         int              `json:"id"`
	TradeID    int              `json:"trade_id"`
	Type       string           `json:"type"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	Note       string           `json:"note,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
	CreatedAt  time.Time        `json:"created_at"`
}

package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

// Outcome holds the terminal results derived for a closing trade.
type Outcome struct {
	EntryPrice       decimal.Decimal
	ExitPrice        *decimal.Decimal
	Pnl              *decimal.Decimal
	RMultiple        *decimal.Decimal
	Deviations       Deviations
	CompliedWithPlan bool
	ClosedAt         time.Time
}

// DeriveOutcome computes pnl, realized R-multiple and plan compliance for a
// trade from its full event log. It is pure and deterministic: re-deriving
// over an unchanged log yields the same outcome. The second return value is
// false when no EXIT event exists yet. When a trade carries more than one
// EXIT event, the first one in chronological order is canonical.
func DeriveOutcome(t *models.Trade, events []models.TradeEvent) (Outcome, bool) {
	ordered := sortEvents(events)

	var exitEvent *models.TradeEvent
	var entryEvent *models.TradeEvent
	for i := range ordered {
		switch ordered[i].Type {
		case models.EventExit:
			if exitEvent == nil {
				exitEvent = &ordered[i]
			}
		case models.EventEntry:
			if entryEvent == nil {
				entryEvent = &ordered[i]
			}
		}
	}
	if exitEvent == nil {
		return Outcome{}, false
	}

	entryPrice := t.PlannedEntry
	if t.ActualEntryPrice != nil {
		entryPrice = *t.ActualEntryPrice
	} else if entryEvent != nil && entryEvent.Price != nil {
		entryPrice = *entryEvent.Price
	}

	out := Outcome{
		EntryPrice: entryPrice,
		ClosedAt:   exitEvent.OccurredAt,
		Deviations: DetectPlanDeviations(t, events),
	}
	out.CompliedWithPlan = out.Deviations.Compliant()

	if exitEvent.Price != nil {
		exitPrice := *exitEvent.Price
		out.ExitPrice = &exitPrice

		qty := t.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		move := exitPrice.Sub(entryPrice)
		if t.Direction == models.DirectionShort {
			move = entryPrice.Sub(exitPrice)
		}
		pnl := move.Mul(qty)
		out.Pnl = &pnl

		r := RealizedRMultiple(t.Direction, entryPrice, t.PlannedStopLoss, exitPrice)
		out.RMultiple = &r
	}

	return out, true
}

// ApplyOutcome derives the outcome for a closing trade and writes it back
// onto the trade in one step, transitioning the status to CLOSED. It returns
// false, leaving the trade untouched, when the log holds no EXIT event.
func ApplyOutcome(t *models.Trade, events []models.TradeEvent) bool {
	out, ok := DeriveOutcome(t, events)
	if !ok {
		return false
	}

	t.Status = models.StatusClosed
	closedAt := out.ClosedAt
	t.ClosedAt = &closedAt
	if t.ActualEntryPrice == nil {
		entry := out.EntryPrice
		t.ActualEntryPrice = &entry
	}
	t.ActualExitPrice = out.ExitPrice
	t.Pnl = out.Pnl
	t.RMultiple = out.RMultiple
	complied := out.CompliedWithPlan
	t.CompliedWithPlan = &complied
	return true
}

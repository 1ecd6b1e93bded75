package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

// ExitTolerance is the fraction of the planned risk distance an exit may
// fall short of the take-profit and still count as on-plan. Tunable, but
// changing it changes the meaning of historical compliance flags.
var ExitTolerance = decimal.NewFromFloat(0.1)

// Deviations records how a trade's execution departed from its plan.
type Deviations struct {
	EarlyExit     bool `json:"early_exit"`
	SLViolation   bool `json:"sl_violation"`
	TimeViolation bool `json:"time_violation"`
}

// Compliant reports whether no deviation was detected.
func (d Deviations) Compliant() bool {
	return !d.EarlyExit && !d.SLViolation && !d.TimeViolation
}

// DetectPlanDeviations inspects a trade's event log against its plan.
// Events are walked in occurred-at order with the insertion id as
// tie-break. Checks whose inputs are missing (no EXIT event, no price on an
// event, no time limit) are skipped rather than flagged.
func DetectPlanDeviations(t *models.Trade, events []models.TradeEvent) Deviations {
	var dev Deviations

	ordered := sortEvents(events)

	var exitEvent *models.TradeEvent
	for i := range ordered {
		ev := &ordered[i]
		if ev.Type == models.EventMoveSL && ev.Price != nil {
			if movedAgainstPlan(t.Direction, *ev.Price, t.PlannedStopLoss) {
				dev.SLViolation = true
			}
		}
		if ev.Type == models.EventExit && exitEvent == nil {
			exitEvent = ev
		}
	}

	if exitEvent == nil {
		return dev
	}

	risk := t.RiskDistance()
	if exitEvent.Price != nil && risk.IsPositive() {
		tolerance := risk.Mul(ExitTolerance)
		shortfall := t.PlannedTakeProfit.Sub(*exitEvent.Price)
		if t.Direction == models.DirectionShort {
			shortfall = exitEvent.Price.Sub(t.PlannedTakeProfit)
		}
		if shortfall.GreaterThan(tolerance) {
			dev.EarlyExit = true
		}
	}

	if t.PlannedTimeLimitMinutes != nil && len(ordered) > 0 {
		elapsed := exitEvent.OccurredAt.Sub(ordered[0].OccurredAt).Minutes()
		if elapsed > float64(*t.PlannedTimeLimitMinutes) {
			dev.TimeViolation = true
		}
	}

	return dev
}

// movedAgainstPlan reports whether a new stop loosens the planned stop,
// widening the risk: below plan for LONG, above plan for SHORT.
func movedAgainstPlan(direction string, newStop, plannedStop decimal.Decimal) bool {
	if direction == models.DirectionLong {
		return newStop.LessThan(plannedStop)
	}
	return newStop.GreaterThan(plannedStop)
}

func sortEvents(events []models.TradeEvent) []models.TradeEvent {
	ordered := make([]models.TradeEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].OccurredAt.Equal(ordered[j].OccurredAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].OccurredAt.Before(ordered[j].OccurredAt)
	})
	return ordered
}

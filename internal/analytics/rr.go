package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

// PlannedRiskReward returns the planned reward distance expressed as a
// multiple of the planned risk distance. A zero risk distance yields zero
// rather than an error.
func PlannedRiskReward(direction string, entry, stopLoss, takeProfit decimal.Decimal) decimal.Decimal {
	risk := entry.Sub(stopLoss).Abs()
	if risk.IsZero() {
		return decimal.Zero
	}
	reward := takeProfit.Sub(entry).Abs()
	return reward.Div(risk)
}

// RealizedRMultiple returns the signed price movement from entry to exit as
// a multiple of the risk distance. Movement is positive in the trade's
// favorable direction. A zero risk distance yields zero.
func RealizedRMultiple(direction string, entry, stopLoss, exitPrice decimal.Decimal) decimal.Decimal {
	risk := entry.Sub(stopLoss).Abs()
	if risk.IsZero() {
		return decimal.Zero
	}
	move := exitPrice.Sub(entry)
	if direction == models.DirectionShort {
		move = entry.Sub(exitPrice)
	}
	return move.Div(risk)
}

package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

// EquityCurve is the cumulative P&L walk over a set of closed trades.
type EquityCurve struct {
	Points      []decimal.Decimal `json:"points"`
	TotalPnl    decimal.Decimal   `json:"total_pnl"`
	MaxDrawdown decimal.Decimal   `json:"max_drawdown"`
}

// BuildEquityCurve folds closed trades, ordered by close time, into a
// running cumulative P&L series. Trades without a close time sort by
// creation time instead. A nil pnl contributes zero. MaxDrawdown is the
// largest decline from a prior peak of the walk, reported as a non-negative
// number.
func BuildEquityCurve(trades []*models.Trade) EquityCurve {
	ordered := make([]*models.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return closeTime(ordered[i]).Before(closeTime(ordered[j]))
	})

	curve := EquityCurve{Points: make([]decimal.Decimal, 0, len(ordered))}
	running := decimal.Zero
	peak := decimal.Zero
	peakSet := false
	drawdown := decimal.Zero

	for _, t := range ordered {
		if t.Pnl != nil {
			running = running.Add(*t.Pnl)
		}
		curve.Points = append(curve.Points, running)

		if !peakSet || running.GreaterThan(peak) {
			peak = running
			peakSet = true
		}
		if dip := running.Sub(peak); dip.LessThan(drawdown) {
			drawdown = dip
		}
	}

	curve.TotalPnl = running
	curve.MaxDrawdown = drawdown.Abs()
	return curve
}

func closeTime(t *models.Trade) time.Time {
	if t.ClosedAt != nil {
		return *t.ClosedAt
	}
	return t.CreatedAt
}

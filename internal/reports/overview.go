// Package reports builds aggregate views over a user's closed trades.
package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tradejournal/trade-journal-service/internal/analytics"
	"github.com/tradejournal/trade-journal-service/internal/models"
)

// UnassignedSetup groups trades without a setup in the setup ranking.
const UnassignedSetup = "unassigned"

const topN = 3

// Overview is the aggregate performance report for a set of closed trades.
type Overview struct {
	TotalTrades int               `json:"total_trades"`
	WinRate     decimal.Decimal   `json:"win_rate"`
	AverageR    decimal.Decimal   `json:"average_r"`
	Expectancy  decimal.Decimal   `json:"expectancy"`
	TotalPnl    decimal.Decimal   `json:"total_pnl"`
	MaxDrawdown decimal.Decimal   `json:"max_drawdown"`
	TopSymbols  []string          `json:"top_symbols"`
	TopSetups   []string          `json:"top_setups"`
	EquityCurve []decimal.Decimal `json:"equity_curve"`
}

// BuildOverview computes win rate, average R, expectancy, equity curve and
// the most traded symbols and setups. setupNames maps setup ids to display
// names; trades referencing an unknown or absent setup fall under
// UnassignedSetup. Empty input yields a zero-valued report, not an error.
func BuildOverview(trades []*models.Trade, setupNames map[int]string) Overview {
	curve := analytics.BuildEquityCurve(trades)
	ov := Overview{
		TotalTrades: len(trades),
		TotalPnl:    curve.TotalPnl,
		MaxDrawdown: curve.MaxDrawdown,
		EquityCurve: curve.Points,
	}
	if len(trades) == 0 {
		ov.TopSymbols = []string{}
		ov.TopSetups = []string{}
		return ov
	}

	wins := 0
	rSum := decimal.Zero
	symbolCounts := make(map[string]int)
	setupCounts := make(map[string]int)
	for _, t := range trades {
		if t.Pnl != nil && t.Pnl.IsPositive() {
			wins++
		}
		if t.RMultiple != nil {
			rSum = rSum.Add(*t.RMultiple)
		}
		symbolCounts[t.Symbol]++
		setup := UnassignedSetup
		if t.SetupID != nil {
			if name, ok := setupNames[*t.SetupID]; ok {
				setup = name
			}
		}
		setupCounts[setup]++
	}

	total := decimal.NewFromInt(int64(len(trades)))
	ov.WinRate = decimal.NewFromInt(int64(wins)).Div(total)
	ov.AverageR = rSum.Div(total)
	lossRate := decimal.NewFromInt(1).Sub(ov.WinRate)
	ov.Expectancy = ov.WinRate.Mul(ov.AverageR).Sub(lossRate.Mul(ov.AverageR.Abs()))

	ov.TopSymbols = topKeys(symbolCounts)
	ov.TopSetups = topKeys(setupCounts)
	return ov
}

// topKeys returns up to topN keys by descending count, name ascending on
// ties so the ranking is deterministic.
func topKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] == counts[keys[j]] {
			return keys[i] < keys[j]
		}
		return counts[keys[i]] > counts[keys[j]]
	})
	if len(keys) > topN {
		keys = keys[:topN]
	}
	return keys
}

// Package risk evaluates a user's trade history against their configured
// risk policy.
package risk

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

// RecentWindow bounds how many trades an evaluation scans.
const RecentWindow = 50

// Report is the outcome of a policy evaluation: zero or more human-readable
// alerts in check order.
type Report struct {
	Alerts []string `json:"alerts"`
}

// Triggered reports whether any limit was breached.
func (r Report) Triggered() bool {
	return len(r.Alerts) > 0
}

// Evaluate scans trades against the policy and returns the alerts raised.
// A nil policy raises nothing. Order does not matter, the evaluator sorts
// most-recent-first itself. The closed-trade checks (daily loss, streak)
// look at no more than RecentWindow trades; the open-trade checks (risk
// distance, duration) scan every open trade supplied, since an open trade
// can be arbitrarily older than the recent closed ones. now supplies the
// day boundary for the daily-loss check and the clock for the duration
// check.
func Evaluate(policy *models.RiskPolicy, trades []*models.Trade, now time.Time) Report {
	var report Report
	if policy == nil {
		return report
	}

	ordered := make([]*models.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return closedDesc(ordered[i]).After(closedDesc(ordered[j]))
	})
	recent := ordered
	if len(recent) > RecentWindow {
		recent = recent[:RecentWindow]
	}

	dailyLoss := decimal.Zero
	consecutiveLosses := 0
	streakBroken := false

	for _, t := range recent {
		if !t.IsClosed() {
			continue
		}
		pnl := decimal.Zero
		if t.Pnl != nil {
			pnl = *t.Pnl
		}
		if t.ClosedAt != nil && sameDay(*t.ClosedAt, now) && pnl.IsNegative() {
			dailyLoss = dailyLoss.Add(pnl)
		}
		if !streakBroken {
			if pnl.IsNegative() {
				consecutiveLosses++
			} else {
				streakBroken = true
			}
		}
	}

	if policy.MaxDailyLoss != nil && dailyLoss.Abs().GreaterThanOrEqual(*policy.MaxDailyLoss) {
		report.Alerts = append(report.Alerts,
			fmt.Sprintf("daily loss %s has reached the configured maximum of %s",
				dailyLoss.Abs(), policy.MaxDailyLoss))
	}

	if policy.MaxConsecutiveLosses != nil && consecutiveLosses >= *policy.MaxConsecutiveLosses {
		report.Alerts = append(report.Alerts,
			fmt.Sprintf("%d consecutive losing trades reached the configured maximum of %d",
				consecutiveLosses, *policy.MaxConsecutiveLosses))
	}

	if policy.MaxRiskPerTrade != nil {
		for _, t := range ordered {
			if t.Status != models.StatusOpen {
				continue
			}
			if t.RiskDistance().GreaterThan(*policy.MaxRiskPerTrade) {
				report.Alerts = append(report.Alerts,
					fmt.Sprintf("trade %d risk %s exceeds the maximum risk per trade of %s",
						t.ID, t.RiskDistance(), policy.MaxRiskPerTrade))
			}
		}
	}

	if policy.MaxTradeDurationMinutes != nil {
		limit := time.Duration(*policy.MaxTradeDurationMinutes) * time.Minute
		for _, t := range ordered {
			if t.Status != models.StatusOpen || t.OpenedAt == nil {
				continue
			}
			if now.Sub(*t.OpenedAt) > limit {
				report.Alerts = append(report.Alerts,
					fmt.Sprintf("trade %d has been open longer than the maximum of %d minutes",
						t.ID, *policy.MaxTradeDurationMinutes))
			}
		}
	}

	return report
}

func closedDesc(t *models.Trade) time.Time {
	if t.ClosedAt != nil {
		return *t.ClosedAt
	}
	return t.CreatedAt
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

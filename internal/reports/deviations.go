package reports

import (
	"github.com/tradejournal/trade-journal-service/internal/analytics"
	"github.com/tradejournal/trade-journal-service/internal/models"
)

// DeviationsReport counts plan deviations across a set of closed trades.
type DeviationsReport struct {
	TotalTrades        int `json:"total_trades"`
	EarlyExitCount     int `json:"early_exit_count"`
	SLViolationCount   int `json:"sl_violation_count"`
	TimeViolationCount int `json:"time_violation_count"`
}

// BuildDeviationsReport recomputes each trade's deviations from its event
// log. Nothing is read from stored compliance flags, so the report can never
// go stale against the logs. eventsByTrade maps trade id to that trade's
// full event log; trades with no log contribute only to the total.
func BuildDeviationsReport(trades []*models.Trade, eventsByTrade map[int][]models.TradeEvent) DeviationsReport {
	report := DeviationsReport{TotalTrades: len(trades)}
	for _, t := range trades {
		events, ok := eventsByTrade[t.ID]
		if !ok || len(events) == 0 {
			continue
		}
		dev := analytics.DetectPlanDeviations(t, events)
		if dev.EarlyExit {
			report.EarlyExitCount++
		}
		if dev.SLViolation {
			report.SLViolationCount++
		}
		if dev.TimeViolation {
			report.TimeViolationCount++
		}
	}
	return report
}

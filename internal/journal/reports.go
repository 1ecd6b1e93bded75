package journal

import (
	"context"
	"time"

	"github.com/tradejournal/trade-journal-service/internal/analytics"
	"github.com/tradejournal/trade-journal-service/internal/models"
	"github.com/tradejournal/trade-journal-service/internal/reports"
	"github.com/tradejournal/trade-journal-service/internal/risk"
)

// Overview builds a user's performance overview over closed trades,
// served from the report cache when a fresh entry exists.
func (s *Service) Overview(ctx context.Context, userID int) (reports.Overview, error) {
	if cached, ok := s.cache.GetOverview(ctx, userID); ok {
		return cached, nil
	}

	trades, err := s.db.ListClosedTrades(userID, nil, nil)
	if err != nil {
		return reports.Overview{}, err
	}
	names, err := s.db.SetupNames(userID)
	if err != nil {
		return reports.Overview{}, err
	}

	overview := reports.BuildOverview(trades, names)
	if err := s.cache.SetOverview(ctx, userID, overview); err != nil {
		s.logger.Warn().Err(err).Int("user_id", userID).Msg("failed to cache overview report")
	}
	return overview, nil
}

// Deviations recomputes plan-compliance statistics over a user's closed
// trades from their event logs.
func (s *Service) Deviations(ctx context.Context, userID int) (reports.DeviationsReport, error) {
	trades, err := s.db.ListClosedTrades(userID, nil, nil)
	if err != nil {
		return reports.DeviationsReport{}, err
	}

	eventsByTrade := make(map[int][]models.TradeEvent, len(trades))
	for _, t := range trades {
		events, err := s.db.ListTradeEvents(t.ID)
		if err != nil {
			return reports.DeviationsReport{}, err
		}
		eventsByTrade[t.ID] = events
	}
	return reports.BuildDeviationsReport(trades, eventsByTrade), nil
}

// EquityCurve builds the cumulative pnl series over a user's closed trades
// within the optional date range.
func (s *Service) EquityCurve(ctx context.Context, userID int, from, to *time.Time) (analytics.EquityCurve, error) {
	trades, err := s.db.ListClosedTrades(userID, from, to)
	if err != nil {
		return analytics.EquityCurve{}, err
	}
	return analytics.BuildEquityCurve(trades), nil
}

// RiskPolicy returns a user's risk policy, nil when none is configured
func (s *Service) RiskPolicy(ctx context.Context, userID int) (*models.RiskPolicy, error) {
	return s.db.GetRiskPolicy(userID)
}

// SetRiskPolicy creates or replaces a user's risk policy
func (s *Service) SetRiskPolicy(ctx context.Context, p *models.RiskPolicy) error {
	return s.db.UpsertRiskPolicy(p)
}

// RiskAlerts evaluates a user's risk policy against their recent trades.
// Open trades are fetched separately and unbounded: a trade left open long
// enough to fall out of the recent window is exactly the one the duration
// check has to see.
func (s *Service) RiskAlerts(ctx context.Context, userID int) (risk.Report, error) {
	policy, err := s.db.GetRiskPolicy(userID)
	if err != nil {
		return risk.Report{}, err
	}
	recent, err := s.db.GetRecentTrades(userID, risk.RecentWindow)
	if err != nil {
		return risk.Report{}, err
	}
	open, err := s.db.ListOpenTrades(userID)
	if err != nil {
		return risk.Report{}, err
	}
	return risk.Evaluate(policy, mergeTrades(recent, open), time.Now().UTC()), nil
}

// mergeTrades combines two trade sets, dropping duplicates by id
func mergeTrades(a, b []*models.Trade) []*models.Trade {
	merged := make([]*models.Trade, 0, len(a)+len(b))
	seen := make(map[int]bool, len(a))
	for _, t := range a {
		merged = append(merged, t)
		seen[t.ID] = true
	}
	for _, t := range b {
		if !seen[t.ID] {
			merged = append(merged, t)
		}
	}
	return merged
}

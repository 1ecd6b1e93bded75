package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradejournal/trade-journal-service/internal/analytics"
	"github.com/tradejournal/trade-journal-service/internal/database"
	"github.com/tradejournal/trade-journal-service/internal/models"
	"github.com/tradejournal/trade-journal-service/internal/reports"
)

// Publisher emits trade lifecycle notifications. Implementations must be
// safe for concurrent use.
type Publisher interface {
	PublishTradeOpened(ctx context.Context, trade *models.Trade) error
	PublishTradeClosed(ctx context.Context, trade *models.Trade) error
}

// Service orchestrates trade planning, the append-only event log and the
// derived analytics written back when a trade closes.
type Service struct {
	db        *database.DB
	publisher Publisher
	cache     *reports.Cache
	logger    zerolog.Logger
}

// NewService creates a journal service. publisher may be nil when no broker
// is configured.
func NewService(db *database.DB, publisher Publisher, cache *reports.Cache, logger zerolog.Logger) *Service {
	if cache == nil {
		cache = reports.NewCache(nil, 0)
	}
	return &Service{db: db, publisher: publisher, cache: cache, logger: logger}
}

// CreateTrade validates a trade plan, derives its planned risk/reward ratio
// and stores it in PLANNED status.
func (s *Service) CreateTrade(ctx context.Context, t *models.Trade) error {
	if err := validatePlan(t); err != nil {
		return err
	}

	t.Status = models.StatusPlanned
	t.PlannedRiskReward = analytics.PlannedRiskReward(t.Direction, t.PlannedEntry, t.PlannedStopLoss, t.PlannedTakeProfit)

	if err := s.db.CreateTrade(t); err != nil {
		return err
	}
	if len(t.TagIDs) > 0 {
		if err := s.db.SetTradeTags(t.ID, t.TagIDs); err != nil {
			return err
		}
	}

	s.logger.Info().Int("trade_id", t.ID).Str("symbol", t.Symbol).Str("direction", t.Direction).Msg("trade planned")
	return nil
}

// GetTrade retrieves one of a user's trades
func (s *Service) GetTrade(ctx context.Context, userID, id int) (*models.Trade, error) {
	return s.db.GetTradeByID(userID, id)
}

// ListTrades retrieves a user's trades narrowed by the filter
func (s *Service) ListTrades(ctx context.Context, userID int, f database.TradeFilter) ([]*models.Trade, error) {
	return s.db.ListTrades(userID, f)
}

// UpdateTradePlan replaces the plan fields of a trade that has not been
// executed yet. Plans are immutable once the first event is recorded.
func (s *Service) UpdateTradePlan(ctx context.Context, t *models.Trade) error {
	existing, err := s.db.GetTradeByID(t.UserID, t.ID)
	if err != nil {
		return err
	}
	if existing.Status != models.StatusPlanned {
		return fmt.Errorf("cannot update plan of %s trade", existing.Status)
	}
	if err := validatePlan(t); err != nil {
		return err
	}

	t.PlannedRiskReward = analytics.PlannedRiskReward(t.Direction, t.PlannedEntry, t.PlannedStopLoss, t.PlannedTakeProfit)
	if err := s.db.UpdateTradePlan(t); err != nil {
		return err
	}
	if t.TagIDs != nil {
		if err := s.db.SetTradeTags(t.ID, t.TagIDs); err != nil {
			return err
		}
	}
	return nil
}

// CancelTrade moves a planned trade to CANCELLED without touching its log
func (s *Service) CancelTrade(ctx context.Context, userID, id int) (*models.Trade, error) {
	var trade *models.Trade
	err := s.db.WithTx(func(tx *database.Tx) error {
		t, err := tx.GetTradeForUpdate(userID, id)
		if err != nil {
			return err
		}
		if t.Status != models.StatusPlanned {
			return fmt.Errorf("cannot cancel %s trade", t.Status)
		}
		t.Status = models.StatusCancelled
		if err := tx.UpdateTradeExecution(t); err != nil {
			return err
		}
		trade = t
		return nil
	})
	return trade, err
}

// DeleteTrade removes a trade and its event log
func (s *Service) DeleteTrade(ctx context.Context, userID, id int) error {
	if err := s.db.DeleteTrade(userID, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

// ListEvents retrieves a trade's event log in occurrence order
func (s *Service) ListEvents(ctx context.Context, userID, tradeID int) ([]models.TradeEvent, error) {
	if _, err := s.db.GetTradeByID(userID, tradeID); err != nil {
		return nil, err
	}
	return s.db.ListTradeEvents(tradeID)
}

// AppendEvent records one execution event on a trade's log and applies the
// resulting state transition in the same transaction. An ENTRY opens the
// trade; the first EXIT closes it and writes back pnl, realized R-multiple
// and plan compliance derived from the full log. Events on CLOSED or
// CANCELLED trades are rejected.
func (s *Service) AppendEvent(ctx context.Context, userID int, ev *models.TradeEvent) (*models.Trade, error) {
	if err := validateEvent(ev); err != nil {
		return nil, err
	}

	var trade *models.Trade
	var closed, opened bool
	err := s.db.WithTx(func(tx *database.Tx) error {
		t, err := tx.GetTradeForUpdate(userID, ev.TradeID)
		if err != nil {
			return err
		}
		if t.Status == models.StatusClosed || t.Status == models.StatusCancelled {
			return fmt.Errorf("cannot append event to %s trade", t.Status)
		}

		if err := tx.InsertTradeEvent(ev); err != nil {
			return err
		}

		if ev.Type == models.EventEntry && t.Status == models.StatusPlanned {
			t.Status = models.StatusOpen
			openedAt := ev.OccurredAt
			t.OpenedAt = &openedAt
			if t.ActualEntryPrice == nil && ev.Price != nil {
				entry := *ev.Price
				t.ActualEntryPrice = &entry
			}
			opened = true
		}

		if ev.Type == models.EventExit {
			events, err := tx.ListTradeEvents(ev.TradeID)
			if err != nil {
				return err
			}
			if analytics.ApplyOutcome(t, events) {
				closed = true
			}
		}

		if err := tx.UpdateTradeExecution(t); err != nil {
			return err
		}
		trade = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, userID)
	s.notify(ctx, trade, opened, closed)
	return trade, nil
}

// notify publishes lifecycle events after the transaction committed. A
// publish failure is logged, not surfaced: the journal is the source of
// truth and the write already happened.
func (s *Service) notify(ctx context.Context, trade *models.Trade, opened, closed bool) {
	if s.publisher == nil {
		return
	}
	if opened {
		if err := s.publisher.PublishTradeOpened(ctx, trade); err != nil {
			s.logger.Error().Err(err).Int("trade_id", trade.ID).Msg("failed to publish trade opened event")
		}
	}
	if closed {
		if err := s.publisher.PublishTradeClosed(ctx, trade); err != nil {
			s.logger.Error().Err(err).Int("trade_id", trade.ID).Msg("failed to publish trade closed event")
		}
	}
}

func validatePlan(t *models.Trade) error {
	if t.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	switch t.Direction {
	case models.DirectionLong:
		if !t.PlannedStopLoss.LessThan(t.PlannedEntry) || !t.PlannedEntry.LessThan(t.PlannedTakeProfit) {
			return fmt.Errorf("long plan requires stop loss < entry < take profit")
		}
	case models.DirectionShort:
		if !t.PlannedTakeProfit.LessThan(t.PlannedEntry) || !t.PlannedEntry.LessThan(t.PlannedStopLoss) {
			return fmt.Errorf("short plan requires take profit < entry < stop loss")
		}
	default:
		return fmt.Errorf("invalid direction: %s", t.Direction)
	}
	return nil
}

func validateEvent(ev *models.TradeEvent) error {
	switch ev.Type {
	case models.EventEntry, models.EventAdd, models.EventReduce,
		models.EventMoveSL, models.EventMoveTP, models.EventExit, models.EventNote:
	default:
		return fmt.Errorf("invalid event type: %s", ev.Type)
	}
	if ev.Type != models.EventNote && ev.Price == nil {
		return fmt.Errorf("%s event requires a price", ev.Type)
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	return nil
}

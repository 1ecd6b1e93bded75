package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

func TestTradeEventsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("events append and list in occurrence order", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		trade := plannedTrade(userID, "EURUSD")
		require.NoError(t, testDB.CreateTrade(trade))

		base := time.Now().Add(-time.Hour).Truncate(time.Second)
		price := decimal.NewFromFloat(100)
		later := decimal.NewFromFloat(103)

		err := testDB.WithTx(func(x *Tx) error {
			// appended out of order on purpose
			if err := x.InsertTradeEvent(&models.TradeEvent{
				TradeID: trade.ID, Type: models.EventExit, Price: &later,
				OccurredAt: base.Add(30 * time.Minute),
			}); err != nil {
				return err
			}
			return x.InsertTradeEvent(&models.TradeEvent{
				TradeID: trade.ID, Type: models.EventEntry, Price: &price,
				OccurredAt: base,
			})
		})
		require.NoError(t, err)

		events, err := testDB.ListTradeEvents(trade.ID)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, models.EventEntry, events[0].Type)
		assert.Equal(t, models.EventExit, events[1].Type)
		require.NotNil(t, events[0].Price)
		assert.True(t, price.Equal(*events[0].Price))
	})

	t.Run("same timestamp breaks ties by insertion order", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		trade := plannedTrade(userID, "EURUSD")
		require.NoError(t, testDB.CreateTrade(trade))

		at := time.Now().Truncate(time.Second)
		err := testDB.WithTx(func(x *Tx) error {
			for _, note := range []string{"first", "second", "third"} {
				if err := x.InsertTradeEvent(&models.TradeEvent{
					TradeID: trade.ID, Type: models.EventNote, Note: note, OccurredAt: at,
				}); err != nil {
					return err
				}
			}
			return nil
		})
		require.NoError(t, err)

		events, err := testDB.ListTradeEvents(trade.ID)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, "first", events[0].Note)
		assert.Equal(t, "third", events[2].Note)
	})

	t.Run("rolled back transaction leaves no events", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		trade := plannedTrade(userID, "EURUSD")
		require.NoError(t, testDB.CreateTrade(trade))

		err := testDB.WithTx(func(x *Tx) error {
			if err := x.InsertTradeEvent(&models.TradeEvent{
				TradeID: trade.ID, Type: models.EventNote, Note: "doomed", OccurredAt: time.Now(),
			}); err != nil {
				return err
			}
			return assert.AnError
		})
		require.Error(t, err)

		events, err := testDB.ListTradeEvents(trade.ID)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("UpdateTradeExecution writes back derived fields atomically", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		trade := plannedTrade(userID, "EURUSD")
		require.NoError(t, testDB.CreateTrade(trade))

		entry := decimal.NewFromFloat(100)
		exit := decimal.NewFromFloat(110)
		pnl := decimal.NewFromFloat(10)
		r := decimal.NewFromFloat(2)
		complied := true
		openedAt := time.Now().Add(-time.Hour).Truncate(time.Second)
		closedAt := time.Now().Truncate(time.Second)

		err := testDB.WithTx(func(x *Tx) error {
			locked, err := x.GetTradeForUpdate(userID, trade.ID)
			if err != nil {
				return err
			}
			locked.Status = models.StatusClosed
			locked.ActualEntryPrice = &entry
			locked.ActualExitPrice = &exit
			locked.Pnl = &pnl
			locked.RMultiple = &r
			locked.CompliedWithPlan = &complied
			locked.OpenedAt = &openedAt
			locked.ClosedAt = &closedAt
			return x.UpdateTradeExecution(locked)
		})
		require.NoError(t, err)

		retrieved, err := testDB.GetTradeByID(userID, trade.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusClosed, retrieved.Status)
		require.NotNil(t, retrieved.Pnl)
		assert.True(t, pnl.Equal(*retrieved.Pnl))
		require.NotNil(t, retrieved.RMultiple)
		assert.True(t, r.Equal(*retrieved.RMultiple))
		require.NotNil(t, retrieved.CompliedWithPlan)
		assert.True(t, *retrieved.CompliedWithPlan)
		require.NotNil(t, retrieved.ClosedAt)
	})
}

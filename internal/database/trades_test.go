package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

func createTestUser(t *testing.T, testDB *TestDB, email string) int {
	t.Helper()
	user := &models.User{Email: email, HashedPassword: "x"}
	require.NoError(t, testDB.CreateUser(user))
	return user.ID
}

func plannedTrade(userID int, symbol string) *models.Trade {
	return &models.Trade{
		UserID:            userID,
		Symbol:            symbol,
		Direction:         models.DirectionLong,
		Status:            models.StatusPlanned,
		PlannedEntry:      decimal.NewFromFloat(100),
		PlannedStopLoss:   decimal.NewFromFloat(95),
		PlannedTakeProfit: decimal.NewFromFloat(110),
		PlannedRiskReward: decimal.NewFromFloat(2),
	}
}

func TestTradesRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("CreateTrade creates new trade", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		limit := 90
		trade := plannedTrade(userID, "EURUSD")
		trade.PlannedTimeLimitMinutes = &limit
		trade.PlannedReason = "break of structure"
		trade.Quantity = decimal.NewFromFloat(2)

		err := testDB.CreateTrade(trade)
		require.NoError(t, err)
		assert.NotZero(t, trade.ID)
		assert.False(t, trade.CreatedAt.IsZero())
	})

	t.Run("GetTradeByID retrieves trade with plan fields", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		trade := plannedTrade(userID, "GBPUSD")
		require.NoError(t, testDB.CreateTrade(trade))

		retrieved, err := testDB.GetTradeByID(userID, trade.ID)
		require.NoError(t, err)
		assert.Equal(t, "GBPUSD", retrieved.Symbol)
		assert.Equal(t, models.DirectionLong, retrieved.Direction)
		assert.Equal(t, models.StatusPlanned, retrieved.Status)
		assert.True(t, decimal.NewFromFloat(100).Equal(retrieved.PlannedEntry))
		assert.True(t, decimal.NewFromFloat(2).Equal(retrieved.PlannedRiskReward))
		assert.Nil(t, retrieved.Pnl)
		assert.Nil(t, retrieved.CompliedWithPlan)
	})

	t.Run("GetTradeByID scopes by user", func(t *testing.T) {
		testDB.TruncateAll(t)
		ownerID := createTestUser(t, testDB, "owner@example.com")
		otherID := createTestUser(t, testDB, "other@example.com")

		trade := plannedTrade(ownerID, "EURUSD")
		require.NoError(t, testDB.CreateTrade(trade))

		_, err := testDB.GetTradeByID(otherID, trade.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("ListTrades filters by status and symbol", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		first := plannedTrade(userID, "EURUSD")
		require.NoError(t, testDB.CreateTrade(first))
		second := plannedTrade(userID, "GBPUSD")
		second.Status = models.StatusOpen
		require.NoError(t, testDB.CreateTrade(second))

		planned, err := testDB.ListTrades(userID, TradeFilter{Status: models.StatusPlanned})
		require.NoError(t, err)
		require.Len(t, planned, 1)
		assert.Equal(t, "EURUSD", planned[0].Symbol)

		gbp, err := testDB.ListTrades(userID, TradeFilter{Symbol: "GBPUSD"})
		require.NoError(t, err)
		require.Len(t, gbp, 1)
		assert.Equal(t, models.StatusOpen, gbp[0].Status)
	})

	t.Run("ListClosedTrades orders by close time ascending", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		newer := plannedTrade(userID, "LATE")
		require.NoError(t, testDB.CreateTrade(newer))
		older := plannedTrade(userID, "EARLY")
		require.NoError(t, testDB.CreateTrade(older))

		closeAt := func(tr *models.Trade, at time.Time) {
			_, err := testDB.GetRawConn().Exec(
				`UPDATE trades SET status = 'CLOSED', closed_at = $2 WHERE id = $1`, tr.ID, at)
			require.NoError(t, err)
		}
		now := time.Now()
		closeAt(newer, now)
		closeAt(older, now.Add(-time.Hour))

		closed, err := testDB.ListClosedTrades(userID, nil, nil)
		require.NoError(t, err)
		require.Len(t, closed, 2)
		assert.Equal(t, "EARLY", closed[0].Symbol)
		assert.Equal(t, "LATE", closed[1].Symbol)
	})

	t.Run("ListOpenTrades returns every open trade oldest first", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		older := plannedTrade(userID, "EARLY")
		require.NoError(t, testDB.CreateTrade(older))
		newer := plannedTrade(userID, "LATE")
		require.NoError(t, testDB.CreateTrade(newer))
		planned := plannedTrade(userID, "IDLE")
		require.NoError(t, testDB.CreateTrade(planned))

		openAt := func(tr *models.Trade, at time.Time) {
			_, err := testDB.GetRawConn().Exec(
				`UPDATE trades SET status = 'OPEN', opened_at = $2 WHERE id = $1`, tr.ID, at)
			require.NoError(t, err)
		}
		now := time.Now()
		openAt(newer, now)
		openAt(older, now.Add(-72*time.Hour))

		open, err := testDB.ListOpenTrades(userID)
		require.NoError(t, err)
		require.Len(t, open, 2)
		assert.Equal(t, "EARLY", open[0].Symbol)
		assert.Equal(t, "LATE", open[1].Symbol)
	})

	t.Run("GetRecentTrades returns newest first with limit", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		for i := 0; i < 5; i++ {
			require.NoError(t, testDB.CreateTrade(plannedTrade(userID, "EURUSD")))
		}

		recent, err := testDB.GetRecentTrades(userID, 3)
		require.NoError(t, err)
		assert.Len(t, recent, 3)
	})

	t.Run("UpdateTradePlan rewrites plan fields", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		trade := plannedTrade(userID, "EURUSD")
		require.NoError(t, testDB.CreateTrade(trade))

		trade.PlannedTakeProfit = decimal.NewFromFloat(112)
		trade.PlannedRiskReward = decimal.NewFromFloat(2.4)
		require.NoError(t, testDB.UpdateTradePlan(trade))

		retrieved, err := testDB.GetTradeByID(userID, trade.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromFloat(112).Equal(retrieved.PlannedTakeProfit))
	})

	t.Run("DeleteTrade removes trade", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		trade := plannedTrade(userID, "EURUSD")
		require.NoError(t, testDB.CreateTrade(trade))
		require.NoError(t, testDB.DeleteTrade(userID, trade.ID))

		_, err := testDB.GetTradeByID(userID, trade.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("DeleteTrade returns error for non-existent trade", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		err := testDB.DeleteTrade(userID, 99999)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

package database

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

func TestRiskPoliciesRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("GetRiskPolicy returns nil when none is set", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		policy, err := testDB.GetRiskPolicy(userID)
		require.NoError(t, err)
		assert.Nil(t, policy)
	})

	t.Run("UpsertRiskPolicy creates then replaces", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		maxLoss := decimal.NewFromFloat(250)
		losses := 3
		policy := &models.RiskPolicy{
			UserID:               userID,
			MaxDailyLoss:         &maxLoss,
			MaxConsecutiveLosses: &losses,
		}
		require.NoError(t, testDB.UpsertRiskPolicy(policy))
		assert.NotZero(t, policy.ID)

		retrieved, err := testDB.GetRiskPolicy(userID)
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		require.NotNil(t, retrieved.MaxDailyLoss)
		assert.True(t, maxLoss.Equal(*retrieved.MaxDailyLoss))
		assert.Nil(t, retrieved.MaxRiskPerTrade)

		newLoss := decimal.NewFromFloat(100)
		policy.MaxDailyLoss = &newLoss
		policy.MaxConsecutiveLosses = nil
		require.NoError(t, testDB.UpsertRiskPolicy(policy))

		retrieved, err = testDB.GetRiskPolicy(userID)
		require.NoError(t, err)
		require.NotNil(t, retrieved.MaxDailyLoss)
		assert.True(t, newLoss.Equal(*retrieved.MaxDailyLoss))
		assert.Nil(t, retrieved.MaxConsecutiveLosses, "unset limits are cleared on replace")
	})
}

func TestUsersRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("CreateUser and lookups", func(t *testing.T) {
		testDB.TruncateAll(t)

		user := &models.User{Email: "jo@example.com", HashedPassword: "hash", FullName: "Jo"}
		require.NoError(t, testDB.CreateUser(user))
		assert.NotZero(t, user.ID)

		byEmail, err := testDB.GetUserByEmail("jo@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.Equal(t, "Jo", byEmail.FullName)

		byID, err := testDB.GetUserByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "jo@example.com", byID.Email)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		testDB.TruncateAll(t)

		first := &models.User{Email: "dup@example.com", HashedPassword: "hash"}
		require.NoError(t, testDB.CreateUser(first))

		second := &models.User{Email: "dup@example.com", HashedPassword: "hash"}
		err := testDB.CreateUser(second)
		require.Error(t, err)
	})
}

func TestSetupsAndTagsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("setups round trip and name map", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		setup := &models.Setup{UserID: userID, Name: "Breakout", Description: "range break"}
		require.NoError(t, testDB.CreateSetup(setup))

		names, err := testDB.SetupNames(userID)
		require.NoError(t, err)
		assert.Equal(t, "Breakout", names[setup.ID])

		require.NoError(t, testDB.DeleteSetup(userID, setup.ID))
		setups, err := testDB.ListSetups(userID)
		require.NoError(t, err)
		assert.Empty(t, setups)
	})

	t.Run("trade tags link and replace", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "trader@example.com")

		trade := plannedTrade(userID, "EURUSD")
		require.NoError(t, testDB.CreateTrade(trade))

		a := &models.Tag{UserID: userID, Name: "a-plus"}
		b := &models.Tag{UserID: userID, Name: "news"}
		require.NoError(t, testDB.CreateTag(a))
		require.NoError(t, testDB.CreateTag(b))

		require.NoError(t, testDB.SetTradeTags(trade.ID, []int{a.ID, b.ID}))
		ids, err := testDB.GetTradeTagIDs(trade.ID)
		require.NoError(t, err)
		assert.Len(t, ids, 2)

		require.NoError(t, testDB.SetTradeTags(trade.ID, []int{b.ID}))
		ids, err = testDB.GetTradeTagIDs(trade.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{b.ID}, ids)
	})
}

package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("all tables exist", func(t *testing.T) {
		expectedTables := []string{
			"users",
			"setups",
			"tags",
			"trades",
			"trade_events",
			"trade_tags",
			"risk_policies",
		}

		for _, tableName := range expectedTables {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM information_schema.tables
					WHERE table_schema = 'public'
					AND table_name = $1
				)
			`, tableName).Scan(&exists)

			require.NoError(t, err, "failed to check table existence for %s", tableName)
			assert.True(t, exists, "table %s should exist", tableName)
		}
	})

	t.Run("trades table has correct columns", func(t *testing.T) {
		expectedColumns := map[string]string{
			"id":                         "integer",
			"user_id":                    "integer",
			"setup_id":                   "integer",
			"symbol":                     "character varying",
			"direction":                  "character varying",
			"status":                     "character varying",
			"planned_entry":              "numeric",
			"planned_stop_loss":          "numeric",
			"planned_take_profit":        "numeric",
			"planned_risk_reward":        "numeric",
			"planned_time_limit_minutes": "integer",
			"quantity":                   "numeric",
			"actual_entry_price":         "numeric",
			"actual_exit_price":          "numeric",
			"pnl":                        "numeric",
			"r_multiple":                 "numeric",
			"complied_with_plan":         "boolean",
			"opened_at":                  "timestamp with time zone",
			"closed_at":                  "timestamp with time zone",
			"created_at":                 "timestamp with time zone",
		}

		for column, dataType := range expectedColumns {
			var actualType string
			err := testDB.GetRawConn().QueryRow(`
				SELECT data_type
				FROM information_schema.columns
				WHERE table_name = 'trades' AND column_name = $1
			`, column).Scan(&actualType)

			require.NoError(t, err, "column %s should exist", column)
			assert.Equal(t, dataType, actualType, "column %s has wrong type", column)
		}
	})

	t.Run("trade direction is constrained", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB, "constraint@example.com")

		_, err := testDB.GetRawConn().Exec(`
			INSERT INTO trades (user_id, symbol, direction, status, planned_entry, planned_stop_loss, planned_take_profit)
			VALUES ($1, 'EURUSD', 'SIDEWAYS', 'PLANNED', 100, 95, 110)
		`, userID)
		assert.Error(t, err, "invalid direction should be rejected")
	})
}

package database

import (
	"database/sql"
	"fmt"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

// Tx is a transaction-scoped view of the repositories. Event appends run
// inside one so the event insert and the derived write-back commit together,
// and the row lock serializes concurrent appends to the same trade.
type Tx struct {
	tx *sql.Tx
}

// WithTx runs fn inside a transaction, committing on nil and rolling back
// on error or panic
func (db *DB) WithTx(fn func(*Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Tx{tx: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTradeForUpdate retrieves a trade and locks its row for the duration of
// the transaction
func (x *Tx) GetTradeForUpdate(userID, id int) (*models.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`
	return scanTrade(x.tx.QueryRow(query, id, userID))
}

// ListTradeEvents retrieves the trade's event log inside the transaction
func (x *Tx) ListTradeEvents(tradeID int) ([]models.TradeEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM trade_events
		WHERE trade_id = $1
		ORDER BY occurred_at ASC, id ASC
	`
	return scanEvents(x.tx.Query(query, tradeID))
}

// InsertTradeEvent appends an event to a trade's log
func (x *Tx) InsertTradeEvent(ev *models.TradeEvent) error {
	return insertEvent(x.tx, ev)
}

// UpdateTradeExecution writes back status, actual prices, timestamps and
// derived analytics in a single statement
func (x *Tx) UpdateTradeExecution(t *models.Trade) error {
	query := `
		UPDATE trades SET
			status = $3, actual_entry_price = $4, actual_exit_price = $5,
			pnl = $6, r_multiple = $7, complied_with_plan = $8,
			opened_at = $9, closed_at = $10
		WHERE id = $1 AND user_id = $2
	`
	result, err := x.tx.Exec(query,
		t.ID, t.UserID, t.Status, t.ActualEntryPrice, t.ActualExitPrice,
		t.Pnl, t.RMultiple, t.CompliedWithPlan, t.OpenedAt, t.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update trade execution: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("trade not found: %d", t.ID)
	}
	return nil
}

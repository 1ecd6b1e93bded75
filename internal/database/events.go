package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

const eventColumns = `id, trade_id, type, price, quantity, note, occurred_at, created_at`

// ListTradeEvents retrieves a trade's full event log in occurrence order,
// insertion order breaking ties
func (db *DB) ListTradeEvents(tradeID int) ([]models.TradeEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM trade_events
		WHERE trade_id = $1
		ORDER BY occurred_at ASC, id ASC
	`
	return scanEvents(db.conn.Query(query, tradeID))
}

func insertEvent(q queryRower, ev *models.TradeEvent) error {
	query := `
		INSERT INTO trade_events (trade_id, type, price, quantity, note, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRow(query,
		ev.TradeID, ev.Type, ev.Price, ev.Quantity, nullString(ev.Note), ev.OccurredAt, now,
	).Scan(&ev.ID)
	if err != nil {
		return fmt.Errorf("failed to create trade event: %w", err)
	}
	ev.CreatedAt = now
	return nil
}

type queryRower interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

func scanEvents(rows *sql.Rows, err error) ([]models.TradeEvent, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query trade events: %w", err)
	}
	defer rows.Close()

	var events []models.TradeEvent
	for rows.Next() {
		var ev models.TradeEvent
		var price, quantity, note sql.NullString

		if err := rows.Scan(
			&ev.ID, &ev.TradeID, &ev.Type, &price, &quantity, &note,
			&ev.OccurredAt, &ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trade event: %w", err)
		}

		ev.Price = decimalPtr(price)
		ev.Quantity = decimalPtr(quantity)
		if note.Valid {
			ev.Note = note.String
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

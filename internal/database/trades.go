package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

const tradeColumns = `id, user_id, setup_id, symbol, direction, status,
	       planned_entry, planned_stop_loss, planned_take_profit, planned_risk_reward,
	       planned_time_limit_minutes, planned_reason, emotional_state, quantity,
	       actual_entry_price, actual_exit_price, pnl, r_multiple, complied_with_plan,
	       opened_at, closed_at, created_at`

// CreateTrade inserts a new planned trade
func (db *DB) CreateTrade(t *models.Trade) error {
	query := `
		INSERT INTO trades (
			user_id, setup_id, symbol, direction, status,
			planned_entry, planned_stop_loss, planned_take_profit, planned_risk_reward,
			planned_time_limit_minutes, planned_reason, emotional_state, quantity,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		t.UserID, t.SetupID, t.Symbol, t.Direction, t.Status,
		t.PlannedEntry, t.PlannedStopLoss, t.PlannedTakeProfit, t.PlannedRiskReward,
		t.PlannedTimeLimitMinutes, nullString(t.PlannedReason), nullString(t.EmotionalState),
		nullDecimal(t.Quantity), now,
	).Scan(&t.ID)

	if err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	t.CreatedAt = now
	return nil
}

// GetTradeByID retrieves one of a user's trades, tags included
func (db *DB) GetTradeByID(userID, id int) (*models.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE id = $1 AND user_id = $2
	`
	t, err := scanTrade(db.conn.QueryRow(query, id, userID))
	if err != nil {
		return nil, err
	}

	tagIDs, err := db.GetTradeTagIDs(id)
	if err != nil {
		return nil, err
	}
	t.TagIDs = tagIDs
	return t, nil
}

// TradeFilter narrows ListTrades results. Zero-valued fields are ignored.
type TradeFilter struct {
	Status    string
	Symbol    string
	Direction string
	SetupID   *int
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// ListTrades retrieves a user's trades, newest first, narrowed by the filter
func (db *DB) ListTrades(userID int, f TradeFilter) ([]*models.Trade, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if f.Status != "" {
		addCondition("status = $%d", f.Status)
	}
	if f.Symbol != "" {
		addCondition("symbol = $%d", f.Symbol)
	}
	if f.Direction != "" {
		addCondition("direction = $%d", f.Direction)
	}
	if f.SetupID != nil {
		addCondition("setup_id = $%d", *f.SetupID)
	}
	if f.From != nil {
		addCondition("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		addCondition("created_at <= $%d", *f.To)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, f.Offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM trades
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, tradeColumns, strings.Join(conditions, " AND "), len(args)-1, len(args))

	return scanTrades(db.conn.Query(query, args...))
}

// ListClosedTrades retrieves a user's closed trades ordered by close time,
// optionally bounded by a close-time range
func (db *DB) ListClosedTrades(userID int, from, to *time.Time) ([]*models.Trade, error) {
	conditions := []string{"user_id = $1", "status = $2"}
	args := []interface{}{userID, models.StatusClosed}
	if from != nil {
		args = append(args, *from)
		conditions = append(conditions, fmt.Sprintf("closed_at >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conditions = append(conditions, fmt.Sprintf("closed_at <= $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM trades
		WHERE %s
		ORDER BY closed_at ASC NULLS LAST, created_at ASC
	`, tradeColumns, strings.Join(conditions, " AND "))

	return scanTrades(db.conn.Query(query, args...))
}

// ListOpenTrades retrieves all of a user's OPEN trades, oldest first
func (db *DB) ListOpenTrades(userID int) ([]*models.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE user_id = $1 AND status = $2
		ORDER BY opened_at ASC NULLS LAST, id ASC
	`
	return scanTrades(db.conn.Query(query, userID, models.StatusOpen))
}

// GetRecentTrades retrieves a user's most recent trades across all statuses,
// ordered by close time falling back to creation time
func (db *DB) GetRecentTrades(userID, limit int) ([]*models.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE user_id = $1
		ORDER BY COALESCE(closed_at, created_at) DESC
		LIMIT $2
	`
	return scanTrades(db.conn.Query(query, userID, limit))
}

// UpdateTradePlan rewrites the plan fields of a trade
func (db *DB) UpdateTradePlan(t *models.Trade) error {
	query := `
		UPDATE trades SET
			setup_id = $3, symbol = $4, direction = $5,
			planned_entry = $6, planned_stop_loss = $7, planned_take_profit = $8,
			planned_risk_reward = $9, planned_time_limit_minutes = $10,
			planned_reason = $11, emotional_state = $12, quantity = $13
		WHERE id = $1 AND user_id = $2
	`
	result, err := db.conn.Exec(query,
		t.ID, t.UserID, t.SetupID, t.Symbol, t.Direction,
		t.PlannedEntry, t.PlannedStopLoss, t.PlannedTakeProfit,
		t.PlannedRiskReward, t.PlannedTimeLimitMinutes,
		nullString(t.PlannedReason), nullString(t.EmotionalState), nullDecimal(t.Quantity),
	)
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("trade not found: %d", t.ID)
	}
	return nil
}

// DeleteTrade removes one of a user's trades and its events
func (db *DB) DeleteTrade(userID, id int) error {
	result, err := db.conn.Exec(`DELETE FROM trades WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("trade not found: %d", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner) (*models.Trade, error) {
	var t models.Trade
	var setupID, timeLimit sql.NullInt64
	var plannedRR, quantity sql.NullString
	var actualEntry, actualExit, pnl, rMultiple sql.NullString
	var plannedReason, emotionalState sql.NullString
	var complied sql.NullBool
	var openedAt, closedAt sql.NullTime

	err := row.Scan(
		&t.ID, &t.UserID, &setupID, &t.Symbol, &t.Direction, &t.Status,
		&t.PlannedEntry, &t.PlannedStopLoss, &t.PlannedTakeProfit, &plannedRR,
		&timeLimit, &plannedReason, &emotionalState, &quantity,
		&actualEntry, &actualExit, &pnl, &rMultiple, &complied,
		&openedAt, &closedAt, &t.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trade not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan trade: %w", err)
	}

	if setupID.Valid {
		id := int(setupID.Int64)
		t.SetupID = &id
	}
	if plannedRR.Valid {
		t.PlannedRiskReward, _ = decimal.NewFromString(plannedRR.String)
	}
	if timeLimit.Valid {
		minutes := int(timeLimit.Int64)
		t.PlannedTimeLimitMinutes = &minutes
	}
	if plannedReason.Valid {
		t.PlannedReason = plannedReason.String
	}
	if emotionalState.Valid {
		t.EmotionalState = emotionalState.String
	}
	if quantity.Valid {
		t.Quantity, _ = decimal.NewFromString(quantity.String)
	}
	t.ActualEntryPrice = decimalPtr(actualEntry)
	t.ActualExitPrice = decimalPtr(actualExit)
	t.Pnl = decimalPtr(pnl)
	t.RMultiple = decimalPtr(rMultiple)
	if complied.Valid {
		value := complied.Bool
		t.CompliedWithPlan = &value
	}
	if openedAt.Valid {
		t.OpenedAt = &openedAt.Time
	}
	if closedAt.Valid {
		t.ClosedAt = &closedAt.Time
	}

	return &t, nil
}

func scanTrades(rows *sql.Rows, err error) ([]*models.Trade, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []*models.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func decimalPtr(v sql.NullString) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil
	}
	return &d
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDecimal(d decimal.Decimal) interface{} {
	if d.IsZero() {
		return nil
	}
	return d
}

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

// GetRiskPolicy retrieves a user's risk policy, or nil when none is set
func (db *DB) GetRiskPolicy(userID int) (*models.RiskPolicy, error) {
	query := `
		SELECT id, user_id, max_risk_per_trade, max_daily_loss,
		       max_consecutive_losses, max_trade_duration_minutes, updated_at
		FROM risk_policies
		WHERE user_id = $1
	`
	var p models.RiskPolicy
	var maxRisk, maxDailyLoss sql.NullString
	var maxConsecutive, maxDuration sql.NullInt64

	err := db.conn.QueryRow(query, userID).Scan(
		&p.ID, &p.UserID, &maxRisk, &maxDailyLoss,
		&maxConsecutive, &maxDuration, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get risk policy: %w", err)
	}

	p.MaxRiskPerTrade = decimalPtr(maxRisk)
	p.MaxDailyLoss = decimalPtr(maxDailyLoss)
	if maxConsecutive.Valid {
		count := int(maxConsecutive.Int64)
		p.MaxConsecutiveLosses = &count
	}
	if maxDuration.Valid {
		minutes := int(maxDuration.Int64)
		p.MaxTradeDurationMinutes = &minutes
	}
	return &p, nil
}

// UpsertRiskPolicy creates or replaces a user's risk policy
func (db *DB) UpsertRiskPolicy(p *models.RiskPolicy) error {
	query := `
		INSERT INTO risk_policies (
			user_id, max_risk_per_trade, max_daily_loss,
			max_consecutive_losses, max_trade_duration_minutes, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			max_risk_per_trade = EXCLUDED.max_risk_per_trade,
			max_daily_loss = EXCLUDED.max_daily_loss,
			max_consecutive_losses = EXCLUDED.max_consecutive_losses,
			max_trade_duration_minutes = EXCLUDED.max_trade_duration_minutes,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		p.UserID, p.MaxRiskPerTrade, p.MaxDailyLoss,
		p.MaxConsecutiveLosses, p.MaxTradeDurationMinutes, now,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert risk policy: %w", err)
	}
	p.UpdatedAt = now
	return nil
}

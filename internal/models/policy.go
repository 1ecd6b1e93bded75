package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskPolicy holds a user's trading limits. Every limit is optional; an
// unset field disables the corresponding check.
type RiskPolicy struct {
	ID                      int              `json:"id"`
	UserID                  int              `json:"user_id"`
	MaxRiskPerTrade         *decimal.Decimal `json:"max_risk_per_trade,omitempty"`
	MaxDailyLoss            *decimal.Decimal `json:"max_daily_loss,omitempty"`
	MaxConsecutiveLosses    *int             `json:"max_consecutive_losses,omitempty"`
	MaxTradeDurationMinutes *int             `json:"max_trade_duration_minutes,omitempty"`
	UpdatedAt               time.Time        `json:"updated_at"`
}

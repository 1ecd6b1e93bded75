package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestPlannedRiskReward(t *testing.T) {
	t.Run("long 2R plan", func(t *testing.T) {
		rr := PlannedRiskReward(models.DirectionLong, d(100), d(95), d(110))
		assert.True(t, d(2).Equal(rr), "expected 2.0, got %s", rr)
	})

	t.Run("short 2R plan", func(t *testing.T) {
		rr := PlannedRiskReward(models.DirectionShort, d(100), d(105), d(90))
		assert.True(t, d(2).Equal(rr), "expected 2.0, got %s", rr)
	})

	t.Run("zero risk distance returns zero", func(t *testing.T) {
		rr := PlannedRiskReward(models.DirectionLong, d(100), d(100), d(110))
		assert.True(t, rr.IsZero())
	})
}

func TestRealizedRMultiple(t *testing.T) {
	t.Run("long winner", func(t *testing.T) {
		r := RealizedRMultiple(models.DirectionLong, d(100), d(95), d(110))
		assert.True(t, d(2).Equal(r), "expected 2.0, got %s", r)
	})

	t.Run("long loser is negative", func(t *testing.T) {
		r := RealizedRMultiple(models.DirectionLong, d(100), d(95), d(95))
		assert.True(t, d(-1).Equal(r), "expected -1.0, got %s", r)
	})

	t.Run("short winner", func(t *testing.T) {
		r := RealizedRMultiple(models.DirectionShort, d(100), d(105), d(90))
		assert.True(t, d(2).Equal(r), "expected 2.0, got %s", r)
	})

	t.Run("zero risk distance returns zero", func(t *testing.T) {
		r := RealizedRMultiple(models.DirectionShort, d(100), d(100), d(90))
		assert.True(t, r.IsZero())
	})
}

package catalog

import (
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScope() shared.Scope {
	return shared.NewScope(uuid.New(), uuid.New())
}

func TestNewReadyItem(t *testing.T) {
	t.Run("creates item with normal impacts", func(t *testing.T) {
		item, err := NewReadyItem(testScope(), "ri-01", "Cotton Yarn", "kg")
		require.NoError(t, err)

		assert.Equal(t, "RI-01", item.Code)
		assert.Equal(t, ImpactNormal, item.Deviation.QualityImpact)
		assert.Equal(t, ImpactNormal, item.Deviation.CostImpact)
		assert.True(t, item.Deviation.PercentageDeviation.IsZero())
		assert.Nil(t, item.Deviation.CheckedAt)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewReadyItem(testScope(), "RI-01", "  ", "kg")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects empty unit", func(t *testing.T) {
		_, err := NewReadyItem(testScope(), "RI-01", "Yarn", "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestReadyItem_RecordDeviation(t *testing.T) {
	item, err := NewReadyItem(testScope(), "RI-01", "Yarn", "kg")
	require.NoError(t, err)
	now := time.Now()

	t.Run("stores snapshot and bumps version", func(t *testing.T) {
		version := item.Version
		item.RecordDeviation(DeviationSnapshot{
			QualityImpact:       ImpactHigh,
			CostImpact:          ImpactHigh,
			ExtraQuantityUsed:   decimal.NewFromInt(5),
			LessQuantityUsed:    decimal.Zero,
			PercentageDeviation: decimal.NewFromFloat(2.5),
			CheckedAt:           &now,
		})

		assert.Equal(t, ImpactHigh, item.Deviation.QualityImpact)
		assert.True(t, item.Deviation.ExtraQuantityUsed.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, version+1, item.Version)
	})

	t.Run("unknown impact falls back to normal", func(t *testing.T) {
		item.RecordDeviation(DeviationSnapshot{QualityImpact: "NONE", CostImpact: ImpactLow})
		assert.Equal(t, ImpactNormal, item.Deviation.QualityImpact)
		assert.Equal(t, ImpactLow, item.Deviation.CostImpact)
	})

	t.Run("reset clears deviations", func(t *testing.T) {
		item.ResetDeviation(now)
		assert.Equal(t, ImpactNormal, item.Deviation.QualityImpact)
		assert.Equal(t, ImpactNormal, item.Deviation.CostImpact)
		assert.True(t, item.Deviation.ExtraQuantityUsed.IsZero())
		require.NotNil(t, item.Deviation.CheckedAt)
	})
}

package production

import (
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewRecipe(t *testing.T) {
	scope := shared.NewScope(uuid.New(), uuid.New())

	t.Run("creates a recipe", func(t *testing.T) {
		r, err := NewRecipe(scope, uuid.New(), uuid.New(), " A ", d("2"), "kg")
		require.NoError(t, err)
		assert.Equal(t, "A", r.Quality)
		assert.True(t, d("2").Equal(r.QuantityPerUnit))
		assert.Equal(t, scope.TenantID, r.TenantID)
	})

	t.Run("rejects a quantity that is not positive", func(t *testing.T) {
		_, err := NewRecipe(scope, uuid.New(), uuid.New(), "A", decimal.Zero, "kg")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects missing ids", func(t *testing.T) {
		_, err := NewRecipe(scope, uuid.Nil, uuid.New(), "A", d("1"), "kg")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		_, err = NewRecipe(scope, uuid.New(), uuid.Nil, "A", d("1"), "kg")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("update overwrites quantity and unit", func(t *testing.T) {
		r, err := NewRecipe(scope, uuid.New(), uuid.New(), "A", d("2"), "kg")
		require.NoError(t, err)
		require.NoError(t, r.Update(d("2.5"), "g"))
		assert.True(t, d("2.5").Equal(r.QuantityPerUnit))
		assert.Equal(t, "g", r.Unit)
		assert.Equal(t, 2, r.Version)
	})
}

func TestDeriveQuantityPerUnit(t *testing.T) {
	tests := []struct {
		name     string
		consumed string
		produced string
		want     string
	}{
		{"exact division", "200", "100", "2"},
		{"rounds down below half", "10", "3", "3.3333"},
		{"rounds half up", "2", "3", "0.6667"},
		{"rounds a trailing five up", "0.00005", "1", "0.0001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveQuantityPerUnit(d(tt.consumed), d(tt.produced))
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "got %s", got)
		})
	}

	t.Run("rejects zero ready item quantity", func(t *testing.T) {
		_, err := DeriveQuantityPerUnit(d("5"), decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestRequiredMaterials(t *testing.T) {
	scope := shared.NewScope(uuid.New(), uuid.New())
	readyID := uuid.New()
	m1, m2 := uuid.New(), uuid.New()
	r1, err := NewRecipe(scope, readyID, m1, "A", d("2"), "kg")
	require.NoError(t, err)
	r2, err := NewRecipe(scope, readyID, m2, "A", d("0.25"), "kg")
	require.NoError(t, err)

	required := RequiredMaterials([]Recipe{*r1, *r2}, d("100"))
	require.Len(t, required, 2)
	assert.True(t, d("200").Equal(required[m1]))
	assert.True(t, d("25").Equal(required[m2]))

	assert.Empty(t, RequiredMaterials(nil, d("100")))
}

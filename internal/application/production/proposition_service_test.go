package production_test

import (
	"context"
	"testing"

	appproduction "github.com/erp/backoffice/internal/application/production"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type propositionFixture struct {
	*testutil.Ledger
	svc    *appproduction.PropositionService
	ready  *catalog.ReadyItem
	m1, m2 *catalog.RawMaterial
}

// newPropositionFixture sets up recipes of 2 and 1 per unit at quality A
func newPropositionFixture(t *testing.T) *propositionFixture {
	t.Helper()
	fx := testutil.NewLedger(t)
	f := &propositionFixture{
		Ledger: fx,
		svc:    appproduction.NewPropositionService(fx.Runner, appproduction.NewDeviationAnalyzer(nil, nil)),
		ready:  fx.ReadyItem(t, "R", "pcs"),
		m1:     fx.RawMaterial(t, "M1", "kg"),
		m2:     fx.RawMaterial(t, "M2", "kg"),
	}
	recipes := appproduction.NewRecipeService(fx.Runner)
	for _, r := range []struct {
		id  uuid.UUID
		qty string
	}{{f.m1.ID, "2"}, {f.m2.ID, "1"}} {
		_, err := recipes.UpsertRecipe(context.Background(), fx.Scope, appproduction.UpsertRecipeRequest{
			ReadyItemID: f.ready.ID, RawMaterialID: r.id, Quality: "A", QuantityPerUnit: testutil.Dec(r.qty),
		})
		require.NoError(t, err)
	}
	return f
}

func (f *propositionFixture) propose(t *testing.T, m1, m2 string) {
	t.Helper()
	_, err := f.svc.UpsertPropositions(context.Background(), f.Scope, f.ready.ID, []appproduction.PropositionLine{
		{RawMaterialID: f.m1.ID, ExpectedPercentage: testutil.Dec(m1)},
		{RawMaterialID: f.m2.ID, ExpectedPercentage: testutil.Dec(m2)},
	})
	require.NoError(t, err)
}

func TestPropositionService_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites the share of a material", func(t *testing.T) {
		f := newPropositionFixture(t)
		f.propose(t, "60", "40")

		p, err := f.svc.UpsertProposition(ctx, f.Scope, f.ready.ID, appproduction.PropositionLine{
			RawMaterialID: f.m1.ID, ExpectedPercentage: testutil.Dec("55"),
		})
		require.NoError(t, err)
		assert.True(t, testutil.Dec("55").Equal(p.ExpectedPercentage))

		set, err := f.svc.PropositionsFor(ctx, f.Scope, f.ready.ID)
		require.NoError(t, err)
		assert.Len(t, set.Propositions, 2)
		assert.True(t, testutil.Dec("95").Equal(set.Total))
		assert.False(t, set.Valid)
	})

	t.Run("percentages outside 0 to 100 are rejected", func(t *testing.T) {
		f := newPropositionFixture(t)
		_, err := f.svc.UpsertProposition(ctx, f.Scope, f.ready.ID, appproduction.PropositionLine{
			RawMaterialID: f.m1.ID, ExpectedPercentage: testutil.Dec("100.1"),
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("a rejected line rolls back the whole set", func(t *testing.T) {
		f := newPropositionFixture(t)
		_, err := f.svc.UpsertPropositions(ctx, f.Scope, f.ready.ID, []appproduction.PropositionLine{
			{RawMaterialID: f.m1.ID, ExpectedPercentage: testutil.Dec("60")},
			{RawMaterialID: uuid.New(), ExpectedPercentage: testutil.Dec("40")},
		})
		require.ErrorIs(t, err, shared.ErrNotFound)

		set, err := f.svc.PropositionsFor(ctx, f.Scope, f.ready.ID)
		require.NoError(t, err)
		assert.Empty(t, set.Propositions)
	})
}

func TestPropositionService_ValidatePropositions(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		m1, m2 string
		valid  bool
	}{
		{"exactly 100", "60", "40", true},
		{"lower edge", "59.5", "40", true},
		{"upper edge", "60.5", "40", true},
		{"below the band", "59.4", "40", false},
		{"above the band", "60.6", "40", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPropositionFixture(t)
			f.propose(t, tt.m1, tt.m2)
			valid, err := f.svc.ValidatePropositions(ctx, f.Scope, f.ready.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, valid)
		})
	}

	t.Run("no propositions is not valid", func(t *testing.T) {
		f := newPropositionFixture(t)
		valid, err := f.svc.ValidatePropositions(ctx, f.Scope, f.ready.ID)
		require.NoError(t, err)
		assert.False(t, valid)
	})
}

func TestPropositionService_CalculateDeviations(t *testing.T) {
	ctx := context.Background()
	f := newPropositionFixture(t)
	f.propose(t, "60", "40")

	preview := func(t *testing.T, m1, m2 string) *appproduction.DeviationResponse {
		t.Helper()
		resp, err := f.svc.CalculateDeviations(ctx, f.Scope, appproduction.DeviationRequest{
			ReadyItemID:      f.ready.ID,
			Quality:          "A",
			QuantityProduced: testutil.Dec("10"),
			Actual: map[uuid.UUID]decimal.Decimal{
				f.m1.ID: testutil.Dec(m1),
				f.m2.ID: testutil.Dec(m2),
			},
		})
		require.NoError(t, err)
		return resp
	}

	t.Run("more of one material is HIGH even when the total matches", func(t *testing.T) {
		dev := preview(t, "20", "10")
		assert.True(t, testutil.Dec("2").Equal(dev.ExtraQuantityUsed))
		assert.True(t, testutil.Dec("2").Equal(dev.LessQuantityUsed))
		assert.True(t, dev.PercentageDeviation.IsZero())
		assert.Equal(t, catalog.ImpactHigh, dev.QualityImpact)
		assert.Equal(t, catalog.ImpactHigh, dev.CostImpact)
		assert.Equal(t, "66.67", dev.ActualPercentages[f.m1.ID].String())
		assert.Equal(t, "33.33", dev.ActualPercentages[f.m2.ID].String())
	})

	t.Run("less overall is LOW", func(t *testing.T) {
		dev := preview(t, "17", "12")
		assert.True(t, dev.ExtraQuantityUsed.IsZero())
		assert.True(t, testutil.Dec("1").Equal(dev.LessQuantityUsed))
		assert.Equal(t, "-3.33", dev.PercentageDeviation.String())
		assert.Equal(t, catalog.ImpactLow, dev.QualityImpact)
	})

	t.Run("the expected split is NORMAL", func(t *testing.T) {
		dev := preview(t, "18", "12")
		assert.True(t, dev.ExtraQuantityUsed.IsZero())
		assert.True(t, dev.LessQuantityUsed.IsZero())
		assert.Equal(t, catalog.ImpactNormal, dev.QualityImpact)
	})

	t.Run("the preview does not touch the stored snapshot", func(t *testing.T) {
		preview(t, "30", "30")
		item, err := f.Repos().ReadyItems().FindByID(ctx, f.Scope, f.ready.ID)
		require.NoError(t, err)
		assert.Equal(t, catalog.ImpactNormal, item.Deviation.QualityImpact)
		assert.True(t, item.Deviation.ExtraQuantityUsed.IsZero())
	})

	t.Run("quantity must be positive", func(t *testing.T) {
		_, err := f.svc.CalculateDeviations(ctx, f.Scope, appproduction.DeviationRequest{
			ReadyItemID: f.ready.ID, Quality: "A", QuantityProduced: decimal.Zero,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

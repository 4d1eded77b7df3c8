package production_test

import (
	"context"
	"testing"
	"time"

	appproduction "github.com/erp/backoffice/internal/application/production"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/production"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeService_UpsertRecipe(t *testing.T) {
	ctx := context.Background()

	t.Run("a second upsert of the same triple overwrites the row", func(t *testing.T) {
		fx := testutil.NewLedger(t)
		svc := appproduction.NewRecipeService(fx.Runner)
		ready := fx.ReadyItem(t, "R", "pcs")
		material := fx.RawMaterial(t, "M", "kg")

		first, err := svc.UpsertRecipe(ctx, fx.Scope, appproduction.UpsertRecipeRequest{
			ReadyItemID: ready.ID, RawMaterialID: material.ID, Quality: "A", QuantityPerUnit: testutil.Dec("2"),
		})
		require.NoError(t, err)
		second, err := svc.UpsertRecipe(ctx, fx.Scope, appproduction.UpsertRecipeRequest{
			ReadyItemID: ready.ID, RawMaterialID: material.ID, Quality: " A ", QuantityPerUnit: testutil.Dec("2.5"), Unit: "g",
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		recipes, err := svc.RecipesFor(ctx, fx.Scope, ready.ID, "A")
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.True(t, testutil.Dec("2.5").Equal(recipes[0].QuantityPerUnit))
		assert.Equal(t, "g", recipes[0].Unit)
	})

	t.Run("an empty unit takes the raw material unit", func(t *testing.T) {
		fx := testutil.NewLedger(t)
		svc := appproduction.NewRecipeService(fx.Runner)
		ready := fx.ReadyItem(t, "R", "pcs")
		material := fx.RawMaterial(t, "M", "kg")

		recipe, err := svc.UpsertRecipe(ctx, fx.Scope, appproduction.UpsertRecipeRequest{
			ReadyItemID: ready.ID, RawMaterialID: material.ID, Quality: "A", QuantityPerUnit: testutil.Dec("1"),
		})
		require.NoError(t, err)
		assert.Equal(t, "kg", recipe.Unit)
	})

	t.Run("qualities keep separate rows", func(t *testing.T) {
		fx := testutil.NewLedger(t)
		svc := appproduction.NewRecipeService(fx.Runner)
		ready := fx.ReadyItem(t, "R", "pcs")
		material := fx.RawMaterial(t, "M", "kg")

		for _, q := range []string{"A", "B"} {
			_, err := svc.UpsertRecipe(ctx, fx.Scope, appproduction.UpsertRecipeRequest{
				ReadyItemID: ready.ID, RawMaterialID: material.ID, Quality: q, QuantityPerUnit: testutil.Dec("1"),
			})
			require.NoError(t, err)
		}
		a, err := svc.RecipesFor(ctx, fx.Scope, ready.ID, "A")
		require.NoError(t, err)
		b, err := svc.RecipesFor(ctx, fx.Scope, ready.ID, "B")
		require.NoError(t, err)
		require.Len(t, a, 1)
		require.Len(t, b, 1)
		assert.NotEqual(t, a[0].ID, b[0].ID)
	})

	t.Run("unknown materials are not found", func(t *testing.T) {
		fx := testutil.NewLedger(t)
		svc := appproduction.NewRecipeService(fx.Runner)
		ready := fx.ReadyItem(t, "R", "pcs")

		_, err := svc.UpsertRecipe(ctx, fx.Scope, appproduction.UpsertRecipeRequest{
			ReadyItemID: ready.ID, RawMaterialID: uuid.New(), Quality: "A", QuantityPerUnit: testutil.Dec("1"),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestRecipeService_DeriveRecipe(t *testing.T) {
	ctx := context.Background()
	fx := testutil.NewLedger(t)
	svc := appproduction.NewRecipeService(fx.Runner)
	ready := fx.ReadyItem(t, "R", "pcs")
	material := fx.RawMaterial(t, "M", "kg")

	t.Run("rounds half-up to four places", func(t *testing.T) {
		recipe, err := svc.DeriveRecipe(ctx, fx.Scope, appproduction.DeriveRecipeRequest{
			ReadyItemID: ready.ID, RawMaterialID: material.ID, Quality: "A",
			Consumed: testutil.Dec("10"), ReadyQuantity: testutil.Dec("3"),
		})
		require.NoError(t, err)
		assert.Equal(t, "3.3333", recipe.QuantityPerUnit.String())

		recipe, err = svc.DeriveRecipe(ctx, fx.Scope, appproduction.DeriveRecipeRequest{
			ReadyItemID: ready.ID, RawMaterialID: material.ID, Quality: "A",
			Consumed: testutil.Dec("20"), ReadyQuantity: testutil.Dec("3"),
		})
		require.NoError(t, err)
		assert.Equal(t, "6.6667", recipe.QuantityPerUnit.String())
	})

	t.Run("a zero ready quantity is rejected", func(t *testing.T) {
		_, err := svc.DeriveRecipe(ctx, fx.Scope, appproduction.DeriveRecipeRequest{
			ReadyItemID: ready.ID, RawMaterialID: material.ID, Quality: "A",
			Consumed: testutil.Dec("10"), ReadyQuantity: testutil.Dec("0"),
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestRecipeService_RecordManualConsumption(t *testing.T) {
	ctx := context.Background()
	day := testutil.Date(2024, time.August, 20)

	t.Run("deducts stock on the consumption date", func(t *testing.T) {
		fx := testutil.NewLedger(t)
		svc := appproduction.NewRecipeService(fx.Runner)
		material := fx.RawMaterial(t, "M", "kg")
		ref := inventory.RawMaterialRef(material.ID)
		fx.Stock(t, ref, "30", testutil.Date(2024, time.August, 1))

		consumption, err := svc.RecordManualConsumption(ctx, fx.Scope, appproduction.ManualConsumptionRequest{
			RawMaterialID: material.ID, Quantity: testutil.Dec("12"), Date: day, Remarks: "cleaning",
		})
		require.NoError(t, err)
		assert.Equal(t, production.ConsumptionManual, consumption.Type)
		assert.Nil(t, consumption.BatchID)

		entry, err := fx.Repos().StockEntries().FindByDate(ctx, fx.Scope, ref, day)
		require.NoError(t, err)
		assert.True(t, testutil.Dec("12").Equal(entry.Consumed))
		assert.True(t, testutil.Dec("18").Equal(fx.CurrentStock(t, ref)))
	})

	t.Run("a full ready item side derives the recipe", func(t *testing.T) {
		fx := testutil.NewLedger(t)
		svc := appproduction.NewRecipeService(fx.Runner)
		ready := fx.ReadyItem(t, "R", "pcs")
		material := fx.RawMaterial(t, "M", "kg")
		fx.Stock(t, inventory.RawMaterialRef(material.ID), "30", testutil.Date(2024, time.August, 1))

		_, err := svc.RecordManualConsumption(ctx, fx.Scope, appproduction.ManualConsumptionRequest{
			RawMaterialID:     material.ID,
			Quantity:          testutil.Dec("12"),
			Date:              day,
			ReadyItemID:       &ready.ID,
			Quality:           "A",
			ReadyItemQuantity: testutil.Dec("8"),
		})
		require.NoError(t, err)

		recipes, err := svc.RecipesFor(ctx, fx.Scope, ready.ID, "A")
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, "1.5", recipes[0].QuantityPerUnit.String())
		assert.Equal(t, "kg", recipes[0].Unit)
	})

	t.Run("insufficient stock saves nothing", func(t *testing.T) {
		fx := testutil.NewLedger(t)
		svc := appproduction.NewRecipeService(fx.Runner)
		ready := fx.ReadyItem(t, "R", "pcs")
		material := fx.RawMaterial(t, "M", "kg")
		fx.Stock(t, inventory.RawMaterialRef(material.ID), "5", testutil.Date(2024, time.August, 1))

		_, err := svc.RecordManualConsumption(ctx, fx.Scope, appproduction.ManualConsumptionRequest{
			RawMaterialID:     material.ID,
			Quantity:          testutil.Dec("12"),
			Date:              day,
			ReadyItemID:       &ready.ID,
			Quality:           "A",
			ReadyItemQuantity: testutil.Dec("8"),
		})
		require.ErrorIs(t, err, shared.ErrInsufficientStock)

		recipes, err := svc.RecipesFor(ctx, fx.Scope, ready.ID, "A")
		require.NoError(t, err)
		assert.Empty(t, recipes)
		assert.True(t, testutil.Dec("5").Equal(fx.CurrentStock(t, inventory.RawMaterialRef(material.ID))))
	})
}

func TestRecipeService_RequiredMaterials(t *testing.T) {
	ctx := context.Background()
	fx := testutil.NewLedger(t)
	svc := appproduction.NewRecipeService(fx.Runner)
	ready := fx.ReadyItem(t, "R", "pcs")
	m1 := fx.RawMaterial(t, "M1", "kg")
	m2 := fx.RawMaterial(t, "M2", "kg")

	for _, r := range []struct {
		id  uuid.UUID
		qty string
	}{{m1.ID, "2"}, {m2.ID, "0.25"}} {
		_, err := svc.UpsertRecipe(ctx, fx.Scope, appproduction.UpsertRecipeRequest{
			ReadyItemID: ready.ID, RawMaterialID: r.id, Quality: "A", QuantityPerUnit: testutil.Dec(r.qty),
		})
		require.NoError(t, err)
	}

	t.Run("multiplies each row by the quantity", func(t *testing.T) {
		required, err := svc.RequiredMaterials(ctx, fx.Scope, ready.ID, "A", testutil.Dec("10"))
		require.NoError(t, err)
		require.Len(t, required, 2)
		assert.True(t, testutil.Dec("20").Equal(required[m1.ID]))
		assert.True(t, testutil.Dec("2.5").Equal(required[m2.ID]))
	})

	t.Run("a quality without recipes needs nothing", func(t *testing.T) {
		required, err := svc.RequiredMaterials(ctx, fx.Scope, ready.ID, "B", testutil.Dec("10"))
		require.NoError(t, err)
		assert.Empty(t, required)
	})
}

func TestRecipeService_DeleteRecipe(t *testing.T) {
	ctx := context.Background()
	fx := testutil.NewLedger(t)
	svc := appproduction.NewRecipeService(fx.Runner)
	ready := fx.ReadyItem(t, "R", "pcs")
	material := fx.RawMaterial(t, "M", "kg")

	recipe, err := svc.UpsertRecipe(ctx, fx.Scope, appproduction.UpsertRecipeRequest{
		ReadyItemID: ready.ID, RawMaterialID: material.ID, Quality: "A", QuantityPerUnit: testutil.Dec("1"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRecipe(ctx, fx.Scope, recipe.ID))
	recipes, err := svc.RecipesFor(ctx, fx.Scope, ready.ID, "A")
	require.NoError(t, err)
	assert.Empty(t, recipes)

	assert.ErrorIs(t, svc.DeleteRecipe(ctx, fx.Scope, recipe.ID), shared.ErrNotFound)
	assert.Zero(t, fx.Locker.Held())
}

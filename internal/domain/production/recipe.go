package production

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeRecipe is the aggregate type name used in events
const AggregateTypeRecipe = "Recipe"

// recipeScale is the number of decimal places kept for derived quantities per unit
const recipeScale = 4

// Recipe states how much of one raw material a single unit of a ready item needs
// at a quality grade. It is unique per (ready item, raw material, quality).
type Recipe struct {
	shared.TenantAggregateRoot
	ReadyItemID     uuid.UUID
	RawMaterialID   uuid.UUID
	Quality         string
	QuantityPerUnit decimal.Decimal
	Unit            string
}

// NewRecipe creates a new recipe row
func NewRecipe(scope shared.Scope, readyItemID, rawMaterialID uuid.UUID, quality string, qtyPerUnit decimal.Decimal, unit string) (*Recipe, error) {
	if readyItemID == uuid.Nil {
		return nil, shared.Errorf(shared.ErrInvalidInput, "ready item id is required")
	}
	if rawMaterialID == uuid.Nil {
		return nil, shared.Errorf(shared.ErrInvalidInput, "raw material id is required")
	}
	r := &Recipe{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		ReadyItemID:         readyItemID,
		RawMaterialID:       rawMaterialID,
		Quality:             strings.TrimSpace(quality),
	}
	if err := r.set(qtyPerUnit, unit); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Recipe) set(qtyPerUnit decimal.Decimal, unit string) error {
	if !qtyPerUnit.IsPositive() {
		return shared.Errorf(shared.ErrInvalidInput, "quantity per unit must be positive")
	}
	r.QuantityPerUnit = qtyPerUnit
	r.Unit = strings.TrimSpace(unit)
	return nil
}

// Update overwrites the quantity per unit and the unit
func (r *Recipe) Update(qtyPerUnit decimal.Decimal, unit string) error {
	if err := r.set(qtyPerUnit, unit); err != nil {
		return err
	}
	r.Touch()
	return nil
}

// DeriveQuantityPerUnit computes consumed / produced rounded half-up to 4 places
func DeriveQuantityPerUnit(consumed, produced decimal.Decimal) (decimal.Decimal, error) {
	if !produced.IsPositive() {
		return decimal.Zero, shared.Errorf(shared.ErrInvalidInput, "ready item quantity must be positive")
	}
	if !consumed.IsPositive() {
		return decimal.Zero, shared.Errorf(shared.ErrInvalidInput, "consumed quantity must be positive")
	}
	return consumed.DivRound(produced, recipeScale), nil
}

// RequiredMaterials multiplies each recipe's quantity per unit by quantity
func RequiredMaterials(recipes []Recipe, quantity decimal.Decimal) map[uuid.UUID]decimal.Decimal {
	required := make(map[uuid.UUID]decimal.Decimal, len(recipes))
	for _, r := range recipes {
		required[r.RawMaterialID] = required[r.RawMaterialID].Add(r.QuantityPerUnit.Mul(quantity))
	}
	return required
}

// PerUnitByMaterial indexes recipes by raw material
func PerUnitByMaterial(recipes []Recipe) map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal, len(recipes))
	for _, r := range recipes {
		out[r.RawMaterialID] = r.QuantityPerUnit
	}
	return out
}

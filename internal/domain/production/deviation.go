package production

import (
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Deviation is the difference between the proposition-derived expected consumption
// of a production run and what it actually consumed
type Deviation struct {
	ExtraQuantityUsed   decimal.Decimal
	LessQuantityUsed    decimal.Decimal
	PercentageDeviation decimal.Decimal
}

// ZeroDeviation is the result when nothing can be compared
func ZeroDeviation() Deviation {
	return Deviation{
		ExtraQuantityUsed:   decimal.Zero,
		LessQuantityUsed:    decimal.Zero,
		PercentageDeviation: decimal.Zero,
	}
}

// AnalyzeDeviation compares actual consumption against the propositions of a ready item.
//
// perUnit holds the recipe quantity per unit of each raw material at the produced
// quality. The expected total is the recipe-derived consumption of every proposed
// material that has a recipe; each material's expected share is its percentage of
// that total. Materials without a recipe take no part in the comparison.
func AnalyzeDeviation(props []Proposition, perUnit map[uuid.UUID]decimal.Decimal, produced decimal.Decimal, actual map[uuid.UUID]decimal.Decimal) Deviation {
	if len(props) == 0 {
		return ZeroDeviation()
	}

	fromRecipe := make(map[uuid.UUID]decimal.Decimal, len(props))
	totalFromRecipes := decimal.Zero
	for _, p := range props {
		qty, ok := perUnit[p.RawMaterialID]
		if !ok || qty.IsZero() {
			continue
		}
		expected := qty.Mul(produced)
		fromRecipe[p.RawMaterialID] = expected
		totalFromRecipes = totalFromRecipes.Add(expected)
	}
	if totalFromRecipes.IsZero() {
		return ZeroDeviation()
	}

	result := ZeroDeviation()
	totalExpected := decimal.Zero
	totalActual := decimal.Zero
	for _, p := range props {
		if fromRecipe[p.RawMaterialID].IsZero() {
			continue
		}
		expected := p.ExpectedPercentage.DivRound(hundred, recipeScale).Mul(totalFromRecipes)
		used := actual[p.RawMaterialID]
		diff := used.Sub(expected)

		totalExpected = totalExpected.Add(expected)
		totalActual = totalActual.Add(used)
		switch diff.Sign() {
		case 1:
			result.ExtraQuantityUsed = result.ExtraQuantityUsed.Add(diff)
		case -1:
			result.LessQuantityUsed = result.LessQuantityUsed.Add(diff.Abs())
		}
	}

	if totalExpected.IsPositive() {
		result.PercentageDeviation = totalActual.Sub(totalExpected).
			DivRound(totalExpected, recipeScale).
			Mul(hundred)
	}
	return result
}

// Impact classifies the deviation. More material than expected is HIGH, less is
// LOW. The same level is used for both quality and cost impact.
func (d Deviation) Impact() catalog.ImpactLevel {
	switch {
	case d.ExtraQuantityUsed.IsPositive():
		return catalog.ImpactHigh
	case d.LessQuantityUsed.IsPositive():
		return catalog.ImpactLow
	}
	return catalog.ImpactNormal
}

// Snapshot converts the deviation into the ready item's stored snapshot
func (d Deviation) Snapshot(checkedAt time.Time) catalog.DeviationSnapshot {
	level := d.Impact()
	return catalog.DeviationSnapshot{
		QualityImpact:       level,
		CostImpact:          level,
		ExtraQuantityUsed:   d.ExtraQuantityUsed,
		LessQuantityUsed:    d.LessQuantityUsed,
		PercentageDeviation: d.PercentageDeviation,
		CheckedAt:           &checkedAt,
	}
}

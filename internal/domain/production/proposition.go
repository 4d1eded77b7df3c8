package production

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	hundred         = decimal.NewFromInt(100)
	propositionLow  = decimal.RequireFromString("99.5")
	propositionHigh = decimal.RequireFromString("100.5")
)

// Proposition is the expected share, in percent, of a raw material in the total
// recipe mass of a ready item
type Proposition struct {
	shared.TenantAggregateRoot
	ReadyItemID        uuid.UUID
	RawMaterialID      uuid.UUID
	ExpectedPercentage decimal.Decimal
}

// NewProposition creates a new proposition
func NewProposition(scope shared.Scope, readyItemID, rawMaterialID uuid.UUID, pct decimal.Decimal) (*Proposition, error) {
	if readyItemID == uuid.Nil || rawMaterialID == uuid.Nil {
		return nil, shared.Errorf(shared.ErrInvalidInput, "ready item and raw material are required")
	}
	p := &Proposition{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		ReadyItemID:         readyItemID,
		RawMaterialID:       rawMaterialID,
	}
	if err := validatePercentage(pct); err != nil {
		return nil, err
	}
	p.ExpectedPercentage = pct
	return p, nil
}

func validatePercentage(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return shared.Errorf(shared.ErrInvalidInput, "expected percentage must be between 0 and 100")
	}
	return nil
}

// SetPercentage overwrites the expected percentage
func (p *Proposition) SetPercentage(pct decimal.Decimal) error {
	if err := validatePercentage(pct); err != nil {
		return err
	}
	p.ExpectedPercentage = pct
	p.Touch()
	return nil
}

// PropositionTotal sums the expected percentages
func PropositionTotal(props []Proposition) decimal.Decimal {
	total := decimal.Zero
	for _, p := range props {
		total = total.Add(p.ExpectedPercentage)
	}
	return total
}

// ValidatePropositions reports whether the percentages add up to 100 within half a point.
// It is a check, not a write-time constraint.
func ValidatePropositions(props []Proposition) bool {
	total := PropositionTotal(props)
	return total.GreaterThanOrEqual(propositionLow) && total.LessThanOrEqual(propositionHigh)
}

// ActualPercentages returns each material's share of the total actual quantity, in percent
func ActualPercentages(actual map[uuid.UUID]decimal.Decimal) map[uuid.UUID]decimal.Decimal {
	total := decimal.Zero
	for _, q := range actual {
		total = total.Add(q)
	}
	out := make(map[uuid.UUID]decimal.Decimal, len(actual))
	if total.IsZero() {
		return out
	}
	for id, q := range actual {
		out[id] = q.DivRound(total, recipeScale).Mul(hundred)
	}
	return out
}

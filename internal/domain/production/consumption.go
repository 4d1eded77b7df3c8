package production

import (
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConsumptionType tells how raw material was consumed
type ConsumptionType string

const (
	ConsumptionProduction ConsumptionType = "PRODUCTION"
	ConsumptionManual     ConsumptionType = "MANUAL"
)

// IsValid checks if the type is known
func (t ConsumptionType) IsValid() bool {
	return t == ConsumptionProduction || t == ConsumptionManual
}

// MaterialConsumption is one raw material drawn from stock
type MaterialConsumption struct {
	shared.TenantAggregateRoot
	RawMaterialID     uuid.UUID
	Quantity          decimal.Decimal
	Type              ConsumptionType
	ReadyItemID       *uuid.UUID
	Quality           string
	ReadyItemQuantity decimal.Decimal
	BatchID           *uuid.UUID
	Date              time.Time
	Remarks           string
}

func newConsumption(scope shared.Scope, rawMaterialID uuid.UUID, qty decimal.Decimal, typ ConsumptionType, date time.Time) (*MaterialConsumption, error) {
	if rawMaterialID == uuid.Nil {
		return nil, shared.Errorf(shared.ErrInvalidInput, "raw material id is required")
	}
	if !qty.IsPositive() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "consumed quantity must be positive")
	}
	return &MaterialConsumption{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		RawMaterialID:       rawMaterialID,
		Quantity:            qty,
		Type:                typ,
		ReadyItemQuantity:   decimal.Zero,
		Date:                shared.Day(date),
	}, nil
}

// NewProductionConsumption records material drawn by a production batch
func NewProductionConsumption(scope shared.Scope, batch *Batch, rawMaterialID uuid.UUID, qty decimal.Decimal, date time.Time) (*MaterialConsumption, error) {
	c, err := newConsumption(scope, rawMaterialID, qty, ConsumptionProduction, date)
	if err != nil {
		return nil, err
	}
	batchID, readyItemID := batch.ID, batch.ReadyItemID
	c.BatchID = &batchID
	c.ReadyItemID = &readyItemID
	c.Quality = batch.Quality
	c.ReadyItemQuantity = batch.QuantityProduced
	c.Remarks = "Production batch " + batch.BatchNumber
	return c, nil
}

// NewManualConsumption records material drawn outside a production batch
func NewManualConsumption(scope shared.Scope, rawMaterialID uuid.UUID, qty decimal.Decimal, date time.Time, remarks string) (*MaterialConsumption, error) {
	c, err := newConsumption(scope, rawMaterialID, qty, ConsumptionManual, date)
	if err != nil {
		return nil, err
	}
	c.Remarks = remarks
	return c, nil
}

// LinkReadyItem records which ready item, and how much of it, the consumption produced
func (c *MaterialConsumption) LinkReadyItem(readyItemID uuid.UUID, quality string, readyQty decimal.Decimal) {
	c.ReadyItemID = &readyItemID
	c.Quality = quality
	c.ReadyItemQuantity = readyQty
}

// DerivesRecipe reports whether the consumption carries enough to derive a recipe
func (c *MaterialConsumption) DerivesRecipe() bool {
	return c.ReadyItemID != nil && c.Quality != "" && c.ReadyItemQuantity.IsPositive()
}

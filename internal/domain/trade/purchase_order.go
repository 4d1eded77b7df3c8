package trade

import (
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderItem is a line of a purchase order: a raw material bought from a customer
type PurchaseOrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	RawMaterialID uuid.UUID
	Quantity      decimal.Decimal
	NetQuantity   decimal.Decimal // quantity after wastage, zero when not measured
	FringeCost    decimal.Decimal
	UnitPrice     decimal.Decimal
	TotalPrice    decimal.Decimal
	Remarks       string
	DeletedAt     *time.Time
}

// StockQuantity is the quantity that enters stock: net quantity when measured,
// otherwise the gross quantity
func (i PurchaseOrderItem) StockQuantity() decimal.Decimal {
	if i.NetQuantity.IsPositive() {
		return i.NetQuantity
	}
	return i.Quantity
}

// PurchaseLine is the caller's input for one purchase order line
type PurchaseLine struct {
	RawMaterialID uuid.UUID
	Quantity      decimal.Decimal
	NetQuantity   decimal.Decimal
	FringeCost    decimal.Decimal
	UnitPrice     decimal.Decimal
	TotalPrice    decimal.Decimal // zero means quantity × unit price + fringe cost
	Remarks       string
}

func newPurchaseOrderItem(orderID uuid.UUID, line PurchaseLine) (PurchaseOrderItem, error) {
	if line.RawMaterialID == uuid.Nil {
		return PurchaseOrderItem{}, shared.Errorf(shared.ErrInvalidInput, "raw material id is required")
	}
	if !line.Quantity.IsPositive() {
		return PurchaseOrderItem{}, shared.Errorf(shared.ErrInvalidInput, "quantity must be positive")
	}
	if line.NetQuantity.IsNegative() || line.FringeCost.IsNegative() {
		return PurchaseOrderItem{}, shared.Errorf(shared.ErrInvalidInput, "net quantity and fringe cost cannot be negative")
	}
	if line.UnitPrice.IsNegative() || line.TotalPrice.IsNegative() {
		return PurchaseOrderItem{}, shared.Errorf(shared.ErrInvalidInput, "prices cannot be negative")
	}
	total := line.TotalPrice
	if total.IsZero() {
		total = line.Quantity.Mul(line.UnitPrice).Add(line.FringeCost)
	}
	return PurchaseOrderItem{
		ID:            uuid.New(),
		OrderID:       orderID,
		RawMaterialID: line.RawMaterialID,
		Quantity:      line.Quantity,
		NetQuantity:   line.NetQuantity,
		FringeCost:    line.FringeCost,
		UnitPrice:     line.UnitPrice,
		TotalPrice:    total,
		Remarks:       line.Remarks,
	}, nil
}

// PurchaseOrder is a purchase of raw materials from a customer. It owns its items.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	Settlement
	OrderNumber string
	CustomerID  uuid.UUID
	OrderDate   time.Time
	Items       []PurchaseOrderItem
	Remarks     string
	DeletedAt   *time.Time
}

// NewPurchaseOrder creates an empty, unpaid purchase order
func NewPurchaseOrder(scope shared.Scope, customerID uuid.UUID, orderNumber string, orderDate time.Time) (*PurchaseOrder, error) {
	if customerID == uuid.Nil {
		return nil, shared.Errorf(shared.ErrInvalidInput, "customer id is required")
	}
	o := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		Settlement:          newSettlement(),
		CustomerID:          customerID,
		OrderDate:           shared.Day(orderDate),
	}
	o.OrderNumber = orderNumberOr(orderNumber, "PO", o.ID)
	return o, nil
}

// Revise changes the header fields of the order
func (o *PurchaseOrder) Revise(customerID uuid.UUID, orderDate time.Time, remarks string) error {
	if o.IsDeleted() {
		return shared.Errorf(shared.ErrInvalidState, "purchase order %s is deleted", o.OrderNumber)
	}
	if customerID == uuid.Nil {
		return shared.Errorf(shared.ErrInvalidInput, "customer id is required")
	}
	o.CustomerID = customerID
	o.OrderDate = shared.Day(orderDate)
	o.Remarks = remarks
	o.Touch()
	return nil
}

// ReplaceItems swaps the line items and re-prices the order. The paid amount is kept.
func (o *PurchaseOrder) ReplaceItems(lines []PurchaseLine, pricing Pricing) error {
	if len(lines) == 0 {
		return shared.Errorf(shared.ErrInvalidInput, "purchase order must have at least one item")
	}
	items := make([]PurchaseOrderItem, 0, len(lines))
	lineTotal := decimal.Zero
	for _, line := range lines {
		item, err := newPurchaseOrderItem(o.ID, line)
		if err != nil {
			return err
		}
		items = append(items, item)
		lineTotal = lineTotal.Add(item.TotalPrice)
	}
	if err := o.price(pricing, lineTotal); err != nil {
		return err
	}
	o.Items = items
	o.Touch()
	return nil
}

// SoftDelete marks the order and every item as deleted
func (o *PurchaseOrder) SoftDelete(at time.Time) error {
	if o.IsDeleted() {
		return shared.Errorf(shared.ErrInvalidState, "purchase order %s is already deleted", o.OrderNumber)
	}
	o.DeletedAt = &at
	for i := range o.Items {
		o.Items[i].DeletedAt = &at
	}
	o.Touch()
	return nil
}

// IsDeleted reports whether the order was soft deleted
func (o *PurchaseOrder) IsDeleted() bool {
	return o.DeletedAt != nil
}

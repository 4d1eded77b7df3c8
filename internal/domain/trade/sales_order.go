package trade

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderItem is a line of a sales order: a ready item sold at a quality grade
type SalesOrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ReadyItemID uuid.UUID
	Quality     string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	Rate        decimal.Decimal
	Remarks     string
	DeletedAt   *time.Time
}

// SalesLine is the caller's input for one sales order line
type SalesLine struct {
	ReadyItemID uuid.UUID
	Quality     string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal // zero means quantity × unit price
	Rate        decimal.Decimal
	Remarks     string
}

func newSalesOrderItem(orderID uuid.UUID, line SalesLine) (SalesOrderItem, error) {
	if line.ReadyItemID == uuid.Nil {
		return SalesOrderItem{}, shared.Errorf(shared.ErrInvalidInput, "ready item id is required")
	}
	if !line.Quantity.IsPositive() {
		return SalesOrderItem{}, shared.Errorf(shared.ErrInvalidInput, "quantity must be positive")
	}
	if line.UnitPrice.IsNegative() || line.TotalPrice.IsNegative() {
		return SalesOrderItem{}, shared.Errorf(shared.ErrInvalidInput, "prices cannot be negative")
	}
	total := line.TotalPrice
	if total.IsZero() {
		total = line.Quantity.Mul(line.UnitPrice)
	}
	return SalesOrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ReadyItemID: line.ReadyItemID,
		Quality:     strings.TrimSpace(line.Quality),
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
		TotalPrice:  total,
		Rate:        line.Rate,
		Remarks:     line.Remarks,
	}, nil
}

// SalesOrder is a sale of ready items to a customer. It owns its items.
type SalesOrder struct {
	shared.TenantAggregateRoot
	Settlement
	OrderNumber string
	CustomerID  uuid.UUID
	OrderDate   time.Time
	Items       []SalesOrderItem
	Remarks     string
	DeletedAt   *time.Time
}

// NewSalesOrder creates an empty, unpaid sales order
func NewSalesOrder(scope shared.Scope, customerID uuid.UUID, orderNumber string, orderDate time.Time) (*SalesOrder, error) {
	if customerID == uuid.Nil {
		return nil, shared.Errorf(shared.ErrInvalidInput, "customer id is required")
	}
	o := &SalesOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		Settlement:          newSettlement(),
		CustomerID:          customerID,
		OrderDate:           shared.Day(orderDate),
	}
	o.OrderNumber = orderNumberOr(orderNumber, "SO", o.ID)
	return o, nil
}

// Revise changes the header fields of the order
func (o *SalesOrder) Revise(customerID uuid.UUID, orderDate time.Time, remarks string) error {
	if o.IsDeleted() {
		return shared.Errorf(shared.ErrInvalidState, "sales order %s is deleted", o.OrderNumber)
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
func (o *SalesOrder) ReplaceItems(lines []SalesLine, pricing Pricing) error {
	if len(lines) == 0 {
		return shared.Errorf(shared.ErrInvalidInput, "sales order must have at least one item")
	}
	items := make([]SalesOrderItem, 0, len(lines))
	lineTotal := decimal.Zero
	for _, line := range lines {
		item, err := newSalesOrderItem(o.ID, line)
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
func (o *SalesOrder) SoftDelete(at time.Time) error {
	if o.IsDeleted() {
		return shared.Errorf(shared.ErrInvalidState, "sales order %s is already deleted", o.OrderNumber)
	}
	o.DeletedAt = &at
	for i := range o.Items {
		o.Items[i].DeletedAt = &at
	}
	o.Touch()
	return nil
}

// IsDeleted reports whether the order was soft deleted
func (o *SalesOrder) IsDeleted() bool {
	return o.DeletedAt != nil
}

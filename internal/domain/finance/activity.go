package finance

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerOrder is the part of a sales or purchase order the account ledger reads
type LedgerOrder struct {
	ID          uuid.UUID
	OrderNumber string
	OrderDate   time.Time
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// OrderReader reads a customer's non-deleted orders for balance computations
type OrderReader interface {
	SalesFor(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]LedgerOrder, error)
	PurchasesFor(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]LedgerOrder, error)
}

// Activity is everything that moves a customer's balance
type Activity struct {
	Sales     []LedgerOrder
	Purchases []LedgerOrder
	Payments  []Payment
}

// Totals are the re-summed components of an account balance
type Totals struct {
	Receivable      decimal.Decimal
	Payable         decimal.Decimal
	Paid            decimal.Decimal
	PaidOut         decimal.Decimal
	LastTransaction *time.Time
}

// Balance applies the account formula to the totals:
// opening + receivable − payable − paid + paidOut
func (t Totals) Balance(opening decimal.Decimal) decimal.Decimal {
	return opening.Add(t.Receivable).Sub(t.Payable).Sub(t.Paid).Add(t.PaidOut)
}

// Sum totals the activity dated strictly before until; a zero until sums everything.
// ADJUSTMENT payments do not enter the formula.
func (a Activity) Sum(until time.Time) Totals {
	t := Totals{
		Receivable: decimal.Zero,
		Payable:    decimal.Zero,
		Paid:       decimal.Zero,
		PaidOut:    decimal.Zero,
	}
	include := func(date time.Time) bool {
		if !until.IsZero() && !date.Before(until) {
			return false
		}
		if t.LastTransaction == nil || date.After(*t.LastTransaction) {
			d := date
			t.LastTransaction = &d
		}
		return true
	}
	for _, o := range a.Sales {
		if include(o.OrderDate) {
			t.Receivable = t.Receivable.Add(o.TotalAmount)
		}
	}
	for _, o := range a.Purchases {
		if include(o.OrderDate) {
			t.Payable = t.Payable.Add(o.TotalAmount)
		}
	}
	for _, p := range a.Payments {
		if !include(p.Date) {
			continue
		}
		switch p.Type {
		case PaymentTypeSales:
			t.Paid = t.Paid.Add(p.Amount)
		case PaymentTypePurchase:
			t.PaidOut = t.PaidOut.Add(p.Amount)
		}
	}
	return t
}

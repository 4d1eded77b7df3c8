package finance

import (
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashEntryType classifies a cash movement
type CashEntryType string

const (
	// CashCustomerPayment is money received from a customer
	CashCustomerPayment CashEntryType = "CUSTOMER_PAYMENT"
	// CashCustomerReceipt is money paid to a customer against a receipt
	CashCustomerReceipt CashEntryType = "CUSTOMER_RECEIPT"
	CashOther           CashEntryType = "OTHER"
)

// IsValid checks if the type is known
func (t CashEntryType) IsValid() bool {
	switch t {
	case CashCustomerPayment, CashCustomerReceipt, CashOther:
		return true
	}
	return false
}

// CashEntry is one line of the cash book. Debit is money in, credit is money out.
// Entries are ordered by (Date, Sequence) and Balance is the running balance in that order.
type CashEntry struct {
	shared.TenantAggregateRoot
	Date       time.Time
	Sequence   int64
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	Balance    decimal.Decimal
	Type       CashEntryType
	PaymentID  *uuid.UUID
	CustomerID *uuid.UUID
	Remarks    string
}

// NewCashEntry creates a manual cash entry
func NewCashEntry(scope shared.Scope, date time.Time, debit, credit decimal.Decimal, typ CashEntryType, remarks string) (*CashEntry, error) {
	if typ == "" {
		typ = CashOther
	}
	if !typ.IsValid() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "unknown cash entry type %q", typ)
	}
	if debit.IsNegative() || credit.IsNegative() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "debit and credit cannot be negative")
	}
	return &CashEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		Date:                shared.Day(date),
		Debit:               debit,
		Credit:              credit,
		Balance:             decimal.Zero,
		Type:                typ,
		Remarks:             remarks,
	}, nil
}

// CashEntryFromPayment creates the cash entry mirroring a payment
func CashEntryFromPayment(scope shared.Scope, p *Payment) *CashEntry {
	e := &CashEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		Balance:             decimal.Zero,
	}
	e.SyncPayment(p)
	return e
}

// SyncPayment copies date, direction and remarks from the payment. Received sales
// payments are debits, purchase payments are credits, anything else moves no cash.
func (e *CashEntry) SyncPayment(p *Payment) {
	paymentID, customerID := p.ID, p.CustomerID
	e.PaymentID = &paymentID
	e.CustomerID = &customerID
	e.Date = shared.Day(p.Date)
	e.Remarks = "Payment: " + p.Remarks
	switch p.Type {
	case PaymentTypeSales:
		e.Debit, e.Credit, e.Type = p.Amount, decimal.Zero, CashCustomerPayment
	case PaymentTypePurchase:
		e.Debit, e.Credit, e.Type = decimal.Zero, p.Amount, CashCustomerReceipt
	default:
		e.Debit, e.Credit, e.Type = decimal.Zero, decimal.Zero, CashOther
	}
	e.Touch()
}

// Net is debit minus credit
func (e *CashEntry) Net() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// follows recomputes the balance as the successor of prev and reports whether it changed
func (e *CashEntry) follows(prev decimal.Decimal) bool {
	balance := prev.Add(e.Net())
	if balance.Equal(e.Balance) {
		return false
	}
	e.Balance = balance
	return true
}

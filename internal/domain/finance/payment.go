package finance

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypePayment is the aggregate type name used in events
const AggregateTypePayment = "Payment"

// PaymentType tells which side of the account a payment settles
type PaymentType string

const (
	// PaymentTypeSales is money received from a customer
	PaymentTypeSales PaymentType = "SALES_PAYMENT"
	// PaymentTypePurchase is money paid to a customer
	PaymentTypePurchase PaymentType = "PURCHASE_PAYMENT"
	PaymentTypeAdjustment PaymentType = "ADJUSTMENT"
)

// IsValid checks if the type is known
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeSales, PaymentTypePurchase, PaymentTypeAdjustment:
		return true
	}
	return false
}

// PaymentMode is how the money moved
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "CASH"
	PaymentModeCheque       PaymentMode = "CHEQUE"
	PaymentModeBankTransfer PaymentMode = "BANK_TRANSFER"
	PaymentModeOther        PaymentMode = "OTHER"
)

// IsValid checks if the mode is known
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeCheque, PaymentModeBankTransfer, PaymentModeOther:
		return true
	}
	return false
}

// PaymentDetails are the caller-supplied fields of a payment
type PaymentDetails struct {
	CustomerID      uuid.UUID
	Type            PaymentType
	Amount          decimal.Decimal
	Date            time.Time
	Mode            PaymentMode
	ReferenceNumber string
	Remarks         string
	SalesOrderID    *uuid.UUID
	PurchaseOrderID *uuid.UUID
}

// Validate checks the details
func (p PaymentDetails) Validate() error {
	if p.CustomerID == uuid.Nil {
		return shared.Errorf(shared.ErrInvalidInput, "customer id is required")
	}
	if !p.Type.IsValid() {
		return shared.Errorf(shared.ErrInvalidInput, "unknown payment type %q", p.Type)
	}
	if !p.Mode.IsValid() {
		return shared.Errorf(shared.ErrInvalidInput, "unknown payment mode %q", p.Mode)
	}
	if !p.Amount.IsPositive() {
		return shared.Errorf(shared.ErrInvalidInput, "payment amount must be positive")
	}
	if p.SalesOrderID != nil && p.PurchaseOrderID != nil {
		return shared.Errorf(shared.ErrInvalidInput, "a payment links to at most one order")
	}
	return nil
}

// Payment is money moving between us and a customer
type Payment struct {
	shared.TenantAggregateRoot
	CustomerID      uuid.UUID
	Type            PaymentType
	Amount          decimal.Decimal
	Date            time.Time
	Mode            PaymentMode
	ReferenceNumber string
	Remarks         string
	SalesOrderID    *uuid.UUID
	PurchaseOrderID *uuid.UUID
	CashEntryID     *uuid.UUID
}

// NewPayment creates a new payment
func NewPayment(scope shared.Scope, details PaymentDetails) (*Payment, error) {
	if err := details.Validate(); err != nil {
		return nil, err
	}
	p := &Payment{TenantAggregateRoot: shared.NewTenantAggregateRoot(scope)}
	p.apply(details)
	return p, nil
}

func (p *Payment) apply(details PaymentDetails) {
	p.CustomerID = details.CustomerID
	p.Type = details.Type
	p.Amount = details.Amount
	p.Date = shared.Day(details.Date)
	p.Mode = details.Mode
	p.ReferenceNumber = strings.TrimSpace(details.ReferenceNumber)
	p.Remarks = details.Remarks
	p.SalesOrderID = details.SalesOrderID
	p.PurchaseOrderID = details.PurchaseOrderID
}

// Revise overwrites the payment with new details; the cash link is kept
func (p *Payment) Revise(details PaymentDetails) error {
	if err := details.Validate(); err != nil {
		return err
	}
	p.apply(details)
	p.Touch()
	return nil
}

// Details returns the caller-visible fields of the payment
func (p *Payment) Details() PaymentDetails {
	return PaymentDetails{
		CustomerID:      p.CustomerID,
		Type:            p.Type,
		Amount:          p.Amount,
		Date:            p.Date,
		Mode:            p.Mode,
		ReferenceNumber: p.ReferenceNumber,
		Remarks:         p.Remarks,
		SalesOrderID:    p.SalesOrderID,
		PurchaseOrderID: p.PurchaseOrderID,
	}
}

// LinkCashEntry records the cash entry created for the payment
func (p *Payment) LinkCashEntry(id uuid.UUID) {
	p.CashEntryID = &id
}

// Description is the statement text of the payment
func (p *Payment) Description() string {
	s := "Payment - " + string(p.Mode)
	if p.ReferenceNumber != "" {
		s += " #" + p.ReferenceNumber
	}
	return s
}

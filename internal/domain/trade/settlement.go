package trade

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents how much of an order has been paid
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// DerivePaymentStatus returns UNPAID when nothing is paid, PAID when no balance
// remains and PARTIAL otherwise
func DerivePaymentStatus(paid, balance decimal.Decimal) PaymentStatus {
	switch {
	case !paid.IsPositive():
		return PaymentStatusUnpaid
	case !balance.IsPositive():
		return PaymentStatusPaid
	}
	return PaymentStatusPartial
}

// Settlement holds the money fields shared by sales and purchase orders
type Settlement struct {
	GST            decimal.Decimal // rate in percent, informational
	GSTAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	PaidAmount     decimal.Decimal
	BalancePayment decimal.Decimal
	PaymentStatus  PaymentStatus
}

func newSettlement() Settlement {
	return Settlement{
		GST:            decimal.Zero,
		GSTAmount:      decimal.Zero,
		TotalAmount:    decimal.Zero,
		PaidAmount:     decimal.Zero,
		BalancePayment: decimal.Zero,
		PaymentStatus:  PaymentStatusUnpaid,
	}
}

// Pricing is the caller's view of an order's totals. A nil Total means the total
// is the sum of the line totals plus GSTAmount.
type Pricing struct {
	GST       decimal.Decimal
	GSTAmount decimal.Decimal
	Total     *decimal.Decimal
}

func (s *Settlement) price(p Pricing, lineTotal decimal.Decimal) error {
	if p.GST.IsNegative() || p.GSTAmount.IsNegative() {
		return shared.Errorf(shared.ErrInvalidInput, "GST cannot be negative")
	}
	total := lineTotal.Add(p.GSTAmount)
	if p.Total != nil {
		if p.Total.IsNegative() {
			return shared.Errorf(shared.ErrInvalidInput, "total amount cannot be negative")
		}
		total = *p.Total
	}
	s.GST = p.GST
	s.GSTAmount = p.GSTAmount
	s.TotalAmount = total
	s.rebalance()
	return nil
}

func (s *Settlement) rebalance() {
	s.BalancePayment = s.TotalAmount.Sub(s.PaidAmount)
	s.PaymentStatus = DerivePaymentStatus(s.PaidAmount, s.BalancePayment)
}

// ApplyPayment adds a received or made payment to the paid amount
func (s *Settlement) ApplyPayment(amount decimal.Decimal) {
	s.PaidAmount = s.PaidAmount.Add(amount)
	s.rebalance()
}

// ReversePayment removes a previously applied payment, flooring the paid amount at zero
func (s *Settlement) ReversePayment(amount decimal.Decimal) {
	s.PaidAmount = s.PaidAmount.Sub(amount)
	if s.PaidAmount.IsNegative() {
		s.PaidAmount = decimal.Zero
	}
	s.rebalance()
}

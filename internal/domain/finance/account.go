package finance

import (
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeCustomerAccount is the aggregate type name used in events
const AggregateTypeCustomerAccount = "CustomerAccount"

// CustomerAccount is the running balance of one customer. A positive balance is
// owed to us.
type CustomerAccount struct {
	shared.TenantAggregateRoot
	CustomerID          uuid.UUID
	OpeningBalance      decimal.Decimal
	TotalReceivable     decimal.Decimal
	TotalPayable        decimal.Decimal
	TotalPaid           decimal.Decimal
	TotalPaidOut        decimal.Decimal
	CurrentBalance      decimal.Decimal
	LastTransactionDate *time.Time
}

// NewCustomerAccount creates a zero-seeded account
func NewCustomerAccount(scope shared.Scope, customerID uuid.UUID) (*CustomerAccount, error) {
	if customerID == uuid.Nil {
		return nil, shared.Errorf(shared.ErrInvalidInput, "customer id is required")
	}
	return &CustomerAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		CustomerID:          customerID,
		OpeningBalance:      decimal.Zero,
		TotalReceivable:     decimal.Zero,
		TotalPayable:        decimal.Zero,
		TotalPaid:           decimal.Zero,
		TotalPaidOut:        decimal.Zero,
		CurrentBalance:      decimal.Zero,
	}, nil
}

// Recompute replaces every total with a full re-sum of the customer's activity
func (a *CustomerAccount) Recompute(activity Activity) {
	t := activity.Sum(time.Time{})
	a.TotalReceivable = t.Receivable
	a.TotalPayable = t.Payable
	a.TotalPaid = t.Paid
	a.TotalPaidOut = t.PaidOut
	// nil once every order and payment is gone
	a.LastTransactionDate = t.LastTransaction
	a.rebalance()
	a.Touch()
}

// SetOpeningBalance changes the base opening balance
func (a *CustomerAccount) SetOpeningBalance(opening decimal.Decimal) {
	a.OpeningBalance = opening
	a.rebalance()
	a.Touch()
}

func (a *CustomerAccount) totals() Totals {
	return Totals{
		Receivable: a.TotalReceivable,
		Payable:    a.TotalPayable,
		Paid:       a.TotalPaid,
		PaidOut:    a.TotalPaidOut,
	}
}

func (a *CustomerAccount) rebalance() {
	a.CurrentBalance = a.totals().Balance(a.OpeningBalance)
}

// IsConsistent reports whether the current balance matches the formula
func (a *CustomerAccount) IsConsistent() bool {
	return a.CurrentBalance.Equal(a.totals().Balance(a.OpeningBalance))
}

package finance

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountRepository persists customer accounts
type AccountRepository interface {
	FindByCustomer(ctx context.Context, scope shared.Scope, customerID uuid.UUID) (*CustomerAccount, error)
	FindAll(ctx context.Context, scope shared.Scope) ([]CustomerAccount, error)
	Save(ctx context.Context, account *CustomerAccount) error
}

// PaymentFilter narrows ListPayments; zero fields match everything
type PaymentFilter struct {
	CustomerID *uuid.UUID
	Type       PaymentType
	Period     *shared.DateRange
}

// PaymentRepository persists payments
type PaymentRepository interface {
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Payment, error)
	FindForCustomer(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]Payment, error)
	FindForSalesOrder(ctx context.Context, scope shared.Scope, orderID uuid.UUID) ([]Payment, error)
	FindForPurchaseOrder(ctx context.Context, scope shared.Scope, orderID uuid.UUID) ([]Payment, error)
	// List returns payments by date, newest first
	List(ctx context.Context, scope shared.Scope, filter PaymentFilter) ([]Payment, error)
	Save(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error
}

// CashEntryRepository persists the cash book. Ordered results are by (date, sequence).
type CashEntryRepository interface {
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*CashEntry, error)
	// FindLatest returns the last entry of the book
	FindLatest(ctx context.Context, scope shared.Scope) (*CashEntry, error)
	// FindLastBefore returns the last entry dated strictly before date
	FindLastBefore(ctx context.Context, scope shared.Scope, date time.Time) (*CashEntry, error)
	// FindFrom returns every entry dated on or after date
	FindFrom(ctx context.Context, scope shared.Scope, date time.Time) ([]CashEntry, error)
	FindRange(ctx context.Context, scope shared.Scope, r shared.DateRange) ([]CashEntry, error)
	// NextSequence returns a sequence greater than any used in the book
	NextSequence(ctx context.Context, scope shared.Scope) (int64, error)
	Save(ctx context.Context, entry *CashEntry) error
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error
}

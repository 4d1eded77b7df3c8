package persistence

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormOrderReader implements finance.OrderReader over the order header tables
type GormOrderReader struct {
	db *gorm.DB
}

// NewGormOrderReader creates a new GormOrderReader
func NewGormOrderReader(db *gorm.DB) *GormOrderReader {
	return &GormOrderReader{db: db}
}

type ledgerOrderRow struct {
	ID          uuid.UUID
	OrderNumber string
	OrderDate   time.Time
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// SalesFor returns the customer's non-deleted sales orders
func (r *GormOrderReader) SalesFor(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]finance.LedgerOrder, error) {
	return r.read(ctx, scope, "sales_orders", customerID)
}

// PurchasesFor returns the customer's non-deleted purchase orders
func (r *GormOrderReader) PurchasesFor(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]finance.LedgerOrder, error) {
	return r.read(ctx, scope, "purchase_orders", customerID)
}

func (r *GormOrderReader) read(ctx context.Context, scope shared.Scope, table string, customerID uuid.UUID) ([]finance.LedgerOrder, error) {
	var rows []ledgerOrderRow
	if err := r.db.WithContext(ctx).
		Table(table).
		Select("id, order_number, order_date, total_amount, created_at").
		Scopes(tenant.Apply(scope)).
		Where("customer_id = ? AND deleted_at IS NULL", customerID).
		Order("order_date ASC, created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]finance.LedgerOrder, len(rows))
	for i, row := range rows {
		orders[i] = finance.LedgerOrder{
			ID:          row.ID,
			OrderNumber: row.OrderNumber,
			OrderDate:   shared.Day(row.OrderDate),
			TotalAmount: row.TotalAmount,
			CreatedAt:   row.CreatedAt,
		}
	}
	return orders, nil
}

var _ finance.OrderReader = (*GormOrderReader)(nil)

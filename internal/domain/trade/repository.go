package trade

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// SalesOrderRepository persists sales orders together with their items.
// Finders skip soft-deleted orders.
type SalesOrderRepository interface {
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*SalesOrder, error)
	// FindForCustomer returns the customer's orders by order date
	FindForCustomer(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]SalesOrder, error)
	// Save writes the header and the current items; items no longer on the order are removed
	Save(ctx context.Context, order *SalesOrder) error
}

// PurchaseOrderRepository persists purchase orders together with their items.
// Finders skip soft-deleted orders.
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*PurchaseOrder, error)
	FindForCustomer(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]PurchaseOrder, error)
	Save(ctx context.Context, order *PurchaseOrder) error
}

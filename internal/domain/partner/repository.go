package partner

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository persists customers
type CustomerRepository interface {
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Customer, error)
	FindAll(ctx context.Context, scope shared.Scope) ([]Customer, error)
	Save(ctx context.Context, customer *Customer) error
}

package catalog

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// RawMaterialRepository persists raw materials
type RawMaterialRepository interface {
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*RawMaterial, error)
	FindAll(ctx context.Context, scope shared.Scope) ([]RawMaterial, error)
	Save(ctx context.Context, material *RawMaterial) error
}

// ReadyItemRepository persists ready items
type ReadyItemRepository interface {
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*ReadyItem, error)
	FindAll(ctx context.Context, scope shared.Scope) ([]ReadyItem, error)
	Save(ctx context.Context, item *ReadyItem) error
}

package production

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// RecipeRepository persists recipes
type RecipeRepository interface {
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Recipe, error)
	// FindByKey returns the recipe for the (ready item, raw material, quality) triple
	FindByKey(ctx context.Context, scope shared.Scope, readyItemID, rawMaterialID uuid.UUID, quality string) (*Recipe, error)
	// FindForReadyItem returns every recipe row of a ready item at a quality
	FindForReadyItem(ctx context.Context, scope shared.Scope, readyItemID uuid.UUID, quality string) ([]Recipe, error)
	Save(ctx context.Context, recipe *Recipe) error
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error
}

// PropositionRepository persists propositions
type PropositionRepository interface {
	FindByKey(ctx context.Context, scope shared.Scope, readyItemID, rawMaterialID uuid.UUID) (*Proposition, error)
	FindForReadyItem(ctx context.Context, scope shared.Scope, readyItemID uuid.UUID) ([]Proposition, error)
	Save(ctx context.Context, proposition *Proposition) error
}

// BatchRepository persists production batches
type BatchRepository interface {
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Batch, error)
	// FindForReadyItem returns batches newest first
	FindForReadyItem(ctx context.Context, scope shared.Scope, readyItemID uuid.UUID) ([]Batch, error)
	Save(ctx context.Context, batch *Batch) error
}

// ConsumptionRepository persists material consumption rows
type ConsumptionRepository interface {
	FindForBatch(ctx context.Context, scope shared.Scope, batchID uuid.UUID) ([]MaterialConsumption, error)
	Save(ctx context.Context, consumption *MaterialConsumption) error
}

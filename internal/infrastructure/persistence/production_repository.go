package persistence

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/domain/production"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/erp/backoffice/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRecipeRepository implements RecipeRepository using GORM
type GormRecipeRepository struct {
	db *gorm.DB
}

// NewGormRecipeRepository creates a new GormRecipeRepository
func NewGormRecipeRepository(db *gorm.DB) *GormRecipeRepository {
	return &GormRecipeRepository{db: db}
}

func (r *GormRecipeRepository) first(query *gorm.DB) (*production.Recipe, error) {
	var model models.RecipeModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds a recipe row by ID
func (r *GormRecipeRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*production.Recipe, error) {
	return r.first(r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).Where("id = ?", id))
}

// FindByKey returns the recipe for the (ready item, raw material, quality) triple
func (r *GormRecipeRepository) FindByKey(ctx context.Context, scope shared.Scope, readyItemID, rawMaterialID uuid.UUID, quality string) (*production.Recipe, error) {
	return r.first(r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("ready_item_id = ? AND raw_material_id = ? AND quality = ?", readyItemID, rawMaterialID, quality))
}

// FindForReadyItem returns every recipe row of a ready item at a quality
func (r *GormRecipeRepository) FindForReadyItem(ctx context.Context, scope shared.Scope, readyItemID uuid.UUID, quality string) ([]production.Recipe, error) {
	var rows []models.RecipeModel
	if err := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("ready_item_id = ? AND quality = ?", readyItemID, quality).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	recipes := make([]production.Recipe, len(rows))
	for i := range rows {
		recipes[i] = *rows[i].ToDomain()
	}
	return recipes, nil
}

// Save creates or updates a recipe row
func (r *GormRecipeRepository) Save(ctx context.Context, recipe *production.Recipe) error {
	return r.db.WithContext(ctx).Save(models.RecipeModelFromDomain(recipe)).Error
}

// Delete removes a recipe row
func (r *GormRecipeRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("id = ?", id).
		Delete(&models.RecipeModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormPropositionRepository implements PropositionRepository using GORM
type GormPropositionRepository struct {
	db *gorm.DB
}

// NewGormPropositionRepository creates a new GormPropositionRepository
func NewGormPropositionRepository(db *gorm.DB) *GormPropositionRepository {
	return &GormPropositionRepository{db: db}
}

// FindByKey returns the proposition of a raw material within a ready item
func (r *GormPropositionRepository) FindByKey(ctx context.Context, scope shared.Scope, readyItemID, rawMaterialID uuid.UUID) (*production.Proposition, error) {
	var model models.PropositionModel
	if err := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("ready_item_id = ? AND raw_material_id = ?", readyItemID, rawMaterialID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForReadyItem returns every proposition of a ready item
func (r *GormPropositionRepository) FindForReadyItem(ctx context.Context, scope shared.Scope, readyItemID uuid.UUID) ([]production.Proposition, error) {
	var rows []models.PropositionModel
	if err := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("ready_item_id = ?", readyItemID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	props := make([]production.Proposition, len(rows))
	for i := range rows {
		props[i] = *rows[i].ToDomain()
	}
	return props, nil
}

// Save creates or updates a proposition
func (r *GormPropositionRepository) Save(ctx context.Context, proposition *production.Proposition) error {
	return r.db.WithContext(ctx).Save(models.PropositionModelFromDomain(proposition)).Error
}

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a production batch by ID
func (r *GormBatchRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*production.Batch, error) {
	var model models.ProductionBatchModel
	if err := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.Errorf(shared.ErrNotFound, "Production batch not found: %s", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForReadyItem returns the batches of a ready item, newest first
func (r *GormBatchRepository) FindForReadyItem(ctx context.Context, scope shared.Scope, readyItemID uuid.UUID) ([]production.Batch, error) {
	var rows []models.ProductionBatchModel
	if err := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("ready_item_id = ?", readyItemID).
		Order("production_date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	batches := make([]production.Batch, len(rows))
	for i := range rows {
		batches[i] = *rows[i].ToDomain()
	}
	return batches, nil
}

// Save creates or updates a production batch
func (r *GormBatchRepository) Save(ctx context.Context, batch *production.Batch) error {
	return r.db.WithContext(ctx).Save(models.ProductionBatchModelFromDomain(batch)).Error
}

// GormConsumptionRepository implements ConsumptionRepository using GORM
type GormConsumptionRepository struct {
	db *gorm.DB
}

// NewGormConsumptionRepository creates a new GormConsumptionRepository
func NewGormConsumptionRepository(db *gorm.DB) *GormConsumptionRepository {
	return &GormConsumptionRepository{db: db}
}

// FindForBatch returns the consumption rows written by a production batch
func (r *GormConsumptionRepository) FindForBatch(ctx context.Context, scope shared.Scope, batchID uuid.UUID) ([]production.MaterialConsumption, error) {
	var rows []models.MaterialConsumptionModel
	if err := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	consumptions := make([]production.MaterialConsumption, len(rows))
	for i := range rows {
		consumptions[i] = *rows[i].ToDomain()
	}
	return consumptions, nil
}

// Save creates or updates a consumption row
func (r *GormConsumptionRepository) Save(ctx context.Context, consumption *production.MaterialConsumption) error {
	return r.db.WithContext(ctx).Save(models.MaterialConsumptionModelFromDomain(consumption)).Error
}

var (
	_ production.RecipeRepository      = (*GormRecipeRepository)(nil)
	_ production.PropositionRepository = (*GormPropositionRepository)(nil)
	_ production.BatchRepository       = (*GormBatchRepository)(nil)
	_ production.ConsumptionRepository = (*GormConsumptionRepository)(nil)
)

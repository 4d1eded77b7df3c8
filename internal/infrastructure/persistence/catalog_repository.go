package persistence

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/erp/backoffice/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRawMaterialRepository implements RawMaterialRepository using GORM
type GormRawMaterialRepository struct {
	db *gorm.DB
}

// NewGormRawMaterialRepository creates a new GormRawMaterialRepository
func NewGormRawMaterialRepository(db *gorm.DB) *GormRawMaterialRepository {
	return &GormRawMaterialRepository{db: db}
}

// FindByID finds a raw material by ID within the scope
func (r *GormRawMaterialRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*catalog.RawMaterial, error) {
	var model models.RawMaterialModel
	if err := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.Errorf(shared.ErrNotFound, "Raw material not found: %s", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every raw material of the scope ordered by name
func (r *GormRawMaterialRepository) FindAll(ctx context.Context, scope shared.Scope) ([]catalog.RawMaterial, error) {
	var rows []models.RawMaterialModel
	if err := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	materials := make([]catalog.RawMaterial, len(rows))
	for i := range rows {
		materials[i] = *rows[i].ToDomain()
	}
	return materials, nil
}

// Save creates or updates a raw material
func (r *GormRawMaterialRepository) Save(ctx context.Context, material *catalog.RawMaterial) error {
	return r.db.WithContext(ctx).Save(models.RawMaterialModelFromDomain(material)).Error
}

// GormReadyItemRepository implements ReadyItemRepository using GORM
type GormReadyItemRepository struct {
	db *gorm.DB
}

// NewGormReadyItemRepository creates a new GormReadyItemRepository
func NewGormReadyItemRepository(db *gorm.DB) *GormReadyItemRepository {
	return &GormReadyItemRepository{db: db}
}

// FindByID finds a ready item by ID within the scope
func (r *GormReadyItemRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*catalog.ReadyItem, error) {
	var model models.ReadyItemModel
	if err := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.Errorf(shared.ErrNotFound, "Ready item not found: %s", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every ready item of the scope ordered by name
func (r *GormReadyItemRepository) FindAll(ctx context.Context, scope shared.Scope) ([]catalog.ReadyItem, error) {
	var rows []models.ReadyItemModel
	if err := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]catalog.ReadyItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

// Save creates or updates a ready item, including its deviation snapshot
func (r *GormReadyItemRepository) Save(ctx context.Context, item *catalog.ReadyItem) error {
	return r.db.WithContext(ctx).Save(models.ReadyItemModelFromDomain(item)).Error
}

var (
	_ catalog.RawMaterialRepository = (*GormRawMaterialRepository)(nil)
	_ catalog.ReadyItemRepository   = (*GormReadyItemRepository)(nil)
)

package persistence

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/erp/backoffice/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// live selects the scope's non-deleted orders with their non-deleted items
func (r *GormPurchaseOrderRepository) live(ctx context.Context, scope shared.Scope) *gorm.DB {
	return r.db.WithContext(ctx).
		Scopes(tenant.Apply(scope)).
		Where("deleted_at IS NULL").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Where("deleted_at IS NULL").Order("position ASC")
		})
}

// FindByID finds a purchase order by ID, including its items
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.live(ctx, scope).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.Errorf(shared.ErrNotFound, "Purchase order not found: %s", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForCustomer returns the customer's orders by order date
func (r *GormPurchaseOrderRepository) FindForCustomer(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]trade.PurchaseOrder, error) {
	var rows []models.PurchaseOrderModel
	if err := r.live(ctx, scope).
		Where("customer_id = ?", customerID).
		Order("order_date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]trade.PurchaseOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// Save writes the header and the current items. Rows of items that are no longer
// on the order are removed.
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(models.PurchaseOrderModelFromDomain(order)).Error; err != nil {
			return err
		}

		keep := make([]uuid.UUID, 0, len(order.Items))
		for _, item := range order.Items {
			keep = append(keep, item.ID)
		}
		stale := tx.Where("order_id = ?", order.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.PurchaseOrderItemModel{}).Error; err != nil {
			return err
		}

		for i, item := range order.Items {
			if err := tx.Save(models.PurchaseOrderItemModelFromDomain(item, i)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)

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

// GormSalesOrderRepository implements SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// live selects the scope's non-deleted orders with their non-deleted items
func (r *GormSalesOrderRepository) live(ctx context.Context, scope shared.Scope) *gorm.DB {
	return r.db.WithContext(ctx).
		Scopes(tenant.Apply(scope)).
		Where("deleted_at IS NULL").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Where("deleted_at IS NULL").Order("position ASC")
		})
}

// FindByID finds a sales order by ID, including its items
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*trade.SalesOrder, error) {
	var model models.SalesOrderModel
	if err := r.live(ctx, scope).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.Errorf(shared.ErrNotFound, "Sales order not found: %s", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForCustomer returns the customer's orders by order date
func (r *GormSalesOrderRepository) FindForCustomer(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]trade.SalesOrder, error) {
	var rows []models.SalesOrderModel
	if err := r.live(ctx, scope).
		Where("customer_id = ?", customerID).
		Order("order_date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]trade.SalesOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// Save writes the header and the current items. Rows of items that are no longer
// on the order are removed.
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(models.SalesOrderModelFromDomain(order)).Error; err != nil {
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
		if err := stale.Delete(&models.SalesOrderItemModel{}).Error; err != nil {
			return err
		}

		for i, item := range order.Items {
			if err := tx.Save(models.SalesOrderItemModelFromDomain(item, i)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)

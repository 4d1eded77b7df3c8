package persistence

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/erp/backoffice/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) find(query *gorm.DB) ([]finance.Payment, error) {
	var rows []models.PaymentModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]finance.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.Errorf(shared.ErrNotFound, "Payment not found: %s", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForCustomer returns the customer's payments by date
func (r *GormPaymentRepository) FindForCustomer(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]finance.Payment, error) {
	return r.find(r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("customer_id = ?", customerID).
		Order("payment_date ASC, created_at ASC"))
}

// FindForSalesOrder returns the payments linked to a sales order
func (r *GormPaymentRepository) FindForSalesOrder(ctx context.Context, scope shared.Scope, orderID uuid.UUID) ([]finance.Payment, error) {
	return r.find(r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("sales_order_id = ?", orderID).
		Order("payment_date ASC, created_at ASC"))
}

// FindForPurchaseOrder returns the payments linked to a purchase order
func (r *GormPaymentRepository) FindForPurchaseOrder(ctx context.Context, scope shared.Scope, orderID uuid.UUID) ([]finance.Payment, error) {
	return r.find(r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("purchase_order_id = ?", orderID).
		Order("payment_date ASC, created_at ASC"))
}

// List returns payments matching the filter, newest first
func (r *GormPaymentRepository) List(ctx context.Context, scope shared.Scope, filter finance.PaymentFilter) ([]finance.Payment, error) {
	query := r.db.WithContext(ctx).Scopes(tenant.Apply(scope))
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Type != "" {
		query = query.Where("payment_type = ?", filter.Type)
	}
	if filter.Period != nil {
		query = query.Where("payment_date >= ? AND payment_date <= ?",
			shared.Day(filter.Period.From), shared.Day(filter.Period.To))
	}
	return r.find(query.Order("payment_date DESC, created_at DESC"))
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	return r.db.WithContext(ctx).Save(models.PaymentModelFromDomain(payment)).Error
}

// Delete removes a payment
func (r *GormPaymentRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("id = ?", id).
		Delete(&models.PaymentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)

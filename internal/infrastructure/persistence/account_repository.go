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

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByCustomer returns the account of a customer
func (r *GormAccountRepository) FindByCustomer(ctx context.Context, scope shared.Scope, customerID uuid.UUID) (*finance.CustomerAccount, error) {
	var model models.CustomerAccountModel
	if err := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("customer_id = ?", customerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every account of the scope
func (r *GormAccountRepository) FindAll(ctx context.Context, scope shared.Scope) ([]finance.CustomerAccount, error) {
	var rows []models.CustomerAccountModel
	if err := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	accounts := make([]finance.CustomerAccount, len(rows))
	for i := range rows {
		accounts[i] = *rows[i].ToDomain()
	}
	return accounts, nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *finance.CustomerAccount) error {
	return r.db.WithContext(ctx).Save(models.CustomerAccountModelFromDomain(account)).Error
}

var _ finance.AccountRepository = (*GormAccountRepository)(nil)

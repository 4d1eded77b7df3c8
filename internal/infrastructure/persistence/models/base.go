package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel extends BaseModel with the aggregate version
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// TenantAggregateModel provides the persistence fields of a tenant-scoped aggregate root
type TenantAggregateModel struct {
	AggregateModel
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CompanyID uuid.UUID  `gorm:"type:uuid;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

// TenantScope returns the scope the row belongs to
func (m *TenantAggregateModel) TenantScope() shared.Scope {
	return shared.Scope{TenantID: m.TenantID, CompanyID: m.CompanyID}
}

// FromDomainTenantAggregateRoot populates the model from a domain TenantAggregateRoot
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(t shared.TenantAggregateRoot) {
	m.ID = t.ID
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
	m.Version = t.Version
	m.TenantID = t.TenantID
	m.CompanyID = t.CompanyID
	m.CreatedBy = t.CreatedBy
}

// ToDomainTenantAggregateRoot builds the domain TenantAggregateRoot from the model
func (m *TenantAggregateModel) ToDomainTenantAggregateRoot() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		TenantID:  m.TenantID,
		CompanyID: m.CompanyID,
		CreatedBy: m.CreatedBy,
	}
}

var _ shared.HasTenantScope = (*TenantAggregateModel)(nil)

// All returns every ledger model, in an order that satisfies foreign keys, for AutoMigrate
func All() []any {
	return []any{
		&RawMaterialModel{},
		&ReadyItemModel{},
		&CustomerModel{},
		&StockEntryModel{},
		&RecipeModel{},
		&PropositionModel{},
		&ProductionBatchModel{},
		&MaterialConsumptionModel{},
		&SalesOrderModel{},
		&SalesOrderItemModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderItemModel{},
		&CustomerAccountModel{},
		&PaymentModel{},
		&CashEntryModel{},
	}
}

package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// RawMaterialModel is the persistence model for the RawMaterial aggregate
type RawMaterialModel struct {
	TenantAggregateModel
	Code        string `gorm:"type:varchar(50);index"`
	Name        string `gorm:"type:varchar(200);not null"`
	Unit        string `gorm:"type:varchar(20);not null"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RawMaterialModel) TableName() string {
	return "raw_materials"
}

// ToDomain converts the persistence model to a domain RawMaterial entity
func (m *RawMaterialModel) ToDomain() *catalog.RawMaterial {
	return &catalog.RawMaterial{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Unit:                m.Unit,
		Description:         m.Description,
	}
}

// FromDomain populates the persistence model from a domain RawMaterial entity
func (m *RawMaterialModel) FromDomain(r *catalog.RawMaterial) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Code = r.Code
	m.Name = r.Name
	m.Unit = r.Unit
	m.Description = r.Description
}

// RawMaterialModelFromDomain creates a new persistence model from a domain RawMaterial entity
func RawMaterialModelFromDomain(r *catalog.RawMaterial) *RawMaterialModel {
	m := &RawMaterialModel{}
	m.FromDomain(r)
	return m
}

// ReadyItemModel is the persistence model for the ReadyItem aggregate,
// flattening the latest deviation snapshot into columns
type ReadyItemModel struct {
	TenantAggregateModel
	Code                string          `gorm:"type:varchar(50);index"`
	Name                string          `gorm:"type:varchar(200);not null"`
	Unit                string          `gorm:"type:varchar(20);not null"`
	QualityImpact       string          `gorm:"type:varchar(10);not null;default:'NORMAL'"`
	CostImpact          string          `gorm:"type:varchar(10);not null;default:'NORMAL'"`
	ExtraQuantityUsed   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LessQuantityUsed    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PercentageDeviation decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DeviationCheckedAt  *time.Time
}

// TableName returns the table name for GORM
func (ReadyItemModel) TableName() string {
	return "ready_items"
}

// ToDomain converts the persistence model to a domain ReadyItem entity
func (m *ReadyItemModel) ToDomain() *catalog.ReadyItem {
	return &catalog.ReadyItem{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Unit:                m.Unit,
		Deviation: catalog.DeviationSnapshot{
			QualityImpact:       catalog.ImpactLevel(m.QualityImpact),
			CostImpact:          catalog.ImpactLevel(m.CostImpact),
			ExtraQuantityUsed:   m.ExtraQuantityUsed,
			LessQuantityUsed:    m.LessQuantityUsed,
			PercentageDeviation: m.PercentageDeviation,
			CheckedAt:           m.DeviationCheckedAt,
		},
	}
}

// FromDomain populates the persistence model from a domain ReadyItem entity
func (m *ReadyItemModel) FromDomain(r *catalog.ReadyItem) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Code = r.Code
	m.Name = r.Name
	m.Unit = r.Unit
	m.QualityImpact = r.Deviation.QualityImpact.String()
	m.CostImpact = r.Deviation.CostImpact.String()
	m.ExtraQuantityUsed = r.Deviation.ExtraQuantityUsed
	m.LessQuantityUsed = r.Deviation.LessQuantityUsed
	m.PercentageDeviation = r.Deviation.PercentageDeviation
	m.DeviationCheckedAt = r.Deviation.CheckedAt
}

// ReadyItemModelFromDomain creates a new persistence model from a domain ReadyItem entity
func ReadyItemModelFromDomain(r *catalog.ReadyItem) *ReadyItemModel {
	m := &ReadyItemModel{}
	m.FromDomain(r)
	return m
}

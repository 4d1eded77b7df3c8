package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/production"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecipeModel is the persistence model for the Recipe aggregate
type RecipeModel struct {
	TenantAggregateModel
	ReadyItemID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_key,priority:1"`
	RawMaterialID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_key,priority:2"`
	Quality         string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_recipe_key,priority:3"`
	QuantityPerUnit decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit            string          `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (RecipeModel) TableName() string {
	return "recipes"
}

// ToDomain converts the persistence model to a domain Recipe
func (m *RecipeModel) ToDomain() *production.Recipe {
	return &production.Recipe{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		ReadyItemID:         m.ReadyItemID,
		RawMaterialID:       m.RawMaterialID,
		Quality:             m.Quality,
		QuantityPerUnit:     m.QuantityPerUnit,
		Unit:                m.Unit,
	}
}

// FromDomain populates the persistence model from a domain Recipe
func (m *RecipeModel) FromDomain(r *production.Recipe) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.ReadyItemID = r.ReadyItemID
	m.RawMaterialID = r.RawMaterialID
	m.Quality = r.Quality
	m.QuantityPerUnit = r.QuantityPerUnit
	m.Unit = r.Unit
}

// RecipeModelFromDomain creates a new persistence model from a domain Recipe
func RecipeModelFromDomain(r *production.Recipe) *RecipeModel {
	m := &RecipeModel{}
	m.FromDomain(r)
	return m
}

// PropositionModel is the persistence model for the Proposition aggregate
type PropositionModel struct {
	TenantAggregateModel
	ReadyItemID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_proposition_key,priority:1"`
	RawMaterialID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_proposition_key,priority:2"`
	ExpectedPercentage decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PropositionModel) TableName() string {
	return "propositions"
}

// ToDomain converts the persistence model to a domain Proposition
func (m *PropositionModel) ToDomain() *production.Proposition {
	return &production.Proposition{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		ReadyItemID:         m.ReadyItemID,
		RawMaterialID:       m.RawMaterialID,
		ExpectedPercentage:  m.ExpectedPercentage,
	}
}

// FromDomain populates the persistence model from a domain Proposition
func (m *PropositionModel) FromDomain(p *production.Proposition) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.ReadyItemID = p.ReadyItemID
	m.RawMaterialID = p.RawMaterialID
	m.ExpectedPercentage = p.ExpectedPercentage
}

// PropositionModelFromDomain creates a new persistence model from a domain Proposition
func PropositionModelFromDomain(p *production.Proposition) *PropositionModel {
	m := &PropositionModel{}
	m.FromDomain(p)
	return m
}

// ProductionBatchModel is the persistence model for the Batch aggregate
type ProductionBatchModel struct {
	TenantAggregateModel
	ReadyItemID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quality          string          `gorm:"type:varchar(50);not null"`
	QuantityProduced decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ProductionDate   time.Time       `gorm:"not null;index"`
	BatchNumber      string          `gorm:"type:varchar(50)"`
	Remarks          string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ProductionBatchModel) TableName() string {
	return "production_batches"
}

// ToDomain converts the persistence model to a domain Batch
func (m *ProductionBatchModel) ToDomain() *production.Batch {
	return &production.Batch{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		ReadyItemID:         m.ReadyItemID,
		Quality:             m.Quality,
		QuantityProduced:    m.QuantityProduced,
		ProductionDate:      shared.Day(m.ProductionDate),
		BatchNumber:         m.BatchNumber,
		Remarks:             m.Remarks,
	}
}

// FromDomain populates the persistence model from a domain Batch
func (m *ProductionBatchModel) FromDomain(b *production.Batch) {
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	m.ReadyItemID = b.ReadyItemID
	m.Quality = b.Quality
	m.QuantityProduced = b.QuantityProduced
	m.ProductionDate = shared.Day(b.ProductionDate)
	m.BatchNumber = b.BatchNumber
	m.Remarks = b.Remarks
}

// ProductionBatchModelFromDomain creates a new persistence model from a domain Batch
func ProductionBatchModelFromDomain(b *production.Batch) *ProductionBatchModel {
	m := &ProductionBatchModel{}
	m.FromDomain(b)
	return m
}

// MaterialConsumptionModel is the persistence model for raw material consumption rows
type MaterialConsumptionModel struct {
	TenantAggregateModel
	RawMaterialID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ConsumptionType   string          `gorm:"type:varchar(20);not null"`
	ReadyItemID       *uuid.UUID      `gorm:"type:uuid"`
	Quality           string          `gorm:"type:varchar(50)"`
	ReadyItemQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BatchID           *uuid.UUID      `gorm:"type:uuid;index"`
	Date              time.Time       `gorm:"not null"`
	Remarks           string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MaterialConsumptionModel) TableName() string {
	return "material_consumptions"
}

// ToDomain converts the persistence model to a domain MaterialConsumption
func (m *MaterialConsumptionModel) ToDomain() *production.MaterialConsumption {
	return &production.MaterialConsumption{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		RawMaterialID:       m.RawMaterialID,
		Quantity:            m.Quantity,
		Type:                production.ConsumptionType(m.ConsumptionType),
		ReadyItemID:         m.ReadyItemID,
		Quality:             m.Quality,
		ReadyItemQuantity:   m.ReadyItemQuantity,
		BatchID:             m.BatchID,
		Date:                shared.Day(m.Date),
		Remarks:             m.Remarks,
	}
}

// FromDomain populates the persistence model from a domain MaterialConsumption
func (m *MaterialConsumptionModel) FromDomain(c *production.MaterialConsumption) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.RawMaterialID = c.RawMaterialID
	m.Quantity = c.Quantity
	m.ConsumptionType = string(c.Type)
	m.ReadyItemID = c.ReadyItemID
	m.Quality = c.Quality
	m.ReadyItemQuantity = c.ReadyItemQuantity
	m.BatchID = c.BatchID
	m.Date = shared.Day(c.Date)
	m.Remarks = c.Remarks
}

// MaterialConsumptionModelFromDomain creates a new persistence model from a domain MaterialConsumption
func MaterialConsumptionModelFromDomain(c *production.MaterialConsumption) *MaterialConsumptionModel {
	m := &MaterialConsumptionModel{}
	m.FromDomain(c)
	return m
}

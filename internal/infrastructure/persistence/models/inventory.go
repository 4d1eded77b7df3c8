package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockEntryModel is the persistence model for daily stock rows of both ledgers.
// Raw material rows have an empty quality.
type StockEntryModel struct {
	TenantAggregateModel
	Kind     string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_stock_entry_day,priority:1"`
	ItemID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_entry_day,priority:2"`
	Quality  string          `gorm:"type:varchar(50);not null;default:'';uniqueIndex:idx_stock_entry_day,priority:3"`
	Date     time.Time       `gorm:"not null;uniqueIndex:idx_stock_entry_day,priority:4"`
	Opening  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Added    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Consumed decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Closing  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Unit     string          `gorm:"type:varchar(20)"`
	Remarks  string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (StockEntryModel) TableName() string {
	return "stock_entries"
}

// ToDomain converts the persistence model to a domain StockEntry
func (m *StockEntryModel) ToDomain() *inventory.StockEntry {
	return &inventory.StockEntry{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Item: inventory.ItemRef{
			Kind:    inventory.ItemKind(m.Kind),
			ItemID:  m.ItemID,
			Quality: m.Quality,
		},
		Date:     shared.Day(m.Date),
		Opening:  m.Opening,
		Added:    m.Added,
		Consumed: m.Consumed,
		Closing:  m.Closing,
		Unit:     m.Unit,
		Remarks:  m.Remarks,
	}
}

// FromDomain populates the persistence model from a domain StockEntry
func (m *StockEntryModel) FromDomain(e *inventory.StockEntry) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.Kind = string(e.Item.Kind)
	m.ItemID = e.Item.ItemID
	m.Quality = e.Item.Quality
	m.Date = shared.Day(e.Date)
	m.Opening = e.Opening
	m.Added = e.Added
	m.Consumed = e.Consumed
	m.Closing = e.Closing
	m.Unit = e.Unit
	m.Remarks = e.Remarks
}

// StockEntryModelFromDomain creates a new persistence model from a domain StockEntry
func StockEntryModelFromDomain(e *inventory.StockEntry) *StockEntryModel {
	m := &StockEntryModel{}
	m.FromDomain(e)
	return m
}

package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerAccountModel is the persistence model for the CustomerAccount aggregate
type CustomerAccountModel struct {
	TenantAggregateModel
	CustomerID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	OpeningBalance      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalReceivable     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPayable        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPaid           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPaidOut        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CurrentBalance      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastTransactionDate *time.Time
}

// TableName returns the table name for GORM
func (CustomerAccountModel) TableName() string {
	return "customer_accounts"
}

// ToDomain converts the persistence model to a domain CustomerAccount
func (m *CustomerAccountModel) ToDomain() *finance.CustomerAccount {
	var last *time.Time
	if m.LastTransactionDate != nil {
		d := shared.Day(*m.LastTransactionDate)
		last = &d
	}
	return &finance.CustomerAccount{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		CustomerID:          m.CustomerID,
		OpeningBalance:      m.OpeningBalance,
		TotalReceivable:     m.TotalReceivable,
		TotalPayable:        m.TotalPayable,
		TotalPaid:           m.TotalPaid,
		TotalPaidOut:        m.TotalPaidOut,
		CurrentBalance:      m.CurrentBalance,
		LastTransactionDate: last,
	}
}

// FromDomain populates the persistence model from a domain CustomerAccount
func (m *CustomerAccountModel) FromDomain(a *finance.CustomerAccount) {
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	m.CustomerID = a.CustomerID
	m.OpeningBalance = a.OpeningBalance
	m.TotalReceivable = a.TotalReceivable
	m.TotalPayable = a.TotalPayable
	m.TotalPaid = a.TotalPaid
	m.TotalPaidOut = a.TotalPaidOut
	m.CurrentBalance = a.CurrentBalance
	m.LastTransactionDate = a.LastTransactionDate
}

// CustomerAccountModelFromDomain creates a new persistence model from a domain CustomerAccount
func CustomerAccountModelFromDomain(a *finance.CustomerAccount) *CustomerAccountModel {
	m := &CustomerAccountModel{}
	m.FromDomain(a)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate
type PaymentModel struct {
	TenantAggregateModel
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentType     string          `gorm:"type:varchar(20);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentDate     time.Time       `gorm:"not null;index"`
	PaymentMode     string          `gorm:"type:varchar(20);not null"`
	ReferenceNumber string          `gorm:"type:varchar(100)"`
	Remarks         string          `gorm:"type:text"`
	SalesOrderID    *uuid.UUID      `gorm:"type:uuid;index"`
	PurchaseOrderID *uuid.UUID      `gorm:"type:uuid;index"`
	CashEntryID     *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		CustomerID:          m.CustomerID,
		Type:                finance.PaymentType(m.PaymentType),
		Amount:              m.Amount,
		Date:                shared.Day(m.PaymentDate),
		Mode:                finance.PaymentMode(m.PaymentMode),
		ReferenceNumber:     m.ReferenceNumber,
		Remarks:             m.Remarks,
		SalesOrderID:        m.SalesOrderID,
		PurchaseOrderID:     m.PurchaseOrderID,
		CashEntryID:         m.CashEntryID,
	}
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *finance.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.CustomerID = p.CustomerID
	m.PaymentType = string(p.Type)
	m.Amount = p.Amount
	m.PaymentDate = shared.Day(p.Date)
	m.PaymentMode = string(p.Mode)
	m.ReferenceNumber = p.ReferenceNumber
	m.Remarks = p.Remarks
	m.SalesOrderID = p.SalesOrderID
	m.PurchaseOrderID = p.PurchaseOrderID
	m.CashEntryID = p.CashEntryID
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// CashEntryModel is the persistence model for a cash book line
type CashEntryModel struct {
	TenantAggregateModel
	EntryDate  time.Time       `gorm:"not null;index:idx_cash_entry_order,priority:1"`
	Sequence   int64           `gorm:"not null;index:idx_cash_entry_order,priority:2"`
	Debit      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Credit     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Balance    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	EntryType  string          `gorm:"type:varchar(30);not null"`
	PaymentID  *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerID *uuid.UUID      `gorm:"type:uuid"`
	Remarks    string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CashEntryModel) TableName() string {
	return "cash_entries"
}

// ToDomain converts the persistence model to a domain CashEntry
func (m *CashEntryModel) ToDomain() *finance.CashEntry {
	return &finance.CashEntry{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Date:                shared.Day(m.EntryDate),
		Sequence:            m.Sequence,
		Debit:               m.Debit,
		Credit:              m.Credit,
		Balance:             m.Balance,
		Type:                finance.CashEntryType(m.EntryType),
		PaymentID:           m.PaymentID,
		CustomerID:          m.CustomerID,
		Remarks:             m.Remarks,
	}
}

// FromDomain populates the persistence model from a domain CashEntry
func (m *CashEntryModel) FromDomain(e *finance.CashEntry) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.EntryDate = shared.Day(e.Date)
	m.Sequence = e.Sequence
	m.Debit = e.Debit
	m.Credit = e.Credit
	m.Balance = e.Balance
	m.EntryType = string(e.Type)
	m.PaymentID = e.PaymentID
	m.CustomerID = e.CustomerID
	m.Remarks = e.Remarks
}

// CashEntryModelFromDomain creates a new persistence model from a domain CashEntry
func CashEntryModelFromDomain(e *finance.CashEntry) *CashEntryModel {
	m := &CashEntryModel{}
	m.FromDomain(e)
	return m
}

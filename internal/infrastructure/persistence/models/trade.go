package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementColumns are the money columns shared by sales and purchase order headers
type SettlementColumns struct {
	GST            decimal.Decimal `gorm:"column:gst;type:decimal(18,4);not null;default:0"`
	GSTAmount      decimal.Decimal `gorm:"column:gst_amount;type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BalancePayment decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentStatus  string          `gorm:"type:varchar(10);not null;default:'UNPAID'"`
}

func (c *SettlementColumns) fromDomain(s trade.Settlement) {
	c.GST = s.GST
	c.GSTAmount = s.GSTAmount
	c.TotalAmount = s.TotalAmount
	c.PaidAmount = s.PaidAmount
	c.BalancePayment = s.BalancePayment
	c.PaymentStatus = s.PaymentStatus.String()
}

func (c *SettlementColumns) toDomain() trade.Settlement {
	return trade.Settlement{
		GST:            c.GST,
		GSTAmount:      c.GSTAmount,
		TotalAmount:    c.TotalAmount,
		PaidAmount:     c.PaidAmount,
		BalancePayment: c.BalancePayment,
		PaymentStatus:  trade.PaymentStatus(c.PaymentStatus),
	}
}

// SalesOrderModel is the persistence model for the SalesOrder aggregate header
type SalesOrderModel struct {
	TenantAggregateModel
	SettlementColumns
	OrderNumber string                `gorm:"type:varchar(50);not null;index"`
	CustomerID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	OrderDate   time.Time             `gorm:"not null;index"`
	Remarks     string                `gorm:"type:text"`
	DeletedAt   *time.Time            `gorm:"index"`
	Items       []SalesOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// ToDomain converts the persistence model, with its loaded items, to a domain SalesOrder
func (m *SalesOrderModel) ToDomain() *trade.SalesOrder {
	items := make([]trade.SalesOrderItem, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].ToDomain()
	}
	return &trade.SalesOrder{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Settlement:          m.SettlementColumns.toDomain(),
		OrderNumber:         m.OrderNumber,
		CustomerID:          m.CustomerID,
		OrderDate:           shared.Day(m.OrderDate),
		Items:               items,
		Remarks:             m.Remarks,
		DeletedAt:           m.DeletedAt,
	}
}

// FromDomain populates the header model from a domain SalesOrder. Items are
// converted separately so the repository can write them in their own statements.
func (m *SalesOrderModel) FromDomain(o *trade.SalesOrder) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.SettlementColumns.fromDomain(o.Settlement)
	m.OrderNumber = o.OrderNumber
	m.CustomerID = o.CustomerID
	m.OrderDate = shared.Day(o.OrderDate)
	m.Remarks = o.Remarks
	m.DeletedAt = o.DeletedAt
}

// SalesOrderModelFromDomain creates a new header model from a domain SalesOrder
func SalesOrderModelFromDomain(o *trade.SalesOrder) *SalesOrderModel {
	m := &SalesOrderModel{}
	m.FromDomain(o)
	return m
}

// SalesOrderItemModel is the persistence model for a sales order line
type SalesOrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReadyItemID uuid.UUID       `gorm:"type:uuid;not null"`
	Quality     string          `gorm:"type:varchar(50);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Rate        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Remarks     string          `gorm:"type:text"`
	Position    int             `gorm:"not null;default:0"`
	DeletedAt   *time.Time      `gorm:"index"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesOrderItemModel) TableName() string {
	return "sales_order_items"
}

// ToDomain converts the persistence model to a domain SalesOrderItem
func (m *SalesOrderItemModel) ToDomain() trade.SalesOrderItem {
	return trade.SalesOrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ReadyItemID: m.ReadyItemID,
		Quality:     m.Quality,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TotalPrice:  m.TotalPrice,
		Rate:        m.Rate,
		Remarks:     m.Remarks,
		DeletedAt:   m.DeletedAt,
	}
}

// SalesOrderItemModelFromDomain creates a persistence model for the item at position
func SalesOrderItemModelFromDomain(i trade.SalesOrderItem, position int) *SalesOrderItemModel {
	return &SalesOrderItemModel{
		Position:    position,
		ID:          i.ID,
		OrderID:     i.OrderID,
		ReadyItemID: i.ReadyItemID,
		Quality:     i.Quality,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
		TotalPrice:  i.TotalPrice,
		Rate:        i.Rate,
		Remarks:     i.Remarks,
		DeletedAt:   i.DeletedAt,
	}
}

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate header
type PurchaseOrderModel struct {
	TenantAggregateModel
	SettlementColumns
	OrderNumber string                   `gorm:"type:varchar(50);not null;index"`
	CustomerID  uuid.UUID                `gorm:"type:uuid;not null;index"`
	OrderDate   time.Time                `gorm:"not null;index"`
	Remarks     string                   `gorm:"type:text"`
	DeletedAt   *time.Time               `gorm:"index"`
	Items       []PurchaseOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model, with its loaded items, to a domain PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	items := make([]trade.PurchaseOrderItem, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].ToDomain()
	}
	return &trade.PurchaseOrder{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Settlement:          m.SettlementColumns.toDomain(),
		OrderNumber:         m.OrderNumber,
		CustomerID:          m.CustomerID,
		OrderDate:           shared.Day(m.OrderDate),
		Items:               items,
		Remarks:             m.Remarks,
		DeletedAt:           m.DeletedAt,
	}
}

// FromDomain populates the header model from a domain PurchaseOrder
func (m *PurchaseOrderModel) FromDomain(o *trade.PurchaseOrder) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.SettlementColumns.fromDomain(o.Settlement)
	m.OrderNumber = o.OrderNumber
	m.CustomerID = o.CustomerID
	m.OrderDate = shared.Day(o.OrderDate)
	m.Remarks = o.Remarks
	m.DeletedAt = o.DeletedAt
}

// PurchaseOrderModelFromDomain creates a new header model from a domain PurchaseOrder
func PurchaseOrderModelFromDomain(o *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// PurchaseOrderItemModel is the persistence model for a purchase order line
type PurchaseOrderItemModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	RawMaterialID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NetQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FringeCost    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Remarks       string          `gorm:"type:text"`
	Position      int             `gorm:"not null;default:0"`
	DeletedAt     *time.Time      `gorm:"index"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrderItem
func (m *PurchaseOrderItemModel) ToDomain() trade.PurchaseOrderItem {
	return trade.PurchaseOrderItem{
		ID:            m.ID,
		OrderID:       m.OrderID,
		RawMaterialID: m.RawMaterialID,
		Quantity:      m.Quantity,
		NetQuantity:   m.NetQuantity,
		FringeCost:    m.FringeCost,
		UnitPrice:     m.UnitPrice,
		TotalPrice:    m.TotalPrice,
		Remarks:       m.Remarks,
		DeletedAt:     m.DeletedAt,
	}
}

// PurchaseOrderItemModelFromDomain creates a persistence model for the item at position
func PurchaseOrderItemModelFromDomain(i trade.PurchaseOrderItem, position int) *PurchaseOrderItemModel {
	return &PurchaseOrderItemModel{
		Position:      position,
		ID:            i.ID,
		OrderID:       i.OrderID,
		RawMaterialID: i.RawMaterialID,
		Quantity:      i.Quantity,
		NetQuantity:   i.NetQuantity,
		FringeCost:    i.FringeCost,
		UnitPrice:     i.UnitPrice,
		TotalPrice:    i.TotalPrice,
		Remarks:       i.Remarks,
		DeletedAt:     i.DeletedAt,
	}
}

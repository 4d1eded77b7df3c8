package trade

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeSalesOrder    = "SalesOrder"
	AggregateTypePurchaseOrder = "PurchaseOrder"
)

// Event type constants
const (
	EventTypeSalesOrderRecorded    = "SalesOrderRecorded"
	EventTypeSalesOrderDeleted     = "SalesOrderDeleted"
	EventTypePurchaseOrderRecorded = "PurchaseOrderRecorded"
	EventTypePurchaseOrderDeleted  = "PurchaseOrderDeleted"
)

// OrderEvent is the payload shared by the order events
type OrderEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// SalesOrderRecordedEvent is raised after a sales order is created or updated
type SalesOrderRecordedEvent struct {
	OrderEvent
	Created bool `json:"created"`
}

// NewSalesOrderRecordedEvent creates a new SalesOrderRecordedEvent
func NewSalesOrderRecordedEvent(o *SalesOrder, created bool) *SalesOrderRecordedEvent {
	return &SalesOrderRecordedEvent{
		OrderEvent: salesEvent(EventTypeSalesOrderRecorded, o),
		Created:    created,
	}
}

// SalesOrderDeletedEvent is raised after a sales order is soft deleted
type SalesOrderDeletedEvent struct {
	OrderEvent
}

// NewSalesOrderDeletedEvent creates a new SalesOrderDeletedEvent
func NewSalesOrderDeletedEvent(o *SalesOrder) *SalesOrderDeletedEvent {
	return &SalesOrderDeletedEvent{OrderEvent: salesEvent(EventTypeSalesOrderDeleted, o)}
}

// PurchaseOrderRecordedEvent is raised after a purchase order is created or updated
type PurchaseOrderRecordedEvent struct {
	OrderEvent
	Created bool `json:"created"`
}

// NewPurchaseOrderRecordedEvent creates a new PurchaseOrderRecordedEvent
func NewPurchaseOrderRecordedEvent(o *PurchaseOrder, created bool) *PurchaseOrderRecordedEvent {
	return &PurchaseOrderRecordedEvent{
		OrderEvent: purchaseEvent(EventTypePurchaseOrderRecorded, o),
		Created:    created,
	}
}

// PurchaseOrderDeletedEvent is raised after a purchase order is soft deleted
type PurchaseOrderDeletedEvent struct {
	OrderEvent
}

// NewPurchaseOrderDeletedEvent creates a new PurchaseOrderDeletedEvent
func NewPurchaseOrderDeletedEvent(o *PurchaseOrder) *PurchaseOrderDeletedEvent {
	return &PurchaseOrderDeletedEvent{OrderEvent: purchaseEvent(EventTypePurchaseOrderDeleted, o)}
}

func salesEvent(eventType string, o *SalesOrder) OrderEvent {
	return OrderEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeSalesOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		TotalAmount:     o.TotalAmount,
		PaymentStatus:   o.PaymentStatus,
	}
}

func purchaseEvent(eventType string, o *PurchaseOrder) OrderEvent {
	return OrderEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		TotalAmount:     o.TotalAmount,
		PaymentStatus:   o.PaymentStatus,
	}
}

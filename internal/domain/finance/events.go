package finance

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypePaymentRecorded = "PaymentRecorded"
	EventTypePaymentDeleted  = "PaymentDeleted"
)

// PaymentEvent is the payload shared by the payment events
type PaymentEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID       `json:"payment_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Type       PaymentType     `json:"payment_type"`
	Mode       PaymentMode     `json:"payment_mode"`
	Amount     decimal.Decimal `json:"amount"`
}

// PaymentRecordedEvent is raised after a payment is created or updated
type PaymentRecordedEvent struct {
	PaymentEvent
	Created bool `json:"created"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment, created bool) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		PaymentEvent: paymentEvent(EventTypePaymentRecorded, p),
		Created:      created,
	}
}

// PaymentDeletedEvent is raised after a payment and its cash entry are removed
type PaymentDeletedEvent struct {
	PaymentEvent
}

// NewPaymentDeletedEvent creates a new PaymentDeletedEvent
func NewPaymentDeletedEvent(p *Payment) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{PaymentEvent: paymentEvent(EventTypePaymentDeleted, p)}
}

func paymentEvent(eventType string, p *Payment) PaymentEvent {
	return PaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		CustomerID:      p.CustomerID,
		Type:            p.Type,
		Mode:            p.Mode,
		Amount:          p.Amount,
	}
}

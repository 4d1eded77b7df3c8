package event

import (
	"context"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/production"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LoggingHandler writes one structured log line per ledger event
type LoggingHandler struct {
	logger *zap.Logger
}

// NewLoggingHandler creates a handler logging to zapLogger
func NewLoggingHandler(zapLogger *zap.Logger) *LoggingHandler {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &LoggingHandler{logger: zapLogger}
}

// EventTypes subscribes to every event
func (h *LoggingHandler) EventTypes() []string {
	return nil
}

// Handle logs the event with fields describing what changed
func (h *LoggingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
	}
	fields = append(fields, eventFields(event)...)

	log := logger.WithLogger(ctx, h.logger)
	if _, failed := event.(*production.DeviationCheckFailedEvent); failed {
		log.Warn("Ledger event", fields...)
		return nil
	}
	log.Info("Ledger event", fields...)
	return nil
}

func eventFields(event shared.DomainEvent) []zap.Field {
	switch e := event.(type) {
	case *production.ProductionCompletedEvent:
		return []zap.Field{
			zap.String("batch_number", e.BatchNumber),
			zap.String("ready_item_id", e.ReadyItemID.String()),
			zap.String("quality", e.Quality),
			zap.String("quantity_produced", e.QuantityProduced.String()),
			zap.Int("materials", len(e.Materials)),
		}
	case *production.DeviationCheckFailedEvent:
		return []zap.Field{
			zap.String("ready_item_id", e.ReadyItemID.String()),
			zap.String("quality", e.Quality),
			zap.String("cause", e.Error),
		}
	case *trade.SalesOrderRecordedEvent:
		return append(orderFields(e.OrderEvent), zap.Bool("created", e.Created))
	case *trade.SalesOrderDeletedEvent:
		return orderFields(e.OrderEvent)
	case *trade.PurchaseOrderRecordedEvent:
		return append(orderFields(e.OrderEvent), zap.Bool("created", e.Created))
	case *trade.PurchaseOrderDeletedEvent:
		return orderFields(e.OrderEvent)
	case *finance.PaymentRecordedEvent:
		return append(paymentFields(e.PaymentEvent), zap.Bool("created", e.Created))
	case *finance.PaymentDeletedEvent:
		return paymentFields(e.PaymentEvent)
	}
	return nil
}

func orderFields(e trade.OrderEvent) []zap.Field {
	return []zap.Field{
		zap.String("order_number", e.OrderNumber),
		zap.String("customer_id", e.CustomerID.String()),
		zap.String("total_amount", e.TotalAmount.String()),
		zap.String("payment_status", e.PaymentStatus.String()),
	}
}

func paymentFields(e finance.PaymentEvent) []zap.Field {
	return []zap.Field{
		zap.String("customer_id", e.CustomerID.String()),
		zap.String("payment_type", string(e.Type)),
		zap.String("payment_mode", string(e.Mode)),
		zap.String("amount", e.Amount.String()),
	}
}

var _ shared.EventHandler = (*LoggingHandler)(nil)

package telemetry

import (
	"context"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/production"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics counts ledger activity. It is fed by domain events so the
// services never touch an instrument.
type LedgerMetrics struct {
	productionRuns     *Counter
	producedQuantity   *Histogram
	deviationFailures  *Counter
	orderChanges       *Counter
	orderAmountCents   *Counter
	paymentChanges     *Counter
	paymentAmountCents *Counter
}

// NewLedgerMetrics creates the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &LedgerMetrics{}
	var err error
	if m.productionRuns, err = NewCounter(meter, "ledger_production_runs_total", "Committed production runs", "{runs}"); err != nil {
		return nil, err
	}
	if m.producedQuantity, err = NewHistogram(meter, HistogramOpts{
		Name:        "ledger_production_quantity",
		Description: "Quantity produced per run",
		Unit:        "{units}",
		Boundaries:  QuantityBuckets,
	}); err != nil {
		return nil, err
	}
	if m.deviationFailures, err = NewCounter(meter, "ledger_deviation_check_failures_total", "Deviation analyses that failed and reset the item to NORMAL", "{checks}"); err != nil {
		return nil, err
	}
	if m.orderChanges, err = NewCounter(meter, "ledger_order_changes_total", "Sales and purchase orders recorded or deleted", "{orders}"); err != nil {
		return nil, err
	}
	if m.orderAmountCents, err = NewCounter(meter, "ledger_order_amount_cents_total", "Total amount of newly recorded orders in cents", "{cents}"); err != nil {
		return nil, err
	}
	if m.paymentChanges, err = NewCounter(meter, "ledger_payment_changes_total", "Payments recorded or deleted", "{payments}"); err != nil {
		return nil, err
	}
	if m.paymentAmountCents, err = NewCounter(meter, "ledger_payment_amount_cents_total", "Total amount of newly recorded payments in cents", "{cents}"); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes lists the events that move a metric
func (m *LedgerMetrics) EventTypes() []string {
	return []string{
		production.EventTypeProductionCompleted,
		production.EventTypeDeviationCheckFailed,
		trade.EventTypeSalesOrderRecorded,
		trade.EventTypeSalesOrderDeleted,
		trade.EventTypePurchaseOrderRecorded,
		trade.EventTypePurchaseOrderDeleted,
		finance.EventTypePaymentRecorded,
		finance.EventTypePaymentDeleted,
	}
}

// Handle records the event
func (m *LedgerMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenant := AttrTenantID.String(event.TenantID().String())

	switch e := event.(type) {
	case *production.ProductionCompletedEvent:
		m.productionRuns.Inc(ctx, tenant, AttrQuality.String(e.Quality))
		m.producedQuantity.Observe(ctx, e.QuantityProduced.InexactFloat64(), tenant, AttrQuality.String(e.Quality))
	case *production.DeviationCheckFailedEvent:
		m.deviationFailures.Inc(ctx, tenant)
	case *trade.SalesOrderRecordedEvent:
		m.recordOrder(ctx, tenant, "sales", e.Created, e.TotalAmount)
	case *trade.PurchaseOrderRecordedEvent:
		m.recordOrder(ctx, tenant, "purchase", e.Created, e.TotalAmount)
	case *trade.SalesOrderDeletedEvent:
		m.orderChanges.Inc(ctx, tenant, AttrOrderType.String("sales"), AttrChange.String("deleted"))
	case *trade.PurchaseOrderDeletedEvent:
		m.orderChanges.Inc(ctx, tenant, AttrOrderType.String("purchase"), AttrChange.String("deleted"))
	case *finance.PaymentRecordedEvent:
		attrs := paymentAttrs(tenant, e.PaymentEvent)
		m.paymentChanges.Inc(ctx, append(attrs, changeAttr(e.Created))...)
		if e.Created {
			m.paymentAmountCents.AddN(ctx, cents(e.Amount), attrs...)
		}
	case *finance.PaymentDeletedEvent:
		m.paymentChanges.Inc(ctx, append(paymentAttrs(tenant, e.PaymentEvent), AttrChange.String("deleted"))...)
	}
	return nil
}

func (m *LedgerMetrics) recordOrder(ctx context.Context, tenant attribute.KeyValue, orderType string, created bool, total decimal.Decimal) {
	kind := AttrOrderType.String(orderType)
	m.orderChanges.Inc(ctx, tenant, kind, changeAttr(created))
	if created {
		m.orderAmountCents.AddN(ctx, cents(total), tenant, kind)
	}
}

func paymentAttrs(tenant attribute.KeyValue, e finance.PaymentEvent) []attribute.KeyValue {
	return []attribute.KeyValue{
		tenant,
		AttrPaymentType.String(string(e.Type)),
		AttrPaymentMode.String(string(e.Mode)),
	}
}

func changeAttr(created bool) attribute.KeyValue {
	if created {
		return AttrChange.String("created")
	}
	return AttrChange.String("updated")
}

// cents converts an amount to whole cents, rounding half away from zero
func cents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError is a metrics setup error
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

var _ shared.EventHandler = (*LedgerMetrics)(nil)

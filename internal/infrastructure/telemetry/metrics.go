package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys on the ledger instruments
var (
	AttrTenantID    = attribute.Key("tenant_id")
	AttrOrderType   = attribute.Key("order_type")
	AttrChange      = attribute.Key("change")
	AttrPaymentType = attribute.Key("payment_type")
	AttrPaymentMode = attribute.Key("payment_mode")
	AttrQuality     = attribute.Key("quality")
)

// QuantityBuckets bound the produced-quantity histogram
var QuantityBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000}

// Counter counts ledger changes
type Counter struct {
	metric.Int64Counter
}

func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("counter %s: %w", name, err)
	}
	return &Counter{c}, nil
}

// Inc adds one
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Int64Counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// AddN adds n, ignoring negative values which a counter cannot take
func (c *Counter) AddN(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	if n > 0 {
		c.Int64Counter.Add(ctx, n, metric.WithAttributes(attrs...))
	}
}

// Histogram records ledger quantities
type Histogram struct {
	metric.Float64Histogram
}

// HistogramOpts describes a histogram. Nil Boundaries keep the SDK defaults.
type HistogramOpts struct {
	Name        string
	Description string
	Unit        string
	Boundaries  []float64
}

func NewHistogram(meter metric.Meter, opts HistogramOpts) (*Histogram, error) {
	options := []metric.Float64HistogramOption{
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	}
	if opts.Boundaries != nil {
		options = append(options, metric.WithExplicitBucketBoundaries(opts.Boundaries...))
	}
	h, err := meter.Float64Histogram(opts.Name, options...)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", opts.Name, err)
	}
	return &Histogram{h}, nil
}

// Observe records v
func (h *Histogram) Observe(ctx context.Context, v float64, attrs ...attribute.KeyValue) {
	h.Float64Histogram.Record(ctx, v, metric.WithAttributes(attrs...))
}

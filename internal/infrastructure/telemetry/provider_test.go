package telemetry_test

import (
	"context"
	"testing"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSetup_Disabled(t *testing.T) {
	ctx := context.Background()
	p, err := telemetry.Setup(ctx, config.TelemetryConfig{
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "backoffice-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	_, span := p.Tracer("test").Start(ctx, "noop")
	assert.False(t, span.SpanContext().IsSampled())
	span.End()
	assert.NotNil(t, p.Meter("test"))
	assert.NotNil(t, p.TracerProvider())
	assert.NoError(t, p.Shutdown(ctx))
}

func TestSetup_Enabled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping exporter test in short mode")
	}
	ctx := context.Background()
	p, err := telemetry.Setup(ctx, config.TelemetryConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "backoffice-test",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, p.Enabled())

	_, span := p.Tracer("test").Start(ctx, "ledger")
	assert.True(t, span.SpanContext().IsSampled())
	span.End()

	// nothing listens on the endpoint; shutdown still returns
	_ = p.Shutdown(ctx)
}

func TestSampler(t *testing.T) {
	for ratio, want := range map[float64]string{
		1.0:  "AlwaysOnSampler",
		2.0:  "AlwaysOnSampler",
		0:    "AlwaysOffSampler",
		0.25: "TraceIDRatioBased{0.25}",
	} {
		assert.Contains(t, telemetry.Sampler(ratio).Description(), want)
	}
}

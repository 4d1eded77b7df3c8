package logger

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	scopeKey     contextKey = "scope"
	operationKey contextKey = "operation"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithScope records the tenant scope of a ledger call on the context
func WithScope(ctx context.Context, scope shared.Scope) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}

// ScopeFrom returns the scope recorded by WithScope
func ScopeFrom(ctx context.Context) (shared.Scope, bool) {
	scope, ok := ctx.Value(scopeKey).(shared.Scope)
	return scope, ok
}

// WithOperation records the ledger operation being run, e.g. "payment.record"
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationKey, operation)
}

// OperationFrom returns the operation recorded by WithOperation
func OperationFrom(ctx context.Context) string {
	op, _ := ctx.Value(operationKey).(string)
	return op
}

// TraceFields returns trace_id and span_id of the active span, if any
func TraceFields(ctx context.Context) []zap.Field {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	}
}

// ContextFields returns every correlation field carried by ctx
func ContextFields(ctx context.Context) []zap.Field {
	fields := TraceFields(ctx)
	if op := OperationFrom(ctx); op != "" {
		fields = append(fields, zap.String("operation", op))
	}
	if scope, ok := ScopeFrom(ctx); ok {
		fields = append(fields, zap.Stringer("tenant_id", scope.TenantID))
		fields = append(fields, zap.Stringer("company_id", scope.CompanyID))
		if scope.UserID != nil {
			fields = append(fields, zap.Stringer("user_id", *scope.UserID))
		}
	}
	return fields
}

// ContextLogger logs with the correlation fields of a context.
//
// Usage: logger.L(ctx).Info("message", zap.String("key", "value"))
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
}

// L returns a ContextLogger using the logger attached to ctx
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: FromContext(ctx)}
}

// WithLogger returns a ContextLogger using the provided logger instead of the one in ctx
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextLogger{ctx: ctx, logger: logger}
}

// With creates a child ContextLogger with additional fields
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, logger: cl.logger.With(fields...)}
}

// Zap returns the underlying logger enriched with the context fields
func (cl *ContextLogger) Zap() *zap.Logger {
	return cl.logger.With(ContextFields(cl.ctx)...)
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) {
	cl.Zap().Debug(msg, fields...)
}

func (cl *ContextLogger) Info(msg string, fields ...zap.Field) {
	cl.Zap().Info(msg, fields...)
}

func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) {
	cl.Zap().Warn(msg, fields...)
}

func (cl *ContextLogger) Error(msg string, fields ...zap.Field) {
	cl.Zap().Error(msg, fields...)
}

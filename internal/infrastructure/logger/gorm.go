package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowThreshold marks statements worth a warning
const DefaultSlowThreshold = 200 * time.Millisecond

// SQLLogger routes gorm's statement log into zap. Each traced statement
// carries the ledger scope and operation from the context, plus whether it
// read or wrote, so a slow balance recompute can be told apart from a slow
// stock lookup.
type SQLLogger struct {
	log         *zap.Logger
	level       gormlogger.LogLevel
	slow        time.Duration
	logNotFound bool
}

// SQLLoggerOption adjusts an SQLLogger
type SQLLoggerOption func(*SQLLogger)

// WithSlowThreshold sets the duration above which a statement is logged as slow.
// Zero disables slow statement warnings.
func WithSlowThreshold(d time.Duration) SQLLoggerOption {
	return func(l *SQLLogger) { l.slow = d }
}

// WithNotFoundLogged reports gorm.ErrRecordNotFound as an SQL error.
// Lookups that miss are routine in the ledger, so they are dropped by default.
func WithNotFoundLogged(logged bool) SQLLoggerOption {
	return func(l *SQLLogger) { l.logNotFound = logged }
}

// NewSQLLogger creates a gorm logger writing to base under the "sql" name
func NewSQLLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...SQLLoggerOption) *SQLLogger {
	l := &SQLLogger{log: base.Named("sql"), level: level, slow: DefaultSlowThreshold}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *SQLLogger) Info(_ context.Context, msg string, args ...any) {
	l.printf(gormlogger.Info, msg, args)
}

func (l *SQLLogger) Warn(_ context.Context, msg string, args ...any) {
	l.printf(gormlogger.Warn, msg, args)
}

func (l *SQLLogger) Error(_ context.Context, msg string, args ...any) {
	l.printf(gormlogger.Error, msg, args)
}

func (l *SQLLogger) printf(at gormlogger.LogLevel, msg string, args []any) {
	if l.level < at {
		return
	}
	sugar := l.log.Sugar()
	switch at {
	case gormlogger.Error:
		sugar.Errorf(msg, args...)
	case gormlogger.Warn:
		sugar.Warnf(msg, args...)
	default:
		sugar.Infof(msg, args...)
	}
}

// Trace logs one executed statement. Failures log at error, slow statements
// at warn and everything else at debug when the level is Info.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	if err != nil {
		if !l.logNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		l.log.Error("SQL Error", append(l.fields(ctx, elapsed, fc), zap.Error(err))...)
		return
	}
	switch {
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		l.log.Warn("SLOW SQL >= "+l.slow.String(), l.fields(ctx, elapsed, fc)...)
	case l.level >= gormlogger.Info:
		l.log.Debug("SQL Query", l.fields(ctx, elapsed, fc)...)
	}
}

func (l *SQLLogger) fields(ctx context.Context, elapsed time.Duration, fc func() (string, int64)) []zap.Field {
	sql, rows := fc()
	return append([]zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("statement", StatementKind(sql)),
		zap.String("sql", sql),
	}, ContextFields(ctx)...)
}

// StatementKind reports "write" for statements that change rows and "read"
// otherwise.
func StatementKind(sql string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	switch strings.ToUpper(verb) {
	case "INSERT", "UPDATE", "DELETE":
		return "write"
	default:
		return "read"
	}
}

// MapGormLogLevel turns the database.log_level setting into a gorm level.
// Unknown values fall back to warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	levels := map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"error":  gormlogger.Error,
		"warn":   gormlogger.Warn,
		"info":   gormlogger.Info,
		"debug":  gormlogger.Info,
	}
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return gormlogger.Warn
}

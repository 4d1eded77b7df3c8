package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	appfinance "github.com/erp/backoffice/internal/application/finance"
	"github.com/erp/backoffice/internal/application/txn"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/event"
	"github.com/erp/backoffice/internal/infrastructure/export"
	"github.com/erp/backoffice/internal/infrastructure/lock"
	"github.com/erp/backoffice/internal/infrastructure/migration"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// app holds the wired ledger for one command run
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *persistence.Database
	accounts *appfinance.AccountService
	cash     *appfinance.CashService
	payments *appfinance.PaymentService
	exports  *export.FileSystemStorage

	closers []func(context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	otelProviders, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, otelProviders.Shutdown)

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		return nil, a.fail(ctx, err)
	}
	a.db = db
	a.closers = append(a.closers, func(context.Context) error { return db.Close() })

	tracingCfg := telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database)
	tracingCfg.TracerProvider = otelProviders.TracerProvider()
	tracing := telemetry.NewDBTracingPlugin(tracingCfg, log)
	if err := tracing.RegisterOtelGorm(db.DB); err != nil {
		return nil, a.fail(ctx, fmt.Errorf("failed to register database tracing: %w", err))
	}

	locker, closeLocker, err := lock.FromConfig(ctx, cfg, log)
	if err != nil {
		return nil, a.fail(ctx, err)
	}
	a.closers = append(a.closers, func(context.Context) error { return closeLocker() })

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewLoggingHandler(log))
	metrics, err := telemetry.NewLedgerMetrics(otelProviders.Meter("ledger"))
	if err != nil {
		return nil, a.fail(ctx, err)
	}
	bus.Subscribe(metrics)

	storage, err := export.NewFileSystemStorage(&export.FileSystemStorageConfig{
		BasePath:      cfg.Export.Directory,
		RetentionDays: cfg.Export.RetentionDays,
		Logger:        log,
	})
	if err != nil {
		return nil, a.fail(ctx, err)
	}
	a.exports = storage

	runner := txn.NewRunner(db.TransactionScope(), locker)
	a.accounts = appfinance.NewAccountService(runner, storage, log)
	a.cash = appfinance.NewCashService(runner, log)
	a.payments = appfinance.NewPaymentService(runner, log)
	a.payments.SetEventPublisher(bus)
	return a, nil
}

// migrate applies the embedded schema on postgres and AutoMigrate on sqlite.
// args is the subcommand and its operand, "up" when empty.
func (a *app) migrate(ctx context.Context, args []string) error {
	direction := "up"
	if len(args) > 0 {
		direction = args[0]
	}
	if a.cfg.Database.Driver == persistence.DriverSQLite {
		if direction != "up" {
			return errors.New("sqlite databases only support migrate up")
		}
		return a.db.Migrate(ctx)
	}

	operand := func() (int, error) {
		if len(args) < 2 {
			return 0, fmt.Errorf("migrate %s needs a number", direction)
		}
		return strconv.Atoi(args[1])
	}

	sqlDB, err := sql.Open("postgres", a.cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	m, err := migration.New(sqlDB, a.log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			a.log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	switch direction {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps":
		n, err := operand()
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "force":
		v, err := operand()
		if err != nil {
			return err
		}
		return m.Force(v)
	case "version":
		status, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Println(status)
		return nil
	}
	return fmt.Errorf("unknown migrate direction %q", direction)
}

func (a *app) fail(ctx context.Context, err error) error {
	return errors.Join(err, a.close(ctx))
}

// close releases resources in reverse order of acquisition
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Command ledgerctl runs operator tasks against the ledger database: schema
// migration, balance repair (once or daily), manual payments and statement
// exports.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	appfinance "github.com/erp/backoffice/internal/application/finance"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/scheduler"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

func main() {
	var (
		envFile  string
		logLevel string
		tenant   string
		company  string
	)
	flag.StringVar(&envFile, "env-file", "", "Env file loaded before the environment (default: .env)")
	flag.StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flag.StringVar(&tenant, "tenant", "", "Tenant id the command runs for")
	flag.StringVar(&company, "company", "", "Company id within the tenant")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logCfg := logger.FromConfig(cfg.Log, cfg.App.Name)
	if logLevel != "" {
		logCfg.Level = logLevel
	}
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, args, tenant, company); err != nil {
		log.Error("Command failed",
			zap.String("command", args[0]),
			zap.String("code", shared.ErrorCode(err)),
			zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, args []string, tenant, company string) error {
	command := args[0]
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(context.Background()); err != nil {
			log.Warn("Failed to release resources", zap.Error(err))
		}
	}()

	log.Info("ledgerctl started", zap.String("command", command), zap.String("env", cfg.App.Env))

	if command == "migrate" {
		return a.migrate(ctx, args[1:])
	}

	scope, err := parseScope(tenant, company)
	if err != nil {
		return err
	}
	ctx = logger.WithScope(ctx, scope)
	ctx = logger.WithOperation(ctx, command)

	switch command {
	case "recompute-accounts":
		changed, err := a.accounts.RecomputeAll(ctx, scope)
		if err != nil {
			return err
		}
		fmt.Printf("%d account(s) corrected\n", changed)
	case "rebuild-cash":
		changed, err := a.cash.RebuildBalances(ctx, scope)
		if err != nil {
			return err
		}
		fmt.Printf("%d cash entr(ies) corrected\n", changed)
	case "export-statement":
		return exportStatement(ctx, a, scope, args[1:])
	case "record-payment":
		return recordPayment(ctx, a, scope, args[1:])
	case "maintain":
		return maintain(ctx, a, scope, args[1:])
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func exportStatement(ctx context.Context, a *app, scope shared.Scope, args []string) error {
	fs := flag.NewFlagSet("export-statement", flag.ContinueOnError)
	customer := fs.String("customer", "", "Customer id")
	from := fs.String("from", "", "First day of the period (YYYY-MM-DD)")
	to := fs.String("to", "", "Last day of the period (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	customerID, err := uuid.Parse(*customer)
	if err != nil {
		return fmt.Errorf("invalid -customer: %w", err)
	}
	start, err := time.Parse(dateLayout, *from)
	if err != nil {
		return fmt.Errorf("invalid -from: %w", err)
	}
	end, err := time.Parse(dateLayout, *to)
	if err != nil {
		return fmt.Errorf("invalid -to: %w", err)
	}

	result, err := a.accounts.ExportStatement(ctx, scope, customerID, start, end)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d bytes)\n", result.FullPath, result.Size)
	return nil
}

func recordPayment(ctx context.Context, a *app, scope shared.Scope, args []string) error {
	fs := flag.NewFlagSet("record-payment", flag.ContinueOnError)
	customer := fs.String("customer", "", "Customer id")
	kind := fs.String("type", string(finance.PaymentTypeSales), "SALES_PAYMENT, PURCHASE_PAYMENT or ADJUSTMENT")
	amount := fs.String("amount", "", "Amount paid")
	date := fs.String("date", time.Now().Format(dateLayout), "Payment day (YYYY-MM-DD)")
	mode := fs.String("mode", string(finance.PaymentModeCash), "CASH, CHEQUE, BANK_TRANSFER or OTHER")
	order := fs.String("order", "", "Order id the payment settles")
	ref := fs.String("ref", "", "Reference number")
	remarks := fs.String("remarks", "", "Remarks")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := appfinance.PaymentRequest{
		Type:            finance.PaymentType(*kind),
		Mode:            finance.PaymentMode(*mode),
		ReferenceNumber: *ref,
		Remarks:         *remarks,
	}
	var err error
	if req.CustomerID, err = uuid.Parse(*customer); err != nil {
		return fmt.Errorf("invalid -customer: %w", err)
	}
	if req.Amount, err = decimal.NewFromString(*amount); err != nil {
		return fmt.Errorf("invalid -amount: %w", err)
	}
	if req.Date, err = time.Parse(dateLayout, *date); err != nil {
		return fmt.Errorf("invalid -date: %w", err)
	}
	if *order != "" {
		orderID, err := uuid.Parse(*order)
		if err != nil {
			return fmt.Errorf("invalid -order: %w", err)
		}
		switch req.Type {
		case finance.PaymentTypeSales:
			req.SalesOrderID = &orderID
		case finance.PaymentTypePurchase:
			req.PurchaseOrderID = &orderID
		default:
			return fmt.Errorf("-order needs a sales or purchase payment")
		}
	}

	payment, err := a.payments.RecordPayment(ctx, scope, req)
	if err != nil {
		return err
	}
	fmt.Printf("payment %s recorded\n", payment.ID)
	return nil
}

// maintain repairs account and cash balances every day until interrupted
func maintain(ctx context.Context, a *app, scope shared.Scope, args []string) error {
	fs := flag.NewFlagSet("maintain", flag.ContinueOnError)
	at := fs.String("at", "02:00", "Time of day to run (HH:MM, local time)")
	once := fs.Bool("once", false, "Run the jobs now and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tod, err := time.Parse("15:04", *at)
	if err != nil {
		return fmt.Errorf("invalid -at: %w", err)
	}

	trigger := scheduler.NewDailyTrigger(scheduler.DailyConfig{
		Hour:          tod.Hour(),
		Minute:        tod.Minute(),
		CheckInterval: time.Minute,
	}, a.log,
		scheduler.Job{Name: "recompute-accounts", Run: func(ctx context.Context) error {
			_, err := a.accounts.RecomputeAll(ctx, scope)
			return err
		}},
		scheduler.Job{Name: "rebuild-cash", Run: func(ctx context.Context) error {
			_, err := a.cash.RebuildBalances(ctx, scope)
			return err
		}},
		scheduler.Job{Name: "prune-exports", Run: func(ctx context.Context) error {
			_, err := a.exports.CleanupExpired(ctx)
			return err
		}},
	)
	if *once {
		trigger.RunNow(ctx)
		return nil
	}

	if err := trigger.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return trigger.Stop(stopCtx)
}

func parseScope(tenant, company string) (shared.Scope, error) {
	tenantID, err := uuid.Parse(tenant)
	if err != nil {
		return shared.Scope{}, fmt.Errorf("invalid -tenant: %w", err)
	}
	scope := shared.Scope{TenantID: tenantID}
	if company != "" {
		if scope.CompanyID, err = uuid.Parse(company); err != nil {
			return shared.Scope{}, fmt.Errorf("invalid -company: %w", err)
		}
	}
	return scope, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: ledgerctl [flags] <command> [args]

Commands:
  migrate [up|down|version|steps N|force V]
                              Apply the ledger schema (sqlite: up only)
  recompute-accounts          Recompute every customer balance from its orders and payments
  rebuild-cash                Re-chain the cash book running balances
  export-statement            Write a customer statement workbook
      -customer <id> -from <YYYY-MM-DD> -to <YYYY-MM-DD>
  record-payment              Record a payment and its cash entry
      -customer <id> -amount <n> [-type SALES_PAYMENT] [-mode CASH]
      [-date YYYY-MM-DD] [-order <id>] [-ref <no>] [-remarks <text>]
  maintain [-at HH:MM] [-once] Run recompute-accounts, rebuild-cash and prune-exports daily

Flags:`)
	flag.PrintDefaults()
}

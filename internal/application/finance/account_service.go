// Package finance keeps customer accounts, payments and the cash book consistent
// with the orders they settle.
package finance

import (
	"context"
	"errors"
	"time"

	"github.com/erp/backoffice/internal/application/txn"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/export"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountService maintains customer balances and renders their statements
type AccountService struct {
	runner   *txn.Runner
	renderer *export.StatementRenderer
	storage  *export.FileSystemStorage
	logger   *zap.Logger
}

// NewAccountService creates a new AccountService. storage may be nil when
// statements are never exported.
func NewAccountService(runner *txn.Runner, storage *export.FileSystemStorage, zapLogger *zap.Logger) *AccountService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &AccountService{
		runner:   runner,
		renderer: export.NewStatementRenderer(),
		storage:  storage,
		logger:   zapLogger,
	}
}

// GetOrCreateAccount returns the customer's account, creating a zero-seeded one
// on first use
func (s *AccountService) GetOrCreateAccount(ctx context.Context, scope shared.Scope, customerID uuid.UUID) (*AccountResponse, error) {
	return s.write(ctx, scope, customerID, func(repos txn.Repositories) (*finance.CustomerAccount, error) {
		if _, err := repos.Customers().FindByID(ctx, scope, customerID); err != nil {
			return nil, err
		}
		return getOrCreateAccount(ctx, repos, scope, customerID)
	})
}

// Recompute re-sums every order and payment of the customer into the account
func (s *AccountService) Recompute(ctx context.Context, scope shared.Scope, customerID uuid.UUID) (*AccountResponse, error) {
	return s.write(ctx, scope, customerID, func(repos txn.Repositories) (*finance.CustomerAccount, error) {
		if _, err := repos.Customers().FindByID(ctx, scope, customerID); err != nil {
			return nil, err
		}
		return RecomputeAccount(ctx, repos, scope, customerID)
	})
}

// RecomputeAll recomputes the account of every customer of the tenant, one lock
// at a time. It returns the number of accounts whose balance changed.
func (s *AccountService) RecomputeAll(ctx context.Context, scope shared.Scope) (int, error) {
	if err := scope.Validate(); err != nil {
		return 0, err
	}
	var customers []uuid.UUID
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		all, err := repos.Customers().FindAll(ctx, scope)
		if err != nil {
			return err
		}
		for _, c := range all {
			customers = append(customers, c.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log := logger.WithLogger(ctx, s.logger)
	changed := 0
	for _, id := range customers {
		var before, after decimal.Decimal
		err := s.runner.Run(ctx, []string{txn.AccountKey(scope, id)}, func(repos txn.Repositories) error {
			existing, err := repos.Accounts().FindByCustomer(ctx, scope, id)
			switch {
			case err == nil:
				before = existing.CurrentBalance
			case !errors.Is(err, shared.ErrNotFound):
				return err
			}
			account, err := RecomputeAccount(ctx, repos, scope, id)
			if err != nil {
				return err
			}
			after = account.CurrentBalance
			return nil
		})
		if err != nil {
			return changed, err
		}
		if !before.Equal(after) {
			changed++
			log.Info("Account balance corrected",
				zap.String("customer_id", id.String()),
				zap.String("previous_balance", before.String()),
				zap.String("current_balance", after.String()),
			)
		}
	}
	return changed, nil
}

// SetOpeningBalance changes the base opening balance of the customer's account
func (s *AccountService) SetOpeningBalance(ctx context.Context, scope shared.Scope, customerID uuid.UUID, opening decimal.Decimal) (*AccountResponse, error) {
	return s.write(ctx, scope, customerID, func(repos txn.Repositories) (*finance.CustomerAccount, error) {
		if _, err := repos.Customers().FindByID(ctx, scope, customerID); err != nil {
			return nil, err
		}
		account, err := getOrCreateAccount(ctx, repos, scope, customerID)
		if err != nil {
			return nil, err
		}
		account.SetOpeningBalance(opening)
		if err := repos.Accounts().Save(ctx, account); err != nil {
			return nil, err
		}
		return account, nil
	})
}

// Statement renders the customer's activity between from and to, both inclusive
func (s *AccountService) Statement(ctx context.Context, scope shared.Scope, customerID uuid.UUID, from, to time.Time) (*StatementResponse, error) {
	stmt, err := s.statement(ctx, scope, customerID, from, to)
	if err != nil {
		return nil, err
	}
	resp := ToStatementResponse(stmt)
	return &resp, nil
}

// ExportStatement renders the statement as an .xlsx workbook and stores it in the
// export directory
func (s *AccountService) ExportStatement(ctx context.Context, scope shared.Scope, customerID uuid.UUID, from, to time.Time) (*ExportResponse, error) {
	if s.storage == nil {
		return nil, shared.Errorf(shared.ErrInvalidState, "statement export is not configured")
	}
	stmt, err := s.statement(ctx, scope, customerID, from, to)
	if err != nil {
		return nil, err
	}
	data, err := s.renderer.Render(stmt)
	if err != nil {
		return nil, err
	}
	result, err := s.storage.Store(ctx, &export.StoreRequest{
		TenantID: scope.TenantID,
		Name:     export.StatementFileName(stmt),
		Data:     data,
	})
	if err != nil {
		return nil, err
	}

	logger.WithLogger(ctx, s.logger).Info("Statement exported",
		zap.String("customer_id", customerID.String()),
		zap.String("path", result.Path),
		zap.Int64("size", result.Size),
	)
	return &ExportResponse{Path: result.Path, FullPath: result.FullPath, Size: result.Size}, nil
}

func (s *AccountService) statement(ctx context.Context, scope shared.Scope, customerID uuid.UUID, from, to time.Time) (*finance.Statement, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	period, err := shared.NewDateRange(from, to)
	if err != nil {
		return nil, err
	}
	var stmt *finance.Statement
	err = s.runner.Read(ctx, func(repos txn.Repositories) error {
		customer, err := repos.Customers().FindByID(ctx, scope, customerID)
		if err != nil {
			return err
		}
		account, err := repos.Accounts().FindByCustomer(ctx, scope, customerID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		activity, err := LoadActivity(ctx, repos, scope, customerID)
		if err != nil {
			return err
		}
		stmt = finance.BuildStatement(account, activity, period)
		stmt.CustomerID = customer.ID
		stmt.CustomerName = customer.Name
		return nil
	})
	return stmt, err
}

func (s *AccountService) write(ctx context.Context, scope shared.Scope, customerID uuid.UUID, fn func(repos txn.Repositories) (*finance.CustomerAccount, error)) (*AccountResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var account *finance.CustomerAccount
	err := s.runner.Run(ctx, []string{txn.AccountKey(scope, customerID)}, func(repos txn.Repositories) error {
		var err error
		account, err = fn(repos)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// LoadActivity reads every non-deleted order and every payment of the customer
func LoadActivity(ctx context.Context, repos txn.Repositories, scope shared.Scope, customerID uuid.UUID) (finance.Activity, error) {
	var (
		activity finance.Activity
		err      error
	)
	if activity.Sales, err = repos.Orders().SalesFor(ctx, scope, customerID); err != nil {
		return activity, err
	}
	if activity.Purchases, err = repos.Orders().PurchasesFor(ctx, scope, customerID); err != nil {
		return activity, err
	}
	if activity.Payments, err = repos.Payments().FindForCustomer(ctx, scope, customerID); err != nil {
		return activity, err
	}
	return activity, nil
}

// RecomputeAccount re-sums the customer's activity into the account, creating the
// account when missing. Callers hold the customer's account key.
func RecomputeAccount(ctx context.Context, repos txn.Repositories, scope shared.Scope, customerID uuid.UUID) (*finance.CustomerAccount, error) {
	account, err := getOrCreateAccount(ctx, repos, scope, customerID)
	if err != nil {
		return nil, err
	}
	activity, err := LoadActivity(ctx, repos, scope, customerID)
	if err != nil {
		return nil, err
	}
	account.Recompute(activity)
	if err := repos.Accounts().Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func getOrCreateAccount(ctx context.Context, repos txn.Repositories, scope shared.Scope, customerID uuid.UUID) (*finance.CustomerAccount, error) {
	account, err := repos.Accounts().FindByCustomer(ctx, scope, customerID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	account, err = finance.NewCustomerAccount(scope, customerID)
	if err != nil {
		return nil, err
	}
	if err := repos.Accounts().Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

package finance

import (
	"context"
	"errors"
	"time"

	"github.com/erp/backoffice/internal/application/txn"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CashService maintains the tenant's cash book
type CashService struct {
	runner *txn.Runner
	logger *zap.Logger
}

// NewCashService creates a new CashService
func NewCashService(runner *txn.Runner, zapLogger *zap.Logger) *CashService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &CashService{runner: runner, logger: zapLogger}
}

// RecordCashEntry posts a manual cash movement. Back-dated entries re-chain the
// balance of every later entry.
func (s *CashService) RecordCashEntry(ctx context.Context, scope shared.Scope, req CashEntryRequest) (*CashEntryResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	entry, err := finance.NewCashEntry(scope, req.Date, req.Debit, req.Credit, req.Type, req.Remarks)
	if err != nil {
		return nil, err
	}
	err = s.runner.Run(ctx, []string{txn.CashKey(scope)}, func(repos txn.Repositories) error {
		return finance.NewCashBook(repos.CashEntries()).Post(ctx, scope, entry)
	})
	if err != nil {
		return nil, err
	}

	logger.WithLogger(ctx, s.logger).Info("Cash entry recorded",
		zap.String("entry_id", entry.ID.String()),
		zap.Time("entry_date", entry.Date),
		zap.String("balance", entry.Balance.String()),
	)
	resp := ToCashEntryResponse(entry)
	return &resp, nil
}

// DeleteCashEntry removes a manual cash entry. Entries mirroring a payment go away
// with the payment only.
func (s *CashService) DeleteCashEntry(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	err := s.runner.Run(ctx, []string{txn.CashKey(scope)}, func(repos txn.Repositories) error {
		entry, err := repos.CashEntries().FindByID(ctx, scope, id)
		if err != nil {
			return err
		}
		if entry.PaymentID != nil {
			return shared.Errorf(shared.ErrInvalidOperation, "cash entry %s belongs to payment %s", id, *entry.PaymentID)
		}
		return finance.NewCashBook(repos.CashEntries()).Remove(ctx, scope, entry)
	})
	if err != nil {
		return err
	}
	logger.WithLogger(ctx, s.logger).Info("Cash entry deleted", zap.String("entry_id", id.String()))
	return nil
}

// CashFlow returns the cash book between from and to, both inclusive, with the
// balance carried in from before the period
func (s *CashService) CashFlow(ctx context.Context, scope shared.Scope, from, to time.Time) (*CashFlowResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	period, err := shared.NewDateRange(from, to)
	if err != nil {
		return nil, err
	}

	resp := &CashFlowResponse{
		From:           period.From,
		To:             period.To,
		OpeningBalance: decimal.Zero,
		Entries:        []CashEntryResponse{},
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
	}
	err = s.runner.Read(ctx, func(repos txn.Repositories) error {
		before, err := repos.CashEntries().FindLastBefore(ctx, scope, period.From)
		switch {
		case err == nil:
			resp.OpeningBalance = before.Balance
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}
		entries, err := repos.CashEntries().FindRange(ctx, scope, period)
		if err != nil {
			return err
		}
		for i := range entries {
			resp.Entries = append(resp.Entries, ToCashEntryResponse(&entries[i]))
			resp.TotalDebit = resp.TotalDebit.Add(entries[i].Debit)
			resp.TotalCredit = resp.TotalCredit.Add(entries[i].Credit)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp.ClosingBalance = resp.OpeningBalance.Add(resp.TotalDebit).Sub(resp.TotalCredit)
	return resp, nil
}

// CurrentCashBalance returns the balance after the last entry
func (s *CashService) CurrentCashBalance(ctx context.Context, scope shared.Scope) (decimal.Decimal, error) {
	if err := scope.Validate(); err != nil {
		return decimal.Zero, err
	}
	var balance decimal.Decimal
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		var err error
		balance, err = finance.NewCashBook(repos.CashEntries()).Balance(ctx, scope)
		return err
	})
	return balance, err
}

// RebuildBalances re-chains the whole cash book and returns how many balances were
// corrected
func (s *CashService) RebuildBalances(ctx context.Context, scope shared.Scope) (int, error) {
	if err := scope.Validate(); err != nil {
		return 0, err
	}
	var changed int
	err := s.runner.Run(ctx, []string{txn.CashKey(scope)}, func(repos txn.Repositories) error {
		var err error
		changed, err = finance.NewCashBook(repos.CashEntries()).Rebuild(ctx, scope)
		return err
	})
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		logger.WithLogger(ctx, s.logger).Warn("Cash balances corrected", zap.Int("entries", changed))
	}
	return changed, nil
}

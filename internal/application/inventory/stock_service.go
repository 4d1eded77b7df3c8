// Package inventory exposes the raw material and ready item stock ledgers.
package inventory

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/application/txn"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockService posts stock movements. Every write holds the item's lock key and
// runs in one transaction, so later rows are re-chained atomically.
type StockService struct {
	runner *txn.Runner
}

// NewStockService creates a new StockService
func NewStockService(runner *txn.Runner) *StockService {
	return &StockService{runner: runner}
}

// CurrentStock returns the closing stock of the item's latest row
func (s *StockService) CurrentStock(ctx context.Context, scope shared.Scope, item inventory.ItemRef) (decimal.Decimal, error) {
	qty := decimal.Zero
	err := s.read(ctx, scope, item, func(repos txn.Repositories) error {
		var err error
		qty, err = inventory.NewLedger(repos.StockEntries()).CurrentStock(ctx, scope, item)
		return err
	})
	return qty, err
}

// StockOnDate returns the closing stock of the latest row on or before date
func (s *StockService) StockOnDate(ctx context.Context, scope shared.Scope, item inventory.ItemRef, date time.Time) (decimal.Decimal, error) {
	qty := decimal.Zero
	err := s.read(ctx, scope, item, func(repos txn.Repositories) error {
		var err error
		qty, err = inventory.NewLedger(repos.StockEntries()).StockOnDate(ctx, scope, item, date)
		return err
	})
	return qty, err
}

// RecordDaily upserts the day's row with explicit quantities
func (s *StockService) RecordDaily(ctx context.Context, scope shared.Scope, req RecordDailyRequest) (*StockEntryResponse, error) {
	return s.post(ctx, scope, req.Item, func(ledger *inventory.Ledger, unit string) (*inventory.StockEntry, error) {
		return ledger.RecordDaily(ctx, scope, req.Item, req.Date, req.Opening, req.Added, req.Consumed, unit)
	})
}

// AddStock posts an incoming quantity. Non-positive quantities change nothing and
// return a nil row.
func (s *StockService) AddStock(ctx context.Context, scope shared.Scope, item inventory.ItemRef, qty decimal.Decimal, date time.Time) (*StockEntryResponse, error) {
	return s.post(ctx, scope, item, func(ledger *inventory.Ledger, unit string) (*inventory.StockEntry, error) {
		return ledger.AddStock(ctx, scope, item, qty, date, unit)
	})
}

// RemoveStock reverses a previous addition without an availability check
func (s *StockService) RemoveStock(ctx context.Context, scope shared.Scope, item inventory.ItemRef, qty decimal.Decimal, date time.Time) (*StockEntryResponse, error) {
	return s.post(ctx, scope, item, func(ledger *inventory.Ledger, unit string) (*inventory.StockEntry, error) {
		return ledger.RemoveStock(ctx, scope, item, qty, date, unit)
	})
}

// DeductStock consumes stock and fails with ErrInsufficientStock when not enough is on hand
func (s *StockService) DeductStock(ctx context.Context, scope shared.Scope, item inventory.ItemRef, qty decimal.Decimal, date time.Time) (*StockEntryResponse, error) {
	return s.post(ctx, scope, item, func(ledger *inventory.Ledger, unit string) (*inventory.StockEntry, error) {
		return ledger.DeductStock(ctx, scope, item, qty, date, unit)
	})
}

// AdjustStock applies a manual ADD or SUBTRACT correction
func (s *StockService) AdjustStock(ctx context.Context, scope shared.Scope, req AdjustStockRequest) (*StockEntryResponse, error) {
	return s.post(ctx, scope, req.Item, func(ledger *inventory.Ledger, unit string) (*inventory.StockEntry, error) {
		return ledger.Adjust(ctx, scope, req.Item, inventory.Adjustment{
			Date:      req.Date,
			Quantity:  req.Quantity,
			Operation: req.Operation,
			Remarks:   req.Remarks,
		}, unit)
	})
}

// StockHistory returns the item's rows between from and to inclusive
func (s *StockService) StockHistory(ctx context.Context, scope shared.Scope, item inventory.ItemRef, from, to time.Time) ([]StockEntryResponse, error) {
	period, err := shared.NewDateRange(from, to)
	if err != nil {
		return nil, err
	}
	var entries []inventory.StockEntry
	err = s.read(ctx, scope, item, func(repos txn.Repositories) error {
		var err error
		entries, err = inventory.NewLedger(repos.StockEntries()).History(ctx, scope, item, period)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToStockEntryResponses(entries), nil
}

// AllCurrentStocks returns the current stock of every ledger of a kind
func (s *StockService) AllCurrentStocks(ctx context.Context, scope shared.Scope, kind inventory.ItemKind) ([]StockLevelResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "unknown stock item kind %q", kind)
	}
	var latest []inventory.StockEntry
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		var err error
		latest, err = repos.StockEntries().FindLatestPerItem(ctx, scope, kind)
		return err
	})
	if err != nil {
		return nil, err
	}
	levels := make([]StockLevelResponse, len(latest))
	for i, e := range latest {
		levels[i] = ToStockLevelResponse(e)
	}
	return levels, nil
}

func (s *StockService) read(ctx context.Context, scope shared.Scope, item inventory.ItemRef, fn func(repos txn.Repositories) error) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return s.runner.Read(ctx, func(repos txn.Repositories) error {
		if _, err := ItemUnit(ctx, repos, scope, item); err != nil {
			return err
		}
		return fn(repos)
	})
}

func (s *StockService) post(ctx context.Context, scope shared.Scope, item inventory.ItemRef, fn func(ledger *inventory.Ledger, unit string) (*inventory.StockEntry, error)) (*StockEntryResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var entry *inventory.StockEntry
	err := s.runner.Run(ctx, []string{item.LockKey(scope)}, func(repos txn.Repositories) error {
		unit, err := ItemUnit(ctx, repos, scope, item)
		if err != nil {
			return err
		}
		entry, err = fn(inventory.NewLedger(repos.StockEntries()), unit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToStockEntryResponse(entry), nil
}

// ItemUnit validates the reference, checks the item exists in the catalog and
// returns its stock unit
func ItemUnit(ctx context.Context, repos txn.Repositories, scope shared.Scope, item inventory.ItemRef) (string, error) {
	if err := item.Validate(); err != nil {
		return "", err
	}
	if item.Kind == inventory.ItemKindReadyItem {
		ready, err := repos.ReadyItems().FindByID(ctx, scope, item.ItemID)
		if err != nil {
			return "", err
		}
		return ready.Unit, nil
	}
	material, err := repos.RawMaterials().FindByID(ctx, scope, item.ItemID)
	if err != nil {
		return "", err
	}
	return material.Unit, nil
}

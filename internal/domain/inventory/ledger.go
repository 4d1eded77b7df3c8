package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Ledger posts movements to daily stock rows.
//
// One row exists per item and day. Movements on the same day accumulate into the
// row's Added or Consumed field. Whenever a row changes, every later row is
// re-chained so that its opening equals the closing of the row before it.
//
// Callers must hold the item's lock key for the whole read-modify-write sequence.
type Ledger struct {
	entries StockEntryRepository
}

// NewLedger creates a stock ledger over the given repository
func NewLedger(entries StockEntryRepository) *Ledger {
	return &Ledger{entries: entries}
}

// CurrentStock returns the closing stock of the latest row, or zero when the item has none
func (l *Ledger) CurrentStock(ctx context.Context, scope shared.Scope, item ItemRef) (decimal.Decimal, error) {
	entry, err := l.entries.FindLatest(ctx, scope, item)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return entry.Closing, nil
}

// StockOnDate returns the closing stock of the latest row on or before date
func (l *Ledger) StockOnDate(ctx context.Context, scope shared.Scope, item ItemRef, date time.Time) (decimal.Decimal, error) {
	entry, err := l.entries.FindLatestOnOrBefore(ctx, scope, item, shared.Day(date))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return entry.Closing, nil
}

// RecordDaily upserts the row for the day with explicit opening, added and consumed
// quantities; closing is recomputed.
func (l *Ledger) RecordDaily(ctx context.Context, scope shared.Scope, item ItemRef, date time.Time, opening, added, consumed decimal.Decimal, unit string) (*StockEntry, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	day := shared.Day(date)
	entry, err := l.entries.FindByDate(ctx, scope, item, day)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		entry, err = NewStockEntry(scope, item, day, opening, unit)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}
	if err := entry.Set(opening, added, consumed); err != nil {
		return nil, err
	}
	if unit != "" {
		entry.Unit = unit
	}
	if entry.Closing.IsNegative() {
		return nil, insufficient(item, consumed, opening.Add(added))
	}
	return entry, l.persist(ctx, scope, entry, true)
}

// AddStock posts a positive movement. Quantities that are not positive are ignored.
func (l *Ledger) AddStock(ctx context.Context, scope shared.Scope, item ItemRef, qty decimal.Decimal, date time.Time, unit string) (*StockEntry, error) {
	if !qty.IsPositive() {
		return nil, nil
	}
	entry, err := l.rowFor(ctx, scope, item, date, unit)
	if err != nil {
		return nil, err
	}
	entry.Add(qty)
	return entry, l.persist(ctx, scope, entry, false)
}

// RemoveStock posts a negative movement without checking availability. It is the
// reversal path for stock that was previously added, e.g. a deleted purchase.
func (l *Ledger) RemoveStock(ctx context.Context, scope shared.Scope, item ItemRef, qty decimal.Decimal, date time.Time, unit string) (*StockEntry, error) {
	if !qty.IsPositive() {
		return nil, nil
	}
	entry, err := l.rowFor(ctx, scope, item, date, unit)
	if err != nil {
		return nil, err
	}
	entry.Consume(qty)
	return entry, l.persist(ctx, scope, entry, false)
}

// DeductStock posts a real consumption such as a sale or a production run. It fails
// with ErrInsufficientStock when current stock is below qty or when the movement
// would drive any row of the ledger negative.
func (l *Ledger) DeductStock(ctx context.Context, scope shared.Scope, item ItemRef, qty decimal.Decimal, date time.Time, unit string) (*StockEntry, error) {
	if !qty.IsPositive() {
		return nil, nil
	}
	if err := l.EnsureAvailable(ctx, scope, item, qty); err != nil {
		return nil, err
	}
	entry, err := l.rowFor(ctx, scope, item, date, unit)
	if err != nil {
		return nil, err
	}
	entry.Consume(qty)
	if entry.Closing.IsNegative() {
		return nil, insufficient(item, qty, entry.Closing.Add(qty))
	}
	return entry, l.persist(ctx, scope, entry, true)
}

// EnsureAvailable fails with ErrInsufficientStock when current stock is below required
func (l *Ledger) EnsureAvailable(ctx context.Context, scope shared.Scope, item ItemRef, required decimal.Decimal) error {
	available, err := l.CurrentStock(ctx, scope, item)
	if err != nil {
		return err
	}
	if available.LessThan(required) {
		return insufficient(item, required, available)
	}
	return nil
}

// Adjust applies a manual ADD or SUBTRACT correction
func (l *Ledger) Adjust(ctx context.Context, scope shared.Scope, item ItemRef, adj Adjustment, unit string) (*StockEntry, error) {
	op, err := ParseOperation(adj.Operation)
	if err != nil {
		return nil, err
	}
	if !adj.Quantity.IsPositive() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "adjustment quantity must be positive")
	}
	var entry *StockEntry
	if op == OperationAdd {
		entry, err = l.AddStock(ctx, scope, item, adj.Quantity, adj.Date, unit)
	} else {
		entry, err = l.DeductStock(ctx, scope, item, adj.Quantity, adj.Date, unit)
	}
	if err != nil {
		return nil, err
	}
	if adj.Remarks != "" {
		entry.Remarks = adj.Remarks
		if err := l.entries.Save(ctx, entry); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

// History returns the rows of an item within the range
func (l *Ledger) History(ctx context.Context, scope shared.Scope, item ItemRef, r shared.DateRange) ([]StockEntry, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return l.entries.FindRange(ctx, scope, item, r)
}

// rowFor loads the row for the day, or creates one whose opening is the closing
// of the latest earlier row.
func (l *Ledger) rowFor(ctx context.Context, scope shared.Scope, item ItemRef, date time.Time, unit string) (*StockEntry, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	day := shared.Day(date)
	entry, err := l.entries.FindByDate(ctx, scope, item, day)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	opening, err := l.StockOnDate(ctx, scope, item, day)
	if err != nil {
		return nil, err
	}
	if opening.IsNegative() {
		opening = decimal.Zero
	}
	return NewStockEntry(scope, item, day, opening, unit)
}

// persist saves the row and re-chains every later row
func (l *Ledger) persist(ctx context.Context, scope shared.Scope, entry *StockEntry, enforce bool) error {
	if err := l.entries.Save(ctx, entry); err != nil {
		return err
	}
	later, err := l.entries.FindAfter(ctx, scope, entry.Item, entry.Date)
	if err != nil {
		return err
	}
	prev := entry.Closing
	for i := range later {
		row := &later[i]
		if row.Reopen(prev) {
			if enforce && row.Closing.IsNegative() {
				return insufficient(entry.Item, row.Consumed, row.Opening.Add(row.Added))
			}
			if err := l.entries.Save(ctx, row); err != nil {
				return err
			}
		}
		prev = row.Closing
	}
	return nil
}

func insufficient(item ItemRef, required, available decimal.Decimal) error {
	return shared.Errorf(shared.ErrInsufficientStock,
		"Insufficient stock for %s. Required: %s, Available: %s",
		item, required.String(), available.String())
}

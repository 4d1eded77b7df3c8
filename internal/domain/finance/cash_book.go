package finance

import (
	"context"
	"errors"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CashBook keeps the running balance of the cash ledger consistent. Every change
// re-chains the entries from the earliest affected date forward, so back-dated
// entries update the balance of everything after them.
//
// Callers must hold the tenant's cash lock.
type CashBook struct {
	entries CashEntryRepository
}

// NewCashBook creates a cash book over the repository
func NewCashBook(entries CashEntryRepository) *CashBook {
	return &CashBook{entries: entries}
}

// Post appends a new entry at its date and re-chains
func (b *CashBook) Post(ctx context.Context, scope shared.Scope, entry *CashEntry) error {
	seq, err := b.entries.NextSequence(ctx, scope)
	if err != nil {
		return err
	}
	entry.Sequence = seq
	if err := b.entries.Save(ctx, entry); err != nil {
		return err
	}
	return b.rechain(ctx, scope, entry.Date, entry)
}

// Repost saves a changed entry that was previously dated previousDate and re-chains
// from the earlier of the two dates
func (b *CashBook) Repost(ctx context.Context, scope shared.Scope, entry *CashEntry, previousDate time.Time) error {
	if err := b.entries.Save(ctx, entry); err != nil {
		return err
	}
	from := entry.Date
	if previousDate.Before(from) {
		from = shared.Day(previousDate)
	}
	return b.rechain(ctx, scope, from, entry)
}

// Remove deletes an entry and re-chains the entries after it
func (b *CashBook) Remove(ctx context.Context, scope shared.Scope, entry *CashEntry) error {
	if err := b.entries.Delete(ctx, scope, entry.ID); err != nil {
		return err
	}
	return b.rechain(ctx, scope, entry.Date, nil)
}

// Balance returns the balance of the last entry, or zero for an empty book
func (b *CashBook) Balance(ctx context.Context, scope shared.Scope) (decimal.Decimal, error) {
	last, err := b.entries.FindLatest(ctx, scope)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return last.Balance, nil
}

// Rebuild recomputes every balance from the first entry. It returns the number of
// entries whose balance changed.
func (b *CashBook) Rebuild(ctx context.Context, scope shared.Scope) (int, error) {
	return b.rechainCount(ctx, scope, time.Time{}, nil)
}

func (b *CashBook) rechain(ctx context.Context, scope shared.Scope, from time.Time, touched *CashEntry) error {
	_, err := b.rechainCount(ctx, scope, from, touched)
	return err
}

func (b *CashBook) rechainCount(ctx context.Context, scope shared.Scope, from time.Time, touched *CashEntry) (int, error) {
	prev := decimal.Zero
	if !from.IsZero() {
		before, err := b.entries.FindLastBefore(ctx, scope, from)
		switch {
		case err == nil:
			prev = before.Balance
		case !errors.Is(err, shared.ErrNotFound):
			return 0, err
		}
	}

	rows, err := b.entries.FindFrom(ctx, scope, from)
	if err != nil {
		return 0, err
	}
	changed := 0
	for i := range rows {
		row := &rows[i]
		if row.follows(prev) {
			if err := b.entries.Save(ctx, row); err != nil {
				return changed, err
			}
			changed++
		}
		if touched != nil && row.ID == touched.ID {
			touched.Balance = row.Balance
		}
		prev = row.Balance
	}
	return changed, nil
}

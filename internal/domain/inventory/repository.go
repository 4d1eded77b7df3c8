package inventory

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
)

// StockEntryRepository persists daily stock rows.
// Finders returning a single row return shared.ErrNotFound when nothing matches.
type StockEntryRepository interface {
	// FindLatest returns the row with the greatest date
	FindLatest(ctx context.Context, scope shared.Scope, item ItemRef) (*StockEntry, error)
	// FindLatestOnOrBefore returns the row with the greatest date not after date
	FindLatestOnOrBefore(ctx context.Context, scope shared.Scope, item ItemRef, date time.Time) (*StockEntry, error)
	// FindByDate returns the row for exactly that day
	FindByDate(ctx context.Context, scope shared.Scope, item ItemRef, date time.Time) (*StockEntry, error)
	// FindAfter returns rows dated strictly after date, oldest first
	FindAfter(ctx context.Context, scope shared.Scope, item ItemRef, date time.Time) ([]StockEntry, error)
	// FindRange returns rows dated within the range, oldest first
	FindRange(ctx context.Context, scope shared.Scope, item ItemRef, r shared.DateRange) ([]StockEntry, error)
	// FindLatestPerItem returns the latest row of every ledger of the given kind
	FindLatestPerItem(ctx context.Context, scope shared.Scope, kind ItemKind) ([]StockEntry, error)
	// Save creates or updates a row
	Save(ctx context.Context, entry *StockEntry) error
}

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/erp/backoffice/internal/application/txn"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/event"
	"github.com/erp/backoffice/internal/infrastructure/lock"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
)

// Ledger is a fully wired ledger: the runner holds an in-process locker and
// every published event lands in Events.
type Ledger struct {
	DB     *gorm.DB
	Scope  shared.Scope
	Runner *txn.Runner
	Locker *lock.MemoryLocker
	Bus    *event.InMemoryEventBus
	Events *RecordingHandler
}

// NewLedger creates the fixture over an in-memory sqlite database
func NewLedger(t *testing.T) *Ledger {
	t.Helper()
	return NewLedgerOn(t, NewLedgerDB(t))
}

// NewLedgerOn creates the fixture over db, which must carry the ledger schema
func NewLedgerOn(t *testing.T, db *gorm.DB) *Ledger {
	t.Helper()

	locker := lock.NewMemoryLocker()
	bus := event.NewInMemoryEventBus(nil)
	recorder := NewRecordingHandler()
	bus.Subscribe(recorder)

	return &Ledger{
		DB:     db,
		Scope:  TestScope(),
		Runner: txn.NewRunner(persistence.NewGormTransactionScope(db), locker),
		Locker: locker,
		Bus:    bus,
		Events: recorder,
	}
}

// Repos returns repositories outside any transaction
func (l *Ledger) Repos() txn.Repositories {
	return persistence.NewGormRepositories(l.DB)
}

// RawMaterial saves a raw material
func (l *Ledger) RawMaterial(t *testing.T, code, unit string) *catalog.RawMaterial {
	t.Helper()
	m, err := catalog.NewRawMaterial(l.Scope, code, "Material "+code, unit)
	require.NoError(t, err)
	require.NoError(t, l.Repos().RawMaterials().Save(context.Background(), m))
	return m
}

// ReadyItem saves a ready item
func (l *Ledger) ReadyItem(t *testing.T, code, unit string) *catalog.ReadyItem {
	t.Helper()
	item, err := catalog.NewReadyItem(l.Scope, code, "Item "+code, unit)
	require.NoError(t, err)
	require.NoError(t, l.Repos().ReadyItems().Save(context.Background(), item))
	return item
}

// Customer saves a customer
func (l *Ledger) Customer(t *testing.T, name string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(l.Scope, name, "", "")
	require.NoError(t, err)
	require.NoError(t, l.Repos().Customers().Save(context.Background(), c))
	return c
}

// Stock posts qty into the item's ledger on date
func (l *Ledger) Stock(t *testing.T, item inventory.ItemRef, qty string, date time.Time) {
	t.Helper()
	_, err := inventory.NewLedger(l.Repos().StockEntries()).AddStock(context.Background(), l.Scope, item, Dec(qty), date, "")
	require.NoError(t, err)
}

// CurrentStock reads the item's current stock
func (l *Ledger) CurrentStock(t *testing.T, item inventory.ItemRef) decimal.Decimal {
	t.Helper()
	qty, err := inventory.NewLedger(l.Repos().StockEntries()).CurrentStock(context.Background(), l.Scope, item)
	require.NoError(t, err)
	return qty
}

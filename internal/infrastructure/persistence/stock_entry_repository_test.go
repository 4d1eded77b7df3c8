package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveEntry(t *testing.T, repo *GormStockEntryRepository, scope shared.Scope, item inventory.ItemRef, date time.Time, opening, added int64) *inventory.StockEntry {
	t.Helper()
	entry, err := inventory.NewStockEntry(scope, item, date, decimal.NewFromInt(opening), "kg")
	require.NoError(t, err)
	if added > 0 {
		entry.Add(decimal.NewFromInt(added))
	}
	require.NoError(t, repo.Save(context.Background(), entry))
	return entry
}

func TestGormStockEntryRepository_Finders(t *testing.T) {
	db := setupLedgerDB(t)
	repo := NewGormStockEntryRepository(db)
	ctx := context.Background()
	scope := testScope()
	item := inventory.RawMaterialRef(uuid.New())

	saveEntry(t, repo, scope, item, day(2024, 1, 1), 0, 10)
	saveEntry(t, repo, scope, item, day(2024, 1, 3), 10, 5)
	saveEntry(t, repo, scope, item, day(2024, 1, 5), 15, 1)

	t.Run("FindLatest returns the newest row", func(t *testing.T) {
		latest, err := repo.FindLatest(ctx, scope, item)
		require.NoError(t, err)
		assert.True(t, latest.Date.Equal(day(2024, 1, 5)))
		assert.True(t, latest.Closing.Equal(decimal.NewFromInt(16)))
	})

	t.Run("FindLatestOnOrBefore returns the closest earlier row", func(t *testing.T) {
		entry, err := repo.FindLatestOnOrBefore(ctx, scope, item, day(2024, 1, 4))
		require.NoError(t, err)
		assert.True(t, entry.Date.Equal(day(2024, 1, 3)))

		entry, err = repo.FindLatestOnOrBefore(ctx, scope, item, day(2024, 1, 3))
		require.NoError(t, err)
		assert.True(t, entry.Date.Equal(day(2024, 1, 3)))
	})

	t.Run("FindLatestOnOrBefore reports not found before the first row", func(t *testing.T) {
		_, err := repo.FindLatestOnOrBefore(ctx, scope, item, day(2023, 12, 31))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("FindByDate matches the exact day", func(t *testing.T) {
		entry, err := repo.FindByDate(ctx, scope, item, time.Date(2024, 1, 3, 15, 30, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.True(t, entry.Opening.Equal(decimal.NewFromInt(10)))

		_, err = repo.FindByDate(ctx, scope, item, day(2024, 1, 2))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("FindAfter returns later rows oldest first", func(t *testing.T) {
		entries, err := repo.FindAfter(ctx, scope, item, day(2024, 1, 1))
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.True(t, entries[0].Date.Equal(day(2024, 1, 3)))
		assert.True(t, entries[1].Date.Equal(day(2024, 1, 5)))
	})

	t.Run("FindRange is inclusive", func(t *testing.T) {
		entries, err := repo.FindRange(ctx, scope, item, shared.DateRange{From: day(2024, 1, 1), To: day(2024, 1, 3)})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("other tenants see nothing", func(t *testing.T) {
		_, err := repo.FindLatest(ctx, testScope(), item)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormStockEntryRepository_Save(t *testing.T) {
	db := setupLedgerDB(t)
	repo := NewGormStockEntryRepository(db)
	ctx := context.Background()
	scope := testScope()
	item := inventory.ReadyItemRef(uuid.New(), "A")

	t.Run("updates an existing row in place", func(t *testing.T) {
		entry := saveEntry(t, repo, scope, item, day(2024, 2, 1), 5, 0)
		entry.Consume(decimal.NewFromInt(2))
		require.NoError(t, repo.Save(ctx, entry))

		found, err := repo.FindByDate(ctx, scope, item, day(2024, 2, 1))
		require.NoError(t, err)
		assert.Equal(t, entry.ID, found.ID)
		assert.True(t, found.Consumed.Equal(decimal.NewFromInt(2)))
		assert.True(t, found.Closing.Equal(decimal.NewFromInt(3)))
		assert.Equal(t, "A", found.Item.Quality)
		assert.Equal(t, inventory.ItemKindReadyItem, found.Item.Kind)
	})

	t.Run("rejects a second row for the same day", func(t *testing.T) {
		duplicate, err := inventory.NewStockEntry(scope, item, day(2024, 2, 1), decimal.Zero, "kg")
		require.NoError(t, err)

		assert.Error(t, repo.Save(ctx, duplicate))
	})

	t.Run("keeps quality grades apart", func(t *testing.T) {
		other := inventory.ReadyItemRef(item.ItemID, "B")
		saveEntry(t, repo, scope, other, day(2024, 2, 1), 0, 7)

		entry, err := repo.FindLatest(ctx, scope, other)
		require.NoError(t, err)
		assert.True(t, entry.Closing.Equal(decimal.NewFromInt(7)))
	})

	t.Run("rejects a row without tenant", func(t *testing.T) {
		entry, err := inventory.NewStockEntry(shared.Scope{}, item, day(2024, 2, 9), decimal.Zero, "kg")
		require.NoError(t, err)

		assert.Error(t, repo.Save(ctx, entry))
	})
}

func TestGormStockEntryRepository_FindLatestPerItem(t *testing.T) {
	db := setupLedgerDB(t)
	repo := NewGormStockEntryRepository(db)
	ctx := context.Background()
	scope := testScope()

	first := inventory.RawMaterialRef(uuid.New())
	second := inventory.RawMaterialRef(uuid.New())
	ready := inventory.ReadyItemRef(uuid.New(), "A")

	saveEntry(t, repo, scope, first, day(2024, 3, 1), 0, 4)
	saveEntry(t, repo, scope, first, day(2024, 3, 2), 4, 6)
	saveEntry(t, repo, scope, second, day(2024, 3, 1), 0, 9)
	saveEntry(t, repo, scope, ready, day(2024, 3, 5), 0, 2)

	entries, err := repo.FindLatestPerItem(ctx, scope, inventory.ItemKindRawMaterial)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	closing := map[uuid.UUID]decimal.Decimal{}
	for _, e := range entries {
		closing[e.Item.ItemID] = e.Closing
	}
	assert.True(t, closing[first.ItemID].Equal(decimal.NewFromInt(10)))
	assert.True(t, closing[second.ItemID].Equal(decimal.NewFromInt(9)))
}

func TestGormStockEntryRepository_QueryShape(t *testing.T) {
	t.Run("scopes the ledger query by tenant, company and item", func(t *testing.T) {
		gormDB, mock := mockPostgres(t)
		repo := NewGormStockEntryRepository(gormDB)

		scope := testScope()
		item := inventory.RawMaterialRef(uuid.New())

		// scopes are applied when the statement is built, after the item filter
		mock.ExpectQuery(`SELECT \* FROM "stock_entries" WHERE \(kind = \$1 AND item_id = \$2 AND quality = \$3\) AND tenant_id = \$4 AND company_id = \$5 ORDER BY date DESC.*LIMIT \$6`).
			WithArgs(item.Kind, item.ItemID, "", scope.TenantID, scope.CompanyID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindLatest(context.Background(), scope, item)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("omits the company filter for a tenant-wide scope", func(t *testing.T) {
		gormDB, mock := mockPostgres(t)
		repo := NewGormStockEntryRepository(gormDB)

		scope := shared.NewScope(uuid.New(), uuid.Nil)
		item := inventory.ReadyItemRef(uuid.New(), "A")

		mock.ExpectQuery(`SELECT \* FROM "stock_entries" WHERE \(kind = \$1 AND item_id = \$2 AND quality = \$3\) AND tenant_id = \$4 ORDER BY date DESC.*LIMIT \$5`).
			WithArgs(item.Kind, item.ItemID, "A", scope.TenantID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindLatest(context.Background(), scope, item)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

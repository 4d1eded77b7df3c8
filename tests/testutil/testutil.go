// Package testutil wires an in-memory ledger for package tests and offers
// small seeding helpers.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/erp/backoffice/internal/infrastructure/persistence/tenant"
)

// NewLedgerDB opens a private in-memory sqlite database holding every ledger
// table, with the tenant guard installed. A single connection keeps the
// database alive for the whole test.
func NewLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err, "open sqlite ledger")

	pool, err := db.DB()
	require.NoError(t, err)
	pool.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = pool.Close() })

	require.NoError(t, tenant.RegisterCallbacks(db))
	require.NoError(t, db.AutoMigrate(models.All()...), "migrate ledger tables")
	return db
}

var idNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// NewTestUUID derives a stable id from seed
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte(seed))
}

// TestScope is the tenant and company every fixture writes under
func TestScope() shared.Scope {
	return shared.NewScope(NewTestUUID("test-tenant"), NewTestUUID("test-company"))
}

// Dec parses a decimal literal, panicking on malformed input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Date is midnight UTC of the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

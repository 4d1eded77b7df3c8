// Package integration runs the ledger against a real PostgreSQL database
// started with testcontainers and migrated with the embedded schema.
package integration

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/migration"
	"github.com/erp/backoffice/internal/infrastructure/persistence/tenant"
)

// ledgerTables is truncated before every test, children first
var ledgerTables = []string{
	"cash_entries", "payments", "customer_accounts",
	"purchase_order_items", "purchase_orders", "sales_order_items", "sales_orders",
	"material_consumptions", "production_batches", "propositions", "recipes",
	"stock_entries", "customers", "ready_items", "raw_materials",
}

// pg is the container shared by every test in the package
var pg struct {
	sync.Mutex
	container *tcpostgres.PostgresContainer
	dsn       string
}

// NewTestDB connects to the shared PostgreSQL container, starting and
// migrating it on first use. Each call starts from empty ledger tables.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("PostgreSQL integration test skipped in short mode")
	}

	dsn := sharedDSN(t)
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 sqlLogger(t),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "connect to test database")
	require.NoError(t, tenant.RegisterCallbacks(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("TRUNCATE TABLE "+strings.Join(ledgerTables, ", ")+" CASCADE").Error)
	return db
}

// sqlLogger is silent unless TEST_DB_DEBUG is set, then statements go to the test log
func sqlLogger(t *testing.T) gormlogger.Interface {
	if os.Getenv("TEST_DB_DEBUG") == "" {
		return gormlogger.Discard
	}
	return logger.NewSQLLogger(zaptest.NewLogger(t), gormlogger.Info)
}

func sharedDSN(t *testing.T) string {
	t.Helper()
	pg.Lock()
	defer pg.Unlock()
	if pg.container != nil {
		return pg.dsn
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("ledger"),
		tcpostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up(), "migrate test database")
	require.NoError(t, m.Close())

	pg.container, pg.dsn = container, dsn
	return dsn
}

// CleanupSharedContainer terminates the shared container once the package is done
func CleanupSharedContainer() {
	pg.Lock()
	defer pg.Unlock()
	if pg.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = pg.container.Terminate(ctx)
	pg.container, pg.dsn = nil, ""
}

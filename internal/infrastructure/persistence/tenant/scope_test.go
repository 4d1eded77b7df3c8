package tenant

import (
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type ledgerRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID `gorm:"type:uuid"`
	CompanyID uuid.UUID `gorm:"type:uuid"`
	Memo      string
}

func (ledgerRow) TableName() string { return "ledger_rows" }

func (r *ledgerRow) TenantScope() shared.Scope {
	return shared.Scope{TenantID: r.TenantID, CompanyID: r.CompanyID}
}

// guardedPostgres speaks the postgres dialect to go-sqlmock with the create
// guard installed.
func guardedPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, RegisterCallbacks(db))
	return db, mock
}

func TestApply(t *testing.T) {
	tenantID, companyID := uuid.New(), uuid.New()

	cases := []struct {
		name  string
		scope shared.Scope
		query string
		args  []driver.Value
	}{
		{
			name:  "narrows to the tenant",
			scope: shared.NewScope(tenantID, uuid.Nil),
			query: `SELECT \* FROM "ledger_rows" WHERE tenant_id = \$1`,
			args:  []driver.Value{tenantID},
		},
		{
			name:  "narrows to the tenant and company",
			scope: shared.NewScope(tenantID, companyID),
			query: `SELECT \* FROM "ledger_rows" WHERE tenant_id = \$1 AND company_id = \$2`,
			args:  []driver.Value{tenantID, companyID},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := guardedPostgres(t)
			mock.ExpectQuery(tc.query).
				WithArgs(tc.args...).
				WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "memo"}))

			var rows []ledgerRow
			require.NoError(t, db.Scopes(Apply(tc.scope)).Find(&rows).Error)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("refuses to query without a tenant", func(t *testing.T) {
		db, mock := guardedPostgres(t)

		var rows []ledgerRow
		err := db.Scopes(Apply(shared.Scope{CompanyID: companyID})).Find(&rows).Error

		assert.ErrorIs(t, err, ErrTenantIDRequired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGuardCreate(t *testing.T) {
	t.Run("blocks an unscoped row", func(t *testing.T) {
		db, mock := guardedPostgres(t)

		err := db.Create(&ledgerRow{ID: uuid.New(), Memo: "orphan"}).Error

		assert.ErrorIs(t, err, ErrTenantIDRequired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blocks a batch with one unscoped row", func(t *testing.T) {
		db, mock := guardedPostgres(t)

		err := db.Create(&[]ledgerRow{
			{ID: uuid.New(), TenantID: uuid.New(), Memo: "opening"},
			{ID: uuid.New(), Memo: "orphan"},
		}).Error

		assert.ErrorIs(t, err, ErrTenantIDRequired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lets a scoped row through", func(t *testing.T) {
		db, mock := guardedPostgres(t)
		mock.ExpectExec(`INSERT INTO "ledger_rows"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := db.Create(&ledgerRow{ID: uuid.New(), TenantID: uuid.New(), Memo: "opening"}).Error

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

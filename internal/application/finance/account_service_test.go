package finance_test

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	appfinance "github.com/erp/backoffice/internal/application/finance"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/export"
	"github.com/erp/backoffice/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestAccountService_GetOrCreateAccount(t *testing.T) {
	ctx := context.Background()
	f := newFinanceFixture(t)

	t.Run("creates a zero-seeded account once", func(t *testing.T) {
		first, err := f.accounts.GetOrCreateAccount(ctx, f.Scope, f.customer.ID)
		require.NoError(t, err)
		assert.True(t, first.CurrentBalance.IsZero())

		second, err := f.accounts.GetOrCreateAccount(ctx, f.Scope, f.customer.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("unknown customers are not found", func(t *testing.T) {
		_, err := f.accounts.GetOrCreateAccount(ctx, f.Scope, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestAccountService_Recompute(t *testing.T) {
	ctx := context.Background()
	f := newFinanceFixture(t)
	f.sale(t, "1000", testutil.Date(2024, time.March, 1))
	f.purchase(t, "250", testutil.Date(2024, time.March, 3))
	_, err := f.payments.RecordPayment(ctx, f.Scope, f.salesPayment("400", testutil.Date(2024, time.March, 5), nil))
	require.NoError(t, err)

	t.Run("applies the balance formula", func(t *testing.T) {
		account, err := f.accounts.Recompute(ctx, f.Scope, f.customer.ID)
		require.NoError(t, err)
		assert.Equal(t, "1000", account.TotalReceivable.String())
		assert.Equal(t, "250", account.TotalPayable.String())
		assert.Equal(t, "400", account.TotalPaid.String())
		assert.Equal(t, "350", account.CurrentBalance.String())
		require.NotNil(t, account.LastTransactionDate)
		assert.True(t, account.LastTransactionDate.Equal(testutil.Date(2024, time.March, 5)))
	})

	t.Run("is idempotent", func(t *testing.T) {
		first, err := f.accounts.Recompute(ctx, f.Scope, f.customer.ID)
		require.NoError(t, err)
		second, err := f.accounts.Recompute(ctx, f.Scope, f.customer.ID)
		require.NoError(t, err)
		assert.True(t, first.CurrentBalance.Equal(second.CurrentBalance))
		assert.True(t, first.TotalPaid.Equal(second.TotalPaid))
	})

	t.Run("the opening balance shifts the current balance", func(t *testing.T) {
		account, err := f.accounts.SetOpeningBalance(ctx, f.Scope, f.customer.ID, testutil.Dec("50"))
		require.NoError(t, err)
		assert.Equal(t, "400", account.CurrentBalance.String())

		account, err = f.accounts.Recompute(ctx, f.Scope, f.customer.ID)
		require.NoError(t, err)
		assert.Equal(t, "400", account.CurrentBalance.String())
	})
}

func TestAccountService_Recompute_EmptiedAccount(t *testing.T) {
	ctx := context.Background()
	f := newFinanceFixture(t)
	payment, err := f.payments.RecordPayment(ctx, f.Scope, f.salesPayment("400", testutil.Date(2024, time.March, 5), nil))
	require.NoError(t, err)

	account, err := f.accounts.Recompute(ctx, f.Scope, f.customer.ID)
	require.NoError(t, err)
	require.NotNil(t, account.LastTransactionDate)

	require.NoError(t, f.payments.DeletePayment(ctx, f.Scope, payment.ID))
	account, err = f.accounts.Recompute(ctx, f.Scope, f.customer.ID)
	require.NoError(t, err)

	assert.Nil(t, account.LastTransactionDate)
	assert.True(t, account.TotalPaid.IsZero())

	stored, err := f.Repos().Accounts().FindByCustomer(ctx, f.Scope, f.customer.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastTransactionDate)
}

func TestAccountService_RecomputeAll(t *testing.T) {
	ctx := context.Background()
	f := newFinanceFixture(t)
	f.sale(t, "1000", testutil.Date(2024, time.March, 1))
	other := f.Customer(t, "Other")

	t.Run("corrects drifted balances only", func(t *testing.T) {
		changed, err := f.accounts.RecomputeAll(ctx, f.Scope)
		require.NoError(t, err)
		assert.Equal(t, 1, changed)
		assert.Equal(t, "1000", f.balance(t))

		changed, err = f.accounts.RecomputeAll(ctx, f.Scope)
		require.NoError(t, err)
		assert.Zero(t, changed)

		account, err := f.Repos().Accounts().FindByCustomer(ctx, f.Scope, other.ID)
		require.NoError(t, err)
		assert.True(t, account.CurrentBalance.IsZero())
	})
}

func TestAccountService_Statement(t *testing.T) {
	ctx := context.Background()
	f := newFinanceFixture(t)
	f.sale(t, "200", testutil.Date(2024, time.February, 20))
	order := f.sale(t, "1000", testutil.Date(2024, time.March, 2))
	_, err := f.payments.RecordPayment(ctx, f.Scope, f.salesPayment("400", testutil.Date(2024, time.March, 5), &order.ID))
	require.NoError(t, err)
	f.purchase(t, "300", testutil.Date(2024, time.April, 1))

	stmt, err := f.accounts.Statement(ctx, f.Scope, f.customer.ID,
		testutil.Date(2024, time.March, 1), testutil.Date(2024, time.March, 31))
	require.NoError(t, err)

	t.Run("opens with everything before the period", func(t *testing.T) {
		assert.Equal(t, "Acme Traders", stmt.CustomerName)
		assert.Equal(t, "200", stmt.OpeningBalance.String())
	})

	t.Run("lists the period by date with a running balance", func(t *testing.T) {
		require.Len(t, stmt.Lines, 2)
		assert.Equal(t, finance.LineSalesOrder, stmt.Lines[0].Type)
		assert.Equal(t, "Sales Order #"+order.OrderNumber, stmt.Lines[0].Description)
		assert.Equal(t, "1200", stmt.Lines[0].Balance.String())
		assert.Equal(t, finance.LinePayment, stmt.Lines[1].Type)
		assert.Equal(t, "Payment - CASH #R-1", stmt.Lines[1].Description)
	})

	t.Run("received payments are debit lines", func(t *testing.T) {
		assert.Equal(t, "400", stmt.Lines[1].Debit.String())
		assert.Equal(t, "1600", stmt.Lines[1].Balance.String())
	})

	t.Run("totals the period", func(t *testing.T) {
		assert.Equal(t, "1000", stmt.TotalSales.String())
		assert.Equal(t, "400", stmt.TotalPaymentsReceived.String())
		assert.True(t, stmt.TotalPurchases.IsZero())
		assert.Equal(t, "1400", stmt.TotalDebit.String())
		assert.Equal(t, "1600", stmt.ClosingBalance.String())
	})

	t.Run("an inverted period is invalid", func(t *testing.T) {
		_, err := f.accounts.Statement(ctx, f.Scope, f.customer.ID,
			testutil.Date(2024, time.March, 31), testutil.Date(2024, time.March, 1))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestAccountService_ExportStatement(t *testing.T) {
	ctx := context.Background()

	t.Run("writes the workbook into the export directory", func(t *testing.T) {
		f := newFinanceFixture(t)
		storage, err := export.NewFileSystemStorage(&export.FileSystemStorageConfig{BasePath: t.TempDir()})
		require.NoError(t, err)
		accounts := appfinance.NewAccountService(f.Runner, storage, nil)
		f.sale(t, "1000", testutil.Date(2024, time.March, 2))

		result, err := accounts.ExportStatement(ctx, f.Scope, f.customer.ID,
			testutil.Date(2024, time.March, 1), testutil.Date(2024, time.March, 31))
		require.NoError(t, err)
		assert.Positive(t, result.Size)

		data, err := os.ReadFile(result.FullPath)
		require.NoError(t, err)
		book, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer book.Close()
		name, err := book.GetCellValue(export.StatementSheet, "B2")
		require.NoError(t, err)
		assert.Equal(t, "Acme Traders", name)
	})

	t.Run("fails without storage", func(t *testing.T) {
		f := newFinanceFixture(t)
		_, err := f.accounts.ExportStatement(ctx, f.Scope, f.customer.ID,
			testutil.Date(2024, time.March, 1), testutil.Date(2024, time.March, 31))
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

package finance_test

import (
	"context"
	"testing"
	"time"

	appfinance "github.com/erp/backoffice/internal/application/finance"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type financeFixture struct {
	*testutil.Ledger
	payments *appfinance.PaymentService
	accounts *appfinance.AccountService
	cash     *appfinance.CashService
	customer *partner.Customer
}

func newFinanceFixture(t *testing.T) *financeFixture {
	t.Helper()
	fx := testutil.NewLedger(t)
	payments := appfinance.NewPaymentService(fx.Runner, nil)
	payments.SetEventPublisher(fx.Bus)
	return &financeFixture{
		Ledger:   fx,
		payments: payments,
		accounts: appfinance.NewAccountService(fx.Runner, nil, nil),
		cash:     appfinance.NewCashService(fx.Runner, nil),
		customer: fx.Customer(t, "Acme Traders"),
	}
}

// sale stores a sales order of the given total directly through the repository
func (f *financeFixture) sale(t *testing.T, total string, date time.Time) *trade.SalesOrder {
	t.Helper()
	item := f.ReadyItem(t, "R-"+uuid.NewString()[:8], "pcs")
	order, err := trade.NewSalesOrder(f.Scope, f.customer.ID, "", date)
	require.NoError(t, err)
	require.NoError(t, order.ReplaceItems([]trade.SalesLine{{
		ReadyItemID: item.ID, Quality: "A", Quantity: testutil.Dec("1"), UnitPrice: testutil.Dec(total),
	}}, trade.Pricing{}))
	require.NoError(t, f.Repos().SalesOrders().Save(context.Background(), order))
	return order
}

func (f *financeFixture) purchase(t *testing.T, total string, date time.Time) *trade.PurchaseOrder {
	t.Helper()
	material := f.RawMaterial(t, "M-"+uuid.NewString()[:8], "kg")
	order, err := trade.NewPurchaseOrder(f.Scope, f.customer.ID, "", date)
	require.NoError(t, err)
	require.NoError(t, order.ReplaceItems([]trade.PurchaseLine{{
		RawMaterialID: material.ID, Quantity: testutil.Dec("1"), UnitPrice: testutil.Dec(total),
	}}, trade.Pricing{}))
	require.NoError(t, f.Repos().PurchaseOrders().Save(context.Background(), order))
	return order
}

func (f *financeFixture) salesPayment(amount string, date time.Time, orderID *uuid.UUID) appfinance.PaymentRequest {
	return appfinance.PaymentRequest{
		CustomerID:      f.customer.ID,
		Type:            finance.PaymentTypeSales,
		Amount:          testutil.Dec(amount),
		Date:            date,
		Mode:            finance.PaymentModeCash,
		ReferenceNumber: "R-1",
		Remarks:         "on account",
		SalesOrderID:    orderID,
	}
}

func (f *financeFixture) salesOrder(t *testing.T, id uuid.UUID) *trade.SalesOrder {
	t.Helper()
	order, err := f.Repos().SalesOrders().FindByID(context.Background(), f.Scope, id)
	require.NoError(t, err)
	return order
}

func (f *financeFixture) balance(t *testing.T) string {
	t.Helper()
	account, err := f.Repos().Accounts().FindByCustomer(context.Background(), f.Scope, f.customer.ID)
	require.NoError(t, err)
	return account.CurrentBalance.String()
}

func TestPaymentService_RecordPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("a partial payment settles the order, the account and the cash book", func(t *testing.T) {
		f := newFinanceFixture(t)
		order := f.sale(t, "1000", testutil.Date(2024, time.March, 1))
		_, err := f.accounts.Recompute(ctx, f.Scope, f.customer.ID)
		require.NoError(t, err)

		payment, err := f.payments.RecordPayment(ctx, f.Scope, f.salesPayment("400", testutil.Date(2024, time.March, 5), &order.ID))
		require.NoError(t, err)

		settled := f.salesOrder(t, order.ID)
		assert.Equal(t, "400", settled.PaidAmount.String())
		assert.Equal(t, "600", settled.BalancePayment.String())
		assert.Equal(t, trade.PaymentStatusPartial, settled.PaymentStatus)
		assert.Equal(t, "600", f.balance(t))

		require.NotNil(t, payment.CashEntryID)
		entry, err := f.Repos().CashEntries().FindByID(ctx, f.Scope, *payment.CashEntryID)
		require.NoError(t, err)
		assert.Equal(t, "400", entry.Debit.String())
		assert.Equal(t, "400", entry.Balance.String())
		assert.Equal(t, finance.CashCustomerPayment, entry.Type)
		assert.Equal(t, "Payment: on account", entry.Remarks)

		assert.Len(t, f.Events.OfType(finance.EventTypePaymentRecorded), 1)
		assert.Zero(t, f.Locker.Held())
	})

	t.Run("paying the rest marks the order paid", func(t *testing.T) {
		f := newFinanceFixture(t)
		order := f.sale(t, "1000", testutil.Date(2024, time.March, 1))

		_, err := f.payments.RecordPayment(ctx, f.Scope, f.salesPayment("400", testutil.Date(2024, time.March, 5), &order.ID))
		require.NoError(t, err)
		_, err = f.payments.RecordPayment(ctx, f.Scope, f.salesPayment("600", testutil.Date(2024, time.March, 6), &order.ID))
		require.NoError(t, err)

		settled := f.salesOrder(t, order.ID)
		assert.True(t, settled.BalancePayment.IsZero())
		assert.Equal(t, trade.PaymentStatusPaid, settled.PaymentStatus)
		assert.Equal(t, "0", f.balance(t))
	})

	t.Run("a purchase payment is a cash credit", func(t *testing.T) {
		f := newFinanceFixture(t)
		order := f.purchase(t, "300", testutil.Date(2024, time.March, 1))

		payment, err := f.payments.RecordPayment(ctx, f.Scope, appfinance.PaymentRequest{
			CustomerID:      f.customer.ID,
			Type:            finance.PaymentTypePurchase,
			Amount:          testutil.Dec("300"),
			Date:            testutil.Date(2024, time.March, 2),
			Mode:            finance.PaymentModeBankTransfer,
			PurchaseOrderID: &order.ID,
		})
		require.NoError(t, err)

		entry, err := f.Repos().CashEntries().FindByID(ctx, f.Scope, *payment.CashEntryID)
		require.NoError(t, err)
		assert.Equal(t, "300", entry.Credit.String())
		assert.Equal(t, "-300", entry.Balance.String())
		assert.Equal(t, "0", f.balance(t))
	})

	t.Run("unknown customers are not found", func(t *testing.T) {
		f := newFinanceFixture(t)
		req := f.salesPayment("10", testutil.Date(2024, time.March, 1), nil)
		req.CustomerID = uuid.New()
		_, err := f.payments.RecordPayment(ctx, f.Scope, req)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("an unknown order rolls the payment back", func(t *testing.T) {
		f := newFinanceFixture(t)
		missing := uuid.New()
		_, err := f.payments.RecordPayment(ctx, f.Scope, f.salesPayment("10", testutil.Date(2024, time.March, 1), &missing))
		assert.ErrorIs(t, err, shared.ErrNotFound)

		payments, err := f.payments.PaymentsByCustomer(ctx, f.Scope, f.customer.ID)
		require.NoError(t, err)
		assert.Empty(t, payments)
	})

	t.Run("invalid details", func(t *testing.T) {
		f := newFinanceFixture(t)
		req := f.salesPayment("0", testutil.Date(2024, time.March, 1), nil)
		_, err := f.payments.RecordPayment(ctx, f.Scope, req)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestPaymentService_UpdatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("the old amount is reversed before the new one applies", func(t *testing.T) {
		f := newFinanceFixture(t)
		order := f.sale(t, "1000", testutil.Date(2024, time.March, 1))
		payment, err := f.payments.RecordPayment(ctx, f.Scope, f.salesPayment("400", testutil.Date(2024, time.March, 5), &order.ID))
		require.NoError(t, err)

		updated, err := f.payments.UpdatePayment(ctx, f.Scope, payment.ID, f.salesPayment("1000", testutil.Date(2024, time.March, 7), &order.ID))
		require.NoError(t, err)
		assert.Equal(t, payment.CashEntryID, updated.CashEntryID)

		settled := f.salesOrder(t, order.ID)
		assert.Equal(t, "1000", settled.PaidAmount.String())
		assert.Equal(t, trade.PaymentStatusPaid, settled.PaymentStatus)
		assert.Equal(t, "0", f.balance(t))

		entry, err := f.Repos().CashEntries().FindByID(ctx, f.Scope, *updated.CashEntryID)
		require.NoError(t, err)
		assert.Equal(t, "1000", entry.Debit.String())
		assert.True(t, entry.Date.Equal(testutil.Date(2024, time.March, 7)))
	})

	t.Run("moving a payment to another order unsettles the first", func(t *testing.T) {
		f := newFinanceFixture(t)
		first := f.sale(t, "500", testutil.Date(2024, time.March, 1))
		second := f.sale(t, "500", testutil.Date(2024, time.March, 2))
		payment, err := f.payments.RecordPayment(ctx, f.Scope, f.salesPayment("500", testutil.Date(2024, time.March, 5), &first.ID))
		require.NoError(t, err)

		_, err = f.payments.UpdatePayment(ctx, f.Scope, payment.ID, f.salesPayment("200", testutil.Date(2024, time.March, 5), &second.ID))
		require.NoError(t, err)

		assert.Equal(t, trade.PaymentStatusUnpaid, f.salesOrder(t, first.ID).PaymentStatus)
		assert.Equal(t, "500", f.salesOrder(t, first.ID).BalancePayment.String())
		assert.Equal(t, trade.PaymentStatusPartial, f.salesOrder(t, second.ID).PaymentStatus)
		assert.Equal(t, "800", f.balance(t))
	})

	t.Run("unknown payments are not found", func(t *testing.T) {
		f := newFinanceFixture(t)
		_, err := f.payments.UpdatePayment(ctx, f.Scope, uuid.New(), f.salesPayment("1", testutil.Date(2024, time.March, 1), nil))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPaymentService_DeletePayment(t *testing.T) {
	ctx := context.Background()
	f := newFinanceFixture(t)
	order := f.sale(t, "1000", testutil.Date(2024, time.March, 1))
	early, err := f.payments.RecordPayment(ctx, f.Scope, f.salesPayment("100", testutil.Date(2024, time.March, 2), nil))
	require.NoError(t, err)
	payment, err := f.payments.RecordPayment(ctx, f.Scope, f.salesPayment("400", testutil.Date(2024, time.March, 5), &order.ID))
	require.NoError(t, err)
	later, err := f.payments.RecordPayment(ctx, f.Scope, f.salesPayment("50", testutil.Date(2024, time.March, 9), nil))
	require.NoError(t, err)

	require.NoError(t, f.payments.DeletePayment(ctx, f.Scope, payment.ID))

	t.Run("the order and the account are restored", func(t *testing.T) {
		settled := f.salesOrder(t, order.ID)
		assert.True(t, settled.PaidAmount.IsZero())
		assert.Equal(t, trade.PaymentStatusUnpaid, settled.PaymentStatus)
		assert.Equal(t, "850", f.balance(t))
	})

	t.Run("the cash entry is gone and later balances re-chain", func(t *testing.T) {
		_, err := f.Repos().CashEntries().FindByID(ctx, f.Scope, *payment.CashEntryID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		entry, err := f.Repos().CashEntries().FindByID(ctx, f.Scope, *later.CashEntryID)
		require.NoError(t, err)
		assert.Equal(t, "150", entry.Balance.String())

		first, err := f.Repos().CashEntries().FindByID(ctx, f.Scope, *early.CashEntryID)
		require.NoError(t, err)
		assert.Equal(t, "100", first.Balance.String())
	})

	t.Run("a second delete is not found", func(t *testing.T) {
		assert.ErrorIs(t, f.payments.DeletePayment(ctx, f.Scope, payment.ID), shared.ErrNotFound)
	})

	t.Run("a deleted event is published", func(t *testing.T) {
		assert.Len(t, f.Events.OfType(finance.EventTypePaymentDeleted), 1)
	})
}

func TestPaymentService_Queries(t *testing.T) {
	ctx := context.Background()
	f := newFinanceFixture(t)
	order := f.sale(t, "1000", testutil.Date(2024, time.March, 1))
	linked, err := f.payments.RecordPayment(ctx, f.Scope, f.salesPayment("400", testutil.Date(2024, time.March, 5), &order.ID))
	require.NoError(t, err)
	_, err = f.payments.RecordPayment(ctx, f.Scope, f.salesPayment("100", testutil.Date(2024, time.April, 2), nil))
	require.NoError(t, err)

	t.Run("by id", func(t *testing.T) {
		got, err := f.payments.GetPayment(ctx, f.Scope, linked.ID)
		require.NoError(t, err)
		assert.Equal(t, "400", got.Amount.String())
		assert.Equal(t, "R-1", got.ReferenceNumber)
	})

	t.Run("by customer", func(t *testing.T) {
		got, err := f.payments.PaymentsByCustomer(ctx, f.Scope, f.customer.ID)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("by order type in any case", func(t *testing.T) {
		got, err := f.payments.PaymentsByOrder(ctx, f.Scope, "sales", order.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, linked.ID, got[0].ID)

		got, err = f.payments.PaymentsByOrder(ctx, f.Scope, "PURCHASE", order.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("an unknown order type is an invalid operation", func(t *testing.T) {
		_, err := f.payments.PaymentsByOrder(ctx, f.Scope, "RETURN", order.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidOperation)
	})

	t.Run("list by period", func(t *testing.T) {
		from, to := testutil.Date(2024, time.April, 1), testutil.Date(2024, time.April, 30)
		got, err := f.payments.ListPayments(ctx, f.Scope, appfinance.PaymentListFilter{From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "100", got[0].Amount.String())
	})

	t.Run("list rejects unknown types", func(t *testing.T) {
		_, err := f.payments.ListPayments(ctx, f.Scope, appfinance.PaymentListFilter{Type: "GIFT"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

package integration

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfinance "github.com/erp/backoffice/internal/application/finance"
	appproduction "github.com/erp/backoffice/internal/application/production"
	apptrade "github.com/erp/backoffice/internal/application/trade"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/tests/testutil"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

var flowDay = testutil.Date(2024, time.June, 3)

func TestLedgerFlow_PurchaseProduceSellPay(t *testing.T) {
	db := NewTestDB(t)
	fx := testutil.NewLedgerOn(t, db)
	ctx := context.Background()
	clock := shared.FixedClock(flowDay)

	orders := apptrade.NewOrderService(fx.Runner, clock, nil)
	orders.SetEventPublisher(fx.Bus)
	recipes := appproduction.NewRecipeService(fx.Runner)
	producer := appproduction.NewProductionService(fx.Runner, appproduction.NewDeviationAnalyzer(nil, clock), clock, nil)
	producer.SetEventPublisher(fx.Bus)
	payments := appfinance.NewPaymentService(fx.Runner, nil)
	payments.SetEventPublisher(fx.Bus)
	accounts := appfinance.NewAccountService(fx.Runner, nil, nil)
	cash := appfinance.NewCashService(fx.Runner, nil)

	supplier := fx.Customer(t, "Cotton Mills")
	buyer := fx.Customer(t, "Acme Traders")
	yarn := fx.RawMaterial(t, "YARN", "kg")
	shirt := fx.ReadyItem(t, "SHIRT", "pcs")
	yarnRef := inventory.RawMaterialRef(yarn.ID)
	shirtRef := inventory.ReadyItemRef(shirt.ID, "A")

	_, err := orders.UpsertPurchaseOrder(ctx, fx.Scope, apptrade.PurchaseOrderRequest{
		CustomerID: supplier.ID,
		OrderDate:  flowDay,
		Items: []trade.PurchaseLine{{
			RawMaterialID: yarn.ID, Quantity: testutil.Dec("50"), UnitPrice: testutil.Dec("4"),
		}},
	})
	require.NoError(t, err)

	_, err = recipes.UpsertRecipe(ctx, fx.Scope, appproduction.UpsertRecipeRequest{
		ReadyItemID: shirt.ID, RawMaterialID: yarn.ID, Quality: "A", QuantityPerUnit: testutil.Dec("2"),
	})
	require.NoError(t, err)

	batch, err := producer.Produce(ctx, fx.Scope, appproduction.ProduceRequest{
		ReadyItemID: shirt.ID, Quality: "A", QuantityProduced: testutil.Dec("10"), Date: flowDay, BatchNumber: "B-1",
	})
	require.NoError(t, err)
	assert.True(t, batch.Materials[yarn.ID].Equal(testutil.Dec("20")))

	sale, err := orders.UpsertSalesOrder(ctx, fx.Scope, apptrade.SalesOrderRequest{
		CustomerID: buyer.ID,
		OrderDate:  flowDay,
		Items: []trade.SalesLine{{
			ReadyItemID: shirt.ID, Quality: "A", Quantity: testutil.Dec("4"), UnitPrice: testutil.Dec("25"),
		}},
	})
	require.NoError(t, err)

	_, err = payments.RecordPayment(ctx, fx.Scope, appfinance.PaymentRequest{
		CustomerID:   buyer.ID,
		Type:         finance.PaymentTypeSales,
		Amount:       testutil.Dec("60"),
		Date:         flowDay,
		Mode:         finance.PaymentModeCash,
		SalesOrderID: &sale.ID,
	})
	require.NoError(t, err)

	t.Run("stock follows purchase, production and sale", func(t *testing.T) {
		assert.True(t, fx.CurrentStock(t, yarnRef).Equal(testutil.Dec("30")))
		assert.True(t, fx.CurrentStock(t, shirtRef).Equal(testutil.Dec("6")))
	})

	t.Run("balances follow orders and payments", func(t *testing.T) {
		buyerAccount, err := fx.Repos().Accounts().FindByCustomer(ctx, fx.Scope, buyer.ID)
		require.NoError(t, err)
		assert.True(t, buyerAccount.CurrentBalance.Equal(testutil.Dec("40")))

		supplierAccount, err := fx.Repos().Accounts().FindByCustomer(ctx, fx.Scope, supplier.ID)
		require.NoError(t, err)
		assert.True(t, supplierAccount.CurrentBalance.Equal(testutil.Dec("-200")))
	})

	t.Run("the order is partially paid", func(t *testing.T) {
		order, err := orders.GetSalesOrder(ctx, fx.Scope, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, trade.PaymentStatusPartial, order.PaymentStatus)
		assert.True(t, order.BalancePayment.Equal(testutil.Dec("40")))
	})

	t.Run("the cash book holds the payment", func(t *testing.T) {
		balance, err := cash.CurrentCashBalance(ctx, fx.Scope)
		require.NoError(t, err)
		assert.True(t, balance.Equal(testutil.Dec("60")))
	})

	t.Run("the statement closes on the current balance", func(t *testing.T) {
		stmt, err := accounts.Statement(ctx, fx.Scope, buyer.ID, flowDay, flowDay)
		require.NoError(t, err)
		require.Len(t, stmt.Lines, 2)
		assert.True(t, stmt.TotalSales.Equal(testutil.Dec("100")))
	})

	t.Run("recomputing changes nothing", func(t *testing.T) {
		changed, err := accounts.RecomputeAll(ctx, fx.Scope)
		require.NoError(t, err)
		assert.Zero(t, changed)
	})
}

func TestLedgerFlow_ConcurrentSalesNeverOversell(t *testing.T) {
	db := NewTestDB(t)
	fx := testutil.NewLedgerOn(t, db)
	ctx := context.Background()
	orders := apptrade.NewOrderService(fx.Runner, shared.FixedClock(flowDay), nil)

	buyer := fx.Customer(t, "Acme Traders")
	shirt := fx.ReadyItem(t, "SHIRT", "pcs")
	ref := inventory.ReadyItemRef(shirt.ID, "A")
	fx.Stock(t, ref, "10", flowDay)

	const attempts = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		sold    int
		refused int
		other   []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := orders.UpsertSalesOrder(ctx, fx.Scope, apptrade.SalesOrderRequest{
				CustomerID: buyer.ID,
				OrderDate:  flowDay,
				Items: []trade.SalesLine{{
					ReadyItemID: shirt.ID, Quality: "A", Quantity: testutil.Dec("1"), UnitPrice: testutil.Dec("5"),
				}},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sold++
			case errors.Is(err, shared.ErrInsufficientStock):
				refused++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, 10, sold)
	assert.Equal(t, 10, refused)
	assert.True(t, fx.CurrentStock(t, ref).IsZero())
	assert.Zero(t, fx.Locker.Held())

	account, err := fx.Repos().Accounts().FindByCustomer(ctx, fx.Scope, buyer.ID)
	require.NoError(t, err)
	assert.True(t, account.CurrentBalance.Equal(testutil.Dec("50")))
}

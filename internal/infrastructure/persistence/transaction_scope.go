package persistence

import (
	"context"

	"github.com/erp/backoffice/internal/application/txn"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/production"
	"github.com/erp/backoffice/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements txn.Scope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos txn.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepositories(tx))
	})
}

// GormRepositories provides every ledger repository over one connection or transaction.
type GormRepositories struct {
	tx *gorm.DB
}

// NewGormRepositories creates repositories bound to db
func NewGormRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{tx: db}
}

// RawMaterials returns the raw material repository
func (r *GormRepositories) RawMaterials() catalog.RawMaterialRepository {
	return NewGormRawMaterialRepository(r.tx)
}

// ReadyItems returns the ready item repository
func (r *GormRepositories) ReadyItems() catalog.ReadyItemRepository {
	return NewGormReadyItemRepository(r.tx)
}

// Customers returns the customer repository
func (r *GormRepositories) Customers() partner.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

// StockEntries returns the stock entry repository
func (r *GormRepositories) StockEntries() inventory.StockEntryRepository {
	return NewGormStockEntryRepository(r.tx)
}

// Recipes returns the recipe repository
func (r *GormRepositories) Recipes() production.RecipeRepository {
	return NewGormRecipeRepository(r.tx)
}

// Propositions returns the proposition repository
func (r *GormRepositories) Propositions() production.PropositionRepository {
	return NewGormPropositionRepository(r.tx)
}

// Batches returns the production batch repository
func (r *GormRepositories) Batches() production.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

// Consumptions returns the material consumption repository
func (r *GormRepositories) Consumptions() production.ConsumptionRepository {
	return NewGormConsumptionRepository(r.tx)
}

// SalesOrders returns the sales order repository
func (r *GormRepositories) SalesOrders() trade.SalesOrderRepository {
	return NewGormSalesOrderRepository(r.tx)
}

// PurchaseOrders returns the purchase order repository
func (r *GormRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// Orders returns the order reader used by account computations
func (r *GormRepositories) Orders() finance.OrderReader {
	return NewGormOrderReader(r.tx)
}

// Accounts returns the customer account repository
func (r *GormRepositories) Accounts() finance.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// Payments returns the payment repository
func (r *GormRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// CashEntries returns the cash book repository
func (r *GormRepositories) CashEntries() finance.CashEntryRepository {
	return NewGormCashEntryRepository(r.tx)
}

// Ensure GormTransactionScope implements txn.Scope
var _ txn.Scope = (*GormTransactionScope)(nil)

// Ensure GormRepositories implements txn.Repositories
var _ txn.Repositories = (*GormRepositories)(nil)

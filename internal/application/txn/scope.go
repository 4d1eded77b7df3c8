// Package txn runs ledger mutations atomically: under the ledger locks they touch
// and inside one database transaction.
package txn

import (
	"context"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/production"
	"github.com/erp/backoffice/internal/domain/trade"
)

// Scope provides transactional access to the ledger repositories.
// When a function is executed within a scope, all repository operations are part
// of the same database transaction and are committed or rolled back atomically.
type Scope interface {
	// Execute runs fn within a transaction; an error from fn rolls it back
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides every repository of the ledger. All repositories returned
// by one value share the same underlying transaction.
type Repositories interface {
	RawMaterials() catalog.RawMaterialRepository
	ReadyItems() catalog.ReadyItemRepository
	Customers() partner.CustomerRepository
	StockEntries() inventory.StockEntryRepository
	Recipes() production.RecipeRepository
	Propositions() production.PropositionRepository
	Batches() production.BatchRepository
	Consumptions() production.ConsumptionRepository
	SalesOrders() trade.SalesOrderRepository
	PurchaseOrders() trade.PurchaseOrderRepository
	Orders() finance.OrderReader
	Accounts() finance.AccountRepository
	Payments() finance.PaymentRepository
	CashEntries() finance.CashEntryRepository
}

// NoOpScope runs functions directly against a fixed set of repositories without a
// transaction. It is used in tests and wherever atomicity is provided elsewhere.
type NoOpScope struct {
	repos Repositories
}

// NewNoOpScope creates a NoOpScope over the given repositories
func NewNoOpScope(repos Repositories) *NoOpScope {
	return &NoOpScope{repos: repos}
}

// Execute runs fn without a real transaction
func (s *NoOpScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.repos)
}

var _ Scope = (*NoOpScope)(nil)

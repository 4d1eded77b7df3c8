package txn

import (
	"fmt"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountKey is the lock key of a customer's account
func AccountKey(scope shared.Scope, customerID uuid.UUID) string {
	return fmt.Sprintf("account:%s:%s", scope.TenantID, customerID)
}

// CashKey is the lock key of the tenant's cash book
func CashKey(scope shared.Scope) string {
	return fmt.Sprintf("cash:%s", scope.TenantID)
}

// RecipeKey serializes changes to the recipes of a ready item. Production runs hold
// it so the recipe set cannot change between planning and posting.
func RecipeKey(scope shared.Scope, readyItemID uuid.UUID) string {
	return fmt.Sprintf("recipe:%s:%s", scope.TenantID, readyItemID)
}

// OrderKey serializes changes to one sales or purchase order, which both order
// edits and linked payments write to
func OrderKey(scope shared.Scope, orderID uuid.UUID) string {
	return fmt.Sprintf("order:%s:%s", scope.TenantID, orderID)
}

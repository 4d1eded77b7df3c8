package partner

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
)

// AggregateTypeCustomer is the aggregate type name used in events
const AggregateTypeCustomer = "Customer"

// Customer is a trading counterparty. The same customer can both buy ready items
// and supply raw materials, so one account tracks both directions.
type Customer struct {
	shared.TenantAggregateRoot
	Name    string
	Contact string
	Address string
}

// NewCustomer creates a new customer
func NewCustomer(scope shared.Scope, name, contact, address string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.Errorf(shared.ErrInvalidInput, "customer name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.Errorf(shared.ErrInvalidInput, "customer name cannot exceed 200 characters")
	}
	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		Name:                name,
		Contact:             strings.TrimSpace(contact),
		Address:             strings.TrimSpace(address),
	}, nil
}

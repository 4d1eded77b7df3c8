package trade

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderType names the two order kinds a payment can be linked to
type OrderType string

const (
	OrderTypeSales    OrderType = "SALES"
	OrderTypePurchase OrderType = "PURCHASE"
)

// ParseOrderType parses an order type, ignoring case
func ParseOrderType(s string) (OrderType, error) {
	switch t := OrderType(strings.ToUpper(strings.TrimSpace(s))); t {
	case OrderTypeSales, OrderTypePurchase:
		return t, nil
	}
	return "", shared.Errorf(shared.ErrInvalidOperation, "Invalid order type: %s. Use SALES or PURCHASE", s)
}

// orderNumberOr returns number, or a prefix plus the first block of id when number is blank
func orderNumberOr(number, prefix string, id uuid.UUID) string {
	if n := strings.TrimSpace(number); n != "" {
		return n
	}
	return prefix + "-" + strings.ToUpper(id.String()[:8])
}

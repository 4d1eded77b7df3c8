package inventory

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Operation is the direction of a manual stock adjustment
type Operation string

const (
	OperationAdd      Operation = "ADD"
	OperationSubtract Operation = "SUBTRACT"
)

// ParseOperation parses an adjustment operation, ignoring case
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(strings.ToUpper(strings.TrimSpace(s))); op {
	case OperationAdd, OperationSubtract:
		return op, nil
	}
	return "", shared.Errorf(shared.ErrInvalidOperation, "Invalid operation: %s. Use ADD or SUBTRACT", s)
}

// Adjustment is a manual correction posted to a stock ledger
type Adjustment struct {
	Date      time.Time
	Quantity  decimal.Decimal
	Operation string
	Remarks   string
}

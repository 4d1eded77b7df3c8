package production

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeBatch is the aggregate type name used in events
const AggregateTypeBatch = "ProductionBatch"

// Batch records one production run of a ready item at a quality grade
type Batch struct {
	shared.TenantAggregateRoot
	ReadyItemID      uuid.UUID
	Quality          string
	QuantityProduced decimal.Decimal
	ProductionDate   time.Time
	BatchNumber      string
	Remarks          string
}

// NewBatch creates a new production batch
func NewBatch(scope shared.Scope, readyItemID uuid.UUID, quality string, produced decimal.Decimal, date time.Time, batchNumber, remarks string) (*Batch, error) {
	if readyItemID == uuid.Nil {
		return nil, shared.Errorf(shared.ErrInvalidInput, "ready item id is required")
	}
	if !produced.IsPositive() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "quantity produced must be positive")
	}
	if len(batchNumber) > 50 {
		return nil, shared.Errorf(shared.ErrInvalidInput, "batch number cannot exceed 50 characters")
	}
	return &Batch{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		ReadyItemID:         readyItemID,
		Quality:             strings.TrimSpace(quality),
		QuantityProduced:    produced,
		ProductionDate:      shared.Day(date),
		BatchNumber:         strings.TrimSpace(batchNumber),
		Remarks:             remarks,
	}, nil
}

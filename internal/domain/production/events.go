package production

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeProductionCompleted  = "ProductionCompleted"
	EventTypeDeviationCheckFailed = "DeviationCheckFailed"
)

// MaterialUsage is one consumed material in an event payload
type MaterialUsage struct {
	RawMaterialID uuid.UUID       `json:"raw_material_id"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// ProductionCompletedEvent is raised after a production run is committed
type ProductionCompletedEvent struct {
	shared.BaseDomainEvent
	BatchID          uuid.UUID       `json:"batch_id"`
	BatchNumber      string          `json:"batch_number"`
	ReadyItemID      uuid.UUID       `json:"ready_item_id"`
	Quality          string          `json:"quality"`
	QuantityProduced decimal.Decimal `json:"quantity_produced"`
	Materials        []MaterialUsage `json:"materials"`
}

// NewProductionCompletedEvent creates a new ProductionCompletedEvent
func NewProductionCompletedEvent(batch *Batch, consumed map[uuid.UUID]decimal.Decimal) *ProductionCompletedEvent {
	materials := make([]MaterialUsage, 0, len(consumed))
	for id, qty := range consumed {
		materials = append(materials, MaterialUsage{RawMaterialID: id, Quantity: qty})
	}
	return &ProductionCompletedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeProductionCompleted, AggregateTypeBatch, batch.ID, batch.TenantID),
		BatchID:          batch.ID,
		BatchNumber:      batch.BatchNumber,
		ReadyItemID:      batch.ReadyItemID,
		Quality:          batch.Quality,
		QuantityProduced: batch.QuantityProduced,
		Materials:        materials,
	}
}

// DeviationCheckFailedEvent is raised when deviation analysis failed and the ready
// item was reset to NORMAL
type DeviationCheckFailedEvent struct {
	shared.BaseDomainEvent
	ReadyItemID uuid.UUID `json:"ready_item_id"`
	Quality     string    `json:"quality"`
	Error       string    `json:"error"`
}

// NewDeviationCheckFailedEvent creates a new DeviationCheckFailedEvent
func NewDeviationCheckFailedEvent(tenantID, readyItemID uuid.UUID, quality string, cause error) *DeviationCheckFailedEvent {
	return &DeviationCheckFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDeviationCheckFailed, "ReadyItem", readyItemID, tenantID),
		ReadyItemID:     readyItemID,
		Quality:         quality,
		Error:           cause.Error(),
	}
}

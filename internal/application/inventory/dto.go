package inventory

import (
	"time"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockEntryResponse represents a daily stock row
type StockEntryResponse struct {
	ID       uuid.UUID          `json:"id"`
	ItemKind inventory.ItemKind `json:"item_kind"`
	ItemID   uuid.UUID          `json:"item_id"`
	Quality  string             `json:"quality,omitempty"`
	Date     time.Time          `json:"date"`
	Opening  decimal.Decimal    `json:"opening_stock"`
	Added    decimal.Decimal    `json:"added"`
	Consumed decimal.Decimal    `json:"consumed"`
	Closing  decimal.Decimal    `json:"closing_stock"`
	Unit     string             `json:"unit"`
	Remarks  string             `json:"remarks,omitempty"`
}

// StockLevelResponse is the current stock of one ledger
type StockLevelResponse struct {
	ItemKind   inventory.ItemKind `json:"item_kind"`
	ItemID     uuid.UUID          `json:"item_id"`
	Quality    string             `json:"quality,omitempty"`
	Quantity   decimal.Decimal    `json:"quantity"`
	Unit       string             `json:"unit"`
	LastUpdate time.Time          `json:"last_update"`
}

// RecordDailyRequest sets the movement fields of one day explicitly
type RecordDailyRequest struct {
	Item     inventory.ItemRef
	Date     time.Time
	Opening  decimal.Decimal
	Added    decimal.Decimal
	Consumed decimal.Decimal
}

// AdjustStockRequest is a manual stock correction
type AdjustStockRequest struct {
	Item      inventory.ItemRef
	Date      time.Time
	Quantity  decimal.Decimal
	Operation string
	Remarks   string
}

// ToStockEntryResponse converts a domain row to a response; nil stays nil
func ToStockEntryResponse(e *inventory.StockEntry) *StockEntryResponse {
	if e == nil {
		return nil
	}
	return &StockEntryResponse{
		ID:       e.ID,
		ItemKind: e.Item.Kind,
		ItemID:   e.Item.ItemID,
		Quality:  e.Item.Quality,
		Date:     e.Date,
		Opening:  e.Opening,
		Added:    e.Added,
		Consumed: e.Consumed,
		Closing:  e.Closing,
		Unit:     e.Unit,
		Remarks:  e.Remarks,
	}
}

// ToStockEntryResponses converts a slice of rows
func ToStockEntryResponses(entries []inventory.StockEntry) []StockEntryResponse {
	out := make([]StockEntryResponse, len(entries))
	for i := range entries {
		out[i] = *ToStockEntryResponse(&entries[i])
	}
	return out
}

// ToStockLevelResponse converts the latest row of a ledger to its stock level
func ToStockLevelResponse(e inventory.StockEntry) StockLevelResponse {
	return StockLevelResponse{
		ItemKind:   e.Item.Kind,
		ItemID:     e.Item.ItemID,
		Quality:    e.Item.Quality,
		Quantity:   e.Closing,
		Unit:       e.Unit,
		LastUpdate: e.Date,
	}
}

package production

import (
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/production"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UpsertRecipeRequest sets the quantity per unit for a (ready item, raw material,
// quality) triple. An empty unit takes the raw material's unit.
type UpsertRecipeRequest struct {
	ReadyItemID     uuid.UUID
	RawMaterialID   uuid.UUID
	Quality         string
	QuantityPerUnit decimal.Decimal
	Unit            string
}

// DeriveRecipeRequest derives a recipe from an observed consumption
type DeriveRecipeRequest struct {
	ReadyItemID   uuid.UUID
	RawMaterialID uuid.UUID
	Quality       string
	Consumed      decimal.Decimal
	ReadyQuantity decimal.Decimal
	Unit          string
}

// ManualConsumptionRequest records raw material drawn outside a production run.
// When ReadyItemID, Quality and ReadyItemQuantity are all set the consumption
// also derives the recipe for that triple.
type ManualConsumptionRequest struct {
	RawMaterialID     uuid.UUID
	Quantity          decimal.Decimal
	Date              time.Time
	Remarks           string
	ReadyItemID       *uuid.UUID
	Quality           string
	ReadyItemQuantity decimal.Decimal
	Unit              string
}

// PropositionLine is the expected share of one raw material
type PropositionLine struct {
	RawMaterialID      uuid.UUID
	ExpectedPercentage decimal.Decimal
}

// ProduceRequest asks for one production run
type ProduceRequest struct {
	ReadyItemID      uuid.UUID
	Quality          string
	QuantityProduced decimal.Decimal
	Date             time.Time
	BatchNumber      string
	Remarks          string
}

// DeviationRequest previews the deviation of a hypothetical run
type DeviationRequest struct {
	ReadyItemID      uuid.UUID
	Quality          string
	QuantityProduced decimal.Decimal
	Actual           map[uuid.UUID]decimal.Decimal
}

// RecipeResponse represents a recipe row
type RecipeResponse struct {
	ID              uuid.UUID       `json:"id"`
	ReadyItemID     uuid.UUID       `json:"ready_item_id"`
	RawMaterialID   uuid.UUID       `json:"raw_material_id"`
	Quality         string          `json:"quality"`
	QuantityPerUnit decimal.Decimal `json:"quantity_required_per_unit"`
	Unit            string          `json:"unit"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PropositionResponse represents one proposition
type PropositionResponse struct {
	ID                 uuid.UUID       `json:"id"`
	RawMaterialID      uuid.UUID       `json:"raw_material_id"`
	ExpectedPercentage decimal.Decimal `json:"expected_percentage"`
}

// PropositionSetResponse is every proposition of a ready item with its total
type PropositionSetResponse struct {
	ReadyItemID  uuid.UUID             `json:"ready_item_id"`
	Propositions []PropositionResponse `json:"propositions"`
	Total        decimal.Decimal       `json:"total_percentage"`
	Valid        bool                  `json:"valid"`
}

// DeviationResponse is the outcome of a deviation analysis
type DeviationResponse struct {
	ExtraQuantityUsed   decimal.Decimal               `json:"extra_quantity_used"`
	LessQuantityUsed    decimal.Decimal               `json:"less_quantity_used"`
	PercentageDeviation decimal.Decimal               `json:"percentage_deviation"`
	QualityImpact       catalog.ImpactLevel           `json:"quality_impact"`
	CostImpact          catalog.ImpactLevel           `json:"cost_impact"`
	ActualPercentages   map[uuid.UUID]decimal.Decimal `json:"actual_percentages"`
}

// BatchResponse represents a production batch
type BatchResponse struct {
	ID               uuid.UUID                     `json:"id"`
	ReadyItemID      uuid.UUID                     `json:"ready_item_id"`
	Quality          string                        `json:"quality"`
	QuantityProduced decimal.Decimal               `json:"quantity_produced"`
	ProductionDate   time.Time                     `json:"production_date"`
	BatchNumber      string                        `json:"batch_number"`
	Remarks          string                        `json:"remarks,omitempty"`
	Materials        map[uuid.UUID]decimal.Decimal `json:"materials,omitempty"`
	Deviation        *catalog.DeviationSnapshot    `json:"deviation,omitempty"`
}

// ConsumptionResponse represents a material consumption row
type ConsumptionResponse struct {
	ID                uuid.UUID                  `json:"id"`
	RawMaterialID     uuid.UUID                  `json:"raw_material_id"`
	Quantity          decimal.Decimal            `json:"quantity"`
	Type              production.ConsumptionType `json:"consumption_type"`
	ReadyItemID       *uuid.UUID                 `json:"ready_item_id,omitempty"`
	Quality           string                     `json:"quality,omitempty"`
	ReadyItemQuantity decimal.Decimal            `json:"ready_item_quantity"`
	BatchID           *uuid.UUID                 `json:"batch_id,omitempty"`
	Date              time.Time                  `json:"consumption_date"`
	Remarks           string                     `json:"remarks,omitempty"`
}

// ToRecipeResponse converts a domain recipe
func ToRecipeResponse(r *production.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:              r.ID,
		ReadyItemID:     r.ReadyItemID,
		RawMaterialID:   r.RawMaterialID,
		Quality:         r.Quality,
		QuantityPerUnit: r.QuantityPerUnit,
		Unit:            r.Unit,
		UpdatedAt:       r.UpdatedAt,
	}
}

// ToPropositionSetResponse converts the propositions of a ready item
func ToPropositionSetResponse(readyItemID uuid.UUID, props []production.Proposition) PropositionSetResponse {
	out := PropositionSetResponse{
		ReadyItemID:  readyItemID,
		Propositions: make([]PropositionResponse, len(props)),
		Total:        production.PropositionTotal(props),
		Valid:        production.ValidatePropositions(props),
	}
	for i, p := range props {
		out.Propositions[i] = PropositionResponse{
			ID:                 p.ID,
			RawMaterialID:      p.RawMaterialID,
			ExpectedPercentage: p.ExpectedPercentage,
		}
	}
	return out
}

// ToDeviationResponse converts an analysis result
func ToDeviationResponse(d production.Deviation, actual map[uuid.UUID]decimal.Decimal) DeviationResponse {
	level := d.Impact()
	return DeviationResponse{
		ExtraQuantityUsed:   d.ExtraQuantityUsed,
		LessQuantityUsed:    d.LessQuantityUsed,
		PercentageDeviation: d.PercentageDeviation,
		QualityImpact:       level,
		CostImpact:          level,
		ActualPercentages:   production.ActualPercentages(actual),
	}
}

// ToBatchResponse converts a batch
func ToBatchResponse(b *production.Batch) BatchResponse {
	return BatchResponse{
		ID:               b.ID,
		ReadyItemID:      b.ReadyItemID,
		Quality:          b.Quality,
		QuantityProduced: b.QuantityProduced,
		ProductionDate:   b.ProductionDate,
		BatchNumber:      b.BatchNumber,
		Remarks:          b.Remarks,
	}
}

// ToConsumptionResponse converts a consumption row
func ToConsumptionResponse(c *production.MaterialConsumption) ConsumptionResponse {
	return ConsumptionResponse{
		ID:                c.ID,
		RawMaterialID:     c.RawMaterialID,
		Quantity:          c.Quantity,
		Type:              c.Type,
		ReadyItemID:       c.ReadyItemID,
		Quality:           c.Quality,
		ReadyItemQuantity: c.ReadyItemQuantity,
		BatchID:           c.BatchID,
		Date:              c.Date,
		Remarks:           c.Remarks,
	}
}

package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeStockEntry is the aggregate type name used in events
const AggregateTypeStockEntry = "StockEntry"

// ItemKind distinguishes the two stock ledgers
type ItemKind string

const (
	ItemKindRawMaterial ItemKind = "RAW_MATERIAL"
	ItemKindReadyItem   ItemKind = "READY_ITEM"
)

// IsValid checks if the kind is known
func (k ItemKind) IsValid() bool {
	return k == ItemKindRawMaterial || k == ItemKindReadyItem
}

func (k ItemKind) label() string {
	if k == ItemKindReadyItem {
		return "ready item"
	}
	return "raw material"
}

// ItemRef identifies one stock ledger: a raw material, or a ready item at a quality grade
type ItemRef struct {
	Kind    ItemKind
	ItemID  uuid.UUID
	Quality string
}

// RawMaterialRef references the stock ledger of a raw material
func RawMaterialRef(id uuid.UUID) ItemRef {
	return ItemRef{Kind: ItemKindRawMaterial, ItemID: id}
}

// ReadyItemRef references the stock ledger of a ready item at a quality grade
func ReadyItemRef(id uuid.UUID, quality string) ItemRef {
	return ItemRef{Kind: ItemKindReadyItem, ItemID: id, Quality: strings.TrimSpace(quality)}
}

// Validate checks the reference is well formed
func (r ItemRef) Validate() error {
	if !r.Kind.IsValid() {
		return shared.Errorf(shared.ErrInvalidInput, "unknown stock item kind %q", r.Kind)
	}
	if r.ItemID == uuid.Nil {
		return shared.Errorf(shared.ErrInvalidInput, "%s id is required", r.Kind.label())
	}
	if r.Kind == ItemKindRawMaterial && r.Quality != "" {
		return shared.Errorf(shared.ErrInvalidInput, "raw material stock has no quality grade")
	}
	return nil
}

// LockKey is the serialization key for writers of this ledger
func (r ItemRef) LockKey(scope shared.Scope) string {
	return fmt.Sprintf("stock:%s:%s:%s:%s", scope.TenantID, r.Kind, r.ItemID, r.Quality)
}

// String describes the item for error messages
func (r ItemRef) String() string {
	if r.Quality != "" {
		return fmt.Sprintf("%s %s (quality %s)", r.Kind.label(), r.ItemID, r.Quality)
	}
	return fmt.Sprintf("%s %s", r.Kind.label(), r.ItemID)
}

// StockEntry is the daily stock row of one item. Added holds purchased or produced
// quantities and Consumed holds consumed or sold quantities.
type StockEntry struct {
	shared.TenantAggregateRoot
	Item     ItemRef
	Date     time.Time
	Opening  decimal.Decimal
	Added    decimal.Decimal
	Consumed decimal.Decimal
	Closing  decimal.Decimal
	Unit     string
	Remarks  string
}

// NewStockEntry creates an empty row for the given day seeded with an opening balance
func NewStockEntry(scope shared.Scope, item ItemRef, date time.Time, opening decimal.Decimal, unit string) (*StockEntry, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if opening.IsNegative() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "opening stock cannot be negative")
	}
	e := &StockEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		Item:                item,
		Date:                shared.Day(date),
		Opening:             opening,
		Added:               decimal.Zero,
		Consumed:            decimal.Zero,
		Unit:                unit,
	}
	e.recalculate()
	return e, nil
}

func (e *StockEntry) recalculate() {
	e.Closing = e.Opening.Add(e.Added).Sub(e.Consumed)
}

// Set overwrites the movement fields of the row
func (e *StockEntry) Set(opening, added, consumed decimal.Decimal) error {
	if opening.IsNegative() || added.IsNegative() || consumed.IsNegative() {
		return shared.Errorf(shared.ErrInvalidInput, "stock quantities cannot be negative")
	}
	e.Opening = opening
	e.Added = added
	e.Consumed = consumed
	e.recalculate()
	e.Touch()
	return nil
}

// Add accumulates a positive movement into the row
func (e *StockEntry) Add(qty decimal.Decimal) {
	e.Added = e.Added.Add(qty)
	e.recalculate()
	e.Touch()
}

// Consume accumulates a negative movement into the row
func (e *StockEntry) Consume(qty decimal.Decimal) {
	e.Consumed = e.Consumed.Add(qty)
	e.recalculate()
	e.Touch()
}

// Reopen replaces the opening balance, carrying the previous row's closing forward.
// It reports whether anything changed.
func (e *StockEntry) Reopen(opening decimal.Decimal) bool {
	if e.Opening.Equal(opening) {
		return false
	}
	e.Opening = opening
	e.recalculate()
	e.Touch()
	return true
}

// IsBalanced reports whether closing = opening + added − consumed holds
func (e *StockEntry) IsBalanced() bool {
	return e.Closing.Equal(e.Opening.Add(e.Added).Sub(e.Consumed))
}

package catalog

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeReadyItem is the aggregate type name used in events
const AggregateTypeReadyItem = "ReadyItem"

// ImpactLevel classifies how a production run's material usage affected an item
type ImpactLevel string

const (
	ImpactNormal ImpactLevel = "NORMAL"
	ImpactHigh   ImpactLevel = "HIGH"
	ImpactLow    ImpactLevel = "LOW"
)

// IsValid reports whether the level is known
func (l ImpactLevel) IsValid() bool {
	switch l {
	case ImpactNormal, ImpactHigh, ImpactLow:
		return true
	}
	return false
}

// String returns the string representation of ImpactLevel
func (l ImpactLevel) String() string {
	return string(l)
}

// DeviationSnapshot is the outcome of the latest deviation check for a ready item
type DeviationSnapshot struct {
	QualityImpact       ImpactLevel
	CostImpact          ImpactLevel
	ExtraQuantityUsed   decimal.Decimal
	LessQuantityUsed    decimal.Decimal
	PercentageDeviation decimal.Decimal
	CheckedAt           *time.Time
}

// NormalSnapshot is a snapshot with NORMAL impacts and zero deviations
func NormalSnapshot(checkedAt time.Time) DeviationSnapshot {
	return DeviationSnapshot{
		QualityImpact:       ImpactNormal,
		CostImpact:          ImpactNormal,
		ExtraQuantityUsed:   decimal.Zero,
		LessQuantityUsed:    decimal.Zero,
		PercentageDeviation: decimal.Zero,
		CheckedAt:           &checkedAt,
	}
}

// ReadyItem is a finished good produced from raw materials and sold by quality grade
type ReadyItem struct {
	shared.TenantAggregateRoot
	Code      string
	Name      string
	Unit      string
	Deviation DeviationSnapshot
}

// NewReadyItem creates a new ready item with a NORMAL deviation snapshot
func NewReadyItem(scope shared.Scope, code, name, unit string) (*ReadyItem, error) {
	if err := validateItem(code, name, unit); err != nil {
		return nil, err
	}
	item := &ReadyItem{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		Unit:                strings.TrimSpace(unit),
	}
	item.Deviation = NormalSnapshot(item.CreatedAt)
	item.Deviation.CheckedAt = nil
	return item, nil
}

// Update changes the descriptive fields
func (r *ReadyItem) Update(name, unit string) error {
	if err := validateItem(r.Code, name, unit); err != nil {
		return err
	}
	r.Name = strings.TrimSpace(name)
	r.Unit = strings.TrimSpace(unit)
	r.Touch()
	return nil
}

// RecordDeviation stores the outcome of a deviation check
func (r *ReadyItem) RecordDeviation(snapshot DeviationSnapshot) {
	if !snapshot.QualityImpact.IsValid() {
		snapshot.QualityImpact = ImpactNormal
	}
	if !snapshot.CostImpact.IsValid() {
		snapshot.CostImpact = ImpactNormal
	}
	r.Deviation = snapshot
	r.Touch()
}

// ResetDeviation puts the item back to NORMAL with zero deviations
func (r *ReadyItem) ResetDeviation(at time.Time) {
	r.RecordDeviation(NormalSnapshot(at))
}

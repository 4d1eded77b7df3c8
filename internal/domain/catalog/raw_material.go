package catalog

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
)

// AggregateTypeRawMaterial is the aggregate type name used in events
const AggregateTypeRawMaterial = "RawMaterial"

// RawMaterial is a purchased input consumed by production
type RawMaterial struct {
	shared.TenantAggregateRoot
	Code        string
	Name        string
	Unit        string
	Description string
}

// NewRawMaterial creates a new raw material
func NewRawMaterial(scope shared.Scope, code, name, unit string) (*RawMaterial, error) {
	if err := validateItem(code, name, unit); err != nil {
		return nil, err
	}
	return &RawMaterial{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		Unit:                strings.TrimSpace(unit),
	}, nil
}

// Update changes the descriptive fields
func (m *RawMaterial) Update(name, unit, description string) error {
	if err := validateItem(m.Code, name, unit); err != nil {
		return err
	}
	m.Name = strings.TrimSpace(name)
	m.Unit = strings.TrimSpace(unit)
	m.Description = description
	m.Touch()
	return nil
}

package catalog

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
)

func validateItem(code, name, unit string) error {
	if strings.TrimSpace(name) == "" {
		return shared.Errorf(shared.ErrInvalidInput, "name cannot be empty")
	}
	if len(name) > 200 {
		return shared.Errorf(shared.ErrInvalidInput, "name cannot exceed 200 characters")
	}
	if len(code) > 50 {
		return shared.Errorf(shared.ErrInvalidInput, "code cannot exceed 50 characters")
	}
	if strings.TrimSpace(unit) == "" {
		return shared.Errorf(shared.ErrInvalidInput, "unit cannot be empty")
	}
	return nil
}

package shared

import (
	"github.com/google/uuid"
)

// Scope identifies the organization, company and acting user a call runs for.
// It is passed explicitly to every ledger operation and applied by repositories.
type Scope struct {
	TenantID  uuid.UUID
	CompanyID uuid.UUID
	UserID    *uuid.UUID
}

// NewScope creates a scope without an acting user
func NewScope(tenantID, companyID uuid.UUID) Scope {
	return Scope{TenantID: tenantID, CompanyID: companyID}
}

// WithUser returns a copy of the scope acting as the given user
func (s Scope) WithUser(userID uuid.UUID) Scope {
	s.UserID = &userID
	return s
}

// Validate checks that the scope names an organization
func (s Scope) Validate() error {
	if s.TenantID == uuid.Nil {
		return Errorf(ErrInvalidInput, "tenant id is required")
	}
	return nil
}

// HasTenantScope is implemented by records that belong to a tenant scope.
// Persistence uses it to stamp and guard rows instead of inspecting fields.
type HasTenantScope interface {
	TenantScope() Scope
}

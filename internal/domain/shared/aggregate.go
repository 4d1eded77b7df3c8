package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity holds the identity and timestamps of a persisted row
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BaseAggregateRoot adds the version bumped on every change
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

// TenantAggregateRoot is the root of every ledger aggregate: it belongs to one
// tenant and company and remembers who created it.
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID  uuid.UUID
	CompanyID uuid.UUID
	CreatedBy *uuid.UUID
}

// NewTenantAggregateRoot starts a version 1 aggregate owned by scope
func NewTenantAggregateRoot(scope Scope) TenantAggregateRoot {
	now := time.Now()
	return TenantAggregateRoot{
		BaseAggregateRoot: BaseAggregateRoot{
			BaseEntity: BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			Version:    1,
		},
		TenantID:  scope.TenantID,
		CompanyID: scope.CompanyID,
		CreatedBy: scope.UserID,
	}
}

// TenantScope returns the scope the aggregate belongs to
func (t *TenantAggregateRoot) TenantScope() Scope {
	return Scope{TenantID: t.TenantID, CompanyID: t.CompanyID}
}

// Touch bumps the version and the update timestamp
func (t *TenantAggregateRoot) Touch() {
	t.Version++
	t.UpdatedAt = time.Now()
}

var _ HasTenantScope = (*TenantAggregateRoot)(nil)

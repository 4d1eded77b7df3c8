// Package tenant provides multi-tenant database scoping for GORM.
//
// Repositories receive an explicit shared.Scope and narrow every query with Apply:
//
//	r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).Find(&rows)
//
// A create guard registered with RegisterCallbacks rejects rows that carry no tenant.
package tenant

import (
	"errors"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is returned when a scoped row or query has no tenant
var ErrTenantIDRequired = errors.New("tenant_id is required")

// Apply narrows a query to the scope's tenant, and to its company when one is set
func Apply(scope shared.Scope) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if scope.TenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		db = db.Where("tenant_id = ?", scope.TenantID)
		if scope.CompanyID != uuid.Nil {
			db = db.Where("company_id = ?", scope.CompanyID)
		}
		return db
	}
}

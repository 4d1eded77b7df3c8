package tenant

import (
	"reflect"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterCallbacks installs the create guard on db.
// Reads and writes are narrowed explicitly through Apply.
func RegisterCallbacks(db *gorm.DB) error {
	return db.Callback().Create().Before("gorm:create").Register("tenant:guard_create", guardCreate)
}

// guardCreate fails inserts of scoped rows whose tenant is empty
func guardCreate(db *gorm.DB) {
	if db.Statement == nil || db.Statement.Dest == nil {
		return
	}
	for _, row := range scopedRows(db.Statement.Dest) {
		if row.TenantScope().TenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return
		}
	}
}

func scopedRows(dest any) []shared.HasTenantScope {
	if row, ok := dest.(shared.HasTenantScope); ok {
		return []shared.HasTenantScope{row}
	}
	v := reflect.ValueOf(dest)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil
	}
	rows := make([]shared.HasTenantScope, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if elem.Kind() != reflect.Pointer && elem.CanAddr() {
			elem = elem.Addr()
		}
		if row, ok := elem.Interface().(shared.HasTenantScope); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/erp/backoffice/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const cashBookOrder = "entry_date ASC, sequence ASC"

// GormCashEntryRepository implements CashEntryRepository using GORM
type GormCashEntryRepository struct {
	db *gorm.DB
}

// NewGormCashEntryRepository creates a new GormCashEntryRepository
func NewGormCashEntryRepository(db *gorm.DB) *GormCashEntryRepository {
	return &GormCashEntryRepository{db: db}
}

func (r *GormCashEntryRepository) book(ctx context.Context, scope shared.Scope) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.CashEntryModel{}).Scopes(tenant.Apply(scope))
}

func (r *GormCashEntryRepository) first(query *gorm.DB) (*finance.CashEntry, error) {
	var model models.CashEntryModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormCashEntryRepository) find(query *gorm.DB) ([]finance.CashEntry, error) {
	var rows []models.CashEntryModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]finance.CashEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// FindByID finds a cash entry by ID
func (r *GormCashEntryRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*finance.CashEntry, error) {
	return r.first(r.book(ctx, scope).Where("id = ?", id))
}

// FindLatest returns the last entry of the book
func (r *GormCashEntryRepository) FindLatest(ctx context.Context, scope shared.Scope) (*finance.CashEntry, error) {
	return r.first(r.book(ctx, scope).Order("entry_date DESC, sequence DESC"))
}

// FindLastBefore returns the last entry dated strictly before date
func (r *GormCashEntryRepository) FindLastBefore(ctx context.Context, scope shared.Scope, date time.Time) (*finance.CashEntry, error) {
	return r.first(r.book(ctx, scope).
		Where("entry_date < ?", shared.Day(date)).
		Order("entry_date DESC, sequence DESC"))
}

// FindFrom returns every entry dated on or after date, in book order
func (r *GormCashEntryRepository) FindFrom(ctx context.Context, scope shared.Scope, date time.Time) ([]finance.CashEntry, error) {
	return r.find(r.book(ctx, scope).
		Where("entry_date >= ?", shared.Day(date)).
		Order(cashBookOrder))
}

// FindRange returns the entries dated within the range, in book order
func (r *GormCashEntryRepository) FindRange(ctx context.Context, scope shared.Scope, dr shared.DateRange) ([]finance.CashEntry, error) {
	return r.find(r.book(ctx, scope).
		Where("entry_date >= ? AND entry_date <= ?", shared.Day(dr.From), shared.Day(dr.To)).
		Order(cashBookOrder))
}

// NextSequence returns one more than the greatest sequence used in the book
func (r *GormCashEntryRepository) NextSequence(ctx context.Context, scope shared.Scope) (int64, error) {
	var maxSeq *int64
	if err := r.book(ctx, scope).Select("MAX(sequence)").Scan(&maxSeq).Error; err != nil {
		return 0, err
	}
	if maxSeq == nil {
		return 1, nil
	}
	return *maxSeq + 1, nil
}

// Save creates or updates a cash entry
func (r *GormCashEntryRepository) Save(ctx context.Context, entry *finance.CashEntry) error {
	return r.db.WithContext(ctx).Save(models.CashEntryModelFromDomain(entry)).Error
}

// Delete removes a cash entry
func (r *GormCashEntryRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).
		Where("id = ?", id).
		Delete(&models.CashEntryModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ finance.CashEntryRepository = (*GormCashEntryRepository)(nil)

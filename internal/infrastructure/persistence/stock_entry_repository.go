package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/erp/backoffice/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormStockEntryRepository implements StockEntryRepository using GORM
type GormStockEntryRepository struct {
	db *gorm.DB
}

// NewGormStockEntryRepository creates a new GormStockEntryRepository
func NewGormStockEntryRepository(db *gorm.DB) *GormStockEntryRepository {
	return &GormStockEntryRepository{db: db}
}

// ledger narrows a query to one item's stock rows
func (r *GormStockEntryRepository) ledger(ctx context.Context, scope shared.Scope, item inventory.ItemRef) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.StockEntryModel{}).
		Scopes(tenant.Apply(scope)).
		Where("kind = ? AND item_id = ? AND quality = ?", item.Kind, item.ItemID, item.Quality)
}

func (r *GormStockEntryRepository) first(query *gorm.DB) (*inventory.StockEntry, error) {
	var model models.StockEntryModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormStockEntryRepository) find(query *gorm.DB) ([]inventory.StockEntry, error) {
	var rows []models.StockEntryModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]inventory.StockEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// FindLatest returns the row with the greatest date
func (r *GormStockEntryRepository) FindLatest(ctx context.Context, scope shared.Scope, item inventory.ItemRef) (*inventory.StockEntry, error) {
	return r.first(r.ledger(ctx, scope, item).Order("date DESC"))
}

// FindLatestOnOrBefore returns the row with the greatest date not after date
func (r *GormStockEntryRepository) FindLatestOnOrBefore(ctx context.Context, scope shared.Scope, item inventory.ItemRef, date time.Time) (*inventory.StockEntry, error) {
	return r.first(r.ledger(ctx, scope, item).
		Where("date <= ?", shared.Day(date)).
		Order("date DESC"))
}

// FindByDate returns the row for exactly that day
func (r *GormStockEntryRepository) FindByDate(ctx context.Context, scope shared.Scope, item inventory.ItemRef, date time.Time) (*inventory.StockEntry, error) {
	return r.first(r.ledger(ctx, scope, item).Where("date = ?", shared.Day(date)))
}

// FindAfter returns rows dated strictly after date, oldest first
func (r *GormStockEntryRepository) FindAfter(ctx context.Context, scope shared.Scope, item inventory.ItemRef, date time.Time) ([]inventory.StockEntry, error) {
	return r.find(r.ledger(ctx, scope, item).
		Where("date > ?", shared.Day(date)).
		Order("date ASC"))
}

// FindRange returns rows dated within the range, oldest first
func (r *GormStockEntryRepository) FindRange(ctx context.Context, scope shared.Scope, item inventory.ItemRef, dr shared.DateRange) ([]inventory.StockEntry, error) {
	return r.find(r.ledger(ctx, scope, item).
		Where("date >= ? AND date <= ?", shared.Day(dr.From), shared.Day(dr.To)).
		Order("date ASC"))
}

// FindLatestPerItem returns the latest row of every ledger of the given kind
func (r *GormStockEntryRepository) FindLatestPerItem(ctx context.Context, scope shared.Scope, kind inventory.ItemKind) ([]inventory.StockEntry, error) {
	latest := r.db.WithContext(ctx).
		Model(&models.StockEntryModel{}).
		Select("item_id, quality, MAX(date) AS latest_date").
		Scopes(tenant.Apply(scope)).
		Where("kind = ?", kind).
		Group("item_id, quality")

	return r.find(r.db.WithContext(ctx).
		Model(&models.StockEntryModel{}).
		Joins("JOIN (?) latest ON latest.item_id = stock_entries.item_id AND latest.quality = stock_entries.quality AND latest.latest_date = stock_entries.date", latest).
		Scopes(tenant.Apply(scope)).
		Where("stock_entries.kind = ?", kind).
		Order("stock_entries.item_id ASC, stock_entries.quality ASC"))
}

// Save creates or updates a row
func (r *GormStockEntryRepository) Save(ctx context.Context, entry *inventory.StockEntry) error {
	return r.db.WithContext(ctx).Save(models.StockEntryModelFromDomain(entry)).Error
}

var _ inventory.StockEntryRepository = (*GormStockEntryRepository)(nil)

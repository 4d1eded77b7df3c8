package production

import (
	"context"
	"slices"
	"strings"

	appinventory "github.com/erp/backoffice/internal/application/inventory"
	"github.com/erp/backoffice/internal/application/txn"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/production"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductionService records production runs: it draws the recipe materials from
// raw stock, adds the produced quantity to ready-item stock and checks the run
// against the item's propositions
type ProductionService struct {
	runner         *txn.Runner
	analyzer       *DeviationAnalyzer
	clock          shared.Clock
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewProductionService creates a new ProductionService
func NewProductionService(runner *txn.Runner, analyzer *DeviationAnalyzer, clock shared.Clock, zapLogger *zap.Logger) *ProductionService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &ProductionService{
		runner:   runner,
		analyzer: analyzer,
		clock:    clock,
		logger:   zapLogger,
	}
}

// SetEventPublisher sets the event publisher for production events
func (s *ProductionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Produce records a production run.
//
// Every required material is checked before anything is written, so a shortage
// of any one of them leaves all stock untouched. The batch, the consumption rows,
// both stock postings and the deviation snapshot commit together.
func (s *ProductionService) Produce(ctx context.Context, scope shared.Scope, req ProduceRequest) (*BatchResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	quality := strings.TrimSpace(req.Quality)
	readyRef := inventory.ReadyItemRef(req.ReadyItemID, quality)
	if err := readyRef.Validate(); err != nil {
		return nil, err
	}
	if !req.QuantityProduced.IsPositive() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "quantity produced must be positive")
	}

	planned, err := s.plannedMaterials(ctx, scope, req.ReadyItemID, quality)
	if err != nil {
		return nil, err
	}
	keys := []string{readyRef.LockKey(scope), txn.RecipeKey(scope, req.ReadyItemID)}
	for _, id := range planned {
		keys = append(keys, inventory.RawMaterialRef(id).LockKey(scope))
	}

	var (
		events   txn.Events
		batch    *production.Batch
		item     *catalog.ReadyItem
		required map[uuid.UUID]decimal.Decimal
	)
	err = s.runner.Run(ctx, keys, func(repos txn.Repositories) error {
		var err error
		item, err = repos.ReadyItems().FindByID(ctx, scope, req.ReadyItemID)
		if err != nil {
			return err
		}
		recipes, err := repos.Recipes().FindForReadyItem(ctx, scope, req.ReadyItemID, quality)
		if err != nil {
			return err
		}
		required = production.RequiredMaterials(recipes, req.QuantityProduced)
		materials := sortedIDs(required)
		for _, id := range materials {
			if !slices.Contains(planned, id) {
				return shared.Errorf(shared.ErrConcurrencyConflict,
					"recipe of ready item %s changed while the run was being planned", req.ReadyItemID)
			}
		}

		ledger := inventory.NewLedger(repos.StockEntries())
		units := make(map[uuid.UUID]string, len(materials))
		for _, id := range materials {
			ref := inventory.RawMaterialRef(id)
			if units[id], err = appinventory.ItemUnit(ctx, repos, scope, ref); err != nil {
				return err
			}
			if err := ledger.EnsureAvailable(ctx, scope, ref, required[id]); err != nil {
				return err
			}
		}

		batch, err = production.NewBatch(scope, req.ReadyItemID, quality, req.QuantityProduced, req.Date, req.BatchNumber, req.Remarks)
		if err != nil {
			return err
		}
		if err := repos.Batches().Save(ctx, batch); err != nil {
			return err
		}

		today := s.clock.Now()
		for _, id := range materials {
			consumption, err := production.NewProductionConsumption(scope, batch, id, required[id], batch.ProductionDate)
			if err != nil {
				return err
			}
			if err := repos.Consumptions().Save(ctx, consumption); err != nil {
				return err
			}
			if _, err := ledger.DeductStock(ctx, scope, inventory.RawMaterialRef(id), required[id], today, units[id]); err != nil {
				return err
			}
		}
		if _, err := ledger.AddStock(ctx, scope, readyRef, req.QuantityProduced, today, item.Unit); err != nil {
			return err
		}

		s.analyzer.Apply(ctx, repos, scope, item, quality, req.QuantityProduced, required, &events)
		events.Add(production.NewProductionCompletedEvent(batch, required))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithLogger(ctx, s.logger).Info("Production batch recorded",
		zap.String("batch_id", batch.ID.String()),
		zap.String("batch_number", batch.BatchNumber),
		zap.String("ready_item_id", batch.ReadyItemID.String()),
		zap.String("quality", batch.Quality),
		zap.String("quantity_produced", batch.QuantityProduced.String()),
		zap.Int("materials", len(required)),
	)
	if err := events.Publish(ctx, s.eventPublisher); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Failed to publish production events", zap.Error(err))
	}

	resp := ToBatchResponse(batch)
	resp.Materials = required
	deviation := item.Deviation
	resp.Deviation = &deviation
	return &resp, nil
}

// ProductionHistory returns the batches of a ready item, newest first
func (s *ProductionService) ProductionHistory(ctx context.Context, scope shared.Scope, readyItemID uuid.UUID) ([]BatchResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var batches []production.Batch
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		if _, err := repos.ReadyItems().FindByID(ctx, scope, readyItemID); err != nil {
			return err
		}
		var err error
		batches, err = repos.Batches().FindForReadyItem(ctx, scope, readyItemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]BatchResponse, len(batches))
	for i := range batches {
		out[i] = ToBatchResponse(&batches[i])
	}
	return out, nil
}

// ConsumptionsForBatch returns the material consumption rows of a batch
func (s *ProductionService) ConsumptionsForBatch(ctx context.Context, scope shared.Scope, batchID uuid.UUID) ([]ConsumptionResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var rows []production.MaterialConsumption
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		if _, err := repos.Batches().FindByID(ctx, scope, batchID); err != nil {
			return err
		}
		var err error
		rows, err = repos.Consumptions().FindForBatch(ctx, scope, batchID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]ConsumptionResponse, len(rows))
	for i := range rows {
		out[i] = ToConsumptionResponse(&rows[i])
	}
	return out, nil
}

// plannedMaterials reads the recipe materials without locks so their stock keys
// can be acquired before the run
func (s *ProductionService) plannedMaterials(ctx context.Context, scope shared.Scope, readyItemID uuid.UUID, quality string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		if _, err := repos.ReadyItems().FindByID(ctx, scope, readyItemID); err != nil {
			return err
		}
		recipes, err := repos.Recipes().FindForReadyItem(ctx, scope, readyItemID, quality)
		if err != nil {
			return err
		}
		for _, r := range recipes {
			ids = append(ids, r.RawMaterialID)
		}
		return nil
	})
	return ids, err
}

func sortedIDs(m map[uuid.UUID]decimal.Decimal) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
	return ids
}

package production

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/application/txn"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/production"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DeviationAnalyzer compares a run's consumption with the ready item's
// propositions and stores the outcome on the ready item
type DeviationAnalyzer struct {
	logger *zap.Logger
	clock  shared.Clock
}

// NewDeviationAnalyzer creates a new DeviationAnalyzer
func NewDeviationAnalyzer(zapLogger *zap.Logger, clock shared.Clock) *DeviationAnalyzer {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &DeviationAnalyzer{logger: zapLogger, clock: clock}
}

// Analyze computes the deviation of a run. Failures are returned to the caller.
func (a *DeviationAnalyzer) Analyze(ctx context.Context, repos txn.Repositories, scope shared.Scope, readyItemID uuid.UUID, quality string, produced decimal.Decimal, actual map[uuid.UUID]decimal.Decimal) (dev production.Deviation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("deviation analysis panicked: %v", r)
		}
	}()

	props, err := repos.Propositions().FindForReadyItem(ctx, scope, readyItemID)
	if err != nil {
		return production.ZeroDeviation(), fmt.Errorf("load propositions: %w", err)
	}
	recipes, err := repos.Recipes().FindForReadyItem(ctx, scope, readyItemID, strings.TrimSpace(quality))
	if err != nil {
		return production.ZeroDeviation(), fmt.Errorf("load recipes: %w", err)
	}
	return production.AnalyzeDeviation(props, production.PerUnitByMaterial(recipes), produced, actual), nil
}

// Apply analyzes the run and records the result on item. A failed analysis is
// not returned: the item is reset to NORMAL with zero deviations, the failure is
// logged and a DeviationCheckFailed event is queued instead.
func (a *DeviationAnalyzer) Apply(ctx context.Context, repos txn.Repositories, scope shared.Scope, item *catalog.ReadyItem, quality string, produced decimal.Decimal, actual map[uuid.UUID]decimal.Decimal, events *txn.Events) {
	log := logger.WithLogger(ctx, a.logger).With(
		zap.String("ready_item_id", item.ID.String()),
		zap.String("quality", quality),
	)
	now := a.clock.Now()

	dev, err := a.Analyze(ctx, repos, scope, item.ID, quality, produced, actual)
	if err != nil {
		log.Error("Deviation analysis failed, resetting to NORMAL", zap.Error(err))
		item.ResetDeviation(now)
		events.Add(production.NewDeviationCheckFailedEvent(scope.TenantID, item.ID, quality, err))
	} else {
		item.RecordDeviation(dev.Snapshot(now))
	}

	if err := repos.ReadyItems().Save(ctx, item); err != nil {
		log.Error("Failed to store deviation snapshot", zap.Error(err))
		return
	}
	if item.Deviation.QualityImpact != catalog.ImpactNormal {
		log.Info("Production deviation recorded",
			zap.String("impact", item.Deviation.QualityImpact.String()),
			zap.String("percentage_deviation", item.Deviation.PercentageDeviation.String()),
		)
	}
}

package production

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/application/txn"
	"github.com/erp/backoffice/internal/domain/production"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropositionService maintains the expected material shares of ready items and
// previews deviations against them
type PropositionService struct {
	runner   *txn.Runner
	analyzer *DeviationAnalyzer
}

// NewPropositionService creates a new PropositionService
func NewPropositionService(runner *txn.Runner, analyzer *DeviationAnalyzer) *PropositionService {
	return &PropositionService{runner: runner, analyzer: analyzer}
}

// UpsertProposition creates or overwrites the share of one raw material
func (s *PropositionService) UpsertProposition(ctx context.Context, scope shared.Scope, readyItemID uuid.UUID, line PropositionLine) (*PropositionResponse, error) {
	set, err := s.UpsertPropositions(ctx, scope, readyItemID, []PropositionLine{line})
	if err != nil {
		return nil, err
	}
	for _, p := range set.Propositions {
		if p.RawMaterialID == line.RawMaterialID {
			return &p, nil
		}
	}
	return nil, shared.Errorf(shared.ErrNotFound, "proposition for raw material %s not found", line.RawMaterialID)
}

// UpsertPropositions writes several shares at once. The total is not enforced
// here; ValidatePropositions reports whether it is close enough to 100.
func (s *PropositionService) UpsertPropositions(ctx context.Context, scope shared.Scope, readyItemID uuid.UUID, lines []PropositionLine) (*PropositionSetResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, shared.Errorf(shared.ErrInvalidInput, "at least one proposition is required")
	}
	var props []production.Proposition
	err := s.runner.Run(ctx, []string{txn.RecipeKey(scope, readyItemID)}, func(repos txn.Repositories) error {
		if _, err := repos.ReadyItems().FindByID(ctx, scope, readyItemID); err != nil {
			return err
		}
		for _, line := range lines {
			if _, err := repos.RawMaterials().FindByID(ctx, scope, line.RawMaterialID); err != nil {
				return err
			}
			prop, err := repos.Propositions().FindByKey(ctx, scope, readyItemID, line.RawMaterialID)
			switch {
			case errors.Is(err, shared.ErrNotFound):
				prop, err = production.NewProposition(scope, readyItemID, line.RawMaterialID, line.ExpectedPercentage)
				if err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				if err := prop.SetPercentage(line.ExpectedPercentage); err != nil {
					return err
				}
			}
			if err := repos.Propositions().Save(ctx, prop); err != nil {
				return err
			}
		}
		var err error
		props, err = repos.Propositions().FindForReadyItem(ctx, scope, readyItemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	set := ToPropositionSetResponse(readyItemID, props)
	return &set, nil
}

// PropositionsFor returns the propositions of a ready item with their total
func (s *PropositionService) PropositionsFor(ctx context.Context, scope shared.Scope, readyItemID uuid.UUID) (*PropositionSetResponse, error) {
	props, err := s.load(ctx, scope, readyItemID)
	if err != nil {
		return nil, err
	}
	set := ToPropositionSetResponse(readyItemID, props)
	return &set, nil
}

// ValidatePropositions reports whether the shares add up to 100 within half a point
func (s *PropositionService) ValidatePropositions(ctx context.Context, scope shared.Scope, readyItemID uuid.UUID) (bool, error) {
	props, err := s.load(ctx, scope, readyItemID)
	if err != nil {
		return false, err
	}
	return production.ValidatePropositions(props), nil
}

// CalculateDeviations previews the deviation of a run without storing it. Unlike
// the check after a production run, failures are returned.
func (s *PropositionService) CalculateDeviations(ctx context.Context, scope shared.Scope, req DeviationRequest) (*DeviationResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if !req.QuantityProduced.IsPositive() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "quantity produced must be positive")
	}
	actual := req.Actual
	if actual == nil {
		actual = map[uuid.UUID]decimal.Decimal{}
	}
	var dev production.Deviation
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		if _, err := repos.ReadyItems().FindByID(ctx, scope, req.ReadyItemID); err != nil {
			return err
		}
		var err error
		dev, err = s.analyzer.Analyze(ctx, repos, scope, req.ReadyItemID, req.Quality, req.QuantityProduced, actual)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToDeviationResponse(dev, actual)
	return &resp, nil
}

func (s *PropositionService) load(ctx context.Context, scope shared.Scope, readyItemID uuid.UUID) ([]production.Proposition, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var props []production.Proposition
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		if _, err := repos.ReadyItems().FindByID(ctx, scope, readyItemID); err != nil {
			return err
		}
		var err error
		props, err = repos.Propositions().FindForReadyItem(ctx, scope, readyItemID)
		return err
	})
	return props, err
}

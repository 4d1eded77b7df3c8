// Package production runs production batches and maintains the recipes and
// propositions they are planned and checked against.
package production

import (
	"context"
	"errors"
	"strings"

	appinventory "github.com/erp/backoffice/internal/application/inventory"
	"github.com/erp/backoffice/internal/application/txn"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/production"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecipeService maintains recipes and records manual raw material consumption
type RecipeService struct {
	runner *txn.Runner
}

// NewRecipeService creates a new RecipeService
func NewRecipeService(runner *txn.Runner) *RecipeService {
	return &RecipeService{runner: runner}
}

// RequiredMaterials returns quantity × quantity per unit for every recipe row of
// the ready item at the quality
func (s *RecipeService) RequiredMaterials(ctx context.Context, scope shared.Scope, readyItemID uuid.UUID, quality string, quantity decimal.Decimal) (map[uuid.UUID]decimal.Decimal, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var required map[uuid.UUID]decimal.Decimal
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		recipes, err := repos.Recipes().FindForReadyItem(ctx, scope, readyItemID, strings.TrimSpace(quality))
		if err != nil {
			return err
		}
		required = production.RequiredMaterials(recipes, quantity)
		return nil
	})
	return required, err
}

// UpsertRecipe creates or overwrites the recipe of a triple
func (s *RecipeService) UpsertRecipe(ctx context.Context, scope shared.Scope, req UpsertRecipeRequest) (*RecipeResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var recipe *production.Recipe
	err := s.runner.Run(ctx, []string{txn.RecipeKey(scope, req.ReadyItemID)}, func(repos txn.Repositories) error {
		var err error
		recipe, err = upsertRecipe(ctx, repos, scope, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToRecipeResponse(recipe)
	return &resp, nil
}

// DeriveRecipe sets the quantity per unit of a triple to consumed / readyQuantity,
// rounded half-up to four places
func (s *RecipeService) DeriveRecipe(ctx context.Context, scope shared.Scope, req DeriveRecipeRequest) (*RecipeResponse, error) {
	perUnit, err := production.DeriveQuantityPerUnit(req.Consumed, req.ReadyQuantity)
	if err != nil {
		return nil, err
	}
	return s.UpsertRecipe(ctx, scope, UpsertRecipeRequest{
		ReadyItemID:     req.ReadyItemID,
		RawMaterialID:   req.RawMaterialID,
		Quality:         req.Quality,
		QuantityPerUnit: perUnit,
		Unit:            req.Unit,
	})
}

// RecordManualConsumption saves a MANUAL consumption, deducts the raw material
// stock on its date and, when the ready item side is complete, derives the recipe
func (s *RecipeService) RecordManualConsumption(ctx context.Context, scope shared.Scope, req ManualConsumptionRequest) (*ConsumptionResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	consumption, err := production.NewManualConsumption(scope, req.RawMaterialID, req.Quantity, req.Date, req.Remarks)
	if err != nil {
		return nil, err
	}
	if req.ReadyItemID != nil {
		consumption.LinkReadyItem(*req.ReadyItemID, strings.TrimSpace(req.Quality), req.ReadyItemQuantity)
	}

	material := inventory.RawMaterialRef(req.RawMaterialID)
	keys := []string{material.LockKey(scope)}
	if consumption.DerivesRecipe() {
		keys = append(keys, txn.RecipeKey(scope, *consumption.ReadyItemID))
	}

	err = s.runner.Run(ctx, keys, func(repos txn.Repositories) error {
		unit, err := appinventory.ItemUnit(ctx, repos, scope, material)
		if err != nil {
			return err
		}
		if err := repos.Consumptions().Save(ctx, consumption); err != nil {
			return err
		}
		if _, err := inventory.NewLedger(repos.StockEntries()).DeductStock(ctx, scope, material, consumption.Quantity, consumption.Date, unit); err != nil {
			return err
		}
		if !consumption.DerivesRecipe() {
			return nil
		}
		perUnit, err := production.DeriveQuantityPerUnit(consumption.Quantity, consumption.ReadyItemQuantity)
		if err != nil {
			return err
		}
		if req.Unit != "" {
			unit = req.Unit
		}
		_, err = upsertRecipe(ctx, repos, scope, UpsertRecipeRequest{
			ReadyItemID:     *consumption.ReadyItemID,
			RawMaterialID:   consumption.RawMaterialID,
			Quality:         consumption.Quality,
			QuantityPerUnit: perUnit,
			Unit:            unit,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToConsumptionResponse(consumption)
	return &resp, nil
}

// RecipesFor returns the recipe rows of a ready item at a quality
func (s *RecipeService) RecipesFor(ctx context.Context, scope shared.Scope, readyItemID uuid.UUID, quality string) ([]RecipeResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var recipes []production.Recipe
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		if _, err := repos.ReadyItems().FindByID(ctx, scope, readyItemID); err != nil {
			return err
		}
		var err error
		recipes, err = repos.Recipes().FindForReadyItem(ctx, scope, readyItemID, strings.TrimSpace(quality))
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]RecipeResponse, len(recipes))
	for i := range recipes {
		out[i] = ToRecipeResponse(&recipes[i])
	}
	return out, nil
}

// DeleteRecipe removes a recipe row
func (s *RecipeService) DeleteRecipe(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	var recipe *production.Recipe
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		var err error
		recipe, err = repos.Recipes().FindByID(ctx, scope, id)
		return err
	})
	if err != nil {
		return err
	}
	return s.runner.Run(ctx, []string{txn.RecipeKey(scope, recipe.ReadyItemID)}, func(repos txn.Repositories) error {
		return repos.Recipes().Delete(ctx, scope, id)
	})
}

// upsertRecipe writes the recipe of a triple inside a unit of work that holds
// the ready item's recipe key
func upsertRecipe(ctx context.Context, repos txn.Repositories, scope shared.Scope, req UpsertRecipeRequest) (*production.Recipe, error) {
	if _, err := repos.ReadyItems().FindByID(ctx, scope, req.ReadyItemID); err != nil {
		return nil, err
	}
	material, err := repos.RawMaterials().FindByID(ctx, scope, req.RawMaterialID)
	if err != nil {
		return nil, err
	}
	unit := req.Unit
	if strings.TrimSpace(unit) == "" {
		unit = material.Unit
	}
	quality := strings.TrimSpace(req.Quality)

	recipe, err := repos.Recipes().FindByKey(ctx, scope, req.ReadyItemID, req.RawMaterialID, quality)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		recipe, err = production.NewRecipe(scope, req.ReadyItemID, req.RawMaterialID, quality, req.QuantityPerUnit, unit)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := recipe.Update(req.QuantityPerUnit, unit); err != nil {
			return nil, err
		}
	}
	if err := repos.Recipes().Save(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

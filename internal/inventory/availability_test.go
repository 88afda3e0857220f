package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"tillpoint/internal/models"
)

func testStock(id, name string, packs, perPack int64, unit models.MeasurementUnit, used int64) models.IngredientStock {
	return models.IngredientStock{
		ID:                 id,
		Name:               name,
		Quantity:           decimal.NewFromInt(packs),
		MeasurementPerUnit: models.MeasurementValue{Value: decimal.NewFromInt(perPack), Unit: unit},
		Used:               decimal.NewFromInt(used),
		MinQuantity:        decimal.NewFromInt(1),
	}
}

func drinkItem(recipe ...models.Recipe) models.MenuItem {
	return models.MenuItem{
		ID:     "item-latte",
		Name:   "Latte",
		Price:  decimal.NewFromInt(5),
		Recipe: recipe,
	}
}

func TestEvaluateAvailabilityEmptyRecipe(t *testing.T) {
	assert.True(t, EvaluateAvailability(drinkItem(), nil),
		"an item without ingredient dependencies is always available")
}

func TestEvaluateAvailabilitySufficientStock(t *testing.T) {
	stocks := map[string]models.IngredientStock{
		"ing-milk": testStock("ing-milk", "Milk", 5, 1000, models.UnitMilliliter, 4500),
	}
	item := drinkItem(models.Recipe{
		IngredientID:   "ing-milk",
		RequiredAmount: models.MeasurementValue{Value: decimal.NewFromInt(200), Unit: models.UnitMilliliter},
	})
	assert.True(t, EvaluateAvailability(item, stocks))
}

func TestEvaluateAvailabilityInsufficientStock(t *testing.T) {
	stocks := map[string]models.IngredientStock{
		"ing-milk": testStock("ing-milk", "Milk", 5, 1000, models.UnitMilliliter, 4900),
	}
	item := drinkItem(models.Recipe{
		IngredientID:   "ing-milk",
		RequiredAmount: models.MeasurementValue{Value: decimal.NewFromInt(200), Unit: models.UnitMilliliter},
	})
	assert.False(t, EvaluateAvailability(item, stocks))
}

func TestEvaluateAvailabilityMissingIngredientFailsClosed(t *testing.T) {
	stocks := map[string]models.IngredientStock{
		"ing-milk": testStock("ing-milk", "Milk", 5, 1000, models.UnitMilliliter, 0),
	}
	item := drinkItem(
		models.Recipe{
			IngredientID:   "ing-milk",
			RequiredAmount: models.MeasurementValue{Value: decimal.NewFromInt(200), Unit: models.UnitMilliliter},
		},
		models.Recipe{
			IngredientID:   "ing-syrup",
			RequiredAmount: models.MeasurementValue{Value: decimal.NewFromInt(20), Unit: models.UnitMilliliter},
		},
	)
	assert.False(t, EvaluateAvailability(item, stocks),
		"a missing ingredient makes the item unavailable even when others are sufficient")
}

func TestEvaluateAvailabilityConvertsRecipeUnits(t *testing.T) {
	// Stock kept in kilograms, recipe written in grams.
	stocks := map[string]models.IngredientStock{
		"ing-beans": testStock("ing-beans", "Coffee beans", 2, 1, models.UnitKilogram, 0),
	}
	item := drinkItem(models.Recipe{
		IngredientID:   "ing-beans",
		RequiredAmount: models.MeasurementValue{Value: decimal.NewFromInt(18), Unit: models.UnitGram},
	})
	assert.True(t, EvaluateAvailability(item, stocks))
}

func TestEvaluateAvailabilityIncompatibleRecipeUnit(t *testing.T) {
	stocks := map[string]models.IngredientStock{
		"ing-beans": testStock("ing-beans", "Coffee beans", 2, 1000, models.UnitGram, 0),
	}
	item := drinkItem(models.Recipe{
		IngredientID:   "ing-beans",
		RequiredAmount: models.MeasurementValue{Value: decimal.NewFromInt(18), Unit: models.UnitMilliliter},
	})
	assert.False(t, EvaluateAvailability(item, stocks))
}

func TestEvaluateAvailabilityIsIdempotent(t *testing.T) {
	stocks := map[string]models.IngredientStock{
		"ing-milk": testStock("ing-milk", "Milk", 5, 1000, models.UnitMilliliter, 4500),
	}
	item := drinkItem(models.Recipe{
		IngredientID:   "ing-milk",
		RequiredAmount: models.MeasurementValue{Value: decimal.NewFromInt(200), Unit: models.UnitMilliliter},
	})
	first := EvaluateAvailability(item, stocks)
	second := EvaluateAvailability(item, stocks)
	assert.Equal(t, first, second)
	assert.True(t, stocks["ing-milk"].Used.Equal(decimal.NewFromInt(4500)), "evaluation never mutates stock")
}

package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/models"
	"tillpoint/internal/store"
)

func seedMilk(t *testing.T, st store.Store) {
	t.Helper()
	err := st.Set(context.Background(), store.CollectionIngredients, "ing-milk",
		testStock("ing-milk", "Milk", 5, 1000, models.UnitMilliliter, 4500))
	require.NoError(t, err)
}

func latte(perDrinkML int64) models.MenuItem {
	return drinkItem(models.Recipe{
		IngredientID:   "ing-milk",
		RequiredAmount: models.MeasurementValue{Value: decimal.NewFromInt(perDrinkML), Unit: models.UnitMilliliter},
	})
}

func currentMilk(t *testing.T, st store.Store) models.IngredientStock {
	t.Helper()
	var stock models.IngredientStock
	require.NoError(t, st.Get(context.Background(), store.CollectionIngredients, "ing-milk", &stock))
	return stock
}

func TestConsumeRejectsWhenAggregateExceedsAvailable(t *testing.T) {
	st := store.NewMemoryStore()
	seedMilk(t, st)
	engine := NewEngine(st)

	// 3 drinks at 200 ml need 600 ml; only 500 ml remain.
	_, _, err := engine.Consume(context.Background(), []OrderLine{{MenuItem: latte(200), Quantity: 3}})

	var insufficient *models.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "Milk", insufficient.Name)
	assert.True(t, insufficient.Required.Equal(decimal.NewFromInt(600)))
	assert.True(t, insufficient.Available.Equal(decimal.NewFromInt(500)))

	assert.True(t, currentMilk(t, st).Used.Equal(decimal.NewFromInt(4500)), "rejection leaves stock untouched")
}

func TestConsumeCommitsAndReportsLowStock(t *testing.T) {
	st := store.NewMemoryStore()
	seedMilk(t, st)
	engine := NewEngine(st)

	snapshots, alerts, err := engine.Consume(context.Background(), []OrderLine{{MenuItem: latte(200), Quantity: 2}})
	require.NoError(t, err)

	require.Len(t, snapshots, 1)
	assert.True(t, snapshots[0].Used.Equal(decimal.NewFromInt(4900)))
	assert.True(t, currentMilk(t, st).Used.Equal(decimal.NewFromInt(4900)))

	require.Len(t, alerts, 1)
	assert.Equal(t, "Milk", alerts[0].Name)
	assert.True(t, alerts[0].Remaining.Value.Equal(decimal.NewFromInt(100)))
	assert.True(t, alerts[0].Threshold.Value.Equal(decimal.NewFromInt(1000)))
}

func TestConsumeAggregatesLinesBeforeChecking(t *testing.T) {
	st := store.NewMemoryStore()
	seedMilk(t, st)
	engine := NewEngine(st)

	// Two lines of 150 ml each must be checked as 300 ml in aggregate.
	cappuccino := models.MenuItem{
		ID:    "item-cappuccino",
		Name:  "Cappuccino",
		Price: decimal.NewFromInt(4),
		Recipe: []models.Recipe{{
			IngredientID:   "ing-milk",
			RequiredAmount: models.MeasurementValue{Value: decimal.NewFromInt(150), Unit: models.UnitMilliliter},
		}},
	}
	_, _, err := engine.Consume(context.Background(), []OrderLine{
		{MenuItem: latte(150), Quantity: 1},
		{MenuItem: cappuccino, Quantity: 1},
	})
	require.NoError(t, err)
	assert.True(t, currentMilk(t, st).Used.Equal(decimal.NewFromInt(4800)))

	// The same order again needs 300 ml against the 200 ml now left.
	_, _, err = engine.Consume(context.Background(), []OrderLine{
		{MenuItem: latte(150), Quantity: 1},
		{MenuItem: cappuccino, Quantity: 1},
	})
	var insufficient *models.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Required.Equal(decimal.NewFromInt(300)))
	assert.True(t, currentMilk(t, st).Used.Equal(decimal.NewFromInt(4800)), "failed aggregate leaves stock untouched")
}

func TestConsumeAllOrNothingAcrossIngredients(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, store.CollectionIngredients, "ing-a",
		testStock("ing-a", "Beans", 1, 1000, models.UnitGram, 0)))
	require.NoError(t, st.Set(ctx, store.CollectionIngredients, "ing-b",
		testStock("ing-b", "Milk", 1, 100, models.UnitMilliliter, 90)))
	engine := NewEngine(st)

	item := drinkItem(
		models.Recipe{IngredientID: "ing-a", RequiredAmount: models.MeasurementValue{Value: decimal.NewFromInt(20), Unit: models.UnitGram}},
		models.Recipe{IngredientID: "ing-b", RequiredAmount: models.MeasurementValue{Value: decimal.NewFromInt(50), Unit: models.UnitMilliliter}},
	)
	_, _, err := engine.Consume(ctx, []OrderLine{{MenuItem: item, Quantity: 1}})

	var insufficient *models.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "Milk", insufficient.Name)

	var beans models.IngredientStock
	require.NoError(t, st.Get(ctx, store.CollectionIngredients, "ing-a", &beans))
	assert.True(t, beans.Used.IsZero(), "the sufficient ingredient must not be partially decremented")
}

func TestConsumeMissingIngredient(t *testing.T) {
	st := store.NewMemoryStore()
	engine := NewEngine(st)

	_, _, err := engine.Consume(context.Background(), []OrderLine{{MenuItem: latte(200), Quantity: 1}})

	var notFound *IngredientNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "ing-milk", notFound.IngredientID)
}

func TestConsumeEmptyRecipeSucceedsTrivially(t *testing.T) {
	st := store.NewMemoryStore()
	engine := NewEngine(st)

	snapshots, alerts, err := engine.Consume(context.Background(), []OrderLine{{MenuItem: drinkItem(), Quantity: 2}})
	require.NoError(t, err)
	assert.Empty(t, snapshots)
	assert.Empty(t, alerts)
}

func TestConsumeRejectsNonPositiveQuantityBeforeStoreAccess(t *testing.T) {
	st := store.NewMemoryStore()
	seedMilk(t, st)
	engine := NewEngine(st)

	_, _, err := engine.Consume(context.Background(), []OrderLine{{MenuItem: latte(200), Quantity: 0}})

	var invalid *InvalidOrderLineError
	require.True(t, errors.As(err, &invalid))
	assert.True(t, currentMilk(t, st).Used.Equal(decimal.NewFromInt(4500)))
}

func TestConsumeIncompatibleRecipeUnitsAbortBeforeStoreAccess(t *testing.T) {
	st := store.NewMemoryStore()
	seedMilk(t, st)
	engine := NewEngine(st)

	// Two recipe lines for the same ingredient in different groups cannot be
	// aggregated; the order dies before the transaction starts.
	confused := drinkItem(
		models.Recipe{IngredientID: "ing-milk", RequiredAmount: models.MeasurementValue{Value: decimal.NewFromInt(100), Unit: models.UnitMilliliter}},
		models.Recipe{IngredientID: "ing-milk", RequiredAmount: models.MeasurementValue{Value: decimal.NewFromInt(5), Unit: models.UnitGram}},
	)
	_, _, err := engine.Consume(context.Background(), []OrderLine{{MenuItem: confused, Quantity: 1}})

	var incompatible *models.UnitIncompatibleError
	require.True(t, errors.As(err, &incompatible))
	assert.True(t, currentMilk(t, st).Used.Equal(decimal.NewFromInt(4500)))
}

func TestConsumeNoDoubleSpend(t *testing.T) {
	st := store.NewMemoryStore()
	seedMilk(t, st) // 500 ml available
	engine := NewEngine(st)

	// Two concurrent orders of 400 ml each: exactly one may commit.
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, results[i] = engine.Consume(context.Background(), []OrderLine{{MenuItem: latte(400), Quantity: 1}})
		}(i)
	}
	wg.Wait()

	var committed, rejected int
	for _, err := range results {
		if err == nil {
			committed++
			continue
		}
		var insufficient *models.InsufficientStockError
		require.True(t, errors.As(err, &insufficient), "loser must observe InsufficientStock, got %v", err)
		rejected++
	}
	assert.Equal(t, 1, committed)
	assert.Equal(t, 1, rejected)
	assert.True(t, currentMilk(t, st).Used.Equal(decimal.NewFromInt(4900)),
		"final usage reflects exactly one successful decrement")
}

package inventory

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"tillpoint/internal/models"
	"tillpoint/internal/store"
)

// buildRequest aggregates the physical requirement of every order line into
// one amount per ingredient, expressed in the ingredient group's base unit.
// Two lines touching the same ingredient are summed here, before any
// sufficiency check. No store access happens in this step: a conversion
// failure aborts the order before anything is read or written.
func buildRequest(lines []OrderLine) (map[string]models.MeasurementValue, error) {
	request := make(map[string]models.MeasurementValue)
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, &InvalidOrderLineError{
				MenuItemID: line.MenuItem.ID,
				Reason:     "quantity must be positive",
			}
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		for _, rec := range line.MenuItem.Recipe {
			amount := rec.RequiredAmount.Scaled(qty).ToBase()
			current, ok := request[rec.IngredientID]
			if !ok {
				request[rec.IngredientID] = amount
				continue
			}
			sum, err := current.Add(amount)
			if err != nil {
				return nil, err
			}
			request[rec.IngredientID] = sum
		}
	}
	return request, nil
}

// sortedIngredientIDs fixes a total order over the request so that every
// transaction touching overlapping ingredient sets reads and writes them in
// the same sequence.
func sortedIngredientIDs(request map[string]models.MeasurementValue) []string {
	ids := make([]string, 0, len(request))
	for id := range request {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Consume atomically decrements stock for every ingredient the order
// touches. Either every decrement commits or none do: a single insufficient
// or missing ingredient rejects the whole order with the pre-call state
// intact. On success it returns the committed snapshots of every touched
// ingredient and the low-stock alerts derived from them.
//
// The transaction body is pure computation over freshly read snapshots; the
// store may re-execute it transparently on write conflicts.
func (e *Engine) Consume(ctx context.Context, lines []OrderLine) ([]models.IngredientStock, []models.IngredientAlert, error) {
	request, err := buildRequest(lines)
	if err != nil {
		return nil, nil, err
	}
	if len(request) == 0 {
		// Nothing but recipe-free items; trivially satisfiable.
		return nil, nil, nil
	}
	ids := sortedIngredientIDs(request)

	var snapshots []models.IngredientStock
	err = e.store.RunTransaction(ctx, func(tx store.Tx) error {
		snapshots = snapshots[:0]
		for _, id := range ids {
			var stock models.IngredientStock
			if err := tx.Get(store.CollectionIngredients, id, &stock); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return &IngredientNotFoundError{IngredientID: id}
				}
				return err
			}
			next, err := stock.Consumed(request[id])
			if err != nil {
				return err
			}
			if err := tx.Set(store.CollectionIngredients, id, next); err != nil {
				return err
			}
			snapshots = append(snapshots, next)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, nil, ErrTransientFailure
		}
		return nil, nil, err
	}
	return snapshots, LowStockAlerts(snapshots), nil
}

// Package inventory implements the recipe-driven stock consumption engine:
// availability evaluation, atomic multi-ingredient decrements on order
// placement, and post-commit low-stock classification.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"tillpoint/internal/models"
	"tillpoint/internal/store"
)

// Engine executes stock reads and mutations against the document store.
// It exposes plain functions returning values; observation and caching are
// the caller's concern.
type Engine struct {
	store store.Store
}

// NewEngine creates an engine backed by the given store
func NewEngine(st store.Store) *Engine {
	return &Engine{store: st}
}

// OrderLine pairs a resolved menu item with the quantity ordered
type OrderLine struct {
	MenuItem models.MenuItem
	Quantity int
}

// Stock returns the current snapshot of one ingredient
func (e *Engine) Stock(ctx context.Context, ingredientID string) (models.IngredientStock, error) {
	var stock models.IngredientStock
	if err := e.store.Get(ctx, store.CollectionIngredients, ingredientID, &stock); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.IngredientStock{}, &IngredientNotFoundError{IngredientID: ingredientID}
		}
		return models.IngredientStock{}, err
	}
	return stock, nil
}

// StockSnapshot returns every ingredient keyed by id
func (e *Engine) StockSnapshot(ctx context.Context) (map[string]models.IngredientStock, error) {
	raw, err := e.store.List(ctx, store.CollectionIngredients)
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]models.IngredientStock, len(raw))
	for id, data := range raw {
		var stock models.IngredientStock
		if err := json.Unmarshal(data, &stock); err != nil {
			return nil, err
		}
		snapshot[id] = stock
	}
	return snapshot, nil
}

// Restock adds packs to an ingredient's quantity. Plain read-modify-write;
// restocking is an admin action, not a consumption path.
func (e *Engine) Restock(ctx context.Context, ingredientID string, packs decimal.Decimal) (models.IngredientStock, error) {
	stock, err := e.Stock(ctx, ingredientID)
	if err != nil {
		return models.IngredientStock{}, err
	}
	updated := stock.Restocked(packs)
	if err := e.store.Set(ctx, store.CollectionIngredients, ingredientID, updated); err != nil {
		return models.IngredientStock{}, err
	}
	return updated, nil
}

// ResetUsage clears an ingredient's cumulative consumption
func (e *Engine) ResetUsage(ctx context.Context, ingredientID string) (models.IngredientStock, error) {
	stock, err := e.Stock(ctx, ingredientID)
	if err != nil {
		return models.IngredientStock{}, err
	}
	updated := stock.UsageReset()
	if err := e.store.Set(ctx, store.CollectionIngredients, ingredientID, updated); err != nil {
		return models.IngredientStock{}, err
	}
	return updated, nil
}

// RefreshAvailability recomputes a menu item's cached availability flag
// against the current stock snapshot. The stored document is rewritten only
// when the flag actually flips.
func (e *Engine) RefreshAvailability(ctx context.Context, menuItemID string) (bool, error) {
	var item models.MenuItem
	if err := e.store.Get(ctx, store.CollectionMenuItems, menuItemID, &item); err != nil {
		return false, err
	}
	snapshot, err := e.StockSnapshot(ctx)
	if err != nil {
		return false, err
	}
	available := EvaluateAvailability(item, snapshot)
	if available == item.IsAvailable {
		return available, nil
	}
	item.IsAvailable = available
	item.UpdatedAt = time.Now()
	if err := e.store.Set(ctx, store.CollectionMenuItems, menuItemID, item); err != nil {
		return false, err
	}
	return available, nil
}

package inventory

import "tillpoint/internal/models"

// EvaluateAvailability reports whether a menu item can currently be sold
// given a stock snapshot. An empty recipe list means the item has no
// ingredient dependency and is always available. Any missing ingredient, or
// any recipe line whose requirement cannot be covered (or converted), makes
// the item unavailable. Pure and idempotent; never mutates stock.
func EvaluateAvailability(item models.MenuItem, stocks map[string]models.IngredientStock) bool {
	for _, rec := range item.Recipe {
		stock, ok := stocks[rec.IngredientID]
		if !ok {
			return false
		}
		available, err := stock.AvailableMeasurement().Converted(rec.RequiredAmount.Unit)
		if err != nil {
			return false
		}
		if available.Value.LessThan(rec.RequiredAmount.Value) {
			return false
		}
	}
	return true
}

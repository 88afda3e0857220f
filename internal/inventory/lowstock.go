package inventory

import "tillpoint/internal/models"

// LowStockAlerts classifies post-commit snapshots, returning one alert for
// every ingredient at or below its restock threshold. Advisory only.
func LowStockAlerts(snapshots []models.IngredientStock) []models.IngredientAlert {
	var alerts []models.IngredientAlert
	for _, stock := range snapshots {
		if !stock.IsLowStock() {
			continue
		}
		alerts = append(alerts, models.IngredientAlert{
			IngredientID: stock.ID,
			Name:         stock.Name,
			Remaining:    stock.AvailableMeasurement(),
			Threshold:    stock.ThresholdMeasurement(),
		})
	}
	return alerts
}

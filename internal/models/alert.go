package models

// IngredientAlert flags an ingredient whose remaining stock crossed its
// restock threshold. Advisory output only; never persisted by the engine.
type IngredientAlert struct {
	IngredientID string           `json:"ingredient_id"`
	Name         string           `json:"name"`
	Remaining    MeasurementValue `json:"remaining"`
	Threshold    MeasurementValue `json:"threshold"`
}

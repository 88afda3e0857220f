package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// IngredientStock represents the purchasable stock-keeping unit for one
// ingredient in one shop. Quantity counts purchased packs; Used accumulates
// the physical amount consumed, in MeasurementPerUnit's unit.
type IngredientStock struct {
	ID                 string           `json:"id"`
	ShopID             string           `json:"shop_id"`
	Name               string           `json:"name"`
	Quantity           decimal.Decimal  `json:"quantity"`
	MeasurementPerUnit MeasurementValue `json:"measurement_per_unit"`
	Used               decimal.Decimal  `json:"used"`
	MinQuantity        decimal.Decimal  `json:"min_quantity"`
	CostPrice          decimal.Decimal  `json:"cost_price"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// InsufficientStockError indicates that a requested consumption exceeds the
// ingredient's available physical quantity
type InsufficientStockError struct {
	Name      string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock of %s: required %s, available %s",
		e.Name, e.Required, e.Available)
}

// ValidateIngredientStock checks the ledger invariant 0 <= used <= total
func ValidateIngredientStock(s *IngredientStock) error {
	if s.Name == "" {
		return fmt.Errorf("ingredient name is required")
	}
	if !s.MeasurementPerUnit.Unit.Valid() {
		return fmt.Errorf("unknown measurement unit %q", s.MeasurementPerUnit.Unit)
	}
	if s.MeasurementPerUnit.Value.Sign() <= 0 {
		return fmt.Errorf("measurement per unit must be positive, got %s", s.MeasurementPerUnit.Value)
	}
	if s.Quantity.IsNegative() {
		return fmt.Errorf("quantity must not be negative, got %s", s.Quantity)
	}
	if s.Used.IsNegative() || s.Used.GreaterThan(s.TotalMeasurement()) {
		return fmt.Errorf("used amount %s outside ledger bounds [0, %s]", s.Used, s.TotalMeasurement())
	}
	return nil
}

// TotalMeasurement returns the physical quantity owned across all packs
func (s IngredientStock) TotalMeasurement() decimal.Decimal {
	return s.Quantity.Mul(s.MeasurementPerUnit.Value)
}

// Available returns the physical quantity not yet consumed
func (s IngredientStock) Available() decimal.Decimal {
	return s.TotalMeasurement().Sub(s.Used)
}

// AvailableMeasurement returns the remaining quantity with its unit
func (s IngredientStock) AvailableMeasurement() MeasurementValue {
	return MeasurementValue{Value: s.Available(), Unit: s.MeasurementPerUnit.Unit}
}

// ThresholdMeasurement returns the low-stock threshold as a physical quantity
func (s IngredientStock) ThresholdMeasurement() MeasurementValue {
	return MeasurementValue{
		Value: s.MinQuantity.Mul(s.MeasurementPerUnit.Value),
		Unit:  s.MeasurementPerUnit.Unit,
	}
}

// IsLowStock reports whether the remaining quantity is at or below the
// restock threshold
func (s IngredientStock) IsLowStock() bool {
	return s.Available().LessThanOrEqual(s.ThresholdMeasurement().Value)
}

// Restocked returns a snapshot with the pack count increased. Negative
// amounts are treated as zero; restocking never decreases quantity.
func (s IngredientStock) Restocked(packs decimal.Decimal) IngredientStock {
	if packs.IsNegative() {
		packs = decimal.Zero
	}
	s.Quantity = s.Quantity.Add(packs)
	s.UpdatedAt = time.Now()
	return s
}

// Consumed returns a snapshot with the given physical amount added to Used.
// The amount is converted into the stock's own unit first; an amount from a
// different compatibility group fails with UnitIncompatibleError, and an
// amount exceeding Available fails with InsufficientStockError. The receiver
// is never modified.
func (s IngredientStock) Consumed(amount MeasurementValue) (IngredientStock, error) {
	converted, err := amount.Converted(s.MeasurementPerUnit.Unit)
	if err != nil {
		return IngredientStock{}, err
	}
	if s.Available().LessThan(converted.Value) {
		return IngredientStock{}, &InsufficientStockError{
			Name:      s.Name,
			Required:  converted.Value,
			Available: s.Available(),
		}
	}
	s.Used = s.Used.Add(converted.Value)
	s.UpdatedAt = time.Now()
	return s, nil
}

// UsageReset returns a snapshot with cumulative usage cleared. Quantity is
// untouched.
func (s IngredientStock) UsageReset() IngredientStock {
	s.Used = decimal.Zero
	s.UpdatedAt = time.Now()
	return s
}

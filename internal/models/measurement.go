package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MeasurementUnit represents a physical unit of measurement for stock
type MeasurementUnit string

const (
	// Mass units
	UnitGram     MeasurementUnit = "g"
	UnitKilogram MeasurementUnit = "kg"

	// Volume units
	UnitMilliliter MeasurementUnit = "ml"
	UnitLiter      MeasurementUnit = "l"

	// Count units
	UnitPiece MeasurementUnit = "pc"
)

// UnitGroup represents a compatibility group of units; conversion is only
// permitted between units of the same group
type UnitGroup string

const (
	GroupMass   UnitGroup = "mass"
	GroupVolume UnitGroup = "volume"
	GroupCount  UnitGroup = "count"
)

// unitGroups maps every known unit to its compatibility group
var unitGroups = map[MeasurementUnit]UnitGroup{
	UnitGram:       GroupMass,
	UnitKilogram:   GroupMass,
	UnitMilliliter: GroupVolume,
	UnitLiter:      GroupVolume,
	UnitPiece:      GroupCount,
}

// baseUnits maps each group to its canonical base unit
var baseUnits = map[UnitGroup]MeasurementUnit{
	GroupMass:   UnitGram,
	GroupVolume: UnitMilliliter,
	GroupCount:  UnitPiece,
}

// toBaseFactors holds the fixed linear factor from a unit to its group's base unit
var toBaseFactors = map[MeasurementUnit]decimal.Decimal{
	UnitGram:       decimal.NewFromInt(1),
	UnitKilogram:   decimal.NewFromInt(1000),
	UnitMilliliter: decimal.NewFromInt(1),
	UnitLiter:      decimal.NewFromInt(1000),
	UnitPiece:      decimal.NewFromInt(1),
}

// Group returns the compatibility group of the unit
func (u MeasurementUnit) Group() (UnitGroup, bool) {
	g, ok := unitGroups[u]
	return g, ok
}

// Valid reports whether the unit belongs to the known closed set
func (u MeasurementUnit) Valid() bool {
	_, ok := unitGroups[u]
	return ok
}

// UnitIncompatibleError indicates a conversion across compatibility groups
type UnitIncompatibleError struct {
	From MeasurementUnit
	To   MeasurementUnit
}

func (e *UnitIncompatibleError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s: incompatible measurement units", e.From, e.To)
}

// MeasurementValue represents an immutable physical quantity
type MeasurementValue struct {
	Value decimal.Decimal `json:"value"`
	Unit  MeasurementUnit `json:"unit"`
}

// NewMeasurementValue validates and creates a MeasurementValue
func NewMeasurementValue(value decimal.Decimal, unit MeasurementUnit) (MeasurementValue, error) {
	if !unit.Valid() {
		return MeasurementValue{}, fmt.Errorf("unknown measurement unit %q", unit)
	}
	if value.IsNegative() {
		return MeasurementValue{}, fmt.Errorf("measurement value must not be negative, got %s", value)
	}
	return MeasurementValue{Value: value, Unit: unit}, nil
}

// Converted returns the same quantity expressed in the target unit.
// Fails with UnitIncompatibleError when the target belongs to a different
// compatibility group.
func (m MeasurementValue) Converted(to MeasurementUnit) (MeasurementValue, error) {
	if m.Unit == to {
		return m, nil
	}
	fromGroup, ok := m.Unit.Group()
	if !ok {
		return MeasurementValue{}, fmt.Errorf("unknown measurement unit %q", m.Unit)
	}
	toGroup, ok := to.Group()
	if !ok {
		return MeasurementValue{}, fmt.Errorf("unknown measurement unit %q", to)
	}
	if fromGroup != toGroup {
		return MeasurementValue{}, &UnitIncompatibleError{From: m.Unit, To: to}
	}
	// Exact: factors are powers of ten, so the round trip loses nothing.
	value := m.Value.Mul(toBaseFactors[m.Unit]).Div(toBaseFactors[to])
	return MeasurementValue{Value: value, Unit: to}, nil
}

// ToBase returns the quantity expressed in its group's base unit
func (m MeasurementValue) ToBase() MeasurementValue {
	group, ok := m.Unit.Group()
	if !ok {
		return m
	}
	return MeasurementValue{
		Value: m.Value.Mul(toBaseFactors[m.Unit]),
		Unit:  baseUnits[group],
	}
}

// Add sums two quantities, expressed in the receiver's group base unit
func (m MeasurementValue) Add(other MeasurementValue) (MeasurementValue, error) {
	converted, err := other.Converted(m.ToBase().Unit)
	if err != nil {
		return MeasurementValue{}, err
	}
	base := m.ToBase()
	return MeasurementValue{Value: base.Value.Add(converted.Value), Unit: base.Unit}, nil
}

// Scaled multiplies the quantity by a factor, keeping the unit
func (m MeasurementValue) Scaled(factor decimal.Decimal) MeasurementValue {
	return MeasurementValue{Value: m.Value.Mul(factor), Unit: m.Unit}
}

func (m MeasurementValue) String() string {
	return fmt.Sprintf("%s %s", m.Value, m.Unit)
}

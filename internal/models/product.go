package models

import "time"

// Unit is a quantity unit symbol as stored in the catalog
type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
)

// ProductUnits lists the units a product quantity may be expressed in
var ProductUnits = []Unit{UnitGram, UnitLiter, UnitMilliliter, UnitKilogram}

// WaterUnits lists the units a water amount may be expressed in
var WaterUnits = []Unit{UnitLiter, UnitMilliliter}

// IsProductUnit reports whether u is allowed for quantity_to_add_unit
func (u Unit) IsProductUnit() bool {
	for _, v := range ProductUnits {
		if u == v {
			return true
		}
	}
	return false
}

// IsWaterUnit reports whether u is allowed for a water amount
func (u Unit) IsWaterUnit() bool {
	return u == UnitLiter || u == UnitMilliliter
}

// Label returns the human readable name shown in unit pickers
func (u Unit) Label() string {
	switch u {
	case UnitGram:
		return "Grams (g)"
	case UnitKilogram:
		return "Kilograms (kg)"
	case UnitMilliliter:
		return "Milliliters (ml)"
	case UnitLiter:
		return "Liters (l)"
	default:
		return string(u)
	}
}

// RatioRecord describes how much product to mix per reference amount of water.
// JSON field names match the catalog blob written by the mobile app.
type RatioRecord struct {
	QuantityToAdd      float64 `json:"quantity_to_add"`
	QuantityToAddUnit  Unit    `json:"quantity_to_add_unit"`
	ReferenceWater     float64 `json:"reference_water"`
	ReferenceWaterUnit Unit    `json:"reference_water_unit"`
	Notes              string  `json:"notes"`
}

// Product is a named ratio record stored in the catalog
type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	RatioRecord
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Package ratio computes how much product to add to a given amount of water.
//
// Gram and milliliter are treated as the same base unit: no density conversion
// is applied between mass and volume.
package ratio

import (
	"math"
	"math/big"
	"strconv"

	"github.com/Lixing-Zhang/dilution-calc/internal/models"
	"github.com/shopspring/decimal"
)

// NoResult is returned when there is nothing to compute
const NoResult = "0"

// unitStep is both the l->ml factor and the threshold for switching to the larger unit
const unitStep = 1000

// Compute returns the amount of product required for waterAmount of water,
// formatted with two decimals and the unit, e.g. "12.50 g".
// It returns NoResult when record is nil or waterAmount is not positive.
// Record fields are not validated.
func Compute(record *models.RatioRecord, waterAmount float64, waterUnit models.Unit) string {
	qty, unit, ok := Quantity(record, waterAmount, waterUnit)
	if !ok {
		return NoResult
	}
	return FormatFixed(qty) + " " + string(unit)
}

// Quantity is Compute without formatting. ok is false in the NoResult cases.
func Quantity(record *models.RatioRecord, waterAmount float64, waterUnit models.Unit) (qty float64, unit models.Unit, ok bool) {
	if record == nil || waterAmount <= 0 {
		return 0, "", false
	}

	referenceMl := toMilliliters(record.ReferenceWater, record.ReferenceWaterUnit)
	waterMl := toMilliliters(waterAmount, waterUnit)

	perMl := record.QuantityToAdd / referenceMl
	qty = perMl * waterMl
	unit = record.QuantityToAddUnit

	switch {
	case unit == models.UnitGram && qty >= unitStep:
		qty /= unitStep
		unit = models.UnitKilogram
	case unit == models.UnitMilliliter && qty >= unitStep:
		qty /= unitStep
		unit = models.UnitLiter
	}

	return qty, unit, true
}

// toMilliliters converts liters to milliliters; any other unit is returned as is
func toMilliliters(amount float64, unit models.Unit) float64 {
	if unit == models.UnitLiter {
		return amount * unitStep
	}
	return amount
}

// FormatFixed formats v with exactly two decimals.
// Rounding works on the exact binary value of v, and exact ties round away from zero:
// 0.125 gives "0.13" while 1.005 (stored as 1.00499...) gives "1.00".
// Negative values keep their sign when they round to zero (-0.001 gives "-0.00");
// negative zero gives "0.00".
func FormatFixed(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.Abs(v) >= 1e21:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	exact := new(big.Rat).SetFloat64(v)
	d, err := decimal.NewFromString(exact.FloatString(24))
	if err != nil {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	out := d.StringFixed(2)
	if v < 0 && out[0] != '-' {
		out = "-" + out
	}
	return out
}

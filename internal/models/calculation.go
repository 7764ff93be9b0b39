package models

// CalculationRequest represents an incoming dilution request
type CalculationRequest struct {
	Product     string  `json:"product"`
	WaterAmount float64 `json:"water_amount"`
	WaterUnit   Unit    `json:"water_unit,omitempty"`
}

// Calculation is the answer to a CalculationRequest.
// Result is either "<amount> <unit>" with two decimals or "0".
type Calculation struct {
	Product     string  `json:"product"`
	WaterAmount float64 `json:"water_amount"`
	WaterUnit   Unit    `json:"water_unit"`
	Result      string  `json:"result"`
	Notes       string  `json:"notes,omitempty"`
}

// UnitOption is one entry of a unit picker
type UnitOption struct {
	Label string `json:"label"`
	Value Unit   `json:"value"`
}

// UnitOptions returns picker entries for the given units
func UnitOptions(units []Unit) []UnitOption {
	out := make([]UnitOption, 0, len(units))
	for _, u := range units {
		out = append(out, UnitOption{Label: u.Label(), Value: u})
	}
	return out
}

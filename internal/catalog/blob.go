// Package catalog reads and writes whole product catalogs: the JSON blob kept by the
// mobile app, spreadsheets, and seed sources loaded at startup.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/Lixing-Zhang/dilution-calc/internal/models"
)

// Catalog maps a product name to its ratio record
type Catalog map[string]models.RatioRecord

// FromProducts builds a catalog from stored products
func FromProducts(products []models.Product) Catalog {
	c := make(Catalog, len(products))
	for _, p := range products {
		c[p.Name] = p.RatioRecord
	}
	return c
}

// Names returns the product names in sorted order
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge copies every record of other into c, replacing records with the same name
func (c Catalog) Merge(other Catalog) {
	for name, record := range other {
		c[name] = record
	}
}

// entry mirrors models.RatioRecord but tolerates numbers stored as text,
// which the app's list editor writes back after an edit
type entry struct {
	QuantityToAdd      flexFloat   `json:"quantity_to_add"`
	QuantityToAddUnit  models.Unit `json:"quantity_to_add_unit"`
	ReferenceWater     flexFloat   `json:"reference_water"`
	ReferenceWaterUnit models.Unit `json:"reference_water_unit"`
	Notes              string      `json:"notes"`
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = 0
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := parseNumber(s)
		if err != nil {
			return err
		}
		*f = flexFloat(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// parseNumber parses user entered numbers; blank text is zero.
// "Inf", "NaN" and out of range values are rejected.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// Decode reads a catalog blob: a JSON object keyed by product name
func Decode(r io.Reader) (Catalog, error) {
	var raw map[string]entry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	c := make(Catalog, len(raw))
	for name, e := range raw {
		c[name] = models.RatioRecord{
			QuantityToAdd:      float64(e.QuantityToAdd),
			QuantityToAddUnit:  e.QuantityToAddUnit,
			ReferenceWater:     float64(e.ReferenceWater),
			ReferenceWaterUnit: e.ReferenceWaterUnit,
			Notes:              e.Notes,
		}
	}
	return c, nil
}

// Encode writes c as a catalog blob
func Encode(w io.Writer, c Catalog) error {
	if c == nil {
		c = Catalog{}
	}
	return json.NewEncoder(w).Encode(c)
}

package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Lixing-Zhang/dilution-calc/internal/models"
)

func TestDecode(t *testing.T) {
	blob := `{
		"Neem Oil": {"quantity_to_add": 5, "quantity_to_add_unit": "ml", "reference_water": 1, "reference_water_unit": "l", "notes": "spray at dusk"},
		"Potassium Soap": {"quantity_to_add": "12.5", "quantity_to_add_unit": "g", "reference_water": "500", "reference_water_unit": "ml", "notes": ""},
		"Edited": {"quantity_to_add": "3.", "quantity_to_add_unit": "kg", "reference_water": null, "reference_water_unit": "l"}
	}`

	c, err := Decode(strings.NewReader(blob))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if len(c) != 3 {
		t.Fatalf("expected 3 records, got %d", len(c))
	}

	neem := c["Neem Oil"]
	if neem.QuantityToAdd != 5 || neem.QuantityToAddUnit != models.UnitMilliliter || neem.Notes != "spray at dusk" {
		t.Errorf("Neem Oil = %+v", neem)
	}

	soap := c["Potassium Soap"]
	if soap.QuantityToAdd != 12.5 || soap.ReferenceWater != 500 {
		t.Errorf("numeric strings not parsed: %+v", soap)
	}

	edited := c["Edited"]
	if edited.QuantityToAdd != 3 || edited.ReferenceWater != 0 {
		t.Errorf("Edited = %+v", edited)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"not json", "products"},
		{"array instead of object", `[{"quantity_to_add": 1}]`},
		{"text that is not a number", `{"x": {"quantity_to_add": "lots"}}`},
		{"boolean quantity", `{"x": {"quantity_to_add": true}}`},
		{"infinite quantity", `{"x": {"quantity_to_add": "Infinity"}}`},
		{"infinite reference water", `{"x": {"reference_water": "Inf"}}`},
		{"negative infinity", `{"x": {"quantity_to_add": "-inf"}}`},
		{"not a number", `{"x": {"quantity_to_add": "NaN"}}`},
		{"out of range text", `{"x": {"reference_water": "1e400"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.blob)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	in := Catalog{
		"Bleach": {
			QuantityToAdd:      20,
			QuantityToAddUnit:  models.UnitMilliliter,
			ReferenceWater:     1,
			ReferenceWaterUnit: models.UnitLiter,
			Notes:              "ventilate",
		},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, in); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"quantity_to_add_unit":"ml"`) {
		t.Errorf("blob does not use app field names: %s", buf.String())
	}

	out, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if out["Bleach"] != in["Bleach"] {
		t.Errorf("got %+v, want %+v", out["Bleach"], in["Bleach"])
	}
}

func TestEncode_Nil(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "{}" {
		t.Errorf("Encode(nil) = %q, want {}", buf.String())
	}
}

func TestCatalog_NamesAndMerge(t *testing.T) {
	c := Catalog{"b": {QuantityToAdd: 1}, "a": {QuantityToAdd: 2}}
	c.Merge(Catalog{"b": {QuantityToAdd: 3}, "c": {QuantityToAdd: 4}})

	names := c.Names()
	if strings.Join(names, ",") != "a,b,c" {
		t.Errorf("Names() = %v", names)
	}
	if c["b"].QuantityToAdd != 3 {
		t.Errorf("Merge() did not replace b: %+v", c["b"])
	}
}

func TestFromProducts(t *testing.T) {
	products := []models.Product{
		{ID: "1", Name: "Bleach", RatioRecord: models.RatioRecord{QuantityToAdd: 20}},
		{ID: "2", Name: "Neem Oil", RatioRecord: models.RatioRecord{QuantityToAdd: 5}},
	}

	c := FromProducts(products)
	if len(c) != 2 || c["Neem Oil"].QuantityToAdd != 5 {
		t.Errorf("FromProducts() = %+v", c)
	}
}

package catalog

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Lixing-Zhang/dilution-calc/internal/models"
	"github.com/xuri/excelize/v2"
)

// ErrInvalidSheet is returned when a spreadsheet lacks the expected header
var ErrInvalidSheet = errors.New("spreadsheet has no catalog header")

// SheetHeader is the first row of exported spreadsheets
var SheetHeader = []string{
	"name",
	"quantity_to_add",
	"quantity_to_add_unit",
	"reference_water",
	"reference_water_unit",
	"notes",
}

// WriteXLSX writes products as a spreadsheet, one product per row
func WriteXLSX(w io.Writer, products []models.Product) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := make([]interface{}, len(SheetHeader))
	for i, h := range SheetHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range products {
		row := []interface{}{
			p.Name,
			p.QuantityToAdd,
			string(p.QuantityToAddUnit),
			p.ReferenceWater,
			string(p.ReferenceWaterUnit),
			p.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}

// ReadXLSX reads a spreadsheet written by WriteXLSX.
// Columns are matched by header name; rows without a name are skipped.
func ReadXLSX(r io.Reader) (Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrInvalidSheet
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, h := range SheetHeader[:5] {
		if _, ok := col[h]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrInvalidSheet, h)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	c := make(Catalog, len(rows)-1)
	for n, row := range rows[1:] {
		name := cell(row, "name")
		if name == "" {
			continue
		}

		qty, err := parseNumber(cell(row, "quantity_to_add"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		water, err := parseNumber(cell(row, "reference_water"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}

		c[name] = models.RatioRecord{
			QuantityToAdd:      qty,
			QuantityToAddUnit:  models.Unit(strings.ToLower(cell(row, "quantity_to_add_unit"))),
			ReferenceWater:     water,
			ReferenceWaterUnit: models.Unit(strings.ToLower(cell(row, "reference_water_unit"))),
			Notes:              cell(row, "notes"),
		}
	}
	return c, nil
}

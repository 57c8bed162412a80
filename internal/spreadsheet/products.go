// Package spreadsheet imports and exports the product catalog as XLSX.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"crinf-backoffice/internal/models"
)

var ErrSpreadsheetFormat = errors.New("invalid product spreadsheet")

// SheetName is the sheet written on export.
const SheetName = "Produtos"

// productNamespace seeds name-based IDs for rows that carry no ID column, so
// importing the same sheet twice yields the same IDs.
var productNamespace = uuid.MustParse("7b0e4c4e-5d1a-4f8e-9a4e-3c2f1d0b6a55")

// Result describes one import run.
type Result struct {
	Added   []models.Product
	Skipped int
	Errors  []string
}

// ImportProducts reads the first sheet of an XLSX workbook. Row 1 holds the
// headers. Rows whose ID is already in existing, or appeared earlier in the
// same sheet, are skipped rather than failing the batch.
func ImportProducts(r io.Reader, existing map[string]bool) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpreadsheetFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrSpreadsheetFormat)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpreadsheetFormat, err)
	}
	return importRows(rows, existing)
}

func importRows(rows [][]string, existing map[string]bool) (*Result, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: no data rows", ErrSpreadsheetFormat)
	}
	cols := mapHeaders(rows[0])
	if _, ok := cols[fieldName]; !ok {
		return nil, fmt.Errorf("%w: missing product name column", ErrSpreadsheetFormat)
	}

	seen := make(map[string]bool, len(existing))
	for id := range existing {
		seen[id] = true
	}

	res := &Result{}
	dataRows := 0
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		dataRows++

		p, err := productFromRow(row, cols)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		if seen[p.ID] {
			res.Skipped++
			continue
		}
		seen[p.ID] = true
		res.Added = append(res.Added, p)
	}

	if dataRows == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrSpreadsheetFormat)
	}
	return res, nil
}

func productFromRow(row []string, cols map[field]int) (models.Product, error) {
	cell := func(f field) string {
		i, ok := cols[f]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	name := cell(fieldName)
	if name == "" {
		return models.Product{}, errors.New("product name is empty")
	}

	id := cell(fieldID)
	if id == "" {
		id = uuid.NewSHA1(productNamespace, []byte(normalizeHeader(name))).String()
	}

	return models.Product{
		ID:          id,
		Name:        name,
		Category:    cell(fieldCategory),
		Description: cell(fieldDescription),
		Brand:       cell(fieldBrand),
		CostPrice:   ParseNumber(cell(fieldCostPrice)),
		SalePrice:   ParseNumber(cell(fieldSalePrice)),
		Stock:       parseInt(cell(fieldStock)),
		MinStock:    parseInt(cell(fieldMinStock)),
		Barcode:     cell(fieldBarcode),
		ImageURL:    cell(fieldImage),
		Active:      parseBool(cell(fieldActive), true),
	}, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ExportProducts writes products to a single-sheet XLSX workbook using the
// canonical headers.
func ExportProducts(products []models.Product) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(canonicalHeaders))
	for i, h := range canonicalHeaders {
		header[i] = h.title
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, p := range products {
		row := make([]interface{}, len(canonicalHeaders))
		for j, h := range canonicalHeaders {
			row[j] = productValue(p, h.field)
		}
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cellName, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func productValue(p models.Product, f field) interface{} {
	switch f {
	case fieldID:
		return p.ID
	case fieldName:
		return p.Name
	case fieldCategory:
		return p.Category
	case fieldDescription:
		return p.Description
	case fieldBrand:
		return p.Brand
	case fieldCostPrice:
		return p.CostPrice
	case fieldSalePrice:
		return p.SalePrice
	case fieldStock:
		return p.Stock
	case fieldMinStock:
		return p.MinStock
	case fieldBarcode:
		return p.Barcode
	case fieldImage:
		return p.ImageURL
	case fieldActive:
		if p.Active {
			return "Sim"
		}
		return "Nao"
	}
	return ""
}

// ExistingIDs indexes the IDs of products for ImportProducts.
func ExistingIDs(products []models.Product) map[string]bool {
	ids := make(map[string]bool, len(products))
	for _, p := range products {
		ids[p.ID] = true
	}
	return ids
}

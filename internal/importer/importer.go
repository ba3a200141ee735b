// Package importer loads equipment from uploaded XLSX workbooks. Rows are
// created independently: a bad row is reported with its row number and the
// rest of the sheet still imports.
package importer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tealeg/xlsx/v3"

	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

// Recognized header names, matched case-insensitively in the first row.
const (
	colTypeCode         = "type_code"
	colName             = "name"
	colSerialNumber     = "serial_number"
	colDatePutInService = "date_put_in_service"
	colNotes            = "notes"
)

// RowError reports one rejected spreadsheet row. Row is the 1-based row
// number as shown in a spreadsheet editor.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result summarizes an import: ids created, per-row rejections.
type Result struct {
	Created []string   `json:"created"`
	Errors  []RowError `json:"errors,omitempty"`
}

// ImportEquipment reads the first sheet of an XLSX workbook and creates one
// piece of equipment per data row. The first row must be a header naming at
// least type_code; name, serial_number, date_put_in_service, and notes are
// optional columns.
func ImportEquipment(ctx context.Context, db *sql.DB, data []byte, changedBy string) (*Result, error) {
	wb, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := wb.Sheets[0]

	columns, err := headerColumns(sheet)
	if err != nil {
		return nil, err
	}
	if _, ok := columns[colTypeCode]; !ok {
		return nil, fmt.Errorf("header row has no %s column", colTypeCode)
	}

	result := &Result{Created: []string{}}
	for i := 1; i < sheet.MaxRow; i++ {
		row, err := sheet.Row(i)
		if err != nil {
			break
		}
		e := equipmentFromRow(row, columns)
		if e == nil {
			continue
		}

		created, err := store.CreateEquipment(ctx, db, e, changedBy)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: i + 1, Reason: err.Error()})
			continue
		}
		result.Created = append(result.Created, created.EquipmentID)
	}
	return result, nil
}

// headerColumns maps recognized header names to their column index.
func headerColumns(sheet *xlsx.Sheet) (map[string]int, error) {
	header, err := sheet.Row(0)
	if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}

	columns := make(map[string]int)
	for col := 0; ; col++ {
		cell := header.GetCell(col)
		if cell == nil {
			break
		}
		name := strings.ToLower(strings.TrimSpace(cell.String()))
		if name == "" {
			break
		}
		switch name {
		case colTypeCode, colName, colSerialNumber, colDatePutInService, colNotes:
			columns[name] = col
		}
	}
	return columns, nil
}

// equipmentFromRow builds the equipment input for one data row, or nil if
// the row is entirely empty.
func equipmentFromRow(row *xlsx.Row, columns map[string]int) *model.Equipment {
	value := func(name string) string {
		col, ok := columns[name]
		if !ok {
			return ""
		}
		cell := row.GetCell(col)
		if cell == nil {
			return ""
		}
		return strings.TrimSpace(cell.String())
	}

	e := &model.Equipment{
		TypeCode:         value(colTypeCode),
		Name:             value(colName),
		SerialNumber:     value(colSerialNumber),
		DatePutInService: value(colDatePutInService),
		Notes:            value(colNotes),
	}
	if e.TypeCode == "" && e.Name == "" && e.SerialNumber == "" && e.DatePutInService == "" && e.Notes == "" {
		return nil
	}
	return e
}

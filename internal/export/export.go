// Package export renders compliance reports as XLSX workbooks. The same
// writer backs the API's spreadsheet downloads and the gearlog-export CLI.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/highpoint-ops/gearlog/internal/model"
)

// Sheet names used in the workbook.
const (
	SheetOverdue = "Overdue Inspections"
	SheetRedTag  = "Red Tag Countdown"
	SheetExpiry  = "Expiring Soft Goods"
)

// Workbook accumulates report sheets into one XLSX file.
type Workbook struct {
	file   *excelize.File
	sheets int
}

// New returns an empty workbook.
func New() *Workbook {
	return &Workbook{file: excelize.NewFile()}
}

// AddOverdueSheet writes the overdue-inspections report as a sheet.
func (w *Workbook) AddOverdueSheet(rows []model.OverdueInspection) error {
	headers := []string{
		"Equipment ID", "Type", "Description", "Name", "Status",
		"Last Inspection", "Next Due", "Days Overdue",
	}
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		last, due, overdue := r.LastInspectionDate, r.NextDueDate, strconv.Itoa(r.DaysOverdue)
		if r.NeverInspected {
			last, due, overdue = "never", "", ""
		}
		data = append(data, []any{
			r.EquipmentID, r.TypeCode, r.TypeDescription, r.Name, r.Status,
			last, due, overdue,
		})
	}
	return w.addSheet(SheetOverdue, headers, data)
}

// AddRedTagSheet writes the red-tag destruction countdown as a sheet.
func (w *Workbook) AddRedTagSheet(rows []model.RedTagCountdown) error {
	headers := []string{
		"Equipment ID", "Type", "Description", "Name",
		"Red Tag Date", "Destroy By", "Days Remaining", "Urgency",
	}
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{
			r.EquipmentID, r.TypeCode, r.TypeDescription, r.Name,
			r.RedTagDate, r.DestroyBy, r.DaysRemaining, r.Urgency,
		})
	}
	return w.addSheet(SheetRedTag, headers, data)
}

// AddExpirySheet writes the soft-goods expiry report as a sheet.
func (w *Workbook) AddExpirySheet(rows []model.ExpiringSoftGood) error {
	headers := []string{
		"Equipment ID", "Type", "Description", "Name",
		"First Use", "Lifespan (years)", "Expiry Date", "Days Remaining", "Urgency",
	}
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{
			r.EquipmentID, r.TypeCode, r.TypeDescription, r.Name,
			r.DatePutInService, r.LifespanYears, r.ExpiryDate, r.DaysRemaining, r.Urgency,
		})
	}
	return w.addSheet(SheetExpiry, headers, data)
}

func (w *Workbook) addSheet(name string, headers []string, rows [][]any) error {
	// The first sheet renames the default one; later sheets are appended.
	if w.sheets == 0 {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("naming sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("adding sheet %s: %w", name, err)
	}
	w.sheets++

	if err := w.file.SetSheetRow(name, "A1", &headers); err != nil {
		return fmt.Errorf("writing header of %s: %w", name, err)
	}
	if style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
		w.file.SetCellStyle(name, "A1", lastHeader, style)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("locating row %d of %s: %w", i+2, name, err)
		}
		if err := w.file.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("writing row %d of %s: %w", i+2, name, err)
		}
	}

	w.file.SetColWidth(name, "A", "A", 14)
	w.file.SetColWidth(name, "B", "D", 22)
	w.file.SetColWidth(name, "E", string(rune('A'+len(headers)-1)), 16)
	return nil
}

// Write serializes the workbook to wr.
func (w *Workbook) Write(wr io.Writer) error {
	if w.sheets == 0 {
		return fmt.Errorf("workbook has no sheets")
	}
	if err := w.file.Write(wr); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// SaveAs writes the workbook to a file on disk.
func (w *Workbook) SaveAs(path string) error {
	if w.sheets == 0 {
		return fmt.Errorf("workbook has no sheets")
	}
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

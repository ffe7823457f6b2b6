// Package export writes the transaction list as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"spendlog/internal/core"
	"spendlog/internal/sheets"
)

const (
	SheetName = "Transactions"

	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// WriteCSV writes a header row and one row per transaction in list order.
func WriteCSV(w io.Writer, list []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sheets.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range list {
		if err := cw.Write(csvSafe(sheets.Row(t))); err != nil {
			return fmt.Errorf("write row %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvSafe prefixes cells that a spreadsheet would read as a formula with a
// single quote. Amounts and dates never start with these characters.
func csvSafe(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		if cell != "" && strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
			cell = "'" + cell
		}
		out[i] = cell
	}
	return out
}

var colWidths = []float64{12, 10, 30, 15, 12, 40}

// WriteXLSX writes a single-sheet workbook. Amounts are stored as numbers
// with a two-decimal format so spreadsheet formulas work on them.
func WriteXLSX(w io.Writer, list []core.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: ptr("0.00")})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	for i, h := range sheets.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetName, cell, h)
	}

	for idx, t := range list {
		row := idx + 2
		f.SetCellValue(SheetName, fmt.Sprintf("A%d", row), t.Date)
		f.SetCellValue(SheetName, fmt.Sprintf("B%d", row), string(t.Type))
		f.SetCellValue(SheetName, fmt.Sprintf("C%d", row), t.Title)
		f.SetCellValue(SheetName, fmt.Sprintf("D%d", row), t.Category)
		f.SetCellValue(SheetName, fmt.Sprintf("E%d", row), t.Amount.InexactFloat64())
		f.SetCellStyle(SheetName, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), money)
		f.SetCellValue(SheetName, fmt.Sprintf("F%d", row), t.Description)
	}

	for i, width := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(SheetName, col, col, width)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

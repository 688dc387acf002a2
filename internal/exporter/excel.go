package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"datadeck/internal/config"
)

// ExcelWriter writes tables as single-sheet XLSX workbooks.
type ExcelWriter struct {
	paths *config.Paths
}

// NewExcelWriter creates a new Excel writer instance.
func NewExcelWriter(paths *config.Paths) *ExcelWriter {
	return &ExcelWriter{paths: paths}
}

// defaultSheet is the sheet name used for exports.
const defaultSheet = "Data"

// WriteWorkbook writes headers and records to an XLSX file and returns the
// full path written. The header row is bold.
func (w *ExcelWriter) WriteWorkbook(filename string, headers []string, records [][]string) (string, error) {
	fullPath := filename
	if !filepath.IsAbs(fullPath) {
		fullPath = w.paths.ExportPath(filename)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(defaultSheet)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := w.writeRow(f, 1, headers); err != nil {
		return "", err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil && len(headers) > 0 {
		endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(defaultSheet, "A1", endCell, style)
	}

	for i, record := range records {
		if err := w.writeRow(f, i+2, record); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Debug("wrote XLSX file",
		slog.String("path", fullPath),
		slog.Int("record_count", len(records)))

	return fullPath, nil
}

// writeRow writes one row of string cells starting at column A.
func (w *ExcelWriter) writeRow(f *excelize.File, row int, cells []string) error {
	if len(cells) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}

	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(defaultSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

package export

import (
	"fmt"
	"io"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the XLSX exports
const (
	OperatorSheet = "Operators"
	QueueSheet    = "Queues"
)

// XLSXContentType is the MIME type of XLSX downloads
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteOperatorXLSX writes operator rows to a single-sheet workbook
func WriteOperatorXLSX(w io.Writer, reports []types.OperatorReport) error {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, operatorRow(r))
	}
	return writeXLSX(w, OperatorSheet, operatorHeader(), rows)
}

// WriteQueueXLSX writes queue rows to a single-sheet workbook
func WriteQueueXLSX(w io.Writer, reports []types.QueueReport) error {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, queueRow(r))
	}
	return writeXLSX(w, QueueSheet, queueHeader(), rows)
}

func writeXLSX(w io.Writer, sheet string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet instead of adding a second one
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to resolve cell: %w", err)
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

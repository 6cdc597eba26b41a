package excel

import (
	"fmt"
	"io"
	"math"

	"genexplorer/domain/core"
	"genexplorer/domain/table"

	"github.com/xuri/excelize/v2"
)

// XLSXFileName returns the download name for a spreadsheet export
func XLSXFileName(kind table.Kind) string {
	return fmt.Sprintf("selected_%s_data.xlsx", kind)
}

// WriteXLSX writes a frame to a single-sheet workbook. Numeric cells are
// stored as numbers; everything else as text.
func WriteXLSX(frame *table.Frame, w io.Writer) error {
	if frame.Empty() {
		return core.ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := setRow(f, sheet, 1, frame.Columns, false); err != nil {
		return err
	}
	for i, row := range frame.Rows {
		if err := setRow(f, sheet, i+2, row, true); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, cells []string, typed bool) error {
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
		if typed {
			if v, ok := table.Float(c); ok && !math.IsInf(v, 0) {
				values[i] = v
			}
		}
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

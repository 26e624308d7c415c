package scan

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX returns an XLSX workbook (as bytes) holding the scan rows, for
// auditors who want filtering and conditional formatting over plain CSV.
func WriteXLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Findings"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// drop the default sheet excelize creates
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, r := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
		for col, v := range r.record() {
			write(col+1, v)
		}
	}

	// Widen the columns that carry prose
	_ = f.SetColWidth(sheet, "A", "A", 14) // user
	_ = f.SetColWidth(sheet, "B", "B", 28) // image
	_ = f.SetColWidth(sheet, "C", "C", 32) // strategy
	_ = f.SetColWidth(sheet, "D", "E", 22) // test id, sub-strategy
	_ = f.SetColWidth(sheet, "I", "I", 60) // recommendation
	_ = f.SetColWidth(sheet, "J", "J", 48) // evidence

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

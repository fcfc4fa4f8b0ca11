package grid

import (
	"github.com/xuri/excelize/v2"

	"github.com/macrossfev/report-verification/pkg/errors"
)

// OpenXLSX reads an OOXML workbook. Displayed values are read with number
// formats applied, so a cell storing 0.3 formatted to two decimals comes
// back as "0.30".
func OpenXLSX(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WrapRead(path, "xlsx", err)
	}
	defer func() { _ = f.Close() }()

	wb := &Workbook{Path: path}
	for _, name := range f.GetSheetList() {
		sheet, err := readXLSXSheet(f, name)
		if err != nil {
			return nil, errors.WrapRead(path, "xlsx", err)
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

func readXLSXSheet(f *excelize.File, name string) (*Sheet, error) {
	formatted, err := f.GetRows(name)
	if err != nil {
		return nil, err
	}
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	sheet := &Sheet{Name: name}
	for r, rawRow := range raw {
		var fmtRow []string
		if r < len(formatted) {
			fmtRow = formatted[r]
		}
		cells := make([]Cell, len(rawRow))
		for c, rv := range rawRow {
			fv := ""
			if c < len(fmtRow) {
				fv = fmtRow[c]
			}
			cells[c] = classify(rv, fv)
		}
		sheet.Cells = append(sheet.Cells, cells)
	}

	merges, err := f.GetMergeCells(name)
	if err != nil {
		return nil, err
	}
	for _, m := range merges {
		c0, r0, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			continue
		}
		c1, r1, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			continue
		}
		sheet.Merged = append(sheet.Merged, Region{
			Row0: r0 - 1, Col0: c0 - 1,
			Row1: r1 - 1, Col1: c1 - 1,
		})
	}
	return sheet, nil
}

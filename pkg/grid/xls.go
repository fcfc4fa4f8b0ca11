package grid

import (
	"strconv"
	"strings"

	"github.com/extrame/xls"

	"github.com/macrossfev/report-verification/pkg/errors"
)

// OpenXLS reads a legacy BIFF workbook. The BIFF reader yields cell values
// already rendered as strings, so the displayed decimal places survive;
// merged-region metadata is not available in this format and extraction
// compensates with upward inheritance instead.
func OpenXLS(path string) (*Workbook, error) {
	book, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, errors.WrapRead(path, "xls", err)
	}

	wb := &Workbook{Path: path}
	for i := 0; i < book.NumSheets(); i++ {
		ws := book.GetSheet(i)
		if ws == nil {
			continue
		}
		sheet := &Sheet{Name: ws.Name}
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				sheet.Cells = append(sheet.Cells, nil)
				continue
			}
			cells := make([]Cell, row.LastCol()+1)
			for c := row.FirstCol(); c <= row.LastCol(); c++ {
				cells[c] = classifyXLS(row.Col(c))
			}
			sheet.Cells = append(sheet.Cells, cells)
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

// classifyXLS builds a Cell from a BIFF string value. Storage and display
// are the same string here, so a numeric-looking value is a Number.
func classifyXLS(v string) Cell {
	if strings.TrimSpace(v) == "" {
		return Cell{Kind: Empty}
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
		return Cell{Kind: Number, Text: v, Number: n}
	}
	return Cell{Kind: Text, Text: v}
}

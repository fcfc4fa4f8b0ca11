package grid

import (
	"path/filepath"
	"strings"

	"github.com/macrossfev/report-verification/pkg/errors"
)

// Region is a merged cell range, zero-based and inclusive.
type Region struct {
	Row0, Col0 int
	Row1, Col1 int
}

// Contains reports whether the zero-based coordinate lies in the region.
func (r Region) Contains(row, col int) bool {
	return row >= r.Row0 && row <= r.Row1 && col >= r.Col0 && col <= r.Col1
}

// Sheet is one worksheet as a dense 2-D cell array plus merged-region
// metadata. Rows may be ragged; Cell compensates.
type Sheet struct {
	Name   string
	Cells  [][]Cell
	Merged []Region
}

// Rows returns the number of rows in the sheet.
func (s *Sheet) Rows() int { return len(s.Cells) }

// Cols returns the widest row length found in the sheet.
func (s *Sheet) Cols() int {
	max := 0
	for _, row := range s.Cells {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// Cell returns the cell at the zero-based coordinate, or an empty cell
// when the coordinate lies outside the populated area.
func (s *Sheet) Cell(row, col int) Cell {
	if row < 0 || row >= len(s.Cells) {
		return Cell{Kind: Empty}
	}
	r := s.Cells[row]
	if col < 0 || col >= len(r) {
		return Cell{Kind: Empty}
	}
	return r[col]
}

// Value returns the trimmed displayed value at the zero-based coordinate.
func (s *Sheet) Value(row, col int) string {
	return s.Cell(row, col).Value()
}

// Workbook is an in-memory spreadsheet: an ordered list of sheets.
type Workbook struct {
	Path   string
	Sheets []*Sheet
}

// Sheet returns the sheet at the given index, or nil when out of range.
func (w *Workbook) Sheet(i int) *Sheet {
	if i < 0 || i >= len(w.Sheets) {
		return nil
	}
	return w.Sheets[i]
}

// Open reads a spreadsheet file, dispatching on the filename extension.
func Open(path string) (*Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return OpenXLSX(path)
	case ".xls":
		return OpenXLS(path)
	default:
		return nil, errors.NewReadError(path, "", errors.ErrUnsupportedFormat)
	}
}

// Package grid reads spreadsheet files into an in-memory grid of typed
// cells. It supports the two container formats laboratory templates arrive
// in (OOXML .xlsx and legacy BIFF .xls) and performs no semantic
// interpretation; extraction layers consume the grid positionally.
package grid

import (
	"strconv"
	"strings"
)

// Kind classifies a cell's content. The closed set keeps type inspection
// out of the extraction and rule layers.
type Kind int

const (
	// Empty is a cell with no content.
	Empty Kind = iota
	// Text is a string-valued cell.
	Text
	// Number is a numeric cell.
	Number
	// Date is a numeric cell rendered through a date format.
	Date
)

// String returns a string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Text:
		return "text"
	case Number:
		return "number"
	case Date:
		return "date"
	default:
		return "unknown"
	}
}

// Cell is one grid cell. Text always holds the value as displayed in the
// original workbook: numeric cells keep their formatted decimal places
// ("0.30" stays "0.30"), because significant-figure checks count the
// literal digits, not the numeric value.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
}

// IsEmpty reports whether the cell has no displayable content.
func (c Cell) IsEmpty() bool {
	return c.Kind == Empty || strings.TrimSpace(c.Text) == ""
}

// Value returns the cell's displayed value with surrounding
// whitespace trimmed, or "" for an empty cell.
func (c Cell) Value() string {
	return strings.TrimSpace(c.Text)
}

// classify builds a Cell from a raw stored value and its displayed form.
// A value that is numeric in storage but non-numeric as displayed went
// through a date (or similar) format.
func classify(raw, formatted string) Cell {
	raw = strings.TrimSpace(raw)
	display := formatted
	if strings.TrimSpace(display) == "" {
		display = raw
	}
	if raw == "" && strings.TrimSpace(display) == "" {
		return Cell{Kind: Empty}
	}

	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		if _, err := strconv.ParseFloat(strings.TrimSpace(display), 64); err == nil {
			return Cell{Kind: Number, Text: display, Number: n}
		}
		return Cell{Kind: Date, Text: display, Number: n}
	}
	return Cell{Kind: Text, Text: display}
}

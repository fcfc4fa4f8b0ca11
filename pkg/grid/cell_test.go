package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		raw       string
		formatted string
		kind      Kind
		text      string
	}{
		{"", "", Empty, ""},
		{"pH", "", Text, "pH"},
		{"0.3", "0.30", Number, "0.30"},
		{"7.5", "", Number, "7.5"},
		{"45658", "2026.02.05", Date, "2026.02.05"},
		{"  ", "", Empty, ""},
	}
	for _, tt := range tests {
		c := classify(tt.raw, tt.formatted)
		assert.Equal(t, tt.kind, c.Kind, "raw=%q formatted=%q", tt.raw, tt.formatted)
		assert.Equal(t, tt.text, c.Text)
	}
}

func TestClassifyKeepsFormattedDecimals(t *testing.T) {
	c := classify("0.3", "0.30")
	assert.Equal(t, "0.30", c.Value())
	assert.Equal(t, 0.3, c.Number)
}

func TestCellIsEmpty(t *testing.T) {
	assert.True(t, Cell{Kind: Empty}.IsEmpty())
	assert.True(t, Cell{Kind: Text, Text: "   "}.IsEmpty())
	assert.False(t, Cell{Kind: Text, Text: "原水"}.IsEmpty())
}

func TestSheetOutOfRange(t *testing.T) {
	s := &Sheet{Cells: [][]Cell{
		{{Kind: Text, Text: "a"}, {Kind: Text, Text: "b"}},
		{{Kind: Text, Text: "c"}},
	}}
	assert.Equal(t, 2, s.Rows())
	assert.Equal(t, 2, s.Cols())
	assert.Equal(t, "c", s.Value(1, 0))
	assert.Equal(t, "", s.Value(1, 1), "ragged row reads as empty")
	assert.Equal(t, "", s.Value(-1, 0))
	assert.Equal(t, "", s.Value(5, 5))
}

func TestRegionContains(t *testing.T) {
	r := Region{Row0: 1, Col0: 0, Row1: 3, Col1: 2}
	assert.True(t, r.Contains(2, 1))
	assert.True(t, r.Contains(1, 0))
	assert.False(t, r.Contains(0, 0))
	assert.False(t, r.Contains(2, 3))
}

func TestWorkbookSheet(t *testing.T) {
	wb := &Workbook{Sheets: []*Sheet{{Name: "one"}}}
	assert.Equal(t, "one", wb.Sheet(0).Name)
	assert.Nil(t, wb.Sheet(1))
	assert.Nil(t, wb.Sheet(-1))
}

func TestOpenUnsupportedExtension(t *testing.T) {
	_, err := Open("report.csv")
	assert.Error(t, err)
}

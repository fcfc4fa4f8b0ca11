package records

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/macrossfev/report-verification/pkg/grid"
	"github.com/macrossfev/report-verification/pkg/issues"
)

var (
	lineWrapRe      = regexp.MustCompile(`\s*\n\s*`)
	trailingSepRe   = regexp.MustCompile(`[、，,]+$`)
	trailingUnitRe  = regexp.MustCompile(`\s*[\(（][^)）]*[\)）]\s*$`)
	unclosedUnitRe  = regexp.MustCompile(`\s*[\(（][^)）]*$`)
	interCJKSpaceRe = regexp.MustCompile(`(\p{Han})\s+(\p{Han})`)
	multiSpaceRe    = regexp.MustCompile(`\s{2,}`)
)

// CleanItemName normalizes an as-written test-item label: joins wrapped
// header lines, drops trailing separators and the trailing unit
// parenthetical (closed or unclosed), and collapses spacing inserted
// between CJK characters for cell justification.
func CleanItemName(raw string) string {
	s := strings.TrimSpace(raw)
	s = lineWrapRe.ReplaceAllString(s, "")
	s = trailingSepRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(trailingUnitRe.ReplaceAllString(s, ""))
	s = strings.TrimSpace(unclosedUnitRe.ReplaceAllString(s, ""))
	// The regexp cannot overlap matches, so alternate characters survive a
	// single pass over "氰 化 物"; repeat until stable.
	for {
		collapsed := interCJKSpaceRe.ReplaceAllString(s, "$1$2")
		if collapsed == s {
			break
		}
		s = collapsed
	}
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}

// cleanValue trims a raw value and strips trailing list separators left by
// hurried data entry.
func cleanValue(v string) string {
	return trailingSepRe.ReplaceAllString(strings.TrimSpace(v), "")
}

// Measurement-sheet orientation detection scans these header rows for
// sample ids.
const orientationScanRows = 3

// ExtractMeasurements reads all measurement sheets (second sheet onward)
// of the original-record workbook into TestData. Each sheet's orientation
// is detected independently:
//
//   - orientation A: sample ids in a header row, items down column 1;
//   - orientation B: sample ids down column 1, items in header columns.
//
// A sheet matching neither yields a layout issue and is skipped.
func ExtractMeasurements(wb *grid.Workbook) (TestData, []issues.Issue) {
	data := make(TestData)
	var found []issues.Issue
	base := filepath.Base(wb.Path)

	for si := 1; si < len(wb.Sheets); si++ {
		sheet := wb.Sheets[si]
		if sheet.Rows() < orientationScanRows {
			continue
		}

		sampleCols, headerRow := sampleHeaderColumns(sheet)
		if len(sampleCols) > 0 {
			extractItemsDown(sheet, sampleCols, headerRow, data)
			continue
		}
		if extractSamplesDown(sheet, data) {
			continue
		}
		found = append(found, issues.New(issues.Caution, issues.CategoryOriginalRecord,
			"原始记录 %q 工作表 %q 未识别出数据布局，已跳过", base, sheet.Name).
			WithFiles(base))
	}
	return data, found
}

// sampleHeaderColumns scans rows 2-3 for sample-id header cells and
// returns column -> sample id plus the deepest header row found.
func sampleHeaderColumns(sheet *grid.Sheet) (map[int]string, int) {
	cols := make(map[int]string)
	headerRow := 0
	for r := 1; r < orientationScanRows; r++ {
		for c := 0; c < sheet.Cols(); c++ {
			v := sheet.Value(r, c)
			if IsSampleID(v) {
				cols[c] = SampleID(v)
				if r > headerRow {
					headerRow = r
				}
			}
		}
	}
	return cols, headerRow
}

// extractItemsDown handles orientation A: one item per row, one sample per
// detected header column.
func extractItemsDown(sheet *grid.Sheet, sampleCols map[int]string, headerRow int, data TestData) {
	for r := headerRow + 1; r < sheet.Rows(); r++ {
		name := CleanItemName(sheet.Value(r, 0))
		if name == "" || isHeaderLabel(name) {
			continue
		}
		for c, sid := range sampleCols {
			cell := sheet.Cell(r, c)
			if cell.IsEmpty() {
				continue
			}
			put(data, sid, name, cleanValue(cell.Value()))
		}
	}
}

// extractSamplesDown handles orientation B: one sample per row, items as
// header columns on rows 2-3. Returns false when no item headers exist.
func extractSamplesDown(sheet *grid.Sheet, data TestData) bool {
	itemCols := make(map[int]string)
	for r := 1; r < orientationScanRows; r++ {
		for c := 1; c < sheet.Cols(); c++ {
			name := CleanItemName(sheet.Value(r, c))
			if len([]rune(name)) > 1 {
				itemCols[c] = name
			}
		}
	}
	if len(itemCols) == 0 {
		return false
	}
	for r := orientationScanRows; r < sheet.Rows(); r++ {
		v := sheet.Value(r, 0)
		if !IsSampleID(v) {
			continue
		}
		sid := SampleID(v)
		for c, name := range itemCols {
			cell := sheet.Cell(r, c)
			if cell.IsEmpty() {
				continue
			}
			put(data, sid, name, cleanValue(cell.Value()))
		}
	}
	return true
}

// isHeaderLabel filters the "项目/检测项目" header cell repeated above the
// item rows in orientation A.
func isHeaderLabel(name string) bool {
	return strings.Contains(name, "项") && strings.Contains(name, "目")
}

func put(data TestData, sid, item, value string) {
	if value == "" {
		return
	}
	if data[sid] == nil {
		data[sid] = make(map[string]string)
	}
	data[sid][item] = value
}

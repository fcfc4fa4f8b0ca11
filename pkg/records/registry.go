package records

import (
	"path/filepath"
	"strings"

	"github.com/macrossfev/report-verification/pkg/grid"
	"github.com/macrossfev/report-verification/pkg/issues"
)

// Registry header markers. The first sheet is scanned for cells containing
// these substrings; the matching column carries the field and the row
// below the marker row starts the data.
const (
	markerSampleID     = "样品编号"
	markerCompany      = "被检单位"
	markerLocation     = "采样地点"
	markerSamplingCode = "采样编号"
)

// Fallback column layout used when a marker is absent (columns are
// zero-based; the documented template puts seq, company, location,
// sampling code, sample id in the first five columns with data from the
// fourth row).
const (
	defaultCompanyCol      = 1
	defaultDescriptionCol  = 2
	defaultSamplingCodeCol = 3
	defaultSampleIDCol     = 4
	defaultDataStartRow    = 3
	headerScanRows         = 7
)

// ExtractRegistry reads the sample registry from the first sheet of the
// original-record workbook. Rows are accepted iff the sample-id column
// matches the sample-id pattern; an empty submitting-entity cell inherits
// from the nearest non-empty cell above it, compensating for vertically
// merged header cells without requiring merge metadata.
func ExtractRegistry(wb *grid.Workbook) ([]Sample, []issues.Issue) {
	var found []issues.Issue
	sheet := wb.Sheet(0)
	if sheet == nil {
		return nil, []issues.Issue{
			issues.New(issues.Important, issues.CategoryReadError,
				"原始记录文件 %q 无工作表", filepath.Base(wb.Path)).WithFiles(filepath.Base(wb.Path)),
		}
	}

	sidCol, companyCol, descCol, codeCol := -1, -1, -1, -1
	dataStart := -1
	scanRows := sheet.Rows()
	if scanRows > headerScanRows {
		scanRows = headerScanRows
	}
	for r := 0; r < scanRows; r++ {
		for c := 0; c < sheet.Cols(); c++ {
			v := sheet.Value(r, c)
			switch {
			case strings.Contains(v, markerSampleID):
				sidCol = c
				dataStart = r + 1
			case strings.Contains(v, markerCompany):
				companyCol = c
			case strings.Contains(v, markerLocation):
				descCol = c
			case strings.Contains(v, markerSamplingCode):
				codeCol = c
			}
		}
	}

	if sidCol < 0 || dataStart < 0 {
		found = append(found, issues.New(issues.Caution, issues.CategoryOriginalRecord,
			"原始记录 %q 登记表未找到表头标记，按默认列位置提取", filepath.Base(wb.Path)).
			WithFiles(filepath.Base(wb.Path)))
		sidCol = defaultSampleIDCol
		dataStart = defaultDataStartRow
	}
	if companyCol < 0 {
		companyCol = defaultCompanyCol
	}
	if descCol < 0 {
		descCol = defaultDescriptionCol
	}
	if codeCol < 0 {
		codeCol = defaultSamplingCodeCol
	}

	var registry []Sample
	for r := dataStart; r < sheet.Rows(); r++ {
		sid := sheet.Value(r, sidCol)
		if !IsSampleID(sid) {
			continue
		}
		company := sheet.Value(r, companyCol)
		if company == "" {
			// Vertically merged company cells leave all but the first row
			// empty; inherit upward.
			for rr := r - 1; rr >= dataStart; rr-- {
				if v := sheet.Value(rr, companyCol); v != "" {
					company = v
					break
				}
			}
		}
		registry = append(registry, Sample{
			Seq:          sheet.Value(r, 0),
			Company:      company,
			Description:  sheet.Value(r, descCol),
			SamplingCode: sheet.Value(r, codeCol),
			SampleID:     SampleID(sid),
		})
	}

	// Duplicate ids are flagged here, never silently collapsed.
	seen := make(map[string]int)
	for _, s := range registry {
		seen[s.SampleID]++
	}
	for _, s := range registry {
		if seen[s.SampleID] > 1 {
			found = append(found, issues.New(issues.Important, issues.CategoryOriginalRecord,
				"登记表样品编号 %s 重复出现 %d 次", s.SampleID, seen[s.SampleID]).
				WithSamples(s.SampleID))
			seen[s.SampleID] = 1 // emit once
		}
	}
	return registry, found
}

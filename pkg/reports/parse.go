package reports

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/macrossfev/report-verification/pkg/calibration"
	"github.com/macrossfev/report-verification/pkg/errors"
	"github.com/macrossfev/report-verification/pkg/grid"
	"github.com/macrossfev/report-verification/pkg/records"
)

var (
	reportNumberRe = regexp.MustCompile(`第\s*\(\s*(\d+)\s*\)\s*号`)
	totalPagesRe   = regexp.MustCompile(`共\s*(\d+)\s*页`)
	itemCountRe    = regexp.MustCompile(`(\d+)\s*项`)
	pageFooterRe   = regexp.MustCompile(`第\s*(\d+)\s*页\s*共\s*(\d+)\s*页`)
)

// Result-page sequence numbers outside this range are decoration, not rows.
const maxItemSeq = 100

// Parse reads a report workbook. Both spreadsheet formats share the same
// layout once coordinates are zero-based, so one walk serves both. A nil
// cal falls back to the compiled-in calibration.
func Parse(path string, cal *calibration.Calibration) (*Report, error) {
	wb, err := grid.Open(path)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		cal = calibration.Default()
	}

	fname := filepath.Base(path)
	rpt := &Report{
		Filename:   fname,
		Prefix:     NumberPrefix(fname),
		WaterType:  string(records.ClassifyFilename(fname)),
		PlantName:  PlantFromFilename(fname, cal.FilenameTags),
		SheetCount: len(wb.Sheets),
	}
	if rpt.SheetCount == 0 {
		return nil, errors.NewReadError(path, filepath.Ext(path), errors.ErrInvalidInput)
	}

	parseCover(wb.Sheets[0], rpt)
	if rpt.SheetCount >= 2 {
		parseSampleInfo(wb.Sheets[1], rpt)
	}
	for si := 2; si < rpt.SheetCount; si++ {
		parseResultPage(wb.Sheets[si], rpt)
	}
	for si := 0; si < rpt.SheetCount; si++ {
		rpt.Footers = append(rpt.Footers, scanFooter(wb.Sheets[si], si))
	}
	return rpt, nil
}

// parseCover reads the first sheet: report number, page count, sample
// name, client company and the report compilation date.
func parseCover(sheet *grid.Sheet, rpt *Report) {
	if b1 := sheet.Value(0, 1); b1 != "" {
		rpt.ReportNumberRaw = b1
		if m := reportNumberRe.FindStringSubmatch(b1); m != nil {
			rpt.ReportNumber, _ = strconv.Atoi(m[1])
		}
	}
	if m := totalPagesRe.FindStringSubmatch(sheet.Value(1, 1)); m != nil {
		rpt.TotalPages, _ = strconv.Atoi(m[1])
	}
	for r := 6; r < 12; r++ {
		if v := sheet.Value(r, 2); v != "" && (strings.Contains(v, "水") || strings.Contains(v, "【")) {
			rpt.SampleName = v
			break
		}
	}
	for r := 7; r < 12; r++ {
		if v := sheet.Value(r, 2); strings.Contains(v, "公司") {
			rpt.Company = v
			break
		}
	}
	for r := 9; r < 13; r++ {
		if strings.Contains(sheet.Value(r, 1), "报告编制日期") {
			if v := sheet.Value(r, 2); v != "" {
				rpt.ReportDate = v
				break
			}
		}
	}
}

// parseSampleInfo reads the fixed-position fields of the second sheet.
func parseSampleInfo(sheet *grid.Sheet, rpt *Report) {
	rpt.SampleType = sheet.Value(2, 2)
	rpt.Sampler = sheet.Value(3, 2)
	rpt.SamplingDate = sheet.Value(3, 4)
	rpt.ReceiptDate = sheet.Value(4, 4)
	rpt.SamplingLocation = sheet.Value(5, 2)
	rpt.SampleID = sheet.Value(7, 2)
	rpt.TestingDate = sheet.Value(7, 4)
	rpt.ProductStandard = sheet.Value(8, 2)
	rpt.TestItemsDesc = sheet.Value(9, 2)
	if m := itemCountRe.FindStringSubmatch(rpt.TestItemsDesc); m != nil {
		rpt.DeclaredItemCount, _ = strconv.Atoi(m[1])
	}
	rpt.Conclusion = sheet.Value(12, 1)
}

// parseResultPage collects item rows: a row counts when column 1 holds a
// plausible sequence number and column 2 a name.
func parseResultPage(sheet *grid.Sheet, rpt *Report) {
	for r := 0; r < sheet.Rows(); r++ {
		seqCell := sheet.Value(r, 0)
		name := sheet.Value(r, 1)
		if seqCell == "" || name == "" {
			continue
		}
		seq, err := parseSeq(seqCell)
		if err != nil || seq < 1 || seq > maxItemSeq {
			continue
		}
		rpt.Items = append(rpt.Items, Item{
			Seq:      seq,
			Name:     name,
			Unit:     sheet.Value(r, 2),
			Result:   sheet.Value(r, 3),
			Standard: sheet.Value(r, 4),
			Method:   sheet.Value(r, 5),
		})
	}
}

// parseSeq accepts both "3" and the "3.0" a numeric cell may render as.
func parseSeq(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// scanFooter looks for the "第 N 页 共 M 页" annotation in a sheet's top
// two rows, first ten columns.
func scanFooter(sheet *grid.Sheet, si int) Footer {
	for r := 0; r < 2 && r < sheet.Rows(); r++ {
		for c := 0; c < 10 && c < sheet.Cols(); c++ {
			m := pageFooterRe.FindStringSubmatch(sheet.Value(r, c))
			if m == nil {
				continue
			}
			page, _ := strconv.Atoi(m[1])
			total, _ := strconv.Atoi(m[2])
			return Footer{Sheet: si, Page: page, Total: total, Found: true}
		}
	}
	return Footer{Sheet: si}
}

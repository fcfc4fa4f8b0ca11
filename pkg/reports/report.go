// Package reports parses laboratory report workbooks: the cover page,
// the sample-information page and the result pages, plus metadata
// derived from the filename itself.
package reports

import (
	"regexp"
	"strings"
)

// Item is one row of a result page.
type Item struct {
	Seq      int
	Name     string
	Unit     string
	Result   string
	Standard string
	Method   string
}

// Footer records the page annotation found (or not) on one sheet.
type Footer struct {
	Sheet int
	Page  int
	Total int
	Found bool
}

// Report holds everything extracted from a single report workbook.
type Report struct {
	Filename  string
	Prefix    string
	WaterType string
	PlantName string

	SheetCount int
	TotalPages int

	ReportNumber    int
	ReportNumberRaw string

	SampleName string
	Company    string
	ReportDate string

	SampleID          string
	SampleType        string
	Sampler           string
	SamplingDate      string
	ReceiptDate       string
	SamplingLocation  string
	TestingDate       string
	ProductStandard   string
	TestItemsDesc     string
	DeclaredItemCount int
	Conclusion        string

	Items   []Item
	Footers []Footer
}

// Item returns the first result row whose name matches exactly, or nil.
func (r *Report) Item(name string) *Item {
	for i := range r.Items {
		if r.Items[i].Name == name {
			return &r.Items[i]
		}
	}
	return nil
}

var (
	numberPrefixRe = regexp.MustCompile(`^(\d+)`)
	extensionRe    = regexp.MustCompile(`\.(xlsx?|xls)$`)
	dateSuffixRe   = regexp.MustCompile(`\s*\d{2}\.\d{2}\s*$`)
	plantHeadRe    = regexp.MustCompile(`^(.+?水厂|.+?水库|.+?泵站)`)
	bareNameRe     = regexp.MustCompile(`^([^（(]+)`)
)

// NumberPrefix returns the leading digit run of a filename, e.g. "0001".
func NumberPrefix(fname string) string {
	return numberPrefixRe.FindString(fname)
}

// PlantFromFilename extracts the water-plant name from a report filename,
// e.g. "0012北门水厂（出厂水）01.05.xlsx" yields "北门水厂". tags are the
// batch decorations to strip first, from calibration.FilenameTags.
func PlantFromFilename(fname string, tags []string) string {
	name := numberPrefixRe.ReplaceAllString(fname, "")
	name = extensionRe.ReplaceAllString(name, "")
	name = dateSuffixRe.ReplaceAllString(name, "")
	for _, tag := range tags {
		name = strings.ReplaceAll(name, tag, "")
	}
	name = strings.Trim(name, " -")
	if m := plantHeadRe.FindStringSubmatch(name); m != nil {
		plant := m[1]
		plant = strings.TrimSuffix(plant, "管网水")
		if plant != m[1] {
			plant += "水厂"
		}
		return strings.TrimSpace(plant)
	}
	if m := bareNameRe.FindStringSubmatch(name); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(name)
}

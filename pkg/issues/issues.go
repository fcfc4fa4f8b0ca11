// Package issues defines the findings the verification engine emits and
// the aggregation that turns per-rule findings into one deterministic,
// reviewer-facing list. Issues are immutable once created.
package issues

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Severity ranks how urgently a finding needs review.
type Severity int

const (
	// Critical findings are almost certainly real errors (value mismatches,
	// negative QC values, toxic-metal exceedances).
	Critical Severity = iota
	// Important findings are likely errors but need context to judge.
	Important
	// Caution findings are plausibility flags that may be false positives.
	Caution
)

// String returns a string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case Critical:
		return "critical"
	case Important:
		return "important"
	case Caution:
		return "caution"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the severity as its string form.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Category groups issues into the named sections of the output report.
// The declaration order below is the section order.
type Category string

// Report sections, in output order.
const (
	CategoryOriginalRecord Category = "original-record"
	CategoryCrossData      Category = "cross-verification-data"
	CategoryCrossLogic     Category = "cross-verification-logic"
	CategoryNaming         Category = "file-naming"
	CategoryNumbering      Category = "report-numbering"
	CategoryData           Category = "report-data"
	CategoryFormat         Category = "report-format"
	CategoryDate           Category = "report-dates"
	CategoryConsistency    Category = "report-consistency"
	CategoryValues         Category = "abnormal-values"
	CategoryReadError      Category = "file-read-errors"
)

// categoryOrder fixes the section order of the rendered report.
var categoryOrder = []Category{
	CategoryOriginalRecord,
	CategoryCrossData,
	CategoryCrossLogic,
	CategoryNaming,
	CategoryNumbering,
	CategoryData,
	CategoryFormat,
	CategoryDate,
	CategoryConsistency,
	CategoryValues,
	CategoryReadError,
}

// sectionTitles are the reviewer-facing headings.
var sectionTitles = map[Category]string{
	CategoryOriginalRecord: "原始记录检查",
	CategoryCrossData:      "交叉验证 - 数据一致性",
	CategoryCrossLogic:     "交叉验证 - 逻辑关系",
	CategoryNaming:         "报告命名问题",
	CategoryNumbering:      "报告编号问题",
	CategoryData:           "报告数据问题",
	CategoryFormat:         "报告格式/模板问题",
	CategoryDate:           "报告日期问题",
	CategoryConsistency:    "报告一致性问题",
	CategoryValues:         "报告异常值问题",
	CategoryReadError:      "文件读取问题",
}

// categoryRank returns the section position of a category. Unknown
// categories sort last so a forgotten registration is still visible.
func categoryRank(c Category) int {
	for i, known := range categoryOrder {
		if c == known {
			return i
		}
	}
	return len(categoryOrder)
}

// Issue is one finding. SampleIDs and Filenames reference the originating
// records where resolvable; ReportNumber carries the embedded report
// number as written (zero-padding preserved).
type Issue struct {
	Severity     Severity `json:"severity"`
	Category     Category `json:"category"`
	Message      string   `json:"message"`
	SampleIDs    []string `json:"sample_ids,omitempty"`
	ReportNumber string   `json:"report_number,omitempty"`
	Filenames    []string `json:"filenames,omitempty"`
}

// New creates an issue with no record references.
func New(sev Severity, cat Category, format string, args ...any) Issue {
	return Issue{Severity: sev, Category: cat, Message: fmt.Sprintf(format, args...)}
}

// WithSamples returns a copy referencing the given sample ids.
func (i Issue) WithSamples(ids ...string) Issue {
	i.SampleIDs = append([]string(nil), ids...)
	return i
}

// WithReport returns a copy referencing the given report number.
func (i Issue) WithReport(number string) Issue {
	i.ReportNumber = number
	return i
}

// WithFiles returns a copy referencing the given filenames.
func (i Issue) WithFiles(names ...string) Issue {
	i.Filenames = append([]string(nil), names...)
	return i
}

// key is the deduplication identity of an issue.
func (i Issue) key() string {
	return strconv.Itoa(int(i.Severity)) + "|" + string(i.Category) + "|" + i.Message
}

// numericKey extracts a stable numeric sort key: the report number when
// present, else a digit run from the first referenced sample id.
func (i Issue) numericKey() int {
	if n, err := strconv.Atoi(strings.TrimSpace(i.ReportNumber)); err == nil {
		return n
	}
	if len(i.SampleIDs) > 0 {
		digits := strings.Builder{}
		for _, r := range i.SampleIDs[0] {
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			}
		}
		if digits.Len() > 0 {
			// Digit runs can exceed int range only on garbage input.
			if n, err := strconv.Atoi(digits.String()); err == nil {
				return n
			}
		}
	}
	return 0
}

// Aggregate merges issue lists from independent rule evaluations into one
// deduplicated list with a deterministic order: section, then severity,
// then numeric key, then message. Re-running an unchanged batch therefore
// yields byte-identical output regardless of evaluation scheduling.
func Aggregate(lists ...[]Issue) []Issue {
	var merged []Issue
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, issue := range list {
			k := issue.key()
			if seen[k] {
				continue
			}
			seen[k] = true
			merged = append(merged, issue)
		}
	}
	sort.SliceStable(merged, func(a, b int) bool {
		ia, ib := merged[a], merged[b]
		if ra, rb := categoryRank(ia.Category), categoryRank(ib.Category); ra != rb {
			return ra < rb
		}
		if ia.Severity != ib.Severity {
			return ia.Severity < ib.Severity
		}
		if ka, kb := ia.numericKey(), ib.numericKey(); ka != kb {
			return ka < kb
		}
		return ia.Message < ib.Message
	})
	return merged
}

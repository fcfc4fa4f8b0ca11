package issues

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Meta describes the batch a report covers. No timestamp is included:
// output must be byte-identical across re-runs of an unchanged directory.
type Meta struct {
	Directory      string
	OriginalRecord string
	ReportFiles    int
}

const ruleLine = "────────────────────────────────────────────────────────────────────────"

// Render produces the reviewer-facing plain-text report: a summary, one
// section per category with globally numbered findings, and a closing
// disclaimer that findings require human confirmation.
func Render(list []Issue, meta Meta) string {
	var b strings.Builder

	border := strings.Repeat("=", 72)
	b.WriteString(border + "\n")
	b.WriteString("    水质检测报告验证 —— 待确认问题清单\n")
	b.WriteString(border + "\n")
	if meta.Directory != "" {
		fmt.Fprintf(&b, "扫描目录：%s\n", meta.Directory)
	}
	if meta.OriginalRecord != "" {
		fmt.Fprintf(&b, "原始记录：%s\n", meta.OriginalRecord)
	}
	fmt.Fprintf(&b, "报告文件数：%d\n", meta.ReportFiles)
	b.WriteString("\n")

	bySection := make(map[Category][]Issue)
	for _, issue := range list {
		bySection[issue.Category] = append(bySection[issue.Category], issue)
	}

	fmt.Fprintf(&b, "共发现 %d 项待确认问题，分类如下：\n", len(list))
	for i, cat := range categoryOrder {
		fmt.Fprintf(&b, "  %s、%s：%d 项\n", cnOrdinal(i+1), sectionTitles[cat], len(bySection[cat]))
	}
	b.WriteString("\n")

	counter := 0
	for i, cat := range categoryOrder {
		section := bySection[cat]
		b.WriteString(ruleLine + "\n")
		fmt.Fprintf(&b, "%s、%s（共 %d 项）\n", cnOrdinal(i+1), sectionTitles[cat], len(section))
		b.WriteString(ruleLine + "\n")
		if len(section) == 0 {
			b.WriteString("  （无）\n\n")
			continue
		}
		for _, issue := range section {
			counter++
			fmt.Fprintf(&b, "  %d. %s[%s] %s\n", counter, refTag(issue), issue.Severity, issue.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString(border + "\n")
	b.WriteString("以上问题均为程序自动检测，可能存在误报，请人工逐项核实。\n")
	b.WriteString(border + "\n")
	return b.String()
}

// refTag formats the originating sample/report references of an issue.
func refTag(issue Issue) string {
	var parts []string
	if len(issue.SampleIDs) > 0 {
		parts = append(parts, "样品"+strings.Join(issue.SampleIDs, ","))
	}
	if issue.ReportNumber != "" {
		parts = append(parts, "报告"+issue.ReportNumber)
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, " / ") + "] "
}

// cnOrdinal renders a small positive integer as a Chinese section ordinal.
func cnOrdinal(n int) string {
	digits := []string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九", "十"}
	switch {
	case n <= 10:
		return digits[n]
	case n < 20:
		return "十" + digits[n-10]
	default:
		return fmt.Sprintf("%d", n)
	}
}

// MarshalRecords renders issues as newline-delimited JSON, one record per
// issue, for programmatic consumption by external reporting layers.
func MarshalRecords(list []Issue) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, issue := range list {
		if err := enc.Encode(issue); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

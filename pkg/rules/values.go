package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/macrossfev/report-verification/pkg/issues"
)

func valueRules() []Rule {
	return []Rule{
		{Name: "values-standard-exceedance", Category: issues.CategoryValues, Check: checkStandardExceedance},
		{Name: "values-ph-range", Category: issues.CategoryValues, Check: checkReportPHRange},
		{Name: "values-negatives", Category: issues.CategoryValues, Check: checkReportNegatives},
	}
}

var (
	bareLimitRe  = regexp.MustCompile(`^[\d.]+$`)
	rangeLimitRe = regexp.MustCompile(`^([\d.]+)\s*[~\-～]\s*([\d.]+)`)
)

// standardLimit extracts the effective upper limit from a written
// standard and decides whether a value exceeds it. Supported forms are
// "≤x"/"<x", a bare number, and "lo~hi" ranges.
func standardLimit(standard string, val float64) (limit float64, exceeded, ok bool) {
	standard = strings.TrimSpace(standard)
	if standard == "" {
		return 0, false, false
	}
	if m := rangeLimitRe.FindStringSubmatch(standard); m != nil {
		lo, errLo := strconv.ParseFloat(m[1], 64)
		hi, errHi := strconv.ParseFloat(m[2], 64)
		if errLo == nil && errHi == nil {
			return hi, val < lo || val > hi, true
		}
	}
	if m := standardLimitRe.FindStringSubmatch(standard); m != nil {
		if lim, err := strconv.ParseFloat(m[1], 64); err == nil {
			return lim, val > lim, true
		}
	}
	if bareLimitRe.MatchString(standard) {
		if lim, err := strconv.ParseFloat(standard, 64); err == nil {
			return lim, val > lim, true
		}
	}
	return 0, false, false
}

func checkStandardExceedance(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		for _, item := range r.Items {
			result := strings.TrimSpace(item.Result)
			if result == "" || result == "None" || strings.Contains(item.Name, "水温") {
				continue
			}
			if belowLimit(result) || skippableResult(result) {
				continue
			}
			val, ok := parseNumeric(result)
			if !ok {
				continue
			}
			limit, exceeded, ok := standardLimit(item.Standard, val)
			if !ok || !exceeded {
				continue
			}
			sev := issues.Important
			ratioStr := ""
			if limit > 0 {
				ratio := val / limit
				ratioStr = fmt.Sprintf("（为标准限值的 %.1f 倍）", ratio)
				if ratio >= c.Cal.Thresholds.CriticalExceedRatio {
					sev = issues.Critical
				}
			}
			if c.Cal.Toxic(item.Name) {
				sev = issues.Critical
			}
			found = append(found, tagReport(issues.New(sev, issues.CategoryValues,
				"文件 %q 检测项目 %q 结果 %s 超出标准限值 %s %s",
				r.Filename, item.Name, result, item.Standard, ratioStr), r))
		}
	}
	return found
}

func checkReportPHRange(c *Context) []issues.Issue {
	var found []issues.Issue
	th := c.Cal.Thresholds
	for _, r := range c.Reports {
		for _, item := range r.Items {
			if item.Name != "pH" || belowLimit(item.Result) {
				continue
			}
			if v, ok := parseNumeric(item.Result); ok && (v < th.PHMin || v > th.PHMax) {
				found = append(found, tagReport(issues.New(issues.Critical, issues.CategoryValues,
					"文件 %q pH 值 %s 异常（通常范围 6-9）", r.Filename, item.Result), r))
			}
		}
	}
	return found
}

func checkReportNegatives(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		for _, item := range r.Items {
			result := strings.TrimSpace(item.Result)
			if result == "" || belowLimit(result) || skippableResult(result) {
				continue
			}
			if v, ok := parseNumeric(result); ok && v < 0 {
				found = append(found, tagReport(issues.New(issues.Critical, issues.CategoryValues,
					"文件 %q 检测项目 %q 结果为负值 %s", r.Filename, item.Name, result), r))
			}
		}
	}
	return found
}

package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/macrossfev/report-verification/pkg/issues"
	"github.com/macrossfev/report-verification/pkg/reconcile"
	"github.com/macrossfev/report-verification/pkg/records"
	"github.com/macrossfev/report-verification/pkg/reports"
)

func crossDataRules() []Rule {
	return []Rule{
		{Name: "cross-missing-report", Category: issues.CategoryCrossData, Check: checkMissingReport},
		{Name: "cross-unknown-sample", Category: issues.CategoryCrossData, Check: checkUnknownSample},
		{Name: "cross-company", Category: issues.CategoryCrossData, Check: checkCompanyConsistency},
		{Name: "cross-values", Category: issues.CategoryCrossData, Check: checkValueReconciliation},
		{Name: "cross-conclusion", Category: issues.CategoryCrossData, Check: checkConclusionContradiction},
		{Name: "cross-raw-water-standard", Category: issues.CategoryCrossData, Check: checkRawWaterStandard},
		{Name: "cross-sampling-location", Category: issues.CategoryCrossData, Check: checkSamplingLocation},
	}
}

// tagReport stamps an issue with a report's filename and number.
func tagReport(is issues.Issue, r *reports.Report) issues.Issue {
	is = is.WithFiles(r.Filename)
	if r.ReportNumber > 0 {
		is = is.WithReport(strconv.Itoa(r.ReportNumber))
	}
	return is
}

func checkMissingReport(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, s := range c.Registry {
		if !records.IsRoutine(s.SampleID) {
			continue
		}
		if _, ok := c.BySample[s.SampleID]; !ok {
			found = append(found, issues.New(issues.Important, issues.CategoryCrossData,
				"原始记录样品 %s（%s）未找到对应报告文件", s.SampleID, s.Description).
				WithSamples(s.SampleID))
		}
	}
	return found
}

func checkUnknownSample(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		sid := strings.TrimSpace(r.SampleID)
		if sid == "" || !records.IsSampleID(sid) {
			continue
		}
		if _, ok := c.ByID[records.SampleID(sid)]; !ok {
			found = append(found, tagReport(issues.New(issues.Important, issues.CategoryCrossData,
				"报告 %q 样品编号「%s」在原始记录中无对应，可能属于其他批次", r.Filename, sid), r).
				WithSamples(records.SampleID(sid)))
		}
	}
	return found
}

func checkCompanyConsistency(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, s := range c.Registry {
		r, ok := c.BySample[s.SampleID]
		if !ok {
			continue
		}
		expected, actual := s.Company, r.Company
		if expected == "" || actual == "" {
			continue
		}
		if !strings.Contains(actual, expected) && !strings.Contains(expected, actual) {
			found = append(found, tagReport(issues.New(issues.Important, issues.CategoryCrossData,
				"报告 %q 被检单位不一致：原始记录「%s」，报告「%s」", r.Filename, expected, actual), r).
				WithSamples(s.SampleID))
		}
	}
	return found
}

// baseItemName strips the parenthesized or space-separated unit suffix
// for skip-list lookup.
func baseItemName(name string) string {
	s := name
	if i := strings.IndexAny(s, "(（"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	return s
}

func checkValueReconciliation(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, s := range c.Registry {
		r, ok := c.BySample[s.SampleID]
		if !ok {
			continue
		}
		items := c.Data[s.SampleID]
		if len(items) == 0 {
			continue
		}
		isRaw := strings.Contains(s.Description, string(records.RawWater))
		for _, origName := range sortedKeys(items) {
			origVal := items[origName]
			if c.Cal.Skip(baseItemName(origName)) {
				continue
			}
			if isRaw && c.Cal.SkipForRawWater(origName) {
				continue
			}
			matched := c.Resolver.Resolve(origName, r.Items)
			if matched == nil {
				found = append(found, tagReport(issues.New(issues.Important, issues.CategoryCrossData,
					"报告 %q 缺少原始记录项目「%s」(原始值=%s)", r.Filename, origName, origVal), r).
					WithSamples(s.SampleID))
				continue
			}
			if c.Comparator.StrictMatch(origVal, matched.Result) {
				continue
			}
			if c.Comparator.IsValueDifference(origVal, matched.Result) {
				found = append(found, tagReport(issues.New(issues.Critical, issues.CategoryCrossData,
					"报告 %q 数值不一致 - 「%s」: 原始记录=%s, 报告=%s",
					r.Filename, origName, origVal, matched.Result), r).
					WithSamples(s.SampleID))
			} else {
				found = append(found, tagReport(issues.New(issues.Important, issues.CategoryCrossData,
					"报告 %q 数字位数不一致 - 「%s」: 原始记录=%s, 报告=%s",
					r.Filename, origName, origVal, matched.Result), r).
					WithSamples(s.SampleID))
			}
		}
	}
	return found
}

var standardLimitRe = regexp.MustCompile(`[≤<]\s*([\d.]+)`)

// compliantConclusion reports a conclusion that declares the sample
// acceptable.
func compliantConclusion(conclusion string) bool {
	if conclusion == "" || strings.Contains(conclusion, "不") {
		return false
	}
	return strings.Contains(conclusion, "符合") ||
		strings.Contains(conclusion, "合格") ||
		strings.Contains(conclusion, "满足")
}

func checkConclusionContradiction(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		if !compliantConclusion(r.Conclusion) {
			continue
		}
		for _, item := range r.Items {
			result := reconcile.Normalize(item.Result)
			if result == "" || belowLimit(result) || skippableResult(result) || strings.Contains(item.Name, "水温") {
				continue
			}
			val, ok := parseNumeric(result)
			if !ok {
				continue
			}
			m := standardLimitRe.FindStringSubmatch(item.Standard)
			if m == nil {
				continue
			}
			limit, err := strconv.ParseFloat(m[1], 64)
			if err != nil || val <= limit {
				continue
			}
			summary := r.Conclusion
			if rs := []rune(summary); len(rs) > 50 {
				summary = string(rs[:50])
			}
			found = append(found, tagReport(issues.New(issues.Important, issues.CategoryCrossData,
				"报告 %q 结论为「%s」，但「%s」结果(%s)超标(%s)，结论与数据矛盾",
				r.Filename, summary, item.Name, item.Result, item.Standard), r))
			break
		}
	}
	return found
}

func checkRawWaterStandard(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		if r.WaterType != string(records.RawWater) {
			continue
		}
		switch {
		case strings.Contains(r.ProductStandard, "生活饮用水") || strings.Contains(r.ProductStandard, "5749"):
			found = append(found, tagReport(issues.New(issues.Important, issues.CategoryCrossData,
				"报告 %q 为原水报告但引用了生活饮用水标准，通常应引用地表水标准（GB 3838）", r.Filename), r))
		case strings.Contains(r.Conclusion, "生活饮用水"):
			found = append(found, tagReport(issues.New(issues.Important, issues.CategoryCrossData,
				"报告 %q 为原水报告但结论中引用了生活饮用水标准，请确认", r.Filename), r))
		}
	}
	return found
}

func checkSamplingLocation(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, s := range c.Registry {
		r, ok := c.BySample[s.SampleID]
		if !ok || s.Description == "" || r.SamplingLocation == "" {
			continue
		}
		keyLoc := records.SourceFromDescription(s.Description)
		if keyLoc == "" {
			continue
		}
		loc := r.SamplingLocation
		if strings.Contains(loc, keyLoc) || strings.Contains(keyLoc, loc) {
			continue
		}
		plant := records.PlantFromDescription(s.Description)
		if plant != "" && !strings.Contains(loc, plant) {
			found = append(found, tagReport(issues.New(issues.Caution, issues.CategoryCrossData,
				"报告 %q 采样地点可能不一致：原始记录「%s」，报告「%s」",
				r.Filename, s.Description, loc), r).
				WithSamples(s.SampleID))
		}
	}
	return found
}

package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/macrossfev/report-verification/pkg/issues"
	"github.com/macrossfev/report-verification/pkg/records"
	"github.com/macrossfev/report-verification/pkg/reports"
)

func formatRules() []Rule {
	return []Rule{
		{Name: "format-sheet-count", Category: issues.CategoryFormat, Check: checkCohortSheetCount},
		{Name: "format-page-count", Category: issues.CategoryFormat, Check: checkCohortPageCount},
		{Name: "format-product-standard", Category: issues.CategoryFormat, Check: checkCohortStandard},
		{Name: "format-item-count", Category: issues.CategoryFormat, Check: checkCohortItemCount},
		{Name: "format-network-template-split", Category: issues.CategoryFormat, Check: checkNetworkTemplateSplit},
		{Name: "format-page-footers", Category: issues.CategoryFormat, Check: checkPageFooters},
	}
}

// cohortMajority flags group members deviating from the most common
// value of some report attribute. Zero values are treated as unknown.
func cohortMajority[V comparable](group []*reports.Report, wt string, get func(*reports.Report) V, render func(r *reports.Report, got, want V) issues.Issue) []issues.Issue {
	var zero V
	counts := make(map[V]int)
	for _, r := range group {
		counts[get(r)]++
	}
	if len(counts) <= 1 {
		return nil
	}
	var major V
	majorN := -1
	keys := make([]string, 0, len(counts))
	byKey := make(map[string]V, len(counts))
	for v := range counts {
		k := fmt.Sprint(v)
		keys = append(keys, k)
		byKey[k] = v
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[byKey[k]] > majorN {
			major, majorN = byKey[k], counts[byKey[k]]
		}
	}
	var found []issues.Issue
	for _, r := range group {
		got := get(r)
		if got != major && got != zero {
			found = append(found, render(r, got, major))
		}
	}
	return found
}

func checkCohortSheetCount(c *Context) []issues.Issue {
	cohorts, types := c.typeCohorts()
	var found []issues.Issue
	for _, wt := range types {
		group := cohorts[wt]
		if len(group) < 2 {
			continue
		}
		wt := wt
		found = append(found, cohortMajority(group, wt,
			func(r *reports.Report) int { return r.SheetCount },
			func(r *reports.Report, got, want int) issues.Issue {
				return tagReport(issues.New(issues.Caution, issues.CategoryFormat,
					"文件 %q（%s类）共 %d 个工作表，而同类报告多数为 %d 个工作表", r.Filename, wt, got, want), r)
			})...)
	}
	return found
}

func checkCohortPageCount(c *Context) []issues.Issue {
	cohorts, types := c.typeCohorts()
	var found []issues.Issue
	for _, wt := range types {
		group := cohorts[wt]
		if len(group) < 2 {
			continue
		}
		wt := wt
		found = append(found, cohortMajority(group, wt,
			func(r *reports.Report) int { return r.TotalPages },
			func(r *reports.Report, got, want int) issues.Issue {
				return tagReport(issues.New(issues.Caution, issues.CategoryFormat,
					"文件 %q（%s类）报告页数为 %d 页，而同类报告多数为 %d 页", r.Filename, wt, got, want), r)
			})...)
	}
	return found
}

func checkCohortStandard(c *Context) []issues.Issue {
	cohorts, types := c.typeCohorts()
	var found []issues.Issue
	for _, wt := range types {
		group := cohorts[wt]
		if len(group) < 2 {
			continue
		}
		wt := wt
		found = append(found, cohortMajority(group, wt,
			func(r *reports.Report) string { return strings.TrimSpace(r.ProductStandard) },
			func(r *reports.Report, got, want string) issues.Issue {
				return tagReport(issues.New(issues.Caution, issues.CategoryFormat,
					"文件 %q（%s类）产品标准为 %q，而同类报告多数为 %q", r.Filename, wt, got, want), r)
			})...)
	}
	return found
}

func checkCohortItemCount(c *Context) []issues.Issue {
	cohorts, types := c.typeCohorts()
	var found []issues.Issue
	for _, wt := range types {
		group := cohorts[wt]
		if len(group) < 2 {
			continue
		}
		wt := wt
		found = append(found, cohortMajority(group, wt,
			func(r *reports.Report) int { return r.DeclaredItemCount },
			func(r *reports.Report, got, want int) issues.Issue {
				return tagReport(issues.New(issues.Caution, issues.CategoryFormat,
					"文件 %q（%s类）检测项目数为 %d 项，而同类报告多数为 %d 项", r.Filename, wt, got, want), r)
			})...)
	}
	return found
}

// pageDistribution renders a page-count histogram deterministically.
func pageDistribution(group []*reports.Report) string {
	counts := make(map[int]int)
	for _, r := range group {
		counts[r.TotalPages]++
	}
	pages := make([]int, 0, len(counts))
	for p := range counts {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprintf("%d页:%d个", p, counts[p])
	}
	return strings.Join(parts, ", ")
}

func checkNetworkTemplateSplit(c *Context) []issues.Issue {
	var xls, xlsx []*reports.Report
	for _, r := range c.Reports {
		if r.WaterType != string(records.NetworkWater) {
			continue
		}
		if strings.HasSuffix(strings.ToLower(r.Filename), ".xls") {
			xls = append(xls, r)
		} else {
			xlsx = append(xlsx, r)
		}
	}
	if len(xls) == 0 || len(xlsx) == 0 {
		return nil
	}
	return []issues.Issue{issues.New(issues.Caution, issues.CategoryFormat,
		"管网水报告中，.xls 文件共 %d 个（页数分布：%s），.xlsx 文件共 %d 个（页数分布：%s），请确认是否使用不同模板",
		len(xls), pageDistribution(xls), len(xlsx), pageDistribution(xlsx))}
}

func checkPageFooters(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		if r.SheetCount == 0 {
			continue
		}
		for _, f := range r.Footers {
			expected := f.Sheet + 1
			if !f.Found {
				found = append(found, tagReport(issues.New(issues.Caution, issues.CategoryFormat,
					"文件 %q 第%d个工作表未找到页码标注", r.Filename, expected), r))
				continue
			}
			if f.Page != expected {
				found = append(found, tagReport(issues.New(issues.Caution, issues.CategoryFormat,
					"文件 %q 第%d个工作表页码标注为\"第 %d 页\"，应为\"第 %d 页\"", r.Filename, expected, f.Page, expected), r))
			}
			if f.Total != r.SheetCount {
				found = append(found, tagReport(issues.New(issues.Caution, issues.CategoryFormat,
					"文件 %q 第%d个工作表标注\"共 %d 页\"，实际共 %d 页", r.Filename, expected, f.Total, r.SheetCount), r))
			}
		}
	}
	return found
}

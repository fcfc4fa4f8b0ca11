package rules

import (
	"strings"

	"github.com/macrossfev/report-verification/pkg/issues"
	"github.com/macrossfev/report-verification/pkg/reconcile"
)

func dataRules() []Rule {
	return []Rule{
		{Name: "data-missing-fields", Category: issues.CategoryData, Check: checkMissingFields},
		{Name: "data-blank-results", Category: issues.CategoryData, Check: checkBlankResults},
		{Name: "data-blank-methods", Category: issues.CategoryData, Check: checkBlankMethods},
		{Name: "data-declared-item-count", Category: issues.CategoryData, Check: checkDeclaredItemCount},
		{Name: "data-duplicate-items", Category: issues.CategoryData, Check: checkDuplicateItems},
		{Name: "data-digit-uniformity", Category: issues.CategoryData, Check: checkReportDigitUniformity},
	}
}

func checkMissingFields(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		fields := []struct {
			val  string
			what string
		}{
			{r.SampleName, "样品名称"},
			{r.Company, "被检单位名称"},
			{r.SamplingDate, "采样日期"},
			{r.SampleID, "样品编号"},
			{r.Conclusion, "检测结论"},
			{r.ReportDate, "报告编制日期"},
		}
		for _, f := range fields {
			if strings.TrimSpace(f.val) == "" {
				found = append(found, issues.New(issues.Caution, issues.CategoryData,
					"文件 %q 未提取到%s", r.Filename, f.what).WithFiles(r.Filename))
			}
		}
	}
	return found
}

func checkBlankResults(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		var blank []string
		for _, item := range r.Items {
			if strings.TrimSpace(item.Result) == "" || item.Result == "None" {
				blank = append(blank, item.Name)
			}
		}
		if len(blank) > 0 {
			found = append(found, tagReport(issues.New(issues.Important, issues.CategoryData,
				"文件 %q 以下检测项目结果为空：%s", r.Filename, strings.Join(blank, ", ")), r))
		}
	}
	return found
}

func checkBlankMethods(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		var missing []string
		for _, item := range r.Items {
			if strings.TrimSpace(item.Method) == "" || item.Method == "None" {
				missing = append(missing, item.Name)
			}
		}
		if len(missing) > 0 {
			found = append(found, tagReport(issues.New(issues.Caution, issues.CategoryData,
				"文件 %q 以下检测项目缺少检测方法：%s", r.Filename, strings.Join(missing, ", ")), r))
		}
	}
	return found
}

func checkDeclaredItemCount(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		if r.DeclaredItemCount == 0 || len(r.Items) == 0 {
			continue
		}
		if len(r.Items) != r.DeclaredItemCount {
			found = append(found, tagReport(issues.New(issues.Important, issues.CategoryData,
				"文件 %q 声称检测 %d 项指标，但实际提取到 %d 项数据",
				r.Filename, r.DeclaredItemCount, len(r.Items)), r))
		}
	}
	return found
}

func checkDuplicateItems(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		counts := make(map[string]int)
		var order []string
		for _, item := range r.Items {
			if counts[item.Name] == 0 {
				order = append(order, item.Name)
			}
			counts[item.Name]++
		}
		for _, name := range order {
			if counts[name] > 1 {
				found = append(found, tagReport(issues.New(issues.Important, issues.CategoryData,
					"文件 %q 检测项目「%s」重复出现 %d 次", r.Filename, name, counts[name]), r))
			}
		}
	}
	return found
}

func checkReportDigitUniformity(c *Context) []issues.Issue {
	cohorts, types := c.typeCohorts()
	var found []issues.Issue
	for _, wt := range types {
		group := cohorts[wt]
		if len(group) < 2 {
			continue
		}
		type obs struct {
			fname string
			val   string
		}
		byItem := make(map[string]map[int][]obs)
		var order []string
		for _, r := range group {
			for _, item := range r.Items {
				result := strings.TrimSpace(item.Result)
				if result == "" || belowLimit(result) || skippableResult(result) {
					continue
				}
				f, ok := parseNumeric(result)
				if !ok || f == 0 {
					continue
				}
				if byItem[item.Name] == nil {
					byItem[item.Name] = make(map[int][]obs)
					order = append(order, item.Name)
				}
				d := reconcile.DigitCount(result)
				byItem[item.Name][d] = append(byItem[item.Name][d], obs{r.Filename, result})
			}
		}
		for _, name := range order {
			name := name
			found = append(found, digitMinorityIssues(byItem[name], func(d, n, majD, majN int, minority []obs) issues.Issue {
				parts := make([]string, 0, 3)
				files := make([]string, 0, len(minority))
				for i, o := range minority {
					if i < 3 {
						parts = append(parts, o.fname+"(值="+o.val+")")
					}
					files = append(files, o.fname)
				}
				suffix := ""
				if len(minority) > 3 {
					suffix = "..."
				}
				return issues.New(issues.Important, issues.CategoryData,
					"同类型(%s)报告「%s」数字位数不一致：%d个报告为%d位数字，多数(%d)为%d位数字，涉及：%s%s",
					wt, name, n, d, majN, majD, strings.Join(parts, ", "), suffix).
					WithFiles(files...)
			})...)
		}
	}
	return found
}

package rules

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/macrossfev/report-verification/pkg/issues"
)

func dateRules() []Rule {
	return []Rule{
		{Name: "date-sampling-format", Category: issues.CategoryDate, Check: checkSamplingDateFormat},
		{Name: "date-receipt-window", Category: issues.CategoryDate, Check: checkReceiptWindow},
		{Name: "date-testing-start", Category: issues.CategoryDate, Check: checkTestingStart},
		{Name: "date-report-date", Category: issues.CategoryDate, Check: checkReportDate},
	}
}

const dotDateLayout = "2006.01.02"

var (
	dotDateRe      = regexp.MustCompile(`^20\d{2}\.\d{2}\.\d{2}$`)
	testingRangeRe = regexp.MustCompile(`(20\d{2}\.\d{2}\.\d{2})~(\d{2}\.\d{2})`)
	cnDateRe       = regexp.MustCompile(`(\d{4})\s*年\s*(\d{1,2})\s*月\s*(\d{1,2})\s*日`)
)

func checkSamplingDateFormat(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		sd := strings.TrimSpace(r.SamplingDate)
		if sd != "" && !dotDateRe.MatchString(sd) {
			found = append(found, tagReport(issues.New(issues.Caution, issues.CategoryDate,
				"文件 %q 采样日期格式异常：'%s'", r.Filename, sd), r))
		}
	}
	return found
}

func checkReceiptWindow(c *Context) []issues.Issue {
	var found []issues.Issue
	maxDays := c.Cal.Thresholds.ReceiptMaxDays
	for _, r := range c.Reports {
		sd, errS := time.Parse(dotDateLayout, strings.TrimSpace(r.SamplingDate))
		rd, errR := time.Parse(dotDateLayout, strings.TrimSpace(r.ReceiptDate))
		if errS != nil || errR != nil {
			continue
		}
		diff := int(rd.Sub(sd).Hours() / 24)
		switch {
		case diff < 0:
			found = append(found, tagReport(issues.New(issues.Important, issues.CategoryDate,
				"文件 %q 收样日期 (%s) 早于采样日期 (%s)", r.Filename, r.ReceiptDate, r.SamplingDate), r))
		case diff > maxDays:
			found = append(found, tagReport(issues.New(issues.Important, issues.CategoryDate,
				"文件 %q 收样日期 (%s) 与采样日期 (%s) 间隔 %d 天，原则上应为同一天，最多不超过%d天",
				r.Filename, r.ReceiptDate, r.SamplingDate, diff, maxDays), r))
		}
	}
	return found
}

func checkTestingStart(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		sd, err := time.Parse(dotDateLayout, strings.TrimSpace(r.SamplingDate))
		if err != nil {
			continue
		}
		m := testingRangeRe.FindStringSubmatch(r.TestingDate)
		if m == nil {
			continue
		}
		start, err := time.Parse(dotDateLayout, m[1])
		if err != nil {
			continue
		}
		if start.Before(sd) {
			found = append(found, tagReport(issues.New(issues.Important, issues.CategoryDate,
				"文件 %q 检测开始日期 (%s) 早于采样日期 (%s)", r.Filename, m[1], r.SamplingDate), r))
		}
	}
	return found
}

func checkReportDate(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		raw := strings.TrimSpace(r.ReportDate)
		if raw == "" {
			continue
		}
		m := cnDateRe.FindStringSubmatch(raw)
		if m == nil {
			found = append(found, tagReport(issues.New(issues.Caution, issues.CategoryDate,
				"文件 %q 报告编制日期格式异常：'%s'", r.Filename, raw), r))
			continue
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			found = append(found, tagReport(issues.New(issues.Caution, issues.CategoryDate,
				"文件 %q 报告编制日期无法解析：'%s'", r.Filename, raw), r))
			continue
		}
		rptDate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		sd, err := time.Parse(dotDateLayout, strings.TrimSpace(r.SamplingDate))
		if err != nil {
			continue
		}
		if rptDate.Before(sd) {
			found = append(found, tagReport(issues.New(issues.Important, issues.CategoryDate,
				"文件 %q 报告编制日期 (%s) 早于采样日期 (%s)", r.Filename, raw, r.SamplingDate), r))
		}
		if year != sd.Year() {
			found = append(found, tagReport(issues.New(issues.Caution, issues.CategoryDate,
				"文件 %q 报告编制日期年份为 %d，与采样年份 %d 不符", r.Filename, year, sd.Year()), r))
		}
	}
	return found
}

package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/macrossfev/report-verification/pkg/issues"
	"github.com/macrossfev/report-verification/pkg/records"
)

func namingRules() []Rule {
	return []Rule{
		{Name: "naming-bracket-balance", Category: issues.CategoryNaming, Check: checkBracketBalance},
		{Name: "naming-prefix-width", Category: issues.CategoryNaming, Check: checkPrefixWidth},
		{Name: "naming-sequence-gaps", Category: issues.CategoryNaming, Check: checkSequenceGaps},
		{Name: "naming-duplicate-prefixes", Category: issues.CategoryNaming, Check: checkDuplicatePrefixes},
		{Name: "naming-stray-spaces", Category: issues.CategoryNaming, Check: checkStraySpaces},
		{Name: "naming-repeated-plant-word", Category: issues.CategoryNaming, Check: checkRepeatedPlantWord},
		{Name: "naming-date-suffix", Category: issues.CategoryNaming, Check: checkDateSuffixConsistency},
		{Name: "naming-extension-mismatch", Category: issues.CategoryNaming, Check: checkExtensionMismatch},
		{Name: "naming-network-bracket-style", Category: issues.CategoryNaming, Check: checkNetworkBracketStyle},
	}
}

// stem drops the spreadsheet extension.
func stem(fname string) string {
	if i := strings.LastIndexByte(fname, '.'); i >= 0 {
		return fname[:i]
	}
	return fname
}

func checkBracketBalance(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		name := stem(r.Filename)
		openCN, closeCN := strings.Count(name, "（"), strings.Count(name, "）")
		openEN, closeEN := strings.Count(name, "("), strings.Count(name, ")")
		if openCN != closeCN {
			found = append(found, issues.New(issues.Caution, issues.CategoryNaming,
				"文件 %q 中文括号不匹配：'（' 出现 %d 次，'）' 出现 %d 次", r.Filename, openCN, closeCN).
				WithFiles(r.Filename))
		}
		if openEN != closeEN {
			found = append(found, issues.New(issues.Caution, issues.CategoryNaming,
				"文件 %q 英文括号不匹配：'(' 出现 %d 次，')' 出现 %d 次", r.Filename, openEN, closeEN).
				WithFiles(r.Filename))
		}
	}
	return found
}

// standardPrefixWidth is the zero-padded width report numbers use.
const standardPrefixWidth = 4

func checkPrefixWidth(c *Context) []issues.Issue {
	widths := make(map[int]int)
	for _, r := range c.Reports {
		if r.Prefix != "" {
			widths[len(r.Prefix)]++
		}
	}
	if len(widths) <= 1 {
		return nil
	}
	var found []issues.Issue
	for _, r := range c.Reports {
		if r.Prefix != "" && len(r.Prefix) != standardPrefixWidth {
			found = append(found, issues.New(issues.Caution, issues.CategoryNaming,
				"文件 %q 编号前缀位数异常：'%s' 为 %d 位，多数文件为 %d 位",
				r.Filename, r.Prefix, len(r.Prefix), standardPrefixWidth).
				WithFiles(r.Filename))
		}
	}
	return found
}

func prefixNumbers(c *Context) []int {
	seen := make(map[int]bool)
	var nums []int
	for _, r := range c.Reports {
		if r.Prefix == "" {
			continue
		}
		if n, err := strconv.Atoi(r.Prefix); err == nil && !seen[n] {
			seen[n] = true
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)
	return nums
}

func checkSequenceGaps(c *Context) []issues.Issue {
	nums := prefixNumbers(c)
	if len(nums) == 0 {
		return nil
	}
	var found []issues.Issue
	emit := func(start, end int) {
		if start == end {
			found = append(found, issues.New(issues.Caution, issues.CategoryNaming,
				"文件编号序列缺失：%04d", start))
		} else {
			found = append(found, issues.New(issues.Caution, issues.CategoryNaming,
				"文件编号序列缺失：%04d-%04d（共 %d 个）", start, end, end-start+1))
		}
	}
	for i := 1; i < len(nums); i++ {
		if nums[i] == nums[i-1]+1 {
			continue
		}
		emit(nums[i-1]+1, nums[i]-1)
	}
	return found
}

func checkDuplicatePrefixes(c *Context) []issues.Issue {
	byNum := make(map[int][]string)
	for _, r := range c.Reports {
		if r.Prefix == "" {
			continue
		}
		if n, err := strconv.Atoi(r.Prefix); err == nil {
			byNum[n] = append(byNum[n], r.Filename)
		}
	}
	nums := make([]int, 0, len(byNum))
	for n := range byNum {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	var found []issues.Issue
	for _, n := range nums {
		files := byNum[n]
		if len(files) > 1 {
			found = append(found, issues.New(issues.Important, issues.CategoryNaming,
				"文件编号重复：编号 %04d 出现 %d 次，涉及文件：%s", n, len(files), strings.Join(files, ", ")).
				WithFiles(files...))
		}
	}
	return found
}

func checkStraySpaces(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		if strings.Contains(r.Filename, "  ") {
			found = append(found, issues.New(issues.Caution, issues.CategoryNaming,
				"文件 %q 名称中包含连续空格", r.Filename).WithFiles(r.Filename))
		}
		if r.Filename != strings.TrimSpace(r.Filename) {
			found = append(found, issues.New(issues.Caution, issues.CategoryNaming,
				"文件 %q 名称首尾有多余空格", r.Filename).WithFiles(r.Filename))
		}
	}
	return found
}

func checkRepeatedPlantWord(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		if strings.Contains(r.Filename, "水厂水厂") {
			found = append(found, issues.New(issues.Caution, issues.CategoryNaming,
				"文件 %q 名称中 '水厂' 重复出现，可能为笔误", r.Filename).WithFiles(r.Filename))
		}
	}
	return found
}

var dateSuffixedRe = regexp.MustCompile(`\d{2}\.\d{2}\s*\.(xlsx?|xls)$`)

func checkDateSuffixConsistency(c *Context) []issues.Issue {
	var withDate, withoutDate []string
	for _, r := range c.Reports {
		if dateSuffixedRe.MatchString(r.Filename) {
			withDate = append(withDate, r.Filename)
		} else {
			withoutDate = append(withoutDate, r.Filename)
		}
	}
	if len(withDate) == 0 || len(withoutDate) == 0 || len(withDate) >= len(withoutDate) {
		return nil
	}
	return []issues.Issue{issues.New(issues.Caution, issues.CategoryNaming,
		"部分文件名含日期后缀（共 %d 个），而多数文件不含日期后缀（共 %d 个），格式不统一。含日期的文件：%s",
		len(withDate), len(withoutDate), strings.Join(withDate, ", ")).
		WithFiles(withDate...)}
}

// Conventional pairing of water type to container format, observed
// across report batches.
func checkExtensionMismatch(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		ext := strings.ToLower(r.Filename[strings.LastIndexByte(r.Filename, '.')+1:])
		switch {
		case r.WaterType == string(records.RawWater) && ext == "xlsx":
			found = append(found, issues.New(issues.Caution, issues.CategoryNaming,
				"文件 %q 为原水报告但使用 .xlsx 格式，一般原水报告使用 .xls 格式，请确认", r.Filename).
				WithFiles(r.Filename))
		case r.WaterType == string(records.FinishedWater) && ext == "xls":
			found = append(found, issues.New(issues.Caution, issues.CategoryNaming,
				"文件 %q 为出厂水报告但使用 .xls 格式，一般出厂水报告使用 .xlsx 格式，请确认", r.Filename).
				WithFiles(r.Filename))
		case r.WaterType == string(records.SecondaryWater) && ext == "xlsx":
			found = append(found, issues.New(issues.Caution, issues.CategoryNaming,
				"文件 %q 为二次供水报告但使用 .xlsx 格式，一般二次供水报告使用 .xls 格式，请确认", r.Filename).
				WithFiles(r.Filename))
		}
	}
	return found
}

func checkNetworkBracketStyle(c *Context) []issues.Issue {
	var bracketed, plain int
	for _, r := range c.Reports {
		if !strings.Contains(r.Filename, "管网") {
			continue
		}
		if strings.Contains(r.Filename, "（管网") {
			bracketed++
		} else {
			plain++
		}
	}
	if bracketed == 0 || plain == 0 {
		return nil
	}
	return []issues.Issue{issues.New(issues.Caution, issues.CategoryNaming,
		"管网水文件命名格式不统一：%d 个文件使用括号形式如 '水厂（管网水）'，%d 个文件使用无括号形式如 '水厂管网水'，建议统一命名规范",
		bracketed, plain)}
}

func numberingRules() []Rule {
	return []Rule{
		{Name: "numbering-prefix-mismatch", Category: issues.CategoryNumbering, Check: checkPrefixNumberMismatch},
		{Name: "numbering-duplicate-numbers", Category: issues.CategoryNumbering, Check: checkDuplicateReportNumbers},
		{Name: "numbering-missing-numbers", Category: issues.CategoryNumbering, Check: checkMissingReportNumbers},
	}
}

func checkPrefixNumberMismatch(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		if r.ReportNumber == 0 || r.Prefix == "" {
			continue
		}
		prefix, err := strconv.Atoi(r.Prefix)
		if err != nil || prefix == r.ReportNumber {
			continue
		}
		found = append(found, tagReport(issues.New(issues.Important, issues.CategoryNumbering,
			"文件 %q 的文件名编号 (%s) 与报告内编号 (%d) 不一致", r.Filename, r.Prefix, r.ReportNumber), r))
	}
	return found
}

func checkDuplicateReportNumbers(c *Context) []issues.Issue {
	byNum := make(map[int][]string)
	for _, r := range c.Reports {
		if r.ReportNumber > 0 {
			byNum[r.ReportNumber] = append(byNum[r.ReportNumber], r.Filename)
		}
	}
	nums := make([]int, 0, len(byNum))
	for n := range byNum {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	var found []issues.Issue
	for _, n := range nums {
		files := byNum[n]
		if len(files) > 1 {
			found = append(found, issues.New(issues.Important, issues.CategoryNumbering,
				"报告编号 %d 在多个文件中重复使用：%s", n, strings.Join(files, ", ")).
				WithFiles(files...).WithReport(fmt.Sprintf("%d", n)))
		}
	}
	return found
}

func checkMissingReportNumbers(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		if r.ReportNumber == 0 {
			found = append(found, issues.New(issues.Important, issues.CategoryNumbering,
				"文件 %q 未能提取到报告编号", r.Filename).WithFiles(r.Filename))
		}
	}
	return found
}

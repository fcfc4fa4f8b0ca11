package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrossfev/report-verification/pkg/reports"
)

func TestCheckMissingFields(t *testing.T) {
	rpts := []*reports.Report{{
		Filename:     "0001.xlsx",
		SampleName:   "出厂水【东山水厂】",
		Company:      "市水务集团",
		SamplingDate: "2026.02.05",
		SampleID:     "W260205C1",
		Conclusion:   "符合标准",
		// ReportDate left blank
	}}
	got := checkMissingFields(testCtx(nil, nil, rpts))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "报告编制日期")
}

func TestCheckBlankResultsAndMethods(t *testing.T) {
	rpts := []*reports.Report{{
		Filename: "0001.xlsx",
		Items: []reports.Item{
			{Name: "pH", Result: "7.5", Method: "GB/T 5750.4"},
			{Name: "浑浊度", Result: "", Method: "GB/T 5750.4"},
			{Name: "氨氮(NH3-N)", Result: "0.05", Method: "None"},
		},
	}}
	blanks := checkBlankResults(testCtx(nil, nil, rpts))
	require.Len(t, blanks, 1)
	assert.Contains(t, blanks[0].Message, "浑浊度")

	methods := checkBlankMethods(testCtx(nil, nil, rpts))
	require.Len(t, methods, 1)
	assert.Contains(t, methods[0].Message, "氨氮(NH3-N)")
}

func TestCheckDeclaredItemCount(t *testing.T) {
	rpts := []*reports.Report{
		{Filename: "0001.xlsx", DeclaredItemCount: 9, Items: make([]reports.Item, 8)},
		{Filename: "0002.xlsx", DeclaredItemCount: 9, Items: make([]reports.Item, 9)},
		{Filename: "0003.xlsx", DeclaredItemCount: 0, Items: make([]reports.Item, 5)},
	}
	got := checkDeclaredItemCount(testCtx(nil, nil, rpts))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "声称检测 9 项指标，但实际提取到 8 项")
}

func TestCheckDuplicateItems(t *testing.T) {
	rpts := []*reports.Report{{
		Filename: "0001.xlsx",
		Items: []reports.Item{
			{Name: "pH"}, {Name: "浑浊度"}, {Name: "pH"},
		},
	}}
	got := checkDuplicateItems(testCtx(nil, nil, rpts))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "「pH」重复出现 2 次")
}

func TestCheckReportDigitUniformity(t *testing.T) {
	mk := func(fname, result string) *reports.Report {
		return &reports.Report{
			Filename: fname,
			Items:    []reports.Item{{Name: "氨氮(NH3-N)", Result: result}},
		}
	}
	rpts := []*reports.Report{
		mk("0001出厂水.xlsx", "0.12"),
		mk("0002出厂水.xlsx", "0.15"),
		mk("0003出厂水.xlsx", "0.2"),
	}
	for _, r := range rpts {
		r.WaterType = "出厂水"
	}
	got := checkReportDigitUniformity(testCtx(nil, nil, rpts))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"0003出厂水.xlsx"}, got[0].Filenames)
}

func TestCohortMajority(t *testing.T) {
	mk := func(fname string, pages int) *reports.Report {
		return &reports.Report{Filename: fname, TotalPages: pages, WaterType: "出厂水"}
	}
	rpts := []*reports.Report{mk("a.xlsx", 6), mk("b.xlsx", 6), mk("c.xlsx", 4), mk("d.xlsx", 0)}
	got := checkCohortPageCount(testCtx(nil, nil, rpts))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "c.xlsx")
	assert.Contains(t, got[0].Message, "多数为 6 页")
}

func TestCheckPageFooters(t *testing.T) {
	rpts := []*reports.Report{{
		Filename:   "0001.xlsx",
		SheetCount: 3,
		Footers: []reports.Footer{
			{Sheet: 0, Page: 1, Total: 3, Found: true},
			{Sheet: 1, Page: 3, Total: 3, Found: true},
			{Sheet: 2, Found: false},
		},
	}}
	got := checkPageFooters(testCtx(nil, nil, rpts))
	require.Len(t, got, 2)
	assert.Contains(t, got[0].Message, "第2个工作表页码标注")
	assert.Contains(t, got[1].Message, "第3个工作表未找到页码标注")
}

func TestCheckNetworkTemplateSplit(t *testing.T) {
	rpts := []*reports.Report{
		{Filename: "0001管网水.xls", WaterType: "管网水", TotalPages: 2},
		{Filename: "0002管网水.xlsx", WaterType: "管网水", TotalPages: 6},
	}
	got := checkNetworkTemplateSplit(testCtx(nil, nil, rpts))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "不同模板")

	assert.Empty(t, checkNetworkTemplateSplit(testCtx(nil, nil, rpts[:1])))
}

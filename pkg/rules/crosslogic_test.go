package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrossfev/report-verification/pkg/issues"
	"github.com/macrossfev/report-verification/pkg/records"
	"github.com/macrossfev/report-verification/pkg/reports"
)

func TestCheckReportChlorineOrdering(t *testing.T) {
	registry := []records.Sample{
		{SampleID: "W260205C1", Description: "东山水厂出厂水"},
		{SampleID: "W260205C2", Description: "东山水厂管网水"},
	}
	rpts := []*reports.Report{
		{Filename: "0001出厂水.xlsx", SampleID: "W260205C1",
			Items: []reports.Item{{Name: "游离氯", Result: "0.30"}}},
		{Filename: "0002管网水.xls", SampleID: "W260205C2",
			Items: []reports.Item{{Name: "游离氯", Result: "0.50"}}},
	}
	got := checkReportChlorineOrdering(testCtx(registry, nil, rpts))
	require.Len(t, got, 1)
	assert.ElementsMatch(t, []string{"0001出厂水.xlsx", "0002管网水.xls"}, got[0].Filenames)
}

func TestCheckReportPermanganateOrdering(t *testing.T) {
	registry := []records.Sample{
		{SampleID: "W260205C1", Description: "东山水厂出厂水"},
		{SampleID: "W260205C3", Description: "东山水厂原水"},
	}
	rpts := []*reports.Report{
		{Filename: "0001出厂水.xlsx", SampleID: "W260205C1",
			Items: []reports.Item{{Name: "高锰酸盐指数(以O2计)", Result: "3.2"}}},
		{Filename: "0003原水.xls", SampleID: "W260205C3",
			Items: []reports.Item{{Name: "高锰酸盐指数(以O2计)", Result: "2.0"}}},
	}
	got := checkReportPermanganateOrdering(testCtx(registry, nil, rpts))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "显著高于原水")

	// The cross-report bound is looser than the in-record one: 1.5x.
	rpts[0].Items[0].Result = "2.9"
	assert.Empty(t, checkReportPermanganateOrdering(testCtx(registry, nil, rpts)))
}

func TestDataLogicTDSRatio(t *testing.T) {
	ctx := testCtx(nil, nil, nil)
	items := map[string]string{"溶解性总固体": "120", "电导率": "450"}
	got := ctx.dataLogic(items, "样品X", issues.CategoryOriginalRecord, func(is issues.Issue) issues.Issue { return is })
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "比值=0.27")

	items["溶解性总固体"] = "280"
	assert.Empty(t, ctx.dataLogic(items, "样品X", issues.CategoryOriginalRecord, func(is issues.Issue) issues.Issue { return is }))
}

func TestDataLogicChromium(t *testing.T) {
	ctx := testCtx(nil, nil, nil)
	items := map[string]string{"总铬": "0.010", "铬(六价)": "0.015"}
	got := ctx.dataLogic(items, "样品X", issues.CategoryOriginalRecord, func(is issues.Issue) issues.Issue { return is })
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "大于总铬")
}

func TestDataLogicNitrogenBalance(t *testing.T) {
	ctx := testCtx(nil, nil, nil)
	items := map[string]string{
		"总氮":   "1.00",
		"氨氮":   "0.80",
		"硝酸盐":  "0.50",
		"亚硝酸盐": "0.02",
	}
	got := ctx.dataLogic(items, "样品X", issues.CategoryOriginalRecord, func(is issues.Issue) issues.Issue { return is })
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "大于总氮")
}

func TestDataLogicColorVsMetals(t *testing.T) {
	ctx := testCtx(nil, nil, nil)
	items := map[string]string{"色度": "<5", "铁": "0.8", "锰": "0.05"}
	got := ctx.dataLogic(items, "样品X", issues.CategoryOriginalRecord, func(is issues.Issue) issues.Issue { return is })
	require.Len(t, got, 1)
	assert.Equal(t, issues.Caution, got[0].Severity)
	assert.Contains(t, got[0].Message, "铁=0.8")
	assert.NotContains(t, got[0].Message, "锰=")
}

func TestDataLogicNitriteSpikes(t *testing.T) {
	ctx := testCtx(nil, nil, nil)
	items := map[string]string{"氨氮": "0.10", "亚硝酸盐": "0.50", "硝酸盐": "2.0"}
	got := ctx.dataLogic(items, "样品X", issues.CategoryOriginalRecord, func(is issues.Issue) issues.Issue { return is })
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "显著高于氨氮")
}

func TestCheckMethodUniformity(t *testing.T) {
	mk := func(fname, method string) *reports.Report {
		return &reports.Report{
			Filename:  fname,
			WaterType: "出厂水",
			Items:     []reports.Item{{Name: "pH", Result: "7.5", Method: method}},
		}
	}
	rpts := []*reports.Report{
		mk("0001.xlsx", "GB/T 5750.4-2023"),
		mk("0002.xlsx", "GB/T 5750.4-2023"),
		mk("0003.xlsx", "GB/T 5750.4-2006"),
	}
	got := checkMethodUniformity(testCtx(nil, nil, rpts))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"0003.xlsx"}, got[0].Filenames)

	// Differences that survive width and spacing normalization only.
	rpts[2].Items[0].Method = "ＧＢ/Ｔ 5750.4-2023"
	assert.Empty(t, checkMethodUniformity(testCtx(nil, nil, rpts)))
}

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrossfev/report-verification/pkg/calibration"
	"github.com/macrossfev/report-verification/pkg/issues"
	"github.com/macrossfev/report-verification/pkg/records"
	"github.com/macrossfev/report-verification/pkg/reports"
)

func testCtx(registry []records.Sample, data records.TestData, rpts []*reports.Report) *Context {
	return NewContext(registry, data, rpts, calibration.Default())
}

func TestCheckRecordMissingData(t *testing.T) {
	registry := []records.Sample{
		{SampleID: "W260205C1", Description: "东山水厂出厂水"},
		{SampleID: "W260205C2", Description: "东山水厂原水"},
	}
	data := records.TestData{"W260205C1": {"pH": "7.2"}}
	got := checkRecordMissingData(testCtx(registry, data, nil))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "W260205C2")
}

func TestCheckRecordPHRange(t *testing.T) {
	data := records.TestData{
		"W260205C1": {"pH": "11.2"},
		"W260205C2": {"pH": "7.4"},
		"K260205C1": {"pH": "12.0"}, // QC samples are exempt
	}
	got := checkRecordPHRange(testCtx(nil, data, nil))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"W260205C1"}, got[0].SampleIDs)
}

func TestCheckRecordNegatives(t *testing.T) {
	data := records.TestData{
		"W260205C1": {"氨氮": "-0.02", "浑浊度": "0.3"},
		"K260205C1": {"氨氮": "-0.05"},
	}
	routine := checkRecordNegatives(testCtx(nil, data, nil))
	require.Len(t, routine, 1)
	assert.Equal(t, []string{"W260205C1"}, routine[0].SampleIDs)

	qc := checkQCNegatives(testCtx(nil, data, nil))
	require.Len(t, qc, 1)
	assert.Contains(t, qc[0].Message, "质控样品")
}

func TestCheckRecordChlorineOrdering(t *testing.T) {
	registry := []records.Sample{
		{SampleID: "W260205C1", Description: "东山水厂出厂水"},
		{SampleID: "W260205C2", Description: "东山水厂管网水"},
	}
	data := records.TestData{
		"W260205C1": {"游离氯": "0.30"},
		"W260205C2": {"游离氯": "0.50"},
	}
	got := checkRecordChlorineOrdering(testCtx(registry, data, nil))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "管网水游离氯")
	assert.ElementsMatch(t, []string{"W260205C1", "W260205C2"}, got[0].SampleIDs)

	// Within the 1.1x tolerance the rule stays silent.
	data["W260205C2"]["游离氯"] = "0.32"
	assert.Empty(t, checkRecordChlorineOrdering(testCtx(registry, data, nil)))
}

func TestCheckRecordPermanganateOrdering(t *testing.T) {
	registry := []records.Sample{
		{SampleID: "W260205C1", Description: "东山水厂出厂水"},
		{SampleID: "W260205C3", Description: "东山水厂原水(青龙水库)"},
	}
	data := records.TestData{
		"W260205C1": {"高锰酸盐指数": "3.0"},
		"W260205C3": {"高锰酸盐指数": "2.0"},
	}
	got := checkRecordPermanganateOrdering(testCtx(registry, data, nil))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "高于原水")

	data["W260205C1"]["高锰酸盐指数"] = "2.2"
	assert.Empty(t, checkRecordPermanganateOrdering(testCtx(registry, data, nil)))
}

func TestCheckRecordTurbidityOrdering(t *testing.T) {
	registry := []records.Sample{
		{SampleID: "W260205C1", Description: "东山水厂出厂水"},
		{SampleID: "W260205C3", Description: "东山水厂原水"},
	}
	data := records.TestData{
		"W260205C1": {"浑浊度": "5.2"},
		"W260205C3": {"浑浊度": "3.1"},
	}
	got := checkRecordTurbidityOrdering(testCtx(registry, data, nil))
	require.Len(t, got, 1)

	data["W260205C1"]["浑浊度"] = "0.3"
	assert.Empty(t, checkRecordTurbidityOrdering(testCtx(registry, data, nil)))
}

func TestCheckRecordBacteria(t *testing.T) {
	registry := []records.Sample{
		{SampleID: "W260205C1", Description: "东山水厂出厂水"},
		{SampleID: "W260205C2", Description: "东山水厂原水"},
	}
	data := records.TestData{
		"W260205C1": {"菌落总数": "12", "总大肠菌群": "未检出"},
		"W260205C2": {"菌落总数": "340"}, // raw water is exempt
	}
	got := checkRecordBacteria(testCtx(registry, data, nil))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "菌落总数=12")
}

func TestCheckRecordDuplicateValues(t *testing.T) {
	var registry []records.Sample
	data := records.TestData{}
	for _, sid := range []string{"W260205C1", "W260205C2", "W260205C3", "W260205C4"} {
		registry = append(registry, records.Sample{SampleID: sid, Description: sid + "水厂出厂水"})
		data[sid] = map[string]string{"氨氮": "0.125"}
	}
	got := checkRecordDuplicateValues(testCtx(registry, data, nil))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "4 个样品结果完全相同")

	// Below quorum, or with too few decimals, nothing fires.
	delete(data, "W260205C4")
	assert.Empty(t, checkRecordDuplicateValues(testCtx(registry[:3], data, nil)))
	for sid := range data {
		data[sid]["氨氮"] = "0.1"
	}
	assert.Empty(t, checkRecordDuplicateValues(testCtx(registry[:3], data, nil)))
}

func TestCheckRecordSourceCohesion(t *testing.T) {
	registry := []records.Sample{
		{SampleID: "W260205C1", Description: "东山水厂原水(青龙水库)"},
		{SampleID: "W260205C2", Description: "南山水厂原水(青龙水库)"},
	}
	data := records.TestData{
		"W260205C1": {"高锰酸盐指数": "1.2"},
		"W260205C2": {"高锰酸盐指数": "4.8"},
	}
	got := checkRecordSourceCohesion(testCtx(registry, data, nil))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "青龙水库")

	data["W260205C2"]["高锰酸盐指数"] = "1.9"
	assert.Empty(t, checkRecordSourceCohesion(testCtx(registry, data, nil)))
}

func TestCheckRecordDigitUniformity(t *testing.T) {
	var registry []records.Sample
	data := records.TestData{}
	for i, val := range []string{"0.12", "0.15", "0.18", "0.2"} {
		sid := "W260205C" + string(rune('1'+i))
		registry = append(registry, records.Sample{SampleID: sid, Description: sid + "水厂出厂水"})
		data[sid] = map[string]string{"氨氮": val}
	}
	got := checkRecordDigitUniformity(testCtx(registry, data, nil))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "数字位数不一致")
	assert.Equal(t, []string{"W260205C4"}, got[0].SampleIDs)
}

func TestDigitMinorityIssuesTie(t *testing.T) {
	// An even split has no strict majority, so nothing is flagged.
	byDigits := map[int][]string{2: {"a", "b"}, 3: {"c", "d"}}
	got := digitMinorityIssues(byDigits, func(d, n, majD, majN int, minority []string) issues.Issue {
		t.Fatal("render must not be called on a tie")
		return issues.Issue{}
	})
	assert.Empty(t, got)
}

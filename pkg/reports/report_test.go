package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/macrossfev/report-verification/pkg/calibration"
)

func TestNumberPrefix(t *testing.T) {
	tests := []struct {
		fname string
		want  string
	}{
		{"0012北门水厂（出厂水）.xlsx", "0012"},
		{"003原水.xls", "003"},
		{"北门水厂.xlsx", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NumberPrefix(tt.fname), tt.fname)
	}
}

func TestPlantFromFilename(t *testing.T) {
	tags := calibration.Default().FilenameTags
	tests := []struct {
		fname string
		want  string
	}{
		{"0012北门水厂（出厂水）01.05.xlsx", "北门水厂"},
		{"0003青龙水库原水.xls", "青龙水库"},
		{"0007东门泵站（二次供水）.xls", "东门泵站"},
		{"0042北门水厂管网水.xls", "北门水厂"},
		{"0050南郊水厂-送检.xlsx", "南郊水厂"},
		{"0061桃花（应急水样）.xlsx", "桃花"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PlantFromFilename(tt.fname, tags), tt.fname)
	}
}

func TestPlantFromFilenameCustomTags(t *testing.T) {
	// Another laboratory's batch decorations come from its calibration
	// file rather than code.
	assert.Equal(t, "桃花岛-雨季加测",
		PlantFromFilename("0061桃花岛-雨季加测.xlsx", nil))
	assert.Equal(t, "桃花岛",
		PlantFromFilename("0061桃花岛-雨季加测.xlsx", []string{"-雨季加测"}))
}

func TestReportItem(t *testing.T) {
	r := &Report{Items: []Item{
		{Name: "pH", Result: "7.5"},
		{Name: "浑浊度", Result: "0.3"},
	}}
	assert.Equal(t, "0.3", r.Item("浑浊度").Result)
	assert.Nil(t, r.Item("氨氮"))
}

func TestParseSeq(t *testing.T) {
	for raw, want := range map[string]int{"3": 3, "3.0": 3, "10": 10} {
		got, err := parseSeq(raw)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := parseSeq("序号")
	assert.Error(t, err)
}

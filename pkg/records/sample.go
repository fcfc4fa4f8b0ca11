// Package records extracts normalized per-sample records from the
// original-record workbook: the sample registry on the first sheet and the
// measurement data on the remaining sheets, which may use either of two
// table orientations. It also derives the water-type and plant groupings
// the rule catalog joins on.
package records

import (
	"regexp"
	"strings"
)

// sampleIDRe matches a laboratory sample identifier: one class letter
// (W routine, K/M quality control), a 6-digit batch date code, a separator
// letter and a sequence number.
var sampleIDRe = regexp.MustCompile(`^[WKM]\d{6}[A-Z]\d+`)

// IsSampleID reports whether the string starts with a sample identifier.
func IsSampleID(s string) bool {
	return sampleIDRe.MatchString(strings.TrimSpace(s))
}

// SampleID extracts the leading sample identifier, or "" when absent.
func SampleID(s string) string {
	return sampleIDRe.FindString(strings.TrimSpace(s))
}

// IsRoutine reports whether the sample id names a routine field sample.
func IsRoutine(sid string) bool {
	return strings.HasPrefix(sid, "W")
}

// IsQC reports whether the sample id names a quality-control sample.
func IsQC(sid string) bool {
	return strings.HasPrefix(sid, "K") || strings.HasPrefix(sid, "M")
}

// Sample is one registry row of the original-record workbook. Immutable
// after extraction; downstream joins reference it by SampleID.
type Sample struct {
	Seq          string
	Company      string
	Description  string
	SamplingCode string
	SampleID     string
}

// TestData maps sample id to item name to the raw value string as written,
// with original decimal formatting preserved.
type TestData map[string]map[string]string

// Value returns the raw value for (sample, item), with ok reporting
// whether it is present and non-empty.
func (d TestData) Value(sampleID, item string) (string, bool) {
	items, ok := d[sampleID]
	if !ok {
		return "", false
	}
	v, ok := items[item]
	return v, ok && strings.TrimSpace(v) != ""
}

// WaterType classifies where in the treatment chain a sample was taken.
type WaterType string

// Water types, as they appear in sample descriptions and filenames.
const (
	RawWater       WaterType = "原水"
	FinishedWater  WaterType = "出厂水"
	NetworkWater   WaterType = "管网水"
	TerminusWater  WaterType = "管网末梢水"
	SecondaryWater WaterType = "二次供水"
	RuralWater     WaterType = "农饮水"
	UnknownWater   WaterType = "未知"
)

// Filename-only categories; these never occur in sample descriptions but
// group report files into cohorts with a shared template.
const (
	TransferWater     WaterType = "转供水"
	DailyNineWater    WaterType = "日检九项"
	SubmittedWater    WaterType = "送检"
	PermanganateWater WaterType = "高锰酸盐指数"
)

// ClassifyWaterType derives the water type from a sample description.
// First match wins over the ordered keyword list; more specific keywords
// come first (管网末梢 before 管网).
func ClassifyWaterType(desc string) WaterType {
	switch {
	case strings.Contains(desc, "二次供水"):
		return SecondaryWater
	case strings.Contains(desc, "农饮水"), strings.Contains(desc, "农村"):
		return RuralWater
	case strings.Contains(desc, "管网末梢"):
		return TerminusWater
	case strings.Contains(desc, "管网"):
		return NetworkWater
	case strings.Contains(desc, "出厂水"):
		return FinishedWater
	case strings.Contains(desc, "原水"):
		return RawWater
	default:
		return UnknownWater
	}
}

// ClassifyFilename derives the water type from a report filename, which
// carries a few labels that never appear in sample descriptions.
func ClassifyFilename(name string) WaterType {
	switch {
	case strings.Contains(name, "二次供水"):
		return SecondaryWater
	case strings.Contains(name, "农饮水"), strings.Contains(name, "生活饮用水"):
		return RuralWater
	case strings.Contains(name, "转供水"):
		return TransferWater
	case strings.Contains(name, "日检九项"):
		return DailyNineWater
	case strings.Contains(name, "送检"):
		return SubmittedWater
	case strings.Contains(name, "高锰酸盐指数"):
		return PermanganateWater
	case strings.Contains(name, "原水"):
		return RawWater
	case strings.Contains(name, "出厂水"):
		return FinishedWater
	case strings.Contains(name, "管网"):
		return NetworkWater
	default:
		return UnknownWater
	}
}

var parenRe = regexp.MustCompile(`[\(（][^)）]*[\)）]`)

// PlantFromDescription strips the water-type keyword and any parenthetical
// source name from a sample description, leaving the plant name.
func PlantFromDescription(desc string) string {
	s := desc
	for _, tag := range []string{string(FinishedWater), string(TerminusWater), string(NetworkWater), string(RawWater), string(RuralWater), string(SecondaryWater)} {
		s = strings.ReplaceAll(s, tag, "")
	}
	s = parenRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SourceFromDescription returns the parenthesized water-source name from a
// description, or the whole description when none is present.
func SourceFromDescription(desc string) string {
	m := regexp.MustCompile(`[\(（]([^)）]+)[\)）]`).FindStringSubmatch(desc)
	if m != nil {
		return m[1]
	}
	return desc
}

// PlantGroups groups routine samples by plant name and water type. Only
// samples whose description yields both a plant and a known water type
// participate; the result is the join key for the ordering rules.
func PlantGroups(registry []Sample) map[string]map[WaterType]string {
	groups := make(map[string]map[WaterType]string)
	for _, s := range registry {
		if !IsRoutine(s.SampleID) {
			continue
		}
		wtype := ClassifyWaterType(s.Description)
		plant := PlantFromDescription(s.Description)
		if plant == "" || wtype == UnknownWater {
			continue
		}
		if groups[plant] == nil {
			groups[plant] = make(map[WaterType]string)
		}
		groups[plant][wtype] = s.SampleID
	}
	return groups
}

// NetworkSample returns the distribution-network sample of a plant group,
// preferring the in-network sample over the terminus one.
func NetworkSample(group map[WaterType]string) (string, bool) {
	if sid, ok := group[NetworkWater]; ok {
		return sid, true
	}
	sid, ok := group[TerminusWater]
	return sid, ok
}

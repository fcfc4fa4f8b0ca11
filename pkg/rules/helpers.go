package rules

import (
	"sort"
	"strconv"
	"strings"

	"github.com/macrossfev/report-verification/pkg/records"
	"github.com/macrossfev/report-verification/pkg/reports"
)

// parseNumeric parses a written value, tolerating a below-detection
// prefix. The bool is false for anything non-numeric.
func parseNumeric(v string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(v, "＜", "<"))
	s = strings.TrimPrefix(s, "<")
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// belowLimit reports a below-detection-limit marker.
func belowLimit(v string) bool {
	s := strings.TrimSpace(v)
	return strings.HasPrefix(s, "<") || strings.HasPrefix(s, "＜")
}

// nonNumericResults are written values a numeric rule must skip.
func skippableResult(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "无", "未检出", "无异臭、异味", "0", "0.0", "None":
		return true
	}
	return false
}

// paramValue finds a parameter in a value map by fuzzy name match,
// trying candidate names in order. Returns the numeric value, the key
// matched and its written form; ok is false when nothing numeric
// matched. Below-detection values report ok=false but still surface
// the written form.
func (c *Context) paramValue(items map[string]string, names ...string) (float64, string, string, bool) {
	keys := sortedKeys(items)
	for _, name := range names {
		for _, key := range keys {
			if name != key {
				contains := strings.Contains(key, name) || strings.Contains(name, key)
				if !contains || c.Resolver.Confusable(name, key) {
					continue
				}
			}
			raw := strings.TrimSpace(strings.ReplaceAll(items[key], "＜", "<"))
			if strings.HasPrefix(raw, "<") {
				return 0, key, raw, false
			}
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				return f, key, raw, true
			}
		}
	}
	return 0, "", "", false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// resultMap flattens a report's items to name -> written result.
func resultMap(r *reports.Report) map[string]string {
	m := make(map[string]string, len(r.Items))
	for _, it := range r.Items {
		m[it.Name] = it.Result
	}
	return m
}

// reportPlantGroups groups reports by the plant named in the registry
// description, keyed by water type. Only registry-linked reports join.
func (c *Context) reportPlantGroups() (map[string]map[records.WaterType]*reports.Report, []string) {
	groups := make(map[string]map[records.WaterType]*reports.Report)
	for _, s := range c.Registry {
		r, ok := c.BySample[s.SampleID]
		if !ok {
			continue
		}
		wt := records.ClassifyWaterType(s.Description)
		plant := records.PlantFromDescription(s.Description)
		if plant == "" || wt == records.UnknownWater {
			continue
		}
		if groups[plant] == nil {
			groups[plant] = make(map[records.WaterType]*reports.Report)
		}
		if _, dup := groups[plant][wt]; !dup {
			groups[plant][wt] = r
		}
	}
	plants := make([]string, 0, len(groups))
	for p := range groups {
		plants = append(plants, p)
	}
	sort.Strings(plants)
	return groups, plants
}

// typeCohorts groups reports by filename water type, preserving filename
// order inside each cohort.
func (c *Context) typeCohorts() (map[string][]*reports.Report, []string) {
	cohorts := make(map[string][]*reports.Report)
	for _, r := range c.Reports {
		cohorts[r.WaterType] = append(cohorts[r.WaterType], r)
	}
	types := make([]string, 0, len(cohorts))
	for t := range cohorts {
		types = append(types, t)
	}
	sort.Strings(types)
	return cohorts, types
}

// joinNames joins at most n entries, appending an ellipsis beyond.
func joinNames(names []string, n int) string {
	if len(names) <= n {
		return strings.Join(names, "、")
	}
	return strings.Join(names[:n], "、") + "..."
}

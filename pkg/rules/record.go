package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/macrossfev/report-verification/pkg/issues"
	"github.com/macrossfev/report-verification/pkg/reconcile"
	"github.com/macrossfev/report-verification/pkg/records"
)

func recordRules() []Rule {
	return []Rule{
		{Name: "record-missing-data", Category: issues.CategoryOriginalRecord, Check: checkRecordMissingData},
		{Name: "record-ph-range", Category: issues.CategoryOriginalRecord, Check: checkRecordPHRange},
		{Name: "record-negative-values", Category: issues.CategoryOriginalRecord, Check: checkRecordNegatives},
		{Name: "record-qc-negative-values", Category: issues.CategoryOriginalRecord, Check: checkQCNegatives},
		{Name: "record-chlorine-ordering", Category: issues.CategoryOriginalRecord, Check: checkRecordChlorineOrdering},
		{Name: "record-permanganate-ordering", Category: issues.CategoryOriginalRecord, Check: checkRecordPermanganateOrdering},
		{Name: "record-turbidity-ordering", Category: issues.CategoryOriginalRecord, Check: checkRecordTurbidityOrdering},
		{Name: "record-bacterial-absence", Category: issues.CategoryOriginalRecord, Check: checkRecordBacteria},
		{Name: "record-duplicate-values", Category: issues.CategoryOriginalRecord, Check: checkRecordDuplicateValues},
		{Name: "record-source-cohesion", Category: issues.CategoryOriginalRecord, Check: checkRecordSourceCohesion},
		{Name: "record-sample-logic", Category: issues.CategoryOriginalRecord, Check: checkRecordSampleLogic},
		{Name: "record-digit-uniformity", Category: issues.CategoryOriginalRecord, Check: checkRecordDigitUniformity},
	}
}

// sortedDataIDs returns the sample ids of the test data in sorted order.
func sortedDataIDs(data records.TestData) []string {
	ids := make([]string, 0, len(data))
	for sid := range data {
		ids = append(ids, sid)
	}
	sort.Strings(ids)
	return ids
}

func checkRecordMissingData(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, s := range c.Registry {
		if len(c.Data[s.SampleID]) == 0 {
			found = append(found, issues.New(issues.Important, issues.CategoryOriginalRecord,
				"样品 %s（%s）在原始记录中无任何检测数据", s.SampleID, s.Description).
				WithSamples(s.SampleID))
		}
	}
	return found
}

func checkRecordPHRange(c *Context) []issues.Issue {
	var found []issues.Issue
	th := c.Cal.Thresholds
	for _, sid := range sortedDataIDs(c.Data) {
		if !records.IsRoutine(sid) {
			continue
		}
		ph, ok := parseNumeric(c.Data[sid]["pH"])
		if !ok {
			continue
		}
		if ph < th.PHMin || ph > th.PHMax {
			found = append(found, issues.New(issues.Critical, issues.CategoryOriginalRecord,
				"%s pH=%v 异常（通常范围 %v-%v）", c.label(sid), ph, th.PHMin, th.PHMax).
				WithSamples(sid))
		}
	}
	return found
}

func checkRecordNegatives(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, sid := range sortedDataIDs(c.Data) {
		if records.IsQC(sid) {
			continue
		}
		items := c.Data[sid]
		for _, name := range sortedKeys(items) {
			if v, ok := parseNumeric(items[name]); ok && v < 0 {
				found = append(found, issues.New(issues.Critical, issues.CategoryOriginalRecord,
					"%s 项目「%s」值为负数(%s)", c.label(sid), name, items[name]).
					WithSamples(sid))
			}
		}
	}
	return found
}

func checkQCNegatives(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, sid := range sortedDataIDs(c.Data) {
		if !records.IsQC(sid) {
			continue
		}
		items := c.Data[sid]
		for _, name := range sortedKeys(items) {
			if v, ok := parseNumeric(items[name]); ok && v < 0 {
				found = append(found, issues.New(issues.Critical, issues.CategoryOriginalRecord,
					"质控样品 %s 项目「%s」值为负数(%s)", sid, name, items[name]).
					WithSamples(sid))
			}
		}
	}
	return found
}

// orderedPlants returns plant-group keys sorted for stable iteration.
func orderedPlants(groups map[string]map[records.WaterType]string) []string {
	plants := make([]string, 0, len(groups))
	for p := range groups {
		plants = append(plants, p)
	}
	sort.Strings(plants)
	return plants
}

var disinfectants = []string{"游离氯", "二氧化氯"}

func checkRecordChlorineOrdering(c *Context) []issues.Issue {
	var found []issues.Issue
	groups := records.PlantGroups(c.Registry)
	for _, plant := range orderedPlants(groups) {
		sids := groups[plant]
		ccSID := sids[records.FinishedWater]
		gwSID, _ := records.NetworkSample(sids)
		if ccSID == "" || gwSID == "" {
			continue
		}
		for _, cl := range disinfectants {
			ccv, ccOK := parseNumeric(c.Data[ccSID][cl])
			gwv, gwOK := parseNumeric(c.Data[gwSID][cl])
			if !ccOK || !gwOK || ccv <= 0 || gwv <= 0 {
				continue
			}
			if gwv > ccv*c.Cal.Thresholds.ChlorineOrdering {
				found = append(found, issues.New(issues.Important, issues.CategoryOriginalRecord,
					"%s 管网水%s(%v)高于出厂水(%v)，需确认", plant, cl, gwv, ccv).
					WithSamples(ccSID, gwSID))
			}
		}
	}
	return found
}

var permanganateNames = []string{"高锰酸盐指数", "高锰酸盐指数(以O2计)"}

func checkRecordPermanganateOrdering(c *Context) []issues.Issue {
	var found []issues.Issue
	groups := records.PlantGroups(c.Registry)
	for _, plant := range orderedPlants(groups) {
		sids := groups[plant]
		ccSID, ywSID := sids[records.FinishedWater], sids[records.RawWater]
		if ccSID == "" || ywSID == "" {
			continue
		}
		for _, key := range permanganateNames {
			ccRaw, ywRaw := c.Data[ccSID][key], c.Data[ywSID][key]
			if ccRaw == "" || ywRaw == "" {
				continue
			}
			ccv, ccOK := parseNumeric(ccRaw)
			ywv, ywOK := parseNumeric(ywRaw)
			if ccOK && ywOK && ccv > ywv*c.Cal.Thresholds.PermanganateRecord {
				found = append(found, issues.New(issues.Important, issues.CategoryOriginalRecord,
					"%s 出厂水高锰酸盐指数(%v)高于原水(%v)，异常", plant, ccv, ywv).
					WithSamples(ccSID, ywSID))
			}
			break
		}
	}
	return found
}

func checkRecordTurbidityOrdering(c *Context) []issues.Issue {
	var found []issues.Issue
	groups := records.PlantGroups(c.Registry)
	for _, plant := range orderedPlants(groups) {
		sids := groups[plant]
		ccSID, ywSID := sids[records.FinishedWater], sids[records.RawWater]
		if ccSID == "" || ywSID == "" {
			continue
		}
		ccRaw, ywRaw := c.Data[ccSID]["浑浊度"], c.Data[ywSID]["浑浊度"]
		if ccRaw == "" || ywRaw == "" {
			continue
		}
		ccv, ccOK := parseNumeric(ccRaw)
		ywv, ywOK := parseNumeric(ywRaw)
		if ccOK && ywOK && ywv > 0 && ccv > ywv*c.Cal.Thresholds.Turbidity {
			found = append(found, issues.New(issues.Important, issues.CategoryOriginalRecord,
				"%s 出厂水浑浊度(%v)高于原水(%v)，异常", plant, ccv, ywv).
				WithSamples(ccSID, ywSID))
		}
	}
	return found
}

var bacterialIndicators = []string{"菌落总数", "总大肠菌群", "大肠埃希氏菌"}

// treatedWater reports water types whose bacterial indicators must be
// absent.
func treatedWater(wt records.WaterType) bool {
	switch wt {
	case records.FinishedWater, records.NetworkWater, records.TerminusWater:
		return true
	}
	return false
}

func checkRecordBacteria(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, s := range c.Registry {
		if !records.IsRoutine(s.SampleID) || !treatedWater(records.ClassifyWaterType(s.Description)) {
			continue
		}
		items := c.Data[s.SampleID]
		for _, bact := range bacterialIndicators {
			val := strings.TrimSpace(items[bact])
			if val == "" || val == "0" || val == "未检出" || val == "<1" {
				continue
			}
			if v, ok := parseNumeric(val); ok && !belowLimit(val) && v > 0 {
				found = append(found, issues.New(issues.Important, issues.CategoryOriginalRecord,
					"%s %s=%s，出厂水/管网水该指标通常应为0或未检出", c.label(s.SampleID), bact, val).
					WithSamples(s.SampleID))
			}
		}
	}
	return found
}

// decimalPlaces counts digits after the decimal point, -1 when none.
func decimalPlaces(v string) int {
	i := strings.IndexByte(v, '.')
	if i < 0 {
		return -1
	}
	return len(v) - i - 1
}

func checkRecordDuplicateValues(c *Context) []issues.Issue {
	type key struct {
		wtype records.WaterType
		item  string
		value string
	}
	hits := make(map[key][]string)
	var order []key
	for _, s := range c.Registry {
		if !records.IsRoutine(s.SampleID) {
			continue
		}
		wt := records.ClassifyWaterType(s.Description)
		items := c.Data[s.SampleID]
		for _, name := range sortedKeys(items) {
			val := strings.TrimSpace(items[name])
			if belowLimit(val) || skippableResult(val) {
				continue
			}
			if _, ok := parseNumeric(val); !ok {
				continue
			}
			if decimalPlaces(val) < c.Cal.Thresholds.DuplicateDecimals {
				continue
			}
			k := key{wt, name, val}
			if len(hits[k]) == 0 {
				order = append(order, k)
			}
			hits[k] = append(hits[k], s.SampleID)
		}
	}
	var found []issues.Issue
	for _, k := range order {
		sids := hits[k]
		if len(sids) < c.Cal.Thresholds.DuplicateQuorum {
			continue
		}
		descs := make([]string, 0, 5)
		for _, sid := range sids {
			if len(descs) == 5 {
				break
			}
			descs = append(descs, c.ByID[sid].Description)
		}
		suffix := ""
		if len(sids) > 5 {
			suffix = "..."
		}
		found = append(found, issues.New(issues.Important, issues.CategoryOriginalRecord,
			"项目「%s」有 %d 个样品结果完全相同(%s)，涉及：%s%s，请确认是否录入错误",
			k.item, len(sids), k.value, strings.Join(descs, "、"), suffix).
			WithSamples(sids...))
	}
	return found
}

var cohesionParams = []string{"pH", "高锰酸盐指数", "溶解氧", "浑浊度"}

func checkRecordSourceCohesion(c *Context) []issues.Issue {
	groups := make(map[string][]records.Sample)
	var order []string
	for _, s := range c.Registry {
		if !records.IsRoutine(s.SampleID) || !strings.Contains(s.Description, string(records.RawWater)) {
			continue
		}
		source := records.SourceFromDescription(s.Description)
		if source == "" {
			source = s.Description
		}
		if len(groups[source]) == 0 {
			order = append(order, source)
		}
		groups[source] = append(groups[source], s)
	}
	var found []issues.Issue
	for _, source := range order {
		members := groups[source]
		if len(members) < 2 {
			continue
		}
		for _, param := range cohesionParams {
			type obs struct {
				val  float64
				desc string
			}
			var vals []obs
			var sids []string
			for _, s := range members {
				if v, ok := parseNumeric(c.Data[s.SampleID][param]); ok && c.Data[s.SampleID][param] != "" {
					vals = append(vals, obs{v, s.Description})
					sids = append(sids, s.SampleID)
				}
			}
			if len(vals) < 2 {
				continue
			}
			lo, hi := vals[0].val, vals[0].val
			for _, o := range vals[1:] {
				if o.val < lo {
					lo = o.val
				}
				if o.val > hi {
					hi = o.val
				}
			}
			if lo > 0 && hi/lo > c.Cal.Thresholds.CohesionSpread {
				parts := make([]string, len(vals))
				for i, o := range vals {
					parts[i] = fmt.Sprintf("%s=%v", o.desc, o.val)
				}
				found = append(found, issues.New(issues.Important, issues.CategoryOriginalRecord,
					"同源原水「%s」%s差异较大：%s", source, param, strings.Join(parts, ", ")).
					WithSamples(sids...))
			}
		}
	}
	return found
}

func checkRecordSampleLogic(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, sid := range sortedDataIDs(c.Data) {
		if !records.IsRoutine(sid) {
			continue
		}
		sid := sid
		found = append(found, c.dataLogic(c.Data[sid], c.label(sid), issues.CategoryOriginalRecord,
			func(is issues.Issue) issues.Issue { return is.WithSamples(sid) })...)
	}
	return found
}

func checkRecordDigitUniformity(c *Context) []issues.Issue {
	type cohortKey struct {
		wtype records.WaterType
		param string
	}
	type obs struct {
		sid  string
		desc string
		val  string
	}
	byDigits := make(map[cohortKey]map[int][]obs)
	var order []cohortKey
	for _, s := range c.Registry {
		if !records.IsRoutine(s.SampleID) {
			continue
		}
		items := c.Data[s.SampleID]
		if len(items) == 0 {
			continue
		}
		wt := records.ClassifyWaterType(s.Description)
		for _, param := range sortedKeys(items) {
			val := strings.TrimSpace(strings.ReplaceAll(items[param], "＜", "<"))
			if belowLimit(val) || skippableResult(val) {
				continue
			}
			if f, ok := parseNumeric(val); !ok || f == 0 {
				continue
			}
			k := cohortKey{wt, param}
			if byDigits[k] == nil {
				byDigits[k] = make(map[int][]obs)
				order = append(order, k)
			}
			d := reconcile.DigitCount(val)
			byDigits[k][d] = append(byDigits[k][d], obs{s.SampleID, s.Description, val})
		}
	}
	var found []issues.Issue
	for _, k := range order {
		found = append(found, digitMinorityIssues(byDigits[k], func(d, n, majD, majN int, minority []obs) issues.Issue {
			parts := make([]string, 0, 3)
			sids := make([]string, 0, len(minority))
			for i, o := range minority {
				if i < 3 {
					parts = append(parts, fmt.Sprintf("%s(样品编号%s)=%s", o.desc, o.sid, o.val))
				}
				sids = append(sids, o.sid)
			}
			suffix := ""
			if len(minority) > 3 {
				suffix = "..."
			}
			return issues.New(issues.Important, issues.CategoryOriginalRecord,
				"原始记录(%s)「%s」数字位数不一致：%d个样品为%d位，多数(%d)为%d位，涉及：%s%s",
				k.wtype, k.param, n, d, majN, majD, strings.Join(parts, ", "), suffix).
				WithSamples(sids...)
		})...)
	}
	return found
}

// digitMinorityIssues finds minority digit-count groups against the
// strict majority and renders one issue per minority group.
func digitMinorityIssues[T any](byDigits map[int][]T, render func(d, n, majD, majN int, minority []T) issues.Issue) []issues.Issue {
	if len(byDigits) <= 1 {
		return nil
	}
	digits := make([]int, 0, len(byDigits))
	for d := range byDigits {
		digits = append(digits, d)
	}
	sort.Ints(digits)
	majD, majN := digits[0], len(byDigits[digits[0]])
	for _, d := range digits[1:] {
		if len(byDigits[d]) > majN {
			majD, majN = d, len(byDigits[d])
		}
	}
	var found []issues.Issue
	for _, d := range digits {
		group := byDigits[d]
		if d != majD && len(group) < majN {
			found = append(found, render(d, len(group), majD, majN, group))
		}
	}
	return found
}

package rules

import (
	"regexp"
	"sort"
	"strings"

	"github.com/macrossfev/report-verification/pkg/issues"
	"github.com/macrossfev/report-verification/pkg/records"
	"github.com/macrossfev/report-verification/pkg/reports"
)

func consistencyRules() []Rule {
	return []Rule{
		{Name: "consistency-plant-company", Category: issues.CategoryConsistency, Check: checkPlantCompany},
		{Name: "consistency-similar-plant-names", Category: issues.CategoryConsistency, Check: checkSimilarPlantNames},
		{Name: "consistency-sample-name", Category: issues.CategoryConsistency, Check: checkSampleNameVsFilename},
		{Name: "consistency-sample-type", Category: issues.CategoryConsistency, Check: checkSampleTypeVsFilename},
		{Name: "consistency-plant-coverage", Category: issues.CategoryConsistency, Check: checkPlantCoverage},
	}
}

// filePlantGroups groups reports by the plant named in the filename.
func filePlantGroups(c *Context) (map[string][]*reports.Report, []string) {
	groups := make(map[string][]*reports.Report)
	for _, r := range c.Reports {
		if r.PlantName != "" {
			groups[r.PlantName] = append(groups[r.PlantName], r)
		}
	}
	plants := make([]string, 0, len(groups))
	for p := range groups {
		plants = append(plants, p)
	}
	sort.Strings(plants)
	return groups, plants
}

func checkPlantCompany(c *Context) []issues.Issue {
	groups, plants := filePlantGroups(c)
	var found []issues.Issue
	for _, plant := range plants {
		group := groups[plant]
		if len(group) < 2 {
			continue
		}
		seen := make(map[string]bool)
		var companies, files []string
		for _, r := range group {
			files = append(files, r.Filename)
			if r.Company != "" && !seen[r.Company] {
				seen[r.Company] = true
				companies = append(companies, r.Company)
			}
		}
		if len(companies) > 1 {
			sort.Strings(companies)
			found = append(found, issues.New(issues.Important, issues.CategoryConsistency,
				"水厂 %q 的相关报告中被检单位名称不一致：%s，涉及文件：%s",
				plant, strings.Join(companies, ", "), strings.Join(files, ", ")).
				WithFiles(files...))
		}
	}
	return found
}

func checkSimilarPlantNames(c *Context) []issues.Issue {
	_, plants := filePlantGroups(c)
	var found []issues.Issue
	for i := 0; i < len(plants); i++ {
		for j := i + 1; j < len(plants); j++ {
			a, b := plants[i], plants[j]
			if a == b || (!strings.Contains(a, b) && !strings.Contains(b, a)) {
				continue
			}
			la, lb := len([]rune(a)), len([]rune(b))
			if la-lb > 2 || lb-la > 2 {
				continue
			}
			found = append(found, issues.New(issues.Caution, issues.CategoryConsistency,
				"水厂名称疑似重复/不一致：%q 与 %q，请确认是否为同一水厂", a, b))
		}
	}
	return found
}

var sampleNameBracketRe = regexp.MustCompile(`【(.+?)】`)

func checkSampleNameVsFilename(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		m := sampleNameBracketRe.FindStringSubmatch(r.SampleName)
		if m == nil {
			continue
		}
		samplePlant := strings.TrimSpace(strings.SplitN(m[1], "/", 2)[0])
		nameNoPrefix := strings.TrimLeft(stem(r.Filename), "0123456789")
		if strings.Contains(nameNoPrefix, samplePlant) || strings.Contains(samplePlant, r.PlantName) {
			continue
		}
		if strings.Contains(nameNoPrefix, strings.ReplaceAll(samplePlant, "水厂", "")) {
			continue
		}
		found = append(found, tagReport(issues.New(issues.Caution, issues.CategoryConsistency,
			"文件 %q 内样品名称为 %q，与文件名中的水厂名称不一致", r.Filename, r.SampleName), r))
	}
	return found
}

func checkSampleTypeVsFilename(c *Context) []issues.Issue {
	keywords := map[string]string{
		string(records.FinishedWater):  "出厂水",
		string(records.RawWater):       "原水",
		string(records.NetworkWater):   "管网",
		string(records.SecondaryWater): "二次供水",
	}
	var found []issues.Issue
	for _, r := range c.Reports {
		st := strings.TrimSpace(r.SampleType)
		kw, checked := keywords[r.WaterType]
		if st == "" || !checked || strings.Contains(st, kw) {
			continue
		}
		found = append(found, tagReport(issues.New(issues.Important, issues.CategoryConsistency,
			"文件 %q 文件名标注为%s，但内容样品类型为 %q", r.Filename, r.WaterType, st), r))
	}
	return found
}

func checkPlantCoverage(c *Context) []issues.Issue {
	types := make(map[string]map[string]bool)
	var plants []string
	for _, r := range c.Reports {
		if r.PlantName == "" {
			continue
		}
		switch r.WaterType {
		case string(records.FinishedWater), string(records.RawWater), string(records.NetworkWater):
		default:
			continue
		}
		if types[r.PlantName] == nil {
			types[r.PlantName] = make(map[string]bool)
			plants = append(plants, r.PlantName)
		}
		types[r.PlantName][r.WaterType] = true
	}
	sort.Strings(plants)
	var found []issues.Issue
	for _, plant := range plants {
		ts := types[plant]
		if ts[string(records.FinishedWater)] && !ts[string(records.RawWater)] {
			found = append(found, issues.New(issues.Caution, issues.CategoryConsistency,
				"水厂 %q 有出厂水报告但缺少原水报告", plant))
		}
		if ts[string(records.RawWater)] && !ts[string(records.FinishedWater)] && strings.Contains(plant, "水厂") {
			found = append(found, issues.New(issues.Caution, issues.CategoryConsistency,
				"水厂 %q 有原水报告但缺少出厂水报告", plant))
		}
	}
	return found
}

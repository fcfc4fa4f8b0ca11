package rules

import (
	"sort"
	"strings"

	"github.com/macrossfev/report-verification/pkg/issues"
	"github.com/macrossfev/report-verification/pkg/reconcile"
	"github.com/macrossfev/report-verification/pkg/records"
)

func crossLogicRules() []Rule {
	return []Rule{
		{Name: "report-chlorine-ordering", Category: issues.CategoryCrossLogic, Check: checkReportChlorineOrdering},
		{Name: "report-permanganate-ordering", Category: issues.CategoryCrossLogic, Check: checkReportPermanganateOrdering},
		{Name: "report-sample-logic", Category: issues.CategoryCrossLogic, Check: checkReportSampleLogic},
		{Name: "report-method-uniformity", Category: issues.CategoryCrossLogic, Check: checkMethodUniformity},
	}
}

func checkReportChlorineOrdering(c *Context) []issues.Issue {
	var found []issues.Issue
	groups, plants := c.reportPlantGroups()
	for _, plant := range plants {
		byType := groups[plant]
		cc := byType[records.FinishedWater]
		gw := byType[records.NetworkWater]
		if gw == nil {
			gw = byType[records.TerminusWater]
		}
		if cc == nil || gw == nil {
			continue
		}
		for _, cl := range disinfectants {
			ccItem := c.Resolver.Resolve(cl, cc.Items)
			gwItem := c.Resolver.Resolve(cl, gw.Items)
			if ccItem == nil || gwItem == nil {
				continue
			}
			ccv, ccOK := parseNumeric(ccItem.Result)
			gwv, gwOK := parseNumeric(gwItem.Result)
			if ccOK && gwOK && ccv > 0 && gwv > ccv*c.Cal.Thresholds.ChlorineOrdering {
				found = append(found, issues.New(issues.Important, issues.CategoryCrossLogic,
					"%s 管网水(%s)%s(%v)高于出厂水(%s)(%v)",
					plant, gw.Filename, cl, gwv, cc.Filename, ccv).
					WithFiles(cc.Filename, gw.Filename))
			}
		}
	}
	return found
}

func checkReportPermanganateOrdering(c *Context) []issues.Issue {
	var found []issues.Issue
	groups, plants := c.reportPlantGroups()
	for _, plant := range plants {
		byType := groups[plant]
		cc, yw := byType[records.FinishedWater], byType[records.RawWater]
		if cc == nil || yw == nil {
			continue
		}
		for _, kn := range permanganateNames {
			ccItem := c.Resolver.Resolve(kn, cc.Items)
			ywItem := c.Resolver.Resolve(kn, yw.Items)
			if ccItem == nil || ywItem == nil {
				continue
			}
			ccv, ccOK := parseNumeric(ccItem.Result)
			ywv, ywOK := parseNumeric(ywItem.Result)
			if ccOK && ywOK && ccv > ywv*c.Cal.Thresholds.PermanganateReport {
				found = append(found, issues.New(issues.Important, issues.CategoryCrossLogic,
					"%s 出厂水(%s)高锰酸盐指数(%v)显著高于原水(%s)(%v)",
					plant, cc.Filename, ccv, yw.Filename, ywv).
					WithFiles(cc.Filename, yw.Filename))
			}
			break
		}
	}
	return found
}

func checkReportSampleLogic(c *Context) []issues.Issue {
	var found []issues.Issue
	for _, r := range c.Reports {
		if len(r.Items) == 0 {
			continue
		}
		r := r
		found = append(found, c.dataLogic(resultMap(r), "报告\""+r.Filename+"\"", issues.CategoryCrossLogic,
			func(is issues.Issue) issues.Issue { return tagReport(is, r) })...)
	}
	return found
}

func checkMethodUniformity(c *Context) []issues.Issue {
	type key struct {
		wtype string
		item  string
	}
	methods := make(map[key]map[string][]string)
	var order []key
	for _, r := range c.Reports {
		for _, item := range r.Items {
			if strings.TrimSpace(item.Method) == "" {
				continue
			}
			k := key{r.WaterType, item.Name}
			if methods[k] == nil {
				methods[k] = make(map[string][]string)
				order = append(order, k)
			}
			norm := reconcile.NormalizeMethod(item.Method)
			methods[k][norm] = append(methods[k][norm], r.Filename)
		}
	}
	var found []issues.Issue
	for _, k := range order {
		byMethod := methods[k]
		if len(byMethod) <= 1 {
			continue
		}
		names := make([]string, 0, len(byMethod))
		for m := range byMethod {
			names = append(names, m)
		}
		sort.Strings(names)
		majM, majN := names[0], len(byMethod[names[0]])
		for _, m := range names[1:] {
			if len(byMethod[m]) > majN {
				majM, majN = m, len(byMethod[m])
			}
		}
		for _, m := range names {
			fnames := byMethod[m]
			if m == majM || len(fnames) >= majN {
				continue
			}
			suffix := ""
			shown := fnames
			if len(fnames) > 3 {
				shown, suffix = fnames[:3], "..."
			}
			found = append(found, issues.New(issues.Important, issues.CategoryCrossLogic,
				"同类型(%s)报告「%s」检测方法不一致：%d个使用「%s」，多数(%d)使用「%s」，涉及：%s%s",
				k.wtype, k.item, len(fnames), m, majN, majM, strings.Join(shown, ", "), suffix).
				WithFiles(fnames...))
		}
	}
	return found
}

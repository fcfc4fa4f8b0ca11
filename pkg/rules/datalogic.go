package rules

import (
	"fmt"
	"strings"

	"github.com/macrossfev/report-verification/pkg/issues"
)

// dataLogic runs the intra-sample physical-consistency checks over one
// value map. The same checks serve record samples and reports; tag
// stamps each produced issue with its origin.
func (c *Context) dataLogic(items map[string]string, label string, cat issues.Category, tag func(issues.Issue) issues.Issue) []issues.Issue {
	var found []issues.Issue
	add := func(sev issues.Severity, format string, args ...any) {
		found = append(found, tag(issues.New(sev, cat, format, args...)))
	}
	th := c.Cal.Thresholds

	tds, _, tdsRaw, tdsOK := c.paramValue(items, "溶解性总固体")
	ec, _, ecRaw, ecOK := c.paramValue(items, "电导率")
	if tdsOK && ecOK && tds > 0 && ec > 0 {
		ratio := tds / ec
		if ratio < th.TDSRatioLow || ratio > th.TDSRatioHigh {
			add(issues.Important, "%s 溶解性总固体(%s)/电导率(%s)比值=%.2f，通常应在0.4-0.8之间",
				label, tdsRaw, ecRaw, ratio)
		}
	}

	crT, _, crTRaw, crTOK := c.paramValue(items, "总铬")
	cr6, _, cr6Raw, cr6OK := c.paramValue(items, "铬(六价)", "六价铬")
	if crTOK && cr6OK && cr6 > crT {
		add(issues.Important, "%s 铬(六价)(%s)大于总铬(%s)，逻辑矛盾", label, cr6Raw, crTRaw)
	}

	fe, _, _, feOK := c.paramValue(items, "铁")
	mn, _, _, mnOK := c.paramValue(items, "锰")
	colorRaw := ""
	for _, key := range sortedKeys(items) {
		if strings.Contains(key, "色度") {
			colorRaw = strings.TrimSpace(items[key])
			break
		}
	}
	if belowLimit(colorRaw) {
		var high []string
		if feOK && fe > th.IronColor {
			high = append(high, fmt.Sprintf("铁=%v", fe))
		}
		if mnOK && mn > th.ManganeseColor {
			high = append(high, fmt.Sprintf("锰=%v", mn))
		}
		if len(high) > 0 {
			add(issues.Caution, "%s %s偏高但色度低于检出限(%s)，需确认",
				label, strings.Join(high, "、"), colorRaw)
		}
	}

	tn, _, tnRaw, tnOK := c.paramValue(items, "总氮")
	nh3, _, nh3Raw, nh3OK := c.paramValue(items, "氨氮", "氨(以N计)", "氨")
	no3, _, no3Raw, no3OK := c.paramValue(items, "硝酸盐")
	no2, _, no2Raw, no2OK := c.paramValue(items, "亚硝酸盐")
	if tnOK {
		var comp float64
		if nh3OK {
			comp += nh3
		}
		if no3OK {
			comp += no3
		}
		if no2OK {
			comp += no2
		}
		if comp > tn*th.NitrogenBalance && comp > 0 {
			add(issues.Important, "%s 氨氮(%s)+硝酸盐氮(%s)+亚硝酸盐氮(%s)之和(%.3f)大于总氮(%s)，逻辑矛盾",
				label, nh3Raw, no3Raw, no2Raw, comp, tnRaw)
		}
	}

	do, _, doRaw, doOK := c.paramValue(items, "溶解氧")
	if doOK && do > th.DissolvedOxygenHigh && nh3OK && nh3 > th.AmmoniaHigh {
		add(issues.Caution, "%s 溶解氧(%s)较高但氨氮(%s)偏高，需确认", label, doRaw, nh3Raw)
	}

	if no2OK && no2 > 0 {
		if nh3OK && nh3 > 0 && no2 > nh3*th.NitriteRatio {
			add(issues.Important, "%s 亚硝酸盐氮(%s)显著高于氨氮(%s)，异常", label, no2Raw, nh3Raw)
		}
		if no3OK && no3 > 0 && no2 > no3*th.NitriteRatio {
			add(issues.Important, "%s 亚硝酸盐氮(%s)显著高于硝酸盐氮(%s)，异常", label, no2Raw, no3Raw)
		}
	}

	return found
}

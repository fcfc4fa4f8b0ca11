package reconcile

import (
	"strings"

	"github.com/macrossfev/report-verification/pkg/calibration"
	"github.com/macrossfev/report-verification/pkg/reports"
)

// Resolver maps original-record item names onto report item rows using
// the calibrated alias table and confusable-name guard.
type Resolver struct {
	cal *calibration.Calibration
}

// NewResolver builds a Resolver over a calibration set.
func NewResolver(cal *calibration.Calibration) *Resolver {
	return &Resolver{cal: cal}
}

// Resolve finds the report item a record item name refers to. The match
// chain is exact name, then alias, then guarded substring containment,
// then substring containment with parentheticals stripped. Returns nil
// when nothing matches.
func (rs *Resolver) Resolve(name string, items []reports.Item) *reports.Item {
	for i := range items {
		if items[i].Name == name {
			return &items[i]
		}
	}
	if alias, ok := rs.cal.Aliases[name]; ok {
		for i := range items {
			if items[i].Name == alias {
				return &items[i]
			}
		}
	}
	for i := range items {
		cand := items[i].Name
		if rs.Confusable(name, cand) {
			continue
		}
		if strings.Contains(cand, name) || strings.Contains(name, cand) {
			return &items[i]
		}
		cn, cc := StripParens(name), StripParens(cand)
		if cn == "" || cc == "" || len([]rune(cn)) <= 1 {
			continue
		}
		if strings.Contains(cc, cn) || strings.Contains(cn, cc) {
			return &items[i]
		}
	}
	return nil
}

// Confusable reports whether a substring match between the two names
// would conflate distinct parameters, such as 锰 inside 高锰酸盐指数.
func (rs *Resolver) Confusable(a, b string) bool {
	ca, cb := StripParens(a), StripParens(b)
	for _, p := range rs.cal.Confusables {
		if ca == p.Short && strings.Contains(cb, p.Keyword) {
			return true
		}
		if cb == p.Short && strings.Contains(ca, p.Keyword) {
			return true
		}
	}
	return false
}

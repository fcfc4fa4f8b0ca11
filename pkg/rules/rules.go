// Package rules holds the consistency-rule catalog. Every rule is a
// pure function over the evaluation context; output order is fixed by
// the aggregator, never by rule order.
package rules

import (
	"sort"

	"github.com/macrossfev/report-verification/pkg/calibration"
	"github.com/macrossfev/report-verification/pkg/issues"
	"github.com/macrossfev/report-verification/pkg/reconcile"
	"github.com/macrossfev/report-verification/pkg/records"
	"github.com/macrossfev/report-verification/pkg/reports"
)

// Context is the read-only working set a rule evaluates against.
type Context struct {
	Registry []records.Sample
	ByID     map[string]records.Sample
	Data     records.TestData

	Reports  []*reports.Report
	BySample map[string]*reports.Report

	Cal        *calibration.Calibration
	Resolver   *reconcile.Resolver
	Comparator reconcile.Comparator
}

// NewContext assembles a Context. Reports are ordered by filename so
// every derived grouping iterates deterministically.
func NewContext(registry []records.Sample, data records.TestData, rpts []*reports.Report, cal *calibration.Calibration) *Context {
	ctx := &Context{
		Registry:   registry,
		ByID:       make(map[string]records.Sample, len(registry)),
		Data:       data,
		Reports:    make([]*reports.Report, len(rpts)),
		BySample:   make(map[string]*reports.Report),
		Cal:        cal,
		Resolver:   reconcile.NewResolver(cal),
		Comparator: reconcile.Comparator{Tolerance: cal.Thresholds.ValueTolerance},
	}
	for _, s := range registry {
		if _, dup := ctx.ByID[s.SampleID]; !dup {
			ctx.ByID[s.SampleID] = s
		}
	}
	copy(ctx.Reports, rpts)
	sort.Slice(ctx.Reports, func(i, j int) bool { return ctx.Reports[i].Filename < ctx.Reports[j].Filename })
	for _, r := range ctx.Reports {
		if r.SampleID != "" {
			if _, dup := ctx.BySample[r.SampleID]; !dup {
				ctx.BySample[r.SampleID] = r
			}
		}
	}
	return ctx
}

// label renders a sample as "description(sample id)" for issue text.
func (c *Context) label(sid string) string {
	if s, ok := c.ByID[sid]; ok && s.Description != "" {
		return s.Description + "(" + sid + ")"
	}
	return sid
}

// sampleIDs returns registry sample ids in registry order.
func (c *Context) sampleIDs() []string {
	ids := make([]string, 0, len(c.Registry))
	for _, s := range c.Registry {
		ids = append(ids, s.SampleID)
	}
	return ids
}

// Rule is one catalog entry.
type Rule struct {
	Name     string
	Category issues.Category
	Check    func(*Context) []issues.Issue
}

// Catalog returns the full rule set.
func Catalog() []Rule {
	var all []Rule
	all = append(all, recordRules()...)
	all = append(all, crossDataRules()...)
	all = append(all, crossLogicRules()...)
	all = append(all, namingRules()...)
	all = append(all, numberingRules()...)
	all = append(all, dataRules()...)
	all = append(all, formatRules()...)
	all = append(all, dateRules()...)
	all = append(all, consistencyRules()...)
	all = append(all, valueRules()...)
	return all
}

// EvaluateAll runs every rule and returns the per-rule issue lists,
// ready for aggregation.
func EvaluateAll(ctx *Context) [][]issues.Issue {
	rules := Catalog()
	out := make([][]issues.Issue, len(rules))
	for i, r := range rules {
		out[i] = r.Check(ctx)
	}
	return out
}

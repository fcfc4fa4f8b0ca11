// Package verify orchestrates a verification run: directory discovery,
// extraction, rule evaluation and the aggregated issue report.
package verify

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/macrossfev/report-verification/internal/fileset"
	"github.com/macrossfev/report-verification/pkg/calibration"
	"github.com/macrossfev/report-verification/pkg/errors"
	"github.com/macrossfev/report-verification/pkg/grid"
	"github.com/macrossfev/report-verification/pkg/issues"
	"github.com/macrossfev/report-verification/pkg/logging"
	"github.com/macrossfev/report-verification/pkg/records"
	"github.com/macrossfev/report-verification/pkg/reports"
	"github.com/macrossfev/report-verification/pkg/rules"
)

// Config parameterizes a run.
type Config struct {
	// Dir is the directory holding the original record and reports.
	Dir string
	// RegistryOnly skips report parsing and cross-checks entirely.
	RegistryOnly bool
	// Calibration defaults to calibration.Default() when nil.
	Calibration *calibration.Calibration
	// Workers caps concurrent report parsing; 0 means NumCPU.
	Workers int
}

// Result is everything a run produced.
type Result struct {
	Set      *fileset.Set
	Registry []records.Sample
	Data     records.TestData
	Reports  []*reports.Report
	Issues   []issues.Issue
}

// Meta describes the run for report rendering.
func (r *Result) Meta() issues.Meta {
	return issues.Meta{
		Directory:      r.Set.Dir,
		OriginalRecord: r.Set.OriginalRecord,
		ReportFiles:    len(r.Set.Reports),
	}
}

// Render returns the sectioned plain-text issue report.
func (r *Result) Render() string {
	return issues.Render(r.Issues, r.Meta())
}

// MarshalRecords returns the issues as line-delimited JSON records.
func (r *Result) MarshalRecords() ([]byte, error) {
	return issues.MarshalRecords(r.Issues)
}

// Run executes a full verification batch. Extraction and rule failures
// surface as issues, never as errors; only an unusable directory or an
// empty working set aborts. The run logger travels on ctx via
// logging.WithLogger.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	log := logging.Ctx(ctx)
	cal := cfg.Calibration
	if cal == nil {
		cal = calibration.Default()
	}

	set, err := fileset.Scan(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if !set.HasOriginal() && len(set.Reports) == 0 {
		return nil, errors.NewIOError("scan", cfg.Dir, errors.ErrNotFound)
	}
	log.Info().Str("dir", set.Dir).Str("original", set.OriginalRecord).
		Int("reports", len(set.Reports)).Msg("scanned working set")

	res := &Result{Set: set, Data: make(records.TestData)}
	var lists [][]issues.Issue

	if set.HasOriginal() {
		path := filepath.Join(set.Dir, set.OriginalRecord)
		wb, err := grid.Open(path)
		if err != nil {
			log.Err(err).Str("file", set.OriginalRecord).Msg("original record unreadable")
			lists = append(lists, []issues.Issue{readErrorIssue(set.OriginalRecord, err)})
		} else {
			var regIssues, dataIssues []issues.Issue
			res.Registry, regIssues = records.ExtractRegistry(wb)
			res.Data, dataIssues = records.ExtractMeasurements(wb)
			lists = append(lists, regIssues, dataIssues)
			log.Info().Int("samples", len(res.Registry)).Int("measured", len(res.Data)).
				Msg("extracted original record")
		}
	} else {
		log.Warn().Msg("no original record file found, cross-checks limited")
	}

	if !cfg.RegistryOnly {
		parsed, readIssues := parseReports(ctx, cfg, set, cal, log)
		res.Reports = parsed
		lists = append(lists, readIssues)
	}

	ruleCtx := rules.NewContext(res.Registry, res.Data, res.Reports, cal)
	lists = append(lists, rules.EvaluateAll(ruleCtx)...)
	res.Issues = issues.Aggregate(lists...)
	log.Info().Int("issues", len(res.Issues)).Msg("evaluation complete")
	return res, nil
}

func readErrorIssue(fname string, err error) issues.Issue {
	return issues.New(issues.Important, issues.CategoryReadError,
		"文件 %q 读取异常：%v", fname, err).WithFiles(fname)
}

// parseReports reads report files on a bounded worker pool. Results come
// back in input order so downstream evaluation is deterministic.
func parseReports(ctx context.Context, cfg Config, set *fileset.Set, cal *calibration.Calibration, log *zerolog.Logger) ([]*reports.Report, []issues.Issue) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	parsed := make([]*reports.Report, len(set.Reports))
	errs := make([]error, len(set.Reports))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, fname := range set.Reports {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, fname string) {
			defer wg.Done()
			defer func() { <-sem }()
			parsed[i], errs[i] = reports.Parse(filepath.Join(set.Dir, fname), cal)
		}(i, fname)
	}
	wg.Wait()

	out := make([]*reports.Report, 0, len(parsed))
	var readIssues []issues.Issue
	for i, fname := range set.Reports {
		if errs[i] != nil {
			log.Err(errs[i]).Str("file", fname).Msg("report unreadable")
			readIssues = append(readIssues, readErrorIssue(fname, errs[i]))
			continue
		}
		if parsed[i] != nil {
			out = append(out, parsed[i])
		}
	}
	log.Info().Int("parsed", len(out)).Int("failed", len(readIssues)).Msg("parsed report files")
	return out, readIssues
}

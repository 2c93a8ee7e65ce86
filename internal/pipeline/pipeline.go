package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/datajobs/jobmarket/internal/analyze"
	"github.com/datajobs/jobmarket/internal/chart"
	"github.com/datajobs/jobmarket/internal/clean"
	"github.com/datajobs/jobmarket/internal/export"
	"github.com/datajobs/jobmarket/internal/forecast"
	"github.com/datajobs/jobmarket/internal/model"
)

// Pipeline owns the full analysis run:
// load → clean → aggregate → forecast → chart → export.
type Pipeline struct {
	source   model.PostingSource
	cache    model.PostingCache // nil disables caching
	refresh  bool               // bypass a warm cache and re-download
	limits   analyze.Limits
	charts   *chart.Renderer
	exporter *export.Exporter
	logger   *slog.Logger
}

// Result is everything a run derived, for the console report.
type Result struct {
	Cleaned  clean.Result
	Summary  analyze.Summary
	Forecast *forecast.Forecast // nil when too few monthly buckets
	Exports  []string           // export file names written
}

// New creates a pipeline wired with all its dependencies. cache may be nil.
func New(
	source model.PostingSource,
	cache model.PostingCache,
	refresh bool,
	limits analyze.Limits,
	charts *chart.Renderer,
	exporter *export.Exporter,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		source:   source,
		cache:    cache,
		refresh:  refresh,
		limits:   limits,
		charts:   charts,
		exporter: exporter,
		logger:   logger,
	}
}

// Run executes the stages in order. Source and filesystem failures are fatal;
// a cache write failure only costs the next run its warm start.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	postings, err := p.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	p.logger.Info("dataset loaded", "rows", len(postings))

	cleaned := clean.Clean(postings)
	p.logger.Info("dataset cleaned",
		"rows", len(cleaned.Postings),
		"duplicates", cleaned.Duplicates,
		"missing_date", cleaned.MissingDate,
		"missing_salary", cleaned.MissingSalary,
	)

	summary := analyze.Summarize(cleaned.Postings, p.limits)

	fc := forecast.Project(summary.Monthly)
	if fc == nil {
		p.logger.Debug("forecast skipped", "monthly_buckets", len(summary.Monthly), "required", forecast.MinBuckets)
	} else {
		p.logger.Info("forecast fitted", "slope", fc.Slope, "r2", fc.R2)
	}

	salaries := make([]float64, 0, len(cleaned.Postings))
	for _, posting := range cleaned.Postings {
		if posting.SalaryYearAvg != nil {
			salaries = append(salaries, *posting.SalaryYearAvg)
		}
	}
	if err := p.charts.Render(summary, salaries, fc); err != nil {
		return nil, fmt.Errorf("rendering charts: %w", err)
	}
	p.logger.Info("charts rendered")

	written, err := p.exporter.Export(cleaned.Postings, summary, fc)
	if err != nil {
		return nil, fmt.Errorf("exporting tables: %w", err)
	}
	p.logger.Info("tables exported", "files", len(written))

	return &Result{
		Cleaned:  cleaned,
		Summary:  summary,
		Forecast: fc,
		Exports:  written,
	}, nil
}

// load prefers a warm cache unless refresh is set; a fetched dataset is
// written back so the next run skips the download.
func (p *Pipeline) load(ctx context.Context) ([]model.JobPosting, error) {
	if p.cache != nil && !p.refresh {
		count, err := p.cache.Count()
		if err != nil {
			return nil, err
		}
		if count > 0 {
			p.logger.Info("using cached dataset", "rows", count)
			return p.cache.Load()
		}
	}

	postings, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Save(postings); err != nil {
			p.logger.Warn("failed to cache dataset", "error", err)
		}
	}
	return postings, nil
}

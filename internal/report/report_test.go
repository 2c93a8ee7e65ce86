package report

import (
	"strings"
	"testing"
	"time"

	"github.com/datajobs/jobmarket/internal/analyze"
	"github.com/datajobs/jobmarket/internal/clean"
	"github.com/datajobs/jobmarket/internal/forecast"
	"github.com/datajobs/jobmarket/internal/model"
)

func fixtureSummary(t *testing.T, withDates bool) (clean.Result, analyze.Summary) {
	t.Helper()
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	var postings []model.JobPosting
	for i := 0; i < 24; i++ {
		p := model.JobPosting{
			CategoryTitle: "Data Engineer",
			Title:         "Data Engineer",
			Company:       "Acme",
			Location:      "Remote",
		}
		if withDates {
			posted := start.AddDate(0, i%8, i)
			p.PostedAt = &posted
		}
		salary := 100000.0
		p.SalaryYearAvg = &salary
		postings = append(postings, p)
	}
	cleaned := clean.Clean(postings)
	return cleaned, analyze.Summarize(cleaned.Postings, analyze.Limits{Categories: 10, Companies: 5, Locations: 5})
}

func TestRenderContainsCoreSections(t *testing.T) {
	cleaned, summary := fixtureSummary(t, true)
	out := Render(cleaned, summary, forecast.Project(summary.Monthly))

	for _, want := range []string{
		"Market overview",
		"Salary intelligence",
		"Top job categories",
		"Geographic distribution",
		"Top hiring companies",
		"Market forecast",
		"Data Engineer",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderOmitsForecastWhenAbsent(t *testing.T) {
	cleaned, summary := fixtureSummary(t, false)
	out := Render(cleaned, summary, nil)

	if strings.Contains(out, "Market forecast") {
		t.Error("report should omit the forecast section when no fit was produced")
	}
}

func TestRenderOmitsSalaryWhenAbsent(t *testing.T) {
	postings := []model.JobPosting{
		{CategoryTitle: "Data Engineer", Title: "DE", Company: "Acme", Location: "NYC"},
	}
	cleaned := clean.Clean(postings)
	summary := analyze.Summarize(cleaned.Postings, analyze.Limits{Categories: 10, Companies: 5, Locations: 5})

	out := Render(cleaned, summary, nil)
	if strings.Contains(out, "Salary intelligence") {
		t.Error("report should omit salary section without salary data")
	}
}

package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/datajobs/jobmarket/internal/analyze"
	"github.com/datajobs/jobmarket/internal/forecast"
	"github.com/datajobs/jobmarket/internal/model"
)

func fixtureData() ([]model.JobPosting, analyze.Summary, *forecast.Forecast) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	var postings []model.JobPosting
	for i := 0; i < 60; i++ {
		posted := start.AddDate(0, i%6, i%20)
		salary := 80000 + float64(i)*500
		postings = append(postings, model.JobPosting{
			CategoryTitle: []string{"Data Engineer", "Data Analyst"}[i%2],
			Title:         "Role",
			Company:       "Acme",
			Location:      "Remote",
			PostedAt:      &posted,
			SalaryYearAvg: &salary,
		})
	}
	summary := analyze.Summarize(postings, analyze.Limits{Categories: 10, Companies: 5, Locations: 5})
	return postings, summary, forecast.Project(summary.Monthly)
}

func readCSV(t *testing.T, dir, name string) [][]string {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return rows
}

func TestExportWritesAllTables(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	postings, summary, fc := fixtureData()

	written, err := NewExporter(dir, 10000, 1).Export(postings, summary, fc)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	want := []string{
		SampleFile, SummaryFile, TopCategoriesFile, TopCompaniesFile,
		TopLocationsFile, SalaryFile, MonthlyFile, ForecastFile,
	}
	if len(written) != len(want) {
		t.Fatalf("wrote %v, want %v", written, want)
	}
	for _, name := range want {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing export %s: %v", name, err)
		}
	}
}

func TestExportSampleContent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	postings, summary, fc := fixtureData()

	if _, err := NewExporter(dir, 10000, 1).Export(postings, summary, fc); err != nil {
		t.Fatalf("Export: %v", err)
	}

	rows := readCSV(t, dir, SampleFile)
	if len(rows) != len(postings)+1 {
		t.Fatalf("sample has %d rows, want %d + header", len(rows)-1, len(postings))
	}
	if rows[0][0] != "job_title_short" || rows[0][5] != "salary_year_avg" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	// Dates round-trip through the dataset's own layout.
	if _, err := time.Parse("2006-01-02 15:04:05", rows[1][4]); err != nil {
		t.Errorf("sample date %q not in dataset layout: %v", rows[1][4], err)
	}
}

func TestExportSummaryMetrics(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	postings, summary, fc := fixtureData()

	if _, err := NewExporter(dir, 10000, 1).Export(postings, summary, fc); err != nil {
		t.Fatalf("Export: %v", err)
	}

	rows := readCSV(t, dir, SummaryFile)
	metrics := make(map[string]string)
	for _, row := range rows[1:] {
		metrics[row[0]] = row[1]
	}
	if metrics["Total Jobs"] != "60" {
		t.Errorf("Total Jobs = %q, want 60", metrics["Total Jobs"])
	}
	if metrics["Unique Companies"] != "1" {
		t.Errorf("Unique Companies = %q, want 1", metrics["Unique Companies"])
	}
	if _, ok := metrics["Avg Salary"]; !ok {
		t.Error("Avg Salary metric missing")
	}
}

func TestExportSkipsOptionalTables(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	// Undated, unsalaried postings: no salary table, no trends, no forecast.
	postings := []model.JobPosting{
		{CategoryTitle: "Data Engineer", Title: "DE", Company: "Acme", Location: "NYC"},
		{CategoryTitle: "Data Analyst", Title: "DA", Company: "Globex", Location: "Austin"},
	}
	summary := analyze.Summarize(postings, analyze.Limits{Categories: 10, Companies: 5, Locations: 5})

	written, err := NewExporter(dir, 10000, 1).Export(postings, summary, nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	for _, name := range written {
		if name == SalaryFile || name == MonthlyFile || name == ForecastFile {
			t.Errorf("optional table %s should not be written", name)
		}
	}
	if len(written) != 5 {
		t.Errorf("wrote %d tables, want 5 mandatory ones: %v", len(written), written)
	}
}

func TestExportForecastTable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	postings, summary, fc := fixtureData()
	if fc == nil {
		t.Fatal("fixture must produce a forecast")
	}

	if _, err := NewExporter(dir, 10000, 1).Export(postings, summary, fc); err != nil {
		t.Fatalf("Export: %v", err)
	}

	rows := readCSV(t, dir, ForecastFile)
	if len(rows) != forecast.Horizon+1 {
		t.Fatalf("forecast has %d rows, want %d + header", len(rows)-1, forecast.Horizon)
	}
	if _, err := time.Parse("2006-01", rows[1][0]); err != nil {
		t.Errorf("forecast month %q not in 2006-01 layout: %v", rows[1][0], err)
	}
}

func TestExportFailsOnUnwritableDir(t *testing.T) {
	// A file standing where the exports dir should be makes MkdirAll fail.
	base := t.TempDir()
	blocker := filepath.Join(base, "exports")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	postings, summary, fc := fixtureData()
	if _, err := NewExporter(blocker, 10000, 1).Export(postings, summary, fc); err == nil {
		t.Error("expected error for unwritable exports dir, got nil")
	}
}

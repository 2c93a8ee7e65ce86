package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/datajobs/jobmarket/internal/analyze"
	"github.com/datajobs/jobmarket/internal/forecast"
	"github.com/datajobs/jobmarket/internal/model"
)

// Export file names, fixed for BI-tool imports.
const (
	SampleFile        = "job_market_sample_data.csv"
	SummaryFile       = "summary_metrics.csv"
	TopCategoriesFile = "top_job_categories.csv"
	TopCompaniesFile  = "top_companies.csv"
	TopLocationsFile  = "top_locations.csv"
	SalaryFile        = "salary_analysis.csv"
	MonthlyFile       = "monthly_trends.csv"
	ForecastFile      = "market_forecast.csv"
)

const postedDateLayout = "2006-01-02 15:04:05"

// Exporter writes each derived table to its own CSV in a fixed directory.
type Exporter struct {
	dir        string
	sampleSize int
	seed       int64
}

// NewExporter creates an exporter targeting dir.
func NewExporter(dir string, sampleSize int, seed int64) *Exporter {
	return &Exporter{
		dir:        dir,
		sampleSize: sampleSize,
		seed:       seed,
	}
}

// Export writes every table: the stratified sample and the always-present
// aggregates unconditionally, salary/trend/forecast tables only when their
// data exists. Returns the file names written; any write failure aborts the
// run.
func (e *Exporter) Export(postings []model.JobPosting, s analyze.Summary, fc *forecast.Forecast) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating exports dir: %w", err)
	}

	var written []string
	write := func(name string, header []string, rows [][]string) error {
		if err := e.writeCSV(name, header, rows); err != nil {
			return err
		}
		written = append(written, name)
		return nil
	}

	sample := StratifiedSample(postings, e.sampleSize, e.seed)
	if err := write(SampleFile, sampleHeader(), sampleRows(sample)); err != nil {
		return written, err
	}

	if err := write(SummaryFile, []string{"Metric", "Value"}, summaryRows(s)); err != nil {
		return written, err
	}

	if err := write(TopCategoriesFile, []string{"Job_Category", "Count", "Percent"}, freqRows(s.TopCategories)); err != nil {
		return written, err
	}
	if err := write(TopCompaniesFile, []string{"Company", "Count", "Percent"}, freqRows(s.TopCompanies)); err != nil {
		return written, err
	}
	if err := write(TopLocationsFile, []string{"Location", "Count", "Percent"}, freqRows(s.TopLocations)); err != nil {
		return written, err
	}

	if len(s.SalaryByCategory) > 0 {
		header := []string{"Job_Category", "Job_Count", "Avg_Salary", "Median_Salary", "Salary_Std"}
		if err := write(SalaryFile, header, categorySalaryRows(s.SalaryByCategory)); err != nil {
			return written, err
		}
	}

	if len(s.Monthly) > 0 {
		if err := write(MonthlyFile, []string{"month", "job_count"}, monthlyRows(s.Monthly)); err != nil {
			return written, err
		}
	}

	if fc != nil {
		if err := write(ForecastFile, []string{"date", "forecasted_jobs"}, forecastRows(fc)); err != nil {
			return written, err
		}
	}

	return written, nil
}

func (e *Exporter) writeCSV(name string, header []string, rows [][]string) error {
	path := filepath.Join(e.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	return nil
}

func sampleHeader() []string {
	return []string{"job_title_short", "job_title", "company_name", "job_location", "job_posted_date", "salary_year_avg"}
}

func sampleRows(sample []model.JobPosting) [][]string {
	rows := make([][]string, 0, len(sample))
	for _, p := range sample {
		posted := ""
		if p.PostedAt != nil {
			posted = p.PostedAt.Format(postedDateLayout)
		}
		salary := ""
		if p.SalaryYearAvg != nil {
			salary = strconv.FormatFloat(*p.SalaryYearAvg, 'f', -1, 64)
		}
		rows = append(rows, []string{p.CategoryTitle, p.Title, p.Company, p.Location, posted, salary})
	}
	return rows
}

func summaryRows(s analyze.Summary) [][]string {
	avgSalary := 0.0
	if s.Salary != nil {
		avgSalary = s.Salary.Mean
	}
	return [][]string{
		{"Total Jobs", strconv.Itoa(s.Overview.TotalPostings)},
		{"Unique Companies", strconv.Itoa(s.Overview.Companies)},
		{"Unique Locations", strconv.Itoa(s.Overview.Locations)},
		{"Unique Titles", strconv.Itoa(s.Overview.Titles)},
		{"Avg Salary", strconv.FormatFloat(avgSalary, 'f', 2, 64)},
	}
}

func freqRows(entries []analyze.FreqEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Name,
			strconv.Itoa(e.Count),
			strconv.FormatFloat(e.Percent, 'f', 1, 64),
		})
	}
	return rows
}

func categorySalaryRows(rows []analyze.CategorySalary) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Category,
			strconv.Itoa(r.Count),
			strconv.FormatFloat(r.Mean, 'f', 2, 64),
			strconv.FormatFloat(r.Median, 'f', 2, 64),
			strconv.FormatFloat(r.StdDev, 'f', 2, 64),
		})
	}
	return out
}

func monthlyRows(monthly []analyze.MonthBucket) [][]string {
	rows := make([][]string, 0, len(monthly))
	for _, b := range monthly {
		rows = append(rows, []string{b.Month.Format("2006-01"), strconv.Itoa(b.Count)})
	}
	return rows
}

func forecastRows(fc *forecast.Forecast) [][]string {
	rows := make([][]string, 0, len(fc.Points))
	for _, p := range fc.Points {
		rows = append(rows, []string{p.Month.Format("2006-01"), strconv.FormatFloat(p.Projected, 'f', 0, 64)})
	}
	return rows
}

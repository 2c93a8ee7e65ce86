package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/datajobs/jobmarket/internal/model"
)

// Dataset columns we consume; anything else in the CSV is ignored.
const (
	colCategoryTitle = "job_title_short"
	colTitle         = "job_title"
	colCompany       = "company_name"
	colLocation      = "job_location"
	colPostedDate    = "job_posted_date"
	colSalary        = "salary_year_avg"
)

// Posted-date layouts seen in the dataset, most common first.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// HTTPSource fetches the job-postings dataset as CSV from a fixed URL.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a source for the CSV export at url.
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	return &HTTPSource{
		url:    url,
		client: client,
	}
}

// Fetch downloads the dataset and parses every row into a JobPosting.
// Transport and malformed-CSV errors are fatal; unparseable dates and
// salaries within a row degrade to missing values instead.
func (s *HTTPSource) Fetch(ctx context.Context) ([]model.JobPosting, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dataset fetch: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataset fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset fetch: unexpected status %d", resp.StatusCode)
	}

	postings, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dataset fetch: %w", err)
	}
	return postings, nil
}

// ParseCSV reads header-indexed CSV rows into JobPostings. The header row
// names the columns, so column order in the file is free.
func ParseCSV(r io.Reader) ([]model.JobPosting, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colCategoryTitle, colTitle, colCompany, colLocation} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("csv header missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var postings []model.JobPosting
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		p := model.JobPosting{
			CategoryTitle: field(record, colCategoryTitle),
			Title:         field(record, colTitle),
			Company:       field(record, colCompany),
			Location:      field(record, colLocation),
		}
		p.PostedAt = parseDate(field(record, colPostedDate))
		p.SalaryYearAvg = parseSalary(field(record, colSalary))

		postings = append(postings, p)
	}

	return postings, nil
}

// parseDate coerces an unparseable or empty value to nil rather than failing
// the run.
func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// parseSalary coerces an unparseable or empty value to nil.
func parseSalary(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

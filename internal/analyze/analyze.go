package analyze

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/datajobs/jobmarket/internal/model"
)

// Limits sets how many entries each frequency table keeps.
type Limits struct {
	Categories int
	Companies  int
	Locations  int
}

// Overview holds the dataset cardinalities.
type Overview struct {
	TotalPostings int
	Companies     int // distinct company names
	Locations     int // distinct location strings
	Titles        int // distinct full titles
}

// SalaryStats are descriptive statistics over postings with a present salary.
// Quantiles use linear interpolation between adjacent order statistics and
// StdDev is the sample standard deviation.
type SalaryStats struct {
	Count  int
	Mean   float64
	Median float64
	P25    float64
	P75    float64
	Min    float64
	Max    float64
	StdDev float64
}

// FreqEntry is one row of a top-N frequency table.
type FreqEntry struct {
	Name    string
	Count   int
	Percent float64 // of total postings
}

// MonthBucket is the posting count for one calendar month.
type MonthBucket struct {
	Month time.Time // first day of the month, UTC
	Count int
}

// CategorySalary summarizes salaries within one title category.
type CategorySalary struct {
	Category string
	Count    int
	Mean     float64
	Median   float64
	StdDev   float64
}

// Summary is everything the aggregator derives from the cleaned collection.
type Summary struct {
	Overview         Overview
	Salary           *SalaryStats // nil when no posting carries a salary
	TopCategories    []FreqEntry
	TopCompanies     []FreqEntry
	TopLocations     []FreqEntry
	Monthly          []MonthBucket    // ascending by month, dated rows only
	SalaryByCategory []CategorySalary // categories with >= 10 salaried rows, by mean desc
}

// Minimum salaried rows a category needs before its salary row is reported.
const minCategorySalaries = 10

// Summarize computes every aggregate over the cleaned collection. All results
// are order-independent except the top-N rankings, which break count ties by
// first-seen order in the input.
func Summarize(postings []model.JobPosting, limits Limits) Summary {
	s := Summary{
		Overview: Overview{
			TotalPostings: len(postings),
			Companies:     distinct(postings, func(p model.JobPosting) string { return p.Company }),
			Locations:     distinct(postings, func(p model.JobPosting) string { return p.Location }),
			Titles:        distinct(postings, func(p model.JobPosting) string { return p.Title }),
		},
	}

	salaries := make([]float64, 0, len(postings))
	for _, p := range postings {
		if p.SalaryYearAvg != nil {
			salaries = append(salaries, *p.SalaryYearAvg)
		}
	}
	s.Salary = Describe(salaries)

	total := len(postings)
	s.TopCategories = TopN(postings, total, limits.Categories, func(p model.JobPosting) string { return p.CategoryTitle })
	s.TopCompanies = TopN(postings, total, limits.Companies, func(p model.JobPosting) string { return p.Company })
	s.TopLocations = TopN(postings, total, limits.Locations, func(p model.JobPosting) string { return p.Location })

	s.Monthly = MonthlyCounts(postings)
	s.SalaryByCategory = salaryByCategory(postings)

	return s
}

// Describe computes descriptive statistics over values, or nil for an empty
// slice. The input is not modified.
func Describe(values []float64) *SalaryStats {
	if len(values) == 0 {
		return nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return &SalaryStats{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.LinInterp, sorted, nil),
		P25:    stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		P75:    stat.Quantile(0.75, stat.LinInterp, sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		StdDev: stat.StdDev(sorted, nil),
	}
}

// TopN ranks the n most frequent values of key over postings. Ties are broken
// by first-seen order in the input, so rankings are deterministic. Percent is
// relative to total.
func TopN(postings []model.JobPosting, total, n int, key func(model.JobPosting) string) []FreqEntry {
	counts := make(map[string]int)
	var order []string // first-seen order
	for _, p := range postings {
		k := key(p)
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	entries := make([]FreqEntry, 0, len(order))
	for _, k := range order {
		e := FreqEntry{Name: k, Count: counts[k]}
		if total > 0 {
			e.Percent = float64(e.Count) / float64(total) * 100
		}
		entries = append(entries, e)
	}

	// Stable sort keeps first-seen order within equal counts.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// MonthlyCounts buckets dated postings by calendar month, ascending. Rows
// with a missing date are excluded.
func MonthlyCounts(postings []model.JobPosting) []MonthBucket {
	counts := make(map[time.Time]int)
	for _, p := range postings {
		if p.PostedAt == nil {
			continue
		}
		t := p.PostedAt.UTC()
		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		counts[month]++
	}

	buckets := make([]MonthBucket, 0, len(counts))
	for month, count := range counts {
		buckets = append(buckets, MonthBucket{Month: month, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Month.Before(buckets[j].Month)
	})
	return buckets
}

func salaryByCategory(postings []model.JobPosting) []CategorySalary {
	byCategory := make(map[string][]float64)
	var order []string
	for _, p := range postings {
		if p.SalaryYearAvg == nil {
			continue
		}
		if _, seen := byCategory[p.CategoryTitle]; !seen {
			order = append(order, p.CategoryTitle)
		}
		byCategory[p.CategoryTitle] = append(byCategory[p.CategoryTitle], *p.SalaryYearAvg)
	}

	var rows []CategorySalary
	for _, category := range order {
		values := byCategory[category]
		if len(values) < minCategorySalaries {
			continue
		}
		st := Describe(values)
		rows = append(rows, CategorySalary{
			Category: category,
			Count:    st.Count,
			Mean:     st.Mean,
			Median:   st.Median,
			StdDev:   st.StdDev,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Mean > rows[j].Mean
	})
	return rows
}

func distinct(postings []model.JobPosting, key func(model.JobPosting) string) int {
	set := make(map[string]struct{}, len(postings))
	for _, p := range postings {
		set[key(p)] = struct{}{}
	}
	return len(set)
}

package clean

import (
	"github.com/datajobs/jobmarket/internal/model"
)

// Result is the cleaned collection plus what was dropped or missing, for the
// run summary.
type Result struct {
	Postings      []model.JobPosting
	Duplicates    int // exact-duplicate rows removed
	MissingDate   int // rows whose posted date could not be parsed
	MissingSalary int // rows with no usable salary
}

// Clean removes exact-duplicate records, keeping the first occurrence so
// downstream first-seen ordering is well defined. Date and salary coercion
// already happened at parse time; Clean only tallies the missing values.
// Clean is idempotent: running it on its own output changes nothing.
func Clean(postings []model.JobPosting) Result {
	seen := make(map[string]struct{}, len(postings))
	out := make([]model.JobPosting, 0, len(postings))

	result := Result{}
	for _, p := range postings {
		key := p.Key()
		if _, dup := seen[key]; dup {
			result.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)

		if p.PostedAt == nil {
			result.MissingDate++
		}
		if p.SalaryYearAvg == nil {
			result.MissingSalary++
		}
	}

	result.Postings = out
	return result
}

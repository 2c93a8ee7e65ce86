package model

import (
	"context"
	"fmt"
	"time"
)

// JobPosting is one row of the source dataset: a single job listing.
type JobPosting struct {
	CategoryTitle string     // short/normalized title, e.g. "Data Engineer"
	Title         string     // full title as posted
	Company       string     // company name
	Location      string     // location string
	PostedAt      *time.Time // nullable (coerced to nil when unparseable)
	SalaryYearAvg *float64   // annual salary in USD, nil when absent
}

// Key returns a string that is equal for two postings iff every field is
// equal. Missing date and salary collapse to fixed sentinels so that two rows
// missing the same field still compare equal.
func (p JobPosting) Key() string {
	posted := "-"
	if p.PostedAt != nil {
		posted = p.PostedAt.Format(time.RFC3339)
	}
	salary := "-"
	if p.SalaryYearAvg != nil {
		salary = fmt.Sprintf("%.2f", *p.SalaryYearAvg)
	}
	return p.CategoryTitle + "\x1f" + p.Title + "\x1f" + p.Company + "\x1f" +
		p.Location + "\x1f" + posted + "\x1f" + salary
}

// Month returns the posting's calendar month as a "2006-01" string, or ""
// when the posted date is missing.
func (p JobPosting) Month() string {
	if p.PostedAt == nil {
		return ""
	}
	return p.PostedAt.Format("2006-01")
}

// PostingSource fetches the full dataset from somewhere (network, cache).
type PostingSource interface {
	Fetch(ctx context.Context) ([]JobPosting, error)
}

// PostingCache persists a fetched dataset locally so repeat runs can skip the
// download.
type PostingCache interface {
	Load() ([]JobPosting, error)
	Save(postings []JobPosting) error
	Count() (int, error)
}

package export

import (
	"testing"

	"github.com/datajobs/jobmarket/internal/model"
)

func corpus(counts map[string]int) []model.JobPosting {
	var postings []model.JobPosting
	// Deterministic category order for first-seen semantics.
	for _, category := range []string{"Data Engineer", "Data Analyst", "Data Scientist", "ML Engineer", "BI Analyst"} {
		for i := 0; i < counts[category]; i++ {
			postings = append(postings, model.JobPosting{
				CategoryTitle: category,
				Title:         category,
				Company:       "Acme",
				Location:      "Remote",
			})
		}
	}
	return postings
}

func categoryCounts(postings []model.JobPosting) map[string]int {
	counts := make(map[string]int)
	for _, p := range postings {
		counts[p.CategoryTitle]++
	}
	return counts
}

func TestSampleExactSize(t *testing.T) {
	postings := corpus(map[string]int{
		"Data Engineer":  400,
		"Data Analyst":   300,
		"Data Scientist": 200,
		"ML Engineer":    90,
		"BI Analyst":     10,
	})

	for _, size := range []int{10, 100, 500, 999} {
		sample := StratifiedSample(postings, size, 1)
		if len(sample) != size {
			t.Errorf("size %d: sample has %d rows", size, len(sample))
		}
	}
}

func TestSampleSmallerInputReturnedWhole(t *testing.T) {
	postings := corpus(map[string]int{"Data Engineer": 7, "Data Analyst": 3})

	sample := StratifiedSample(postings, 10000, 1)
	if len(sample) != 10 {
		t.Errorf("sample has %d rows, want all 10", len(sample))
	}
}

func TestSampleEveryCategoryPresent(t *testing.T) {
	postings := corpus(map[string]int{
		"Data Engineer":  950,
		"Data Analyst":   30,
		"Data Scientist": 15,
		"ML Engineer":    4,
		"BI Analyst":     1,
	})

	sample := StratifiedSample(postings, 50, 1)
	counts := categoryCounts(sample)
	for category := range categoryCounts(postings) {
		if counts[category] < 1 {
			t.Errorf("category %q missing from sample", category)
		}
	}
	if len(sample) != 50 {
		t.Errorf("sample has %d rows, want 50", len(sample))
	}
}

func TestSampleRoughlyProportional(t *testing.T) {
	postings := corpus(map[string]int{
		"Data Engineer":  600,
		"Data Analyst":   300,
		"Data Scientist": 100,
	})

	sample := StratifiedSample(postings, 100, 1)
	counts := categoryCounts(sample)

	// Floors plus top-up keep each stratum within one-and-a-bit of its share.
	if counts["Data Engineer"] < 55 || counts["Data Engineer"] > 65 {
		t.Errorf("Data Engineer stratum = %d, want ~60", counts["Data Engineer"])
	}
	if counts["Data Scientist"] < 8 || counts["Data Scientist"] > 14 {
		t.Errorf("Data Scientist stratum = %d, want ~10", counts["Data Scientist"])
	}
}

func TestSampleDeterministicForSeed(t *testing.T) {
	postings := corpus(map[string]int{
		"Data Engineer": 500,
		"Data Analyst":  500,
	})

	a := StratifiedSample(postings, 100, 7)
	b := StratifiedSample(postings, 100, 7)
	if len(a) != len(b) {
		t.Fatalf("sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Key() != b[i].Key() {
			t.Fatalf("row %d differs between identical seeds", i)
		}
	}
}

func TestSampleDoesNotMutateInput(t *testing.T) {
	postings := corpus(map[string]int{"Data Engineer": 100, "Data Analyst": 100})
	before := make([]string, len(postings))
	for i, p := range postings {
		before[i] = p.Key()
	}

	StratifiedSample(postings, 50, 1)

	for i, p := range postings {
		if p.Key() != before[i] {
			t.Fatalf("input row %d mutated", i)
		}
	}
}

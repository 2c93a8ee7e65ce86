package export

import (
	"math/rand"
	"sort"

	"github.com/datajobs/jobmarket/internal/model"
)

// StratifiedSample draws min(size, len(postings)) rows, proportionally per
// title category, with every present category represented at least once
// whenever size allows. Selection is seeded so a run's sample is reproducible;
// output keeps the input order.
func StratifiedSample(postings []model.JobPosting, size int, seed int64) []model.JobPosting {
	if len(postings) <= size {
		out := make([]model.JobPosting, len(postings))
		copy(out, postings)
		return out
	}

	// Group row indices by category, first-seen order.
	byCategory := make(map[string][]int)
	var categories []string
	for i, p := range postings {
		if _, seen := byCategory[p.CategoryTitle]; !seen {
			categories = append(categories, p.CategoryTitle)
		}
		byCategory[p.CategoryTitle] = append(byCategory[p.CategoryTitle], i)
	}

	alloc := allocate(byCategory, categories, size, len(postings))

	rng := rand.New(rand.NewSource(seed))
	selected := make([]int, 0, size)
	taken := make(map[int]bool, size)
	for _, category := range categories {
		indices := byCategory[category]
		perm := rng.Perm(len(indices))
		for _, j := range perm[:alloc[category]] {
			selected = append(selected, indices[j])
			taken[indices[j]] = true
		}
	}

	// Proportional allocation floors, so top up to the exact target from a
	// shuffled pool of unsampled rows.
	if len(selected) < size {
		pool := make([]int, 0, len(postings)-len(selected))
		for i := range postings {
			if !taken[i] {
				pool = append(pool, i)
			}
		}
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		selected = append(selected, pool[:size-len(selected)]...)
	}

	sort.Ints(selected)
	out := make([]model.JobPosting, 0, len(selected))
	for _, i := range selected {
		out = append(out, postings[i])
	}
	return out
}

// allocate assigns each category floor(size * share) rows, raised to 1 so no
// category vanishes. When the minimums alone overshoot size (more categories
// than sample rows), the largest shares are trimmed first and trailing
// singletons go last.
func allocate(byCategory map[string][]int, categories []string, size, total int) map[string]int {
	alloc := make(map[string]int, len(categories))
	sum := 0
	for _, category := range categories {
		n := size * len(byCategory[category]) / total
		if n < 1 {
			n = 1
		}
		if n > len(byCategory[category]) {
			n = len(byCategory[category])
		}
		alloc[category] = n
		sum += n
	}

	for sum > size {
		largest := ""
		for _, category := range categories {
			if alloc[category] > 1 && (largest == "" || alloc[category] > alloc[largest]) {
				largest = category
			}
		}
		if largest == "" {
			// Every category is down to its minimum of one; drop from the end.
			for i := len(categories) - 1; i >= 0 && sum > size; i-- {
				if alloc[categories[i]] > 0 {
					alloc[categories[i]]--
					sum--
				}
			}
			break
		}
		alloc[largest]--
		sum--
	}
	return alloc
}

// Package suggest ranks and caps the skills surfaced to a user: the job skills they
// lack and adjacent skills from the job's categories.
package suggest

import (
	"sort"

	"github.com/hyperjump/skillmatch/internal/skillset"
)

const (
	DefaultMissingPerCategory = 3
	DefaultMissingTotal       = 10
	DefaultNicePerCategory    = 2
	DefaultNiceTotal          = 3
)

// Categorizer maps canonical skills to categories.
type Categorizer interface {
	Category(canonical string) string
	Categories(set skillset.Set) skillset.Set
}

// Pool lists the canonical skills of a category in ascending order.
type Pool interface {
	SkillsIn(category string) []string
}

// Caps bounds a suggestion list. A non-positive cap means unlimited.
type Caps struct {
	PerCategory int
	Total       int
}

// PickMissing returns job skills absent from user. Buckets for categories the user
// already covers come first, then the job-only categories; categories ascend within
// each group and skills ascend within each bucket.
func PickMissing(job, user skillset.Set, cats Categorizer, caps Caps) []string {
	buckets := make(map[string][]string)
	for s := range job.Minus(user) {
		c := cats.Category(s)
		buckets[c] = append(buckets[c], s)
	}
	shared := cats.Categories(user).Intersect(cats.Categories(job))

	var first, rest []string
	for c := range buckets {
		sort.Strings(buckets[c])
		if shared.Has(c) {
			first = append(first, c)
		} else {
			rest = append(rest, c)
		}
	}
	sort.Strings(first)
	sort.Strings(rest)

	out := []string{}
	for _, c := range append(first, rest...) {
		taken := 0
		for _, s := range buckets[c] {
			if reached(caps.Total, len(out)) {
				return out
			}
			if reached(caps.PerCategory, taken) {
				break
			}
			out = append(out, s)
			taken++
		}
	}
	return out
}

// SuggestNiceToHave walks categories in ascending order and takes skills of each from
// pool, skipping anything in exclude.
func SuggestNiceToHave(categories, exclude skillset.Set, pool Pool, caps Caps) []string {
	out := []string{}
	for _, c := range categories.Sorted() {
		taken := 0
		for _, s := range pool.SkillsIn(c) {
			if exclude.Has(s) {
				continue
			}
			if reached(caps.Total, len(out)) {
				return out
			}
			if reached(caps.PerCategory, taken) {
				break
			}
			out = append(out, s)
			taken++
		}
	}
	return out
}

func reached(limit, n int) bool {
	return limit > 0 && n >= limit
}

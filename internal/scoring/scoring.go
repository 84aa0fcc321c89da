// Package scoring computes the bounded match score between a user's skills and a job's
// skills.
package scoring

import (
	"math"

	"github.com/hyperjump/skillmatch/internal/skillset"
)

// Label is the qualitative band of a score.
type Label string

const (
	LabelStrong Label = "Strong Match"
	LabelMedium Label = "Medium Match"
	LabelWeak   Label = "Weak Match"
)

const (
	// MaxScore caps every reported score; 100 is never reported.
	MaxScore = 96.0

	strongFrom = 70.0
	mediumFrom = 40.0

	coverageWeight = 0.8
	breadthWeight  = 0.2
)

// Categorizer maps a canonical set to its categories.
type Categorizer interface {
	Categories(set skillset.Set) skillset.Set
}

// Result is a scored comparison.
type Result struct {
	Score    float64 `json:"score"`
	Label    Label   `json:"label"`
	Coverage float64 `json:"coverage"`
	Breadth  float64 `json:"breadth"`
	Overlap  int     `json:"overlap"`
}

// Score compares user and job skills. Coverage is the symmetric overlap of the skill
// sets, breadth the same measure over their categories.
func Score(user, job skillset.Set, cats Categorizer) Result {
	overlap := user.Intersect(job)
	coverage := symmetricOverlap(overlap.Len(), user.Len(), job.Len())

	userCats := cats.Categories(user)
	jobCats := cats.Categories(job)
	overlapCats := cats.Categories(overlap)
	breadth := symmetricOverlap(overlapCats.Len(), userCats.Len(), jobCats.Len())

	raw := 100 * (coverageWeight*coverage + breadthWeight*breadth)
	score := round2(math.Max(0, math.Min(MaxScore, raw)))
	return Result{
		Score:    score,
		Label:    LabelFor(score),
		Coverage: coverage,
		Breadth:  breadth,
		Overlap:  overlap.Len(),
	}
}

// LabelFor maps a score to its band.
func LabelFor(score float64) Label {
	switch {
	case score >= strongFrom:
		return LabelStrong
	case score >= mediumFrom:
		return LabelMedium
	default:
		return LabelWeak
	}
}

// symmetricOverlap averages overlap/|a| and overlap/|b|, treating empty sides as size 1.
func symmetricOverlap(overlap, a, b int) float64 {
	o := float64(overlap)
	return (o/math.Max(1, float64(a)) + o/math.Max(1, float64(b))) / 2
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

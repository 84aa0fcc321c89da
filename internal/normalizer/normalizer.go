// Package normalizer maps raw skill phrases and job-description text onto canonical
// skill sets.
package normalizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hyperjump/skillmatch/internal/ontology"
	"github.com/hyperjump/skillmatch/internal/skillindex"
	"github.com/hyperjump/skillmatch/internal/skillset"
	"github.com/hyperjump/skillmatch/internal/textnorm"
)

const (
	// DefaultThreshold is the minimum cosine similarity for a semantic match.
	DefaultThreshold = 0.46
	// DefaultMaxNGram is the longest word n-gram queried from free text.
	DefaultMaxNGram = 4
)

// ErrInvalidThreshold is returned for thresholds outside [0, 1].
var ErrInvalidThreshold = errors.New("threshold must be within [0, 1]")

// Matcher finds the nearest canonical skill for each query.
type Matcher interface {
	NearestBatch(ctx context.Context, queries []string) ([]skillindex.Match, error)
}

// Resolution reports how one input phrase was resolved.
type Resolution struct {
	Phrase     string  `json:"phrase"`
	Canonical  string  `json:"canonical,omitempty"`
	Similarity float64 `json:"similarity"`
	Matched    bool    `json:"matched"`
}

// Normalizer is immutable and safe for concurrent use.
type Normalizer struct {
	matcher   Matcher
	ont       *ontology.Ontology
	threshold float64
	maxNGram  int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithMaxNGram sets the longest n-gram taken from free text.
func WithMaxNGram(n int) Option {
	return func(nm *Normalizer) {
		if n > 0 {
			nm.maxNGram = n
		}
	}
}

// New returns a normalizer. threshold must lie in [0, 1].
func New(matcher Matcher, ont *ontology.Ontology, threshold float64, opts ...Option) (*Normalizer, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	n := &Normalizer{
		matcher:   matcher,
		ont:       ont,
		threshold: threshold,
		maxNGram:  DefaultMaxNGram,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Threshold returns the similarity threshold.
func (n *Normalizer) Threshold() float64 {
	return n.threshold
}

func (n *Normalizer) accepts(m skillindex.Match) bool {
	return m.Found && m.Similarity >= n.threshold
}

// Resolve looks up every trimmed, non-empty phrase, in input order.
func (n *Normalizer) Resolve(ctx context.Context, phrases []string) ([]Resolution, error) {
	var kept []string
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}
	matches, err := n.matcher.NearestBatch(ctx, kept)
	if err != nil {
		return nil, err
	}
	out := make([]Resolution, len(kept))
	for i, m := range matches {
		out[i] = Resolution{
			Phrase:     kept[i],
			Canonical:  m.Canonical,
			Similarity: m.Similarity,
			Matched:    n.accepts(m),
		}
	}
	return out, nil
}

// NormalizeList returns the canonical skills of the phrases that clear the threshold.
// Unmatched phrases are dropped silently.
func (n *Normalizer) NormalizeList(ctx context.Context, phrases []string) (skillset.Set, error) {
	res, err := n.Resolve(ctx, phrases)
	if err != nil {
		return nil, err
	}
	out := make(skillset.Set)
	for _, r := range res {
		if r.Matched {
			out.Add(r.Canonical)
		}
	}
	return out, nil
}

// NormalizeText extracts canonical skills from free text: every word n-gram up to the
// configured length is matched semantically, and every family keyword found as a
// substring of the normalized text contributes all of its members regardless of
// similarity.
func (n *Normalizer) NormalizeText(ctx context.Context, text string) (skillset.Set, error) {
	out := make(skillset.Set)
	normalized := textnorm.Normalize(text)
	if normalized == "" {
		return out, nil
	}

	grams := textnorm.NGrams(normalized, n.maxNGram)
	matches, err := n.matcher.NearestBatch(ctx, grams)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if n.accepts(m) {
			out.Add(m.Canonical)
		}
	}

	for _, fam := range n.ont.Families() {
		if strings.Contains(normalized, fam.Key) {
			for _, member := range fam.Members {
				out.Add(member)
			}
		}
	}
	return out, nil
}

// Category returns the category of a canonical skill, "other" when unknown.
func (n *Normalizer) Category(canonical string) string {
	return n.ont.Category(canonical)
}

// Categories maps a canonical set to its set of categories.
func (n *Normalizer) Categories(set skillset.Set) skillset.Set {
	return n.ont.Categories(set)
}

// Ontology returns the taxonomy the normalizer resolves against.
func (n *Normalizer) Ontology() *ontology.Ontology {
	return n.ont
}

// Package cli renders command results for the skillmatch binary.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/skillmatch/internal/match"
	"github.com/hyperjump/skillmatch/internal/models"
	"github.com/hyperjump/skillmatch/pkg/utils"
)

// OutputFormat selects how results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" or "json", case-insensitively.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text or json)", s)
	}
}

const phraseWidth = 40

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func list(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

// WriteAnalysis writes an analysis result to w in the given format.
func WriteAnalysis(w io.Writer, res *models.AnalyzeResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "\nScore: %.2f (%s)\n", res.Score, res.Label)
	if res.Note != "" {
		fmt.Fprintf(w, "Note: %s\n", res.Note)
	}
	fmt.Fprintf(w, "Missing: %s\n", list(res.Missing))
	fmt.Fprintf(w, "Nice to have: %s\n", list(res.NiceToHave))
	if len(res.Reasons) > 0 {
		fmt.Fprintln(w, "\nWhy:")
		for _, r := range res.Reasons {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
	if d := res.Debug; d != nil {
		fmt.Fprintln(w, "\n--- Debug ---")
		fmt.Fprintf(w, "Your skills: %s\n", list(d.UserSkills))
		fmt.Fprintf(w, "Job skills: %s\n", list(d.JobSkills))
		fmt.Fprintf(w, "Overlap: %s\n", list(d.Overlap))
		fmt.Fprintf(w, "Coverage: %.4f | Breadth: %.4f | Threshold: %.2f\n", d.Coverage, d.Breadth, d.Threshold)
		for _, u := range d.Unmatched {
			fmt.Fprintf(w, "Unmatched %q (closest %q at %.4f)", utils.Truncate(u.Phrase, phraseWidth), u.Candidate, u.Similarity)
			if len(u.Suggestions) > 0 {
				names := make([]string, len(u.Suggestions))
				for i, s := range u.Suggestions {
					names[i] = s.Canonical
				}
				fmt.Fprintf(w, " did you mean: %s?", strings.Join(names, ", "))
			}
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
	return nil
}

// WriteNormalize writes a normalization result to w in the given format.
func WriteNormalize(w io.Writer, res *match.NormalizeResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	for _, r := range res.Resolutions {
		mark := "x"
		if r.Matched {
			mark = "ok"
		}
		fmt.Fprintf(w, "[%-2s] %-*s -> %s (%.4f)\n", mark, phraseWidth, utils.Truncate(r.Phrase, phraseWidth), r.Canonical, r.Similarity)
	}
	if len(res.TextSkills) > 0 {
		fmt.Fprintf(w, "From text: %s\n", list(res.TextSkills))
	}
	fmt.Fprintf(w, "Skills: %s\n", list(res.Skills))
	fmt.Fprintf(w, "Categories: %s\n", list(res.Categories))
	return nil
}

// WriteSkillHits writes catalog search results to w in the given format.
func WriteSkillHits(w io.Writer, resp *models.SkillSearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "\nFound %d skills for %q in %dms\n\n", len(resp.Hits), resp.Query, resp.QueryTime)
	for i, h := range resp.Hits {
		fmt.Fprintf(w, "%2d. %s [%s] score %.4f\n", i+1, h.Canonical, h.Category, h.Score)
		if len(h.Aliases) > 0 {
			fmt.Fprintf(w, "    aka %s\n", strings.Join(h.Aliases, ", "))
		}
	}
	return nil
}

// WriteStatus writes the ontology and index summary to w in the given format.
func WriteStatus(w io.Writer, st *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "Ontology: %s\n", st.OntologyPath)
	fmt.Fprintf(w, "Skills: %d (%d surface forms, %d families)\n", st.Skills, st.Surfaces, st.Families)
	fmt.Fprintf(w, "Categories: %s\n", list(st.Categories))
	fmt.Fprintf(w, "Model: %s (%d dimensions), threshold %.2f\n", st.Model, st.Dimensions, st.Threshold)
	if c := st.VectorCache; c != nil {
		fmt.Fprintf(w, "Vector cache: %s (%d vectors, %d models, %d bytes)\n", c.Path, c.Entries, c.Models, c.DiskBytes)
	}
	return nil
}

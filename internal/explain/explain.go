// Package explain turns the computed facts of an analysis into short human-readable
// reasons. Generator output is treated as an untyped document: only a list of reason
// strings is ever read back from it.
package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DefaultMaxReasons caps the reasons kept from any generator.
const DefaultMaxReasons = 5

// Facts are the computed results an explainer may describe but never change.
type Facts struct {
	Score            float64  `json:"score"`
	Label            string   `json:"label"`
	UserSkills       []string `json:"user_skills"`
	JobSkills        []string `json:"job_skills"`
	Overlap          []string `json:"overlap"`
	Missing          []string `json:"missing"`
	NiceToHave       []string `json:"nice_to_have"`
	SharedCategories []string `json:"shared_categories"`
}

// Explainer produces a document holding a "reasons" field. The document is untrusted.
type Explainer interface {
	Explain(ctx context.Context, facts Facts) ([]byte, error)
}

// RuleExplainer builds reasons locally from the facts.
type RuleExplainer struct{}

// NewRuleExplainer returns the local explainer.
func NewRuleExplainer() *RuleExplainer {
	return &RuleExplainer{}
}

func (RuleExplainer) Explain(ctx context.Context, f Facts) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var reasons []string

	switch {
	case len(f.JobSkills) == 0:
		reasons = append(reasons, "No recognised skills were found in the job description.")
	case len(f.Overlap) == 0:
		reasons = append(reasons, "None of your listed skills appear in the job description.")
	default:
		reasons = append(reasons, fmt.Sprintf("You cover %d of %d skills the job mentions: %s.",
			len(f.Overlap), len(f.JobSkills), joinFew(f.Overlap, 4)))
	}

	if len(f.SharedCategories) > 0 {
		cats := append([]string(nil), f.SharedCategories...)
		sort.Strings(cats)
		reasons = append(reasons, fmt.Sprintf("Your experience lines up with the job in %s.", joinFew(cats, 3)))
	}
	if len(f.Missing) > 0 {
		reasons = append(reasons, fmt.Sprintf("Adding %s would close the most visible gaps.", joinFew(f.Missing, 3)))
	}
	if len(f.NiceToHave) > 0 {
		reasons = append(reasons, fmt.Sprintf("Related skills worth considering: %s.", joinFew(f.NiceToHave, 3)))
	}
	if len(f.UserSkills) == 0 {
		reasons = append(reasons, "List your skills to get a personalised score.")
	}

	return json.Marshal(map[string]any{"reasons": reasons})
}

func joinFew(items []string, n int) string {
	if len(items) > n {
		return strings.Join(items[:n], ", ") + fmt.Sprintf(" and %d more", len(items)-n)
	}
	return strings.Join(items, ", ")
}

// Package models defines request and response types shared by the match service,
// the HTTP API and the CLI.
package models

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AnalyzeRequest is one analysis input. Skills is a comma-separated list.
type AnalyzeRequest struct {
	Skills         string `json:"skills" validate:"max=10000"`
	JobDescription string `json:"job_description" validate:"max=200000"`
}

// Validate checks field limits.
func (r *AnalyzeRequest) Validate() error {
	return validate.Struct(r)
}

// MatchLabel is the coarse verdict attached to a score.
type MatchLabel string

// AnalyzeResult is the outcome of an analysis. Score and Label are computed before
// any explanation is generated and are never read back from it.
type AnalyzeResult struct {
	ID         string        `json:"id"`
	Score      float64       `json:"score"`
	Label      MatchLabel    `json:"label"`
	Missing    []string      `json:"missing"`
	NiceToHave []string      `json:"nice_to_have"`
	Reasons    []string      `json:"reasons"`
	Note       string        `json:"note,omitempty"`
	Debug      *AnalyzeDebug `json:"debug,omitempty"`
}

// AnalyzeDebug exposes the intermediate sets of an analysis.
type AnalyzeDebug struct {
	UserSkills     []string         `json:"user_skills"`
	JobSkills      []string         `json:"job_skills"`
	Overlap        []string         `json:"overlap"`
	UserCategories []string         `json:"user_categories"`
	JobCategories  []string         `json:"job_categories"`
	Coverage       float64          `json:"coverage"`
	Breadth        float64          `json:"breadth"`
	Threshold      float64          `json:"threshold"`
	Unmatched      []UnmatchedSkill `json:"unmatched,omitempty"`
}

// UnmatchedSkill is a user phrase that did not clear the similarity threshold.
type UnmatchedSkill struct {
	Phrase      string            `json:"phrase"`
	Candidate   string            `json:"candidate,omitempty"`
	Similarity  float64           `json:"similarity"`
	Suggestions []SkillSuggestion `json:"suggestions,omitempty"`
}

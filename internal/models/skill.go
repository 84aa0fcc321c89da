package models

import (
	"fmt"
	"strings"
)

// SkillSearchQuery is a catalog search request.
type SkillSearchQuery struct {
	Query    string `json:"q" validate:"max=200"`
	Limit    int    `json:"limit,omitempty" validate:"min=0"`
	Fuzzy    bool   `json:"fuzzy,omitempty"`
	Category string `json:"category,omitempty" validate:"max=100"`
}

// Validate rejects an empty query and enforces field limits.
func (q *SkillSearchQuery) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return validate.Struct(q)
}

// SkillHit is one catalog search result.
type SkillHit struct {
	Canonical string   `json:"canonical"`
	Category  string   `json:"category"`
	Aliases   []string `json:"aliases,omitempty"`
	Score     float64  `json:"score"`
}

// SkillSearchResponse is the response for a catalog search.
type SkillSearchResponse struct {
	Query     string     `json:"query"`
	Hits      []SkillHit `json:"hits"`
	QueryTime int64      `json:"query_time_ms"`
}

// SkillSuggestion is a "did you mean" candidate for an unrecognised phrase.
type SkillSuggestion struct {
	Canonical string `json:"canonical"`
	Surface   string `json:"surface"`
	Distance  int    `json:"distance"`
}

// SkillInfo describes one skill name. Known is false for names outside the ontology,
// whose category is then "other".
type SkillInfo struct {
	Name     string   `json:"name"`
	Known    bool     `json:"known"`
	Category string   `json:"category"`
	Aliases  []string `json:"aliases,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// NormalizeRequest asks for canonical skills from a phrase list and/or free text.
type NormalizeRequest struct {
	Skills []string `json:"skills" validate:"max=500,dive,max=200"`
	Text   string   `json:"text" validate:"max=200000"`
}

// Validate requires at least one input and enforces field limits.
func (r *NormalizeRequest) Validate() error {
	if len(r.Skills) == 0 && strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("skills or text is required")
	}
	return validate.Struct(r)
}

// StatusResponse describes the loaded ontology and index.
type StatusResponse struct {
	Skills       int          `json:"skills"`
	Surfaces     int          `json:"surfaces"`
	Categories   []string     `json:"categories"`
	Families     int          `json:"families"`
	Model        string       `json:"model"`
	Dimensions   int          `json:"dimensions"`
	Threshold    float64      `json:"threshold"`
	OntologyPath string       `json:"ontology_path,omitempty"`
	VectorCache  *CacheStatus `json:"vector_cache,omitempty"`
}

// CacheStatus reports vector cache usage.
type CacheStatus struct {
	Path      string `json:"path"`
	Entries   int64  `json:"entries"`
	Models    int64  `json:"models"`
	DiskBytes int64  `json:"disk_bytes"`
}

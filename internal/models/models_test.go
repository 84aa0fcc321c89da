package models

import (
	"strings"
	"testing"
)

func TestAnalyzeRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     AnalyzeRequest
		wantErr bool
	}{
		{"empty is allowed", AnalyzeRequest{}, false},
		{"typical", AnalyzeRequest{Skills: "React, Go", JobDescription: "Go developer"}, false},
		{"skills too long", AnalyzeRequest{Skills: strings.Repeat("a", 10001)}, true},
		{"job description too long", AnalyzeRequest{JobDescription: strings.Repeat("a", 200001)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSkillSearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   *SkillSearchQuery
		wantErr bool
	}{
		{"empty query", &SkillSearchQuery{Query: "   "}, true},
		{"valid query", &SkillSearchQuery{Query: " react "}, false},
		{"negative limit", &SkillSearchQuery{Query: "go", Limit: -1}, true},
		{"query too long", &SkillSearchQuery{Query: strings.Repeat("x", 201)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	q := &SkillSearchQuery{Query: " react "}
	_ = q.Validate()
	if q.Query != "react" {
		t.Errorf("Validate should trim the query, got %q", q.Query)
	}
}

func TestNormalizeRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     NormalizeRequest
		wantErr bool
	}{
		{"nothing", NormalizeRequest{Text: "  "}, true},
		{"skills only", NormalizeRequest{Skills: []string{"go"}}, false},
		{"text only", NormalizeRequest{Text: "golang developer"}, false},
		{"phrase too long", NormalizeRequest{Skills: []string{strings.Repeat("x", 201)}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

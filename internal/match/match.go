// Package match runs a full analysis: normalize both sides, score, pick missing and
// nice-to-have skills, then attach reasons from a time-boxed explainer.
package match

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/skillmatch/internal/explain"
	"github.com/hyperjump/skillmatch/internal/models"
	"github.com/hyperjump/skillmatch/internal/normalizer"
	"github.com/hyperjump/skillmatch/internal/scoring"
	"github.com/hyperjump/skillmatch/internal/skillset"
	"github.com/hyperjump/skillmatch/internal/suggest"
	"go.uber.org/zap"
)

// ErrNoInput is returned by AnalyzeStrict when both skills and job description are empty.
var ErrNoInput = errors.New("no skills or job description provided")

// EmptyInputNote is attached to non-strict results computed from empty input.
const EmptyInputNote = "Please add skills and/or a job description."

// NoInputMessage is the user-facing text for ErrNoInput.
const NoInputMessage = "Provide skills and/or a job description."

// DefaultExplainTimeout bounds a single explainer call.
const DefaultExplainTimeout = 2 * time.Second

// Suggester proposes close skill names for an unrecognised phrase.
type Suggester interface {
	Suggest(term string, max int) []models.SkillSuggestion
}

// Options tune a Service. Zero values select defaults.
type Options struct {
	Missing        suggest.Caps
	NiceToHave     suggest.Caps
	IncludeDebug   bool
	ExplainTimeout time.Duration
	MaxReasons     int
	MaxSuggestions int
}

// DefaultOptions returns the production caps and timeouts.
func DefaultOptions() Options {
	return Options{
		Missing:        suggest.Caps{PerCategory: suggest.DefaultMissingPerCategory, Total: suggest.DefaultMissingTotal},
		NiceToHave:     suggest.Caps{PerCategory: suggest.DefaultNicePerCategory, Total: suggest.DefaultNiceTotal},
		ExplainTimeout: DefaultExplainTimeout,
		MaxReasons:     explain.DefaultMaxReasons,
		MaxSuggestions: 3,
	}
}

// Service is safe for concurrent use.
type Service struct {
	norm      *normalizer.Normalizer
	explainer explain.Explainer
	suggester Suggester
	opts      Options
	logger    *zap.Logger
}

// NewService wires a Service. explainer and suggester may be nil.
func NewService(norm *normalizer.Normalizer, explainer explain.Explainer, suggester Suggester, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ExplainTimeout <= 0 {
		opts.ExplainTimeout = DefaultExplainTimeout
	}
	if opts.MaxReasons <= 0 {
		opts.MaxReasons = explain.DefaultMaxReasons
	}
	return &Service{norm: norm, explainer: explainer, suggester: suggester, opts: opts, logger: logger}
}

// Normalizer returns the normalizer the service resolves skills with.
func (s *Service) Normalizer() *normalizer.Normalizer {
	return s.norm
}

// ParseSkills splits a comma-separated list, trimming items and dropping empty ones.
func ParseSkills(csv string) []string {
	out := []string{}
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isEmpty(req models.AnalyzeRequest) bool {
	return len(ParseSkills(req.Skills)) == 0 && strings.TrimSpace(req.JobDescription) == ""
}

// Analyze never rejects empty input; it returns a zero-score result with a note.
func (s *Service) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResult, error) {
	if isEmpty(req) {
		s.logger.Debug("analysis on empty input")
		return &models.AnalyzeResult{
			ID:         uuid.NewString(),
			Label:      models.MatchLabel(scoring.LabelFor(0)),
			Missing:    []string{},
			NiceToHave: []string{},
			Reasons:    []string{},
			Note:       EmptyInputNote,
		}, nil
	}
	return s.analyze(ctx, req)
}

// AnalyzeStrict returns ErrNoInput when both inputs are empty.
func (s *Service) AnalyzeStrict(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResult, error) {
	if isEmpty(req) {
		return nil, ErrNoInput
	}
	return s.analyze(ctx, req)
}

func (s *Service) analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResult, error) {
	start := time.Now()
	id := uuid.NewString()

	resolved, err := s.norm.Resolve(ctx, ParseSkills(req.Skills))
	if err != nil {
		return nil, err
	}
	user := make(skillset.Set)
	for _, r := range resolved {
		if r.Matched {
			user.Add(r.Canonical)
		}
	}
	job, err := s.norm.NormalizeText(ctx, req.JobDescription)
	if err != nil {
		return nil, err
	}

	score := scoring.Score(user, job, s.norm)
	ont := s.norm.Ontology()
	missing := suggest.PickMissing(job, user, s.norm, s.opts.Missing)
	nice := suggest.SuggestNiceToHave(s.norm.Categories(job), user.Union(job), ont, s.opts.NiceToHave)
	overlap := user.Intersect(job)

	res := &models.AnalyzeResult{
		ID:         id,
		Score:      score.Score,
		Label:      models.MatchLabel(score.Label),
		Missing:    missing,
		NiceToHave: nice,
	}
	res.Reasons = s.reasons(ctx, id, explain.Facts{
		Score:            score.Score,
		Label:            string(score.Label),
		UserSkills:       user.Sorted(),
		JobSkills:        job.Sorted(),
		Overlap:          overlap.Sorted(),
		Missing:          missing,
		NiceToHave:       nice,
		SharedCategories: s.norm.Categories(overlap).Sorted(),
	})

	if s.opts.IncludeDebug {
		res.Debug = &models.AnalyzeDebug{
			UserSkills:     user.Sorted(),
			JobSkills:      job.Sorted(),
			Overlap:        overlap.Sorted(),
			UserCategories: s.norm.Categories(user).Sorted(),
			JobCategories:  s.norm.Categories(job).Sorted(),
			Coverage:       score.Coverage,
			Breadth:        score.Breadth,
			Threshold:      s.norm.Threshold(),
			Unmatched:      s.unmatched(resolved),
		}
	}

	s.logger.Info("analysis complete",
		zap.String("id", id),
		zap.Float64("score", res.Score),
		zap.String("label", string(res.Label)),
		zap.Int("user_skills", user.Len()),
		zap.Int("job_skills", job.Len()),
		zap.Int("missing", len(missing)),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}

func (s *Service) unmatched(resolved []normalizer.Resolution) []models.UnmatchedSkill {
	var out []models.UnmatchedSkill
	for _, r := range resolved {
		if r.Matched {
			continue
		}
		u := models.UnmatchedSkill{Phrase: r.Phrase, Candidate: r.Canonical, Similarity: r.Similarity}
		if s.suggester != nil {
			u.Suggestions = s.suggester.Suggest(r.Phrase, s.opts.MaxSuggestions)
		}
		out = append(out, u)
	}
	return out
}

// reasons calls the explainer under its own deadline. Errors, timeouts and malformed
// output all produce an empty list.
func (s *Service) reasons(ctx context.Context, id string, facts explain.Facts) []string {
	if s.explainer == nil {
		return []string{}
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.ExplainTimeout)
	defer cancel()

	type outcome struct {
		raw []byte
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		raw, err := s.explainer.Explain(ctx, facts)
		done <- outcome{raw: raw, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			s.logger.Warn("explainer failed", zap.String("id", id), zap.Error(o.err))
			return []string{}
		}
		return explain.Sanitize(o.raw, s.opts.MaxReasons)
	case <-ctx.Done():
		s.logger.Warn("explainer timed out", zap.String("id", id), zap.Duration("timeout", s.opts.ExplainTimeout))
		return []string{}
	}
}

// NormalizeResult is the outcome of Normalize.
type NormalizeResult struct {
	Skills      []string                `json:"skills"`
	Categories  []string                `json:"categories"`
	Resolutions []normalizer.Resolution `json:"resolutions,omitempty"`
	TextSkills  []string                `json:"text_skills,omitempty"`
}

// Normalize resolves a phrase list and a free-text document independently.
// Skills is the union of both.
func (s *Service) Normalize(ctx context.Context, phrases []string, text string) (*NormalizeResult, error) {
	resolved, err := s.norm.Resolve(ctx, phrases)
	if err != nil {
		return nil, err
	}
	all := make(skillset.Set)
	for _, r := range resolved {
		if r.Matched {
			all.Add(r.Canonical)
		}
	}
	out := &NormalizeResult{Resolutions: resolved}
	if strings.TrimSpace(text) != "" {
		fromText, err := s.norm.NormalizeText(ctx, text)
		if err != nil {
			return nil, err
		}
		out.TextSkills = fromText.Sorted()
		all.AddAll(fromText)
	}
	out.Skills = all.Sorted()
	out.Categories = s.norm.Categories(all).Sorted()
	return out, nil
}

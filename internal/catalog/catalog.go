// Package catalog provides full-text and typo-tolerant search over the skills ontology.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/skillmatch/internal/models"
	"github.com/hyperjump/skillmatch/internal/ontology"
	"github.com/hyperjump/skillmatch/internal/textnorm"
)

const (
	DefaultLimit     = 10
	DefaultMaxLimit  = 50
	DefaultFuzziness = 1
)

// Options bounds catalog searches.
type Options struct {
	DefaultLimit int
	MaxLimit     int
	Fuzziness    int
}

func (o Options) withDefaults() Options {
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = DefaultLimit
	}
	if o.MaxLimit <= 0 {
		o.MaxLimit = DefaultMaxLimit
	}
	if o.DefaultLimit > o.MaxLimit {
		o.DefaultLimit = o.MaxLimit
	}
	if o.Fuzziness <= 0 {
		o.Fuzziness = DefaultFuzziness
	}
	return o
}

// SearchOptions are per-request search parameters. A zero Limit uses the default.
type SearchOptions struct {
	Limit    int
	Fuzzy    bool
	Category string
}

// Catalog is an in-memory bleve index over the ontology. It is immutable after New.
type Catalog struct {
	index    bleve.Index
	ont      *ontology.Ontology
	surfaces []surface
	opts     Options
}

type surface struct {
	text      string
	canonical string
}

// New indexes every skill of ont.
func New(ont *ontology.Ontology, opts Options) (*Catalog, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textField := bleve.NewTextFieldMapping()
	// standard keeps "postgres" and "postgresql" as distinct terms; stemming would not help skill names.
	textField.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("canonical", textField)
	docMapping.AddFieldMappingsAt("aliases", textField)
	docMapping.AddFieldMappingsAt("tags", textField)
	docMapping.AddFieldMappingsAt("category", bleve.NewKeywordFieldMapping())
	im.AddDocumentMapping("skill", docMapping)
	im.DefaultType = "skill"
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog index: %w", err)
	}

	c := &Catalog{index: index, ont: ont, opts: opts.withDefaults()}
	batch := index.NewBatch()
	seen := make(map[string]struct{})
	for _, s := range ont.Skills() {
		doc := map[string]interface{}{
			"canonical": s.Canonical,
			"aliases":   s.Aliases,
			"tags":      s.Tags,
			"category":  strings.ToLower(s.Category),
		}
		if err := batch.Index(s.Canonical, doc); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to index skill %q: %w", s.Canonical, err)
		}
		for _, form := range append([]string{s.Canonical}, s.Aliases...) {
			text := textnorm.Normalize(form)
			if text == "" {
				continue
			}
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}
			c.surfaces = append(c.surfaces, surface{text: text, canonical: s.Canonical})
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to index skills: %w", err)
	}
	return c, nil
}

// Search runs a disjunction of a match query, per-term prefix queries and, when
// requested, per-term fuzzy queries. Results are ordered by score, then canonical name.
func (c *Catalog) Search(ctx context.Context, query string, opts SearchOptions) ([]models.SkillHit, error) {
	terms := textnorm.Tokens(query)
	if len(terms) == 0 {
		return []models.SkillHit{}, nil
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = c.opts.DefaultLimit
	}
	if limit > c.opts.MaxLimit {
		limit = c.opts.MaxLimit
	}

	queries := []blevequery.Query{bleve.NewMatchQuery(strings.Join(terms, " "))}
	for _, term := range terms {
		for _, field := range []string{"canonical", "aliases"} {
			pq := bleve.NewPrefixQuery(term)
			pq.SetField(field)
			queries = append(queries, pq)
		}
		if opts.Fuzzy {
			fq := bleve.NewFuzzyQuery(term)
			fq.SetFuzziness(c.opts.Fuzziness)
			queries = append(queries, fq)
		}
	}
	var q blevequery.Query = bleve.NewDisjunctionQuery(queries...)
	if cat := strings.ToLower(strings.TrimSpace(opts.Category)); cat != "" {
		tq := bleve.NewTermQuery(cat)
		tq.SetField("category")
		q = bleve.NewConjunctionQuery(q, tq)
	}

	// The catalog is small, so fetch every hit and apply the tie-break before truncating.
	req := bleve.NewSearchRequest(q)
	req.Size = c.ont.Len()
	if req.Size == 0 {
		return []models.SkillHit{}, nil
	}
	results, err := c.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}

	hits := make([]models.SkillHit, 0, len(results.Hits))
	for _, h := range results.Hits {
		s, ok := c.ont.Skill(h.ID)
		if !ok {
			continue
		}
		hits = append(hits, models.SkillHit{Canonical: s.Canonical, Category: s.Category, Aliases: s.Aliases, Score: h.Score})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Canonical < hits[j].Canonical
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Suggest returns up to max canonical skills whose name or alias is within a small
// edit distance of term: one edit for terms of up to four runes, two otherwise.
// Candidates are ordered by distance, then canonical name.
func (c *Catalog) Suggest(term string, max int) []models.SkillSuggestion {
	norm := textnorm.Normalize(term)
	if norm == "" {
		return []models.SkillSuggestion{}
	}
	budget := 2
	if len([]rune(norm)) <= 4 {
		budget = 1
	}

	best := make(map[string]models.SkillSuggestion)
	for _, s := range c.surfaces {
		d := LevenshteinDistance(norm, s.text)
		if d > budget {
			continue
		}
		if prev, ok := best[s.canonical]; ok && prev.Distance <= d {
			continue
		}
		best[s.canonical] = models.SkillSuggestion{Canonical: s.canonical, Surface: s.text, Distance: d}
	}

	out := make([]models.SkillSuggestion, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Canonical < out[j].Canonical
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// DocCount returns the number of indexed skills.
func (c *Catalog) DocCount() (uint64, error) {
	return c.index.DocCount()
}

// Close releases the index.
func (c *Catalog) Close() error {
	return c.index.Close()
}

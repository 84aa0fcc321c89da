// Package skillindex embeds every canonical skill and alias once and answers
// nearest-skill queries against that vocabulary.
package skillindex

import (
	"context"
	"fmt"

	"github.com/hyperjump/skillmatch/internal/embedding"
	"github.com/hyperjump/skillmatch/internal/ontology"
	"github.com/hyperjump/skillmatch/internal/storage"
	"github.com/hyperjump/skillmatch/internal/textnorm"
	"github.com/hyperjump/skillmatch/internal/vector"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Entry is one registered surface form.
type Entry struct {
	Surface   string `json:"surface"`
	Canonical string `json:"canonical"`
}

// Match is the nearest canonical skill for a query. Found is false when the query
// normalizes to nothing or the vocabulary is empty; such a result never clears any
// threshold.
type Match struct {
	Query      string  `json:"query"`
	Surface    string  `json:"surface,omitempty"`
	Canonical  string  `json:"canonical,omitempty"`
	Similarity float64 `json:"similarity"`
	Found      bool    `json:"found"`
}

// Index is immutable after Build and safe for concurrent use.
type Index struct {
	embedder embedding.Embedder
	vectors  *vector.MemoryIndex
	entries  []Entry
}

type buildOptions struct {
	cache   storage.VectorCache
	logger  *zap.Logger
	workers int
}

// Option configures Build.
type Option func(*buildOptions)

// WithCache serves surface vectors from cache and stores the ones it had to compute.
func WithCache(c storage.VectorCache) Option {
	return func(o *buildOptions) { o.cache = c }
}

// WithLogger sets the logger for collision and cache messages.
func WithLogger(l *zap.Logger) Option {
	return func(o *buildOptions) { o.logger = l }
}

// WithWorkers bounds the number of concurrent embedding calls during Build.
func WithWorkers(n int) Option {
	return func(o *buildOptions) { o.workers = n }
}

// Build registers the canonical name and aliases of every ontology skill in order and
// embeds each distinct normalized surface form. A surface form that normalizes to an
// already registered string keeps its first owner.
func Build(ctx context.Context, ont *ontology.Ontology, emb embedding.Embedder, opts ...Option) (*Index, error) {
	bo := buildOptions{workers: 4}
	for _, opt := range opts {
		opt(&bo)
	}
	if bo.logger == nil {
		bo.logger = zap.NewNop()
	}
	if bo.workers <= 0 {
		bo.workers = 1
	}

	for _, dup := range ont.Duplicates() {
		bo.logger.Warn("canonical skill listed more than once; keeping first entry", zap.String("canonical", dup))
	}
	entries := collectEntries(ont, bo.logger)
	vecIndex, err := vector.NewMemoryIndex(emb.Dimensions())
	if err != nil {
		return nil, err
	}
	ix := &Index{embedder: emb, vectors: vecIndex, entries: entries}
	if len(entries) == 0 {
		bo.logger.Warn("skill index is empty; every query will miss")
		return ix, nil
	}

	surfaces := make([]string, len(entries))
	for i, e := range entries {
		surfaces[i] = e.Surface
	}
	vecs, err := embedSurfaces(ctx, emb, surfaces, bo)
	if err != nil {
		return nil, err
	}
	if err := vecIndex.Add(ctx, surfaces, vecs); err != nil {
		return nil, fmt.Errorf("index surfaces: %w", err)
	}
	bo.logger.Info("skill index built",
		zap.Int("skills", ont.Len()),
		zap.Int("surfaces", len(entries)),
		zap.String("model", emb.ModelID()),
	)
	return ix, nil
}

func collectEntries(ont *ontology.Ontology, logger *zap.Logger) []Entry {
	owner := make(map[string]string)
	var entries []Entry
	for _, s := range ont.Skills() {
		forms := append([]string{s.Canonical}, s.Aliases...)
		for _, form := range forms {
			surface := textnorm.Normalize(form)
			if surface == "" {
				continue
			}
			if prev, ok := owner[surface]; ok {
				if prev != s.Canonical {
					logger.Warn("surface form already registered; keeping first owner",
						zap.String("surface", surface),
						zap.String("kept", prev),
						zap.String("ignored", s.Canonical),
					)
				}
				continue
			}
			owner[surface] = s.Canonical
			entries = append(entries, Entry{Surface: surface, Canonical: s.Canonical})
		}
	}
	return entries
}

// embedSurfaces fills one slot per surface so the result is independent of worker
// scheduling.
func embedSurfaces(ctx context.Context, emb embedding.Embedder, surfaces []string, bo buildOptions) ([][]float32, error) {
	vecs := make([][]float32, len(surfaces))
	modelID := emb.ModelID()

	if bo.cache != nil {
		cached, err := bo.cache.Get(ctx, modelID, surfaces)
		if err != nil {
			bo.logger.Warn("vector cache lookup failed; embedding everything", zap.Error(err))
		}
		for i, s := range surfaces {
			if v, ok := cached[s]; ok && len(v) == emb.Dimensions() {
				vecs[i] = v
			}
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(bo.workers)
	var missed []int
	for i := range surfaces {
		if vecs[i] != nil {
			continue
		}
		missed = append(missed, i)
		i := i
		g.Go(func() error {
			v, err := emb.Embed(gCtx, surfaces[i])
			if err != nil {
				return fmt.Errorf("embed %q: %w", surfaces[i], err)
			}
			vecs[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if bo.cache != nil && len(missed) > 0 {
		fresh := make(map[string][]float32, len(missed))
		for _, i := range missed {
			fresh[surfaces[i]] = vecs[i]
		}
		if err := bo.cache.Put(ctx, modelID, fresh); err != nil {
			bo.logger.Warn("vector cache write failed", zap.Error(err))
		}
	}
	bo.logger.Debug("surface vectors ready",
		zap.Int("total", len(surfaces)),
		zap.Int("computed", len(missed)),
	)
	return vecs, nil
}

// Nearest normalizes query and returns its closest registered surface form.
func (ix *Index) Nearest(ctx context.Context, query string) (Match, error) {
	m := Match{Query: textnorm.Normalize(query)}
	if m.Query == "" || len(ix.entries) == 0 {
		return m, nil
	}
	vec, err := ix.embedder.Embed(ctx, m.Query)
	if err != nil {
		return Match{}, fmt.Errorf("embed query: %w", err)
	}
	hit, ok, err := ix.vectors.Nearest(ctx, vec)
	if err != nil {
		return Match{}, err
	}
	if !ok {
		return m, nil
	}
	e := ix.entries[hit.Position]
	m.Surface = e.Surface
	m.Canonical = e.Canonical
	m.Similarity = hit.Score
	m.Found = true
	return m, nil
}

// NearestBatch answers Nearest for each query, in order.
func (ix *Index) NearestBatch(ctx context.Context, queries []string) ([]Match, error) {
	out := make([]Match, len(queries))
	for i, q := range queries {
		m, err := ix.Nearest(ctx, q)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

// Entries returns the registered surface forms in registration order.
func (ix *Index) Entries() []Entry {
	out := make([]Entry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Size returns the number of indexed surface forms.
func (ix *Index) Size() int {
	return len(ix.entries)
}

// ModelID returns the embedder's model id.
func (ix *Index) ModelID() string {
	return ix.embedder.ModelID()
}

// Dimensions returns the vector dimension.
func (ix *Index) Dimensions() int {
	return ix.embedder.Dimensions()
}

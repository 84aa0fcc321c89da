package skillindex

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/hyperjump/skillmatch/internal/embedding"
	"github.com/hyperjump/skillmatch/internal/ontology"
	"github.com/hyperjump/skillmatch/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOntology(t *testing.T) *ontology.Ontology {
	t.Helper()
	o, err := ontology.New([]ontology.Skill{
		{Canonical: "React", Aliases: []string{"react.js", "reactjs"}, Category: "frontend"},
		{Canonical: "Express", Aliases: []string{"express.js"}, Category: "backend"},
		{Canonical: "PostgreSQL", Aliases: []string{"postgres", "psql"}, Category: "database"},
	}, nil)
	require.NoError(t, err)
	return o
}

// countingEmbedder counts Embed calls and can be told to fail.
type countingEmbedder struct {
	*embedding.HashingEmbedder
	calls atomic.Int64
	fail  bool
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	if c.fail {
		return nil, errors.New("model unavailable")
	}
	return c.HashingEmbedder.Embed(ctx, text)
}

func TestBuild_registersSurfaces(t *testing.T) {
	ix, err := Build(context.Background(), testOntology(t), embedding.NewHashingEmbedder(256, 3))
	require.NoError(t, err)
	assert.Equal(t, 8, ix.Size())
	entries := ix.Entries()
	assert.Equal(t, Entry{Surface: "react", Canonical: "React"}, entries[0])
	assert.Equal(t, Entry{Surface: "react.js", Canonical: "React"}, entries[1])
}

func TestNearest_exactAliasScoresOne(t *testing.T) {
	ix, err := Build(context.Background(), testOntology(t), embedding.NewHashingEmbedder(256, 3))
	require.NoError(t, err)
	ctx := context.Background()

	for _, q := range []string{"ReactJS", "React", "  react  "} {
		m, err := ix.Nearest(ctx, q)
		require.NoError(t, err)
		assert.True(t, m.Found, q)
		assert.Equal(t, "React", m.Canonical, q)
		assert.InDelta(t, 1.0, m.Similarity, 1e-5, q)
	}

	m, err := ix.Nearest(ctx, "Postgres")
	require.NoError(t, err)
	assert.Equal(t, "PostgreSQL", m.Canonical)
	assert.Equal(t, "postgres", m.Surface)
}

func TestNearest_deterministic(t *testing.T) {
	ctx := context.Background()
	ix, err := Build(ctx, testOntology(t), embedding.NewHashingEmbedder(256, 3), WithWorkers(8))
	require.NoError(t, err)
	first, err := ix.Nearest(ctx, "express backend apis")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ix.Nearest(ctx, "express backend apis")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestNearest_emptyQueryAndVocabulary(t *testing.T) {
	ctx := context.Background()
	ix, err := Build(ctx, testOntology(t), embedding.NewHashingEmbedder(64, 3))
	require.NoError(t, err)
	m, err := ix.Nearest(ctx, " -- ")
	require.NoError(t, err)
	assert.False(t, m.Found)

	empty, err := ontology.New(nil, nil)
	require.NoError(t, err)
	ix, err = Build(ctx, empty, embedding.NewHashingEmbedder(64, 3))
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Size())
	m, err = ix.Nearest(ctx, "react")
	require.NoError(t, err)
	assert.False(t, m.Found)
	assert.Empty(t, m.Canonical)
}

func TestBuild_firstRegistrationWinsOnCollision(t *testing.T) {
	o, err := ontology.New([]ontology.Skill{
		{Canonical: "Go", Aliases: []string{"golang"}, Category: "language"},
		{Canonical: "Golang Tools", Aliases: []string{"GoLang", "go-tools"}, Category: "tooling"},
	}, nil)
	require.NoError(t, err)
	ix, err := Build(context.Background(), o, embedding.NewHashingEmbedder(128, 3))
	require.NoError(t, err)

	m, err := ix.Nearest(context.Background(), "golang")
	require.NoError(t, err)
	assert.Equal(t, "Go", m.Canonical)
	for _, e := range ix.Entries() {
		if e.Surface == "golang" {
			assert.Equal(t, "Go", e.Canonical)
		}
	}
}

func TestBuild_embedderFailure(t *testing.T) {
	emb := &countingEmbedder{HashingEmbedder: embedding.NewHashingEmbedder(32, 3), fail: true}
	_, err := Build(context.Background(), testOntology(t), emb)
	assert.Error(t, err)
}

func TestBuild_usesVectorCache(t *testing.T) {
	ctx := context.Background()
	cache, err := storage.NewSQLiteVectorCache(filepath.Join(t.TempDir(), "vectors.db"))
	require.NoError(t, err)
	defer cache.Close()

	cold := &countingEmbedder{HashingEmbedder: embedding.NewHashingEmbedder(64, 3)}
	_, err = Build(ctx, testOntology(t), cold, WithCache(cache))
	require.NoError(t, err)
	assert.Equal(t, int64(8), cold.calls.Load())

	warm := &countingEmbedder{HashingEmbedder: embedding.NewHashingEmbedder(64, 3)}
	ix, err := Build(ctx, testOntology(t), warm, WithCache(cache))
	require.NoError(t, err)
	assert.Equal(t, int64(0), warm.calls.Load(), "second build should be served from cache")

	m, err := ix.NearestBatch(ctx, []string{"reactjs", "psql"})
	require.NoError(t, err)
	assert.Equal(t, "React", m[0].Canonical)
	assert.Equal(t, "PostgreSQL", m[1].Canonical)
}

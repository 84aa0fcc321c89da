package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"

	"github.com/hyperjump/skillmatch/pkg/utils"
)

// DefaultGramSize is the character n-gram length used by HashingEmbedder.
const DefaultGramSize = 3

const (
	// tokenWeight is the total weight of the whole-token feature relative to one
	// character n-gram. Inflections ("expression", "reaction") share most n-grams
	// with a skill name but not the token, and must stay below the match threshold.
	tokenWeight = 3.0
	// tokenProbes spreads the whole-token feature over several buckets so a single
	// hash collision between two tokens cannot dominate their similarity.
	tokenProbes = 4
	// hashingScheme changes whenever the feature layout does; it is part of ModelID.
	hashingScheme = "v2"
)

// HashingEmbedder embeds text with signed feature hashing over whole tokens and
// boundary-marked character n-grams. It needs no model files. Identical strings have
// similarity 1; the whole token outweighs its n-grams, so only a shared token or a
// near-identical spelling clears a typical threshold.
type HashingEmbedder struct {
	dimensions int
	gramSize   int
}

// NewHashingEmbedder returns a hashing embedder. Non-positive arguments fall back to
// 384 dimensions and DefaultGramSize.
func NewHashingEmbedder(dimensions, gramSize int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	if gramSize <= 0 {
		gramSize = DefaultGramSize
	}
	return &HashingEmbedder{dimensions: dimensions, gramSize: gramSize}
}

// Embed returns the L2-normalized feature vector of text. Tokens are whitespace
// separated; callers pass normalized strings.
func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	acc := make([]float64, e.dimensions)
	probeWeight := tokenWeight / math.Sqrt(tokenProbes)
	for _, tok := range strings.Fields(text) {
		for p := 0; p < tokenProbes; p++ {
			e.add(acc, "w"+strconv.Itoa(p)+":"+tok, probeWeight)
		}
		padded := []rune("<" + tok + ">")
		if len(padded) <= e.gramSize {
			e.add(acc, "g:"+string(padded), 1)
			continue
		}
		for i := 0; i+e.gramSize <= len(padded); i++ {
			e.add(acc, "g:"+string(padded[i:i+e.gramSize]), 1)
		}
	}
	vec := make([]float32, e.dimensions)
	for i, v := range acc {
		vec[i] = float32(v)
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// add hashes feature into a bucket; the top bit of the hash picks the sign so that
// collisions cancel out on average instead of piling up.
func (e *HashingEmbedder) add(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	bucket := int(sum % uint64(len(acc)))
	if sum>>63 == 1 {
		acc[bucket] -= weight
		return
	}
	acc[bucket] += weight
}

// EmbedBatch calls Embed for each text.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *HashingEmbedder) Dimensions() int {
	return e.dimensions
}

// ModelID encodes the parameters that change the vector space.
func (e *HashingEmbedder) ModelID() string {
	return fmt.Sprintf("hashing-%s-g%d-d%d", hashingScheme, e.gramSize, e.dimensions)
}

// Close is a no-op.
func (e *HashingEmbedder) Close() error {
	return nil
}

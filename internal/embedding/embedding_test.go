package embedding

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestHashingEmbedder_deterministic(t *testing.T) {
	e := NewHashingEmbedder(128, 3)
	ctx := context.Background()
	a, err := e.Embed(ctx, "react native")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, "react native")
	if len(a) != 128 {
		t.Fatalf("len=%d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding differs at %d", i)
		}
	}
	if sim := cosine(a, b); math.Abs(sim-1) > 1e-6 {
		t.Errorf("self similarity %f", sim)
	}
}

func TestHashingEmbedder_unitNorm(t *testing.T) {
	e := NewHashingEmbedder(64, 3)
	v, _ := e.Embed(context.Background(), "kubernetes")
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Errorf("norm^2=%f", sum)
	}
}

func TestHashingEmbedder_emptyIsZero(t *testing.T) {
	e := NewHashingEmbedder(32, 3)
	v, err := e.Embed(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	for _, x := range v {
		if x != 0 {
			t.Fatal("expected zero vector for empty text")
		}
	}
}

func TestHashingEmbedder_spellingVariantsAreClose(t *testing.T) {
	e := NewHashingEmbedder(384, 3)
	ctx := context.Background()
	react, _ := e.Embed(ctx, "react")
	reactjs, _ := e.Embed(ctx, "reactjs")
	postgres, _ := e.Embed(ctx, "postgresql")
	near := cosine(react, reactjs)
	far := cosine(react, postgres)
	if near <= far {
		t.Errorf("react~reactjs=%f should exceed react~postgresql=%f", near, far)
	}
}

func TestHashingEmbedder_inflectionsStayFar(t *testing.T) {
	e := NewHashingEmbedder(384, 3)
	ctx := context.Background()
	pairs := [][2]string{
		{"expression", "express"},
		{"reaction", "react"},
		{"nodes", "node"},
		{"springs", "spring"},
	}
	for _, p := range pairs {
		a, _ := e.Embed(ctx, p[0])
		b, _ := e.Embed(ctx, p[1])
		if sim := cosine(a, b); sim >= 0.4 {
			t.Errorf("%s~%s=%f, want < 0.4", p[0], p[1], sim)
		}
	}
	phrase, _ := e.Embed(ctx, "react developer")
	react, _ := e.Embed(ctx, "react")
	if sim := cosine(phrase, react); sim < 0.6 {
		t.Errorf("react developer~react=%f, a shared token should stay close", sim)
	}
}

func TestHashingEmbedder_batchAndModelID(t *testing.T) {
	e := NewHashingEmbedder(0, 0)
	if e.Dimensions() != 384 {
		t.Errorf("Dimensions=%d", e.Dimensions())
	}
	if e.ModelID() != "hashing-v2-g3-d384" {
		t.Errorf("ModelID=%s", e.ModelID())
	}
	out, err := e.EmbedBatch(context.Background(), []string{"go", "rust"})
	if err != nil || len(out) != 2 {
		t.Fatalf("EmbedBatch: %v %d", err, len(out))
	}
}

func TestPackEncoding(t *testing.T) {
	ids, mask, types := packEncoding([]int{101, 7, 8, 102}, []int{0, 0, 0, 0}, 6)
	wantIDs := []int64{101, 7, 8, 102, 0, 0}
	wantMask := []int64{1, 1, 1, 1, 0, 0}
	for i := range wantIDs {
		if ids[i] != wantIDs[i] || mask[i] != wantMask[i] || types[i] != 0 {
			t.Fatalf("pos %d: ids=%v mask=%v", i, ids, mask)
		}
	}

	ids, mask, _ = packEncoding([]int{101, 7, 8, 9, 102}, nil, 3)
	if ids[0] != 101 || ids[1] != 7 || ids[2] != 102 {
		t.Errorf("truncation should keep the closing token: %v", ids)
	}
	if mask[2] != 1 {
		t.Errorf("mask=%v", mask)
	}
}

func TestMeanPool(t *testing.T) {
	hidden := []float32{
		1, 2,
		3, 4,
		100, 100,
	}
	got := meanPool(hidden, []int64{1, 1, 0}, 2)
	if got[0] != 2 || got[1] != 3 {
		t.Errorf("got %v", got)
	}
	zero := meanPool(hidden, []int64{0, 0, 0}, 2)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("all-masked should be zero, got %v", zero)
	}
}

func TestONNXConfigDefaults(t *testing.T) {
	c := ONNXConfig{}.withDefaults()
	if c.Dimensions != 384 || c.MaxTokens != 128 || c.OutputName != "last_hidden_state" {
		t.Errorf("defaults: %+v", c)
	}
}

func writeExport(t *testing.T, model, tokenizer string) ONNXConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := ONNXConfig{
		ModelPath:     filepath.Join(dir, "model.onnx"),
		TokenizerPath: filepath.Join(dir, "tokenizer.json"),
	}
	if err := os.WriteFile(cfg.ModelPath, []byte(model), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.TokenizerPath, []byte(tokenizer), 0600); err != nil {
		t.Fatal(err)
	}
	return cfg.withDefaults()
}

func TestModelIdentity(t *testing.T) {
	minilm := writeExport(t, "minilm weights", `{"vocab":1}`)
	mpnet := writeExport(t, "mpnet weights", `{"vocab":1}`)

	a, err := modelIdentity(minilm)
	if err != nil {
		t.Fatal(err)
	}
	b, err := modelIdentity(mpnet)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("different models named model.onnx share identity %q", a)
	}
	if !strings.HasPrefix(a, "onnx-model-") {
		t.Errorf("identity %q should carry the model name", a)
	}

	same := writeExport(t, "minilm weights", `{"vocab":1}`)
	if c, _ := modelIdentity(same); c != a {
		t.Errorf("identical exports in different dirs: %q vs %q", c, a)
	}

	retokenized := writeExport(t, "minilm weights", `{"vocab":2}`)
	if c, _ := modelIdentity(retokenized); c == a {
		t.Error("a different tokenizer should change the identity")
	}

	shorter := minilm
	shorter.MaxTokens = 64
	if c, _ := modelIdentity(shorter); c == a {
		t.Error("max tokens should change the identity")
	}

	missing := minilm
	missing.ModelPath = filepath.Join(t.TempDir(), "model.onnx")
	if _, err := modelIdentity(missing); err == nil {
		t.Error("expected error for a missing model file")
	}
}

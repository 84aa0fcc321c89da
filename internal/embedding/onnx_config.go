package embedding

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ONNXConfig describes a sentence-transformer export.
type ONNXConfig struct {
	ModelPath     string
	TokenizerPath string
	// LibraryPath points at the onnxruntime shared library; empty uses the system default.
	LibraryPath string
	Dimensions  int
	MaxTokens   int
	// OutputName is the token-level output, usually "last_hidden_state".
	OutputName string
}

func (c ONNXConfig) withDefaults() ONNXConfig {
	if c.Dimensions <= 0 {
		c.Dimensions = 384
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 128
	}
	if c.OutputName == "" {
		c.OutputName = "last_hidden_state"
	}
	return c
}

// meanPool averages the token rows of hidden ([seq, dims], row-major) whose attention
// mask is set.
func meanPool(hidden []float32, mask []int64, dims int) []float32 {
	out := make([]float32, dims)
	var count float32
	for t, m := range mask {
		if m == 0 {
			continue
		}
		row := hidden[t*dims : (t+1)*dims]
		for i, v := range row {
			out[i] += v
		}
		count++
	}
	if count > 0 {
		for i := range out {
			out[i] /= count
		}
	}
	return out
}

// modelIdentity names the vector space of an export: the model's base name plus a
// sha256 over the model and tokenizer contents and the settings that change the
// output. Two exports that share a file name get different identities.
func modelIdentity(cfg ONNXConfig) (string, error) {
	h := sha256.New()
	for _, path := range []string{cfg.ModelPath, cfg.TokenizerPath} {
		if err := hashFile(h, path); err != nil {
			return "", err
		}
	}
	fmt.Fprintf(h, "dims=%d;max_tokens=%d;output=%s", cfg.Dimensions, cfg.MaxTokens, cfg.OutputName)
	base := strings.TrimSuffix(filepath.Base(cfg.ModelPath), filepath.Ext(cfg.ModelPath))
	return fmt.Sprintf("onnx-%s-%s", base, hex.EncodeToString(h.Sum(nil))[:16]), nil
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}
	_, err = w.Write([]byte{0})
	return err
}

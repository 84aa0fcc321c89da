package embedding

import (
	"fmt"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Tokenizer produces the three BERT input tensors for a text, padded or truncated to
// maxTokens.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error)
}

// WordPieceTokenizer wraps a HuggingFace tokenizer.json (e.g. the one shipped with
// all-MiniLM-L6-v2).
type WordPieceTokenizer struct {
	tk *tokenizer.Tokenizer
}

// NewWordPieceTokenizer loads a tokenizer.json file.
func NewWordPieceTokenizer(path string) (*WordPieceTokenizer, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	return &WordPieceTokenizer{tk: tk}, nil
}

// Tokenize encodes text with special tokens ([CLS] ... [SEP]).
func (t *WordPieceTokenizer) Tokenize(text string, maxTokens int) ([]int64, []int64, []int64, error) {
	enc, err := t.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode %q: %w", text, err)
	}
	ids, mask, types := packEncoding(enc.Ids, enc.TypeIds, maxTokens)
	return ids, mask, types, nil
}

// packEncoding copies ids into fixed-length tensors. Truncation keeps the final token
// (the [SEP] marker) so the sequence stays well formed.
func packEncoding(ids, typeIDs []int, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)
	n := len(ids)
	if n > maxTokens {
		n = maxTokens
	}
	for i := 0; i < n; i++ {
		inputIDs[i] = int64(ids[i])
		attentionMask[i] = 1
		if i < len(typeIDs) {
			tokenTypeIDs[i] = int64(typeIDs[i])
		}
	}
	if len(ids) > maxTokens && maxTokens > 0 {
		inputIDs[maxTokens-1] = int64(ids[len(ids)-1])
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

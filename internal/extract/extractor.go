// Package extract pulls job-description text out of uploaded documents.
package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrTooLarge is returned when a document exceeds the reader limit.
var ErrTooLarge = errors.New("document too large")

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// SupportedExtensions lists the formats with a dedicated decoder. Anything else is
// read as plain text.
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".xlsx", ".odt", ".rtf", ".txt", ".md"}
}

// Extract reads the file at path and returns its text content.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, filepath.Ext(path))
}

// ExtractReader reads at most maxBytes from r and extracts text using the extension of
// name. maxBytes <= 0 means no limit.
func (e *Extractor) ExtractReader(r io.Reader, name string, maxBytes int64) (string, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, maxBytes)
	}
	return e.ExtractBytes(content, filepath.Ext(name))
}

// ExtractBytes extracts text from content based on the given extension, which should
// include the leading dot (e.g. ".pdf"). Unknown extensions are read as plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(ext) {
	case ".pdf":
		text, err = extractPDF(content)
	case ".docx":
		text, err = extractDOCX(content)
	case ".xlsx":
		text, err = extractExcel(content)
	case ".odt", ".rtf":
		text, err = extractOpenDocument(content)
	default:
		text = extractPlain(content)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

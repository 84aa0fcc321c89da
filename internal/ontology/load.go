package ontology

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

// ErrInvalid marks an ontology document that cannot be served.
var ErrInvalid = errors.New("invalid ontology")

// ValidationError lists the schema violations of an ontology document.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single schema violation.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("ontology validation failed:")
	for i, fe := range ve.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

func (ve *ValidationError) Unwrap() error {
	return ErrInvalid
}

type document struct {
	Skills   []Skill             `json:"skills"`
	Families map[string][]string `json:"families"`
}

// LoadFile reads an ontology from path. Files ending in .yaml or .yml are parsed as
// YAML, everything else as JSON.
func LoadFile(path string) (*Ontology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ontology: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseYAML parses a YAML ontology document.
func ParseYAML(data []byte) (*Ontology, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %v", ErrInvalid, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalid)
	}
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: yaml is not representable as json: %v", ErrInvalid, err)
	}
	return ParseJSON(asJSON)
}

// ParseJSON parses a JSON ontology document. Both the object form
// {"skills": [...], "families": {...}} and a bare array of skills are accepted.
func ParseJSON(data []byte) (*Ontology, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalid)
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalid)
	}
	if err := validate(trimmed); err != nil {
		return nil, err
	}

	var doc document
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Skills); err != nil {
			return nil, fmt.Errorf("%w: decode skills: %v", ErrInvalid, err)
		}
	} else if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode document: %v", ErrInvalid, err)
	}
	return New(doc.Skills, doc.Families)
}

func validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%w: schema check: %v", ErrInvalid, err)
	}
	if result.Valid() {
		return nil
	}
	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

// Package config provides configuration loading and structs for the skillmatch server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Ontology  OntologyConfig  `yaml:"ontology"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Storage   StorageConfig   `yaml:"storage"`
	Matching  MatchingConfig  `yaml:"matching"`
	Explain   ExplainConfig   `yaml:"explain"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host" validate:"required"`
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" validate:"min=1"`
}

// OntologyConfig points at the skills ontology document (JSON or YAML).
type OntologyConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// EmbeddingConfig selects and tunes the embedder.
type EmbeddingConfig struct {
	Backend       string `yaml:"backend" validate:"oneof=hashing onnx"`
	ModelPath     string `yaml:"model_path"`
	TokenizerPath string `yaml:"tokenizer_path"`
	LibraryPath   string `yaml:"library_path"`
	Dimensions    int    `yaml:"dimensions" validate:"min=8,max=4096"`
	MaxTokens     int    `yaml:"max_tokens" validate:"min=8"`
	GramSize      int    `yaml:"gram_size" validate:"min=2,max=5"`
	Workers       int    `yaml:"workers" validate:"min=1,max=64"`
}

// StorageConfig holds the vector cache location. An empty path disables the cache.
type StorageConfig struct {
	VectorCachePath string `yaml:"vector_cache_path"`
}

// MatchingConfig holds normalization and suggestion settings.
type MatchingConfig struct {
	// Threshold is a pointer so an explicit 0 is kept.
	Threshold          *float64 `yaml:"threshold" validate:"omitempty,min=0,max=1"`
	MaxNGram           int      `yaml:"max_ngram" validate:"min=1,max=8"`
	MissingPerCategory int      `yaml:"missing_per_category"`
	MissingTotal       int      `yaml:"missing_total"`
	NicePerCategory    int      `yaml:"nice_per_category"`
	NiceTotal          int      `yaml:"nice_total"`
	IncludeDebug       bool     `yaml:"include_debug"`
}

// ExplainConfig controls the reasons attached to each analysis.
type ExplainConfig struct {
	Enabled    *bool         `yaml:"enabled"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxReasons int           `yaml:"max_reasons" validate:"min=1,max=20"`
}

// CatalogConfig bounds skill searches.
type CatalogConfig struct {
	DefaultLimit int `yaml:"default_limit" validate:"min=1"`
	MaxLimit     int `yaml:"max_limit" validate:"min=1,gtefield=DefaultLimit"`
	Fuzziness    int `yaml:"fuzziness" validate:"min=1,max=2"`
}

// ThresholdOrDefault returns the configured threshold, DefaultThreshold when unset.
func (m *MatchingConfig) ThresholdOrDefault() float64 {
	if m.Threshold != nil {
		return *m.Threshold
	}
	return DefaultThreshold
}

// EnabledOrDefault reports whether reasons are generated; defaults to true when unset.
func (e *ExplainConfig) EnabledOrDefault() bool {
	if e.Enabled != nil {
		return *e.Enabled
	}
	return true
}

// Load reads and parses the config file at path, applies environment overrides and
// defaults, expands paths and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// .env is optional
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))
	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Ontology.Path = expandPath(cfg.Ontology.Path, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Embedding.TokenizerPath = expandPath(cfg.Embedding.TokenizerPath, configDir)
	cfg.Embedding.LibraryPath = expandPath(cfg.Embedding.LibraryPath, configDir)
	cfg.Storage.VectorCachePath = expandPath(cfg.Storage.VectorCachePath, configDir)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Embedding.Backend == "onnx" && (cfg.Embedding.ModelPath == "" || cfg.Embedding.TokenizerPath == "") {
		return fmt.Errorf("invalid config: onnx backend needs embedding.model_path and embedding.tokenizer_path")
	}
	return nil
}

// ApplyEnv overrides config values from SKILLMATCH_* variables and DEBUG_ANALYZE.
func ApplyEnv(cfg *Config) error {
	if v, ok := lookup("SKILLMATCH_HOST"); ok {
		cfg.Server.Host = v
	}
	if v, ok := lookup("SKILLMATCH_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SKILLMATCH_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v, ok := lookup("SKILLMATCH_ONTOLOGY"); ok {
		cfg.Ontology.Path = v
	}
	if v, ok := lookup("SKILLMATCH_EMBEDDING_BACKEND"); ok {
		cfg.Embedding.Backend = strings.ToLower(v)
	}
	if v, ok := lookup("SKILLMATCH_VECTOR_CACHE"); ok {
		cfg.Storage.VectorCachePath = v
	}
	if v, ok := lookup("SKILLMATCH_THRESHOLD"); ok {
		th, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SKILLMATCH_THRESHOLD: %w", err)
		}
		cfg.Matching.Threshold = &th
	}
	if v, ok := lookup("SKILLMATCH_DEBUG"); ok {
		cfg.Debug = truthy(v)
	}
	if v, ok := lookup("DEBUG_ANALYZE"); ok && truthy(v) {
		cfg.Matching.IncludeDebug = true
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
ontology:
  path: "/srv/skills.json"
explain:
  timeout: 500ms
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Ontology.Path != "/srv/skills.json" {
		t.Errorf("ontology path = %q", cfg.Ontology.Path)
	}
	if cfg.Explain.Timeout != 500*time.Millisecond {
		t.Errorf("explain timeout = %v, want 500ms", cfg.Explain.Timeout)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if cfg.Storage.VectorCachePath != "" {
		t.Errorf("vector cache should stay disabled when unset, got %q", cfg.Storage.VectorCachePath)
	}
}

func TestLoad_debugTrue(t *testing.T) {
	path := writeConfig(t, `
debug: true
ontology:
  path: "/srv/skills.json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
ontology:
  path: "./data/skills_ontology.json"
storage:
  vector_cache_path: "./data/cache/vectors.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Dir(path)
	if want := filepath.Join(dir, "data", "skills_ontology.json"); cfg.Ontology.Path != want {
		t.Errorf("ontology path = %s, want %s", cfg.Ontology.Path, want)
	}
	if want := filepath.Join(dir, "data", "cache", "vectors.db"); cfg.Storage.VectorCachePath != want {
		t.Errorf("vector cache path = %s, want %s", cfg.Storage.VectorCachePath, want)
	}
}

func TestLoad_thresholdZeroIsKept(t *testing.T) {
	path := writeConfig(t, `
ontology:
  path: "/srv/skills.json"
matching:
  threshold: 0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Matching.ThresholdOrDefault(); got != 0 {
		t.Errorf("threshold = %v, want 0", got)
	}
}

func TestLoad_invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"threshold above one", "matching:\n  threshold: 1.5\n", "Threshold"},
		{"threshold negative", "matching:\n  threshold: -0.1\n", "Threshold"},
		{"unknown backend", "embedding:\n  backend: word2vec\n", "Backend"},
		{"onnx without model", "embedding:\n  backend: onnx\n", "onnx backend"},
		{"limits inverted", "catalog:\n  default_limit: 20\n  max_limit: 5\n", "MaxLimit"},
		{"bad port", "server:\n  port: 70000\n", "Port"},
		{"not yaml", "server: [\n", "failed to parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SKILLMATCH_PORT", "9191")
	t.Setenv("SKILLMATCH_THRESHOLD", "0.6")
	t.Setenv("SKILLMATCH_EMBEDDING_BACKEND", "HASHING")
	t.Setenv("DEBUG_ANALYZE", "1")

	path := writeConfig(t, `
server:
  port: 9000
ontology:
  path: "/srv/skills.json"
matching:
  threshold: 0.3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("port = %d, want env override 9191", cfg.Server.Port)
	}
	if got := cfg.Matching.ThresholdOrDefault(); got != 0.6 {
		t.Errorf("threshold = %v, want 0.6", got)
	}
	if cfg.Embedding.Backend != "hashing" {
		t.Errorf("backend = %q, want hashing", cfg.Embedding.Backend)
	}
	if !cfg.Matching.IncludeDebug {
		t.Error("DEBUG_ANALYZE should enable the debug block")
	}
}

func TestApplyEnv_badNumbers(t *testing.T) {
	t.Setenv("SKILLMATCH_PORT", "eighty")
	if err := ApplyEnv(&Config{}); err == nil {
		t.Error("expected an error for a non-numeric port")
	}
}

func TestApplyEnv_dotEnvFile(t *testing.T) {
	path := writeConfig(t, "ontology:\n  path: \"/srv/skills.json\"\n")
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := os.WriteFile(envFile, []byte("SKILLMATCH_HOST=0.0.0.0\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SKILLMATCH_HOST") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want value from .env", cfg.Server.Host)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Embedding.Backend != "hashing" || cfg.Embedding.Dimensions != 384 || cfg.Embedding.Workers != 4 {
		t.Errorf("embedding defaults: got %+v", cfg.Embedding)
	}
	if cfg.Matching.ThresholdOrDefault() != DefaultThreshold {
		t.Errorf("default threshold: got %v", cfg.Matching.ThresholdOrDefault())
	}
	if cfg.Matching.MissingPerCategory != 3 || cfg.Matching.MissingTotal != 10 {
		t.Errorf("missing caps: got %d/%d", cfg.Matching.MissingPerCategory, cfg.Matching.MissingTotal)
	}
	if cfg.Matching.NicePerCategory != 2 || cfg.Matching.NiceTotal != 3 {
		t.Errorf("nice-to-have caps: got %d/%d", cfg.Matching.NicePerCategory, cfg.Matching.NiceTotal)
	}
	if cfg.Explain.Timeout != 2*time.Second || cfg.Explain.MaxReasons != 5 {
		t.Errorf("explain defaults: got %+v", cfg.Explain)
	}
	if !cfg.Explain.EnabledOrDefault() {
		t.Error("explain should be enabled by default")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestExplainConfig_EnabledOrDefault(t *testing.T) {
	f := false
	e := &ExplainConfig{Enabled: &f}
	if e.EnabledOrDefault() {
		t.Error("EnabledOrDefault() = true, want false")
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:   ServerConfig{Host: "localhost", Port: 9090},
		Ontology: OntologyConfig{Path: "/tmp/skills.json"},
		Explain:  ExplainConfig{Timeout: 3 * time.Second},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.Explain.Timeout != 3*time.Second {
		t.Errorf("loaded timeout: got %v", loaded.Explain.Timeout)
	}
}

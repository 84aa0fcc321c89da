package config

import "time"

// DefaultThreshold is the similarity a phrase needs to resolve to a canonical skill.
const DefaultThreshold = 0.46

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 10 << 20
	}
	if cfg.Ontology.Path == "" {
		cfg.Ontology.Path = "/usr/local/var/skillmatch/data/skills_ontology.json"
	}
	if cfg.Embedding.Backend == "" {
		cfg.Embedding.Backend = "hashing"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 128
	}
	if cfg.Embedding.GramSize == 0 {
		cfg.Embedding.GramSize = 3
	}
	if cfg.Embedding.Workers == 0 {
		cfg.Embedding.Workers = 4
	}
	if cfg.Matching.MaxNGram == 0 {
		cfg.Matching.MaxNGram = 4
	}
	if cfg.Matching.MissingPerCategory == 0 {
		cfg.Matching.MissingPerCategory = 3
	}
	if cfg.Matching.MissingTotal == 0 {
		cfg.Matching.MissingTotal = 10
	}
	if cfg.Matching.NicePerCategory == 0 {
		cfg.Matching.NicePerCategory = 2
	}
	if cfg.Matching.NiceTotal == 0 {
		cfg.Matching.NiceTotal = 3
	}
	if cfg.Explain.Timeout == 0 {
		cfg.Explain.Timeout = 2 * time.Second
	}
	if cfg.Explain.MaxReasons == 0 {
		cfg.Explain.MaxReasons = 5
	}
	if cfg.Catalog.DefaultLimit == 0 {
		cfg.Catalog.DefaultLimit = 10
	}
	if cfg.Catalog.MaxLimit == 0 {
		cfg.Catalog.MaxLimit = 50
	}
	if cfg.Catalog.Fuzziness == 0 {
		cfg.Catalog.Fuzziness = 1
	}
}

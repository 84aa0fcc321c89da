package catalog

import "testing"

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{"identical empty", "", "", 0},
		{"identical word", "react", "react", 0},
		{"identical unicode", "こんにちは", "こんにちは", 0},
		{"empty a", "", "docker", 6},
		{"empty b", "docker", "", 6},
		{"one substitution", "vue", "vie", 1},
		{"one insertion", "mysql", "mysqll", 1},
		{"one deletion", "kotlin", "kotin", 1},
		{"kitten to sitting", "kitten", "sitting", 3},
		{"typo", "postgresql", "postgrsql", 1},
		{"case sensitive", "Go", "go", 1},
		{"unicode substitution", "café", "cafe", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevenshteinDistance(tt.a, tt.b); got != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}
			if got := LevenshteinDistance(tt.b, tt.a); got != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d (symmetry)", tt.b, tt.a, got, tt.expected)
			}
		})
	}
}

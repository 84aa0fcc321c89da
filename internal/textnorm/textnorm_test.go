package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercases", "React", "react"},
		{"keeps symbols", "C++ / C# and Node.js", "c++ c# and node.js"},
		{"collapses whitespace", "  machine \t learning\n", "machine learning"},
		{"strips punctuation", "Docker, Kubernetes; (AWS)!", "docker kubernetes aws"},
		{"folds fullwidth", "Ｃ＃", "c#"},
		{"only punctuation", "--- / ---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_idempotent(t *testing.T) {
	in := "Senior Go/Golang developer with C++ & PostgreSQL"
	once := Normalize(in)
	assert.Equal(t, once, Normalize(once))
}

func TestNGrams(t *testing.T) {
	got := NGrams("a b c", 2)
	assert.Equal(t, []string{"a", "a b", "b", "b c", "c"}, got)
}

func TestNGrams_dedupAndBounds(t *testing.T) {
	got := NGrams("go go go", 4)
	assert.Equal(t, []string{"go", "go go", "go go go"}, got)
	assert.Empty(t, NGrams("", 4))
	assert.Empty(t, NGrams("react", 0))
}

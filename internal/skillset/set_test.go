package skillset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOperations(t *testing.T) {
	a := New("React", "Express", "Docker")
	b := New("React", "Go")

	assert.Equal(t, []string{"React"}, a.Intersect(b).Sorted())
	assert.Equal(t, []string{"Docker", "Express"}, a.Minus(b).Sorted())
	assert.Equal(t, []string{"Docker", "Express", "Go", "React"}, a.Union(b).Sorted())
	assert.Equal(t, 3, a.Len(), "operations must not mutate the receiver")
	assert.True(t, a.Has("Docker"))
	assert.False(t, a.Has("Go"))
}

func TestSet_empty(t *testing.T) {
	var empty Set
	assert.Equal(t, 0, empty.Len())
	assert.False(t, empty.Has("x"))
	assert.Empty(t, empty.Sorted())
	assert.Equal(t, 0, New("a").Intersect(empty).Len())
}

func TestSet_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(New("b", "c", "a"))
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b","c"]`, string(data))
}

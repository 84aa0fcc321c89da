package suggest

import (
	"testing"

	"github.com/hyperjump/skillmatch/internal/ontology"
	"github.com/hyperjump/skillmatch/internal/skillset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOntology(t *testing.T) *ontology.Ontology {
	t.Helper()
	o, err := ontology.New([]ontology.Skill{
		{Canonical: "React", Category: "frontend"},
		{Canonical: "Vue", Category: "frontend"},
		{Canonical: "Angular", Category: "frontend"},
		{Canonical: "Svelte", Category: "frontend"},
		{Canonical: "Express", Category: "backend"},
		{Canonical: "Django", Category: "backend"},
		{Canonical: "Flask", Category: "backend"},
		{Canonical: "FastAPI", Category: "backend"},
		{Canonical: "PostgreSQL", Category: "database"},
		{Canonical: "MySQL", Category: "database"},
		{Canonical: "Docker", Category: "devops"},
	}, nil)
	require.NoError(t, err)
	return o
}

func TestPickMissing_scenario(t *testing.T) {
	o := testOntology(t)
	got := PickMissing(skillset.New("Express", "React"), skillset.New("React"), o, Caps{PerCategory: 3, Total: 10})
	assert.Equal(t, []string{"Express"}, got)
}

func TestPickMissing_sharedCategoriesFirst(t *testing.T) {
	o := testOntology(t)
	user := skillset.New("PostgreSQL")
	job := skillset.New("React", "Express", "MySQL", "Docker", "PostgreSQL")

	got := PickMissing(job, user, o, Caps{})
	// database is shared, the rest are job-only and ascend by category.
	assert.Equal(t, []string{"MySQL", "Express", "Docker", "React"}, got)
}

func TestPickMissing_caps(t *testing.T) {
	o := testOntology(t)
	job := skillset.New("React", "Vue", "Angular", "Svelte", "Express", "Django", "Flask", "FastAPI")

	tests := []struct {
		name string
		caps Caps
		want []string
	}{
		{"per category", Caps{PerCategory: 2, Total: 10}, []string{"Django", "Express", "Angular", "React"}},
		{"total", Caps{PerCategory: 3, Total: 4}, []string{"Django", "Express", "FastAPI", "Angular"}},
		{"unlimited", Caps{}, []string{"Django", "Express", "FastAPI", "Flask", "Angular", "React", "Svelte", "Vue"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PickMissing(job, skillset.New(), o, tt.caps))
		})
	}
}

func TestPickMissing_subsetOfJobMinusUser(t *testing.T) {
	o := testOntology(t)
	user := skillset.New("React", "Docker", "Flask")
	job := skillset.New("React", "Vue", "Express", "Django", "MySQL", "Docker", "Kotlin")

	got := PickMissing(job, user, o, Caps{PerCategory: 3, Total: 10})
	for _, s := range got {
		assert.True(t, job.Has(s), s)
		assert.False(t, user.Has(s), s)
	}
	assert.Len(t, got, 5)
	assert.Contains(t, got, "Kotlin", "unknown skills fall into the default category")
}

func TestPickMissing_emptyInputs(t *testing.T) {
	o := testOntology(t)
	assert.Empty(t, PickMissing(skillset.New(), skillset.New("React"), o, Caps{PerCategory: 3, Total: 10}))
	assert.Empty(t, PickMissing(skillset.New("React"), skillset.New("React"), o, Caps{PerCategory: 3, Total: 10}))
}

func TestSuggestNiceToHave(t *testing.T) {
	o := testOntology(t)
	job := skillset.New("React", "Express")
	user := skillset.New("React")
	exclude := user.Union(job)

	got := SuggestNiceToHave(o.Categories(job), exclude, o, Caps{PerCategory: 2, Total: 3})
	assert.Equal(t, []string{"Django", "FastAPI", "Angular"}, got)

	for _, s := range got {
		assert.False(t, exclude.Has(s))
	}
}

func TestSuggestNiceToHave_limits(t *testing.T) {
	o := testOntology(t)
	cats := skillset.New("frontend", "backend", "database")

	got := SuggestNiceToHave(cats, skillset.New(), o, Caps{PerCategory: 1, Total: 10})
	assert.Equal(t, []string{"Django", "MySQL", "Angular"}, got)

	got = SuggestNiceToHave(cats, skillset.New(), o, Caps{})
	assert.Len(t, got, 10)

	got = SuggestNiceToHave(skillset.New("unheard-of"), skillset.New(), o, Caps{PerCategory: 2, Total: 3})
	assert.Empty(t, got)
}

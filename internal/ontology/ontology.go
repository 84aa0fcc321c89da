// Package ontology holds the canonical skill taxonomy: skills, aliases, categories and
// the keyword families used to expand free text. An Ontology is immutable once built.
package ontology

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hyperjump/skillmatch/internal/skillset"
	"github.com/hyperjump/skillmatch/internal/textnorm"
)

// DefaultCategory is reported for skills with no category and for unknown skills.
const DefaultCategory = "other"

// Skill is one canonical skill entry.
type Skill struct {
	Canonical string   `json:"canonical" yaml:"canonical"`
	Aliases   []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Category  string   `json:"category,omitempty" yaml:"category,omitempty"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Family maps a normalized trigger keyword to the canonical skills it implies.
type Family struct {
	Key     string
	Members []string
}

// Ontology is the loaded taxonomy.
type Ontology struct {
	skills      []Skill
	byCanonical map[string]int
	byCategory  map[string][]string
	families    []Family
	duplicates  []string
}

// New builds an ontology from skill entries and a keyword family table.
// When a canonical name appears more than once the first entry wins and later ones are
// recorded in Duplicates. Family keys are normalized like free text; keys that
// normalize to nothing are ignored. Every family member must name a canonical skill.
func New(skills []Skill, families map[string][]string) (*Ontology, error) {
	o := &Ontology{
		byCanonical: make(map[string]int, len(skills)),
		byCategory:  make(map[string][]string),
	}
	for i, s := range skills {
		canonical := strings.TrimSpace(s.Canonical)
		if canonical == "" {
			return nil, fmt.Errorf("%w: skill %d has an empty canonical name", ErrInvalid, i)
		}
		if _, ok := o.byCanonical[canonical]; ok {
			o.duplicates = append(o.duplicates, canonical)
			continue
		}
		category := strings.TrimSpace(s.Category)
		if category == "" {
			category = DefaultCategory
		}
		entry := Skill{
			Canonical: canonical,
			Category:  category,
			Aliases:   trimmed(s.Aliases),
			Tags:      trimmed(s.Tags),
		}
		o.byCanonical[canonical] = len(o.skills)
		o.skills = append(o.skills, entry)
		o.byCategory[category] = append(o.byCategory[category], canonical)
	}
	for _, names := range o.byCategory {
		sort.Strings(names)
	}

	merged := make(map[string][]string)
	for rawKey, members := range families {
		key := textnorm.Normalize(rawKey)
		if key == "" {
			continue
		}
		for _, m := range members {
			m = strings.TrimSpace(m)
			if m == "" {
				continue
			}
			if _, ok := o.byCanonical[m]; !ok {
				return nil, fmt.Errorf("%w: family %q references unknown skill %q", ErrInvalid, rawKey, m)
			}
			merged[key] = append(merged[key], m)
		}
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		o.families = append(o.families, Family{Key: k, Members: skillset.New(merged[k]...).Sorted()})
	}
	return o, nil
}

func trimmed(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Skills returns the skills in registration order.
func (o *Ontology) Skills() []Skill {
	out := make([]Skill, len(o.skills))
	copy(out, o.skills)
	return out
}

// Skill returns the entry for a canonical name.
func (o *Ontology) Skill(canonical string) (Skill, bool) {
	i, ok := o.byCanonical[canonical]
	if !ok {
		return Skill{}, false
	}
	return o.skills[i], true
}

// Len returns the number of canonical skills.
func (o *Ontology) Len() int {
	return len(o.skills)
}

// Category returns the category of a canonical skill, or DefaultCategory when unknown.
func (o *Ontology) Category(canonical string) string {
	if i, ok := o.byCanonical[canonical]; ok {
		return o.skills[i].Category
	}
	return DefaultCategory
}

// Categories maps every skill of set to its category.
func (o *Ontology) Categories(set skillset.Set) skillset.Set {
	out := make(skillset.Set)
	for c := range set {
		out.Add(o.Category(c))
	}
	return out
}

// SkillsIn returns the canonical skills of a category in ascending order.
func (o *Ontology) SkillsIn(category string) []string {
	names := o.byCategory[category]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// CategoryNames returns every category in ascending order.
func (o *Ontology) CategoryNames() []string {
	out := make([]string, 0, len(o.byCategory))
	for c := range o.byCategory {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Families returns the keyword families ordered by key.
func (o *Ontology) Families() []Family {
	out := make([]Family, len(o.families))
	copy(out, o.families)
	return out
}

// Duplicates lists canonical names that were registered more than once.
func (o *Ontology) Duplicates() []string {
	return append([]string(nil), o.duplicates...)
}

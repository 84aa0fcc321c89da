// Package skillset provides the canonical skill set shared by the matching packages.
package skillset

import (
	"encoding/json"
	"sort"
)

// Set is an unordered set of canonical skill (or category) names.
type Set map[string]struct{}

// New returns a set holding items.
func New(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Add inserts item.
func (s Set) Add(item string) {
	s[item] = struct{}{}
}

// AddAll inserts every item of other.
func (s Set) AddAll(other Set) {
	for it := range other {
		s[it] = struct{}{}
	}
}

// Has reports whether item is present.
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Len returns the number of items.
func (s Set) Len() int {
	return len(s)
}

// Intersect returns the items present in both s and other.
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Set)
	for it := range small {
		if large.Has(it) {
			out.Add(it)
		}
	}
	return out
}

// Minus returns the items of s not present in other.
func (s Set) Minus(other Set) Set {
	out := make(Set)
	for it := range s {
		if !other.Has(it) {
			out.Add(it)
		}
	}
	return out
}

// Union returns the items of s and other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	out.AddAll(s)
	out.AddAll(other)
	return out
}

// Sorted returns the items in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for it := range s {
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

package xref

import "sort"

// Set is a set of entity codes.
type Set map[string]struct{}

// NewSet returns a set holding codes.
func NewSet(codes ...string) Set {
	s := make(Set, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Add inserts code into the set.
func (s Set) Add(code string) {
	s[code] = struct{}{}
}

// Has reports whether code is in the set. A nil set contains nothing.
func (s Set) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Len returns the number of codes.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the codes in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the codes present in both sets.
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Set, len(small))
	for c := range small {
		if large.Has(c) {
			out.Add(c)
		}
	}
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for c := range s {
		out.Add(c)
	}
	return out
}

package record

import "slices"

// IntSet is a set of integers, such as a reserved port pool.
// A nil IntSet is "absent"; after decoding it is always non-nil.
type IntSet map[int]struct{}

// NewIntSet returns a set holding vals.
func NewIntSet(vals ...int) IntSet {
	s := make(IntSet, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts v. Add on a nil set panics, like any nil map write.
func (s IntSet) Add(v int) {
	s[v] = struct{}{}
}

// Has reports whether v is in the set.
func (s IntSet) Has(v int) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in ascending order. Never nil.
func (s IntSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

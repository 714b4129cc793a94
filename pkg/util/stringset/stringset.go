// Package stringset implements Set operations on strings.
package stringset

// Set is a set of strings.
type Set map[string]struct{}

// New creates a set with a elements.
func New(a ...string) Set {
	r := make(Set)
	for _, i := range a {
		r.Add(i)
	}
	return r
}

// Add adds s to the receiver.
// Returns false if s is already in the receiver.
func (set Set) Add(s string) bool {
	_, found := set[s]
	set[s] = struct{}{}
	return !found
}

// Contains returns true if s is in the receiver.
func (set Set) Contains(s string) bool {
	_, found := set[s]
	return found
}

// ToSlice returns the elements of the receiver as a slice.
// Order is undefined.
func (set Set) ToSlice() []string {
	var r []string
	for v := range set {
		r = append(r, v)
	}
	return r
}

// Cardinality returns how many items are currently in the set.
func (set Set) Cardinality() int {
	return len(set)
}

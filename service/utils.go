package service

// StringSet is a set of strings (all elements are unique)
type StringSet map[string]struct{}

// NewStringSet creates a set from the given strings
func NewStringSet(s ...string) StringSet {
	ss := StringSet{}
	for _, e := range s {
		ss.Push(e)
	}
	return ss
}

// Push adds the string to the set if not already exists
func (ss StringSet) Push(s string) {
	ss[s] = struct{}{}
}

// Exists returns true if the string already exists in the Set
func (ss StringSet) Exists(s string) bool {
	_, ok := ss[s]
	return ok
}

// Duplicates returns the elements of s that appear more than once, in order of their second occurrence
func Duplicates(s []string) []string {
	seen := StringSet{}
	var dups []string
	for _, e := range s {
		if seen.Exists(e) {
			dups = append(dups, e)
		}
		seen.Push(e)
	}
	return dups
}

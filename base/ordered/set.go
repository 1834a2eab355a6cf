package ordered

// Set is an ordered set. Elements keep the position at which
// they have been added first; re-adding an element is a no-op.
type Set[K comparable] struct {
	keys  []K
	index map[K]int
}

// NewSet returns a new ordered set holding the given elements.
func NewSet[K comparable](ks ...K) *Set[K] {
	s := &Set[K]{index: make(map[K]int)}
	for _, k := range ks {
		s.Add(k)
	}
	return s
}

// Add an element to the set. Returns false if the element was already present.
func (s *Set[K]) Add(k K) bool {
	if _, in := s.index[k]; in {
		return false
	}
	s.index[k] = len(s.keys)
	s.keys = append(s.keys, k)
	return true
}

// Index returns the insertion position of an element.
func (s *Set[K]) Index(k K) (int, bool) {
	i, ok := s.index[k]
	return i, ok
}

// Contains returns true if the element is in the set.
func (s *Set[K]) Contains(k K) bool {
	_, ok := s.index[k]
	return ok
}

// Slice returns the elements of the set in insertion order.
func (s *Set[K]) Slice() []K {
	ks := make([]K, len(s.keys))
	copy(ks, s.keys)
	return ks
}

// Size returns the number of elements in the set.
func (s *Set[K]) Size() int {
	return len(s.keys)
}

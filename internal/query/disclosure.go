package query

// Disclosure tracks per-passage expand/collapse state, layered over the
// immutable passage list. It is rebuilt, never merged, when a new query
// replaces the passages: indices are not stable across queries.
type Disclosure struct {
	expanded map[int]bool
	count    int
}

// NewDisclosure creates disclosure state for count passages, all
// collapsed
func NewDisclosure(count int) *Disclosure {
	return &Disclosure{
		expanded: make(map[int]bool, count),
		count:    count,
	}
}

// Toggle flips the expanded flag of one passage, leaving the others
// untouched. Out-of-range indices are ignored.
func (d *Disclosure) Toggle(index int) {
	if index < 0 || index >= d.count {
		return
	}
	d.expanded[index] = !d.expanded[index]
}

// Expanded reports whether the passage at index is currently expanded
func (d *Disclosure) Expanded(index int) bool {
	return d.expanded[index]
}

// Count returns the number of passages under disclosure control
func (d *Disclosure) Count() int {
	return d.count
}

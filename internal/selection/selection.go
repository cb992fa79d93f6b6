// Package selection tracks the set of task ids staged for a bulk action.
// The set is always a subset of the ids visible under the current filters;
// Reconcile enforces that whenever the visible collection changes.
package selection

import (
	"sort"
	"sync"
)

// Set holds the selected task ids. Safe for concurrent use: the UI toggles
// ids while transition settlements clear or reconcile the set.
type Set struct {
	mu  sync.Mutex
	ids map[int64]bool
}

// NewSet returns an empty selection.
func NewSet() *Set {
	return &Set{ids: make(map[int64]bool)}
}

// Toggle adds the id if absent, removes it if present.
func (s *Set) Toggle(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids[id] {
		delete(s.ids, id)
		return
	}
	s.ids[id] = true
}

// SelectAll toggles between the full visible set and nothing. A partial
// selection expands to the full set; only an exactly-full selection clears.
func (s *Set) SelectAll(visible []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(visible) > 0 && len(s.ids) == len(visible) && s.containsAllLocked(visible) {
		s.ids = make(map[int64]bool)
		return
	}
	s.ids = make(map[int64]bool, len(visible))
	for _, id := range visible {
		s.ids[id] = true
	}
}

func (s *Set) containsAllLocked(visible []int64) bool {
	for _, id := range visible {
		if !s.ids[id] {
			return false
		}
	}
	return true
}

// Reconcile drops any selected id no longer in the visible collection.
// Runs on every cache replacement, not on demand.
func (s *Set) Reconcile(visible []int64) {
	keep := make(map[int64]bool, len(visible))
	for _, id := range visible {
		keep[id] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.ids {
		if !keep[id] {
			delete(s.ids, id)
		}
	}
}

// Clear empties the selection.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[int64]bool)
}

// Has reports whether the id is selected.
func (s *Set) Has(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[id]
}

// Len returns the number of selected ids.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// IDs returns the selected ids in ascending order.
func (s *Set) IDs() []int64 {
	s.mu.Lock()
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

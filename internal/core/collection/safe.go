// Package collection provides containers that tolerate mutation while they are
// being traversed.
package collection

import "slices"

// Safe is an ordered collection that may be changed from inside its own ForEach.
//
// Add queues an item; it joins the live sequence at the start of the next
// traversal and is never visited by a traversal already in progress. Remove
// queues an exclusion; items not yet visited by the current traversal are
// skipped, and the live sequence is compacted at the next traversal boundary.
// Removal uses set membership: every occurrence of an item goes at once, and
// removing an unknown item is a no-op. Removals only apply to the live
// sequence; an item queued by Add survives any Remove, so after a traversal the
// live sequence is the previous one minus the removed items plus the added ones.
//
// Safe is not safe for concurrent use.
type Safe[T comparable] struct {
	items   []T
	added   []T
	removed map[T]struct{}
}

func NewSafe[T comparable]() *Safe[T] {
	return &Safe[T]{removed: make(map[T]struct{})}
}

// Add queues item for inclusion starting with the next traversal.
func (s *Safe[T]) Add(item T) {
	s.added = append(s.added, item)
}

// Remove queues item for exclusion.
func (s *Safe[T]) Remove(item T) {
	if s.removed == nil {
		s.removed = make(map[T]struct{})
	}
	s.removed[item] = struct{}{}
}

// ForEach flushes queued changes and visits every live item in order.
func (s *Safe[T]) ForEach(visit func(T)) {
	s.flushRemoved()
	s.flushAdded()

	for _, item := range s.items {
		if _, gone := s.removed[item]; gone {
			continue
		}
		visit(item)
	}

	s.flushRemoved()
}

// IsEmpty reports whether there is nothing live and nothing queued to add.
func (s *Safe[T]) IsEmpty() bool {
	return len(s.added)+len(s.items) == 0
}

// Len counts live items plus queued additions. Pending removals are not subtracted.
func (s *Safe[T]) Len() int {
	return len(s.added) + len(s.items)
}

// Contains reports whether item will be live after the next flush.
func (s *Safe[T]) Contains(item T) bool {
	if slices.Contains(s.added, item) {
		return true
	}
	_, gone := s.removed[item]
	return !gone && slices.Contains(s.items, item)
}

// Items returns a copy of the live sequence as of the last flush.
func (s *Safe[T]) Items() []T {
	return slices.Clone(s.items)
}

func (s *Safe[T]) flushAdded() {
	if len(s.added) == 0 {
		return
	}
	s.items = append(s.items, s.added...)
	clear(s.added)
	s.added = s.added[:0]
}

func (s *Safe[T]) flushRemoved() {
	if len(s.removed) == 0 {
		return
	}
	// An outer traversal may still be ranging over the old slice.
	kept := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if _, gone := s.removed[item]; !gone {
			kept = append(kept, item)
		}
	}
	s.items = kept
	clear(s.removed)
}

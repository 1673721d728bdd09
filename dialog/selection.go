package dialog

import "errors"

// ErrInvalidMaximumSelection is returned when a picker or tracker is
// configured with a maximum below one.
var ErrInvalidMaximumSelection = errors.New("maximum selection must be at least 1")

// SelectionTracker is an insertion ordered set of item indices with a
// fixed capacity. When full, adding evicts the oldest entry.
type SelectionTracker struct {
	max   int
	order []int
	index map[int]struct{}
}

// NewSelectionTracker returns an empty tracker holding at most max entries.
func NewSelectionTracker(max int) (*SelectionTracker, error) {
	if max < 1 {
		return nil, ErrInvalidMaximumSelection
	}
	return &SelectionTracker{
		max:   max,
		order: make([]int, 0, max),
		index: make(map[int]struct{}, max),
	}, nil
}

// Add appends id. Adding an id that is already present does nothing.
// If the tracker was full the oldest id is removed and returned.
func (s *SelectionTracker) Add(id int) (evicted int, didEvict bool) {
	if _, ok := s.index[id]; ok {
		return -1, false
	}

	evicted = -1
	if len(s.order) >= s.max {
		evicted = s.order[0]
		delete(s.index, evicted)
		s.order = s.order[1:]
		didEvict = true
	}

	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return evicted, didEvict
}

// Remove drops id and reports whether it was present.
func (s *SelectionTracker) Remove(id int) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *SelectionTracker) Contains(id int) bool {
	_, ok := s.index[id]
	return ok
}

// Indices returns the selected ids, oldest selection first.
func (s *SelectionTracker) Indices() []int {
	return append([]int(nil), s.order...)
}

func (s *SelectionTracker) Len() int      { return len(s.order) }
func (s *SelectionTracker) IsEmpty() bool { return len(s.order) == 0 }
func (s *SelectionTracker) Max() int      { return s.max }

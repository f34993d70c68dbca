package board

import (
	"sort"
	"strings"

	"github.com/santhossiva2002/taskflow/domain"
)

// SortKey selects the in-lane ordering of rendered tasks.
type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByTitle    SortKey = "title"
	SortByPriority SortKey = "priority"
)

// Sort returns a sorted copy of tasks. The input is never mutated; sorting
// only affects the rendered order, not the canonical collection.
func Sort(tasks []domain.Task, key SortKey, desc bool) []domain.Task {
	out := make([]domain.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		c := compareTasks(out[i], out[j], key)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compareTasks(a, b domain.Task, key SortKey) int {
	switch key {
	case SortByTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortByPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	default:
		switch {
		case a.CreatedAt < b.CreatedAt:
			return -1
		case a.CreatedAt > b.CreatedAt:
			return 1
		}
		return 0
	}
}

// SortState tracks the per-lane sort selection. Re-selecting the current key
// toggles direction; selecting a new key resets to ascending.
type SortState struct {
	Key  SortKey
	Desc bool
}

// DefaultSortState is the initial lane ordering: newest first.
func DefaultSortState() SortState {
	return SortState{Key: SortByDate, Desc: true}
}

// Select applies a sort-key selection to the state.
func (s *SortState) Select(key SortKey) {
	if s.Key == key {
		s.Desc = !s.Desc
		return
	}
	s.Key = key
	s.Desc = false
}

// Apply sorts tasks according to the current state.
func (s SortState) Apply(tasks []domain.Task) []domain.Task {
	return Sort(tasks, s.Key, s.Desc)
}

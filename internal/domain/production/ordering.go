package production

import (
	"fmt"
	"time"
)

// ApplyReorder assigns sort orders 1..n to the pending tasks of a scope in
// the order given by orderedIDs. The list must name every pending task in the
// scope exactly once. On error no task is modified.
func ApplyReorder(pending []*ProductionTask, orderedIDs []string, at time.Time) ([]*ProductionTask, error) {
	byID := make(map[string]*ProductionTask, len(pending))
	for _, t := range pending {
		if t.Status() != TaskStatusPending {
			return nil, &ErrFieldLocked{TaskID: t.ID(), Field: "sortOrder", Status: t.Status()}
		}
		byID[t.ID()] = t
	}

	if len(orderedIDs) != len(byID) {
		return nil, NewValidationError("taskIds", fmt.Sprintf(
			"expected all %d pending tasks, got %d ids", len(byID), len(orderedIDs)))
	}

	seen := make(map[string]bool, len(orderedIDs))
	ordered := make([]*ProductionTask, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		if seen[id] {
			return nil, NewValidationError("taskIds", fmt.Sprintf("task %s listed twice", id))
		}
		seen[id] = true

		t, ok := byID[id]
		if !ok {
			return nil, NewValidationError("taskIds", fmt.Sprintf("task %s is not a pending task in this scope", id))
		}
		ordered = append(ordered, t)
	}

	for i, t := range ordered {
		if err := t.SetSortOrder(i+1, at); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// NextSortOrder returns the position for a task appended to the queue
func NextSortOrder(pending []*ProductionTask) int {
	max := 0
	for _, t := range pending {
		if t.SortOrder() > max {
			max = t.SortOrder()
		}
	}
	return max + 1
}

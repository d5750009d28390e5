package planning

import "sort"

// Scheduled is a task as seen by the planner
type Scheduled struct {
	TaskID    string
	ProductID string
	Window    Window
}

// Conflict is an existing task overlapping a candidate window
type Conflict struct {
	TaskID      string
	ProductID   string
	Window      Window
	OverlapDays int
}

// FindConflicts returns every scheduled task overlapping the candidate, largest
// overlap first. excludeTaskID skips the task being edited.
func FindConflicts(candidate Window, scheduled []Scheduled, excludeTaskID string) []Conflict {
	conflicts := make([]Conflict, 0)
	for _, s := range scheduled {
		if excludeTaskID != "" && s.TaskID == excludeTaskID {
			continue
		}
		if !Overlaps(candidate, s.Window) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			TaskID:      s.TaskID,
			ProductID:   s.ProductID,
			Window:      s.Window,
			OverlapDays: OverlapDays(candidate, s.Window),
		})
	}
	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].OverlapDays > conflicts[j].OverlapDays
	})
	return conflicts
}

package production

import "fmt"

// TaskStatus represents the execution state of a production task
type TaskStatus string

const (
	// TaskStatusPending - Created, nothing produced yet. Only state that allows deletion.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusInProgress - Production running
	TaskStatusInProgress TaskStatus = "in_progress"

	// TaskStatusPaused - Production halted, registrations rejected until resumed
	TaskStatusPaused TaskStatus = "paused"

	// TaskStatusCompleted - Terminal. Reopened only by a quality correction.
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusCancelled - Terminal. Credited quantities stay in stock.
	TaskStatusCancelled TaskStatus = "cancelled"
)

// TaskStatusCount is the number of execution states. Lookup tables indexed by
// Ordinal must have exactly this many entries.
const TaskStatusCount = 5

var taskStatuses = [TaskStatusCount]TaskStatus{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusPaused,
	TaskStatusCompleted,
	TaskStatusCancelled,
}

// AllTaskStatuses returns every status in lifecycle order
func AllTaskStatuses() []TaskStatus {
	out := make([]TaskStatus, TaskStatusCount)
	copy(out, taskStatuses[:])
	return out
}

// ParseTaskStatus converts a raw string into a TaskStatus
func ParseTaskStatus(s string) (TaskStatus, error) {
	for _, status := range taskStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", NewValidationError("status", fmt.Sprintf("unknown task status %q", s))
}

// Ordinal returns the position of the status in lifecycle order, or -1 if unknown
func (s TaskStatus) Ordinal() int {
	for i, status := range taskStatuses {
		if status == s {
			return i
		}
	}
	return -1
}

// IsValid reports whether s is one of the known statuses
func (s TaskStatus) IsValid() bool {
	return s.Ordinal() >= 0
}

// IsTerminal reports whether no further lifecycle transition is allowed
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// IsActive reports whether the task can receive production
func (s TaskStatus) IsActive() bool {
	return s == TaskStatusPending || s == TaskStatusInProgress
}

func (s TaskStatus) String() string {
	return string(s)
}

// PlanningStatus is a scheduling tag, independent of the execution status
type PlanningStatus string

const (
	PlanningStatusDraft     PlanningStatus = "draft"
	PlanningStatusConfirmed PlanningStatus = "confirmed"
	PlanningStatusStarted   PlanningStatus = "started"
	PlanningStatusCompleted PlanningStatus = "completed"
)

// ParsePlanningStatus converts a raw string into a PlanningStatus
func ParsePlanningStatus(s string) (PlanningStatus, error) {
	switch PlanningStatus(s) {
	case PlanningStatusDraft, PlanningStatusConfirmed, PlanningStatusStarted, PlanningStatusCompleted:
		return PlanningStatus(s), nil
	default:
		return "", NewValidationError("planningStatus", fmt.Sprintf("unknown planning status %q", s))
	}
}

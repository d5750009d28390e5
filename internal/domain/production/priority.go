package production

import "fmt"

// Priority orders tasks competing for the same production output.
// Higher values are served first.
type Priority int

const (
	PriorityLow      Priority = 1
	PriorityBelow    Priority = 2
	PriorityNormal   Priority = 3
	PriorityHigh     Priority = 4
	PriorityCritical Priority = 5
)

// DefaultPriority is applied when a task is created without one
const DefaultPriority = PriorityNormal

// PriorityCount is the number of priority levels
const PriorityCount = 5

// NewPriority validates a raw priority value
func NewPriority(value int) (Priority, error) {
	p := Priority(value)
	if !p.IsValid() {
		return 0, NewValidationError("priority", fmt.Sprintf("must be between %d and %d, got %d", PriorityLow, PriorityCritical, value))
	}
	return p, nil
}

// IsValid reports whether the priority is within 1..5
func (p Priority) IsValid() bool {
	return p >= PriorityLow && p <= PriorityCritical
}

// Ordinal returns the zero-based index of the priority, suitable for lookup tables
func (p Priority) Ordinal() int {
	return int(p) - int(PriorityLow)
}

func (p Priority) Int() int {
	return int(p)
}

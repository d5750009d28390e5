package production

import (
	"fmt"
	"sort"
)

// RowStatus classifies the outcome of one bulk registration row
type RowStatus string

const (
	RowStatusSuccess RowStatus = "success"
	RowStatusWarning RowStatus = "warning"
	RowStatusError   RowStatus = "error"
)

// Allocation is the share of a production output assigned to one task
type Allocation struct {
	Task  *ProductionTask
	Delta Quantities
}

// AllocationPlan distributes one production output across candidate tasks
type AllocationPlan struct {
	Allocations []Allocation

	// Surplus is quality output left after every candidate was satisfied
	Surplus int

	// UnallocatedDefect is defect output that found no task to attach to
	UnallocatedDefect int
}

// Status returns success when everything was absorbed by tasks, warning otherwise
func (p AllocationPlan) Status() RowStatus {
	if len(p.Allocations) == 0 || p.Surplus > 0 || p.UnallocatedDefect > 0 {
		return RowStatusWarning
	}
	return RowStatusSuccess
}

// Describe renders a short human-readable summary of the plan
func (p AllocationPlan) Describe() string {
	if len(p.Allocations) == 0 {
		if p.Surplus > 0 {
			return fmt.Sprintf("no active task, %d units recorded as overproduction", p.Surplus)
		}
		return "no active task"
	}
	msg := fmt.Sprintf("allocated to %d task(s)", len(p.Allocations))
	if p.Surplus > 0 {
		msg += fmt.Sprintf(", %d units recorded as overproduction", p.Surplus)
	}
	if p.UnallocatedDefect > 0 {
		msg += fmt.Sprintf(", %d defective units unassigned", p.UnallocatedDefect)
	}
	return msg
}

// SelectCandidates keeps tasks able to receive production (pending or
// in_progress) and orders them by priority descending, then sort order, then
// creation time.
func SelectCandidates(tasks []*ProductionTask) []*ProductionTask {
	candidates := make([]*ProductionTask, 0, len(tasks))
	for _, t := range tasks {
		if t.Status().IsActive() {
			candidates = append(candidates, t)
		}
	}
	SortByQueueOrder(candidates)
	return candidates
}

// SortByQueueOrder sorts tasks the way the production queue serves them
func SortByQueueOrder(tasks []*ProductionTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Priority() != b.Priority() {
			return a.Priority() > b.Priority()
		}
		if a.SortOrder() != b.SortOrder() {
			return a.SortOrder() < b.SortOrder()
		}
		return a.CreatedAt().Before(b.CreatedAt())
	})
}

// PlanAllocation greedily distributes output across candidates in order.
// Each candidate receives quality up to its remaining quantity. Defects are
// booked on the first task that received quality, or the first candidate
// when no quality was allocated.
func PlanAllocation(candidates []*ProductionTask, output Quantities) (AllocationPlan, error) {
	if err := output.ValidateAbsolute(); err != nil {
		return AllocationPlan{}, err
	}
	if output.IsZero() {
		return AllocationPlan{}, NewValidationError("quantities", "production output must not be zero")
	}

	plan := AllocationPlan{}
	remaining := output.Quality
	for _, candidate := range candidates {
		if remaining == 0 {
			break
		}
		capacity := candidate.RemainingQuantity()
		if capacity <= 0 {
			continue
		}
		take := capacity
		if remaining < take {
			take = remaining
		}
		plan.Allocations = append(plan.Allocations, Allocation{
			Task:  candidate,
			Delta: Quantities{Produced: take, Quality: take},
		})
		remaining -= take
	}
	plan.Surplus = remaining

	if output.Defect > 0 {
		switch {
		case len(plan.Allocations) > 0:
			plan.Allocations[0].Delta.Defect += output.Defect
			plan.Allocations[0].Delta.Produced += output.Defect
		case len(candidates) > 0:
			plan.Allocations = append(plan.Allocations, Allocation{
				Task:  candidates[0],
				Delta: Quantities{Produced: output.Defect, Defect: output.Defect},
			})
		default:
			plan.UnallocatedDefect = output.Defect
		}
	}

	return plan, nil
}

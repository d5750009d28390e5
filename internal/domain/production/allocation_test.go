package production_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
)

func newTaskWithPriority(t *testing.T, requested int, priority production.Priority, createdAt time.Time) *production.ProductionTask {
	t.Helper()
	task, err := production.NewProductionTask(production.TaskDraft{
		ProductID:         "prod-1",
		RequestedQuantity: requested,
		Priority:          priority,
		PlannedStartDate:  date(10),
		PlannedEndDate:    date(12),
	}, createdAt)
	require.NoError(t, err)
	return task
}

func TestSelectCandidates_Ordering(t *testing.T) {
	low := newTaskWithPriority(t, 10, production.PriorityNormal, baseTime)
	critical := newTaskWithPriority(t, 10, production.PriorityCritical, baseTime.Add(time.Hour))
	olderNormal := newTaskWithPriority(t, 10, production.PriorityNormal, baseTime.Add(-time.Hour))
	paused := newTaskWithPriority(t, 10, production.PriorityCritical, baseTime)
	require.NoError(t, paused.Start("bob", baseTime))
	require.NoError(t, paused.Pause(baseTime))

	candidates := production.SelectCandidates([]*production.ProductionTask{low, paused, critical, olderNormal})

	require.Len(t, candidates, 3)
	assert.Equal(t, critical.ID(), candidates[0].ID())
	assert.Equal(t, olderNormal.ID(), candidates[1].ID())
	assert.Equal(t, low.ID(), candidates[2].ID())
}

func TestPlanAllocation_PriorityScenario(t *testing.T) {
	high := newTaskWithPriority(t, 20, production.PriorityCritical, baseTime)
	normal := newTaskWithPriority(t, 20, production.PriorityNormal, baseTime)
	candidates := production.SelectCandidates([]*production.ProductionTask{normal, high})

	plan, err := production.PlanAllocation(candidates, production.Quantities{Produced: 30, Quality: 30})

	require.NoError(t, err)
	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, high.ID(), plan.Allocations[0].Task.ID())
	assert.Equal(t, 20, plan.Allocations[0].Delta.Quality)
	assert.Equal(t, normal.ID(), plan.Allocations[1].Task.ID())
	assert.Equal(t, 10, plan.Allocations[1].Delta.Quality)
	assert.Equal(t, 0, plan.Surplus)
	assert.Equal(t, production.RowStatusSuccess, plan.Status())
}

func TestPlanAllocation_SurplusAndDefects(t *testing.T) {
	task := newTaskWithPriority(t, 10, production.PriorityNormal, baseTime)

	plan, err := production.PlanAllocation([]*production.ProductionTask{task}, production.Quantities{Produced: 18, Quality: 15, Defect: 3})

	require.NoError(t, err)
	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, production.Quantities{Produced: 13, Quality: 10, Defect: 3}, plan.Allocations[0].Delta)
	assert.Equal(t, 5, plan.Surplus)
	assert.Equal(t, production.RowStatusWarning, plan.Status())
	assert.Contains(t, plan.Describe(), "5 units")
}

func TestPlanAllocation_NoCandidates(t *testing.T) {
	plan, err := production.PlanAllocation(nil, production.Quantities{Produced: 7, Quality: 5, Defect: 2})

	require.NoError(t, err)
	assert.Empty(t, plan.Allocations)
	assert.Equal(t, 5, plan.Surplus)
	assert.Equal(t, 2, plan.UnallocatedDefect)
	assert.Equal(t, production.RowStatusWarning, plan.Status())
}

func TestPlanAllocation_DefectsOnly(t *testing.T) {
	task := newTaskWithPriority(t, 10, production.PriorityNormal, baseTime)

	plan, err := production.PlanAllocation([]*production.ProductionTask{task}, production.Quantities{Produced: 4, Defect: 4})

	require.NoError(t, err)
	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, production.Quantities{Produced: 4, Defect: 4}, plan.Allocations[0].Delta)
}

func TestPlanAllocation_RejectsInvalidOutput(t *testing.T) {
	_, err := production.PlanAllocation(nil, production.Quantities{Produced: 5, Quality: 4})
	assert.True(t, production.IsValidationError(err))

	_, err = production.PlanAllocation(nil, production.Quantities{Produced: -1, Quality: -1})
	assert.True(t, production.IsValidationError(err))

	_, err = production.PlanAllocation(nil, production.Quantities{})
	assert.True(t, production.IsValidationError(err))
}

func TestPlanAllocation_AppliedAllocationsCompleteTasks(t *testing.T) {
	high := newTaskWithPriority(t, 20, production.PriorityCritical, baseTime)
	normal := newTaskWithPriority(t, 20, production.PriorityNormal, baseTime)
	candidates := production.SelectCandidates([]*production.ProductionTask{normal, high})

	plan, err := production.PlanAllocation(candidates, production.Quantities{Produced: 30, Quality: 30})
	require.NoError(t, err)
	for _, a := range plan.Allocations {
		_, err := a.Task.RegisterDelta(a.Delta, "bob", baseTime)
		require.NoError(t, err)
	}

	assert.Equal(t, production.TaskStatusCompleted, high.Status())
	assert.Equal(t, production.TaskStatusInProgress, normal.Status())
	assert.Equal(t, 10, normal.QualityQuantity())
}

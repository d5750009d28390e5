package production_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
)

var baseTime = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func date(day int) *time.Time {
	d := time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func newTask(t *testing.T, requested int) *production.ProductionTask {
	t.Helper()
	task, err := production.NewProductionTask(production.TaskDraft{
		ProductID:         "prod-1",
		RequestedQuantity: requested,
		PlannedStartDate:  date(10),
		PlannedEndDate:    date(12),
		CreatedBy:         "alice",
	}, baseTime)
	require.NoError(t, err)
	return task
}

func assertLedger(t *testing.T, task *production.ProductionTask) {
	t.Helper()
	assert.Equal(t, task.ProducedQuantity(), task.QualityQuantity()+task.DefectQuantity(), "quality + defect must equal produced")
	if task.QualityQuantity() >= task.RequestedQuantity() {
		assert.Equal(t, production.TaskStatusCompleted, task.Status())
	}
}

func TestNewProductionTask_Defaults(t *testing.T) {
	task := newTask(t, 100)

	assert.NotEmpty(t, task.ID())
	assert.Equal(t, production.TaskStatusPending, task.Status())
	assert.Equal(t, production.PlanningStatusDraft, task.PlanningStatus())
	assert.Equal(t, production.DefaultPriority, task.Priority())
	assert.Equal(t, 100, task.RemainingQuantity())
	assert.Equal(t, "alice", task.CreatedBy())
}

func TestNewProductionTask_Validation(t *testing.T) {
	tests := []struct {
		name  string
		draft production.TaskDraft
		field string
	}{
		{"missing product", production.TaskDraft{RequestedQuantity: 1, PlannedStartDate: date(1), PlannedEndDate: date(2)}, "productId"},
		{"zero quantity", production.TaskDraft{ProductID: "p", PlannedStartDate: date(1), PlannedEndDate: date(2)}, "requestedQuantity"},
		{"missing start", production.TaskDraft{ProductID: "p", RequestedQuantity: 1, PlannedEndDate: date(2)}, "plannedStartDate"},
		{"missing end", production.TaskDraft{ProductID: "p", RequestedQuantity: 1, PlannedStartDate: date(2)}, "plannedEndDate"},
		{"end before start", production.TaskDraft{ProductID: "p", RequestedQuantity: 1, PlannedStartDate: date(5), PlannedEndDate: date(4)}, "plannedEndDate"},
		{"bad priority", production.TaskDraft{ProductID: "p", RequestedQuantity: 1, Priority: 9, PlannedStartDate: date(1), PlannedEndDate: date(2)}, "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := production.NewProductionTask(tt.draft, baseTime)
			require.Error(t, err)
			assert.True(t, production.IsValidationError(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestNewProductionTask_SameDayWindow(t *testing.T) {
	start := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

	task, err := production.NewProductionTask(production.TaskDraft{
		ProductID: "p", RequestedQuantity: 5, PlannedStartDate: &start, PlannedEndDate: &end,
	}, baseTime)

	require.NoError(t, err)
	assert.Equal(t, *date(10), *task.PlannedStartDate())
	assert.Equal(t, *date(10), *task.PlannedEndDate())
}

func TestProductionTask_StartOnlyFromPending(t *testing.T) {
	task := newTask(t, 10)

	require.NoError(t, task.Start("bob", baseTime))
	assert.Equal(t, production.TaskStatusInProgress, task.Status())
	assert.Equal(t, "bob", task.StartedBy())
	require.NotNil(t, task.StartedAt())

	err := task.Start("bob", baseTime)
	var transition *production.ErrInvalidTaskTransition
	require.ErrorAs(t, err, &transition)
	assert.True(t, production.IsStateError(err))
}

func TestProductionTask_PauseResume(t *testing.T) {
	task := newTask(t, 10)

	assert.Error(t, task.Pause(baseTime), "pending task cannot be paused")

	require.NoError(t, task.Start("bob", baseTime))
	require.NoError(t, task.Pause(baseTime))
	assert.Equal(t, production.TaskStatusPaused, task.Status())
	assert.Error(t, task.Pause(baseTime))

	require.NoError(t, task.Resume(baseTime))
	assert.Equal(t, production.TaskStatusInProgress, task.Status())
	assert.Error(t, task.Resume(baseTime))
}

func TestProductionTask_CancelKeepsQuantities(t *testing.T) {
	task := newTask(t, 100)
	_, err := task.RegisterDelta(production.Quantities{Produced: 30, Quality: 25, Defect: 5}, "bob", baseTime)
	require.NoError(t, err)

	err = task.Cancel("carol", "bad", baseTime)
	require.Error(t, err)
	assert.True(t, production.IsValidationError(err))

	require.NoError(t, task.Cancel("carol", "machine broke down", baseTime))
	assert.Equal(t, production.TaskStatusCancelled, task.Status())
	assert.Equal(t, 25, task.QualityQuantity())
	assert.Equal(t, 30, task.ProducedQuantity())
	assert.Equal(t, "carol", task.CancelledBy())

	assert.Error(t, task.Cancel("carol", "second attempt", baseTime))
}

func TestProductionTask_EnsureDeletable(t *testing.T) {
	task := newTask(t, 10)
	assert.NoError(t, task.EnsureDeletable())

	require.NoError(t, task.Start("bob", baseTime))
	err := task.EnsureDeletable()
	var notDeletable *production.ErrTaskNotDeletable
	require.ErrorAs(t, err, &notDeletable)
	assert.Equal(t, production.TaskStatusInProgress, notDeletable.Status)

	require.NoError(t, task.Cancel("bob", "no longer needed", baseTime))
	assert.Error(t, task.EnsureDeletable())
}

func TestProductionTask_PartialRegistrationScenario(t *testing.T) {
	task := newTask(t, 100)

	// +60 quality keeps the task running
	result, err := task.RegisterDelta(production.Quantities{Produced: 60, Quality: 60}, "bob", baseTime)
	require.NoError(t, err)
	assert.Equal(t, production.TaskStatusInProgress, task.Status())
	assert.Equal(t, 60, task.ProducedQuantity())
	assert.Equal(t, 60, task.QualityQuantity())
	assert.False(t, result.WasCompleted)
	assert.Equal(t, 40, result.RemainingQuantity)
	assert.Equal(t, 0, result.OverproductionQuantity)
	assertLedger(t, task)

	// +50 quality crosses the threshold with 10 surplus
	result, err = task.RegisterDelta(production.Quantities{Produced: 50, Quality: 50}, "bob", baseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, production.TaskStatusCompleted, task.Status())
	assert.Equal(t, 110, task.ProducedQuantity())
	assert.Equal(t, 110, task.QualityQuantity())
	assert.True(t, result.WasCompleted)
	assert.Equal(t, 0, result.RemainingQuantity)
	assert.Equal(t, 10, result.OverproductionQuantity)
	assert.Equal(t, "bob", task.CompletedBy())
	require.NotNil(t, task.CompletedAt())
	assertLedger(t, task)
}

func TestProductionTask_CorrectionReopensCompletedTask(t *testing.T) {
	task := newTask(t, 50)
	_, err := task.RegisterDelta(production.Quantities{Produced: 50, Quality: 50}, "bob", baseTime)
	require.NoError(t, err)
	require.Equal(t, production.TaskStatusCompleted, task.Status())

	delta, err := production.NewQuantities(nil, -10, 0)
	require.NoError(t, err)

	result, err := task.RegisterDelta(delta, "bob", baseTime)

	require.NoError(t, err)
	assert.True(t, result.Reopened)
	assert.False(t, result.WasCompleted)
	assert.Equal(t, 40, task.QualityQuantity())
	assert.Equal(t, 40, task.ProducedQuantity())
	assert.Equal(t, production.TaskStatusInProgress, task.Status())
	assert.Nil(t, task.CompletedAt())
	assert.Empty(t, task.CompletedBy())
	assertLedger(t, task)
}

func TestProductionTask_CorrectionAboveThresholdKeepsCompleted(t *testing.T) {
	task := newTask(t, 50)
	_, err := task.RegisterDelta(production.Quantities{Produced: 60, Quality: 60}, "bob", baseTime)
	require.NoError(t, err)

	result, err := task.RegisterDelta(production.Quantities{Produced: -5, Quality: -5}, "bob", baseTime)

	require.NoError(t, err)
	assert.False(t, result.Reopened)
	assert.Equal(t, production.TaskStatusCompleted, task.Status())
	assert.Equal(t, -5, result.OverproductionDelta)
	assert.Equal(t, 0, result.OverproductionQuantity)
}

func TestProductionTask_RegisterDeltaRejections(t *testing.T) {
	t.Run("zero delta", func(t *testing.T) {
		task := newTask(t, 10)
		_, err := task.RegisterDelta(production.Quantities{}, "bob", baseTime)
		require.Error(t, err)
		assert.True(t, production.IsValidationError(err))
		assert.Equal(t, production.TaskStatusPending, task.Status())
	})

	t.Run("sum mismatch", func(t *testing.T) {
		task := newTask(t, 10)
		_, err := task.RegisterDelta(production.Quantities{Produced: 5, Quality: 3, Defect: 1}, "bob", baseTime)
		require.Error(t, err)
		assert.True(t, production.IsValidationError(err))
		assert.Equal(t, 0, task.ProducedQuantity())
	})

	t.Run("correction exceeds recorded", func(t *testing.T) {
		task := newTask(t, 10)
		_, err := task.RegisterDelta(production.Quantities{Produced: 4, Quality: 3, Defect: 1}, "bob", baseTime)
		require.NoError(t, err)

		_, err = task.RegisterDelta(production.Quantities{Produced: -2, Defect: -2}, "bob", baseTime)
		require.Error(t, err)
		assert.True(t, production.IsValidationError(err))
		assert.Equal(t, 1, task.DefectQuantity())
		assert.Equal(t, 4, task.ProducedQuantity())
	})

	t.Run("paused", func(t *testing.T) {
		task := newTask(t, 10)
		require.NoError(t, task.Start("bob", baseTime))
		require.NoError(t, task.Pause(baseTime))
		_, err := task.RegisterDelta(production.Quantities{Produced: 1, Quality: 1}, "bob", baseTime)
		var rejected *production.ErrRegistrationRejected
		require.ErrorAs(t, err, &rejected)
	})

	t.Run("cancelled", func(t *testing.T) {
		task := newTask(t, 10)
		require.NoError(t, task.Cancel("bob", "order withdrawn", baseTime))
		_, err := task.RegisterDelta(production.Quantities{Produced: 1, Quality: 1}, "bob", baseTime)
		assert.True(t, production.IsStateError(err))
	})

	t.Run("addition on completed", func(t *testing.T) {
		task := newTask(t, 10)
		_, err := task.RegisterDelta(production.Quantities{Produced: 10, Quality: 10}, "bob", baseTime)
		require.NoError(t, err)
		_, err = task.RegisterDelta(production.Quantities{Produced: 1, Quality: 1}, "bob", baseTime)
		assert.True(t, production.IsStateError(err))
	})
}

func TestProductionTask_CompletedTaskAcceptsReclassification(t *testing.T) {
	// Arrange
	task := newTask(t, 10)
	_, err := task.RegisterDelta(production.Quantities{Produced: 10, Quality: 10}, "bob", baseTime)
	require.NoError(t, err)
	require.Equal(t, production.TaskStatusCompleted, task.Status())

	// Act
	result, err := task.RegisterDelta(production.Quantities{Quality: -5, Defect: 5}, "bob", baseTime)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, -5, result.QualityDelta())
	assert.True(t, result.Reopened)
	assert.Equal(t, production.TaskStatusInProgress, task.Status())
	assert.Equal(t, 10, task.ProducedQuantity())
	assert.Equal(t, 5, task.QualityQuantity())
	assert.Equal(t, 5, task.DefectQuantity())
	assertLedger(t, task)
}

func TestProductionTask_CompletedTaskRejectsNewDefects(t *testing.T) {
	task := newTask(t, 100)
	_, err := task.Complete(production.Quantities{Produced: 70, Quality: 70}, "bob", "", baseTime)
	require.NoError(t, err)

	_, err = task.RegisterDelta(production.Quantities{Produced: 2, Defect: 2}, "bob", baseTime)

	assert.True(t, production.IsStateError(err))
	assert.Equal(t, production.TaskStatusCompleted, task.Status())
	assert.Equal(t, 70, task.ProducedQuantity())
}

func TestProductionTask_RegisterDeltaStartsPendingTask(t *testing.T) {
	task := newTask(t, 10)

	_, err := task.RegisterDelta(production.Quantities{Produced: 2, Quality: 2}, "bob", baseTime)

	require.NoError(t, err)
	assert.Equal(t, production.TaskStatusInProgress, task.Status())
	assert.Equal(t, "bob", task.StartedBy())
}

func TestProductionTask_CompleteBelowRequested(t *testing.T) {
	task := newTask(t, 100)

	result, err := task.Complete(production.Quantities{Produced: 80, Quality: 70, Defect: 10}, "bob", "line stopped early", baseTime)

	require.NoError(t, err)
	assert.True(t, result.WasCompleted)
	assert.Equal(t, production.TaskStatusCompleted, task.Status())
	assert.Equal(t, 30, task.RemainingQuantity())
	assert.Equal(t, "line stopped early", task.CompletionNote())
	require.NotNil(t, task.StartedAt())
	assertLedger(t, task)

	_, err = task.Complete(production.Quantities{Produced: 1, Quality: 1}, "bob", "", baseTime)
	assert.True(t, production.IsStateError(err))
}

func TestProductionTask_CompleteRejectsInconsistentSplit(t *testing.T) {
	task := newTask(t, 100)

	_, err := task.Complete(production.Quantities{Produced: 80, Quality: 70}, "bob", "", baseTime)

	require.Error(t, err)
	assert.True(t, production.IsValidationError(err))
	assert.Equal(t, production.TaskStatusPending, task.Status())
}

func TestProductionTask_OverrideQuality(t *testing.T) {
	task := newTask(t, 20)
	_, err := task.RegisterDelta(production.Quantities{Produced: 12, Quality: 10, Defect: 2}, "bob", baseTime)
	require.NoError(t, err)

	result, err := task.OverrideQuality(20, nil, "bob", baseTime)

	require.NoError(t, err)
	assert.True(t, result.WasCompleted)
	assert.Equal(t, 22, task.ProducedQuantity())
	assert.Equal(t, 2, task.DefectQuantity())
	assertLedger(t, task)

	defect := 0
	result, err = task.OverrideQuality(15, &defect, "bob", baseTime)
	require.NoError(t, err)
	assert.True(t, result.Reopened)
	assert.Equal(t, 15, task.ProducedQuantity())
	assert.Equal(t, production.TaskStatusInProgress, task.Status())

	_, err = task.OverrideQuality(-1, nil, "bob", baseTime)
	assert.True(t, production.IsValidationError(err))
}

func TestProductionTask_UpdateLockedAfterStart(t *testing.T) {
	task := newTask(t, 20)
	qty := 30
	priority := 5

	require.NoError(t, task.Update(production.TaskChanges{RequestedQuantity: &qty, Priority: &priority}, baseTime))
	assert.Equal(t, 30, task.RequestedQuantity())
	assert.Equal(t, production.PriorityCritical, task.Priority())

	require.NoError(t, task.Start("bob", baseTime))

	err := task.Update(production.TaskChanges{RequestedQuantity: &qty}, baseTime)
	var locked *production.ErrFieldLocked
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, "requestedQuantity", locked.Field)

	confirmed := production.PlanningStatusConfirmed
	require.NoError(t, task.Update(production.TaskChanges{PlanningStatus: &confirmed}, baseTime))
	assert.Equal(t, production.PlanningStatusConfirmed, task.PlanningStatus())
}

func TestProductionTask_UpdatePlanningWindow(t *testing.T) {
	task := newTask(t, 20)

	err := task.Update(production.TaskChanges{PlannedEndDate: date(1)}, baseTime)
	assert.True(t, production.IsValidationError(err))
	assert.Equal(t, *date(12), *task.PlannedEndDate(), "rejected update leaves the task untouched")

	require.NoError(t, task.Update(production.TaskChanges{ClearPlannedStart: true}, baseTime))
	assert.Nil(t, task.PlannedStartDate())
	assert.NotNil(t, task.PlannedEndDate())
}

func TestReconstructProductionTask_RoundTrip(t *testing.T) {
	task := newTask(t, 20)
	_, err := task.RegisterDelta(production.Quantities{Produced: 5, Quality: 4, Defect: 1}, "bob", baseTime)
	require.NoError(t, err)

	rebuilt, err := production.ReconstructProductionTask(task.Snapshot())

	require.NoError(t, err)
	assert.Equal(t, task.Snapshot(), rebuilt.Snapshot())
}

func TestReconstructProductionTask_RejectsBrokenLedger(t *testing.T) {
	snapshot := newTask(t, 20).Snapshot()
	snapshot.ProducedQuantity = 3

	_, err := production.ReconstructProductionTask(snapshot)

	assert.Error(t, err)
}

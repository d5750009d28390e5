package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/shopfloor-go/internal/application/common"
	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/commands"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
	"github.com/andrescamacho/shopfloor-go/test/helpers"
)

func setup(t *testing.T) (*helpers.ProductionFixture, context.Context) {
	t.Helper()
	f := helpers.NewProductionFixture(t)
	require.NoError(t, f.SeedProduct("prod-1", "ART-1"))
	require.NoError(t, f.SeedProduct("prod-2", "ART-2"))
	ctx := common.WithActor(context.Background(), shared.MustNewActorID("planner"))
	return f, ctx
}

func createTask(t *testing.T, f *helpers.ProductionFixture, ctx context.Context, productID string, requested, priority int) string {
	t.Helper()
	start, end := f.Day(0), f.Day(2)
	id, err := f.CreateTask(ctx, &commands.CreateTaskCommand{
		ProductID:         productID,
		RequestedQuantity: requested,
		Priority:          priority,
		PlannedStartDate:  &start,
		PlannedEndDate:    &end,
	})
	require.NoError(t, err)
	return id
}

func intPtr(v int) *int { return &v }

func TestCreateTask_AssignsQueuePositionAndActor(t *testing.T) {
	// Arrange
	f, ctx := setup(t)

	// Act
	first := createTask(t, f, ctx, "prod-1", 10, 0)
	second := createTask(t, f, ctx, "prod-2", 10, 5)

	// Assert
	a, err := f.Task(first)
	require.NoError(t, err)
	b, err := f.Task(second)
	require.NoError(t, err)
	assert.Equal(t, 1, a.SortOrder())
	assert.Equal(t, 2, b.SortOrder())
	assert.Equal(t, production.DefaultPriority, a.Priority())
	assert.Equal(t, production.PriorityCritical, b.Priority())
	assert.Equal(t, "planner", a.CreatedBy())
}

func TestCreateTask_UnknownProductIsValidationError(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	start, end := f.Day(0), f.Day(1)

	// Act
	_, err := f.CreateTask(ctx, &commands.CreateTaskCommand{
		ProductID:         "nope",
		RequestedQuantity: 5,
		PlannedStartDate:  &start,
		PlannedEndDate:    &end,
	})

	// Assert
	assert.True(t, production.IsValidationError(err))
}

func TestTransitions_StartPauseResumeCancel(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	id := createTask(t, f, ctx, "prod-1", 10, 0)

	// Act
	_, err := mediator.Send[*commands.TaskResponse](ctx, f.Mediator, &commands.StartTaskCommand{TaskID: id})
	require.NoError(t, err)
	_, err = mediator.Send[*commands.TaskResponse](ctx, f.Mediator, &commands.PauseTaskCommand{TaskID: id})
	require.NoError(t, err)
	_, err = mediator.Send[*commands.TaskResponse](ctx, f.Mediator, &commands.ResumeTaskCommand{TaskID: id})
	require.NoError(t, err)
	resp, err := mediator.Send[*commands.TaskResponse](ctx, f.Mediator, &commands.CancelTaskCommand{TaskID: id, Reason: "machine broke down"})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, string(production.TaskStatusCancelled), resp.Task.Status)
	assert.Equal(t, "machine broke down", resp.Task.CancelReason)

	_, err = mediator.Send[*commands.TaskResponse](ctx, f.Mediator, &commands.ResumeTaskCommand{TaskID: id})
	assert.True(t, production.IsStateError(err))
}

func TestTransitions_UnknownTaskIsNotFound(t *testing.T) {
	// Arrange
	f, ctx := setup(t)

	// Act
	_, err := mediator.Send[*commands.TaskResponse](ctx, f.Mediator, &commands.StartTaskCommand{TaskID: "missing"})

	// Assert
	assert.True(t, production.IsNotFound(err))
}

func TestDeleteTask_OnlyWhilePending(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	pending := createTask(t, f, ctx, "prod-1", 10, 0)
	started := createTask(t, f, ctx, "prod-1", 10, 0)
	_, err := mediator.Send[*commands.TaskResponse](ctx, f.Mediator, &commands.StartTaskCommand{TaskID: started})
	require.NoError(t, err)

	// Act
	_, errPending := f.Mediator.Send(ctx, &commands.DeleteTaskCommand{TaskID: pending})
	_, errStarted := f.Mediator.Send(ctx, &commands.DeleteTaskCommand{TaskID: started})

	// Assert
	require.NoError(t, errPending)
	var notDeletable *production.ErrTaskNotDeletable
	require.ErrorAs(t, errStarted, &notDeletable)

	gone, err := f.Tasks.FindByID(ctx, pending)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestUpdateTask_LocksDemandFieldsAfterStart(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	id := createTask(t, f, ctx, "prod-1", 10, 0)

	// Act
	resp, err := mediator.Send[*commands.UpdateTaskResponse](ctx, f.Mediator, &commands.UpdateTaskCommand{
		TaskID:            id,
		RequestedQuantity: intPtr(15),
		Priority:          intPtr(4),
	})
	require.NoError(t, err)
	_, err = mediator.Send[*commands.TaskResponse](ctx, f.Mediator, &commands.StartTaskCommand{TaskID: id})
	require.NoError(t, err)
	_, lockedErr := f.Mediator.Send(ctx, &commands.UpdateTaskCommand{TaskID: id, RequestedQuantity: intPtr(20)})

	// Assert
	assert.Equal(t, 15, resp.Task.RequestedQuantity)
	assert.Equal(t, 4, resp.Task.Priority)
	var locked *production.ErrFieldLocked
	require.ErrorAs(t, lockedErr, &locked)
	assert.Equal(t, "requestedQuantity", locked.Field)
}

func TestUpdateTask_QualityOverrideCompletesAndCreditsStock(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	id := createTask(t, f, ctx, "prod-1", 10, 0)
	_, err := mediator.Send[*commands.TaskResponse](ctx, f.Mediator, &commands.StartTaskCommand{TaskID: id})
	require.NoError(t, err)

	// Act
	resp, err := mediator.Send[*commands.UpdateTaskResponse](ctx, f.Mediator, &commands.UpdateTaskCommand{
		TaskID:          id,
		QualityQuantity: intPtr(12),
		DefectQuantity:  intPtr(1),
	})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, resp.Registration)
	assert.True(t, resp.Registration.WasCompleted)
	assert.Equal(t, 2, resp.Registration.OverproductionQuantity)
	assert.Equal(t, 13, resp.Task.ProducedQuantity)

	movements, err := f.Stock.FindByTask(ctx, id)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, 12, movements[0].Quantity)
}

func TestReorderTasks_ReassignsDenseSequence(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	a := createTask(t, f, ctx, "prod-1", 10, 0)
	b := createTask(t, f, ctx, "prod-1", 10, 0)
	c := createTask(t, f, ctx, "prod-1", 10, 0)

	// Act
	resp, err := mediator.Send[*commands.ReorderTasksResponse](ctx, f.Mediator, &commands.ReorderTasksCommand{
		TaskIDs: []string{c, a, b},
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, resp.Tasks, 3)
	for i, id := range []string{c, a, b} {
		task, err := f.Task(id)
		require.NoError(t, err)
		assert.Equal(t, i+1, task.SortOrder())
	}
}

func TestReorderTasks_ScopeMismatchChangesNothing(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	a := createTask(t, f, ctx, "prod-1", 10, 0)
	b := createTask(t, f, ctx, "prod-1", 10, 0)

	// Act
	_, err := f.Mediator.Send(ctx, &commands.ReorderTasksCommand{TaskIDs: []string{b}})

	// Assert
	assert.True(t, production.IsValidationError(err))
	first, err := f.Task(a)
	require.NoError(t, err)
	assert.Equal(t, 1, first.SortOrder())
}

func TestCancelTask_RejectsLaterRegistration(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	id := createTask(t, f, ctx, "prod-1", 10, 0)
	_, err := f.Mediator.Send(ctx, &commands.CancelTaskCommand{TaskID: id, Reason: "order withdrawn"})
	require.NoError(t, err)
	f.Clock.Advance(time.Minute)

	// Act
	_, err = f.Mediator.Send(ctx, &commands.RegisterProductionCommand{TaskID: id, QualityQuantity: 5})

	// Assert
	var rejected *production.ErrRegistrationRejected
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, production.TaskStatusCancelled, rejected.Status)
}

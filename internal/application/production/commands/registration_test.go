package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/commands"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
)

func TestRegisterProduction_AutoCompletesAndReportsOverproduction(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	id := createTask(t, f, ctx, "prod-1", 100, 0)

	// Act
	first, err := mediator.Send[*commands.RegistrationResponse](ctx, f.Mediator, &commands.RegisterProductionCommand{
		TaskID: id, QualityQuantity: 60,
	})
	require.NoError(t, err)
	second, err := mediator.Send[*commands.RegistrationResponse](ctx, f.Mediator, &commands.RegisterProductionCommand{
		TaskID: id, QualityQuantity: 50,
	})
	require.NoError(t, err)

	// Assert
	assert.False(t, first.Registration.WasCompleted)
	assert.Equal(t, string(production.TaskStatusInProgress), first.Registration.Task.Status)
	assert.Equal(t, 40, first.Registration.RemainingQuantity)

	assert.True(t, second.Registration.WasCompleted)
	assert.Equal(t, 10, second.Registration.OverproductionQuantity)
	assert.Equal(t, 110, second.Registration.Task.ProducedQuantity)
	assert.Equal(t, string(production.TaskStatusCompleted), second.Registration.Task.Status)

	movements, err := f.Stock.FindByTask(ctx, id)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, 60, movements[0].Quantity)
	assert.Equal(t, 50, movements[1].Quantity)
	assert.Equal(t, 10, movements[1].Overproduction)
}

func TestRegisterProduction_CorrectionReopensCompletedTask(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	id := createTask(t, f, ctx, "prod-1", 50, 0)
	_, err := f.Mediator.Send(ctx, &commands.RegisterProductionCommand{TaskID: id, QualityQuantity: 50})
	require.NoError(t, err)

	// Act
	resp, err := mediator.Send[*commands.RegistrationResponse](ctx, f.Mediator, &commands.RegisterProductionCommand{
		TaskID: id, QualityQuantity: -10,
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, resp.Registration.Reopened)
	assert.Equal(t, string(production.TaskStatusInProgress), resp.Registration.Task.Status)
	assert.Equal(t, 40, resp.Registration.Task.QualityQuantity)
	assert.Equal(t, 40, resp.Registration.Task.ProducedQuantity)

	movements, err := f.Stock.FindByTask(ctx, id)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, production.MovementCorrectionOut, movements[1].Type)
	assert.Equal(t, -10, movements[1].Quantity)
}

func TestRegisterProduction_ReclassificationDebitsCompletedTaskStock(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	id := createTask(t, f, ctx, "prod-1", 50, 0)
	_, err := f.Mediator.Send(ctx, &commands.RegisterProductionCommand{TaskID: id, QualityQuantity: 50})
	require.NoError(t, err)

	// Act
	resp, err := mediator.Send[*commands.RegistrationResponse](ctx, f.Mediator, &commands.RegisterProductionCommand{
		TaskID: id, QualityQuantity: -5, DefectQuantity: 5,
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, resp.Registration.Reopened)
	assert.Equal(t, 50, resp.Registration.Task.ProducedQuantity)
	assert.Equal(t, 45, resp.Registration.Task.QualityQuantity)
	assert.Equal(t, 5, resp.Registration.Task.DefectQuantity)

	movements, err := f.Stock.FindByTask(ctx, id)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, production.MovementCorrectionOut, movements[1].Type)
	assert.Equal(t, -5, movements[1].Quantity)
}

func TestRegisterProduction_RejectsInvalidDeltas(t *testing.T) {
	f, ctx := setup(t)
	id := createTask(t, f, ctx, "prod-1", 50, 0)
	_, err := f.Mediator.Send(ctx, &commands.RegisterProductionCommand{TaskID: id, QualityQuantity: 5, DefectQuantity: 1})
	require.NoError(t, err)

	tests := []struct {
		name string
		cmd  *commands.RegisterProductionCommand
	}{
		{"zero delta", &commands.RegisterProductionCommand{TaskID: id}},
		{"correction beyond recorded quality", &commands.RegisterProductionCommand{TaskID: id, QualityQuantity: -6}},
		{"correction beyond recorded defect", &commands.RegisterProductionCommand{TaskID: id, DefectQuantity: -2}},
		{"produced does not match split", &commands.RegisterProductionCommand{TaskID: id, ProducedQuantity: intPtr(3), QualityQuantity: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Mediator.Send(ctx, tt.cmd)
			assert.True(t, production.IsValidationError(err), "got %v", err)
		})
	}

	task, err := f.Task(id)
	require.NoError(t, err)
	assert.Equal(t, production.Quantities{Produced: 6, Quality: 5, Defect: 1}, task.Quantities())
}

func TestRegisterProduction_PausedTaskRejected(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	id := createTask(t, f, ctx, "prod-1", 50, 0)
	_, err := f.Mediator.Send(ctx, &commands.StartTaskCommand{TaskID: id})
	require.NoError(t, err)
	_, err = f.Mediator.Send(ctx, &commands.PauseTaskCommand{TaskID: id})
	require.NoError(t, err)

	// Act
	_, err = f.Mediator.Send(ctx, &commands.RegisterProductionCommand{TaskID: id, QualityQuantity: 5})

	// Assert
	assert.True(t, production.IsStateError(err))
}

func TestCompleteTask_CompletesBelowRequested(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	id := createTask(t, f, ctx, "prod-1", 50, 0)
	_, err := f.Mediator.Send(ctx, &commands.RegisterProductionCommand{TaskID: id, QualityQuantity: 20})
	require.NoError(t, err)

	// Act
	resp, err := mediator.Send[*commands.RegistrationResponse](ctx, f.Mediator, &commands.CompleteTaskCommand{
		TaskID: id, QualityQuantity: 45, DefectQuantity: 3, Notes: "material ran out",
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, resp.Registration.WasCompleted)
	assert.Equal(t, string(production.TaskStatusCompleted), resp.Registration.Task.Status)
	assert.Equal(t, 48, resp.Registration.Task.ProducedQuantity)
	assert.Equal(t, "material ran out", resp.Registration.Task.CompletionNote)

	movements, err := f.Stock.FindByTask(ctx, id)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, 25, movements[1].Quantity)
}

func TestBulkRegister_DistributesByPriority(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	urgent := createTask(t, f, ctx, "prod-1", 20, 5)
	normal := createTask(t, f, ctx, "prod-1", 20, 3)

	// Act
	resp, err := mediator.Send[*commands.BulkRegisterProductionResponse](ctx, f.Mediator, &commands.BulkRegisterProductionCommand{
		Rows: []commands.BulkRow{{Article: "ART-1", QualityQuantity: 30}},
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	row := resp.Rows[0]
	assert.Equal(t, string(production.RowStatusSuccess), row.Status)
	assert.Equal(t, 0, row.Overproduction)
	require.Len(t, row.Allocations, 2)
	assert.Equal(t, urgent, row.Allocations[0].TaskID)
	assert.Equal(t, 20, row.Allocations[0].Quality)
	assert.True(t, row.Allocations[0].Completed)
	assert.Equal(t, normal, row.Allocations[1].TaskID)
	assert.Equal(t, 10, row.Allocations[1].Quality)

	u, err := f.Task(urgent)
	require.NoError(t, err)
	n, err := f.Task(normal)
	require.NoError(t, err)
	assert.Equal(t, production.TaskStatusCompleted, u.Status())
	assert.Equal(t, production.TaskStatusInProgress, n.Status())
	assert.Equal(t, 10, n.QualityQuantity())
}

func TestBulkRegister_UnknownArticleOnlyFailsItsRow(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	a := createTask(t, f, ctx, "prod-1", 20, 0)
	b := createTask(t, f, ctx, "prod-2", 20, 0)

	// Act
	resp, err := mediator.Send[*commands.BulkRegisterProductionResponse](ctx, f.Mediator, &commands.BulkRegisterProductionCommand{
		Rows: []commands.BulkRow{
			{Article: "ART-1", QualityQuantity: 5},
			{Article: "ART-404", QualityQuantity: 7},
			{Article: "ART-2", QualityQuantity: 8, DefectQuantity: 1},
		},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, string(production.RowStatusError), resp.Rows[1].Status)
	assert.Equal(t, 1, resp.Rows[1].Index)

	first, err := f.Task(a)
	require.NoError(t, err)
	second, err := f.Task(b)
	require.NoError(t, err)
	assert.Equal(t, 5, first.QualityQuantity())
	assert.Equal(t, production.Quantities{Produced: 9, Quality: 8, Defect: 1}, second.Quantities())
}

func TestBulkRegister_SurplusWithoutActiveTaskIsWarning(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	id := createTask(t, f, ctx, "prod-1", 10, 0)

	// Act
	resp, err := mediator.Send[*commands.BulkRegisterProductionResponse](ctx, f.Mediator, &commands.BulkRegisterProductionCommand{
		Rows: []commands.BulkRow{
			{Article: "ART-1", QualityQuantity: 14},
			{Article: "ART-2", QualityQuantity: 3},
		},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Warnings)
	assert.Equal(t, 4, resp.Rows[0].Overproduction)
	assert.Empty(t, resp.Rows[1].Allocations)
	assert.Equal(t, 3, resp.Rows[1].Overproduction)

	task, err := f.Task(id)
	require.NoError(t, err)
	assert.Equal(t, production.TaskStatusCompleted, task.Status())

	unallocated, err := f.Stock.FindUnallocatedByProduct(ctx, "prod-2")
	require.NoError(t, err)
	require.Len(t, unallocated, 1)
	assert.Equal(t, 3, unallocated[0].Quantity)
}

func TestCompleteByProduct_DistributesAcrossTasks(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	a := createTask(t, f, ctx, "prod-1", 10, 0)
	b := createTask(t, f, ctx, "prod-1", 10, 0)
	date := f.Day(-1)

	// Act
	resp, err := mediator.Send[*commands.CompleteByProductResponse](ctx, f.Mediator, &commands.CompleteByProductCommand{
		ProductID:       "prod-1",
		QualityQuantity: 15,
		DefectQuantity:  2,
		ProductionDate:  &date,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "ART-1", resp.Distribution.Article)
	require.Len(t, resp.Distribution.Allocations, 2)
	assert.Equal(t, a, resp.Distribution.Allocations[0].TaskID)
	assert.Equal(t, 2, resp.Distribution.Allocations[0].Defect)

	second, err := f.Task(b)
	require.NoError(t, err)
	assert.Equal(t, 5, second.QualityQuantity())

	movements, err := f.Stock.FindByTask(ctx, a)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.True(t, date.Equal(movements[0].ProductionDate))
}

func TestCompleteByProduct_UnknownProduct(t *testing.T) {
	f, ctx := setup(t)

	_, err := f.Mediator.Send(ctx, &commands.CompleteByProductCommand{ProductID: "ghost", QualityQuantity: 1})

	assert.True(t, production.IsNotFound(err))
}

package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/application/planning/queries"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/commands"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/test/helpers"
)

func setup(t *testing.T) (*helpers.ProductionFixture, context.Context) {
	t.Helper()
	f := helpers.NewProductionFixture(t)
	require.NoError(t, f.SeedProduct("prod-1", "ART-1"))
	require.NoError(t, f.SeedProduct("prod-2", "ART-2"))
	return f, context.Background()
}

func planTask(t *testing.T, f *helpers.ProductionFixture, ctx context.Context, productID string, requested, startDay, endDay int) string {
	t.Helper()
	start, end := f.Day(startDay), f.Day(endDay)
	id, err := f.CreateTask(ctx, &commands.CreateTaskCommand{
		ProductID:         productID,
		RequestedQuantity: requested,
		PlannedStartDate:  &start,
		PlannedEndDate:    &end,
	})
	require.NoError(t, err)
	return id
}

func window(f *helpers.ProductionFixture, startDay, endDay int) (*time.Time, *time.Time) {
	start, end := f.Day(startDay), f.Day(endDay)
	return &start, &end
}

func TestCheckOverlaps_ReportsConflictsWithOverlapLength(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	existing := planTask(t, f, ctx, "prod-1", 40, 1, 3)
	planTask(t, f, ctx, "prod-1", 40, 10, 12)
	start, end := window(f, 0, 2)

	// Act
	resp, err := mediator.Send[*queries.CheckOverlapsResponse](ctx, f.Mediator, &queries.CheckOverlapsQuery{
		StartDate: start,
		EndDate:   end,
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, resp.HasConflicts)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, existing, resp.Conflicts[0].TaskID)
	assert.Equal(t, 2, resp.Conflicts[0].OverlapDays)
	assert.Empty(t, resp.Alternatives)
}

func TestCheckOverlaps_SuggestsFreeSlotsOfTheSameLength(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	planTask(t, f, ctx, "prod-1", 40, 1, 3)
	start, end := window(f, 0, 2)

	// Act
	resp, err := mediator.Send[*queries.CheckOverlapsResponse](ctx, f.Mediator, &queries.CheckOverlapsQuery{
		StartDate:    start,
		EndDate:      end,
		Alternatives: true,
	})

	// Assert
	require.NoError(t, err)
	require.NotEmpty(t, resp.Alternatives)
	assert.Equal(t, 4, resp.Alternatives[0].ShiftDays)
	assert.WithinDuration(t, f.Day(4), resp.Alternatives[0].StartDate, 0)
	assert.WithinDuration(t, f.Day(6), resp.Alternatives[0].EndDate, 0)
	for i, slot := range resp.Alternatives {
		assert.False(t, slot.StartDate.Before(f.Day(0)), "slot %d starts before today", i)
		assert.Equal(t, 2*24*time.Hour, slot.EndDate.Sub(slot.StartDate))
		assert.NotEmpty(t, slot.Reason)
		if i > 0 {
			assert.LessOrEqual(t, slot.Confidence, resp.Alternatives[i-1].Confidence)
		}
	}
}

func TestCheckOverlaps_ExcludesTaskAndFiltersByProduct(t *testing.T) {
	f, ctx := setup(t)
	self := planTask(t, f, ctx, "prod-1", 40, 0, 2)
	planTask(t, f, ctx, "prod-2", 40, 0, 2)
	start, end := window(f, 0, 2)

	resp, err := mediator.Send[*queries.CheckOverlapsResponse](ctx, f.Mediator, &queries.CheckOverlapsQuery{
		StartDate:     start,
		EndDate:       end,
		ProductID:     "prod-1",
		ExcludeTaskID: self,
	})

	require.NoError(t, err)
	assert.False(t, resp.HasConflicts)
	assert.Empty(t, resp.Conflicts)
}

func TestCheckOverlaps_IgnoresTerminalTasks(t *testing.T) {
	f, ctx := setup(t)
	id := planTask(t, f, ctx, "prod-1", 40, 0, 2)
	_, err := f.Mediator.Send(ctx, &commands.CancelTaskCommand{TaskID: id, Reason: "customer withdrew"})
	require.NoError(t, err)
	start, end := window(f, 1, 1)

	resp, err := mediator.Send[*queries.CheckOverlapsResponse](ctx, f.Mediator, &queries.CheckOverlapsQuery{
		StartDate: start,
		EndDate:   end,
	})

	require.NoError(t, err)
	assert.False(t, resp.HasConflicts)
}

func TestCheckOverlaps_RejectsInvertedWindow(t *testing.T) {
	f, ctx := setup(t)
	start, end := window(f, 3, 1)

	_, err := mediator.Send[*queries.CheckOverlapsResponse](ctx, f.Mediator, &queries.CheckOverlapsQuery{
		StartDate: start,
		EndDate:   end,
	})

	require.Error(t, err)
}

func TestSuggestPlan_DefaultCapacityWithoutHistory(t *testing.T) {
	f, ctx := setup(t)

	resp, err := mediator.Send[*queries.SuggestPlanResponse](ctx, f.Mediator, &queries.SuggestPlanQuery{
		ProductID: "prod-1",
		Quantity:  120,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, resp.DurationDays)
	assert.Equal(t, 0, resp.QueueDays)
	assert.Equal(t, 0, resp.SampleCount)
	assert.WithinDuration(t, f.Day(0), resp.SuggestedStart, 0)
	assert.WithinDuration(t, f.Day(2), resp.SuggestedEnd, 0)
	assert.NotEmpty(t, resp.Reasoning)
}

func TestSuggestPlan_UsesCompletedHistory(t *testing.T) {
	// Arrange
	f, ctx := setup(t)
	id := planTask(t, f, ctx, "prod-1", 90, 0, 2)
	_, err := f.Mediator.Send(ctx, &commands.StartTaskCommand{TaskID: id})
	require.NoError(t, err)
	f.Clock.Advance(48 * time.Hour)
	_, err = f.Mediator.Send(ctx, &commands.CompleteTaskCommand{TaskID: id, QualityQuantity: 90})
	require.NoError(t, err)

	withoutHistory, err := mediator.Send[*queries.SuggestPlanResponse](ctx, f.Mediator, &queries.SuggestPlanQuery{
		ProductID: "prod-2",
		Quantity:  60,
	})
	require.NoError(t, err)

	// Act
	resp, err := mediator.Send[*queries.SuggestPlanResponse](ctx, f.Mediator, &queries.SuggestPlanQuery{
		ProductID: "prod-1",
		Quantity:  60,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, resp.SampleCount)
	assert.InDelta(t, 30.0, resp.DailyRate, 0.001)
	assert.Equal(t, 2, resp.DurationDays)
	assert.WithinDuration(t, f.Day(2), resp.SuggestedStart, 0)
	assert.Greater(t, resp.Confidence, withoutHistory.Confidence)
}

func TestSuggestPlan_QueuedWorkDelaysStart(t *testing.T) {
	f, ctx := setup(t)
	planTask(t, f, ctx, "prod-1", 100, 0, 1)

	resp, err := mediator.Send[*queries.SuggestPlanResponse](ctx, f.Mediator, &queries.SuggestPlanQuery{
		ProductID: "prod-1",
		Quantity:  50,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.QueueDays)
	assert.WithinDuration(t, f.Day(2), resp.SuggestedStart, 0)
}

func TestSuggestPlan_Rejections(t *testing.T) {
	f, ctx := setup(t)

	_, err := mediator.Send[*queries.SuggestPlanResponse](ctx, f.Mediator, &queries.SuggestPlanQuery{ProductID: "missing", Quantity: 5})
	assert.True(t, production.IsNotFound(err))

	_, err = mediator.Send[*queries.SuggestPlanResponse](ctx, f.Mediator, &queries.SuggestPlanQuery{ProductID: "prod-1", Quantity: 0})
	assert.True(t, production.IsValidationError(err))

	_, err = mediator.Send[*queries.SuggestPlanResponse](ctx, f.Mediator, &queries.SuggestPlanQuery{Quantity: 5})
	assert.True(t, production.IsValidationError(err))
}

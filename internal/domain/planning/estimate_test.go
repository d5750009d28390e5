package planning_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/shopfloor-go/internal/domain/planning"
)

func TestSuggestPlan_FromHistory(t *testing.T) {
	plan, err := planning.SuggestPlan(planning.PlanRequest{
		Quantity: 100,
		History: []planning.ThroughputSample{
			{Quality: 60, Days: 3},
			{Quality: 40, Days: 2},
		},
		Today: day(10),
	})

	require.NoError(t, err)
	assert.InDelta(t, 20.0, plan.DailyRate, 0.001)
	assert.Equal(t, 5, plan.DurationDays)
	assert.Equal(t, day(10), plan.SuggestedStart)
	assert.Equal(t, day(14), plan.SuggestedEnd)
	assert.Equal(t, 2, plan.SampleCount)
	assert.Contains(t, plan.Reasoning, "2 completed task(s)")
}

func TestSuggestPlan_DefaultCapacityAndQueue(t *testing.T) {
	plan, err := planning.SuggestPlan(planning.PlanRequest{
		Quantity:             30,
		QueuedQuantity:       45,
		DefaultDailyCapacity: 20,
		Today:                day(10),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, plan.DurationDays)
	assert.Equal(t, 3, plan.QueueDays)
	assert.Equal(t, day(13), plan.SuggestedStart)
	assert.Contains(t, plan.Reasoning, "No completed history")
}

func TestSuggestPlan_ConfidenceGrowsWithHistory(t *testing.T) {
	var previous float64
	history := []planning.ThroughputSample{}
	for i := 0; i < 6; i++ {
		plan, err := planning.SuggestPlan(planning.PlanRequest{Quantity: 10, History: history, Today: day(1)})
		require.NoError(t, err)
		assert.Greater(t, plan.Confidence, previous)
		assert.LessOrEqual(t, plan.Confidence, 1.0)
		previous = plan.Confidence
		history = append(history, planning.ThroughputSample{Quality: 10, Days: 1})
	}
}

func TestSuggestPlan_RejectsNonPositiveQuantity(t *testing.T) {
	_, err := planning.SuggestPlan(planning.PlanRequest{Quantity: 0, Today: day(1)})
	assert.Error(t, err)
}

func TestSampleFromTask(t *testing.T) {
	s := planning.SampleFromTask(30, day(10).Add(8*time.Hour), day(12))
	assert.Equal(t, 3, s.Days)

	s = planning.SampleFromTask(30, day(12), day(12))
	assert.Equal(t, 1, s.Days)
}

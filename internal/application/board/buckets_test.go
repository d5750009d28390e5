package board_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/shopfloor-go/internal/application/board"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

var today = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func day(offset int) *time.Time {
	d := today.AddDate(0, 0, offset)
	return &d
}

func task(id, status string, start, end *time.Time) *dtos.TaskDTO {
	return &dtos.TaskDTO{ID: id, Status: status, PlannedStartDate: start, PlannedEndDate: end, Priority: 3}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		task   *dtos.TaskDTO
		bucket board.Bucket
		ok     bool
	}{
		{"start before today", task("a", "pending", day(-2), day(3)), board.BucketOverdue, true},
		{"start today", task("b", "in_progress", day(0), day(0)), board.BucketToday, true},
		{"start tomorrow", task("c", "paused", day(1), day(4)), board.BucketTomorrow, true},
		{"start later", task("d", "pending", day(5), day(6)), board.BucketLater, true},
		{"end only in the past", task("e", "pending", nil, day(-1)), board.BucketOverdue, true},
		{"end only tomorrow", task("f", "pending", nil, day(1)), board.BucketTomorrow, true},
		{"no dates", task("g", "pending", nil, nil), board.BucketUnplanned, true},
		{"completed ignores dates", task("h", "completed", day(-10), day(-9)), board.BucketCompleted, true},
		{"cancelled excluded", task("i", "cancelled", day(0), day(1)), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, ok := board.Classify(tt.task, today)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.bucket, bucket)
		})
	}
}

func TestClassify_IgnoresTimeOfDay(t *testing.T) {
	late := today.Add(23 * time.Hour)
	bucket, ok := board.Classify(task("a", "pending", &late, nil), today.Add(2*time.Hour))

	require.True(t, ok)
	assert.Equal(t, board.BucketToday, bucket)
}

func TestGroup(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(today.Add(9 * time.Hour))
	tasks := []*dtos.TaskDTO{
		task("late", "pending", day(-1), day(1)),
		task("now-1", "in_progress", day(0), day(2)),
		task("now-2", "pending", day(0), day(0)),
		task("floating", "pending", nil, nil),
		task("done", "completed", day(-3), day(-2)),
		task("dropped", "cancelled", day(0), day(0)),
	}

	// Act
	groups := board.Group(tasks, clock)

	// Assert
	assert.Equal(t, 5, groups.Count())
	require.Len(t, groups[board.BucketToday], 2)
	assert.Equal(t, "now-1", groups[board.BucketToday][0].ID)
	assert.Equal(t, "now-2", groups[board.BucketToday][1].ID)
	assert.Len(t, groups[board.BucketOverdue], 1)
	assert.Len(t, groups[board.BucketUnplanned], 1)
	assert.Len(t, groups[board.BucketCompleted], 1)
	assert.Empty(t, groups[board.BucketTomorrow])
}

func TestDescribeStatus(t *testing.T) {
	assert.Equal(t, "In progress", board.DescribeStatus("in_progress").Label)
	assert.Equal(t, board.ToneDanger, board.DescribeStatus("cancelled").Tone)
	assert.Equal(t, board.ToneSuccess, board.DescribeStatus("completed").Tone)
	assert.Equal(t, "Unknown", board.DescribeStatus("archived").Label)
}

func TestDescribePriority(t *testing.T) {
	assert.Equal(t, "Critical", board.DescribePriority(5).Label)
	assert.Equal(t, "Low", board.DescribePriority(1).Label)
	assert.Equal(t, "P3", board.DescribePriority(3).Short)
	assert.Equal(t, "Unknown", board.DescribePriority(0).Label)
	assert.Equal(t, "Unknown", board.DescribePriority(6).Label)
}

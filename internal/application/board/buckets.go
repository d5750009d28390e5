package board

import (
	"time"

	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// Bucket is the day group a task is displayed under
type Bucket string

const (
	BucketOverdue   Bucket = "overdue"
	BucketToday     Bucket = "today"
	BucketTomorrow  Bucket = "tomorrow"
	BucketLater     Bucket = "later"
	BucketUnplanned Bucket = "unplanned"
	BucketCompleted Bucket = "completed"
)

// BucketOrder is the display order of the buckets
var BucketOrder = []Bucket{
	BucketOverdue,
	BucketToday,
	BucketTomorrow,
	BucketLater,
	BucketUnplanned,
	BucketCompleted,
}

// Classify places a task relative to today. The second return value is false
// for tasks that belong to no bucket (cancelled).
//
// Open tasks are keyed on their planned start, or on the planned end when no
// start is set.
func Classify(task *dtos.TaskDTO, today time.Time) (Bucket, bool) {
	switch production.TaskStatus(task.Status) {
	case production.TaskStatusCancelled:
		return "", false
	case production.TaskStatusCompleted:
		return BucketCompleted, true
	}

	ref := task.PlannedStartDate
	if ref == nil {
		ref = task.PlannedEndDate
	}
	if ref == nil {
		return BucketUnplanned, true
	}

	switch diff := shared.DaysBetween(today, *ref); {
	case diff < 0:
		return BucketOverdue, true
	case diff == 0:
		return BucketToday, true
	case diff == 1:
		return BucketTomorrow, true
	default:
		return BucketLater, true
	}
}

// Grouping holds tasks by bucket, each bucket keeping the input order
type Grouping map[Bucket][]*dtos.TaskDTO

// Group classifies every task against the clock's current day
func Group(tasks []*dtos.TaskDTO, clock shared.Clock) Grouping {
	today := shared.Today(clock)
	groups := make(Grouping, len(BucketOrder))
	for _, task := range tasks {
		bucket, ok := Classify(task, today)
		if !ok {
			continue
		}
		groups[bucket] = append(groups[bucket], task)
	}
	return groups
}

// Count returns the number of grouped tasks across all buckets
func (g Grouping) Count() int {
	n := 0
	for _, tasks := range g {
		n += len(tasks)
	}
	return n
}

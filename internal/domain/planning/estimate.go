package planning

import (
	"fmt"
	"math"
	"time"

	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// DefaultDailyCapacity is assumed when a product has no completed history
const DefaultDailyCapacity = 50.0

// ThroughputSample is the observed output of one completed task
type ThroughputSample struct {
	Quality int
	Days    int
}

// SampleFromTask converts a finished task into a throughput sample. Elapsed
// time counts whole calendar days, inclusive, with a minimum of one.
func SampleFromTask(quality int, startedAt, completedAt time.Time) ThroughputSample {
	days := shared.DaysBetween(startedAt, completedAt) + 1
	if days < 1 {
		days = 1
	}
	return ThroughputSample{Quality: quality, Days: days}
}

// PlanRequest describes an optimal-plan query for one product
type PlanRequest struct {
	Quantity             int
	History              []ThroughputSample
	QueuedQuantity       int
	DefaultDailyCapacity float64
	Today                time.Time
}

// PlanSuggestion is the estimated duration and start for new production
type PlanSuggestion struct {
	DurationDays   int
	QueueDays      int
	DailyRate      float64
	SuggestedStart time.Time
	SuggestedEnd   time.Time
	Confidence     float64
	Reasoning      string
	SampleCount    int
}

// SuggestPlan estimates how long producing quantity takes and when it can
// start. The daily rate comes from completed history, falling back to the
// default capacity. Work still queued for the product pushes the start out.
// Confidence grows with the number of history samples.
func SuggestPlan(req PlanRequest) (PlanSuggestion, error) {
	if req.Quantity <= 0 {
		return PlanSuggestion{}, shared.NewValidationError("quantity", "must be greater than zero")
	}

	capacity := req.DefaultDailyCapacity
	if capacity <= 0 {
		capacity = DefaultDailyCapacity
	}

	totalQuality, totalDays, samples := 0, 0, 0
	for _, s := range req.History {
		if s.Quality <= 0 || s.Days <= 0 {
			continue
		}
		totalQuality += s.Quality
		totalDays += s.Days
		samples++
	}

	rate := capacity
	confidence := 0.3
	var reasoning string
	if samples > 0 {
		rate = float64(totalQuality) / float64(totalDays)
		confidence = 0.5 + 0.45*(1-1/float64(samples+1))
		reasoning = fmt.Sprintf("Based on %d completed task(s) averaging %.1f units/day", samples, rate)
	} else {
		reasoning = fmt.Sprintf("No completed history for this product, assuming %.1f units/day", rate)
	}

	duration := int(math.Ceil(float64(req.Quantity) / rate))
	if duration < 1 {
		duration = 1
	}

	queueDays := 0
	if req.QueuedQuantity > 0 {
		queueDays = int(math.Ceil(float64(req.QueuedQuantity) / rate))
		reasoning += fmt.Sprintf("; %d units already queued add %d day(s) before the start", req.QueuedQuantity, queueDays)
	}
	reasoning += fmt.Sprintf("; %d units need about %d day(s)", req.Quantity, duration)

	start := shared.AddDays(req.Today, queueDays)
	return PlanSuggestion{
		DurationDays:   duration,
		QueueDays:      queueDays,
		DailyRate:      rate,
		SuggestedStart: start,
		SuggestedEnd:   shared.AddDays(start, duration-1),
		Confidence:     confidence,
		Reasoning:      reasoning,
		SampleCount:    samples,
	}, nil
}

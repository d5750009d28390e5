package planning

import (
	"fmt"
	"time"

	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

const (
	// DefaultSuggestionLimit is how many alternative slots are proposed by default
	DefaultSuggestionLimit = 3

	// DefaultHorizonDays bounds the search for free slots around the candidate
	DefaultHorizonDays = 60
)

// Slot is a proposed conflict-free planning window
type Slot struct {
	Window     Window
	ShiftDays  int
	Reason     string
	Confidence float64
}

// SlotSearch describes an alternative-slot query
type SlotSearch struct {
	Candidate     Window
	Scheduled     []Scheduled
	ExcludeTaskID string
	Today         time.Time
	HorizonDays   int
	Limit         int
}

// SuggestAlternativeSlots proposes windows of the candidate's duration that
// overlap no scheduled task. The search moves outward one day at a time, later
// before earlier, never starting before today. Confidence decreases with the
// distance from the requested window, so results come out best first.
func SuggestAlternativeSlots(search SlotSearch) ([]Slot, error) {
	if !search.Candidate.IsBounded() {
		return nil, shared.NewValidationError("window", "alternative slots need both a start and an end date")
	}
	horizon := search.HorizonDays
	if horizon <= 0 {
		horizon = DefaultHorizonDays
	}
	limit := search.Limit
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	today := shared.StartOfDay(search.Today)

	slots := make([]Slot, 0, limit)
	for k := 1; k <= horizon && len(slots) < limit; k++ {
		for _, shift := range []int{k, -k} {
			if len(slots) >= limit {
				break
			}
			w := search.Candidate.Shift(shift)
			if w.Start().Before(today) {
				continue
			}
			if len(FindConflicts(w, search.Scheduled, search.ExcludeTaskID)) > 0 {
				continue
			}
			slots = append(slots, Slot{
				Window:     w,
				ShiftDays:  shift,
				Reason:     describeShift(shift, w),
				Confidence: shiftConfidence(k, horizon),
			})
		}
	}
	return slots, nil
}

func shiftConfidence(distance, horizon int) float64 {
	return 1 - float64(distance)/float64(horizon+1)
}

func describeShift(shift int, w Window) string {
	direction := "later"
	days := shift
	if shift < 0 {
		direction = "earlier"
		days = -shift
	}
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	return fmt.Sprintf("%d %s %s, %s is free of other tasks", days, unit, direction, w)
}

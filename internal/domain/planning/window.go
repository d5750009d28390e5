package planning

import (
	"fmt"
	"time"

	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// Window is a planning date range at day granularity. Either bound may be
// missing, in which case the window is open-ended on that side. A window with
// neither bound is unplanned and never overlaps anything.
type Window struct {
	start *time.Time
	end   *time.Time
}

// ErrInvalidWindow is returned for inverted windows
type ErrInvalidWindow struct {
	Start time.Time
	End   time.Time
}

func (e *ErrInvalidWindow) Error() string {
	return fmt.Sprintf("invalid planning window: end %s is before start %s",
		e.End.Format(DateLayout), e.Start.Format(DateLayout))
}

// DateLayout is the canonical day format used by the planning API
const DateLayout = "2006-01-02"

// NewWindow builds a window, truncating both bounds to days
func NewWindow(start, end *time.Time) (Window, error) {
	w := Window{start: truncate(start), end: truncate(end)}
	if w.start != nil && w.end != nil && w.end.Before(*w.start) {
		return Window{}, &ErrInvalidWindow{Start: *w.start, End: *w.end}
	}
	return w, nil
}

// MustWindow builds a bounded window, panicking on inverted input. Intended for tests and constants.
func MustWindow(start, end time.Time) Window {
	w, err := NewWindow(&start, &end)
	if err != nil {
		panic(err)
	}
	return w
}

// Bounded builds a window with both bounds set
func Bounded(start, end time.Time) (Window, error) {
	return NewWindow(&start, &end)
}

func (w Window) Start() *time.Time { return w.start }
func (w Window) End() *time.Time   { return w.end }

// IsUnplanned reports whether neither bound is set
func (w Window) IsUnplanned() bool {
	return w.start == nil && w.end == nil
}

// IsBounded reports whether both bounds are set
func (w Window) IsBounded() bool {
	return w.start != nil && w.end != nil
}

// Days is the inclusive length of a bounded window, 0 otherwise
func (w Window) Days() int {
	if !w.IsBounded() {
		return 0
	}
	return shared.DaysBetween(*w.start, *w.end) + 1
}

// Shift moves both bounds by n days
func (w Window) Shift(n int) Window {
	out := Window{}
	if w.start != nil {
		s := shared.AddDays(*w.start, n)
		out.start = &s
	}
	if w.end != nil {
		e := shared.AddDays(*w.end, n)
		out.end = &e
	}
	return out
}

// Contains reports whether day lies inside the window
func (w Window) Contains(day time.Time) bool {
	day = shared.StartOfDay(day)
	if w.IsUnplanned() {
		return false
	}
	if w.start != nil && day.Before(*w.start) {
		return false
	}
	if w.end != nil && day.After(*w.end) {
		return false
	}
	return true
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s]", formatBound(w.start, "-inf"), formatBound(w.end, "+inf"))
}

// Overlaps reports whether two windows share at least one day:
// startA <= endB && startB <= endA, with missing bounds treated as open.
// The relation is symmetric.
func Overlaps(a, b Window) bool {
	if a.IsUnplanned() || b.IsUnplanned() {
		return false
	}
	if a.start != nil && b.end != nil && a.start.After(*b.end) {
		return false
	}
	if b.start != nil && a.end != nil && b.start.After(*a.end) {
		return false
	}
	return true
}

// OverlapDays counts the shared days of a bounded candidate and another window.
// Open bounds of other are clipped to the candidate.
func OverlapDays(candidate, other Window) int {
	if !candidate.IsBounded() || !Overlaps(candidate, other) {
		return 0
	}
	start, end := *candidate.start, *candidate.end
	if other.start != nil && other.start.After(start) {
		start = *other.start
	}
	if other.end != nil && other.end.Before(end) {
		end = *other.end
	}
	return shared.DaysBetween(start, end) + 1
}

func truncate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := shared.StartOfDay(*t)
	return &d
}

func formatBound(t *time.Time, open string) string {
	if t == nil {
		return open
	}
	return t.Format(DateLayout)
}

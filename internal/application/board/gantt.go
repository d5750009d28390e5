package board

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/planning"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// DefaultDayWidth is the number of horizontal units a day occupies
const DefaultDayWidth = 4

// ErrNotScheduled is returned when a drag targets a task without both planned dates
var ErrNotScheduled = errors.New("task has no complete planned window")

// ErrOutsideView is returned when an edited window leaves the visible range
type ErrOutsideView struct {
	Window planning.Window
	View   planning.Window
}

func (e *ErrOutsideView) Error() string {
	return fmt.Sprintf("window %s is outside the visible range %s", e.Window, e.View)
}

// GanttView is a visible date range of the Gantt chart with its horizontal scale.
// All coordinates are relative to the first visible day.
type GanttView struct {
	start    time.Time
	end      time.Time
	dayWidth int
}

// Bar is the placement of a task inside a view
type Bar struct {
	TaskID string
	// Start and End are the visible part of the task window
	Start time.Time
	End   time.Time
	// ClippedLeft and ClippedRight mark bars that continue outside the view
	ClippedLeft  bool
	ClippedRight bool
	X            int
	Width        int
}

// NewGanttView creates a view over [start, end] inclusive
func NewGanttView(start, end time.Time, dayWidth int) (*GanttView, error) {
	if _, err := planning.Bounded(start, end); err != nil {
		return nil, err
	}
	if dayWidth <= 0 {
		dayWidth = DefaultDayWidth
	}
	return &GanttView{
		start:    shared.StartOfDay(start),
		end:      shared.StartOfDay(end),
		dayWidth: dayWidth,
	}, nil
}

func (v *GanttView) Start() time.Time { return v.start }
func (v *GanttView) End() time.Time   { return v.end }
func (v *GanttView) DayWidth() int    { return v.dayWidth }

// Days is the number of visible days
func (v *GanttView) Days() int {
	return shared.DaysBetween(v.start, v.end) + 1
}

// Width is the total horizontal size of the view
func (v *GanttView) Width() int {
	return v.Days() * v.dayWidth
}

func (v *GanttView) window() planning.Window {
	return planning.MustWindow(v.start, v.end)
}

// Place computes the visible bar of a task. Missing bounds are treated as
// open and clipped to the view. Unplanned tasks and tasks entirely outside
// the view are not placed.
func (v *GanttView) Place(task *dtos.TaskDTO) (Bar, bool) {
	w, err := planning.NewWindow(task.PlannedStartDate, task.PlannedEndDate)
	if err != nil || !planning.Overlaps(w, v.window()) {
		return Bar{}, false
	}

	bar := Bar{TaskID: task.ID, Start: v.start, End: v.end}
	if s := w.Start(); s != nil && !s.Before(v.start) {
		bar.Start = *s
	} else {
		bar.ClippedLeft = true
	}
	if e := w.End(); e != nil && !e.After(v.end) {
		bar.End = *e
	} else {
		bar.ClippedRight = true
	}

	bar.X = shared.DaysBetween(v.start, bar.Start) * v.dayWidth
	bar.Width = (shared.DaysBetween(bar.Start, bar.End) + 1) * v.dayWidth
	return bar, true
}

// PixelsToDays converts a horizontal drag distance into whole days, rounding
// to the nearest day
func (v *GanttView) PixelsToDays(px int) int {
	return int(math.Round(float64(px) / float64(v.dayWidth)))
}

// Move shifts both planned dates by days, preserving the duration
func (v *GanttView) Move(task *dtos.TaskDTO, days int) (planning.Window, error) {
	start, end, err := scheduled(task)
	if err != nil {
		return planning.Window{}, err
	}
	return v.validate(shared.AddDays(start, days), shared.AddDays(end, days))
}

// ResizeStart moves only the planned start by days
func (v *GanttView) ResizeStart(task *dtos.TaskDTO, days int) (planning.Window, error) {
	start, end, err := scheduled(task)
	if err != nil {
		return planning.Window{}, err
	}
	return v.validate(shared.AddDays(start, days), end)
}

// ResizeEnd moves only the planned end by days
func (v *GanttView) ResizeEnd(task *dtos.TaskDTO, days int) (planning.Window, error) {
	start, end, err := scheduled(task)
	if err != nil {
		return planning.Window{}, err
	}
	return v.validate(start, shared.AddDays(end, days))
}

func (v *GanttView) validate(start, end time.Time) (planning.Window, error) {
	w, err := planning.Bounded(start, end)
	if err != nil {
		return planning.Window{}, err
	}
	if start.Before(v.start) || end.After(v.end) {
		return planning.Window{}, &ErrOutsideView{Window: w, View: v.window()}
	}
	return w, nil
}

func scheduled(task *dtos.TaskDTO) (time.Time, time.Time, error) {
	if task.PlannedStartDate == nil || task.PlannedEndDate == nil {
		return time.Time{}, time.Time{}, ErrNotScheduled
	}
	return shared.StartOfDay(*task.PlannedStartDate), shared.StartOfDay(*task.PlannedEndDate), nil
}

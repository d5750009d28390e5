package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/domain/planning"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// CheckOverlapsQuery tests a planning window against the scheduled tasks
type CheckOverlapsQuery struct {
	StartDate     *time.Time
	EndDate       *time.Time
	ProductID     string // empty = compare against every product
	ExcludeTaskID string
	Alternatives  bool
}

// ConflictDTO is a task overlapping the requested window
type ConflictDTO struct {
	TaskID      string     `json:"taskId"`
	ProductID   string     `json:"productId"`
	StartDate   *time.Time `json:"plannedStartDate,omitempty"`
	EndDate     *time.Time `json:"plannedEndDate,omitempty"`
	OverlapDays int        `json:"overlapDays"`
}

// SlotDTO is a proposed conflict-free window
type SlotDTO struct {
	StartDate  time.Time `json:"plannedStartDate"`
	EndDate    time.Time `json:"plannedEndDate"`
	ShiftDays  int       `json:"shiftDays"`
	Reason     string    `json:"reason"`
	Confidence float64   `json:"confidence"`
}

// CheckOverlapsResponse lists conflicts and, when asked, alternative slots
type CheckOverlapsResponse struct {
	HasConflicts bool           `json:"hasConflicts"`
	Conflicts    []*ConflictDTO `json:"conflicts"`
	Alternatives []*SlotDTO     `json:"alternatives,omitempty"`
}

// CheckOverlapsHandler handles the CheckOverlaps query
type CheckOverlapsHandler struct {
	taskRepo production.TaskRepository
	settings Settings
	clock    shared.Clock
}

// NewCheckOverlapsHandler creates a new CheckOverlapsHandler
func NewCheckOverlapsHandler(taskRepo production.TaskRepository, settings Settings, clock shared.Clock) *CheckOverlapsHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CheckOverlapsHandler{taskRepo: taskRepo, settings: settings.withDefaults(), clock: clock}
}

// Handle executes the CheckOverlaps query
func (h *CheckOverlapsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*CheckOverlapsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CheckOverlapsQuery")
	}

	candidate, err := planning.NewWindow(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}

	scheduled, err := loadScheduled(ctx, h.taskRepo, query.ProductID)
	if err != nil {
		return nil, err
	}

	conflicts := planning.FindConflicts(candidate, scheduled, query.ExcludeTaskID)
	resp := &CheckOverlapsResponse{
		HasConflicts: len(conflicts) > 0,
		Conflicts:    make([]*ConflictDTO, len(conflicts)),
	}
	for i, c := range conflicts {
		resp.Conflicts[i] = &ConflictDTO{
			TaskID:      c.TaskID,
			ProductID:   c.ProductID,
			StartDate:   c.Window.Start(),
			EndDate:     c.Window.End(),
			OverlapDays: c.OverlapDays,
		}
	}

	if query.Alternatives && resp.HasConflicts && candidate.IsBounded() {
		slots, err := planning.SuggestAlternativeSlots(planning.SlotSearch{
			Candidate:     candidate,
			Scheduled:     scheduled,
			ExcludeTaskID: query.ExcludeTaskID,
			Today:         h.clock.Now(),
			HorizonDays:   h.settings.HorizonDays,
			Limit:         h.settings.SuggestionLimit,
		})
		if err != nil {
			return nil, err
		}
		for _, s := range slots {
			resp.Alternatives = append(resp.Alternatives, &SlotDTO{
				StartDate:  *s.Window.Start(),
				EndDate:    *s.Window.End(),
				ShiftDays:  s.ShiftDays,
				Reason:     s.Reason,
				Confidence: s.Confidence,
			})
		}
	}

	return resp, nil
}

// loadScheduled returns the planning view of every non-terminal task
func loadScheduled(ctx context.Context, repo production.TaskRepository, productID string) ([]planning.Scheduled, error) {
	tasks, err := repo.List(ctx, production.TaskFilter{
		Statuses: []production.TaskStatus{
			production.TaskStatusPending,
			production.TaskStatusInProgress,
			production.TaskStatusPaused,
		},
		ProductID: productID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduled tasks: %w", err)
	}

	scheduled := make([]planning.Scheduled, 0, len(tasks))
	for _, t := range tasks {
		w, err := planning.NewWindow(t.PlannedStartDate(), t.PlannedEndDate())
		if err != nil {
			continue
		}
		scheduled = append(scheduled, planning.Scheduled{TaskID: t.ID(), ProductID: t.ProductID(), Window: w})
	}
	return scheduled, nil
}

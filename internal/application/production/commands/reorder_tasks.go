package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// ReorderTasksCommand sets the manual sequence of the pending queue.
// TaskIDs must list every pending task of the scope exactly once.
type ReorderTasksCommand struct {
	TaskIDs []string

	// ProductID limits the scope to one product's pending tasks when set
	ProductID string
}

// ReorderTasksResponse returns the pending tasks in their new order
type ReorderTasksResponse struct {
	Tasks []*dtos.TaskDTO `json:"tasks"`
}

// ReorderTasksHandler handles the ReorderTasks command
type ReorderTasksHandler struct {
	taskRepo   production.TaskRepository
	transactor production.Transactor
	clock      shared.Clock
}

// NewReorderTasksHandler creates a new ReorderTasksHandler
func NewReorderTasksHandler(taskRepo production.TaskRepository, transactor production.Transactor, clock shared.Clock) *ReorderTasksHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ReorderTasksHandler{taskRepo: taskRepo, transactor: transactor, clock: clock}
}

// Handle executes the ReorderTasks command
func (h *ReorderTasksHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ReorderTasksCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ReorderTasksCommand")
	}
	if len(cmd.TaskIDs) == 0 {
		return nil, production.NewValidationError("taskIds", "at least one task id is required")
	}

	var ordered []*production.ProductionTask
	err := h.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		pending, err := h.taskRepo.FindPending(ctx, cmd.ProductID)
		if err != nil {
			return fmt.Errorf("failed to load pending tasks: %w", err)
		}

		ordered, err = production.ApplyReorder(pending, cmd.TaskIDs, h.clock.Now())
		if err != nil {
			return err
		}
		for _, task := range ordered {
			if err := h.taskRepo.Update(ctx, task); err != nil {
				return fmt.Errorf("failed to save order of task %s: %w", task.ID(), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ReorderTasksResponse{Tasks: dtos.FromTasks(ordered)}, nil
}

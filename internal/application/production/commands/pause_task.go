package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/metrics"
	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// PauseTaskCommand halts a running task
type PauseTaskCommand struct {
	TaskID string
}

// PauseTaskHandler handles the PauseTask command
type PauseTaskHandler struct {
	taskRepo   production.TaskRepository
	transactor production.Transactor
	clock      shared.Clock
}

// NewPauseTaskHandler creates a new PauseTaskHandler
func NewPauseTaskHandler(taskRepo production.TaskRepository, transactor production.Transactor, clock shared.Clock) *PauseTaskHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &PauseTaskHandler{taskRepo: taskRepo, transactor: transactor, clock: clock}
}

// Handle executes the PauseTask command
func (h *PauseTaskHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*PauseTaskCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PauseTaskCommand")
	}

	var task *production.ProductionTask
	var from production.TaskStatus
	err := h.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = loadTask(ctx, h.taskRepo, cmd.TaskID)
		if err != nil {
			return err
		}
		from = task.Status()

		if err := task.Pause(h.clock.Now()); err != nil {
			return err
		}
		if err := h.taskRepo.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(from), string(task.Status()))
	return &TaskResponse{Task: dtos.FromTask(task)}, nil
}

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

// ResumeTaskCommand continues a paused task
type ResumeTaskCommand struct {
	TaskID string
}

// ResumeTaskHandler handles the ResumeTask command
type ResumeTaskHandler struct {
	taskRepo   production.TaskRepository
	transactor production.Transactor
	clock      shared.Clock
}

// NewResumeTaskHandler creates a new ResumeTaskHandler
func NewResumeTaskHandler(taskRepo production.TaskRepository, transactor production.Transactor, clock shared.Clock) *ResumeTaskHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ResumeTaskHandler{taskRepo: taskRepo, transactor: transactor, clock: clock}
}

// Handle executes the ResumeTask command
func (h *ResumeTaskHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ResumeTaskCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ResumeTaskCommand")
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

		if err := task.Resume(h.clock.Now()); err != nil {
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

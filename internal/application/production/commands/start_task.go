package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/metrics"
	"github.com/andrescamacho/shopfloor-go/internal/application/common"
	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// StartTaskCommand moves a pending task into production
type StartTaskCommand struct {
	TaskID string
}

// StartTaskHandler handles the StartTask command
type StartTaskHandler struct {
	taskRepo   production.TaskRepository
	transactor production.Transactor
	clock      shared.Clock
}

// NewStartTaskHandler creates a new StartTaskHandler
func NewStartTaskHandler(taskRepo production.TaskRepository, transactor production.Transactor, clock shared.Clock) *StartTaskHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &StartTaskHandler{taskRepo: taskRepo, transactor: transactor, clock: clock}
}

// Handle executes the StartTask command
func (h *StartTaskHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*StartTaskCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartTaskCommand")
	}

	actor := common.ActorFromContext(ctx).String()
	var task *production.ProductionTask
	var from production.TaskStatus
	err := h.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = loadTask(ctx, h.taskRepo, cmd.TaskID)
		if err != nil {
			return err
		}
		from = task.Status()

		if err := task.Start(actor, h.clock.Now()); err != nil {
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

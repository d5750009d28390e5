package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/metrics"
	"github.com/andrescamacho/shopfloor-go/internal/application/common"
	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// CancelTaskCommand terminates a task that is not finished yet.
// Quantities already registered stay credited.
type CancelTaskCommand struct {
	TaskID string
	Reason string
}

// CancelTaskHandler handles the CancelTask command
type CancelTaskHandler struct {
	taskRepo   production.TaskRepository
	transactor production.Transactor
	clock      shared.Clock
}

// NewCancelTaskHandler creates a new CancelTaskHandler
func NewCancelTaskHandler(taskRepo production.TaskRepository, transactor production.Transactor, clock shared.Clock) *CancelTaskHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CancelTaskHandler{taskRepo: taskRepo, transactor: transactor, clock: clock}
}

// Handle executes the CancelTask command
func (h *CancelTaskHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CancelTaskCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CancelTaskCommand")
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

		if err := task.Cancel(actor, cmd.Reason, h.clock.Now()); err != nil {
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
	common.LoggerFromContext(ctx).Info("production task cancelled",
		zap.String("task_id", task.ID()),
		zap.Int("quality_kept", task.QualityQuantity()),
	)
	return &TaskResponse{Task: dtos.FromTask(task)}, nil
}

package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
)

// DeleteTaskCommand hard-removes a task that has not started
type DeleteTaskCommand struct {
	TaskID string
}

// DeleteTaskResponse confirms the removal
type DeleteTaskResponse struct {
	TaskID string `json:"taskId"`
}

// DeleteTaskHandler handles the DeleteTask command
type DeleteTaskHandler struct {
	taskRepo   production.TaskRepository
	transactor production.Transactor
}

// NewDeleteTaskHandler creates a new DeleteTaskHandler
func NewDeleteTaskHandler(taskRepo production.TaskRepository, transactor production.Transactor) *DeleteTaskHandler {
	return &DeleteTaskHandler{taskRepo: taskRepo, transactor: transactor}
}

// Handle executes the DeleteTask command
func (h *DeleteTaskHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*DeleteTaskCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *DeleteTaskCommand")
	}

	err := h.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		task, err := loadTask(ctx, h.taskRepo, cmd.TaskID)
		if err != nil {
			return err
		}
		if err := task.EnsureDeletable(); err != nil {
			return err
		}
		if err := h.taskRepo.Delete(ctx, task.ID()); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &DeleteTaskResponse{TaskID: cmd.TaskID}, nil
}

package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
)

// ListTasksQuery lists production tasks
type ListTasksQuery struct {
	Statuses  []string // empty = all statuses
	ProductID string
	OrderID   string
	From      *time.Time
	To        *time.Time
}

// ListTasksResponse contains the matching tasks in queue order
type ListTasksResponse struct {
	Tasks []*dtos.TaskDTO `json:"tasks"`
}

// ListTasksHandler handles the ListTasks query
type ListTasksHandler struct {
	taskRepo production.TaskRepository
}

// NewListTasksHandler creates a new ListTasksHandler
func NewListTasksHandler(taskRepo production.TaskRepository) *ListTasksHandler {
	return &ListTasksHandler{taskRepo: taskRepo}
}

// Handle executes the ListTasks query
func (h *ListTasksHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListTasksQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListTasksQuery")
	}

	filter := production.TaskFilter{
		ProductID: query.ProductID,
		OrderID:   query.OrderID,
		From:      query.From,
		To:        query.To,
	}
	for _, s := range query.Statuses {
		status, err := production.ParseTaskStatus(s)
		if err != nil {
			return nil, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, production.NewValidationError("to", "must not be before from")
	}

	tasks, err := h.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &ListTasksResponse{Tasks: dtos.FromTasks(tasks)}, nil
}

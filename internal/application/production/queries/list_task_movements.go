package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
)

// ListTaskMovementsQuery lists the stock movements caused by a task
type ListTaskMovementsQuery struct {
	TaskID string
}

// ListTaskMovementsResponse contains movements oldest first
type ListTaskMovementsResponse struct {
	Movements []*dtos.StockMovementDTO `json:"movements"`
}

// ListTaskMovementsHandler handles the ListTaskMovements query
type ListTaskMovementsHandler struct {
	taskRepo production.TaskRepository
	stock    production.StockLedger
}

// NewListTaskMovementsHandler creates a new ListTaskMovementsHandler
func NewListTaskMovementsHandler(taskRepo production.TaskRepository, stock production.StockLedger) *ListTaskMovementsHandler {
	return &ListTaskMovementsHandler{taskRepo: taskRepo, stock: stock}
}

// Handle executes the ListTaskMovements query
func (h *ListTaskMovementsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListTaskMovementsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListTaskMovementsQuery")
	}

	task, err := h.taskRepo.FindByID(ctx, query.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return nil, &production.ErrTaskNotFound{TaskID: query.TaskID}
	}

	movements, err := h.stock.FindByTask(ctx, task.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load stock movements: %w", err)
	}

	out := make([]*dtos.StockMovementDTO, len(movements))
	for i, m := range movements {
		out[i] = dtos.FromStockMovement(m)
	}
	return &ListTaskMovementsResponse{Movements: out}, nil
}

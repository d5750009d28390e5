package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
)

// GetTaskQuery fetches one task with its product and order
type GetTaskQuery struct {
	TaskID string
}

// GetTaskResponse contains the task and the catalog data shown next to it
type GetTaskResponse struct {
	Task    *dtos.TaskDTO    `json:"task"`
	Product *dtos.ProductDTO `json:"product,omitempty"`
	Order   *dtos.OrderDTO   `json:"order,omitempty"`
}

// GetTaskHandler handles the GetTask query
type GetTaskHandler struct {
	taskRepo production.TaskRepository
	catalog  production.CatalogService
	orders   production.OrderService
}

// NewGetTaskHandler creates a new GetTaskHandler
func NewGetTaskHandler(taskRepo production.TaskRepository, catalog production.CatalogService, orders production.OrderService) *GetTaskHandler {
	return &GetTaskHandler{taskRepo: taskRepo, catalog: catalog, orders: orders}
}

// Handle executes the GetTask query
func (h *GetTaskHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetTaskQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetTaskQuery")
	}

	task, err := h.taskRepo.FindByID(ctx, query.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return nil, &production.ErrTaskNotFound{TaskID: query.TaskID}
	}

	resp := &GetTaskResponse{Task: dtos.FromTask(task)}

	product, err := h.catalog.FindProduct(ctx, task.ProductID())
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product != nil {
		resp.Product = &dtos.ProductDTO{
			ID:       product.ID,
			Article:  product.Article,
			Name:     product.Name,
			Category: product.Category,
		}
	}

	if task.OrderID() != "" {
		order, err := h.orders.FindOrder(ctx, task.OrderID())
		if err != nil {
			return nil, fmt.Errorf("failed to load order: %w", err)
		}
		if order != nil {
			resp.Order = &dtos.OrderDTO{
				ID:           order.ID,
				OrderNumber:  order.OrderNumber,
				CustomerName: order.CustomerName,
				Priority:     order.Priority,
				DeliveryDate: order.DeliveryDate,
			}
		}
	}

	return resp, nil
}

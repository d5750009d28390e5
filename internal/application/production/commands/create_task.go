package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/andrescamacho/shopfloor-go/internal/application/common"
	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// CreateTaskCommand creates a pending production task
type CreateTaskCommand struct {
	ProductID         string
	RequestedQuantity int
	Priority          int // 0 = default
	PlannedStartDate  *time.Time
	PlannedEndDate    *time.Time
	OrderID           string
	AssignedTo        string
	Notes             string
}

// CreateTaskHandler handles the CreateTask command
type CreateTaskHandler struct {
	taskRepo   production.TaskRepository
	catalog    production.CatalogService
	orders     production.OrderService
	transactor production.Transactor
	clock      shared.Clock
}

// NewCreateTaskHandler creates a new CreateTaskHandler
func NewCreateTaskHandler(
	taskRepo production.TaskRepository,
	catalog production.CatalogService,
	orders production.OrderService,
	transactor production.Transactor,
	clock shared.Clock,
) *CreateTaskHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CreateTaskHandler{
		taskRepo:   taskRepo,
		catalog:    catalog,
		orders:     orders,
		transactor: transactor,
		clock:      clock,
	}
}

// Handle executes the CreateTask command
func (h *CreateTaskHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CreateTaskCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CreateTaskCommand")
	}

	product, err := h.catalog.FindProduct(ctx, cmd.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}
	if product == nil {
		return nil, production.NewValidationError("productId", fmt.Sprintf("unknown product %q", cmd.ProductID))
	}

	if cmd.OrderID != "" {
		order, err := h.orders.FindOrder(ctx, cmd.OrderID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve order: %w", err)
		}
		if order == nil {
			return nil, production.NewValidationError("orderId", fmt.Sprintf("unknown order %q", cmd.OrderID))
		}
	}

	actor := common.ActorFromContext(ctx).String()
	var task *production.ProductionTask
	err = h.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		pending, err := h.taskRepo.FindPending(ctx, "")
		if err != nil {
			return fmt.Errorf("failed to load pending tasks: %w", err)
		}

		task, err = production.NewProductionTask(production.TaskDraft{
			ProductID:         product.ID,
			OrderID:           cmd.OrderID,
			RequestedQuantity: cmd.RequestedQuantity,
			Priority:          production.Priority(cmd.Priority),
			PlannedStartDate:  cmd.PlannedStartDate,
			PlannedEndDate:    cmd.PlannedEndDate,
			AssignedTo:        cmd.AssignedTo,
			Notes:             cmd.Notes,
			CreatedBy:         actor,
			SortOrder:         production.NextSortOrder(pending),
		}, h.clock.Now())
		if err != nil {
			return err
		}

		if err := h.taskRepo.Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Info("production task created",
		zap.String("task_id", task.ID()),
		zap.String("product_id", task.ProductID()),
		zap.Int("requested", task.RequestedQuantity()),
	)
	return &TaskResponse{Task: dtos.FromTask(task)}, nil
}

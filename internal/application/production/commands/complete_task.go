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

// CompleteTaskCommand records the final split of a task and completes it,
// even when quality stays below the requested quantity.
type CompleteTaskCommand struct {
	TaskID           string
	ProducedQuantity *int // derived from quality + defect when nil
	QualityQuantity  int
	DefectQuantity   int
	Notes            string
	ProductionDate   *time.Time
}

// CompleteTaskHandler handles the CompleteTask command
type CompleteTaskHandler struct {
	taskRepo   production.TaskRepository
	stock      production.StockLedger
	transactor production.Transactor
	clock      shared.Clock
}

// NewCompleteTaskHandler creates a new CompleteTaskHandler
func NewCompleteTaskHandler(
	taskRepo production.TaskRepository,
	stock production.StockLedger,
	transactor production.Transactor,
	clock shared.Clock,
) *CompleteTaskHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CompleteTaskHandler{taskRepo: taskRepo, stock: stock, transactor: transactor, clock: clock}
}

// Handle executes the CompleteTask command
func (h *CompleteTaskHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CompleteTaskCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CompleteTaskCommand")
	}

	final, err := production.NewQuantities(cmd.ProducedQuantity, cmd.QualityQuantity, cmd.DefectQuantity)
	if err != nil {
		return nil, err
	}

	actor := common.ActorFromContext(ctx).String()
	now := h.clock.Now()
	productionDate := productionDateOrToday(cmd.ProductionDate, h.clock)

	var task *production.ProductionTask
	var result production.RegistrationResult
	err = h.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		task, err = loadTask(ctx, h.taskRepo, cmd.TaskID)
		if err != nil {
			return err
		}

		result, err = task.Complete(final, actor, cmd.Notes, now)
		if err != nil {
			return err
		}
		if err := h.taskRepo.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}

		opCtx := shared.NewOperationContext(task.ID(), "task_completion")
		return creditStock(ctx, h.stock, task, result, opCtx, productionDate, cmd.Notes, actor, now)
	})
	if err != nil {
		return nil, err
	}

	recordRegistrationMetrics(task.ProductID(), "complete", result)
	common.LoggerFromContext(ctx).Info("production task completed",
		zap.String("task_id", task.ID()),
		zap.Int("quality", task.QualityQuantity()),
		zap.Int("requested", task.RequestedQuantity()),
	)
	return &RegistrationResponse{Registration: dtos.FromRegistration(task, result)}, nil
}

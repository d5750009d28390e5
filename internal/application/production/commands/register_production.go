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

// RegisterProductionCommand applies an incremental registration to a task.
// Negative quantities correct earlier registrations.
type RegisterProductionCommand struct {
	TaskID           string
	ProducedQuantity *int // derived from quality + defect when nil
	QualityQuantity  int
	DefectQuantity   int
	Notes            string
	ProductionDate   *time.Time
}

// RegisterProductionHandler handles the RegisterProduction command
type RegisterProductionHandler struct {
	taskRepo   production.TaskRepository
	stock      production.StockLedger
	transactor production.Transactor
	clock      shared.Clock
}

// NewRegisterProductionHandler creates a new RegisterProductionHandler
func NewRegisterProductionHandler(
	taskRepo production.TaskRepository,
	stock production.StockLedger,
	transactor production.Transactor,
	clock shared.Clock,
) *RegisterProductionHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RegisterProductionHandler{taskRepo: taskRepo, stock: stock, transactor: transactor, clock: clock}
}

// Handle executes the RegisterProduction command
func (h *RegisterProductionHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RegisterProductionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RegisterProductionCommand")
	}

	delta, err := production.NewQuantities(cmd.ProducedQuantity, cmd.QualityQuantity, cmd.DefectQuantity)
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

		result, err = task.RegisterDelta(delta, actor, now)
		if err != nil {
			return err
		}
		if err := h.taskRepo.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}

		opCtx := shared.NewOperationContext(task.ID(), "task_registration")
		return creditStock(ctx, h.stock, task, result, opCtx, productionDate, cmd.Notes, actor, now)
	})
	if err != nil {
		return nil, err
	}

	recordRegistrationMetrics(task.ProductID(), "partial", result)
	logger := common.LoggerFromContext(ctx)
	logger.Info("production registered",
		zap.String("task_id", task.ID()),
		zap.Stringer("delta", delta),
		zap.Bool("completed", result.WasCompleted),
	)
	if result.Reopened {
		logger.Warn("correction reopened completed task", zap.String("task_id", task.ID()))
	}
	return &RegistrationResponse{Registration: dtos.FromRegistration(task, result)}, nil
}

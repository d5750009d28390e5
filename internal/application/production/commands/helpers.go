package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/metrics"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// TaskResponse is returned by commands that change a task's lifecycle
type TaskResponse struct {
	Task *dtos.TaskDTO `json:"task"`
}

// RegistrationResponse is returned by commands that change a task's quantities
type RegistrationResponse struct {
	Registration *dtos.RegistrationDTO `json:"registration"`
}

func loadTask(ctx context.Context, repo production.TaskRepository, taskID string) (*production.ProductionTask, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, production.NewValidationError("taskId", "is required")
	}
	task, err := repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return nil, &production.ErrTaskNotFound{TaskID: taskID}
	}
	return task, nil
}

// creditStock hands the stock movement for a registration to the ledger
func creditStock(
	ctx context.Context,
	stock production.StockLedger,
	task *production.ProductionTask,
	result production.RegistrationResult,
	opCtx *shared.OperationContext,
	productionDate time.Time,
	notes string,
	actor string,
	now time.Time,
) error {
	movement, ok := production.MovementForRegistration(task, result, opCtx, productionDate, notes, actor, now)
	if !ok {
		return nil
	}
	if err := stock.Record(ctx, movement); err != nil {
		return fmt.Errorf("failed to record stock movement for task %s: %w", task.ID(), err)
	}
	return nil
}

func recordRegistrationMetrics(productID, operation string, results ...production.RegistrationResult) {
	for _, r := range results {
		metrics.RecordRegistration(productID, operation, r.QualityDelta(), r.OverproductionQuantity)
		if r.WasCompleted {
			metrics.RecordTransition(string(production.TaskStatusInProgress), string(production.TaskStatusCompleted))
		}
		if r.Reopened {
			metrics.RecordTransition(string(production.TaskStatusCompleted), string(production.TaskStatusInProgress))
		}
	}
}

func productionDateOrToday(date *time.Time, clock shared.Clock) time.Time {
	if date != nil {
		return shared.StartOfDay(*date)
	}
	return shared.Today(clock)
}

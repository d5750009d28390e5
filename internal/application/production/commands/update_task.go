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

// UpdateTaskCommand edits a task. Nil fields are left untouched.
//
// QualityQuantity is an absolute progress correction, not a delta, and may be
// combined with DefectQuantity. Every other field is editable only while the
// task is pending.
type UpdateTaskCommand struct {
	TaskID            string
	RequestedQuantity *int
	Priority          *int
	AssignedTo        *string
	Notes             *string
	PlannedStartDate  *time.Time
	PlannedEndDate    *time.Time
	ClearPlannedStart bool
	ClearPlannedEnd   bool
	PlanningStatus    *string
	QualityQuantity   *int
	DefectQuantity    *int
}

// UpdateTaskResponse returns the edited task and, when quantities were
// overridden, the registration report
type UpdateTaskResponse struct {
	Task         *dtos.TaskDTO         `json:"task"`
	Registration *dtos.RegistrationDTO `json:"registration,omitempty"`
}

// UpdateTaskHandler handles the UpdateTask command
type UpdateTaskHandler struct {
	taskRepo   production.TaskRepository
	stock      production.StockLedger
	transactor production.Transactor
	clock      shared.Clock
}

// NewUpdateTaskHandler creates a new UpdateTaskHandler
func NewUpdateTaskHandler(
	taskRepo production.TaskRepository,
	stock production.StockLedger,
	transactor production.Transactor,
	clock shared.Clock,
) *UpdateTaskHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &UpdateTaskHandler{taskRepo: taskRepo, stock: stock, transactor: transactor, clock: clock}
}

// Handle executes the UpdateTask command
func (h *UpdateTaskHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*UpdateTaskCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UpdateTaskCommand")
	}
	if cmd.DefectQuantity != nil && cmd.QualityQuantity == nil {
		return nil, production.NewValidationError("defectQuantity", "can only be overridden together with qualityQuantity")
	}

	changes := production.TaskChanges{
		RequestedQuantity: cmd.RequestedQuantity,
		Priority:          cmd.Priority,
		AssignedTo:        cmd.AssignedTo,
		Notes:             cmd.Notes,
		PlannedStartDate:  cmd.PlannedStartDate,
		PlannedEndDate:    cmd.PlannedEndDate,
		ClearPlannedStart: cmd.ClearPlannedStart,
		ClearPlannedEnd:   cmd.ClearPlannedEnd,
	}
	if cmd.PlanningStatus != nil {
		status, err := production.ParsePlanningStatus(*cmd.PlanningStatus)
		if err != nil {
			return nil, err
		}
		changes.PlanningStatus = &status
	}

	actor := common.ActorFromContext(ctx).String()
	now := h.clock.Now()

	var task *production.ProductionTask
	var result *production.RegistrationResult
	err := h.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = loadTask(ctx, h.taskRepo, cmd.TaskID)
		if err != nil {
			return err
		}

		if err := task.Update(changes, now); err != nil {
			return err
		}

		if cmd.QualityQuantity != nil {
			r, err := task.OverrideQuality(*cmd.QualityQuantity, cmd.DefectQuantity, actor, now)
			if err != nil {
				return err
			}
			result = &r
		}

		if err := h.taskRepo.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}

		if result != nil {
			opCtx := shared.NewOperationContext(task.ID(), "quality_override")
			return creditStock(ctx, h.stock, task, *result, opCtx, shared.Today(h.clock), "", actor, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &UpdateTaskResponse{Task: dtos.FromTask(task)}
	if result != nil {
		recordRegistrationMetrics(task.ProductID(), "override", *result)
		resp.Registration = dtos.FromRegistration(task, *result)
		common.LoggerFromContext(ctx).Info("task quality overridden",
			zap.String("task_id", task.ID()),
			zap.Int("quality", task.QualityQuantity()),
			zap.Int("defect", task.DefectQuantity()),
		)
	}
	return resp, nil
}

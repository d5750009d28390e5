package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// distributor spreads one production output of a product across its active
// tasks in queue order. Callers run it inside a transaction.
type distributor struct {
	taskRepo production.TaskRepository
	stock    production.StockLedger
}

// distribution is the outcome of one distribute call
type distribution struct {
	plan    production.AllocationPlan
	results []production.RegistrationResult
	report  *dtos.DistributionDTO
}

func (d *distributor) distribute(
	ctx context.Context,
	productID string,
	output production.Quantities,
	opCtx *shared.OperationContext,
	productionDate time.Time,
	notes string,
	actor string,
	now time.Time,
) (*distribution, error) {
	tasks, err := d.taskRepo.FindActiveByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active tasks: %w", err)
	}

	plan, err := production.PlanAllocation(production.SelectCandidates(tasks), output)
	if err != nil {
		return nil, err
	}

	out := &distribution{
		plan: plan,
		report: &dtos.DistributionDTO{
			ProductID:      productID,
			Status:         string(plan.Status()),
			Message:        plan.Describe(),
			Allocations:    make([]*dtos.AllocationDTO, 0, len(plan.Allocations)),
			Overproduction: plan.Surplus,
		},
	}

	for _, alloc := range plan.Allocations {
		task := alloc.Task
		result, err := task.RegisterDelta(alloc.Delta, actor, now)
		if err != nil {
			return nil, fmt.Errorf("failed to register on task %s: %w", task.ID(), err)
		}
		if err := d.taskRepo.Update(ctx, task); err != nil {
			return nil, fmt.Errorf("failed to save task %s: %w", task.ID(), err)
		}
		if err := creditStock(ctx, d.stock, task, result, opCtx, productionDate, notes, actor, now); err != nil {
			return nil, err
		}

		out.results = append(out.results, result)
		out.report.Allocations = append(out.report.Allocations, &dtos.AllocationDTO{
			TaskID:         task.ID(),
			Quality:        alloc.Delta.Quality,
			Defect:         alloc.Delta.Defect,
			Completed:      result.WasCompleted,
			Remaining:      result.RemainingQuantity,
			Overproduction: result.OverproductionQuantity,
		})
	}

	if plan.Surplus > 0 {
		movement := production.MovementForSurplus(productID, plan.Surplus, opCtx, productionDate, notes, actor, now)
		if err := d.stock.Record(ctx, movement); err != nil {
			return nil, fmt.Errorf("failed to record overproduction for product %s: %w", productID, err)
		}
	}

	return out, nil
}

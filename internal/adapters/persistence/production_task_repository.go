package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// GormProductionTaskRepository implements production.TaskRepository using GORM
type GormProductionTaskRepository struct {
	db *gorm.DB
}

// NewGormProductionTaskRepository creates a new GORM production task repository
func NewGormProductionTaskRepository(db *gorm.DB) *GormProductionTaskRepository {
	return &GormProductionTaskRepository{db: db}
}

const queueOrder = "priority DESC, sort_order ASC, created_at ASC"

// Create persists a new task
func (r *GormProductionTaskRepository) Create(ctx context.Context, task *production.ProductionTask) error {
	model := taskToModel(task)
	model.Version = 1

	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	task.MarkPersisted(model.Version)
	return nil
}

// Update saves changes guarded by the task's version
func (r *GormProductionTaskRepository) Update(ctx context.Context, task *production.ProductionTask) error {
	model := taskToModel(task)
	expected := model.Version
	model.Version = expected + 1

	result := conn(ctx, r.db).
		Model(&ProductionTaskModel{}).
		Where("id = ? AND version = ?", model.ID, expected).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &shared.ConcurrentModificationError{Entity: "production task", ID: model.ID}
	}

	task.MarkPersisted(model.Version)
	return nil
}

// Delete hard-removes a task
func (r *GormProductionTaskRepository) Delete(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&ProductionTaskModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &production.ErrTaskNotFound{TaskID: id}
	}
	return nil
}

// FindByID retrieves a task by its ID
func (r *GormProductionTaskRepository) FindByID(ctx context.Context, id string) (*production.ProductionTask, error) {
	var model ProductionTaskModel
	result := conn(ctx, r.db).Where("id = ?", id).First(&model)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find task: %w", result.Error)
	}

	return modelToTask(&model)
}

// List retrieves tasks matching the filter in queue order
func (r *GormProductionTaskRepository) List(ctx context.Context, filter production.TaskFilter) ([]*production.ProductionTask, error) {
	query := conn(ctx, r.db).Model(&ProductionTaskModel{})

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where("status IN ?", statuses)
	}
	if filter.ProductID != "" {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.OrderID != "" {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.From != nil || filter.To != nil {
		query = query.Where("(planned_start_date IS NOT NULL OR planned_end_date IS NOT NULL)")
	}
	if filter.From != nil {
		query = query.Where("(planned_end_date IS NULL OR planned_end_date >= ?)", shared.StartOfDay(*filter.From))
	}
	if filter.To != nil {
		query = query.Where("(planned_start_date IS NULL OR planned_start_date <= ?)", shared.StartOfDay(*filter.To))
	}

	var models []ProductionTaskModel
	if err := query.Order(queueOrder).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return modelsToTasks(models)
}

// FindActiveByProduct retrieves pending and in_progress tasks of a product
func (r *GormProductionTaskRepository) FindActiveByProduct(ctx context.Context, productID string) ([]*production.ProductionTask, error) {
	return r.List(ctx, production.TaskFilter{
		Statuses:  []production.TaskStatus{production.TaskStatusPending, production.TaskStatusInProgress},
		ProductID: productID,
	})
}

// FindPending retrieves pending tasks, optionally for one product
func (r *GormProductionTaskRepository) FindPending(ctx context.Context, productID string) ([]*production.ProductionTask, error) {
	return r.List(ctx, production.TaskFilter{
		Statuses:  []production.TaskStatus{production.TaskStatusPending},
		ProductID: productID,
	})
}

// FindCompletedByProduct retrieves the most recently completed tasks of a product
func (r *GormProductionTaskRepository) FindCompletedByProduct(ctx context.Context, productID string, limit int) ([]*production.ProductionTask, error) {
	query := conn(ctx, r.db).
		Where("product_id = ? AND status = ?", productID, string(production.TaskStatusCompleted)).
		Order("completed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []ProductionTaskModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find completed tasks: %w", err)
	}
	return modelsToTasks(models)
}

func modelsToTasks(models []ProductionTaskModel) ([]*production.ProductionTask, error) {
	tasks := make([]*production.ProductionTask, len(models))
	for i := range models {
		t, err := modelToTask(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert task model: %w", err)
		}
		tasks[i] = t
	}
	return tasks, nil
}

func taskToModel(task *production.ProductionTask) *ProductionTaskModel {
	s := task.Snapshot()
	return &ProductionTaskModel{
		ID:                s.ID,
		ProductID:         s.ProductID,
		OrderID:           s.OrderID,
		RequestedQuantity: s.RequestedQuantity,
		ProducedQuantity:  s.ProducedQuantity,
		QualityQuantity:   s.QualityQuantity,
		DefectQuantity:    s.DefectQuantity,
		Status:            string(s.Status),
		PlanningStatus:    string(s.PlanningStatus),
		Priority:          s.Priority.Int(),
		SortOrder:         s.SortOrder,
		PlannedStartDate:  s.PlannedStartDate,
		PlannedEndDate:    s.PlannedEndDate,
		CreatedBy:         s.CreatedBy,
		AssignedTo:        s.AssignedTo,
		StartedBy:         s.StartedBy,
		CompletedBy:       s.CompletedBy,
		CancelledBy:       s.CancelledBy,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		StartedAt:         s.StartedAt,
		CompletedAt:       s.CompletedAt,
		CancelledAt:       s.CancelledAt,
		Notes:             s.Notes,
		CompletionNote:    s.CompletionNote,
		CancelReason:      s.CancelReason,
		Version:           s.Version,
	}
}

func modelToTask(m *ProductionTaskModel) (*production.ProductionTask, error) {
	return production.ReconstructProductionTask(production.TaskSnapshot{
		ID:                m.ID,
		ProductID:         m.ProductID,
		OrderID:           m.OrderID,
		RequestedQuantity: m.RequestedQuantity,
		ProducedQuantity:  m.ProducedQuantity,
		QualityQuantity:   m.QualityQuantity,
		DefectQuantity:    m.DefectQuantity,
		Status:            production.TaskStatus(m.Status),
		PlanningStatus:    production.PlanningStatus(m.PlanningStatus),
		Priority:          production.Priority(m.Priority),
		SortOrder:         m.SortOrder,
		PlannedStartDate:  m.PlannedStartDate,
		PlannedEndDate:    m.PlannedEndDate,
		CreatedBy:         m.CreatedBy,
		AssignedTo:        m.AssignedTo,
		StartedBy:         m.StartedBy,
		CompletedBy:       m.CompletedBy,
		CancelledBy:       m.CancelledBy,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		StartedAt:         m.StartedAt,
		CompletedAt:       m.CompletedAt,
		CancelledAt:       m.CancelledAt,
		Notes:             m.Notes,
		CompletionNote:    m.CompletionNote,
		CancelReason:      m.CancelReason,
		Version:           m.Version,
	})
}

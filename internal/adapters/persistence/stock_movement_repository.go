package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
)

// GormStockLedger implements production.StockLedger using GORM
type GormStockLedger struct {
	db *gorm.DB
}

// NewGormStockLedger creates a new GORM stock ledger
func NewGormStockLedger(db *gorm.DB) *GormStockLedger {
	return &GormStockLedger{db: db}
}

// Record stores a movement
func (r *GormStockLedger) Record(ctx context.Context, movement production.StockMovement) error {
	model := &StockMovementModel{
		ID:             movement.ID,
		ProductID:      movement.ProductID,
		MovementType:   string(movement.Type),
		Quantity:       movement.Quantity,
		Overproduction: movement.Overproduction,
		ProductionDate: movement.ProductionDate,
		Reference:      movement.Reference,
		Notes:          movement.Notes,
		CreatedBy:      movement.CreatedBy,
		CreatedAt:      movement.CreatedAt,
	}
	if movement.TaskID != "" {
		taskID := movement.TaskID
		model.TaskID = &taskID
	}

	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}

// FindByTask lists the movements of a task, oldest first
func (r *GormStockLedger) FindByTask(ctx context.Context, taskID string) ([]production.StockMovement, error) {
	var models []StockMovementModel
	result := conn(ctx, r.db).
		Where("task_id = ?", taskID).
		Order("created_at ASC, seq ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find stock movements: %w", result.Error)
	}

	return movementsFromModels(models), nil
}

// FindUnallocatedByProduct lists surplus movements not attached to any task
func (r *GormStockLedger) FindUnallocatedByProduct(ctx context.Context, productID string) ([]production.StockMovement, error) {
	var models []StockMovementModel
	result := conn(ctx, r.db).
		Where("task_id IS NULL AND product_id = ?", productID).
		Order("created_at ASC, seq ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find unallocated movements: %w", result.Error)
	}

	return movementsFromModels(models), nil
}

// BalanceByProduct sums every movement of a product
func (r *GormStockLedger) BalanceByProduct(ctx context.Context, productID string) (int, error) {
	var total int
	result := conn(ctx, r.db).
		Model(&StockMovementModel{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to compute stock balance: %w", result.Error)
	}
	return total, nil
}

func movementsFromModels(models []StockMovementModel) []production.StockMovement {
	movements := make([]production.StockMovement, len(models))
	for i, m := range models {
		taskID := ""
		if m.TaskID != nil {
			taskID = *m.TaskID
		}
		movements[i] = production.StockMovement{
			ID:             m.ID,
			TaskID:         taskID,
			ProductID:      m.ProductID,
			Type:           production.MovementType(m.MovementType),
			Quantity:       m.Quantity,
			Overproduction: m.Overproduction,
			ProductionDate: m.ProductionDate,
			Reference:      m.Reference,
			Notes:          m.Notes,
			CreatedBy:      m.CreatedBy,
			CreatedAt:      m.CreatedAt,
		}
	}
	return movements
}

package production

import (
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// MovementType classifies a stock movement created by production
type MovementType string

const (
	// MovementProductionIn credits quality output of a task
	MovementProductionIn MovementType = "PRODUCTION_IN"

	// MovementCorrectionOut debits stock after a negative correction
	MovementCorrectionOut MovementType = "CORRECTION_OUT"

	// MovementUnallocatedSurplus credits output no active task could absorb
	MovementUnallocatedSurplus MovementType = "UNALLOCATED_OVERPRODUCTION"
)

// StockMovement is the record handed to the stock service for every quality change.
// Quantity is signed: positive credits, negative debits.
type StockMovement struct {
	ID             string
	TaskID         string // empty for unallocated surplus
	ProductID      string
	Type           MovementType
	Quantity       int
	Overproduction int
	ProductionDate time.Time
	Reference      string
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
}

// MovementForRegistration builds the stock movement for a task registration.
// Returns false when the registration did not change the quality counter.
func MovementForRegistration(task *ProductionTask, result RegistrationResult, opCtx *shared.OperationContext, productionDate time.Time, notes, actor string, now time.Time) (StockMovement, bool) {
	qty := result.QualityDelta()
	if qty == 0 {
		return StockMovement{}, false
	}
	movementType := MovementProductionIn
	if qty < 0 {
		movementType = MovementCorrectionOut
	}
	return StockMovement{
		ID:             uuid.New().String(),
		TaskID:         task.ID(),
		ProductID:      task.ProductID(),
		Type:           movementType,
		Quantity:       qty,
		Overproduction: result.OverproductionDelta,
		ProductionDate: shared.StartOfDay(productionDate),
		Reference:      opCtx.String(),
		Notes:          notes,
		CreatedBy:      actor,
		CreatedAt:      now,
	}, true
}

// MovementForSurplus builds the stock movement for output left over after allocation
func MovementForSurplus(productID string, quantity int, opCtx *shared.OperationContext, productionDate time.Time, notes, actor string, now time.Time) StockMovement {
	return StockMovement{
		ID:             uuid.New().String(),
		ProductID:      productID,
		Type:           MovementUnallocatedSurplus,
		Quantity:       quantity,
		Overproduction: quantity,
		ProductionDate: shared.StartOfDay(productionDate),
		Reference:      opCtx.String(),
		Notes:          notes,
		CreatedBy:      actor,
		CreatedAt:      now,
	}
}

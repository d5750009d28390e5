package dtos

import (
	"time"

	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
)

// TaskDTO is the wire and display representation of a production task
type TaskDTO struct {
	ID                     string     `json:"id"`
	ProductID              string     `json:"productId"`
	OrderID                string     `json:"orderId,omitempty"`
	RequestedQuantity      int        `json:"requestedQuantity"`
	ProducedQuantity       int        `json:"producedQuantity"`
	QualityQuantity        int        `json:"qualityQuantity"`
	DefectQuantity         int        `json:"defectQuantity"`
	RemainingQuantity      int        `json:"remainingQuantity"`
	OverproductionQuantity int        `json:"overproductionQuantity"`
	Status                 string     `json:"status"`
	PlanningStatus         string     `json:"planningStatus"`
	Priority               int        `json:"priority"`
	SortOrder              int        `json:"sortOrder"`
	PlannedStartDate       *time.Time `json:"plannedStartDate,omitempty"`
	PlannedEndDate         *time.Time `json:"plannedEndDate,omitempty"`
	CreatedBy              string     `json:"createdBy,omitempty"`
	AssignedTo             string     `json:"assignedTo,omitempty"`
	StartedBy              string     `json:"startedBy,omitempty"`
	CompletedBy            string     `json:"completedBy,omitempty"`
	CancelledBy            string     `json:"cancelledBy,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
	StartedAt              *time.Time `json:"startedAt,omitempty"`
	CompletedAt            *time.Time `json:"completedAt,omitempty"`
	CancelledAt            *time.Time `json:"cancelledAt,omitempty"`
	Notes                  string     `json:"notes,omitempty"`
	CompletionNote         string     `json:"completionNote,omitempty"`
	CancelReason           string     `json:"cancelReason,omitempty"`
}

// FromTask converts a domain task into its DTO
func FromTask(t *production.ProductionTask) *TaskDTO {
	if t == nil {
		return nil
	}
	return &TaskDTO{
		ID:                     t.ID(),
		ProductID:              t.ProductID(),
		OrderID:                t.OrderID(),
		RequestedQuantity:      t.RequestedQuantity(),
		ProducedQuantity:       t.ProducedQuantity(),
		QualityQuantity:        t.QualityQuantity(),
		DefectQuantity:         t.DefectQuantity(),
		RemainingQuantity:      t.RemainingQuantity(),
		OverproductionQuantity: t.OverproductionQuantity(),
		Status:                 string(t.Status()),
		PlanningStatus:         string(t.PlanningStatus()),
		Priority:               t.Priority().Int(),
		SortOrder:              t.SortOrder(),
		PlannedStartDate:       t.PlannedStartDate(),
		PlannedEndDate:         t.PlannedEndDate(),
		CreatedBy:              t.CreatedBy(),
		AssignedTo:             t.AssignedTo(),
		StartedBy:              t.StartedBy(),
		CompletedBy:            t.CompletedBy(),
		CancelledBy:            t.CancelledBy(),
		CreatedAt:              t.CreatedAt(),
		UpdatedAt:              t.UpdatedAt(),
		StartedAt:              t.StartedAt(),
		CompletedAt:            t.CompletedAt(),
		CancelledAt:            t.CancelledAt(),
		Notes:                  t.Notes(),
		CompletionNote:         t.CompletionNote(),
		CancelReason:           t.CancelReason(),
	}
}

// FromTasks converts a slice of domain tasks
func FromTasks(tasks []*production.ProductionTask) []*TaskDTO {
	out := make([]*TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = FromTask(t)
	}
	return out
}

// RegistrationDTO reports the effect of a quantity change
type RegistrationDTO struct {
	Task                   *TaskDTO `json:"task"`
	WasCompleted           bool     `json:"wasCompleted"`
	Reopened               bool     `json:"reopened"`
	RemainingQuantity      int      `json:"remainingQuantity"`
	OverproductionQuantity int      `json:"overproductionQuantity"`
}

// FromRegistration builds the registration report for a task
func FromRegistration(t *production.ProductionTask, r production.RegistrationResult) *RegistrationDTO {
	return &RegistrationDTO{
		Task:                   FromTask(t),
		WasCompleted:           r.WasCompleted,
		Reopened:               r.Reopened,
		RemainingQuantity:      r.RemainingQuantity,
		OverproductionQuantity: r.OverproductionQuantity,
	}
}

// AllocationDTO is the share of a production output booked on one task
type AllocationDTO struct {
	TaskID         string `json:"taskId"`
	Quality        int    `json:"qualityQuantity"`
	Defect         int    `json:"defectQuantity"`
	Completed      bool   `json:"completed"`
	Remaining      int    `json:"remainingQuantity"`
	Overproduction int    `json:"overproductionQuantity"`
}

// DistributionDTO reports how one production output was spread across tasks
type DistributionDTO struct {
	Index          int              `json:"index"`
	Article        string           `json:"article,omitempty"`
	ProductID      string           `json:"productId,omitempty"`
	Status         string           `json:"status"`
	Message        string           `json:"message"`
	Allocations    []*AllocationDTO `json:"allocations"`
	Overproduction int              `json:"overproductionQuantity"`
}

// StockMovementDTO is a stock ledger entry caused by production
type StockMovementDTO struct {
	ID             string    `json:"id"`
	TaskID         string    `json:"taskId,omitempty"`
	ProductID      string    `json:"productId"`
	Type           string    `json:"type"`
	Quantity       int       `json:"quantity"`
	Overproduction int       `json:"overproductionQuantity"`
	ProductionDate time.Time `json:"productionDate"`
	Reference      string    `json:"reference"`
	Notes          string    `json:"notes,omitempty"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

// FromStockMovement converts a movement into its DTO
func FromStockMovement(m production.StockMovement) *StockMovementDTO {
	return &StockMovementDTO{
		ID:             m.ID,
		TaskID:         m.TaskID,
		ProductID:      m.ProductID,
		Type:           string(m.Type),
		Quantity:       m.Quantity,
		Overproduction: m.Overproduction,
		ProductionDate: m.ProductionDate,
		Reference:      m.Reference,
		Notes:          m.Notes,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}

// ProductDTO is the catalog view shown next to a task
type ProductDTO struct {
	ID       string `json:"id"`
	Article  string `json:"article"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// OrderDTO is the order view shown next to a task
type OrderDTO struct {
	ID           string     `json:"id"`
	OrderNumber  string     `json:"orderNumber"`
	CustomerName string     `json:"customerName"`
	Priority     int        `json:"priority"`
	DeliveryDate *time.Time `json:"deliveryDate,omitempty"`
}

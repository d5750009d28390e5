package persistence

import (
	"time"
)

// ProductionTaskModel represents the production_tasks table
type ProductionTaskModel struct {
	ID                string     `gorm:"column:id;primaryKey;not null"`
	ProductID         string     `gorm:"column:product_id;not null;index:idx_production_tasks_product_status"`
	OrderID           string     `gorm:"column:order_id;index"`
	RequestedQuantity int        `gorm:"column:requested_quantity;not null"`
	ProducedQuantity  int        `gorm:"column:produced_quantity;not null;default:0"`
	QualityQuantity   int        `gorm:"column:quality_quantity;not null;default:0"`
	DefectQuantity    int        `gorm:"column:defect_quantity;not null;default:0"`
	Status            string     `gorm:"column:status;not null;index:idx_production_tasks_product_status"`
	PlanningStatus    string     `gorm:"column:planning_status;not null;default:'draft'"`
	Priority          int        `gorm:"column:priority;not null;default:3"`
	SortOrder         int        `gorm:"column:sort_order;not null;default:0"`
	PlannedStartDate  *time.Time `gorm:"column:planned_start_date"`
	PlannedEndDate    *time.Time `gorm:"column:planned_end_date"`
	CreatedBy         string     `gorm:"column:created_by"`
	AssignedTo        string     `gorm:"column:assigned_to"`
	StartedBy         string     `gorm:"column:started_by"`
	CompletedBy       string     `gorm:"column:completed_by"`
	CancelledBy       string     `gorm:"column:cancelled_by"`
	CreatedAt         time.Time  `gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;not null;autoUpdateTime:false"`
	StartedAt         *time.Time `gorm:"column:started_at"`
	CompletedAt       *time.Time `gorm:"column:completed_at"`
	CancelledAt       *time.Time `gorm:"column:cancelled_at"`
	Notes             string     `gorm:"column:notes;type:text"`
	CompletionNote    string     `gorm:"column:completion_note;type:text"`
	CancelReason      string     `gorm:"column:cancel_reason;type:text"`
	Version           int        `gorm:"column:version;not null;default:0"`
}

func (ProductionTaskModel) TableName() string {
	return "production_tasks"
}

// StockMovementModel represents the stock_movements table
type StockMovementModel struct {
	Seq            uint64    `gorm:"column:seq;primaryKey;autoIncrement"` // insertion order
	ID             string    `gorm:"column:id;uniqueIndex;not null"`
	TaskID         *string   `gorm:"column:task_id;index"` // NULL for unallocated surplus
	ProductID      string    `gorm:"column:product_id;not null;index"`
	MovementType   string    `gorm:"column:movement_type;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	Overproduction int       `gorm:"column:overproduction;not null;default:0"`
	ProductionDate time.Time `gorm:"column:production_date;not null"`
	Reference      string    `gorm:"column:reference"`
	Notes          string    `gorm:"column:notes;type:text"`
	CreatedBy      string    `gorm:"column:created_by"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
}

func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ProductModel represents the products table
type ProductModel struct {
	ID       string `gorm:"column:id;primaryKey;not null"`
	Article  string `gorm:"column:article;unique;not null"`
	Name     string `gorm:"column:name;not null"`
	Category string `gorm:"column:category"`
}

func (ProductModel) TableName() string {
	return "products"
}

// OrderModel represents the orders table
type OrderModel struct {
	ID           string     `gorm:"column:id;primaryKey;not null"`
	OrderNumber  string     `gorm:"column:order_number;unique;not null"`
	CustomerName string     `gorm:"column:customer_name"`
	Priority     int        `gorm:"column:priority;not null;default:3"`
	DeliveryDate *time.Time `gorm:"column:delivery_date"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// AllModels lists every table for migrations
func AllModels() []interface{} {
	return []interface{}{
		&ProductModel{},
		&OrderModel{},
		&ProductionTaskModel{},
		&StockMovementModel{},
	}
}

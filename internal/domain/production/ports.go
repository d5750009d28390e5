package production

import (
	"context"
	"time"
)

// TaskFilter narrows task listings. Zero values mean no restriction.
type TaskFilter struct {
	Statuses  []TaskStatus
	ProductID string
	OrderID   string

	// From/To select tasks whose planning window touches the range
	From *time.Time
	To   *time.Time
}

// TaskRepository handles persistence of production tasks
type TaskRepository interface {
	// Create persists a new task
	Create(ctx context.Context, task *ProductionTask) error

	// Update saves changes to an existing task. Fails with
	// shared.ConcurrentModificationError when the stored version moved on.
	Update(ctx context.Context, task *ProductionTask) error

	// Delete hard-removes a task
	Delete(ctx context.Context, id string) error

	// FindByID retrieves a task by its ID, returning nil when absent
	FindByID(ctx context.Context, id string) (*ProductionTask, error)

	// List retrieves tasks matching the filter, ordered by priority then sort order
	List(ctx context.Context, filter TaskFilter) ([]*ProductionTask, error)

	// FindActiveByProduct retrieves pending and in_progress tasks of a product
	FindActiveByProduct(ctx context.Context, productID string) ([]*ProductionTask, error)

	// FindPending retrieves pending tasks, optionally scoped to one product
	FindPending(ctx context.Context, productID string) ([]*ProductionTask, error)

	// FindCompletedByProduct retrieves the most recently completed tasks of a product
	FindCompletedByProduct(ctx context.Context, productID string, limit int) ([]*ProductionTask, error)
}

// StockLedger is the stock/inventory collaborator credited and debited by production
type StockLedger interface {
	// Record stores a movement attributable to its task
	Record(ctx context.Context, movement StockMovement) error

	// FindByTask lists the movements caused by one task, oldest first
	FindByTask(ctx context.Context, taskID string) ([]StockMovement, error)
}

// Product is the read-only catalog view used by production
type Product struct {
	ID       string
	Article  string
	Name     string
	Category string
}

// CatalogService resolves products
type CatalogService interface {
	// FindProduct returns nil when the product does not exist
	FindProduct(ctx context.Context, id string) (*Product, error)

	// FindProductByArticle returns nil when no product carries the article code
	FindProductByArticle(ctx context.Context, article string) (*Product, error)
}

// Order is the read-only view of a customer order a task may belong to
type Order struct {
	ID           string
	OrderNumber  string
	CustomerName string
	Priority     int
	DeliveryDate *time.Time
}

// OrderService resolves orders
type OrderService interface {
	// FindOrder returns nil when the order does not exist
	FindOrder(ctx context.Context, id string) (*Order, error)
}

// Transactor runs a unit of work atomically. Repositories called with the
// context passed to fn take part in the same transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

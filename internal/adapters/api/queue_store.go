package api

import (
	"context"

	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
)

// PendingQueue exposes the server's pending queue, optionally scoped to one
// product, to the optimistic reorderer
type PendingQueue struct {
	client    *ShopfloorClient
	productID string
}

// NewPendingQueue creates a queue view. An empty productID covers every product.
func NewPendingQueue(client *ShopfloorClient, productID string) *PendingQueue {
	return &PendingQueue{client: client, productID: productID}
}

func (q *PendingQueue) LoadQueue(ctx context.Context) ([]*dtos.TaskDTO, error) {
	return q.client.ListTasks(ctx, TaskFilter{
		Statuses:  []string{string(production.TaskStatusPending)},
		ProductID: q.productID,
	})
}

func (q *PendingQueue) CommitOrder(ctx context.Context, taskIDs []string) ([]*dtos.TaskDTO, error) {
	return q.client.ReorderTasks(ctx, taskIDs, q.productID)
}

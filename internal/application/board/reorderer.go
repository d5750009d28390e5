package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
)

// QueueStore is the server side of the pending queue
type QueueStore interface {
	// LoadQueue returns the pending tasks in queue order
	LoadQueue(ctx context.Context) ([]*dtos.TaskDTO, error)
	// CommitOrder persists a full ordering and returns the resulting queue
	CommitOrder(ctx context.Context, taskIDs []string) ([]*dtos.TaskDTO, error)
}

// ErrReorderRejected wraps a failed commit. Queue holds what the server
// reported after the rollback reload.
type ErrReorderRejected struct {
	Cause error
}

func (e *ErrReorderRejected) Error() string {
	return fmt.Sprintf("reorder rejected, queue reloaded: %v", e.Cause)
}

func (e *ErrReorderRejected) Unwrap() error {
	return e.Cause
}

// Reorderer keeps a local copy of the pending queue and applies drag moves
// optimistically. A failed commit is rolled back by reloading from the server.
type Reorderer struct {
	mu    sync.Mutex
	store QueueStore
	queue []*dtos.TaskDTO
}

// NewReorderer creates a reorderer over store
func NewReorderer(store QueueStore) *Reorderer {
	return &Reorderer{store: store}
}

// Load replaces the local queue with the server's
func (r *Reorderer) Load(ctx context.Context) ([]*dtos.TaskDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	queue, err := r.store.LoadQueue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}
	r.queue = queue
	return r.snapshot(), nil
}

// Queue returns the current local queue
func (r *Reorderer) Queue() []*dtos.TaskDTO {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// Move places the task at index from at index to and commits the new order.
func (r *Reorderer) Move(ctx context.Context, from, to int) ([]*dtos.TaskDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if from < 0 || from >= len(r.queue) || to < 0 || to >= len(r.queue) {
		return r.snapshot(), fmt.Errorf("move %d -> %d out of range for queue of %d", from, to, len(r.queue))
	}
	if from == to {
		return r.snapshot(), nil
	}

	previous := r.queue
	r.queue = moved(previous, from, to)

	ids := make([]string, len(r.queue))
	for i, t := range r.queue {
		ids[i] = t.ID
	}

	committed, err := r.store.CommitOrder(ctx, ids)
	if err == nil {
		r.queue = committed
		return r.snapshot(), nil
	}

	reloaded, reloadErr := r.store.LoadQueue(ctx)
	if reloadErr != nil {
		r.queue = previous
		return r.snapshot(), errors.Join(&ErrReorderRejected{Cause: err}, fmt.Errorf("failed to reload queue: %w", reloadErr))
	}
	r.queue = reloaded
	return r.snapshot(), &ErrReorderRejected{Cause: err}
}

func (r *Reorderer) snapshot() []*dtos.TaskDTO {
	out := make([]*dtos.TaskDTO, len(r.queue))
	copy(out, r.queue)
	return out
}

func moved(queue []*dtos.TaskDTO, from, to int) []*dtos.TaskDTO {
	out := make([]*dtos.TaskDTO, 0, len(queue))
	item := queue[from]
	for i, t := range queue {
		if i == from {
			continue
		}
		out = append(out, t)
	}
	out = append(out[:to], append([]*dtos.TaskDTO{item}, out[to:]...)...)
	return out
}

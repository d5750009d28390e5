package queries

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/domain/planning"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// SuggestPlanQuery asks for an estimated window for new production
type SuggestPlanQuery struct {
	ProductID string
	Quantity  int
}

// SuggestPlanResponse is the estimated plan
type SuggestPlanResponse struct {
	ProductID      string    `json:"productId"`
	Quantity       int       `json:"quantity"`
	DurationDays   int       `json:"durationDays"`
	QueueDays      int       `json:"queueDays"`
	DailyRate      float64   `json:"dailyRate"`
	SuggestedStart time.Time `json:"suggestedStartDate"`
	SuggestedEnd   time.Time `json:"suggestedEndDate"`
	Confidence     float64   `json:"confidence"`
	Reasoning      string    `json:"reasoning"`
	SampleCount    int       `json:"sampleCount"`
}

// SuggestPlanHandler handles the SuggestPlan query
type SuggestPlanHandler struct {
	taskRepo production.TaskRepository
	catalog  production.CatalogService
	settings Settings
	clock    shared.Clock
}

// NewSuggestPlanHandler creates a new SuggestPlanHandler
func NewSuggestPlanHandler(taskRepo production.TaskRepository, catalog production.CatalogService, settings Settings, clock shared.Clock) *SuggestPlanHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &SuggestPlanHandler{taskRepo: taskRepo, catalog: catalog, settings: settings.withDefaults(), clock: clock}
}

// Handle executes the SuggestPlan query
func (h *SuggestPlanHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*SuggestPlanQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SuggestPlanQuery")
	}
	if strings.TrimSpace(query.ProductID) == "" {
		return nil, production.NewValidationError("productId", "is required")
	}

	product, err := h.catalog.FindProduct(ctx, query.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	if product == nil {
		return nil, &production.ErrProductNotFound{Reference: query.ProductID}
	}

	completed, err := h.taskRepo.FindCompletedByProduct(ctx, product.ID, h.settings.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load production history: %w", err)
	}
	history := make([]planning.ThroughputSample, 0, len(completed))
	for _, t := range completed {
		if t.StartedAt() == nil || t.CompletedAt() == nil {
			continue
		}
		history = append(history, planning.SampleFromTask(t.QualityQuantity(), *t.StartedAt(), *t.CompletedAt()))
	}

	active, err := h.taskRepo.FindActiveByProduct(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active tasks: %w", err)
	}
	queued := 0
	for _, t := range active {
		queued += t.RemainingQuantity()
	}

	plan, err := planning.SuggestPlan(planning.PlanRequest{
		Quantity:             query.Quantity,
		History:              history,
		QueuedQuantity:       queued,
		DefaultDailyCapacity: h.settings.DefaultDailyCapacity,
		Today:                shared.Today(h.clock),
	})
	if err != nil {
		return nil, err
	}

	return &SuggestPlanResponse{
		ProductID:      product.ID,
		Quantity:       query.Quantity,
		DurationDays:   plan.DurationDays,
		QueueDays:      plan.QueueDays,
		DailyRate:      plan.DailyRate,
		SuggestedStart: plan.SuggestedStart,
		SuggestedEnd:   plan.SuggestedEnd,
		Confidence:     plan.Confidence,
		Reasoning:      plan.Reasoning,
		SampleCount:    plan.SampleCount,
	}, nil
}

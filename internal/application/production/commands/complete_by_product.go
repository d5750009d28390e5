package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/metrics"
	"github.com/andrescamacho/shopfloor-go/internal/application/common"
	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// CompleteByProductCommand distributes one production output across the
// active tasks of a single product.
type CompleteByProductCommand struct {
	ProductID        string
	ProducedQuantity *int
	QualityQuantity  int
	DefectQuantity   int
	ProductionDate   *time.Time
	Notes            string
}

// CompleteByProductResponse reports the distribution
type CompleteByProductResponse struct {
	Distribution *dtos.DistributionDTO `json:"distribution"`
}

// CompleteByProductHandler handles the CompleteByProduct command
type CompleteByProductHandler struct {
	catalog    production.CatalogService
	transactor production.Transactor
	dist       *distributor
	clock      shared.Clock
}

// NewCompleteByProductHandler creates a new CompleteByProductHandler
func NewCompleteByProductHandler(
	taskRepo production.TaskRepository,
	stock production.StockLedger,
	catalog production.CatalogService,
	transactor production.Transactor,
	clock shared.Clock,
) *CompleteByProductHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CompleteByProductHandler{
		catalog:    catalog,
		transactor: transactor,
		dist:       &distributor{taskRepo: taskRepo, stock: stock},
		clock:      clock,
	}
}

// Handle executes the CompleteByProduct command
func (h *CompleteByProductHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CompleteByProductCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CompleteByProductCommand")
	}
	if strings.TrimSpace(cmd.ProductID) == "" {
		return nil, production.NewValidationError("productId", "is required")
	}

	output, err := production.NewQuantities(cmd.ProducedQuantity, cmd.QualityQuantity, cmd.DefectQuantity)
	if err != nil {
		return nil, err
	}

	product, err := h.catalog.FindProduct(ctx, cmd.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	if product == nil {
		return nil, &production.ErrProductNotFound{Reference: cmd.ProductID}
	}

	actor := common.ActorFromContext(ctx).String()
	now := h.clock.Now()
	productionDate := productionDateOrToday(cmd.ProductionDate, h.clock)
	opCtx := shared.NewOperationContext(product.ID, "product_completion")

	var result *distribution
	err = h.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		result, err = h.dist.distribute(ctx, product.ID, output, opCtx, productionDate, cmd.Notes, actor, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	recordRegistrationMetrics(product.ID, "by_product", result.results...)
	if result.plan.Surplus > 0 {
		metrics.RecordUnallocatedSurplus(product.ID, result.plan.Surplus)
	}
	common.LoggerFromContext(ctx).Info("product output distributed",
		zap.String("product_id", product.ID),
		zap.Stringer("output", output),
		zap.Int("tasks", len(result.plan.Allocations)),
		zap.Int("surplus", result.plan.Surplus),
	)

	result.report.Article = product.Article
	return &CompleteByProductResponse{Distribution: result.report}, nil
}

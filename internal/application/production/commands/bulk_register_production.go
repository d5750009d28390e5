package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/metrics"
	"github.com/andrescamacho/shopfloor-go/internal/application/common"
	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// BulkRow is one article line of a shift production sheet
type BulkRow struct {
	Article          string `json:"article" yaml:"article"`
	ProducedQuantity *int   `json:"producedQuantity,omitempty" yaml:"produced,omitempty"`
	QualityQuantity  int    `json:"qualityQuantity" yaml:"quality"`
	DefectQuantity   int    `json:"defectQuantity" yaml:"defect"`
}

// BulkRegisterProductionCommand registers a whole sheet. Rows are applied
// independently, each in its own transaction.
type BulkRegisterProductionCommand struct {
	Rows           []BulkRow
	ProductionDate *time.Time
	Notes          string
}

// BulkRegisterProductionResponse carries the per-row report
type BulkRegisterProductionResponse struct {
	BatchID        string                  `json:"batchId"`
	ProductionDate time.Time               `json:"productionDate"`
	Rows           []*dtos.DistributionDTO `json:"rows"`
	Succeeded      int                     `json:"succeeded"`
	Warnings       int                     `json:"warnings"`
	Failed         int                     `json:"failed"`
}

// BulkRegisterProductionHandler handles the BulkRegisterProduction command
type BulkRegisterProductionHandler struct {
	catalog    production.CatalogService
	transactor production.Transactor
	dist       *distributor
	clock      shared.Clock
}

// NewBulkRegisterProductionHandler creates a new BulkRegisterProductionHandler
func NewBulkRegisterProductionHandler(
	taskRepo production.TaskRepository,
	stock production.StockLedger,
	catalog production.CatalogService,
	transactor production.Transactor,
	clock shared.Clock,
) *BulkRegisterProductionHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &BulkRegisterProductionHandler{
		catalog:    catalog,
		transactor: transactor,
		dist:       &distributor{taskRepo: taskRepo, stock: stock},
		clock:      clock,
	}
}

// Handle executes the BulkRegisterProduction command
func (h *BulkRegisterProductionHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*BulkRegisterProductionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *BulkRegisterProductionCommand")
	}
	if len(cmd.Rows) == 0 {
		return nil, production.NewValidationError("rows", "at least one row is required")
	}

	logger := common.LoggerFromContext(ctx)
	batchID := uuid.New().String()
	resp := &BulkRegisterProductionResponse{
		BatchID:        batchID,
		ProductionDate: productionDateOrToday(cmd.ProductionDate, h.clock),
		Rows:           make([]*dtos.DistributionDTO, 0, len(cmd.Rows)),
	}
	opCtx := shared.NewOperationContext(batchID, "bulk_registration")

	for i, row := range cmd.Rows {
		report := h.processRow(ctx, i, row, opCtx, resp.ProductionDate, cmd.Notes)
		resp.Rows = append(resp.Rows, report)
		metrics.RecordBulkRow(report.Status)

		switch production.RowStatus(report.Status) {
		case production.RowStatusSuccess:
			resp.Succeeded++
		case production.RowStatusWarning:
			resp.Warnings++
		default:
			resp.Failed++
			logger.Warn("bulk row rejected",
				zap.String("batch_id", batchID),
				zap.Int("row", i),
				zap.String("article", row.Article),
				zap.String("reason", report.Message),
			)
		}
	}

	logger.Info("bulk registration processed",
		zap.String("batch_id", batchID),
		zap.Int("rows", len(cmd.Rows)),
		zap.Int("succeeded", resp.Succeeded),
		zap.Int("warnings", resp.Warnings),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// processRow never fails; problems are folded into the row report
func (h *BulkRegisterProductionHandler) processRow(
	ctx context.Context,
	index int,
	row BulkRow,
	opCtx *shared.OperationContext,
	productionDate time.Time,
	notes string,
) *dtos.DistributionDTO {
	failed := func(err error) *dtos.DistributionDTO {
		return &dtos.DistributionDTO{
			Index:       index,
			Article:     row.Article,
			Status:      string(production.RowStatusError),
			Message:     err.Error(),
			Allocations: []*dtos.AllocationDTO{},
		}
	}

	article := strings.TrimSpace(row.Article)
	if article == "" {
		return failed(production.NewValidationError("article", "is required"))
	}
	output, err := production.NewQuantities(row.ProducedQuantity, row.QualityQuantity, row.DefectQuantity)
	if err != nil {
		return failed(err)
	}

	product, err := h.catalog.FindProductByArticle(ctx, article)
	if err != nil {
		return failed(fmt.Errorf("failed to look up article: %w", err))
	}
	if product == nil {
		return failed(&production.ErrProductNotFound{Reference: article})
	}

	actor := common.ActorFromContext(ctx).String()
	now := h.clock.Now()

	var result *distribution
	err = h.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		result, err = h.dist.distribute(ctx, product.ID, output, opCtx, productionDate, notes, actor, now)
		return err
	})
	if err != nil {
		report := failed(err)
		report.ProductID = product.ID
		return report
	}

	recordRegistrationMetrics(product.ID, "bulk", result.results...)
	if result.plan.Surplus > 0 {
		metrics.RecordUnallocatedSurplus(product.ID, result.plan.Surplus)
	}

	result.report.Index = index
	result.report.Article = article
	return result.report
}

package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	planningQueries "github.com/andrescamacho/shopfloor-go/internal/application/planning/queries"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/commands"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
)

// ProductionHandler serves product-level registration and planning routes
type ProductionHandler struct {
	mediator mediator.Mediator
}

func NewProductionHandler(m mediator.Mediator) *ProductionHandler {
	return &ProductionHandler{mediator: m}
}

// Bulk always answers 200 once the sheet is accepted; row failures are in the report
func (h *ProductionHandler) Bulk(c *gin.Context) {
	var req dtos.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rows := make([]commands.BulkRow, len(req.Rows))
	for i, r := range req.Rows {
		rows[i] = commands.BulkRow{
			Article:          r.Article,
			ProducedQuantity: r.ProducedQuantity,
			QualityQuantity:  r.QualityQuantity,
			DefectQuantity:   r.DefectQuantity,
		}
	}

	resp, err := mediator.Send[*commands.BulkRegisterProductionResponse](c.Request.Context(), h.mediator, &commands.BulkRegisterProductionCommand{
		Rows:           rows,
		ProductionDate: req.ProductionDate.Ptr(),
		Notes:          req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductionHandler) ByProduct(c *gin.Context) {
	var req dtos.ByProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := mediator.Send[*commands.CompleteByProductResponse](c.Request.Context(), h.mediator, &commands.CompleteByProductCommand{
		ProductID:        req.ProductID,
		ProducedQuantity: req.ProducedQuantity,
		QualityQuantity:  req.QualityQuantity,
		DefectQuantity:   req.DefectQuantity,
		ProductionDate:   req.ProductionDate.Ptr(),
		Notes:            req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductionHandler) Overlaps(c *gin.Context) {
	var req dtos.OverlapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := mediator.Send[*planningQueries.CheckOverlapsResponse](c.Request.Context(), h.mediator, &planningQueries.CheckOverlapsQuery{
		StartDate:     req.StartDate.Ptr(),
		EndDate:       req.EndDate.Ptr(),
		ProductID:     req.ProductID,
		ExcludeTaskID: req.ExcludeTaskID,
		Alternatives:  req.Alternatives,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductionHandler) Suggest(c *gin.Context) {
	var req dtos.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := mediator.Send[*planningQueries.SuggestPlanResponse](c.Request.Context(), h.mediator, &planningQueries.SuggestPlanQuery{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/commands"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/queries"
)

// TaskHandler serves the /tasks routes
type TaskHandler struct {
	mediator mediator.Mediator
}

func NewTaskHandler(m mediator.Mediator) *TaskHandler {
	return &TaskHandler{mediator: m}
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req dtos.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := mediator.Send[*commands.TaskResponse](c.Request.Context(), h.mediator, &commands.CreateTaskCommand{
		ProductID:         req.ProductID,
		RequestedQuantity: req.RequestedQuantity,
		Priority:          req.Priority,
		PlannedStartDate:  req.PlannedStartDate.Ptr(),
		PlannedEndDate:    req.PlannedEndDate.Ptr(),
		OrderID:           req.OrderID,
		AssignedTo:        req.AssignedTo,
		Notes:             req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TaskHandler) List(c *gin.Context) {
	query := &queries.ListTasksQuery{
		ProductID: c.Query("productId"),
		OrderID:   c.Query("orderId"),
	}
	if raw := c.Query("status"); raw != "" {
		query.Statuses = strings.Split(raw, ",")
	}
	var err error
	if query.From, err = dateQuery(c, "from"); err != nil {
		badRequest(c, err)
		return
	}
	if query.To, err = dateQuery(c, "to"); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := mediator.Send[*queries.ListTasksResponse](c.Request.Context(), h.mediator, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) Get(c *gin.Context) {
	resp, err := mediator.Send[*queries.GetTaskResponse](c.Request.Context(), h.mediator, &queries.GetTaskQuery{TaskID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) Update(c *gin.Context) {
	var req dtos.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := mediator.Send[*commands.UpdateTaskResponse](c.Request.Context(), h.mediator, &commands.UpdateTaskCommand{
		TaskID:            c.Param("id"),
		RequestedQuantity: req.RequestedQuantity,
		Priority:          req.Priority,
		AssignedTo:        req.AssignedTo,
		Notes:             req.Notes,
		PlannedStartDate:  req.PlannedStartDate.Ptr(),
		PlannedEndDate:    req.PlannedEndDate.Ptr(),
		ClearPlannedStart: req.ClearPlannedStart,
		ClearPlannedEnd:   req.ClearPlannedEnd,
		PlanningStatus:    req.PlanningStatus,
		QualityQuantity:   req.QualityQuantity,
		DefectQuantity:    req.DefectQuantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	if _, err := mediator.Send[*commands.DeleteTaskResponse](c.Request.Context(), h.mediator, &commands.DeleteTaskCommand{TaskID: c.Param("id")}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) Start(c *gin.Context) {
	h.transition(c, &commands.StartTaskCommand{TaskID: c.Param("id")})
}

func (h *TaskHandler) Pause(c *gin.Context) {
	h.transition(c, &commands.PauseTaskCommand{TaskID: c.Param("id")})
}

func (h *TaskHandler) Resume(c *gin.Context) {
	h.transition(c, &commands.ResumeTaskCommand{TaskID: c.Param("id")})
}

func (h *TaskHandler) Cancel(c *gin.Context) {
	var req dtos.CancelTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	h.transition(c, &commands.CancelTaskCommand{TaskID: c.Param("id"), Reason: req.Reason})
}

func (h *TaskHandler) transition(c *gin.Context, cmd mediator.Request) {
	resp, err := mediator.Send[*commands.TaskResponse](c.Request.Context(), h.mediator, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) Complete(c *gin.Context) {
	var req dtos.QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.registration(c, &commands.CompleteTaskCommand{
		TaskID:           c.Param("id"),
		ProducedQuantity: req.ProducedQuantity,
		QualityQuantity:  req.QualityQuantity,
		DefectQuantity:   req.DefectQuantity,
		Notes:            req.Notes,
		ProductionDate:   req.ProductionDate.Ptr(),
	})
}

func (h *TaskHandler) Register(c *gin.Context) {
	var req dtos.QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.registration(c, &commands.RegisterProductionCommand{
		TaskID:           c.Param("id"),
		ProducedQuantity: req.ProducedQuantity,
		QualityQuantity:  req.QualityQuantity,
		DefectQuantity:   req.DefectQuantity,
		Notes:            req.Notes,
		ProductionDate:   req.ProductionDate.Ptr(),
	})
}

func (h *TaskHandler) registration(c *gin.Context, cmd mediator.Request) {
	resp, err := mediator.Send[*commands.RegistrationResponse](c.Request.Context(), h.mediator, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) Movements(c *gin.Context) {
	resp, err := mediator.Send[*queries.ListTaskMovementsResponse](c.Request.Context(), h.mediator, &queries.ListTaskMovementsQuery{TaskID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) Reorder(c *gin.Context) {
	var req dtos.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := mediator.Send[*commands.ReorderTasksResponse](c.Request.Context(), h.mediator, &commands.ReorderTasksCommand{
		TaskIDs:   req.TaskIDs,
		ProductID: req.ProductID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func dateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := dtos.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d.Time, nil
}

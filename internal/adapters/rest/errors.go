package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/andrescamacho/shopfloor-go/internal/application/common"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/planning"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// respondError maps an application error onto a status code and error body
func respondError(c *gin.Context, err error) {
	var validation *shared.ValidationError
	var window *planning.ErrInvalidWindow
	var conflict *shared.ConcurrentModificationError

	switch {
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, dtos.ErrorResponse{
			Error: err.Error(), Code: "validation_error", Field: validation.Field,
		})
	case errors.As(err, &window):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, dtos.ErrorResponse{
			Error: err.Error(), Code: "validation_error", Field: "plannedEndDate",
		})
	case production.IsNotFound(err):
		abort(c, http.StatusNotFound, "not_found", err.Error())
	case production.IsStateError(err):
		abort(c, http.StatusConflict, "invalid_state", err.Error())
	case errors.As(err, &conflict):
		abort(c, http.StatusConflict, "concurrent_modification", err.Error())
	default:
		common.LoggerFromContext(c.Request.Context()).Error("request failed", zap.Error(err))
		abort(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// badRequest reports a body or query that could not be decoded
func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, dtos.ErrorResponse{
		Error: "invalid request", Code: "validation_error", Details: err.Error(),
	})
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dtos.ErrorResponse{Error: message, Code: code})
}

package rest_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/rest"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/test/helpers"
)

func TestFlow_CreateRegisterAndInspect(t *testing.T) {
	// Arrange
	f := helpers.NewProductionFixture(t)
	require.NoError(t, f.SeedProduct("prod-1", "ART-1"))
	router := rest.NewRouter(f.Mediator, rest.Options{Auth: authConfig()})
	token := signToken(t, "planner", rest.PermissionProductionWrite)

	rec := do(t, router, http.MethodPost, "/api/v1/tasks", token, map[string]interface{}{
		"productId":         "prod-1",
		"requestedQuantity": 50,
		"plannedStartDate":  f.Day(0).Format("2006-01-02"),
		"plannedEndDate":    f.Day(2).Format("2006-01-02"),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Task dtos.TaskDTO `json:"task"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "planner", created.Task.CreatedBy)

	// Act
	rec = do(t, router, http.MethodPost, "/api/v1/tasks/"+created.Task.ID+"/register", token, dtos.QuantityRequest{QualityQuantity: 60})

	// Assert
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var registered struct {
		Registration dtos.RegistrationDTO `json:"registration"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.True(t, registered.Registration.WasCompleted)
	assert.Equal(t, 10, registered.Registration.OverproductionQuantity)
	assert.Equal(t, "completed", registered.Registration.Task.Status)

	rec = do(t, router, http.MethodGet, "/api/v1/tasks/"+created.Task.ID+"/movements", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var movements struct {
		Movements []dtos.StockMovementDTO `json:"movements"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movements))
	require.Len(t, movements.Movements, 1)
	assert.Equal(t, 60, movements.Movements[0].Quantity)

	rec = do(t, router, http.MethodDelete, "/api/v1/tasks/"+created.Task.ID, token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFlow_BulkReportsRowsIndependently(t *testing.T) {
	f := helpers.NewProductionFixture(t)
	require.NoError(t, f.SeedProduct("prod-1", "ART-1"))
	router := rest.NewRouter(f.Mediator, rest.Options{Auth: authConfig()})
	token := signToken(t, "planner", rest.PermissionProductionWrite)

	rec := do(t, router, http.MethodPost, "/api/v1/tasks", token, map[string]interface{}{
		"productId":         "prod-1",
		"requestedQuantity": 20,
		"plannedStartDate":  f.Day(0).Format("2006-01-02"),
		"plannedEndDate":    f.Day(1).Format("2006-01-02"),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/v1/production/bulk", token, dtos.BulkRequest{
		Rows: []dtos.BulkRowRequest{
			{Article: "ART-1", QualityQuantity: 20},
			{Article: "NOPE", QualityQuantity: 5},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report struct {
		Rows      []dtos.DistributionDTO `json:"rows"`
		Succeeded int                    `json:"succeeded"`
		Failed    int                    `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Rows, 2)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "error", report.Rows[1].Status)
}

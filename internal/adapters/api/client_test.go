package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/api"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/application/session"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
	"github.com/andrescamacho/shopfloor-go/internal/infrastructure/config"
)

func newClient(t *testing.T, handler http.HandlerFunc) (*api.ShopfloorClient, *session.Manager) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess := session.NewManager(nil, nil)
	sess.Login("secret-token", "planner", []string{session.PermissionProductionWrite})

	cfg := config.ClientConfig{BaseURL: server.URL + "/api/v1", Timeout: time.Second}
	return api.NewShopfloorClient(cfg, sess, nil, shared.NewMockClock(time.Time{})), sess
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClient_ListTasksSendsFilterAndToken(t *testing.T) {
	// Arrange
	var gotAuth, gotQuery, gotPath string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"tasks": []map[string]interface{}{{"id": "t-1", "status": "pending", "priority": 5}},
		})
	})
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	// Act
	tasks, err := client.ListTasks(context.Background(), api.TaskFilter{
		Statuses:  []string{"pending", "in_progress"},
		ProductID: "prod-1",
		From:      &from,
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t-1", tasks[0].ID)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "/api/v1/tasks", gotPath)
	assert.Contains(t, gotQuery, "status=pending%2Cin_progress")
	assert.Contains(t, gotQuery, "productId=prod-1")
	assert.Contains(t, gotQuery, "from=2025-03-10")
}

func TestClient_RegisterProductionPostsBody(t *testing.T) {
	var body dtos.QuantityRequest
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/tasks/t-1/register", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"registration": map[string]interface{}{"wasCompleted": true, "overproductionQuantity": 10},
		})
	})

	reg, err := client.RegisterProduction(context.Background(), "t-1", dtos.QuantityRequest{QualityQuantity: 50})

	require.NoError(t, err)
	assert.True(t, reg.WasCompleted)
	assert.Equal(t, 10, reg.OverproductionQuantity)
	assert.Equal(t, 50, body.QualityQuantity)
}

func TestClient_ErrorResponsesBecomeAPIErrors(t *testing.T) {
	client, sess := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, dtos.ErrorResponse{
			Error: "quality correction exceeds recorded quantity", Code: "validation_error", Field: "qualityQuantity",
		})
	})

	_, err := client.RegisterProduction(context.Background(), "t-1", dtos.QuantityRequest{QualityQuantity: -99})

	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
	assert.False(t, api.IsTransport(err))
	assert.Contains(t, err.Error(), "qualityQuantity")
	assert.True(t, sess.Authenticated())
}

func TestClient_UnauthorizedInvalidatesSessionOnce(t *testing.T) {
	// Arrange
	client, sess := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, dtos.ErrorResponse{Error: "token expired", Code: "unauthorized"})
	})
	var invalidations atomic.Int32
	sess.Subscribe(func(e session.Event) {
		if e == session.EventInvalidated {
			invalidations.Add(1)
		}
	})

	// Act
	_, err := client.StartTask(context.Background(), "t-1")

	// Assert
	require.Error(t, err)
	assert.True(t, api.IsAuth(err))
	assert.False(t, sess.Authenticated())
	assert.Equal(t, int32(1), invalidations.Load())

	_, err = client.StartTask(context.Background(), "t-1")
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
	assert.Equal(t, int32(1), invalidations.Load())
}

func TestClient_TransportFailureIsNotRetried(t *testing.T) {
	// Arrange
	var calls atomic.Int32
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	// Act
	_, err := client.PauseTask(context.Background(), "t-1")

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrTransport)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_BreakerOpensAfterRepeatedTransportFailures(t *testing.T) {
	var calls atomic.Int32
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 3; i++ {
		_, err := client.ResumeTask(context.Background(), "t-1")
		require.ErrorIs(t, err, api.ErrTransport)
	}
	assert.Equal(t, api.CircuitOpen, client.Breaker().State())

	_, err := client.ResumeTask(context.Background(), "t-1")

	assert.ErrorIs(t, err, api.ErrTransport)
	assert.ErrorIs(t, err, api.ErrCircuitOpen)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ReorderThroughPendingQueue(t *testing.T) {
	var reorder dtos.ReorderRequest
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/tasks/reorder":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&reorder))
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"tasks": []map[string]interface{}{{"id": "b"}, {"id": "a"}},
			})
		default:
			assert.Equal(t, "status=pending", r.URL.RawQuery)
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"tasks": []map[string]interface{}{{"id": "a"}, {"id": "b"}},
			})
		}
	})
	queue := api.NewPendingQueue(client, "")

	loaded, err := queue.LoadQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	committed, err := queue.CommitOrder(context.Background(), []string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, "b", committed[0].ID)
	assert.Equal(t, []string{"b", "a"}, reorder.TaskIDs)
}

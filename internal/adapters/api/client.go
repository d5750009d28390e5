package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
	"github.com/andrescamacho/shopfloor-go/internal/infrastructure/config"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultBreakerFailures = 3
	defaultBreakerCooldown = 30 * time.Second
)

// Session supplies the bearer token and is torn down when the server refuses it
type Session interface {
	Token() (string, error)
	Invalidate(ctx context.Context)
}

// ShopfloorClient talks to the shopfloor server REST API.
// Requests are never retried: a transport failure is reported as ErrTransport
// and the operator re-submits when the server is reachable again.
type ShopfloorClient struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	breaker     *CircuitBreaker
	baseURL     string
	session     Session
	logger      *zap.Logger
}

// NewShopfloorClient creates a client from the CLI configuration. A nil clock uses RealClock.
func NewShopfloorClient(cfg config.ClientConfig, session Session, logger *zap.Logger, clock shared.Clock) *ShopfloorClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := rate.Inf
	burst := cfg.RateLimit.Burst
	if cfg.RateLimit.Requests > 0 {
		limit = rate.Limit(cfg.RateLimit.Requests)
	}
	if burst <= 0 {
		burst = 1
	}

	return &ShopfloorClient{
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(limit, burst),
		breaker:     NewCircuitBreaker(defaultBreakerFailures, defaultBreakerCooldown, IsTransport, clock),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		session:     session,
		logger:      logger,
	}
}

// Breaker exposes the circuit breaker state for status output
func (c *ShopfloorClient) Breaker() *CircuitBreaker {
	return c.breaker
}

// TaskFilter narrows ListTasks
type TaskFilter struct {
	Statuses  []string
	ProductID string
	OrderID   string
	From      *time.Time
	To        *time.Time
}

func (f TaskFilter) values() url.Values {
	v := url.Values{}
	if len(f.Statuses) > 0 {
		v.Set("status", strings.Join(f.Statuses, ","))
	}
	if f.ProductID != "" {
		v.Set("productId", f.ProductID)
	}
	if f.OrderID != "" {
		v.Set("orderId", f.OrderID)
	}
	if f.From != nil {
		v.Set("from", dtos.Date{Time: *f.From}.String())
	}
	if f.To != nil {
		v.Set("to", dtos.Date{Time: *f.To}.String())
	}
	return v
}

// CreateTask creates a pending task
func (c *ShopfloorClient) CreateTask(ctx context.Context, req dtos.CreateTaskRequest) (*dtos.TaskDTO, error) {
	var resp struct {
		Task *dtos.TaskDTO `json:"task"`
	}
	if err := c.request(ctx, http.MethodPost, "/tasks", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return resp.Task, nil
}

// ListTasks returns tasks in queue order
func (c *ShopfloorClient) ListTasks(ctx context.Context, filter TaskFilter) ([]*dtos.TaskDTO, error) {
	path := "/tasks"
	if q := filter.values().Encode(); q != "" {
		path += "?" + q
	}
	var resp struct {
		Tasks []*dtos.TaskDTO `json:"tasks"`
	}
	if err := c.request(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return resp.Tasks, nil
}

// TaskDetails is a task with its product and order
type TaskDetails struct {
	Task    *dtos.TaskDTO    `json:"task"`
	Product *dtos.ProductDTO `json:"product,omitempty"`
	Order   *dtos.OrderDTO   `json:"order,omitempty"`
}

// GetTask loads one task
func (c *ShopfloorClient) GetTask(ctx context.Context, taskID string) (*TaskDetails, error) {
	var resp TaskDetails
	if err := c.request(ctx, http.MethodGet, taskPath(taskID, ""), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &resp, nil
}

// UpdateTask edits a task. The registration report is set when quantities were overridden.
func (c *ShopfloorClient) UpdateTask(ctx context.Context, taskID string, req dtos.UpdateTaskRequest) (*dtos.TaskDTO, *dtos.RegistrationDTO, error) {
	var resp struct {
		Task         *dtos.TaskDTO         `json:"task"`
		Registration *dtos.RegistrationDTO `json:"registration,omitempty"`
	}
	if err := c.request(ctx, http.MethodPatch, taskPath(taskID, ""), req, &resp); err != nil {
		return nil, nil, fmt.Errorf("failed to update task: %w", err)
	}
	return resp.Task, resp.Registration, nil
}

// DeleteTask removes a pending task
func (c *ShopfloorClient) DeleteTask(ctx context.Context, taskID string) error {
	if err := c.request(ctx, http.MethodDelete, taskPath(taskID, ""), nil, nil); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// StartTask moves a pending task to in_progress
func (c *ShopfloorClient) StartTask(ctx context.Context, taskID string) (*dtos.TaskDTO, error) {
	return c.transition(ctx, taskID, "start", nil)
}

// PauseTask halts a running task
func (c *ShopfloorClient) PauseTask(ctx context.Context, taskID string) (*dtos.TaskDTO, error) {
	return c.transition(ctx, taskID, "pause", nil)
}

// ResumeTask restarts a paused task
func (c *ShopfloorClient) ResumeTask(ctx context.Context, taskID string) (*dtos.TaskDTO, error) {
	return c.transition(ctx, taskID, "resume", nil)
}

// CancelTask terminates a task
func (c *ShopfloorClient) CancelTask(ctx context.Context, taskID, reason string) (*dtos.TaskDTO, error) {
	return c.transition(ctx, taskID, "cancel", dtos.CancelTaskRequest{Reason: reason})
}

func (c *ShopfloorClient) transition(ctx context.Context, taskID, action string, body interface{}) (*dtos.TaskDTO, error) {
	var resp struct {
		Task *dtos.TaskDTO `json:"task"`
	}
	if err := c.request(ctx, http.MethodPost, taskPath(taskID, action), body, &resp); err != nil {
		return nil, fmt.Errorf("failed to %s task: %w", action, err)
	}
	return resp.Task, nil
}

// CompleteTask closes a task with its final quantities
func (c *ShopfloorClient) CompleteTask(ctx context.Context, taskID string, req dtos.QuantityRequest) (*dtos.RegistrationDTO, error) {
	return c.registration(ctx, taskID, "complete", req)
}

// RegisterProduction records a partial output or a correction
func (c *ShopfloorClient) RegisterProduction(ctx context.Context, taskID string, req dtos.QuantityRequest) (*dtos.RegistrationDTO, error) {
	return c.registration(ctx, taskID, "register", req)
}

func (c *ShopfloorClient) registration(ctx context.Context, taskID, action string, req dtos.QuantityRequest) (*dtos.RegistrationDTO, error) {
	var resp struct {
		Registration *dtos.RegistrationDTO `json:"registration"`
	}
	if err := c.request(ctx, http.MethodPost, taskPath(taskID, action), req, &resp); err != nil {
		return nil, fmt.Errorf("failed to %s production: %w", action, err)
	}
	return resp.Registration, nil
}

// ListMovements returns the stock movements caused by a task
func (c *ShopfloorClient) ListMovements(ctx context.Context, taskID string) ([]*dtos.StockMovementDTO, error) {
	var resp struct {
		Movements []*dtos.StockMovementDTO `json:"movements"`
	}
	if err := c.request(ctx, http.MethodGet, taskPath(taskID, "movements"), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return resp.Movements, nil
}

// ReorderTasks commits a full ordering of the pending queue
func (c *ShopfloorClient) ReorderTasks(ctx context.Context, taskIDs []string, productID string) ([]*dtos.TaskDTO, error) {
	var resp struct {
		Tasks []*dtos.TaskDTO `json:"tasks"`
	}
	req := dtos.ReorderRequest{TaskIDs: taskIDs, ProductID: productID}
	if err := c.request(ctx, http.MethodPost, "/tasks/reorder", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to reorder tasks: %w", err)
	}
	return resp.Tasks, nil
}

// BulkReport is the per-row outcome of a bulk registration
type BulkReport struct {
	BatchID        string                  `json:"batchId"`
	ProductionDate time.Time               `json:"productionDate"`
	Rows           []*dtos.DistributionDTO `json:"rows"`
	Succeeded      int                     `json:"succeeded"`
	Warnings       int                     `json:"warnings"`
	Failed         int                     `json:"failed"`
}

// BulkRegister uploads a production sheet
func (c *ShopfloorClient) BulkRegister(ctx context.Context, req dtos.BulkRequest) (*BulkReport, error) {
	var resp BulkReport
	if err := c.request(ctx, http.MethodPost, "/production/bulk", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to register bulk production: %w", err)
	}
	return &resp, nil
}

// CompleteByProduct distributes one output across the product's open tasks
func (c *ShopfloorClient) CompleteByProduct(ctx context.Context, req dtos.ByProductRequest) (*dtos.DistributionDTO, error) {
	var resp struct {
		Distribution *dtos.DistributionDTO `json:"distribution"`
	}
	if err := c.request(ctx, http.MethodPost, "/production/by-product", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to complete by product: %w", err)
	}
	return resp.Distribution, nil
}

// CheckOverlaps decodes the overlap report into out
func (c *ShopfloorClient) CheckOverlaps(ctx context.Context, req dtos.OverlapRequest, out interface{}) error {
	if err := c.request(ctx, http.MethodPost, "/planning/overlaps", req, out); err != nil {
		return fmt.Errorf("failed to check overlaps: %w", err)
	}
	return nil
}

// SuggestPlan decodes the suggested plan into out
func (c *ShopfloorClient) SuggestPlan(ctx context.Context, req dtos.SuggestRequest, out interface{}) error {
	if err := c.request(ctx, http.MethodPost, "/planning/suggest", req, out); err != nil {
		return fmt.Errorf("failed to suggest plan: %w", err)
	}
	return nil
}

func taskPath(taskID, action string) string {
	p := "/tasks/" + url.PathEscape(taskID)
	if action != "" {
		p += "/" + action
	}
	return p
}

func (c *ShopfloorClient) request(ctx context.Context, method, path string, body, result interface{}) error {
	token, err := c.session.Token()
	if err != nil {
		return err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var status int
	var respBody []byte
	err = c.breaker.Call(func() error {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &TransportError{Method: method, Path: path, Err: err}
		}
		defer resp.Body.Close()

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return &TransportError{Method: method, Path: path, Err: err}
		}
		status = resp.StatusCode
		if isUnavailable(status) {
			return &TransportError{Method: method, Path: path, Err: fmt.Errorf("server returned %d", status)}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return &TransportError{Method: method, Path: path, Err: err}
		}
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.session.Invalidate(ctx)
		return newAPIError(status, respBody)
	}
	if status < 200 || status >= 300 {
		return newAPIError(status, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

func isUnavailable(status int) bool {
	return status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout
}

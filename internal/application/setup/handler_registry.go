package setup

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/metrics"
	"github.com/andrescamacho/shopfloor-go/internal/application/common"
	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	planningQueries "github.com/andrescamacho/shopfloor-go/internal/application/planning/queries"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/commands"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/queries"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	taskRepo   production.TaskRepository
	stock      production.StockLedger
	catalog    production.CatalogService
	orders     production.OrderService
	transactor production.Transactor
	planning   planningQueries.Settings
	clock      shared.Clock
	logger     *zap.Logger

	// optional, nil when metrics are disabled
	commandMetrics *metrics.CommandMetricsCollector
}

// NewHandlerRegistry creates a new handler registry with required dependencies
func NewHandlerRegistry(
	taskRepo production.TaskRepository,
	stock production.StockLedger,
	catalog production.CatalogService,
	orders production.OrderService,
	transactor production.Transactor,
	planning planningQueries.Settings,
	clock shared.Clock,
	logger *zap.Logger,
) *HandlerRegistry {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HandlerRegistry{
		taskRepo:   taskRepo,
		stock:      stock,
		catalog:    catalog,
		orders:     orders,
		transactor: transactor,
		planning:   planning,
		clock:      clock,
		logger:     logger,
	}
}

// WithCommandMetrics records latency and outcome of every request
func (r *HandlerRegistry) WithCommandMetrics(collector *metrics.CommandMetricsCollector) *HandlerRegistry {
	r.commandMetrics = collector
	return r
}

// RegisterProductionHandlers registers the task lifecycle and registration handlers
func (r *HandlerRegistry) RegisterProductionHandlers(m mediator.Mediator) error {
	handlers := map[reflect.Type]mediator.RequestHandler{
		reflect.TypeOf(&commands.CreateTaskCommand{}): commands.NewCreateTaskHandler(
			r.taskRepo, r.catalog, r.orders, r.transactor, r.clock),
		reflect.TypeOf(&commands.UpdateTaskCommand{}): commands.NewUpdateTaskHandler(
			r.taskRepo, r.stock, r.transactor, r.clock),
		reflect.TypeOf(&commands.DeleteTaskCommand{}): commands.NewDeleteTaskHandler(
			r.taskRepo, r.transactor),
		reflect.TypeOf(&commands.StartTaskCommand{}): commands.NewStartTaskHandler(
			r.taskRepo, r.transactor, r.clock),
		reflect.TypeOf(&commands.PauseTaskCommand{}): commands.NewPauseTaskHandler(
			r.taskRepo, r.transactor, r.clock),
		reflect.TypeOf(&commands.ResumeTaskCommand{}): commands.NewResumeTaskHandler(
			r.taskRepo, r.transactor, r.clock),
		reflect.TypeOf(&commands.CancelTaskCommand{}): commands.NewCancelTaskHandler(
			r.taskRepo, r.transactor, r.clock),
		reflect.TypeOf(&commands.CompleteTaskCommand{}): commands.NewCompleteTaskHandler(
			r.taskRepo, r.stock, r.transactor, r.clock),
		reflect.TypeOf(&commands.RegisterProductionCommand{}): commands.NewRegisterProductionHandler(
			r.taskRepo, r.stock, r.transactor, r.clock),
		reflect.TypeOf(&commands.BulkRegisterProductionCommand{}): commands.NewBulkRegisterProductionHandler(
			r.taskRepo, r.stock, r.catalog, r.transactor, r.clock),
		reflect.TypeOf(&commands.CompleteByProductCommand{}): commands.NewCompleteByProductHandler(
			r.taskRepo, r.stock, r.catalog, r.transactor, r.clock),
		reflect.TypeOf(&commands.ReorderTasksCommand{}): commands.NewReorderTasksHandler(
			r.taskRepo, r.transactor, r.clock),
		reflect.TypeOf(&queries.ListTasksQuery{}):         queries.NewListTasksHandler(r.taskRepo),
		reflect.TypeOf(&queries.GetTaskQuery{}):           queries.NewGetTaskHandler(r.taskRepo, r.catalog, r.orders),
		reflect.TypeOf(&queries.ListTaskMovementsQuery{}): queries.NewListTaskMovementsHandler(r.taskRepo, r.stock),
	}

	for requestType, handler := range handlers {
		if err := m.Register(requestType, handler); err != nil {
			return err
		}
	}
	return nil
}

// RegisterPlanningHandlers registers the overlap and plan suggestion queries
func (r *HandlerRegistry) RegisterPlanningHandlers(m mediator.Mediator) error {
	if err := m.Register(
		reflect.TypeOf(&planningQueries.CheckOverlapsQuery{}),
		planningQueries.NewCheckOverlapsHandler(r.taskRepo, r.planning, r.clock),
	); err != nil {
		return err
	}

	if err := m.Register(
		reflect.TypeOf(&planningQueries.SuggestPlanQuery{}),
		planningQueries.NewSuggestPlanHandler(r.taskRepo, r.catalog, r.planning, r.clock),
	); err != nil {
		return err
	}

	return nil
}

// CreateConfiguredMediator creates a mediator with every handler and middleware registered
func (r *HandlerRegistry) CreateConfiguredMediator() (mediator.Mediator, error) {
	m := mediator.NewMediator()

	m.RegisterMiddleware(common.LoggingMiddleware(r.logger))
	if r.commandMetrics != nil {
		m.RegisterMiddleware(metrics.PrometheusMiddleware(r.commandMetrics))
	}

	if err := r.RegisterProductionHandlers(m); err != nil {
		return nil, err
	}
	if err := r.RegisterPlanningHandlers(m); err != nil {
		return nil, err
	}

	return m, nil
}

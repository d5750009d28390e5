package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/infrastructure/config"
)

// APIPrefix is the root of every production route
const APIPrefix = "/api/v1"

// Options configures the router
type Options struct {
	Auth config.AuthConfig
	// MetricsPath is served from Gatherer when both are set
	MetricsPath string
	Gatherer    prometheus.Gatherer
	Logger      *zap.Logger
}

// NewRouter builds the gin engine with every route registered
func NewRouter(m mediator.Mediator, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(RequestID(), AccessLog(logger), Recovery(logger))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.MetricsPath != "" && opts.Gatherer != nil {
		engine.GET(opts.MetricsPath, gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	tasks := NewTaskHandler(m)
	prod := NewProductionHandler(m)
	write := RequirePermission(PermissionProductionWrite)

	api := engine.Group(APIPrefix, JWTAuth(opts.Auth))
	{
		api.GET("/tasks", tasks.List)
		api.GET("/tasks/:id", tasks.Get)
		api.GET("/tasks/:id/movements", tasks.Movements)

		api.POST("/tasks", write, tasks.Create)
		api.POST("/tasks/reorder", write, tasks.Reorder)
		api.PATCH("/tasks/:id", write, tasks.Update)
		api.DELETE("/tasks/:id", write, tasks.Delete)
		api.POST("/tasks/:id/start", write, tasks.Start)
		api.POST("/tasks/:id/pause", write, tasks.Pause)
		api.POST("/tasks/:id/resume", write, tasks.Resume)
		api.POST("/tasks/:id/cancel", write, tasks.Cancel)
		api.POST("/tasks/:id/complete", write, tasks.Complete)
		api.POST("/tasks/:id/register", write, tasks.Register)

		api.POST("/production/bulk", write, prod.Bulk)
		api.POST("/production/by-product", write, prod.ByProduct)

		api.POST("/planning/overlaps", prod.Overlaps)
		api.POST("/planning/suggest", prod.Suggest)
	}

	return engine
}

// Server runs the REST API until its context is cancelled
type Server struct {
	httpServer *http.Server
	cfg        config.ServerConfig
	logger     *zap.Logger
}

// NewServer wraps handler in an http.Server configured from cfg
func NewServer(handler http.Handler, cfg config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("REST server listening", zap.String("address", s.cfg.Address))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("REST server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("REST server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down REST server: %w", err)
	}
	return nil
}

package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ProductionService is the health service name reported for the production API
const ProductionService = "shopfloor.production"

const defaultCheckInterval = 10 * time.Second

// Pinger checks a dependency the production API cannot serve without
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthServer exposes the standard gRPC health protocol for orchestrator probes.
// The production service reports SERVING only while the database answers pings.
type HealthServer struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	db         Pinger
	interval   time.Duration
	logger     *zap.Logger
}

// NewHealthServer listens on address. Use ":0" for an ephemeral port.
func NewHealthServer(address string, db Pinger, logger *zap.Logger) (*HealthServer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to create health listener: %w", err)
	}

	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ProductionService, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthServer{
		listener:   listener,
		grpcServer: grpcServer,
		health:     hs,
		db:         db,
		interval:   defaultCheckInterval,
		logger:     logger,
	}, nil
}

// Addr returns the bound listen address
func (s *HealthServer) Addr() string {
	return s.listener.Addr().String()
}

// SetCheckInterval changes how often the database is pinged
func (s *HealthServer) SetCheckInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// Start serves until ctx is done, then stops gracefully
func (s *HealthServer) Start(ctx context.Context) error {
	s.logger.Info("health server listening", zap.String("address", s.Addr()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		if err := s.grpcServer.Serve(s.listener); err != nil {
			errChan <- fmt.Errorf("gRPC health server error: %w", err)
		}
	}()

	checkDone := make(chan struct{})
	go func() {
		defer close(checkDone)
		s.watch(ctx)
	}()

	select {
	case err := <-errChan:
		cancel()
		<-checkDone
		return err
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		<-checkDone
		return nil
	}
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *HealthServer) check(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, s.interval)
		err := s.db.PingContext(pingCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("database ping failed", zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus(ProductionService, status)
}

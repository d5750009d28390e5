package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/grpc"
	"github.com/andrescamacho/shopfloor-go/internal/adapters/metrics"
	"github.com/andrescamacho/shopfloor-go/internal/adapters/persistence"
	"github.com/andrescamacho/shopfloor-go/internal/adapters/rest"
	planningQueries "github.com/andrescamacho/shopfloor-go/internal/application/planning/queries"
	"github.com/andrescamacho/shopfloor-go/internal/application/setup"
	"github.com/andrescamacho/shopfloor-go/internal/infrastructure/config"
	"github.com/andrescamacho/shopfloor-go/internal/infrastructure/database"
	"github.com/andrescamacho/shopfloor-go/internal/infrastructure/logging"
	"github.com/andrescamacho/shopfloor-go/internal/infrastructure/pidfile"
)

func main() {
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	configPath := flag.String("config", "", "Path to config.yaml (default: search ./, ./configs, /etc/shopfloor)")
	catalogPath := flag.String("catalog", "", "YAML file of products and orders to mirror into the catalog tables")
	migrate := flag.Bool("migrate", true, "Create or update tables on startup")
	pidPath := flag.String("pidfile", "", "Refuse to start while another server holds this PID file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if *pidPath != "" {
		pid := pidfile.New(*pidPath)
		if err := pid.Acquire(); err != nil {
			logger.Fatal("failed to acquire PID file", zap.Error(err))
		}
		defer func() {
			if err := pid.Release(); err != nil {
				logger.Warn("failed to release PID file", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *catalogPath, *migrate, logger); err != nil {
		logger.Error("shopfloor server stopped", zap.Error(err))
		exitCode = 1
	}
}

func run(ctx context.Context, cfg *config.Config, catalogPath string, migrate bool, logger *zap.Logger) error {
	if !cfg.Auth.Disabled && cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required unless auth.disabled is set")
	}
	if cfg.Auth.Disabled {
		logger.Warn("authentication disabled, every request runs as the system actor")
	}

	// 1. Database
	logger.Info("connecting to database", zap.String("type", cfg.Database.Type))
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if migrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// 2. Repositories
	taskRepo := persistence.NewGormProductionTaskRepository(db)
	stock := persistence.NewGormStockLedger(db)
	catalog := persistence.NewGormCatalogRepository(db)
	transactor := persistence.NewGormTransactor(db)

	if catalogPath != "" {
		if err := seedCatalog(ctx, catalog, catalogPath, logger); err != nil {
			return err
		}
	}

	// 3. Metrics
	var commandMetrics *metrics.CommandMetricsCollector
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		commandMetrics = metrics.NewCommandMetricsCollector(cfg.Metrics.DurationBuckets)
		if err := commandMetrics.Register(); err != nil {
			return fmt.Errorf("failed to register command metrics: %w", err)
		}
		productionMetrics := metrics.NewProductionMetricsCollector()
		if err := productionMetrics.Register(); err != nil {
			return fmt.Errorf("failed to register production metrics: %w", err)
		}
		metrics.SetGlobalProductionCollector(productionMetrics)
		logger.Info("metrics enabled", zap.String("path", cfg.Metrics.Path))
	}

	// 4. Mediator
	registry := setup.NewHandlerRegistry(taskRepo, stock, catalog, catalog, transactor, planningQueries.Settings{
		HorizonDays:          cfg.Planning.HorizonDays,
		SuggestionLimit:      cfg.Planning.SuggestionLimit,
		DefaultDailyCapacity: cfg.Planning.DefaultDailyCapacity,
		HistoryLimit:         cfg.Planning.HistoryLimit,
	}, nil, logger)
	if commandMetrics != nil {
		registry.WithCommandMetrics(commandMetrics)
	}
	med, err := registry.CreateConfiguredMediator()
	if err != nil {
		return fmt.Errorf("failed to configure mediator: %w", err)
	}

	// 5. Servers
	opts := rest.Options{Auth: cfg.Auth, Logger: logger}
	if metrics.IsEnabled() {
		opts.MetricsPath = cfg.Metrics.Path
		opts.Gatherer = metrics.GetRegistry()
	}
	server := rest.NewServer(rest.NewRouter(med, opts), cfg.Server, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(ctx) })

	if cfg.Health.Address != "" {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying db: %w", err)
		}
		healthServer, err := grpc.NewHealthServer(cfg.Health.Address, sqlDB, logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return healthServer.Start(ctx) })
	}

	return g.Wait()
}

func seedCatalog(ctx context.Context, catalog *persistence.GormCatalogRepository, path string, logger *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	products, orders, err := persistence.SeedCatalog(ctx, catalog, f)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", zap.String("file", path), zap.Int("products", products), zap.Int("orders", orders))
	return nil
}

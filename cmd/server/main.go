package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskguard/api/handler"
	"github.com/fastygo/taskguard/internal/audit"
	"github.com/fastygo/taskguard/internal/config"
	"github.com/fastygo/taskguard/internal/infrastructure/journal"
	"github.com/fastygo/taskguard/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskguard/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskguard/internal/infrastructure/redis"
	"github.com/fastygo/taskguard/internal/metrics"
	"github.com/fastygo/taskguard/internal/middleware"
	"github.com/fastygo/taskguard/internal/router"
	"github.com/fastygo/taskguard/internal/services"
	"github.com/fastygo/taskguard/internal/services/lifecycle"
	"github.com/fastygo/taskguard/pkg/httpcontext"
	"github.com/fastygo/taskguard/pkg/logger"
	"github.com/fastygo/taskguard/repository/postgres"
	redisRepo "github.com/fastygo/taskguard/repository/redis"
	"github.com/fastygo/taskguard/usecase"
	auditUC "github.com/fastygo/taskguard/usecase/auditlog"
	profileUC "github.com/fastygo/taskguard/usecase/profile"
	taskUC "github.com/fastygo/taskguard/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisInfra.Close(redisClient, zapLogger)
	})

	journalStore, err := journal.Open(cfg.Journal.Path, "")
	if err != nil {
		zapLogger.Fatal("failed to open audit journal", zap.Error(err))
	}
	manager.Register("journal", func(ctx context.Context) error {
		return journalStore.Close()
	})

	mon := monitor.New(pool, monitor.RedisPinger(func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}), journalStore, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	var appMetrics *metrics.Metrics
	if cfg.HTTP.EnableMetrics {
		appMetrics = metrics.New(nil)
	}

	taskStore := postgres.NewTaskStore(pool)
	directory := redisRepo.NewDirectoryCache(redisClient, postgres.NewDirectory(pool), cfg.Redis.DirectoryCacheTTL, zapLogger)
	auditEvents := postgres.NewAuditEventRepository(pool)

	shipper := services.NewJournalShipper(
		journalStore,
		mon,
		auditEvents,
		shipObserver(appMetrics),
		zapLogger,
		services.ShipperConfig{
			Interval:   cfg.Journal.SyncInterval,
			BatchSize:  cfg.Journal.BatchSize,
			MaxRetries: cfg.Journal.MaxRetry,
			Retention:  cfg.JournalRetention(),
		},
	)
	shipper.Start()
	manager.Register("journal_shipper", func(ctx context.Context) error {
		shipper.Stop(ctx)
		// One last pass so events recorded during shutdown are not left behind.
		return shipper.Drain(ctx)
	})

	auditLog := audit.NewLog(cfg.Audit.Capacity, zapLogger, services.NewJournalSink(journalStore))

	taskOpts := []taskUC.Option{}
	if appMetrics != nil {
		auditLog.WithCounter(appMetrics)
		taskOpts = append(taskOpts, taskUC.WithObserver(appMetrics))
	}

	taskUseCase := taskUC.New(taskStore, directory, auditLog, zapLogger, taskOpts...)
	profileUseCase := profileUC.New(directory, zapLogger)
	auditUseCase := auditUC.New(auditLog, decisionObserver(appMetrics), zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Audit:   apiHandler.NewAuditHandler(auditUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	r := router.New(handlers, authMiddleware, appMetrics)

	server := &fasthttp.Server{
		Handler:         r.Handler,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		IdleTimeout:     cfg.HTTP.IdleTimeout,
		MaxConnsPerIP:   cfg.HTTP.MaxConn,
		Name:            cfg.AppName,
		CloseOnShutdown: true,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// A nil *metrics.Metrics must not reach the services as a non-nil interface.
func shipObserver(m *metrics.Metrics) services.ShipObserver {
	if m == nil {
		return nil
	}
	return m
}

func decisionObserver(m *metrics.Metrics) usecase.DecisionObserver {
	if m == nil {
		return nil
	}
	return m
}

package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/servicepulse/datalayer/api/handler"
	"github.com/servicepulse/datalayer/internal/config"
	"github.com/servicepulse/datalayer/internal/doclog"
	elasticInfra "github.com/servicepulse/datalayer/internal/infrastructure/elastic"
	pgInfra "github.com/servicepulse/datalayer/internal/infrastructure/postgres"
	redisInfra "github.com/servicepulse/datalayer/internal/infrastructure/redis"
	"github.com/servicepulse/datalayer/internal/middleware"
	"github.com/servicepulse/datalayer/internal/monitor"
	"github.com/servicepulse/datalayer/internal/outbox"
	"github.com/servicepulse/datalayer/internal/relational"
	"github.com/servicepulse/datalayer/internal/router"
	"github.com/servicepulse/datalayer/internal/searchidx"
	"github.com/servicepulse/datalayer/internal/services/lifecycle"
	"github.com/servicepulse/datalayer/pkg/httpcontext"
	"github.com/servicepulse/datalayer/pkg/logger"
	"github.com/servicepulse/datalayer/usecase/coordinator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	rel := relational.New(pool, zapLogger)

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	logs := doclog.New(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.MaxStream, zapLogger)

	esClient, err := elasticInfra.NewClient(appCtx, cfg.Elastic, zapLogger)
	if err != nil {
		zapLogger.Fatal("elasticsearch connection failed", zap.Error(err))
	}
	search := searchidx.New(esClient, cfg.Elastic.IndexPrefix, zapLogger)

	rel.SetAuditSink(coordinator.NewAuditSink(logs, zapLogger))

	coord := coordinator.NewWithAdapters(rel, logs, search, zapLogger)
	manager.Register("coordinator", coord.Shutdown)

	if cfg.Outbox.Enabled {
		outboxStore, err := outbox.Open(cfg.Outbox.Path, "outbox")
		if err != nil {
			zapLogger.Fatal("failed to open outbox store", zap.Error(err))
		}
		manager.Register("outbox_store", func(ctx context.Context) error {
			return outboxStore.Close()
		})

		processor := outbox.NewProcessor(outboxStore, search, logs, zapLogger, outbox.ProcessorConfig{
			Interval:   cfg.Outbox.DrainInterval,
			BatchSize:  cfg.Outbox.BatchSize,
			MaxRetries: cfg.Outbox.MaxRetry,
		})
		processor.Start()
		manager.Register("outbox_processor", func(ctx context.Context) error {
			processor.Stop(ctx)
			return nil
		})
		coord.SetOutbox(processor)
	}

	mon := monitor.New(coord, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Entity: apiHandler.NewEntityHandler(coord, ctxAdapter, zapLogger),
		Search: apiHandler.NewSearchHandler(coord, ctxAdapter, zapLogger),
		Ops:    apiHandler.NewOpsHandler(coord, mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fightmetrics/predict-api/internal/config"
	"github.com/fightmetrics/predict-api/internal/handlers"
	"github.com/fightmetrics/predict-api/internal/modelcache"
	"github.com/fightmetrics/predict-api/internal/service"
	"github.com/fightmetrics/predict-api/internal/store"
	"github.com/fightmetrics/predict-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		sugar.Fatalw("Failed to connect to PostgreSQL", "error", err)
	}
	defer pg.Close()

	// ClickHouse
	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		sugar.Fatalw("Failed to parse ClickHouse DSN", "error", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		sugar.Fatalw("Failed to connect to ClickHouse", "error", err)
	}
	defer ch.Close()

	// Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Fatalw("Failed to parse Redis URL", "error", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	fightStore := store.NewFightStore(ch)
	fighterStore := store.NewFighterStore(pg)
	reportStore := store.NewReportStore(pg)
	for name, ensure := range map[string]func(context.Context) error{
		"fights":   fightStore.EnsureSchema,
		"fighters": fighterStore.EnsureSchema,
		"reports":  reportStore.EnsureSchema,
	} {
		if err := ensure(ctx); err != nil {
			sugar.Fatalw("Schema setup failed", "store", name, "error", err)
		}
	}

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		ClickHouse:    ch,
		Redis:         rdb,
		Logger:        logger,
	})
	pool.Start(ctx)

	predictor := service.NewPredictor(service.Deps{
		Fights:   fightStore,
		Fighters: fighterStore,
		Reports:  reportStore,
		Cache:    modelcache.New(rdb),
		Logger:   logger,
		Window:   cfg.HistoryWindow,
		Active:   cfg.ActiveModel,
	})

	// Warm the models from whatever is already ingested. An empty
	// database is fine at startup; /ready reports the gap.
	if err := predictor.Refresh(ctx, false); err != nil {
		sugar.Warnw("Initial model refresh skipped", "error", err)
	}

	h := handlers.New(handlers.Config{
		WorkerPool:     pool,
		Fighters:       fighterStore,
		Prediction:     predictor,
		Postgres:       pg,
		ClickHouse:     ch,
		Redis:          rdb,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		TestEvents:     cfg.TestEvents,
		HistoryWindow:  cfg.HistoryWindow,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", h.Router())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		sugar.Infow("Server started", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("Server error", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Server shutdown error", "error", err)
	}
	pool.Stop()
	sugar.Info("Stopped")
}

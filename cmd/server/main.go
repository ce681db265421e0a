package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	grpcserver "google.golang.org/grpc"

	grpcadapter "github.com/k1s0-platform/system-server-go-configsync/internal/adapter/grpc"
	"github.com/k1s0-platform/system-server-go-configsync/internal/adapter/handler"
	"github.com/k1s0-platform/system-server-go-configsync/internal/adapter/middleware"
	configrepo "github.com/k1s0-platform/system-server-go-configsync/internal/adapter/repository"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/cache"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/config"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/messaging"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/metrics"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/persistence"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/retry"
	"github.com/k1s0-platform/system-server-go-configsync/internal/usecase"
)

func main() {
	// --- Config ---
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger := config.NewLogger(
		cfg.App.Environment, cfg.App.Name, cfg.App.Version, cfg.App.Tier,
	)
	slog.SetDefault(logger)

	// --- Database ---
	db, err := persistence.NewDB(cfg.Database)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// --- Redis Cache ---
	configCache := cache.NewRedisCache(cfg.Redis)
	defer configCache.Close()

	// --- Kafka（ブローカー未設定なら無効） ---
	var producer *messaging.KafkaProducer
	var publisher usecase.ChangeEventPublisher
	var kafkaCheck handler.HealthChecker
	if len(cfg.Kafka.Brokers) > 0 {
		producer = messaging.NewKafkaProducer(cfg.Kafka)
		defer producer.Close()
		publisher = producer
		kafkaCheck = producer
	}

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// --- DI ---
	retryCfg := retryConfig(cfg.Retry)
	store := configrepo.NewConfigPostgresRepository(db)
	changeLogRepo := configrepo.NewChangeLogPostgresRepository(db)
	changeLog := usecase.NewChangeLog(changeLogRepo, retryCfg)
	notifier := usecase.NewNotifier(configCache, publisher, retryCfg)

	engine := usecase.NewSyncEngine(
		store, changeLog, configCache, notifier, retryCfg,
		usecase.WithBootstrapFile(cfg.Bootstrap.Path),
		usecase.WithMetrics(m),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := engine.Start(ctx); err != nil {
		slog.Error("failed to start sync engine", "error", err)
		os.Exit(1)
	}

	// 変更イベントの購読（ローカル観測用）
	listener := usecase.NewChangeListener(configCache, nil)
	go listener.Run(ctx)

	// --- REST Router ---
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	// ヘルスチェックとメトリクス
	r.GET("/healthz", handler.HealthzHandler())
	r.GET("/readyz", handler.ReadyzHandler(db, configCache, kafkaCheck, engine))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Config ハンドラー
	configHandler := handler.NewConfigHandler(engine)
	configHandler.RegisterRoutes(r)

	// --- gRPC Server ---
	grpcSrv := grpcserver.NewServer()
	grpcadapter.RegisterConfigSyncServiceServer(grpcSrv, grpcadapter.NewConfigSyncGRPCService(engine))

	grpcPort := cfg.GRPC.Port
	if grpcPort == 0 {
		grpcPort = 50053
	}
	go func() {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", grpcPort))
		if err != nil {
			slog.Error("failed to listen for gRPC", "error", err)
			os.Exit(1)
		}
		slog.Info("gRPC server starting", "port", grpcPort)
		if err := grpcSrv.Serve(lis); err != nil {
			slog.Error("gRPC server failed", "error", err)
			os.Exit(1)
		}
	}()

	// --- REST Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("REST server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("REST server failed", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	slog.Info("shutting down servers...")

	// gRPC graceful stop
	grpcSrv.GracefulStop()
	slog.Info("gRPC server stopped")

	// REST graceful shutdown
	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("REST server forced to shutdown", "error", err)
	}
	slog.Info("servers exited")
}

// retryConfig は設定ファイルの値からリトライポリシーを組み立てる。
// 未設定の項目はデフォルト値のまま使う。
func retryConfig(cfg config.RetryConfig) *retry.Config {
	rc := retry.DefaultConfig()
	if cfg.MaxAttempts > 0 {
		rc.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialDelay > 0 {
		rc.InitialDelay = cfg.InitialDelay
	}
	if cfg.MaxDelay > 0 {
		rc.MaxDelay = cfg.MaxDelay
	}
	if cfg.Multiplier > 0 {
		rc.Multiplier = cfg.Multiplier
	}
	rc.Jitter = cfg.Jitter
	return rc
}

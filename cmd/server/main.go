package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/storefront/internal/adapter/backend"
	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/logger"
	"github.com/rl1809/storefront/internal/port"
)

func main() {
	cfg, envFound, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if !envFound {
		log.Warn("no .env file found, using environment only")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Backend client
	client, err := backend.New(backend.Config{BaseURL: cfg.BackendURL, Timeout: cfg.BackendTimeout}, log.Named("backend"))
	if err != nil {
		return fmt.Errorf("init backend client: %w", err)
	}
	log.Info("backend configured", zap.String("url", cfg.BackendURL))

	// Idempotency store: Redis when configured, in-process otherwise
	var idempotency port.IdempotencyStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 20,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		idempotency = storage.NewRedisAdapter(rdb)
		log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	} else {
		idempotency = storage.NewMemoryAdapter()
		log.Info("REDIS_ADDR not set, using in-memory idempotency store")
	}

	// Report store: MySQL when configured
	var reports port.ReportRepository
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping mysql: %w", err)
		}
		mysqlAdapter := storage.NewMySQLAdapter(db)
		if err := mysqlAdapter.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		reports = mysqlAdapter
		log.Info("connected to mysql")
	} else {
		log.Info("MYSQL_DSN not set, stats export disabled")
	}

	// Services
	svcs := handler.Services{
		Auth:    service.NewAuthService(client, log.Named("auth")),
		Catalog: service.NewCatalogService(client, log.Named("catalog")),
		Cart:    service.NewCartService(domain.NewCart(), client, client, idempotency, log.Named("cart")),
		Orders:  service.NewOrderService(client, log.Named("orders")),
		Reviews: service.NewReviewService(client, log.Named("reviews")),
		Stats:   service.NewStatsService(client, reports, log.Named("stats")),
	}
	svcs.Cart.Subscribe(func(v domain.CartView) {
		log.Debug("cart changed", zap.Int("items", v.TotalQty), zap.Int64("total", v.TotalAmount))
	})

	// Stats exporter
	var wg sync.WaitGroup
	if reports != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svcs.Stats.RunExporter(ctx, cfg.StatsExportInterval)
		}()
		log.Info("started stats exporter", zap.Duration("interval", cfg.StatsExportInterval))
	}

	health := handler.NewHealthHandler(map[string]handler.Pinger{
		"backend":     client,
		"idempotency": idempotency,
	}, log.Named("health"))

	// gRPC server
	grpcServer := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, health)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	go func() {
		log.Info("gRPC server listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server error", zap.Error(err))
		}
	}()

	// HTTP server
	tokens := handler.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	httpHandler := handler.NewHTTPHandler(svcs, health, tokens, log.Named("http"))

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpHandler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown", zap.Error(err))
	}
	log.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	// Stop the exporter and wait for it
	cancel()
	wg.Wait()
	log.Info("workers stopped")

	return nil
}

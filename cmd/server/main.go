// @title       Parts Inventory API
// @version     1.0
// @description Voice and text driven inventory for car parts.
// @BasePath    /
package main

import (
	"bytes"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimiro1/banner"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/parts-inventory/internal/adapter/handler"
	"github.com/rl1809/parts-inventory/internal/adapter/openai"
	"github.com/rl1809/parts-inventory/internal/adapter/storage"
	"github.com/rl1809/parts-inventory/internal/config"
	"github.com/rl1809/parts-inventory/internal/core/domain"
	"github.com/rl1809/parts-inventory/internal/core/service"
	"github.com/rl1809/parts-inventory/internal/port"
)

var version = "dev"

func main() {
	configFile := flag.String("config", "", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("parts-inventory", version)
		os.Exit(0)
	}

	printBanner()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	config.SetupLogging(cfg.Logging)

	if err := run(cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func printBanner() {
	tpl := "{{ .Title \"Parts Inventory\" \"\" 0 }}\nVersion: " + version + "\n"
	banner.Init(os.Stdout, true, true, bytes.NewBufferString(tpl))
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, db, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	cache, rdb, err := openCache(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	if cfg.OpenAI.APIKey == "" {
		slog.Warn("openai api key is empty, command interpretation will fail")
	}
	upstream := openai.New(cfg.OpenAI)

	prompts, err := service.NewPromptBuilder(service.DefaultTemplates)
	if err != nil {
		return fmt.Errorf("prompt templates: %w", err)
	}
	languages := make([]domain.Language, 0, len(cfg.Normalizer.Languages))
	for _, l := range cfg.Normalizer.Languages {
		languages = append(languages, domain.Language(l))
	}
	normalizer := service.NewTextNormalizer(cfg.Normalizer.Corrections, languages)

	commandService := service.NewCommandService(normalizer, prompts, upstream, upstream, cache, cfg.Redis.InterpretationTTL)
	inventoryService := service.NewInventoryService(repo, cache)

	errCh := make(chan error, 2)

	var grpcServer *grpc.Server
	if cfg.Server.GRPCEnabled {
		grpcServer = grpc.NewServer()
		handler.RegisterInventoryServer(grpcServer, handler.NewGRPCHandler(commandService, inventoryService))
		healthServer := health.NewServer()
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		healthpb.RegisterHealthServer(grpcServer, healthServer)

		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		go func() {
			slog.Info("gRPC server listening", "port", cfg.Server.GRPCPort)
			if err := grpcServer.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc serve: %w", err)
			}
		}()
	}

	httpHandler := handler.NewHTTPHandler(commandService, inventoryService, handler.HTTPOptions{
		UploadDir:      cfg.Server.UploadDir,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		CORSOrigin:     cfg.Server.CORSOrigin,
	})
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           httpHandler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		slog.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown", "error", err)
	}
	slog.Info("HTTP server stopped")

	if grpcServer != nil {
		grpcServer.GracefulStop()
		slog.Info("gRPC server stopped")
	}
	return nil
}

func openRepository(ctx context.Context, cfg *config.Config) (port.PartsRepository, *sql.DB, error) {
	if cfg.Storage.Driver == "memory" {
		slog.Warn("using in-memory parts storage, data is lost on restart")
		return storage.NewMemoryAdapter(), nil, nil
	}

	db, err := storage.OpenMySQL(ctx, storage.MySQLOptions{
		Host:            cfg.MySQL.Host,
		Port:            cfg.MySQL.Port,
		User:            cfg.MySQL.User,
		Password:        cfg.MySQL.Password,
		Database:        cfg.MySQL.Database,
		MaxOpenConns:    cfg.MySQL.MaxOpenConns,
		MaxIdleConns:    cfg.MySQL.MaxIdleConns,
		ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}
	slog.Info("connected to mysql", "host", cfg.MySQL.Host, "database", cfg.MySQL.Database)

	adapter := storage.NewMySQLAdapter(db)
	if cfg.MySQL.EnsureSchema {
		if err := adapter.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return adapter, db, nil
}

func openCache(ctx context.Context, cfg config.RedisConfig) (port.CacheRepository, *redis.Client, error) {
	if !cfg.Enabled {
		return storage.NopCache{}, nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	slog.Info("connected to redis", "addr", cfg.Addr)
	return storage.NewRedisAdapter(rdb, cfg.IdempotencyTTL), rdb, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"
	"shareit/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewEventBus()
	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		metrics.SubscribeEvents(bus)
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
	}

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	deps := api.Dependencies{
		Users:    service.NewUserService(db, logger),
		Items:    service.NewItemService(db, bus, logger),
		Bookings: service.NewBookingService(db, bus, logger),
		Requests: service.NewRequestService(db, logger),
		Limits:   newLimitRepository(cfg, redisClient, logger),
		Health:   db,
	}

	seedPath := cfg.Seed.Path
	if env := os.Getenv("SEED_PATH"); env != "" {
		seedPath = env
	}
	if seedPath != "" {
		if err := applySeed(ctx, seedPath, deps, logger); err != nil {
			return err
		}
	}

	if cfg.Backup.Enabled {
		backups := database.NewBackupService(db, cfg.Database.Path, cfg.Backup, logger)
		go backups.Start(ctx)
	}

	return startServers(ctx, cfg, deps, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, baseLogger, closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" || cfg.Limits.Backend == "memory" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, limits use memory until it recovers")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return client
}

// newLimitRepository picks the booking limit store. Without redis every backend degrades to memory.
func newLimitRepository(cfg *config.Config, client *redis.Client, logger *zerolog.Logger) domain.LimitRepository {
	memory := repository.NewMemoryLimitRepository()
	if client == nil {
		return memory
	}

	redisRepo := repository.NewRedisLimitRepository(client)
	if cfg.Limits.Backend == "redis" {
		return redisRepo
	}
	return repository.NewFailoverLimitRepository(redisRepo, memory, logging.Component(logger, "limits"))
}

func startServers(ctx context.Context, cfg *config.Config, deps api.Dependencies, logger *zerolog.Logger) error {
	mainLog := logging.Component(logger, "api-main")

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		var err error
		grpcServer, err = api.NewGRPCServer(cfg, deps, logger, nil)
		if err != nil {
			mainLog.Error().Err(err).Msg("create grpc server")
			return err
		}
		go func() {
			if err := grpcServer.Serve(); err != nil {
				mainLog.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	var httpServer *api.HTTPServer
	if cfg.API.HTTP.Enabled {
		httpServer = api.NewHTTPServer(cfg, deps, logger)
		go func() {
			if err := httpServer.Start(); err != nil {
				mainLog.Error().Err(err).Msg("http server stopped")
			}
		}()
	}

	if grpcServer == nil && httpServer == nil {
		return errors.New("both http and grpc apis are disabled")
	}
	mainLog.Info().Bool("http", httpServer != nil).Bool("grpc", grpcServer != nil).Msg("API server started")

	<-ctx.Done()
	mainLog.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	mainLog.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

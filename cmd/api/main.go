package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"cvbuilder/internal/api"
	"cvbuilder/internal/auth"
	"cvbuilder/internal/config"
	"cvbuilder/internal/database"
	"cvbuilder/internal/export"
	"cvbuilder/internal/logging"
	"cvbuilder/internal/pdf"
	"cvbuilder/internal/profile"
	"cvbuilder/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logger := logging.New(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("api bootstrapping",
		slog.String("db_host", cfg.Database.Host),
		slog.Int("db_port", cfg.Database.Port),
		slog.String("db_name", cfg.Database.Name),
		slog.String("pdf_engine", cfg.PDF.Engine),
	)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("database migrated")
	}

	authService, err := auth.NewAuthServiceFromConfig(cfg.Auth)
	if err != nil {
		return fmt.Errorf("init auth service: %w", err)
	}

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		return fmt.Errorf("init storage client: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer asynqClient.Close()

	generator, err := pdf.New(cfg.PDF)
	if err != nil {
		return fmt.Errorf("init pdf generator: %w", err)
	}

	profiles := profile.NewService(db, profile.WithMaxProfiles(cfg.API.MaxProfilesPerUser))
	exporter := export.New(profiles, generator,
		export.WithPhotos(storageClient),
		export.WithLogger(logger),
	)

	var scanner api.Scanner
	if cfg.Clamd.Addr != "" {
		scanner = api.ClamdScanner{Addr: cfg.Clamd.Addr}
	}

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, api.Deps{
		Config:      cfg,
		Logger:      logger,
		Users:       auth.NewUsers(db),
		AuthService: authService,
		Redis:       redisClient,
		Profiles:    profiles,
		Entries:     profile.NewEntries(profiles),
		Exporter:    exporter,
		Storage:     storageClient,
		Queue:       asynqClient,
		Scanner:     scanner,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// PDF 导出可能接近超时上限，关机时给在途请求留出同样的时间。
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.PDF.Timeout+5*time.Second)
	defer cancel()
	logger.Info("api shutting down")
	return server.Shutdown(shutdownCtx)
}

package main

import (
	"achievify/configs"
	v1 "achievify/internal/api/v1"
	"achievify/internal/config"
	"achievify/internal/metrics"
	"achievify/internal/repository"
	"achievify/internal/repository/memory"
	"achievify/internal/service"
	"achievify/internal/storage"
	"achievify/pkg/database"
	"achievify/pkg/logger"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load config
	cfg := configs.LoadConfig()

	// Inisialisasi logger
	logs, err := logger.New(cfg.LogDir)
	if err != nil {
		log.Fatalf("init loggers: %v", err)
	}
	defer logs.Sync()
	logs.System.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logs)
	if err != nil {
		logs.Error.Fatal("Database unavailable", zap.Error(err))
	}
	defer closeStore()

	rdb, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		logs.Error.Fatal("Redis unavailable", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
		logs.System.Info("Redis connected", zap.String("addr", cfg.RedisAddr()))
	}

	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		logs.Error.Fatal("Blob store unavailable", zap.Error(err))
	}
	logs.System.Info("Blob store ready", zap.String("backend", cfg.UploadBackend))

	deps := config.NewDependencies(cfg, logs, metrics.New(), store, blobs, rdb)
	app := v1.NewApp(deps)

	addr := fmt.Sprintf(":%d", cfg.Port)
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(addr)
	}()
	logs.System.Info("Application ready", zap.String("addr", addr), zap.Bool("tokens", deps.Auth.TokensEnabled()))

	select {
	case err := <-listenErr:
		if err != nil {
			logs.Error.Error("Application failed to start", zap.Error(err))
		}
		return
	case <-ctx.Done():
	}

	logs.System.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logs.Error.Error("Graceful shutdown failed", zap.Error(err))
	}
	logs.System.Info("Stopped")
}

// openStore picks the persistence backend named by DB_DRIVER.
func openStore(ctx context.Context, cfg configs.Config, logs *logger.Loggers) (service.Store, func(), error) {
	switch cfg.DBDriver {
	case "memory":
		logs.System.Warn("Using in-memory store, data is lost on restart")
		return memory.New(), func() {}, nil
	case "postgres":
		db, err := database.ConnectDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logs.System.Info("Database connected", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))
		if err := repository.Migrate(ctx, db.DB); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logs.System.Info("Migrations applied")
		return repository.NewPostgresStore(db), func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

func openBlobStore(ctx context.Context, cfg configs.Config) (storage.BlobStore, error) {
	switch cfg.UploadBackend {
	case "local":
		return storage.NewLocalStore(cfg.UploadDir, service.Features()...)
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown UPLOAD_BACKEND %q", cfg.UploadBackend)
	}
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	_ "image-converter/docs"

	"image-converter/internal/delivery/http/handlers"
	"image-converter/internal/delivery/http/routers"
	domainrepo "image-converter/internal/domain/repositories"
	"image-converter/internal/infrastructure/archive"
	"image-converter/internal/infrastructure/processor"
	"image-converter/internal/infrastructure/queue"
	infrarepo "image-converter/internal/infrastructure/repositories"
	"image-converter/internal/infrastructure/storage"
	"image-converter/internal/pkg/config"
	"image-converter/internal/usecases"
	"image-converter/pkg/errors/i18n"
)

// @title        Image Converter API
// @version      1.0
// @description  Batch image conversion: resize, watermark, re-encode and download as zip.
// @BasePath     /api/v1
func main() {
	envErr := godotenv.Load()

	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			newLogger,
			fx.Annotate(infrarepo.NewInMemoryJobRepository, fx.As(new(domainrepo.JobRepository))),
			fx.Annotate(processor.NewPipeline, fx.As(new(usecases.Transformer))),
			newBatchRunner,
			fx.Annotate(newArchiver, fx.As(new(usecases.Archiver))),
			newArchiveStorage,
			newWorkerPool,
			newCleanupService,
			newProcessService,
			newUploadService,
			newDownloadService,
			handlers.NewProcessHandler,
			handlers.NewUploadHandler,
			handlers.NewDownloadHandler,
			handlers.NewHealthHandler,
			routers.NewApp,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Invoke(
			func(cfg *config.Config, logger *zap.Logger) {
				if envErr != nil {
					logger.Info("No .env file found, using system environment variables")
				}
				if err := i18n.Load(cfg.Server.Locale); err != nil {
					logger.Warn("Falling back to built-in error messages", zap.String("locale", cfg.Server.Locale), zap.Error(err))
				}
			},
			routers.SetupRoutes,
			registerHooks,
		),
	)

	app.Run()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Server.Env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newBatchRunner(t usecases.Transformer, cfg *config.Config, logger *zap.Logger) *usecases.BatchRunner {
	return usecases.NewBatchRunner(t, cfg.Workers.BatchConcurrency, logger)
}

func newArchiver(cfg *config.Config, logger *zap.Logger) *archive.ZipArchiver {
	return archive.NewZipArchiver(cfg.Storage.DownloadDir, logger)
}

// newArchiveStorage picks where finished archives are published.
func newArchiveStorage(cfg *config.Config, logger *zap.Logger) (domainrepo.ArchiveStorage, error) {
	switch strings.ToLower(cfg.Storage.Archive) {
	case "s3":
		if cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("ARCHIVE_STORAGE=s3 requires S3_BUCKET")
		}
		s, err := storage.NewS3Storage(context.Background(), cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix)
		if err != nil {
			return nil, fmt.Errorf("s3 archive storage: %w", err)
		}
		logger.Info("Publishing archives to S3", zap.String("bucket", cfg.S3.Bucket), zap.String("prefix", cfg.S3.Prefix))
		return s, nil
	case "", "local":
		return storage.NewLocalStorage(cfg.Storage.DownloadDir), nil
	default:
		return nil, fmt.Errorf("unknown ARCHIVE_STORAGE %q", cfg.Storage.Archive)
	}
}

func newWorkerPool(cfg *config.Config, logger *zap.Logger) *queue.WorkerPool {
	return queue.NewWorkerPool(cfg.Workers.JobWorkers, cfg.Workers.QueueSize, logger)
}

func newCleanupService(repo domainrepo.JobRepository, archives domainrepo.ArchiveStorage, cfg *config.Config, logger *zap.Logger) usecases.CleanupService {
	dirs := usecases.CleanupDirs{
		UploadDir:    cfg.Storage.UploadDir,
		ProcessedDir: cfg.Storage.ProcessedDir,
		DownloadDir:  cfg.Storage.DownloadDir,
		WatermarkDir: cfg.Storage.WatermarkDir,
	}
	return usecases.NewCleanupService(repo, archives, dirs, cfg.Cleanup.SweepCron, cfg.Cleanup.MaxAge, logger)
}

func newProcessService(
	repo domainrepo.JobRepository,
	runner *usecases.BatchRunner,
	archiver usecases.Archiver,
	archives domainrepo.ArchiveStorage,
	cleanup usecases.CleanupService,
	pool *queue.WorkerPool,
	cfg *config.Config,
	logger *zap.Logger,
) usecases.ProcessService {
	opts := usecases.ProcessOptions{
		ProcessedDir: cfg.Storage.ProcessedDir,
		CleanupDelay: cfg.Cleanup.Delay,
	}
	return usecases.NewProcessService(repo, runner, archiver, archives, cleanup, pool, opts, logger)
}

func newUploadService(cfg *config.Config, logger *zap.Logger) usecases.UploadService {
	limits := usecases.UploadLimits{
		MaxFileSize:      cfg.Limits.MaxFileSize,
		MaxFiles:         cfg.Limits.MaxFiles,
		MaxWatermarkSize: cfg.Limits.MaxWatermarkSize,
	}
	return usecases.NewUploadService(
		storage.NewLocalStorage(cfg.Storage.UploadDir),
		storage.NewLocalStorage(cfg.Storage.WatermarkDir),
		cfg.Storage.WatermarkDir,
		limits,
		logger,
	)
}

func newDownloadService(repo domainrepo.JobRepository, archives domainrepo.ArchiveStorage, cfg *config.Config, logger *zap.Logger) usecases.DownloadService {
	return usecases.NewDownloadService(repo, archives, cfg.Storage.DownloadDir, logger)
}

func registerHooks(
	lc fx.Lifecycle,
	app *fiber.App,
	cfg *config.Config,
	pool *queue.WorkerPool,
	processService usecases.ProcessService,
	cleanup usecases.CleanupService,
	logger *zap.Logger,
) {
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pool.Start(processService.HandleJob)
			if err := cleanup.Start(); err != nil {
				return fmt.Errorf("start cleanup sweep: %w", err)
			}

			go func() {
				logger.Info("Server starting", zap.String("addr", addr))
				if err := app.Listen(addr); err != nil {
					logger.Fatal("Server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutdown signal received, stopping server")
			err := app.ShutdownWithContext(ctx)

			// running jobs observe the cancelled context and end as failed
			pool.Shutdown()
			cleanup.Stop()

			if err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			logger.Info("Server stopped gracefully")
			_ = logger.Sync()
			return nil
		},
	})
}

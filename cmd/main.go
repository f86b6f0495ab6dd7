package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"rentalhub/internal/analytics"
	"rentalhub/internal/caching"
	"rentalhub/internal/config"
	"rentalhub/internal/handlers"
	"rentalhub/internal/jobs/background"
	"rentalhub/internal/logging"
	"rentalhub/internal/middleware"
	"rentalhub/internal/rental"
	"rentalhub/internal/repositories"
	"rentalhub/internal/services"
	"rentalhub/pkg/database"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("rentalhub stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.MigrationsEnabled {
		if err := database.RunMigrations(cfg.Database.URL, logger); err != nil {
			return err
		}
	}

	pool, err := database.NewPool(ctx, cfg.Database.URL, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	redisClient := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()
	cacheSvc := caching.NewRedisCacheService(redisClient)
	if err := cacheSvc.Ping(ctx); err != nil {
		logger.Warn("redis unavailable at startup, cache reads will fall back to the database", zap.Error(err))
	}

	policy, err := rental.ParseSendPolicy(cfg.Rental.SendPolicy)
	if err != nil {
		return err
	}

	// Repositories
	rentalRepo := repositories.NewRentalRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)
	attachmentRepo := repositories.NewAttachmentRepo(pool)

	// Services
	notifier := services.MultiNotifier{
		services.NewLogNotifier(logger),
		services.NewRedisNotifier(redisClient),
	}
	productSvc := services.NewProductService(productRepo, cacheSvc, logger)
	rentalSvc := services.NewRentalService(rentalRepo, productSvc, rental.NewEngine(policy), cacheSvc, notifier, logger)
	reportSvc := analytics.NewReportService(rentalRepo, cacheSvc, logger)

	scheduler, err := background.NewJobScheduler(reportSvc, cfg.Jobs.ReportRefreshInterval.Duration, logger)
	if err != nil {
		return fmt.Errorf("failed to create job scheduler: %w", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logger.Warn("job scheduler shutdown failed", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	v1 := versionMiddleware.VersionRoute(e, "v1", middleware.JWTMiddleware(cfg.Server.JWTSecret))

	handlers.NewRentalHandlers(rentalSvc).Register(v1)
	handlers.NewProductHandlers(productSvc).Register(v1)
	handlers.NewReportHandlers(reportSvc).Register(v1)
	handlers.NewJobHandlers(scheduler, reportSvc).Register(v1)

	var storage handlers.BucketChecker
	if cfg.AttachmentsEnabled() {
		objectStorage, err := services.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.Region, cfg.Minio.UseSSL)
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			logger.Warn("attachment bucket check failed", zap.String("bucket", cfg.Minio.Bucket), zap.Error(err))
		}
		storage = objectStorage
		handlers.NewAttachmentHandlers(services.NewAttachmentService(attachmentRepo, rentalRepo, objectStorage, logger)).Register(v1)
	} else {
		logger.Info("attachments disabled, MINIO_ENDPOINT not set")
	}

	if cfg.PaymentsEnabled() {
		gateway := services.NewRazorpayService(cfg.Payment.KeyID, cfg.Payment.KeySecret, cfg.Payment.WebhookSecret, cfg.Payment.BaseURL)
		paymentSvc := services.NewPaymentService(paymentRepo, rentalRepo, gateway, cfg.Payment.Currency, logger)
		handlers.NewPaymentHandlers(paymentSvc).Register(v1)
		// Webhooks are authenticated by signature, not JWT
		handlers.NewWebhookHandlers(paymentSvc, logger).Register(e.Group(""))
	} else {
		logger.Info("payments disabled, PAYMENT_KEY_ID not set")
	}

	handlers.NewHealthHandlers(pool, cacheSvc, storage, version).Register(e)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting rentalhub",
			zap.String("version", version),
			zap.String("port", cfg.Server.Port),
			zap.String("send_policy", string(policy)),
		)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"site-tracker-api/internal/client"
	"site-tracker-api/internal/config"
	"site-tracker-api/internal/database"
	"site-tracker-api/internal/job"
	"site-tracker-api/internal/metrics"
	"site-tracker-api/internal/queue"
	"site-tracker-api/internal/realtime"
	"site-tracker-api/internal/repository"
	"site-tracker-api/internal/router"
	"site-tracker-api/internal/service"
)

func main() {
	// A missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Site Tracker API",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
	)

	m := metrics.New(logger)

	// Database; keep retrying for a while so the pod survives a slow postgres start
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 2*time.Minute)
	db, err := database.Connect(connectCtx, database.Config{
		DSN:             cfg.Database.GetDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, 5*time.Second, logger)
	cancelConnect()
	if err != nil {
		logger.Fatal("Database unavailable", zap.Error(err))
	}

	if err := database.SafeAutoMigrateWithRetry(db, logger, 3); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	if err := database.RegisterMetricsCallbacks(db, m); err != nil {
		logger.Warn("Failed to register database metrics callbacks", zap.Error(err))
	}
	stopDBStats := database.StartDBStatsCollector(db, m, 15*time.Second)
	businessCollector := metrics.NewBusinessMetricsCollector(db, m, logger, 30*time.Second)
	businessCollector.Start()

	repos := repository.NewRepositories(db)

	// Startup seeding
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := service.NewPhaseTemplateService(repos.PhaseTemplates, logger).SeedDefaults(seedCtx); err != nil {
		logger.Error("Failed to seed phase templates", zap.Error(err))
	}
	if cfg.Bootstrap.Enabled() {
		if err := service.NewEmployeeService(repos.Employees, logger).EnsureBootstrapAdmin(seedCtx, cfg.Bootstrap); err != nil {
			logger.Error("Failed to ensure bootstrap admin", zap.Error(err))
		}
	}
	cancelSeed()

	// Optional collaborators
	rdb, err := database.NewRedis(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, notification fan-out and unread cache disabled", zap.Error(err))
		rdb = nil
	}

	var publisher client.NotificationPublisher
	if rdb != nil {
		publisher = client.NewRedisNotificationPublisher(rdb, logger)
	}

	webhook := client.NewNoOpNotificationClient()
	if cfg.Notification.WebhookURL != "" {
		webhook = client.NewNotificationClient(cfg.Notification.WebhookURL, cfg.Notification.APIKey, cfg.Notification.Timeout, logger, m)
		logger.Info("Notification webhook enabled", zap.String("url", cfg.Notification.WebhookURL))
	}

	events := queue.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, logger)

	var s3Client client.S3ClientInterface
	if cfg.S3.Bucket != "" && cfg.S3.Region != "" {
		c, err := client.NewS3Client(&cfg.S3, m)
		if err != nil {
			logger.Warn("Failed to initialize S3 client, uploads disabled", zap.Error(err))
		} else {
			s3Client = c
			logger.Info("S3 client initialized",
				zap.String("bucket", cfg.S3.Bucket),
				zap.String("region", cfg.S3.Region),
			)
		}
	} else {
		logger.Warn("S3 configuration incomplete, uploads disabled")
	}

	hub := realtime.NewHub(logger, m)
	go hub.Run()

	unreadCache := service.NewUnreadCache(rdb, cfg.Redis.UnreadCacheTTL, logger)
	dispatcher := service.NewDispatcher(publisher, webhook, events, hub, unreadCache, m, logger)

	// Housekeeping
	var attachmentCleaner job.AttachmentCleaner
	if s3Client != nil {
		attachmentCleaner = service.NewAttachmentService(repos.Attachments, s3Client, logger)
	}
	notificationCleaner := service.NewNotificationService(repos.Notifications, unreadCache, logger)
	scheduler, err := job.NewScheduler(cfg.Jobs,
		job.NewCleanupJob(attachmentCleaner, notificationCleaner, cfg.Jobs.NotificationRetainDays, logger),
		logger)
	if err != nil {
		logger.Fatal("Invalid job schedule", zap.Error(err))
	}
	scheduler.Start()

	r := router.Setup(router.Config{
		DB:             db,
		Redis:          rdb,
		Logger:         logger,
		JWT:            cfg.JWT,
		BasePath:       cfg.Server.BasePath,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        m,
		S3Client:       s3Client,
		Hub:            hub,
		Dispatcher:     dispatcher,
		UnreadCacheTTL: cfg.Redis.UnreadCacheTTL,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Site Tracker API started", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	hub.Stop()
	scheduler.Stop(ctx)
	businessCollector.Stop()
	close(stopDBStats)

	if err := events.Close(); err != nil {
		logger.Warn("Failed to close event publisher", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := database.Close(db); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

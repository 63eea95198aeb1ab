// Package main runs the badge builder HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/badgeforge/backend/config"
	"github.com/badgeforge/backend/internal/attendees"
	"github.com/badgeforge/backend/internal/auth"
	"github.com/badgeforge/backend/internal/exports"
	"github.com/badgeforge/backend/internal/middleware"
	"github.com/badgeforge/backend/internal/schema"
	"github.com/badgeforge/backend/internal/templates"
	"github.com/badgeforge/backend/internal/worker"
	"github.com/badgeforge/backend/pkg/database"
	"github.com/badgeforge/backend/pkg/queue"
	"github.com/badgeforge/backend/pkg/redis"
	"github.com/badgeforge/backend/pkg/response"
	"github.com/badgeforge/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Cfg := storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		PhotosBucket:         cfg.AWS.PhotosBucket,
		ExportsBucket:        cfg.AWS.ExportsBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}
	s3Client, err := storage.NewS3(ctx, s3Cfg, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Schema inference: model-backed column mapping with a positional fallback.
	var classifier schema.Classifier
	if cfg.Inference.BaseURL != "" {
		classifier = schema.NewAIClassifier(schema.AIClassifierConfig{
			BaseURL:    cfg.Inference.BaseURL,
			APIKey:     cfg.Inference.APIKey,
			Model:      cfg.Inference.Model,
			TimeoutSec: cfg.Inference.TimeoutSec,
		}, logger)
	}
	importer := schema.NewImporter(classifier, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Templates
	templateRepo := templates.NewRepository(pool)
	templateHandler := templates.NewHandler(templateRepo, logger)

	// Attendees
	attendeeRepo := attendees.NewRepository(pool)
	attendeeHandler := attendees.NewHandler(attendeeRepo, importer, templateRepo, s3Client, logger)

	// Exports
	exportRepo := exports.NewRepository(pool)
	exportHandler := exports.NewHandler(exportRepo, jobQueue, s3Client, logger)
	exportProcessor := worker.NewExportProcessor(exportRepo, templateRepo, attendeeRepo, s3Client, jobQueue, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Users (admin only)
		api.GET("/users", middleware.RequireRole("admin"), authHandler.List)

		// Attendees
		api.POST("/attendees/import", attendeeHandler.Import)
		api.GET("/attendees", attendeeHandler.List)
		api.DELETE("/attendees", attendeeHandler.Clear)
		api.POST("/attendees/photos", attendeeHandler.MatchPhotosBulk)
		api.DELETE("/attendees/fields/:label", attendeeHandler.DeleteField)
		api.GET("/attendees/:id", attendeeHandler.Get)
		api.PUT("/attendees/:id", attendeeHandler.Update)
		api.DELETE("/attendees/:id", attendeeHandler.Delete)
		api.PUT("/attendees/:id/photo", attendeeHandler.UploadPhoto)

		// Templates
		api.GET("/templates", templateHandler.List)
		api.POST("/templates", templateHandler.Create)
		api.GET("/templates/defaults/:archetype", templateHandler.Defaults)
		api.GET("/templates/:id", templateHandler.Get)
		api.PUT("/templates/:id", templateHandler.Update)
		api.DELETE("/templates/:id", templateHandler.Delete)

		// Exports
		api.POST("/exports", exportHandler.Create)
		api.GET("/exports", exportHandler.List)
		api.GET("/exports/:id", exportHandler.Get)
		api.GET("/exports/:id/manifest", exportHandler.Manifest)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process export worker; the standalone cmd/worker binary covers
	// deployments that scale processing separately.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go exportProcessor.Run(workerCtx)
	logger.Info("export worker started")

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/inspeksi/apar-backend/internal/config"
	"github.com/inspeksi/apar-backend/internal/inspection/entity"
	"github.com/inspeksi/apar-backend/internal/inspection/handler"
	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/inspeksi/apar-backend/internal/inspection/service"
	"github.com/inspeksi/apar-backend/internal/middleware"
	"github.com/inspeksi/apar-backend/internal/shared/notify"
	"github.com/inspeksi/apar-backend/internal/shared/sse"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting apar-backend service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Apar{},
		&entity.InspectionSchedule{},
		&entity.Inspection{},
		&entity.RepairRequest{},
		&entity.Notification{},
		&entity.AuditLog{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	migrationSQL := []string{
		"CREATE INDEX IF NOT EXISTS idx_inspections_inspected_at ON inspections(inspected_at)",
		"CREATE INDEX IF NOT EXISTS idx_schedules_apar_active ON inspection_schedules(apar_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_read ON notifications(user_id, is_read)",
	}
	for _, sql := range migrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			zapLogger.Warn("Migration SQL warning (may already exist)", zap.String("sql", sql), zap.Error(err))
		}
	}
	zapLogger.Info("Database migration completed")

	seedAdminUser(db, zapLogger)

	rdb := initRedis(cfg.Redis)

	minioClient, err := initMinIO(cfg.MinIO)
	if err != nil {
		zapLogger.Warn("MinIO unavailable, file uploads disabled", zap.Error(err))
	}

	hub := sse.NewHub()

	var webhook *notify.Client
	if cfg.Notify.Enabled && cfg.Notify.WebhookURL != "" {
		webhook = notify.NewClient(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
		zapLogger.Info("Notification webhook client initialized")
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, service.Deps{
		DB:      db,
		Redis:   rdb,
		MinIO:   minioClient,
		Hub:     hub,
		Webhook: webhook,
		Logger:  zapLogger,
	}, cfg)

	handlers := handler.NewHandlers(services, repos, hub)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initMinIO(cfg config.MinIOConfig) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return client, nil
}

// seedAdminUser creates the bootstrap admin account on an empty users
// table. The password comes from ADMIN_PASSWORD, defaulting for local
// development only.
func seedAdminUser(db *gorm.DB, zapLogger *zap.Logger) {
	var count int64
	if err := db.Model(&entity.User{}).Count(&count).Error; err != nil || count > 0 {
		return
	}

	password := config.GetEnvOrDefault("ADMIN_PASSWORD", "admin12345")
	hash, err := service.HashPassword(password)
	if err != nil {
		zapLogger.Warn("Failed to hash admin password", zap.Error(err))
		return
	}

	admin := &entity.User{
		ID:           uuid.New().String()[:32],
		Username:     "admin",
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
		Status:       entity.UserStatusActive,
	}
	if err := db.Create(admin).Error; err != nil {
		zapLogger.Warn("Failed to seed admin user", zap.Error(err))
		return
	}
	zapLogger.Info("Seeded bootstrap admin user", zap.String("username", admin.Username))
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// SSE stream: EventSource clients pass the token as a query
		// param, which JWTAuth accepts.
		events := v1.Group("/events")
		events.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			events.GET("", h.Notification.Stream)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			users := authorized.Group("/users")
			users.Use(middleware.RequireRole(entity.RoleAdmin))
			{
				users.GET("", h.User.List)
				users.POST("", h.User.Create)
				users.GET("/:id", h.User.Get)
				users.PUT("/:id", h.User.Update)
				users.PUT("/:id/password", h.User.ResetPassword)
				users.DELETE("/:id", h.User.Delete)
			}

			apars := authorized.Group("/apars")
			{
				apars.GET("", h.Apar.List)
				apars.GET("/qr/:code", h.Apar.GetByQRCode)
				apars.GET("/:id", h.Apar.Get)

				admin := apars.Group("")
				admin.Use(middleware.RequireRole(entity.RoleSupervisor, entity.RoleAdmin))
				{
					admin.POST("", h.Apar.Create)
					admin.PUT("/:id", h.Apar.Update)
					admin.DELETE("/:id", h.Apar.Delete)
					admin.POST("/refresh-expiry", h.Apar.RefreshExpiry)
				}
			}

			schedules := authorized.Group("/schedules")
			{
				schedules.GET("", h.Schedule.List)
				schedules.GET("/my-today", h.Schedule.MyToday)
				schedules.GET("/:id", h.Schedule.Get)

				admin := schedules.Group("")
				admin.Use(middleware.RequireRole(entity.RoleSupervisor, entity.RoleAdmin))
				{
					admin.POST("", h.Schedule.Create)
					admin.PUT("/:id", h.Schedule.Update)
					admin.PUT("/:id/complete", h.Schedule.Complete)
					admin.DELETE("/:id", h.Schedule.Delete)
				}
			}

			inspections := authorized.Group("/inspections")
			{
				inspections.POST("", h.Inspection.Submit)
				inspections.GET("", h.Inspection.List)
				inspections.GET("/:id", h.Inspection.Get)
				inspections.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.Inspection.Delete)
			}

			repairs := authorized.Group("/repairs")
			{
				repairs.GET("", h.Repair.List)
				repairs.POST("", h.Repair.Create)
				repairs.GET("/:id", h.Repair.Get)

				review := repairs.Group("")
				review.Use(middleware.RequireRole(entity.RoleSupervisor, entity.RoleAdmin))
				{
					review.PUT("/:id/approve", h.Repair.Approve)
					review.PUT("/:id/reject", h.Repair.Reject)
					review.PUT("/:id/complete", h.Repair.Complete)
				}
			}

			reports := authorized.Group("/reports")
			{
				reports.GET("/dashboard", h.Report.Dashboard)
				reports.GET("/inspections/export",
					middleware.RequireRole(entity.RoleSupervisor, entity.RoleAdmin),
					h.Report.ExportInspections)
			}

			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
			}

			authorized.GET("/audit-logs/:entityType/:entityId",
				middleware.RequireRole(entity.RoleSupervisor, entity.RoleAdmin),
				h.Audit.ListByEntity)

			authorized.GET("/files/*object", h.Inspection.DownloadFile)
		}
	}
}

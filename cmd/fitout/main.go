package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/config"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/middleware"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/handler"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/repository"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/service"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/sse"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/shared/bootstrap"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/shared/notify"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/shared/storage"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting fitout production service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := bootstrap.OpenDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(entity.Models()...); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	rdb := bootstrap.NewRedis(cfg.Redis, zapLogger)
	if rdb != nil {
		defer rdb.Close()
	}

	objects, err := storage.New(cfg.MinIO)
	if err != nil {
		zapLogger.Warn("MinIO client init failed, evidence upload disabled", zap.Error(err))
		objects = nil
	} else if objects != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		if err := objects.EnsureBucket(ctx); err != nil {
			zapLogger.Warn("MinIO bucket unavailable, evidence upload disabled", zap.Error(err))
			objects = nil
		}
		cancel()
	}

	notifier := notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
	hub := sse.NewHub(zapLogger)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg, zapLogger, objects, notifier, hub)

	seed, err := service.LoadCatalogSeed(cfg.Production.CatalogSeedFile)
	if err != nil {
		zapLogger.Fatal("Failed to load catalog seed", zap.Error(err))
	}
	if err := services.Catalog.Seed(context.Background(), seed); err != nil {
		zapLogger.Fatal("Failed to seed catalog", zap.Error(err))
	}

	handlers := handler.NewHandlers(services, cfg, hub)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/sse"})))

	registerRoutes(router, handlers, db, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // SSE 长连接
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

func registerRoutes(r *gin.Engine, h *handler.Handlers, db *gorm.DB, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	handler.RegisterRoutes(v1, h)
}

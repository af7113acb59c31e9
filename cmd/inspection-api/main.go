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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/inspection-api/api/swagger"
	"github.com/noah-isme/inspection-api/internal/handler"
	"github.com/noah-isme/inspection-api/internal/middleware"
	"github.com/noah-isme/inspection-api/internal/repository"
	"github.com/noah-isme/inspection-api/internal/service"
	"github.com/noah-isme/inspection-api/pkg/cache"
	"github.com/noah-isme/inspection-api/pkg/config"
	"github.com/noah-isme/inspection-api/pkg/database"
	"github.com/noah-isme/inspection-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/inspection-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/inspection-api/pkg/middleware/requestid"
)

// @title Inspection API
// @version 1.0.0
// @description Field inspection sheets: issuance, defect recording, submission and approval.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	catalogRepo, err := loadCatalog(cfg.Catalog)
	if err != nil {
		logr.Fatal("failed to load catalog", zap.Error(err))
	}
	catalog := service.NewCatalogService(catalogRepo, logr)
	readiness := map[string]handler.ReadinessCheck{}

	var (
		sheets repository.SheetStore
		audit  repository.AuditStore
	)
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close()
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(context.Background(), db); err != nil {
				logr.Fatal("failed to migrate schema", zap.Error(err))
			}
		}
		sheets = repository.NewSheetRepository(db)
		audit = repository.NewAuditRepository(db)
		readiness["postgres"] = pingDB(db)
	default:
		sheets = repository.NewMemorySheetRepository()
		audit = repository.NewMemoryAuditRepository()
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, export cache disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(client, cache.KeyPrefix, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
			readiness["redis"] = pingRedis(client)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cacheRepo != nil)

	opts := []service.InspectionServiceOption{service.WithMetrics(metricsSvc)}
	if cfg.Exports.Enabled {
		opts = append(opts, service.WithExporter(service.NewSheetExportService(cacheSvc, metricsSvc, cfg.Cache.TTL, logr, nil, nil)))
	}
	inspections := service.NewInspectionService(sheets, catalog, audit, validator.New(), logr, opts...)

	metricsHandler := handler.NewMetricsHandler(metricsSvc, readiness)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins, cfg.Identity.Header))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), middleware.Identity(cfg.Identity.Header, catalog), handler.Handlers{
		Catalog: handler.NewCatalogHandler(catalog),
		Sheets:  handler.NewSheetHandler(inspections),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func loadCatalog(cfg config.CatalogConfig) (*repository.CatalogRepository, error) {
	if cfg.File == "" {
		return repository.NewCatalogRepository(repository.DefaultCatalogData())
	}
	return repository.LoadCatalogFile(cfg.File)
}

func pingDB(db *sqlx.DB) handler.ReadinessCheck {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}

func pingRedis(client *redis.Client) handler.ReadinessCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

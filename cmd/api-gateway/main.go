package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/betosaco/soulpath-sub003/api/swagger"
	"github.com/betosaco/soulpath-sub003/internal/handler"
	"github.com/betosaco/soulpath-sub003/internal/middleware"
	"github.com/betosaco/soulpath-sub003/internal/models"
	"github.com/betosaco/soulpath-sub003/internal/repository"
	"github.com/betosaco/soulpath-sub003/internal/service"
	"github.com/betosaco/soulpath-sub003/pkg/cache"
	"github.com/betosaco/soulpath-sub003/pkg/config"
	"github.com/betosaco/soulpath-sub003/pkg/database"
	"github.com/betosaco/soulpath-sub003/pkg/logger"
	corsmiddleware "github.com/betosaco/soulpath-sub003/pkg/middleware/cors"
	reqidmiddleware "github.com/betosaco/soulpath-sub003/pkg/middleware/requestid"
)

// @title Schedule Conflict API
// @version 1.0.0
// @description Detects collisions between recurring teacher and venue schedules
// @BasePath /
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metricsSvc := service.NewMetricsService()
	scheduleRepo := repository.NewScheduleRepository(db, cfg.Database.QueryTimeout)
	guardedRepo := repository.NewGuardedScheduleRepository(scheduleRepo, repository.BreakerSettings{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		OpenTimeout:      cfg.Breaker.OpenTimeout,
		Interval:         cfg.Breaker.Interval,
	}, metricsSvc, logr)

	conflictSvc := service.NewScheduleConflictService(guardedRepo, validator.New(), logr, metricsSvc, service.ScheduleConflictConfig{
		OperatingHours: operatingHours(cfg.Conflicts, logr),
	})
	exportSvc := service.NewSummaryExportService(conflictSvc, logr)

	conflictHandler := handler.NewScheduleConflictHandler(conflictSvc, exportSvc, logr)
	metricsHandler := handler.NewMetricsHandler(metricsSvc.Handler(), scheduleRepo)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), cfg, conflictHandler, redisClient, logr)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "db_driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func registerRoutes(api *gin.RouterGroup, cfg *config.Config, h *handler.ScheduleConflictHandler, redisClient *redis.Client, logr *zap.Logger) {
	conflicts := api.Group("/schedule-conflicts")
	if cfg.Auth.Enabled {
		conflicts.Use(middleware.JWT(service.NewTokenVerifier(cfg.Auth.Secret)))
		conflicts.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	} else {
		logr.Warn("authentication disabled for schedule conflict routes")
	}

	checkLimit := middleware.RateLimit(redisClient, middleware.RateLimitConfig{
		Limit:  cfg.Conflicts.CheckRateLimit,
		Window: cfg.Conflicts.CheckRateWindow,
		Prefix: "schedule-conflicts",
	}, logr)

	conflicts.POST("/check", checkLimit, h.Check)
	conflicts.GET("/day-summary", h.DaySummary)
	conflicts.GET("/day-summary/export", h.ExportDaySummary)
	conflicts.GET("/teachers/:id/summary", h.TeacherSummary)
	conflicts.GET("/venues/:id/summary", h.VenueSummary)
}

func operatingHours(cfg config.ConflictsConfig, logr *zap.Logger) models.TimeRange {
	start, startErr := models.ParseTimeOfDay(cfg.OperatingHoursStart)
	end, endErr := models.ParseTimeOfDay(cfg.OperatingHoursEnd)
	hours := models.TimeRange{Start: start, End: end}
	if startErr != nil || endErr != nil || !hours.Valid() {
		logr.Warn("operating hours misconfigured, advisory disabled",
			zap.String("start", cfg.OperatingHoursStart),
			zap.String("end", cfg.OperatingHoursEnd),
		)
		return models.TimeRange{}
	}
	return hours
}

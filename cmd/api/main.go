package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/darsa-app/darsa-api/api/swagger"
	"github.com/darsa-app/darsa-api/internal/handler"
	"github.com/darsa-app/darsa-api/internal/middleware"
	"github.com/darsa-app/darsa-api/internal/models"
	"github.com/darsa-app/darsa-api/internal/repository"
	"github.com/darsa-app/darsa-api/internal/service"
	"github.com/darsa-app/darsa-api/pkg/cache"
	"github.com/darsa-app/darsa-api/pkg/config"
	"github.com/darsa-app/darsa-api/pkg/database"
	"github.com/darsa-app/darsa-api/pkg/export"
	"github.com/darsa-app/darsa-api/pkg/logger"
	corsmiddleware "github.com/darsa-app/darsa-api/pkg/middleware/cors"
	reqidmiddleware "github.com/darsa-app/darsa-api/pkg/middleware/requestid"
)

// @title Darsa API
// @version 0.1.0
// @description Schedule allocation and windowed attendance marking for multi-tenant schools
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	cacheEnabled := cfg.Dashboard.CacheEnabled && redisClient != nil
	if redisClient != nil {
		repo := repository.NewCacheRepository(redisClient, logr)
		defer repo.Close()
		cacheRepo = repo
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cacheEnabled)

	scheduleRepo := repository.NewScheduleRepository(db).WithQueryObserver(metrics.ObserveDBQuery)
	attendanceRepo := repository.NewAttendanceRepository(db).WithQueryObserver(metrics.ObserveDBQuery)
	studentRepo := repository.NewStudentRepository(db).WithQueryObserver(metrics.ObserveDBQuery)

	gate := service.NewGate(cfg.Attendance.GraceMinutes)
	scheduleSvc := service.NewScheduleService(scheduleRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(scheduleRepo, attendanceRepo, studentRepo, gate, cacheSvc, validate, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Schedules: scheduleRepo,
		Records:   attendanceRepo,
		Gate:      gate,
		Cache:     cacheSvc,
		Logger:    logr,
		Config:    service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})
	tokenSvc := service.NewTokenService(cfg.JWT)

	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, export.NewCSVExporter(), export.NewPDFExporter())
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenSvc))

	admin := api.Group("/schedules", middleware.RequireRoles(models.RoleAdmin))
	admin.GET("", scheduleHandler.List)
	admin.POST("", scheduleHandler.Create)
	admin.DELETE("/:id", scheduleHandler.Delete)

	teacher := api.Group("/teacher", middleware.RequireRoles(models.RoleTeacher))
	teacher.GET("/dashboard", dashboardHandler.TeacherToday)
	teacher.GET("/classes/:id", attendanceHandler.ClassInfo)
	teacher.POST("/classes/:id/attendance", attendanceHandler.Submit)
	teacher.GET("/classes/:id/register", attendanceHandler.Register)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

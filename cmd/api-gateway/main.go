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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/raka-dev/sekolah-hr-api/api/swagger"
	"github.com/raka-dev/sekolah-hr-api/internal/handler"
	"github.com/raka-dev/sekolah-hr-api/internal/middleware"
	"github.com/raka-dev/sekolah-hr-api/internal/models"
	"github.com/raka-dev/sekolah-hr-api/internal/repository"
	"github.com/raka-dev/sekolah-hr-api/internal/service"
	"github.com/raka-dev/sekolah-hr-api/pkg/cache"
	"github.com/raka-dev/sekolah-hr-api/pkg/config"
	"github.com/raka-dev/sekolah-hr-api/pkg/database"
	"github.com/raka-dev/sekolah-hr-api/pkg/jobs"
	"github.com/raka-dev/sekolah-hr-api/pkg/logger"
	corsmiddleware "github.com/raka-dev/sekolah-hr-api/pkg/middleware/cors"
	reqidmiddleware "github.com/raka-dev/sekolah-hr-api/pkg/middleware/requestid"
)

// @title Sekolah HR API
// @version 1.0.0
// @description Scheduling core: weekly timetables, monthly generation, override resolution.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()

	// Repositories.
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	userRepo := repository.NewUserRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	weeklyRepo := repository.NewWeeklyScheduleRepository(db)
	conflictRepo := repository.NewScheduleConflictRepository(db)
	lockRepo := repository.NewScheduleLockRepository(db)
	changeLogRepo := repository.NewChangeLogRepository(db)
	monthlyRepo := repository.NewMonthlyScheduleRepository(db)
	rowRepo := repository.NewEmployeeScheduleRepository(db)
	teachingRepo := repository.NewTeachingScheduleRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     "sekolah-hr-api",
	})
	conflictSvc := service.NewConflictService(weeklyRepo, subjectRepo, conflictRepo, logr)
	lockSvc := service.NewLockService(lockRepo, weeklyRepo, validate, logr)
	weeklySvc := service.NewWeeklyScheduleService(
		weeklyRepo, conflictSvc, lockSvc, changeLogRepo,
		timeSlotRepo, subjectRepo, cacheRepo, cfg.Scheduler.CacheTTL,
		validate, logr,
	)
	overrideSvc := service.NewOverrideService(rowRepo, monthlyRepo, attendanceRepo, logr)
	dispatcher := service.NewAttendanceDispatcher(overrideSvc, rowRepo, jobs.QueueConfig{
		Workers: cfg.Scheduler.AttendanceWorkers,
		Logger:  logr,
	}, logr)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	monthlySvc := service.NewMonthlyScheduleService(monthlyRepo, rowRepo, employeeRepo, dispatcher, validate, logr)
	teachingSvc := service.NewTeachingScheduleService(
		teachingRepo, rowRepo, employeeRepo, overrideSvc, subjectRepo,
		cacheRepo, cfg.Scheduler.TeachingOverrideHorizon, validate, logr,
	)
	holidaySvc := service.NewHolidayService(holidayRepo, rowRepo, overrideSvc, attendanceRepo, cacheRepo, validate, logr)
	resolverSvc := service.NewResolverService(
		rowRepo, teachingRepo, holidayRepo, weeklyRepo,
		employeeRepo, timeSlotRepo, subjectRepo, cacheRepo, logr,
	)
	timeSlotSvc := service.NewTimeSlotService(timeSlotRepo, validate, logr)

	go lockSvc.RunSweep(ctx, cfg.Scheduler.LockSweepInterval)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	weeklyHandler := handler.NewWeeklyScheduleHandler(weeklySvc, metricsSvc)
	conflictHandler := handler.NewConflictHandler(conflictSvc)
	lockHandler := handler.NewLockHandler(lockSvc, metricsSvc)
	monthlyHandler := handler.NewMonthlyScheduleHandler(monthlySvc, overrideSvc, metricsSvc)
	teachingHandler := handler.NewTeachingScheduleHandler(teachingSvc, metricsSvc)
	holidayHandler := handler.NewHolidayHandler(holidaySvc, metricsSvc)
	effectiveHandler := handler.NewEffectiveScheduleHandler(resolverSvc)
	timeSlotHandler := handler.NewTimeSlotHandler(timeSlotSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

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

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	authed.GET("/auth/me", authHandler.Me)

	writers := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleScheduler)
	admins := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	slots := authed.Group("/timeslots")
	{
		slots.GET("", timeSlotHandler.List)
		slots.GET("/:id", timeSlotHandler.Get)
		slots.POST("", admins, timeSlotHandler.Create)
		slots.DELETE("/:id", admins, timeSlotHandler.Deactivate)
	}

	weekly := authed.Group("/schedules/weekly")
	{
		weekly.GET("", weeklyHandler.List)
		weekly.GET("/:id", weeklyHandler.Get)
		weekly.POST("", writers, weeklyHandler.Create)
		weekly.PUT("/:id", writers, weeklyHandler.Update)
		weekly.DELETE("/:id", writers, weeklyHandler.Delete)
		weekly.GET("/:id/history", weeklyHandler.ChangeHistory)
		weekly.GET("/:id/conflicts", conflictHandler.ListBySchedule)
		weekly.GET("/:id/lock", lockHandler.Status)
		weekly.POST("/:id/lock", writers, lockHandler.Lock)
		weekly.DELETE("/:id/lock", writers, lockHandler.Unlock)
	}

	classes := authed.Group("/classes")
	{
		classes.GET("/:id/grid", weeklyHandler.ClassGrid)
		if cfg.Exports.Enabled {
			classes.GET("/:id/grid/export/csv", weeklyHandler.ExportCSV)
			classes.GET("/:id/grid/export/pdf", weeklyHandler.ExportPDF)
		}
	}

	conflicts := authed.Group("/conflicts")
	{
		conflicts.GET("", conflictHandler.ListUnresolved)
		conflicts.POST("/:id/resolve", writers, conflictHandler.Resolve)
	}

	authed.POST("/locks/cleanup", admins, lockHandler.Cleanup)

	monthly := authed.Group("/schedules/monthly")
	{
		monthly.GET("", monthlyHandler.List)
		monthly.GET("/:id", monthlyHandler.Get)
		monthly.POST("", writers, monthlyHandler.Create)
		monthly.POST("/:id/assign", writers, monthlyHandler.AssignEmployee)
		monthly.POST("/:id/assign/bulk", writers, monthlyHandler.BulkAssign)
		monthly.POST("/:id/finalize", writers, monthlyHandler.Finalize)
		monthly.GET("/:id/rows", monthlyHandler.ListRows)
		monthly.DELETE("/:id", writers, monthlyHandler.Deactivate)
	}
	authed.POST("/schedules/rows/:id/revert", writers, monthlyHandler.RevertRow)

	teaching := authed.Group("/schedules/teaching")
	{
		teaching.GET("", teachingHandler.List)
		teaching.GET("/:id", teachingHandler.Get)
		teaching.POST("", writers, teachingHandler.Create)
		teaching.PUT("/:id", writers, teachingHandler.Update)
		teaching.POST("/:id/apply", writers, teachingHandler.Apply)
		teaching.POST("/:id/substitute", writers, teachingHandler.AssignSubstitute)
		teaching.DELETE("/:id/substitute", writers, teachingHandler.RemoveSubstitute)
		teaching.DELETE("/:id", writers, teachingHandler.Deactivate)
	}

	authed.GET("/teachers/:id/workload", teachingHandler.Workload)

	holidays := authed.Group("/holidays")
	{
		holidays.GET("", holidayHandler.List)
		holidays.GET("/:id", holidayHandler.Get)
		holidays.POST("", writers, holidayHandler.Create)
		holidays.POST("/:id/generate", writers, holidayHandler.GenerateRecurring)
		holidays.GET("/:id/preview", holidayHandler.Preview)
		holidays.POST("/:id/apply", writers, holidayHandler.Apply)
		holidays.DELETE("/:id/apply", writers, holidayHandler.Remove)
		holidays.DELETE("/:id", writers, holidayHandler.Deactivate)
	}

	employees := authed.Group("/employees")
	{
		employees.GET("/:id/schedule", effectiveHandler.Resolve)
		employees.GET("/:id/schedule/range", effectiveHandler.ResolveRange)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}

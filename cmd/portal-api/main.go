package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/thebethel/portal-api/api/swagger"
	"github.com/thebethel/portal-api/internal/handler"
	"github.com/thebethel/portal-api/internal/middleware"
	"github.com/thebethel/portal-api/internal/models"
	"github.com/thebethel/portal-api/internal/repository"
	"github.com/thebethel/portal-api/internal/service"
	"github.com/thebethel/portal-api/pkg/cache"
	"github.com/thebethel/portal-api/pkg/config"
	"github.com/thebethel/portal-api/pkg/database"
	"github.com/thebethel/portal-api/pkg/logger"
	corsmiddleware "github.com/thebethel/portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/thebethel/portal-api/pkg/middleware/requestid"

	"github.com/go-playground/validator/v10"
)

// @title Bethel Portal API
// @version 1.0.0
// @description Attendance, streaks and dollar-point rewards for the school portal
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsService := service.NewMetricsService()

	// Redis is an optional accelerator; the portal still serves without it.
	var summaryCache *service.SummaryCacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, summary caching disabled", "error", err)
		summaryCache = service.NewSummaryCacheService(nil, metricsService, cfg.Summary.CacheTTL, logr, false)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewSummaryCacheRepository(redisClient, logr)
		summaryCache = service.NewSummaryCacheService(cacheRepo, metricsService, cfg.Summary.CacheTTL, logr, cfg.Summary.CacheEnabled)
	}

	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	userRepo := repository.NewUserRepository(db)
	homeworkRepo := repository.NewHomeworkRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	financeRepo := repository.NewFinanceRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	studentService := service.NewStudentService(studentRepo, validate, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, studentRepo, metricsService, validate, logr)
	rewardService := service.NewRewardService(rewardRepo, metricsService, validate, logr)
	homeworkService := service.NewHomeworkService(homeworkRepo, validate, logr)
	messageService := service.NewMessageService(messageRepo, cfg.Chat.MaxMessages, validate, logr)
	financeService := service.NewFinanceService(financeRepo, summaryCache, metricsService, validate, logr)
	exportService := service.NewExportService(attendanceRepo, financeRepo, cfg.Reports.OrganisationName, logr)

	authHandler := handler.NewAuthHandler(authService)
	studentHandler := handler.NewStudentHandler(studentService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	rewardHandler := handler.NewRewardHandler(rewardService)
	homeworkHandler := handler.NewHomeworkHandler(homeworkService, studentService)
	messageHandler := handler.NewMessageHandler(messageService)
	financeHandler := handler.NewFinanceHandler(financeService)
	reportHandler := handler.NewReportHandler(exportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

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

	r.GET("/metrics", metricsHandler.Prometheus())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group(cfg.APIPrefix)

	auth := v1.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
	}

	protected := v1.Group("")
	protected.Use(middleware.JWT(authService))

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	students := protected.Group("/students")
	{
		students.GET("", staff, studentHandler.List)
		students.POST("", adminOnly, studentHandler.Create)
		students.GET("/lookup/:student_id", studentHandler.Lookup)
		students.GET("/:id", staff, studentHandler.Get)
		students.PUT("/:id", adminOnly, studentHandler.Update)
		students.DELETE("/:id", adminOnly, studentHandler.Delete)

		students.POST("/:id/rewards", staff, rewardHandler.Grant)
		students.GET("/:id/rewards", staff, rewardHandler.List)
		students.GET("/:id/rewards/summary", staff, rewardHandler.Summary)
	}

	attendance := protected.Group("/attendance")
	attendance.Use(staff)
	{
		attendance.POST("/mark", attendanceHandler.Mark)
		attendance.POST("/bulk", attendanceHandler.BulkMark)
		attendance.GET("/students/:id", attendanceHandler.History)
		attendance.GET("/report", attendanceHandler.ClassReport)
	}

	homework := protected.Group("/homework")
	{
		homework.GET("", homeworkHandler.List)
		homework.POST("", staff, homeworkHandler.Create)
		homework.PUT("/:id", staff, homeworkHandler.Update)
		homework.DELETE("/:id", staff, homeworkHandler.Delete)
	}

	messagesGroup := protected.Group("/messages")
	{
		messagesGroup.GET("", messageHandler.List)
		messagesGroup.POST("", messageHandler.Post)
	}

	finance := protected.Group("/finance")
	finance.Use(adminOnly)
	{
		finance.GET("/expenses", financeHandler.List)
		finance.POST("/expenses", financeHandler.Record)
		finance.GET("/summary", financeHandler.MonthlySummary)
	}

	reports := protected.Group("/reports")
	reports.Use(staff)
	{
		reports.GET("/attendance.csv", reportHandler.AttendanceCSV)
		reports.GET("/attendance.pdf", reportHandler.AttendancePDF)
		reports.GET("/finance.csv", adminOnly, reportHandler.FinanceCSV)
	}

	protected.GET("/system/metrics", adminOnly, metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

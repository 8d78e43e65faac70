package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hireline/recruitment-api/api/swagger"
	"github.com/hireline/recruitment-api/internal/handler"
	"github.com/hireline/recruitment-api/internal/middleware"
	"github.com/hireline/recruitment-api/internal/models"
	"github.com/hireline/recruitment-api/internal/repository"
	"github.com/hireline/recruitment-api/internal/service"
	"github.com/hireline/recruitment-api/pkg/cache"
	"github.com/hireline/recruitment-api/pkg/config"
	"github.com/hireline/recruitment-api/pkg/database"
	"github.com/hireline/recruitment-api/pkg/export"
	"github.com/hireline/recruitment-api/pkg/logger"
	corsmiddleware "github.com/hireline/recruitment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hireline/recruitment-api/pkg/middleware/requestid"
	"github.com/hireline/recruitment-api/pkg/storage"
)

// @title Recruitment API
// @version 1.0.0
// @description Interview scheduling, feedback and candidate management
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
	defer db.Close() //nolint:errcheck

	// Redis is optional; without it interview reads skip the cache.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, projection cache disabled", "error", err)
		redisClient = nil
	}

	docStorage, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init document storage", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	interviewRepo := repository.NewInterviewRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, cfg.JWT)
	userSvc := service.NewUserService(userRepo, interviewRepo, validate, logr)
	candidateSvc := service.NewCandidateService(candidateRepo, validate, logr)
	interviewSvc := service.NewInterviewService(interviewRepo, feedbackRepo, userRepo, candidateRepo, cacheRepo, metricsSvc, cfg.Scheduling, validate, logr)
	commentSvc := service.NewCommentService(commentRepo, candidateRepo, validate, logr)
	documentSvc := service.NewDocumentService(documentRepo, candidateRepo, docStorage, cfg.Documents, logr)
	exportSvc := service.NewExportService(interviewRepo, candidateRepo, userRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	candidateHandler := handler.NewCandidateHandler(candidateSvc)
	interviewHandler := handler.NewInterviewHandler(interviewSvc)
	commentHandler := handler.NewCommentHandler(commentSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.GET("/auth/me", authHandler.Me)

	users := protected.Group("/users")
	{
		users.GET("", userHandler.List)
		users.POST("", middleware.RequireRoles(models.RoleAdmin), userHandler.Create)
		users.GET("/:id", userHandler.Get)
		users.PUT("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Update)
		users.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Delete)
		users.GET("/:id/candidates", userHandler.AssignedCandidates)
	}

	candidates := protected.Group("/candidates")
	{
		candidates.GET("", candidateHandler.List)
		candidates.POST("", candidateHandler.Create)
		candidates.POST("/search", candidateHandler.Search)
		candidates.GET("/:id", candidateHandler.Get)
		candidates.PUT("/:id", candidateHandler.Update)
		candidates.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleHRRepresentative), candidateHandler.Delete)
		candidates.GET("/:id/comments", commentHandler.ListForCandidate)
		candidates.POST("/:id/comments", commentHandler.Create)
		candidates.GET("/:id/documents", documentHandler.ListForCandidate)
		candidates.POST("/:id/documents", documentHandler.Upload)
	}

	comments := protected.Group("/comments")
	{
		comments.PUT("/:id", commentHandler.Update)
		comments.DELETE("/:id", commentHandler.Delete)
	}

	documents := protected.Group("/documents")
	{
		documents.GET("/:id", documentHandler.Download)
		documents.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleHRRepresentative), documentHandler.Delete)
	}

	interviews := protected.Group("/interviews")
	{
		interviews.POST("", interviewHandler.Schedule)
		interviews.POST("/feedback", interviewHandler.SubmitFeedback)
		interviews.GET("/:id", interviewHandler.Get)
		interviews.PUT("/:id", interviewHandler.Update)
		interviews.DELETE("/:id", interviewHandler.Delete)
	}

	if cfg.Exports.Enabled {
		exports := protected.Group("/exports")
		exports.Use(middleware.RequireRoles(models.RoleAdmin))
		{
			exports.GET("/interviews.csv", exportHandler.InterviewsCSV)
			exports.GET("/interviews.pdf", exportHandler.InterviewsPDF)
			exports.GET("/candidates.csv", exportHandler.CandidatesCSV)
			exports.GET("/candidates.pdf", exportHandler.CandidatesPDF)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

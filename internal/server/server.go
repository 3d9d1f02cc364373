package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yufyaj/seo-writer/internal/cms"
	"github.com/yufyaj/seo-writer/internal/config"
	"github.com/yufyaj/seo-writer/internal/generation"
	"github.com/yufyaj/seo-writer/internal/models"
	"github.com/yufyaj/seo-writer/internal/service"
)

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	// Services
	JobService *service.JobService
	Evaluator  *service.ScheduleEvaluator
	Scheduler  *service.Scheduler

	jobStore service.JobStore
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Set gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := service.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	creds, err := service.NewCredentialResolver(cfg.Crypto.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential resolver: %w", err)
	}

	genCfg, err := cfg.Generation.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid generation config: %w", err)
	}
	generator := generation.NewClient(genCfg, logger)

	newCMS := func(c cms.Config) service.CMSPublisher {
		return cms.NewClient(c, logger)
	}

	configStore := service.NewConfigStore(db)
	jobStore := service.NewJobStore(db)

	jobService := service.NewJobService(configStore, jobStore, creds, generator, newCMS, logger)

	evaluator, err := service.NewScheduleEvaluator(configStore, jobService, cfg.Scheduler.Timezone, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize schedule evaluator: %w", err)
	}

	scheduler := service.NewScheduler(&cfg.Scheduler, logger, evaluator)

	// Create router
	router := gin.New()

	// Create server
	srv := &Server{
		Config:     cfg,
		DB:         db,
		Router:     router,
		Logger:     logger,
		JobService: jobService,
		Evaluator:  evaluator,
		Scheduler:  scheduler,
		jobStore:   jobStore,
	}

	// Setup middleware and routes
	srv.setupMiddleware()
	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	// CORS middleware
	s.Router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// API routes
	api := s.Router.Group("/api/v1")
	{
		jobs := api.Group("/jobs")
		{
			jobs.POST("", s.handleExecuteJob)
			jobs.GET("", s.handleListJobs)
			jobs.GET("/:id", s.handleGetJob)
		}

		api.POST("/scheduler/run", s.handleRunScheduler)
		api.GET("/profiles/:id/cms/test", s.handleTestCMSConnection)
	}
}

type executeJobRequest struct {
	AccountID     uint `json:"account_id" binding:"required"`
	ProfileID     uint `json:"profile_id" binding:"required"`
	ContentTypeID uint `json:"content_type_id" binding:"required"`
}

func (s *Server) handleExecuteJob(c *gin.Context) {
	var req executeJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.JobService.ExecuteJob(c.Request.Context(), service.JobRequest{
		AccountID:     req.AccountID,
		ProfileID:     req.ProfileID,
		ContentTypeID: req.ContentTypeID,
		Trigger:       models.TriggerManual,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrProfileNotFound) ||
			errors.Is(err, service.ErrContentTypeNotFound) ||
			errors.Is(err, service.ErrCompanyNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	jobs, err := s.jobStore.ListJobs(c.Request.Context(), limit)
	if err != nil {
		s.Logger.Error("Failed to list jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (s *Server) handleGetJob(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := s.jobStore.GetJob(c.Request.Context(), uint(id))
	if err != nil {
		s.Logger.Error("Failed to get job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get job"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

func (s *Server) handleRunScheduler(c *gin.Context) {
	result := s.Evaluator.ExecuteScheduledJobs(c.Request.Context())
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleTestCMSConnection(c *gin.Context) {
	profileID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
		return
	}
	accountID, err := strconv.ParseUint(c.Query("account_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	ok, err := s.JobService.TestCMSConnection(c.Request.Context(), uint(accountID), uint(profileID))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrProfileNotFound) || errors.Is(err, service.ErrCompanyNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"connected": ok})
}

func (s *Server) Start(ctx context.Context) error {
	// Start scheduler
	if err := s.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop scheduler first
	s.Scheduler.Stop()

	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}

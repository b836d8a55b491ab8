package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/config"
	"github.com/leakguard/leakguard/internal/handler"
	"github.com/leakguard/leakguard/internal/middleware"
	"github.com/leakguard/leakguard/internal/pipeline"
	"github.com/leakguard/leakguard/internal/repository"
	"github.com/leakguard/leakguard/internal/service"
)

type Server struct {
	router   *gin.Engine
	db       *sqlx.DB
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	telegram handler.CodeSubmitter
	logger   *zap.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, p *pipeline.Pipeline, tg handler.CodeSubmitter, logger *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router:   router,
		db:       db,
		cfg:      cfg,
		pipeline: p,
		telegram: tg,
		logger:   logger,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	channelRepo := repository.NewChannelRepository(s.db, s.logger)
	messageRepo := repository.NewMessageRepository(s.db, s.logger)
	entityRepo := repository.NewEntityRepository(s.db, s.logger)
	leakRepo := repository.NewLeakRepository(s.db, s.logger)
	alertRepo := repository.NewAlertRepository(s.db, s.logger)
	authRepo := repository.NewAuthRepository(s.db, s.logger)

	authService := service.NewAuthService(authRepo, s.cfg.Auth.JWTSecret,
		time.Duration(s.cfg.Auth.TokenTTLMinutes)*time.Minute, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	channelHandler := handler.NewChannelHandler(channelRepo, s.logger)
	messageHandler := handler.NewMessageHandler(messageRepo, entityRepo, channelRepo, s.pipeline, s.logger)
	leakHandler := handler.NewLeakHandler(leakRepo, s.logger)
	alertHandler := handler.NewAlertHandler(alertRepo, s.logger)
	dashboardHandler := handler.NewDashboardHandler(channelRepo, messageRepo, leakRepo, s.logger)
	telegramHandler := handler.NewTelegramHandler(s.telegram, s.logger)

	// Health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	// Authenticated routes
	authRequired := s.router.Group("/api")
	authRequired.Use(middleware.AuthMiddleware(authService.Secret(), s.logger))
	{
		authRequired.GET("/channels", channelHandler.GetAllChannels)
		authRequired.POST("/channels", channelHandler.CreateChannel)
		authRequired.GET("/channels/:id", channelHandler.GetChannelByID)
		authRequired.PUT("/channels/:id/active", channelHandler.UpdateActive)

		authRequired.GET("/messages", messageHandler.ListMessages)
		authRequired.GET("/messages/:id", messageHandler.GetMessageByID)
		authRequired.POST("/messages/:id/extract", messageHandler.Extract)

		authRequired.GET("/leaks", leakHandler.GetLeaks)
		authRequired.GET("/leaks/:id", leakHandler.GetLeakByID)
		authRequired.PUT("/leaks/:id/status", leakHandler.UpdateStatus)

		authRequired.GET("/alerts", alertHandler.GetAlerts)
		authRequired.PUT("/alerts/:id/read", alertHandler.MarkRead)

		authRequired.GET("/dashboard/stats", dashboardHandler.GetStats)

		authRequired.POST("/telegram/code", telegramHandler.SubmitCode)
	}
}

func (s *Server) Run(addr string) error {
	s.logger.Info("Server starting", zap.String("addr", addr))
	return s.router.Run(addr)
}

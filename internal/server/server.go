// Package server exposes the business services over HTTP. Handlers
// stay thin: bind the request, call the service with the caller's
// auth context, map errors through the shared taxonomy.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/metrics"
	"github.com/agencyos/agencyos/internal/service"
	"github.com/agencyos/agencyos/pkg/auth"
)

type Server struct {
	engine   *gin.Engine
	services *service.Services
	tokens   *auth.TokenManager
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(services *service.Services, tokens *auth.TokenManager, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine:   router,
		services: services,
		tokens:   tokens,
		metrics:  m,
		logger:   logger,
	}
	router.Use(srv.observe())

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := s.engine.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", s.handleRegister)
		authGroup.POST("/login", s.handleLogin)
		authGroup.POST("/refresh", s.handleRefresh)
		authGroup.GET("/me", s.requireAuth(), s.handleMe)
	}

	protected := api.Group("", s.requireAuth())
	{
		clients := protected.Group("/clients")
		{
			clients.POST("", s.handleCreateClient)
			clients.GET("", s.handleListClients)
			clients.GET(":id", s.handleGetClient)
			clients.PATCH(":id", s.handleUpdateClient)
			clients.DELETE(":id", s.handleDeleteClient)
			clients.POST(":id/contacts", s.handleAddContact)
		}

		projects := protected.Group("/projects")
		{
			projects.POST("", s.handleCreateProject)
			projects.GET("", s.handleListProjects)
			projects.GET(":id", s.handleGetProject)
			projects.PATCH(":id", s.handleUpdateProject)
			projects.DELETE(":id", s.handleDeleteProject)
			projects.POST(":id/members", s.handleAddMember)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.POST("", s.handleCreateTask)
			tasks.GET("", s.handleListTasks)
			tasks.GET(":id", s.handleGetTask)
			tasks.PATCH(":id", s.handleUpdateTask)
			tasks.DELETE(":id", s.handleDeleteTask)
			tasks.POST(":id/transition", s.handleTransitionTask)
			tasks.GET(":id/reviews", s.handleListTaskReviews)
		}

		reviews := protected.Group("/reviews")
		{
			reviews.POST("", s.handleSubmitReview)
			reviews.GET(":id", s.handleGetReview)
			reviews.PATCH(":id", s.handleDecideReview)
		}

		protected.POST("/feedback", s.handleCreateFeedback)
		protected.GET("/feedback/search", s.handleSearchFeedback)

		timelogs := protected.Group("/timelogs")
		{
			timelogs.POST("", s.handleCreateTimeLog)
			timelogs.GET("", s.handleListTimeLogs)
			timelogs.GET("/summary", s.handleWeeklySummary)
		}

		channels := protected.Group("/channels")
		{
			channels.POST("", s.handleCreateChannel)
			channels.GET("", s.handleListChannels)
			channels.POST(":id/messages", s.handlePostMessage)
			channels.GET(":id/messages", s.handleListMessages)
		}

		files := protected.Group("/files")
		{
			files.POST("/sign", s.handleSignUpload)
			files.GET("", s.handleListFiles)
			files.DELETE(":id", s.handleDeleteFile)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", s.handleListNotifications)
			notifications.POST("/read", s.handleMarkNotificationsRead)
		}

		protected.POST("/calendar/push", s.handlePushCalendarEvent)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// observe records request counts and latency per route.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		s.metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), elapsed)
		s.logger.Debug("request",
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"duration", elapsed,
		)
	}
}

// respondError maps service errors to status codes; internal failures
// are logged with the route and hidden behind a generic message.
func (s *Server) respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
		message = "internal error"
	}
	c.JSON(status, gin.H{"error": message, "kind": apperr.KindOf(err)})
}

func (s *Server) bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": apperr.KindValidation})
		return false
	}
	return true
}

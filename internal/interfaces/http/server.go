// Package http provides the HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hardhat-systems/siteledger/internal/application/service"
	"github.com/hardhat-systems/siteledger/internal/config"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Server is the HTTP server adapter
type Server struct {
	config            config.ServerConfig
	httpServer        *http.Server
	router            *gin.Engine
	ledgerService     service.LedgerService
	submissionService service.SubmissionService
	summaryService    *service.SummaryService
	logger            Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	cfg config.ServerConfig,
	ledgerService service.LedgerService,
	submissionService service.SubmissionService,
	summaryService *service.SummaryService,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:            cfg,
		router:            router,
		ledgerService:     ledgerService,
		submissionService: submissionService,
		summaryService:    summaryService,
		logger:            logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.ledgerService, s.submissionService, s.summaryService, s.logger)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	// API routes
	api := s.router.Group("/api/v1")
	{
		// Labour entries
		api.POST("/labour-entries", handlers.CreateLabourEntry)
		api.GET("/labour-entries", handlers.ListLabourEntries)
		api.GET("/labour-entries/:id", handlers.GetLabourEntry)
		api.POST("/labour-entries/:id/approve", handlers.ApproveLabourEntry)
		api.POST("/labour-entries/:id/cancel", handlers.CancelLabourEntry)

		// Supervisor submissions
		api.POST("/submissions", handlers.CreateSubmission)
		api.GET("/submissions", handlers.ListSubmissions)
		api.GET("/submissions/:id", handlers.GetSubmission)
		api.POST("/submissions/:id/submit", handlers.SubmitSubmission)
		api.POST("/submissions/:id/approve", handlers.ApproveSubmission)
		api.POST("/submissions/:id/reject", handlers.RejectSubmission)

		// Labour batches
		api.GET("/batches/:id", handlers.GetBatch)

		// Cost summaries
		api.GET("/summaries", handlers.GetSummary)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

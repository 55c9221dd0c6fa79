// file: internal/server/server.go
// version: 2.0.0
// guid: 4c5d6e7f-8a9b-0c1d-2e3f-4a5b6c7d8e9f

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oovz/calibre-changpei/internal/config"
	"github.com/oovz/calibre-changpei/internal/metadata"
	"github.com/oovz/calibre-changpei/internal/metrics"
	"github.com/oovz/calibre-changpei/internal/server/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a metadata source over HTTP
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	source     metadata.Source
	logger     *slog.Logger
	timeout    atomic.Int64
}

// NewServer creates a new server instance
func NewServer(source metadata.Source, logger *slog.Logger, timeout time.Duration) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	// Register metrics (idempotent)
	metrics.Register()

	server := &Server{
		router: router,
		source: source,
		logger: logger,
	}
	server.SetTimeout(timeout)
	server.setupRoutes()
	return server
}

// Handler returns the router for embedding or tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetTimeout changes the upstream timeout used by later requests. Safe to
// call while serving.
func (s *Server) SetTimeout(timeout time.Duration) {
	s.timeout.Store(int64(timeout))
}

// Timeout returns the upstream timeout applied to each request
func (s *Server) Timeout() time.Duration {
	return time.Duration(s.timeout.Load())
}

// Start serves until SIGINT/SIGTERM and then shuts down gracefully
func (s *Server) Start(cfg config.ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	s.logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("server exited")
	return nil
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/api/health", s.healthCheck)

	api := s.router.Group("/api/v1")
	{
		api.GET("/health", s.healthCheck)
		api.GET("/source", s.getSource)
		api.GET("/identify", s.identify)
		api.GET("/cover", s.cover)
		api.GET("/url", s.bookURL)
		api.GET("/id-from-url", s.idFromURL)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "source": s.source.Descriptor().Name})
}

func (s *Server) getSource(c *gin.Context) {
	c.JSON(http.StatusOK, s.source.Descriptor())
}

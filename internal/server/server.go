// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/codecoach/internal/pipeline"
)

// shutdownTimeout bounds the graceful drain of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Executor runs pipeline tasks. *pipeline.Pipeline implements it.
type Executor interface {
	Execute(ctx context.Context, task pipeline.Task) (*pipeline.Result, error)
}

// Config configures the HTTP server.
type Config struct {
	Addr           string
	AllowOrigins   []string
	RequestTimeout time.Duration

	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Server is the HTTP API in front of a pipeline.
type Server struct {
	exec   Executor
	config Config
	logger *slog.Logger
	engine *gin.Engine
}

// New creates a Server and registers its routes.
func New(exec Executor, cfg Config, logger *slog.Logger) *Server {
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.Use(cors.New(corsConfig(cfg.AllowOrigins)))

	s := &Server{
		exec:   exec,
		config: cfg,
		logger: logger,
		engine: engine,
	}
	s.setupRoutes()
	return s
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	c.ExposeHeaders = []string{headerInvocationID, headerModel, headerAttempts, headerCache}
	return c
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{})))

	api := s.engine.Group("/api/v1")
	{
		api.POST("/questions", s.handleQuestion)
		api.POST("/evaluations", s.handleEvaluation)
		api.POST("/complexity", s.handleComplexity)
		api.POST("/reviews", s.handleReview)
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
			"client_ip", c.ClientIP())
	}
}

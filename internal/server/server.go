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

	"github.com/roach88/blobrelay/internal/bridge"
	"github.com/roach88/blobrelay/internal/relay"
)

// Options configures a Server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server serves a Bridge over HTTP.
type Server struct {
	bridge *bridge.Bridge
	hub    *relay.Hub
	router *gin.Engine
	http   *http.Server
	logger *slog.Logger
}

// New builds the router. The bridge must relay through hub so that
// POST /api/relay reaches event-stream subscribers.
func New(b *bridge.Bridge, hub *relay.Hub, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Cache-Control"},
			MaxAge:       12 * time.Hour,
		}))
	}

	s := &Server{
		bridge: b,
		hub:    hub,
		router: router,
		logger: logger,
	}
	s.setupRoutes()

	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.health)
	s.router.GET("/metrics", s.metrics)

	api := s.router.Group("/api")
	{
		api.POST("/records", s.storeRecord)
		api.GET("/records", s.fetchAll)
		api.POST("/relay", s.relay)
		api.GET("/events", s.events)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("host bridge listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("host bridge stopping")
	// Event streams never end on their own
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// requestLogger logs each request through slog.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Package server exposes envelope inspection over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/serialforce/internal/config"
	"github.com/danmuck/serialforce/internal/envelope"
	"github.com/danmuck/serialforce/internal/object"
	"github.com/danmuck/serialforce/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	nodeName = "sfctl"
	version  = "0.1.0"
)

// Server is the HTTP inspector. The resolver is read-only once built.
type Server struct {
	addr     string
	limits   envelope.Limits
	resolver *object.TypeResolver
	router   *gin.Engine
	logger   zerolog.Logger
	started  time.Time
}

func New(cfg config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		addr:     cfg.Addr,
		limits:   cfg.Limits(),
		resolver: cfg.Resolver(),
		router:   gin.New(),
		logger:   observability.ComponentLogger(nodeName),
		started:  time.Now(),
	}
	s.router.Use(gin.Recovery())
	s.router.Use(observability.RequestObserver(s.logger, nodeName))
	if len(cfg.CorsOrigins) > 0 {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CorsOrigins,
			AllowMethods: []string{"GET", "POST"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info().Msg("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

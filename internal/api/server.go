// Package api exposes the screening engine over HTTP. The API is a thin
// pull-only surface: screening runs are triggered explicitly and results
// are returned to the caller, never pushed.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/lunacycle-screening-server/internal/config"
	"github.com/lunacycle-screening-server/internal/domain"
	"github.com/lunacycle-screening-server/internal/service"
)

// Server is the HTTP server wrapping the screening service.
type Server struct {
	cfg       *config.Config
	logger    *logrus.Logger
	screening *service.ScreeningService
	router    *gin.Engine
	server    *http.Server

	// resultCache holds each user's latest screening result so repeated
	// reads don't re-trigger computation. Invalidated on any mutation.
	resultCache *lru.LRU[string, *domain.ScreeningResult]
}

// NewServer creates the HTTP server.
func NewServer(cfg *config.Config, logger *logrus.Logger, screening *service.ScreeningService) *Server {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(logger))
	if cfg.RateLimit.Enabled {
		router.Use(rateLimitMiddleware(cfg.RateLimit, logger))
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		screening: screening,
		router:    router,
		resultCache: lru.NewLRU[string, *domain.ScreeningResult](
			cfg.Cache.MaxEntries, nil, cfg.Cache.TTL),
	}

	s.setupRoutes()
	return s
}

// Start runs the server until the context is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/users/:userID/screening", s.handleRunScreening)
		v1.GET("/users/:userID/screening", s.handleGetScreening)
		v1.GET("/users/:userID/prediction", s.handleGetPrediction)
		v1.GET("/users/:userID/diagnoses", s.handleListDiagnoses)
		v1.GET("/users/:userID/diagnoses/follow-up", s.handleFollowUpDue)
		v1.POST("/diagnoses/:id/review", s.handleMarkReviewed)
		v1.DELETE("/diagnoses/:id", s.handleDismissDiagnosis)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

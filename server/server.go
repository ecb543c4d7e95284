// Package server exposes the document parsing pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tsawler/docmill/config"
	"github.com/tsawler/docmill/logger"
	"github.com/tsawler/docmill/media"
)

// Version is the service version reported by the root endpoint.
const Version = "1.0.0"

// Server is the HTTP front end for document parsing.
type Server struct {
	cfg    *config.Config
	store  *media.Store
	cache  *responseCache
	tokens *tokenEstimator
	router *gin.Engine
	log    logger.Logger
}

// New assembles a Server from the given configuration.
func New(cfg *config.Config) (*Server, error) {
	store, err := media.NewStore(media.StoreConfig{
		Dir:       cfg.Media.Dir,
		BaseURL:   cfg.Media.BaseURL,
		MaxWidth:  cfg.Media.MaxWidth,
		MaxHeight: cfg.Media.MaxHeight,
	})
	if err != nil {
		return nil, fmt.Errorf("server: creating media store: %w", err)
	}

	cache, err := newResponseCache()
	if err != nil {
		return nil, fmt.Errorf("server: creating cache: %w", err)
	}

	tokens, err := newTokenEstimator()
	if err != nil {
		return nil, fmt.Errorf("server: loading tokenizer: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		store:  store,
		cache:  cache,
		tokens: tokens,
		log:    logger.Default(),
	}
	s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(s.log))
	router.Use(CORSMiddleware())

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)
	router.GET("/supported-formats", s.handleSupportedFormats)
	router.GET("/config", s.handleConfig)
	router.POST("/parse", s.handleParse)
	router.Static("/images", s.cfg.Media.Dir)

	s.router = router
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM, then
// shuts down gracefully.
func (s *Server) Run() error {
	addr := s.cfg.Addr()
	s.log.Info("starting HTTP server", "address", fmt.Sprintf("http://%s", addr))

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-quit:
	}
	s.log.Debug("received shutdown signal, initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown failed: %w", err)
	}

	s.log.Info("server shutdown completed")
	return nil
}

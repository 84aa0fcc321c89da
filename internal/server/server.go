// Package server provides the HTTP API for skillmatch.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/skillmatch/internal/catalog"
	"github.com/hyperjump/skillmatch/internal/config"
	"github.com/hyperjump/skillmatch/internal/extract"
	"github.com/hyperjump/skillmatch/internal/match"
	"github.com/hyperjump/skillmatch/internal/skillindex"
	"github.com/hyperjump/skillmatch/internal/storage"
	"go.uber.org/zap"
)

// Server is the HTTP server for the skillmatch API.
type Server struct {
	service   *match.Service
	catalog   *catalog.Catalog
	index     *skillindex.Index
	cache     storage.VectorCache
	extractor *extract.Extractor
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies. cache may be nil.
func NewServer(
	service *match.Service,
	cat *catalog.Catalog,
	index *skillindex.Index,
	cache storage.VectorCache,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		service:   service,
		catalog:   cat,
		index:     index,
		cache:     cache,
		extractor: extract.NewExtractor(),
		config:    cfg,
		logger:    logger,
	}
}

// Router returns the API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if s.config.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.Server.RequestTimeout))
	}
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/analyze/strict", s.handleAnalyzeStrict)
		r.Post("/analyze/upload", s.handleAnalyzeUpload)
		r.Post("/normalize", s.handleNormalize)
		r.Get("/skills/search", s.handleSkillSearch)
		r.Get("/skills/{name}", s.handleSkill)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

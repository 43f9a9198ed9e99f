// Package api exposes the article cache over HTTP/JSON and serves the
// static site assets.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/nexusai/newshub/internal/article"
	"github.com/nexusai/newshub/internal/cache"
	"github.com/nexusai/newshub/internal/feed"
	"github.com/nexusai/newshub/internal/metrics"
)

// Server holds dependencies for the HTTP handlers.
type Server struct {
	cache        *cache.Manager
	sources      []feed.Source
	logger       *slog.Logger
	mux          *http.ServeMux
	defaultLimit int
}

// New wires up routes and returns a ready-to-use Server. staticDir is
// served at / when the directory exists; pass "" to disable.
func New(c *cache.Manager, sources []feed.Source, logger *slog.Logger, defaultLimit int, staticDir string) *Server {
	if defaultLimit <= 0 {
		defaultLimit = 12
	}
	srv := &Server{
		cache:        c,
		sources:      sources,
		logger:       logger,
		mux:          http.NewServeMux(),
		defaultLimit: defaultLimit,
	}
	srv.routes(staticDir)
	return srv
}

// ServeHTTP makes Server satisfy http.Handler, applying the CORS and
// request-logging middleware to every route.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.withLogging(s.withCORS(s.mux)).ServeHTTP(w, r)
}

func (s *Server) routes(staticDir string) {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/articles", s.handleArticles)
	s.mux.HandleFunc("GET /api/hero", s.handleHero)
	s.mux.HandleFunc("GET /api/summary", s.handleSummary)
	s.mux.HandleFunc("GET /debug", s.handleDebug)

	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			s.mux.Handle("/", http.FileServer(http.Dir(staticDir)))
		}
	}
}

type articlesResponse struct {
	Articles    []article.Article `json:"articles"`
	Total       int               `json:"total"`
	LastUpdated *time.Time        `json:"lastUpdated"`
}

// handleArticles returns the non-hero articles, newest first. The hero
// is excluded here because /api/hero serves it.
func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	limit := s.defaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	articles, total, updatedAt := s.cache.Articles(r.Context(), limit)
	s.writeJSON(w, http.StatusOK, articlesResponse{
		Articles:    articles,
		Total:       total,
		LastUpdated: timePtr(updatedAt),
	})
}

type heroResponse struct {
	Article     *article.Article `json:"article"`
	LastUpdated *time.Time       `json:"lastUpdated"`
}

func (s *Server) handleHero(w http.ResponseWriter, r *http.Request) {
	hero, updatedAt := s.cache.Hero(r.Context())
	s.writeJSON(w, http.StatusOK, heroResponse{
		Article:     hero,
		LastUpdated: timePtr(updatedAt),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDebug(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "running",
		"articles_count": s.cache.Count(),
		"cache_updated":  timePtr(s.cache.LastUpdated()),
		"sources":        s.sources,
		"metrics":        metrics.Global.GetStats(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// timePtr maps the zero time to nil so JSON renders lastUpdated: null
// for a never-populated cache.
func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

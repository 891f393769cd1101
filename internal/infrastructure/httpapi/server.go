// Package httpapi exposes the manual trigger and status endpoints that run
// alongside the cron schedule.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"NewsRobot/internal/config"
	"NewsRobot/internal/ports"
	"NewsRobot/internal/usecase"
)

const serviceVersion = "0.1.0"

// Server handles the HTTP trigger surface.
type Server struct {
	cfg       config.Config
	pipeline  *usecase.Pipeline
	bookmarks ports.BookmarkSource
	seen      ports.SeenStore
	logger    *slog.Logger
}

// NewServer wires the handlers with their collaborators.
func NewServer(cfg config.Config, pipeline *usecase.Pipeline, bookmarks ports.BookmarkSource, seen ports.SeenStore, log *slog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		pipeline:  pipeline,
		bookmarks: bookmarks,
		seen:      seen,
		logger:    log,
	}
}

// Router builds the chi router for the service.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Post("/run", s.handleRun)
	r.Get("/config/status", s.handleConfigStatus)
	return r
}

// HTTPServer returns a ready-to-start http.Server on the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   "NewsRobot",
		"version":   serviceVersion,
		"status":    "running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleRun triggers a full weekly cycle synchronously. Cloud schedulers and
// operators both use this; the run takes seconds, not minutes, so holding
// the request open keeps the failure reporting simple.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.pipeline == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": "pipeline not configured",
		})
		return
	}

	started := time.Now()
	report, err := s.pipeline.ProcessWeek(r.Context(), started)
	if err != nil {
		s.error("manual run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status":           "error",
			"message":          err.Error(),
			"execution_time_s": time.Since(started).Seconds(),
			"report":           report,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "success",
		"execution_time_s": time.Since(started).Seconds(),
		"report":           report,
	})
}

func (s *Server) handleConfigStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "configured",
		"sources": len(s.cfg.Sources),
		"topics":  len(s.cfg.Topics),
		"wordpress": map[string]any{
			"site_configured":     s.cfg.WordPress.SiteURL != "",
			"username_configured": s.cfg.WordPress.Username != "",
		},
		"chatgpt": map[string]any{
			"api_key_configured": s.cfg.ChatGPT.APIKey != "",
			"model":              s.cfg.ChatGPT.Model,
		},
	}

	if s.bookmarks != nil {
		if bookmarks, skipped, err := s.bookmarks.Load(r.Context()); err == nil {
			status["bookmarks"] = map[string]int{"count": len(bookmarks), "skipped": skipped}
		} else {
			status["bookmarks"] = map[string]string{"error": err.Error()}
		}
	}

	if s.seen != nil {
		if count, err := s.seen.Count(r.Context()); err == nil {
			status["memory"] = map[string]int64{"seen_urls": count}
		}
	}

	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) error(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}

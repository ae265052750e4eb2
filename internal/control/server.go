// Package control exposes the scheduler's command surface over a
// loopback-only HTTP/JSON API, for scripting or a second process
// alongside the desktop shell.
package control

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gallerydl/internal/config"
	"gallerydl/internal/history"
	"gallerydl/internal/scheduler"
	"gallerydl/internal/security"
	"gallerydl/internal/task"
)

// Server is a loopback-only control API over a Scheduler, task Store,
// Config manager, and History sink.
type Server struct {
	router    chi.Router
	sched     *scheduler.Scheduler
	store     *task.Store
	cfg       *config.Manager
	history   *history.Sink
	audit     *security.AuditLogger
	authToken string
}

// New builds a Server. authToken, if non-empty, is required as the
// X-Auth-Token header on every request. audit may be nil, in which case
// requests simply aren't recorded to the access log.
func New(sched *scheduler.Scheduler, store *task.Store, cfg *config.Manager, hist *history.Sink, audit *security.AuditLogger, authToken string) *Server {
	s := &Server{sched: sched, store: store, cfg: cfg, history: hist, audit: audit, authToken: authToken}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.loopbackOnly)
	r.Use(s.authMiddleware)
	r.Use(s.auditMiddleware)
	r.Use(httpconcurrencyLimit(16))

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", s.handleStartTask)
		r.Post("/batch", s.handleBatchStartTask)
		r.Get("/", s.handleAllTasks)
		r.Get("/active", s.handleActiveTasks)
		r.Get("/{id}", s.handleTaskByID)
		r.Get("/{id}/progress", s.handleTaskProgress)
		r.Post("/{id}/cancel", s.handleCancelTask)
		r.Post("/{id}/retry", s.handleRetryTask)
		r.Delete("/history", s.handleClearTaskHistory)
	})

	r.Route("/history", func(r chi.Router) {
		r.Get("/", s.handleGetHistory)
		r.Delete("/", s.handleClearHistory)
		r.Get("/check_url", s.handleHistoryCheckURL)
	})

	r.Route("/config", func(r chi.Router) {
		r.Get("/", s.handleGetConfig)
		r.Put("/output_dir", s.handleSetOutputDir)
		r.Put("/proxy_url", s.handleSetProxyURL)
		r.Put("/active_library", s.handleSetActiveLibrary)
		r.Post("/libraries", s.handleAddLibrary)
		r.Put("/max_concurrent_tasks", s.handleSetMaxConcurrentTasks)
	})

	return r
}

// ListenAndServe binds to 127.0.0.1:port and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    net.JoinHostPort("127.0.0.1", strconv.Itoa(port)),
		Handler: s.router,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

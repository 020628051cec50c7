// CLAUDE:SUMMARY HTTP surface of the canvas service — receiver pages, REST listing, and WebSocket update streams.
// Package web serves the receiver-facing side of the canvas service: the
// HTML page a display loads, the WebSocket stream it follows, and a small
// REST API for inspecting surfaces.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/uijit/canvas"
	"github.com/hazyhaar/uijit/shield"
)

// Server exposes a Manager over HTTP and WebSocket.
type Server struct {
	mgr    *canvas.Manager
	logger *slog.Logger
	router chi.Router
}

// NewServer builds the HTTP surface for a manager.
func NewServer(mgr *canvas.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{mgr: mgr, logger: logger}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	for _, mw := range shield.DefaultStack() {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Get("/api/surfaces", s.handleList)
	r.Get("/api/surfaces/{surfaceID}", s.handleGet)
	r.Get("/canvas/{surfaceID}", s.handlePage)
	r.Get("/ws/{surfaceID}", s.handleWS)

	s.router = r
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.mgr.Config()
	// No WriteTimeout: WebSocket streams outlive any fixed write budget.
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web: server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("web: server stopped")
	return nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	surfaces := s.mgr.List(r.Context(), r.URL.Query().Get("device_id"))
	if surfaces == nil {
		surfaces = []canvas.Info{}
	}
	writeJSON(w, 200, map[string]any{"count": len(surfaces), "surfaces": surfaces})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	surfaceID := chi.URLParam(r, "surfaceID")
	snap, err := s.mgr.Get(r.Context(), surfaceID)
	if err != nil {
		if errors.Is(err, canvas.ErrNotFound) {
			writeError(w, 404, err)
			return
		}
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, snap)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

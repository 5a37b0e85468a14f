// Package web serves the game over WebSocket, with small JSON health and
// stats endpoints alongside.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/coop-snake/internal/codec"
	"github.com/vovakirdan/coop-snake/internal/multiplayer"
)

// ServerConfig holds configuration for the WebSocket server.
type ServerConfig struct {
	Addr       string
	Matchmaker *multiplayer.Matchmaker
	Logger     *log.Logger
}

// Server routes HTTP requests and upgrades /ws to game connections.
type Server struct {
	router   *chi.Mux
	http     *http.Server
	mm       *multiplayer.Matchmaker
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a server. Call ListenAndServe to start it.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		router: chi.NewRouter(),
		mm:     cfg.Matchmaker,
		logger: logger.WithPrefix("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(chimw.Recoverer)
	s.router.Use(s.logRequests)

	s.router.Get("/ws", s.handleWS)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/stats", s.handleStats)

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting websocket server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests. Upgraded connections are closed by
// their rooms when the matchmaker shuts down.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := codec.Lookup(r.URL.Query().Get("codec"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	conn := newConn(multiplayer.SessionID(uuid.NewString()), ws, c, s.mm, s.logger)
	if err := conn.start(); err != nil {
		s.logger.Warn("could not seat player", "remote", r.RemoteAddr, "err", err)
		conn.writeClose(websocket.CloseTryAgainLater, "server shutting down")
		conn.Close()
		ws.Close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.mm.Stats())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"request_id", chimw.GetReqID(r.Context()),
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package statusapi exposes a local read-only HTTP view of the gateway
// client's state for headless deployments: connection state, sticky error
// flags, and the latest streaming text.
package statusapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/clawlink/clawlink/internal/gateway"
)

// Status is the JSON body of GET /status.
type Status struct {
	State            string    `json:"state"`
	Connected        bool      `json:"connected"`
	MainSessionKey   string    `json:"main_session_key,omitempty"`
	StreamingText    string    `json:"streaming_text,omitempty"`
	PairingRequired  bool      `json:"pairing_required"`
	MissingScope     string    `json:"missing_scope,omitempty"`
	AgentCount       int       `json:"agent_count"`
	StartedAt        time.Time `json:"started_at"`
	Version          string    `json:"version"`
}

// Server serves the status endpoints.
type Server struct {
	client  *gateway.Client
	logger  *slog.Logger
	mux     *chi.Mux
	started time.Time
	version string

	mu   sync.Mutex
	http *http.Server
}

// NewServer creates the status server around a gateway client.
func NewServer(client *gateway.Client, version string, logger *slog.Logger) *Server {
	s := &Server{
		client:  client,
		logger:  logger.With("component", "statusapi"),
		mux:     chi.NewRouter(),
		started: time.Now(),
		version: version,
	}

	s.mux.Use(chimw.Recoverer)
	s.mux.Get("/status", s.handleStatus)
	s.mux.Get("/healthz", s.handleHealthz)

	return s
}

// Handler returns the HTTP handler for mounting.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe blocks serving on addr until Shutdown is called. A
// shutdown-initiated stop returns nil.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}

	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.logger.Info("status api listening", "addr", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener gracefully, waiting for in-flight requests
// up to the context deadline. Safe to call before or without
// ListenAndServe.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := Status{
		State:           s.client.State().String(),
		Connected:       s.client.IsConnected(),
		MainSessionKey:  s.client.MainSessionKey(),
		StreamingText:   s.client.StreamingText(),
		PairingRequired: s.client.PairingRequired(),
		MissingScope:    s.client.MissingScopeError(),
		AgentCount:      len(s.client.AgentList()),
		StartedAt:       s.started,
		Version:         s.version,
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.client.IsConnected() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": s.client.State().String()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Package control implements the daemon's loopback-only control plane:
// a small gorilla/mux HTTP API, reachable only on 127.0.0.1, that the tray
// UI and CLI use to query status, toggle the engine, and stream correction
// events. Grounded in the teacher's internal/web server/middleware/SSE
// handler pattern, re-pointed at a single in-process engine instead of a
// Postgres-backed record store.
package control

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/quietkey/autocorrectd/internal/ports"
)

// Engine is the subset of internal/engine.Engine the control plane needs.
// Defined here, at the consumer, so tests can exercise routes against a
// fake without building a real SymSpell index.
type Engine interface {
	Enabled() bool
	SetEnabled(bool)
	RecentEvents() []ports.CorrectionEvent
}

// Server is the loopback control-plane HTTP server.
type Server struct {
	engine     Engine
	apiKey     string
	httpServer *http.Server
	router     *mux.Router

	version string

	mu          sync.Mutex
	subscribers map[chan ports.CorrectionEvent]struct{}
}

// NewServer builds a Server bound to addr (expected to be a 127.0.0.1
// address; spec.md 4.H forbids binding any non-loopback interface). The
// API key is loaded from apiKeyPath, generating one on first run.
func NewServer(addr string, eng Engine, apiKeyPath, version string) (*Server, error) {
	key, err := loadOrCreateAPIKey(apiKeyPath)
	if err != nil {
		return nil, err
	}

	s := &Server{
		engine:      eng,
		apiKey:      key,
		version:     version,
		subscribers: make(map[chan ports.CorrectionEvent]struct{}),
	}
	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // the /api/events stream is long-lived
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.requireAPIKey)

	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/toggle", s.handleToggle).Methods("POST")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/events", s.handleEvents).Methods("GET")
}

// requireAPIKey rejects any request missing a matching X-API-Key header.
// There is no "development mode" bypass: the control plane always carries
// a credential, even bound to loopback only.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subtle.ConstantTimeCompare([]byte(r.Header.Get("X-API-Key")), []byte(s.apiKey)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusResponse struct {
	Enabled bool   `json:"enabled"`
	Version string `json:"version"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, statusResponse{Enabled: s.engine.Enabled(), Version: s.version})
}

type toggleRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.engine.SetEnabled(req.Enabled)
	writeJSON(w, statusResponse{Enabled: s.engine.Enabled(), Version: s.version})
}

type statsResponse struct {
	Events []ports.CorrectionEvent `json:"events"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, statsResponse{Events: s.engine.RecentEvents()})
}

// handleEvents streams CorrectionEvents as Server-Sent Events, in the
// style of the teacher's RealtimeHandler.SSEUpdates: a flusher-backed
// stream that exits when the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: correction\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// Publish implements ports.Notifier, fanning a CorrectionEvent out to every
// connected /api/events subscriber. A subscriber whose buffer is full
// misses the event rather than blocking the engine's correction worker.
func (s *Server) Publish(ev ports.CorrectionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Server) subscribe() chan ports.CorrectionEvent {
	ch := make(chan ports.CorrectionEvent, 16)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan ports.CorrectionEvent) {
	s.mu.Lock()
	delete(s.subscribers, ch)
	s.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("control: writing response", "err", err)
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled, at which
// point it shuts down gracefully, mirroring the teacher's signal-driven
// Server.Start.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("control: listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Package api provides the HTTP API for observing the simulation.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talgya/entropic/internal/engine"
	"github.com/talgya/entropic/internal/persistence"
	"github.com/talgya/entropic/internal/physics"
)

const (
	maxSSEConns       = 2
	heartbeatInterval = 15 * time.Second
	maxBodyBytes      = 4 << 10
)

// Server serves the simulation over HTTP.
type Server struct {
	Sim      *engine.Simulation
	DB       *persistence.DB // Optional. Nil disables the journal endpoints.
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// Requests per minute per client on POST endpoints. Zero uses 30.
	CommandRate int

	// Active SSE connection count.
	sseConns atomic.Int32
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	rate := s.CommandRate
	if rate <= 0 {
		rate = 30
	}
	limiter := NewRateLimiter(rate, time.Minute)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (GET, read-only).
		r.Get("/status", s.handleStatus)
		r.Get("/conversation", s.handleConversation)
		r.Get("/log", s.handleLog)
		r.Get("/discoveries", s.handleDiscoveries)
		r.Get("/state", s.handleState)
		r.Get("/events", s.handleEvents)
		r.Get("/runs", s.handleRuns)
		r.Get("/stream", s.handleStream)

		// Admin endpoints (POST, require bearer token).
		r.Group(func(r chi.Router) {
			r.Use(s.adminOnly)
			r.Use(limiter.Middleware)
			r.Post("/command", s.handleCommand)
			r.Post("/parameters", s.handleParameters)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "", "journal", s.DB != nil)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http api shutdown: %w", err)
	}
	slog.Info("HTTP API stopped")
	return nil
}

// requestLogger logs each request through slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires bearer token auth.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no ENTROPIC_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusResponse struct {
	RunID         string              `json:"run_id"`
	Running       bool                `json:"running"`
	Tick          uint64              `json:"tick"`
	UptimeSeconds float64             `json:"uptime_seconds"`
	Parameters    physics.Parameters  `json:"parameters"`
	Dimensions    int                 `json:"dimensions"`
	Particles     int                 `json:"particles"`
	Forces        []physics.ForceKind `json:"forces"`
	Discoveries   int                 `json:"discoveries"`
	MeanEnergy    float64             `json:"mean_energy"`
	PeakEnergy    float64             `json:"peak_energy"`
}

func (s *Server) status() statusResponse {
	snap := s.Sim.Snapshot()
	forces := snap.State.Forces
	if forces == nil {
		forces = []physics.ForceKind{}
	}
	return statusResponse{
		RunID:         snap.RunID.String(),
		Running:       snap.Running,
		Tick:          snap.Tick,
		UptimeSeconds: snap.Uptime.Seconds(),
		Parameters:    snap.Params,
		Dimensions:    snap.Dimensions(),
		Particles:     snap.ParticleCount(),
		Forces:        forces,
		Discoveries:   len(snap.Discoveries),
		MeanEnergy:    snap.MeanEnergy,
		PeakEnergy:    snap.PeakEnergy,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Snapshot())
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Snapshot().Conversation)
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	lines := s.Sim.Snapshot().Log
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.String())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDiscoveries(w http.ResponseWriter, r *http.Request) {
	found := s.Sim.Snapshot().Discoveries
	if found == nil {
		found = []physics.Discovery{}
	}
	writeJSON(w, http.StatusOK, found)
}

// handleEvents returns journaled events for the current run, newest first.
// Query: ?limit=N (default 50, max 500).
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "journal disabled (no --db)", http.StatusNotFound)
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 500)
	}

	events, err := s.DB.RecentEvents(r.Context(), s.Sim.RunID, limit)
	if err != nil {
		slog.Error("load events failed", "error", err)
		http.Error(w, "journal query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "journal disabled (no --db)", http.StatusNotFound)
		return
	}
	runs, err := s.DB.Runs(r.Context(), 20)
	if err != nil {
		slog.Error("load runs failed", "error", err)
		http.Error(w, "journal query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

type commandRequest struct {
	Command string `json:"command"`
}

// handleCommand executes one command token. Quit is reserved for the
// dashboard that owns the process.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	cmd, err := engine.ParseCommand(req.Command)
	if err == nil && cmd == engine.CmdQuit {
		http.Error(w, "quit is not available over the API", http.StatusBadRequest)
		return
	}
	if _, err := s.Sim.HandleToken(req.Command); err != nil {
		if errors.Is(err, engine.ErrInvalidCommand) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("command failed", "command", req.Command, "error", err)
		http.Error(w, "command failed", http.StatusInternalServerError)
		return
	}

	slog.Info("admin command", "command", cmd.String())
	writeJSON(w, http.StatusOK, map[string]any{
		"command": cmd.String(),
		"status":  s.status(),
	})
}

// handleParameters replaces all three physics parameters.
func (s *Server) handleParameters(w http.ResponseWriter, r *http.Request) {
	var p physics.Parameters
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&p); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	s.Sim.SetParameters(p)
	writeJSON(w, http.StatusOK, s.status())
}

// handleStream provides an SSE endpoint for real-time event streaming.
// Concurrent connections are capped.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if current := s.sseConns.Add(1); current > maxSSEConns {
		s.sseConns.Add(-1)
		http.Error(w, "too many SSE connections", http.StatusServiceUnavailable)
		return
	}
	defer s.sseConns.Add(-1)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	subID, ch := s.Sim.Subscribe()
	defer s.Sim.Unsubscribe(subID)

	// Catch-up: the conversation as it stands.
	snap := s.Sim.Snapshot()
	for _, n := range snap.Conversation {
		writeSSEEvent(w, engine.Event{
			Tick:        snap.Tick,
			Category:    engine.CategoryNarration,
			Speaker:     n.Speaker,
			Trigger:     n.Trigger,
			Description: n.Text,
		})
	}
	flusher.Flush()

	slog.Info("SSE client connected", "sub_id", subID)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			writeSSEEvent(w, e)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			slog.Info("SSE client disconnected", "sub_id", subID)
			return
		}
	}
}

// writeSSEEvent writes a single event in SSE format.
func writeSSEEvent(w http.ResponseWriter, e engine.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Category, data)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

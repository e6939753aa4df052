package steward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/talgya/entropic/internal/chronicle"
)

// DefaultWindow is how many flat observations count as stagnation.
const DefaultWindow = 5

// Steward runs observe → triage → decide → act cycles.
type Steward struct {
	Observer *Observer
	Actor    *Actor
	Window   int

	history *chronicle.Ring[Status]
}

// New creates a steward against the API at baseURL.
func New(baseURL, adminKey string, window int) *Steward {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Steward{
		Observer: NewObserver(baseURL),
		Actor:    NewActor(baseURL, adminKey),
		Window:   window,
		history:  chronicle.NewRing[Status](window * 2),
	}
}

// Cycle executes one observe → decide → act cycle.
func (s *Steward) Cycle(ctx context.Context) (Decision, error) {
	st, err := s.Observer.Observe(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("observation failed: %w", err)
	}
	s.history.Push(*st)

	health := Triage(s.history, s.Window)
	decision := Decide(health)
	slog.Info("steward assessment",
		"tick", st.Tick,
		"dimensions", st.Dimensions,
		"particles", st.Particles,
		"condition", string(health.Condition),
		"command", decision.Command,
		"rationale", decision.Rationale,
	)

	if decision.Command == "" {
		return decision, nil
	}

	after, err := s.Actor.Act(ctx, decision.Command)
	if err != nil {
		return decision, err
	}
	// A reset or injection starts a fresh stagnation count.
	if decision.Command != "toggle-run" {
		s.history = chronicle.NewRing[Status](s.history.Cap())
	}
	slog.Info("steward command executed", "command", decision.Command, "dimensions", after.Dimensions, "running", after.Running)
	return decision, nil
}

// Run cycles until ctx is done. Cycle failures are logged and retried on
// the next interval.
func (s *Steward) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Cycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			slog.Error("steward cycle failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// WaitForAPI polls the status endpoint with exponential backoff until it
// responds or ctx is done.
func WaitForAPI(ctx context.Context, baseURL string, maxBackoff time.Duration) error {
	backoff := 100 * time.Millisecond
	client := &http.Client{Timeout: 5 * time.Second}

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/status", nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("entropic API is ready")
				return nil
			}
		}

		slog.Info("entropic API not ready, retrying...", "backoff", backoff)
		select {
		case <-ctx.Done():
			return fmt.Errorf("API at %s not ready: %w", baseURL, ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// Package steward implements the autopilot. It observes the simulation via
// the HTTP API, triages the run with fixed rules, and acts via the admin
// command endpoint.
package steward

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/entropic/internal/physics"
)

// Status mirrors GET /api/v1/status.
type Status struct {
	RunID         string             `json:"run_id"`
	Running       bool               `json:"running"`
	Tick          uint64             `json:"tick"`
	UptimeSeconds float64            `json:"uptime_seconds"`
	Parameters    physics.Parameters `json:"parameters"`
	Dimensions    int                `json:"dimensions"`
	Particles     int                `json:"particles"`
	Forces        []string           `json:"forces"`
	Discoveries   int                `json:"discoveries"`
	MeanEnergy    float64            `json:"mean_energy"`
	PeakEnergy    float64            `json:"peak_energy"`
}

// Observer fetches simulation state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Observe fetches the current status.
func (o *Observer) Observe(ctx context.Context) (*Status, error) {
	var st Status
	if err := o.fetchJSON(ctx, "/api/v1/status", &st); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	return &st, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

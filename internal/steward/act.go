package steward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Decision is the action chosen for one cycle. Command is empty for none.
type Decision struct {
	Command   string `json:"command,omitempty"`
	Rationale string `json:"rationale"`
}

// Decide maps a triage verdict onto at most one command.
func Decide(h Health) Decision {
	switch h.Condition {
	case Saturated:
		return Decision{Command: "reset", Rationale: fmt.Sprintf("pinned at %dD for %d cycles", h.Dimensions, h.PinnedCycle)}
	case Paused:
		return Decision{Command: "toggle-run", Rationale: "simulation paused"}
	case Stagnant:
		return Decision{Command: "inject", Rationale: fmt.Sprintf("%dD unchanged for %d cycles with no forces", h.Dimensions, h.FlatCycles)}
	}
	return Decision{Rationale: "healthy"}
}

// Actor executes commands via the admin API.
type Actor struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL with admin auth.
func NewActor(baseURL, adminKey string) *Actor {
	return &Actor{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Act sends a command to POST /api/v1/command and returns the resulting
// status.
func (a *Actor) Act(ctx context.Context, command string) (*Status, error) {
	body, err := json.Marshal(map[string]string{"command": command})
	if err != nil {
		return nil, fmt.Errorf("marshal command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/api/v1/command", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.AdminKey)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST command: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("command %s failed (%d): %s", command, resp.StatusCode, bytes.TrimSpace(respBody))
	}

	var result struct {
		Status Status `json:"status"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result.Status, nil
}

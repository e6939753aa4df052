package steward

import (
	"github.com/talgya/entropic/internal/chronicle"
	"github.com/talgya/entropic/internal/phi"
)

// Condition is the triage verdict for a run.
type Condition string

const (
	Healthy   Condition = "HEALTHY"
	Paused    Condition = "PAUSED"
	Stagnant  Condition = "STAGNANT"  // dimensions flat and no forces
	Saturated Condition = "SATURATED" // pinned at the dimension ceiling
)

// Health holds derived signals computed from recent observations.
type Health struct {
	Condition   Condition
	Dimensions  int
	FlatCycles  int // consecutive observations with unchanged dimensions
	PinnedCycle int // consecutive observations at the ceiling
	Forces      int
}

// Triage inspects the observation history, oldest first. window is how many
// unchanged observations count as stagnation or saturation.
func Triage(history *chronicle.Ring[Status], window int) Health {
	obs := history.Items()
	if len(obs) == 0 {
		return Health{Condition: Healthy}
	}
	newest := obs[len(obs)-1]
	h := Health{
		Condition:  Healthy,
		Dimensions: newest.Dimensions,
		Forces:     len(newest.Forces),
	}

	// A changed run id means the simulation restarted; ignore older samples.
	for i := len(obs) - 1; i >= 0; i-- {
		if obs[i].RunID != newest.RunID || obs[i].Dimensions != newest.Dimensions {
			break
		}
		h.FlatCycles++
		if obs[i].Dimensions >= phi.MaxDimensions {
			h.PinnedCycle++
		}
	}

	switch {
	case !newest.Running:
		h.Condition = Paused
	case h.PinnedCycle >= window:
		h.Condition = Saturated
	case h.FlatCycles >= window && h.Forces == 0:
		h.Condition = Stagnant
	}
	return h
}

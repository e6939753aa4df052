package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/talgya/entropic/internal/chronicle"
	"github.com/talgya/entropic/internal/physics"
)

// Snapshot is a consistent view of the whole system taken under one lock:
// parameters and derived state always come from the same tick.
type Snapshot struct {
	RunID        uuid.UUID                 `json:"run_id"`
	Running      bool                      `json:"running"`
	Tick         uint64                    `json:"tick"`
	Uptime       time.Duration             `json:"uptime"`
	Params       physics.Parameters        `json:"parameters"`
	State        physics.State             `json:"state"`
	Discoveries  []physics.Discovery       `json:"discoveries"`
	Conversation []chronicle.NarratedEvent `json:"conversation"`
	Log          []chronicle.LogLine       `json:"log"`
	MeanEnergy   float64                   `json:"mean_energy"`
	PeakEnergy   float64                   `json:"peak_energy"`
}

// Snapshot copies the current state. The result shares no memory with the
// simulation.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		RunID:        s.RunID,
		Running:      s.eng.Running(),
		Tick:         s.lastTick,
		Uptime:       s.eng.Uptime(),
		Params:       s.params,
		State:        s.state.Clone(),
		Discoveries:  append([]physics.Discovery(nil), s.discoveries...),
		Conversation: s.conversation.Items(),
		Log:          s.log.Items(),
	}
	snap.MeanEnergy, snap.PeakEnergy = physics.EnergySummary(snap.State.Particles)
	return snap
}

// Dimensions is a convenience accessor for the current dimension count.
func (sn Snapshot) Dimensions() int { return sn.State.Dimensions }

// ParticleCount returns the number of particles.
func (sn Snapshot) ParticleCount() int { return len(sn.State.Particles) }

// ForceCount returns the number of active forces.
func (sn Snapshot) ForceCount() int { return len(sn.State.Forces) }

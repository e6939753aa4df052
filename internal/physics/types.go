// Package physics derives the framework's secondary state from its three
// scalar knobs. Nothing here is physical: entropy, coupling and
// consciousness only matter through the threshold rules in derive.go.
package physics

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/talgya/entropic/internal/phi"
)

// Parameters are the three mutable knobs. No range is enforced.
type Parameters struct {
	Entropy       float64 `json:"entropy"`       // ω
	Coupling      float64 `json:"coupling"`      // Γ
	Consciousness float64 `json:"consciousness"` // C
}

// DefaultParameters returns the values restored by reset.
func DefaultParameters() Parameters {
	return Parameters{
		Entropy:       phi.DefaultEntropy,
		Coupling:      phi.DefaultCoupling,
		Consciousness: phi.DefaultConsciousness,
	}
}

func (p Parameters) String() string {
	return fmt.Sprintf("ω=%.2f, Γ=%.2f, C=%.2f", p.Entropy, p.Coupling, p.Consciousness)
}

// Particle is created while the system sits above the critical entropy.
// Particles are never removed within a run.
type Particle struct {
	ID            int     `json:"id"`
	HomeDimension int     `json:"home_dimension"`
	Energy        float64 `json:"energy"`
}

// ForceKind enumerates the emergent forces.
type ForceKind uint8

const (
	QuantumEntanglement ForceKind = iota
	EmergentGravity
	ConsciousnessField
	GhostForce
)

var forceNames = [...]string{
	QuantumEntanglement: "Quantum Entanglement",
	EmergentGravity:     "Emergent Gravity",
	ConsciousnessField:  "Consciousness Field",
	GhostForce:          "Ghost Force",
}

func (f ForceKind) String() string {
	if int(f) < len(forceNames) {
		return forceNames[f]
	}
	return fmt.Sprintf("ForceKind(%d)", f)
}

// MarshalText renders the force by name in JSON payloads.
func (f ForceKind) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// State is the derived state. It is replaced wholesale every tick.
type State struct {
	Dimensions int         `json:"dimensions"`
	Particles  []Particle  `json:"particles"`
	Forces     []ForceKind `json:"forces"`
}

// InitialState is the state after reset: four dimensions, nothing else.
func InitialState() State {
	return State{Dimensions: phi.DefaultDimensions}
}

// Clone returns a deep copy so callers never share backing arrays.
func (s State) Clone() State {
	out := State{Dimensions: s.Dimensions}
	if len(s.Particles) > 0 {
		out.Particles = append([]Particle(nil), s.Particles...)
	}
	if len(s.Forces) > 0 {
		out.Forces = append([]ForceKind(nil), s.Forces...)
	}
	return out
}

// Capacity is the particle ceiling for the current dimension count.
func (s State) Capacity() int {
	return phi.ParticlesPerDimension * s.Dimensions
}

// EnergySummary reports mean and max particle energy. Both are zero for an
// empty population.
func EnergySummary(particles []Particle) (mean, peak float64) {
	if len(particles) == 0 {
		return 0, 0
	}
	data := make(stats.Float64Data, len(particles))
	for i, p := range particles {
		data[i] = p.Energy
	}
	mean, err := data.Mean()
	if err != nil {
		return 0, 0
	}
	peak, err = data.Max()
	if err != nil {
		return mean, 0
	}
	return mean, peak
}

// Discovery is a milestone recorded at most once per run.
type Discovery string

const (
	QuantumThreshold       Discovery = "Quantum effects emerging at 5D threshold!"
	StandardModelBreakdown Discovery = "Standard Model breakdown detected - entering novel physics regime!"
	GhostVariables         Discovery = "Ghost variables dominating - unprecedented physics zone!"
)

package physics

import (
	"math"

	"github.com/talgya/entropic/internal/entropy"
	"github.com/talgya/entropic/internal/phi"
)

// Dimensions maps entropy onto a dimension count.
//
//	ω < 0.4773           max(1, ⌊8.4ω⌋)
//	0.4773 ≤ ω < 0.8452  4 + ⌊15(ω − 0.4773)⌋
//	ω ≥ 0.8452           min(458, 4 + ⌊180(ω − 0.4773)^1.8⌋)
func Dimensions(omega float64) int {
	if math.IsNaN(omega) {
		return phi.MinDimensions
	}
	var dims float64
	switch {
	case omega < phi.Critical:
		dims = math.Floor(omega * 8.4)
	case omega < phi.Expansion:
		dims = phi.DefaultDimensions + math.Floor((omega-phi.Critical)*15)
	default:
		dims = phi.DefaultDimensions + math.Floor(math.Pow(omega-phi.Critical, phi.ExpansionExponent)*180)
	}
	// Clamp before converting so infinities never reach int().
	dims = math.Max(phi.MinDimensions, math.Min(phi.MaxDimensions, dims))
	return int(dims)
}

// DetectForces recomputes the active force set. Order is fixed and is the
// order newly emerged forces are reported in.
func DetectForces(p Parameters, dims, particles int) []ForceKind {
	var forces []ForceKind
	if dims > phi.EntanglementDimensions && particles > 1 {
		forces = append(forces, QuantumEntanglement)
	}
	if p.Coupling > phi.GravityCoupling {
		forces = append(forces, EmergentGravity)
	}
	if p.Consciousness > phi.FieldConsciousness {
		forces = append(forces, ConsciousnessField)
	}
	if dims > phi.GhostDimensions {
		forces = append(forces, GhostForce)
	}
	return forces
}

// NewForces returns the forces in next that were absent from prev,
// preserving detection order.
func NewForces(prev, next []ForceKind) []ForceKind {
	var seen [len(forceNames)]bool
	for _, f := range prev {
		if int(f) < len(seen) {
			seen[f] = true
		}
	}
	var fresh []ForceKind
	for _, f := range next {
		if int(f) < len(seen) && seen[f] {
			continue
		}
		fresh = append(fresh, f)
	}
	return fresh
}

// DiscoveriesFor returns the milestones a transition from→to crosses.
// A single jump may cross more than one threshold.
func DiscoveriesFor(from, to int) []Discovery {
	var found []Discovery
	if from == 4 && to == 5 {
		found = append(found, QuantumThreshold)
	}
	if from <= phi.StandardModelLimit && to > phi.StandardModelLimit {
		found = append(found, StandardModelBreakdown)
	}
	if from <= phi.GhostDimensions && to > phi.GhostDimensions {
		found = append(found, GhostVariables)
	}
	return found
}

// Outcome is the result of one derivation.
type Outcome struct {
	State        State
	Transitioned bool
	From, To     int
	NewParticle  *Particle
	NewForces    []ForceKind
	Discoveries  []Discovery
}

// GhostCrossing reports whether the transition moved above 100 dimensions.
func (o Outcome) GhostCrossing() bool {
	return o.Transitioned && o.From <= phi.GhostDimensions && o.To > phi.GhostDimensions
}

// Derive computes the next state from p and the previous state. prev is
// not modified; the returned state shares no memory with it.
//
// At most one particle is created per call: one draw decides whether to
// create, two more fix its home dimension and energy.
func Derive(p Parameters, prev State, src entropy.Source) Outcome {
	next := prev.Clone()
	dims := Dimensions(p.Entropy)

	out := Outcome{From: prev.Dimensions, To: dims}
	if dims != prev.Dimensions {
		out.Transitioned = true
		out.Discoveries = DiscoveriesFor(prev.Dimensions, dims)
	}
	next.Dimensions = dims

	if p.Entropy > phi.Critical && len(next.Particles) < next.Capacity() && src.Float() < phi.ParticleChance {
		particle := spawnParticle(p, dims, len(next.Particles)+1, src)
		next.Particles = append(next.Particles, particle)
		out.NewParticle = &particle
	}

	next.Forces = DetectForces(p, dims, len(next.Particles))
	out.NewForces = NewForces(prev.Forces, next.Forces)
	out.State = next
	return out
}

func spawnParticle(p Parameters, dims, id int, src entropy.Source) Particle {
	span := dims - phi.DefaultDimensions
	if span < 1 {
		span = 1
	}
	home := phi.DefaultDimensions + int(math.Floor(src.Float()*float64(span)))
	if home > dims {
		home = dims
	}
	return Particle{
		ID:            id,
		HomeDimension: home,
		Energy:        math.Max(0, src.Float()*p.Coupling),
	}
}

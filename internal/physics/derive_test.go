package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/entropic/internal/entropy"
	"github.com/talgya/entropic/internal/phi"
)

func TestDimensionsSubCritical(t *testing.T) {
	for omega := 0.0; omega < phi.Critical; omega += 0.001 {
		want := int(math.Max(1, math.Floor(omega*8.4)))
		got := Dimensions(omega)
		require.Equal(t, want, got, "ω=%.4f", omega)
		require.GreaterOrEqual(t, got, 1)
	}
}

func TestDimensionsTable(t *testing.T) {
	cases := []struct {
		omega float64
		want  int
	}{
		{omega: 0, want: 1},
		{omega: 0.2, want: 1},
		{omega: 0.4772, want: 4},
		{omega: phi.Critical, want: 4},
		{omega: 0.6, want: 5},
		{omega: 0.8451, want: 9},
		{omega: phi.Expansion, want: 33},
		{omega: 1.0, want: 59},
		{omega: 1.5, want: 191},
		{omega: 2.0, want: 387},
		{omega: 5.0, want: phi.MaxDimensions},
		{omega: -3, want: 1},
		{omega: math.Inf(1), want: phi.MaxDimensions},
		{omega: math.Inf(-1), want: 1},
		{omega: math.NaN(), want: 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Dimensions(tc.omega), "ω=%v", tc.omega)
	}
}

func TestDeriveFlagsTransitionOnlyOnChange(t *testing.T) {
	src := entropy.NewSequence(0.9) // never spawns
	p := DefaultParameters()
	p.Entropy = 0.6

	out := Derive(p, InitialState(), src)
	assert.True(t, out.Transitioned)
	assert.Equal(t, 4, out.From)
	assert.Equal(t, 5, out.To)
	assert.Equal(t, []Discovery{QuantumThreshold}, out.Discoveries)

	again := Derive(p, out.State, src)
	assert.False(t, again.Transitioned)
	assert.Empty(t, again.Discoveries)
}

func TestDeriveDoesNotMutatePrevious(t *testing.T) {
	prev := State{Dimensions: 10, Particles: []Particle{{ID: 1, HomeDimension: 5, Energy: 1}}}
	p := Parameters{Entropy: 0.9, Coupling: 3}
	out := Derive(p, prev, entropy.NewSequence(0.1, 0.5, 0.5))

	require.Len(t, out.State.Particles, 2)
	assert.Len(t, prev.Particles, 1)
	assert.Empty(t, prev.Forces)
}

func TestDeriveSpawnsOneParticle(t *testing.T) {
	p := Parameters{Entropy: 0.9, Coupling: 2}
	// Spawn gate, home draw, energy draw.
	src := entropy.NewSequence(0.1, 0.5, 0.25)
	out := Derive(p, State{Dimensions: 42}, src)

	require.NotNil(t, out.NewParticle)
	assert.Equal(t, 1, out.NewParticle.ID)
	assert.Equal(t, 4+int(math.Floor(0.5*38)), out.NewParticle.HomeDimension)
	assert.InDelta(t, 0.5, out.NewParticle.Energy, 1e-12)
	assert.Equal(t, 3, src.Draws())
}

func TestDeriveNoParticleAtOrBelowCritical(t *testing.T) {
	src := entropy.NewSequence(0)
	out := Derive(Parameters{Entropy: phi.Critical, Coupling: 1}, InitialState(), src)
	assert.Nil(t, out.NewParticle)
	assert.Zero(t, src.Draws())
}

func TestDeriveRespectsCapacity(t *testing.T) {
	p := Parameters{Entropy: 0.6, Coupling: 1}
	st := InitialState()
	src := entropy.NewSequence(0) // always passes the spawn gate
	for i := 0; i < 100; i++ {
		st = Derive(p, st, src).State
	}
	assert.Equal(t, 5, st.Dimensions)
	assert.Len(t, st.Particles, 10)
	for i, particle := range st.Particles {
		assert.Equal(t, i+1, particle.ID)
		assert.LessOrEqual(t, particle.HomeDimension, st.Dimensions)
	}
}

func TestDeriveAdversarialExtremes(t *testing.T) {
	src := entropy.NewSeeded(1)
	extremes := []Parameters{
		{Entropy: 0, Coupling: 0},
		{Entropy: 2, Coupling: 5},
		{Entropy: 2, Coupling: 0},
		{Entropy: 0, Coupling: 5},
		{Entropy: 50, Coupling: 5, Consciousness: 1},
		{Entropy: -1, Coupling: -5},
	}
	st := InitialState()
	peak := 0
	for i := 0; i < 5000; i++ {
		p := extremes[entropy.Pick(src, len(extremes))]
		if i%7 == 0 {
			p = Parameters{
				Entropy:       entropy.Uniform(src, 0, 2),
				Coupling:      entropy.Uniform(src, 0, 5),
				Consciousness: src.Float(),
			}
		}
		out := Derive(p, st, src)
		st = out.State
		require.GreaterOrEqual(t, st.Dimensions, phi.MinDimensions)
		require.LessOrEqual(t, st.Dimensions, phi.MaxDimensions)
		if out.NewParticle != nil {
			require.LessOrEqual(t, len(st.Particles), st.Capacity())
			require.GreaterOrEqual(t, out.NewParticle.Energy, 0.0)
		}
		if st.Dimensions > peak {
			peak = st.Dimensions
		}
		require.LessOrEqual(t, len(st.Particles), phi.ParticlesPerDimension*peak)
	}
	assert.LessOrEqual(t, len(st.Particles), 2*phi.MaxDimensions)
}

func TestDetectForces(t *testing.T) {
	assert.Empty(t, DetectForces(DefaultParameters(), 4, 0))
	assert.Empty(t, DetectForces(DefaultParameters(), 6, 1))
	assert.Equal(t, []ForceKind{QuantumEntanglement}, DetectForces(DefaultParameters(), 6, 2))

	all := DetectForces(Parameters{Coupling: 3, Consciousness: 0.9}, 101, 2)
	assert.Equal(t, []ForceKind{QuantumEntanglement, EmergentGravity, ConsciousnessField, GhostForce}, all)

	// Thresholds are strict.
	assert.Empty(t, DetectForces(Parameters{Coupling: 2.5, Consciousness: 0.8}, 100, 0))
}

func TestNewForcesIsSetDifference(t *testing.T) {
	prev := []ForceKind{EmergentGravity, GhostForce}
	next := []ForceKind{QuantumEntanglement, EmergentGravity, ConsciousnessField, GhostForce}
	assert.Equal(t, []ForceKind{QuantumEntanglement, ConsciousnessField}, NewForces(prev, next))
	assert.Empty(t, NewForces(next, prev))
	assert.Empty(t, NewForces(next, next))
}

func TestDeriveReportsForceEmergence(t *testing.T) {
	src := entropy.NewSequence(0.9)
	p := Parameters{Entropy: 0.6, Coupling: 3}
	out := Derive(p, InitialState(), src)
	assert.Equal(t, []ForceKind{EmergentGravity}, out.NewForces)

	out = Derive(p, out.State, src)
	assert.Empty(t, out.NewForces)
	assert.Equal(t, []ForceKind{EmergentGravity}, out.State.Forces)
}

func TestDiscoveriesFor(t *testing.T) {
	assert.Equal(t, []Discovery{QuantumThreshold}, DiscoveriesFor(4, 5))
	assert.Empty(t, DiscoveriesFor(3, 5))
	assert.Equal(t, []Discovery{StandardModelBreakdown}, DiscoveriesFor(70, 71))
	assert.Empty(t, DiscoveriesFor(71, 90))
	assert.Equal(t, []Discovery{GhostVariables}, DiscoveriesFor(100, 101))
	assert.Equal(t, []Discovery{StandardModelBreakdown, GhostVariables}, DiscoveriesFor(59, 191))
	assert.Empty(t, DiscoveriesFor(191, 59))
}

func TestGhostCrossing(t *testing.T) {
	out := Derive(Parameters{Entropy: 1.5}, State{Dimensions: 59}, entropy.NewSequence(0.9))
	assert.True(t, out.GhostCrossing())
	out = Derive(Parameters{Entropy: 1.5}, out.State, entropy.NewSequence(0.9))
	assert.False(t, out.GhostCrossing())
}

func TestEnergySummary(t *testing.T) {
	mean, peak := EnergySummary(nil)
	assert.Zero(t, mean)
	assert.Zero(t, peak)

	mean, peak = EnergySummary([]Particle{{Energy: 1}, {Energy: 2}, {Energy: 6}})
	assert.InDelta(t, 3, mean, 1e-12)
	assert.InDelta(t, 6, peak, 1e-12)
}

func TestForceKindString(t *testing.T) {
	assert.Equal(t, "Ghost Force", GhostForce.String())
	text, err := QuantumEntanglement.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Quantum Entanglement", string(text))
}

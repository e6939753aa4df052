// Package phi provides the framework constants that every rule keys on.
// The default coupling is the golden ratio; the regime boundaries and the
// dimension ceiling are the only thresholds the deriver knows about.
package phi

import (
	"math"
	"time"
)

// Phi is the golden ratio.
const Phi = 1.6180339887498948

// Default parameter values restored by reset.
const (
	DefaultEntropy       = 0.75
	DefaultCoupling      = 1.618 // Φ truncated, as displayed
	DefaultConsciousness = 0.5
	DefaultDimensions    = 4
)

// Entropy regime boundaries.
const (
	// Critical is the lower edge of the Goldilocks zone (ω = 0.4773).
	// Below it space collapses toward fewer than four dimensions.
	Critical = 0.4773

	// Expansion is the upper edge (ω = 0.8452). At and beyond it the
	// dimension count grows exponentially.
	Expansion = 0.8452

	// ExpansionExponent shapes the super-critical growth curve.
	ExpansionExponent = 1.8
)

// Structural limits.
const (
	// MaxDimensions is the hard ceiling on the dimension count.
	MaxDimensions = 458

	// MinDimensions is the floor.
	MinDimensions = 1

	// ParticlesPerDimension bounds the population at 2 × dims.
	ParticlesPerDimension = 2
)

// Force thresholds.
const (
	EntanglementDimensions = 5
	GravityCoupling        = 2.5
	FieldConsciousness     = 0.8
	GhostDimensions        = 100
	StandardModelLimit     = 70
)

// Chances.
const (
	ParticleChance = 0.5
	AnomalyChance  = 0.1
)

// Ring capacities.
const (
	ConversationCapacity = 20
	LogCapacity          = 10
)

// TickInterval is the scheduler's default cadence.
const TickInterval = 500 * time.Millisecond

// Injection ranges for novel physics.
const (
	MaxInjectedEntropy       = 2.0
	MaxInjectedCoupling      = 5.0
	MaxInjectedConsciousness = 1.0
)

// Bell experiment constants.
const (
	// EntropicRatio regulates correlation amplitude in the CHSH estimate.
	EntropicRatio = 0.8

	// Tsirelson is the maximal quantum CHSH value, 2√2.
	Tsirelson = 2 * math.Sqrt2
)

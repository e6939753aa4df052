package narration

import (
	"fmt"
	"strings"

	"github.com/talgya/entropic/internal/physics"
)

// View is the slice of system state a commentator can see.
type View struct {
	Params     physics.Parameters
	Dimensions int
	Particles  int
	Forces     int
}

// Context carries trigger-specific details.
type Context struct {
	OldDimensions int
	NewDimensions int
	NewForce      string   // first newly emerged force
	Experiment    string   // experiment kind
	Result        string   // experiment result text
	Anomalies     []string // anomaly descriptions
}

// Compose renders what speaker says about t. It is a pure function of its
// arguments; the only randomness in narration is speaker selection.
func Compose(speaker Speaker, t Trigger, ctx Context, v View) string {
	switch speaker {
	case Quantum:
		return quantumLine(t, ctx, v)
	case Dimensional:
		return dimensionalLine(t, ctx, v)
	case Consciousness:
		return consciousnessLine(t, ctx, v)
	}
	return ambient(speaker, v)
}

// ambient is each speaker's fallback description of the current state.
func ambient(speaker Speaker, v View) string {
	p := v.Params
	switch speaker {
	case Quantum:
		return fmt.Sprintf("Quantum analysis ongoing: ω=%.3f, %dD, %d quantum states.", p.Entropy, v.Dimensions, v.Particles)
	case Dimensional:
		return fmt.Sprintf("Dimensional analysis: %dD space, coupling Γ=%.2f, %d emergent forces.", v.Dimensions, p.Coupling, v.Forces)
	case Consciousness:
		return fmt.Sprintf("Consciousness interface analysis: C=%.2f, observer effect on %d quantum systems.", p.Consciousness, v.Particles)
	}
	return fmt.Sprintf("Analysis ongoing: %dD.", v.Dimensions)
}

func quantumLine(t Trigger, ctx Context, v View) string {
	switch t {
	case ForceEmergence:
		if ctx.NewForce != "" {
			return fmt.Sprintf("Fascinating! New quantum force detected: %s. The framework is evolving.", ctx.NewForce)
		}
	case AnomalyDetected:
		if len(ctx.Anomalies) > 0 {
			return fmt.Sprintf("Anomaly in the quantum sector: %s.", strings.Join(ctx.Anomalies, "; "))
		}
	case ExperimentCompleted:
		if ctx.Result != "" {
			return fmt.Sprintf("Measurement recorded. %s", ctx.Result)
		}
	}
	if v.Dimensions >= 5 {
		return fmt.Sprintf("Quantum coherence confirmed at %dD! Entropy ω=%.3f is maintaining %d quantum states.", v.Dimensions, v.Params.Entropy, v.Particles)
	}
	return ambient(Quantum, v)
}

func dimensionalLine(t Trigger, ctx Context, v View) string {
	switch t {
	case DimensionalTransition:
		return fmt.Sprintf("Phase transition confirmed: %dD -> %dD. Entropy coupling ω=%.3f is the driver.", ctx.OldDimensions, ctx.NewDimensions, v.Params.Entropy)
	case GhostDetection:
		return fmt.Sprintf("Ghost variables detected beyond 100D: %d dimensions now active and none of them behave.", v.Dimensions)
	case AnomalyDetected:
		if len(ctx.Anomalies) > 0 {
			return fmt.Sprintf("The manifold looks wrong: %s.", strings.Join(ctx.Anomalies, "; "))
		}
	case ExperimentCompleted:
		if ctx.Result != "" {
			return fmt.Sprintf("Cross-checking against %dD geometry. %s", v.Dimensions, ctx.Result)
		}
	}
	if v.Dimensions > 70 {
		return fmt.Sprintf("BREAKTHROUGH: Beyond 70D threshold! We're in uncharted physics territory with %d active dimensions.", v.Dimensions)
	}
	return ambient(Dimensional, v)
}

func consciousnessLine(t Trigger, ctx Context, v View) string {
	switch t {
	case AnomalyDetected:
		if len(ctx.Anomalies) > 0 {
			return fmt.Sprintf("Observers are uneasy: %s.", strings.Join(ctx.Anomalies, "; "))
		}
	case ExperimentCompleted:
		if ctx.Result != "" {
			return fmt.Sprintf("Noting the observer's role in this one. %s", ctx.Result)
		}
	}
	c := v.Params.Consciousness
	switch {
	case c > 0.7:
		return fmt.Sprintf("High consciousness interface (C=%.2f) - quantum states are collapsing to classical behavior.", c)
	case c < 0.3:
		return fmt.Sprintf("Low consciousness coupling (C=%.2f) - maintaining quantum superposition across %d dimensions.", c, v.Dimensions)
	}
	return ambient(Consciousness, v)
}

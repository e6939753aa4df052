// Package narration picks which commentator speaks about an event and
// composes what they say. Selection is rule-based per trigger, with a
// random fallback that never repeats the previous speaker.
package narration

import (
	"fmt"

	"github.com/talgya/entropic/internal/entropy"
)

// Speaker identifies one of the three fixed commentators.
type Speaker uint8

const (
	Quantum Speaker = iota
	Dimensional
	Consciousness
)

// Speakers lists every commentator in a stable order.
var Speakers = []Speaker{Quantum, Dimensional, Consciousness}

// Profile is a commentator's display identity.
type Profile struct {
	Key       string
	Name      string
	Specialty string
}

var profiles = [...]Profile{
	Quantum:       {Key: "quantum", Name: "Dr. Quantum", Specialty: "Quantum Field Specialist"},
	Dimensional:   {Key: "dimensional", Name: "Prof. Dimensional", Specialty: "Higher Dimensions Expert"},
	Consciousness: {Key: "consciousness", Name: "Dr. Consciousness", Specialty: "Consciousness Interface Analyst"},
}

// Profile returns the speaker's display identity.
func (s Speaker) Profile() Profile {
	if int(s) < len(profiles) {
		return profiles[s]
	}
	return Profile{Key: fmt.Sprintf("speaker-%d", s), Name: "Unknown"}
}

func (s Speaker) String() string { return s.Profile().Key }

// Trigger is the closed set of events that request narration.
type Trigger uint8

const (
	SystemReset Trigger = iota
	SimulationStarted
	SimulationStopped
	DimensionalTransition
	GhostDetection
	ForceEmergence
	BellTest
	ConsciousnessCollapse
	ParameterChange
	NovelPhysicsInjection
	ExperimentCompleted
	AnomalyDetected
)

var triggerNames = [...]string{
	SystemReset:           "system_reset",
	SimulationStarted:     "simulation_started",
	SimulationStopped:     "simulation_stopped",
	DimensionalTransition: "dimensional_transition",
	GhostDetection:        "ghost_detection",
	ForceEmergence:        "force_emergence",
	BellTest:              "bell_test",
	ConsciousnessCollapse: "consciousness_collapse",
	ParameterChange:       "parameter_change",
	NovelPhysicsInjection: "novel_physics_injection",
	ExperimentCompleted:   "experiment_completed",
	AnomalyDetected:       "anomaly_detected",
}

func (t Trigger) String() string {
	if int(t) < len(triggerNames) {
		return triggerNames[t]
	}
	return fmt.Sprintf("trigger_%d", t)
}

// Selector remembers the last speaker and picks the next one.
type Selector struct {
	src     entropy.Source
	last    Speaker
	hasLast bool
}

// NewSelector creates a selector drawing fallback choices from src.
func NewSelector(src entropy.Source) *Selector {
	return &Selector{src: src}
}

// fixedSpeaker reports the speaker a trigger is bound to, if any.
func fixedSpeaker(t Trigger) (Speaker, bool) {
	switch t {
	case DimensionalTransition, GhostDetection:
		return Dimensional, true
	case ForceEmergence, BellTest:
		return Quantum, true
	case ConsciousnessCollapse, ParameterChange:
		return Consciousness, true
	}
	return 0, false
}

// Select chooses the speaker for t and records it as the last speaker.
// Bound triggers always get their speaker; the rest draw uniformly from
// the commentators other than the previous one.
func (s *Selector) Select(t Trigger) Speaker {
	speaker, ok := fixedSpeaker(t)
	if !ok {
		options := make([]Speaker, 0, len(Speakers))
		for _, sp := range Speakers {
			if s.hasLast && sp == s.last {
				continue
			}
			options = append(options, sp)
		}
		speaker = options[entropy.Pick(s.src, len(options))]
	}
	s.last = speaker
	s.hasLast = true
	return speaker
}

// Last returns the previous speaker, if anyone has spoken.
func (s *Selector) Last() (Speaker, bool) {
	return s.last, s.hasLast
}

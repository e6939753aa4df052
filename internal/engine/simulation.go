// Simulation is the single system object. Parameters, derived state,
// discoveries and both histories live behind one mutex; the background tick
// and every foreground command take it for their whole duration.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/entropic/internal/chronicle"
	"github.com/talgya/entropic/internal/entropy"
	"github.com/talgya/entropic/internal/experiment"
	"github.com/talgya/entropic/internal/narration"
	"github.com/talgya/entropic/internal/phi"
	"github.com/talgya/entropic/internal/physics"
)

// Config holds construction-time settings.
type Config struct {
	Source   entropy.Source   // Random source for every stochastic rule
	Interval time.Duration    // Tick cadence
	Clock    func() time.Time // Log line timestamps
}

// DefaultConfig returns a time-seeded config with the standard cadence.
func DefaultConfig() Config {
	return Config{
		Source:   entropy.NewSeeded(time.Now().UnixNano()),
		Interval: phi.TickInterval,
		Clock:    time.Now,
	}
}

// Simulation holds the complete system state and wires the rules together.
type Simulation struct {
	RunID uuid.UUID

	eng *Engine
	ctl sync.Mutex // serializes run-control commands (toggle, reset, shutdown)

	mu           sync.Mutex
	params       physics.Parameters
	state        physics.State
	discoveries  []physics.Discovery
	conversation *chronicle.Ring[chronicle.NarratedEvent]
	log          *chronicle.Ring[chronicle.LogLine]
	selector     *narration.Selector
	src          entropy.Source
	clock        func() time.Time
	lastTick     uint64

	// Event subscribers (SSE stream, journal).
	subs    map[int]chan Event
	nextSub int
	seq     uint64
}

// NewSimulation creates a stopped simulation at default parameters.
func NewSimulation(cfg Config) *Simulation {
	if cfg.Source == nil {
		cfg.Source = entropy.NewSeeded(time.Now().UnixNano())
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	s := &Simulation{
		RunID:        uuid.New(),
		eng:          NewEngine(),
		conversation: chronicle.NewRing[chronicle.NarratedEvent](phi.ConversationCapacity),
		log:          chronicle.NewRing[chronicle.LogLine](phi.LogCapacity),
		selector:     narration.NewSelector(cfg.Source),
		src:          cfg.Source,
		clock:        cfg.Clock,
		subs:         make(map[int]chan Event),
	}
	if cfg.Interval > 0 {
		s.eng.Interval = cfg.Interval
	}
	s.eng.OnTick = s.tick

	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	return s
}

// Running reports the run state.
func (s *Simulation) Running() bool {
	return s.eng.Running()
}

// ── Parameter store ─────────────────────────────────────────────────

// Parameters returns a copy of the current parameters.
func (s *Simulation) Parameters() physics.Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetParameters replaces all three parameters. Values are not validated;
// out-of-range values simply feed the threshold rules.
func (s *Simulation) SetParameters(p physics.Parameters) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.params = p
	s.logf("Parameters set: %s", p)
	s.narrate(narration.ParameterChange, narration.Context{})
	slog.Info("parameters set", "entropy", p.Entropy, "coupling", p.Coupling, "consciousness", p.Consciousness)
}

// Inject sets fresh uniform random parameters: ω∈[0,2), Γ∈[0,5), C∈[0,1).
func (s *Simulation) Inject() physics.Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.params = physics.Parameters{
		Entropy:       entropy.Uniform(s.src, 0, phi.MaxInjectedEntropy),
		Coupling:      entropy.Uniform(s.src, 0, phi.MaxInjectedCoupling),
		Consciousness: entropy.Uniform(s.src, 0, phi.MaxInjectedConsciousness),
	}
	s.logf("Novel physics injected: %s", s.params)
	s.narrate(narration.NovelPhysicsInjection, narration.Context{})
	slog.Info("novel physics injected", "entropy", s.params.Entropy, "coupling", s.params.Coupling, "consciousness", s.params.Consciousness)
	return s.params
}

// Reset stops the scheduler if needed, then restores default parameters
// and clears derived state, particles, forces and discoveries.
func (s *Simulation) Reset() {
	s.ctl.Lock()
	defer s.ctl.Unlock()

	s.stopLocked()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	slog.Info("physics reset", "run_id", s.RunID)
}

func (s *Simulation) resetLocked() {
	s.params = physics.DefaultParameters()
	s.state = physics.InitialState()
	s.discoveries = nil
	s.logf("Physics system reset to initial conditions.")
	s.narrate(narration.SystemReset, narration.Context{})
}

// ── Run control ─────────────────────────────────────────────────────

// Toggle starts a stopped scheduler or stops a running one. It returns the
// new run state.
func (s *Simulation) Toggle() bool {
	s.ctl.Lock()
	defer s.ctl.Unlock()

	if s.eng.Running() {
		s.stopLocked()
		return false
	}
	s.startLocked()
	return true
}

// Start is a no-op when already running.
func (s *Simulation) Start() {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	s.startLocked()
}

// Stop is a no-op when already stopped. When it returns no tick is running
// and none will run until the next Start.
func (s *Simulation) Stop() {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	s.stopLocked()
}

// Shutdown stops the scheduler ahead of process exit.
func (s *Simulation) Shutdown() {
	s.Stop()
	slog.Info("simulation shut down", "run_id", s.RunID, "ticks", s.eng.Tick())
}

func (s *Simulation) startLocked() {
	if !s.eng.Start() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logf("Simulation started - physics calculations active.")
	s.narrate(narration.SimulationStarted, narration.Context{})
}

// stopLocked must not hold s.mu: the in-flight tick needs it to finish.
func (s *Simulation) stopLocked() {
	if !s.eng.Stop() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logf("Simulation paused.")
	s.narrate(narration.SimulationStopped, narration.Context{})
}

// ── Tick ────────────────────────────────────────────────────────────

// tick derives the next state and commits it whole. Narration and log
// entries are emitted only after the commit.
func (s *Simulation) tick(n uint64, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := physics.Derive(s.params, s.state, s.src)
	s.state = out.State
	s.lastTick = n

	if out.Transitioned {
		s.logf("DIMENSIONAL PHASE TRANSITION: %dD -> %dD", out.From, out.To)
		for _, d := range out.Discoveries {
			s.recordDiscovery(d)
		}
		s.narrate(narration.DimensionalTransition, narration.Context{
			OldDimensions: out.From,
			NewDimensions: out.To,
		})
		if out.GhostCrossing() {
			s.narrate(narration.GhostDetection, narration.Context{})
		}
		slog.Info("dimensional transition", "tick", n, "from", out.From, "to", out.To)
	}

	if len(out.NewForces) > 0 {
		s.narrate(narration.ForceEmergence, narration.Context{NewForce: out.NewForces[0].String()})
		slog.Info("force emergence", "tick", n, "force", out.NewForces[0].String(), "new", len(out.NewForces))
	}

	if s.src.Float() < phi.AnomalyChance {
		s.checkAnomaliesLocked()
	}

	slog.Debug("tick", "tick", n, "elapsed", elapsed, "dims", s.state.Dimensions, "particles", len(s.state.Particles))
}

// recordDiscovery stores d unless it is already known.
func (s *Simulation) recordDiscovery(d physics.Discovery) {
	for _, known := range s.discoveries {
		if known == d {
			return
		}
	}
	s.discoveries = append(s.discoveries, d)
	s.logf("Discovery: %s", d)
	s.publish(Event{Category: CategoryDiscovery, Description: string(d)})
	slog.Info("discovery", "text", string(d))
}

// CheckAnomalies runs the anomaly check immediately and returns what it
// found. The scheduler runs it on roughly one tick in ten.
func (s *Simulation) CheckAnomalies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkAnomaliesLocked()
}

func (s *Simulation) checkAnomaliesLocked() []string {
	found := experiment.Anomalies(s.input())
	if len(found) > 0 {
		s.narrate(narration.AnomalyDetected, narration.Context{Anomalies: found})
		slog.Warn("anomaly detected", "conditions", len(found))
	}
	return found
}

// ── Experiments ─────────────────────────────────────────────────────

// RunExperiment measures the current state and records exactly one
// narration and one log line.
func (s *Simulation) RunExperiment(kind experiment.Kind) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := experiment.Run(kind, s.input(), s.src)
	if err != nil {
		return "", err
	}
	s.logf("Experiment Result: %s", result)
	s.narrate(narration.ExperimentCompleted, narration.Context{
		Experiment: string(kind),
		Result:     result,
	})
	slog.Info("experiment completed", "type", string(kind), "result", result)
	return result, nil
}

// ── Commands ────────────────────────────────────────────────────────

// Handle executes one command from the command surface.
func (s *Simulation) Handle(cmd Command) error {
	switch cmd {
	case CmdToggleRun:
		s.Toggle()
	case CmdReset:
		s.Reset()
	case CmdInject:
		s.Inject()
	case CmdQuit:
		s.Shutdown()
	default:
		kind, ok := cmd.Experiment()
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidCommand, cmd)
		}
		if _, err := s.RunExperiment(kind); err != nil {
			return err
		}
	}
	return nil
}

// HandleToken parses and executes a raw command token. Unknown tokens are
// logged and leave all state unchanged.
func (s *Simulation) HandleToken(token string) (Command, error) {
	cmd, err := ParseCommand(token)
	if err != nil {
		s.mu.Lock()
		s.logf("Unknown command: '%s'", token)
		s.mu.Unlock()
		slog.Warn("invalid command", "token", token)
		return 0, err
	}
	return cmd, s.Handle(cmd)
}

// ── Helpers (callers hold s.mu) ─────────────────────────────────────

func (s *Simulation) input() experiment.Input {
	return experiment.Input{Params: s.params, State: s.state}
}

func (s *Simulation) view() narration.View {
	return narration.View{
		Params:     s.params,
		Dimensions: s.state.Dimensions,
		Particles:  len(s.state.Particles),
		Forces:     len(s.state.Forces),
	}
}

func (s *Simulation) narrate(t narration.Trigger, ctx narration.Context) {
	speaker := s.selector.Select(t)
	profile := speaker.Profile()
	ev := chronicle.NarratedEvent{
		Speaker: profile.Key,
		Name:    profile.Name,
		Trigger: t.String(),
		Text:    narration.Compose(speaker, t, ctx, s.view()),
	}
	s.conversation.Push(ev)
	s.publish(Event{
		Category:    CategoryNarration,
		Speaker:     ev.Speaker,
		Trigger:     ev.Trigger,
		Description: ev.Text,
	})
}

func (s *Simulation) logf(format string, args ...any) {
	line := chronicle.LogLine{Time: s.clock(), Text: fmt.Sprintf(format, args...)}
	s.log.Push(line)
	s.publish(Event{Category: CategoryLog, Description: line.Text})
}

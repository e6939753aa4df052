// Package engine provides the background tick loop and the guarded system
// object that every command handler and renderer goes through.
package engine

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/talgya/entropic/internal/phi"
)

// Engine drives ticks on a fixed cadence in its own goroutine.
// Cadence is best-effort; a slow tick delays the next one.
type Engine struct {
	Interval time.Duration // Pause between ticks (default 500ms)

	// OnTick runs once per tick with the tick number and the time elapsed
	// since the baseline recorded by Start.
	OnTick func(tick uint64, elapsed time.Duration)

	lifecycle sync.Mutex // serializes Start and Stop
	running   atomic.Bool
	tick      atomic.Uint64
	stop      chan struct{}
	done      chan struct{}
	started   atomic.Int64 // unix nanos of the last Start
}

// NewEngine creates an engine with the default interval.
func NewEngine() *Engine {
	return &Engine{Interval: phi.TickInterval}
}

// Start launches the tick loop. It returns false if already running.
func (e *Engine) Start() bool {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if e.running.Load() {
		return false
	}
	baseline := time.Now()
	e.started.Store(baseline.UnixNano())
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	e.running.Store(true)

	go e.run(baseline, e.stop, e.done)
	slog.Info("simulation engine started", "tick", e.tick.Load(), "interval", e.interval())
	return true
}

// Stop halts the loop and waits for an in-flight tick to finish, so no tick
// runs after Stop returns. It returns false if the engine was not running.
// Stop must not be called from inside OnTick.
func (e *Engine) Stop() bool {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if !e.running.Load() {
		return false
	}
	e.running.Store(false)
	close(e.stop)
	<-e.done

	slog.Info("simulation engine stopped", "tick", e.tick.Load())
	return true
}

// Running reports whether the loop is active. Safe from any goroutine.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Tick returns the number of ticks executed so far. It never resets.
func (e *Engine) Tick() uint64 {
	return e.tick.Load()
}

// Uptime returns time since the last Start, or zero while stopped.
func (e *Engine) Uptime() time.Duration {
	if !e.running.Load() {
		return 0
	}
	return time.Since(time.Unix(0, e.started.Load()))
}

func (e *Engine) interval() time.Duration {
	if e.Interval <= 0 {
		return phi.TickInterval
	}
	return e.Interval
}

func (e *Engine) run(baseline time.Time, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		default:
		}

		e.step(time.Since(baseline))

		timer := time.NewTimer(e.interval())
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// step advances the simulation by one tick.
func (e *Engine) step(elapsed time.Duration) {
	n := e.tick.Add(1)
	if e.OnTick != nil {
		e.OnTick(n, elapsed)
	}
}

package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/entropic/internal/engine"
	"github.com/talgya/entropic/internal/entropy"
	"github.com/talgya/entropic/internal/physics"
)

func newTestModel(t *testing.T) (Model, *engine.Simulation) {
	t.Helper()
	sim := engine.NewSimulation(engine.Config{Source: entropy.NewSeeded(5), Interval: time.Hour})
	t.Cleanup(sim.Shutdown)
	return New(sim), sim
}

func press(m Model, key string) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return next.(Model), cmd
}

func TestViewShowsInitialState(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()

	assert.Contains(t, view, "Entropic Framework Physics Discovery System")
	assert.Contains(t, view, "Dimensions: 4")
	assert.Contains(t, view, "Particles: 0")
	assert.Contains(t, view, "ω (Entropy): 0.750")
	assert.Contains(t, view, "Paused")
	assert.Contains(t, view, "Physics system reset to initial conditions.")
	assert.Contains(t, view, "Map Goldilocks Zone")
}

func TestKeyInjectsPhysics(t *testing.T) {
	m, sim := newTestModel(t)
	m, cmd := press(m, "3")
	assert.Nil(t, cmd)
	assert.NotEqual(t, physics.DefaultParameters(), sim.Parameters())
	assert.Contains(t, m.View(), "Novel physics injected")
}

func TestUnknownKeyIsLogged(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(m, "x")
	assert.Contains(t, m.View(), "Unknown command: 'x'")
}

func TestNonRuneKeysAreIgnored(t *testing.T) {
	m, sim := newTestModel(t)
	before := len(sim.Snapshot().Log)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Nil(t, cmd)
	assert.Equal(t, before, len(next.(Model).snap.Log))
}

func TestToggleAndQuit(t *testing.T) {
	m, sim := newTestModel(t)
	m, _ = press(m, "1")
	require.True(t, sim.Running())
	assert.True(t, m.snap.Running)

	m, cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, sim.Running())
	assert.True(t, strings.HasPrefix(m.View(), "Shutting down"))
}

func TestRefreshPicksUpNewSnapshot(t *testing.T) {
	m, sim := newTestModel(t)
	sim.SetParameters(physics.Parameters{Entropy: 1.2, Coupling: 3, Consciousness: 0.9})

	next, cmd := m.Update(refreshMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.Contains(t, next.(Model).View(), "ω (Entropy): 1.200")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ωω", truncate("ωωωω", 2))
}

// Package tui is the interactive dashboard. It polls simulation snapshots
// on a timer and routes single-key commands to the simulation.
package tui

import (
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/talgya/entropic/internal/engine"
)

// RefreshInterval is how often the dashboard redraws.
const RefreshInterval = 250 * time.Millisecond

type refreshMsg time.Time

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	sim      *engine.Simulation
	snap     engine.Snapshot
	width    int
	height   int
	quitting bool
}

// New creates a dashboard over sim.
func New(sim *engine.Simulation) Model {
	return Model{sim: sim, snap: sim.Snapshot()}
}

// Run drives the dashboard until the user quits. The simulation is shut
// down on return.
func Run(sim *engine.Simulation, opts ...tea.ProgramOption) error {
	defer sim.Shutdown()
	_, err := tea.NewProgram(New(sim), append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...).Run()
	return err
}

func refresh() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m Model) Init() tea.Cmd { return refresh() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case refreshMsg:
		if m.quitting {
			return m, nil
		}
		m.snap = m.sim.Snapshot()
		return m, refresh()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	// Only printable keys are command tokens.
	if msg.Type != tea.KeyRunes {
		return m, nil
	}

	cmd, err := engine.ParseCommand(msg.String())
	if err == nil && cmd == engine.CmdQuit {
		return m.quit()
	}
	if _, err := m.sim.HandleToken(msg.String()); err != nil && !errors.Is(err, engine.ErrInvalidCommand) {
		slog.Error("command failed", "key", msg.String(), "error", err)
	}
	m.snap = m.sim.Snapshot()
	return m, nil
}

func (m Model) quit() (Model, tea.Cmd) {
	m.sim.Shutdown()
	m.quitting = true
	m.snap = m.sim.Snapshot()
	return m, tea.Quit
}

func (m Model) View() string {
	if m.quitting {
		return "Shutting down Entropic Framework...\n"
	}
	return Frame(m.snap) + "\n"
}

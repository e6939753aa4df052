package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/talgya/entropic/internal/engine"
)

const (
	leftWidth        = 70
	rightWidth       = 45
	conversationRows = 15
)

var (
	header  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	equate  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	bold    = lipgloss.NewStyle().Bold(true)
	rule    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var speakerStyle = map[string]lipgloss.Style{
	"quantum":       cyan,
	"dimensional":   magenta,
	"consciousness": yellow,
}

var commandLabels = map[engine.Command]string{
	engine.CmdToggleRun:    "Start/Stop Sim",
	engine.CmdReset:        "Reset Physics",
	engine.CmdInject:       "Inject Novel Physics",
	engine.CmdBellTest:     "Run Bell Test",
	engine.CmdCollapseTest: "Run Collapse Test",
	engine.CmdGoldilocks:   "Map Goldilocks Zone",
	engine.CmdCHSH:         "Estimate CHSH S",
	engine.CmdQuit:         "Quit",
}

// Frame renders one full dashboard screen from a snapshot.
func Frame(snap engine.Snapshot) string {
	var b strings.Builder

	b.WriteString(header.Render("--- Entropic Framework Physics Discovery System ---"))
	b.WriteString("\n")
	b.WriteString(equate.Render("Core Equation: E = ∫ [ρ(χ,τ)·ω·∇σ] dⁿχ"))
	b.WriteString("\n")
	b.WriteString(equate.Render("Lagrangian: ℒ = ½(∂ψ/∂τ)² - V(ψ) - ωρ∇²ψ + Γφη(ψ)"))
	b.WriteString("\n\n")

	left := lipgloss.JoinVertical(lipgloss.Left,
		bold.Render("Triad AI Physics Discussion"),
		rule.Render(strings.Repeat("-", leftWidth)),
		conversationPanel(snap),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		bold.Render("Real-Time Physics Status"),
		rule.Render(strings.Repeat("-", rightWidth)),
		statusPanel(snap),
	)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(leftWidth).Render(left),
		" ",
		lipgloss.NewStyle().Width(rightWidth).Render(right),
	))
	b.WriteString("\n\n")

	b.WriteString(bold.Render("System Log"))
	b.WriteString("\n")
	b.WriteString(rule.Render(strings.Repeat("-", leftWidth+rightWidth+1)))
	b.WriteString("\n")
	for _, line := range snap.Log {
		b.WriteString(line.String())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(bold.Render("Commands:"))
	b.WriteString("\n")
	b.WriteString(menu())
	return b.String()
}

// conversationPanel shows the newest narrations that fit, one line each.
func conversationPanel(snap engine.Snapshot) string {
	items := snap.Conversation
	if len(items) > conversationRows {
		items = items[len(items)-conversationRows:]
	}
	lines := make([]string, 0, conversationRows)
	for _, n := range items {
		name := n.Name + ":"
		text := truncate(n.Text, leftWidth-2-len([]rune(name))-1)
		style, ok := speakerStyle[n.Speaker]
		if !ok {
			style = dim
		}
		lines = append(lines, style.Render(name)+" "+text)
	}
	for len(lines) < conversationRows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func statusPanel(snap engine.Snapshot) string {
	state := red.Render("Paused")
	if snap.Running {
		state = green.Render("Running")
	}
	lines := []string{
		" Sim State: " + state,
		"",
		cyan.Render(fmt.Sprintf(" Dimensions: %d", snap.Dimensions())),
		cyan.Render(fmt.Sprintf(" Particles: %s", humanize.Comma(int64(snap.ParticleCount())))),
		cyan.Render(fmt.Sprintf(" Emergent Forces: %d", snap.ForceCount())),
		"",
		yellow.Render(fmt.Sprintf(" ω (Entropy): %.3f", snap.Params.Entropy)),
		yellow.Render(fmt.Sprintf(" Γ (Coupling): %.3f", snap.Params.Coupling)),
		yellow.Render(fmt.Sprintf(" C (Consciousness): %.3f", snap.Params.Consciousness)),
		"",
		dim.Render(fmt.Sprintf(" Tick: %s  Uptime: %s", humanize.Comma(int64(snap.Tick)), snap.Uptime.Truncate(time.Second))),
		dim.Render(fmt.Sprintf(" Energy: mean %.2f  peak %.2f", snap.MeanEnergy, snap.PeakEnergy)),
		dim.Render(fmt.Sprintf(" Discoveries: %d", len(snap.Discoveries))),
	}
	for _, f := range snap.State.Forces {
		lines = append(lines, magenta.Render("  • "+f.String()))
	}
	return strings.Join(lines, "\n")
}

func menu() string {
	var rows []string
	var row []string
	for _, cmd := range engine.Commands() {
		keyStyle := green
		if cmd == engine.CmdQuit {
			keyStyle = red
		}
		row = append(row, fmt.Sprintf("%s %-20s", keyStyle.Render("["+cmd.Key()+"]"), commandLabels[cmd]))
		if len(row) == 3 || cmd == engine.CmdQuit {
			rows = append(rows, "  "+strings.TrimRight(strings.Join(row, " "), " "))
			row = nil
		}
	}
	return strings.Join(rows, "\n")
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-3]) + "..."
}

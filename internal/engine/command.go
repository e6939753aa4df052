package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/talgya/entropic/internal/experiment"
)

// ErrInvalidCommand is returned for unrecognized command tokens.
var ErrInvalidCommand = errors.New("invalid command")

// Command is one action on the command surface.
type Command uint8

const (
	CmdToggleRun Command = iota
	CmdReset
	CmdInject
	CmdBellTest
	CmdCollapseTest
	CmdGoldilocks
	CmdCHSH
	CmdQuit
)

var commandNames = [...]string{
	CmdToggleRun:    "toggle-run",
	CmdReset:        "reset",
	CmdInject:       "inject",
	CmdBellTest:     "run-bell-test",
	CmdCollapseTest: "run-collapse-test",
	CmdGoldilocks:   "run-goldilocks",
	CmdCHSH:         "run-chsh",
	CmdQuit:         "quit",
}

// Keys are the single-character shortcuts shown in the menu.
var commandKeys = [...]string{
	CmdToggleRun:    "1",
	CmdReset:        "2",
	CmdInject:       "3",
	CmdBellTest:     "4",
	CmdCollapseTest: "5",
	CmdGoldilocks:   "6",
	CmdCHSH:         "7",
	CmdQuit:         "q",
}

func (c Command) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return fmt.Sprintf("command-%d", c)
}

// Key returns the menu shortcut for c.
func (c Command) Key() string {
	if int(c) < len(commandKeys) {
		return commandKeys[c]
	}
	return ""
}

// Experiment returns the experiment a command runs, if any.
func (c Command) Experiment() (experiment.Kind, bool) {
	switch c {
	case CmdBellTest:
		return experiment.BellTest, true
	case CmdCollapseTest:
		return experiment.ConsciousnessCollapse, true
	case CmdGoldilocks:
		return experiment.GoldilocksMapping, true
	case CmdCHSH:
		return experiment.CHSHParameter, true
	}
	return "", false
}

// Commands lists the command surface in menu order.
func Commands() []Command {
	out := make([]Command, len(commandNames))
	for i := range commandNames {
		out[i] = Command(i)
	}
	return out
}

// ParseCommand accepts either a menu key or a command name, case-insensitive.
func ParseCommand(token string) (Command, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	for i := range commandNames {
		if t == commandNames[i] || t == commandKeys[i] {
			return Command(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCommand, token)
}

package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/entropic/internal/experiment"
)

func TestParseCommand(t *testing.T) {
	cases := map[string]Command{
		"1":                 CmdToggleRun,
		" toggle-run ":      CmdToggleRun,
		"2":                 CmdReset,
		"RESET":             CmdReset,
		"3":                 CmdInject,
		"4":                 CmdBellTest,
		"run-collapse-test": CmdCollapseTest,
		"6":                 CmdGoldilocks,
		"7":                 CmdCHSH,
		"Q":                 CmdQuit,
		"quit":              CmdQuit,
	}
	for token, want := range cases {
		got, err := ParseCommand(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got, token)
	}
}

func TestParseCommandRejectsUnknown(t *testing.T) {
	for _, token := range []string{"", "8", "start", "11"} {
		_, err := ParseCommand(token)
		assert.True(t, errors.Is(err, ErrInvalidCommand), token)
	}
}

func TestCommandExperiments(t *testing.T) {
	kind, ok := CmdBellTest.Experiment()
	assert.True(t, ok)
	assert.Equal(t, experiment.BellTest, kind)

	_, ok = CmdReset.Experiment()
	assert.False(t, ok)
}

func TestCommandsMenuOrder(t *testing.T) {
	cmds := Commands()
	require.Len(t, cmds, 8)
	assert.Equal(t, CmdToggleRun, cmds[0])
	assert.Equal(t, CmdQuit, cmds[len(cmds)-1])
	assert.Equal(t, "q", CmdQuit.Key())
	assert.Equal(t, "run-goldilocks", CmdGoldilocks.String())
}

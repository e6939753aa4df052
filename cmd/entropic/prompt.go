package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/talgya/entropic/internal/engine"
	"github.com/talgya/entropic/internal/tui"
)

// runPrompt is the line-based front end: render a frame, read one command,
// repeat. It returns on quit, end of input or ctx cancellation.
func runPrompt(ctx context.Context, sim *engine.Simulation, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		fmt.Fprintln(out, tui.Frame(sim.Snapshot()))
		fmt.Fprint(out, "\nEnter command: ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nShutdown initiated by user. Goodbye.")
			sim.Shutdown()
			return nil
		case err := <-readErr:
			sim.Shutdown()
			return err
		case line = <-lines:
		}

		cmd, err := sim.HandleToken(line)
		switch {
		case errors.Is(err, engine.ErrInvalidCommand):
			// Logged by the simulation; the next frame shows it.
		case err != nil:
			slog.Error("command failed", "command", line, "error", err)
		case cmd == engine.CmdQuit:
			fmt.Fprintln(out, shutdownBanner)
			return nil
		}
	}
}

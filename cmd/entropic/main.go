// Command entropic runs the Entropic Framework physics discovery dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/entropic/internal/api"
	"github.com/talgya/entropic/internal/engine"
	"github.com/talgya/entropic/internal/entropy"
	"github.com/talgya/entropic/internal/persistence"
	"github.com/talgya/entropic/internal/phi"
	"github.com/talgya/entropic/internal/tui"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "entropic",
		Short: "Entropic Framework physics discovery dashboard",
		Long: `Evolves three scalar parameters (entropy ω, coupling Γ, consciousness C)
through fixed threshold rules and narrates dimensional transitions, emergent
forces and discoveries through three rotating commentators.

Keys: [1] start/stop  [2] reset  [3] inject  [4] Bell test
      [5] collapse test  [6] Goldilocks zone  [7] CHSH  [q] quit`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	opts.bind(cmd)
	return cmd
}

func run(parent context.Context, opts options) error {
	if parent == nil {
		parent = context.Background()
	}

	closeLog, err := setupLogging(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	src := entropy.Select(opts.randomOrgKey, seed)

	sim := engine.NewSimulation(engine.Config{
		Source:   src,
		Interval: opts.interval,
		Clock:    time.Now,
	})
	defer sim.Shutdown()

	slog.Info("Entropic Framework starting",
		"run_id", sim.RunID,
		"seed", seed,
		"interval", opts.interval,
		"phi", phi.Phi,
		"random_org", opts.randomOrgKey != "",
	)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	// ── Journal ───────────────────────────────────────────────────────
	var db *persistence.DB
	if opts.dbPath != "" {
		db, err = persistence.Open(opts.dbPath)
		if err != nil {
			return fmt.Errorf("open journal %s: %w", opts.dbPath, err)
		}
		defer db.Close()
		if err := db.StartRun(ctx, sim.RunID, seed); err != nil {
			return err
		}
		defer func() {
			if err := db.EndRun(context.Background(), sim.RunID); err != nil {
				slog.Error("end run failed", "error", err)
			}
		}()
		slog.Info("journal opened", "path", opts.dbPath)

		g.Go(func() error {
			return db.Journal(gctx, sim, time.Second)
		})
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if opts.apiPort > 0 {
		if opts.adminKey == "" {
			slog.Warn("ENTROPIC_ADMIN_KEY not set; admin POST endpoints will be disabled")
		}
		srv := &api.Server{
			Sim:      sim,
			DB:       db,
			Port:     opts.apiPort,
			AdminKey: opts.adminKey,
		}
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	// ── Front end ─────────────────────────────────────────────────────
	g.Go(func() error {
		defer cancel()
		if opts.plain {
			return runPrompt(gctx, sim, os.Stdin, os.Stdout)
		}
		err := tui.Run(sim, tea.WithContext(gctx))
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	err = g.Wait()
	sim.Shutdown()
	if err != nil {
		return err
	}
	farewell(os.Stdout, opts.plain)
	return nil
}

const shutdownBanner = "Shutting down Entropic Framework..."

// farewell prints the shutdown banner once the dashboard has released the
// terminal. The line prompt prints its own.
func farewell(w io.Writer, plain bool) {
	if plain {
		return
	}
	fmt.Fprintln(w, shutdownBanner)
}

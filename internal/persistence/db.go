// Package persistence provides an optional SQLite journal of runs,
// narrated events, log lines and discoveries.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/entropic/internal/engine"
)

// DB wraps a SQLite connection for the event journal.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Writes are serialized by the journal goroutine; one connection also
	// keeps ":memory:" databases coherent.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		at TEXT NOT NULL,
		category TEXT NOT NULL,
		speaker TEXT NOT NULL DEFAULT '',
		trigger_name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS discoveries (
		run_id TEXT NOT NULL,
		text TEXT NOT NULL,
		tick INTEGER NOT NULL,
		PRIMARY KEY (run_id, text)
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, seq);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Run is one process lifetime of the simulation.
type Run struct {
	ID        string  `db:"id" json:"id"`
	Seed      int64   `db:"seed" json:"seed"`
	StartedAt string  `db:"started_at" json:"started_at"`
	EndedAt   *string `db:"ended_at" json:"ended_at,omitempty"`
}

// StartRun records the beginning of a run.
func (db *DB) StartRun(ctx context.Context, id uuid.UUID, seed int64) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO runs (id, seed, started_at) VALUES (?, ?, ?)",
		id.String(), seed, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}
	return db.SaveMeta(ctx, "last_run", id.String())
}

// EndRun stamps the run's end time.
func (db *DB) EndRun(ctx context.Context, id uuid.UUID) error {
	_, err := db.conn.ExecContext(ctx,
		"UPDATE runs SET ended_at = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), id.String(),
	)
	return err
}

// Runs lists runs, newest first.
func (db *DB) Runs(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.SelectContext(ctx, &runs,
		"SELECT id, seed, started_at, ended_at FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// SaveEvents appends events to the journal. Discovery events are also
// recorded in the discoveries table, once per run.
func (db *DB) SaveEvents(ctx context.Context, runID uuid.UUID, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO events
		(run_id, seq, tick, at, category, speaker, trigger_name, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.ExecContext(ctx,
			runID.String(), e.Seq, e.Tick, e.Time.UTC().Format(time.RFC3339Nano),
			e.Category, e.Speaker, e.Trigger, e.Description,
		)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", e.Seq, err)
		}
		if e.Category == engine.CategoryDiscovery {
			_, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO discoveries (run_id, text, tick) VALUES (?, ?, ?)",
				runID.String(), e.Description, e.Tick,
			)
			if err != nil {
				return fmt.Errorf("insert discovery: %w", err)
			}
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events for a run, newest first.
func (db *DB) RecentEvents(ctx context.Context, runID uuid.UUID, limit int) ([]engine.Event, error) {
	var rows []struct {
		Seq         uint64 `db:"seq"`
		Tick        uint64 `db:"tick"`
		At          string `db:"at"`
		Category    string `db:"category"`
		Speaker     string `db:"speaker"`
		Trigger     string `db:"trigger_name"`
		Description string `db:"description"`
	}
	err := db.conn.SelectContext(ctx, &rows,
		`SELECT seq, tick, at, category, speaker, trigger_name, description
		 FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?`,
		runID.String(), limit,
	)
	if err != nil {
		return nil, err
	}

	events := make([]engine.Event, 0, len(rows))
	for _, r := range rows {
		at, _ := time.Parse(time.RFC3339Nano, r.At)
		events = append(events, engine.Event{
			Seq:         r.Seq,
			Tick:        r.Tick,
			Time:        at,
			Category:    r.Category,
			Speaker:     r.Speaker,
			Trigger:     r.Trigger,
			Description: r.Description,
		})
	}
	return events, nil
}

// Discoveries returns a run's discoveries in the order they were made.
func (db *DB) Discoveries(ctx context.Context, runID uuid.UUID) ([]string, error) {
	var out []string
	err := db.conn.SelectContext(ctx, &out,
		"SELECT text FROM discoveries WHERE run_id = ? ORDER BY rowid",
		runID.String(),
	)
	return out, err
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. A missing key returns "" and no error.
func (db *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.GetContext(ctx, &value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// Journal drains a simulation subscription into the database until ctx is
// done. Events are batched per flush interval; failures are logged and the
// journal keeps going.
func (db *DB) Journal(ctx context.Context, sim *engine.Simulation, flush time.Duration) error {
	id, events := sim.Subscribe()
	defer sim.Unsubscribe(id)

	ticker := time.NewTicker(flush)
	defer ticker.Stop()

	var batch []engine.Event
	save := func() {
		if len(batch) == 0 {
			return
		}
		// Use a fresh context so the final flush survives cancellation.
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.SaveEvents(saveCtx, sim.RunID, batch); err != nil {
			slog.Error("journal save failed", "error", err, "events", len(batch))
		} else {
			slog.Debug("journal flushed", "events", len(batch))
		}
		batch = batch[:0]
	}

	for {
		select {
		case e, ok := <-events:
			if !ok {
				save()
				return nil
			}
			batch = append(batch, e)
		case <-ticker.C:
			save()
		case <-ctx.Done():
			// Pick up anything already buffered.
		drain:
			for {
				select {
				case e := <-events:
					batch = append(batch, e)
				default:
					break drain
				}
			}
			save()
			return nil
		}
	}
}

package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/entropic/internal/engine"
	"github.com/talgya/entropic/internal/entropy"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "entropic.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first, second := uuid.New(), uuid.New()
	require.NoError(t, db.StartRun(ctx, first, 42))
	require.NoError(t, db.StartRun(ctx, second, 7))
	require.NoError(t, db.EndRun(ctx, first))

	runs, err := db.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.String(), runs[0].ID)
	assert.Nil(t, runs[0].EndedAt)
	assert.NotNil(t, runs[1].EndedAt)
	assert.Equal(t, int64(42), runs[1].Seed)

	last, err := db.GetMeta(ctx, "last_run")
	require.NoError(t, err)
	assert.Equal(t, second.String(), last)
}

func TestMetaMissingKey(t *testing.T) {
	db := openTestDB(t)
	v, err := db.GetMeta(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSaveEventsAndDiscoveries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	run := uuid.New()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	events := []engine.Event{
		{Seq: 1, Tick: 1, Time: now, Category: engine.CategoryLog, Description: "Simulation started - physics calculations active."},
		{Seq: 2, Tick: 3, Time: now, Category: engine.CategoryDiscovery, Description: "Quantum threshold"},
		{Seq: 3, Tick: 3, Time: now, Category: engine.CategoryNarration, Speaker: "dimensional", Trigger: "dimensional_transition", Description: "Phase transition!"},
		{Seq: 4, Tick: 9, Time: now, Category: engine.CategoryDiscovery, Description: "Ghost variables"},
		{Seq: 5, Tick: 12, Time: now, Category: engine.CategoryDiscovery, Description: "Quantum threshold"},
	}
	require.NoError(t, db.SaveEvents(ctx, run, events))
	require.NoError(t, db.SaveEvents(ctx, run, nil))

	recent, err := db.RecentEvents(ctx, run, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, uint64(5), recent[0].Seq)
	assert.Equal(t, uint64(4), recent[1].Seq)
	assert.True(t, recent[0].Time.Equal(now))

	all, err := db.RecentEvents(ctx, run, 100)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "dimensional", all[2].Speaker)
	assert.Equal(t, "dimensional_transition", all[2].Trigger)

	found, err := db.Discoveries(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, []string{"Quantum threshold", "Ghost variables"}, found)

	other, err := db.Discoveries(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestJournalPersistsSimulationEvents(t *testing.T) {
	db := openTestDB(t)
	sim := engine.NewSimulation(engine.Config{Source: entropy.NewSeeded(3), Interval: time.Hour})
	require.NoError(t, db.StartRun(context.Background(), sim.RunID, 3))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- db.Journal(ctx, sim, 5*time.Millisecond) }()

	// The journal subscribes asynchronously; keep producing until rows land.
	require.Eventually(t, func() bool {
		sim.Inject()
		events, err := db.RecentEvents(context.Background(), sim.RunID, 10)
		return err == nil && len(events) > 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	events, err := db.RecentEvents(context.Background(), sim.RunID, 1000)
	require.NoError(t, err)
	var sawLog, sawNarration bool
	for _, e := range events {
		switch e.Category {
		case engine.CategoryLog:
			sawLog = true
		case engine.CategoryNarration:
			sawNarration = true
		}
	}
	assert.True(t, sawLog)
	assert.True(t, sawNarration)
}

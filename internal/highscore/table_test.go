package highscore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghost"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	m.Run()
}

func testGhost(t *testing.T, samples int) *ghost.Recording {
	t.Helper()
	rec, err := ghost.NewRecording("oval", 1, 10*time.Millisecond)
	require.NoError(t, err)
	for i := 0; i < samples; i++ {
		require.NoError(t, rec.Append(0, ghost.YawPose(r3.Vec{X: float64(i)}, 0)))
	}
	return rec
}

func TestTable_GetOrCreate(t *testing.T) {
	table := NewTable(NewMemoryStore())

	stats, err := table.GetOrCreate("oval")
	require.NoError(t, err)
	assert.Equal(t, "oval", stats.Track)
	assert.False(t, stats.FastestLap.IsSet())
	assert.Nil(t, stats.Ghost)
}

func TestTable_FirstResultSetsEverything(t *testing.T) {
	table := NewTable(NewMemoryStore())
	g := testGhost(t, 5)

	out, err := table.Update(Result{Track: "oval", RunID: "run-1", FastestLap: 30 * time.Second, Total: 95 * time.Second, Ghost: g})
	require.NoError(t, err)
	assert.True(t, out.NewFastestLap)
	assert.True(t, out.NewFastestTotal)
	assert.False(t, out.PreviousTotal.IsSet())

	assert.True(t, g.Sealed(), "published ghost is sealed")
	best, err := table.BestGhost("oval")
	require.NoError(t, err)
	assert.Same(t, g, best)

	stats, err := table.GetOrCreate("oval")
	require.NoError(t, err)
	assert.Equal(t, Entry{Driver: DefaultDriver, Time: 30 * time.Second}, stats.FastestLap)
	assert.Equal(t, Entry{Driver: DefaultDriver, Time: 95 * time.Second}, stats.FastestTotal)
	assert.Equal(t, 95*time.Second, stats.TotalPlayTime)
	assert.Equal(t, "run-1", stats.GhostRunID)
}

func TestTable_SlowerRunKeepsRecordsButAddsPlayTime(t *testing.T) {
	table := NewTable(NewMemoryStore())
	first := testGhost(t, 5)
	_, err := table.Update(Result{Track: "oval", RunID: "run-1", FastestLap: 30 * time.Second, Total: 95 * time.Second, Ghost: first})
	require.NoError(t, err)

	second := testGhost(t, 7)
	out, err := table.Update(Result{Track: "oval", Driver: "ada", RunID: "run-2", FastestLap: 29 * time.Second, Total: 100 * time.Second, Ghost: second})
	require.NoError(t, err)

	assert.True(t, out.NewFastestLap, "faster lap still counts")
	assert.False(t, out.NewFastestTotal)
	assert.Equal(t, 95*time.Second, out.PreviousTotal.Time)
	assert.False(t, second.Sealed(), "losing ghost is not published")

	stats := out.Stats
	assert.Equal(t, Entry{Driver: "ada", Time: 29 * time.Second}, stats.FastestLap)
	assert.Equal(t, 95*time.Second, stats.FastestTotal.Time)
	assert.Equal(t, 195*time.Second, stats.TotalPlayTime)
	assert.Same(t, first, stats.Ghost)
	assert.Equal(t, "run-1", stats.GhostRunID)
}

func TestTable_FasterTotalReplacesGhost(t *testing.T) {
	table := NewTable(NewMemoryStore())
	_, err := table.Update(Result{Track: "oval", RunID: "run-1", Total: 95 * time.Second, Ghost: testGhost(t, 5)})
	require.NoError(t, err)

	faster := testGhost(t, 4)
	out, err := table.Update(Result{Track: "oval", RunID: "run-2", Total: 90 * time.Second, Ghost: faster})
	require.NoError(t, err)
	assert.True(t, out.NewFastestTotal)

	best, err := table.BestGhost("oval")
	require.NoError(t, err)
	assert.Same(t, faster, best)
}

func TestTable_EmptyGhostIsNotPublished(t *testing.T) {
	table := NewTable(NewMemoryStore())
	out, err := table.Update(Result{Track: "oval", Total: 95 * time.Second, Ghost: testGhost(t, 0)})
	require.NoError(t, err)
	assert.True(t, out.NewFastestTotal)
	assert.Nil(t, out.Stats.Ghost)
}

type failingStore struct{ *MemoryStore }

func (*failingStore) Load(string) (*TrackStats, error) { return nil, errors.New("disk on fire") }

func TestTable_StoreErrorsPropagate(t *testing.T) {
	table := NewTable(&failingStore{NewMemoryStore()})
	_, err := table.Update(Result{Track: "oval", Total: time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestMemoryStore_Tracks(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(&TrackStats{Track: "valley"}))
	require.NoError(t, store.Save(&TrackStats{Track: "oval"}))

	tracks, err := NewTable(store).Tracks()
	require.NoError(t, err)
	assert.Equal(t, []string{"oval", "valley"}, tracks)

	_, err = store.Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// Package highscore keeps per-track records: fastest lap, fastest total and
// the ghost recording of the fastest total run.
package highscore

import (
	"errors"
	"fmt"
	"time"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghost"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/monitoring"
)

var logf = monitoring.Component("highscore")

// ErrNotFound is returned by a Store when a track has no stats yet.
var ErrNotFound = errors.New("highscore: track not found")

// DefaultDriver names entries when a result carries no driver.
const DefaultDriver = "Default"

// Entry is one record-holding time.
type Entry struct {
	Driver string        `json:"driver"`
	Time   time.Duration `json:"time"`
}

// IsSet reports whether the entry holds a time.
func (e Entry) IsSet() bool { return e.Time > 0 }

// TrackStats is the long-lived record for one track.
type TrackStats struct {
	Track         string        `json:"track"`
	TotalPlayTime time.Duration `json:"total_play_time"`
	FastestLap    Entry         `json:"fastest_lap"`
	FastestTotal  Entry         `json:"fastest_total"`

	// Ghost is the sealed recording of the FastestTotal run, nil when none.
	Ghost      *ghost.Recording `json:"-"`
	GhostRunID string           `json:"ghost_run_id,omitempty"`
}

// Store persists TrackStats.
type Store interface {
	Load(track string) (*TrackStats, error)
	Save(stats *TrackStats) error
	Tracks() ([]string, error)
}

// Result is the outcome of one finished race attempt.
type Result struct {
	Track      string
	Driver     string
	RunID      string
	FastestLap time.Duration
	Total      time.Duration
	// Ghost is the attempt's recording. It is published only if the attempt
	// sets a new fastest total, in which case it is sealed and must not be
	// touched by the caller afterwards.
	Ghost *ghost.Recording
}

// Outcome reports which records a Result beat.
type Outcome struct {
	NewFastestLap   bool
	NewFastestTotal bool
	PreviousLap     Entry
	PreviousTotal   Entry
	Stats           *TrackStats
}

// Table applies race results to a Store.
type Table struct {
	store Store
}

// NewTable returns a Table over store.
func NewTable(store Store) *Table {
	return &Table{store: store}
}

// GetOrCreate loads the stats for track, returning empty stats when the track
// has never been raced.
func (t *Table) GetOrCreate(track string) (*TrackStats, error) {
	stats, err := t.store.Load(track)
	if errors.Is(err, ErrNotFound) {
		return &TrackStats{Track: track}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stats for %q: %w", track, err)
	}
	return stats, nil
}

// Update folds res into the track's records and saves them.
func (t *Table) Update(res Result) (Outcome, error) {
	stats, err := t.GetOrCreate(res.Track)
	if err != nil {
		return Outcome{}, err
	}
	driver := res.Driver
	if driver == "" {
		driver = DefaultDriver
	}

	out := Outcome{PreviousLap: stats.FastestLap, PreviousTotal: stats.FastestTotal}

	if res.FastestLap > 0 && (!stats.FastestLap.IsSet() || res.FastestLap < stats.FastestLap.Time) {
		stats.FastestLap = Entry{Driver: driver, Time: res.FastestLap}
		out.NewFastestLap = true
		logf("new fastest lap on %q: %s (was %s)", res.Track, res.FastestLap, out.PreviousLap.Time)
	}

	if res.Total > 0 && (!stats.FastestTotal.IsSet() || res.Total < stats.FastestTotal.Time) {
		stats.FastestTotal = Entry{Driver: driver, Time: res.Total}
		out.NewFastestTotal = true
		if res.Ghost != nil && res.Ghost.TotalSamples() > 0 {
			res.Ghost.Seal()
			stats.Ghost = res.Ghost
			stats.GhostRunID = res.RunID
		}
		logf("new fastest total on %q: %s (was %s)", res.Track, res.Total, out.PreviousTotal.Time)
	}

	stats.TotalPlayTime += res.Total

	if err := t.store.Save(stats); err != nil {
		return Outcome{}, fmt.Errorf("failed to save stats for %q: %w", res.Track, err)
	}
	out.Stats = stats
	return out, nil
}

// BestGhost returns the persisted best recording for track, or nil.
func (t *Table) BestGhost(track string) (*ghost.Recording, error) {
	stats, err := t.GetOrCreate(track)
	if err != nil {
		return nil, err
	}
	return stats.Ghost, nil
}

// Tracks lists tracks with stored records.
func (t *Table) Tracks() ([]string, error) {
	return t.store.Tracks()
}

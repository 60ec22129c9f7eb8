package db

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghost"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghostlog"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/highscore"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/monitoring"
)

var logf = monitoring.Component("db")

// HighScoreStore persists highscore.TrackStats. Ghost recordings are kept in
// ghost_recordings as ghostlog-encoded blobs; only the current best ghost of
// each track is retained.
type HighScoreStore struct {
	db *DB
}

// NewHighScoreStore returns a store backed by db.
func NewHighScoreStore(db *DB) *HighScoreStore {
	return &HighScoreStore{db: db}
}

var _ highscore.Store = (*HighScoreStore)(nil)

// NewRunID returns a fresh identifier for a race attempt.
func NewRunID() string { return uuid.NewString() }

// Load returns the stats for track, or highscore.ErrNotFound.
func (s *HighScoreStore) Load(track string) (*highscore.TrackStats, error) {
	var (
		stats      highscore.TrackStats
		playNs     int64
		lapNs      int64
		totalNs    int64
		ghostRunID sql.NullString
	)
	err := s.db.QueryRow(`
		SELECT track, total_play_time_ns,
			fastest_lap_driver, fastest_lap_ns,
			fastest_total_driver, fastest_total_ns,
			ghost_run_id
		FROM track_stats WHERE track = ?`, track).Scan(
		&stats.Track, &playNs,
		&stats.FastestLap.Driver, &lapNs,
		&stats.FastestTotal.Driver, &totalNs,
		&ghostRunID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, highscore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query track stats: %w", err)
	}
	stats.TotalPlayTime = time.Duration(playNs)
	stats.FastestLap.Time = time.Duration(lapNs)
	stats.FastestTotal.Time = time.Duration(totalNs)

	if ghostRunID.Valid && ghostRunID.String != "" {
		rec, err := s.LoadGhost(ghostRunID.String)
		if err != nil {
			return nil, err
		}
		stats.Ghost = rec
		stats.GhostRunID = ghostRunID.String
	}
	return &stats, nil
}

// Save upserts stats. A ghost without a run ID is assigned one, which is
// written back into stats. Ghost rows no longer referenced are removed.
func (s *HighScoreStore) Save(stats *highscore.TrackStats) error {
	if stats.Ghost != nil && stats.GhostRunID == "" {
		stats.GhostRunID = NewRunID()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ghostRunID sql.NullString
	if stats.Ghost != nil {
		ghostRunID = sql.NullString{String: stats.GhostRunID, Valid: true}
	}
	if _, err := tx.Exec(`
		INSERT INTO track_stats (
			track, total_play_time_ns,
			fastest_lap_driver, fastest_lap_ns,
			fastest_total_driver, fastest_total_ns,
			ghost_run_id, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(track) DO UPDATE SET
			total_play_time_ns = excluded.total_play_time_ns,
			fastest_lap_driver = excluded.fastest_lap_driver,
			fastest_lap_ns = excluded.fastest_lap_ns,
			fastest_total_driver = excluded.fastest_total_driver,
			fastest_total_ns = excluded.fastest_total_ns,
			ghost_run_id = excluded.ghost_run_id,
			updated_at = CURRENT_TIMESTAMP`,
		stats.Track, int64(stats.TotalPlayTime),
		stats.FastestLap.Driver, int64(stats.FastestLap.Time),
		stats.FastestTotal.Driver, int64(stats.FastestTotal.Time),
		ghostRunID,
	); err != nil {
		return fmt.Errorf("failed to upsert track stats: %w", err)
	}

	if stats.Ghost != nil {
		var buf bytes.Buffer
		if err := ghostlog.Encode(&buf, stats.Ghost); err != nil {
			return fmt.Errorf("failed to encode ghost: %w", err)
		}
		if _, err := tx.Exec(`
			INSERT INTO ghost_recordings (run_id, track, interval_ns, lap_count, total_samples, payload)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id) DO NOTHING`,
			stats.GhostRunID, stats.Track, int64(stats.Ghost.Interval()),
			stats.Ghost.LapCount(), stats.Ghost.TotalSamples(), buf.Bytes(),
		); err != nil {
			return fmt.Errorf("failed to insert ghost recording: %w", err)
		}
	}

	res, err := tx.Exec(`DELETE FROM ghost_recordings WHERE track = ? AND run_id IS NOT ?`, stats.Track, ghostRunID)
	if err != nil {
		return fmt.Errorf("failed to prune ghost recordings: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logf("pruned %d superseded ghost(s) on %q", n, stats.Track)
	}

	return tx.Commit()
}

// Tracks lists tracks with stored stats in name order.
func (s *HighScoreStore) Tracks() ([]string, error) {
	rows, err := s.db.Query(`SELECT track FROM track_stats ORDER BY track`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []string
	for rows.Next() {
		var track string
		if err := rows.Scan(&track); err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

// LoadGhost decodes the recording stored under runID.
func (s *HighScoreStore) LoadGhost(runID string) (*ghost.Recording, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM ghost_recordings WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ghost %s: %w", runID, highscore.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ghost %s: %w", runID, err)
	}
	rec, err := ghostlog.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to decode ghost %s: %w", runID, err)
	}
	return rec, nil
}

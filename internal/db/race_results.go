package db

import (
	"encoding/json"
	"fmt"
	"time"
)

// RaceResult is one finished attempt as kept in race_results.
type RaceResult struct {
	RunID      string
	Track      string
	Driver     string
	FastestLap time.Duration
	Total      time.Duration
	LapTimes   []time.Duration
	FinishedAt time.Time
}

// RecordRaceResult stores a finished attempt.
func (db *DB) RecordRaceResult(r RaceResult) error {
	laps := make([]int64, len(r.LapTimes))
	for i, d := range r.LapTimes {
		laps[i] = int64(d)
	}
	lapJSON, err := json.Marshal(laps)
	if err != nil {
		return fmt.Errorf("failed to marshal lap times: %w", err)
	}
	if r.RunID == "" {
		r.RunID = NewRunID()
	}
	_, err = db.Exec(`
		INSERT INTO race_results (run_id, track, driver, lap_count, fastest_lap_ns, total_ns, lap_times_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Track, r.Driver, len(r.LapTimes), int64(r.FastestLap), int64(r.Total), string(lapJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert race result: %w", err)
	}
	return nil
}

// RaceResults returns up to limit results for track, most recent first.
func (db *DB) RaceResults(track string, limit int) ([]RaceResult, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`
		SELECT run_id, track, driver, fastest_lap_ns, total_ns, lap_times_ns, finished_at
		FROM race_results WHERE track = ?
		ORDER BY finished_at DESC, rowid DESC LIMIT ?`, track, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query race results: %w", err)
	}
	defer rows.Close()

	var out []RaceResult
	for rows.Next() {
		var (
			r        RaceResult
			lapNs    int64
			totalNs  int64
			lapsJSON string
		)
		if err := rows.Scan(&r.RunID, &r.Track, &r.Driver, &lapNs, &totalNs, &lapsJSON, &r.FinishedAt); err != nil {
			return nil, err
		}
		r.FastestLap = time.Duration(lapNs)
		r.Total = time.Duration(totalNs)
		var laps []int64
		if err := json.Unmarshal([]byte(lapsJSON), &laps); err != nil {
			return nil, fmt.Errorf("failed to parse lap times of %s: %w", r.RunID, err)
		}
		r.LapTimes = make([]time.Duration, len(laps))
		for i, ns := range laps {
			r.LapTimes[i] = time.Duration(ns)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

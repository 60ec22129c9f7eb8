package ghostlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/fsutil"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghost"
)

// DirExtension is the conventional suffix for ghost log directories.
const DirExtension = ".ghostlog"

const (
	headerFile = "header.json"
	lapsFile   = "laps.bin"
)

// Header describes a ghost log directory.
type Header struct {
	Version      string  `json:"version"`
	CreatedNs    int64   `json:"created_ns"`
	RunID        string  `json:"run_id,omitempty"`
	Track        string  `json:"track"`
	IntervalNs   int64   `json:"interval_ns"`
	LapCount     int     `json:"lap_count"`
	LapSamples   []int   `json:"lap_samples"`
	TotalSamples int     `json:"total_samples"`
	DurationSec  float64 `json:"duration_sec"`
}

// Interval returns the sampling interval recorded in the header.
func (h Header) Interval() time.Duration { return time.Duration(h.IntervalNs) }

// HeaderFor builds the header describing rec.
func HeaderFor(rec *ghost.Recording, runID string) Header {
	h := Header{
		Version:      "1.0",
		CreatedNs:    time.Now().UnixNano(),
		RunID:        runID,
		Track:        rec.Track(),
		IntervalNs:   int64(rec.Interval()),
		LapCount:     rec.LapCount(),
		LapSamples:   make([]int, rec.LapCount()),
		TotalSamples: rec.TotalSamples(),
		DurationSec:  rec.Duration().Seconds(),
	}
	for i := range h.LapSamples {
		h.LapSamples[i] = rec.LapLength(i)
	}
	return h
}

// Write stores rec under dir, creating it if needed. If dir is empty, a
// timestamped directory is created in the system temp dir. It returns the
// directory written.
func Write(dir string, rec *ghost.Recording, runID string) (string, error) {
	return WriteFS(fsutil.OSFileSystem{}, dir, rec, runID)
}

// WriteFS is Write on an arbitrary filesystem.
func WriteFS(fsys fsutil.FileSystem, dir string, rec *ghost.Recording, runID string) (string, error) {
	if rec == nil {
		return "", ghost.ErrMissingRecording
	}
	if dir == "" {
		dir = filepath.Join(os.TempDir(), fmt.Sprintf("ghost_%s_%d%s", rec.Track(), time.Now().Unix(), DirExtension))
	}
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := fsys.Create(filepath.Join(dir, lapsFile))
	if err != nil {
		return "", fmt.Errorf("failed to create lap file: %w", err)
	}
	if err := Encode(f, rec); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to encode laps: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close lap file: %w", err)
	}

	headerData, err := json.MarshalIndent(HeaderFor(rec, runID), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}
	if err := fsys.WriteFile(filepath.Join(dir, headerFile), headerData, 0644); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	return dir, nil
}

// Read loads a directory written by Write. The header's track and lap layout
// must agree with the binary data.
func Read(dir string) (Header, *ghost.Recording, error) {
	return ReadFS(fsutil.OSFileSystem{}, dir)
}

// ReadFS is Read on an arbitrary filesystem.
func ReadFS(fsys fsutil.FileSystem, dir string) (Header, *ghost.Recording, error) {
	var h Header
	headerData, err := fsys.ReadFile(filepath.Join(dir, headerFile))
	if err != nil {
		return h, nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerData, &h); err != nil {
		return h, nil, fmt.Errorf("failed to parse header: %w", err)
	}

	f, err := fsys.Open(filepath.Join(dir, lapsFile))
	if err != nil {
		return h, nil, fmt.Errorf("failed to open lap file: %w", err)
	}
	defer f.Close()

	rec, err := Decode(f)
	if err != nil {
		return h, nil, err
	}
	if rec.Track() != h.Track || rec.LapCount() != h.LapCount || rec.TotalSamples() != h.TotalSamples {
		return h, nil, fmt.Errorf("ghostlog: header does not match lap data in %s", dir)
	}
	return h, rec, nil
}
